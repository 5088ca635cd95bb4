package sema

import (
	"testing"

	"spmdc/ast"
	"spmdc/config"
	"spmdc/types"
)

func TestCostConstantOrdering(t *testing.T) {
	if CostUniformIf >= CostVaryingIf {
		t.Error("uniform if must cost less than varying if")
	}
	if CostUniformLoop >= CostVaryingLoop {
		t.Error("uniform loop must cost less than varying loop")
	}
	if CostRegularBreakContinue >= CostCoherentBreakContinue {
		t.Error("regular break/continue must cost less than coherent")
	}
}

func TestIfCostDependsOnTestVariability(t *testing.T) {
	captureDiagnostics(t)
	cfg := config.Default()
	w := NewWalker(cfg)

	arm := assign(testSym("x", types.VaryingInt32), 0)

	uniformIf := w.TypeCheckStmt(ast.NewIfStmt(cfg, lessThan(uniformIntSym("u"), 4), arm, nil, false, testPos(1)))
	varyingIf := w.TypeCheckStmt(ast.NewIfStmt(cfg, lessThan(varyingIntSym("v"), 4), arm, nil, false, testPos(1)))

	uc := w.EstimateStmtCost(uniformIf)
	vc := w.EstimateStmtCost(varyingIf)
	if uc >= vc {
		t.Errorf("uniform if cost %d not below varying if cost %d", uc, vc)
	}
}

func TestCheapPureArmsFitPredicationBudget(t *testing.T) {
	captureDiagnostics(t)
	w := NewWalker(config.Default())

	// The arms of `if (v < 4) x = 0; else x = 1;` must fit under the
	// predication threshold so the straight-line lowering applies.
	x := testSym("x", types.VaryingInt32)
	trueArm := assign(x, 0)
	falseArm := assign(x, 1)

	total := w.EstimateStmtCost(trueArm) + w.EstimateStmtCost(falseArm)
	if total >= PredicateSafeIfStatementCost {
		t.Errorf("trivial masked assignments cost %d, over the predication threshold %d", total, PredicateSafeIfStatementCost)
	}
}

func TestBreakCostReflectsCoherence(t *testing.T) {
	captureDiagnostics(t)
	cfg := config.Default()
	w := NewWalker(cfg)

	plain := w.EstimateStmtCost(ast.NewBreakStmt(cfg, false, testPos(1)))
	coherent := w.EstimateStmtCost(ast.NewBreakStmt(cfg, true, testPos(1)))
	if plain >= coherent {
		t.Errorf("plain break cost %d not below coherent break cost %d", plain, coherent)
	}
}
