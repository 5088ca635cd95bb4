package sema

import (
	"spmdc/ast"
	"spmdc/types"
)

// Per-node cost constants for the statement cost heuristic.  The absolute
// values are rough; what matters is the ordering between the uniform and
// varying flavors of each construct and the threshold below.
const (
	CostSimpleArithLogicOp = 1

	CostRegularBreakContinue  = 1
	CostCoherentBreakContinue = 4

	CostUniformIf = 2
	CostVaryingIf = 3

	CostUniformLoop = 4
	CostVaryingLoop = 6

	CostReturn  = 4
	CostFuncall = 4
	CostAssert  = 8

	// PredicateSafeIfStatementCost bounds the combined cost of the two
	// arms of a varying if that may be lowered to predicated straight-line
	// execution.
	PredicateSafeIfStatementCost = 6
)

// EstimateStmtCost sums the per-node cost constants over the statement
// tree.
func (w *Walker) EstimateStmtCost(s ast.Stmt) int {
	if s == nil {
		return 0
	}

	switch v := s.(type) {
	case *ast.ExprStmt:
		return w.EstimateExprCost(v.Expr)

	case *ast.DeclStmt:
		cost := 0
		for i := range v.Vars {
			cost += w.EstimateExprCost(v.Vars[i].Init)
		}
		return cost

	case *ast.IfStmt:
		ifcost := 0
		if v.Test != nil && v.Test.Type() != nil {
			if v.Test.Type().IsUniformType() {
				ifcost = CostUniformIf
			} else {
				ifcost = CostVaryingIf
			}
		}
		return ifcost + w.EstimateExprCost(v.Test) +
			w.EstimateStmtCost(v.TrueStmts) + w.EstimateStmtCost(v.FalseStmts)

	case *ast.DoStmt:
		loopCost := CostVaryingLoop
		if v.TestExpr != nil && v.TestExpr.Type() != nil && v.TestExpr.Type().IsUniformType() {
			loopCost = CostUniformLoop
		}
		return loopCost + w.EstimateExprCost(v.TestExpr) + w.EstimateStmtCost(v.BodyStmts)

	case *ast.ForStmt:
		loopCost := CostVaryingLoop
		if w.forLoopIsUniform(v) {
			loopCost = CostUniformLoop
		}
		return loopCost + w.EstimateStmtCost(v.Init) + w.EstimateExprCost(v.Test) +
			w.EstimateStmtCost(v.Step) + w.EstimateStmtCost(v.Stmts)

	case *ast.BreakStmt:
		if v.DoCoherenceCheck {
			return CostCoherentBreakContinue
		}
		return CostRegularBreakContinue

	case *ast.ContinueStmt:
		if v.DoCoherenceCheck {
			return CostCoherentBreakContinue
		}
		return CostRegularBreakContinue

	case *ast.ReturnStmt:
		return CostReturn + w.EstimateExprCost(v.Val)

	case *ast.StmtList:
		cost := 0
		for _, stmt := range v.Stmts {
			cost += w.EstimateStmtCost(stmt)
		}
		return cost

	case *ast.PrintStmt:
		return CostFuncall + w.EstimateExprCost(v.Values)

	case *ast.AssertStmt:
		return CostAssert + w.EstimateExprCost(v.Expr)
	}

	return 0
}

// forLoopIsUniform applies the uniform-loop rule for cost purposes: an
// explicit test decides by its type; a missing test falls back to the
// varying break/continue analysis.
func (w *Walker) forLoopIsUniform(fs *ast.ForStmt) bool {
	if fs.Test != nil {
		return fs.Test.Type() != nil && fs.Test.Type().IsUniformType()
	}
	return !w.cfg.Opt.DisableUniformControlFlow && !HasVaryingBreakOrContinue(fs.Stmts)
}

// EstimateExprCost sums the per-node cost constants over the expression
// tree.
func (w *Walker) EstimateExprCost(e ast.Expr) int {
	if e == nil {
		return 0
	}

	switch v := e.(type) {
	case *ast.ConstExpr, *ast.SymbolExpr, *ast.FunctionSymbolExpr:
		return 0

	case *ast.SyncExpr:
		return CostFuncall

	case *ast.UnaryExpr:
		return CostSimpleArithLogicOp + w.EstimateExprCost(v.Expr)

	case *ast.BinaryExpr:
		return CostSimpleArithLogicOp + w.EstimateExprCost(v.Arg0) + w.EstimateExprCost(v.Arg1)

	case *ast.AssignExpr:
		return CostSimpleArithLogicOp + w.EstimateExprCost(v.LValue) + w.EstimateExprCost(v.RValue)

	case *ast.SelectExpr:
		return CostSimpleArithLogicOp + w.EstimateExprCost(v.Test) +
			w.EstimateExprCost(v.Expr1) + w.EstimateExprCost(v.Expr2)

	case *ast.ExprList:
		cost := 0
		for _, sub := range v.Exprs {
			cost += w.EstimateExprCost(sub)
		}
		return cost

	case *ast.FunctionCallExpr:
		cost := CostFuncall
		if v.Args != nil {
			cost += w.EstimateExprCost(v.Args)
		}
		return cost

	case *ast.IndexExpr:
		cost := CostSimpleArithLogicOp + w.EstimateExprCost(v.ArrayOrVector) + w.EstimateExprCost(v.Index)
		// Varying indices gather/scatter, which is considerably more
		// expensive than a direct load.
		if types.IsVaryingType(v.Index.Type()) {
			cost += CostSimpleArithLogicOp
		}
		return cost

	case *ast.MemberExpr:
		return w.EstimateExprCost(v.Expr)

	case *ast.TypeCastExpr:
		return CostSimpleArithLogicOp + w.EstimateExprCost(v.Expr)

	case *ast.ReferenceExpr:
		return w.EstimateExprCost(v.Expr)

	case *ast.DereferenceExpr:
		return w.EstimateExprCost(v.Expr)
	}

	return 0
}
