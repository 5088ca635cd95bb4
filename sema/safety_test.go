package sema

import (
	"testing"

	"spmdc/ast"
	"spmdc/config"
	"spmdc/types"
)

func TestSafetyOfSimpleStatements(t *testing.T) {
	captureDiagnostics(t)
	cfg := config.Default()

	tests := []struct {
		name string
		stmt ast.Stmt
		want bool
	}{
		{"nil statement", nil, true},
		{"break", ast.NewBreakStmt(cfg, false, testPos(1)), true},
		{"continue", ast.NewContinueStmt(cfg, false, testPos(1)), true},
		{"void return", ast.NewReturnStmt(cfg, nil, false, testPos(1)), true},
		{"const expr stmt", ast.NewExprStmt(uniformInt(1), testPos(1)), true},
		{"assign stmt", assign(testSym("x", types.VaryingInt32), 0), true},
		{"assert is never safe", ast.NewAssertStmt("m", lessThan(uniformIntSym("u"), 1), testPos(1)), false},
		{
			"call is never safe",
			ast.NewExprStmt(ast.NewFunctionCallExpr(
				ast.NewFunctionSymbolExpr("foo", testPos(1)), nil, testPos(1)), testPos(1)),
			false,
		},
		{
			"print of constants is safe",
			ast.NewPrintStmt("%d\n", uniformInt(1), testPos(1)),
			true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SafeToRunWithAllLanesOff(tc.stmt); got != tc.want {
				t.Errorf("SafeToRunWithAllLanesOff = %v; want %v", got, tc.want)
			}
		})
	}
}

func TestSafetyOfIndexExpressions(t *testing.T) {
	captureDiagnostics(t)

	sizedArray := testSym("a", &types.ArrayType{Elem: types.UniformInt32, Count: 8})
	unsizedArray := testSym("b", &types.ArrayType{Elem: types.UniformInt32, Count: 0})

	inBounds := ast.NewIntConst(types.VaryingInt32, []int64{0, 3, 7, 2}, testPos(1))
	outOfBounds := ast.NewIntConst(types.VaryingInt32, []int64{0, 8, 1, 2}, testPos(1))

	tests := []struct {
		name string
		expr ast.Expr
		want bool
	}{
		{"constant in-bounds indices", ast.NewIndexExpr(symRef(sizedArray), inBounds, testPos(1)), true},
		{"constant out-of-bounds index", ast.NewIndexExpr(symRef(sizedArray), outOfBounds, testPos(1)), false},
		{"non-constant index", ast.NewIndexExpr(symRef(sizedArray), varyingIntSym("v"), testPos(1)), false},
		{"unsized array", ast.NewIndexExpr(symRef(unsizedArray), inBounds, testPos(1)), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stmt := ast.NewExprStmt(tc.expr, testPos(1))
			if got := SafeToRunWithAllLanesOff(stmt); got != tc.want {
				t.Errorf("SafeToRunWithAllLanesOff = %v; want %v", got, tc.want)
			}
		})
	}
}

// A safe statement list implies all of its children are safe: spot-check
// the monotonicity of the recursive definition.
func TestSafetyMonotonicity(t *testing.T) {
	captureDiagnostics(t)
	cfg := config.Default()

	children := []ast.Stmt{
		assign(testSym("x", types.VaryingInt32), 0),
		ast.NewExprStmt(uniformInt(3), testPos(2)),
		ast.NewIfStmt(cfg, lessThan(varyingIntSym("v"), 4),
			assign(testSym("y", types.VaryingInt32), 1), nil, false, testPos(3)),
	}
	list := ast.NewStmtList(children, testPos(1))

	if !SafeToRunWithAllLanesOff(list) {
		t.Fatal("statement list of safe children reported unsafe")
	}
	for i, child := range children {
		if !SafeToRunWithAllLanesOff(child) {
			t.Errorf("child %d of a safe list reported unsafe", i)
		}
	}

	// Poisoning one child poisons the list.
	poisoned := append(children[:len(children):len(children)],
		ast.NewAssertStmt("m", lessThan(uniformIntSym("u"), 1), testPos(4)))
	if SafeToRunWithAllLanesOff(ast.NewStmtList(poisoned, testPos(1))) {
		t.Error("list containing an assert reported safe")
	}
}
