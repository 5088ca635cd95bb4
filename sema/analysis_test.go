package sema

import (
	"testing"

	"spmdc/ast"
	"spmdc/config"
	"spmdc/types"
)

func TestHasVaryingBreakOrContinue(t *testing.T) {
	captureDiagnostics(t)
	cfg := config.Default()

	varyingIf := func(inner ast.Stmt) ast.Stmt {
		return ast.NewIfStmt(cfg, lessThan(varyingIntSym("v"), 4), inner, nil, false, testPos(2))
	}
	uniformIf := func(inner ast.Stmt) ast.Stmt {
		return ast.NewIfStmt(cfg, lessThan(uniformIntSym("u"), 4), inner, nil, false, testPos(2))
	}

	tests := []struct {
		name string
		body ast.Stmt
		want bool
	}{
		{
			"break under varying if",
			varyingIf(ast.NewBreakStmt(cfg, false, testPos(3))),
			true,
		},
		{
			"continue under varying if",
			varyingIf(ast.NewContinueStmt(cfg, false, testPos(3))),
			true,
		},
		{
			"break under uniform if",
			uniformIf(ast.NewBreakStmt(cfg, false, testPos(3))),
			false,
		},
		{
			"bare break",
			ast.NewBreakStmt(cfg, false, testPos(2)),
			false,
		},
		{
			"break in false branch of varying if",
			ast.NewIfStmt(cfg, lessThan(varyingIntSym("v"), 4),
				nil, ast.NewBreakStmt(cfg, false, testPos(3)), false, testPos(2)),
			true,
		},
		{
			// The walk must not descend into nested loops: their breaks
			// target the nested loop, not this one.
			"break inside nested for loop",
			varyingIf(ast.NewForStmt(cfg, nil, lessThan(uniformIntSym("i"), 4), nil,
				ast.NewBreakStmt(cfg, false, testPos(4)), false, testPos(3))),
			false,
		},
		{
			"break inside nested do loop",
			varyingIf(ast.NewDoStmt(cfg, lessThan(uniformIntSym("i"), 4),
				ast.NewBreakStmt(cfg, false, testPos(4)), false, testPos(3))),
			false,
		},
		{
			"varying if nested under uniform if",
			uniformIf(varyingIf(ast.NewBreakStmt(cfg, false, testPos(4)))),
			true,
		},
		{
			"plain assignment",
			assign(testSym("x", types.VaryingInt32), 0),
			false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := NewWalker(cfg)
			body := w.TypeCheckStmt(ast.NewStmtList([]ast.Stmt{tc.body}, testPos(1)))
			if got := HasVaryingBreakOrContinue(body); got != tc.want {
				t.Errorf("HasVaryingBreakOrContinue = %v; want %v", got, tc.want)
			}
		})
	}
}
