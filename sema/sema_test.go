package sema

import (
	"testing"

	"spmdc/ast"
	"spmdc/common"
	"spmdc/report"
	"spmdc/types"
)

// Shared helpers for building statement trees in tests.

func testPos(line int) *report.TextPosition {
	return report.NewPosition("test.sp", line, 1)
}

func testSym(name string, typ types.Type) *common.Symbol {
	return &common.Symbol{Name: name, Type: typ, DefPos: testPos(1)}
}

func symRef(sym *common.Symbol) *ast.SymbolExpr {
	return ast.NewSymbolExpr(sym, testPos(1))
}

func uniformInt(v int64) *ast.ConstExpr {
	return ast.NewIntConst(types.UniformInt32, []int64{v}, testPos(1))
}

func varyingIntSym(name string) *ast.SymbolExpr {
	return symRef(testSym(name, types.VaryingInt32))
}

func uniformIntSym(name string) *ast.SymbolExpr {
	return symRef(testSym(name, types.UniformInt32))
}

// lessThan builds `x < v`.
func lessThan(x ast.Expr, v int64) *ast.BinaryExpr {
	return ast.NewBinaryExpr(ast.BinaryLt, x, uniformInt(v), testPos(1))
}

// assign builds `dst = v` as an expression statement.
func assign(dst *common.Symbol, v int64) *ast.ExprStmt {
	return ast.NewExprStmt(
		ast.NewAssignExpr(symRef(dst), uniformInt(v), testPos(2)), testPos(2))
}

// captureDiagnostics installs a capture sink for the duration of a test.
func captureDiagnostics(t *testing.T) *report.CaptureSink {
	t.Helper()
	cs := &report.CaptureSink{}
	old := report.SetSink(cs)
	report.Init(report.LogLevelWarn)
	t.Cleanup(func() {
		report.SetSink(old)
		report.Init(report.LogLevelWarn)
	})
	return cs
}
