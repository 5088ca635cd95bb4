package sema

import (
	"spmdc/ast"
	"spmdc/report"
	"spmdc/types"
)

// SafeToRunWithAllLanesOff conservatively determines whether emitting the
// statement's code unconditionally is free of observable effect or
// undefined behavior when every lane of the mask is off.  It gates the
// predicated straight-line lowering of cheap varying ifs.
//
// The matching is exhaustive over the statement variants; an unknown
// variant is an internal error rather than a silent "unsafe", which would
// both hide bugs and pessimize generated code.
func SafeToRunWithAllLanesOff(stmt ast.Stmt) bool {
	if stmt == nil {
		return true
	}

	switch v := stmt.(type) {
	case *ast.ExprStmt:
		return safeExprAllLanesOff(v.Expr)

	case *ast.DeclStmt:
		for i := range v.Vars {
			if v.Vars[i].Init != nil && !safeExprAllLanesOff(v.Vars[i].Init) {
				return false
			}
		}
		return true

	case *ast.IfStmt:
		return safeExprAllLanesOff(v.Test) &&
			SafeToRunWithAllLanesOff(v.TrueStmts) &&
			SafeToRunWithAllLanesOff(v.FalseStmts)

	case *ast.DoStmt:
		return safeExprAllLanesOff(v.TestExpr) &&
			SafeToRunWithAllLanesOff(v.BodyStmts)

	case *ast.ForStmt:
		return SafeToRunWithAllLanesOff(v.Init) &&
			(v.Test == nil || safeExprAllLanesOff(v.Test)) &&
			SafeToRunWithAllLanesOff(v.Step) &&
			SafeToRunWithAllLanesOff(v.Stmts)

	case *ast.BreakStmt, *ast.ContinueStmt:
		return true

	case *ast.ReturnStmt:
		if v.Val == nil {
			return true
		}
		return safeExprAllLanesOff(v.Val)

	case *ast.StmtList:
		for _, s := range v.Stmts {
			if !SafeToRunWithAllLanesOff(s) {
				return false
			}
		}
		return true

	case *ast.PrintStmt:
		return safeExprAllLanesOff(v.Values)

	case *ast.AssertStmt:
		// Checking an assert with all lanes off would report spurious
		// failures, for uniform predicates especially.
		return false
	}

	report.ICE("unexpected statement variant %T in SafeToRunWithAllLanesOff()", stmt)
	return false
}

// safeExprAllLanesOff is the expression half of the analysis.
func safeExprAllLanesOff(expr ast.Expr) bool {
	if expr == nil {
		return false
	}

	switch v := expr.(type) {
	case *ast.UnaryExpr:
		return safeExprAllLanesOff(v.Expr)

	case *ast.BinaryExpr:
		return safeExprAllLanesOff(v.Arg0) && safeExprAllLanesOff(v.Arg1)

	case *ast.AssignExpr:
		return safeExprAllLanesOff(v.LValue) && safeExprAllLanesOff(v.RValue)

	case *ast.SelectExpr:
		return safeExprAllLanesOff(v.Test) &&
			safeExprAllLanesOff(v.Expr1) &&
			safeExprAllLanesOff(v.Expr2)

	case *ast.ExprList:
		for _, sub := range v.Exprs {
			if !safeExprAllLanesOff(sub) {
				return false
			}
		}
		return true

	case *ast.FunctionCallExpr:
		// A call could be safe if the callee and all the arguments were,
		// but there is no effect information for functions here, so be
		// conservative.
		return false

	case *ast.IndexExpr:
		return safeIndexAllLanesOff(v)

	case *ast.MemberExpr:
		return safeExprAllLanesOff(v.Expr)

	case *ast.ConstExpr:
		return true

	case *ast.TypeCastExpr:
		return safeExprAllLanesOff(v.Expr)

	case *ast.ReferenceExpr:
		return safeExprAllLanesOff(v.Expr)

	case *ast.DereferenceExpr:
		return safeExprAllLanesOff(v.Expr)

	case *ast.SymbolExpr, *ast.FunctionSymbolExpr, *ast.SyncExpr:
		return true
	}

	report.ICE("unknown expression variant %T in safeExprAllLanesOff()", expr)
	return false
}

// safeIndexAllLanesOff accepts an index expression only when the indexed
// object has a statically known non-zero element count and every lane of a
// compile-time constant index vector is in bounds.  Anything less could
// fault under a blend-based conditional store with all lanes off.
func safeIndexAllLanesOff(ie *ast.IndexExpr) bool {
	if ie.ArrayOrVector == nil {
		return false
	}

	typ := ie.ArrayOrVector.Type()
	ce, isConst := ie.Index.(*ast.ConstExpr)
	if typ == nil || !isConst {
		return false
	}
	typ = types.ReferenceTarget(typ)

	seq, ok := typ.(types.SequentialType)
	if !ok {
		report.ICE("non-sequential type \"%s\" indexed in safeIndexAllLanesOff()", typ)
		return false
	}
	nElements := seq.ElementCount()
	if nElements == 0 {
		// Unsized array, so no bound to check against.
		return false
	}

	for _, idx := range ce.AsInt32() {
		if idx < 0 || idx >= int32(nElements) {
			return false
		}
	}
	return true
}
