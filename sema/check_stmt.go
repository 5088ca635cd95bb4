package sema

import (
	"spmdc/ast"
	"spmdc/report"
	"spmdc/types"
)

// TypeCheckStmt validates the statement and returns its replacement, or nil
// if the subtree was rejected.
func (w *Walker) TypeCheckStmt(s ast.Stmt) ast.Stmt {
	if s == nil {
		return nil
	}

	switch v := s.(type) {
	case *ast.ExprStmt:
		if v.Expr != nil {
			v.Expr = w.TypeCheckExpr(v.Expr)
		}
		return v

	case *ast.DeclStmt:
		return w.typeCheckDecl(v)

	case *ast.IfStmt:
		return w.typeCheckIf(v)

	case *ast.DoStmt:
		return w.typeCheckDo(v)

	case *ast.ForStmt:
		return w.typeCheckFor(v)

	case *ast.BreakStmt, *ast.ContinueStmt:
		return v

	case *ast.ReturnStmt:
		if v.Val != nil {
			v.Val = w.TypeCheckExpr(v.Val)
		}
		return v

	case *ast.StmtList:
		for i, stmt := range v.Stmts {
			if stmt != nil {
				v.Stmts[i] = w.TypeCheckStmt(stmt)
			}
		}
		return v

	case *ast.PrintStmt:
		if v.Values != nil {
			v.Values = w.TypeCheckExpr(v.Values)
		}
		return v

	case *ast.AssertStmt:
		return w.typeCheckAssert(v)
	}

	report.ICE("unexpected statement variant %T in TypeCheckStmt()", s)
	return nil
}

// typeCheckDecl checks the initializers of a declaration statement.  Scalar
// (atomic or enum) targets get their non-list initializers converted to the
// declared type here so the stored constant value carries the right type.
func (w *Walker) typeCheckDecl(ds *ast.DeclStmt) ast.Stmt {
	encounteredError := false
	for i := range ds.Vars {
		if ds.Vars[i].Sym == nil {
			encounteredError = true
			continue
		}

		if ds.Vars[i].Init == nil {
			continue
		}
		ds.Vars[i].Init = w.TypeCheckExpr(ds.Vars[i].Init)
		if ds.Vars[i].Init == nil {
			continue
		}

		typ := ds.Vars[i].Sym.Type
		switch typ.(type) {
		case *types.AtomicType, *types.EnumType:
			// A brace list over an atomic target is diagnosed at emit
			// time; leave it in place so it is in fact caught there.
			if _, isList := ds.Vars[i].Init.(*ast.ExprList); !isList {
				ds.Vars[i].Init = w.typeConvert(ds.Vars[i].Init, typ, "initializer")
				if ds.Vars[i].Init == nil {
					encounteredError = true
				}
			}
		}
	}

	if encounteredError {
		return nil
	}
	return ds
}

// typeCheckIf checks an if statement's test and branches.
func (w *Walker) typeCheckIf(is *ast.IfStmt) ast.Stmt {
	if is.Test != nil {
		is.Test = w.TypeCheckExpr(is.Test)
		if is.Test != nil {
			testType := is.Test.Type()
			if testType != nil {
				if !testType.IsNumericType() && !testType.IsBoolType() {
					report.Error(is.Test.Pos(), "Type \"%s\" can't be converted to boolean for \"if\" test.", testType)
					return nil
				}

				isUniform := testType.IsUniformType() && !w.cfg.Opt.DisableUniformControlFlow
				is.Test = castTestTo(boolTestType(isUniform), is.Test)
				is.DoAnyCheck = !isUniform
			}
		}
	}

	if is.TrueStmts != nil {
		is.TrueStmts = w.TypeCheckStmt(is.TrueStmts)
	}
	if is.FalseStmts != nil {
		is.FalseStmts = w.TypeCheckStmt(is.FalseStmts)
	}

	return is
}

// typeCheckDo checks a do loop.  The loop test can be uniform only if the
// test's type is uniform, uniform flow control is enabled, and the body has
// no break or continue reachable under varying control flow; otherwise the
// loop needs full mask management and the test is cast varying.
func (w *Walker) typeCheckDo(ds *ast.DoStmt) ast.Stmt {
	// The body is checked first: the varying break/continue analysis below
	// needs the types of the body's tests resolved.
	if ds.BodyStmts != nil {
		ds.BodyStmts = w.TypeCheckStmt(ds.BodyStmts)
	}

	if ds.TestExpr != nil {
		ds.TestExpr = w.TypeCheckExpr(ds.TestExpr)
		if ds.TestExpr != nil {
			testType := ds.TestExpr.Type()
			if testType != nil {
				if !testType.IsNumericType() && !testType.IsBoolType() {
					report.Error(ds.TestExpr.Pos(), "Type \"%s\" can't be converted to boolean for \"while\" test in \"do\" loop.", testType)
					return nil
				}

				uniformTest := testType.IsUniformType() &&
					!w.cfg.Opt.DisableUniformControlFlow &&
					!HasVaryingBreakOrContinue(ds.BodyStmts)
				ds.TestExpr = castTestTo(boolTestType(uniformTest), ds.TestExpr)
			}
		}
	}

	return ds
}

// typeCheckFor checks a for loop; same uniformity rule as do loops.
func (w *Walker) typeCheckFor(fs *ast.ForStmt) ast.Stmt {
	// Body before test, for the same reason as do loops.
	if fs.Init != nil {
		fs.Init = w.TypeCheckStmt(fs.Init)
	}
	if fs.Step != nil {
		fs.Step = w.TypeCheckStmt(fs.Step)
	}
	if fs.Stmts != nil {
		fs.Stmts = w.TypeCheckStmt(fs.Stmts)
	}

	if fs.Test != nil {
		fs.Test = w.TypeCheckExpr(fs.Test)
		if fs.Test != nil {
			testType := fs.Test.Type()
			if testType != nil {
				if !testType.IsNumericType() && !testType.IsBoolType() {
					report.Error(fs.Test.Pos(), "Type \"%s\" can't be converted to boolean for for loop test.", testType)
					return nil
				}

				uniformTest := testType.IsUniformType() &&
					!w.cfg.Opt.DisableUniformControlFlow &&
					!HasVaryingBreakOrContinue(fs.Stmts)
				fs.Test = castTestTo(boolTestType(uniformTest), fs.Test)
			}
		}
	}

	return fs
}

// typeCheckAssert converts the assert predicate to a boolean of the
// predicate's own variability.
func (w *Walker) typeCheckAssert(as *ast.AssertStmt) ast.Stmt {
	if as.Expr != nil {
		as.Expr = w.TypeCheckExpr(as.Expr)
	}
	if as.Expr != nil {
		typ := as.Expr.Type()
		if typ != nil {
			if !typ.IsNumericType() && !typ.IsBoolType() {
				report.Error(as.Expr.Pos(), "Type \"%s\" can't be converted to boolean for \"assert\".", typ)
				return nil
			}
			as.Expr = castTestTo(boolTestType(typ.IsUniformType()), as.Expr)
		}
	}
	return as
}
