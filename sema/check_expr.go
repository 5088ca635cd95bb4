package sema

import (
	"spmdc/ast"
	"spmdc/report"
	"spmdc/types"
)

// TypeCheckExpr validates the expression and propagates types bottom-up.
// It returns the replacement expression, or nil on rejection.  This is the
// slice of the expression layer the statement core depends on; the full
// expression type system lives with the expression tree.
func (w *Walker) TypeCheckExpr(e ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}

	switch v := e.(type) {
	case *ast.ConstExpr, *ast.FunctionSymbolExpr, *ast.SyncExpr:
		return v

	case *ast.SymbolExpr:
		if v.Sym != nil {
			v.SetType(v.Sym.Type)
		}
		return v

	case *ast.UnaryExpr:
		v.Expr = w.TypeCheckExpr(v.Expr)
		if v.Expr == nil {
			return nil
		}
		opType := v.Expr.Type()
		if opType == nil {
			return v
		}
		if v.Op == ast.UnaryLogicalNot {
			at, ok := opType.(*types.AtomicType)
			if !ok || (!at.IsBoolType() && !at.IsNumericType()) {
				report.Error(v.Pos(), "Type \"%s\" can't be negated logically.", opType)
				return nil
			}
			v.SetType(boolTestType(opType.IsUniformType()))
		} else {
			v.SetType(opType)
		}
		return v

	case *ast.BinaryExpr:
		v.Arg0 = w.TypeCheckExpr(v.Arg0)
		v.Arg1 = w.TypeCheckExpr(v.Arg1)
		if v.Arg0 == nil || v.Arg1 == nil {
			return nil
		}
		t0, t1 := v.Arg0.Type(), v.Arg1.Type()
		if t0 == nil || t1 == nil {
			return v
		}

		varying := types.IsVaryingType(t0) || types.IsVaryingType(t1)
		if v.Op.IsComparison() {
			v.SetType(boolTestType(!varying))
			return v
		}

		a0, ok0 := t0.(*types.AtomicType)
		a1, ok1 := t1.(*types.AtomicType)
		if !ok0 || !ok1 || a0.Kind != a1.Kind {
			report.Error(v.Pos(), "Mismatched operand types \"%s\" and \"%s\" for binary operator.", t0, t1)
			return nil
		}
		if varying {
			v.SetType(a0.GetAsVaryingType())
		} else {
			v.SetType(a0.GetAsNonConstType())
		}
		return v

	case *ast.AssignExpr:
		v.LValue = w.TypeCheckExpr(v.LValue)
		v.RValue = w.TypeCheckExpr(v.RValue)
		if v.LValue == nil || v.RValue == nil {
			return nil
		}
		lt := v.LValue.Type()
		if lt != nil {
			if lt.IsConstType() {
				report.Error(v.Pos(), "Can't assign to a const-qualified lvalue.")
				return nil
			}
			if !types.Equal(types.ReferenceTarget(lt), v.RValue.Type()) {
				v.RValue = w.typeConvert(v.RValue, types.ReferenceTarget(lt), "assignment")
				if v.RValue == nil {
					return nil
				}
			}
			v.SetType(lt)
		}
		return v

	case *ast.SelectExpr:
		v.Test = w.TypeCheckExpr(v.Test)
		v.Expr1 = w.TypeCheckExpr(v.Expr1)
		v.Expr2 = w.TypeCheckExpr(v.Expr2)
		if v.Test == nil || v.Expr1 == nil || v.Expr2 == nil {
			return nil
		}
		if tt := v.Test.Type(); tt != nil {
			v.Test = castTestTo(boolTestType(tt.IsUniformType()), v.Test)
		}
		if t1, ok := v.Expr1.Type().(*types.AtomicType); ok {
			if types.IsVaryingType(v.Test.Type()) {
				v.SetType(t1.GetAsVaryingType())
			} else {
				v.SetType(t1)
			}
		}
		return v

	case *ast.ExprList:
		for i, sub := range v.Exprs {
			v.Exprs[i] = w.TypeCheckExpr(sub)
		}
		return v

	case *ast.FunctionCallExpr:
		v.Func = w.TypeCheckExpr(v.Func)
		if v.Args != nil {
			for i, arg := range v.Args.Exprs {
				v.Args.Exprs[i] = w.TypeCheckExpr(arg)
			}
		}
		return v

	case *ast.IndexExpr:
		v.ArrayOrVector = w.TypeCheckExpr(v.ArrayOrVector)
		v.Index = w.TypeCheckExpr(v.Index)
		if v.ArrayOrVector == nil || v.Index == nil {
			return nil
		}
		baseType := types.ReferenceTarget(v.ArrayOrVector.Type())
		seq, ok := baseType.(types.SequentialType)
		if !ok {
			report.Error(v.Pos(), "Type \"%s\" can't be indexed.", v.ArrayOrVector.Type())
			return nil
		}
		elem := seq.BaseType()
		if at, isAtomic := elem.(*types.AtomicType); isAtomic && types.IsVaryingType(v.Index.Type()) {
			v.SetType(at.GetAsVaryingType())
		} else {
			v.SetType(elem)
		}
		return v

	case *ast.MemberExpr:
		v.Expr = w.TypeCheckExpr(v.Expr)
		if v.Expr == nil {
			return nil
		}
		st, ok := types.ReferenceTarget(v.Expr.Type()).(*types.StructType)
		if !ok {
			report.Error(v.Pos(), "Member operator \".\" applied to non-struct type \"%s\".", v.Expr.Type())
			return nil
		}
		idx := st.MemberIndex(v.Member)
		if idx < 0 {
			report.Error(v.Pos(), "Struct \"%s\" has no member named \"%s\".", st, v.Member)
			return nil
		}
		v.SetType(st.ElementType(idx))
		return v

	case *ast.TypeCastExpr:
		v.Expr = w.TypeCheckExpr(v.Expr)
		if v.Expr == nil {
			return nil
		}
		return v

	case *ast.ReferenceExpr:
		v.Expr = w.TypeCheckExpr(v.Expr)
		if v.Expr == nil {
			return nil
		}
		if ot := v.Expr.Type(); ot != nil {
			v.SetType(&types.ReferenceType{Target: ot})
		}
		return v

	case *ast.DereferenceExpr:
		v.Expr = w.TypeCheckExpr(v.Expr)
		if v.Expr == nil {
			return nil
		}
		if rt, ok := v.Expr.Type().(*types.ReferenceType); ok {
			v.SetType(rt.Target)
		} else {
			report.Error(v.Pos(), "Can't dereference non-reference type \"%s\".", v.Expr.Type())
			return nil
		}
		return v
	}

	report.ICE("unexpected expression variant %T in TypeCheckExpr()", e)
	return nil
}

// typeConvert wraps expr in a conversion to toType, diagnosing conversions
// that can't be performed.  errorContext names the construct requesting the
// conversion for the diagnostic.
func (w *Walker) typeConvert(expr ast.Expr, toType types.Type, errorContext string) ast.Expr {
	fromType := expr.Type()
	if fromType == nil {
		return expr
	}
	if types.Equal(fromType, toType) {
		return expr
	}

	// Conversions between scalar flavors; a varying value can never be
	// demoted to uniform.
	toNonConst := toType
	if at, ok := toType.(*types.AtomicType); ok {
		toNonConst = at.GetAsNonConstType()
	}
	if types.IsVaryingType(fromType) && toType.IsUniformType() {
		report.Error(expr.Pos(), "Can't convert from varying type \"%s\" to uniform type \"%s\" for %s.", fromType, toType, errorContext)
		return nil
	}

	switch fromType.(type) {
	case *types.AtomicType, *types.EnumType:
		switch toType.(type) {
		case *types.AtomicType, *types.EnumType:
			if types.Equal(fromType, toNonConst) {
				return expr
			}
			return ast.NewTypeCastExpr(toNonConst, expr, expr.Pos())
		}
	}

	report.Error(expr.Pos(), "Can't convert type \"%s\" to \"%s\" for %s.", fromType, toType, errorContext)
	return nil
}
