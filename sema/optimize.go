package sema

import (
	"spmdc/ast"
	"spmdc/types"
)

// OptimizeStmt recursively folds the statement's children and returns the
// replacement.  For const-qualified declarations whose optimized
// initializer is a scalar constant of the declared type, the constant is
// cached on the symbol so later expressions over the symbol can fold too.
func (w *Walker) OptimizeStmt(s ast.Stmt) ast.Stmt {
	if s == nil {
		return nil
	}

	switch v := s.(type) {
	case *ast.ExprStmt:
		if v.Expr != nil {
			v.Expr = w.OptimizeExpr(v.Expr)
		}
		return v

	case *ast.DeclStmt:
		for i := range v.Vars {
			if v.Vars[i].Init == nil {
				continue
			}
			v.Vars[i].Init = w.OptimizeExpr(v.Vars[i].Init)
			init := v.Vars[i].Init

			// There are constant initializers that don't fold to a
			// ConstExpr (const arrays, for one); those still generate fine,
			// but the compiler can't reason about them as compile-time
			// constants later.
			sym := v.Vars[i].Sym
			if sym == nil || sym.Type == nil || !sym.Type.IsConstType() {
				continue
			}
			if ce, ok := init.(*ast.ConstExpr); ok && types.Equal(ce.Type(), nonConstOf(sym.Type)) {
				sym.ConstValue = ce
			}
		}
		return v

	case *ast.IfStmt:
		if v.Test != nil {
			v.Test = w.OptimizeExpr(v.Test)
		}
		if v.TrueStmts != nil {
			v.TrueStmts = w.OptimizeStmt(v.TrueStmts)
		}
		if v.FalseStmts != nil {
			v.FalseStmts = w.OptimizeStmt(v.FalseStmts)
		}
		return v

	case *ast.DoStmt:
		if v.TestExpr != nil {
			v.TestExpr = w.OptimizeExpr(v.TestExpr)
		}
		if v.BodyStmts != nil {
			v.BodyStmts = w.OptimizeStmt(v.BodyStmts)
		}
		return v

	case *ast.ForStmt:
		if v.Test != nil {
			v.Test = w.OptimizeExpr(v.Test)
		}
		if v.Init != nil {
			v.Init = w.OptimizeStmt(v.Init)
		}
		if v.Step != nil {
			v.Step = w.OptimizeStmt(v.Step)
		}
		if v.Stmts != nil {
			v.Stmts = w.OptimizeStmt(v.Stmts)
		}
		return v

	case *ast.BreakStmt, *ast.ContinueStmt:
		return v

	case *ast.ReturnStmt:
		if v.Val != nil {
			v.Val = w.OptimizeExpr(v.Val)
		}
		return v

	case *ast.StmtList:
		for i, stmt := range v.Stmts {
			if stmt != nil {
				v.Stmts[i] = w.OptimizeStmt(stmt)
			}
		}
		return v

	case *ast.PrintStmt:
		if v.Values != nil {
			v.Values = w.OptimizeExpr(v.Values)
		}
		return v

	case *ast.AssertStmt:
		if v.Expr != nil {
			v.Expr = w.OptimizeExpr(v.Expr)
		}
		return v
	}

	return s
}

// OptimizeExpr folds the expression's children and performs the constant
// folding the statement core relies on: casts, unary operators and binary
// operators over ConstExpr operands collapse to a new ConstExpr.
func (w *Walker) OptimizeExpr(e ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}

	switch v := e.(type) {
	case *ast.UnaryExpr:
		v.Expr = w.OptimizeExpr(v.Expr)
		return foldUnary(v)

	case *ast.BinaryExpr:
		v.Arg0 = w.OptimizeExpr(v.Arg0)
		v.Arg1 = w.OptimizeExpr(v.Arg1)
		return foldBinary(v)

	case *ast.AssignExpr:
		v.LValue = w.OptimizeExpr(v.LValue)
		v.RValue = w.OptimizeExpr(v.RValue)
		return v

	case *ast.SelectExpr:
		v.Test = w.OptimizeExpr(v.Test)
		v.Expr1 = w.OptimizeExpr(v.Expr1)
		v.Expr2 = w.OptimizeExpr(v.Expr2)
		return v

	case *ast.ExprList:
		for i, sub := range v.Exprs {
			v.Exprs[i] = w.OptimizeExpr(sub)
		}
		return v

	case *ast.FunctionCallExpr:
		if v.Args != nil {
			for i, arg := range v.Args.Exprs {
				v.Args.Exprs[i] = w.OptimizeExpr(arg)
			}
		}
		return v

	case *ast.IndexExpr:
		v.ArrayOrVector = w.OptimizeExpr(v.ArrayOrVector)
		v.Index = w.OptimizeExpr(v.Index)
		return v

	case *ast.MemberExpr:
		v.Expr = w.OptimizeExpr(v.Expr)
		return v

	case *ast.TypeCastExpr:
		v.Expr = w.OptimizeExpr(v.Expr)
		return foldCast(v)

	case *ast.ReferenceExpr:
		v.Expr = w.OptimizeExpr(v.Expr)
		return v

	case *ast.DereferenceExpr:
		v.Expr = w.OptimizeExpr(v.Expr)
		return v

	case *ast.SymbolExpr:
		// A const symbol with a cached constant value folds to it.
		if v.Sym != nil {
			if ce, ok := v.Sym.ConstValue.(*ast.ConstExpr); ok {
				return ce
			}
		}
		return v
	}

	return e
}

// nonConstOf strips a const qualifier from scalar types; conversions
// produce unqualified values, so constant caching compares against the
// unqualified declared type.
func nonConstOf(t types.Type) types.Type {
	if at, ok := t.(*types.AtomicType); ok {
		return at.GetAsNonConstType()
	}
	return t
}

// foldCast collapses a cast of a constant between atomic types.
func foldCast(tc *ast.TypeCastExpr) ast.Expr {
	ce, ok := tc.Expr.(*ast.ConstExpr)
	if !ok {
		return tc
	}
	target, ok := tc.Type().(*types.AtomicType)
	if !ok {
		return tc
	}
	if _, ok := ce.Type().(*types.AtomicType); !ok {
		return tc
	}

	if folded := ce.ConvertTo(target); folded != nil {
		return folded
	}
	return tc
}

// foldUnary collapses negation and logical not over a constant.
func foldUnary(ue *ast.UnaryExpr) ast.Expr {
	ce, ok := ue.Expr.(*ast.ConstExpr)
	if !ok {
		return ue
	}

	switch ue.Op {
	case ast.UnaryNegate:
		if ce.IntVals != nil {
			vals := make([]int64, len(ce.IntVals))
			for i, x := range ce.IntVals {
				vals[i] = -x
			}
			return ast.NewIntConst(ce.Type(), vals, ue.Pos())
		}
		if ce.FloatVals != nil {
			vals := make([]float64, len(ce.FloatVals))
			for i, x := range ce.FloatVals {
				vals[i] = -x
			}
			return ast.NewFloatConst(ce.Type(), vals, ue.Pos())
		}
	case ast.UnaryLogicalNot:
		if ce.BoolVals != nil {
			vals := make([]bool, len(ce.BoolVals))
			for i, x := range ce.BoolVals {
				vals[i] = !x
			}
			return ast.NewBoolConst(ce.Type(), vals, ue.Pos())
		}
	}
	return ue
}

// foldBinary collapses integer and float arithmetic and comparisons over
// two constants of the same kind and lane count.
func foldBinary(be *ast.BinaryExpr) ast.Expr {
	c0, ok0 := be.Arg0.(*ast.ConstExpr)
	c1, ok1 := be.Arg1.(*ast.ConstExpr)
	if !ok0 || !ok1 || c0.Count() != c1.Count() {
		return be
	}

	n := c0.Count()
	if be.Op.IsComparison() {
		vals := make([]bool, n)
		for i := 0; i < n; i++ {
			vals[i] = compareLanes(be.Op, c0, c1, i)
		}
		return ast.NewBoolConst(be.Type(), vals, be.Pos())
	}

	if c0.IntVals != nil && c1.IntVals != nil {
		vals := make([]int64, n)
		for i := 0; i < n; i++ {
			v, ok := intArith(be.Op, c0.IntVals[i], c1.IntVals[i])
			if !ok {
				return be
			}
			vals[i] = v
		}
		return ast.NewIntConst(be.Type(), vals, be.Pos())
	}

	if c0.FloatVals != nil && c1.FloatVals != nil {
		vals := make([]float64, n)
		for i := 0; i < n; i++ {
			v, ok := floatArith(be.Op, c0.FloatVals[i], c1.FloatVals[i])
			if !ok {
				return be
			}
			vals[i] = v
		}
		return ast.NewFloatConst(be.Type(), vals, be.Pos())
	}

	return be
}

func intArith(op ast.BinaryOp, a, b int64) (int64, bool) {
	switch op {
	case ast.BinaryAdd:
		return a + b, true
	case ast.BinarySub:
		return a - b, true
	case ast.BinaryMul:
		return a * b, true
	case ast.BinaryDiv:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case ast.BinaryMod:
		if b == 0 {
			return 0, false
		}
		return a % b, true
	case ast.BinaryShl:
		return a << uint64(b), true
	case ast.BinaryShr:
		return a >> uint64(b), true
	case ast.BinaryAnd:
		return a & b, true
	case ast.BinaryOr:
		return a | b, true
	case ast.BinaryXor:
		return a ^ b, true
	}
	return 0, false
}

func floatArith(op ast.BinaryOp, a, b float64) (float64, bool) {
	switch op {
	case ast.BinaryAdd:
		return a + b, true
	case ast.BinarySub:
		return a - b, true
	case ast.BinaryMul:
		return a * b, true
	case ast.BinaryDiv:
		return a / b, true
	}
	return 0, false
}

func compareLanes(op ast.BinaryOp, c0, c1 *ast.ConstExpr, i int) bool {
	switch op {
	case ast.BinaryLogicalAnd:
		return constLaneTruth(c0, i) && constLaneTruth(c1, i)
	case ast.BinaryLogicalOr:
		return constLaneTruth(c0, i) || constLaneTruth(c1, i)
	}

	a, b := constLaneFloat(c0, i), constLaneFloat(c1, i)
	switch op {
	case ast.BinaryLt:
		return a < b
	case ast.BinaryGt:
		return a > b
	case ast.BinaryLe:
		return a <= b
	case ast.BinaryGe:
		return a >= b
	case ast.BinaryEq:
		return a == b
	default:
		return a != b
	}
}

func constLaneTruth(ce *ast.ConstExpr, i int) bool {
	switch {
	case ce.BoolVals != nil:
		return ce.BoolVals[i]
	case ce.IntVals != nil:
		return ce.IntVals[i] != 0
	default:
		return ce.FloatVals[i] != 0
	}
}

func constLaneFloat(ce *ast.ConstExpr, i int) float64 {
	switch {
	case ce.BoolVals != nil:
		if ce.BoolVals[i] {
			return 1
		}
		return 0
	case ce.IntVals != nil:
		return float64(ce.IntVals[i])
	default:
		return ce.FloatVals[i]
	}
}
