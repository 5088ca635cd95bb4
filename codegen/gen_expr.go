package codegen

import (
	"spmdc/ast"
	"spmdc/report"
	"spmdc/types"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// atomicOf views a type as an atomic for value conversion purposes; enums
// convert as int32 of their variability.
func atomicOf(t types.Type) *types.AtomicType {
	switch v := t.(type) {
	case *types.AtomicType:
		return v.GetAsNonConstType()
	case *types.EnumType:
		if v.IsUniformType() {
			return types.UniformInt32
		}
		return types.VaryingInt32
	}
	return nil
}

// genExpr emits code to evaluate the expression and returns its value, or
// nil if evaluation failed or the current block is terminated.
func (g *Generator) genExpr(ctx *FunctionEmitContext, e ast.Expr) value.Value {
	if e == nil || ctx.CurrentBasicBlock() == nil {
		return nil
	}

	switch v := e.(type) {
	case *ast.ConstExpr:
		return g.constantValue(v)

	case *ast.SymbolExpr:
		if v.Sym == nil || v.Sym.StoragePtr == nil {
			return nil
		}
		return ctx.LoadInst(g.convType(v.Sym.Type), v.Sym.StoragePtr)

	case *ast.UnaryExpr:
		return g.genUnary(ctx, v)

	case *ast.BinaryExpr:
		return g.genBinary(ctx, v)

	case *ast.AssignExpr:
		return g.genAssign(ctx, v)

	case *ast.SelectExpr:
		test := g.genExpr(ctx, v.Test)
		v1 := g.genExpr(ctx, v.Expr1)
		v2 := g.genExpr(ctx, v.Expr2)
		if test == nil || v1 == nil || v2 == nil {
			return nil
		}
		v1 = g.convertValue(ctx, v1, v.Expr1.Type(), v.Type())
		v2 = g.convertValue(ctx, v2, v.Expr2.Type(), v.Type())
		return ctx.bblock.NewSelect(test, v1, v2)

	case *ast.TypeCastExpr:
		inner := g.genExpr(ctx, v.Expr)
		if inner == nil {
			return nil
		}
		return g.convertValue(ctx, inner, v.Expr.Type(), v.Type())

	case *ast.IndexExpr:
		return g.genIndexLoad(ctx, v)

	case *ast.MemberExpr:
		ptr, elemType := g.genLValuePtr(ctx, v)
		if ptr == nil {
			return nil
		}
		return ctx.LoadInst(elemType, ptr)

	case *ast.ReferenceExpr:
		ptr, _ := g.genLValuePtr(ctx, v.Expr)
		return ptr

	case *ast.DereferenceExpr:
		ptr := g.genExpr(ctx, v.Expr)
		if ptr == nil {
			return nil
		}
		return ctx.LoadInst(g.convType(v.Type()), ptr)

	case *ast.FunctionCallExpr:
		return g.genCall(ctx, v)

	case *ast.SyncExpr:
		ctx.CallInst(g.syncFunc, ctx.LaneMask(ctx.GetFullMask()))
		return nil

	case *ast.FunctionSymbolExpr:
		report.Error(v.Pos(), "Function \"%s\" can't be used as a value.", v.Name)
		return nil

	case *ast.ExprList:
		report.ICE("expression list evaluated outside of initializer or print context")
		return nil
	}

	report.ICE("unexpected expression variant %T in genExpr()", e)
	return nil
}

// constantValue converts a ConstExpr to an LLVM constant of its type.
func (g *Generator) constantValue(ce *ast.ConstExpr) constant.Constant {
	at := atomicOf(ce.Type())
	if at == nil {
		report.ICE("non-atomic constant of type \"%s\"", ce.Type())
	}
	scalar := convScalarType(at.Kind)

	lane := func(i int) constant.Constant {
		switch {
		case ce.BoolVals != nil:
			return constant.NewBool(ce.BoolVals[i])
		case ce.IntVals != nil:
			return constant.NewInt(scalar.(*lltypes.IntType), ce.IntVals[i])
		default:
			return constant.NewFloat(scalar.(*lltypes.FloatType), ce.FloatVals[i])
		}
	}

	if at.IsUniformType() {
		return lane(0)
	}

	width := g.cfg.Target.VectorWidth
	elems := make([]constant.Constant, width)
	for i := range elems {
		elems[i] = lane(i % ce.Count())
	}
	return constant.NewVector(lltypes.NewVector(uint64(width), scalar), elems...)
}

// GetConstant returns the compile-time constant value of expr converted to
// the given type, or nil if the expression is not a compile-time constant.
// Brace lists of constants satisfy aggregate types recursively.
func (g *Generator) GetConstant(expr ast.Expr, typ types.Type) constant.Constant {
	switch v := expr.(type) {
	case *ast.ConstExpr:
		at := atomicOf(typ)
		if at == nil {
			return nil
		}
		folded := v.ConvertTo(at)
		if folded == nil {
			return nil
		}
		return g.constantValue(folded)

	case *ast.ExprList:
		ct, ok := typ.(types.CollectionType)
		if !ok || ct.ElementCount() != len(v.Exprs) {
			return nil
		}
		elems := make([]constant.Constant, len(v.Exprs))
		for i, sub := range v.Exprs {
			elems[i] = g.GetConstant(sub, ct.ElementType(i))
			if elems[i] == nil {
				return nil
			}
		}
		switch llt := g.convType(typ).(type) {
		case *lltypes.ArrayType:
			return constant.NewArray(llt, elems...)
		case *lltypes.VectorType:
			return constant.NewVector(llt, elems...)
		case *lltypes.StructType:
			return constant.NewStruct(llt, elems...)
		}
		return nil
	}

	return nil
}

// -----------------------------------------------------------------------------
// Operators

func (g *Generator) genUnary(ctx *FunctionEmitContext, ue *ast.UnaryExpr) value.Value {
	if ue.Op == ast.UnaryPreInc || ue.Op == ast.UnaryPreDec {
		return g.genPreIncDec(ctx, ue)
	}

	operand := g.genExpr(ctx, ue.Expr)
	if operand == nil {
		return nil
	}
	at := atomicOf(ue.Expr.Type())
	llt := g.convType(ue.Type())

	switch ue.Op {
	case ast.UnaryNegate:
		if at != nil && at.IsFloatType() {
			return ctx.bblock.NewFNeg(operand)
		}
		return ctx.bblock.NewSub(zeroValue(llt), operand)

	case ast.UnaryLogicalNot:
		boolVal := g.convertValue(ctx, operand, ue.Expr.Type(), ue.Type())
		return ctx.bblock.NewXor(boolVal, g.allOnesOf(g.convType(ue.Type())))

	case ast.UnaryBitNot:
		return ctx.bblock.NewXor(operand, g.allOnesOf(llt))
	}

	report.ICE("unexpected unary operator %d in genUnary()", ue.Op)
	return nil
}

// genPreIncDec loads, adjusts and stores back through the operand's
// storage, yielding the updated value.
func (g *Generator) genPreIncDec(ctx *FunctionEmitContext, ue *ast.UnaryExpr) value.Value {
	ptr, elemType := g.genLValuePtr(ctx, ue.Expr)
	if ptr == nil {
		return nil
	}

	old := ctx.LoadInst(elemType, ptr)
	at := atomicOf(ue.Expr.Type())

	var updated value.Value
	one := g.oneOf(elemType, at)
	if at != nil && at.IsFloatType() {
		if ue.Op == ast.UnaryPreInc {
			updated = ctx.bblock.NewFAdd(old, one)
		} else {
			updated = ctx.bblock.NewFSub(old, one)
		}
	} else {
		if ue.Op == ast.UnaryPreInc {
			updated = ctx.bblock.NewAdd(old, one)
		} else {
			updated = ctx.bblock.NewSub(old, one)
		}
	}

	g.maskedStore(ctx, updated, ptr, elemType)
	return updated
}

func (g *Generator) genBinary(ctx *FunctionEmitContext, be *ast.BinaryExpr) value.Value {
	v0 := g.genExpr(ctx, be.Arg0)
	v1 := g.genExpr(ctx, be.Arg1)
	if v0 == nil || v1 == nil {
		return nil
	}

	t0, t1 := be.Arg0.Type(), be.Arg1.Type()
	a0, a1 := atomicOf(t0), atomicOf(t1)
	if a0 == nil || a1 == nil {
		report.Error(be.Pos(), "Binary operator applied to non-atomic operands.")
		return nil
	}

	// Promote both operands to a common flavor before applying the
	// operation: varying wins, and comparisons work on the operands'
	// common kind rather than the boolean result kind.
	common := a0
	if types.IsVaryingType(t0) || types.IsVaryingType(t1) {
		common = a0.GetAsVaryingType()
	}
	v0 = g.convertValue(ctx, v0, t0, common)
	v1 = g.convertValue(ctx, v1, t1, common)

	if be.Op.IsComparison() {
		return g.genComparison(ctx, be.Op, v0, v1, common)
	}

	isFloat := common.IsFloatType()
	isUnsigned := common.IsUnsignedType()

	switch be.Op {
	case ast.BinaryAdd:
		if isFloat {
			return ctx.bblock.NewFAdd(v0, v1)
		}
		return ctx.bblock.NewAdd(v0, v1)
	case ast.BinarySub:
		if isFloat {
			return ctx.bblock.NewFSub(v0, v1)
		}
		return ctx.bblock.NewSub(v0, v1)
	case ast.BinaryMul:
		if isFloat {
			return ctx.bblock.NewFMul(v0, v1)
		}
		return ctx.bblock.NewMul(v0, v1)
	case ast.BinaryDiv:
		if isFloat {
			return ctx.bblock.NewFDiv(v0, v1)
		}
		if isUnsigned {
			return ctx.bblock.NewUDiv(v0, v1)
		}
		return ctx.bblock.NewSDiv(v0, v1)
	case ast.BinaryMod:
		if isUnsigned {
			return ctx.bblock.NewURem(v0, v1)
		}
		return ctx.bblock.NewSRem(v0, v1)
	case ast.BinaryShl:
		return ctx.bblock.NewShl(v0, v1)
	case ast.BinaryShr:
		if isUnsigned {
			return ctx.bblock.NewLShr(v0, v1)
		}
		return ctx.bblock.NewAShr(v0, v1)
	case ast.BinaryAnd:
		return ctx.bblock.NewAnd(v0, v1)
	case ast.BinaryOr:
		return ctx.bblock.NewOr(v0, v1)
	case ast.BinaryXor:
		return ctx.bblock.NewXor(v0, v1)
	}

	report.ICE("unexpected binary operator %d in genBinary()", be.Op)
	return nil
}

func (g *Generator) genComparison(ctx *FunctionEmitContext, op ast.BinaryOp, v0, v1 value.Value, operandType *types.AtomicType) value.Value {
	switch op {
	case ast.BinaryLogicalAnd:
		return ctx.bblock.NewAnd(v0, v1)
	case ast.BinaryLogicalOr:
		return ctx.bblock.NewOr(v0, v1)
	}

	if operandType.IsFloatType() {
		var pred enum.FPred
		switch op {
		case ast.BinaryLt:
			pred = enum.FPredOLT
		case ast.BinaryGt:
			pred = enum.FPredOGT
		case ast.BinaryLe:
			pred = enum.FPredOLE
		case ast.BinaryGe:
			pred = enum.FPredOGE
		case ast.BinaryEq:
			pred = enum.FPredOEQ
		default:
			pred = enum.FPredONE
		}
		return ctx.bblock.NewFCmp(pred, v0, v1)
	}

	unsigned := operandType.IsUnsignedType() || operandType.IsBoolType()
	var pred enum.IPred
	switch op {
	case ast.BinaryLt:
		if unsigned {
			pred = enum.IPredULT
		} else {
			pred = enum.IPredSLT
		}
	case ast.BinaryGt:
		if unsigned {
			pred = enum.IPredUGT
		} else {
			pred = enum.IPredSGT
		}
	case ast.BinaryLe:
		if unsigned {
			pred = enum.IPredULE
		} else {
			pred = enum.IPredSLE
		}
	case ast.BinaryGe:
		if unsigned {
			pred = enum.IPredUGE
		} else {
			pred = enum.IPredSGE
		}
	case ast.BinaryEq:
		pred = enum.IPredEQ
	default:
		pred = enum.IPredNE
	}
	return ctx.bblock.NewICmp(pred, v0, v1)
}

// -----------------------------------------------------------------------------
// Assignment and lvalues

func (g *Generator) genAssign(ctx *FunctionEmitContext, ae *ast.AssignExpr) value.Value {
	rv := g.genExpr(ctx, ae.RValue)
	if rv == nil {
		return nil
	}

	targetType := types.ReferenceTarget(ae.LValue.Type())
	rv = g.convertValue(ctx, rv, ae.RValue.Type(), targetType)

	// Varying-index stores scatter rather than going through a single
	// element pointer.
	if ie, ok := ae.LValue.(*ast.IndexExpr); ok && types.IsVaryingType(ie.Index.Type()) {
		g.genScatter(ctx, ie, rv)
		return rv
	}

	ptr, elemType := g.genLValuePtr(ctx, ae.LValue)
	if ptr == nil {
		return nil
	}
	g.maskedStore(ctx, rv, ptr, elemType)
	return rv
}

// maskedStore stores val through ptr, blending with the previous contents
// when the store is a varying value under partial control flow.  Blend
// based conditional assignment is exactly the reason the all-lanes-off
// safety analysis exists: the load it does must be known in bounds.
func (g *Generator) maskedStore(ctx *FunctionEmitContext, val value.Value, ptr value.Value, elemType lltypes.Type) {
	if ctx.CurrentBasicBlock() == nil {
		return
	}

	_, isVec := elemType.(*lltypes.VectorType)
	mask := ctx.GetFullMask()
	if !isVec || mask == value.Value(ctx.maskAllOn) {
		ctx.StoreInst(val, ptr)
		return
	}

	old := ctx.LoadInst(elemType, ptr)
	blended := ctx.bblock.NewSelect(mask, val, old)
	ctx.StoreInst(blended, ptr)
}

// genLValuePtr returns a pointer to the storage an expression denotes,
// along with the pointed-to LLVM type.
func (g *Generator) genLValuePtr(ctx *FunctionEmitContext, e ast.Expr) (value.Value, lltypes.Type) {
	switch v := e.(type) {
	case *ast.SymbolExpr:
		if v.Sym == nil || v.Sym.StoragePtr == nil {
			return nil, nil
		}
		if rt, ok := v.Sym.Type.(*types.ReferenceType); ok {
			// Reference variables store the referred-to pointer; assigning
			// through one targets the referent.
			targetLL := g.convType(rt.Target)
			ptr := ctx.LoadInst(lltypes.NewPointer(targetLL), v.Sym.StoragePtr)
			return ptr, targetLL
		}
		return v.Sym.StoragePtr, g.convType(v.Sym.Type)

	case *ast.IndexExpr:
		basePtr, baseLL := g.genLValuePtr(ctx, v.ArrayOrVector)
		if basePtr == nil {
			return nil, nil
		}
		idx := g.genExpr(ctx, v.Index)
		if idx == nil {
			return nil, nil
		}
		if ctx.CurrentBasicBlock() == nil {
			return nil, nil
		}
		elemLL := elementLLType(baseLL)
		ptr := ctx.bblock.NewGetElementPtr(baseLL, basePtr, constant.NewInt(lltypes.I32, 0), idx)
		return ptr, elemLL

	case *ast.MemberExpr:
		basePtr, baseLL := g.genLValuePtr(ctx, v.Expr)
		if basePtr == nil {
			return nil, nil
		}
		st, ok := types.ReferenceTarget(v.Expr.Type()).(*types.StructType)
		if !ok {
			return nil, nil
		}
		idx := st.MemberIndex(v.Member)
		if idx < 0 {
			return nil, nil
		}
		ptr := ctx.GetElementPtrInst(baseLL, basePtr, 0, int64(idx))
		return ptr, g.convType(st.ElementType(idx))

	case *ast.DereferenceExpr:
		ptr := g.genExpr(ctx, v.Expr)
		return ptr, g.convType(v.Type())

	case *ast.ReferenceExpr:
		return g.genLValuePtr(ctx, v.Expr)
	}

	report.Error(e.Pos(), "Expression can't be assigned to.")
	return nil, nil
}

// elementLLType returns the element type of an LLVM array or vector type.
func elementLLType(t lltypes.Type) lltypes.Type {
	switch v := t.(type) {
	case *lltypes.ArrayType:
		return v.ElemType
	case *lltypes.VectorType:
		return v.ElemType
	}
	return t
}

// -----------------------------------------------------------------------------
// Gather and scatter for varying indices

// genIndexLoad loads from an indexed array or vector; a varying index
// becomes a gather.
func (g *Generator) genIndexLoad(ctx *FunctionEmitContext, ie *ast.IndexExpr) value.Value {
	if !types.IsVaryingType(ie.Index.Type()) {
		ptr, elemType := g.genLValuePtr(ctx, ie)
		if ptr == nil {
			return nil
		}
		return ctx.LoadInst(elemType, ptr)
	}

	basePtr, _ := g.genLValuePtr(ctx, ie.ArrayOrVector)
	idx := g.genExpr(ctx, ie.Index)
	if basePtr == nil || idx == nil || ctx.CurrentBasicBlock() == nil {
		return nil
	}

	seq, _ := types.ReferenceTarget(ie.ArrayOrVector.Type()).(types.SequentialType)
	var elemAtomic *types.AtomicType
	if seq != nil {
		elemAtomic = atomicOf(seq.BaseType())
	}
	if elemAtomic == nil || elemAtomic.BitWidth() != 32 {
		report.Error(ie.Pos(), "Gather requires a 32-bit element type.")
		return nil
	}

	base := ctx.BitCastInst(basePtr, lltypes.I8Ptr)
	raw := ctx.CallInst(g.gatherFunc, base, g.byteOffsets(ctx, idx), ctx.GetFullMask())

	resultLL := g.convType(ie.Type())
	if _, isInt := resultLL.(*lltypes.VectorType).ElemType.(*lltypes.IntType); isInt {
		return raw
	}
	return ctx.BitCastInst(raw, resultLL)
}

// genScatter stores a varying value through a varying index vector.
func (g *Generator) genScatter(ctx *FunctionEmitContext, ie *ast.IndexExpr, val value.Value) {
	basePtr, _ := g.genLValuePtr(ctx, ie.ArrayOrVector)
	idx := g.genExpr(ctx, ie.Index)
	if basePtr == nil || idx == nil || ctx.CurrentBasicBlock() == nil {
		return
	}

	seq, _ := types.ReferenceTarget(ie.ArrayOrVector.Type()).(types.SequentialType)
	var elemAtomic *types.AtomicType
	if seq != nil {
		elemAtomic = atomicOf(seq.BaseType())
	}
	if elemAtomic == nil || elemAtomic.BitWidth() != 32 {
		report.Error(ie.Pos(), "Scatter requires a 32-bit element type.")
		return
	}

	i32vec := lltypes.NewVector(uint64(g.cfg.Target.VectorWidth), lltypes.I32)
	if !val.Type().Equal(i32vec) {
		val = ctx.BitCastInst(val, i32vec)
	}

	base := ctx.BitCastInst(basePtr, lltypes.I8Ptr)
	ctx.CallInst(g.scatterFunc, base, g.byteOffsets(ctx, idx), val, ctx.GetFullMask())
}

// byteOffsets scales an element index vector to byte offsets for the
// 32-bit gather/scatter pseudo-ops.
func (g *Generator) byteOffsets(ctx *FunctionEmitContext, idx value.Value) value.Value {
	width := g.cfg.Target.VectorWidth
	fours := make([]constant.Constant, width)
	for i := range fours {
		fours[i] = constant.NewInt(lltypes.I32, 4)
	}
	scale := constant.NewVector(lltypes.NewVector(uint64(width), lltypes.I32), fours...)
	return ctx.bblock.NewMul(idx, scale)
}

// -----------------------------------------------------------------------------
// Calls

func (g *Generator) genCall(ctx *FunctionEmitContext, fc *ast.FunctionCallExpr) value.Value {
	fse, ok := fc.Func.(*ast.FunctionSymbolExpr)
	if !ok {
		report.Error(fc.Pos(), "Called value is not a function.")
		return nil
	}

	var args []value.Value
	var paramTypes []lltypes.Type
	if fc.Args != nil {
		for _, arg := range fc.Args.Exprs {
			av := g.genExpr(ctx, arg)
			if av == nil {
				return nil
			}
			args = append(args, av)
			paramTypes = append(paramTypes, av.Type())
		}
	}

	var retLL lltypes.Type = lltypes.Void
	if fc.Type() != nil {
		retLL = g.convType(fc.Type())
	}

	fn := g.getOrDeclareFunc(fse.Name, retLL, paramTypes)
	return ctx.CallInst(fn, args...)
}

// -----------------------------------------------------------------------------
// Value conversions

// smearUniform replicates a uniform scalar across all lanes.
func (g *Generator) smearUniform(ctx *FunctionEmitContext, v value.Value) value.Value {
	width := uint64(g.cfg.Target.VectorWidth)
	vecType := lltypes.NewVector(width, v.Type())

	seed := ctx.bblock.NewInsertElement(constant.NewUndef(vecType), v, constant.NewInt(lltypes.I32, 0))
	shuffleMask := constant.NewZeroInitializer(lltypes.NewVector(width, lltypes.I32))
	return ctx.bblock.NewShuffleVector(seed, constant.NewUndef(vecType), shuffleMask)
}

// convertValue converts a value between atomic (or enum) flavors: scalar
// kind conversion first, then a smear if the target is varying and the
// source uniform.
func (g *Generator) convertValue(ctx *FunctionEmitContext, v value.Value, from, to types.Type) value.Value {
	if v == nil || from == nil || to == nil || types.Equal(from, to) {
		return v
	}

	fromA, toA := atomicOf(from), atomicOf(to)
	if fromA == nil || toA == nil {
		return v
	}
	if types.Equal(fromA, toA) {
		return v
	}

	if !fromA.IsUniformType() && toA.IsUniformType() {
		report.ICE("varying to uniform conversion reached code generation")
	}

	// Convert the scalar kind while still at the source variability.
	kindTarget := toA.GetAsVariability(fromA.Variab)
	v = g.convertScalarKind(ctx, v, fromA, kindTarget)

	if fromA.IsUniformType() && !toA.IsUniformType() {
		v = g.smearUniform(ctx, v)
	}
	return v
}

// convertScalarKind converts between base kinds at matching variability;
// vector values convert elementwise.
func (g *Generator) convertScalarKind(ctx *FunctionEmitContext, v value.Value, from, to *types.AtomicType) value.Value {
	if from.Kind == to.Kind {
		return v
	}
	if ctx.CurrentBasicBlock() == nil {
		return v
	}

	target := g.convType(to)

	switch {
	case to.IsBoolType():
		zero := zeroValue(g.convType(from))
		if from.IsFloatType() {
			return ctx.bblock.NewFCmp(enum.FPredONE, v, zero)
		}
		return ctx.bblock.NewICmp(enum.IPredNE, v, zero)

	case from.IsBoolType():
		if to.IsFloatType() {
			return ctx.bblock.NewUIToFP(v, target)
		}
		return ctx.bblock.NewZExt(v, target)

	case from.IsFloatType() && to.IsFloatType():
		if from.BitWidth() < to.BitWidth() {
			return ctx.bblock.NewFPExt(v, target)
		}
		return ctx.bblock.NewFPTrunc(v, target)

	case from.IsFloatType():
		if to.IsUnsignedType() {
			return ctx.bblock.NewFPToUI(v, target)
		}
		return ctx.bblock.NewFPToSI(v, target)

	case to.IsFloatType():
		if from.IsUnsignedType() {
			return ctx.bblock.NewUIToFP(v, target)
		}
		return ctx.bblock.NewSIToFP(v, target)

	default:
		// Integer to integer.
		if from.BitWidth() < to.BitWidth() {
			if from.IsUnsignedType() {
				return ctx.bblock.NewZExt(v, target)
			}
			return ctx.bblock.NewSExt(v, target)
		}
		if from.BitWidth() > to.BitWidth() {
			return ctx.bblock.NewTrunc(v, target)
		}
		return v
	}
}

// -----------------------------------------------------------------------------
// Small constants

// zeroValue builds the zero constant of a type; scalar ints and floats get
// literal zeros since zeroinitializer only applies to aggregates.
func zeroValue(t lltypes.Type) constant.Constant {
	switch v := t.(type) {
	case *lltypes.IntType:
		return constant.NewInt(v, 0)
	case *lltypes.FloatType:
		return constant.NewFloat(v, 0)
	}
	return constant.NewZeroInitializer(t)
}

// allOnesOf builds an all-ones constant of an integer or bool (possibly
// vector) type.
func (g *Generator) allOnesOf(t lltypes.Type) constant.Constant {
	switch v := t.(type) {
	case *lltypes.IntType:
		return constant.NewInt(v, -1)
	case *lltypes.VectorType:
		elems := make([]constant.Constant, v.Len)
		for i := range elems {
			elems[i] = g.allOnesOf(v.ElemType)
		}
		return constant.NewVector(v, elems...)
	}
	report.ICE("allOnesOf() applied to non-integer type %v", t)
	return nil
}

// oneOf builds the constant 1 (or 1.0) of the given type.
func (g *Generator) oneOf(t lltypes.Type, at *types.AtomicType) constant.Constant {
	switch v := t.(type) {
	case *lltypes.IntType:
		return constant.NewInt(v, 1)
	case *lltypes.FloatType:
		return constant.NewFloat(v, 1)
	case *lltypes.VectorType:
		elems := make([]constant.Constant, v.Len)
		for i := range elems {
			elems[i] = g.oneOf(v.ElemType, at)
		}
		return constant.NewVector(v, elems...)
	}
	report.ICE("oneOf() applied to unsupported type %v", t)
	return nil
}
