package codegen

import (
	"fmt"

	"spmdc/ast"
	"spmdc/common"
	"spmdc/report"
	"spmdc/sema"
	"spmdc/types"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// EmitStmt generates code for one statement.  Every entry point checks the
// current block: once a path has been terminated by a return or uniform
// break, statement emission is a no-op until a successor block becomes
// current.
func (g *Generator) EmitStmt(ctx *FunctionEmitContext, s ast.Stmt) {
	if s == nil || ctx.CurrentBasicBlock() == nil {
		return
	}

	switch v := s.(type) {
	case *ast.ExprStmt:
		ctx.SetDebugPos(v.Pos())
		if v.Expr != nil {
			g.genExpr(ctx, v.Expr)
		}

	case *ast.DeclStmt:
		g.emitDeclStmt(ctx, v)

	case *ast.IfStmt:
		g.emitIfStmt(ctx, v)

	case *ast.DoStmt:
		g.emitDoStmt(ctx, v)

	case *ast.ForStmt:
		g.emitForStmt(ctx, v)

	case *ast.BreakStmt:
		ctx.SetDebugPos(v.Pos())
		ctx.Break(v.DoCoherenceCheck)

	case *ast.ContinueStmt:
		ctx.SetDebugPos(v.Pos())
		ctx.Continue(v.DoCoherenceCheck)

	case *ast.ReturnStmt:
		g.emitReturnStmt(ctx, v)

	case *ast.StmtList:
		ctx.StartScope()
		ctx.SetDebugPos(v.Pos())
		for _, stmt := range v.Stmts {
			if stmt != nil {
				g.EmitStmt(ctx, stmt)
			}
		}
		ctx.EndScope()

	case *ast.PrintStmt:
		g.emitPrintStmt(ctx, v)

	case *ast.AssertStmt:
		g.emitAssertStmt(ctx, v)

	default:
		report.ICE("unexpected statement variant %T in EmitStmt()", s)
	}
}

// emitBranchStmts emits one arm of an if statement, opening a scope unless
// the arm is already a statement list (which opens its own).
func (g *Generator) emitBranchStmts(ctx *FunctionEmitContext, stmts ast.Stmt, note string) {
	if stmts == nil {
		return
	}

	_, isList := stmts.(*ast.StmtList)
	if !isList {
		ctx.StartScope()
	}
	ctx.AddInstrumentationPoint(note)
	g.EmitStmt(ctx, stmts)
	if !isList {
		ctx.EndScope()
	}
}

// -----------------------------------------------------------------------------
// Declarations

func (g *Generator) emitDeclStmt(ctx *FunctionEmitContext, ds *ast.DeclStmt) {
	for i := range ds.Vars {
		sym := ds.Vars[i].Sym
		if sym == nil {
			report.ICE("declaration statement variable with no symbol")
		}
		typ := sym.Type
		if typ == nil {
			continue
		}
		initExpr := ds.Vars[i].Init

		// Now that emission has the region stack live, the nesting depth
		// of varying control flow at this declaration is known; record it
		// for the expression layer's late diagnostics.
		sym.VaryingCFDepth = ctx.VaryingCFDepth()

		ctx.SetDebugPos(sym.DefPos)

		// An array declared without a size takes it from a brace
		// initializer, or is rejected.
		if at, isArray := typ.(*types.ArrayType); isArray && at.ElementCount() == 0 {
			if el, isList := initExpr.(*ast.ExprList); isList {
				typ = at.GetSizedArray(len(el.Exprs))
				sym.Type = typ
			} else {
				report.Error(sym.DefPos, "Can't declare an unsized array as a local " +
					"variable without providing an initializer expression to " +
					"set its size.")
				continue
			}
		}

		if _, isRef := typ.(*types.ReferenceType); isRef && initExpr == nil {
			report.Error(sym.DefPos, "Must provide initializer for reference-type variable \"%s\".", sym.Name)
			continue
		}

		llvmType := g.convType(typ)

		if sym.StorageClass == common.StorageStatic {
			// Static variables live at module scope with internal linkage
			// and need a compile-time constant initializer; missing or
			// non-constant initializers fall back to the zero value.
			var cinit constant.Constant
			if initExpr != nil {
				cinit = g.GetConstant(initExpr, typ)
				if cinit == nil {
					report.Error(sym.DefPos, "Initializer for static variable \"%s\" must be a constant.", sym.Name)
				}
			}
			if cinit == nil {
				cinit = zeroValue(llvmType)
			}

			line := 0
			if sym.DefPos != nil {
				line = sym.DefPos.FirstLine
			}
			glob := g.mod.NewGlobalDef(fmt.Sprintf("static.%d.%s", line, sym.Name), cinit)
			glob.Linkage = enum.LinkageInternal
			glob.Immutable = typ.IsConstType()
			sym.StoragePtr = glob
		} else {
			sym.StoragePtr = ctx.AllocaInst(llvmType, sym.Name)
			sym.ParentFunction = ctx.fn.Name()
			g.initSymbol(ctx, sym.StoragePtr, sym.Name, typ, initExpr)
		}
	}
}

// initSymbol emits initialization of freshly allocated storage from an
// optional initializer expression, recursing through aggregate members for
// brace initializers.
func (g *Generator) initSymbol(ctx *FunctionEmitContext, lvalue value.Value, symName string, typ types.Type, initExpr ast.Expr) {
	if initExpr == nil {
		// No initializer: storage starts undefined.  Swapping the undef
		// for a zero value here would give auto-zeroed locals.
		ctx.StoreInst(constant.NewUndef(g.convType(typ)), lvalue)
		return
	}

	exprList, isList := initExpr.(*ast.ExprList)

	if !isList {
		switch t := typ.(type) {
		case *types.AtomicType, *types.EnumType:
			v := g.genExpr(ctx, initExpr)
			if v != nil {
				ctx.StoreInst(g.convertValue(ctx, v, initExpr.Type(), typ), lvalue)
			}
			return

		case *types.ReferenceType:
			if !types.Equal(initExpr.Type(), t) {
				report.Error(initExpr.Pos(), "Initializer for reference type \"%s\" must have same " +
					"reference type itself. \"%s\" is incompatible.", t, initExpr.Type())
				return
			}
			if v := g.genExpr(ctx, initExpr); v != nil {
				ctx.StoreInst(v, lvalue)
			}
			return

		case types.CollectionType:
			report.Error(initExpr.Pos(), "Can't assign type \"%s\" to \"%s\".", initExpr.Type(), typ)
			return
		}

		report.ICE("unexpected type \"%s\" in initSymbol()", typ)
	}

	// Brace initializer.
	switch t := typ.(type) {
	case *types.AtomicType, *types.EnumType:
		report.Error(initExpr.Pos(), "Expression list initializers can't be used for " +
			"variable \"%s\" with type \"%s\".", symName, typ)
		return

	case *types.ReferenceType:
		report.Error(initExpr.Pos(), "Initializer for reference type \"%s\" must have same " +
			"reference type itself.", t)
		return

	case types.CollectionType:
		name := "struct"
		switch typ.(type) {
		case *types.ArrayType:
			name = "array"
		case *types.VectorType:
			name = "vector"
		}

		nInits := len(exprList.Exprs)
		if nInits != t.ElementCount() {
			report.Error(initExpr.Pos(), "Initializer for %s \"%s\" requires " +
				"%d values; %d provided.", name, symName, t.ElementCount(), nInits)
			return
		}

		llvmType := g.convType(typ)
		for i := 0; i < nInits; i++ {
			ep := ctx.GetElementPtrInst(llvmType, lvalue, 0, int64(i))
			g.initSymbol(ctx, ep, symName, t.ElementType(i), exprList.Exprs[i])
		}
		return
	}

	report.ICE("unexpected type \"%s\" in initSymbol()", typ)
}

// -----------------------------------------------------------------------------
// If statements

func (g *Generator) emitIfStmt(ctx *FunctionEmitContext, is *ast.IfStmt) {
	// Bail out on the pieces earlier errors may have nulled.
	if is.Test == nil {
		return
	}
	testType := is.Test.Type()
	if testType == nil {
		return
	}

	ctx.SetDebugPos(is.Pos())
	isUniform := testType.IsUniformType()

	testValue := g.genExpr(ctx, is.Test)
	if testValue == nil {
		return
	}

	if !isUniform {
		g.emitVaryingIf(ctx, is, testValue)
		return
	}

	ctx.StartUniformIf()
	if is.DoAllCheck {
		report.Warning(is.Test.Pos(), "Uniform condition supplied to \"cif\" statement.")
	}

	// A uniform test compiles to a plain two-way branch with no mask
	// bookkeeping at all.
	bthen := ctx.CreateBasicBlock("if_then")
	belse := ctx.CreateBasicBlock("if_else")
	bexit := ctx.CreateBasicBlock("if_exit")

	ctx.CondBranchInst(bthen, belse, testValue)

	ctx.SetCurrentBasicBlock(bthen)
	g.emitBranchStmts(ctx, is.TrueStmts, "true")
	if ctx.CurrentBasicBlock() != nil {
		ctx.BranchInst(bexit)
	}

	ctx.SetCurrentBasicBlock(belse)
	g.emitBranchStmts(ctx, is.FalseStmts, "false")
	if ctx.CurrentBasicBlock() != nil {
		ctx.BranchInst(bexit)
	}

	ctx.SetCurrentBasicBlock(bexit)
	ctx.EndIf()
}

// emitVaryingIf lowers an if with a varying test, picking the cheapest
// strategy the mask state admits: the statically-all-on path, the coherent
// runtime dispatch, predicated straight-line execution of both arms, or the
// general mixed-mask path.
func (g *Generator) emitVaryingIf(ctx *FunctionEmitContext, is *ast.IfStmt, ltest value.Value) {
	oldMask := ctx.GetInternalMask()

	if ctx.GetFullMask() == value.Value(ctx.maskAllOn) {
		// The mask is known all-on at compile time.
		bDone := ctx.CreateBasicBlock("cif_done")
		g.emitMaskAllOn(ctx, is, ltest, bDone)
		ctx.SetCurrentBasicBlock(bDone)
		return
	}

	if is.DoAllCheck {
		// Whether the mask is all-on can't be known statically; probe at
		// runtime and pick the all-on or mixed path per execution.
		bAllOn := ctx.CreateBasicBlock("cif_mask_all")
		bMixedOn := ctx.CreateBasicBlock("cif_mask_mixed")
		bDone := ctx.CreateBasicBlock("cif_done")

		maskAllQ := ctx.All(ctx.GetFullMask())
		ctx.CondBranchInst(bAllOn, bMixedOn, maskAllQ)

		ctx.SetCurrentBasicBlock(bAllOn)
		g.emitMaskAllOn(ctx, is, ltest, bDone)

		ctx.SetCurrentBasicBlock(bMixedOn)
		g.emitMaskMixed(ctx, is, oldMask, ltest, bDone)

		ctx.SetCurrentBasicBlock(bDone)
		return
	}

	if is.TrueStmts == nil && is.FalseStmts == nil {
		return
	}

	// When both arms are provably safe to run with no lanes enabled and
	// cheap enough, emitting straight-line code that runs both sides with
	// blend-based assignments beats the cost of the any-probe branches.
	if sema.SafeToRunWithAllLanesOff(is.TrueStmts) &&
		sema.SafeToRunWithAllLanesOff(is.FalseStmts) &&
		g.walker.EstimateStmtCost(is.TrueStmts)+
			g.walker.EstimateStmtCost(is.FalseStmts) < sema.PredicateSafeIfStatementCost {
		ctx.StartVaryingIf(oldMask)
		g.emitMaskedTrueAndFalse(ctx, is, oldMask, ltest)
		if ctx.CurrentBasicBlock() == nil {
			report.ICE("predicated if arm terminated the current block")
		}
		ctx.EndIf()
		return
	}

	if !is.DoAnyCheck {
		report.ICE("mixed-mask if lowering reached without a varying test")
	}
	bDone := ctx.CreateBasicBlock("if_done")
	g.emitMaskMixed(ctx, is, oldMask, ltest, bDone)
	ctx.SetCurrentBasicBlock(bDone)
}

// emitMaskedTrueAndFalse runs both arms unconditionally, restricting the
// mask to oldMask ∧ test and then oldMask ∧ ¬test.  No probes are emitted.
func (g *Generator) emitMaskedTrueAndFalse(ctx *FunctionEmitContext, is *ast.IfStmt, oldMask, ltest value.Value) {
	if is.TrueStmts != nil {
		ctx.SetInternalMaskAnd(oldMask, ltest)
		g.emitBranchStmts(ctx, is.TrueStmts, "if: expr mixed, true statements")
		// Under varying control flow returns can't stop instruction
		// emission, so the block better still be live.
		if ctx.CurrentBasicBlock() == nil {
			report.ICE("true arm of predicated if terminated the current block")
		}
	}
	if is.FalseStmts != nil {
		ctx.SetInternalMaskAndNot(oldMask, ltest)
		g.emitBranchStmts(ctx, is.FalseStmts, "if: expr mixed, false statements")
		if ctx.CurrentBasicBlock() == nil {
			report.ICE("false arm of predicated if terminated the current block")
		}
	}
}

// emitMaskAllOn lowers the varying if knowing the mask is all-on on entry.
// The mask registers are explicitly pinned to the all-on constant so
// downstream emission sees the fact.
func (g *Generator) emitMaskAllOn(ctx *FunctionEmitContext, is *ast.IfStmt, ltest value.Value, bDone *ir.Block) {
	ctx.SetInternalMask(ctx.maskAllOn)
	oldFunctionMask := ctx.GetFunctionMask()
	ctx.SetFunctionMask(ctx.maskAllOn)

	// If the test itself is all-on, only the true branch runs, and it runs
	// with the whole gang enabled.
	bTestAll := ctx.CreateBasicBlock("cif_test_all")
	bTestNoneCheck := ctx.CreateBasicBlock("cif_test_none_check")
	testAllQ := ctx.All(ltest)
	ctx.CondBranchInst(bTestAll, bTestNoneCheck, testAllQ)

	ctx.SetCurrentBasicBlock(bTestAll)
	ctx.StartVaryingIf(ctx.maskAllOn)
	g.emitBranchStmts(ctx, is.TrueStmts, "if: all on mask, expr all true")
	ctx.EndIf()
	if ctx.CurrentBasicBlock() != nil {
		// The block may legitimately be gone: a return, break or continue
		// here can end emission because every lane takes this path.
		ctx.BranchInst(bDone)
	}

	ctx.SetCurrentBasicBlock(bTestNoneCheck)
	bTestNone := ctx.CreateBasicBlock("cif_test_none")
	bTestMixed := ctx.CreateBasicBlock("cif_test_mixed")
	testMixedQ := ctx.Any(ltest)
	ctx.CondBranchInst(bTestMixed, bTestNone, testMixedQ)

	ctx.SetCurrentBasicBlock(bTestNone)
	ctx.StartVaryingIf(ctx.maskAllOn)
	g.emitBranchStmts(ctx, is.FalseStmts, "if: all on mask, expr all false")
	ctx.EndIf()
	if ctx.CurrentBasicBlock() != nil {
		ctx.BranchInst(bDone)
	}

	// Mixed true/false lanes: both arms unavoidably run.
	ctx.SetCurrentBasicBlock(bTestMixed)
	ctx.StartVaryingIf(ctx.maskAllOn)
	g.emitMaskedTrueAndFalse(ctx, is, ctx.maskAllOn, ltest)
	if ctx.CurrentBasicBlock() == nil {
		report.ICE("mixed arm of coherent if terminated the current block")
	}
	ctx.EndIf()
	ctx.BranchInst(bDone)

	ctx.SetCurrentBasicBlock(bDone)
	ctx.SetFunctionMask(oldFunctionMask)
}

// emitMaskMixed lowers the general case: for each arm present, restrict
// the mask, probe whether any lane wants the arm, and jump over it when
// none does.
func (g *Generator) emitMaskMixed(ctx *FunctionEmitContext, is *ast.IfStmt, oldMask, ltest value.Value, bDone *ir.Block) {
	ctx.StartVaryingIf(oldMask)

	if is.TrueStmts != nil {
		bRunTrue := ctx.CreateBasicBlock("safe_if_run_true")
		bNext := ctx.CreateBasicBlock("safe_if_after_true")
		ctx.SetInternalMaskAnd(oldMask, ltest)

		maskAnyQ := ctx.Any(ctx.GetFullMask())
		ctx.CondBranchInst(bRunTrue, bNext, maskAnyQ)

		ctx.SetCurrentBasicBlock(bRunTrue)
		g.emitBranchStmts(ctx, is.TrueStmts, "if: expr mixed, true statements")
		if ctx.CurrentBasicBlock() == nil {
			report.ICE("true arm of mixed if terminated the current block")
		}
		ctx.BranchInst(bNext)
		ctx.SetCurrentBasicBlock(bNext)
	}

	if is.FalseStmts != nil {
		bRunFalse := ctx.CreateBasicBlock("safe_if_run_false")
		bNext := ctx.CreateBasicBlock("safe_if_after_false")
		ctx.SetInternalMaskAndNot(oldMask, ltest)

		maskAnyQ := ctx.Any(ctx.GetFullMask())
		ctx.CondBranchInst(bRunFalse, bNext, maskAnyQ)

		ctx.SetCurrentBasicBlock(bRunFalse)
		g.emitBranchStmts(ctx, is.FalseStmts, "if: expr mixed, false statements")
		if ctx.CurrentBasicBlock() == nil {
			report.ICE("false arm of mixed if terminated the current block")
		}
		ctx.BranchInst(bNext)
		ctx.SetCurrentBasicBlock(bNext)
	}

	ctx.BranchInst(bDone)
	ctx.SetCurrentBasicBlock(bDone)
	ctx.EndIf()
}

// -----------------------------------------------------------------------------
// Loops

func (g *Generator) emitDoStmt(ctx *FunctionEmitContext, ds *ast.DoStmt) {
	if ds.TestExpr == nil || ds.TestExpr.Type() == nil {
		return
	}

	uniformTest := ds.TestExpr.Type().IsUniformType()
	if uniformTest && ds.DoCoherentCheck {
		report.Warning(ds.Pos(), "Uniform condition supplied to \"cdo\" statement.")
	}

	bloop := ctx.CreateBasicBlock("do_loop")
	bexit := ctx.CreateBasicBlock("do_exit")
	btest := ctx.CreateBasicBlock("do_test")

	ctx.StartLoop(bexit, btest, uniformTest)

	ctx.BranchInst(bloop)

	ctx.SetCurrentBasicBlock(bloop)
	ctx.SetLoopMask(ctx.GetInternalMask())
	ctx.SetDebugPos(ds.Pos())

	// A body that is a statement list opens its own scope.
	_, isList := ds.BodyStmts.(*ast.StmtList)
	if !isList {
		ctx.StartScope()
	}

	ctx.AddInstrumentationPoint("do loop body")
	if ds.DoCoherentCheck && !uniformTest {
		g.emitCoherentLoopBody(ctx, ds.BodyStmts, btest)
	} else {
		if ds.BodyStmts != nil {
			g.EmitStmt(ctx, ds.BodyStmts)
		}
		if ctx.CurrentBasicBlock() != nil {
			ctx.BranchInst(btest)
		}
	}
	if !isList {
		ctx.EndScope()
	}

	// The loop test.  Lanes that continued during this iteration come back
	// on before the test is evaluated; uniform loops jump straight here on
	// continue and never touch the mask.
	ctx.SetCurrentBasicBlock(btest)
	if !uniformTest {
		ctx.RestoreContinuedLanes()
	}
	testValue := g.genExpr(ctx, ds.TestExpr)
	if testValue == nil {
		// Close the loop region explicitly so the builder state stays
		// consistent on the error path.
		ctx.EndLoop()
		return
	}

	if uniformTest {
		ctx.CondBranchInst(bloop, bexit, testValue)
	} else {
		mask := ctx.GetInternalMask()
		ctx.SetInternalMaskAnd(mask, testValue)
		ctx.BranchIfMaskAny(bloop, bexit)
	}

	ctx.SetCurrentBasicBlock(bexit)
	ctx.EndLoop()
}

// emitCoherentLoopBody emits a varying loop body behind a runtime all-on
// probe: when every lane is live the body runs with the masks pinned all-on
// (enabling scalar-style code generation for the iteration), otherwise it
// runs with the actual mask.  Both paths re-converge at joinBlock.
func (g *Generator) emitCoherentLoopBody(ctx *FunctionEmitContext, body ast.Stmt, joinBlock *ir.Block) {
	bAllOn := ctx.CreateBasicBlock("loop_all_on")
	bMixed := ctx.CreateBasicBlock("loop_mixed")
	oldInternalMask := ctx.GetInternalMask()
	ctx.BranchIfMaskAll(bAllOn, bMixed)

	ctx.SetCurrentBasicBlock(bAllOn)
	ctx.SetInternalMask(ctx.maskAllOn)
	oldFunctionMask := ctx.GetFunctionMask()
	ctx.SetFunctionMask(ctx.maskAllOn)
	if body != nil {
		g.EmitStmt(ctx, body)
	}
	if ctx.CurrentBasicBlock() == nil {
		report.ICE("varying loop body terminated the current block")
	}
	ctx.SetFunctionMask(oldFunctionMask)
	ctx.BranchInst(joinBlock)

	ctx.SetCurrentBasicBlock(bMixed)
	ctx.SetInternalMask(oldInternalMask)
	if body != nil {
		g.EmitStmt(ctx, body)
	}
	if ctx.CurrentBasicBlock() == nil {
		report.ICE("varying loop body terminated the current block")
	}
	ctx.BranchInst(joinBlock)
}

func (g *Generator) emitForStmt(ctx *FunctionEmitContext, fs *ast.ForStmt) {
	btest := ctx.CreateBasicBlock("for_test")
	bstep := ctx.CreateBasicBlock("for_step")
	bloop := ctx.CreateBasicBlock("for_loop")
	bexit := ctx.CreateBasicBlock("for_exit")

	var uniformTest bool
	if fs.Test != nil {
		uniformTest = fs.Test.Type() != nil && fs.Test.Type().IsUniformType()
	} else {
		uniformTest = !g.cfg.Opt.DisableUniformControlFlow &&
			!sema.HasVaryingBreakOrContinue(fs.Stmts)
	}

	ctx.StartLoop(bexit, bstep, uniformTest)
	ctx.SetDebugPos(fs.Pos())

	// The init may declare variables visible to the test, step and body,
	// so it always gets its own scope.
	if fs.Init != nil {
		if _, isList := fs.Init.(*ast.StmtList); isList {
			report.ICE("for loop initializer is a statement list")
		}
		ctx.StartScope()
		g.EmitStmt(ctx, fs.Init)
	}
	ctx.BranchInst(btest)

	ctx.SetCurrentBasicBlock(btest)
	var ltest value.Value
	if fs.Test != nil {
		ltest = g.genExpr(ctx, fs.Test)
		if ltest == nil {
			// Close the regions opened above before bailing so the
			// builder state stays consistent.
			if fs.Init != nil {
				ctx.EndScope()
			}
			ctx.EndLoop()
			return
		}
	} else if uniformTest {
		ltest = constant.NewBool(true)
	} else {
		ltest = ctx.maskAllOn
	}

	if uniformTest {
		if fs.DoCoherentCheck {
			report.Warning(fs.Pos(), "Uniform condition supplied to \"cfor\" statement.")
		}
		ctx.CondBranchInst(bloop, bexit, ltest)
	} else {
		mask := ctx.GetInternalMask()
		ctx.SetInternalMaskAnd(mask, ltest)
		ctx.BranchIfMaskAny(bloop, bexit)
	}

	ctx.SetCurrentBasicBlock(bloop)
	ctx.SetLoopMask(ctx.GetInternalMask())
	ctx.AddInstrumentationPoint("for loop body")
	_, isList := fs.Stmts.(*ast.StmtList)
	if !isList {
		ctx.StartScope()
	}

	if fs.DoCoherentCheck && !uniformTest {
		g.emitCoherentLoopBody(ctx, fs.Stmts, bstep)
	} else {
		if fs.Stmts != nil {
			g.EmitStmt(ctx, fs.Stmts)
		}
		if ctx.CurrentBasicBlock() != nil {
			ctx.BranchInst(bstep)
		}
	}
	if !isList {
		ctx.EndScope()
	}

	// The step: lanes that continued re-join before it runs.
	ctx.SetCurrentBasicBlock(bstep)
	ctx.RestoreContinuedLanes()
	if fs.Step != nil {
		g.EmitStmt(ctx, fs.Step)
	}
	ctx.BranchInst(btest)

	ctx.SetCurrentBasicBlock(bexit)
	if fs.Init != nil {
		ctx.EndScope()
	}
	ctx.EndLoop()
}

// -----------------------------------------------------------------------------
// Return

func (g *Generator) emitReturnStmt(ctx *FunctionEmitContext, rs *ast.ReturnStmt) {
	ctx.SetDebugPos(rs.Pos())

	var retVal value.Value
	if rs.Val != nil {
		retVal = g.genExpr(ctx, rs.Val)
		if retVal == nil {
			return
		}
		retVal = g.convertValue(ctx, retVal, rs.Val.Type(), ctx.frontReturnType)
	}
	ctx.CurrentLanesReturned(retVal, rs.DoCoherenceCheck)
}

// -----------------------------------------------------------------------------
// Print

// printTypeCode returns the single-character encoding of an atomic type for
// the __do_print type string, or 0 for types print can't handle.  The
// encoding must agree with the decoder in the runtime.
func printTypeCode(typ types.Type) byte {
	at, ok := typ.(*types.AtomicType)
	if !ok {
		return 0
	}
	at = at.GetAsNonConstType()

	uniform := at.IsUniformType()
	pick := func(u, v byte) byte {
		if uniform {
			return u
		}
		return v
	}

	switch at.Kind {
	case types.KindBool:
		return pick('b', 'B')
	case types.KindInt32:
		return pick('i', 'I')
	case types.KindUInt32:
		return pick('u', 'U')
	case types.KindFloat:
		return pick('f', 'F')
	case types.KindInt64:
		return pick('l', 'L')
	case types.KindUInt64:
		return pick('v', 'V')
	case types.KindDouble:
		return pick('d', 'D')
	}
	return 0
}

// processPrintArg evaluates one print argument into alloca'd storage and
// returns the storage as a generic pointer, appending the argument's type
// code to argTypes.  References auto-dereference and small integers widen
// to 32 bits first.
func (g *Generator) processPrintArg(ctx *FunctionEmitContext, expr ast.Expr, argTypes *[]byte) value.Value {
	typ := expr.Type()
	if typ == nil {
		return nil
	}

	if rt, isRef := typ.(*types.ReferenceType); isRef {
		deref := ast.NewDereferenceExpr(expr, expr.Pos())
		deref.SetType(rt.Target)
		expr = deref
		typ = rt.Target
	}

	if at, ok := typ.(*types.AtomicType); ok {
		switch at.Kind {
		case types.KindInt8, types.KindUInt8, types.KindInt16, types.KindUInt16:
			var wide *types.AtomicType
			if at.IsUniformType() {
				wide = types.UniformInt32
			} else {
				wide = types.VaryingInt32
			}
			expr = ast.NewTypeCastExpr(wide, expr, expr.Pos())
			typ = wide
		}
	}

	code := printTypeCode(typ)
	if code == 0 {
		report.Error(expr.Pos(), "Only atomic types are allowed in print statements; " +
			"type \"%s\" is illegal.", typ)
		return nil
	}
	*argTypes = append(*argTypes, code)

	llvmExprType := g.convType(typ)
	ptr := ctx.AllocaInst(llvmExprType, "print_arg")
	val := g.genExpr(ctx, expr)
	if val == nil {
		return nil
	}
	ctx.StoreInst(val, ptr)

	return ctx.BitCastInst(ptr, lltypes.I8Ptr)
}

// emitPrintStmt lowers print to a __do_print call: format string, type
// code string, gang width, lane mask, and an array of pointers to the
// evaluated arguments.
func (g *Generator) emitPrintStmt(ctx *FunctionEmitContext, ps *ast.PrintStmt) {
	ctx.SetDebugPos(ps.Pos())

	var args [5]value.Value
	var argTypes []byte

	i8pp := lltypes.NewPointer(lltypes.I8Ptr)

	if ps.Values == nil {
		args[4] = constant.NewNull(i8pp)
	} else {
		elist, isList := ps.Values.(*ast.ExprList)
		nArgs := 1
		if isList {
			nArgs = len(elist.Exprs)
		}

		argPtrArrayType := lltypes.NewArray(uint64(nArgs), lltypes.I8Ptr)
		argPtrArray := ctx.AllocaInst(argPtrArrayType, "print_arg_ptrs")
		args[4] = ctx.BitCastInst(argPtrArray, i8pp)

		if isList {
			for i, expr := range elist.Exprs {
				if expr == nil {
					return
				}
				ptr := g.processPrintArg(ctx, expr, &argTypes)
				if ptr == nil {
					return
				}
				arrayPtr := ctx.GetElementPtrInst(argPtrArrayType, argPtrArray, 0, int64(i))
				ctx.StoreInst(ptr, arrayPtr)
			}
		} else {
			ptr := g.processPrintArg(ctx, ps.Values, &argTypes)
			if ptr == nil {
				return
			}
			arrayPtr := ctx.GetElementPtrInst(argPtrArrayType, argPtrArray, 0, 0)
			ctx.StoreInst(ptr, arrayPtr)
		}
	}

	args[0] = ctx.GetStringPtr(ps.Format)
	args[1] = ctx.GetStringPtr(string(argTypes))
	args[2] = constant.NewInt(lltypes.I32, int64(g.cfg.Target.VectorWidth))
	args[3] = ctx.LaneMask(ctx.GetFullMask())

	ctx.CallInst(g.printFunc, args[:]...)
}

// -----------------------------------------------------------------------------
// Assert

// emitAssertStmt lowers assert to a call of the uniform or varying runtime
// checker, matching the predicate's variability.
func (g *Generator) emitAssertStmt(ctx *FunctionEmitContext, as *ast.AssertStmt) {
	if as.Expr == nil {
		return
	}
	typ := as.Expr.Type()
	if typ == nil {
		return
	}

	assertFunc := g.assertVaryingFunc
	if typ.IsUniformType() {
		assertFunc = g.assertUniformFunc
	}

	name, line, col := "", 0, 0
	if pos := as.Pos(); pos != nil {
		name, line, col = pos.Name, pos.FirstLine, pos.FirstCol
	}
	errorString := fmt.Sprintf("%s:%d:%d: Assertion failed: %s\n", name, line, col, as.Message)

	cond := g.genExpr(ctx, as.Expr)
	if cond == nil {
		return
	}
	ctx.CallInst(assertFunc, ctx.GetStringPtr(errorString), cond, ctx.GetFullMask())
}
