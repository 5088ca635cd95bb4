package codegen

import (
	"spmdc/report"
	"spmdc/types"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// cfInfo records one entry of the control flow region stack: an if arm or a
// loop, with the state needed to unwind masks and route structured jumps.
type cfInfo struct {
	isLoop    bool
	isUniform bool

	// savedMask is the internal mask when the region was entered.
	savedMask value.Value

	// Loop state.  The lane-set allocas exist only for varying loops.
	breakTarget      *ir.Block
	continueTarget   *ir.Block
	breakLanesPtr    value.Value
	continueLanesPtr value.Value
	loopMask         value.Value
}

// FunctionEmitContext tracks the emission state for one function: the
// current basic block, the execution masks, and the control flow region
// stack.  The emission helpers are silent no-ops while the current block is
// nil (a preceding return or uniform break terminated it); the lane
// reductions All, Any and LaneMask are the exception and need a live block.
type FunctionEmitContext struct {
	gen *Generator
	fn  *ir.Func

	// allocaBlock collects stack allocations; it branches to the first
	// body block so allocas don't reexecute inside loops.
	allocaBlock *ir.Block

	// bblock is the block instructions are appended to; nil when the
	// current path has been terminated.
	bblock *ir.Block

	// Masks, as SSA values.  maskAllOn/maskAllOff are shared constants:
	// comparing a mask against maskAllOn by identity is the static
	// all-lanes-on test.
	internalMask value.Value
	functionMask value.Value
	maskAllOn    constant.Constant
	maskAllOff   constant.Constant

	// Return plumbing.  Returned lanes accumulate in an alloca; the
	// epilogue block loads the blended return value.
	returnBlock      *ir.Block
	returnValuePtr   value.Value
	returnLLType     lltypes.Type
	frontReturnType  types.Type
	returnedLanesPtr value.Value
	anyLanesReturned bool

	controlFlow []*cfInfo
	scopeDepth  int

	debugPos *report.TextPosition
}

// newFunctionEmitContext sets up the emission state for a fresh function.
func newFunctionEmitContext(g *Generator, fn *ir.Func, allocaBlock, entry *ir.Block, returnType types.Type) *FunctionEmitContext {
	width := g.cfg.Target.VectorWidth
	ones := make([]constant.Constant, width)
	for i := range ones {
		ones[i] = constant.NewBool(true)
	}

	ctx := &FunctionEmitContext{
		gen:         g,
		fn:          fn,
		allocaBlock: allocaBlock,
		bblock:      entry,
		maskAllOn:   constant.NewVector(g.maskType, ones...),
		maskAllOff:  constant.NewZeroInitializer(g.maskType),
		returnBlock: fn.NewBlock("return"),
	}
	ctx.internalMask = ctx.maskAllOn
	ctx.functionMask = ctx.maskAllOn

	if returnType != nil {
		ctx.frontReturnType = returnType
		ctx.returnLLType = g.convType(returnType)
		rv := allocaBlock.NewAlloca(ctx.returnLLType)
		rv.SetName("return_value")
		ctx.returnValuePtr = rv
	}

	rl := allocaBlock.NewAlloca(g.maskType)
	rl.SetName("returned_lanes")
	ctx.returnedLanesPtr = rl
	allocaBlock.NewStore(ctx.maskAllOff, rl)

	return ctx
}

// -----------------------------------------------------------------------------
// Basic blocks and branches

// CurrentBasicBlock returns the block under construction, or nil if the
// current path has been terminated.
func (ctx *FunctionEmitContext) CurrentBasicBlock() *ir.Block {
	return ctx.bblock
}

// SetCurrentBasicBlock repositions emission at the given block.
func (ctx *FunctionEmitContext) SetCurrentBasicBlock(b *ir.Block) {
	ctx.bblock = b
}

// CreateBasicBlock appends a new basic block to the function.
func (ctx *FunctionEmitContext) CreateBasicBlock(name string) *ir.Block {
	return ctx.fn.NewBlock(name)
}

// BranchInst emits an unconditional branch and terminates the current
// block.
func (ctx *FunctionEmitContext) BranchInst(dest *ir.Block) {
	if ctx.bblock == nil {
		return
	}
	ctx.bblock.NewBr(dest)
	ctx.bblock = nil
}

// CondBranchInst emits a conditional branch on a uniform i1 value and
// terminates the current block.
func (ctx *FunctionEmitContext) CondBranchInst(trueBlock, falseBlock *ir.Block, cond value.Value) {
	if ctx.bblock == nil {
		return
	}
	ctx.bblock.NewCondBr(cond, trueBlock, falseBlock)
	ctx.bblock = nil
}

// -----------------------------------------------------------------------------
// Masks

// GetInternalMask returns the mask for the current lexical region.
func (ctx *FunctionEmitContext) GetInternalMask() value.Value {
	return ctx.internalMask
}

// GetFunctionMask returns the mask the function was entered with (or the
// all-on mask while a coherent region has pinned it).  Lanes that have
// returned are not removed from it; they are tracked separately and taken
// out of the internal mask.
func (ctx *FunctionEmitContext) GetFunctionMask() value.Value {
	return ctx.functionMask
}

// GetFullMask returns internal ∧ function.  When either side is the all-on
// constant the other is returned unchanged, which keeps the static all-on
// test exact.
func (ctx *FunctionEmitContext) GetFullMask() value.Value {
	if ctx.internalMask == value.Value(ctx.maskAllOn) {
		return ctx.functionMask
	}
	if ctx.functionMask == value.Value(ctx.maskAllOn) {
		return ctx.internalMask
	}
	return ctx.binaryAnd(ctx.internalMask, ctx.functionMask)
}

// MaskAllOn returns the all-on mask constant for the target width.
func (ctx *FunctionEmitContext) MaskAllOn() constant.Constant { return ctx.maskAllOn }

// MaskAllOff returns the all-off mask constant.
func (ctx *FunctionEmitContext) MaskAllOff() constant.Constant { return ctx.maskAllOff }

// SetInternalMask replaces the internal mask.
func (ctx *FunctionEmitContext) SetInternalMask(v value.Value) {
	ctx.internalMask = v
}

// SetInternalMaskAnd sets the internal mask to a ∧ b.
func (ctx *FunctionEmitContext) SetInternalMaskAnd(a, b value.Value) {
	ctx.internalMask = ctx.binaryAnd(a, b)
}

// SetInternalMaskAndNot sets the internal mask to a ∧ ¬b.
func (ctx *FunctionEmitContext) SetInternalMaskAndNot(a, b value.Value) {
	ctx.internalMask = ctx.binaryAndNot(a, b)
}

// SetFunctionMask replaces the function mask.
func (ctx *FunctionEmitContext) SetFunctionMask(v value.Value) {
	ctx.functionMask = v
}

func (ctx *FunctionEmitContext) binaryAnd(a, b value.Value) value.Value {
	if a == value.Value(ctx.maskAllOn) {
		return b
	}
	if b == value.Value(ctx.maskAllOn) {
		return a
	}
	if ctx.bblock == nil {
		return a
	}
	return ctx.bblock.NewAnd(a, b)
}

func (ctx *FunctionEmitContext) binaryAndNot(a, b value.Value) value.Value {
	if ctx.bblock == nil {
		return a
	}
	notB := ctx.bblock.NewXor(b, ctx.maskAllOn)
	return ctx.bblock.NewAnd(a, notB)
}

func (ctx *FunctionEmitContext) binaryOr(a, b value.Value) value.Value {
	if ctx.bblock == nil {
		return a
	}
	return ctx.bblock.NewOr(a, b)
}

// -----------------------------------------------------------------------------
// Lane reductions

// maskBitsType returns the iW integer type the mask bitcasts to.
func (ctx *FunctionEmitContext) maskBitsType() *lltypes.IntType {
	return lltypes.NewInt(uint64(ctx.gen.cfg.Target.VectorWidth))
}

// All returns a uniform i1 that is true when every lane of v is on.
func (ctx *FunctionEmitContext) All(v value.Value) value.Value {
	bits := ctx.bblock.NewBitCast(v, ctx.maskBitsType())
	return ctx.bblock.NewICmp(enum.IPredEQ, bits, constant.NewInt(ctx.maskBitsType(), -1))
}

// Any returns a uniform i1 that is true when at least one lane of v is on.
func (ctx *FunctionEmitContext) Any(v value.Value) value.Value {
	bits := ctx.bblock.NewBitCast(v, ctx.maskBitsType())
	return ctx.bblock.NewICmp(enum.IPredNE, bits, constant.NewInt(ctx.maskBitsType(), 0))
}

// LaneMask returns v as an i64 lane bitmap for the runtime helpers.
func (ctx *FunctionEmitContext) LaneMask(v value.Value) value.Value {
	bits := ctx.bblock.NewBitCast(v, ctx.maskBitsType())
	if ctx.gen.cfg.Target.VectorWidth == 64 {
		return bits
	}
	return ctx.bblock.NewZExt(bits, lltypes.I64)
}

// BranchIfMaskAll branches to trueBlock when the full mask is all-on.
func (ctx *FunctionEmitContext) BranchIfMaskAll(trueBlock, falseBlock *ir.Block) {
	if ctx.bblock == nil {
		return
	}
	ctx.CondBranchInst(trueBlock, falseBlock, ctx.All(ctx.GetFullMask()))
}

// BranchIfMaskAny branches to trueBlock when any lane of the full mask is
// on.
func (ctx *FunctionEmitContext) BranchIfMaskAny(trueBlock, falseBlock *ir.Block) {
	if ctx.bblock == nil {
		return
	}
	ctx.CondBranchInst(trueBlock, falseBlock, ctx.Any(ctx.GetFullMask()))
}

// -----------------------------------------------------------------------------
// Scopes and control flow regions

// StartScope opens a lexical scope.
func (ctx *FunctionEmitContext) StartScope() {
	ctx.scopeDepth++
}

// EndScope closes the innermost lexical scope.
func (ctx *FunctionEmitContext) EndScope() {
	if ctx.scopeDepth == 0 {
		report.ICE("mismatched EndScope()")
	}
	ctx.scopeDepth--
}

// StartUniformIf enters an if statement with a uniform test: no mask
// bookkeeping is needed.
func (ctx *FunctionEmitContext) StartUniformIf() {
	ctx.controlFlow = append(ctx.controlFlow, &cfInfo{isUniform: true})
}

// StartVaryingIf enters an if statement with a varying test; oldMask is the
// internal mask to restore when the statement completes.
func (ctx *FunctionEmitContext) StartVaryingIf(oldMask value.Value) {
	ctx.controlFlow = append(ctx.controlFlow, &cfInfo{savedMask: oldMask})
}

// EndIf leaves an if region.  For a varying if the internal mask is
// restored to its value on entry, less any lanes that executed a break,
// continue or return inside the statement.
func (ctx *FunctionEmitContext) EndIf() {
	ci := ctx.popRegion()
	if ci.isLoop {
		report.ICE("EndIf() matched with StartLoop()")
	}
	if ci.isUniform {
		return
	}

	mask := ci.savedMask
	loop := ctx.innermostLoop()
	trackJumps := loop != nil && !loop.isUniform
	if !trackJumps && !ctx.anyLanesReturned {
		ctx.SetInternalMask(mask)
		return
	}

	if ctx.bblock == nil {
		return
	}
	if trackJumps {
		breakLanes := ctx.bblock.NewLoad(ctx.gen.maskType, loop.breakLanesPtr)
		mask = ctx.binaryAndNot(mask, breakLanes)
		continueLanes := ctx.bblock.NewLoad(ctx.gen.maskType, loop.continueLanesPtr)
		mask = ctx.binaryAndNot(mask, continueLanes)
	}
	if ctx.anyLanesReturned {
		returnedLanes := ctx.bblock.NewLoad(ctx.gen.maskType, ctx.returnedLanesPtr)
		mask = ctx.binaryAndNot(mask, returnedLanes)
	}
	ctx.SetInternalMask(mask)
}

// StartLoop enters a loop region.  breakTarget and continueTarget are the
// blocks structured jumps route to; uniformCF says whether the loop runs
// under uniform control flow.  Varying loops get fresh lane sets for break
// and continue tracking.
func (ctx *FunctionEmitContext) StartLoop(breakTarget, continueTarget *ir.Block, uniformCF bool) {
	ci := &cfInfo{
		isLoop:         true,
		isUniform:      uniformCF,
		savedMask:      ctx.internalMask,
		breakTarget:    breakTarget,
		continueTarget: continueTarget,
	}

	if !uniformCF {
		bl := ctx.allocaBlock.NewAlloca(ctx.gen.maskType)
		bl.SetName("break_lanes")
		ci.breakLanesPtr = bl
		cl := ctx.allocaBlock.NewAlloca(ctx.gen.maskType)
		cl.SetName("continue_lanes")
		ci.continueLanesPtr = cl

		ctx.StoreInst(ctx.maskAllOff, bl)
		ctx.StoreInst(ctx.maskAllOff, cl)
	}

	ctx.controlFlow = append(ctx.controlFlow, ci)
}

// EndLoop leaves a loop region, restoring the internal mask for the code
// after the loop (lanes that broke out resume; lanes that returned stay
// off).
func (ctx *FunctionEmitContext) EndLoop() {
	ci := ctx.popRegion()
	if !ci.isLoop {
		report.ICE("EndLoop() matched with an if region")
	}
	if ci.isUniform {
		return
	}

	mask := ci.savedMask
	if ctx.anyLanesReturned && ctx.bblock != nil {
		returnedLanes := ctx.bblock.NewLoad(ctx.gen.maskType, ctx.returnedLanesPtr)
		mask = ctx.binaryAndNot(mask, returnedLanes)
	}
	ctx.SetInternalMask(mask)
}

// SetLoopMask records the mask the loop body was entered with; coherent
// break and continue probes measure liveness against it.
func (ctx *FunctionEmitContext) SetLoopMask(v value.Value) {
	loop := ctx.innermostLoop()
	if loop == nil {
		report.ICE("SetLoopMask() outside of a loop")
	}
	loop.loopMask = v
}

// RestoreContinuedLanes re-enables lanes that executed a continue during
// the current iteration; called just before the loop test or step.
func (ctx *FunctionEmitContext) RestoreContinuedLanes() {
	loop := ctx.innermostLoop()
	if loop == nil || loop.isUniform || ctx.bblock == nil {
		return
	}

	continueLanes := ctx.bblock.NewLoad(ctx.gen.maskType, loop.continueLanesPtr)
	ctx.SetInternalMask(ctx.binaryOr(ctx.internalMask, continueLanes))
	ctx.StoreInst(ctx.maskAllOff, loop.continueLanesPtr)
}

// VaryingCFDepth returns the number of enclosing varying control flow
// regions.
func (ctx *FunctionEmitContext) VaryingCFDepth() int {
	depth := 0
	for _, ci := range ctx.controlFlow {
		if !ci.isUniform {
			depth++
		}
	}
	return depth
}

func (ctx *FunctionEmitContext) popRegion() *cfInfo {
	if len(ctx.controlFlow) == 0 {
		report.ICE("control flow region stack underflow")
	}
	ci := ctx.controlFlow[len(ctx.controlFlow)-1]
	ctx.controlFlow = ctx.controlFlow[:len(ctx.controlFlow)-1]
	return ci
}

func (ctx *FunctionEmitContext) innermostLoop() *cfInfo {
	for i := len(ctx.controlFlow) - 1; i >= 0; i-- {
		if ctx.controlFlow[i].isLoop {
			return ctx.controlFlow[i]
		}
	}
	return nil
}

// jumpIsUniform reports whether a break/continue here compiles to a plain
// branch: the innermost loop is uniform and every region between it and the
// jump is a uniform if.
func (ctx *FunctionEmitContext) jumpIsUniform() bool {
	for i := len(ctx.controlFlow) - 1; i >= 0; i-- {
		ci := ctx.controlFlow[i]
		if ci.isLoop {
			return ci.isUniform
		}
		if !ci.isUniform {
			return false
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Structured jumps

// Break emits a break out of the innermost loop.  Under uniform control
// flow it is a plain branch; under varying control flow the active lanes
// are added to the loop's break set and masked off.  With coherent set, an
// early branch to the loop exit is taken when no lane of the loop remains
// live.
func (ctx *FunctionEmitContext) Break(coherent bool) {
	loop := ctx.innermostLoop()
	if loop == nil {
		report.Error(ctx.debugPos, "\"break\" statement used outside of a loop.")
		return
	}
	if ctx.bblock == nil {
		return
	}

	if ctx.jumpIsUniform() {
		ctx.BranchInst(loop.breakTarget)
		return
	}

	breakLanes := ctx.bblock.NewLoad(ctx.gen.maskType, loop.breakLanesPtr)
	newBreakLanes := ctx.binaryOr(breakLanes, ctx.GetFullMask())
	ctx.StoreInst(newBreakLanes, loop.breakLanesPtr)
	ctx.SetInternalMask(ctx.maskAllOff)

	if coherent && loop.loopMask != nil {
		live := ctx.binaryAndNot(loop.loopMask, newBreakLanes)
		bAfter := ctx.CreateBasicBlock("after_cbreak")
		ctx.CondBranchInst(bAfter, loop.breakTarget, ctx.Any(live))
		ctx.SetCurrentBasicBlock(bAfter)
	}
}

// Continue emits a continue to the innermost loop's step/test.  The varying
// form adds the active lanes to the continue set; RestoreContinuedLanes
// re-enables them at the end of the iteration.
func (ctx *FunctionEmitContext) Continue(coherent bool) {
	loop := ctx.innermostLoop()
	if loop == nil {
		report.Error(ctx.debugPos, "\"continue\" statement used outside of a loop.")
		return
	}
	if ctx.bblock == nil {
		return
	}

	if ctx.jumpIsUniform() {
		ctx.BranchInst(loop.continueTarget)
		return
	}

	continueLanes := ctx.bblock.NewLoad(ctx.gen.maskType, loop.continueLanesPtr)
	newContinueLanes := ctx.binaryOr(continueLanes, ctx.GetFullMask())
	ctx.StoreInst(newContinueLanes, loop.continueLanesPtr)
	ctx.SetInternalMask(ctx.maskAllOff)

	if coherent && loop.loopMask != nil {
		breakLanes := ctx.bblock.NewLoad(ctx.gen.maskType, loop.breakLanesPtr)
		done := ctx.binaryOr(breakLanes, newContinueLanes)
		live := ctx.binaryAndNot(loop.loopMask, done)
		bAfter := ctx.CreateBasicBlock("after_ccontinue")
		ctx.CondBranchInst(bAfter, loop.continueTarget, ctx.Any(live))
		ctx.SetCurrentBasicBlock(bAfter)
	}
}

// CurrentLanesReturned marks the active lanes as returned, recording the
// return value if there is one.  Outside of varying control flow this
// branches straight to the function epilogue; inside it the lanes are
// masked off and, with coherent set, an early branch to the epilogue is
// taken when every lane of the function has returned.
func (ctx *FunctionEmitContext) CurrentLanesReturned(retVal value.Value, coherent bool) {
	if ctx.bblock == nil {
		return
	}

	// Fast path: no varying control flow, the whole gang is live, and no
	// lane has returned early, so the stored value needs no blending.
	if ctx.VaryingCFDepth() == 0 && !ctx.anyLanesReturned &&
		ctx.functionMask == value.Value(ctx.maskAllOn) {
		if retVal != nil && ctx.returnValuePtr != nil {
			ctx.StoreInst(retVal, ctx.returnValuePtr)
		}
		ctx.BranchInst(ctx.returnBlock)
		return
	}

	ctx.anyLanesReturned = true
	mask := ctx.GetFullMask()

	returnedLanes := ctx.bblock.NewLoad(ctx.gen.maskType, ctx.returnedLanesPtr)
	newReturnedLanes := ctx.binaryOr(returnedLanes, mask)
	ctx.StoreInst(newReturnedLanes, ctx.returnedLanesPtr)

	if retVal != nil && ctx.returnValuePtr != nil {
		if _, isVec := ctx.returnLLType.(*lltypes.VectorType); isVec {
			old := ctx.bblock.NewLoad(ctx.returnLLType, ctx.returnValuePtr)
			blended := ctx.bblock.NewSelect(mask, retVal, old)
			ctx.StoreInst(blended, ctx.returnValuePtr)
		} else {
			// A uniform return value is by definition the same in every
			// lane, so a plain store is enough.
			ctx.StoreInst(retVal, ctx.returnValuePtr)
		}
	}

	ctx.SetInternalMask(ctx.maskAllOff)

	if coherent {
		notDone := ctx.binaryAndNot(ctx.functionMask, newReturnedLanes)
		bAfter := ctx.CreateBasicBlock("after_creturn")
		ctx.CondBranchInst(bAfter, ctx.returnBlock, ctx.Any(notDone))
		ctx.SetCurrentBasicBlock(bAfter)
	}
}

// -----------------------------------------------------------------------------
// Storage and instructions

// AllocaInst reserves stack storage in the function's alloca block so it is
// allocated once regardless of loops.
func (ctx *FunctionEmitContext) AllocaInst(typ lltypes.Type, name string) value.Value {
	inst := ctx.allocaBlock.NewAlloca(typ)
	inst.SetName(name)
	return inst
}

// StoreInst stores v through ptr in the current block.
func (ctx *FunctionEmitContext) StoreInst(v value.Value, ptr value.Value) {
	if ctx.bblock == nil {
		return
	}
	ctx.bblock.NewStore(v, ptr)
}

// LoadInst loads a value of the given type through ptr.
func (ctx *FunctionEmitContext) LoadInst(typ lltypes.Type, ptr value.Value) value.Value {
	if ctx.bblock == nil {
		return nil
	}
	return ctx.bblock.NewLoad(typ, ptr)
}

// GetElementPtrInst computes &base[i][j] for aggregate element access.
func (ctx *FunctionEmitContext) GetElementPtrInst(typ lltypes.Type, base value.Value, i, j int64) value.Value {
	if ctx.bblock == nil {
		return nil
	}
	return ctx.bblock.NewGetElementPtr(typ, base,
		constant.NewInt(lltypes.I32, i), constant.NewInt(lltypes.I32, j))
}

// BitCastInst reinterprets v as the given type.
func (ctx *FunctionEmitContext) BitCastInst(v value.Value, typ lltypes.Type) value.Value {
	if ctx.bblock == nil {
		return nil
	}
	return ctx.bblock.NewBitCast(v, typ)
}

// CallInst calls fn with the given arguments.
func (ctx *FunctionEmitContext) CallInst(fn value.Value, args ...value.Value) value.Value {
	if ctx.bblock == nil {
		return nil
	}
	return ctx.bblock.NewCall(fn, args...)
}

// GetStringPtr returns an i8* to the NUL-terminated interned copy of s.
func (ctx *FunctionEmitContext) GetStringPtr(s string) value.Value {
	return ctx.BitCastInst(ctx.gen.internString(s), lltypes.I8Ptr)
}

// SetDebugPos records the source position subsequent instructions belong
// to.
func (ctx *FunctionEmitContext) SetDebugPos(pos *report.TextPosition) {
	ctx.debugPos = pos
}

// AddInstrumentationPoint emits a __do_instrument() callback when
// instrumentation is enabled.
func (ctx *FunctionEmitContext) AddInstrumentationPoint(note string) {
	if !ctx.gen.cfg.Opt.EmitInstrumentation || ctx.bblock == nil {
		return
	}

	file, line := "", 0
	if ctx.debugPos != nil {
		file, line = ctx.debugPos.Name, ctx.debugPos.FirstLine
	}
	ctx.CallInst(ctx.gen.instrumentFunc,
		ctx.GetStringPtr(file),
		ctx.GetStringPtr(note),
		constant.NewInt(lltypes.I32, int64(line)),
		ctx.LaneMask(ctx.GetFullMask()))
}
