package codegen

import (
	"fmt"

	"spmdc/ast"
	"spmdc/config"
	"spmdc/sema"
	"spmdc/types"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
)

// Generator converts type-checked statement trees into an LLVM module.  One
// generator produces one module.
type Generator struct {
	cfg *config.Config

	// walker supplies the cost estimation that lowering decisions depend
	// on; safety under an all-off mask is checked with the package-level
	// sema.SafeToRunWithAllLanesOff.
	walker *sema.Walker

	// mod is the LLVM module being generated.
	mod *ir.Module

	// maskType is <W x i1> for the target's gang width.
	maskType *lltypes.VectorType

	// Runtime helpers declared up front in every module.
	printFunc         *ir.Func
	assertUniformFunc *ir.Func
	assertVaryingFunc *ir.Func
	syncFunc          *ir.Func
	instrumentFunc    *ir.Func
	gatherFunc        *ir.Func
	scatterFunc       *ir.Func

	// declaredFuncs tracks functions declared on demand for calls.
	declaredFuncs map[string]*ir.Func

	// globalCounter numbers anonymous globals such as interned strings.
	globalCounter int

	// internedStrings maps already-emitted string data to its global.
	internedStrings map[string]*ir.Global
}

// NewGenerator creates a generator for the given compilation config.
func NewGenerator(cfg *config.Config) *Generator {
	g := &Generator{
		cfg:             cfg,
		walker:          sema.NewWalker(cfg),
		mod:             ir.NewModule(),
		maskType:        lltypes.NewVector(uint64(cfg.Target.VectorWidth), lltypes.I1),
		declaredFuncs:   make(map[string]*ir.Func),
		internedStrings: make(map[string]*ir.Global),
	}
	g.declareRuntime()
	return g
}

// Module returns the module under construction.
func (g *Generator) Module() *ir.Module {
	return g.mod
}

// declareRuntime declares the runtime ABI every generated module calls
// into.  The lane mask handed to __do_print and __do_instrument is the
// movmsk-style integer form; the assert helpers take the raw mask vector.
func (g *Generator) declareRuntime() {
	i8pp := lltypes.NewPointer(lltypes.I8Ptr)

	g.printFunc = g.mod.NewFunc("__do_print", lltypes.Void,
		ir.NewParam("format", lltypes.I8Ptr),
		ir.NewParam("types", lltypes.I8Ptr),
		ir.NewParam("width", lltypes.I32),
		ir.NewParam("mask", lltypes.I64),
		ir.NewParam("args", i8pp))

	g.assertUniformFunc = g.mod.NewFunc("__do_assert_uniform", lltypes.Void,
		ir.NewParam("msg", lltypes.I8Ptr),
		ir.NewParam("cond", lltypes.I1),
		ir.NewParam("mask", g.maskType))

	g.assertVaryingFunc = g.mod.NewFunc("__do_assert_varying", lltypes.Void,
		ir.NewParam("msg", lltypes.I8Ptr),
		ir.NewParam("cond", g.maskType),
		ir.NewParam("mask", g.maskType))

	g.syncFunc = g.mod.NewFunc("__do_sync", lltypes.Void,
		ir.NewParam("mask", lltypes.I64))

	g.instrumentFunc = g.mod.NewFunc("__do_instrument", lltypes.Void,
		ir.NewParam("file", lltypes.I8Ptr),
		ir.NewParam("note", lltypes.I8Ptr),
		ir.NewParam("line", lltypes.I32),
		ir.NewParam("mask", lltypes.I64))

	// Gather and scatter pseudo-ops for varying-index accesses to 32-bit
	// element arrays; a later lowering pass maps them onto the target's
	// memory instructions.
	i32vec := lltypes.NewVector(uint64(g.cfg.Target.VectorWidth), lltypes.I32)
	g.gatherFunc = g.mod.NewFunc("__pseudo_gather_32", i32vec,
		ir.NewParam("base", lltypes.I8Ptr),
		ir.NewParam("index", i32vec),
		ir.NewParam("mask", g.maskType))
	g.scatterFunc = g.mod.NewFunc("__pseudo_scatter_32", lltypes.Void,
		ir.NewParam("base", lltypes.I8Ptr),
		ir.NewParam("index", i32vec),
		ir.NewParam("value", i32vec),
		ir.NewParam("mask", g.maskType))
}

// getOrDeclareFunc declares an external function the first time a call to
// it is generated.
func (g *Generator) getOrDeclareFunc(name string, ret lltypes.Type, paramTypes []lltypes.Type) *ir.Func {
	if fn, ok := g.declaredFuncs[name]; ok {
		return fn
	}

	params := make([]*ir.Param, len(paramTypes))
	for i, pt := range paramTypes {
		params[i] = ir.NewParam(fmt.Sprintf("a%d", i), pt)
	}
	fn := g.mod.NewFunc(name, ret, params...)
	g.declaredFuncs[name] = fn
	return fn
}

// internString returns a global holding the NUL-terminated bytes of s,
// reusing an existing one when the same literal is emitted twice.
func (g *Generator) internString(s string) *ir.Global {
	if glob, ok := g.internedStrings[s]; ok {
		return glob
	}

	glob := g.mod.NewGlobalDef(fmt.Sprintf("__str.%d", g.globalCounter), constant.NewCharArrayFromString(s+"\x00"))
	g.globalCounter++
	glob.Linkage = enum.LinkageInternal
	glob.Immutable = true
	g.internedStrings[s] = glob
	return glob
}

// EmitFunction generates an LLVM function with the given body.  The
// function's masks start all-on: callers of SPMD functions establish the
// entry mask.  Return statements store into the return-value slot and the
// epilogue block loads and returns it.
func (g *Generator) EmitFunction(name string, returnType types.Type, body ast.Stmt) *ir.Func {
	var retLLType lltypes.Type = lltypes.Void
	if returnType != nil {
		retLLType = g.convType(returnType)
	}

	fn := g.mod.NewFunc(name, retLLType)
	allocaBlock := fn.NewBlock("allocas")
	entry := fn.NewBlock("entry")

	ctx := newFunctionEmitContext(g, fn, allocaBlock, entry, returnType)

	ctx.SetCurrentBasicBlock(entry)
	if body != nil {
		g.EmitStmt(ctx, body)
	}

	// Fall off the end of the function: branch to the epilogue.
	if ctx.CurrentBasicBlock() != nil {
		ctx.BranchInst(ctx.returnBlock)
	}
	allocaBlock.NewBr(entry)

	ctx.SetCurrentBasicBlock(ctx.returnBlock)
	if ctx.returnValuePtr != nil {
		retVal := ctx.LoadInst(retLLType, ctx.returnValuePtr)
		ctx.returnBlock.NewRet(retVal)
	} else {
		ctx.returnBlock.NewRet(nil)
	}

	return fn
}
