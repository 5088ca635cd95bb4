package codegen

import (
	"strings"
	"testing"

	"spmdc/ast"
	"spmdc/common"
	"spmdc/config"
	"spmdc/report"
	"spmdc/sema"
	"spmdc/types"
)

// Shared helpers for building and emitting statement trees in tests.

func testPos(line int) *report.TextPosition {
	return report.NewPosition("test.sp", line, 1)
}

func newSym(name string, typ types.Type) *common.Symbol {
	return &common.Symbol{Name: name, Type: typ, DefPos: testPos(1)}
}

func declare(sym *common.Symbol, init ast.Expr) *ast.DeclStmt {
	return ast.NewDeclStmt([]ast.VariableDeclaration{{Sym: sym, Init: init}}, sym.DefPos)
}

func uniformInt(v int64) *ast.ConstExpr {
	return ast.NewIntConst(types.UniformInt32, []int64{v}, testPos(1))
}

func lessThan(x ast.Expr, v int64) *ast.BinaryExpr {
	return ast.NewBinaryExpr(ast.BinaryLt, x, uniformInt(v), testPos(1))
}

func assignTo(sym *common.Symbol, v int64) *ast.ExprStmt {
	return ast.NewExprStmt(
		ast.NewAssignExpr(ast.NewSymbolExpr(sym, testPos(2)), uniformInt(v), testPos(2)), testPos(2))
}

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

// emitBody runs the full pass pipeline over the body and returns the
// printed module.
func emitBody(t *testing.T, cfg *config.Config, returnType types.Type, stmts ...ast.Stmt) string {
	t.Helper()

	body := ast.NewStmtList(stmts, testPos(1))
	w := sema.NewWalker(cfg)
	checked := w.TypeCheckStmt(body)
	if checked == nil {
		t.Fatal("type check rejected the test body")
	}
	optimized := w.OptimizeStmt(checked)

	g := NewGenerator(cfg)
	g.EmitFunction("test_fn", returnType, optimized)
	return g.Module().String()
}

// -----------------------------------------------------------------------------

func TestUniformIfLowersToPlainBranch(t *testing.T) {
	captureDiagnostics(t)
	cfg := config.Default()

	u := newSym("u", types.UniformInt32)
	x := newSym("x", types.VaryingInt32)

	mod := emitBody(t, cfg, nil,
		declare(u, uniformInt(5)),
		declare(x, nil),
		ast.NewIfStmt(cfg, lessThan(ast.NewSymbolExpr(u, testPos(2)), 4),
			assignTo(x, 1), nil, false, testPos(2)))

	for _, label := range []string{"if_then", "if_else", "if_exit"} {
		if !strings.Contains(mod, label) {
			t.Errorf("module missing uniform if block %q", label)
		}
	}
	for _, bad := range []string{"cif_", "safe_if_", "select"} {
		if strings.Contains(mod, bad) {
			t.Errorf("uniform if emitted mask machinery %q:\n%s", bad, mod)
		}
	}
}

func TestVaryingIfStaticAllOnLowering(t *testing.T) {
	captureDiagnostics(t)
	cfg := config.Default()

	v := newSym("v", types.VaryingInt32)
	x := newSym("x", types.VaryingInt32)

	mod := emitBody(t, cfg, nil,
		declare(v, uniformInt(2)),
		declare(x, nil),
		ast.NewIfStmt(cfg, lessThan(ast.NewSymbolExpr(v, testPos(2)), 4),
			ast.NewStmtList([]ast.Stmt{assignTo(x, 1), assignTo(x, 2), assignTo(x, 3),
				ast.NewAssertStmt("arm", lessThan(ast.NewSymbolExpr(v, testPos(3)), 9), testPos(3))}, testPos(2)),
			nil, false, testPos(2)))

	// The mask is statically all-on at function scope, so the lowering
	// probes the test itself for the all-true / all-false / mixed split.
	for _, label := range []string{"cif_test_all", "cif_test_none_check", "cif_test_none", "cif_test_mixed", "cif_done"} {
		if !strings.Contains(mod, label) {
			t.Errorf("module missing all-on lowering block %q:\n%s", label, mod)
		}
	}
}

func TestCoherentIfEmitsRuntimeDispatch(t *testing.T) {
	captureDiagnostics(t)
	cfg := config.Default()

	a := newSym("a", types.VaryingInt32)
	b := newSym("b", types.VaryingInt32)
	x := newSym("x", types.VaryingInt32)

	// The outer if puts the inner cif under a mixed mask, forcing the
	// runtime all-on dispatch.
	inner := ast.NewIfStmt(cfg, lessThan(ast.NewSymbolExpr(b, testPos(3)), 4),
		assignTo(x, 1), assignTo(x, 2), true, testPos(3))
	outer := ast.NewIfStmt(cfg, lessThan(ast.NewSymbolExpr(a, testPos(2)), 4),
		inner, nil, false, testPos(2))

	mod := emitBody(t, cfg, nil,
		declare(a, uniformInt(1)), declare(b, uniformInt(2)), declare(x, nil), outer)

	if !strings.Contains(mod, "cif_mask_all") || !strings.Contains(mod, "cif_mask_mixed") {
		t.Errorf("coherent if did not emit the runtime mask dispatch:\n%s", mod)
	}
}

func TestCheapPureArmsLowerToPredicatedStraightLine(t *testing.T) {
	captureDiagnostics(t)
	cfg := config.Default()

	a := newSym("a", types.VaryingInt32)
	b := newSym("b", types.VaryingInt32)
	x := newSym("x", types.VaryingInt32)

	// Inner if: both arms are pure, cheap assignments, so under a mixed
	// mask they execute unconditionally with blended stores; no any-probes
	// and no join blocks.
	inner := ast.NewIfStmt(cfg, lessThan(ast.NewSymbolExpr(b, testPos(3)), 4),
		assignTo(x, 0), assignTo(x, 1), false, testPos(3))
	outer := ast.NewIfStmt(cfg, lessThan(ast.NewSymbolExpr(a, testPos(2)), 4),
		inner, nil, false, testPos(2))

	mod := emitBody(t, cfg, nil,
		declare(a, uniformInt(1)), declare(b, uniformInt(2)), declare(x, nil), outer)

	if strings.Contains(mod, "%if_done") || strings.Contains(mod, "safe_if_run_true") {
		t.Errorf("cheap pure arms fell through to the mixed-mask lowering:\n%s", mod)
	}
	if !strings.Contains(mod, "select") {
		t.Errorf("predicated lowering emitted no blended stores:\n%s", mod)
	}
}

func TestUnsafeArmFallsThroughToMixedLowering(t *testing.T) {
	captureDiagnostics(t)
	cfg := config.Default()

	a := newSym("a", types.VaryingInt32)
	b := newSym("b", types.VaryingInt32)

	// A function call is never safe under an all-off mask, so the inner if
	// must use the probing mixed-mask lowering.
	call := ast.NewExprStmt(ast.NewFunctionCallExpr(
		ast.NewFunctionSymbolExpr("side_effect", testPos(3)), nil, testPos(3)), testPos(3))
	inner := ast.NewIfStmt(cfg, lessThan(ast.NewSymbolExpr(b, testPos(3)), 4),
		call, nil, false, testPos(3))
	outer := ast.NewIfStmt(cfg, lessThan(ast.NewSymbolExpr(a, testPos(2)), 4),
		inner, nil, false, testPos(2))

	mod := emitBody(t, cfg, nil,
		declare(a, uniformInt(1)), declare(b, uniformInt(2)), outer)

	if !strings.Contains(mod, "safe_if_run_true") || !strings.Contains(mod, "%if_done") {
		t.Errorf("unsafe arm did not use the mixed-mask lowering:\n%s", mod)
	}
}

// -----------------------------------------------------------------------------

func TestUnsizedArrayTakesSizeFromInitializer(t *testing.T) {
	captureDiagnostics(t)
	cfg := config.Default()

	a := newSym("a", &types.ArrayType{Elem: types.UniformInt32, Count: 0})
	init := ast.NewExprList([]ast.Expr{uniformInt(1), uniformInt(2), uniformInt(3)}, testPos(1))

	mod := emitBody(t, cfg, nil, declare(a, init))

	if !strings.Contains(mod, "[3 x i32]") {
		t.Errorf("unsized array was not sized from its 3-element initializer:\n%s", mod)
	}
	if at, ok := a.Type.(*types.ArrayType); !ok || at.ElementCount() != 3 {
		t.Errorf("symbol type = %v; want a 3-element array", a.Type)
	}
}

func TestUnsizedArrayWithoutInitializerRejected(t *testing.T) {
	cs := captureDiagnostics(t)
	cfg := config.Default()

	b := newSym("b", &types.ArrayType{Elem: types.UniformInt32, Count: 0})
	mod := emitBody(t, cfg, nil, declare(b, nil))

	found := false
	for _, msg := range cs.ErrorMessages() {
		if strings.Contains(msg, "unsized array") {
			found = true
		}
	}
	if !found {
		t.Error("no diagnostic for an unsized array without an initializer")
	}
	if strings.Contains(mod, "%b = alloca") {
		t.Errorf("storage was emitted for a rejected declaration:\n%s", mod)
	}
}

func TestStaticDeclFallsBackToZeroOnNonConstInit(t *testing.T) {
	cs := captureDiagnostics(t)
	cfg := config.Default()

	u := newSym("u", types.UniformInt32)
	k := &common.Symbol{
		Name: "k", Type: types.UniformFloat,
		StorageClass: common.StorageStatic, DefPos: testPos(7),
	}

	mod := emitBody(t, cfg, nil,
		declare(u, uniformInt(5)),
		declare(k, ast.NewSymbolExpr(u, testPos(7))))

	found := false
	for _, msg := range cs.ErrorMessages() {
		if strings.Contains(msg, "must be a constant") {
			found = true
		}
	}
	if !found {
		t.Error("no diagnostic for a non-constant static initializer")
	}
	if !strings.Contains(mod, "static.7.k") {
		t.Errorf("static global was not created with its keyed name:\n%s", mod)
	}
}

func TestStaticDeclWithConstantInitializer(t *testing.T) {
	captureDiagnostics(t)
	cfg := config.Default()

	k := &common.Symbol{
		Name: "k", Type: types.UniformInt32,
		StorageClass: common.StorageStatic, DefPos: testPos(3),
	}
	mod := emitBody(t, cfg, nil, declare(k, uniformInt(42)))

	if !strings.Contains(mod, "static.3.k") || !strings.Contains(mod, "42") {
		t.Errorf("static global missing or missing its constant initializer:\n%s", mod)
	}
	if !strings.Contains(mod, "internal") {
		t.Errorf("static global not emitted with internal linkage:\n%s", mod)
	}
}

func TestBraceInitializerForAtomicRejected(t *testing.T) {
	cs := captureDiagnostics(t)
	cfg := config.Default()

	x := newSym("x", types.UniformInt32)
	init := ast.NewExprList([]ast.Expr{uniformInt(1)}, testPos(1))
	emitBody(t, cfg, nil, declare(x, init))

	found := false
	for _, msg := range cs.ErrorMessages() {
		if strings.Contains(msg, "Expression list initializers") {
			found = true
		}
	}
	if !found {
		t.Error("no diagnostic for a brace initializer over an atomic type")
	}
}

func TestAggregateInitializerArityChecked(t *testing.T) {
	cs := captureDiagnostics(t)
	cfg := config.Default()

	a := newSym("a", &types.ArrayType{Elem: types.UniformInt32, Count: 4})
	init := ast.NewExprList([]ast.Expr{uniformInt(1), uniformInt(2)}, testPos(1))
	emitBody(t, cfg, nil, declare(a, init))

	found := false
	for _, msg := range cs.ErrorMessages() {
		if strings.Contains(msg, "requires 4 values; 2 provided") {
			found = true
		}
	}
	if !found {
		t.Errorf("no arity diagnostic; got %v", cs.ErrorMessages())
	}
}

// -----------------------------------------------------------------------------

func TestUniformForLoopNeedsNoLaneTracking(t *testing.T) {
	captureDiagnostics(t)
	cfg := config.Default()

	i := newSym("i", types.UniformInt32)
	x := newSym("x", types.VaryingInt32)

	fs := ast.NewForStmt(cfg,
		declare(i, uniformInt(0)),
		lessThan(ast.NewSymbolExpr(i, testPos(2)), 10),
		ast.NewExprStmt(ast.NewUnaryExpr(ast.UnaryPreInc, ast.NewSymbolExpr(i, testPos(2)), testPos(2)), testPos(2)),
		ast.NewStmtList([]ast.Stmt{assignTo(x, 1)}, testPos(3)),
		false, testPos(2))

	mod := emitBody(t, cfg, nil, declare(x, nil), fs)

	for _, label := range []string{"for_test", "for_step", "for_loop", "for_exit"} {
		if !strings.Contains(mod, label) {
			t.Errorf("module missing loop block %q", label)
		}
	}
	if strings.Contains(mod, "break_lanes") || strings.Contains(mod, "continue_lanes") {
		t.Errorf("uniform loop allocated lane tracking state:\n%s", mod)
	}
}

func TestVaryingBreakPromotesLoopToLaneTracking(t *testing.T) {
	captureDiagnostics(t)
	cfg := config.Default()

	i := newSym("i", types.UniformInt32)
	v := newSym("v", types.VaryingInt32)

	body := ast.NewStmtList([]ast.Stmt{
		ast.NewIfStmt(cfg, lessThan(ast.NewSymbolExpr(v, testPos(3)), 4),
			ast.NewBreakStmt(cfg, false, testPos(4)), nil, false, testPos(3)),
	}, testPos(3))

	fs := ast.NewForStmt(cfg,
		declare(i, uniformInt(0)),
		lessThan(ast.NewSymbolExpr(i, testPos(2)), 10),
		ast.NewExprStmt(ast.NewUnaryExpr(ast.UnaryPreInc, ast.NewSymbolExpr(i, testPos(2)), testPos(2)), testPos(2)),
		body, false, testPos(2))

	mod := emitBody(t, cfg, nil, declare(v, uniformInt(1)), fs)

	// The uniform-typed test was promoted to varying, so the loop carries
	// break/continue lane sets and restores continued lanes at the step.
	if !strings.Contains(mod, "break_lanes") || !strings.Contains(mod, "continue_lanes") {
		t.Errorf("promoted loop did not allocate lane tracking state:\n%s", mod)
	}
}

func TestCoherentLoopSplitsAllOnAndMixedBodies(t *testing.T) {
	captureDiagnostics(t)
	cfg := config.Default()

	v := newSym("v", types.VaryingInt32)
	x := newSym("x", types.VaryingInt32)

	ds := ast.NewDoStmt(cfg,
		lessThan(ast.NewSymbolExpr(v, testPos(2)), 4),
		ast.NewStmtList([]ast.Stmt{assignTo(x, 1)}, testPos(3)),
		true, testPos(2))

	mod := emitBody(t, cfg, nil, declare(v, uniformInt(1)), declare(x, nil), ds)

	if !strings.Contains(mod, "loop_all_on") || !strings.Contains(mod, "loop_mixed") {
		t.Errorf("coherent loop did not emit the all-on/mixed body split:\n%s", mod)
	}
	if !strings.Contains(mod, "do_loop") || !strings.Contains(mod, "do_test") || !strings.Contains(mod, "do_exit") {
		t.Errorf("do loop blocks missing:\n%s", mod)
	}
}

func TestUniformConditionOnCoherentLoopWarns(t *testing.T) {
	cs := captureDiagnostics(t)
	cfg := config.Default()

	i := newSym("i", types.UniformInt32)
	ds := ast.NewDoStmt(cfg,
		lessThan(ast.NewSymbolExpr(i, testPos(2)), 4),
		ast.NewStmtList(nil, testPos(3)), true, testPos(2))

	emitBody(t, cfg, nil, declare(i, uniformInt(0)), ds)

	found := false
	for _, msg := range cs.Warnings() {
		if strings.Contains(msg, "Uniform condition") {
			found = true
		}
	}
	if !found {
		t.Error("no warning for a uniform condition on cdo")
	}
}

// -----------------------------------------------------------------------------

func TestReturnUnderVaryingIfTracksReturnedLanes(t *testing.T) {
	captureDiagnostics(t)
	cfg := config.Default()

	v := newSym("v", types.VaryingInt32)

	mod := emitBody(t, cfg, types.VaryingInt32,
		declare(v, uniformInt(1)),
		ast.NewIfStmt(cfg, lessThan(ast.NewSymbolExpr(v, testPos(2)), 4),
			ast.NewReturnStmt(cfg, uniformInt(1), false, testPos(3)), nil, false, testPos(2)),
		ast.NewReturnStmt(cfg, uniformInt(0), false, testPos(4)))

	if !strings.Contains(mod, "returned_lanes") {
		t.Errorf("varying return did not touch the returned lane set:\n%s", mod)
	}
	if !strings.Contains(mod, "return_value") {
		t.Errorf("no return value slot emitted:\n%s", mod)
	}
}

// -----------------------------------------------------------------------------

func TestPrintTypeEncodingAndWidening(t *testing.T) {
	captureDiagnostics(t)
	cfg := config.Default()

	values := ast.NewExprList([]ast.Expr{
		ast.NewIntConst(types.VaryingInt8, []int64{1}, testPos(1)),
		ast.NewFloatConst(types.UniformDouble, []float64{2.5}, testPos(1)),
	}, testPos(1))

	mod := emitBody(t, cfg, nil, ast.NewPrintStmt("%d %f\n", values, testPos(1)))

	// The 8-bit varying int widens to 32-bit, encoding as 'I'; the uniform
	// double encodes as 'd'.
	if !strings.Contains(mod, `c"Id\00"`) {
		t.Errorf("type code string != \"Id\":\n%s", mod)
	}
	if !strings.Contains(mod, "__do_print") {
		t.Errorf("no __do_print call emitted:\n%s", mod)
	}
	if !strings.Contains(mod, "[2 x i8*]") {
		t.Errorf("argument pointer array is not two entries:\n%s", mod)
	}
}

func TestPrintWithNoArgumentsPassesNullArray(t *testing.T) {
	captureDiagnostics(t)
	cfg := config.Default()

	mod := emitBody(t, cfg, nil, ast.NewPrintStmt("hello\n", nil, testPos(1)))

	if !strings.Contains(mod, "__do_print") || !strings.Contains(mod, "null") {
		t.Errorf("argument-less print did not pass a null pointer array:\n%s", mod)
	}
}

func TestNonAtomicPrintArgumentRejected(t *testing.T) {
	cs := captureDiagnostics(t)
	cfg := config.Default()

	a := newSym("a", &types.ArrayType{Elem: types.UniformInt32, Count: 2})
	emitBody(t, cfg, nil,
		declare(a, ast.NewExprList([]ast.Expr{uniformInt(1), uniformInt(2)}, testPos(1))),
		ast.NewPrintStmt("%v\n", ast.NewSymbolExpr(a, testPos(2)), testPos(2)))

	found := false
	for _, msg := range cs.ErrorMessages() {
		if strings.Contains(msg, "Only atomic types") {
			found = true
		}
	}
	if !found {
		t.Error("no diagnostic for a non-atomic print argument")
	}
}

// -----------------------------------------------------------------------------

func TestVaryingIndexStoreScatters(t *testing.T) {
	captureDiagnostics(t)
	cfg := config.Default()

	a := newSym("a", &types.ArrayType{Elem: types.UniformInt32, Count: 8})
	v := newSym("v", types.VaryingInt32)

	// a[v] = 0 with a varying index can't go through a single element
	// pointer; it lowers to the scatter pseudo-op under the current mask.
	store := ast.NewExprStmt(ast.NewAssignExpr(
		ast.NewIndexExpr(ast.NewSymbolExpr(a, testPos(3)), ast.NewSymbolExpr(v, testPos(3)), testPos(3)),
		uniformInt(0), testPos(3)), testPos(3))

	mod := emitBody(t, cfg, nil,
		declare(a, nil), declare(v, uniformInt(1)),
		ast.NewIfStmt(cfg, lessThan(ast.NewSymbolExpr(v, testPos(2)), 4),
			store, nil, false, testPos(2)))

	if !strings.Contains(mod, "__pseudo_scatter_32") {
		t.Errorf("varying-index store did not call the scatter pseudo-op:\n%s", mod)
	}
}

func TestVaryingIndexLoadGathers(t *testing.T) {
	captureDiagnostics(t)
	cfg := config.Default()

	a := newSym("a", &types.ArrayType{Elem: types.UniformInt32, Count: 8})
	v := newSym("v", types.VaryingInt32)
	x := newSym("x", types.VaryingInt32)

	load := ast.NewExprStmt(ast.NewAssignExpr(
		ast.NewSymbolExpr(x, testPos(2)),
		ast.NewIndexExpr(ast.NewSymbolExpr(a, testPos(2)), ast.NewSymbolExpr(v, testPos(2)), testPos(2)),
		testPos(2)), testPos(2))

	mod := emitBody(t, cfg, nil,
		declare(a, nil), declare(v, uniformInt(1)), declare(x, nil), load)

	if !strings.Contains(mod, "__pseudo_gather_32") {
		t.Errorf("varying-index load did not call the gather pseudo-op:\n%s", mod)
	}
}

func TestAssertPicksRuntimeHelperByVariability(t *testing.T) {
	captureDiagnostics(t)
	cfg := config.Default()

	u := newSym("u", types.UniformInt32)
	v := newSym("v", types.VaryingInt32)

	mod := emitBody(t, cfg, nil,
		declare(u, uniformInt(1)), declare(v, uniformInt(2)),
		ast.NewAssertStmt("u small", lessThan(ast.NewSymbolExpr(u, testPos(10)), 4), testPos(10)),
		ast.NewAssertStmt("v small", lessThan(ast.NewSymbolExpr(v, testPos(11)), 4), testPos(11)))

	if !strings.Contains(mod, "__do_assert_uniform") {
		t.Errorf("uniform assert did not call __do_assert_uniform:\n%s", mod)
	}
	if !strings.Contains(mod, "__do_assert_varying") {
		t.Errorf("varying assert did not call __do_assert_varying:\n%s", mod)
	}
	if !strings.Contains(mod, `Assertion failed: u small`) {
		t.Errorf("assert message not in module:\n%s", mod)
	}
}
