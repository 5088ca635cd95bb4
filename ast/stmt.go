package ast

import (
	"spmdc/common"
	"spmdc/config"
	"spmdc/report"
	"spmdc/types"
)

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	StmtBase

	Expr Expr
}

// NewExprStmt creates an expression statement.
func NewExprStmt(expr Expr, pos *report.TextPosition) *ExprStmt {
	return &ExprStmt{StmtBase: NewStmtBase(pos), Expr: expr}
}

// -----------------------------------------------------------------------------

// VariableDeclaration pairs one declared symbol with its optional
// initializer expression.
type VariableDeclaration struct {
	Sym  *common.Symbol
	Init Expr
}

// DeclStmt is an ordered sequence of variable declarations.
type DeclStmt struct {
	StmtBase

	Vars []VariableDeclaration
}

// NewDeclStmt creates a declaration statement.
func NewDeclStmt(vars []VariableDeclaration, pos *report.TextPosition) *DeclStmt {
	return &DeclStmt{StmtBase: NewStmtBase(pos), Vars: vars}
}

// -----------------------------------------------------------------------------

// IfStmt is a conditional with an optional else branch.
type IfStmt struct {
	StmtBase

	Test       Expr
	TrueStmts  Stmt
	FalseStmts Stmt

	// DoAllCheck is set for the source `cif` construct: emit the runtime
	// all-lanes-on dispatch.  Cleared when coherent control flow is
	// disabled.
	DoAllCheck bool

	// DoAnyCheck is derived: the test is varying, so the emitted arms need
	// any-lanes probes.
	DoAnyCheck bool
}

// NewIfStmt creates an if statement.  checkCoherence is set for `cif`.
func NewIfStmt(cfg *config.Config, test Expr, trueStmts, falseStmts Stmt, checkCoherence bool, pos *report.TextPosition) *IfStmt {
	return &IfStmt{
		StmtBase:   NewStmtBase(pos),
		Test:       test,
		TrueStmts:  trueStmts,
		FalseStmts: falseStmts,
		DoAllCheck: checkCoherence && !cfg.Opt.DisableCoherentControlFlow,
		DoAnyCheck: test != nil && types.IsVaryingType(test.Type()),
	}
}

// -----------------------------------------------------------------------------

// DoStmt is a do/while loop.
type DoStmt struct {
	StmtBase

	TestExpr  Expr
	BodyStmts Stmt

	DoCoherentCheck bool
}

// NewDoStmt creates a do statement.  checkCoherence is set for `cdo`.
func NewDoStmt(cfg *config.Config, test Expr, body Stmt, checkCoherence bool, pos *report.TextPosition) *DoStmt {
	return &DoStmt{
		StmtBase:        NewStmtBase(pos),
		TestExpr:        test,
		BodyStmts:       body,
		DoCoherentCheck: checkCoherence && !cfg.Opt.DisableCoherentControlFlow,
	}
}

// ForStmt is a for loop; init, test and step are all optional.
type ForStmt struct {
	StmtBase

	Init  Stmt
	Test  Expr
	Step  Stmt
	Stmts Stmt

	DoCoherentCheck bool
}

// NewForStmt creates a for statement.  checkCoherence is set for `cfor`.
func NewForStmt(cfg *config.Config, init Stmt, test Expr, step Stmt, body Stmt, checkCoherence bool, pos *report.TextPosition) *ForStmt {
	return &ForStmt{
		StmtBase:        NewStmtBase(pos),
		Init:            init,
		Test:            test,
		Step:            step,
		Stmts:           body,
		DoCoherentCheck: checkCoherence && !cfg.Opt.DisableCoherentControlFlow,
	}
}

// -----------------------------------------------------------------------------

// BreakStmt exits the innermost enclosing loop.
type BreakStmt struct {
	StmtBase

	DoCoherenceCheck bool
}

// NewBreakStmt creates a break statement.  checkCoherence is set for
// `cbreak`.
func NewBreakStmt(cfg *config.Config, checkCoherence bool, pos *report.TextPosition) *BreakStmt {
	return &BreakStmt{
		StmtBase:         NewStmtBase(pos),
		DoCoherenceCheck: checkCoherence && !cfg.Opt.DisableCoherentControlFlow,
	}
}

// ContinueStmt jumps to the step/test of the innermost enclosing loop.
type ContinueStmt struct {
	StmtBase

	DoCoherenceCheck bool
}

// NewContinueStmt creates a continue statement.  checkCoherence is set for
// `ccontinue`.
func NewContinueStmt(cfg *config.Config, checkCoherence bool, pos *report.TextPosition) *ContinueStmt {
	return &ContinueStmt{
		StmtBase:         NewStmtBase(pos),
		DoCoherenceCheck: checkCoherence && !cfg.Opt.DisableCoherentControlFlow,
	}
}

// ReturnStmt returns the current lanes from the enclosing function.
type ReturnStmt struct {
	StmtBase

	Val Expr

	DoCoherenceCheck bool
}

// NewReturnStmt creates a return statement.  checkCoherence is set for
// `creturn`.
func NewReturnStmt(cfg *config.Config, val Expr, checkCoherence bool, pos *report.TextPosition) *ReturnStmt {
	return &ReturnStmt{
		StmtBase:         NewStmtBase(pos),
		Val:              val,
		DoCoherenceCheck: checkCoherence && !cfg.Opt.DisableCoherentControlFlow,
	}
}

// -----------------------------------------------------------------------------

// StmtList is an ordered sequence of statements.  It introduces a lexical
// scope when emitted.
type StmtList struct {
	StmtBase

	Stmts []Stmt
}

// NewStmtList creates a statement list.
func NewStmtList(stmts []Stmt, pos *report.TextPosition) *StmtList {
	return &StmtList{StmtBase: NewStmtBase(pos), Stmts: stmts}
}

// -----------------------------------------------------------------------------

// PrintStmt prints a formatted message through the __do_print runtime
// helper.  Values is either a single expression, an ExprList, or nil.
type PrintStmt struct {
	StmtBase

	Format string
	Values Expr
}

// NewPrintStmt creates a print statement.
func NewPrintStmt(format string, values Expr, pos *report.TextPosition) *PrintStmt {
	return &PrintStmt{StmtBase: NewStmtBase(pos), Format: format, Values: values}
}

// AssertStmt checks a predicate at runtime through the __do_assert_uniform
// or __do_assert_varying runtime helper.
type AssertStmt struct {
	StmtBase

	Message string
	Expr    Expr
}

// NewAssertStmt creates an assert statement.
func NewAssertStmt(message string, expr Expr, pos *report.TextPosition) *AssertStmt {
	return &AssertStmt{StmtBase: NewStmtBase(pos), Message: message, Expr: expr}
}
