package ast

import (
	"spmdc/report"
	"spmdc/types"
)

// Node is the interface shared by every statement and expression node.
type Node interface {
	// Pos returns the source position of the node.
	Pos() *report.TextPosition
}

// NodeBase is a utility base struct for all tree nodes.
type NodeBase struct {
	pos *report.TextPosition
}

// NewNodeBase creates a node base at the given position.
func NewNodeBase(pos *report.TextPosition) NodeBase {
	return NodeBase{pos: pos}
}

func (nb NodeBase) Pos() *report.TextPosition {
	return nb.pos
}

// -----------------------------------------------------------------------------

// Stmt is the interface for all statement nodes.  Statements are pure data:
// the sema package implements type checking, optimization and cost
// estimation over them, and the codegen package implements emission.
type Stmt interface {
	Node
	stmtNode()
}

// StmtBase is embedded by all statement variants.
type StmtBase struct {
	NodeBase
}

func (StmtBase) stmtNode() {}

// NewStmtBase creates a statement base at the given position.
func NewStmtBase(pos *report.TextPosition) StmtBase {
	return StmtBase{NewNodeBase(pos)}
}

// -----------------------------------------------------------------------------

// Expr is the interface for all expression nodes.  The statement core only
// consumes the interface: type inspection plus the per-pass operations the
// sema and codegen packages dispatch on the concrete variant.
type Expr interface {
	Node

	// Type returns the type of the expression, or nil if it has not been
	// determined yet.
	Type() types.Type

	// SetType records the type of the expression.
	SetType(types.Type)
}

// ExprBase is embedded by all expression variants.
type ExprBase struct {
	NodeBase

	typ types.Type
}

// NewExprBase creates an expression base at the given position.
func NewExprBase(pos *report.TextPosition) ExprBase {
	return ExprBase{NodeBase: NewNodeBase(pos)}
}

// NewTypedExprBase creates an expression base with a known type.
func NewTypedExprBase(pos *report.TextPosition, typ types.Type) ExprBase {
	return ExprBase{NodeBase: NewNodeBase(pos), typ: typ}
}

func (eb *ExprBase) Type() types.Type     { return eb.typ }
func (eb *ExprBase) SetType(t types.Type) { eb.typ = t }
