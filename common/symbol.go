package common

import (
	"spmdc/report"
	"spmdc/types"

	"github.com/llir/llvm/ir/value"
)

// StorageClass distinguishes stack locals from function-scoped globals.
type StorageClass int

const (
	StorageAuto StorageClass = iota
	StorageStatic
)

// Symbol represents a named variable in the program being compiled.
type Symbol struct {
	Name string
	Type types.Type

	StorageClass StorageClass

	// DefPos is the position the symbol was declared at.
	DefPos *report.TextPosition

	// VaryingCFDepth is the number of varying control flow regions
	// enclosing the symbol's declaration.  It is recorded during code
	// emission, when the declaration is reached with the region stack live;
	// the expression layer consults it for late diagnostics.
	VaryingCFDepth int

	// ConstValue caches the constant value of a const-qualified symbol
	// whose initializer folded to a scalar constant.  Stored as an opaque
	// pointer to the folded ast.ConstExpr to keep this package free of an
	// ast dependency.
	ConstValue interface{}

	// StoragePtr is the emitted storage location (an alloca or a global).
	StoragePtr value.Value

	// ParentFunction is the name of the function the symbol was emitted
	// into, for automatic storage.
	ParentFunction string
}
