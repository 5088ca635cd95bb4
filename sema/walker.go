package sema

import (
	"spmdc/ast"
	"spmdc/config"
	"spmdc/types"
)

// Walker drives the semantic passes over a statement tree: type checking
// and optimization.  Both passes work by return-value substitution: they
// hand back the (possibly replaced) node, or nil when the subtree is
// rejected.  Parents store the returned value into their child slot and
// keep checking siblings so one run surfaces as many diagnostics as
// possible.
type Walker struct {
	cfg *config.Config
}

// NewWalker creates a walker for the given compilation config.
func NewWalker(cfg *config.Config) *Walker {
	return &Walker{cfg: cfg}
}

// boolTestType returns the bool type a control flow test should be cast to,
// given the uniformity decision for the construct.
func boolTestType(uniform bool) *types.AtomicType {
	if uniform {
		return types.UniformBool
	}
	return types.VaryingBool
}

// castTestTo wraps test in a cast to want, unless it already has exactly
// that type.  Skipping the redundant wrap keeps repeated type checking a
// no-op on the returned tree.
func castTestTo(want *types.AtomicType, test ast.Expr) ast.Expr {
	if types.Equal(test.Type(), want) {
		return test
	}
	return ast.NewTypeCastExpr(want, test, test.Pos())
}
