package sema

import (
	"spmdc/ast"
	"spmdc/types"
)

// HasVaryingBreakOrContinue walks a loop body looking for a break or
// continue statement reachable under varying control flow.  A loop whose
// body has one can't be compiled as a uniform loop even if its test is
// uniform: lanes diverge at the jump, so the loop needs full mask
// management.
//
// The walk deliberately does not descend into nested do/for loops: a break
// or continue inside a nested loop targets that loop, not this one.
func HasVaryingBreakOrContinue(stmt ast.Stmt) bool {
	return hasVaryingBreakOrContinue(stmt, false)
}

func hasVaryingBreakOrContinue(stmt ast.Stmt, inVaryingCF bool) bool {
	switch v := stmt.(type) {
	case *ast.StmtList:
		for _, s := range v.Stmts {
			if hasVaryingBreakOrContinue(s, inVaryingCF) {
				return true
			}
		}

	case *ast.IfStmt:
		if v.Test != nil && types.IsVaryingType(v.Test.Type()) {
			inVaryingCF = true
		}
		if hasVaryingBreakOrContinue(v.TrueStmts, inVaryingCF) ||
			hasVaryingBreakOrContinue(v.FalseStmts, inVaryingCF) {
			return true
		}

	case *ast.BreakStmt:
		if inVaryingCF {
			return true
		}

	case *ast.ContinueStmt:
		if inVaryingCF {
			return true
		}
	}

	return false
}
