package optimizer

import "github.com/py2rs-dev/py2rs/internal/hir"

// eliminateDeadCode removes two narrow, always-safe categories of dead
// code: bare expression statements with no observable side effect, and an
// assignment to a local name that is immediately overwritten by the very
// next statement in the same straight-line block with no read of the old
// value in between. Anything that might carry a side effect — a Call, a
// MethodCall (append/pop/subscript-assignment included), a comprehension
// with a filter or a generator clause, a With — is never touched.
func eliminateDeadCode(body []hir.Stmt) ([]hir.Stmt, int) {
	count := 0

	var walkStmts func([]hir.Stmt) []hir.Stmt

	walkStmts = func(ss []hir.Stmt) []hir.Stmt {
		out := make([]hir.Stmt, 0, len(ss))

		for i := 0; i < len(ss); i++ {
			s := ss[i]

			switch n := s.(type) {
			case *hir.ExprStmt:
				if isSideEffectFree(n.Value) {
					count++
					continue
				}
			case *hir.Assign:
				if n.Target.Kind == hir.TargetSymbol && i+1 < len(ss) {
					if next, ok := ss[i+1].(*hir.Assign); ok &&
						next.Target.Kind == hir.TargetSymbol &&
						next.Target.Name == n.Target.Name &&
						isSideEffectFree(n.Value) &&
						!exprReferences(next.Value, n.Target.Name) {
						count++
						continue
					}
				}
			case *hir.If:
				n.ThenBody = walkStmts(n.ThenBody)
				n.ElseBody = walkStmts(n.ElseBody)
			case *hir.While:
				n.Body = walkStmts(n.Body)
			case *hir.For:
				n.Body = walkStmts(n.Body)
			case *hir.Try:
				n.Body = walkStmts(n.Body)
				n.Else = walkStmts(n.Else)
				n.Finally = walkStmts(n.Finally)

				for ei := range n.Except {
					n.Except[ei].Body = walkStmts(n.Except[ei].Body)
				}
			case *hir.With:
				n.Body = walkStmts(n.Body)
			}

			out = append(out, s)
		}

		return out
	}

	return walkStmts(body), count
}

// isSideEffectFree reports whether evaluating e can have no effect beyond
// producing a value: literals, variable reads, attribute reads, and
// arithmetic/comparison/logical combinations of those. Subscripts are
// excluded (a dict/list subscript can raise), and every call-shaped node is
// excluded regardless of callee, since purity here is never assumed from a
// name alone.
func isSideEffectFree(e hir.Expr) bool {
	switch n := e.(type) {
	case nil:
		return true
	case *hir.Literal, *hir.Var:
		return true
	case *hir.Attribute:
		return isSideEffectFree(n.Object)
	case *hir.Binary:
		return isSideEffectFree(n.Left) && isSideEffectFree(n.Right)
	case *hir.Unary:
		return isSideEffectFree(n.Operand)
	case *hir.Ternary:
		return isSideEffectFree(n.Cond) && isSideEffectFree(n.Then) && isSideEffectFree(n.Else)
	default:
		return false
	}
}

// exprReferences reports whether e reads variable name anywhere in its
// tree (a conservative superset: it does not distinguish read positions
// from binding positions, which is the safe direction for a dead-store
// check).
func exprReferences(e hir.Expr, name string) bool {
	switch n := e.(type) {
	case nil:
		return false
	case *hir.Var:
		return n.Name == name
	case *hir.Binary:
		return exprReferences(n.Left, name) || exprReferences(n.Right, name)
	case *hir.Unary:
		return exprReferences(n.Operand, name)
	case *hir.Attribute:
		return exprReferences(n.Object, name)
	case *hir.Subscript:
		return exprReferences(n.Object, name) || exprReferences(n.Index, name)
	case *hir.Slice:
		return exprReferences(n.Object, name) || exprReferences(n.Start, name) ||
			exprReferences(n.Stop, name) || exprReferences(n.Step, name)
	case *hir.Call:
		for _, a := range n.Args {
			if exprReferences(a, name) {
				return true
			}
		}

		for _, a := range n.Kwargs {
			if exprReferences(a, name) {
				return true
			}
		}

		return false
	case *hir.MethodCall:
		if exprReferences(n.Object, name) {
			return true
		}

		for _, a := range n.Args {
			if exprReferences(a, name) {
				return true
			}
		}

		return false
	case *hir.Container:
		for _, el := range n.Elts {
			if exprReferences(el, name) {
				return true
			}
		}

		for _, v := range n.DictValues {
			if exprReferences(v, name) {
				return true
			}
		}

		return false
	case *hir.Ternary:
		return exprReferences(n.Cond, name) || exprReferences(n.Then, name) || exprReferences(n.Else, name)
	case *hir.FString:
		for _, p := range n.Parts {
			if exprReferences(p.Expr, name) {
				return true
			}
		}

		return false
	default:
		// Comprehensions, lambdas, yields and the like are treated as
		// referencing everything conservatively — they are rare as the RHS
		// of a dead-store candidate and the safe answer is "yes, it reads".
		return true
	}
}
