package optimizer

import "github.com/py2rs-dev/py2rs/internal/hir"

// seenExpr records one previously computed pure expression within the
// current straight-line block: its structural shape and the variable its
// result was bound to.
type seenExpr struct {
	target string
	expr   hir.Expr
}

// commonSubexprElim implements block-local CSE (§4.4): within a single
// straight-line statement list, a second assignment whose right-hand side
// is structurally identical to an earlier assignment's — and built only
// from variables not reassigned in between — has its right-hand side
// replaced with a reference to the earlier assignment's target, instead of
// recomputing the expression. The earlier assignment itself is left in
// place; a later DCE pass may still be able to simplify the resulting
// `y = x`-shaped alias.
func commonSubexprElim(body []hir.Stmt) ([]hir.Stmt, int) {
	count := 0

	var walkStmts func([]hir.Stmt) []hir.Stmt

	walkStmts = func(ss []hir.Stmt) []hir.Stmt {
		var available []seenExpr

		invalidate := func(name string) {
			kept := available[:0]

			for _, se := range available {
				if !exprReferences(se.expr, name) && se.target != name {
					kept = append(kept, se)
				}
			}

			available = kept
		}

		for _, s := range ss {
			switch n := s.(type) {
			case *hir.Assign:
				if n.Target.Kind == hir.TargetSymbol && isPureCSECandidate(n.Value) {
					if match := findMatch(available, n.Value); match != "" {
						n.Value = &hir.Var{Name: match}
						count++
					} else {
						available = append(available, seenExpr{target: n.Target.Name, expr: n.Value})
					}

					invalidate(n.Target.Name)
				} else if n.Target.Kind == hir.TargetSymbol {
					invalidate(n.Target.Name)
				} else {
					available = nil
				}
			case *hir.AugAssign:
				available = nil
			case *hir.If:
				n.ThenBody = walkStmts(n.ThenBody)
				n.ElseBody = walkStmts(n.ElseBody)
				available = nil
			case *hir.While:
				n.Body = walkStmts(n.Body)
				available = nil
			case *hir.For:
				n.Body = walkStmts(n.Body)
				available = nil
			case *hir.Try:
				n.Body = walkStmts(n.Body)
				n.Else = walkStmts(n.Else)
				n.Finally = walkStmts(n.Finally)

				for ei := range n.Except {
					n.Except[ei].Body = walkStmts(n.Except[ei].Body)
				}

				available = nil
			case *hir.With:
				n.Body = walkStmts(n.Body)
				available = nil
			case *hir.ExprStmt, *hir.Return, *hir.Raise:
				// Neither reads nor invalidates any binding CSE tracks.
			default:
				available = nil
			}
		}

		return ss
	}

	return walkStmts(body), count
}

// isPureCSECandidate restricts CSE to Binary expressions over Var/Literal
// leaves — deliberately narrower than isSideEffectFree, since CSE also
// needs every operand to be a stable, re-readable reference rather than
// merely side-effect-free (an Attribute read, for instance, could observe a
// mutation between the two assignments).
func isPureCSECandidate(e hir.Expr) bool {
	bin, ok := e.(*hir.Binary)
	if !ok {
		return false
	}

	return isLeaf(bin.Left) && isLeaf(bin.Right)
}

func isLeaf(e hir.Expr) bool {
	switch e.(type) {
	case *hir.Var, *hir.Literal:
		return true
	default:
		return false
	}
}

func findMatch(available []seenExpr, e hir.Expr) string {
	for _, se := range available {
		if exprEqual(se.expr, e) {
			return se.target
		}
	}

	return ""
}

func exprEqual(a, b hir.Expr) bool {
	switch x := a.(type) {
	case *hir.Var:
		y, ok := b.(*hir.Var)
		return ok && x.Name == y.Name
	case *hir.Literal:
		y, ok := b.(*hir.Literal)
		return ok && x.Kind == y.Kind && x.Raw == y.Raw
	case *hir.Binary:
		y, ok := b.(*hir.Binary)
		return ok && x.Op == y.Op && exprEqual(x.Left, y.Left) && exprEqual(x.Right, y.Right)
	default:
		return false
	}
}
