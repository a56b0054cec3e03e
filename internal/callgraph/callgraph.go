// Package callgraph builds the module-local call graph the Analyzer's
// interprocedural fixpoint walks in reverse topological order (spec §4.2:
// "converges in one pass over the call graph in reverse topological order
// with a second pass for cycles"). Kept as its own small package, grounded
// on original_source's interprocedural/signature_registry.rs, which
// documents this ordering requirement in more detail than the distilled
// spec: callers must be revisited after every callee settles, and call
// cycles need a dedicated fixpoint pass rather than a single topological
// walk.
package callgraph

import "github.com/py2rs-dev/py2rs/internal/hir"

// Graph is the module-local call graph: Calls[f] is the set of module-local
// function names f's body calls directly (MethodCall targets on module
// classes are not tracked here — only direct Call nodes, since only those
// can make a caller itself fallible or force a parameter to be passed
// mutably per §4.2).
type Graph struct {
	Calls map[string]map[string]bool
	order []string
}

// Build constructs the call graph for every function in mod.
func Build(mod *hir.Module) *Graph {
	g := &Graph{Calls: map[string]map[string]bool{}}

	for _, f := range mod.Functions {
		g.order = append(g.order, f.Name)
		g.Calls[f.Name] = map[string]bool{}
		collectCalls(f.Body, g.Calls[f.Name])
	}

	return g
}

func collectCalls(body []hir.Stmt, out map[string]bool) {
	var walkExpr func(hir.Expr)

	walkExpr = func(e hir.Expr) {
		switch n := e.(type) {
		case *hir.Call:
			out[n.FuncName] = true

			for _, a := range n.Args {
				walkExpr(a)
			}
		case *hir.Binary:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *hir.Unary:
			walkExpr(n.Operand)
		case *hir.MethodCall:
			walkExpr(n.Object)

			for _, a := range n.Args {
				walkExpr(a)
			}
		case *hir.Attribute:
			walkExpr(n.Object)
		case *hir.Subscript:
			walkExpr(n.Object)
			walkExpr(n.Index)
		case *hir.Container:
			for _, el := range n.Elts {
				walkExpr(el)
			}
		case *hir.Ternary:
			walkExpr(n.Cond)
			walkExpr(n.Then)
			walkExpr(n.Else)
		}
	}

	var walkStmts func([]hir.Stmt)

	walkStmts = func(ss []hir.Stmt) {
		for _, s := range ss {
			switch n := s.(type) {
			case *hir.Assign:
				walkExpr(n.Value)
			case *hir.AugAssign:
				walkExpr(n.Value)
			case *hir.ExprStmt:
				walkExpr(n.Value)
			case *hir.Return:
				if n.Value != nil {
					walkExpr(n.Value)
				}
			case *hir.If:
				walkExpr(n.Condition)
				walkStmts(n.ThenBody)
				walkStmts(n.ElseBody)
			case *hir.While:
				walkExpr(n.Condition)
				walkStmts(n.Body)
			case *hir.For:
				walkExpr(n.Iter)
				walkStmts(n.Body)
			case *hir.Try:
				walkStmts(n.Body)

				for _, ec := range n.Except {
					walkStmts(ec.Body)
				}

				walkStmts(n.Finally)
			case *hir.With:
				walkExpr(n.Context)
				walkStmts(n.Body)
			}
		}
	}

	walkStmts(body)
}

// ReverseTopological returns function names ordered so that, barring
// cycles, every callee precedes its callers (a post-order DFS over the call
// graph). Within a cycle the order follows map iteration, so it can differ
// between runs, and the members of a cycle need not be adjacent; the
// caller is expected to run a second fixpoint pass over the whole set to
// saturate cycles.
func (g *Graph) ReverseTopological() []string {
	visited := map[string]bool{}
	onStack := map[string]bool{}

	var order []string

	var visit func(string)

	visit = func(name string) {
		if visited[name] || onStack[name] {
			return
		}

		onStack[name] = true

		for callee := range g.Calls[name] {
			if _, known := g.Calls[callee]; known {
				visit(callee)
			}
		}

		onStack[name] = false
		visited[name] = true

		order = append(order, name)
	}

	for _, name := range g.order {
		visit(name)
	}

	return order
}

// Cycles reports, for each function, whether it participates in a call
// cycle (directly or transitively reaches itself).
func (g *Graph) Cycles() map[string]bool {
	result := map[string]bool{}

	var reaches func(from, to string, seen map[string]bool) bool

	reaches = func(from, to string, seen map[string]bool) bool {
		if seen[from] {
			return false
		}

		seen[from] = true

		for callee := range g.Calls[from] {
			if callee == to {
				return true
			}

			if reaches(callee, to, seen) {
				return true
			}
		}

		return false
	}

	for name := range g.Calls {
		if reaches(name, name, map[string]bool{}) {
			result[name] = true
		}
	}

	return result
}
