// Package optimizer implements the Optimizer (spec §4.4): a small, bounded
// set of HIR-to-HIR rewrites — constant folding, dead code elimination, and
// block-local common subexpression elimination — run to a fixpoint before
// codegen sees the tree. Every pass is conservative by construction: a
// rewrite is applied only when it cannot change observable behavior, never
// when it merely looks likely to be safe.
package optimizer

import "github.com/py2rs-dev/py2rs/internal/hir"

// Stats mirrors the per-pass/aggregate counters the corpus's own AST
// optimization pipelines report, scoped to what this optimizer actually
// does.
type Stats struct {
	NodesTransformed int
	ConstantsFolded  int
	DeadCodeRemoved  int
	CSEApplied       int
	Iterations       int
}

func (s *Stats) merge(cf, dce, cse int) {
	s.ConstantsFolded += cf
	s.DeadCodeRemoved += dce
	s.CSEApplied += cse
	s.NodesTransformed += cf + dce + cse
}

// maxIterations bounds the fixpoint loop; every pass here is monotonically
// shrinking or simplifying, so in practice two or three iterations converge
// and the bound only guards against an unforeseen oscillation.
const maxIterations = 8

// Optimize rewrites every function body (module-level and method) in mod in
// place and returns the aggregate statistics. Optimize is idempotent:
// running it again on its own output performs zero further transformations
// (§8.7's testable property), since the loop below runs until a whole
// iteration changes nothing.
func Optimize(mod *hir.Module) *Stats {
	stats := &Stats{}

	for i := range mod.Functions {
		optimizeFunction(&mod.Functions[i], stats)
	}

	for ci := range mod.Classes {
		for mi := range mod.Classes[ci].Methods {
			optimizeFunction(&mod.Classes[ci].Methods[mi], stats)
		}
	}

	return stats
}

func optimizeFunction(fn *hir.Function, stats *Stats) {
	for iter := 0; iter < maxIterations; iter++ {
		stats.Iterations++

		body, cf := foldConstants(fn.Body)
		body, cse := commonSubexprElim(body)
		body, dce := eliminateDeadCode(body)

		fn.Body = body
		stats.merge(cf, dce, cse)

		if cf+dce+cse == 0 {
			break
		}
	}
}
