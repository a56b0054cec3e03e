// Package suggest implements the migration-suggestion sidecar: a pass over
// already-lowered HIR that recognizes common Python idioms with a more
// idiomatic Rust shape and reports them as advisory Suggestions, grounded
// on the original implementation's migration_suggestions_demo.rs
// (MigrationAnalyzer / MigrationConfig / format_suggestions). Unlike the
// diag.Bag produced by bridge/analyzer/types/optimizer/codegen, nothing
// here blocks transpilation — a Suggestion is informational and, when a
// caller wants it surfaced through the normal diagnostic channel, can be
// attached to a Note-severity diag.Diagnostic's Fix field via Diagnostic().
package suggest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/py2rs-dev/py2rs/internal/diag"
	"github.com/py2rs-dev/py2rs/internal/hir"
	"github.com/py2rs-dev/py2rs/internal/position"
)

// Category groups suggestions the way MigrationConfig's four boolean
// switches did, so a caller can enable/disable a whole class at once.
type Category int

const (
	Iterators Category = iota
	ErrorHandling
	Ownership
	Performance
)

func (c Category) String() string {
	switch c {
	case Iterators:
		return "iterators"
	case ErrorHandling:
		return "error-handling"
	case Ownership:
		return "ownership"
	case Performance:
		return "performance"
	default:
		return "unknown"
	}
}

// Config selects which suggestion categories run and how much detail
// FormatSuggestions emits, mirroring MigrationConfig's four booleans plus
// verbosity field.
type Config struct {
	SuggestIterators     bool
	SuggestErrorHandling bool
	SuggestOwnership     bool
	SuggestPerformance   bool
	// Verbosity 0 shows only the one-line message; 2 shows Detail too.
	Verbosity int
}

// Default enables every category at verbosity 1, the setting a bare
// `py2rsc check` invocation uses.
func Default() Config {
	return Config{
		SuggestIterators:     true,
		SuggestErrorHandling: true,
		SuggestOwnership:     true,
		SuggestPerformance:   true,
		Verbosity:            1,
	}
}

// Suggestion is one recognized pattern with an idiom recommendation.
type Suggestion struct {
	Category Category
	Function string
	Span     position.Span
	Message  string
	Detail   string
}

// Diagnostic renders a Suggestion as a Note-severity diag.Diagnostic whose
// Fix carries the recommendation, for callers that want suggestions to
// flow through the same reporting path as every other diagnostic.
func (s Suggestion) Diagnostic() diag.Diagnostic {
	fix := s.Message
	if s.Detail != "" {
		fix = s.Message + " — " + s.Detail
	}

	return diag.Diagnostic{
		Severity: diag.Note,
		Kind:     diag.Ambiguity,
		Code:     "SUGGEST-" + strings.ToUpper(s.Category.String()),
		Message:  fmt.Sprintf("%s: idiom suggestion available", s.Function),
		Primary:  s.Span,
		Fix:      &fix,
	}
}

// Analyzer walks HIR functions looking for the patterns enabled by its
// Config.
type Analyzer struct {
	cfg Config
}

// New returns an Analyzer configured by cfg.
func New(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// AnalyzeModule runs every enabled detector over every function in mod,
// module-level and method bodies alike.
func (a *Analyzer) AnalyzeModule(mod *hir.Module) []Suggestion {
	var out []Suggestion

	for i := range mod.Functions {
		out = append(out, a.analyzeFunction(&mod.Functions[i])...)
	}

	for ci := range mod.Classes {
		cls := &mod.Classes[ci]
		for mi := range cls.Methods {
			out = append(out, a.analyzeFunction(&cls.Methods[mi])...)
		}
	}

	return out
}

func (a *Analyzer) analyzeFunction(fn *hir.Function) []Suggestion {
	var out []Suggestion

	if a.cfg.SuggestIterators {
		out = append(out, detectAccumulator(fn)...)
	}

	if a.cfg.SuggestErrorHandling {
		out = append(out, detectIsinstanceChain(fn)...)
	}

	if a.cfg.SuggestPerformance {
		out = append(out, detectWhileTrue(fn)...)
	}

	if a.cfg.SuggestOwnership {
		out = append(out, detectMutableParamReturn(fn)...)
	}

	return out
}

// detectAccumulator recognizes `result = []` followed, anywhere later in
// the same block, by a `for` loop that appends into result — the
// "accumulator pattern" the original demo's filter_even_numbers models —
// and suggests collecting from an iterator chain instead.
func detectAccumulator(fn *hir.Function) []Suggestion {
	var out []Suggestion

	var walk func(body []hir.Stmt)

	walk = func(body []hir.Stmt) {
		for i, s := range body {
			assign, ok := s.(*hir.Assign)
			if !ok || assign.Target.Kind != hir.TargetSymbol {
				continue
			}

			container, ok := assign.Value.(*hir.Container)
			if !ok || container.Kind != hir.ContainerList || len(container.Elts) != 0 {
				continue
			}

			accName := assign.Target.Name

			for _, later := range body[i+1:] {
				forStmt, ok := later.(*hir.For)
				if !ok {
					continue
				}

				if appendsTo(forStmt.Body, accName) {
					iterName := "the iterable"
					if v, ok := forStmt.Iter.(*hir.Var); ok {
						iterName = v.Name
					}

					out = append(out, Suggestion{
						Category: Iterators,
						Function: fn.Name,
						Span:     forStmt.Span(),
						Message:  fmt.Sprintf("accumulator loop building %q can become an iterator chain", accName),
						Detail:   fmt.Sprintf("let %s: Vec<_> = %s.iter().filter(|x| ..).cloned().collect();", accName, iterName),
					})
				}
			}
		}

		for _, s := range body {
			switch n := s.(type) {
			case *hir.If:
				walk(n.ThenBody)
				walk(n.ElseBody)
			case *hir.While:
				walk(n.Body)
			case *hir.For:
				walk(n.Body)
			}
		}
	}

	walk(fn.Body)

	return out
}

// appendsTo reports whether body contains `accName.append(...)`, directly
// or inside a nested If — the shape filter_even_numbers's then_body has.
func appendsTo(body []hir.Stmt, accName string) bool {
	for _, s := range body {
		switch n := s.(type) {
		case *hir.ExprStmt:
			if mc, ok := n.Value.(*hir.MethodCall); ok && mc.Method == "append" {
				if v, ok := mc.Object.(*hir.Var); ok && v.Name == accName {
					return true
				}
			}
		case *hir.If:
			if appendsTo(n.ThenBody, accName) || appendsTo(n.ElseBody, accName) {
				return true
			}
		}
	}

	return false
}

// detectIsinstanceChain recognizes an if/elif ladder of isinstance(...)
// checks — process_value's shape in the original demo — and suggests a
// match over an enum (or trait dispatch) instead of a borrowed chain of
// runtime type tests.
func detectIsinstanceChain(fn *hir.Function) []Suggestion {
	var out []Suggestion

	var walk func(body []hir.Stmt)

	walk = func(body []hir.Stmt) {
		for _, s := range body {
			ifStmt, ok := s.(*hir.If)
			if !ok {
				continue
			}

			if isIsinstanceCall(ifStmt.Condition) && chainLength(ifStmt) >= 2 {
				out = append(out, Suggestion{
					Category: ErrorHandling,
					Function: fn.Name,
					Span:     ifStmt.Span(),
					Message:  "isinstance chain can become a match over an enum",
					Detail:   "model the possible input shapes as an enum and dispatch with match instead of a chain of is-instance checks",
				})
			}

			walk(ifStmt.ThenBody)
			walk(ifStmt.ElseBody)
		}
	}

	walk(fn.Body)

	return out
}

func isIsinstanceCall(e hir.Expr) bool {
	c, ok := e.(*hir.Call)
	return ok && c.FuncName == "isinstance"
}

// chainLength counts how many isinstance-guarded rungs follow s, including
// s itself, by walking into s.ElseBody as long as it is a single nested If
// with another isinstance condition (the elif shape the bridge lowers to).
func chainLength(s *hir.If) int {
	n := 1

	cur := s
	for len(cur.ElseBody) == 1 {
		next, ok := cur.ElseBody[0].(*hir.If)
		if !ok || !isIsinstanceCall(next.Condition) {
			break
		}

		n++
		cur = next
	}

	return n
}

// detectWhileTrue recognizes `while True: ... if cond: break ...` — the
// original demo's server_loop shape — and suggests pulling the break
// condition into the loop header where doing so doesn't change semantics
// (the break is the first statement in the body, unconditional on prior
// loop state).
func detectWhileTrue(fn *hir.Function) []Suggestion {
	var out []Suggestion

	var walk func(body []hir.Stmt)

	walk = func(body []hir.Stmt) {
		for _, s := range body {
			switch n := s.(type) {
			case *hir.While:
				if lit, ok := n.Condition.(*hir.Literal); ok && lit.Kind == hir.LitBool && lit.Raw == "True" {
					if cond, ok := leadingBreakGuard(n.Body); ok {
						out = append(out, Suggestion{
							Category: Performance,
							Function: fn.Name,
							Span:     n.Span(),
							Message:  "while True with a leading break guard can become a condition-driven loop",
							Detail:   fmt.Sprintf("while !(%s) { .. } reads the exit condition at the call site instead of inside the body", cond),
						})
					}
				}

				walk(n.Body)
			case *hir.If:
				walk(n.ThenBody)
				walk(n.ElseBody)
			case *hir.For:
				walk(n.Body)
			}
		}
	}

	walk(fn.Body)

	return out
}

// leadingBreakGuard reports whether body opens with `if cond: break`, and
// if so, a rendering of cond for the suggestion detail.
func leadingBreakGuard(body []hir.Stmt) (string, bool) {
	if len(body) == 0 {
		return "", false
	}

	ifStmt, ok := body[0].(*hir.If)
	if !ok || len(ifStmt.ThenBody) != 1 {
		return "", false
	}

	if _, ok := ifStmt.ThenBody[0].(*hir.Break); !ok {
		return "", false
	}

	if call, ok := ifStmt.Condition.(*hir.Call); ok {
		return call.FuncName + "()", true
	}

	if v, ok := ifStmt.Condition.(*hir.Var); ok {
		return v.Name, true
	}

	return "<condition>", true
}

// detectMutableParamReturn recognizes a function that mutates a
// reference-typed parameter in place and then returns that same
// parameter — add_to_list's shape in the original demo — and suggests
// dropping the redundant return, since the caller already observes the
// mutation through the &mut borrow.
func detectMutableParamReturn(fn *hir.Function) []Suggestion {
	var out []Suggestion

	mutated := map[string]bool{}

	for _, p := range fn.Params {
		if p.IsMutated {
			mutated[p.Name] = true
		}
	}

	if len(mutated) == 0 {
		return out
	}

	for _, s := range fn.Body {
		ret, ok := s.(*hir.Return)
		if !ok || ret.Value == nil {
			continue
		}

		v, ok := ret.Value.(*hir.Var)
		if !ok || !mutated[v.Name] {
			continue
		}

		out = append(out, Suggestion{
			Category: Ownership,
			Function: fn.Name,
			Span:     ret.Span(),
			Message:  fmt.Sprintf("parameter %q is mutated and returned unchanged", v.Name),
			Detail:   fmt.Sprintf("take %s: &mut _ and return () — callers already see the mutation through the borrow", v.Name),
		})
	}

	return out
}

// FormatSuggestions renders suggestions grouped by category, the way
// format_suggestions turns the original demo's Vec<Suggestion> into a
// printable report. At verbosity 0 each suggestion is one line; at 2 and
// above, Detail is included.
func FormatSuggestions(suggestions []Suggestion, verbosity int) string {
	if len(suggestions) == 0 {
		return "no migration suggestions"
	}

	byCategory := map[Category][]Suggestion{}
	for _, s := range suggestions {
		byCategory[s.Category] = append(byCategory[s.Category], s)
	}

	cats := make([]Category, 0, len(byCategory))
	for c := range byCategory {
		cats = append(cats, c)
	}

	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	var b strings.Builder

	for _, c := range cats {
		fmt.Fprintf(&b, "== %s ==\n", c)

		for _, s := range byCategory[c] {
			fmt.Fprintf(&b, "  %s: %s\n", s.Function, s.Message)

			if verbosity >= 2 && s.Detail != "" {
				fmt.Fprintf(&b, "    %s\n", s.Detail)
			}
		}
	}

	return b.String()
}
