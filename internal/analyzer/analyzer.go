// Package analyzer implements the Analyzer (spec §4.2): function-level
// purity, can_fail, always_terminates, and per-parameter mutation facts
// that later stages require. Analysis is advisory — it never rejects
// programs; conservative defaults (assume may-fail, assume mutated) are
// always sound for codegen correctness, merely less idiomatic.
package analyzer

import (
	"github.com/py2rs-dev/py2rs/internal/callgraph"
	"github.com/py2rs-dev/py2rs/internal/hir"
)

// Facts is the per-function result of analysis, additionally recording
// per-parameter mutation.
type Facts struct {
	ByFunction map[string]*hir.FunctionProperties
	Mutated    map[string]map[string]bool // function -> param name -> mutated
}

// knownFallibleBuiltins are builtins the analyzer treats as can_fail without
// needing a body to inspect (int() on a non-numeric string, dict subscript,
// etc. are detected structurally instead; this table covers builtins whose
// failure is intrinsic to the operation).
var knownFallibleBuiltins = map[string]bool{
	"int":   true,
	"float": true,
}

// Analyze runs the single structural pass per function plus the
// interprocedural fixpoint on can_fail/is_mutated described in §4.2.
func Analyze(mod *hir.Module) *Facts {
	f := &Facts{ByFunction: map[string]*hir.FunctionProperties{}, Mutated: map[string]map[string]bool{}}

	for i := range mod.Functions {
		fn := &mod.Functions[i]
		props := &hir.FunctionProperties{IsGenerator: fn.Properties.IsGenerator}
		f.ByFunction[fn.Name] = props
		f.Mutated[fn.Name] = map[string]bool{}

		structuralPass(fn, props, f.Mutated[fn.Name])
	}

	g := callgraph.Build(mod)
	saturateFixpoint(mod, f, g)

	for i := range mod.Functions {
		fn := &mod.Functions[i]
		fn.Properties = *f.ByFunction[fn.Name]

		for pi := range fn.Params {
			fn.Params[pi].IsMutated = f.Mutated[fn.Name][fn.Params[pi].Name]
		}
	}

	return f
}

// structuralPass computes can_fail, pure, always_terminates, and
// per-parameter is_mutated from a single pass over fn's body, ignoring
// interprocedural effects (those are saturated afterward).
func structuralPass(fn *hir.Function, props *hir.FunctionProperties, mutated map[string]bool) {
	props.Pure = true
	props.AlwaysTerminates = true

	hasLoop := false
	isRecursive := false

	var walkExpr func(hir.Expr)

	var walkStmts func([]hir.Stmt)

	markMutatedTarget := func(tgt hir.AssignTarget) {
		if tgt.Kind == hir.TargetSubscript || tgt.Kind == hir.TargetAttribute {
			if v, ok := tgt.Object.(*hir.Var); ok {
				mutated[v.Name] = true
				props.Pure = false
			}
		}
	}

	walkExpr = func(e hir.Expr) {
		switch n := e.(type) {
		case *hir.Call:
			if n.FuncName == fn.Name {
				isRecursive = true
			}

			if knownFallibleBuiltins[n.FuncName] {
				props.CanFail = true
			}

			for _, a := range n.Args {
				walkExpr(a)
			}
		case *hir.MethodCall:
			walkExpr(n.Object)

			switch n.Method {
			case "append", "extend", "insert", "remove", "pop", "sort", "reverse",
				"clear", "add", "discard", "update", "setdefault":
				if v, ok := n.Object.(*hir.Var); ok {
					mutated[v.Name] = true
					props.Pure = false
				}
			}

			for _, a := range n.Args {
				walkExpr(a)
			}
		case *hir.Subscript:
			// A variable-indexed or dict/list subscript may raise
			// (KeyError/IndexError) unless proven otherwise; conservative.
			props.CanFail = true
			walkExpr(n.Object)
			walkExpr(n.Index)
		case *hir.Binary:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *hir.Unary:
			walkExpr(n.Operand)
		case *hir.Ternary:
			walkExpr(n.Cond)
			walkExpr(n.Then)
			walkExpr(n.Else)
		case *hir.Attribute:
			walkExpr(n.Object)
		case *hir.Container:
			for _, el := range n.Elts {
				walkExpr(el)
			}

			for _, el := range n.DictValues {
				walkExpr(el)
			}
		}
	}

	walkStmts = func(ss []hir.Stmt) {
		for _, s := range ss {
			switch n := s.(type) {
			case *hir.Assign:
				markMutatedTarget(n.Target)
				walkExpr(n.Value)
			case *hir.AugAssign:
				markMutatedTarget(n.Target)
				walkExpr(n.Value)
			case *hir.ExprStmt:
				walkExpr(n.Value)
			case *hir.Return:
				if n.Value != nil {
					walkExpr(n.Value)
				}
			case *hir.Raise:
				props.CanFail = true

				if n.Value != nil {
					walkExpr(n.Value)
				}
			case *hir.If:
				walkExpr(n.Condition)
				walkStmts(n.ThenBody)
				walkStmts(n.ElseBody)
			case *hir.While:
				hasLoop = true
				walkExpr(n.Condition)
				walkStmts(n.Body)
			case *hir.For:
				hasLoop = true
				walkExpr(n.Iter)
				walkStmts(n.Body)
			case *hir.Try:
				walkStmts(n.Body)

				for _, ec := range n.Except {
					walkStmts(ec.Body)
				}

				walkStmts(n.Finally)
				walkStmts(n.Else)
			case *hir.With:
				walkExpr(n.Context)
				walkStmts(n.Body)
				props.Pure = false // I/O-shaped by default (file, lock, ...)
			case *hir.Global, *hir.Nonlocal:
				props.Pure = false
			}
		}
	}

	walkStmts(fn.Body)

	// always_terminates: a function with no `while` loop is proven; a
	// recursive function additionally needs hasStructuralDecrease to
	// recognize a decrease on its first positional argument.
	if hasLoop && !boundedLoopOnly(fn.Body) {
		props.AlwaysTerminates = false
	}

	if isRecursive {
		props.AlwaysTerminates = props.AlwaysTerminates && hasStructuralDecrease(fn)
	}
}

// boundedLoopOnly reports whether body contains no `while` loop, looking
// inside `for`, `if` and `with` bodies and a `try`'s body and `finally`
// block. Every `for` loop counts as bounded: the iterable is not
// inspected, so a `for` over an unbounded iterator is not distinguished
// from one over a finite container.
func boundedLoopOnly(body []hir.Stmt) bool {
	ok := true

	var walk func([]hir.Stmt)

	walk = func(ss []hir.Stmt) {
		for _, s := range ss {
			switch n := s.(type) {
			case *hir.While:
				ok = false
			case *hir.For:
				walk(n.Body)
			case *hir.If:
				walk(n.ThenBody)
				walk(n.ElseBody)
			case *hir.Try:
				walk(n.Body)
				walk(n.Finally)
			case *hir.With:
				walk(n.Body)
			}
		}
	}

	walk(body)

	return ok
}

// hasStructuralDecrease heuristically checks whether every recursive call
// to fn passes `param - k` (k a positive literal) or `param[1:]`-shaped
// arguments in the position of fn's first parameter, the simplest provable
// structural decrease and the one the corpus's recursive examples (e.g.
// fib(n-1, ...)) actually use.
func hasStructuralDecrease(fn *hir.Function) bool {
	if len(fn.Params) == 0 {
		return false
	}

	first := fn.Params[0].Name
	decreased := true

	var walkExpr func(hir.Expr)

	var walkStmts func([]hir.Stmt)

	checkArg := func(arg hir.Expr) bool {
		switch a := arg.(type) {
		case *hir.Binary:
			if a.Op == "-" {
				if v, ok := a.Left.(*hir.Var); ok && v.Name == first {
					if lit, ok := a.Right.(*hir.Literal); ok && lit.Kind == hir.LitInt &&
						lit.Raw != "" && lit.Raw != "0" && lit.Raw[0] != '-' {
						return true
					}
				}
			}
		case *hir.Slice:
			if v, ok := a.Object.(*hir.Var); ok && v.Name == first && a.Start != nil {
				return true
			}
		}

		return false
	}

	walkExpr = func(e hir.Expr) {
		switch n := e.(type) {
		case *hir.Call:
			if n.FuncName == fn.Name {
				if len(n.Args) == 0 || !checkArg(n.Args[0]) {
					decreased = false
				}
			}

			for _, a := range n.Args {
				walkExpr(a)
			}
		case *hir.Binary:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *hir.Ternary:
			walkExpr(n.Cond)
			walkExpr(n.Then)
			walkExpr(n.Else)
		}
	}

	walkStmts = func(ss []hir.Stmt) {
		for _, s := range ss {
			switch n := s.(type) {
			case *hir.Assign:
				walkExpr(n.Value)
			case *hir.Return:
				if n.Value != nil {
					walkExpr(n.Value)
				}
			case *hir.If:
				walkStmts(n.ThenBody)
				walkStmts(n.ElseBody)
			}
		}
	}

	walkStmts(fn.Body)

	return decreased
}

// saturateFixpoint propagates can_fail and purity across call edges:
// if f calls g and g.can_fail, f.can_fail becomes true too (and an impure
// g makes f impure), monotonically, until no more bits change. Parameter
// mutation is not propagated across calls: each parameter's is_mutated
// comes only from its own function's body. The graph's reverse-topological order settles
// acyclic chains in one pass; cyclic components need the loop to repeat.
func saturateFixpoint(mod *hir.Module, f *Facts, g *callgraph.Graph) {
	order := g.ReverseTopological()

	changed := true
	for changed {
		changed = false

		for _, name := range order {
			props := f.ByFunction[name]
			if props == nil {
				continue
			}

			for callee := range g.Calls[name] {
				calleeProps := f.ByFunction[callee]
				if calleeProps == nil {
					continue
				}

				if calleeProps.CanFail && !props.CanFail {
					props.CanFail = true
					changed = true
				}

				if !calleeProps.Pure && props.Pure {
					props.Pure = false
					changed = true
				}
			}
		}
	}
}
