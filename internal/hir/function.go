package hir

import "github.com/py2rs-dev/py2rs/internal/position"

// Param is one function parameter (§3.1 HirParam).
type Param struct {
	Default      Expr // nil when absent
	Name         string
	DeclaredType Type
	IsMutated    bool // set by the analyzer
}

// Annotation is a user pragma attached via `# @py2rs: key = value` (§6.3),
// or a recognized decorator recorded as an annotation by the bridge.
type Annotation struct {
	Key   string
	Value string
}

// FunctionProperties are the facts the Analyzer (§4.2) computes about a
// function and every later stage consumes read-only.
type FunctionProperties struct {
	Pure             bool
	CanFail          bool
	AlwaysTerminates bool
	IsGenerator      bool
}

// Function is a top-level or method HIR function (§3.1 HirFunction).
// Parameter names are unique within a function; this invariant is enforced
// by the bridge and never violated downstream.
type Function struct {
	ReturnType  Type
	Name        string
	Docstring   string
	Params      []Param
	Body        []Stmt
	Annotations []Annotation
	Span        position.Span
	Properties  FunctionProperties
	// IsMethod and ImplicitSelf record whether this Function is a class
	// method carrying an implicit `self` (first Param slot is synthetic
	// and not user-named in the surface source).
	IsMethod      bool
	SelfMutable   bool
	IsStatic      bool
	IsClassMethod bool
	IsProperty    bool
}

// UniqueParamNames reports whether every parameter name in f is distinct,
// the invariant HirFunction requires.
func (f *Function) UniqueParamNames() bool {
	seen := make(map[string]struct{}, len(f.Params))
	for _, p := range f.Params {
		if _, ok := seen[p.Name]; ok {
			return false
		}

		seen[p.Name] = struct{}{}
	}

	return true
}

// registerTarget records every name an assignment target binds, recursing
// into TargetTuple's elements so a tuple unpack like `a, b = 0, 1` marks
// both a and b live, not just a bare TargetSymbol.
func registerTarget(names map[string]struct{}, t AssignTarget) {
	switch t.Kind {
	case TargetSymbol:
		names[t.Name] = struct{}{}
	case TargetTuple:
		for _, elt := range t.Elts {
			registerTarget(names, elt)
		}
	}
}

// LiveAcrossYield computes, for a generator function, the set of local
// variable names that must become fields of the synthesized state machine:
// parameters plus every local read or written anywhere in the body (a safe
// over-approximation — §4.5.5 only requires that variables referenced after
// a yield boundary be fields; including every local is always sound and
// keeps the rule simple to verify, at the cost of a few extra fields).
func (f *Function) LiveAcrossYield() []string {
	names := map[string]struct{}{}
	for _, p := range f.Params {
		names[p.Name] = struct{}{}
	}

	var walkStmts func([]Stmt)

	var walkExpr func(Expr)

	walkExpr = func(e Expr) {
		switch n := e.(type) {
		case *Var:
			names[n.Name] = struct{}{}
		case *Binary:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *Unary:
			walkExpr(n.Operand)
		case *Call:
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *MethodCall:
			walkExpr(n.Object)
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *Attribute:
			walkExpr(n.Object)
		case *Subscript:
			walkExpr(n.Object)
			walkExpr(n.Index)
		case *Slice:
			walkExpr(n.Object)
		case *Container:
			for _, el := range n.Elts {
				walkExpr(el)
			}

			for _, el := range n.DictValues {
				walkExpr(el)
			}
		case *Ternary:
			walkExpr(n.Cond)
			walkExpr(n.Then)
			walkExpr(n.Else)
		case *Yield:
			if n.Value != nil {
				walkExpr(n.Value)
			}
		case *YieldFrom:
			walkExpr(n.Iter)
		}
	}

	walkStmts = func(body []Stmt) {
		for _, s := range body {
			switch n := s.(type) {
			case *Assign:
				registerTarget(names, n.Target)
				walkExpr(n.Value)
			case *AugAssign:
				registerTarget(names, n.Target)
				walkExpr(n.Value)
			case *If:
				walkExpr(n.Condition)
				walkStmts(n.ThenBody)
				walkStmts(n.ElseBody)
			case *While:
				walkExpr(n.Condition)
				walkStmts(n.Body)
			case *For:
				if v, ok := n.Target.(*Var); ok {
					names[v.Name] = struct{}{}
				}

				walkExpr(n.Iter)
				walkStmts(n.Body)
			case *Return:
				if n.Value != nil {
					walkExpr(n.Value)
				}
			case *ExprStmt:
				walkExpr(n.Value)
			}
		}
	}

	walkStmts(f.Body)

	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}

	return out
}
