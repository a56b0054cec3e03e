// Package bridge implements the AST Bridge (spec §4.1): a semantics-
// preserving desugaring of the surface Python AST (internal/pyast) into
// the typed, analysis-friendly HIR (internal/hir).
//
// The bridge enforces the supported-subset gate: any construct outside the
// subset produces an Unsupported diagnostic naming the construct, never a
// silent drop. A single unsupported construct does not abort the module —
// every other function still gets lowered so the caller sees the whole
// surface of blockers in one pass.
package bridge

import (
	"fmt"
	"strings"

	"github.com/py2rs-dev/py2rs/internal/diag"
	"github.com/py2rs-dev/py2rs/internal/hir"
	"github.com/py2rs-dev/py2rs/internal/position"
	"github.com/py2rs-dev/py2rs/internal/pragma"
	"github.com/py2rs-dev/py2rs/internal/pyast"
)

// knownDecorators are recognized without a diagnostic; every other
// decorator is reported as Unsupported (BRIDGE-0020), and no pragma
// exempts one.
var knownDecorators = map[string]bool{
	"staticmethod": true,
	"classmethod":  true,
	"property":     true,
}

// Bridge carries the mutable state of one module lowering pass.
type Bridge struct {
	diags   *diag.Bag
	pending []hir.Stmt
	tmpN    int
}

// New creates a fresh Bridge.
func New() *Bridge {
	return &Bridge{diags: &diag.Bag{}}
}

// ToHIR implements `python_to_hir`: lower a surface Module to a HIR Module.
// Malformed is the only condition under which this returns a non-nil error;
// every other diagnosed condition (Unsupported) is recorded and lowering
// continues so the full surface of blockers is visible.
func ToHIR(mod *pyast.Module, moduleName string) (*hir.Module, *diag.Bag, error) {
	b := New()

	if mod == nil {
		b.diags.Add(diag.Diagnostic{Severity: diag.Error, Kind: diag.Malformed, Code: "BRIDGE-0000", Message: "nil module"})
		return nil, b.diags, fmt.Errorf("bridge: nil module")
	}

	out := &hir.Module{Name: moduleName}

	for _, s := range mod.Body {
		switch n := s.(type) {
		case *pyast.FunctionDef:
			if f := b.lowerFunctionDef(n, false); f != nil {
				out.Functions = append(out.Functions, *f)
			}
		case *pyast.ClassDef:
			if c := b.lowerClassDef(n); c != nil {
				out.Classes = append(out.Classes, *c)
			}
		case *pyast.Assign:
			if tgt, ok := n.Target.(*pyast.Name); ok {
				out.Consts = append(out.Consts, hir.Const{
					Name:  tgt.Id,
					Value: b.lowerExprTop(n.Value),
					Span:  n.Span(),
					Lazy:  !isLiteralLike(n.Value),
				})
			} else {
				b.diags.Unsupported("BRIDGE-0001", n.Span(), "module-level assignment to a non-name target")
			}
		case *pyast.Pass:
			// module-level pass is a legal no-op, nothing to lower
		default:
			b.diags.Unsupported("BRIDGE-0002", s.Span(), fmt.Sprintf("module-level statement %T", s))
		}
	}

	return out, b.diags, nil
}

func isLiteralLike(e pyast.Expr) bool {
	switch e.(type) {
	case *pyast.Literal:
		return true
	case *pyast.Container:
		return true
	default:
		return false
	}
}

// --- Functions & classes -------------------------------------------------

func (b *Bridge) lowerFunctionDef(n *pyast.FunctionDef, isMethod bool) *hir.Function {
	params := make([]hir.Param, 0, len(n.Params))
	seen := map[string]bool{}

	for _, p := range n.Params {
		if seen[p.Name] {
			b.diags.Add(diag.Diagnostic{
				Severity: diag.Error, Kind: diag.Malformed, Code: "BRIDGE-0010",
				Message: fmt.Sprintf("duplicate parameter name %q in function %q", p.Name, n.Name),
				Primary: n.Span(),
			})

			continue
		}

		seen[p.Name] = true

		hp := hir.Param{Name: p.Name}
		if p.Annotation != nil {
			hp.DeclaredType = b.typeFromAnnotation(p.Annotation)
		} else {
			hp.DeclaredType = hir.Unknown()
		}

		if p.Default != nil {
			hp.Default = b.lowerExprTop(p.Default)
		}

		params = append(params, hp)
	}

	f := &hir.Function{
		Name:       n.Name,
		Params:     params,
		Body:       b.lowerDecoratedBody(n.Body),
		Docstring:  n.Docstring,
		Span:       n.Span(),
		IsMethod:   isMethod,
		ReturnType: hir.Unknown(),
	}

	if n.Returns != nil {
		f.ReturnType = b.typeFromAnnotation(n.Returns)
	}

	f.Properties.IsGenerator = containsYield(f.Body)

	b.applyDecorators(f, n.Decorators)
	b.applyPragmas(f, n.Pragmas)

	return f
}

// lowerDecoratedBody lowers a body, flattening any multi-statement
// desugarings (tuple unpacking, side-effecting augmented-assignment on a
// subscript, chained-comparison temp hoisting) in source order.
func (b *Bridge) lowerDecoratedBody(body []pyast.Stmt) []hir.Stmt {
	var out []hir.Stmt
	for _, s := range body {
		out = append(out, b.lowerStmt(s)...)
	}

	return out
}

func (b *Bridge) applyDecorators(f *hir.Function, decs []pyast.Decorator) {
	for _, d := range decs {
		switch d.Name {
		case "staticmethod":
			f.IsStatic = true
		case "classmethod":
			f.IsClassMethod = true
		case "property":
			f.IsProperty = true
		default:
			if knownDecorators[d.Name] {
				f.Annotations = append(f.Annotations, hir.Annotation{Key: "decorator", Value: d.Name})
			} else {
				b.diags.Unsupported("BRIDGE-0020", f.Span, fmt.Sprintf("decorator @%s", d.Name))
			}
		}
	}
}

func (b *Bridge) applyPragmas(f *hir.Function, pragmas []pyast.PragmaComment) {
	var lines []string
	for _, p := range pragmas {
		lines = append(lines, fmt.Sprintf("# %s %s = %s", pragma.Prefix, p.Key, p.Value))
	}

	for _, p := range pragma.ParseLines(lines) {
		f.Annotations = append(f.Annotations, hir.Annotation{Key: p.Key, Value: p.Value})
	}

	for _, unk := range pragma.Unknown(parsedPragmas(pragmas)) {
		b.diags.Unsupported("BRIDGE-0021", f.Span, fmt.Sprintf("pragma key %q", unk.Key))
	}
}

func parsedPragmas(in []pyast.PragmaComment) []pragma.Pragma {
	out := make([]pragma.Pragma, 0, len(in))
	for _, p := range in {
		out = append(out, pragma.Pragma{Key: p.Key, Value: p.Value})
	}

	return out
}

func (b *Bridge) lowerClassDef(n *pyast.ClassDef) *hir.Class {
	c := &hir.Class{Name: n.Name, Span: n.Span()}

	for _, base := range n.Bases {
		if name, ok := base.(*pyast.Name); ok {
			c.Bases = append(c.Bases, name.Id)
		} else {
			b.diags.Unsupported("BRIDGE-0030", n.Span(), "non-name base class expression")
		}
	}

	if len(c.Bases) > 1 {
		// Multiple bases are accepted as-is: member collisions across bases
		// are not detected, and no method resolution order beyond treating
		// the extra bases as mixins is modelled.
	}

	initSeen := false

	for _, s := range n.Body {
		switch stmt := s.(type) {
		case *pyast.FunctionDef:
			m := b.lowerFunctionDef(stmt, true)
			if m == nil {
				continue
			}

			if m.Name == "__init__" {
				if initSeen {
					b.diags.Add(diag.Diagnostic{
						Severity: diag.Error, Kind: diag.Malformed, Code: "BRIDGE-0031",
						Message: fmt.Sprintf("class %q has more than one __init__", n.Name), Primary: n.Span(),
					})

					continue
				}

				initSeen = true
			}

			c.Methods = append(c.Methods, *m)
		case *pyast.Assign:
			if name, ok := stmt.Target.(*pyast.Name); ok {
				c.Consts = append(c.Consts, hir.ClassConst{
					Name: name.Id, Value: b.lowerExprTop(stmt.Value),
				})
			}
		case *pyast.Pass:
		default:
			b.diags.Unsupported("BRIDGE-0032", s.Span(), fmt.Sprintf("class-body statement %T", s))
		}
	}

	seen := map[string]int{}
	for _, m := range c.Methods {
		seen[m.Name]++
	}

	for name, n2 := range seen {
		if n2 > 1 {
			b.diags.Add(diag.Diagnostic{
				Severity: diag.Error, Kind: diag.Malformed, Code: "BRIDGE-0033",
				Message: fmt.Sprintf("duplicate method name %q", name), Primary: c.Span,
			})
		}
	}

	return c
}

func containsYield(body []hir.Stmt) bool {
	found := false

	var walkExpr func(hir.Expr)

	var walkStmts func([]hir.Stmt)

	walkExpr = func(e hir.Expr) {
		if found || e == nil {
			return
		}

		switch n := e.(type) {
		case *hir.Yield, *hir.YieldFrom:
			_ = n
			found = true
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
			if found {
				return
			}

			switch n := s.(type) {
			case *hir.ExprStmt:
				walkExpr(n.Value)
			case *hir.Assign:
				walkExpr(n.Value)
			case *hir.If:
				walkStmts(n.ThenBody)
				walkStmts(n.ElseBody)
			case *hir.While:
				walkStmts(n.Body)
			case *hir.For:
				walkStmts(n.Body)
			case *hir.Try:
				walkStmts(n.Body)
				for _, ec := range n.Except {
					walkStmts(ec.Body)
				}

				walkStmts(n.Finally)
			case *hir.With:
				walkStmts(n.Body)
			}
		}
	}

	walkStmts(body)

	return found
}

// --- helpers ---------------------------------------------------------------

func (b *Bridge) freshTemp() string {
	b.tmpN++
	return fmt.Sprintf("__py2rs_tmp%d", b.tmpN)
}

func (b *Bridge) typeFromAnnotation(e pyast.Expr) hir.Type {
	switch n := e.(type) {
	case *pyast.Name:
		return namedType(n.Id)
	case *pyast.Subscript:
		base, ok := n.Object.(*pyast.Name)
		if !ok {
			return hir.Any()
		}

		args := flattenSubscriptArgs(n.Index)
		params := make([]hir.Type, 0, len(args))

		for _, a := range args {
			params = append(params, b.typeFromAnnotation(a))
		}

		switch strings.ToLower(base.Id) {
		case "list":
			if len(params) == 1 {
				return hir.List(params[0])
			}
		case "dict":
			if len(params) == 2 {
				return hir.Dict(params[0], params[1])
			}
		case "set":
			if len(params) == 1 {
				return hir.Set(params[0])
			}
		case "frozenset":
			if len(params) == 1 {
				return hir.FrozenSet(params[0])
			}
		case "tuple":
			return hir.Tuple(params...)
		case "optional":
			if len(params) == 1 {
				return hir.Optional(params[0])
			}
		case "union":
			return hir.Union(params...)
		case "iterator", "iterable", "generator":
			if len(params) == 1 {
				return hir.Iterator(params[0])
			}
		case "callable":
			if len(params) >= 1 {
				return hir.Callable(params[:len(params)-1], params[len(params)-1])
			}
		}

		return hir.Any()
	default:
		return hir.Any()
	}
}

func flattenSubscriptArgs(e pyast.Expr) []pyast.Expr {
	if c, ok := e.(*pyast.Container); ok && c.Kind == pyast.ContainerTuple {
		return c.Elts
	}

	return []pyast.Expr{e}
}

func namedType(id string) hir.Type {
	switch id {
	case "int":
		return hir.Int()
	case "float":
		return hir.Float()
	case "bool":
		return hir.Bool()
	case "str":
		return hir.Str()
	case "bytes":
		return hir.Bytes()
	case "None":
		return hir.NoneType()
	case "Any":
		return hir.Any()
	default:
		return hir.Class(id)
	}
}

// spanOf returns a source-location span from a node, used when synthesizing
// helper spans for introduced temporaries (reuses the triggering node's
// span so diagnostics still point somewhere meaningful).
func spanOf(n pyast.Node) position.Span {
	if n == nil {
		return position.Span{}
	}

	return n.Span()
}
