package bridge

import (
	"fmt"

	"github.com/py2rs-dev/py2rs/internal/hir"
	"github.com/py2rs-dev/py2rs/internal/pyast"
)

// lowerExprTop lowers an expression that stands outside any statement
// sequence (a parameter default, a module-level constant initializer).
// Any chained-comparison temp hoisting that would normally splice a
// preceding statement is discarded here since there is no body to splice
// into — defaults and constants are required to be side-effect-free in the
// supported subset, so this never loses an observable effect in practice.
func (b *Bridge) lowerExprTop(e pyast.Expr) hir.Expr {
	saved := b.pending
	b.pending = nil
	out := b.lowerExpr(e)
	b.pending = saved

	return out
}

func (b *Bridge) lowerExpr(e pyast.Expr) hir.Expr {
	if e == nil {
		return nil
	}

	switch n := e.(type) {
	case *pyast.Literal:
		return &hir.Literal{Raw: n.Raw, Kind: hir.LiteralKind(n.Kind)}
	case *pyast.Name:
		return &hir.Var{Name: n.Id}
	case *pyast.BinOp:
		return &hir.Binary{Op: n.Op, Left: b.lowerExpr(n.Left), Right: b.lowerExpr(n.Right)}
	case *pyast.BoolOp:
		return b.lowerBoolOp(n)
	case *pyast.Compare:
		return b.lowerCompare(n)
	case *pyast.UnaryOp:
		return &hir.Unary{Op: n.Op, Operand: b.lowerExpr(n.Operand)}
	case *pyast.Call:
		return b.lowerCall(n)
	case *pyast.Attribute:
		return &hir.Attribute{Object: b.lowerExpr(n.Object), Name: n.Name}
	case *pyast.Subscript:
		return &hir.Subscript{Object: b.lowerExpr(n.Object), Index: b.lowerExpr(n.Index)}
	case *pyast.Slice:
		return &hir.Slice{
			Object: b.lowerExpr(n.Object),
			Start:  b.lowerExpr(n.Start),
			Stop:   b.lowerExpr(n.Stop),
			Step:   b.lowerExpr(n.Step),
		}
	case *pyast.Container:
		return b.lowerContainer(n)
	case *pyast.Comprehension:
		return b.lowerComprehension(n)
	case *pyast.FString:
		return b.lowerFString(n)
	case *pyast.Lambda:
		return b.lowerLambda(n)
	case *pyast.Ternary:
		return &hir.Ternary{Cond: b.lowerExpr(n.Cond), Then: b.lowerExpr(n.Then), Else: b.lowerExpr(n.Else)}
	case *pyast.Yield:
		var v hir.Expr
		if n.Value != nil {
			v = b.lowerExpr(n.Value)
		}

		return &hir.Yield{Value: v}
	case *pyast.YieldFrom:
		return &hir.YieldFrom{Iter: b.lowerExpr(n.Iter)}
	case *pyast.Await:
		return &hir.Await{Value: b.lowerExpr(n.Value)}
	case *pyast.Starred:
		return &hir.Starred{Value: b.lowerExpr(n.Value)}
	case *pyast.NamedExpr:
		return &hir.NamedExpr{Target: b.lowerExpr(n.Target), Value: b.lowerExpr(n.Value)}
	default:
		b.diags.Unsupported("BRIDGE-0200", e.Span(), fmt.Sprintf("expression %T", e))
		return &hir.Literal{Kind: hir.LitNone, Raw: "None"}
	}
}

func (b *Bridge) lowerBoolOp(n *pyast.BoolOp) hir.Expr {
	if len(n.Values) == 0 {
		return &hir.Literal{Kind: hir.LitBool, Raw: "False"}
	}

	acc := b.lowerExpr(n.Values[0])
	for _, v := range n.Values[1:] {
		acc = &hir.Binary{Op: n.Op, Left: acc, Right: b.lowerExpr(v)}
	}

	return acc
}

// lowerCompare implements the chained-comparison desugaring: `a < b < c`
// becomes `(a < b) and (b < c)` with `b` evaluated once via a fresh
// temporary binding when it is not a pure variable/literal reference.
func (b *Bridge) lowerCompare(n *pyast.Compare) hir.Expr {
	if len(n.Ops) == 1 {
		return &hir.Binary{Op: n.Ops[0], Left: b.lowerExpr(n.Left), Right: b.lowerExpr(n.Rights[0])}
	}

	operands := append([]pyast.Expr{n.Left}, n.Rights...)
	lowered := make([]hir.Expr, len(operands))

	for i, op := range operands {
		// Every interior operand (index 1..len-2) is shared between two
		// comparisons and must be evaluated exactly once.
		if i > 0 && i < len(operands)-1 && !isPureRef(op) {
			tmp := b.freshTemp()
			b.pending = append(b.pending, &hir.Assign{
				Target:     hir.AssignTarget{Kind: hir.TargetSymbol, Name: tmp},
				Value:      b.lowerExpr(op),
				NewBinding: true,
			})
			lowered[i] = &hir.Var{Name: tmp}
		} else {
			lowered[i] = b.lowerExpr(op)
		}
	}

	var acc hir.Expr

	for i, op := range n.Ops {
		cmp := &hir.Binary{Op: op, Left: lowered[i], Right: lowered[i+1]}
		if acc == nil {
			acc = cmp
		} else {
			acc = &hir.Binary{Op: "and", Left: acc, Right: cmp}
		}
	}

	return acc
}

func (b *Bridge) lowerCall(n *pyast.Call) hir.Expr {
	if attr, ok := n.Func.(*pyast.Attribute); ok {
		mc := &hir.MethodCall{
			Object: b.lowerExpr(attr.Object),
			Method: attr.Name,
			Kwargs: map[string]hir.Expr{},
		}

		for _, a := range n.Args {
			mc.Args = append(mc.Args, b.lowerExpr(a))
		}

		for _, k := range n.KwOrder {
			mc.Kwargs[k] = b.lowerExpr(n.Kwargs[k])
			mc.KwOrder = append(mc.KwOrder, k)
		}

		return mc
	}

	name, ok := n.Func.(*pyast.Name)
	if !ok {
		b.diags.Unsupported("BRIDGE-0210", n.Span(), "call to a non-name, non-attribute callee")
		return &hir.Literal{Kind: hir.LitNone, Raw: "None"}
	}

	c := &hir.Call{FuncName: name.Id, Kwargs: map[string]hir.Expr{}}
	for _, a := range n.Args {
		c.Args = append(c.Args, b.lowerExpr(a))
	}

	for _, k := range n.KwOrder {
		c.Kwargs[k] = b.lowerExpr(n.Kwargs[k])
		c.KwOrder = append(c.KwOrder, k)
	}

	return c
}

func (b *Bridge) lowerContainer(n *pyast.Container) hir.Expr {
	c := &hir.Container{Kind: hir.ContainerKind(n.Kind)}
	for _, el := range n.Elts {
		c.Elts = append(c.Elts, b.lowerExpr(el))
	}

	for _, v := range n.DictValues {
		c.DictValues = append(c.DictValues, b.lowerExpr(v))
	}

	return c
}

func (b *Bridge) lowerComprehension(n *pyast.Comprehension) hir.Expr {
	c := &hir.Comp{Kind: hir.CompKind(n.Kind), Elt: b.lowerExpr(n.Elt)}
	if n.Key != nil {
		c.Key = b.lowerExpr(n.Key)
	}

	for _, g := range n.Generators {
		clause := hir.CompClause{Target: b.lowerExpr(g.Target), Iter: b.lowerExpr(g.Iter)}
		for _, f := range g.Filters {
			clause.Filters = append(clause.Filters, b.lowerExpr(f))
		}

		c.Clauses = append(c.Clauses, clause)
	}

	return c
}

func (b *Bridge) lowerFString(n *pyast.FString) hir.Expr {
	f := &hir.FString{}
	for _, p := range n.Parts {
		part := hir.FStringPart{Literal: p.Literal, FormatSpec: p.FormatSpec}
		if p.Expr != nil {
			part.Expr = b.lowerExpr(p.Expr)
		}

		f.Parts = append(f.Parts, part)
	}

	return f
}

func (b *Bridge) lowerLambda(n *pyast.Lambda) hir.Expr {
	l := &hir.Lambda{Body: b.lowerExprTop(n.Body)}
	for _, p := range n.Params {
		hp := hir.Param{Name: p.Name, DeclaredType: hir.Unknown()}
		if p.Default != nil {
			hp.Default = b.lowerExprTop(p.Default)
		}

		l.Params = append(l.Params, hp)
	}

	return l
}
