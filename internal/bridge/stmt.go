package bridge

import (
	"fmt"

	"github.com/py2rs-dev/py2rs/internal/hir"
	"github.com/py2rs-dev/py2rs/internal/pyast"
)

// lowerStmt lowers one surface statement, possibly into several HIR
// statements (tuple-pattern expansion, side-effecting augmented-subscript
// assignment, chained-comparison temp hoisting all desugar to more than one
// statement; §4.1).
func (b *Bridge) lowerStmt(s pyast.Stmt) []hir.Stmt {
	saved := b.pending
	b.pending = nil

	var core []hir.Stmt

	switch n := s.(type) {
	case *pyast.Assign:
		core = b.lowerAssign(n)
	case *pyast.AugAssign:
		core = b.lowerAugAssign(n)
	case *pyast.If:
		core = []hir.Stmt{b.lowerIf(n)}
	case *pyast.While:
		core = []hir.Stmt{&hir.While{Condition: b.lowerExpr(n.Cond), Body: b.lowerDecoratedBody(n.Body)}}
	case *pyast.For:
		core = []hir.Stmt{&hir.For{
			Target: b.lowerExpr(n.Target),
			Iter:   b.lowerExpr(n.Iter),
			Body:   b.lowerDecoratedBody(n.Body),
		}}
	case *pyast.Return:
		var v hir.Expr
		if n.Value != nil {
			v = b.lowerExpr(n.Value)
		}

		core = []hir.Stmt{&hir.Return{Value: v}}
	case *pyast.Break:
		core = []hir.Stmt{&hir.Break{Label: n.Label}}
	case *pyast.Continue:
		core = []hir.Stmt{&hir.Continue{Label: n.Label}}
	case *pyast.Raise:
		var v hir.Expr
		if n.Exc != nil {
			v = b.lowerExpr(n.Exc)
		}

		core = []hir.Stmt{&hir.Raise{Value: v}}
	case *pyast.Try:
		core = []hir.Stmt{b.lowerTry(n)}
	case *pyast.With:
		core = []hir.Stmt{b.lowerWith(n)}
	case *pyast.Delete:
		core = []hir.Stmt{&hir.Delete{Target: b.lowerTarget(n.Target)}}
	case *pyast.ExprStmt:
		core = []hir.Stmt{&hir.ExprStmt{Value: b.lowerExpr(n.Value)}}
	case *pyast.Pass:
		core = []hir.Stmt{&hir.Pass{}}
	case *pyast.Global:
		core = []hir.Stmt{&hir.Global{Names: n.Names}}
	case *pyast.Nonlocal:
		core = []hir.Stmt{&hir.Nonlocal{Names: n.Names}}
	default:
		b.diags.Unsupported("BRIDGE-0100", s.Span(), fmt.Sprintf("statement %T", s))
	}

	for _, st := range core {
		if st.Span().Start.Offset == 0 && st.Span().End.Offset == 0 {
			st.SetSpan(s.Span())
		}
	}

	out := append([]hir.Stmt{}, b.pending...)
	out = append(out, core...)
	b.pending = saved

	return out
}

func (b *Bridge) lowerIf(n *pyast.If) hir.Stmt {
	return &hir.If{
		Condition: b.lowerExpr(n.Cond),
		ThenBody:  b.lowerDecoratedBody(n.Then),
		ElseBody:  b.lowerDecoratedBody(n.Else),
	}
}

// lowerAssign implements tuple-pattern expansion and annotated-assignment
// lowering (§4.1).
func (b *Bridge) lowerAssign(n *pyast.Assign) []hir.Stmt {
	if tuple, ok := n.Target.(*pyast.Container); ok && tuple.Kind == pyast.ContainerTuple {
		if rhs, ok := n.Value.(*pyast.Container); ok &&
			(rhs.Kind == pyast.ContainerTuple || rhs.Kind == pyast.ContainerList) &&
			len(rhs.Elts) == len(tuple.Elts) {
			// Parallel-evaluation semantics: evaluate all RHS first into
			// temporaries, then bind each target.
			temps := make([]string, len(rhs.Elts))
			var out []hir.Stmt

			for i, el := range rhs.Elts {
				tmp := b.freshTemp()
				temps[i] = tmp
				out = append(out, &hir.Assign{
					Target:     hir.AssignTarget{Kind: hir.TargetSymbol, Name: tmp},
					Value:      b.lowerExpr(el),
					NewBinding: true,
				})
			}

			for i, tgt := range tuple.Elts {
				name, ok := tgt.(*pyast.Name)
				if !ok {
					b.diags.Unsupported("BRIDGE-0110", n.Span(), "nested tuple-pattern target")
					continue
				}

				out = append(out, &hir.Assign{
					Target:     hir.AssignTarget{Kind: hir.TargetSymbol, Name: name.Id},
					Value:      &hir.Var{Name: temps[i]},
					NewBinding: true,
				})
			}

			return out
		}

		b.diags.Unsupported("BRIDGE-0111", n.Span(), "tuple-pattern assignment with non-literal or mismatched-length right-hand side")

		return nil
	}

	target := b.lowerTarget(n.Target)
	a := &hir.Assign{
		Target:     target,
		Value:      b.lowerExpr(n.Value),
		NewBinding: target.Kind == hir.TargetSymbol,
	}

	if n.Annotation != nil {
		t := b.typeFromAnnotation(n.Annotation)
		a.TypeAnnotation = &t
	}

	return []hir.Stmt{a}
}

// lowerAugAssign implements the subscript side-effect rule: `d[k] op= v`
// lowers to `t = obj; idx = key; t[idx] = t[idx] op value` only when obj or
// key is not side-effect-free; otherwise it stays a plain AugAssign.
func (b *Bridge) lowerAugAssign(n *pyast.AugAssign) []hir.Stmt {
	sub, isSub := n.Target.(*pyast.Subscript)
	if !isSub {
		return []hir.Stmt{&hir.AugAssign{
			Target: b.lowerTarget(n.Target),
			Op:     n.Op,
			Value:  b.lowerExpr(n.Value),
		}}
	}

	if isPureRef(sub.Object) && isPureRef(sub.Index) {
		return []hir.Stmt{&hir.AugAssign{
			Target: b.lowerTarget(n.Target),
			Op:     n.Op,
			Value:  b.lowerExpr(n.Value),
		}}
	}

	objTmp, idxTmp := b.freshTemp(), b.freshTemp()
	out := []hir.Stmt{
		&hir.Assign{Target: hir.AssignTarget{Kind: hir.TargetSymbol, Name: objTmp}, Value: b.lowerExpr(sub.Object), NewBinding: true},
		&hir.Assign{Target: hir.AssignTarget{Kind: hir.TargetSymbol, Name: idxTmp}, Value: b.lowerExpr(sub.Index), NewBinding: true},
	}

	tgt := hir.AssignTarget{Kind: hir.TargetSubscript, Object: &hir.Var{Name: objTmp}, Index: &hir.Var{Name: idxTmp}}
	rhs := &hir.Binary{
		Op:    opFromAug(n.Op),
		Left:  &hir.Subscript{Object: &hir.Var{Name: objTmp}, Index: &hir.Var{Name: idxTmp}},
		Right: b.lowerExpr(n.Value),
	}
	out = append(out, &hir.Assign{Target: tgt, Value: rhs})

	return out
}

func opFromAug(op string) string {
	if len(op) > 0 && op[len(op)-1] == '=' {
		return op[:len(op)-1]
	}

	return op
}

func isPureRef(e pyast.Expr) bool {
	switch e.(type) {
	case *pyast.Name, *pyast.Literal:
		return true
	default:
		return false
	}
}

func (b *Bridge) lowerTarget(e pyast.Expr) hir.AssignTarget {
	switch n := e.(type) {
	case *pyast.Name:
		return hir.AssignTarget{Kind: hir.TargetSymbol, Name: n.Id}
	case *pyast.Subscript:
		return hir.AssignTarget{Kind: hir.TargetSubscript, Object: b.lowerExpr(n.Object), Index: b.lowerExpr(n.Index)}
	case *pyast.Attribute:
		return hir.AssignTarget{Kind: hir.TargetAttribute, Object: b.lowerExpr(n.Object), Attr: n.Name}
	case *pyast.Container:
		if n.Kind == pyast.ContainerTuple {
			elts := make([]hir.AssignTarget, len(n.Elts))
			for i, el := range n.Elts {
				elts[i] = b.lowerTarget(el)
			}

			return hir.AssignTarget{Kind: hir.TargetTuple, Elts: elts}
		}
	}

	b.diags.Unsupported("BRIDGE-0120", e.Span(), fmt.Sprintf("assignment target %T", e))

	return hir.AssignTarget{}
}

// lowerTry lowers try/except/else/finally 1:1; guaranteed-release semantics
// for `finally` are preserved structurally (codegen emits the scoped-exit
// block per §4.5.2).
func (b *Bridge) lowerTry(n *pyast.Try) hir.Stmt {
	t := &hir.Try{
		Body:    b.lowerDecoratedBody(n.Body),
		Else:    b.lowerDecoratedBody(n.Else),
		Finally: b.lowerDecoratedBody(n.Finally),
	}

	for _, ec := range n.Except {
		excType := ""
		if ec.Type != nil {
			if name, ok := ec.Type.(*pyast.Name); ok {
				excType = name.Id
			}
		}

		t.Except = append(t.Except, hir.ExceptClause{
			ExcType: excType,
			Name:    ec.Name,
			Body:    b.lowerDecoratedBody(ec.Body),
		})
	}

	return t
}

// contextExitContracts maps well-known context-manager constructors to the
// __exit__ behavior codegen should emit a release for.
var contextExitContracts = map[string]string{
	"open":          "close",
	"Lock":          "unlock",
	"RLock":         "unlock",
	"suppress":      "none",
	"TemporaryFile": "close",
}

func (b *Bridge) lowerWith(n *pyast.With) hir.Stmt {
	exit := ""

	if call, ok := n.Context.(*pyast.Call); ok {
		if name, ok := call.Func.(*pyast.Name); ok {
			exit = contextExitContracts[name.Id]
		}
	}

	return &hir.With{
		Context:      b.lowerExpr(n.Context),
		Binding:      n.Binding,
		Body:         b.lowerDecoratedBody(n.Body),
		ExitContract: exit,
	}
}
