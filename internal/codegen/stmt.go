package codegen

import (
	"fmt"

	"github.com/py2rs-dev/py2rs/internal/diag"
	"github.com/py2rs-dev/py2rs/internal/hir"
)

// StmtEmitter renders HIR statements into a RustWriter, sharing the
// expression-emission context.
type StmtEmitter struct {
	*CodeGenContext
	w *RustWriter
}

func (e *StmtEmitter) expr() *ExprContext { return &ExprContext{CodeGenContext: e.CodeGenContext} }

// Block emits every statement in body in order.
func (e *StmtEmitter) Block(body []hir.Stmt) {
	for _, s := range body {
		e.Stmt(s)
	}
}

func (e *StmtEmitter) Stmt(s hir.Stmt) {
	switch n := s.(type) {
	case *hir.Assign:
		e.assign(n)
	case *hir.AugAssign:
		e.augAssign(n)
	case *hir.If:
		e.ifStmt(n)
	case *hir.While:
		e.w.OpenBlock("while %s", e.expr().Expr(n.Condition))
		e.Block(n.Body)
		e.w.CloseBlock()
	case *hir.For:
		e.forStmt(n)
	case *hir.Return:
		if n.Value == nil {
			e.w.Line("return;")
		} else {
			e.w.Line("return %s;", e.expr().owned().Expr(n.Value))
		}
	case *hir.Break:
		e.w.Line("break;")
	case *hir.Continue:
		e.w.Line("continue;")
	case *hir.Raise:
		e.raise(n)
	case *hir.Try:
		e.tryStmt(n)
	case *hir.With:
		e.withStmt(n)
	case *hir.Delete:
		e.w.Line("drop(%s);", targetExprText(n.Target, e.expr()))
	case *hir.ExprStmt:
		e.w.Line("%s;", e.expr().Expr(n.Value))
	case *hir.Pass:
		// Emits nothing; an empty Rust block needs no placeholder.
	case *hir.Global, *hir.Nonlocal:
		// No Rust equivalent; scoping is already resolved structurally by
		// the bridge emitting direct variable references.
	default:
		e.Bag.Add(diag.Diagnostic{
			Severity: diag.Error,
			Kind:     diag.InternalBug,
			Code:     "CODEGEN-0002",
			Message:  fmt.Sprintf("no codegen rule for statement %T", s),
			Primary:  s.Span(),
		})
	}
}

func (e *StmtEmitter) assign(n *hir.Assign) {
	value := e.expr().owned().Expr(n.Value)

	switch n.Target.Kind {
	case hir.TargetSymbol:
		if c, ok := e.selfField(n.Target.Name); ok {
			e.w.Line("%s = %s;", c, value)
		} else if n.NewBinding {
			mut := ""
			if n.Mutable {
				mut = "mut "
			}

			e.w.Line("let %s%s = %s;", mut, n.Target.Name, value)
		} else {
			e.w.Line("%s = %s;", n.Target.Name, value)
		}
	case hir.TargetSubscript:
		obj := e.expr().sub().Expr(n.Target.Object)
		idx := e.expr().sub().Expr(n.Target.Index)
		e.w.Line("%s[%s as usize] = %s;", obj, idx, value)
	case hir.TargetAttribute:
		obj := e.expr().sub().Expr(n.Target.Object)
		e.w.Line("%s.%s = %s;", obj, n.Target.Attr, value)
	case hir.TargetTuple:
		names := make([]string, len(n.Target.Elts))
		anySelf := false

		for i, t := range n.Target.Elts {
			names[i] = e.selfName(t.Name)
			if e.selfFields != nil && e.selfFields[t.Name] {
				anySelf = true
			}
		}

		if anySelf {
			e.w.Line("(%s) = %s;", joinComma(names), value)
		} else {
			e.w.Line("let (%s) = %s;", joinComma(names), value)
		}
	}
}

// selfField reports whether name is a generator field (selfFields is only
// non-nil while emitting a generator's state machine), returning its
// "self.name" form alongside the bool so assign can skip the `let`
// keyword: every generator local is already a struct field, so re-binding
// it is a plain assignment, never a fresh declaration.
func (e *StmtEmitter) selfField(name string) (string, bool) {
	if e.selfFields != nil && e.selfFields[name] {
		return "self." + name, true
	}

	return "", false
}

func (e *StmtEmitter) augAssign(n *hir.AugAssign) {
	rustOp := n.Op
	if n.Op == "//" {
		e.w.Line("%s = py2rs_rt::floor_div(%s, %s);", targetExprText(n.Target, e.expr()), targetExprText(n.Target, e.expr()), e.expr().sub().Expr(n.Value))
		return
	}

	if n.Op == "**" {
		e.w.Line("%s = py2rs_rt::pow(%s, %s);", targetExprText(n.Target, e.expr()), targetExprText(n.Target, e.expr()), e.expr().sub().Expr(n.Value))
		return
	}

	e.w.Line("%s %s= %s;", targetExprText(n.Target, e.expr()), rustOp, e.expr().sub().Expr(n.Value))
}

func targetExprText(t hir.AssignTarget, ec *ExprContext) string {
	switch t.Kind {
	case hir.TargetSymbol:
		return ec.selfName(t.Name)
	case hir.TargetSubscript:
		return fmt.Sprintf("%s[%s as usize]", ec.sub().Expr(t.Object), ec.sub().Expr(t.Index))
	case hir.TargetAttribute:
		return fmt.Sprintf("%s.%s", ec.sub().Expr(t.Object), t.Attr)
	default:
		return "_"
	}
}

func (e *StmtEmitter) ifStmt(n *hir.If) {
	e.w.OpenBlock("if %s", e.expr().Expr(n.Condition))
	e.Block(n.ThenBody)

	if len(n.ElseBody) == 0 {
		e.w.CloseBlock()
		return
	}

	if len(n.ElseBody) == 1 {
		if elif, ok := n.ElseBody[0].(*hir.If); ok {
			e.indentElseIf(elif)
			return
		}
	}

	e.w.ElseBlock()
	e.Block(n.ElseBody)
	e.w.CloseBlock()
}

// indentElseIf handles the `elif` chain shape: rather than nesting another
// full if/else block inside the else branch, it flattens to Rust's
// `} else if ... {` the way the surface source reads.
func (e *StmtEmitter) indentElseIf(n *hir.If) {
	e.w.indent--
	e.w.Line("} else if %s {", e.expr().Expr(n.Condition))
	e.w.indent++
	e.Block(n.ThenBody)

	if len(n.ElseBody) == 1 {
		if elif, ok := n.ElseBody[0].(*hir.If); ok {
			e.indentElseIf(elif)
			return
		}
	}

	if len(n.ElseBody) > 0 {
		e.w.ElseBlock()
		e.Block(n.ElseBody)
	}

	e.w.CloseBlock()
}

func (e *StmtEmitter) forStmt(n *hir.For) {
	target := exprTargetName(n.Target)
	iterMethod := ".into_iter()"

	if n.Mutates {
		iterMethod = ".iter_mut()"
	}

	e.w.OpenBlock("for %s in %s%s", target, e.expr().sub().Expr(n.Iter), iterMethod)
	e.Block(n.Body)
	e.w.CloseBlock()
}

func (e *StmtEmitter) raise(n *hir.Raise) {
	if n.Value == nil {
		e.w.Line("return Err(py2rs_rt::PyError::reraise());")
		return
	}

	e.w.Line("return Err(py2rs_rt::PyError::from(%s));", e.expr().owned().Expr(n.Value))
}

// tryStmt emits try/except/else/finally as a match on a closure's Result,
// since Rust has no structured exception handling: the try body becomes a
// closure invoked immediately, its Err arm dispatches to the except
// clauses by the closest thing to a type test the runtime error carries,
// and finally is emitted unconditionally after the match (§4.5.2).
func (e *StmtEmitter) tryStmt(n *hir.Try) {
	e.w.OpenBlock("let __try_result: Result<(), py2rs_rt::PyError> = (|| -> Result<(), py2rs_rt::PyError>")
	e.Block(n.Body)

	if len(n.Else) > 0 {
		e.Block(n.Else)
	}

	e.w.Line("Ok(())")
	e.w.CloseBlock()
	e.w.Line(")();")

	e.w.OpenBlock("if let Err(__err) = __try_result")

	for i, ec := range n.Except {
		cond := "true"
		if ec.ExcType != "" {
			cond = fmt.Sprintf("__err.matches(%q)", ec.ExcType)
		}

		if i == 0 {
			e.w.OpenBlock("if %s", cond)
		} else {
			e.w.indent--
			e.w.Line("} else if %s {", cond)
			e.w.indent++
		}

		if ec.Name != "" {
			e.w.Line("let %s = &__err;", ec.Name)
		}

		e.Block(ec.Body)
	}

	if len(n.Except) > 0 {
		e.w.CloseBlock()
	}

	e.w.CloseBlock()

	e.Block(n.Finally)
}

// withStmt emits a context manager as a scoped block whose drop at the end
// of the block performs the release contract, relying on Rust's own scope-
// exit drop semantics to stand in for `__exit__` (§4.5.2); an
// ExitContract that names a concrete method (close/unlock) is called
// explicitly at the end of the block as a belt-and-braces release for
// types that don't implement Drop themselves.
func (e *StmtEmitter) withStmt(n *hir.With) {
	ctxExpr := e.expr().owned().Expr(n.Context)
	binding := n.Binding

	if binding == "" {
		binding = "_with_guard"
	}

	e.w.Line("let mut %s = %s;", binding, ctxExpr)
	e.w.OpenBlock("%s", "")
	e.Block(n.Body)

	if n.ExitContract != "" {
		e.w.Line("%s.%s();", binding, n.ExitContract)
	}

	e.w.CloseBlock()
}
