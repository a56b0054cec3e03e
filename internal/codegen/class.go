package codegen

import (
	"github.com/py2rs-dev/py2rs/internal/hir"
)

// Class emits a HIR class as a Rust struct plus an inherent impl block,
// routing recognized dunder methods to their trait implementations
// (§4.5.4) instead of the inherent impl, and folding single inheritance
// into a delegating `base:` field since Rust structs have no inheritance
// of their own.
func (c *CodeGenContext) Class(w *RustWriter, cls *hir.Class) {
	w.Line("#[derive(Debug, Clone)]")
	w.OpenBlock("pub struct %s", cls.Name)

	for _, base := range cls.Bases {
		// Single inheritance becomes field delegation: the base class's
		// state is embedded and its methods reached through it. Multiple
		// bases beyond the first are treated as mixins contributing no
		// storage of their own; none of their methods is emitted onto this
		// struct.
		if base == cls.Bases[0] {
			w.Line("pub base: %s,", base)
		}
	}

	for _, f := range cls.Fields {
		w.Line("pub %s: %s,", f.Name, RustType(f.Type))
	}

	w.CloseBlock()
	w.Blank()

	for _, cst := range cls.Consts {
		w.Line("impl %s {", cls.Name)
		w.indent++
		w.Line("pub const %s: %s = %s;", cst.Name, RustType(cst.Type), c.constExpr(cst))
		w.indent--
		w.Line("}")
	}

	dunders, plain := splitMethods(cls.Methods)

	w.OpenBlock("impl %s", cls.Name)

	if init := cls.Init(); init != nil {
		c.constructor(w, cls, init)
	}

	for i := range plain {
		c.Function(w, &plain[i])
	}

	w.CloseBlock()
	w.Blank()

	for trait, methods := range dunders {
		w.OpenBlock("impl %s for %s", trait, cls.Name)

		for _, m := range methods {
			c.Function(w, m)
		}

		w.CloseBlock()
		w.Blank()
	}
}

func (c *CodeGenContext) constExpr(cst hir.ClassConst) string {
	return c.exprFor(cst.Value)
}

func (c *CodeGenContext) exprFor(e hir.Expr) string {
	ec := &ExprContext{CodeGenContext: c, wantOwned: true}
	return ec.Expr(e)
}

// splitMethods separates dunder methods bound for a trait impl from plain
// methods bound for the struct's own inherent impl block. __init__ is
// handled separately by constructor, since Rust has no user-defined
// constructor trait and the receiver-less `new` shape needs its own
// emission path.
func splitMethods(methods []hir.Function) (map[string][]*hir.Function, []hir.Function) {
	dunders := map[string][]*hir.Function{}
	plain := make([]hir.Function, 0, len(methods))

	for i := range methods {
		m := &methods[i]
		if m.Name == "__init__" {
			continue
		}

		if trait, ok := hir.DunderTrait(m.Name); ok && trait != "len" {
			dunders[trait] = append(dunders[trait], m)
			continue
		}

		plain = append(plain, *m)
	}

	return dunders, plain
}

// constructor emits __init__ as an associated `new` function returning
// Self. Top-level `self.field = expr` assignments become the Self struct
// literal's fields directly; fields the body never assigns directly fall
// back to Default::default(), which only compiles when the field's type
// implements Default (true for every primitive, collection, and Option
// field; a hand-written Default impl is needed for a custom-typed field
// with no direct assignment, a known gap for unusual constructors).
// Remaining statements (validation, loops, conditional field setup) are
// emitted after construction with every `self` reference renamed to
// `instance`, since `self` is only valid as a method receiver name in
// Rust, not as an ordinary local binding.
func (c *CodeGenContext) constructor(w *RustWriter, cls *hir.Class, init *hir.Function) {
	direct := map[string]string{}
	rest := make([]hir.Stmt, 0, len(init.Body))

	for _, s := range init.Body {
		if a, ok := s.(*hir.Assign); ok && a.Target.Kind == hir.TargetAttribute {
			if obj, ok := a.Target.Object.(*hir.Var); ok && obj.Name == "self" {
				if _, taken := direct[a.Target.Attr]; !taken {
					direct[a.Target.Attr] = c.exprFor(a.Value)
					continue
				}
			}
		}

		rest = append(rest, s)
	}

	params := init.Params
	if len(params) > 0 {
		params = params[1:]
	}

	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, c.paramText(p))
	}

	w.OpenBlock("pub fn new(%s) -> Self", joinComma(parts))
	w.OpenBlock("let mut instance = Self")

	for _, f := range cls.Fields {
		if v, ok := direct[f.Name]; ok {
			w.Line("%s: %s,", f.Name, v)
		} else {
			w.Line("%s: Default::default(),", f.Name)
		}
	}

	w.CloseBlockSemi()

	renameSelf(rest, "instance")

	se := &StmtEmitter{CodeGenContext: c, w: w}
	se.Block(rest)

	w.Line("instance")
	w.CloseBlock()
}

// renameSelf mutates every reference to the variable "self" in body to
// name instead, in place. Scoped to the constructor's body, where `self`
// cannot be the implicit receiver since `new` has none.
func renameSelf(body []hir.Stmt, name string) {
	var walkExpr func(hir.Expr)

	var walkStmts func([]hir.Stmt)

	renameTarget := func(t *hir.AssignTarget) {
		if v, ok := t.Object.(*hir.Var); ok && v.Name == "self" {
			v.Name = name
		}

		if t.Kind == hir.TargetSymbol && t.Name == "self" {
			t.Name = name
		}
	}

	walkExpr = func(e hir.Expr) {
		switch n := e.(type) {
		case *hir.Var:
			if n.Name == "self" {
				n.Name = name
			}
		case *hir.Binary:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *hir.Unary:
			walkExpr(n.Operand)
		case *hir.Call:
			for _, a := range n.Args {
				walkExpr(a)
			}

			for _, a := range n.Kwargs {
				walkExpr(a)
			}
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
		case *hir.Slice:
			walkExpr(n.Object)
		case *hir.Container:
			for _, el := range n.Elts {
				walkExpr(el)
			}

			for _, el := range n.DictValues {
				walkExpr(el)
			}
		case *hir.Ternary:
			walkExpr(n.Cond)
			walkExpr(n.Then)
			walkExpr(n.Else)
		case *hir.Starred:
			walkExpr(n.Value)
		case *hir.FString:
			for _, p := range n.Parts {
				if p.Expr != nil {
					walkExpr(p.Expr)
				}
			}
		case *hir.Comp:
			walkExpr(n.Elt)

			if n.Key != nil {
				walkExpr(n.Key)
			}

			for _, cl := range n.Clauses {
				walkExpr(cl.Iter)

				for _, f := range cl.Filters {
					walkExpr(f)
				}
			}
		}
	}

	walkStmts = func(stmts []hir.Stmt) {
		for _, s := range stmts {
			switch n := s.(type) {
			case *hir.Assign:
				renameTarget(&n.Target)
				walkExpr(n.Value)
			case *hir.AugAssign:
				renameTarget(&n.Target)
				walkExpr(n.Value)
			case *hir.If:
				walkExpr(n.Condition)
				walkStmts(n.ThenBody)
				walkStmts(n.ElseBody)
			case *hir.While:
				walkExpr(n.Condition)
				walkStmts(n.Body)
			case *hir.For:
				walkExpr(n.Target)
				walkExpr(n.Iter)
				walkStmts(n.Body)
			case *hir.Return:
				if n.Value != nil {
					walkExpr(n.Value)
				}
			case *hir.Raise:
				if n.Value != nil {
					walkExpr(n.Value)
				}
			case *hir.Try:
				walkStmts(n.Body)
				walkStmts(n.Else)
				walkStmts(n.Finally)

				for _, ec := range n.Except {
					walkStmts(ec.Body)
				}
			case *hir.With:
				walkExpr(n.Context)
				walkStmts(n.Body)
			case *hir.ExprStmt:
				walkExpr(n.Value)
			case *hir.Delete:
				renameTarget(&n.Target)
			}
		}
	}

	walkStmts(body)
}
