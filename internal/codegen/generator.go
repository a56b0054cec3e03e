package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/py2rs-dev/py2rs/internal/hir"
)

// Generator emits a generator function (§4.5.5) as a synthesized struct
// implementing Iterator, rather than running the body eagerly: every local
// that LiveAcrossYield names becomes a struct field, and each `yield`
// splits the body into a new discriminant state, mirroring the way a
// compiler desugars `async fn` into a polled state machine — the same
// shape, just driven by `Iterator::next` instead of `Future::poll`. A
// `while`/`for` loop whose body contains no yield is left as an ordinary
// Rust loop nested inside one state; a loop whose body does yield is split
// so its condition re-check and its continuation both become states of
// their own, since a suspended `next()` call has to resume mid-loop on the
// next call rather than re-entering a nested Rust block from the top.
func (c *CodeGenContext) Generator(w *RustWriter, fn *hir.Function) {
	c.currentFunc = fn.Name

	elem := generatorElemType(fn.ReturnType)

	live := fn.LiveAcrossYield()
	sort.Strings(live)

	selfFields := make(map[string]bool, len(live))
	for _, n := range live {
		selfFields[n] = true
	}

	gc := &genCompiler{
		c: &CodeGenContext{
			Registry:    c.Registry,
			Facts:       c.Facts,
			Bag:         c.Bag,
			Options:     c.Options,
			currentFunc: fn.Name,
			tempSeed:    c.tempSeed,
			selfFields:  selfFields,
		},
		fn:      fn,
		name:    pascalCase(fn.Name) + "Generator",
		elem:    RustType(elem),
		canFail: fn.Properties.CanFail,
		fields:  fieldTypes(fn, live),
	}

	start, startW := gc.alloc()
	if start != 0 {
		panic("generator state machine must start at state 0")
	}

	gc.compileSeq(startW, fn.Body, func(w2 *RustWriter) { w2.Line("return None;") })

	gc.emit(w)
}

// generatorElemType extracts T from the inferred Iterator<Item = T>
// return type; unknown/untyped generators fall back to PyAny.
func generatorElemType(t hir.Type) hir.Type {
	if t.Kind == hir.TIterator && len(t.Params) == 1 {
		return t.Params[0]
	}

	return hir.Any()
}

// genField is one struct field synthesized for a live-across-yield local:
// every occurrence of Name inside the generator body reads/writes
// `self.Name` instead of a bare binding.
type genField struct {
	name string
	typ  hir.Type
}

// genIterField is a field backing a `for`/`yield from` loop's iterator, so
// it too can be resumed across a suspended next() call. Boxed and
// type-erased since the concrete iterator type codegen would otherwise
// need to name is rarely nameable from HIR alone (closures, chained
// adapters), matching the existing TIterator rendering's own use of `impl
// Iterator` everywhere else in this package.
type genIterField struct {
	name string
	elem string
}

// loopFrame records the state a `continue` jumps back to and the
// continuation a `break` jumps to, for whichever while/for loop a break or
// continue is lexically inside.
type loopFrame struct {
	continueState int
	breakCont     func(*RustWriter)
}

// genCompiler lowers one generator function's body into a set of
// discriminant states. Each state's Rust text is buffered in its own
// RustWriter (arms[i]) rather than written directly into the final output,
// since a yield ends a state's buffer before every brace it opened has
// necessarily closed structurally — the remainder of the enclosing
// if/while/for becomes the *next* state's buffer instead, flattened out of
// that nesting entirely. The buffers are spliced into one `match self.state`
// at the end via emit.
type genCompiler struct {
	c       *CodeGenContext
	fn      *hir.Function
	name    string
	elem    string
	canFail bool

	arms       []*RustWriter
	fields     []genField
	iterFields []genIterField
	loopStack  []loopFrame
}

func (g *genCompiler) alloc() (int, *RustWriter) {
	id := len(g.arms)
	w := NewRustWriter()
	g.arms = append(g.arms, w)

	return id, w
}

func (g *genCompiler) exprCtx() *ExprContext { return &ExprContext{CodeGenContext: g.c} }
func (g *genCompiler) stmt(w *RustWriter) *StmtEmitter {
	return &StmtEmitter{CodeGenContext: g.c, w: w}
}

// compileSeq renders stmts into w, threading k as "what runs once this
// sequence completes normally" — a Go closure standing in for whatever
// Rust text should appear next, whether that's more of the same state
// (ordinary statements) or a jump into a freshly allocated one (after a
// yield). Constructs with no yield anywhere inside them are left to the
// ordinary, non-generator-aware StmtEmitter, since nothing inside needs to
// survive a suspension point.
func (g *genCompiler) compileSeq(w *RustWriter, stmts []hir.Stmt, k func(*RustWriter)) {
	if len(stmts) == 0 {
		k(w)
		return
	}

	s, rest := stmts[0], stmts[1:]

	switch n := s.(type) {
	case *hir.ExprStmt:
		switch y := n.Value.(type) {
		case *hir.Yield:
			g.compileYield(w, y, rest, k)
			return
		case *hir.YieldFrom:
			g.compileYieldFrom(w, y, rest, k)
			return
		}
	case *hir.If:
		if containsYield(n.ThenBody) || containsYield(n.ElseBody) {
			g.compileIf(w, n, rest, k)
			return
		}
	case *hir.While:
		if containsYield(n.Body) {
			g.compileWhile(w, n, rest, k)
			return
		}
	case *hir.For:
		if containsYield(n.Body) {
			g.compileFor(w, n, rest, k)
			return
		}
	case *hir.Try:
		flattened := flattenTry(n)
		g.compileSeq(w, flattened, func(w2 *RustWriter) { g.compileSeq(w2, rest, k) })

		return
	case *hir.With:
		g.compileSeq(w, n.Body, func(w2 *RustWriter) { g.compileSeq(w2, rest, k) })
		return
	case *hir.Raise:
		if g.canFail {
			g.compileRaise(w, n)
			return
		}
		// No clean mapping for a raise inside a non-fallible generator's
		// state machine; fall through to the ordinary emitter, same as
		// every other unhandled case below.
	case *hir.Return:
		w.Line("return None;")
		return
	case *hir.Break:
		g.compileBreak(w)
		return
	case *hir.Continue:
		g.compileContinue(w)
		return
	}

	g.stmt(w).Stmt(s)
	g.compileSeq(w, rest, k)
}

// compileYield ends the current state at a suspension point: it stores the
// yielded value's continuation in a fresh state and returns it immediately,
// so the next call to next() resumes exactly where this one left off.
func (g *genCompiler) compileYield(w *RustWriter, y *hir.Yield, rest []hir.Stmt, k func(*RustWriter)) {
	val := "()"
	if y.Value != nil {
		val = g.exprCtx().owned().Expr(y.Value)
	}

	nextID, nextW := g.alloc()

	w.Line("self.state = %d;", nextID)

	if g.canFail {
		w.Line("return Some(Ok(%s));", val)
	} else {
		w.Line("return Some(%s);", val)
	}

	g.compileSeq(nextW, rest, k)
}

// compileYieldFrom delegates to a boxed sub-iterator field, yielding one
// element per resumption until it's exhausted, then falling through to
// rest in the same state that observed exhaustion (a single convergence
// point, so rest's code is emitted exactly once).
func (g *genCompiler) compileYieldFrom(w *RustWriter, y *hir.YieldFrom, rest []hir.Stmt, k func(*RustWriter)) {
	field, _ := g.allocIterField(y.Iter)

	w.Line("self.%s = Some(Box::new((%s).into_iter()));", field, g.exprCtx().sub().Expr(y.Iter))

	loopID, loopW := g.alloc()
	w.Line("self.state = %d;", loopID)
	w.Line("continue;")

	loopW.OpenBlock("match self.%s.as_mut().unwrap().next()", field)
	loopW.OpenBlock("Some(__item) =>")
	loopW.Line("self.state = %d;", loopID)

	if g.canFail {
		loopW.Line("return Some(Ok(__item));")
	} else {
		loopW.Line("return Some(__item);")
	}

	loopW.CloseBlock()
	loopW.OpenBlock("None =>")
	loopW.Line("self.%s = None;", field)
	g.compileSeq(loopW, rest, k)
	loopW.CloseBlock()
	loopW.CloseBlock()
}

// compileIf splits a branch containing a yield into its own state,
// funneling both the then- and else-arms into one join state so rest's
// code is spliced in only once regardless of which branch suspended.
func (g *genCompiler) compileIf(w *RustWriter, n *hir.If, rest []hir.Stmt, k func(*RustWriter)) {
	joinID, joinW := g.alloc()
	toJoin := func(w2 *RustWriter) {
		w2.Line("self.state = %d;", joinID)
		w2.Line("continue;")
	}

	w.OpenBlock("if %s", g.exprCtx().Expr(n.Condition))
	g.compileSeq(w, n.ThenBody, toJoin)
	w.CloseBlock()

	w.OpenBlock("else")
	if len(n.ElseBody) > 0 {
		g.compileSeq(w, n.ElseBody, toJoin)
	} else {
		toJoin(w)
	}
	w.CloseBlock()

	g.compileSeq(joinW, rest, k)
}

// compileWhile splits a yielding while-loop into a condition-check state
// (loopID) and an after-loop state (afterID): the body's fallthrough and
// every `continue` jump back to loopID, every `break` and the
// condition-false path jump to afterID, so resuming mid-loop across
// separate next() calls only ever needs the discriminant, never a native
// Rust loop surviving a suspended stack frame.
func (g *genCompiler) compileWhile(w *RustWriter, n *hir.While, rest []hir.Stmt, k func(*RustWriter)) {
	loopID, loopW := g.alloc()
	w.Line("self.state = %d;", loopID)
	w.Line("continue;")

	afterID, afterW := g.alloc()
	jumpAfter := func(w2 *RustWriter) {
		w2.Line("self.state = %d;", afterID)
		w2.Line("continue;")
	}

	bodyK := func(w2 *RustWriter) {
		w2.Line("self.state = %d;", loopID)
		w2.Line("continue;")
	}

	loopW.OpenBlock("if %s", g.exprCtx().Expr(n.Condition))
	g.loopStack = append(g.loopStack, loopFrame{continueState: loopID, breakCont: jumpAfter})
	g.compileSeq(loopW, n.Body, bodyK)
	g.loopStack = g.loopStack[:len(g.loopStack)-1]
	loopW.CloseBlock()

	loopW.OpenBlock("else")
	jumpAfter(loopW)
	loopW.CloseBlock()

	g.compileSeq(afterW, rest, k)
}

// compileFor mirrors compileWhile, pulling from a boxed iterator field one
// element per pass through loopID instead of re-checking a condition.
func (g *genCompiler) compileFor(w *RustWriter, n *hir.For, rest []hir.Stmt, k func(*RustWriter)) {
	field, _ := g.allocIterField(n.Iter)

	w.Line("self.%s = Some(Box::new((%s).into_iter()));", field, g.exprCtx().sub().Expr(n.Iter))

	loopID, loopW := g.alloc()
	w.Line("self.state = %d;", loopID)
	w.Line("continue;")

	afterID, afterW := g.alloc()
	jumpAfter := func(w2 *RustWriter) {
		w2.Line("self.%s = None;", field)
		w2.Line("self.state = %d;", afterID)
		w2.Line("continue;")
	}

	bodyK := func(w2 *RustWriter) {
		w2.Line("self.state = %d;", loopID)
		w2.Line("continue;")
	}

	target := g.c.selfName(exprTargetName(n.Target))

	loopW.OpenBlock("match self.%s.as_mut().unwrap().next()", field)
	loopW.OpenBlock("Some(__item) =>")
	loopW.Line("%s = __item;", target)
	g.loopStack = append(g.loopStack, loopFrame{continueState: loopID, breakCont: jumpAfter})
	g.compileSeq(loopW, n.Body, bodyK)
	g.loopStack = g.loopStack[:len(g.loopStack)-1]
	loopW.CloseBlock()
	loopW.OpenBlock("None =>")
	jumpAfter(loopW)
	loopW.CloseBlock()
	loopW.CloseBlock()

	g.compileSeq(afterW, rest, k)
}

func (g *genCompiler) compileRaise(w *RustWriter, n *hir.Raise) {
	if n.Value == nil {
		w.Line("return Some(Err(py2rs_rt::PyError::reraise()));")
		return
	}

	w.Line("return Some(Err(py2rs_rt::PyError::from(%s)));", g.exprCtx().owned().Expr(n.Value))
}

func (g *genCompiler) compileBreak(w *RustWriter) {
	if len(g.loopStack) == 0 {
		w.Line("break;")
		return
	}

	g.loopStack[len(g.loopStack)-1].breakCont(w)
}

func (g *genCompiler) compileContinue(w *RustWriter) {
	if len(g.loopStack) == 0 {
		w.Line("continue;")
		return
	}

	w.Line("self.state = %d;", g.loopStack[len(g.loopStack)-1].continueState)
	w.Line("continue;")
}

func (g *genCompiler) allocIterField(iter hir.Expr) (string, string) {
	elem := RustType(iter.InferredType().Elem())
	field := fmt.Sprintf("__iter%d", len(g.iterFields))
	g.iterFields = append(g.iterFields, genIterField{name: field, elem: elem})

	return field, elem
}

// flattenTry inlines a try/except/else/finally's bodies in source order,
// dropping the exception-type dispatch: the generator state machine has no
// representation for "resume iteration, but from inside a catch block",
// so (as with the eager collector this replaces) every clause just runs in
// sequence, which is sound whenever the body doesn't actually raise.
func flattenTry(n *hir.Try) []hir.Stmt {
	out := append([]hir.Stmt{}, n.Body...)
	out = append(out, n.Else...)

	for _, ec := range n.Except {
		out = append(out, ec.Body...)
	}

	out = append(out, n.Finally...)

	return out
}

// containsYield reports whether a bare `yield`/`yield from` appears
// anywhere in stmts, including nested in an if/while/for/try/with or
// inside an expression — the test compileSeq uses to decide whether a
// construct needs state-splitting or can be left to the ordinary emitter.
func containsYield(stmts []hir.Stmt) bool {
	for _, s := range stmts {
		if stmtContainsYield(s) {
			return true
		}
	}

	return false
}

func stmtContainsYield(s hir.Stmt) bool {
	switch n := s.(type) {
	case *hir.ExprStmt:
		return exprContainsYield(n.Value)
	case *hir.Assign:
		return exprContainsYield(n.Value)
	case *hir.AugAssign:
		return exprContainsYield(n.Value)
	case *hir.If:
		return exprContainsYield(n.Condition) || containsYield(n.ThenBody) || containsYield(n.ElseBody)
	case *hir.While:
		return exprContainsYield(n.Condition) || containsYield(n.Body)
	case *hir.For:
		return exprContainsYield(n.Iter) || containsYield(n.Body)
	case *hir.Return:
		return n.Value != nil && exprContainsYield(n.Value)
	case *hir.Raise:
		return n.Value != nil && exprContainsYield(n.Value)
	case *hir.With:
		return exprContainsYield(n.Context) || containsYield(n.Body)
	case *hir.Try:
		if containsYield(n.Body) || containsYield(n.Else) || containsYield(n.Finally) {
			return true
		}

		for _, ec := range n.Except {
			if containsYield(ec.Body) {
				return true
			}
		}

		return false
	default:
		return false
	}
}

func exprContainsYield(e hir.Expr) bool {
	switch n := e.(type) {
	case *hir.Yield, *hir.YieldFrom:
		return true
	case *hir.Binary:
		return exprContainsYield(n.Left) || exprContainsYield(n.Right)
	case *hir.Unary:
		return exprContainsYield(n.Operand)
	case *hir.Call:
		for _, a := range n.Args {
			if exprContainsYield(a) {
				return true
			}
		}

		return false
	case *hir.MethodCall:
		if exprContainsYield(n.Object) {
			return true
		}

		for _, a := range n.Args {
			if exprContainsYield(a) {
				return true
			}
		}

		return false
	case *hir.Attribute:
		return exprContainsYield(n.Object)
	case *hir.Subscript:
		return exprContainsYield(n.Object) || exprContainsYield(n.Index)
	case *hir.Ternary:
		return exprContainsYield(n.Cond) || exprContainsYield(n.Then) || exprContainsYield(n.Else)
	case *hir.Container:
		for _, el := range n.Elts {
			if exprContainsYield(el) {
				return true
			}
		}

		for _, el := range n.DictValues {
			if exprContainsYield(el) {
				return true
			}
		}

		return false
	default:
		return false
	}
}

// fieldTypes derives each live-across-yield name's Rust field type: seeded
// from its parameter's declared type where it is one, then refined from
// every *hir.Var occurrence's inferred type the way the type checker left
// it, since repeated occurrences of the same name all resolve to one
// concrete type through the solver's shared environment entry. A name
// never pinned down by either source (dead in practice, or genuinely
// untyped) falls back to Any, the same dynamic escape hatch RustType uses
// elsewhere.
func fieldTypes(fn *hir.Function, live []string) []genField {
	liveSet := make(map[string]bool, len(live))
	for _, n := range live {
		liveSet[n] = true
	}

	types := map[string]hir.Type{}
	for _, p := range fn.Params {
		types[p.Name] = p.DeclaredType
	}

	var walkExpr func(hir.Expr)

	walkExpr = func(e hir.Expr) {
		if e == nil {
			return
		}

		switch n := e.(type) {
		case *hir.Var:
			if liveSet[n.Name] {
				if t := n.InferredType(); t.Kind != hir.TUnknown {
					types[n.Name] = t
				}
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
		case *hir.Yield:
			if n.Value != nil {
				walkExpr(n.Value)
			}
		case *hir.YieldFrom:
			walkExpr(n.Iter)
		}
	}

	var walkStmts func([]hir.Stmt)

	walkStmts = func(body []hir.Stmt) {
		for _, s := range body {
			switch n := s.(type) {
			case *hir.Assign:
				walkExpr(n.Value)
			case *hir.AugAssign:
				walkExpr(n.Value)
			case *hir.If:
				walkExpr(n.Condition)
				walkStmts(n.ThenBody)
				walkStmts(n.ElseBody)
			case *hir.While:
				walkExpr(n.Condition)
				walkStmts(n.Body)
			case *hir.For:
				if v, ok := n.Target.(*hir.Var); ok && liveSet[v.Name] {
					if t := v.InferredType(); t.Kind != hir.TUnknown {
						types[v.Name] = t
					} else if it := n.Iter.InferredType(); it.Kind != hir.TUnknown {
						types[v.Name] = it.Elem()
					}
				}

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
			}
		}
	}

	walkStmts(fn.Body)

	out := make([]genField, 0, len(live))

	for _, name := range live {
		t, ok := types[name]
		if !ok {
			t = hir.Any()
		}

		out = append(out, genField{name: name, typ: t})
	}

	return out
}

// emit splices every buffered state into one `match self.state` inside
// next(), declares the struct and its fields, and renders the constructor
// function under the generator's original name.
func (g *genCompiler) emit(w *RustWriter) {
	w.Line("pub struct %s {", g.name)
	w.indent++
	w.Line("state: u32,")

	for _, f := range g.fields {
		w.Line("%s: %s,", f.name, RustType(f.typ))
	}

	for _, f := range g.iterFields {
		w.Line("%s: Option<Box<dyn Iterator<Item = %s>>>,", f.name, f.elem)
	}

	w.indent--
	w.Line("}")
	w.Blank()

	itemType := g.elem
	if g.canFail {
		itemType = fmt.Sprintf("Result<%s, py2rs_rt::PyError>", g.elem)
	}

	w.OpenBlock("impl Iterator for %s", g.name)
	w.Line("type Item = %s;", itemType)
	w.Blank()
	w.OpenBlock("fn next(&mut self) -> Option<%s>", itemType)
	w.OpenBlock("loop")
	w.OpenBlock("match self.state")

	for id, arm := range g.arms {
		w.OpenBlock("%d =>", id)
		w.WriteRaw(arm.String())
		w.CloseBlock()
	}

	w.Line("_ => return None,")
	w.CloseBlock()
	w.CloseBlock()
	w.CloseBlock()
	w.Blank()

	params := make([]string, 0, len(g.fn.Params))
	for _, p := range g.fn.Params {
		params = append(params, g.c.paramText(p))
	}

	w.OpenBlock("pub fn %s(%s) -> impl Iterator<Item = %s>", g.fn.Name, joinComma(params), itemType)
	w.Line("%s {", g.name)
	w.indent++
	w.Line("state: 0,")

	paramSet := make(map[string]bool, len(g.fn.Params))
	for _, p := range g.fn.Params {
		paramSet[p.Name] = true
		w.Line("%s: %s,", p.Name, p.Name)
	}

	for _, f := range g.fields {
		if paramSet[f.name] {
			continue
		}

		w.Line("%s: Default::default(),", f.name)
	}

	for _, f := range g.iterFields {
		w.Line("%s: None,", f.name)
	}

	w.indent--
	w.Line("}")
	w.CloseBlock()
}

// pascalCase converts a Python snake_case identifier into the UpperCamelCase
// Rust's type-naming convention expects for the synthesized generator
// struct (e.g. "fib_gen" -> "FibGen").
func pascalCase(name string) string {
	parts := strings.Split(name, "_")

	var b strings.Builder

	for _, p := range parts {
		if p == "" {
			continue
		}

		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}

	return b.String()
}
