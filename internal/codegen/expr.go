package codegen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/py2rs-dev/py2rs/internal/config"
	"github.com/py2rs-dev/py2rs/internal/diag"
	"github.com/py2rs-dev/py2rs/internal/hir"
)

// strMethodTable and listMethodTable map a Python method name on a str or
// list/set receiver to its Rust equivalent (§4.5.4's curated mapping). A
// method absent from the tables is emitted as a same-named method call and
// left for the target compiler to reject if it does not exist; no earlier
// stage reports an unmapped method.
var strMethodTable = map[string]string{
	"upper": "to_uppercase", "lower": "to_lowercase",
	"strip": "trim", "lstrip": "trim_start", "rstrip": "trim_end",
	"startswith": "starts_with", "endswith": "ends_with",
	"isdigit": "chars().all(|c| c.is_ascii_digit())",
	"isalpha": "chars().all(|c| c.is_alphabetic())",
	"isspace": "chars().all(|c| c.is_whitespace())",
	"isupper": "chars().all(|c| c.is_uppercase())",
	"islower": "chars().all(|c| c.is_lowercase())",
	"title":   "to_titlecase",
	"find":    "find", "rfind": "rfind", "count": "matches",
}

var listMethodTable = map[string]string{
	"append": "push", "extend": "extend", "pop": "pop",
	"sort": "sort", "reverse": "reverse", "clear": "clear",
	"insert": "insert", "remove": "remove_item", "index": "iter().position",
	"count": "iter().filter",
}

// ExprContext carries the small amount of per-call state expression
// emission needs beyond CodeGenContext: whether the current position
// requires an owned value (forcing a `.clone()` on a non-Copy variable
// read) or tolerates a borrow. Every non-Copy variable read in an owned
// position clones; tracking true last-use to elide the clone is a borrow-
// aware liveness analysis this codegen does not attempt.
type ExprContext struct {
	*CodeGenContext
	wantOwned bool
}

// Expr renders e as a Rust expression.
func (c *ExprContext) Expr(e hir.Expr) string {
	switch n := e.(type) {
	case *hir.Literal:
		return c.literal(n)
	case *hir.Var:
		return c.variable(n)
	case *hir.Binary:
		return c.binary(n)
	case *hir.Unary:
		return c.unary(n)
	case *hir.Call:
		return c.call(n)
	case *hir.MethodCall:
		return c.methodCall(n)
	case *hir.Attribute:
		return fmt.Sprintf("%s.%s", c.sub().Expr(n.Object), n.Name)
	case *hir.Subscript:
		return c.subscript(n)
	case *hir.Slice:
		return c.slice(n)
	case *hir.Container:
		return c.container(n)
	case *hir.Comp:
		return c.comprehension(n)
	case *hir.FString:
		return c.fstring(n)
	case *hir.Lambda:
		return c.lambda(n)
	case *hir.Ternary:
		return fmt.Sprintf("if %s { %s } else { %s }", c.sub().Expr(n.Cond), c.owned().Expr(n.Then), c.owned().Expr(n.Else))
	case *hir.Yield:
		if n.Value == nil {
			return "yield ()"
		}

		return fmt.Sprintf("yield %s", c.owned().Expr(n.Value))
	case *hir.YieldFrom:
		return fmt.Sprintf("for v in %s { yield v }", c.sub().Expr(n.Iter))
	case *hir.Await:
		return fmt.Sprintf("%s.await", c.sub().Expr(n.Value))
	case *hir.Starred:
		return fmt.Sprintf("..%s", c.sub().Expr(n.Value))
	case *hir.NamedExpr:
		return fmt.Sprintf("{ let %s = %s; %s }", exprTargetName(n.Target), c.owned().Expr(n.Value), exprTargetName(n.Target))
	case nil:
		return ""
	default:
		c.Bag.Add(diag.Diagnostic{
			Severity: diag.Error,
			Kind:     diag.InternalBug,
			Code:     "CODEGEN-0001",
			Message:  fmt.Sprintf("no codegen rule for expression %T", e),
			Primary:  e.Span(),
		})

		return "/* unsupported */"
	}
}

func exprTargetName(e hir.Expr) string {
	if v, ok := e.(*hir.Var); ok {
		return v.Name
	}

	return "_"
}

// sub returns a child context for a sub-expression that does not itself
// require ownership (most operand positions — binary operands read through
// a reference are fine, Rust auto-derefs for arithmetic on numeric Copy
// types and PartialEq/PartialOrd are implemented for &T too).
func (c *ExprContext) sub() *ExprContext { return &ExprContext{CodeGenContext: c.CodeGenContext, wantOwned: false} }

// owned returns a child context for a position that must hold a value the
// caller now owns (a return, a `let` initializer, a container element, a
// by-value call argument).
func (c *ExprContext) owned() *ExprContext { return &ExprContext{CodeGenContext: c.CodeGenContext, wantOwned: true} }

func (c *ExprContext) literal(n *hir.Literal) string {
	switch n.Kind {
	case hir.LitInt:
		if n.InferredType().Kind == hir.TFloat {
			return n.Raw + ".0"
		}

		return n.Raw
	case hir.LitFloat:
		if !strings.ContainsAny(n.Raw, ".eE") {
			return n.Raw + ".0"
		}

		return n.Raw
	case hir.LitString:
		return fmt.Sprintf("%s.to_string()", n.Raw)
	case hir.LitBool:
		if n.Raw == "True" {
			return "true"
		}

		return "false"
	case hir.LitNone:
		return "None"
	case hir.LitBytes:
		return fmt.Sprintf("b%s.to_vec()", n.Raw)
	default:
		return n.Raw
	}
}

func (c *ExprContext) variable(n *hir.Var) string {
	name := c.selfName(n.Name)

	if c.wantOwned && !IsCopyType(n.InferredType()) {
		return name + ".clone()"
	}

	return name
}

// binary emits an operator expression, applying Python's floor-division
// and modulo sign rules via a helper function rather than Rust's
// truncating `/`/`%` (§4.5.1).
func (c *ExprContext) binary(n *hir.Binary) string {
	l, r := c.sub().Expr(n.Left), c.sub().Expr(n.Right)

	switch n.Op {
	case "//":
		return fmt.Sprintf("py2rs_rt::floor_div(%s, %s)", l, r)
	case "%":
		return fmt.Sprintf("py2rs_rt::py_mod(%s, %s)", l, r)
	case "**":
		return fmt.Sprintf("py2rs_rt::pow(%s, %s)", l, r)
	case "and":
		return fmt.Sprintf("(%s && %s)", l, r)
	case "or":
		return fmt.Sprintf("(%s || %s)", l, r)
	case "in":
		return containsExpr(r, l, n.Right.InferredType())
	case "not in":
		return "!" + containsExpr(r, l, n.Right.InferredType())
	case "+":
		if n.Left.InferredType().Kind == hir.TStr || n.Right.InferredType().Kind == hir.TStr {
			// String concatenation renders through format! rather than a
			// native `+`: Rust's Add for String moves its left operand,
			// which would move a closure's captured outer variable out on
			// its first call and leave every later call referencing an
			// already-moved value. format! only borrows both operands
			// (Display), so a capture like S6's `prefix` stays usable
			// across every invocation with no upfront clone needed.
			return fmt.Sprintf("format!(\"{}{}\", %s, %s)", l, r)
		}

		if expr, ok := overflowExpr(l, r, n.Op, c.Options.OverflowStrategy, n.InferredType()); ok {
			return expr
		}

		return fmt.Sprintf("(%s %s %s)", l, n.Op, r)
	case "-", "*":
		if expr, ok := overflowExpr(l, r, n.Op, c.Options.OverflowStrategy, n.InferredType()); ok {
			return expr
		}

		return fmt.Sprintf("(%s %s %s)", l, n.Op, r)
	default:
		return fmt.Sprintf("(%s %s %s)", l, n.Op, r)
	}
}

// overflowExpr renders l op r as a checked_*/wrapping_* method call when
// the operand type is an integer and strategy isn't the Rust-default Panic
// (in which case the plain infix operator already does the right thing,
// per §6.2).
func overflowExpr(l, r, op string, strategy config.OverflowStrategy, t hir.Type) (string, bool) {
	if t.Kind != hir.TInt || strategy == config.Panic {
		return "", false
	}

	name := map[string]string{"+": "add", "-": "sub", "*": "mul"}[op]

	switch strategy {
	case config.Checked:
		return fmt.Sprintf("%s.checked_%s(%s).expect(\"overflow\")", l, name, r), true
	case config.Wrapping:
		return fmt.Sprintf("%s.wrapping_%s(%s)", l, name, r), true
	default:
		return "", false
	}
}

// containsExpr emits the membership test for Python's `in`/`not in` (§4.5.1):
// a HashMap has no .contains, only .contains_key, while List/Set/Str all
// expose a .contains that takes the right kind of reference already.
func containsExpr(recv, needle string, containerType hir.Type) string {
	if containerType.Kind == hir.TDict {
		return fmt.Sprintf("%s.contains_key(&%s)", recv, needle)
	}

	return fmt.Sprintf("%s.contains(&%s)", recv, needle)
}

func (c *ExprContext) unary(n *hir.Unary) string {
	switch n.Op {
	case "not":
		return fmt.Sprintf("!%s", c.sub().Expr(n.Operand))
	case "-":
		return fmt.Sprintf("-%s", c.sub().Expr(n.Operand))
	case "+":
		return c.sub().Expr(n.Operand)
	case "~":
		return fmt.Sprintf("!%s", c.sub().Expr(n.Operand))
	default:
		return c.sub().Expr(n.Operand)
	}
}

// call emits a direct function call, inserting `?` when the registry marks
// the callee fallible (rule 7) — including when the call sits nested
// inside a binary expression or another call's argument list, since the
// inserted `?` attaches to the call expression itself rather than to the
// enclosing statement.
func (c *ExprContext) call(n *hir.Call) string {
	if rt, ok := builtinCall(c, n); ok {
		return rt
	}

	// An unknown callee (import, genuinely undefined name) falls back to
	// the registry's documented "assume owned" default; a registered
	// module-local function whose declared parameter is never mutated
	// gets a borrowed argument instead of an owned clone.
	sig := c.Registry.Lookup(n.FuncName)

	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		if sig != nil && i < len(sig.Params) && !sig.Params[i].IsMutated && !IsCopyType(a.InferredType()) {
			args[i] = "&" + c.sub().Expr(a)
			continue
		}

		args[i] = c.owned().Expr(a)
	}

	out := fmt.Sprintf("%s(%s)", n.FuncName, strings.Join(args, ", "))
	if n.Fallible() {
		out += "?"
	}

	return out
}

func (c *ExprContext) methodCall(n *hir.MethodCall) string {
	objT := n.Object.InferredType()
	recv := c.sub().Expr(n.Object)

	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = c.owned().Expr(a)
	}

	switch objT.Kind {
	case hir.TStr:
		if rust, ok := strMethodTable[n.Method]; ok {
			return fmt.Sprintf("%s.%s(%s)", recv, rust, strings.Join(args, ", "))
		}
	case hir.TList, hir.TSet, hir.TFrozenSet:
		if rust, ok := listMethodTable[n.Method]; ok {
			return fmt.Sprintf("%s.%s(%s)", recv, rust, strings.Join(args, ", "))
		}
	case hir.TDict:
		switch n.Method {
		case "get":
			return fmt.Sprintf("%s.get(&%s).cloned()", recv, args[0])
		case "keys":
			return fmt.Sprintf("%s.keys()", recv)
		case "values":
			return fmt.Sprintf("%s.values()", recv)
		case "items":
			return fmt.Sprintf("%s.iter()", recv)
		case "pop":
			return fmt.Sprintf("%s.remove(&%s)", recv, args[0])
		case "setdefault":
			return fmt.Sprintf("%s.entry(%s).or_insert(%s)", recv, args[0], args[1])
		case "update":
			return fmt.Sprintf("%s.extend(%s)", recv, args[0])
		}
	}

	out := fmt.Sprintf("%s.%s(%s)", recv, n.Method, strings.Join(args, ", "))
	if n.Fallible() {
		out += "?"
	}

	return out
}

// subscript emits indexing, going through a runtime helper whenever
// mayBeNegative cannot rule out a negative index (a negative literal, a
// negation, a variable, or any other non-literal expression; Python allows
// negative indices, Rust's native indexing does not), and bounds-checked
// `[]` otherwise.
func (c *ExprContext) subscript(n *hir.Subscript) string {
	obj := c.sub().Expr(n.Object)
	idx := c.sub().Expr(n.Index)

	if mayBeNegative(n.Index) {
		return fmt.Sprintf("py2rs_rt::index(&%s, %s)", obj, idx)
	}

	return fmt.Sprintf("%s[%s as usize]", obj, idx)
}

func mayBeNegative(e hir.Expr) bool {
	switch n := e.(type) {
	case *hir.Literal:
		return n.Kind == hir.LitInt && strings.HasPrefix(n.Raw, "-")
	case *hir.Unary:
		return n.Op == "-"
	case *hir.Var:
		return true
	default:
		return true
	}
}

// slice emits Python slicing, delegating to a runtime helper whenever a
// stride is present (Rust's native range syntax has no stride) and to
// native `[a..b]` ranges for the plain start/stop case.
func (c *ExprContext) slice(n *hir.Slice) string {
	obj := c.sub().Expr(n.Object)

	if n.Step != nil {
		start, stop, step := "None", "None", c.sub().Expr(n.Step)
		if n.Start != nil {
			start = fmt.Sprintf("Some(%s)", c.sub().Expr(n.Start))
		}

		if n.Stop != nil {
			stop = fmt.Sprintf("Some(%s)", c.sub().Expr(n.Stop))
		}

		return fmt.Sprintf("py2rs_rt::slice_stride(&%s, %s, %s, %s)", obj, start, stop, step)
	}

	switch {
	case n.Start != nil && n.Stop != nil:
		return fmt.Sprintf("%s[%s as usize..%s as usize]", obj, c.sub().Expr(n.Start), c.sub().Expr(n.Stop))
	case n.Start != nil:
		return fmt.Sprintf("%s[%s as usize..]", obj, c.sub().Expr(n.Start))
	case n.Stop != nil:
		return fmt.Sprintf("%s[..%s as usize]", obj, c.sub().Expr(n.Stop))
	default:
		return fmt.Sprintf("%s[..]", obj)
	}
}

func (c *ExprContext) container(n *hir.Container) string {
	switch n.Kind {
	case hir.ContainerList:
		elts := make([]string, len(n.Elts))
		for i, el := range n.Elts {
			elts[i] = c.owned().Expr(el)
		}

		return fmt.Sprintf("vec![%s]", strings.Join(elts, ", "))
	case hir.ContainerTuple:
		elts := make([]string, len(n.Elts))
		for i, el := range n.Elts {
			elts[i] = c.owned().Expr(el)
		}

		return fmt.Sprintf("(%s)", strings.Join(elts, ", "))
	case hir.ContainerSet, hir.ContainerFrozenSet:
		elts := make([]string, len(n.Elts))
		for i, el := range n.Elts {
			elts[i] = c.owned().Expr(el)
		}

		return fmt.Sprintf("[%s].into_iter().collect::<std::collections::HashSet<_>>()", strings.Join(elts, ", "))
	case hir.ContainerDict:
		pairs := make([]string, len(n.Elts))
		for i := range n.Elts {
			pairs[i] = fmt.Sprintf("(%s, %s)", c.owned().Expr(n.Elts[i]), c.owned().Expr(n.DictValues[i]))
		}

		return fmt.Sprintf("[%s].into_iter().collect::<std::collections::HashMap<_, _>>()", strings.Join(pairs, ", "))
	default:
		return "/* unsupported container */"
	}
}

// comprehension emits a list/dict/set comprehension or generator expression
// as an iterator chain (§4.5.3): each generator clause becomes a
// `.flat_map`/`.filter` stage, with the innermost `.map` producing the
// element (or key/value pair).
func (c *ExprContext) comprehension(n *hir.Comp) string {
	// bound names the outer clauses' targets threaded into every nested
	// closure so far, e.g. "x" after the first clause, "(x, y)" after the
	// second — each flat_map closure takes the tuple produced by the clause
	// before it and re-emits it alongside the new target.
	bound := exprTargetName(n.Clauses[0].Target)
	chain := c.sub().Expr(n.Clauses[0].Iter) + ".into_iter()"

	for _, f := range n.Clauses[0].Filters {
		chain = fmt.Sprintf("%s.filter(|%s| %s)", chain, bound, c.sub().Expr(f))
	}

	for _, cl := range n.Clauses[1:] {
		target := exprTargetName(cl.Target)
		chain = fmt.Sprintf("%s.flat_map(move |%s| %s.clone().into_iter().map(move |%s| (%s, %s)))",
			chain, bound, c.sub().Expr(cl.Iter), target, bound, target)
		bound = fmt.Sprintf("(%s, %s)", bound, target)

		for _, f := range cl.Filters {
			chain = fmt.Sprintf("%s.filter(|%s| %s)", chain, bound, c.sub().Expr(f))
		}
	}

	switch n.Kind {
	case hir.CompDict:
		return fmt.Sprintf("%s.map(|%s| (%s, %s)).collect::<std::collections::HashMap<_, _>>()",
			chain, bound, c.owned().Expr(n.Key), c.owned().Expr(n.Elt))
	case hir.CompSet:
		return fmt.Sprintf("%s.map(|%s| %s).collect::<std::collections::HashSet<_>>()", chain, bound, c.owned().Expr(n.Elt))
	case hir.CompGenerator:
		return fmt.Sprintf("%s.map(|%s| %s)", chain, bound, c.owned().Expr(n.Elt))
	default:
		return fmt.Sprintf("%s.map(|%s| %s).collect::<Vec<_>>()", chain, bound, c.owned().Expr(n.Elt))
	}
}

// fstring emits a format! call, selecting `{}` (Display) for types with a
// mapped Display impl and `{:?}` (Debug) for everything else — the same
// Display-vs-Debug split §4.5.3 describes.
func (c *ExprContext) fstring(n *hir.FString) string {
	var fmtStr strings.Builder

	var args []string

	for _, p := range n.Parts {
		if p.Expr == nil {
			fmtStr.WriteString(escapeFormatLiteral(p.Literal))
			continue
		}

		if spec := formatSpecToRust(p.FormatSpec); spec != "" {
			fmtStr.WriteString("{:" + spec + "}")
		} else if usesDisplay(p.Expr.InferredType()) {
			fmtStr.WriteString("{}")
		} else {
			fmtStr.WriteString("{:?}")
		}

		args = append(args, c.sub().Expr(p.Expr))
	}

	full := append([]string{fmt.Sprintf("%q", fmtStr.String())}, args...)

	return fmt.Sprintf("format!(%s)", strings.Join(full, ", "))
}

// formatSpecRe parses Python's format spec mini-language:
// [[fill]align][sign][#][0][width][,][.precision][type]
var formatSpecRe = regexp.MustCompile(`^(?:(.)?([<>^=]))?([+\- ])?(#)?(0)?(\d+)?,?(?:\.(\d+))?([bcdeEfFgGnosxX%])?$`)

// formatSpecToRust translates a Python format spec to Rust's format-spec
// grammar (§4.5.1): fill/align, sign, zero-pad, width, and precision carry
// over directly; a type char maps to Rust's equivalent where one exists
// (e/E/x/X/o/b) and is dropped otherwise (f/F/d/s/g/n/c/%), leaving Display's
// own rendering — Rust has no thousands-separator flag, so a bare `,` is
// dropped rather than rejected. An empty or unrecognized spec yields "",
// telling the caller to fall back to the untyped {}/{:?} choice.
func formatSpecToRust(spec string) string {
	if spec == "" {
		return ""
	}

	m := formatSpecRe.FindStringSubmatch(spec)
	if m == nil {
		return ""
	}

	fill, align, sign, alt, zero, width, prec, typ := m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8]

	var b strings.Builder

	if align != "" {
		if fill != "" {
			b.WriteString(fill)
		}

		b.WriteString(align)
	}

	if sign == "+" {
		b.WriteString("+")
	}

	if alt == "#" {
		b.WriteString("#")
	}

	if zero == "0" {
		b.WriteString("0")
	}

	b.WriteString(width)

	if prec != "" {
		b.WriteString("." + prec)
	}

	switch typ {
	case "e", "E", "x", "X", "o", "b":
		b.WriteString(typ)
	}

	return b.String()
}

func escapeFormatLiteral(s string) string {
	return strings.NewReplacer("{", "{{", "}", "}}").Replace(s)
}

func usesDisplay(t hir.Type) bool {
	switch t.Kind {
	case hir.TInt, hir.TFloat, hir.TBool, hir.TStr, hir.TClass:
		return true
	default:
		return false
	}
}

func (c *ExprContext) lambda(n *hir.Lambda) string {
	params := make([]string, len(n.Params))
	for i, p := range n.Params {
		params[i] = p.Name
	}

	return fmt.Sprintf("|%s| %s", strings.Join(params, ", "), c.owned().Expr(n.Body))
}
