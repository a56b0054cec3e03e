package codegen

import (
	"fmt"
	"strings"

	"github.com/py2rs-dev/py2rs/internal/hir"
)

// FuncSignature renders a function's Rust signature text, not including
// the trailing ` {` or body (§4.5.3): parameters borrow unless the
// analyzer determined they're mutated or consumed, and a fallible body
// wraps the declared return type in Result.
func (c *CodeGenContext) FuncSignature(fn *hir.Function, skipFirst bool) string {
	c.currentFunc = fn.Name

	params := fn.Params
	if skipFirst && len(params) > 0 {
		params = params[1:]
	}

	parts := make([]string, 0, len(params)+1)

	if skipFirst {
		self := "&self"
		if fn.SelfMutable {
			self = "&mut self"
		}

		parts = append(parts, self)
	}

	for _, p := range params {
		parts = append(parts, c.paramText(p))
	}

	ret := RustType(fn.ReturnType)
	if fn.Properties.CanFail {
		ret = fmt.Sprintf("Result<%s, py2rs_rt::PyError>", ret)
	}

	return fmt.Sprintf("fn %s(%s) -> %s", fn.Name, strings.Join(parts, ", "), ret)
}

func (c *CodeGenContext) paramText(p hir.Param) string {
	if p.IsMutated && (p.DeclaredType.Kind == hir.TList || p.DeclaredType.Kind == hir.TDict || p.DeclaredType.Kind == hir.TSet) {
		return fmt.Sprintf("%s: &mut %s", p.Name, RustType(p.DeclaredType))
	}

	typ := RustType(p.DeclaredType)
	if !p.IsMutated {
		typ = BorrowedParamType(p.DeclaredType)
	}

	return fmt.Sprintf("%s: %s", p.Name, typ)
}

// takesSelf reports whether fn binds an implicit receiver: true for
// ordinary instance methods, false for the constructor (renamed "new" by
// the class emitter), static methods, and classmethods.
func takesSelf(fn *hir.Function) bool {
	return fn.IsMethod && !fn.IsStatic && !fn.IsClassMethod && fn.Name != "new"
}

// Function emits one function or method: doc comment, signature, body,
// and closing brace.
func (c *CodeGenContext) Function(w *RustWriter, fn *hir.Function) {
	if fn.Docstring != "" && c.Options.EmitDocstrings {
		for _, line := range strings.Split(strings.TrimSpace(fn.Docstring), "\n") {
			w.Line("/// %s", strings.TrimSpace(line))
		}
	}

	w.OpenBlock("pub %s", c.FuncSignature(fn, takesSelf(fn)))

	se := &StmtEmitter{CodeGenContext: c, w: w}
	se.Block(fn.Body)

	w.CloseBlock()
}
