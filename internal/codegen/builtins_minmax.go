package codegen

import (
	"fmt"

	"github.com/py2rs-dev/py2rs/internal/hir"
)

// min/max need an adapter because Python's min([]) raises ValueError while
// Rust's Iterator::min()/max() return None; the single-iterable-argument
// call form routes through a runtime helper that raises the equivalent
// error, while the two-or-more-argument form (`min(a, b, ...)`, never
// empty) compiles to a plain chained comparison with no fallible wrapper.
func minMaxCall(c *ExprContext, n *hir.Call) (string, bool) {
	if n.FuncName != "min" && n.FuncName != "max" {
		return "", false
	}

	fn := n.FuncName

	if len(n.Args) == 1 {
		arg := c.owned().Expr(n.Args[0])
		return fmt.Sprintf("py2rs_rt::%s_iter(%s)?", fn, arg), true
	}

	if len(n.Args) == 0 {
		return fmt.Sprintf("py2rs_rt::%s_iter(Vec::new())?", fn), true
	}

	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = c.owned().Expr(a)
	}

	expr := args[0]
	for _, a := range args[1:] {
		expr = fmt.Sprintf("std::cmp::%s(%s, %s)", fn, expr, a)
	}

	return expr, true
}
