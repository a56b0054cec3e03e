package codegen

import (
	"fmt"
	"strings"

	"github.com/py2rs-dev/py2rs/internal/hir"
)

// builtinCall emits the curated builtin-function mapping table (§4.5.4);
// a builtin not listed here falls through to a plain function call in the
// caller, which the analyzer/inferencer stages already restrict to the
// supported subset.
func builtinCall(c *ExprContext, n *hir.Call) (string, bool) {
	if rt, ok := minMaxCall(c, n); ok {
		return rt, ok
	}

	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = c.sub().Expr(a)
	}

	switch n.FuncName {
	case "len":
		return fmt.Sprintf("%s.len() as i64", args[0]), true
	case "str":
		if len(args) == 0 {
			return `String::new()`, true
		}

		return fmt.Sprintf("%s.to_string()", args[0]), true
	case "int":
		return fmt.Sprintf("py2rs_rt::to_int(%s)?", args[0]), true
	case "float":
		return fmt.Sprintf("py2rs_rt::to_float(%s)?", args[0]), true
	case "bool":
		return fmt.Sprintf("py2rs_rt::truthy(&%s)", args[0]), true
	case "list":
		if len(args) == 0 {
			return "Vec::new()", true
		}

		return fmt.Sprintf("%s.into_iter().collect::<Vec<_>>()", args[0]), true
	case "dict":
		return "std::collections::HashMap::new()", true
	case "set":
		if len(args) == 0 {
			return "std::collections::HashSet::new()", true
		}

		return fmt.Sprintf("%s.into_iter().collect::<std::collections::HashSet<_>>()", args[0]), true
	case "sorted":
		return fmt.Sprintf("{ let mut __v: Vec<_> = %s.clone().into_iter().collect(); __v.sort_by(|a, b| a.partial_cmp(b).unwrap()); __v }", args[0]), true
	case "sum":
		return fmt.Sprintf("%s.into_iter().sum::<i64>()", args[0]), true
	case "abs":
		return fmt.Sprintf("%s.abs()", args[0]), true
	case "range":
		return rangeCall(args), true
	case "enumerate":
		return fmt.Sprintf("%s.into_iter().enumerate()", args[0]), true
	case "zip":
		return zipCall(args), true
	case "reversed":
		return fmt.Sprintf("%s.into_iter().rev()", args[0]), true
	case "isinstance":
		// Always emitted as a runtime check: no earlier stage folds an
		// isinstance call, even when the operand's type is already known.
		return fmt.Sprintf("py2rs_rt::isinstance(&%s, %q)", args[0], typeNameArg(n.Args)), true
	case "print":
		return printCall(args), true
	}

	return "", false
}

func rangeCall(args []string) string {
	switch len(args) {
	case 1:
		return fmt.Sprintf("(0..%s)", args[0])
	case 2:
		return fmt.Sprintf("(%s..%s)", args[0], args[1])
	case 3:
		return fmt.Sprintf("py2rs_rt::stepped_range(%s, %s, %s)", args[0], args[1], args[2])
	default:
		return "(0..0)"
	}
}

func zipCall(args []string) string {
	if len(args) == 0 {
		return "std::iter::empty()"
	}

	expr := args[0] + ".into_iter()"
	for _, a := range args[1:] {
		expr = fmt.Sprintf("%s.zip(%s.into_iter())", expr, a)
	}

	return expr
}

func printCall(args []string) string {
	if len(args) == 0 {
		return `println!()`
	}

	parts := make([]string, len(args))
	for i := range args {
		parts[i] = "{}"
	}

	quoted := fmt.Sprintf("%q", strings.Join(parts, " "))

	return fmt.Sprintf("println!(%s, %s)", quoted, strings.Join(args, ", "))
}

func typeNameArg(args []hir.Expr) string {
	if len(args) < 2 {
		return ""
	}

	if v, ok := args[1].(*hir.Var); ok {
		return v.Name
	}

	return ""
}
