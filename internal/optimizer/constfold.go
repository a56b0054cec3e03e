package optimizer

import (
	"fmt"
	"strconv"

	"github.com/py2rs-dev/py2rs/internal/hir"
)

// foldConstants walks body, replacing binary/unary expressions over literal
// operands with their computed literal result, plus the additive/
// multiplicative identity simplifications (x+0, 0+x, x*1, 1*x, and x*0, 0*x
// when x has no side effect).
// Division by a literal zero is deliberately left unfolded: Python raises
// ZeroDivisionError there, and the fold would silently turn a runtime error
// into compile-time behavior the rest of the pipeline never asked for.
func foldConstants(body []hir.Stmt) ([]hir.Stmt, int) {
	count := 0

	var foldExpr func(hir.Expr) hir.Expr

	foldExpr = func(e hir.Expr) hir.Expr {
		if e == nil {
			return nil
		}

		switch n := e.(type) {
		case *hir.Binary:
			n.Left = foldExpr(n.Left)
			n.Right = foldExpr(n.Right)

			if folded := tryFoldBinary(n); folded != nil {
				count++
				return folded
			}

			if simplified := trySimplifyIdentity(n); simplified != nil {
				count++
				return simplified
			}

			return n
		case *hir.Unary:
			n.Operand = foldExpr(n.Operand)

			if folded := tryFoldUnary(n); folded != nil {
				count++
				return folded
			}

			return n
		case *hir.Ternary:
			n.Cond = foldExpr(n.Cond)
			n.Then = foldExpr(n.Then)
			n.Else = foldExpr(n.Else)

			if lit, ok := n.Cond.(*hir.Literal); ok && lit.Kind == hir.LitBool {
				count++
				if lit.Raw == "True" {
					return n.Then
				}

				return n.Else
			}

			return n
		case *hir.Call:
			for i, a := range n.Args {
				n.Args[i] = foldExpr(a)
			}

			for k, v := range n.Kwargs {
				n.Kwargs[k] = foldExpr(v)
			}

			return n
		case *hir.MethodCall:
			n.Object = foldExpr(n.Object)

			for i, a := range n.Args {
				n.Args[i] = foldExpr(a)
			}

			return n
		case *hir.Attribute:
			n.Object = foldExpr(n.Object)
			return n
		case *hir.Subscript:
			n.Object = foldExpr(n.Object)
			n.Index = foldExpr(n.Index)

			return n
		case *hir.Slice:
			n.Object = foldExpr(n.Object)
			n.Start = foldExpr(n.Start)
			n.Stop = foldExpr(n.Stop)
			n.Step = foldExpr(n.Step)

			return n
		case *hir.Container:
			for i, el := range n.Elts {
				n.Elts[i] = foldExpr(el)
			}

			for i, v := range n.DictValues {
				n.DictValues[i] = foldExpr(v)
			}

			return n
		case *hir.Starred:
			n.Value = foldExpr(n.Value)
			return n
		}

		return e
	}

	var foldStmts func([]hir.Stmt) []hir.Stmt

	foldStmt := func(s hir.Stmt) hir.Stmt {
		switch n := s.(type) {
		case *hir.Assign:
			n.Value = foldExpr(n.Value)
			if n.Target.Kind == hir.TargetSubscript {
				n.Target.Object = foldExpr(n.Target.Object)
				n.Target.Index = foldExpr(n.Target.Index)
			}
		case *hir.AugAssign:
			n.Value = foldExpr(n.Value)
		case *hir.If:
			n.Condition = foldExpr(n.Condition)
			n.ThenBody = foldStmts(n.ThenBody)
			n.ElseBody = foldStmts(n.ElseBody)
		case *hir.While:
			n.Condition = foldExpr(n.Condition)
			n.Body = foldStmts(n.Body)
		case *hir.For:
			n.Iter = foldExpr(n.Iter)
			n.Body = foldStmts(n.Body)
		case *hir.Return:
			n.Value = foldExpr(n.Value)
		case *hir.Raise:
			n.Value = foldExpr(n.Value)
		case *hir.Try:
			n.Body = foldStmts(n.Body)
			n.Else = foldStmts(n.Else)
			n.Finally = foldStmts(n.Finally)

			for i := range n.Except {
				n.Except[i].Body = foldStmts(n.Except[i].Body)
			}
		case *hir.With:
			n.Context = foldExpr(n.Context)
			n.Body = foldStmts(n.Body)
		case *hir.ExprStmt:
			n.Value = foldExpr(n.Value)
		}

		return s
	}

	foldStmts = func(ss []hir.Stmt) []hir.Stmt {
		for i, s := range ss {
			ss[i] = foldStmt(s)
		}

		return ss
	}

	return foldStmts(body), count
}

func tryFoldBinary(n *hir.Binary) *hir.Literal {
	left, lok := n.Left.(*hir.Literal)
	right, rok := n.Right.(*hir.Literal)

	if !lok || !rok {
		return nil
	}

	if left.Kind == hir.LitInt && right.Kind == hir.LitInt {
		return foldIntBinary(left, n.Op, right)
	}

	if left.Kind == hir.LitFloat && right.Kind == hir.LitFloat {
		return foldFloatBinary(left, n.Op, right)
	}

	if left.Kind == hir.LitString && right.Kind == hir.LitString && n.Op == "+" {
		l, r := unquote(left.Raw), unquote(right.Raw)
		return &hir.Literal{Kind: hir.LitString, Raw: quote(l + r)}
	}

	if left.Kind == hir.LitBool && right.Kind == hir.LitBool {
		return foldBoolBinary(left, n.Op, right)
	}

	return nil
}

func foldIntBinary(left *hir.Literal, op string, right *hir.Literal) *hir.Literal {
	l, err1 := strconv.ParseInt(left.Raw, 10, 64)
	r, err2 := strconv.ParseInt(right.Raw, 10, 64)

	if err1 != nil || err2 != nil {
		return nil
	}

	switch op {
	case "+":
		return intLit(l + r)
	case "-":
		return intLit(l - r)
	case "*":
		return intLit(l * r)
	case "//":
		if r == 0 {
			return nil
		}

		return intLit(floorDiv(l, r))
	case "%":
		if r == 0 {
			return nil
		}

		return intLit(pyMod(l, r))
	case "==":
		return boolLit(l == r)
	case "!=":
		return boolLit(l != r)
	case "<":
		return boolLit(l < r)
	case "<=":
		return boolLit(l <= r)
	case ">":
		return boolLit(l > r)
	case ">=":
		return boolLit(l >= r)
	}

	return nil
}

func foldFloatBinary(left *hir.Literal, op string, right *hir.Literal) *hir.Literal {
	l, err1 := strconv.ParseFloat(left.Raw, 64)
	r, err2 := strconv.ParseFloat(right.Raw, 64)

	if err1 != nil || err2 != nil {
		return nil
	}

	switch op {
	case "+":
		return floatLit(l + r)
	case "-":
		return floatLit(l - r)
	case "*":
		return floatLit(l * r)
	case "/":
		if r == 0 {
			return nil
		}

		return floatLit(l / r)
	case "==":
		return boolLit(l == r)
	case "!=":
		return boolLit(l != r)
	case "<":
		return boolLit(l < r)
	case "<=":
		return boolLit(l <= r)
	case ">":
		return boolLit(l > r)
	case ">=":
		return boolLit(l >= r)
	}

	return nil
}

func foldBoolBinary(left *hir.Literal, op string, right *hir.Literal) *hir.Literal {
	l, r := left.Raw == "True", right.Raw == "True"

	switch op {
	case "and":
		return boolLit(l && r)
	case "or":
		return boolLit(l || r)
	case "==":
		return boolLit(l == r)
	case "!=":
		return boolLit(l != r)
	}

	return nil
}

// trySimplifyIdentity implements the additive/multiplicative identity
// rewrites when only one side is a numeric literal: expr+0 -> expr,
// 0+expr -> expr, expr*1 -> expr, 1*expr -> expr, expr*0/0*expr -> 0 when
// expr is side-effect free (the literal's own kind, Int or Float, is
// preserved so the result stays type-consistent with its sibling).
func trySimplifyIdentity(n *hir.Binary) hir.Expr {
	left, lok := n.Left.(*hir.Literal)
	right, rok := n.Right.(*hir.Literal)

	switch n.Op {
	case "+":
		if lok && isZero(left) {
			return n.Right
		}

		if rok && isZero(right) {
			return n.Left
		}
	case "-":
		if rok && isZero(right) {
			return n.Left
		}
	case "*":
		if lok && isOne(left) {
			return n.Right
		}

		if rok && isOne(right) {
			return n.Left
		}

		if lok && isZero(left) && isSideEffectFree(n.Right) {
			return left
		}

		if rok && isZero(right) && isSideEffectFree(n.Left) {
			return right
		}
	}

	return nil
}

func tryFoldUnary(n *hir.Unary) *hir.Literal {
	lit, ok := n.Operand.(*hir.Literal)
	if !ok {
		return nil
	}

	switch n.Op {
	case "-":
		if lit.Kind == hir.LitInt {
			v, err := strconv.ParseInt(lit.Raw, 10, 64)
			if err != nil {
				return nil
			}

			return intLit(-v)
		}

		if lit.Kind == hir.LitFloat {
			v, err := strconv.ParseFloat(lit.Raw, 64)
			if err != nil {
				return nil
			}

			return floatLit(-v)
		}
	case "not":
		if lit.Kind == hir.LitBool {
			return boolLit(lit.Raw != "True")
		}
	}

	return nil
}

func isZero(lit *hir.Literal) bool {
	switch lit.Kind {
	case hir.LitInt:
		v, err := strconv.ParseInt(lit.Raw, 10, 64)
		return err == nil && v == 0
	case hir.LitFloat:
		v, err := strconv.ParseFloat(lit.Raw, 64)
		return err == nil && v == 0
	}

	return false
}

func isOne(lit *hir.Literal) bool {
	switch lit.Kind {
	case hir.LitInt:
		v, err := strconv.ParseInt(lit.Raw, 10, 64)
		return err == nil && v == 1
	case hir.LitFloat:
		v, err := strconv.ParseFloat(lit.Raw, 64)
		return err == nil && v == 1
	}

	return false
}

func intLit(v int64) *hir.Literal  { return &hir.Literal{Kind: hir.LitInt, Raw: strconv.FormatInt(v, 10)} }
func floatLit(v float64) *hir.Literal {
	return &hir.Literal{Kind: hir.LitFloat, Raw: strconv.FormatFloat(v, 'g', -1, 64)}
}
func boolLit(v bool) *hir.Literal {
	if v {
		return &hir.Literal{Kind: hir.LitBool, Raw: "True"}
	}

	return &hir.Literal{Kind: hir.LitBool, Raw: "False"}
}

// floorDiv and pyMod implement Python's floor-division/modulo semantics
// (result takes the sign of the divisor), distinct from Go's truncating `/`
// and `%` — the same rule codegen's binary-op emission applies at runtime
// for the non-constant case.
func floorDiv(l, r int64) int64 {
	q := l / r
	if (l%r != 0) && ((l < 0) != (r < 0)) {
		q--
	}

	return q
}

func pyMod(l, r int64) int64 {
	m := l % r
	if m != 0 && ((m < 0) != (r < 0)) {
		m += r
	}

	return m
}

func unquote(raw string) string {
	if len(raw) >= 2 {
		return raw[1 : len(raw)-1]
	}

	return raw
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}
