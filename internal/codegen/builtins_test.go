package codegen

import (
	"testing"

	"github.com/py2rs-dev/py2rs/internal/diag"
	"github.com/py2rs-dev/py2rs/internal/hir"
)

func builtin(t *testing.T, name string, args ...hir.Expr) (string, bool) {
	t.Helper()

	c := &ExprContext{CodeGenContext: &CodeGenContext{Bag: &diag.Bag{}}}
	return builtinCall(c, &hir.Call{FuncName: name, Args: args})
}

func TestBuiltinLenRendersLenAsI64(t *testing.T) {
	out, ok := builtin(t, "len", &hir.Var{Name: "items"})
	if !ok || out != "items.len() as i64" {
		t.Fatalf("expected items.len() as i64, got %q ok=%v", out, ok)
	}
}

func TestBuiltinIntRendersFallibleConversionWithTryOperator(t *testing.T) {
	out, ok := builtin(t, "int", &hir.Var{Name: "s"})
	if !ok || out != "py2rs_rt::to_int(s)?" {
		t.Fatalf("expected a fallible to_int conversion, got %q ok=%v", out, ok)
	}
}

func TestBuiltinRangeArityDispatch(t *testing.T) {
	one, _ := builtin(t, "range", &hir.Literal{Kind: hir.LitInt, Raw: "5"})
	if one != "(0..5)" {
		t.Fatalf("expected a 1-arg range to start at 0, got %q", one)
	}

	two, _ := builtin(t, "range", &hir.Literal{Kind: hir.LitInt, Raw: "1"}, &hir.Literal{Kind: hir.LitInt, Raw: "5"})
	if two != "(1..5)" {
		t.Fatalf("expected a 2-arg range, got %q", two)
	}

	three, _ := builtin(t, "range", &hir.Literal{Kind: hir.LitInt, Raw: "0"}, &hir.Literal{Kind: hir.LitInt, Raw: "10"}, &hir.Literal{Kind: hir.LitInt, Raw: "2"})
	if three != "py2rs_rt::stepped_range(0, 10, 2)" {
		t.Fatalf("expected a 3-arg range to use stepped_range, got %q", three)
	}
}

func TestBuiltinZipChainsMultipleIterables(t *testing.T) {
	out, ok := builtin(t, "zip", &hir.Var{Name: "a"}, &hir.Var{Name: "b"}, &hir.Var{Name: "c"})
	if !ok {
		t.Fatal("expected zip to be a recognized builtin")
	}

	want := "a.into_iter().zip(b.into_iter()).zip(c.into_iter())"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestBuiltinPrintWithNoArgsUsesBarePrintln(t *testing.T) {
	out, ok := builtin(t, "print")
	if !ok || out != "println!()" {
		t.Fatalf("expected a bare println!(), got %q ok=%v", out, ok)
	}
}

func TestBuiltinUnrecognizedNameReportsNotOk(t *testing.T) {
	if _, ok := builtin(t, "not_a_builtin"); ok {
		t.Fatal("expected an unrecognized builtin name to report ok=false")
	}
}
