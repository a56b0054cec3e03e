package codegen

import (
	"strings"
	"testing"

	"github.com/py2rs-dev/py2rs/internal/diag"
	"github.com/py2rs-dev/py2rs/internal/hir"
)

func exprCtx() *ExprContext {
	return &ExprContext{CodeGenContext: &CodeGenContext{Bag: &diag.Bag{}}}
}

// Dict membership tests have no .contains method in Rust, only .contains_key
// — List/Set membership keeps using .contains.
func TestInOperatorDispatchesOnReceiverKind(t *testing.T) {
	c := exprCtx()

	memo := &hir.Var{Name: "memo"}
	memo.SetInferredType(hir.Dict(hir.Int(), hir.Int()))

	got := c.binary(&hir.Binary{Op: "in", Left: &hir.Var{Name: "n"}, Right: memo})
	if got != "memo.contains_key(&n)" {
		t.Fatalf("expected a Dict receiver to use contains_key, got %q", got)
	}

	xs := &hir.Var{Name: "xs"}
	xs.SetInferredType(hir.List(hir.Int()))

	got = c.binary(&hir.Binary{Op: "in", Left: &hir.Var{Name: "n"}, Right: xs})
	if got != "xs.contains(&n)" {
		t.Fatalf("expected a List receiver to use contains, got %q", got)
	}

	got = c.binary(&hir.Binary{Op: "not in", Left: &hir.Var{Name: "n"}, Right: memo})
	if got != "!memo.contains_key(&n)" {
		t.Fatalf("expected not in to negate the membership test, got %q", got)
	}
}

// A single-clause comprehension's filter and map can both reference the
// clause's bound variable.
func TestComprehensionSingleClauseBindsTarget(t *testing.T) {
	c := exprCtx()

	n := &hir.Comp{
		Elt: &hir.Binary{Op: "*", Left: &hir.Var{Name: "x"}, Right: &hir.Literal{Kind: hir.LitInt, Raw: "2"}},
		Clauses: []hir.CompClause{
			{
				Target:  &hir.Var{Name: "x"},
				Iter:    &hir.Var{Name: "xs"},
				Filters: []hir.Expr{&hir.Binary{Op: ">", Left: &hir.Var{Name: "x"}, Right: &hir.Literal{Kind: hir.LitInt, Raw: "0"}}},
			},
		},
	}

	got := c.comprehension(n)
	want := "xs.into_iter().filter(|x| (x > 0)).map(|x| (x * 2)).collect::<Vec<_>>()"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

// A multi-clause comprehension threads the outer clause's target through
// the flat_map closure so later clauses (filters and the element
// expression) can still reference it — §4.5.1's flat-map composition rule.
func TestComprehensionMultiClauseThreadsOuterTarget(t *testing.T) {
	c := exprCtx()

	n := &hir.Comp{
		Elt: &hir.Binary{Op: "+", Left: &hir.Var{Name: "x"}, Right: &hir.Var{Name: "y"}},
		Clauses: []hir.CompClause{
			{Target: &hir.Var{Name: "x"}, Iter: &hir.Var{Name: "xs"}},
			{Target: &hir.Var{Name: "y"}, Iter: &hir.Var{Name: "ys"}},
		},
	}

	got := c.comprehension(n)
	want := "xs.into_iter().flat_map(move |x| ys.clone().into_iter().map(move |y| (x, y))).map(|(x, y)| (x + y)).collect::<Vec<_>>()"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

// A multi-clause comprehension's second-clause filter can reference the
// first clause's bound variable, since it runs against the threaded tuple.
func TestComprehensionMultiClauseFilterSeesOuterTarget(t *testing.T) {
	c := exprCtx()

	n := &hir.Comp{
		Elt: &hir.Var{Name: "x"},
		Clauses: []hir.CompClause{
			{Target: &hir.Var{Name: "x"}, Iter: &hir.Var{Name: "xs"}},
			{
				Target:  &hir.Var{Name: "y"},
				Iter:    &hir.Var{Name: "ys"},
				Filters: []hir.Expr{&hir.Binary{Op: "!=", Left: &hir.Var{Name: "x"}, Right: &hir.Var{Name: "y"}}},
			},
		},
	}

	got := c.comprehension(n)
	if !strings.Contains(got, ".filter(|(x, y)| (x != y))") {
		t.Fatalf("expected the second clause's filter to destructure (x, y), got %q", got)
	}
}

// A .2f format spec on an f-string interpolation translates to Rust's
// {:.2} precision syntax instead of being discarded.
func TestFStringTranslatesFormatSpec(t *testing.T) {
	c := exprCtx()

	price := &hir.Var{Name: "price"}
	price.SetInferredType(hir.Float())

	n := &hir.FString{Parts: []hir.FStringPart{
		{Literal: "total: "},
		{Expr: price, FormatSpec: ".2f"},
	}}

	got := c.fstring(n)
	want := `format!("total: {:.2}", price)`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

// Width and alignment specs (e.g. right-aligned in a field of 10) also
// translate, independent of precision.
func TestFStringTranslatesWidthAndAlignSpec(t *testing.T) {
	c := exprCtx()

	name := &hir.Var{Name: "name"}
	name.SetInferredType(hir.Str())

	n := &hir.FString{Parts: []hir.FStringPart{{Expr: name, FormatSpec: ">10"}}}

	got := c.fstring(n)
	want := `format!("{:>10}", name)`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

// An empty or absent format spec falls back to the existing Display/Debug
// choice rather than emitting a bogus {:} spec.
func TestFStringEmptySpecFallsBackToDisplayChoice(t *testing.T) {
	c := exprCtx()

	n := &hir.Var{Name: "count"}
	n.SetInferredType(hir.Int())

	got := c.fstring(&hir.FString{Parts: []hir.FStringPart{{Expr: n}}})
	if got != `format!("{}", count)` {
		t.Fatalf("expected the plain Display fallback, got %q", got)
	}
}
