package codegen

import (
	"strings"
	"testing"

	"github.com/py2rs-dev/py2rs/internal/diag"
	"github.com/py2rs-dev/py2rs/internal/hir"
)

func varRef(name string, t hir.Type) *hir.Var {
	v := &hir.Var{Name: name}
	v.SetInferredType(t)

	return v
}

// fibGenFn builds the HIR for the spec's own canonical generator example:
//
//	def fib_gen():
//	    a, b = 0, 1
//	    while True:
//	        yield a
//	        a, b = b, a + b
func fibGenFn() *hir.Function {
	return &hir.Function{
		Name:       "fib_gen",
		ReturnType: hir.Iterator(hir.Int()),
		Properties: hir.FunctionProperties{IsGenerator: true},
		Body: []hir.Stmt{
			&hir.Assign{
				Target: hir.AssignTarget{Kind: hir.TargetTuple, Elts: []hir.AssignTarget{
					{Kind: hir.TargetSymbol, Name: "a"},
					{Kind: hir.TargetSymbol, Name: "b"},
				}},
				Value: &hir.Container{Kind: hir.ContainerTuple, Elts: []hir.Expr{
					&hir.Literal{Kind: hir.LitInt, Raw: "0"},
					&hir.Literal{Kind: hir.LitInt, Raw: "1"},
				}},
				NewBinding: true,
			},
			&hir.While{
				Condition: &hir.Literal{Kind: hir.LitBool, Raw: "True"},
				Body: []hir.Stmt{
					&hir.ExprStmt{Value: &hir.Yield{Value: varRef("a", hir.Int())}},
					&hir.Assign{
						Target: hir.AssignTarget{Kind: hir.TargetTuple, Elts: []hir.AssignTarget{
							{Kind: hir.TargetSymbol, Name: "a"},
							{Kind: hir.TargetSymbol, Name: "b"},
						}},
						Value: &hir.Container{Kind: hir.ContainerTuple, Elts: []hir.Expr{
							varRef("b", hir.Int()),
							&hir.Binary{Op: "+", Left: varRef("a", hir.Int()), Right: varRef("b", hir.Int())},
						}},
					},
				},
			},
		},
	}
}

// The fib generator's infinite `while True` loop must not be lowered to a
// native Rust `while true { ... push ... }`, since that would never return
// from the function at all — it has to become a discriminant state that
// next() can suspend and resume across, per call.
func TestGeneratorLowersInfiniteLoopToStateMachineNotNativeLoop(t *testing.T) {
	c := &CodeGenContext{Bag: &diag.Bag{}}
	w := NewRustWriter()
	c.Generator(w, fibGenFn())

	out := w.String()

	if strings.Contains(out, "while true") || strings.Contains(out, "while True") {
		t.Fatalf("expected no native while-true loop in a generator's body, got:\n%s", out)
	}

	if !strings.Contains(out, "impl Iterator for FibGenGenerator") {
		t.Fatalf("expected a synthesized FibGenGenerator implementing Iterator, got:\n%s", out)
	}

	if !strings.Contains(out, "fn next(&mut self) -> Option<i64>") {
		t.Fatalf("expected a next() returning Option<i64>, got:\n%s", out)
	}

	if !strings.Contains(out, "match self.state") {
		t.Fatalf("expected a discriminant dispatch over self.state, got:\n%s", out)
	}
}

// a and b both survive the yield boundary (LiveAcrossYield), so both must
// become struct fields, and the tuple-unpacking assign must target them
// through self, not through fresh lets.
func TestGeneratorLiftsLiveAcrossYieldLocalsToFields(t *testing.T) {
	c := &CodeGenContext{Bag: &diag.Bag{}}
	w := NewRustWriter()
	c.Generator(w, fibGenFn())

	out := w.String()

	if !strings.Contains(out, "a: i64,") || !strings.Contains(out, "b: i64,") {
		t.Fatalf("expected a and b to be i64 struct fields, got:\n%s", out)
	}

	if !strings.Contains(out, "(self.a, self.b) = (0, 1);") {
		t.Fatalf("expected the initial tuple assign to target self.a/self.b directly, got:\n%s", out)
	}

	if !strings.Contains(out, "return Some(self.a);") {
		t.Fatalf("expected the yield to read self.a, got:\n%s", out)
	}
}

// The fib state machine hands out values through `return Some(..)` and
// ends iteration through a `_ => return None` arm, rather than looping in
// a native while-true that never returns.
func TestGeneratorYieldsSomeAndEndsWithNone(t *testing.T) {
	c := &CodeGenContext{Bag: &diag.Bag{}}
	w := NewRustWriter()
	c.Generator(w, fibGenFn())

	out := w.String()

	if !strings.Contains(out, "return Some(") {
		t.Fatalf("expected at least one state to yield a value, got:\n%s", out)
	}

	if !strings.Contains(out, "_ => return None,") {
		t.Fatalf("expected an exhausted/unknown state to end iteration, got:\n%s", out)
	}
}

// A can_fail generator's Item type wraps each yielded value in Result,
// since construction of a Python generator can never itself fail
// synchronously — only a later raise during iteration can.
func TestGeneratorCanFailWrapsItemNotConstruction(t *testing.T) {
	fn := &hir.Function{
		Name:       "risky_gen",
		ReturnType: hir.Iterator(hir.Int()),
		Properties: hir.FunctionProperties{IsGenerator: true, CanFail: true},
		Body: []hir.Stmt{
			&hir.ExprStmt{Value: &hir.Yield{Value: &hir.Literal{Kind: hir.LitInt, Raw: "1"}}},
		},
	}

	c := &CodeGenContext{Bag: &diag.Bag{}}
	w := NewRustWriter()
	c.Generator(w, fn)

	out := w.String()

	if !strings.Contains(out, "type Item = Result<i64, py2rs_rt::PyError>;") {
		t.Fatalf("expected the Item type to wrap each yield in Result, got:\n%s", out)
	}

	if !strings.Contains(out, "-> impl Iterator<Item = Result<i64, py2rs_rt::PyError>>") {
		t.Fatalf("expected the constructor to return the iterator directly, not a Result of it, got:\n%s", out)
	}

	if !strings.Contains(out, "return Some(Ok(1));") {
		t.Fatalf("expected the yield to wrap its value in Ok, got:\n%s", out)
	}
}

// An untyped generator return falls back to PyAny for its element type.
func TestGeneratorElemTypeFallsBackToAnyWhenUntyped(t *testing.T) {
	fn := &hir.Function{Name: "gen", Properties: hir.FunctionProperties{IsGenerator: true}}

	c := &CodeGenContext{Bag: &diag.Bag{}}
	w := NewRustWriter()
	c.Generator(w, fn)

	if out := w.String(); !strings.Contains(out, "type Item = "+RustType(hir.Any())+";") {
		t.Fatalf("expected the element type to fall back to Any's rendering, got:\n%s", out)
	}
}

// A plain `for x in xs: yield x` generator pulls from a boxed iterator
// field rather than a native Rust for-loop, so it too can suspend and
// resume mid-iteration.
func TestGeneratorForLoopWithYieldUsesIteratorField(t *testing.T) {
	fn := &hir.Function{
		Name:       "echo_all",
		ReturnType: hir.Iterator(hir.Int()),
		Properties: hir.FunctionProperties{IsGenerator: true},
		Params: []hir.Param{
			{Name: "xs", DeclaredType: hir.List(hir.Int())},
		},
		Body: []hir.Stmt{
			&hir.For{
				Target: varRef("x", hir.Int()),
				Iter:   varRef("xs", hir.List(hir.Int())),
				Body: []hir.Stmt{
					&hir.ExprStmt{Value: &hir.Yield{Value: varRef("x", hir.Int())}},
				},
			},
		},
	}

	c := &CodeGenContext{Bag: &diag.Bag{}}
	w := NewRustWriter()
	c.Generator(w, fn)

	out := w.String()

	if !strings.Contains(out, "Option<Box<dyn Iterator<Item = i64>>>") {
		t.Fatalf("expected a boxed iterator field for the for-loop, got:\n%s", out)
	}

	if !strings.Contains(out, "return Some(self.x);") {
		t.Fatalf("expected the yield inside the for-loop to read self.x, got:\n%s", out)
	}
}
