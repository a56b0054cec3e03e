package transpile

import (
	"context"
	"strings"
	"testing"

	"github.com/py2rs-dev/py2rs/internal/config"
	"github.com/py2rs-dev/py2rs/internal/hir"
)

// S1 — simple add. Built directly as HIR (no parser front end in this
// module; see DESIGN.md's Open Question decision), skipping ParseToHIR's
// bridge stage and exercising HIRToTarget directly, the way every scenario
// below does.
func TestScenarioS1SimpleAdd(t *testing.T) {
	mod := &hir.Module{
		Name: "s1",
		Functions: []hir.Function{
			{
				Name: "add",
				Params: []hir.Param{
					{Name: "a", DeclaredType: hir.Int()},
					{Name: "b", DeclaredType: hir.Int()},
				},
				ReturnType: hir.Int(),
				Body: []hir.Stmt{
					&hir.Return{Value: &hir.Binary{Op: "+", Left: &hir.Var{Name: "a"}, Right: &hir.Var{Name: "b"}}},
				},
			},
		},
	}

	out, diags, err := HIRToTarget(context.Background(), mod, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v (%d diagnostics)", err, diags.Len())
	}

	text := string(out)
	if !strings.Contains(text, "fn add(a: i64, b: i64) -> i64") && !strings.Contains(text, "pub fn add(a: i64, b: i64) -> i64") {
		t.Fatalf("missing expected add signature in:\n%s", text)
	}

	if !strings.Contains(text, "a + b") {
		t.Fatalf("missing a + b body in:\n%s", text)
	}
}

// S4 — dict with inferred string values: a plain string subscript result
// must not carry a sum-type unwrap conversion.
func TestScenarioS4DictStringValues(t *testing.T) {
	mod := &hir.Module{
		Name: "s4",
		Functions: []hir.Function{
			{
				Name:       "config",
				ReturnType: hir.Dict(hir.Str(), hir.Str()),
				Body: []hir.Stmt{
					&hir.Return{Value: &hir.Container{
						Kind:       hir.ContainerDict,
						Elts:       []hir.Expr{&hir.Literal{Kind: hir.LitString, Raw: "k"}},
						DictValues: []hir.Expr{&hir.Literal{Kind: hir.LitString, Raw: "v"}},
					}},
				},
			},
			{
				Name:       "pick",
				ReturnType: hir.Str(),
				Body: []hir.Stmt{
					&hir.Assign{
						Target:     hir.AssignTarget{Kind: hir.TargetSymbol, Name: "c"},
						Value:      &hir.Call{FuncName: "config"},
						NewBinding: true,
					},
					&hir.Return{Value: &hir.Subscript{
						Object: &hir.Var{Name: "c"},
						Index:  &hir.Literal{Kind: hir.LitString, Raw: "k"},
					}},
				},
			},
		},
	}

	out, _, err := HIRToTarget(context.Background(), mod, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := string(out)
	if strings.Contains(text, "as_str().unwrap_or") {
		t.Fatalf("unexpected sum-type unwrap conversion in:\n%s", text)
	}
}

// S6 — lambda capturing an outer, non-Copy variable: the closure body
// reads the capture through format!, which only borrows it.
func TestScenarioS6LambdaCapture(t *testing.T) {
	prefixRead := &hir.Var{Name: "prefix"}
	prefixRead.SetInferredType(hir.Str())

	mod := &hir.Module{
		Name: "s6",
		Functions: []hir.Function{
			{
				Name: "make",
				Params: []hir.Param{
					{Name: "items", DeclaredType: hir.List(hir.Any())},
				},
				ReturnType: hir.List(hir.Str()),
				Body: []hir.Stmt{
					&hir.Assign{
						Target:     hir.AssignTarget{Kind: hir.TargetSymbol, Name: "prefix"},
						Value:      &hir.Literal{Kind: hir.LitString, Raw: "i_"},
						NewBinding: true,
					},
					&hir.Return{Value: &hir.Call{
						FuncName: "list",
						Args: []hir.Expr{
							&hir.Call{
								FuncName: "map",
								Args: []hir.Expr{
									&hir.Lambda{
										Params: []hir.Param{{Name: "x", DeclaredType: hir.Any()}},
										Body: &hir.Binary{
											Op:    "+",
											Left:  prefixRead,
											Right: &hir.Call{FuncName: "str", Args: []hir.Expr{&hir.Var{Name: "x"}}},
										},
									},
									&hir.Var{Name: "items"},
								},
							},
						},
					}},
				},
			},
		},
	}

	out, _, err := HIRToTarget(context.Background(), mod, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The outer `prefix` is concatenated via format!, which borrows rather
	// than moves its operands — so the closure can be invoked once per
	// item in `items` with no use-after-move on its captured variable.
	if !strings.Contains(string(out), "format!(") {
		t.Fatalf("expected string concatenation to borrow its captured variable via format! in:\n%s", string(out))
	}
}

// Boundary: a function whose body is only `pass` emits a valid empty
// function (invariant 8).
func TestBoundaryPassOnlyFunction(t *testing.T) {
	mod := &hir.Module{
		Name: "boundary",
		Functions: []hir.Function{
			{Name: "noop", ReturnType: hir.NoneType(), Body: []hir.Stmt{&hir.Pass{}}},
		},
	}

	out, _, err := HIRToTarget(context.Background(), mod, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(string(out), "fn noop()") {
		t.Fatalf("expected noop signature in:\n%s", string(out))
	}
}

// Boundary: an empty module emits a valid (possibly import-only) empty
// target module (invariant 9).
func TestBoundaryEmptyModule(t *testing.T) {
	mod := &hir.Module{Name: "empty"}

	out, diags, err := HIRToTarget(context.Background(), mod, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diags.HasErrors() {
		t.Fatalf("unexpected errors for an empty module")
	}

	if strings.TrimSpace(string(out)) == "" {
		t.Fatal("expected at least the allow-attributes preamble, got empty output")
	}
}
