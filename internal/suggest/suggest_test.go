package suggest

import (
	"testing"

	"github.com/py2rs-dev/py2rs/internal/hir"
)

func intParam(name string) hir.Param {
	return hir.Param{Name: name, DeclaredType: hir.Int()}
}

func TestDetectAccumulator(t *testing.T) {
	fn := &hir.Function{
		Name:   "filter_even_numbers",
		Params: []hir.Param{intParam("numbers")},
		Body: []hir.Stmt{
			&hir.Assign{
				Target: hir.AssignTarget{Kind: hir.TargetSymbol, Name: "result"},
				Value:  &hir.Container{Kind: hir.ContainerList},
			},
			&hir.For{
				Target: &hir.Var{Name: "num"},
				Iter:   &hir.Var{Name: "numbers"},
				Body: []hir.Stmt{
					&hir.If{
						Condition: &hir.Binary{Op: "==", Left: &hir.Var{Name: "num"}, Right: &hir.Literal{Kind: hir.LitInt, Raw: "0"}},
						ThenBody: []hir.Stmt{
							&hir.ExprStmt{Value: &hir.MethodCall{Object: &hir.Var{Name: "result"}, Method: "append", Args: []hir.Expr{&hir.Var{Name: "num"}}}},
						},
					},
				},
			},
			&hir.Return{Value: &hir.Var{Name: "result"}},
		},
	}

	got := detectAccumulator(fn)
	if len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(got))
	}

	if got[0].Category != Iterators {
		t.Fatalf("expected Iterators category, got %v", got[0].Category)
	}
}

func TestDetectIsinstanceChain(t *testing.T) {
	fn := &hir.Function{
		Name: "process_value",
		Body: []hir.Stmt{
			&hir.If{
				Condition: &hir.Call{FuncName: "isinstance", Args: []hir.Expr{&hir.Var{Name: "value"}, &hir.Var{Name: "str"}}},
				ThenBody:  []hir.Stmt{&hir.Return{Value: &hir.Var{Name: "value"}}},
				ElseBody: []hir.Stmt{
					&hir.If{
						Condition: &hir.Call{FuncName: "isinstance", Args: []hir.Expr{&hir.Var{Name: "value"}, &hir.Var{Name: "int"}}},
						ThenBody:  []hir.Stmt{&hir.Return{Value: &hir.Var{Name: "value"}}},
					},
				},
			},
		},
	}

	got := detectIsinstanceChain(fn)
	if len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(got))
	}

	if got[0].Category != ErrorHandling {
		t.Fatalf("expected ErrorHandling category, got %v", got[0].Category)
	}
}

func TestDetectWhileTrue(t *testing.T) {
	fn := &hir.Function{
		Name: "server_loop",
		Body: []hir.Stmt{
			&hir.While{
				Condition: &hir.Literal{Kind: hir.LitBool, Raw: "True"},
				Body: []hir.Stmt{
					&hir.If{
						Condition: &hir.Call{FuncName: "should_stop"},
						ThenBody:  []hir.Stmt{&hir.Break{}},
					},
					&hir.ExprStmt{Value: &hir.Call{FuncName: "process_request"}},
				},
			},
		},
	}

	got := detectWhileTrue(fn)
	if len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(got))
	}

	if got[0].Detail == "" {
		t.Fatal("expected a non-empty detail")
	}
}

func TestDetectMutableParamReturn(t *testing.T) {
	mutatedParam := intParam("items")
	mutatedParam.IsMutated = true

	fn := &hir.Function{
		Name:   "add_to_list",
		Params: []hir.Param{mutatedParam, intParam("new_item")},
		Body: []hir.Stmt{
			&hir.ExprStmt{Value: &hir.MethodCall{Object: &hir.Var{Name: "items"}, Method: "append", Args: []hir.Expr{&hir.Var{Name: "new_item"}}}},
			&hir.Return{Value: &hir.Var{Name: "items"}},
		},
	}

	got := detectMutableParamReturn(fn)
	if len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(got))
	}

	if got[0].Category != Ownership {
		t.Fatalf("expected Ownership category, got %v", got[0].Category)
	}
}

func TestFormatSuggestionsEmpty(t *testing.T) {
	if FormatSuggestions(nil, 0) != "no migration suggestions" {
		t.Fatal("expected empty-report sentinel")
	}
}

func TestFormatSuggestionsGroupsByCategory(t *testing.T) {
	suggestions := []Suggestion{
		{Category: Ownership, Function: "f", Message: "m1", Detail: "d1"},
		{Category: Iterators, Function: "g", Message: "m2", Detail: "d2"},
	}

	out := FormatSuggestions(suggestions, 2)
	if out == "" {
		t.Fatal("expected non-empty report")
	}
}

func TestAnalyzeModule(t *testing.T) {
	mutatedParam := intParam("items")
	mutatedParam.IsMutated = true

	mod := &hir.Module{
		Functions: []hir.Function{
			{
				Name:   "add_to_list",
				Params: []hir.Param{mutatedParam},
				Body: []hir.Stmt{
					&hir.Return{Value: &hir.Var{Name: "items"}},
				},
			},
		},
	}

	a := New(Default())

	got := a.AnalyzeModule(mod)
	if len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(got))
	}

	diagnostic := got[0].Diagnostic()
	if diagnostic.Fix == nil {
		t.Fatal("expected Diagnostic to populate Fix")
	}
}
