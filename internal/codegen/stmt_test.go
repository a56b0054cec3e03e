package codegen

import (
	"strings"
	"testing"

	"github.com/py2rs-dev/py2rs/internal/diag"
	"github.com/py2rs-dev/py2rs/internal/hir"
	"github.com/py2rs-dev/py2rs/internal/registry"
)

func emitStmts(t *testing.T, body []hir.Stmt) string {
	t.Helper()

	c := &CodeGenContext{Bag: &diag.Bag{}, Registry: registry.New()}
	w := NewRustWriter()
	se := &StmtEmitter{CodeGenContext: c, w: w}
	se.Block(body)

	return w.String()
}

// An elif chain flattens to Rust's `} else if ... {` rather than nesting
// another full if/else block inside the else branch.
func TestIfStmtFlattensElifChain(t *testing.T) {
	body := []hir.Stmt{
		&hir.If{
			Condition: &hir.Literal{Kind: hir.LitBool, Raw: "true"},
			ThenBody:  []hir.Stmt{&hir.Pass{}},
			ElseBody: []hir.Stmt{
				&hir.If{
					Condition: &hir.Literal{Kind: hir.LitBool, Raw: "false"},
					ThenBody:  []hir.Stmt{&hir.Pass{}},
				},
			},
		},
	}

	out := emitStmts(t, body)
	if !strings.Contains(out, "} else if false {") {
		t.Fatalf("expected the elif to flatten to } else if, got:\n%s", out)
	}
}

// A floor-division augmented assignment routes through the py2rs_rt
// floor_div helper rather than Rust's native /=.
func TestAugAssignFloorDivUsesRuntimeHelper(t *testing.T) {
	body := []hir.Stmt{
		&hir.AugAssign{Target: hir.AssignTarget{Kind: hir.TargetSymbol, Name: "x"}, Op: "//", Value: &hir.Literal{Kind: hir.LitInt, Raw: "2"}},
	}

	out := emitStmts(t, body)
	if !strings.Contains(out, "py2rs_rt::floor_div(x, 2)") {
		t.Fatalf("expected floor_div to be used, got:\n%s", out)
	}
}

// raise with no value re-raises the active error; raise with a value wraps
// it in a fresh PyError.
func TestRaiseWithAndWithoutValue(t *testing.T) {
	bare := emitStmts(t, []hir.Stmt{&hir.Raise{}})
	if !strings.Contains(bare, "PyError::reraise()") {
		t.Fatalf("expected a bare raise to reraise, got:\n%s", bare)
	}

	withValue := emitStmts(t, []hir.Stmt{&hir.Raise{Value: &hir.Literal{Kind: hir.LitString, Raw: "\"boom\""}}})
	if !strings.Contains(withValue, "PyError::from(") {
		t.Fatalf("expected a raise with a value to wrap it via PyError::from, got:\n%s", withValue)
	}
}

// A with statement binds the context value, runs its body, and calls the
// exit contract's method explicitly as a belt-and-braces release alongside
// Rust's own scope-drop.
func TestWithStmtCallsExitContract(t *testing.T) {
	body := []hir.Stmt{
		&hir.With{
			Context:      &hir.Call{FuncName: "open"},
			Binding:      "f",
			ExitContract: "close",
			Body:         []hir.Stmt{&hir.Pass{}},
		},
	}

	out := emitStmts(t, body)
	if !strings.Contains(out, "let mut f = open();") {
		t.Fatalf("expected the context value to bind to f, got:\n%s", out)
	}

	if !strings.Contains(out, "f.close();") {
		t.Fatalf("expected the exit contract to call close() on f, got:\n%s", out)
	}
}

// try/except dispatches on the caught error's matched exception type name.
func TestTryStmtDispatchesOnExceptionType(t *testing.T) {
	body := []hir.Stmt{
		&hir.Try{
			Body: []hir.Stmt{&hir.Raise{Value: &hir.Literal{Kind: hir.LitString, Raw: "\"x\""}}},
			Except: []hir.ExceptClause{
				{ExcType: "ValueError", Name: "e", Body: []hir.Stmt{&hir.Pass{}}},
			},
		},
	}

	out := emitStmts(t, body)
	if !strings.Contains(out, `__err.matches("ValueError")`) {
		t.Fatalf("expected the except clause to dispatch on ValueError, got:\n%s", out)
	}
}

// A for loop over a mutated iterable borrows via .iter_mut() rather than
// consuming via .into_iter().
func TestForStmtMutatesUsesIterMut(t *testing.T) {
	body := []hir.Stmt{
		&hir.For{Target: &hir.Var{Name: "x"}, Iter: &hir.Var{Name: "items"}, Mutates: true, Body: []hir.Stmt{&hir.Pass{}}},
	}

	out := emitStmts(t, body)
	if !strings.Contains(out, ".iter_mut()") {
		t.Fatalf("expected a mutating for loop to use iter_mut, got:\n%s", out)
	}
}
