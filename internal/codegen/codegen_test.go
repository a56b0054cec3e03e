package codegen

import (
	"strings"
	"testing"

	"github.com/py2rs-dev/py2rs/internal/analyzer"
	"github.com/py2rs-dev/py2rs/internal/config"
	"github.com/py2rs-dev/py2rs/internal/hir"
	"github.com/py2rs-dev/py2rs/internal/registry"
	"github.com/py2rs-dev/py2rs/internal/types"
)

// A call to a function the analyzer marked can_fail gets a trailing `?` at
// the call site (invariant 3 / scenario S2's fallible-propagation rule).
func TestGenerateInsertsTryOperatorForFallibleCalls(t *testing.T) {
	mod := &hir.Module{
		Functions: []hir.Function{
			{
				Name:       "parse",
				ReturnType: hir.Int(),
				Params:     []hir.Param{{Name: "s", DeclaredType: hir.Str()}},
				Body: []hir.Stmt{
					&hir.Return{Value: &hir.Call{FuncName: "int", Args: []hir.Expr{&hir.Var{Name: "s"}}}},
				},
			},
			{
				Name:       "double_parsed",
				ReturnType: hir.Int(),
				Params:     []hir.Param{{Name: "s", DeclaredType: hir.Str()}},
				Body: []hir.Stmt{
					&hir.Return{Value: &hir.Binary{
						Op:    "*",
						Left:  &hir.Call{FuncName: "parse", Args: []hir.Expr{&hir.Var{Name: "s"}}},
						Right: &hir.Literal{Kind: hir.LitInt, Raw: "2"},
					}},
				},
			},
		},
	}

	// Mirror pkg/transpile's real ordering: the analyzer's structural pass
	// runs once (as it would from ParseToHIR) before the registry snapshot
	// is taken, so CanFail is already visible to tagFallibleCallSites.
	analyzer.Analyze(mod)

	reg := registry.BuildFromModule(mod)
	sol, _ := types.Infer(mod, reg)
	facts := analyzer.Analyze(mod)

	out, bag := Generate(mod, facts, sol, reg, config.Default())
	if bag.HasErrors() {
		t.Fatalf("unexpected codegen errors: %v", bag.Items())
	}

	if !strings.Contains(out, "parse(") || !strings.Contains(out, ")?") {
		t.Fatalf("expected the call to the can_fail parse() to carry a ? operator in:\n%s", out)
	}

	if !strings.Contains(out, "Result<i64, py2rs_rt::PyError>") {
		t.Fatalf("expected double_parsed's signature to propagate Result, got:\n%s", out)
	}
}

// EmitDocstrings=false suppresses the /// doc comment a function's
// docstring would otherwise render.
func TestGenerateRespectsEmitDocstringsOption(t *testing.T) {
	mod := &hir.Module{
		Functions: []hir.Function{
			{Name: "f", Docstring: "does a thing", ReturnType: hir.NoneType(), Body: []hir.Stmt{&hir.Pass{}}},
		},
	}

	reg := registry.BuildFromModule(mod)
	sol, _ := types.Infer(mod, reg)
	facts := analyzer.Analyze(mod)

	withDocs, _ := Generate(mod, facts, sol, reg, config.Default())
	if !strings.Contains(withDocs, "/// does a thing") {
		t.Fatalf("expected docstring to be emitted by default, got:\n%s", withDocs)
	}

	opts := config.Default()
	opts.EmitDocstrings = false

	withoutDocs, _ := Generate(mod, facts, sol, reg, opts)
	if strings.Contains(withoutDocs, "/// does a thing") {
		t.Fatalf("expected EmitDocstrings=false to suppress the doc comment, got:\n%s", withoutDocs)
	}
}

// The Checked overflow strategy renders checked_add().expect(...) instead of
// a bare `+` for Int operands.
func TestGenerateCheckedOverflowStrategy(t *testing.T) {
	mod := &hir.Module{
		Functions: []hir.Function{
			{
				Name:       "add",
				ReturnType: hir.Int(),
				Params:     []hir.Param{{Name: "a", DeclaredType: hir.Int()}, {Name: "b", DeclaredType: hir.Int()}},
				Body: []hir.Stmt{
					&hir.Return{Value: &hir.Binary{Op: "+", Left: &hir.Var{Name: "a"}, Right: &hir.Var{Name: "b"}}},
				},
			},
		},
	}

	reg := registry.BuildFromModule(mod)
	sol, _ := types.Infer(mod, reg)
	facts := analyzer.Analyze(mod)

	opts := config.Default()
	opts.OverflowStrategy = config.Checked

	out, bag := Generate(mod, facts, sol, reg, opts)
	if bag.HasErrors() {
		t.Fatalf("unexpected codegen errors: %v", bag.Items())
	}

	if !strings.Contains(out, "checked_add(b).expect(\"overflow\")") {
		t.Fatalf("expected checked_add in:\n%s", out)
	}
}

// A parameter the analyzer marks mutated via append() renders as &mut Vec.
func TestParamTextBorrowsMutatedListAsMutRef(t *testing.T) {
	c := &CodeGenContext{}

	p := hir.Param{Name: "items", DeclaredType: hir.List(hir.Int()), IsMutated: true}
	if got := c.paramText(p); got != "items: &mut Vec<i64>" {
		t.Fatalf("expected a mutated list param to borrow mutably, got %q", got)
	}

	p2 := hir.Param{Name: "items", DeclaredType: hir.List(hir.Int())}
	if got := c.paramText(p2); got != "items: &[i64]" {
		t.Fatalf("expected an unmutated list param to borrow immutably as a slice, got %q", got)
	}
}

// FuncSignature wraps a can_fail function's return type in Result.
func TestFuncSignatureWrapsResultForCanFail(t *testing.T) {
	c := &CodeGenContext{}

	fn := &hir.Function{
		Name:       "parse",
		ReturnType: hir.Int(),
		Properties: hir.FunctionProperties{CanFail: true},
	}

	sig := c.FuncSignature(fn, false)
	if !strings.Contains(sig, "Result<i64, py2rs_rt::PyError>") {
		t.Fatalf("expected a can_fail signature to wrap Result, got %q", sig)
	}
}
