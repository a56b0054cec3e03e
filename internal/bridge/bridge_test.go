package bridge

import (
	"testing"

	"github.com/py2rs-dev/py2rs/internal/hir"
	"github.com/py2rs-dev/py2rs/internal/pyast"
)

func TestToHIRNilModuleReturnsError(t *testing.T) {
	mod, bag, err := ToHIR(nil, "m")
	if err == nil {
		t.Fatal("expected an error for a nil module")
	}

	if mod != nil {
		t.Fatal("expected a nil HIR module on error")
	}

	if !bag.HasErrors() {
		t.Fatal("expected the diagnostic bag to carry the malformed error")
	}
}

func TestToHIRLowersFunctionDef(t *testing.T) {
	src := &pyast.Module{
		Body: []pyast.Stmt{
			&pyast.FunctionDef{
				Name: "add",
				Params: []pyast.Param{
					{Name: "a", Annotation: &pyast.Name{Id: "int"}},
					{Name: "b", Annotation: &pyast.Name{Id: "int"}},
				},
				Returns: &pyast.Name{Id: "int"},
				Body: []pyast.Stmt{
					&pyast.Return{Value: &pyast.BinOp{Op: "+", Left: &pyast.Name{Id: "a"}, Right: &pyast.Name{Id: "b"}}},
				},
			},
		},
	}

	mod, bag, err := ToHIR(src, "m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostic errors: %v", bag.Items())
	}

	if len(mod.Functions) != 1 || mod.Functions[0].Name != "add" {
		t.Fatalf("expected one lowered function named add, got %+v", mod.Functions)
	}

	fn := mod.Functions[0]
	if fn.ReturnType.Kind != hir.TInt {
		t.Fatalf("expected int return type, got %v", fn.ReturnType.Kind)
	}

	if len(fn.Params) != 2 || fn.Params[0].DeclaredType.Kind != hir.TInt {
		t.Fatalf("expected 2 int params, got %+v", fn.Params)
	}
}

func TestToHIRDuplicateParamNameIsMalformed(t *testing.T) {
	src := &pyast.Module{
		Body: []pyast.Stmt{
			&pyast.FunctionDef{
				Name: "dup",
				Params: []pyast.Param{
					{Name: "a"},
					{Name: "a"},
				},
			},
		},
	}

	_, bag, err := ToHIR(src, "m")
	if err != nil {
		t.Fatalf("unexpected top-level error: %v", err)
	}

	if !bag.HasErrors() {
		t.Fatal("expected a malformed diagnostic for the duplicate parameter")
	}
}

func TestToHIRUnsupportedModuleStatementDoesNotAbort(t *testing.T) {
	src := &pyast.Module{
		Body: []pyast.Stmt{
			&pyast.Global{Names: []string{"x"}},
			&pyast.FunctionDef{Name: "still_here"},
		},
	}

	mod, bag, err := ToHIR(src, "m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bag.HasErrors() {
		t.Fatal("expected an Unsupported diagnostic for the module-level global statement")
	}

	if len(mod.Functions) != 1 || mod.Functions[0].Name != "still_here" {
		t.Fatalf("expected lowering to continue past the unsupported statement, got %+v", mod.Functions)
	}
}

func TestToHIRGeneratorPropertyFromYield(t *testing.T) {
	src := &pyast.Module{
		Body: []pyast.Stmt{
			&pyast.FunctionDef{
				Name: "gen",
				Body: []pyast.Stmt{
					&pyast.ExprStmt{Value: &pyast.Yield{}},
				},
			},
		},
	}

	mod, _, err := ToHIR(src, "m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !mod.Functions[0].Properties.IsGenerator {
		t.Fatal("expected a yield in the body to mark the function a generator")
	}
}

func TestToHIRClassWithInitAndDuplicateMethodsDiagnosed(t *testing.T) {
	src := &pyast.Module{
		Body: []pyast.Stmt{
			&pyast.ClassDef{
				Name: "Point",
				Body: []pyast.Stmt{
					&pyast.FunctionDef{Name: "__init__", Params: []pyast.Param{{Name: "self"}}},
					&pyast.FunctionDef{Name: "dist", Params: []pyast.Param{{Name: "self"}}},
					&pyast.FunctionDef{Name: "dist", Params: []pyast.Param{{Name: "self"}}},
				},
			},
		},
	}

	mod, bag, err := ToHIR(src, "m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(mod.Classes) != 1 || mod.Classes[0].Name != "Point" {
		t.Fatalf("expected one lowered class, got %+v", mod.Classes)
	}

	if !bag.HasErrors() {
		t.Fatal("expected a malformed diagnostic for the duplicate dist method")
	}
}

func TestToHIRStaticmethodDecoratorSetsFlag(t *testing.T) {
	src := &pyast.Module{
		Body: []pyast.Stmt{
			&pyast.ClassDef{
				Name: "Util",
				Body: []pyast.Stmt{
					&pyast.FunctionDef{
						Name:       "make",
						Decorators: []pyast.Decorator{{Name: "staticmethod"}},
					},
				},
			},
		},
	}

	mod, _, err := ToHIR(src, "m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !mod.Classes[0].Methods[0].IsStatic {
		t.Fatal("expected @staticmethod to set IsStatic on the lowered method")
	}
}

func TestToHIRUnknownDecoratorIsUnsupported(t *testing.T) {
	src := &pyast.Module{
		Body: []pyast.Stmt{
			&pyast.FunctionDef{
				Name:       "wrapped",
				Decorators: []pyast.Decorator{{Name: "retry"}},
			},
		},
	}

	_, bag, err := ToHIR(src, "m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bag.HasErrors() {
		t.Fatal("expected an Unsupported diagnostic for an unrecognized decorator")
	}
}
