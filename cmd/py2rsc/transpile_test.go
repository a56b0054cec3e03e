package main

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/py2rs-dev/py2rs/internal/pyast"
)

func addModuleJSON(t *testing.T) []byte {
	t.Helper()

	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.FunctionDef{
			Name:    "add",
			Returns: &pyast.Name{Id: "int"},
			Params: []pyast.Param{
				{Name: "a", Annotation: &pyast.Name{Id: "int"}},
				{Name: "b", Annotation: &pyast.Name{Id: "int"}},
			},
			Body: []pyast.Stmt{
				&pyast.Return{Value: &pyast.BinOp{Op: "+", Left: &pyast.Name{Id: "a"}, Right: &pyast.Name{Id: "b"}}},
			},
		},
	}}

	data, err := pyast.Encode(mod)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	return data
}

// transpile, run entirely against an in-memory filesystem, decodes the
// JSON module dump, runs the real pipeline, and writes Rust text with a
// .rs extension alongside the input.
func TestRunTranspileWritesRustOutputAlongsideInput(t *testing.T) {
	mem := afero.NewMemMapFs()
	if err := afero.WriteFile(mem, "/src/add.json", addModuleJSON(t), 0o644); err != nil {
		t.Fatalf("seed fixture: %v", err)
	}

	if err := runTranspile(context.Background(), mem, []string{"/src/add.json"}, ""); err != nil {
		t.Fatalf("runTranspile: %v", err)
	}

	out, err := afero.ReadFile(mem, "/src/add.rs")
	if err != nil {
		t.Fatalf("expected /src/add.rs to be written: %v", err)
	}

	if !strings.Contains(string(out), "fn add(") {
		t.Fatalf("expected rendered Rust to contain fn add(, got:\n%s", out)
	}
}

// An --out directory redirects every rendered file there instead of next
// to its input.
func TestRunTranspileHonorsOutDir(t *testing.T) {
	mem := afero.NewMemMapFs()
	if err := afero.WriteFile(mem, "/src/add.json", addModuleJSON(t), 0o644); err != nil {
		t.Fatalf("seed fixture: %v", err)
	}

	if err := runTranspile(context.Background(), mem, []string{"/src/add.json"}, "/out"); err != nil {
		t.Fatalf("runTranspile: %v", err)
	}

	if ok, _ := afero.Exists(mem, "/out/add.rs"); !ok {
		t.Fatal("expected /out/add.rs to exist")
	}
}

func badModuleJSON(t *testing.T) []byte {
	t.Helper()

	mod := &pyast.Module{Body: []pyast.Stmt{
		&pyast.FunctionDef{
			Name:   "bad",
			Params: []pyast.Param{{Name: "x"}, {Name: "x"}},
			Body:   []pyast.Stmt{&pyast.Pass{}},
		},
	}}

	data, err := pyast.Encode(mod)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	return data
}

// A module whose HIR fails to lower (here, a duplicate parameter name, a
// Malformed diagnostic) surfaces as a non-nil error without writing any
// output file, rather than panicking or writing garbage.
func TestRunTranspileReportsFailedModuleAsError(t *testing.T) {
	mem := afero.NewMemMapFs()

	if err := afero.WriteFile(mem, "/src/bad.json", badModuleJSON(t), 0o644); err != nil {
		t.Fatalf("seed fixture: %v", err)
	}

	if err := runTranspile(context.Background(), mem, []string{"/src/bad.json"}, ""); err == nil {
		t.Fatal("expected a failing module to produce an error")
	}

	if ok, _ := afero.Exists(mem, "/src/bad.rs"); ok {
		t.Fatal("expected no output file for a failed module")
	}
}
