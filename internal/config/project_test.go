package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseProjectAppliesDefaults(t *testing.T) {
	p, err := ParseProject([]byte(""), "py2rs.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.RustEdition != "2021" {
		t.Fatalf("expected default rust_edition 2021, got %q", p.RustEdition)
	}

	if p.PragmaPrefix != "py2rs" {
		t.Fatalf("expected default pragma_prefix py2rs, got %q", p.PragmaPrefix)
	}
}

func TestParseProjectPreservesExplicitValues(t *testing.T) {
	data := []byte("rust_edition: \"2018\"\npragma_prefix: custom\n")

	p, err := ParseProject(data, "py2rs.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.RustEdition != "2018" {
		t.Fatalf("expected explicit rust_edition 2018, got %q", p.RustEdition)
	}

	if p.PragmaPrefix != "custom" {
		t.Fatalf("expected explicit pragma_prefix custom, got %q", p.PragmaPrefix)
	}
}

func TestParseProjectRejectsMalformedYAML(t *testing.T) {
	if _, err := ParseProject([]byte("rust_edition: [unterminated"), "py2rs.yaml"); err == nil {
		t.Fatal("expected an error for malformed yaml")
	}
}

func TestResolveMergesOptionsOverDefault(t *testing.T) {
	truthy := true

	p := &Project{Options: ProjectOptions{
		EmitDocstrings:   &truthy,
		OverflowStrategy: "checked",
	}}

	opts := p.Resolve()

	if !opts.EmitDocstrings {
		t.Fatal("expected EmitDocstrings to stay true from the explicit override")
	}

	if opts.OverflowStrategy != Checked {
		t.Fatalf("expected OverflowStrategy Checked, got %v", opts.OverflowStrategy)
	}

	if opts.StringBorrowDefault != Borrowed {
		t.Fatalf("expected StringBorrowDefault to fall back to the Default() value, got %v", opts.StringBorrowDefault)
	}
}

func TestResolveOnNilProjectReturnsDefault(t *testing.T) {
	var p *Project

	if got, want := p.Resolve(), Default(); got != want {
		t.Fatalf("expected Resolve on a nil project to equal Default(), got %+v want %+v", got, want)
	}
}

func TestCheckToolchainEnforcesMinVersion(t *testing.T) {
	p := &Project{MinToolchain: "1.2.0"}

	if err := p.CheckToolchain("1.1.0"); err == nil {
		t.Fatal("expected 1.1.0 to fail the >= 1.2.0 constraint")
	}

	if err := p.CheckToolchain("1.2.0"); err != nil {
		t.Fatalf("expected 1.2.0 to satisfy the >= 1.2.0 constraint, got %v", err)
	}

	if err := p.CheckToolchain("1.3.0"); err != nil {
		t.Fatalf("expected 1.3.0 to satisfy the >= 1.2.0 constraint, got %v", err)
	}
}

func TestCheckToolchainNoConstraintAlwaysPasses(t *testing.T) {
	p := &Project{}

	if err := p.CheckToolchain("0.0.1"); err != nil {
		t.Fatalf("expected no min_toolchain to always pass, got %v", err)
	}
}

func TestFindProjectWalksUpToParent(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")

	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("setting up nested dir: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "py2rs.yaml"), []byte("rust_edition: \"2021\"\n"), 0o644); err != nil {
		t.Fatalf("writing py2rs.yaml: %v", err)
	}

	found, err := FindProject(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if found != filepath.Join(dir, "py2rs.yaml") {
		t.Fatalf("expected to find %s, got %s", filepath.Join(dir, "py2rs.yaml"), found)
	}
}

func TestFindProjectReturnsEmptyWhenAbsent(t *testing.T) {
	dir := t.TempDir()

	found, err := FindProject(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if found != "" {
		t.Fatalf("expected no project file to be found, got %q", found)
	}
}
