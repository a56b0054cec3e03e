package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Project is the on-disk py2rs.yaml project file: the target Rust edition,
// default codegen options, the pragma comment prefix, and a minimum
// toolchain version constraint checked against the running py2rsc build.
type Project struct {
	RustEdition   string        `yaml:"rust_edition,omitempty"`
	PragmaPrefix  string        `yaml:"pragma_prefix,omitempty"`
	MinToolchain  string        `yaml:"min_toolchain,omitempty"`
	Options       ProjectOptions `yaml:"options,omitempty"`
}

// ProjectOptions mirrors CodegenOptions in its on-disk yaml shape; kept
// distinct from CodegenOptions itself so the wire format (strings for the
// enum fields) doesn't leak into the in-memory type every pipeline stage
// consumes.
type ProjectOptions struct {
	EmitDocstrings      *bool  `yaml:"emit_docstrings,omitempty"`
	PropertyTestStubs   *bool  `yaml:"property_test_stubs,omitempty"`
	StrictMutability    *bool  `yaml:"strict_mutability,omitempty"`
	OverflowStrategy    string `yaml:"overflow_strategy,omitempty"`
	StringBorrowDefault string `yaml:"string_borrow_default,omitempty"`
}

// LoadProject reads and parses a py2rs.yaml file.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project config %s: %w", path, err)
	}

	return ParseProject(data, path)
}

// ParseProject parses py2rs.yaml content from bytes. path is used only in
// error messages.
func ParseProject(data []byte, path string) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	p.setDefaults()

	return &p, nil
}

func (p *Project) setDefaults() {
	if p.RustEdition == "" {
		p.RustEdition = "2021"
	}

	if p.PragmaPrefix == "" {
		p.PragmaPrefix = "py2rs"
	}
}

// FindProject searches for py2rs.yaml starting from dir and walking up to
// parent directories, the way the teacher's package manifest resolution
// walks up looking for the workspace root.
func FindProject(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, "py2rs.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}

		dir = parent
	}
}

// CheckToolchain validates the running py2rsc version against the
// project's min_toolchain constraint, using the same semver constraint
// syntax the teacher's package manager uses for dependency version specs.
func (p *Project) CheckToolchain(runningVersion string) error {
	if p.MinToolchain == "" {
		return nil
	}

	constraint, err := semver.NewConstraint(">= " + p.MinToolchain)
	if err != nil {
		return fmt.Errorf("invalid min_toolchain constraint %q: %w", p.MinToolchain, err)
	}

	running, err := semver.NewVersion(runningVersion)
	if err != nil {
		return fmt.Errorf("invalid running version %q: %w", runningVersion, err)
	}

	if !constraint.Check(running) {
		return fmt.Errorf("py2rsc %s does not satisfy project's min_toolchain %s", runningVersion, p.MinToolchain)
	}

	return nil
}

// Resolve merges the project's on-disk options over Default(), producing
// the CodegenOptions a pipeline call actually uses. An unset Project
// field (nil bool, empty string) leaves the default in place.
func (p *Project) Resolve() CodegenOptions {
	opts := Default()

	if p == nil {
		return opts
	}

	o := p.Options
	if o.EmitDocstrings != nil {
		opts.EmitDocstrings = *o.EmitDocstrings
	}

	if o.PropertyTestStubs != nil {
		opts.PropertyTestStubs = *o.PropertyTestStubs
	}

	if o.StrictMutability != nil {
		opts.StrictMutability = *o.StrictMutability
	}

	switch o.OverflowStrategy {
	case "checked":
		opts.OverflowStrategy = Checked
	case "wrapping":
		opts.OverflowStrategy = Wrapping
	case "panic", "":
	}

	switch o.StringBorrowDefault {
	case "owned":
		opts.StringBorrowDefault = Owned
	case "borrowed", "":
	}

	return opts
}
