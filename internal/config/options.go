// Package config implements the ambient project configuration layer:
// CodegenOptions (the knobs every pipeline entry point accepts, per
// spec.md §6.2) and the on-disk py2rs.yaml project file, loaded the way
// funxy.yaml is in the pack (gopkg.in/yaml.v3 unmarshal plus a validate/
// setDefaults pair) and version-gated with Masterminds/semver/v3 the way
// the teacher's package manager gates dependency constraints.
package config

// OverflowStrategy selects how emitted arithmetic handles integer
// overflow, per spec.md §6.2.
type OverflowStrategy int

const (
	// Panic emits plain operators; an overflow panics in debug builds and
	// wraps in release builds, matching Rust's own default.
	Panic OverflowStrategy = iota
	// Checked emits checked_add/checked_sub/checked_mul plus a runtime
	// error on overflow.
	Checked
	// Wrapping emits wrapping_add/wrapping_sub/wrapping_mul.
	Wrapping
)

func (s OverflowStrategy) String() string {
	switch s {
	case Checked:
		return "checked"
	case Wrapping:
		return "wrapping"
	default:
		return "panic"
	}
}

// StringBorrowDefault selects whether a string parameter with no mutation
// evidence defaults to an owned String or a borrowed &str, per spec.md
// §6.2.
type StringBorrowDefault int

const (
	Borrowed StringBorrowDefault = iota
	Owned
)

func (s StringBorrowDefault) String() string {
	if s == Owned {
		return "owned"
	}

	return "borrowed"
}

// CodegenOptions are the knobs every transpile.Transpile/HIRToTarget call
// accepts, exactly per spec.md §6.2.
type CodegenOptions struct {
	EmitDocstrings       bool
	PropertyTestStubs    bool
	StrictMutability     bool
	OverflowStrategy     OverflowStrategy
	StringBorrowDefault  StringBorrowDefault
}

// Default returns the options a bare `py2rsc transpile` invocation uses
// with no py2rs.yaml and no flags: docstrings preserved, no property-test
// stub generation, permissive (not strict) mutability inference, panicking
// overflow, and borrowed strings (the cheaper default for read-mostly
// parameters).
func Default() CodegenOptions {
	return CodegenOptions{
		EmitDocstrings:      true,
		PropertyTestStubs:   false,
		StrictMutability:    false,
		OverflowStrategy:    Panic,
		StringBorrowDefault: Borrowed,
	}
}
