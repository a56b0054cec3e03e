// Package hir defines the High-level Intermediate Representation for the
// py2rs transpiler: a typed, analysis-friendly desugaring of the Python
// surface syntax produced by the AST bridge (internal/bridge) and consumed,
// stage by stage, by the analyzer, the type inferencer, the optimizer, and
// finally the code generator.
//
// HIR is a tree: ownership flows strictly downward (a Module owns its
// Functions and Classes, a Function owns its Body) and there are no cycles.
// Cross-function references are by name, resolved through the signature
// registry at codegen time rather than through a direct owning pointer.
package hir

import "github.com/py2rs-dev/py2rs/internal/position"

// Import is a single `import x` / `from x import y` surface import,
// resolved to a target-language `use` declaration at codegen time (§4.5.7).
type Import struct {
	Module  string
	Names   []string // empty for a bare `import module`
	Aliases map[string]string
	Span    position.Span
}

// TypeAlias is `X = SomeType` recognized as a type-level alias rather than
// a value binding.
type TypeAlias struct {
	Name string
	Type Type
	Span position.Span
}

// Protocol is a `class P(Protocol): ...` structural-typing declaration.
type Protocol struct {
	Name    string
	Methods []FunctionSig
	Span    position.Span
}

// FunctionSig is the shape of a protocol method (no body).
type FunctionSig struct {
	Name       string
	Params     []Param
	ReturnType Type
}

// Const is a module-level constant binding with a literal right-hand side
// (§4.5.6); non-literal module-level initializers are represented as
// ordinary Functions returning the lazily-initialized value, wrapped by
// codegen in a `once_cell`-style global.
type Const struct {
	Value Expr
	Name  string
	Type  Type
	Span  position.Span
	Lazy  bool
}

// Module is the top-level HIR container, owning ordered sequences of every
// module-level declaration kind (§3.1 HirProgram / HirModule).
type Module struct {
	Name      string
	Imports   []Import
	Aliases   []TypeAlias
	Protocols []Protocol
	Classes   []Class
	Consts    []Const
	Functions []Function
}

// FuncByName returns the module-local function with the given name, or nil.
func (m *Module) FuncByName(name string) *Function {
	for i := range m.Functions {
		if m.Functions[i].Name == name {
			return &m.Functions[i]
		}
	}

	return nil
}

// ClassByName returns the module-local class with the given name, or nil.
func (m *Module) ClassByName(name string) *Class {
	for i := range m.Classes {
		if m.Classes[i].Name == name {
			return &m.Classes[i]
		}
	}

	return nil
}

// Program wraps one or more modules making up a compilation unit. The core
// as specified always compiles a single module at a time (§5); Program
// exists for the multi-file driver outside the core to batch independent
// per-module compilations.
type Program struct {
	Modules []Module
}
