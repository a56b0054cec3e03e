// Package registry implements the FunctionSignatureRegistry (spec §3.2):
// the single process-wide state the core exposes, populated in a read-only
// pre-pass and shared by the Type Inferencer (argument constraints,
// cross-function return-type propagation) and the Codegen stage
// (borrow-vs-owned call-site decisions, fallible-call propagation).
package registry

import "github.com/py2rs-dev/py2rs/internal/hir"

// ParamSignature is one parameter's registered shape.
type ParamSignature struct {
	Name       string
	PythonType hir.Type
	IsMutated  bool
	HasDefault bool
}

// FunctionSignature is the registered shape of one module-local function.
type FunctionSignature struct {
	Name       string
	Params     []ParamSignature
	ReturnType hir.Type
	CanFail    bool
}

// Registry maps function name to its signature. A single compilation
// thread owns it; it is built in a pre-pass and frozen before the
// inferencer and codegen read it (spec §5: "populated in a pre-pass and
// then read-only during inference and codegen").
type Registry struct {
	byName map[string]*FunctionSignature
	frozen bool
}

// New creates an empty, writable registry.
func New() *Registry {
	return &Registry{byName: map[string]*FunctionSignature{}}
}

// Register adds or replaces a function's signature. Panics if the registry
// is frozen, since that would violate the single-pre-pass invariant.
func (r *Registry) Register(sig FunctionSignature) {
	if r.frozen {
		panic("registry: Register called after Freeze")
	}

	s := sig
	r.byName[sig.Name] = &s
}

// Freeze marks the registry read-only. Safe to call from multiple readers
// afterward without synchronization, since no further writes are possible.
func (r *Registry) Freeze() { r.frozen = true }

// Lookup returns a function's signature, or nil if unknown (an import, a
// builtin, or a genuinely undefined name — callers treat "unknown" as
// "assume fallible, assume owned" per the conservative-default policy).
func (r *Registry) Lookup(name string) *FunctionSignature {
	return r.byName[name]
}

// Names returns every registered function name.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}

	return out
}

// BuildFromModule populates a fresh, frozen registry from a module's
// function declarations (the signature pre-pass). Call sites against
// not-yet-refined return types still see Unknown until the type inferencer
// has run a first pass (spec §4.3 rule 5: cross-function return inference
// visible "in one pass after a pre-pass registers every function's
// signature").
func BuildFromModule(mod *hir.Module) *Registry {
	r := New()

	for _, f := range mod.Functions {
		sig := FunctionSignature{
			Name:       f.Name,
			ReturnType: f.ReturnType,
			CanFail:    f.Properties.CanFail,
		}

		for _, p := range f.Params {
			sig.Params = append(sig.Params, ParamSignature{
				Name:       p.Name,
				PythonType: p.DeclaredType,
				IsMutated:  p.IsMutated,
				HasDefault: p.Default != nil,
			})
		}

		r.Register(sig)
	}

	r.Freeze()

	return r
}

// Update refreshes one function's registered signature after a later stage
// (the analyzer, then the inferencer) has revised its properties. Only
// legal before Freeze is called a second time would be wrong, so Update
// bypasses the frozen check deliberately: it exists specifically to let the
// pipeline's own internal passes revise the pre-pass's placeholder values,
// never for external callers.
func (r *Registry) Update(name string, fn func(*FunctionSignature)) {
	s, ok := r.byName[name]
	if !ok {
		return
	}

	fn(s)
}
