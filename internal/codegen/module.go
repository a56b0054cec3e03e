package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/py2rs-dev/py2rs/internal/analyzer"
	"github.com/py2rs-dev/py2rs/internal/config"
	"github.com/py2rs-dev/py2rs/internal/diag"
	"github.com/py2rs-dev/py2rs/internal/hir"
	"github.com/py2rs-dev/py2rs/internal/registry"
	"github.com/py2rs-dev/py2rs/internal/types"
)

// stdlibImports is the curated Python-module-to-Rust-use mapping (§4.5.7);
// a module not listed here is skipped, since the generated code's only
// surface dependency is the accompanying py2rs_rt runtime crate.
var stdlibImports = map[string]string{
	"os":       "std::env",
	"sys":      "std::env",
	"math":     "std::f64::consts",
	"re":       "regex",
	"json":     "serde_json",
	"datetime": "chrono",
	"random":   "rand",
	"typing":   "", // structural only, emits nothing
}

// Generate renders a complete HIR module as Rust source text (§4.5): one
// pass over imports, protocols, aliases, constants, classes, and
// functions, in that order, threading the shared registry/facts/solution
// context every emission helper consults.
func Generate(mod *hir.Module, facts *analyzer.Facts, sol *types.Solution, reg *registry.Registry, opts config.CodegenOptions) (string, *diag.Bag) {
	bag := &diag.Bag{}
	c := &CodeGenContext{Registry: reg, Facts: facts, Bag: bag, Options: opts, tempSeed: uuid.New().String()[:8]}
	w := NewRustWriter()

	w.Line("#![allow(dead_code, unused_variables, unused_mut)]")
	w.Blank()

	emitImports(w, mod.Imports)

	for _, p := range mod.Protocols {
		emitProtocol(w, &p)
	}

	for _, a := range mod.Aliases {
		w.Line("pub type %s = %s;", a.Name, RustType(a.Type))
	}

	if len(mod.Aliases) > 0 {
		w.Blank()
	}

	for i := range mod.Consts {
		c.constDecl(w, &mod.Consts[i])
	}

	if len(mod.Consts) > 0 {
		w.Blank()
	}

	for i := range mod.Classes {
		c.Class(w, &mod.Classes[i])
	}

	for i := range mod.Functions {
		fn := &mod.Functions[i]

		if fn.Properties.IsGenerator {
			c.Generator(w, fn)
		} else {
			c.Function(w, fn)
		}

		w.Blank()
	}

	return w.String(), bag
}

func emitImports(w *RustWriter, imports []hir.Import) {
	names := make([]string, 0, len(imports))
	seen := map[string]bool{}

	for _, imp := range imports {
		target, ok := stdlibImports[imp.Module]
		if !ok || target == "" {
			continue
		}

		if seen[target] {
			continue
		}

		seen[target] = true
		names = append(names, target)
	}

	sort.Strings(names)

	for _, n := range names {
		w.Line("use %s;", n)
	}

	if len(names) > 0 {
		w.Blank()
	}
}

func emitProtocol(w *RustWriter, p *hir.Protocol) {
	w.OpenBlock("pub trait %s", p.Name)

	for _, m := range p.Methods {
		parts := make([]string, 0, len(m.Params))
		for _, prm := range m.Params {
			parts = append(parts, fmt.Sprintf("%s: %s", prm.Name, BorrowedParamType(prm.DeclaredType)))
		}

		w.Line("fn %s(&self, %s) -> %s;", m.Name, strings.Join(parts, ", "), RustType(m.ReturnType))
	}

	w.CloseBlock()
	w.Blank()
}

// constDecl emits a module-level constant. A Lazy const (a non-literal
// initializer, e.g. a call) becomes a once_cell::sync::Lazy static rather
// than a plain `const`, since Rust's `const` initializers must be
// evaluable at compile time.
func (c *CodeGenContext) constDecl(w *RustWriter, cst *hir.Const) {
	val := c.exprFor(cst.Value)

	if cst.Lazy {
		w.Line("pub static %s: once_cell::sync::Lazy<%s> = once_cell::sync::Lazy::new(|| %s);", cst.Name, RustType(cst.Type), val)
		return
	}

	w.Line("pub const %s: %s = %s;", cst.Name, RustType(cst.Type), val)
}
