package codegen

import (
	"fmt"

	"github.com/py2rs-dev/py2rs/internal/analyzer"
	"github.com/py2rs-dev/py2rs/internal/config"
	"github.com/py2rs-dev/py2rs/internal/diag"
	"github.com/py2rs-dev/py2rs/internal/registry"
)

// CodeGenContext carries the read-only state every emission function
// needs: the signature registry (call-site argument/return shape,
// can_fail for `?`-insertion), the analyzer's per-function facts (purity,
// mutation), the diagnostic bag codegen appends InternalBug/Unsupported
// entries to when it meets a shape it cannot emit, and the options a
// py2rs.yaml project file or CLI flag selected (§6.2).
type CodeGenContext struct {
	Registry *registry.Registry
	Facts    *analyzer.Facts
	Bag      *diag.Bag
	Options  config.CodegenOptions

	// currentFunc names the function currently being emitted, consulted to
	// look up per-parameter mutation facts for the active function.
	currentFunc string
	tempN       int

	// tempSeed is a short uuid assigned once per Generate call, so temp
	// names from two concurrently-transpiled modules (TranspileAll) never
	// collide if their output is ever concatenated into one crate. Left
	// empty by callers that build a CodeGenContext directly (tests), which
	// keeps freshTemp's plain counter form.
	tempSeed string

	// selfFields, when non-nil, names the locals of the function currently
	// being emitted that live as fields on a synthesized struct rather than
	// as plain Rust bindings — the generator state machine's case, where
	// every value that must survive a suspended `next()` call is a field,
	// not a stack local. Only Generator's own shallow copy of the context
	// sets this; the shared module-wide context always leaves it nil, so
	// ordinary function emission is unaffected.
	selfFields map[string]bool
}

// selfName returns "self.name" when name is one of the active generator's
// live-across-yield fields, and name unchanged otherwise.
func (c *CodeGenContext) selfName(name string) string {
	if c.selfFields != nil && c.selfFields[name] {
		return "self." + name
	}

	return name
}

func (c *CodeGenContext) freshTemp() string {
	c.tempN++

	if c.tempSeed == "" {
		return fmt.Sprintf("__cg_tmp%d", c.tempN)
	}

	return fmt.Sprintf("__cg_tmp_%s_%d", c.tempSeed, c.tempN)
}

func (c *CodeGenContext) paramMutated(name string) bool {
	if c.Facts == nil {
		return true
	}

	m, ok := c.Facts.Mutated[c.currentFunc]
	if !ok {
		return true
	}

	return m[name]
}
