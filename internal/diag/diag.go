// Package diag implements the diagnostic taxonomy shared by every pipeline
// stage: bridge, analyzer, types, optimizer, codegen.
package diag

import (
	"fmt"
	"sort"

	"github.com/py2rs-dev/py2rs/internal/position"
)

// Kind is the error taxonomy from the error handling design: every
// diagnostic belongs to exactly one of these five categories.
type Kind int

const (
	// Unsupported marks a surface construct outside the supported subset.
	Unsupported Kind = iota
	// TypeError marks an inference constraint that could not be satisfied.
	TypeError
	// Ambiguity marks information that could not be determined (e.g. the
	// element type of an empty collection with no surrounding context).
	Ambiguity
	// Malformed marks a surface AST that violated its own invariants.
	Malformed
	// InternalBug marks a panic-guard tripped during codegen.
	InternalBug
)

func (k Kind) String() string {
	switch k {
	case Unsupported:
		return "unsupported"
	case TypeError:
		return "type-error"
	case Ambiguity:
		return "ambiguity"
	case Malformed:
		return "malformed"
	case InternalBug:
		return "internal-bug"
	default:
		return "unknown"
	}
}

// Aborts reports whether a diagnostic of this kind must abort lowering of
// the current function. Only Malformed and InternalBug abort; the rest are
// recorded and lowering continues with a placeholder.
func (k Kind) Aborts() bool {
	return k == Malformed || k == InternalBug
}

// Severity mirrors the levels a diagnostic may be reported at.
type Severity int

const (
	Error Severity = iota
	Warning
	Note
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// Diagnostic is a single reported issue, per spec §6.4.
type Diagnostic struct {
	Primary   position.Span
	Fix       *string
	Message   string
	Code      string
	Secondary []position.Span
	Severity  Severity
	Kind      Kind
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s[%s]: %s", d.Primary.String(), d.Severity, d.Code, d.Message)
	if d.Fix != nil {
		s += fmt.Sprintf(" (suggested fix: %s)", *d.Fix)
	}

	return s
}

// Bag accumulates diagnostics across a stage. A stage collects as many
// diagnostics as it can before returning, per the propagation policy.
type Bag struct {
	items []Diagnostic
}

// Add appends a diagnostic to the bag.
func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
}

// Unsupported is a convenience constructor for the most common diagnostic:
// a construct outside the supported subset.
func (b *Bag) Unsupported(code string, span position.Span, construct string) {
	b.Add(Diagnostic{
		Severity: Error,
		Kind:     Unsupported,
		Code:     code,
		Message:  fmt.Sprintf("unsupported construct: %s", construct),
		Primary:  span,
	})
}

// Ambiguous records an Ambiguity diagnostic.
func (b *Bag) Ambiguous(code string, span position.Span, message string) {
	b.Add(Diagnostic{Severity: Error, Kind: Ambiguity, Code: code, Message: message, Primary: span})
}

// TypeErrorf records a TypeError diagnostic with a formatted message.
func (b *Bag) TypeErrorf(code string, span position.Span, format string, args ...interface{}) {
	b.Add(Diagnostic{Severity: Error, Kind: TypeError, Code: code, Message: fmt.Sprintf(format, args...), Primary: span})
}

// Items returns the diagnostics in source order, grouped implicitly by the
// order they were recorded (bridge/analyzer/types/optimizer/codegen already
// walk the HIR in source order, so no extra sort key is needed beyond a
// stable ordering by span start).
func (b *Bag) Items() []Diagnostic {
	out := make([]Diagnostic, len(b.items))
	copy(out, b.items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Primary.Start.Before(out[j].Primary.Start)
	})

	return out
}

// HasErrors reports whether any diagnostic in the bag is severity Error.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == Error {
			return true
		}
	}

	return false
}

// Merge appends another bag's diagnostics into this one.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}

	b.items = append(b.items, other.items...)
}

// Len reports the number of recorded diagnostics.
func (b *Bag) Len() int { return len(b.items) }
