package hir

import "github.com/py2rs-dev/py2rs/internal/position"

// Stmt is implemented by every HIR statement node.
type Stmt interface {
	Span() position.Span
	SetSpan(position.Span)
}

type stmtBase struct {
	Sp position.Span
}

func (s stmtBase) Span() position.Span     { return s.Sp }
func (s *stmtBase) SetSpan(sp position.Span) { s.Sp = sp }

// AssignTargetKind tags the shape of an Assign/AugAssign target.
type AssignTargetKind int

const (
	TargetSymbol AssignTargetKind = iota
	TargetSubscript
	TargetAttribute
	TargetTuple
)

// AssignTarget is the left-hand side of an Assign or AugAssign.
type AssignTarget struct {
	Object Expr // for Subscript/Attribute
	Index  Expr // for Subscript
	Name   string
	Attr   string
	Elts   []AssignTarget // for Tuple
	Kind   AssignTargetKind
}

// Assign is `target = value`, optionally carrying a declared annotation.
type Assign struct {
	stmtBase

	Target         AssignTarget
	Value          Expr
	TypeAnnotation *Type
	// NewBinding reports whether this assignment introduces Target.Name for
	// the first time in the enclosing scope (set by the bridge/analyzer and
	// consulted by codegen to decide `let` vs. re-binding, per §4.5.2).
	NewBinding bool
	// Mutable reports whether the analyzer determined Target.Name is
	// mutated later in its scope.
	Mutable bool
}

// AugAssign is `target op= value`.
type AugAssign struct {
	stmtBase

	Target AssignTarget
	Value  Expr
	Op     string
}

// If is `if condition: then_body else: else_body`.
type If struct {
	stmtBase

	Condition Expr
	ThenBody  []Stmt
	ElseBody  []Stmt
}

// While is `while condition: body`.
type While struct {
	stmtBase

	Condition Expr
	Body      []Stmt
}

// For is `for target in iter: body`.
type For struct {
	stmtBase

	Target Expr
	Iter   Expr
	Body   []Stmt
	// Mutates reports whether Body mutates elements of Iter, driving the
	// `.iter()` vs. `.iter_mut()` vs. `.into_iter()` choice in codegen.
	Mutates bool
}

// Return is `return expr`; Value is nil for a bare return.
type Return struct {
	stmtBase

	Value Expr
}

// Break is `break`.
type Break struct {
	stmtBase

	Label string
}

// Continue is `continue`.
type Continue struct {
	stmtBase

	Label string
}

// Raise is `raise expr`; Value is nil for a bare re-raise.
type Raise struct {
	stmtBase

	Value Expr
}

// ExceptClause is one `except Type as name: body` clause.
type ExceptClause struct {
	ExcType string
	Name    string
	Body    []Stmt
}

// Try is `try/except/else/finally`.
type Try struct {
	stmtBase

	Body    []Stmt
	Else    []Stmt
	Finally []Stmt
	Except  []ExceptClause
}

// With is `with ctx as binding: body`. The bridge keeps the `with` shape
// and does not rewrite it into a Try, so codegen emits the scoped-acquisition
// form directly (see §4.5.2).
type With struct {
	stmtBase

	Context Expr
	Binding string
	Body    []Stmt
	// ExitContract records what the context manager's __exit__ is known to
	// do, when statically determinable (e.g. "close", "unlock"); empty if
	// unknown, in which case codegen emits a generic scope-guard.
	ExitContract string
}

// Delete is `del target`.
type Delete struct {
	stmtBase

	Target AssignTarget
}

// ExprStmt wraps a bare expression statement.
type ExprStmt struct {
	stmtBase

	Value Expr
}

// Pass is a no-op statement.
type Pass struct{ stmtBase }

// Global declares names as referring to module scope.
type Global struct {
	stmtBase

	Names []string
}

// Nonlocal declares names as referring to an enclosing function scope.
type Nonlocal struct {
	stmtBase

	Names []string
}
