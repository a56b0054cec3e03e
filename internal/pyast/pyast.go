// Package pyast defines the surface Python AST node set consumed by the
// bridge. It stands in for the external parser's output (spec §6.1: "a
// standard Python AST ... accessible by structural pattern matching"); the
// bridge depends only on node kinds and source spans, never on a specific
// parser implementation, so this package is intentionally a plain data
// model with no parsing logic of its own.
package pyast

import "github.com/py2rs-dev/py2rs/internal/position"

// Node is implemented by every surface AST node.
type Node interface {
	Span() position.Span
}

type base struct {
	Sp position.Span
}

func (b base) Span() position.Span { return b.Sp }

// Module is the top-level surface node for one source file.
type Module struct {
	base

	Body []Stmt
}

// --- Statements -------------------------------------------------------

// Stmt is implemented by every surface statement node.
type Stmt interface {
	Node
	stmtNode()
}

type stmtBase struct{ base }

func (stmtBase) stmtNode() {}

// Decorator is a single `@name(args)` or `@name` decorator application.
type Decorator struct {
	Name string
	Args []Expr
}

// Param is one function parameter in source order.
type Param struct {
	Annotation Expr // nil if unannotated
	Default    Expr // nil if no default
	Name       string
}

// FunctionDef is `def name(params) -> ret: body`.
type FunctionDef struct {
	stmtBase

	Returns    Expr
	Docstring  string
	Name       string
	Pragmas    []PragmaComment
	Params     []Param
	Body       []Stmt
	Decorators []Decorator
}

// PragmaComment is one `# @py2rs: key = value` line immediately preceding a
// function definition (spec §6.3).
type PragmaComment struct {
	Key   string
	Value string
}

// ClassDef is `class Name(bases): body`.
type ClassDef struct {
	stmtBase

	Name    string
	Bases   []Expr
	Body    []Stmt
	Pragmas []PragmaComment
}

// Assign is `target = value` with an optional `target: Type = value` form.
type Assign struct {
	stmtBase

	Target     Expr
	Value      Expr
	Annotation Expr // non-nil for `x: T = v`
}

// AugAssign is `target op= value`.
type AugAssign struct {
	stmtBase

	Target Expr
	Op     string
	Value  Expr
}

// If is `if cond: then else: else_`.
type If struct {
	stmtBase

	Cond Expr
	Then []Stmt
	Else []Stmt
}

// While is `while cond: body`.
type While struct {
	stmtBase

	Cond Expr
	Body []Stmt
}

// For is `for target in iter: body`.
type For struct {
	stmtBase

	Target Expr
	Iter   Expr
	Body   []Stmt
}

// Return is `return value` (Value is nil for a bare `return`).
type Return struct {
	stmtBase

	Value Expr
}

// Break is `break`, optionally out of a labeled loop introduced by the
// optimizer's nested-loop transform (surface Python has no labels; Label is
// always empty coming from the parser).
type Break struct {
	stmtBase

	Label string
}

// Continue is `continue`.
type Continue struct {
	stmtBase

	Label string
}

// Raise is `raise exc`.
type Raise struct {
	stmtBase

	Exc Expr
}

// ExceptClause is one `except Type as name: body` clause.
type ExceptClause struct {
	Type Expr
	Name string
	Body []Stmt
}

// Try is `try: body except ...: ... else: ... finally: ...`.
type Try struct {
	stmtBase

	Body    []Stmt
	Except  []ExceptClause
	Else    []Stmt
	Finally []Stmt
}

// With is `with ctx as name: body`.
type With struct {
	stmtBase

	Context Expr
	Binding string
	Body    []Stmt
}

// Delete is `del target`.
type Delete struct {
	stmtBase

	Target Expr
}

// ExprStmt wraps a bare expression statement.
type ExprStmt struct {
	stmtBase

	Value Expr
}

// Pass is `pass`.
type Pass struct{ stmtBase }

// Global is `global names...`.
type Global struct {
	stmtBase

	Names []string
}

// Nonlocal is `nonlocal names...`.
type Nonlocal struct {
	stmtBase

	Names []string
}

// --- Expressions --------------------------------------------------------

// Expr is implemented by every surface expression node.
type Expr interface {
	Node
	exprNode()
}

type exprBase struct{ base }

func (exprBase) exprNode() {}

// LiteralKind tags a Literal's value kind.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitBool
	LitNone
	LitBytes
)

// Literal is a constant value (spec HirExpr::Literal source).
type Literal struct {
	exprBase

	Raw  string // original source text, preserves sign/precision
	Kind LiteralKind
}

// Name is a bare identifier reference.
type Name struct {
	exprBase

	Id string
}

// BinOp is a binary arithmetic/bitwise/comparison-chain-free operator.
type BinOp struct {
	exprBase

	Left  Expr
	Right Expr
	Op    string
}

// BoolOp is `and`/`or` possibly chaining more than two operands.
type BoolOp struct {
	exprBase

	Op     string
	Values []Expr
}

// Compare is a (possibly chained) comparison: `a < b < c`.
type Compare struct {
	exprBase

	Left  Expr
	Ops   []string
	Rights []Expr
}

// UnaryOp is `-x`, `not x`, `~x`.
type UnaryOp struct {
	exprBase

	Operand Expr
	Op      string
}

// Call is `func_name(args, kw=kwargs)` where func_name resolves to a plain
// name (not an attribute access — those lower to MethodCall).
type Call struct {
	exprBase

	Func    Expr
	Args    []Expr
	Kwargs  map[string]Expr
	KwOrder []string
}

// Attribute is `object.name`.
type Attribute struct {
	exprBase

	Object Expr
	Name   string
}

// Subscript is `object[index]`.
type Subscript struct {
	exprBase

	Object Expr
	Index  Expr
}

// Slice is `object[start:stop:step]`.
type Slice struct {
	exprBase

	Object Expr
	Start  Expr
	Stop   Expr
	Step   Expr
}

// ContainerKind tags the family of a container literal.
type ContainerKind int

const (
	ContainerList ContainerKind = iota
	ContainerDict
	ContainerSet
	ContainerTuple
	ContainerFrozenSet
)

// Container is a list/dict/set/tuple/frozenset literal. For Dict, Elts
// holds keys and DictValues holds the matching values.
type Container struct {
	exprBase

	Kind       ContainerKind
	Elts       []Expr
	DictValues []Expr
}

// CompKind tags the family of a comprehension.
type CompKind int

const (
	CompList CompKind = iota
	CompDict
	CompSet
	CompGenerator
)

// Generator is one `for target in iter if filters...` clause of a
// comprehension.
type Generator struct {
	Target  Expr
	Iter    Expr
	Filters []Expr
}

// Comprehension is a list/dict/set/generator comprehension.
type Comprehension struct {
	exprBase

	Elt        Expr
	Key        Expr // non-nil only for CompDict (Elt holds the value)
	Kind       CompKind
	Generators []Generator
}

// FStringPart is one literal-text or interpolated-expression fragment of an
// f-string.
type FStringPart struct {
	Expr       Expr   // nil for a literal fragment
	Literal    string
	FormatSpec string
}

// FString is a Python formatted string literal.
type FString struct {
	exprBase

	Parts []FStringPart
}

// Lambda is `lambda params: body`.
type Lambda struct {
	exprBase

	Body   Expr
	Params []Param
}

// Ternary is `then_ if cond else else_`.
type Ternary struct {
	exprBase

	Cond Expr
	Then Expr
	Else Expr
}

// Yield is `yield value`.
type Yield struct {
	exprBase

	Value Expr
}

// YieldFrom is `yield from iter`.
type YieldFrom struct {
	exprBase

	Iter Expr
}

// Await is `await value`.
type Await struct {
	exprBase

	Value Expr
}

// Starred is `*expr` used in unpacking contexts.
type Starred struct {
	exprBase

	Value Expr
}

// NamedExpr is the walrus operator `target := value`.
type NamedExpr struct {
	exprBase

	Target Expr
	Value  Expr
}
