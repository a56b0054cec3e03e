package hir

import "github.com/py2rs-dev/py2rs/internal/position"

// Expr is implemented by every HIR expression node. Every variant carries
// its source span and a mutable inferred Type slot, non-destructively
// refined by the type inferencer (Unknown -> concrete, never the reverse).
type Expr interface {
	Span() position.Span
	InferredType() Type
	SetInferredType(Type)
	// Fallible reports whether this expression's evaluation is tagged as
	// able to raise (set by the type inferencer rule 7 for call sites,
	// and true a priori for raising subscript/index expressions once
	// resolved).
	Fallible() bool
	SetFallible(bool)
}

type exprBase struct {
	Sp    position.Span
	Typ   Type
	Fails bool
}

func (e *exprBase) Span() position.Span        { return e.Sp }
func (e *exprBase) InferredType() Type         { return e.Typ }
func (e *exprBase) SetInferredType(t Type)     { e.Typ = t }
func (e *exprBase) Fallible() bool             { return e.Fails }
func (e *exprBase) SetFallible(f bool)         { e.Fails = f }

// LiteralKind mirrors pyast.LiteralKind for HIR literals.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitBool
	LitNone
	LitBytes
)

// Literal is a constant value; Raw preserves the original source text
// (critical for negative integer literals, per §4.5.6).
type Literal struct {
	exprBase

	Raw  string
	Kind LiteralKind
}

// Var is a reference to a module-local definition, import, parameter, or
// local binding (the bridge never produces a Var that fails this
// invariant).
type Var struct {
	exprBase

	Name string
}

// Binary is an arithmetic/comparison/logical/bitwise binary operation.
type Binary struct {
	exprBase

	Left  Expr
	Right Expr
	Op    string
}

// Unary is negation / logical-not / bitwise-not.
type Unary struct {
	exprBase

	Operand Expr
	Op      string
}

// Call is a direct call to a named function (module-local, imported, or a
// known builtin).
type Call struct {
	exprBase

	FuncName string
	Args     []Expr
	Kwargs   map[string]Expr
	KwOrder  []string
}

// MethodCall is `object.method(args)`.
type MethodCall struct {
	exprBase

	Object  Expr
	Method  string
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

// Slice is `object[start:stop:step]`, any of which may be nil.
type Slice struct {
	exprBase

	Object Expr
	Start  Expr
	Stop   Expr
	Step   Expr
}

// ContainerKind mirrors pyast.ContainerKind.
type ContainerKind int

const (
	ContainerList ContainerKind = iota
	ContainerDict
	ContainerSet
	ContainerTuple
	ContainerFrozenSet
)

// Container is a list/dict/set/tuple/frozenset literal.
type Container struct {
	exprBase

	Kind       ContainerKind
	Elts       []Expr
	DictValues []Expr
}

// CompKind mirrors pyast.CompKind.
type CompKind int

const (
	CompList CompKind = iota
	CompDict
	CompSet
	CompGenerator
)

// CompClause is one `for target in iter if filters` clause.
type CompClause struct {
	Target  Expr
	Iter    Expr
	Filters []Expr
}

// Comp is a list/dict/set comprehension or a generator expression.
type Comp struct {
	exprBase

	Elt     Expr
	Key     Expr
	Kind    CompKind
	Clauses []CompClause
}

// FStringPart is one fragment of an f-string.
type FStringPart struct {
	Expr       Expr
	Literal    string
	FormatSpec string
}

// FString is an interpolated string literal.
type FString struct {
	exprBase

	Parts []FStringPart
}

// Lambda is an anonymous function expression.
type Lambda struct {
	exprBase

	Body   Expr
	Params []Param
}

// Ternary is `then if cond else else_`.
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

// Await is `await value`. Not lowered further (async/await is a Non-goal
// of the core beyond syntactic preservation).
type Await struct {
	exprBase

	Value Expr
}

// Starred is `*expr` in an unpacking context.
type Starred struct {
	exprBase

	Value Expr
}

// NamedExpr is the walrus operator.
type NamedExpr struct {
	exprBase

	Target Expr
	Value  Expr
}
