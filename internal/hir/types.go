package hir

import "fmt"

// TypeKind tags the variant of a Type value (spec §3.1 "Type (tagged
// variant)").
type TypeKind int

const (
	TUnknown TypeKind = iota // solver variable, resolved by the inferencer
	TAny                     // escape hatch, top of the lattice

	TInt
	TFloat
	TBool
	TStr
	TBytes
	TNone

	TList
	TDict
	TSet
	TTuple
	TFrozenSet

	TOptional
	TUnion
	TCallable

	TIterator

	TClass
	TProtocol
	TTypeVar
)

func (k TypeKind) String() string {
	switch k {
	case TUnknown:
		return "Unknown"
	case TAny:
		return "Any"
	case TInt:
		return "Int"
	case TFloat:
		return "Float"
	case TBool:
		return "Bool"
	case TStr:
		return "Str"
	case TBytes:
		return "Bytes"
	case TNone:
		return "None"
	case TList:
		return "List"
	case TDict:
		return "Dict"
	case TSet:
		return "Set"
	case TTuple:
		return "Tuple"
	case TFrozenSet:
		return "FrozenSet"
	case TOptional:
		return "Optional"
	case TUnion:
		return "Union"
	case TCallable:
		return "Callable"
	case TIterator:
		return "Iterator"
	case TClass:
		return "Class"
	case TProtocol:
		return "Protocol"
	case TTypeVar:
		return "TypeVar"
	default:
		return "?"
	}
}

// Type is the tagged union of every type the inferencer and codegen reason
// about. Primitive kinds use no fields; container/compositional kinds use
// Params (element/key/value types in a fixed, kind-specific order); Callable
// uses Params for arg types plus Return; Class/Protocol/TypeVar use Name.
type Type struct {
	Name     string
	Params   []Type
	Return   *Type
	Kind     TypeKind
	TypeVarN int // stable id for solver variables, when Kind == TUnknown
}

func Unknown() Type                { return Type{Kind: TUnknown} }
func Any() Type                    { return Type{Kind: TAny} }
func Int() Type                    { return Type{Kind: TInt} }
func Float() Type                  { return Type{Kind: TFloat} }
func Bool() Type                   { return Type{Kind: TBool} }
func Str() Type                    { return Type{Kind: TStr} }
func Bytes() Type                  { return Type{Kind: TBytes} }
func NoneType() Type               { return Type{Kind: TNone} }
func List(elem Type) Type          { return Type{Kind: TList, Params: []Type{elem}} }
func Dict(k, v Type) Type          { return Type{Kind: TDict, Params: []Type{k, v}} }
func Set(elem Type) Type           { return Type{Kind: TSet, Params: []Type{elem}} }
func Tuple(elems ...Type) Type     { return Type{Kind: TTuple, Params: elems} }
func FrozenSet(elem Type) Type     { return Type{Kind: TFrozenSet, Params: []Type{elem}} }
func Optional(inner Type) Type     { return Type{Kind: TOptional, Params: []Type{inner}} }
func Union(alts ...Type) Type      { return Type{Kind: TUnion, Params: alts} }
func Iterator(elem Type) Type      { return Type{Kind: TIterator, Params: []Type{elem}} }
func Class(name string) Type       { return Type{Kind: TClass, Name: name} }
func Protocol(name string) Type    { return Type{Kind: TProtocol, Name: name} }
func TypeVar(name string) Type     { return Type{Kind: TTypeVar, Name: name} }

func Callable(args []Type, ret Type) Type {
	return Type{Kind: TCallable, Params: args, Return: &ret}
}

// Elem returns the single element type of a List/Set/FrozenSet/Iterator/
// Optional, or Unknown if the kind does not carry exactly one parameter.
func (t Type) Elem() Type {
	switch t.Kind {
	case TList, TSet, TFrozenSet, TIterator, TOptional:
		if len(t.Params) == 1 {
			return t.Params[0]
		}
	}

	return Unknown()
}

// DictKV returns the key and value types of a Dict, or Unknown, Unknown.
func (t Type) DictKV() (Type, Type) {
	if t.Kind == TDict && len(t.Params) == 2 {
		return t.Params[0], t.Params[1]
	}

	return Unknown(), Unknown()
}

// IsNumeric reports whether t is Int or Float.
func (t Type) IsNumeric() bool { return t.Kind == TInt || t.Kind == TFloat }

// IsContainer reports whether t is one of the container kinds.
func (t Type) IsContainer() bool {
	switch t.Kind {
	case TList, TDict, TSet, TTuple, TFrozenSet:
		return true
	default:
		return false
	}
}

// IsConcrete reports whether t (and, recursively, every parameter) is free
// of Unknown solver variables.
func (t Type) IsConcrete() bool {
	if t.Kind == TUnknown {
		return false
	}

	for _, p := range t.Params {
		if !p.IsConcrete() {
			return false
		}
	}

	if t.Return != nil && !t.Return.IsConcrete() {
		return false
	}

	return true
}

// Equal reports structural equality.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind || t.Name != o.Name || len(t.Params) != len(o.Params) {
		return false
	}

	for i := range t.Params {
		if !t.Params[i].Equal(o.Params[i]) {
			return false
		}
	}

	if (t.Return == nil) != (o.Return == nil) {
		return false
	}

	if t.Return != nil && !t.Return.Equal(*o.Return) {
		return false
	}

	return true
}

func (t Type) String() string {
	switch t.Kind {
	case TClass, TProtocol, TTypeVar:
		return t.Name
	case TCallable:
		return fmt.Sprintf("Callable[%v, %s]", t.Params, t.Return.String())
	default:
		if len(t.Params) == 0 {
			return t.Kind.String()
		}

		return fmt.Sprintf("%s%v", t.Kind.String(), t.Params)
	}
}
