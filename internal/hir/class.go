package hir

import "github.com/py2rs-dev/py2rs/internal/position"

// Field is one class field in declaration order.
type Field struct {
	Default Expr
	Name    string
	Type    Type
}

// ClassConst is a class-level constant (distinct from an instance Field:
// no per-instance storage, emitted as an associated constant).
type ClassConst struct {
	Value Expr
	Name  string
	Type  Type
}

// Class is a HIR class declaration (§3.1 HirClass). Method names are
// unique and at most one method is named "__init__"; both invariants are
// enforced by the bridge.
type Class struct {
	Name    string
	Bases   []string
	Fields  []Field
	Methods []Function
	Consts  []ClassConst
	Span    position.Span
}

// Init returns the class's `__init__` method, or nil if absent.
func (c *Class) Init() *Function {
	for i := range c.Methods {
		if c.Methods[i].Name == "__init__" {
			return &c.Methods[i]
		}
	}

	return nil
}

// MethodByName returns a method by name, or nil.
func (c *Class) MethodByName(name string) *Function {
	for i := range c.Methods {
		if c.Methods[i].Name == name {
			return &c.Methods[i]
		}
	}

	return nil
}

// UniqueMethodNames reports whether method names are unique and at most one
// __init__ is present.
func (c *Class) UniqueMethodNames() bool {
	seen := make(map[string]int, len(c.Methods))
	for _, m := range c.Methods {
		seen[m.Name]++
	}

	for name, n := range seen {
		if n > 1 {
			return false
		}

		if name == "__init__" && n > 1 {
			return false
		}
	}

	return true
}

// dunderTraits maps Python dunder method names to the target trait/protocol
// they implement (§4.5.4).
var dunderTraits = map[string]string{
	"__eq__":      "PartialEq",
	"__lt__":      "PartialOrd",
	"__add__":     "Add",
	"__sub__":     "Sub",
	"__mul__":     "Mul",
	"__len__":     "len", // inherent method, not a trait, per Rust convention
	"__contains__": "Contains",
	"__getitem__":  "Index",
	"__setitem__":  "IndexMut",
	"__iter__":     "IntoIterator",
	"__next__":     "Iterator",
	"__str__":      "Display",
	"__repr__":     "Debug",
}

// DunderTrait returns the target trait name for a dunder method, and
// whether it is recognized.
func DunderTrait(name string) (string, bool) {
	t, ok := dunderTraits[name]
	return t, ok
}
