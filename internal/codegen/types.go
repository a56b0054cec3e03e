package codegen

import (
	"fmt"

	"github.com/py2rs-dev/py2rs/internal/hir"
)

// RustType renders a resolved hir.Type as the Rust type it lowers to
// (§4.5.1's type-mapping table). An Unknown that reaches codegen (the
// inferencer left a variable unconstrained) renders to Rust's inferred-type
// placeholder `_`, which is always legal in a `let` binding's position and
// in most other positions codegen puts a bare Unknown in.
func RustType(t hir.Type) string {
	switch t.Kind {
	case hir.TUnknown:
		return "_"
	case hir.TAny:
		return "PyAny"
	case hir.TInt:
		return "i64"
	case hir.TFloat:
		return "f64"
	case hir.TBool:
		return "bool"
	case hir.TStr:
		return "String"
	case hir.TBytes:
		return "Vec<u8>"
	case hir.TNone:
		return "()"
	case hir.TList:
		return fmt.Sprintf("Vec<%s>", RustType(t.Elem()))
	case hir.TDict:
		k, v := t.DictKV()
		return fmt.Sprintf("HashMap<%s, %s>", RustType(k), RustType(v))
	case hir.TSet:
		return fmt.Sprintf("HashSet<%s>", RustType(t.Elem()))
	case hir.TFrozenSet:
		return fmt.Sprintf("std::rc::Rc<HashSet<%s>>", RustType(t.Elem()))
	case hir.TTuple:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = RustType(p)
		}

		return "(" + joinComma(parts) + ")"
	case hir.TOptional:
		return fmt.Sprintf("Option<%s>", RustType(t.Elem()))
	case hir.TUnion:
		// No tagged-union generation in the supported subset; a Union
		// degrades to the dynamic escape hatch rather than synthesizing an
		// enum codegen has no name for.
		return "PyAny"
	case hir.TCallable:
		args := make([]string, len(t.Params))
		for i, p := range t.Params {
			args[i] = RustType(p)
		}

		ret := "()"
		if t.Return != nil {
			ret = RustType(*t.Return)
		}

		return fmt.Sprintf("impl Fn(%s) -> %s", joinComma(args), ret)
	case hir.TIterator:
		return fmt.Sprintf("impl Iterator<Item = %s>", RustType(t.Elem()))
	case hir.TClass, hir.TProtocol:
		return t.Name
	case hir.TTypeVar:
		return t.Name
	default:
		return "PyAny"
	}
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}

		out += p
	}

	return out
}

// BorrowedParamType renders the by-reference form of t for a function
// parameter Analyzer facts say is read-only (not mutated, not consumed):
// container and String/Vec types borrow as a slice/str reference; Copy
// primitives are passed by value regardless, since borrowing an i64/f64/
// bool/() behind a reference is never more efficient in Rust.
func BorrowedParamType(t hir.Type) string {
	switch t.Kind {
	case hir.TStr:
		return "&str"
	case hir.TList:
		return fmt.Sprintf("&[%s]", RustType(t.Elem()))
	case hir.TDict:
		k, v := t.DictKV()
		return fmt.Sprintf("&HashMap<%s, %s>", RustType(k), RustType(v))
	case hir.TSet:
		return fmt.Sprintf("&HashSet<%s>", RustType(t.Elem()))
	case hir.TClass:
		return "&" + t.Name
	default:
		return RustType(t)
	}
}

// IsCopyType reports whether t is Rust Copy (passed and returned by value
// with no ownership transfer concerns), driving codegen's decision to skip
// a `.clone()` call when re-reading a binding.
func IsCopyType(t hir.Type) bool {
	switch t.Kind {
	case hir.TInt, hir.TFloat, hir.TBool, hir.TNone:
		return true
	default:
		return false
	}
}
