package types

import "github.com/py2rs-dev/py2rs/internal/hir"

// builtinReturnType resolves the result type of a handful of builtins whose
// shape the inferencer can pin down directly instead of falling through to
// Unknown; this is deliberately a small, closed set (the ones the analyzer
// and codegen builtin tables already special-case), not an attempt to model
// the full Python builtin surface.
func builtinReturnType(name string, args []hir.Expr, c *inferCtx) (hir.Type, bool) {
	switch name {
	case "len":
		return hir.Int(), true
	case "str":
		return hir.Str(), true
	case "int":
		return hir.Int(), true
	case "float":
		return hir.Float(), true
	case "bool":
		return hir.Bool(), true
	case "bytes":
		return hir.Bytes(), true
	case "list":
		if len(args) == 1 {
			if argT := c.solver.Resolve(args[0].InferredType()); argT.Kind != hir.TUnknown {
				return hir.List(argT.Elem()), true
			}
		}

		return hir.List(c.solver.Fresh()), true
	case "dict":
		return hir.Dict(c.solver.Fresh(), c.solver.Fresh()), true
	case "set":
		return hir.Set(c.solver.Fresh()), true
	case "sorted":
		if len(args) == 1 {
			if argT := c.solver.Resolve(args[0].InferredType()); argT.IsContainer() {
				return hir.List(argT.Elem()), true
			}
		}

		return hir.List(c.solver.Fresh()), true
	case "min", "max":
		// The empty-iterable adapters (internal/codegen's min/max builtin
		// table) decide the runtime fallback; the inferencer only needs the
		// element type, which for a single-container-argument call is the
		// container's element type.
		if len(args) == 1 {
			if argT := c.solver.Resolve(args[0].InferredType()); argT.IsContainer() {
				return argT.Elem(), true
			}
		}

		if len(args) > 0 {
			return c.solver.Resolve(args[0].InferredType()), true
		}

		return c.solver.Fresh(), true
	case "sum":
		return hir.Int(), true
	case "abs":
		if len(args) == 1 {
			return c.solver.Resolve(args[0].InferredType()), true
		}

		return hir.Int(), true
	case "range":
		return hir.Iterator(hir.Int()), true
	case "enumerate":
		if len(args) == 1 {
			elem := c.solver.Resolve(args[0].InferredType()).Elem()
			return hir.Iterator(hir.Tuple(hir.Int(), elem)), true
		}

		return hir.Iterator(hir.Tuple(hir.Int(), hir.Unknown())), true
	case "zip":
		return hir.Iterator(hir.Unknown()), true
	case "reversed":
		if len(args) == 1 {
			return c.solver.Resolve(args[0].InferredType()), true
		}

		return hir.Unknown(), false
	case "isinstance":
		return hir.Bool(), true
	}

	return hir.Type{}, false
}

// methodReturnType resolves the result type of the built-in str/list/dict/
// set methods codegen's method-mapping tables translate (§4.5.4); a method
// the inferencer does not recognize resolves to Unknown, which codegen
// treats as an untyped passthrough call.
func methodReturnType(method string, objType hir.Type) hir.Type {
	switch objType.Kind {
	case hir.TStr:
		switch method {
		case "upper", "lower", "strip", "lstrip", "rstrip", "replace", "format", "join", "capitalize", "title":
			return hir.Str()
		case "split", "splitlines":
			return hir.List(hir.Str())
		case "startswith", "endswith", "isdigit", "isalpha", "isspace", "isupper", "islower":
			return hir.Bool()
		case "find", "index", "count", "rfind":
			return hir.Int()
		}
	case hir.TList, hir.TSet, hir.TFrozenSet:
		switch method {
		case "append", "extend", "insert", "sort", "reverse", "add", "update", "clear", "discard":
			return hir.NoneType()
		case "pop":
			return objType.Elem()
		case "count", "index":
			return hir.Int()
		case "copy":
			return objType
		}
	case hir.TDict:
		k, v := objType.DictKV()

		switch method {
		case "get":
			return hir.Optional(v)
		case "pop", "setdefault":
			return v
		case "keys":
			return hir.Iterator(k)
		case "values":
			return hir.Iterator(v)
		case "items":
			return hir.Iterator(hir.Tuple(k, v))
		case "update", "clear":
			return hir.NoneType()
		case "copy":
			return objType
		}
	}

	return hir.Unknown()
}
