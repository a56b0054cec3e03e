package pyast

import (
	"encoding/json"
	"fmt"

	"github.com/py2rs-dev/py2rs/internal/position"
)

// This file gives pyast a JSON wire format, following the same `"kind"`
// discriminator convention the rest of the codebase uses for tagged unions
// (internal/runtime/debug_inspector.go's DebugActorGraphEdgeKind in the
// teacher). It exists because the surface parser spec §6.1 treats as an
// external black box is not part of this module; cmd/py2rsc's transpile and
// check subcommands read a JSON-serialized Module produced upstream by
// that parser rather than raw .py source text.

// Decode parses a JSON-encoded Module, the CLI's boundary input format.
func Decode(data []byte) (*Module, error) {
	var w struct {
		Span position.Span    `json:"span"`
		Body []json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("pyast: decode module: %w", err)
	}

	body, err := decodeStmts(w.Body)
	if err != nil {
		return nil, err
	}

	return &Module{base: base{Sp: w.Span}, Body: body}, nil
}

// Encode serializes a Module to its JSON wire format.
func Encode(m *Module) ([]byte, error) {
	body, err := encodeStmts(m.Body)
	if err != nil {
		return nil, err
	}

	return json.Marshal(struct {
		Span position.Span     `json:"span"`
		Body []json.RawMessage `json:"body"`
	}{Span: m.Sp, Body: body})
}

func encodeStmts(ss []Stmt) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(ss))
	for i, s := range ss {
		raw, err := encodeStmt(s)
		if err != nil {
			return nil, err
		}
		out[i] = raw
	}
	return out, nil
}

func decodeStmts(raws []json.RawMessage) ([]Stmt, error) {
	out := make([]Stmt, len(raws))
	for i, raw := range raws {
		s, err := decodeStmt(raw)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func encodeExprs(es []Expr) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(es))
	for i, e := range es {
		raw, err := encodeExpr(e)
		if err != nil {
			return nil, err
		}
		out[i] = raw
	}
	return out, nil
}

func decodeExprs(raws []json.RawMessage) ([]Expr, error) {
	out := make([]Expr, len(raws))
	for i, raw := range raws {
		e, err := decodeExpr(raw)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// encodeExpr and decodeExprOpt treat a nil Expr as a JSON null, since many
// nodes (a bare `return`, an unannotated Param, a stepless Slice) carry
// optional children.
func encodeExprOpt(e Expr) (json.RawMessage, error) {
	if e == nil {
		return json.RawMessage("null"), nil
	}
	return encodeExpr(e)
}

func decodeExprOpt(raw json.RawMessage) (Expr, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return decodeExpr(raw)
}

func encodeExpr(e Expr) (json.RawMessage, error) {
	if e == nil {
		return json.RawMessage("null"), nil
	}

	var v any

	switch n := e.(type) {
	case *Literal:
		v = struct {
			Kind string      `json:"kind"`
			Span position.Span `json:"span"`
			Raw  string      `json:"raw"`
			LitKind LiteralKind `json:"lit_kind"`
		}{"literal", n.Sp, n.Raw, n.Kind}
	case *Name:
		v = struct {
			Kind string      `json:"kind"`
			Span position.Span `json:"span"`
			Id   string      `json:"id"`
		}{"name", n.Sp, n.Id}
	case *BinOp:
		left, err := encodeExpr(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := encodeExpr(n.Right)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind  string        `json:"kind"`
			Span  position.Span `json:"span"`
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
			Op    string        `json:"op"`
		}{"binop", n.Sp, left, right, n.Op}
	case *BoolOp:
		values, err := encodeExprs(n.Values)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind   string          `json:"kind"`
			Span   position.Span   `json:"span"`
			Op     string          `json:"op"`
			Values []json.RawMessage `json:"values"`
		}{"boolop", n.Sp, n.Op, values}
	case *Compare:
		left, err := encodeExpr(n.Left)
		if err != nil {
			return nil, err
		}
		rights, err := encodeExprs(n.Rights)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind   string          `json:"kind"`
			Span   position.Span   `json:"span"`
			Left   json.RawMessage `json:"left"`
			Ops    []string        `json:"ops"`
			Rights []json.RawMessage `json:"rights"`
		}{"compare", n.Sp, left, n.Ops, rights}
	case *UnaryOp:
		operand, err := encodeExpr(n.Operand)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind    string        `json:"kind"`
			Span    position.Span `json:"span"`
			Operand json.RawMessage `json:"operand"`
			Op      string        `json:"op"`
		}{"unaryop", n.Sp, operand, n.Op}
	case *Call:
		fn, err := encodeExpr(n.Func)
		if err != nil {
			return nil, err
		}
		args, err := encodeExprs(n.Args)
		if err != nil {
			return nil, err
		}
		kwargs := map[string]json.RawMessage{}
		for k, val := range n.Kwargs {
			raw, err := encodeExpr(val)
			if err != nil {
				return nil, err
			}
			kwargs[k] = raw
		}
		v = struct {
			Kind    string                   `json:"kind"`
			Span    position.Span            `json:"span"`
			Func    json.RawMessage          `json:"func"`
			Args    []json.RawMessage        `json:"args"`
			Kwargs  map[string]json.RawMessage `json:"kwargs"`
			KwOrder []string                 `json:"kw_order"`
		}{"call", n.Sp, fn, args, kwargs, n.KwOrder}
	case *Attribute:
		obj, err := encodeExpr(n.Object)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind   string        `json:"kind"`
			Span   position.Span `json:"span"`
			Object json.RawMessage `json:"object"`
			Name   string        `json:"name"`
		}{"attribute", n.Sp, obj, n.Name}
	case *Subscript:
		obj, err := encodeExpr(n.Object)
		if err != nil {
			return nil, err
		}
		idx, err := encodeExpr(n.Index)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind   string        `json:"kind"`
			Span   position.Span `json:"span"`
			Object json.RawMessage `json:"object"`
			Index  json.RawMessage `json:"index"`
		}{"subscript", n.Sp, obj, idx}
	case *Slice:
		obj, err := encodeExpr(n.Object)
		if err != nil {
			return nil, err
		}
		start, err := encodeExprOpt(n.Start)
		if err != nil {
			return nil, err
		}
		stop, err := encodeExprOpt(n.Stop)
		if err != nil {
			return nil, err
		}
		step, err := encodeExprOpt(n.Step)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind   string        `json:"kind"`
			Span   position.Span `json:"span"`
			Object json.RawMessage `json:"object"`
			Start  json.RawMessage `json:"start"`
			Stop   json.RawMessage `json:"stop"`
			Step   json.RawMessage `json:"step"`
		}{"slice", n.Sp, obj, start, stop, step}
	case *Container:
		elts, err := encodeExprs(n.Elts)
		if err != nil {
			return nil, err
		}
		dictValues, err := encodeExprs(n.DictValues)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind       string            `json:"kind"`
			Span       position.Span     `json:"span"`
			ContKind   ContainerKind     `json:"cont_kind"`
			Elts       []json.RawMessage `json:"elts"`
			DictValues []json.RawMessage `json:"dict_values"`
		}{"container", n.Sp, n.Kind, elts, dictValues}
	case *Comprehension:
		elt, err := encodeExpr(n.Elt)
		if err != nil {
			return nil, err
		}
		key, err := encodeExprOpt(n.Key)
		if err != nil {
			return nil, err
		}
		gens := make([]wireGenerator, len(n.Generators))
		for i, g := range n.Generators {
			target, err := encodeExpr(g.Target)
			if err != nil {
				return nil, err
			}
			iter, err := encodeExpr(g.Iter)
			if err != nil {
				return nil, err
			}
			filters, err := encodeExprs(g.Filters)
			if err != nil {
				return nil, err
			}
			gens[i] = wireGenerator{target, iter, filters}
		}
		v = struct {
			Kind       string          `json:"kind"`
			Span       position.Span   `json:"span"`
			Elt        json.RawMessage `json:"elt"`
			Key        json.RawMessage `json:"key"`
			CompKind   CompKind        `json:"comp_kind"`
			Generators []wireGenerator `json:"generators"`
		}{"comprehension", n.Sp, elt, key, n.Kind, gens}
	case *FString:
		parts := make([]wireFStringPart, len(n.Parts))
		for i, p := range n.Parts {
			raw, err := encodeExprOpt(p.Expr)
			if err != nil {
				return nil, err
			}
			parts[i] = wireFStringPart{raw, p.Literal, p.FormatSpec}
		}
		v = struct {
			Kind  string            `json:"kind"`
			Span  position.Span    `json:"span"`
			Parts []wireFStringPart `json:"parts"`
		}{"fstring", n.Sp, parts}
	case *Lambda:
		body, err := encodeExpr(n.Body)
		if err != nil {
			return nil, err
		}
		params, err := encodeParams(n.Params)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind   string        `json:"kind"`
			Span   position.Span `json:"span"`
			Body   json.RawMessage `json:"body"`
			Params []wireParam   `json:"params"`
		}{"lambda", n.Sp, body, params}
	case *Ternary:
		cond, err := encodeExpr(n.Cond)
		if err != nil {
			return nil, err
		}
		then, err := encodeExpr(n.Then)
		if err != nil {
			return nil, err
		}
		els, err := encodeExpr(n.Else)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind string        `json:"kind"`
			Span position.Span `json:"span"`
			Cond json.RawMessage `json:"cond"`
			Then json.RawMessage `json:"then"`
			Else json.RawMessage `json:"else"`
		}{"ternary", n.Sp, cond, then, els}
	case *Yield:
		val, err := encodeExprOpt(n.Value)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind  string        `json:"kind"`
			Span  position.Span `json:"span"`
			Value json.RawMessage `json:"value"`
		}{"yield", n.Sp, val}
	case *YieldFrom:
		iter, err := encodeExpr(n.Iter)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind string        `json:"kind"`
			Span position.Span `json:"span"`
			Iter json.RawMessage `json:"iter"`
		}{"yield_from", n.Sp, iter}
	case *Await:
		val, err := encodeExpr(n.Value)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind  string        `json:"kind"`
			Span  position.Span `json:"span"`
			Value json.RawMessage `json:"value"`
		}{"await", n.Sp, val}
	case *Starred:
		val, err := encodeExpr(n.Value)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind  string        `json:"kind"`
			Span  position.Span `json:"span"`
			Value json.RawMessage `json:"value"`
		}{"starred", n.Sp, val}
	case *NamedExpr:
		target, err := encodeExpr(n.Target)
		if err != nil {
			return nil, err
		}
		val, err := encodeExpr(n.Value)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind   string        `json:"kind"`
			Span   position.Span `json:"span"`
			Target json.RawMessage `json:"target"`
			Value  json.RawMessage `json:"value"`
		}{"named_expr", n.Sp, target, val}
	default:
		return nil, fmt.Errorf("pyast: encode: unsupported expr type %T", e)
	}

	return json.Marshal(v)
}

type wireGenerator struct {
	Target  json.RawMessage   `json:"target"`
	Iter    json.RawMessage   `json:"iter"`
	Filters []json.RawMessage `json:"filters"`
}

type wireFStringPart struct {
	Expr       json.RawMessage `json:"expr"`
	Literal    string          `json:"literal"`
	FormatSpec string          `json:"format_spec"`
}

type wireParam struct {
	Annotation json.RawMessage `json:"annotation"`
	Default    json.RawMessage `json:"default"`
	Name       string          `json:"name"`
}

func encodeParams(ps []Param) ([]wireParam, error) {
	out := make([]wireParam, len(ps))
	for i, p := range ps {
		ann, err := encodeExprOpt(p.Annotation)
		if err != nil {
			return nil, err
		}
		def, err := encodeExprOpt(p.Default)
		if err != nil {
			return nil, err
		}
		out[i] = wireParam{ann, def, p.Name}
	}
	return out, nil
}

func decodeParams(ws []wireParam) ([]Param, error) {
	out := make([]Param, len(ws))
	for i, w := range ws {
		ann, err := decodeExprOpt(w.Annotation)
		if err != nil {
			return nil, err
		}
		def, err := decodeExprOpt(w.Default)
		if err != nil {
			return nil, err
		}
		out[i] = Param{Annotation: ann, Default: def, Name: w.Name}
	}
	return out, nil
}

func decodeExpr(raw json.RawMessage) (Expr, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("pyast: decode expr: %w", err)
	}

	switch head.Kind {
	case "literal":
		var w struct {
			Span    position.Span `json:"span"`
			Raw     string        `json:"raw"`
			LitKind LiteralKind   `json:"lit_kind"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &Literal{exprBase{base{w.Span}}, w.Raw, w.LitKind}, nil
	case "name":
		var w struct {
			Span position.Span `json:"span"`
			Id   string        `json:"id"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &Name{exprBase{base{w.Span}}, w.Id}, nil
	case "binop":
		var w struct {
			Span  position.Span   `json:"span"`
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
			Op    string          `json:"op"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		left, err := decodeExpr(w.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(w.Right)
		if err != nil {
			return nil, err
		}
		return &BinOp{exprBase{base{w.Span}}, left, right, w.Op}, nil
	case "boolop":
		var w struct {
			Span   position.Span     `json:"span"`
			Op     string            `json:"op"`
			Values []json.RawMessage `json:"values"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		values, err := decodeExprs(w.Values)
		if err != nil {
			return nil, err
		}
		return &BoolOp{exprBase{base{w.Span}}, w.Op, values}, nil
	case "compare":
		var w struct {
			Span   position.Span     `json:"span"`
			Left   json.RawMessage   `json:"left"`
			Ops    []string          `json:"ops"`
			Rights []json.RawMessage `json:"rights"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		left, err := decodeExpr(w.Left)
		if err != nil {
			return nil, err
		}
		rights, err := decodeExprs(w.Rights)
		if err != nil {
			return nil, err
		}
		return &Compare{exprBase{base{w.Span}}, left, w.Ops, rights}, nil
	case "unaryop":
		var w struct {
			Span    position.Span   `json:"span"`
			Operand json.RawMessage `json:"operand"`
			Op      string          `json:"op"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		operand, err := decodeExpr(w.Operand)
		if err != nil {
			return nil, err
		}
		return &UnaryOp{exprBase{base{w.Span}}, operand, w.Op}, nil
	case "call":
		var w struct {
			Span    position.Span              `json:"span"`
			Func    json.RawMessage            `json:"func"`
			Args    []json.RawMessage          `json:"args"`
			Kwargs  map[string]json.RawMessage `json:"kwargs"`
			KwOrder []string                   `json:"kw_order"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		fn, err := decodeExpr(w.Func)
		if err != nil {
			return nil, err
		}
		args, err := decodeExprs(w.Args)
		if err != nil {
			return nil, err
		}
		kwargs := map[string]Expr{}
		for k, raw := range w.Kwargs {
			e, err := decodeExpr(raw)
			if err != nil {
				return nil, err
			}
			kwargs[k] = e
		}
		return &Call{exprBase{base{w.Span}}, fn, args, kwargs, w.KwOrder}, nil
	case "attribute":
		var w struct {
			Span   position.Span   `json:"span"`
			Object json.RawMessage `json:"object"`
			Name   string          `json:"name"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		obj, err := decodeExpr(w.Object)
		if err != nil {
			return nil, err
		}
		return &Attribute{exprBase{base{w.Span}}, obj, w.Name}, nil
	case "subscript":
		var w struct {
			Span   position.Span   `json:"span"`
			Object json.RawMessage `json:"object"`
			Index  json.RawMessage `json:"index"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		obj, err := decodeExpr(w.Object)
		if err != nil {
			return nil, err
		}
		idx, err := decodeExpr(w.Index)
		if err != nil {
			return nil, err
		}
		return &Subscript{exprBase{base{w.Span}}, obj, idx}, nil
	case "slice":
		var w struct {
			Span   position.Span   `json:"span"`
			Object json.RawMessage `json:"object"`
			Start  json.RawMessage `json:"start"`
			Stop   json.RawMessage `json:"stop"`
			Step   json.RawMessage `json:"step"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		obj, err := decodeExpr(w.Object)
		if err != nil {
			return nil, err
		}
		start, err := decodeExprOpt(w.Start)
		if err != nil {
			return nil, err
		}
		stop, err := decodeExprOpt(w.Stop)
		if err != nil {
			return nil, err
		}
		step, err := decodeExprOpt(w.Step)
		if err != nil {
			return nil, err
		}
		return &Slice{exprBase{base{w.Span}}, obj, start, stop, step}, nil
	case "container":
		var w struct {
			Span       position.Span     `json:"span"`
			ContKind   ContainerKind     `json:"cont_kind"`
			Elts       []json.RawMessage `json:"elts"`
			DictValues []json.RawMessage `json:"dict_values"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		elts, err := decodeExprs(w.Elts)
		if err != nil {
			return nil, err
		}
		dictValues, err := decodeExprs(w.DictValues)
		if err != nil {
			return nil, err
		}
		return &Container{exprBase{base{w.Span}}, w.ContKind, elts, dictValues}, nil
	case "comprehension":
		var w struct {
			Span       position.Span   `json:"span"`
			Elt        json.RawMessage `json:"elt"`
			Key        json.RawMessage `json:"key"`
			CompKind   CompKind        `json:"comp_kind"`
			Generators []wireGenerator `json:"generators"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		elt, err := decodeExpr(w.Elt)
		if err != nil {
			return nil, err
		}
		key, err := decodeExprOpt(w.Key)
		if err != nil {
			return nil, err
		}
		gens := make([]Generator, len(w.Generators))
		for i, g := range w.Generators {
			target, err := decodeExpr(g.Target)
			if err != nil {
				return nil, err
			}
			iter, err := decodeExpr(g.Iter)
			if err != nil {
				return nil, err
			}
			filters, err := decodeExprs(g.Filters)
			if err != nil {
				return nil, err
			}
			gens[i] = Generator{target, iter, filters}
		}
		return &Comprehension{exprBase{base{w.Span}}, elt, key, w.CompKind, gens}, nil
	case "fstring":
		var w struct {
			Span  position.Span    `json:"span"`
			Parts []wireFStringPart `json:"parts"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		parts := make([]FStringPart, len(w.Parts))
		for i, p := range w.Parts {
			e, err := decodeExprOpt(p.Expr)
			if err != nil {
				return nil, err
			}
			parts[i] = FStringPart{e, p.Literal, p.FormatSpec}
		}
		return &FString{exprBase{base{w.Span}}, parts}, nil
	case "lambda":
		var w struct {
			Span   position.Span   `json:"span"`
			Body   json.RawMessage `json:"body"`
			Params []wireParam     `json:"params"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		body, err := decodeExpr(w.Body)
		if err != nil {
			return nil, err
		}
		params, err := decodeParams(w.Params)
		if err != nil {
			return nil, err
		}
		return &Lambda{exprBase{base{w.Span}}, body, params}, nil
	case "ternary":
		var w struct {
			Span position.Span   `json:"span"`
			Cond json.RawMessage `json:"cond"`
			Then json.RawMessage `json:"then"`
			Else json.RawMessage `json:"else"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeExpr(w.Then)
		if err != nil {
			return nil, err
		}
		els, err := decodeExpr(w.Else)
		if err != nil {
			return nil, err
		}
		return &Ternary{exprBase{base{w.Span}}, cond, then, els}, nil
	case "yield":
		var w struct {
			Span  position.Span   `json:"span"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		val, err := decodeExprOpt(w.Value)
		if err != nil {
			return nil, err
		}
		return &Yield{exprBase{base{w.Span}}, val}, nil
	case "yield_from":
		var w struct {
			Span position.Span   `json:"span"`
			Iter json.RawMessage `json:"iter"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		iter, err := decodeExpr(w.Iter)
		if err != nil {
			return nil, err
		}
		return &YieldFrom{exprBase{base{w.Span}}, iter}, nil
	case "await":
		var w struct {
			Span  position.Span   `json:"span"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		val, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return &Await{exprBase{base{w.Span}}, val}, nil
	case "starred":
		var w struct {
			Span  position.Span   `json:"span"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		val, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return &Starred{exprBase{base{w.Span}}, val}, nil
	case "named_expr":
		var w struct {
			Span   position.Span   `json:"span"`
			Target json.RawMessage `json:"target"`
			Value  json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		target, err := decodeExpr(w.Target)
		if err != nil {
			return nil, err
		}
		val, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return &NamedExpr{exprBase{base{w.Span}}, target, val}, nil
	default:
		return nil, fmt.Errorf("pyast: decode: unrecognized expr kind %q", head.Kind)
	}
}

func encodeStmt(s Stmt) (json.RawMessage, error) {
	var v any

	switch n := s.(type) {
	case *FunctionDef:
		returns, err := encodeExprOpt(n.Returns)
		if err != nil {
			return nil, err
		}
		params, err := encodeParams(n.Params)
		if err != nil {
			return nil, err
		}
		body, err := encodeStmts(n.Body)
		if err != nil {
			return nil, err
		}
		decorators := make([]wireDecorator, len(n.Decorators))
		for i, d := range n.Decorators {
			args, err := encodeExprs(d.Args)
			if err != nil {
				return nil, err
			}
			decorators[i] = wireDecorator{d.Name, args}
		}
		v = struct {
			Kind       string          `json:"kind"`
			Span       position.Span   `json:"span"`
			Returns    json.RawMessage `json:"returns"`
			Docstring  string          `json:"docstring"`
			Name       string          `json:"name"`
			Pragmas    []PragmaComment `json:"pragmas"`
			Params     []wireParam     `json:"params"`
			Body       []json.RawMessage `json:"body"`
			Decorators []wireDecorator `json:"decorators"`
		}{"function_def", n.Sp, returns, n.Docstring, n.Name, n.Pragmas, params, body, decorators}
	case *ClassDef:
		bases, err := encodeExprs(n.Bases)
		if err != nil {
			return nil, err
		}
		body, err := encodeStmts(n.Body)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind    string            `json:"kind"`
			Span    position.Span     `json:"span"`
			Name    string            `json:"name"`
			Bases   []json.RawMessage `json:"bases"`
			Body    []json.RawMessage `json:"body"`
			Pragmas []PragmaComment   `json:"pragmas"`
		}{"class_def", n.Sp, n.Name, bases, body, n.Pragmas}
	case *Assign:
		target, err := encodeExpr(n.Target)
		if err != nil {
			return nil, err
		}
		val, err := encodeExpr(n.Value)
		if err != nil {
			return nil, err
		}
		ann, err := encodeExprOpt(n.Annotation)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind       string        `json:"kind"`
			Span       position.Span `json:"span"`
			Target     json.RawMessage `json:"target"`
			Value      json.RawMessage `json:"value"`
			Annotation json.RawMessage `json:"annotation"`
		}{"assign", n.Sp, target, val, ann}
	case *AugAssign:
		target, err := encodeExpr(n.Target)
		if err != nil {
			return nil, err
		}
		val, err := encodeExpr(n.Value)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind   string        `json:"kind"`
			Span   position.Span `json:"span"`
			Target json.RawMessage `json:"target"`
			Op     string        `json:"op"`
			Value  json.RawMessage `json:"value"`
		}{"aug_assign", n.Sp, target, n.Op, val}
	case *If:
		cond, err := encodeExpr(n.Cond)
		if err != nil {
			return nil, err
		}
		then, err := encodeStmts(n.Then)
		if err != nil {
			return nil, err
		}
		els, err := encodeStmts(n.Else)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind string            `json:"kind"`
			Span position.Span     `json:"span"`
			Cond json.RawMessage   `json:"cond"`
			Then []json.RawMessage `json:"then"`
			Else []json.RawMessage `json:"else"`
		}{"if", n.Sp, cond, then, els}
	case *While:
		cond, err := encodeExpr(n.Cond)
		if err != nil {
			return nil, err
		}
		body, err := encodeStmts(n.Body)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind string            `json:"kind"`
			Span position.Span     `json:"span"`
			Cond json.RawMessage   `json:"cond"`
			Body []json.RawMessage `json:"body"`
		}{"while", n.Sp, cond, body}
	case *For:
		target, err := encodeExpr(n.Target)
		if err != nil {
			return nil, err
		}
		iter, err := encodeExpr(n.Iter)
		if err != nil {
			return nil, err
		}
		body, err := encodeStmts(n.Body)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind   string            `json:"kind"`
			Span   position.Span     `json:"span"`
			Target json.RawMessage   `json:"target"`
			Iter   json.RawMessage   `json:"iter"`
			Body   []json.RawMessage `json:"body"`
		}{"for", n.Sp, target, iter, body}
	case *Return:
		val, err := encodeExprOpt(n.Value)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind  string        `json:"kind"`
			Span  position.Span `json:"span"`
			Value json.RawMessage `json:"value"`
		}{"return", n.Sp, val}
	case *Break:
		v = struct {
			Kind  string        `json:"kind"`
			Span  position.Span `json:"span"`
			Label string        `json:"label"`
		}{"break", n.Sp, n.Label}
	case *Continue:
		v = struct {
			Kind  string        `json:"kind"`
			Span  position.Span `json:"span"`
			Label string        `json:"label"`
		}{"continue", n.Sp, n.Label}
	case *Raise:
		exc, err := encodeExprOpt(n.Exc)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind string        `json:"kind"`
			Span position.Span `json:"span"`
			Exc  json.RawMessage `json:"exc"`
		}{"raise", n.Sp, exc}
	case *Try:
		body, err := encodeStmts(n.Body)
		if err != nil {
			return nil, err
		}
		els, err := encodeStmts(n.Else)
		if err != nil {
			return nil, err
		}
		finally, err := encodeStmts(n.Finally)
		if err != nil {
			return nil, err
		}
		except := make([]wireExceptClause, len(n.Except))
		for i, ec := range n.Except {
			typ, err := encodeExprOpt(ec.Type)
			if err != nil {
				return nil, err
			}
			ecBody, err := encodeStmts(ec.Body)
			if err != nil {
				return nil, err
			}
			except[i] = wireExceptClause{typ, ec.Name, ecBody}
		}
		v = struct {
			Kind    string             `json:"kind"`
			Span    position.Span      `json:"span"`
			Body    []json.RawMessage  `json:"body"`
			Except  []wireExceptClause `json:"except"`
			Else    []json.RawMessage  `json:"else"`
			Finally []json.RawMessage  `json:"finally"`
		}{"try", n.Sp, body, except, els, finally}
	case *With:
		ctx, err := encodeExpr(n.Context)
		if err != nil {
			return nil, err
		}
		body, err := encodeStmts(n.Body)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind    string            `json:"kind"`
			Span    position.Span     `json:"span"`
			Context json.RawMessage   `json:"context"`
			Binding string            `json:"binding"`
			Body    []json.RawMessage `json:"body"`
		}{"with", n.Sp, ctx, n.Binding, body}
	case *Delete:
		target, err := encodeExpr(n.Target)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind   string        `json:"kind"`
			Span   position.Span `json:"span"`
			Target json.RawMessage `json:"target"`
		}{"delete", n.Sp, target}
	case *ExprStmt:
		val, err := encodeExpr(n.Value)
		if err != nil {
			return nil, err
		}
		v = struct {
			Kind  string        `json:"kind"`
			Span  position.Span `json:"span"`
			Value json.RawMessage `json:"value"`
		}{"expr_stmt", n.Sp, val}
	case *Pass:
		v = struct {
			Kind string        `json:"kind"`
			Span position.Span `json:"span"`
		}{"pass", n.Sp}
	case *Global:
		v = struct {
			Kind  string        `json:"kind"`
			Span  position.Span `json:"span"`
			Names []string      `json:"names"`
		}{"global", n.Sp, n.Names}
	case *Nonlocal:
		v = struct {
			Kind  string        `json:"kind"`
			Span  position.Span `json:"span"`
			Names []string      `json:"names"`
		}{"nonlocal", n.Sp, n.Names}
	default:
		return nil, fmt.Errorf("pyast: encode: unsupported stmt type %T", s)
	}

	return json.Marshal(v)
}

type wireDecorator struct {
	Name string            `json:"name"`
	Args []json.RawMessage `json:"args"`
}

type wireExceptClause struct {
	Type json.RawMessage   `json:"type"`
	Name string            `json:"name"`
	Body []json.RawMessage `json:"body"`
}

func decodeStmt(raw json.RawMessage) (Stmt, error) {
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("pyast: decode stmt: %w", err)
	}

	switch head.Kind {
	case "function_def":
		var w struct {
			Span       position.Span     `json:"span"`
			Returns    json.RawMessage   `json:"returns"`
			Docstring  string            `json:"docstring"`
			Name       string            `json:"name"`
			Pragmas    []PragmaComment   `json:"pragmas"`
			Params     []wireParam       `json:"params"`
			Body       []json.RawMessage `json:"body"`
			Decorators []wireDecorator   `json:"decorators"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		returns, err := decodeExprOpt(w.Returns)
		if err != nil {
			return nil, err
		}
		params, err := decodeParams(w.Params)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(w.Body)
		if err != nil {
			return nil, err
		}
		decorators := make([]Decorator, len(w.Decorators))
		for i, d := range w.Decorators {
			args, err := decodeExprs(d.Args)
			if err != nil {
				return nil, err
			}
			decorators[i] = Decorator{d.Name, args}
		}
		return &FunctionDef{stmtBase{base{w.Span}}, returns, w.Docstring, w.Name, w.Pragmas, params, body, decorators}, nil
	case "class_def":
		var w struct {
			Span    position.Span     `json:"span"`
			Name    string            `json:"name"`
			Bases   []json.RawMessage `json:"bases"`
			Body    []json.RawMessage `json:"body"`
			Pragmas []PragmaComment   `json:"pragmas"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		bases, err := decodeExprs(w.Bases)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(w.Body)
		if err != nil {
			return nil, err
		}
		return &ClassDef{stmtBase{base{w.Span}}, w.Name, bases, body, w.Pragmas}, nil
	case "assign":
		var w struct {
			Span       position.Span   `json:"span"`
			Target     json.RawMessage `json:"target"`
			Value      json.RawMessage `json:"value"`
			Annotation json.RawMessage `json:"annotation"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		target, err := decodeExpr(w.Target)
		if err != nil {
			return nil, err
		}
		val, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		ann, err := decodeExprOpt(w.Annotation)
		if err != nil {
			return nil, err
		}
		return &Assign{stmtBase{base{w.Span}}, target, val, ann}, nil
	case "aug_assign":
		var w struct {
			Span   position.Span   `json:"span"`
			Target json.RawMessage `json:"target"`
			Op     string          `json:"op"`
			Value  json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		target, err := decodeExpr(w.Target)
		if err != nil {
			return nil, err
		}
		val, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return &AugAssign{stmtBase{base{w.Span}}, target, w.Op, val}, nil
	case "if":
		var w struct {
			Span position.Span     `json:"span"`
			Cond json.RawMessage   `json:"cond"`
			Then []json.RawMessage `json:"then"`
			Else []json.RawMessage `json:"else"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeStmts(w.Then)
		if err != nil {
			return nil, err
		}
		els, err := decodeStmts(w.Else)
		if err != nil {
			return nil, err
		}
		return &If{stmtBase{base{w.Span}}, cond, then, els}, nil
	case "while":
		var w struct {
			Span position.Span     `json:"span"`
			Cond json.RawMessage   `json:"cond"`
			Body []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(w.Body)
		if err != nil {
			return nil, err
		}
		return &While{stmtBase{base{w.Span}}, cond, body}, nil
	case "for":
		var w struct {
			Span   position.Span     `json:"span"`
			Target json.RawMessage   `json:"target"`
			Iter   json.RawMessage   `json:"iter"`
			Body   []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		target, err := decodeExpr(w.Target)
		if err != nil {
			return nil, err
		}
		iter, err := decodeExpr(w.Iter)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(w.Body)
		if err != nil {
			return nil, err
		}
		return &For{stmtBase{base{w.Span}}, target, iter, body}, nil
	case "return":
		var w struct {
			Span  position.Span   `json:"span"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		val, err := decodeExprOpt(w.Value)
		if err != nil {
			return nil, err
		}
		return &Return{stmtBase{base{w.Span}}, val}, nil
	case "break":
		var w struct {
			Span  position.Span `json:"span"`
			Label string        `json:"label"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &Break{stmtBase{base{w.Span}}, w.Label}, nil
	case "continue":
		var w struct {
			Span  position.Span `json:"span"`
			Label string        `json:"label"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &Continue{stmtBase{base{w.Span}}, w.Label}, nil
	case "raise":
		var w struct {
			Span position.Span   `json:"span"`
			Exc  json.RawMessage `json:"exc"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		exc, err := decodeExprOpt(w.Exc)
		if err != nil {
			return nil, err
		}
		return &Raise{stmtBase{base{w.Span}}, exc}, nil
	case "try":
		var w struct {
			Span    position.Span      `json:"span"`
			Body    []json.RawMessage  `json:"body"`
			Except  []wireExceptClause `json:"except"`
			Else    []json.RawMessage  `json:"else"`
			Finally []json.RawMessage  `json:"finally"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		body, err := decodeStmts(w.Body)
		if err != nil {
			return nil, err
		}
		els, err := decodeStmts(w.Else)
		if err != nil {
			return nil, err
		}
		finally, err := decodeStmts(w.Finally)
		if err != nil {
			return nil, err
		}
		except := make([]ExceptClause, len(w.Except))
		for i, ec := range w.Except {
			typ, err := decodeExprOpt(ec.Type)
			if err != nil {
				return nil, err
			}
			ecBody, err := decodeStmts(ec.Body)
			if err != nil {
				return nil, err
			}
			except[i] = ExceptClause{typ, ec.Name, ecBody}
		}
		return &Try{stmtBase{base{w.Span}}, body, except, els, finally}, nil
	case "with":
		var w struct {
			Span    position.Span     `json:"span"`
			Context json.RawMessage   `json:"context"`
			Binding string            `json:"binding"`
			Body    []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		ctx, err := decodeExpr(w.Context)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(w.Body)
		if err != nil {
			return nil, err
		}
		return &With{stmtBase{base{w.Span}}, ctx, w.Binding, body}, nil
	case "delete":
		var w struct {
			Span   position.Span   `json:"span"`
			Target json.RawMessage `json:"target"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		target, err := decodeExpr(w.Target)
		if err != nil {
			return nil, err
		}
		return &Delete{stmtBase{base{w.Span}}, target}, nil
	case "expr_stmt":
		var w struct {
			Span  position.Span   `json:"span"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		val, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{stmtBase{base{w.Span}}, val}, nil
	case "pass":
		var w struct {
			Span position.Span `json:"span"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &Pass{stmtBase{base{w.Span}}}, nil
	case "global":
		var w struct {
			Span  position.Span `json:"span"`
			Names []string      `json:"names"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &Global{stmtBase{base{w.Span}}, w.Names}, nil
	case "nonlocal":
		var w struct {
			Span  position.Span `json:"span"`
			Names []string      `json:"names"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &Nonlocal{stmtBase{base{w.Span}}, w.Names}, nil
	default:
		return nil, fmt.Errorf("pyast: decode: unrecognized stmt kind %q", head.Kind)
	}
}
