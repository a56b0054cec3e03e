package pyast

import "testing"

// Decode followed by Encode-then-Decode again must reproduce an
// equivalent tree; this is the CLI's only input boundary, so a lossy
// round trip would silently corrupt every transpile.
func TestDecodeEncodeRoundTripsAFunctionDef(t *testing.T) {
	mod := &Module{Body: []Stmt{
		&FunctionDef{
			Name:    "add",
			Returns: &Name{Id: "int"},
			Params: []Param{
				{Name: "a", Annotation: &Name{Id: "int"}},
				{Name: "b", Annotation: &Name{Id: "int"}, Default: &Literal{Kind: LitInt, Raw: "0"}},
			},
			Body: []Stmt{
				&Return{Value: &BinOp{Op: "+", Left: &Name{Id: "a"}, Right: &Name{Id: "b"}}},
			},
			Decorators: []Decorator{{Name: "staticmethod"}},
		},
	}}

	data, err := Encode(mod)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(got.Body) != 1 {
		t.Fatalf("expected 1 top-level statement, got %d", len(got.Body))
	}

	fn, ok := got.Body[0].(*FunctionDef)
	if !ok {
		t.Fatalf("expected a FunctionDef, got %T", got.Body[0])
	}

	if fn.Name != "add" || len(fn.Params) != 2 || fn.Params[1].Default == nil {
		t.Fatalf("round trip lost function shape: %+v", fn)
	}

	ret, ok := fn.Body[0].(*Return)
	if !ok {
		t.Fatalf("expected a Return, got %T", fn.Body[0])
	}

	bin, ok := ret.Value.(*BinOp)
	if !ok || bin.Op != "+" {
		t.Fatalf("expected a + BinOp return value, got %+v", ret.Value)
	}

	if len(fn.Decorators) != 1 || fn.Decorators[0].Name != "staticmethod" {
		t.Fatalf("expected the staticmethod decorator to survive, got %+v", fn.Decorators)
	}
}

// A bare `return` with no value, and a Slice with only a start bound,
// exercise the optional-Expr null path on both sides of the wire.
func TestDecodeEncodeRoundTripsOptionalExprsAsNull(t *testing.T) {
	mod := &Module{Body: []Stmt{
		&Return{},
		&ExprStmt{Value: &Slice{Object: &Name{Id: "xs"}, Start: &Literal{Kind: LitInt, Raw: "1"}}},
	}}

	data, err := Encode(mod)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	ret, ok := got.Body[0].(*Return)
	if !ok || ret.Value != nil {
		t.Fatalf("expected a bare return with nil Value, got %+v", got.Body[0])
	}

	stmt, ok := got.Body[1].(*ExprStmt)
	if !ok {
		t.Fatalf("expected an ExprStmt, got %T", got.Body[1])
	}

	sl, ok := stmt.Value.(*Slice)
	if !ok {
		t.Fatalf("expected a Slice, got %T", stmt.Value)
	}

	if sl.Start == nil || sl.Stop != nil || sl.Step != nil {
		t.Fatalf("expected only Start to survive as non-nil, got %+v", sl)
	}
}

// Decode rejects an unrecognized node kind rather than silently dropping
// it, since a malformed upstream parser dump should fail loudly.
func TestDecodeRejectsUnknownStmtKind(t *testing.T) {
	if _, err := Decode([]byte(`{"span":{},"body":[{"kind":"not_a_real_kind"}]}`)); err == nil {
		t.Fatal("expected an error for an unrecognized stmt kind")
	}
}
