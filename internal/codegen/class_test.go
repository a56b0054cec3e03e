package codegen

import (
	"strings"
	"testing"

	"github.com/py2rs-dev/py2rs/internal/diag"
	"github.com/py2rs-dev/py2rs/internal/hir"
)

// __init__'s direct self.field = expr assignments become the Self struct
// literal's fields, and a field the body never assigns directly falls back
// to Default::default().
func TestClassConstructorBuildsStructLiteralFromDirectAssignments(t *testing.T) {
	cls := &hir.Class{
		Name:   "Point",
		Fields: []hir.Field{{Name: "x", Type: hir.Int()}, {Name: "y", Type: hir.Int()}},
		Methods: []hir.Function{
			{
				Name:   "__init__",
				Params: []hir.Param{{Name: "self"}, {Name: "x", DeclaredType: hir.Int()}},
				Body: []hir.Stmt{
					&hir.Assign{
						Target: hir.AssignTarget{Kind: hir.TargetAttribute, Object: &hir.Var{Name: "self"}, Attr: "x"},
						Value:  varRef("x", hir.Int()),
					},
				},
			},
		},
	}

	c := &CodeGenContext{Bag: &diag.Bag{}}
	w := NewRustWriter()
	c.Class(w, cls)

	out := w.String()

	if !strings.Contains(out, "pub struct Point") {
		t.Fatalf("expected a Point struct definition, got:\n%s", out)
	}

	if !strings.Contains(out, "x: x,") {
		t.Fatalf("expected the direct self.x assignment to become a struct literal field, got:\n%s", out)
	}

	if !strings.Contains(out, "y: Default::default(),") {
		t.Fatalf("expected the never-assigned field y to fall back to Default::default(), got:\n%s", out)
	}
}

// A __eq__ method is routed to a PartialEq trait impl rather than the
// struct's own inherent impl block.
func TestClassRoutesDunderMethodToTraitImpl(t *testing.T) {
	cls := &hir.Class{
		Name: "Point",
		Methods: []hir.Function{
			{Name: "__eq__", Params: []hir.Param{{Name: "self"}, {Name: "other"}}, ReturnType: hir.Bool(), Body: []hir.Stmt{&hir.Return{Value: &hir.Literal{Kind: hir.LitBool, Raw: "true"}}}},
			{Name: "area", Params: []hir.Param{{Name: "self"}}, ReturnType: hir.Int(), Body: []hir.Stmt{&hir.Return{Value: &hir.Literal{Kind: hir.LitInt, Raw: "0"}}}},
		},
	}

	c := &CodeGenContext{Bag: &diag.Bag{}}
	w := NewRustWriter()
	c.Class(w, cls)

	out := w.String()

	if !strings.Contains(out, "impl PartialEq for Point") {
		t.Fatalf("expected __eq__ to be routed to a PartialEq impl, got:\n%s", out)
	}

	inherentIdx := strings.Index(out, "impl Point {")
	areaIdx := strings.Index(out, "fn area")
	traitIdx := strings.Index(out, "impl PartialEq for Point")

	if inherentIdx == -1 || areaIdx == -1 || areaIdx < inherentIdx || areaIdx > traitIdx {
		t.Fatalf("expected area to be emitted inside the inherent impl block, before the trait impl, got:\n%s", out)
	}
}

// A single base class becomes a delegating base field; the struct gets no
// inheritance keyword since Rust structs don't have one.
func TestClassSingleInheritanceBecomesBaseField(t *testing.T) {
	cls := &hir.Class{Name: "Dog", Bases: []string{"Animal"}}

	c := &CodeGenContext{Bag: &diag.Bag{}}
	w := NewRustWriter()
	c.Class(w, cls)

	if out := w.String(); !strings.Contains(out, "pub base: Animal,") {
		t.Fatalf("expected a base field delegating to Animal, got:\n%s", out)
	}
}
