package codegen

import (
	"github.com/py2rs-dev/py2rs/internal/analyzer"
	"testing"
)

func TestFreshTempProducesDistinctIncrementingNames(t *testing.T) {
	c := &CodeGenContext{}

	a := c.freshTemp()
	b := c.freshTemp()

	if a == b {
		t.Fatalf("expected distinct temp names, got %q twice", a)
	}

	if a != "__cg_tmp1" || b != "__cg_tmp2" {
		t.Fatalf("expected __cg_tmp1/__cg_tmp2, got %q/%q", a, b)
	}
}

func TestParamMutatedDefaultsTrueWithoutFacts(t *testing.T) {
	c := &CodeGenContext{currentFunc: "f"}

	if !c.paramMutated("x") {
		t.Fatal("expected paramMutated to default to true when no Facts are attached")
	}
}

func TestParamMutatedConsultsFactsForCurrentFunction(t *testing.T) {
	facts := &analyzer.Facts{Mutated: map[string]map[string]bool{
		"f": {"items": true, "n": false},
	}}

	c := &CodeGenContext{currentFunc: "f", Facts: facts}

	if !c.paramMutated("items") {
		t.Fatal("expected items to be reported mutated")
	}

	if c.paramMutated("n") {
		t.Fatal("expected n to be reported not mutated")
	}

	if c.paramMutated("unknown") {
		t.Fatal("expected an unregistered param name within a tracked function to default to false")
	}

	other := &CodeGenContext{currentFunc: "g", Facts: facts}
	if !other.paramMutated("items") {
		t.Fatal("expected an unregistered function name to default to true (conservative)")
	}
}
