package callgraph

import (
	"testing"

	"github.com/py2rs-dev/py2rs/internal/hir"
)

func TestBuildCollectsDirectCalls(t *testing.T) {
	mod := &hir.Module{
		Functions: []hir.Function{
			{
				Name: "f",
				Body: []hir.Stmt{
					&hir.ExprStmt{Value: &hir.Call{FuncName: "g", Args: []hir.Expr{&hir.Call{FuncName: "h"}}}},
				},
			},
			{Name: "g", Body: []hir.Stmt{&hir.Return{Value: &hir.Literal{Kind: hir.LitInt, Raw: "1"}}}},
			{Name: "h", Body: []hir.Stmt{&hir.Return{Value: &hir.Literal{Kind: hir.LitInt, Raw: "2"}}}},
		},
	}

	g := Build(mod)

	if !g.Calls["f"]["g"] || !g.Calls["f"]["h"] {
		t.Fatalf("expected f to call both g and h, got %v", g.Calls["f"])
	}

	if len(g.Calls["g"]) != 0 {
		t.Fatalf("expected g to call nothing, got %v", g.Calls["g"])
	}
}

func TestReverseTopologicalOrdersCalleeBeforeCaller(t *testing.T) {
	mod := &hir.Module{
		Functions: []hir.Function{
			{Name: "caller", Body: []hir.Stmt{&hir.ExprStmt{Value: &hir.Call{FuncName: "callee"}}}},
			{Name: "callee", Body: []hir.Stmt{&hir.Return{Value: &hir.Literal{Kind: hir.LitInt, Raw: "1"}}}},
		},
	}

	g := Build(mod)
	order := g.ReverseTopological()

	calleeIdx, callerIdx := -1, -1

	for i, name := range order {
		switch name {
		case "callee":
			calleeIdx = i
		case "caller":
			callerIdx = i
		}
	}

	if calleeIdx == -1 || callerIdx == -1 {
		t.Fatalf("expected both names in order, got %v", order)
	}

	if calleeIdx > callerIdx {
		t.Fatalf("expected callee before caller, got order %v", order)
	}
}

func TestCyclesDetectsMutualRecursion(t *testing.T) {
	mod := &hir.Module{
		Functions: []hir.Function{
			{Name: "even", Body: []hir.Stmt{&hir.ExprStmt{Value: &hir.Call{FuncName: "odd"}}}},
			{Name: "odd", Body: []hir.Stmt{&hir.ExprStmt{Value: &hir.Call{FuncName: "even"}}}},
			{Name: "standalone", Body: []hir.Stmt{&hir.Return{Value: &hir.Literal{Kind: hir.LitInt, Raw: "0"}}}},
		},
	}

	g := Build(mod)
	cycles := g.Cycles()

	if !cycles["even"] || !cycles["odd"] {
		t.Fatalf("expected even and odd to be flagged as cyclic, got %v", cycles)
	}

	if cycles["standalone"] {
		t.Fatal("expected standalone to not be flagged as cyclic")
	}
}
