package types

import (
	"github.com/py2rs-dev/py2rs/internal/diag"
	"github.com/py2rs-dev/py2rs/internal/hir"
	"github.com/py2rs-dev/py2rs/internal/registry"
)

// Solution is the final, per-function result of inference: every
// expression in the module has its InferredType slot filled in place
// (non-destructive refinement, Unknown -> concrete), and FuncVarTypes
// additionally exposes the per-variable map codegen's CodeGenContext reads
// to decide declarations vs. re-bindings.
type Solution struct {
	FuncVarTypes map[string]map[string]hir.Type
}

// env is one function's inference environment: variable name -> the type
// (possibly still an unresolved solver variable) currently bound to it.
type env struct {
	vars map[string]hir.Type
}

func newEnv() *env { return &env{vars: map[string]hir.Type{}} }

// Infer implements the Type Inferencer (spec §4.3) end to end: constraint
// collection bottom-up, solved with union-find, across two passes over the
// module so that cross-function return-type inference (rule 5) is visible
// to every caller in the same module.
func Infer(mod *hir.Module, reg *registry.Registry) (*Solution, *diag.Bag) {
	bag := &diag.Bag{}
	sol := &Solution{FuncVarTypes: map[string]map[string]hir.Type{}}

	// Pass 1: infer each function body independently; callee return types
	// not yet known default to Unknown at the call site.
	for i := range mod.Functions {
		inferFunction(&mod.Functions[i], reg, sol, bag)
	}

	applyReturnTypeInference(mod, reg)

	// Pass 2: re-run with the registry now carrying every function's
	// inferred return type, so a caller earlier in source order still sees
	// a callee declared later (rule 5: "visible to callers in the same
	// module in one pass after a pre-pass registers every function's
	// signature").
	for i := range mod.Functions {
		inferFunction(&mod.Functions[i], reg, sol, bag)
	}

	applyReturnTypeInference(mod, reg)

	// Class methods are not part of the module-local call graph the
	// registry tracks (spec §3.2 scopes the registry to free functions), so
	// a single pass over each method body is enough: a method's `self`
	// parameter already carries a concrete Class(...) type from the bridge,
	// and cross-method return inference isn't a rule this pass implements.
	for ci := range mod.Classes {
		for mi := range mod.Classes[ci].Methods {
			inferFunction(&mod.Classes[ci].Methods[mi], reg, sol, bag)
		}
	}

	tagFallibleCallSites(mod, reg)

	return sol, bag
}

func inferFunction(fn *hir.Function, reg *registry.Registry, sol *Solution, bag *diag.Bag) {
	s := NewSolver()
	e := newEnv()

	for i := range fn.Params {
		p := &fn.Params[i]
		if p.DeclaredType.Kind == hir.TUnknown {
			e.vars[p.Name] = seedParamDefault(s, p)
		} else {
			e.vars[p.Name] = p.DeclaredType
		}
	}

	// Rule 3: usage-driven parameter inference, before walking the body so
	// the refined types are available to every statement.
	usageDrivenParamInference(fn, reg, s, e)

	var ctx inferCtx
	ctx.solver = s
	ctx.env = e
	ctx.reg = reg
	ctx.bag = bag
	ctx.fn = fn

	ctx.inferStmts(fn.Body)

	varTypes := map[string]hir.Type{}
	for name, t := range e.vars {
		varTypes[name] = s.Resolve(t)
	}

	sol.FuncVarTypes[fn.Name] = varTypes

	for i := range fn.Params {
		resolved := s.Resolve(e.vars[fn.Params[i].Name])
		if resolved.Kind != hir.TUnknown {
			fn.Params[i].DeclaredType = resolved
		}
	}

	if fn.ReturnType.Kind == hir.TUnknown {
		if rt, ok := ctx.joinedReturnType(); ok {
			fn.ReturnType = rt
		}
	}
}

// seedParamDefault implements rule 2 (default-value inference): a
// parameter with default False/True is Bool; with None is
// Optional(Unknown); with an integer literal is Int.
func seedParamDefault(s *Solver, p *hir.Param) hir.Type {
	if lit, ok := p.Default.(*hir.Literal); ok {
		switch lit.Kind {
		case hir.LitBool:
			return hir.Bool()
		case hir.LitNone:
			return hir.Optional(s.Fresh())
		case hir.LitInt:
			return hir.Int()
		case hir.LitFloat:
			return hir.Float()
		case hir.LitString:
			return hir.Str()
		}
	}

	return s.Fresh()
}

// usageDrivenParamInference implements rule 3: an unannotated parameter
// that is subscripted, sliced, iterated in a for-loop, or passed to a
// function whose signature is known gets the most specific compatible type
// from that usage.
func usageDrivenParamInference(fn *hir.Function, reg *registry.Registry, s *Solver, e *env) {
	var walkExpr func(hir.Expr)

	var walkStmts func([]hir.Stmt)

	refine := func(name string, t hir.Type) {
		if cur, ok := e.vars[name]; ok {
			_ = s.Unify(cur, t)
		}
	}

	walkExpr = func(ex hir.Expr) {
		switch n := ex.(type) {
		case *hir.Subscript:
			if v, ok := n.Object.(*hir.Var); ok {
				refine(v.Name, hir.List(s.Fresh()))
			}

			walkExpr(n.Object)
			walkExpr(n.Index)
		case *hir.Slice:
			if v, ok := n.Object.(*hir.Var); ok {
				refine(v.Name, hir.List(s.Fresh()))
			}
		case *hir.Call:
			if sig := reg.Lookup(n.FuncName); sig != nil {
				for i, a := range n.Args {
					if i >= len(sig.Params) {
						break
					}

					if v, ok := a.(*hir.Var); ok && sig.Params[i].PythonType.Kind != hir.TUnknown {
						refine(v.Name, sig.Params[i].PythonType)
					}
				}
			}

			for _, a := range n.Args {
				walkExpr(a)
			}
		case *hir.Binary:
			walkExpr(n.Left)
			walkExpr(n.Right)
		}
	}

	walkStmts = func(ss []hir.Stmt) {
		for _, st := range ss {
			switch n := st.(type) {
			case *hir.For:
				if v, ok := n.Iter.(*hir.Var); ok {
					refine(v.Name, hir.List(s.Fresh()))
				}

				walkStmts(n.Body)
			case *hir.If:
				walkExpr(n.Condition)
				walkStmts(n.ThenBody)
				walkStmts(n.ElseBody)
			case *hir.While:
				walkExpr(n.Condition)
				walkStmts(n.Body)
			case *hir.ExprStmt:
				walkExpr(n.Value)
			case *hir.Assign:
				walkExpr(n.Value)
			case *hir.Return:
				if n.Value != nil {
					walkExpr(n.Value)
				}
			}
		}
	}

	walkStmts(fn.Body)
}

// inferCtx carries the mutable state of one function's bottom-up/top-down
// walk: the solver, the variable environment, the signature registry for
// argument/return constraints, the diagnostic bag, and the accumulated
// return-site types for rule 5.
type inferCtx struct {
	solver  *Solver
	env     *env
	reg     *registry.Registry
	bag     *diag.Bag
	fn      *hir.Function
	returns []hir.Type
}

func (c *inferCtx) joinedReturnType() (hir.Type, bool) {
	if len(c.returns) == 0 {
		return hir.Type{}, false
	}

	joined := c.solver.Resolve(c.returns[0])
	for _, t := range c.returns[1:] {
		r := c.solver.Resolve(t)
		if !r.Equal(joined) {
			// Heterogeneous returns join to Any, the safe escape hatch.
			return hir.Any(), true
		}
	}

	return joined, true
}

func (c *inferCtx) inferStmts(body []hir.Stmt) {
	for _, s := range body {
		c.inferStmt(s)
	}
}

func (c *inferCtx) inferStmt(s hir.Stmt) {
	switch n := s.(type) {
	case *hir.Assign:
		var ctxType *hir.Type

		if n.TypeAnnotation != nil {
			ctxType = n.TypeAnnotation
		} else if n.Target.Kind == hir.TargetSymbol {
			if t, ok := c.env.vars[n.Target.Name]; ok {
				ctxType = &t
			}
		}

		vt := c.infer(n.Value, ctxType)

		if n.Target.Kind == hir.TargetSymbol {
			if existing, ok := c.env.vars[n.Target.Name]; ok {
				_ = c.solver.Unify(existing, vt)
			} else {
				c.env.vars[n.Target.Name] = vt
			}
		} else {
			c.infer(n.Target.Object, nil)
			if n.Target.Index != nil {
				c.infer(n.Target.Index, nil)
			}
		}
	case *hir.AugAssign:
		c.infer(n.Value, nil)

		if n.Target.Kind == hir.TargetSymbol {
			c.infer(&hir.Var{Name: n.Target.Name}, nil)
		}
	case *hir.If:
		c.infer(n.Condition, nil)
		c.inferStmts(n.ThenBody)
		c.inferStmts(n.ElseBody)
	case *hir.While:
		c.infer(n.Condition, nil)
		c.inferStmts(n.Body)
	case *hir.For:
		elemT := c.solver.Fresh()
		c.infer(n.Iter, nil)

		if v, ok := n.Target.(*hir.Var); ok {
			c.env.vars[v.Name] = elemT
		}

		c.inferStmts(n.Body)
	case *hir.Return:
		if n.Value != nil {
			var ctxType *hir.Type
			if c.fn.ReturnType.Kind != hir.TUnknown {
				ctxType = &c.fn.ReturnType
			}

			t := c.infer(n.Value, ctxType)
			c.returns = append(c.returns, t)
		} else {
			c.returns = append(c.returns, hir.NoneType())
		}
	case *hir.Raise:
		if n.Value != nil {
			c.infer(n.Value, nil)
		}
	case *hir.Try:
		c.inferStmts(n.Body)

		for _, ec := range n.Except {
			c.inferStmts(ec.Body)
		}

		c.inferStmts(n.Else)
		c.inferStmts(n.Finally)
	case *hir.With:
		c.infer(n.Context, nil)

		if n.Binding != "" {
			c.env.vars[n.Binding] = c.solver.Fresh()
		}

		c.inferStmts(n.Body)
	case *hir.ExprStmt:
		c.infer(n.Value, nil)
	case *hir.Delete:
	}
}

// infer is the bidirectional workhorse: it infers e's type bottom-up, and
// when ctx is non-nil (an annotation is in scope — rule 1/4's "context"),
// unifies the inferred type against it so literal/container inference can
// descend through the annotation.
func (c *inferCtx) infer(e hir.Expr, ctx *hir.Type) hir.Type {
	if e == nil {
		return hir.Unknown()
	}

	var t hir.Type
	if cn, ok := e.(*hir.Container); ok {
		t = c.inferContainer(cn, ctx)
	} else {
		t = c.inferBottomUp(e)
	}

	if ctx != nil {
		if err := c.solver.Unify(t, *ctx); err != nil {
			c.bag.TypeErrorf("TYPES-0001", e.Span(), "%v", err)
		} else {
			t = *ctx
		}
	}

	resolved := c.solver.Resolve(t)
	e.SetInferredType(resolved)

	return t
}

func (c *inferCtx) inferBottomUp(e hir.Expr) hir.Type {
	switch n := e.(type) {
	case *hir.Literal:
		return c.inferLiteral(n)
	case *hir.Var:
		if t, ok := c.env.vars[n.Name]; ok {
			return t
		}

		fresh := c.solver.Fresh()
		c.env.vars[n.Name] = fresh

		return fresh
	case *hir.Binary:
		return c.inferBinary(n)
	case *hir.Unary:
		t := c.infer(n.Operand, nil)
		if n.Op == "not" {
			return hir.Bool()
		}

		return t
	case *hir.Call:
		return c.inferCall(n)
	case *hir.MethodCall:
		return c.inferMethodCall(n)
	case *hir.Attribute:
		c.infer(n.Object, nil)
		return c.solver.Fresh()
	case *hir.Subscript:
		objT := c.infer(n.Object, nil)
		c.infer(n.Index, nil)

		resolved := c.solver.Resolve(objT)
		switch resolved.Kind {
		case hir.TList, hir.TSet, hir.TFrozenSet:
			return resolved.Elem()
		case hir.TDict:
			_, v := resolved.DictKV()
			return v
		case hir.TStr:
			return hir.Str()
		}

		return c.solver.Fresh()
	case *hir.Slice:
		objT := c.infer(n.Object, nil)
		if n.Start != nil {
			c.infer(n.Start, nil)
		}

		if n.Stop != nil {
			c.infer(n.Stop, nil)
		}

		if n.Step != nil {
			c.infer(n.Step, nil)
		}

		return objT
	case *hir.Container:
		return c.inferContainer(n, nil)
	case *hir.Comp:
		return c.inferComp(n)
	case *hir.FString:
		for _, p := range n.Parts {
			if p.Expr != nil {
				c.infer(p.Expr, nil)
			}
		}

		return hir.Str()
	case *hir.Lambda:
		for _, p := range n.Params {
			c.env.vars[p.Name] = c.solver.Fresh()
		}

		rt := c.infer(n.Body, nil)
		args := make([]hir.Type, len(n.Params))

		for i, p := range n.Params {
			args[i] = c.env.vars[p.Name]
		}

		return hir.Callable(args, rt)
	case *hir.Ternary:
		c.infer(n.Cond, nil)
		thenT := c.infer(n.Then, nil)
		elseT := c.infer(n.Else, nil)
		_ = c.solver.Unify(thenT, elseT)

		return thenT
	case *hir.Yield:
		if n.Value != nil {
			return c.infer(n.Value, nil)
		}

		return hir.NoneType()
	case *hir.YieldFrom:
		return c.infer(n.Iter, nil)
	case *hir.Await:
		return c.infer(n.Value, nil)
	case *hir.Starred:
		return c.infer(n.Value, nil)
	case *hir.NamedExpr:
		v := c.infer(n.Value, nil)
		if tgt, ok := n.Target.(*hir.Var); ok {
			c.env.vars[tgt.Name] = v
		}

		return v
	default:
		return hir.Unknown()
	}
}

// inferLiteral implements rule 1: literal inference. Negative integer
// literals (Raw starting with "-") are still Int, never lost through a
// unary-negation lowering, because the bridge keeps the sign in Raw rather
// than wrapping the literal in a Unary node.
func (c *inferCtx) inferLiteral(n *hir.Literal) hir.Type {
	switch n.Kind {
	case hir.LitInt:
		return hir.Int()
	case hir.LitFloat:
		return hir.Float()
	case hir.LitString:
		return hir.Str()
	case hir.LitBool:
		return hir.Bool()
	case hir.LitNone:
		return hir.NoneType()
	case hir.LitBytes:
		return hir.Bytes()
	default:
		return hir.Unknown()
	}
}

// inferContainer implements rule 4 (deep generic context propagation): when
// ctx names a container type, the element/key/value positions descend
// recursively through Dict values, List elements, and Optional wrappers so
// that an innermost empty-literal `[]` inherits its element type from the
// surrounding annotation rather than defaulting to Unknown.
func (c *inferCtx) inferContainer(n *hir.Container, ctx *hir.Type) hir.Type {
	var elemCtx, keyCtx, valCtx *hir.Type

	if ctx != nil {
		descended := *ctx
		for descended.Kind == hir.TOptional && len(descended.Params) == 1 {
			descended = descended.Params[0]
		}

		switch descended.Kind {
		case hir.TList, hir.TSet, hir.TFrozenSet:
			if len(descended.Params) == 1 {
				elemCtx = &descended.Params[0]
			}
		case hir.TDict:
			if len(descended.Params) == 2 {
				keyCtx, valCtx = &descended.Params[0], &descended.Params[1]
			}
		}
	}

	switch n.Kind {
	case hir.ContainerList, hir.ContainerSet, hir.ContainerFrozenSet:
		var elem hir.Type
		if len(n.Elts) == 0 {
			if elemCtx != nil {
				elem = *elemCtx
			} else {
				elem = c.solver.Fresh()
			}
		} else {
			elem = c.infer(n.Elts[0], elemCtx)
			for _, el := range n.Elts[1:] {
				t := c.infer(el, elemCtx)
				_ = c.solver.Unify(elem, t)
			}
		}

		switch n.Kind {
		case hir.ContainerSet:
			return hir.Set(elem)
		case hir.ContainerFrozenSet:
			return hir.FrozenSet(elem)
		default:
			return hir.List(elem)
		}
	case hir.ContainerDict:
		var key, val hir.Type

		if len(n.Elts) == 0 {
			if keyCtx != nil {
				key = *keyCtx
			} else {
				key = c.solver.Fresh()
			}

			if valCtx != nil {
				val = *valCtx
			} else {
				val = c.solver.Fresh()
			}
		} else {
			key = c.infer(n.Elts[0], keyCtx)
			val = c.infer(n.DictValues[0], valCtx)

			for i := 1; i < len(n.Elts); i++ {
				kt := c.infer(n.Elts[i], keyCtx)
				vt := c.infer(n.DictValues[i], valCtx)
				_ = c.solver.Unify(key, kt)
				_ = c.solver.Unify(val, vt)
			}
		}

		return hir.Dict(key, val)
	case hir.ContainerTuple:
		elems := make([]hir.Type, len(n.Elts))
		for i, el := range n.Elts {
			elems[i] = c.infer(el, nil)
		}

		return hir.Tuple(elems...)
	default:
		return hir.Unknown()
	}
}

func (c *inferCtx) inferComp(n *hir.Comp) hir.Type {
	for _, cl := range n.Clauses {
		c.infer(cl.Iter, nil)

		if v, ok := cl.Target.(*hir.Var); ok {
			c.env.vars[v.Name] = c.solver.Fresh()
		}

		for _, f := range cl.Filters {
			c.infer(f, nil)
		}
	}

	switch n.Kind {
	case hir.CompDict:
		k := c.infer(n.Key, nil)
		v := c.infer(n.Elt, nil)

		return hir.Dict(k, v)
	case hir.CompSet:
		return hir.Set(c.infer(n.Elt, nil))
	case hir.CompGenerator:
		return hir.Iterator(c.infer(n.Elt, nil))
	default:
		return hir.List(c.infer(n.Elt, nil))
	}
}

// inferBinary implements rule 6: float/int coercion discipline. A binary
// op mixing Float and Int yields Float; the Int-literal operand (if any) is
// tagged by setting its own InferredType to Float so codegen knows to emit
// it with a fractional part or a widening cast.
func (c *inferCtx) inferBinary(n *hir.Binary) hir.Type {
	lt := c.infer(n.Left, nil)
	rt := c.infer(n.Right, nil)

	switch n.Op {
	case "<", ">", "<=", ">=", "==", "!=", "in", "not in":
		return hir.Bool()
	case "and", "or":
		return hir.Bool()
	}

	lr, rr := c.solver.Resolve(lt), c.solver.Resolve(rt)
	if lr.Kind == hir.TFloat && rr.Kind == hir.TInt {
		n.Right.SetInferredType(hir.Float())
		return hir.Float()
	}

	if rr.Kind == hir.TFloat && lr.Kind == hir.TInt {
		n.Left.SetInferredType(hir.Float())
		return hir.Float()
	}

	if lr.Kind == hir.TStr || rr.Kind == hir.TStr {
		return hir.Str()
	}

	if err := c.solver.Unify(lt, rt); err != nil {
		c.bag.TypeErrorf("TYPES-0002", n.Span(), "%v", err)
	}

	return lt
}

func (c *inferCtx) inferCall(n *hir.Call) hir.Type {
	for _, a := range n.Args {
		c.infer(a, nil)
	}

	for _, k := range n.KwOrder {
		c.infer(n.Kwargs[k], nil)
	}

	if sig := c.reg.Lookup(n.FuncName); sig != nil {
		return sig.ReturnType
	}

	if rt, ok := builtinReturnType(n.FuncName, n.Args, c); ok {
		return rt
	}

	return hir.Unknown()
}

func (c *inferCtx) inferMethodCall(n *hir.MethodCall) hir.Type {
	objT := c.infer(n.Object, nil)

	argTypes := make([]hir.Type, len(n.Args))
	for i, a := range n.Args {
		argTypes[i] = c.infer(a, nil)
	}

	resolved := c.solver.Resolve(objT)
	c.unifyMutatingMethodArgs(n, resolved, argTypes)

	return methodReturnType(n.Method, resolved)
}

// unifyMutatingMethodArgs implements rule 4's element-constraint clause:
// xs.append(e) unifies elem(typeof(xs)) with typeof(e), so a list built up
// via append/extend calls (rather than a typed literal) still recovers a
// concrete element type instead of falling through to Any.
func (c *inferCtx) unifyMutatingMethodArgs(n *hir.MethodCall, objT hir.Type, argTypes []hir.Type) {
	if objT.Kind != hir.TList && objT.Kind != hir.TSet && objT.Kind != hir.TFrozenSet {
		return
	}

	var elemArg hir.Type

	switch n.Method {
	case "append", "add":
		if len(argTypes) != 1 {
			return
		}

		elemArg = argTypes[0]
	case "insert":
		if len(argTypes) != 2 {
			return
		}

		elemArg = argTypes[1]
	case "extend", "update":
		if len(argTypes) != 1 {
			return
		}

		elemArg = c.solver.Resolve(argTypes[0]).Elem()
	default:
		return
	}

	if err := c.solver.Unify(objT.Elem(), elemArg); err != nil {
		c.bag.TypeErrorf("TYPES-0003", n.Span(), "%v", err)
	}
}

// applyReturnTypeInference writes each function's freshly inferred return
// type back into the registry so the next inference pass's call-site
// lookups see it (rule 5).
func applyReturnTypeInference(mod *hir.Module, reg *registry.Registry) {
	for _, f := range mod.Functions {
		reg.Update(f.Name, func(sig *registry.FunctionSignature) {
			sig.ReturnType = f.ReturnType
			sig.CanFail = f.Properties.CanFail
		})
	}
}

// tagFallibleCallSites implements rule 7: every call expression whose
// callee is tagged can_fail is marked Fallible, the tag codegen consults to
// decide `?`-insertion.
func tagFallibleCallSites(mod *hir.Module, reg *registry.Registry) {
	var walkExpr func(hir.Expr)

	var walkStmts func([]hir.Stmt)

	walkExpr = func(e hir.Expr) {
		switch n := e.(type) {
		case *hir.Call:
			if sig := reg.Lookup(n.FuncName); sig != nil && sig.CanFail {
				n.SetFallible(true)
			}

			for _, a := range n.Args {
				walkExpr(a)
			}
		case *hir.Binary:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *hir.Unary:
			walkExpr(n.Operand)
		case *hir.MethodCall:
			walkExpr(n.Object)

			for _, a := range n.Args {
				walkExpr(a)
			}
		case *hir.Ternary:
			walkExpr(n.Cond)
			walkExpr(n.Then)
			walkExpr(n.Else)
		case *hir.Subscript:
			walkExpr(n.Object)
			walkExpr(n.Index)
		case *hir.Container:
			for _, el := range n.Elts {
				walkExpr(el)
			}

			for _, el := range n.DictValues {
				walkExpr(el)
			}
		}
	}

	walkStmts = func(ss []hir.Stmt) {
		for _, s := range ss {
			switch n := s.(type) {
			case *hir.Assign:
				walkExpr(n.Value)
			case *hir.AugAssign:
				walkExpr(n.Value)
			case *hir.ExprStmt:
				walkExpr(n.Value)
			case *hir.Return:
				if n.Value != nil {
					walkExpr(n.Value)
				}
			case *hir.If:
				walkExpr(n.Condition)
				walkStmts(n.ThenBody)
				walkStmts(n.ElseBody)
			case *hir.While:
				walkExpr(n.Condition)
				walkStmts(n.Body)
			case *hir.For:
				walkExpr(n.Iter)
				walkStmts(n.Body)
			case *hir.Try:
				walkStmts(n.Body)

				for _, ec := range n.Except {
					walkStmts(ec.Body)
				}

				walkStmts(n.Finally)
			case *hir.With:
				walkStmts(n.Body)
			}
		}
	}

	for _, f := range mod.Functions {
		walkStmts(f.Body)
	}

	for _, cls := range mod.Classes {
		for _, m := range cls.Methods {
			walkStmts(m.Body)
		}
	}
}
