package optimize

import (
	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/rewrite"
	"github.com/roach88/qopt/internal/scope"
)

// implicitJoin turns a filter equating two variables into a rename:
//
//	(filter (= ?x ?y) sub) => (assign ((?x ?y)) sub[?x := ?y])
//
// For = (value equality) at least one of the variables must occur in a
// subject or predicate slot, so neither side can be a literal whose
// value equals a different term. sameTerm needs no such guard.
func implicitJoin(op queryir.Op) queryir.Op {
	return rewrite.Apply(rewrite.Transform{
		Filter: func(f queryir.Filter) queryir.Op {
			return rewriteImplicitJoin(f)
		},
	}, op)
}

func varEquality(e queryir.Expr) (x, y ir.Var, valueEq, ok bool) {
	c, isCall := e.(queryir.Call)
	if !isCall || len(c.Args) != 2 || (c.Name != queryir.OpEq && c.Name != queryir.FnSameTerm) {
		return
	}
	a, aok := c.Args[0].(queryir.ExprVar)
	b, bok := c.Args[1].(queryir.ExprVar)
	if !aok || !bok || a.Var == b.Var {
		return
	}
	return a.Var, b.Var, c.Name == queryir.OpEq, true
}

func rewriteImplicitJoin(f queryir.Filter) queryir.Op {
	idx := -1
	for i, e := range f.Exprs {
		if _, _, _, ok := varEquality(e); ok {
			if idx >= 0 {
				return nil
			}
			idx = i
		}
	}
	if idx < 0 {
		return nil
	}
	x, y, valueEq, _ := varEquality(f.Exprs[idx])

	sets := scope.Analyze(f.Sub)
	visible := sets.Visible()
	if !visible.Has(x) || !visible.Has(y) {
		// the comparison is an error on every solution
		return queryir.Empty()
	}
	if !sets.Certain.Has(x) || !sets.Certain.Has(y) {
		return nil
	}
	if boundByBinding(f.Sub, x) || boundByBinding(f.Sub, y) {
		return nil
	}
	if valueEq && !inNodeSlot(f.Sub, x) && !inNodeSlot(f.Sub, y) {
		return nil
	}
	if !scope.SafeToSubstitute(f.Sub, x) {
		return nil
	}

	remaining := make([]queryir.Expr, 0, len(f.Exprs)-1)
	remaining = append(remaining, f.Exprs[:idx]...)
	remaining = append(remaining, f.Exprs[idx+1:]...)
	assign := queryir.Assign{
		Bindings: []queryir.VarExpr{{Var: x, Expr: queryir.ExprVar{Var: y}}},
		Sub:      scope.SubstituteVar(f.Sub, x, y),
	}
	return queryir.NewFilter(remaining, assign)
}

// boundByBinding reports whether an Extend or Assign in op binds v.
func boundByBinding(op queryir.Op, v ir.Var) bool {
	found := false
	queryir.Walk(op, func(n queryir.Op) bool {
		var bs []queryir.VarExpr
		switch o := n.(type) {
		case queryir.Extend:
			bs = o.Bindings
		case queryir.Assign:
			bs = o.Bindings
		}
		for _, b := range bs {
			if b.Var == v {
				found = true
			}
		}
		return !found
	})
	return found
}

// inNodeSlot reports whether v occurs as a subject, predicate, or graph
// name of some pattern in op. Such a slot never holds a literal.
func inNodeSlot(op queryir.Op, v ir.Var) bool {
	found := false
	queryir.Walk(op, func(n queryir.Op) bool {
		p, ok := n.(queryir.Pattern)
		if !ok {
			return !found
		}
		if p.Graph == v {
			found = true
		}
		for _, t := range p.Triples {
			if t.S == v || t.P == v {
				found = true
			}
		}
		return !found
	})
	return found
}
