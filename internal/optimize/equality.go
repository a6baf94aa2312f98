package optimize

import (
	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/rewrite"
	"github.com/roach88/qopt/internal/scope"
)

// filterEquality specializes a filtered plan on equalities between a
// variable and an IRI or blank node:
//
//	(filter (= ?x <c>) sub) => (assign ((?x <c>)) sub[?x := <c>])
//
// Literal constants are left alone because value equality and term
// equality differ for them: 1 = 1.0 holds but the terms do not match.
func filterEquality(op queryir.Op) queryir.Op {
	return rewrite.Apply(rewrite.Transform{
		Filter: func(f queryir.Filter) queryir.Op {
			return specializeEquality(f.Exprs, f.Sub)
		},
	}, op)
}

// constEquality matches (= ?x c), (= c ?x), (sameTerm ?x c), and
// (sameTerm c ?x) where c is an IRI or blank node.
func constEquality(e queryir.Expr) (ir.Var, ir.Term, bool) {
	c, ok := e.(queryir.Call)
	if !ok || len(c.Args) != 2 || (c.Name != queryir.OpEq && c.Name != queryir.FnSameTerm) {
		return ir.Var{}, nil, false
	}
	if v, k, ok := varAndConst(c.Args[0], c.Args[1]); ok {
		return v, k, true
	}
	return varAndConst(c.Args[1], c.Args[0])
}

func varAndConst(a, b queryir.Expr) (ir.Var, ir.Term, bool) {
	v, ok := a.(queryir.ExprVar)
	if !ok {
		return ir.Var{}, nil, false
	}
	k, ok := b.(queryir.Const)
	if !ok {
		return ir.Var{}, nil, false
	}
	switch k.Term.(type) {
	case ir.IRI, ir.BlankNode:
		return v.Var, k.Term, true
	}
	return ir.Var{}, nil, false
}

// specializeEquality returns the specialized plan for Filter(exprs, sub),
// or nil when no equality can be used.
func specializeEquality(exprs []queryir.Expr, sub queryir.Op) queryir.Op {
	type candidate struct {
		v ir.Var
		c ir.Term
	}
	var order []candidate
	seen := map[ir.Var]ir.Term{}
	for _, e := range exprs {
		v, c, ok := constEquality(e)
		if !ok {
			continue
		}
		if prev, dup := seen[v]; dup {
			if prev != c {
				// (= ?x <a>) and (= ?x <b>): leave it to execution
				return nil
			}
			continue
		}
		seen[v] = c
		order = append(order, candidate{v, c})
	}
	if len(order) == 0 {
		return nil
	}

	sets := scope.Analyze(sub)
	visible := sets.Visible()
	for _, cand := range order {
		if !visible.Has(cand.v) {
			return queryir.Empty()
		}
	}

	var bindings []queryir.VarExpr
	used := ir.VarSet{}
	for _, cand := range order {
		if !sets.Certain.Has(cand.v) || !scope.SafeToSubstitute(sub, cand.v) {
			continue
		}
		sub = scope.Substitute(sub, cand.v, cand.c)
		bindings = append(bindings, queryir.VarExpr{Var: cand.v, Expr: queryir.C(cand.c)})
		used.Add(cand.v)
	}
	if len(bindings) == 0 {
		return nil
	}

	var remaining []queryir.Expr
	for _, e := range exprs {
		if v, _, ok := constEquality(e); ok && used.Has(v) {
			continue
		}
		remaining = append(remaining, e)
	}
	return queryir.NewFilter(remaining, queryir.Assign{Bindings: bindings, Sub: sub})
}
