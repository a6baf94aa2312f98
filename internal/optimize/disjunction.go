package optimize

import (
	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/rewrite"
	"github.com/roach88/qopt/internal/scope"
)

// splitDisjunctions turns a filter on a || of equalities into a
// Disjunction with one specialized branch per equality:
//
//	(filter (|| (= ?x <a>) (|| (= ?x <b>) (lang ?x))) sub)
//	=> (disjunction
//	     (assign ((?x <a>)) sub[?x := <a>])
//	     (assign ((?x <b>)) sub[?x := <b>])
//	     (filter (exprlist (lang ?x) (!= ?x <a>) (!= ?x <b>)) sub))
//
// The inequality guards on the residual branch keep the branches
// mutually exclusive. Each list element is analysed on its own and a &&
// is never looked into; elements that cannot be split stay in a filter
// above the disjunction.
func splitDisjunctions(op queryir.Op) queryir.Op {
	return rewrite.Apply(rewrite.Transform{
		Filter: func(f queryir.Filter) queryir.Op {
			return splitDisjunctiveFilter(f.Exprs, f.Sub)
		},
	}, op)
}

func splitDisjunctiveFilter(exprs []queryir.Expr, sub queryir.Op) queryir.Op {
	var keep []queryir.Expr
	split := false
	for _, e := range exprs {
		leaves := disjuncts(e, nil)
		if len(leaves) > 1 {
			if out := splitOnEquality(leaves, sub); out != nil {
				sub = out
				split = true
				continue
			}
		}
		keep = append(keep, e)
	}
	if !split {
		return nil
	}
	return queryir.NewFilter(keep, sub)
}

func disjuncts(e queryir.Expr, out []queryir.Expr) []queryir.Expr {
	if c, ok := e.(queryir.Call); ok && c.Name == queryir.OpOr && len(c.Args) == 2 {
		out = disjuncts(c.Args[0], out)
		return disjuncts(c.Args[1], out)
	}
	return append(out, e)
}

// splitOnEquality picks the first variable with a usable equality leaf
// and builds the branches for it. Leaves on other variables join the
// residual branch.
func splitOnEquality(leaves []queryir.Expr, sub queryir.Op) queryir.Op {
	certain := scope.Certain(sub)
	var target ir.Var
	found := false
	for _, leaf := range leaves {
		v, _, ok := constEquality(leaf)
		if ok && certain.Has(v) && scope.SafeToSubstitute(sub, v) {
			target, found = v, true
			break
		}
	}
	if !found {
		return nil
	}

	var consts []ir.Term
	var residual []queryir.Expr
	for _, leaf := range leaves {
		v, c, ok := constEquality(leaf)
		if !ok || v != target {
			residual = append(residual, leaf)
			continue
		}
		dup := false
		for _, prev := range consts {
			if prev == c {
				dup = true
				break
			}
		}
		if !dup {
			consts = append(consts, c)
		}
	}

	branches := make([]queryir.Op, 0, len(consts)+1)
	for _, c := range consts {
		branches = append(branches, queryir.Assign{
			Bindings: []queryir.VarExpr{{Var: target, Expr: queryir.C(c)}},
			Sub:      scope.Substitute(sub, target, c),
		})
	}
	if len(residual) > 0 {
		cond := residual[0]
		for _, r := range residual[1:] {
			cond = queryir.Or(cond, r)
		}
		exprs := []queryir.Expr{cond}
		for _, c := range consts {
			exprs = append(exprs, queryir.Ne(queryir.ExprVar{Var: target}, queryir.C(c)))
		}
		branch := splitDisjunctiveFilter(exprs, sub)
		if branch == nil {
			branch = queryir.Filter{Exprs: exprs, Sub: sub}
		}
		branches = append(branches, branch)
	}
	if len(branches) == 1 {
		return branches[0]
	}
	return queryir.Disjunction{Elems: branches}
}
