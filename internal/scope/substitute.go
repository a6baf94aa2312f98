package scope

import (
	"fmt"

	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/rewrite"
)

// Substitute replaces v by the constant term c in every pattern slot and
// expression of op. Binding targets, projections, and table columns keep
// the variable; callers check SafeToSubstitute first.
func Substitute(op queryir.Op, v ir.Var, c ir.Term) queryir.Op {
	return SubstituteVar(op, v, c)
}

// SubstituteVar replaces v by t (a constant or another variable) in every
// pattern slot and expression of op.
func SubstituteVar(op queryir.Op, v ir.Var, t ir.Term) queryir.Op {
	var replacement queryir.Expr = queryir.Const{Term: t}
	if tv, ok := t.(ir.Var); ok {
		replacement = queryir.ExprVar{Var: tv}
	}
	subst := map[ir.Var]queryir.Expr{v: replacement}
	mapExpr := func(e queryir.Expr) queryir.Expr {
		return queryir.SubstituteExpr(e, subst)
	}
	mapTerm := func(x ir.Term) ir.Term {
		if x == v {
			return t
		}
		return x
	}
	byExprs := func(o queryir.Op) queryir.Op {
		return rewrite.MapNodeExprs(o, mapExpr)
	}

	return rewrite.Apply(rewrite.Transform{
		Pattern: func(p queryir.Pattern) queryir.Op {
			if !queryir.PatternVars(p).Has(v) {
				return nil
			}
			triples := make([]ir.Triple, len(p.Triples))
			for i, tr := range p.Triples {
				triples[i] = ir.Triple{S: mapTerm(tr.S), P: mapTerm(tr.P), O: mapTerm(tr.O)}
			}
			var graph ir.Term
			if p.Graph != nil {
				graph = mapTerm(p.Graph)
			}
			return queryir.Pattern{Graph: graph, Triples: triples}
		},
		Filter:   func(o queryir.Filter) queryir.Op { return byExprs(o) },
		LeftJoin: func(o queryir.LeftJoin) queryir.Op { return byExprs(o) },
		Extend:   func(o queryir.Extend) queryir.Op { return byExprs(o) },
		Assign:   func(o queryir.Assign) queryir.Op { return byExprs(o) },
		Order:    func(o queryir.Order) queryir.Op { return byExprs(o) },
		Top:      func(o queryir.Top) queryir.Op { return byExprs(o) },
		Group:    func(o queryir.Group) queryir.Op { return byExprs(o) },
		// a sub-select that does not export v has its own v
		Descend: func(n queryir.Op) bool {
			if p, ok := n.(queryir.Project); ok {
				return ir.NewVarSet(p.Vars...).Has(v)
			}
			return true
		},
	}, op)
}

// SafeToSubstitute reports whether replacing v by a constant throughout
// op, and re-binding v above it with Assign, leaves the solutions of op
// unchanged. v must be certainly bound by op.
func SafeToSubstitute(op queryir.Op, v ir.Var) bool {
	if !Certain(op).Has(v) {
		return false
	}
	return safe(op, v)
}

func safe(op queryir.Op, v ir.Var) bool {
	switch o := op.(type) {
	case queryir.Pattern:
		return true
	case queryir.Join:
		return safe(o.Left, v) && safe(o.Right, v)
	case queryir.LeftJoin:
		return safe(o.Left, v) && safe(o.Right, v) && !testsBound(o.Exprs, v)
	case queryir.Conditional:
		return safe(o.Left, v) && safe(o.Right, v)
	case queryir.Union:
		return safe(o.Left, v) && safe(o.Right, v)
	case queryir.Sequence:
		for _, e := range o.Elems {
			if !safe(e, v) {
				return false
			}
		}
		return true
	case queryir.Filter:
		return !testsBound(o.Exprs, v) && safe(o.Sub, v)
	case queryir.Extend:
		return !bindsVar(o.Bindings, v) && !testsBound(queryir.NodeExprs(o), v) && safe(o.Sub, v)
	case queryir.Assign:
		return !bindsVar(o.Bindings, v) && !testsBound(queryir.NodeExprs(o), v) && safe(o.Sub, v)
	case queryir.Project:
		for _, pv := range o.Vars {
			if pv == v {
				return safe(o.Sub, v)
			}
		}
		return true
	case queryir.Distinct:
		return safe(o.Sub, v)
	case queryir.Reduced:
		return safe(o.Sub, v)
	case queryir.Order:
		return safe(o.Sub, v)
	case queryir.Table:
		if o.Kind != queryir.TableData {
			return true
		}
		for _, tv := range o.Vars {
			if tv == v {
				return false
			}
		}
		return true
	case queryir.Slice, queryir.Top, queryir.Minus, queryir.Group, queryir.Disjunction:
		return !queryir.Mentions(op, v)
	case nil:
		return true
	default:
		panic(fmt.Sprintf("scope: unknown op %T", op))
	}
}

func bindsVar(bs []queryir.VarExpr, v ir.Var) bool {
	for _, b := range bs {
		if b.Var == v {
			return true
		}
	}
	return false
}

// testsBound reports whether any expression applies BOUND to v. After
// substitution BOUND would see a constant instead of a variable.
func testsBound(es []queryir.Expr, v ir.Var) bool {
	found := false
	for _, e := range es {
		queryir.RewriteExpr(e, func(x queryir.Expr) queryir.Expr {
			if c, ok := x.(queryir.Call); ok && c.Name == queryir.FnBound && queryir.MentionsVar(c, v) {
				found = true
			}
			return nil
		})
	}
	return found
}
