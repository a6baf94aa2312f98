package optimize

import (
	"slices"

	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/rewrite"
	"github.com/roach88/qopt/internal/scope"
)

// placement is the outcome of pushing a filter list into a sub-plan: the
// rewritten sub-plan and the expressions that still have to be applied
// on top of it.
type placement struct {
	op       queryir.Op
	unplaced []queryir.Expr
}

// placeFilters pushes every filter expression down to the lowest point
// where all of its variables are certainly bound. Expressions that
// cannot move stay in a filter at the original position.
//
// Unstable expressions (RAND and friends) never move: the number of
// times they are evaluated is observable.
func placeFilters(op queryir.Op, splitPatterns bool) queryir.Op {
	pl := placer{splitPatterns: splitPatterns}
	return rewrite.Apply(rewrite.Transform{
		Filter: func(f queryir.Filter) queryir.Op {
			return pl.filter(f)
		},
	}, op)
}

type placer struct {
	splitPatterns bool
}

func (pl placer) filter(f queryir.Filter) queryir.Op {
	var stable, unstable []queryir.Expr
	for _, e := range f.Exprs {
		if queryir.IsStable(e) {
			stable = append(stable, e)
		} else {
			unstable = append(unstable, e)
		}
	}
	if len(stable) == 0 {
		return nil
	}

	p, ok := pl.place(stable, f.Sub)
	if !ok {
		return nil
	}
	out := queryir.NewFilter(p.unplaced, p.op)
	out = queryir.NewFilter(unstable, out)
	if queryir.Equal(out, f) {
		return nil
	}
	return out
}

// place pushes exprs into op. It reports false when it has nothing to
// say about op; the caller then keeps op and all of exprs.
func (pl placer) place(exprs []queryir.Expr, op queryir.Op) (placement, bool) {
	switch o := op.(type) {
	case queryir.Pattern:
		if pl.splitPatterns {
			return pl.splitPattern(exprs, o)
		}
		return wrapPattern(exprs, o)
	case queryir.Sequence:
		return pl.sequence(exprs, o)
	case queryir.Join:
		return pl.join(exprs, o)
	case queryir.LeftJoin:
		p, ok := pl.place(exprs, o.Left)
		if !ok {
			return placement{op, exprs}, true
		}
		return placement{queryir.LeftJoin{Left: p.op, Right: o.Right, Exprs: o.Exprs}, p.unplaced}, true
	case queryir.Conditional:
		p, ok := pl.place(exprs, o.Left)
		if !ok {
			return placement{op, exprs}, true
		}
		return placement{queryir.Conditional{Left: p.op, Right: o.Right}, p.unplaced}, true
	case queryir.Union:
		return pl.union(exprs, o)
	case queryir.Disjunction:
		return pl.disjunction(exprs, o)
	case queryir.Filter:
		return pl.nestedFilter(exprs, o)
	case queryir.Extend:
		return pl.binding(exprs, o.Sub, func(sub queryir.Op) queryir.Op {
			return queryir.Extend{Bindings: o.Bindings, Sub: sub}
		})
	case queryir.Assign:
		return pl.binding(exprs, o.Sub, func(sub queryir.Op) queryir.Op {
			return queryir.Assign{Bindings: o.Bindings, Sub: sub}
		})
	case queryir.Project:
		return pl.project(exprs, o)
	case queryir.Distinct:
		p, ok := pl.place(exprs, o.Sub)
		if !ok {
			return placement{}, false
		}
		return placement{queryir.Distinct{Sub: p.op}, p.unplaced}, true
	case queryir.Reduced:
		p, ok := pl.place(exprs, o.Sub)
		if !ok {
			return placement{}, false
		}
		return placement{queryir.Reduced{Sub: p.op}, p.unplaced}, true
	case queryir.Table:
		rest := slices.Clone(exprs)
		out, rest := insertCovered(rest, scope.Certain(o), o)
		return placement{out, rest}, true
	case queryir.Minus, queryir.Order, queryir.Slice, queryir.Top, queryir.Group:
		return placement{}, false
	}
	return placement{}, false
}

// insertCovered wraps op in a filter for every expression whose
// variables are all in bound, and returns the rest. A nil op becomes
// Table(Unit) when an expression lands on it.
func insertCovered(exprs []queryir.Expr, bound ir.VarSet, op queryir.Op) (queryir.Op, []queryir.Expr) {
	var rest []queryir.Expr
	for _, e := range exprs {
		if !bound.ContainsAll(queryir.ExprVars(e)) {
			rest = append(rest, e)
			continue
		}
		if op == nil {
			op = queryir.Unit()
		}
		op = queryir.NewFilter([]queryir.Expr{e}, op)
	}
	return op, rest
}

// splitPattern rebuilds a pattern triple by triple and inserts each
// expression right after the triple that completes its variables:
//
//	(filter (= ?x 1) (bgp (?s ?p ?x) (?s1 ?p1 ?x1)))
//	=> (sequence (filter (= ?x 1) (bgp (?s ?p ?x))) (bgp (?s1 ?p1 ?x1)))
func (pl placer) splitPattern(exprs []queryir.Expr, p queryir.Pattern) (placement, bool) {
	bound := ir.VarSet{}
	op, rest := insertCovered(exprs, bound, nil)
	if v, ok := p.Graph.(ir.Var); ok {
		bound.Add(v)
	}
	for _, t := range p.Triples {
		op = appendTriple(op, p.Graph, t)
		for _, v := range t.Vars() {
			bound.Add(v)
		}
		op, rest = insertCovered(rest, bound, op)
	}
	if op == nil {
		return placement{}, false
	}
	return placement{op, rest}, true
}

// appendTriple adds t to the trailing pattern of op, starting a new
// pattern when op does not end in one.
func appendTriple(op queryir.Op, graph ir.Term, t ir.Triple) queryir.Op {
	grow := func(p queryir.Pattern) queryir.Pattern {
		triples := make([]ir.Triple, 0, len(p.Triples)+1)
		triples = append(triples, p.Triples...)
		return queryir.Pattern{Graph: p.Graph, Triples: append(triples, t)}
	}
	switch o := op.(type) {
	case queryir.Pattern:
		return grow(o)
	case queryir.Sequence:
		if n := len(o.Elems); n > 0 {
			if last, ok := o.Elems[n-1].(queryir.Pattern); ok {
				elems := slices.Clone(o.Elems)
				elems[n-1] = grow(last)
				return queryir.Sequence{Elems: elems}
			}
		}
	}
	return queryir.NewSequence(op, queryir.Pattern{Graph: graph, Triples: []ir.Triple{t}})
}

// wrapPattern filters a pattern without splitting it.
func wrapPattern(exprs []queryir.Expr, p queryir.Pattern) (placement, bool) {
	bound := queryir.PatternVars(p)
	var pushed, rest []queryir.Expr
	for _, e := range exprs {
		if bound.ContainsAll(queryir.ExprVars(e)) {
			pushed = append(pushed, e)
		} else {
			rest = append(rest, e)
		}
	}
	if len(pushed) == 0 {
		return placement{}, false
	}
	return placement{queryir.Filter{Exprs: pushed, Sub: p}, rest}, true
}

// sequence offers every expression to each element in turn and inserts
// it between elements once the prefix binds all of its variables.
func (pl placer) sequence(exprs []queryir.Expr, s queryir.Sequence) (placement, bool) {
	rest := slices.Clone(exprs)
	bound := ir.VarSet{}
	var op queryir.Op
	for _, elem := range s.Elems {
		op, rest = insertCovered(rest, bound, op)
		if p, ok := pl.place(rest, elem); ok {
			elem, rest = p.op, p.unplaced
		}
		bound.AddAll(scope.Certain(elem))
		op = queryir.NewSequence(op, elem)
	}
	if op == nil {
		return placement{}, false
	}
	return placement{op, rest}, true
}

// join pushes each expression into every side that binds all of its
// variables.
func (pl placer) join(exprs []queryir.Expr, j queryir.Join) (placement, bool) {
	leftVars, rightVars := scope.Certain(j.Left), scope.Certain(j.Right)
	var left, right, rest []queryir.Expr
	for _, e := range exprs {
		vars := queryir.ExprVars(e)
		pushed := false
		if leftVars.ContainsAll(vars) {
			left = append(left, e)
			pushed = true
		}
		if rightVars.ContainsAll(vars) {
			right = append(right, e)
			pushed = true
		}
		if !pushed {
			rest = append(rest, e)
		}
	}
	if len(left) == 0 && len(right) == 0 {
		return placement{}, false
	}
	newLeft, newRight := j.Left, j.Right
	if len(left) > 0 {
		newLeft = pl.placeAlways(left, newLeft)
	}
	if len(right) > 0 {
		newRight = pl.placeAlways(right, newRight)
	}
	return placement{queryir.Join{Left: newLeft, Right: newRight}, rest}, true
}

// placeAlways places exprs into op and applies whatever is left
// directly on top.
func (pl placer) placeAlways(exprs []queryir.Expr, op queryir.Op) queryir.Op {
	p, ok := pl.place(exprs, op)
	if !ok {
		return queryir.NewFilter(exprs, op)
	}
	return queryir.NewFilter(p.unplaced, p.op)
}

// union keeps an expression pending unless both arms placed it. An arm
// may keep a copy of an expression that also stays pending.
func (pl placer) union(exprs []queryir.Expr, u queryir.Union) (placement, bool) {
	pLeft, okLeft := pl.place(exprs, u.Left)
	pRight, okRight := pl.place(exprs, u.Right)

	var rest []queryir.Expr
	for _, e := range exprs {
		placedLeft := okLeft && !containsExpr(pLeft.unplaced, e)
		placedRight := okRight && !containsExpr(pRight.unplaced, e)
		if !placedLeft || !placedRight {
			rest = append(rest, e)
		}
	}
	left, right := u.Left, u.Right
	if okLeft {
		left = pLeft.op
	}
	if okRight {
		right = pRight.op
	}
	return placement{queryir.Union{Left: left, Right: right}, rest}, true
}

// disjunction places into every branch. Expressions no branch could
// place stay pending; the others are applied per branch.
func (pl placer) disjunction(exprs []queryir.Expr, d queryir.Disjunction) (placement, bool) {
	pending := slices.Clone(exprs)
	placements := make([]placement, len(d.Elems))
	changed := false
	for i, elem := range d.Elems {
		p, ok := pl.place(exprs, elem)
		if ok {
			pending = slices.DeleteFunc(pending, func(e queryir.Expr) bool {
				return !containsExpr(p.unplaced, e)
			})
			changed = true
		} else {
			p = placement{elem, exprs}
		}
		placements[i] = p
	}
	if !changed {
		return placement{}, false
	}

	elems := make([]queryir.Op, len(placements))
	for i, p := range placements {
		local := slices.DeleteFunc(slices.Clone(p.unplaced), func(e queryir.Expr) bool {
			return containsExpr(pending, e)
		})
		elems[i] = queryir.NewFilter(local, p.op)
	}
	return placement{queryir.Disjunction{Elems: elems}, pending}, true
}

// nestedFilter pushes the outer expressions through an inner filter. The
// inner expressions come first in the merged list. An expression the
// inner filter already applies counts as placed.
func (pl placer) nestedFilter(exprs []queryir.Expr, f queryir.Filter) (placement, bool) {
	exprs = slices.DeleteFunc(slices.Clone(exprs), func(e queryir.Expr) bool {
		return containsExpr(f.Exprs, e)
	})
	if len(exprs) == 0 {
		return placement{f, nil}, true
	}
	sub, rest := f.Sub, exprs
	if p, ok := pl.place(exprs, f.Sub); ok {
		sub, rest = p.op, p.unplaced
	}
	if inner, ok := sub.(queryir.Filter); ok {
		merged := make([]queryir.Expr, 0, len(f.Exprs)+len(inner.Exprs))
		merged = append(merged, f.Exprs...)
		merged = append(merged, inner.Exprs...)
		return placement{queryir.Filter{Exprs: merged, Sub: inner.Sub}, rest}, true
	}
	return placement{queryir.Filter{Exprs: f.Exprs, Sub: sub}, rest}, true
}

// binding places into the sub-plan of an Extend or Assign, then applies
// the expressions the node itself completes directly above it. An
// expression is never pushed below the binding of one of its variables.
func (pl placer) binding(exprs []queryir.Expr, sub queryir.Op, rebuild func(queryir.Op) queryir.Op) (placement, bool) {
	rest := exprs
	if p, ok := pl.place(exprs, sub); ok {
		sub, rest = p.op, p.unplaced
	}
	node := rebuild(sub)
	bound := scope.Certain(node)
	var wrap, pending []queryir.Expr
	for _, e := range rest {
		if bound.ContainsAll(queryir.ExprVars(e)) {
			wrap = append(wrap, e)
		} else {
			pending = append(pending, e)
		}
	}
	return placement{queryir.NewFilter(wrap, node), pending}, true
}

// project lets through only expressions over projected variables that
// the sub-plan certainly binds.
func (pl placer) project(exprs []queryir.Expr, p queryir.Project) (placement, bool) {
	bound := scope.Certain(p)
	var pushed, rest []queryir.Expr
	for _, e := range exprs {
		if bound.ContainsAll(queryir.ExprVars(e)) {
			pushed = append(pushed, e)
		} else {
			rest = append(rest, e)
		}
	}
	if len(pushed) == 0 {
		return placement{}, false
	}
	return placement{queryir.Project{Vars: p.Vars, Sub: pl.placeAlways(pushed, p.Sub)}, rest}, true
}

func containsExpr(es []queryir.Expr, e queryir.Expr) bool {
	for _, x := range es {
		if queryir.EqualExpr(x, e) {
			return true
		}
	}
	return false
}
