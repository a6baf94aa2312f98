package optimize

import (
	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/rewrite"
)

// eliminateAssignments removes Extend/Assign bindings that a projection
// makes invisible: a binding nobody reads is dropped, and a binding read
// exactly once is inlined into the reading expression.
//
// Each Project is a scope; its projected variables count as one use.
// Bindings above the outermost Project stay visible and are left alone
// unless p.AssumeProjected says the caller discards them.
//
// A binding is only inlined when the path from the use down to it
// crosses nothing but Filter, Extend, Assign, Order, Slice and Top, so
// the expression sees the same solution at its new position. Unstable
// expressions are never inlined. Into Order and Top keys only constants
// move, unless p.AggressiveInline is set.
func eliminateAssignments(op queryir.Op, p Params) queryir.Op {
	el := eliminator{aggressive: p.AggressiveInline}
	out := rewrite.Apply(rewrite.Transform{
		Project: func(proj queryir.Project) queryir.Op {
			sub, changed := el.scope(proj.Sub, ir.NewVarSet(proj.Vars...))
			if !changed {
				return nil
			}
			return queryir.Project{Vars: proj.Vars, Sub: sub}
		},
	}, op)
	if p.AssumeProjected {
		out, _ = el.scope(out, ir.VarSet{})
	}
	return out
}

type eliminator struct {
	aggressive bool
}

// scope runs drop and inline steps over one projection scope until
// neither applies.
func (el eliminator) scope(op queryir.Op, keep ir.VarSet) (queryir.Op, bool) {
	changed := false
	for {
		uses := countUses(op)
		for v := range keep {
			uses[v]++
		}
		next, ok := el.dropUnused(op, uses)
		if !ok {
			next, ok = el.inline(op, uses)
		}
		if !ok {
			return op, changed
		}
		op, changed = next, true
	}
}

// countUses counts every occurrence of each variable in the scope of op:
// pattern slots, expression references, binding targets, table columns,
// group keys and aggregate targets. A nested Project contributes its
// projected variables only.
func countUses(op queryir.Op) map[ir.Var]int {
	uses := map[ir.Var]int{}
	addExpr := func(e queryir.Expr) {
		for v := range queryir.ExprVars(e) {
			uses[v] += queryir.CountVar(e, v)
		}
	}
	queryir.Walk(op, func(n queryir.Op) bool {
		for _, e := range queryir.NodeExprs(n) {
			addExpr(e)
		}
		switch o := n.(type) {
		case queryir.Pattern:
			if v, ok := o.Graph.(ir.Var); ok {
				uses[v]++
			}
			for _, t := range o.Triples {
				for _, v := range t.Vars() {
					uses[v]++
				}
			}
		case queryir.Extend:
			for _, b := range o.Bindings {
				uses[b.Var]++
			}
		case queryir.Assign:
			for _, b := range o.Bindings {
				uses[b.Var]++
			}
		case queryir.Table:
			for _, v := range o.Vars {
				uses[v]++
			}
		case queryir.Group:
			for _, k := range o.Keys {
				uses[k.Var]++
			}
			for _, a := range o.Aggs {
				uses[a.Var]++
			}
		case queryir.Project:
			for _, v := range o.Vars {
				uses[v]++
			}
			return false
		}
		return true
	})
	return uses
}

// dropUnused removes the first binding whose variable occurs nowhere
// else. It does not look below Distinct, Reduced or Group, where an
// extra column can still change the result.
func (el eliminator) dropUnused(op queryir.Op, uses map[ir.Var]int) (queryir.Op, bool) {
	switch o := op.(type) {
	case queryir.Extend:
		if bs, ok := dropBinding(o.Bindings, uses); ok {
			return rebuildBindings(o, bs), true
		}
	case queryir.Assign:
		if bs, ok := dropBinding(o.Bindings, uses); ok {
			return rebuildBindings(o, bs), true
		}
	case queryir.Distinct, queryir.Reduced, queryir.Group, queryir.Project:
		return op, false
	}
	return el.descend(op, func(child queryir.Op) (queryir.Op, bool) {
		return el.dropUnused(child, uses)
	})
}

func dropBinding(bs []queryir.VarExpr, uses map[ir.Var]int) ([]queryir.VarExpr, bool) {
	for i, b := range bs {
		if uses[b.Var] == 1 {
			return removeBinding(bs, i), true
		}
	}
	return nil, false
}

// inline substitutes the first binding used exactly once into its use.
func (el eliminator) inline(op queryir.Op, uses map[ir.Var]int) (queryir.Op, bool) {
	if out, ok := el.inlineAt(op, uses); ok {
		return out, true
	}
	if _, ok := op.(queryir.Project); ok {
		return op, false
	}
	return el.descend(op, func(child queryir.Op) (queryir.Op, bool) {
		return el.inline(child, uses)
	})
}

func (el eliminator) inlineAt(op queryir.Op, uses map[ir.Var]int) (queryir.Op, bool) {
	switch o := op.(type) {
	case queryir.Filter:
		for _, v := range queryir.ExprListVars(o.Exprs).Sorted() {
			if uses[v] != 2 || testsBoundAny(o.Exprs, v) {
				continue
			}
			sub, e, ok := takeBinding(o.Sub, v, ir.VarSet{})
			if !ok || !el.canInline(e, false) {
				continue
			}
			return queryir.Filter{Exprs: substituteAll(o.Exprs, v, e), Sub: sub}, true
		}
	case queryir.Order:
		if conds, sub, ok := el.inlineConds(o.Conds, o.Sub, uses); ok {
			return queryir.Order{Conds: conds, Sub: sub}, true
		}
	case queryir.Top:
		if conds, sub, ok := el.inlineConds(o.Conds, o.Sub, uses); ok {
			return queryir.Top{Count: o.Count, Conds: conds, Sub: sub}, true
		}
	case queryir.Extend:
		if bs, sub, ok := el.inlineBindings(o.Bindings, o.Sub, uses); ok {
			return rebuildBindings(queryir.Extend{Bindings: o.Bindings, Sub: sub}, bs), true
		}
	case queryir.Assign:
		if bs, sub, ok := el.inlineBindings(o.Bindings, o.Sub, uses); ok {
			return rebuildBindings(queryir.Assign{Bindings: o.Bindings, Sub: sub}, bs), true
		}
	}
	return nil, false
}

func (el eliminator) inlineConds(conds []queryir.SortCond, sub queryir.Op, uses map[ir.Var]int) ([]queryir.SortCond, queryir.Op, bool) {
	exprs := make([]queryir.Expr, len(conds))
	for i, c := range conds {
		exprs[i] = c.Expr
	}
	for _, v := range queryir.ExprListVars(exprs).Sorted() {
		if uses[v] != 2 || testsBoundAny(exprs, v) {
			continue
		}
		newSub, e, ok := takeBinding(sub, v, ir.VarSet{})
		if !ok || !el.canInline(e, true) {
			continue
		}
		out := make([]queryir.SortCond, len(conds))
		for i, c := range conds {
			out[i] = queryir.SortCond{Expr: substitute(c.Expr, v, e), Desc: c.Desc}
		}
		return out, newSub, true
	}
	return nil, nil, false
}

// inlineBindings handles a binding expression that reads a variable
// bound earlier in the same list or further down.
func (el eliminator) inlineBindings(bs []queryir.VarExpr, sub queryir.Op, uses map[ir.Var]int) ([]queryir.VarExpr, queryir.Op, bool) {
	for i, b := range bs {
		if b.Expr == nil {
			continue
		}
		use := []queryir.Expr{b.Expr}
		for _, v := range queryir.ExprVars(b.Expr).Sorted() {
			if uses[v] != 2 || testsBoundAny(use, v) {
				continue
			}
			if j := bindingIndex(bs[:i], v); j >= 0 {
				e := bs[j].Expr
				between := ir.NewVarSet(queryir.BindingVars(bs[j:i])...)
				if e == nil || queryir.ExprVars(e).Intersects(between) || !el.canInline(e, false) {
					continue
				}
				out := removeBinding(replaceExpr(bs, i, substitute(b.Expr, v, e)), j)
				return out, sub, true
			}
			newSub, e, ok := takeBinding(sub, v, ir.NewVarSet(queryir.BindingVars(bs[:i])...))
			if !ok || !el.canInline(e, false) {
				continue
			}
			return replaceExpr(bs, i, substitute(b.Expr, v, e)), newSub, true
		}
	}
	return nil, nil, false
}

func (el eliminator) canInline(e queryir.Expr, sortKey bool) bool {
	if e == nil || !queryir.IsStable(e) {
		return false
	}
	if sortKey && !el.aggressive {
		_, isConst := e.(queryir.Const)
		return isConst
	}
	return true
}

// takeBinding finds the binding of v below op, passing only through
// nodes that keep every solution's bindings intact, and returns op
// without it. between holds the variables bound on the way down; the
// expression must not read any of them.
func takeBinding(op queryir.Op, v ir.Var, between ir.VarSet) (queryir.Op, queryir.Expr, bool) {
	switch o := op.(type) {
	case queryir.Extend:
		return takeFromBindings(o, o.Bindings, o.Sub, v, between)
	case queryir.Assign:
		return takeFromBindings(o, o.Bindings, o.Sub, v, between)
	case queryir.Filter, queryir.Order, queryir.Slice, queryir.Top:
		sub, e, ok := takeBinding(queryir.Children(op)[0], v, between)
		if !ok {
			return nil, nil, false
		}
		return queryir.WithChildren(op, []queryir.Op{sub}), e, true
	}
	return nil, nil, false
}

func takeFromBindings(node queryir.Op, bs []queryir.VarExpr, sub queryir.Op, v ir.Var, between ir.VarSet) (queryir.Op, queryir.Expr, bool) {
	j := bindingIndex(bs, v)
	if j < 0 {
		inner := between.Clone()
		inner.AddAll(ir.NewVarSet(queryir.BindingVars(bs)...))
		newSub, e, ok := takeBinding(sub, v, inner)
		if !ok {
			return nil, nil, false
		}
		return queryir.WithChildren(node, []queryir.Op{newSub}), e, true
	}
	e := bs[j].Expr
	if e == nil {
		return nil, nil, false
	}
	later := ir.NewVarSet(queryir.BindingVars(bs[j+1:])...)
	vars := queryir.ExprVars(e)
	if vars.Intersects(between) || vars.Intersects(later) {
		return nil, nil, false
	}
	return rebuildBindings(node, removeBinding(bs, j)), e, true
}

// descend applies fn to op's children in order and stops at the first
// one that changes.
func (el eliminator) descend(op queryir.Op, fn func(queryir.Op) (queryir.Op, bool)) (queryir.Op, bool) {
	children := queryir.Children(op)
	for i, c := range children {
		nc, ok := fn(c)
		if !ok {
			continue
		}
		next := make([]queryir.Op, len(children))
		copy(next, children)
		next[i] = nc
		return queryir.WithChildren(op, next), true
	}
	return op, false
}

// rebuildBindings returns node (an Extend or Assign) with bs, or its
// sub-plan when bs is empty.
func rebuildBindings(node queryir.Op, bs []queryir.VarExpr) queryir.Op {
	switch o := node.(type) {
	case queryir.Extend:
		if len(bs) == 0 {
			return o.Sub
		}
		return queryir.Extend{Bindings: bs, Sub: o.Sub}
	case queryir.Assign:
		if len(bs) == 0 {
			return o.Sub
		}
		return queryir.Assign{Bindings: bs, Sub: o.Sub}
	}
	return node
}

func bindingIndex(bs []queryir.VarExpr, v ir.Var) int {
	for i, b := range bs {
		if b.Var == v {
			return i
		}
	}
	return -1
}

func removeBinding(bs []queryir.VarExpr, i int) []queryir.VarExpr {
	out := make([]queryir.VarExpr, 0, len(bs)-1)
	out = append(out, bs[:i]...)
	return append(out, bs[i+1:]...)
}

func replaceExpr(bs []queryir.VarExpr, i int, e queryir.Expr) []queryir.VarExpr {
	out := make([]queryir.VarExpr, len(bs))
	copy(out, bs)
	out[i] = queryir.VarExpr{Var: bs[i].Var, Expr: e}
	return out
}

func substitute(e queryir.Expr, v ir.Var, by queryir.Expr) queryir.Expr {
	return queryir.SubstituteExpr(e, map[ir.Var]queryir.Expr{v: by})
}

func substituteAll(es []queryir.Expr, v ir.Var, by queryir.Expr) []queryir.Expr {
	out := make([]queryir.Expr, len(es))
	for i, e := range es {
		out[i] = substitute(e, v, by)
	}
	return out
}

// testsBoundAny reports whether any of es applies BOUND to v; BOUND
// needs a variable argument.
func testsBoundAny(es []queryir.Expr, v ir.Var) bool {
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
