package rewrite

import (
	"fmt"

	"github.com/roach88/qopt/internal/queryir"
)

// Transform is a bundle of per-variant handlers. Apply calls the handler
// for a node's variant after the node's children have been transformed,
// passing the node rebuilt with the new children.
//
// A nil handler, or a handler returning nil, declines: the rebuilt node
// is kept as is.
type Transform struct {
	Pattern     func(queryir.Pattern) queryir.Op
	Join        func(queryir.Join) queryir.Op
	LeftJoin    func(queryir.LeftJoin) queryir.Op
	Conditional func(queryir.Conditional) queryir.Op
	Union       func(queryir.Union) queryir.Op
	Minus       func(queryir.Minus) queryir.Op
	Filter      func(queryir.Filter) queryir.Op
	Extend      func(queryir.Extend) queryir.Op
	Assign      func(queryir.Assign) queryir.Op
	Project     func(queryir.Project) queryir.Op
	Distinct    func(queryir.Distinct) queryir.Op
	Reduced     func(queryir.Reduced) queryir.Op
	Order       func(queryir.Order) queryir.Op
	Slice       func(queryir.Slice) queryir.Op
	Top         func(queryir.Top) queryir.Op
	Sequence    func(queryir.Sequence) queryir.Op
	Table       func(queryir.Table) queryir.Op
	Group       func(queryir.Group) queryir.Op
	Disjunction func(queryir.Disjunction) queryir.Op

	// Descend, when set, is asked before a node's children are visited.
	// Returning false leaves the whole sub-tree below the node untouched;
	// the node's own handler still runs.
	Descend func(queryir.Op) bool
}

// Apply transforms op bottom-up.
func Apply(t Transform, op queryir.Op) queryir.Op {
	out, _ := apply(&t, op)
	return out
}

// apply returns the transformed node and whether anything changed.
// Unchanged sub-trees are returned as the original values.
func apply(t *Transform, op queryir.Op) (queryir.Op, bool) {
	if op == nil {
		return nil, false
	}

	changed := false
	if t.Descend == nil || t.Descend(op) {
		children := queryir.Children(op)
		var next []queryir.Op
		for i, child := range children {
			nc, ch := apply(t, child)
			if ch && next == nil {
				next = make([]queryir.Op, len(children))
				copy(next, children[:i])
			}
			if next != nil {
				next[i] = nc
			}
		}
		if next != nil {
			op = queryir.WithChildren(op, next)
			changed = true
		}
	}

	if out := dispatch(t, op); out != nil {
		return out, true
	}
	return op, changed
}

func dispatch(t *Transform, op queryir.Op) queryir.Op {
	switch o := op.(type) {
	case queryir.Pattern:
		if t.Pattern != nil {
			return t.Pattern(o)
		}
	case queryir.Join:
		if t.Join != nil {
			return t.Join(o)
		}
	case queryir.LeftJoin:
		if t.LeftJoin != nil {
			return t.LeftJoin(o)
		}
	case queryir.Conditional:
		if t.Conditional != nil {
			return t.Conditional(o)
		}
	case queryir.Union:
		if t.Union != nil {
			return t.Union(o)
		}
	case queryir.Minus:
		if t.Minus != nil {
			return t.Minus(o)
		}
	case queryir.Filter:
		if t.Filter != nil {
			return t.Filter(o)
		}
	case queryir.Extend:
		if t.Extend != nil {
			return t.Extend(o)
		}
	case queryir.Assign:
		if t.Assign != nil {
			return t.Assign(o)
		}
	case queryir.Project:
		if t.Project != nil {
			return t.Project(o)
		}
	case queryir.Distinct:
		if t.Distinct != nil {
			return t.Distinct(o)
		}
	case queryir.Reduced:
		if t.Reduced != nil {
			return t.Reduced(o)
		}
	case queryir.Order:
		if t.Order != nil {
			return t.Order(o)
		}
	case queryir.Slice:
		if t.Slice != nil {
			return t.Slice(o)
		}
	case queryir.Top:
		if t.Top != nil {
			return t.Top(o)
		}
	case queryir.Sequence:
		if t.Sequence != nil {
			return t.Sequence(o)
		}
	case queryir.Table:
		if t.Table != nil {
			return t.Table(o)
		}
	case queryir.Group:
		if t.Group != nil {
			return t.Group(o)
		}
	case queryir.Disjunction:
		if t.Disjunction != nil {
			return t.Disjunction(o)
		}
	default:
		panic(fmt.Sprintf("rewrite: unknown op %T", op))
	}
	return nil
}
