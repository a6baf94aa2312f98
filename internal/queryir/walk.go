package queryir

import "fmt"

// Children returns the direct sub-plans of op in textual order.
// Leaves (Pattern, Table) return nil.
func Children(op Op) []Op {
	switch o := op.(type) {
	case Pattern, Table:
		return nil
	case Join:
		return []Op{o.Left, o.Right}
	case LeftJoin:
		return []Op{o.Left, o.Right}
	case Conditional:
		return []Op{o.Left, o.Right}
	case Union:
		return []Op{o.Left, o.Right}
	case Minus:
		return []Op{o.Left, o.Right}
	case Filter:
		return []Op{o.Sub}
	case Extend:
		return []Op{o.Sub}
	case Assign:
		return []Op{o.Sub}
	case Project:
		return []Op{o.Sub}
	case Distinct:
		return []Op{o.Sub}
	case Reduced:
		return []Op{o.Sub}
	case Order:
		return []Op{o.Sub}
	case Slice:
		return []Op{o.Sub}
	case Top:
		return []Op{o.Sub}
	case Group:
		return []Op{o.Sub}
	case Sequence:
		return o.Elems
	case Disjunction:
		return o.Elems
	default:
		panic(fmt.Sprintf("queryir: unknown op %T", op))
	}
}

// WithChildren returns a copy of op with its sub-plans replaced. The
// number of children must match Children(op).
func WithChildren(op Op, children []Op) Op {
	switch o := op.(type) {
	case Pattern, Table:
		return op
	case Join:
		return Join{Left: children[0], Right: children[1]}
	case LeftJoin:
		return LeftJoin{Left: children[0], Right: children[1], Exprs: o.Exprs}
	case Conditional:
		return Conditional{Left: children[0], Right: children[1]}
	case Union:
		return Union{Left: children[0], Right: children[1]}
	case Minus:
		return Minus{Left: children[0], Right: children[1]}
	case Filter:
		return Filter{Exprs: o.Exprs, Sub: children[0]}
	case Extend:
		return Extend{Bindings: o.Bindings, Sub: children[0]}
	case Assign:
		return Assign{Bindings: o.Bindings, Sub: children[0]}
	case Project:
		return Project{Vars: o.Vars, Sub: children[0]}
	case Distinct:
		return Distinct{Sub: children[0]}
	case Reduced:
		return Reduced{Sub: children[0]}
	case Order:
		return Order{Conds: o.Conds, Sub: children[0]}
	case Slice:
		return Slice{Offset: o.Offset, Length: o.Length, Sub: children[0]}
	case Top:
		return Top{Count: o.Count, Conds: o.Conds, Sub: children[0]}
	case Group:
		return Group{Keys: o.Keys, Aggs: o.Aggs, Sub: children[0]}
	case Sequence:
		return Sequence{Elems: children}
	case Disjunction:
		return Disjunction{Elems: children}
	default:
		panic(fmt.Sprintf("queryir: unknown op %T", op))
	}
}

// Walk visits op and its descendants depth-first, parents before
// children. Returning false from fn skips the node's children.
func Walk(op Op, fn func(Op) bool) {
	if op == nil || !fn(op) {
		return
	}
	for _, c := range Children(op) {
		Walk(c, fn)
	}
}

// NodeExprs returns the expressions held directly by op (not by its
// children): filter and join conditions, binding expressions, sort keys,
// group keys, and aggregate arguments.
func NodeExprs(op Op) []Expr {
	var out []Expr
	switch o := op.(type) {
	case LeftJoin:
		out = append(out, o.Exprs...)
	case Filter:
		out = append(out, o.Exprs...)
	case Extend:
		out = appendBindingExprs(out, o.Bindings)
	case Assign:
		out = appendBindingExprs(out, o.Bindings)
	case Order:
		out = appendCondExprs(out, o.Conds)
	case Top:
		out = appendCondExprs(out, o.Conds)
	case Group:
		out = appendBindingExprs(out, o.Keys)
		for _, a := range o.Aggs {
			if a.Agg.Arg != nil {
				out = append(out, a.Agg.Arg)
			}
		}
	}
	return out
}

func appendBindingExprs(out []Expr, bs []VarExpr) []Expr {
	for _, b := range bs {
		if b.Expr != nil {
			out = append(out, b.Expr)
		}
	}
	return out
}

func appendCondExprs(out []Expr, cs []SortCond) []Expr {
	for _, c := range cs {
		out = append(out, c.Expr)
	}
	return out
}
