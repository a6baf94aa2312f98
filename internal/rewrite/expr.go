package rewrite

import "github.com/roach88/qopt/internal/queryir"

// ApplyExpr rewrites e bottom-up: fn sees every node after its arguments
// have been rewritten and returns nil to keep it.
func ApplyExpr(fn func(queryir.Expr) queryir.Expr, e queryir.Expr) queryir.Expr {
	return queryir.RewriteExpr(e, fn)
}

// MapNodeExprs returns op with fn applied to each expression the node
// holds directly (not its children). fn returns the replacement, which
// may be the argument itself. Nodes without expressions are returned
// unchanged.
func MapNodeExprs(op queryir.Op, fn func(queryir.Expr) queryir.Expr) queryir.Op {
	out, _ := mapNodeExprs(op, fn)
	return out
}

func mapNodeExprs(op queryir.Op, fn func(queryir.Expr) queryir.Expr) (queryir.Op, bool) {
	switch o := op.(type) {
	case queryir.LeftJoin:
		if exprs, ok := mapList(o.Exprs, fn); ok {
			o.Exprs = exprs
			return o, true
		}
	case queryir.Filter:
		if exprs, ok := mapList(o.Exprs, fn); ok {
			o.Exprs = exprs
			return o, true
		}
	case queryir.Extend:
		if bs, ok := mapBindings(o.Bindings, fn); ok {
			o.Bindings = bs
			return o, true
		}
	case queryir.Assign:
		if bs, ok := mapBindings(o.Bindings, fn); ok {
			o.Bindings = bs
			return o, true
		}
	case queryir.Order:
		if cs, ok := mapConds(o.Conds, fn); ok {
			o.Conds = cs
			return o, true
		}
	case queryir.Top:
		if cs, ok := mapConds(o.Conds, fn); ok {
			o.Conds = cs
			return o, true
		}
	case queryir.Group:
		keys, kok := mapBindings(o.Keys, fn)
		aggs, aok := mapAggs(o.Aggs, fn)
		if kok || aok {
			if kok {
				o.Keys = keys
			}
			if aok {
				o.Aggs = aggs
			}
			return o, true
		}
	}
	return op, false
}

// MapAllExprs applies fn to every expression in the tree, bottom-up.
func MapAllExprs(op queryir.Op, fn func(queryir.Expr) queryir.Expr) queryir.Op {
	mapper := func(n queryir.Op) queryir.Op {
		if out, ok := mapNodeExprs(n, fn); ok {
			return out
		}
		return nil
	}
	return Apply(Transform{
		LeftJoin: func(o queryir.LeftJoin) queryir.Op { return mapper(o) },
		Filter:   func(o queryir.Filter) queryir.Op { return mapper(o) },
		Extend:   func(o queryir.Extend) queryir.Op { return mapper(o) },
		Assign:   func(o queryir.Assign) queryir.Op { return mapper(o) },
		Order:    func(o queryir.Order) queryir.Op { return mapper(o) },
		Top:      func(o queryir.Top) queryir.Op { return mapper(o) },
		Group:    func(o queryir.Group) queryir.Op { return mapper(o) },
	}, op)
}

func mapList(es []queryir.Expr, fn func(queryir.Expr) queryir.Expr) ([]queryir.Expr, bool) {
	var out []queryir.Expr
	for i, e := range es {
		ne := fn(e)
		if out == nil && !queryir.EqualExpr(ne, e) {
			out = make([]queryir.Expr, len(es))
			copy(out, es[:i])
		}
		if out != nil {
			out[i] = ne
		}
	}
	return out, out != nil
}

func mapBindings(bs []queryir.VarExpr, fn func(queryir.Expr) queryir.Expr) ([]queryir.VarExpr, bool) {
	var out []queryir.VarExpr
	for i, b := range bs {
		if b.Expr == nil {
			if out != nil {
				out[i] = b
			}
			continue
		}
		ne := fn(b.Expr)
		if out == nil && !queryir.EqualExpr(ne, b.Expr) {
			out = make([]queryir.VarExpr, len(bs))
			copy(out, bs[:i])
		}
		if out != nil {
			out[i] = queryir.VarExpr{Var: b.Var, Expr: ne}
		}
	}
	return out, out != nil
}

func mapConds(cs []queryir.SortCond, fn func(queryir.Expr) queryir.Expr) ([]queryir.SortCond, bool) {
	var out []queryir.SortCond
	for i, c := range cs {
		ne := fn(c.Expr)
		if out == nil && !queryir.EqualExpr(ne, c.Expr) {
			out = make([]queryir.SortCond, len(cs))
			copy(out, cs[:i])
		}
		if out != nil {
			out[i] = queryir.SortCond{Expr: ne, Desc: c.Desc}
		}
	}
	return out, out != nil
}

func mapAggs(as []queryir.AggBinding, fn func(queryir.Expr) queryir.Expr) ([]queryir.AggBinding, bool) {
	var out []queryir.AggBinding
	for i, a := range as {
		if a.Agg.Arg == nil {
			if out != nil {
				out[i] = a
			}
			continue
		}
		ne := fn(a.Agg.Arg)
		if out == nil && !queryir.EqualExpr(ne, a.Agg.Arg) {
			out = make([]queryir.AggBinding, len(as))
			copy(out, as[:i])
		}
		if out != nil {
			agg := a.Agg
			agg.Arg = ne
			out[i] = queryir.AggBinding{Var: a.Var, Agg: agg}
		}
	}
	return out, out != nil
}
