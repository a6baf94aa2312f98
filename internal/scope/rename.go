package scope

import (
	"strings"

	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/rewrite"
)

// Marker is prefixed to a variable name once per sub-select level it is
// hidden in. Source variables never start with it.
const Marker = "/"

// MapVars rewrites every variable occurrence in op with fn: pattern
// slots, graph names, expressions, binding targets, projections, table
// columns, and group keys and aggregates.
func MapVars(op queryir.Op, fn func(ir.Var) ir.Var) queryir.Op {
	mapTerm := func(t ir.Term) ir.Term {
		if v, ok := t.(ir.Var); ok {
			return fn(v)
		}
		return t
	}
	mapExpr := func(e queryir.Expr) queryir.Expr {
		return queryir.RewriteExpr(e, func(x queryir.Expr) queryir.Expr {
			if v, ok := x.(queryir.ExprVar); ok {
				if nv := fn(v.Var); nv != v.Var {
					return queryir.ExprVar{Var: nv}
				}
			}
			return nil
		})
	}
	mapVarList := func(vs []ir.Var) []ir.Var {
		out := make([]ir.Var, len(vs))
		for i, v := range vs {
			out[i] = fn(v)
		}
		return out
	}
	mapBindings := func(bs []queryir.VarExpr) []queryir.VarExpr {
		out := make([]queryir.VarExpr, len(bs))
		for i, b := range bs {
			out[i] = queryir.VarExpr{Var: fn(b.Var), Expr: b.Expr}
			if b.Expr != nil {
				out[i].Expr = mapExpr(b.Expr)
			}
		}
		return out
	}

	return rewrite.Apply(rewrite.Transform{
		Pattern: func(p queryir.Pattern) queryir.Op {
			triples := make([]ir.Triple, len(p.Triples))
			for i, t := range p.Triples {
				triples[i] = ir.Triple{S: mapTerm(t.S), P: mapTerm(t.P), O: mapTerm(t.O)}
			}
			var graph ir.Term
			if p.Graph != nil {
				graph = mapTerm(p.Graph)
			}
			return queryir.Pattern{Graph: graph, Triples: triples}
		},
		Extend: func(o queryir.Extend) queryir.Op {
			return queryir.Extend{Bindings: mapBindings(o.Bindings), Sub: o.Sub}
		},
		Assign: func(o queryir.Assign) queryir.Op {
			return queryir.Assign{Bindings: mapBindings(o.Bindings), Sub: o.Sub}
		},
		Project: func(o queryir.Project) queryir.Op {
			return queryir.Project{Vars: mapVarList(o.Vars), Sub: o.Sub}
		},
		Table: func(o queryir.Table) queryir.Op {
			if o.Kind != queryir.TableData {
				return nil
			}
			return queryir.Table{Kind: o.Kind, Vars: mapVarList(o.Vars), Rows: o.Rows}
		},
		Group: func(o queryir.Group) queryir.Op {
			aggs := make([]queryir.AggBinding, len(o.Aggs))
			for i, a := range o.Aggs {
				agg := a.Agg
				if agg.Arg != nil {
					agg.Arg = mapExpr(agg.Arg)
				}
				aggs[i] = queryir.AggBinding{Var: fn(a.Var), Agg: agg}
			}
			return queryir.Group{Keys: mapBindings(o.Keys), Aggs: aggs, Sub: o.Sub}
		},
		Filter: func(o queryir.Filter) queryir.Op {
			return rewrite.MapNodeExprs(o, mapExpr)
		},
		LeftJoin: func(o queryir.LeftJoin) queryir.Op {
			return rewrite.MapNodeExprs(o, mapExpr)
		},
		Order: func(o queryir.Order) queryir.Op {
			return rewrite.MapNodeExprs(o, mapExpr)
		},
		Top: func(o queryir.Top) queryir.Op {
			return rewrite.MapNodeExprs(o, mapExpr)
		},
	}, op)
}

// Rename adds one Marker to every variable of op that is not in keep.
// Already-marked variables gain another marker.
//
// Reverse(Rename(op, keep), false) gives back op only when no variable
// of op starts with Marker: a marked variable in keep is left as is by
// Rename but still loses a marker in Reverse.
func Rename(op queryir.Op, keep ir.VarSet) queryir.Op {
	return MapVars(op, func(v ir.Var) ir.Var {
		if keep.Has(v) {
			return v
		}
		return ir.NewVar(Marker + v.Name())
	})
}

// Reverse strips one Marker from every marked variable, or all of them
// when repeatedly is set.
func Reverse(op queryir.Op, repeatedly bool) queryir.Op {
	return MapVars(op, func(v ir.Var) ir.Var {
		name := v.Name()
		if !strings.HasPrefix(name, Marker) {
			return v
		}
		if repeatedly {
			return ir.NewVar(strings.TrimLeft(name, Marker))
		}
		return ir.NewVar(strings.TrimPrefix(name, Marker))
	})
}

// ScopeRename makes the variables of every sub-select distinct from the
// enclosing query's variables. The query's own top-level modifiers
// (Slice, Top, Distinct, Reduced, Order, and the outermost Project) are
// left alone; every Project below them renames its sub-plan's
// non-projected variables. Inner sub-selects are renamed first, so a
// variable hidden two levels down carries two markers.
func ScopeRename(op queryir.Op) queryir.Op {
	switch o := op.(type) {
	case queryir.Slice:
		o.Sub = ScopeRename(o.Sub)
		return o
	case queryir.Top:
		o.Sub = ScopeRename(o.Sub)
		return o
	case queryir.Distinct:
		o.Sub = ScopeRename(o.Sub)
		return o
	case queryir.Reduced:
		o.Sub = ScopeRename(o.Sub)
		return o
	case queryir.Order:
		o.Sub = ScopeRename(o.Sub)
		return o
	case queryir.Project:
		o.Sub = renameSubSelects(o.Sub)
		return o
	default:
		return renameSubSelects(op)
	}
}

func renameSubSelects(op queryir.Op) queryir.Op {
	return rewrite.Apply(rewrite.Transform{
		Project: func(p queryir.Project) queryir.Op {
			hidden := queryir.MentionedVars(p.Sub)
			keep := ir.NewVarSet(p.Vars...)
			needed := false
			for v := range hidden {
				if !keep.Has(v) {
					needed = true
					break
				}
			}
			if !needed {
				return nil
			}
			return queryir.Project{Vars: p.Vars, Sub: Rename(p.Sub, keep)}
		},
	}, op)
}
