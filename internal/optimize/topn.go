package optimize

import (
	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/rewrite"
)

// fuseTopN replaces a small slice over an order with a Top node:
//
//	(slice _ 5 (order (?z) sub))   => (top (5 ?z) sub)
//	(slice 2 5 (order (?z) sub))   => (slice 2 _ (top (7 ?z) sub))
//	(slice _ 5 (distinct (order (?z) sub))) => (top (5 ?z) (distinct sub))
//
// Reduced is treated as Distinct. A Project between the slice and the
// order is kept above the Top, or inside the Distinct under it, and only
// when the sort keys are projected; otherwise the slice is left alone.
// The window offset+length must stay below limit.
func fuseTopN(op queryir.Op, limit int64) queryir.Op {
	return rewrite.Apply(rewrite.Transform{
		Slice: func(s queryir.Slice) queryir.Op {
			if s.Length == queryir.Unset {
				return nil
			}
			offset := max(s.Offset, 0)
			if s.Length >= limit || offset >= limit-s.Length {
				return nil
			}
			n := offset + s.Length

			out := topOf(s.Sub, n)
			if out == nil {
				return nil
			}
			if offset > 0 {
				out = queryir.Slice{Offset: offset, Length: queryir.Unset, Sub: out}
			}
			return out
		},
	}, op)
}

func topOf(sub queryir.Op, n int64) queryir.Op {
	switch o := sub.(type) {
	case queryir.Order:
		return queryir.Top{Count: n, Conds: o.Conds, Sub: o.Sub}
	case queryir.Project:
		ord, ok := o.Sub.(queryir.Order)
		if !ok || !condsWithin(ord.Conds, o.Vars) {
			return nil
		}
		return queryir.Project{Vars: o.Vars, Sub: queryir.Top{Count: n, Conds: ord.Conds, Sub: ord.Sub}}
	case queryir.Distinct:
		return topOverDistinct(o.Sub, n)
	case queryir.Reduced:
		return topOverDistinct(o.Sub, n)
	}
	return nil
}

func topOverDistinct(sub queryir.Op, n int64) queryir.Op {
	switch o := sub.(type) {
	case queryir.Order:
		return queryir.Top{Count: n, Conds: o.Conds, Sub: queryir.Distinct{Sub: o.Sub}}
	case queryir.Project:
		ord, ok := o.Sub.(queryir.Order)
		if !ok || !condsWithin(ord.Conds, o.Vars) {
			return nil
		}
		inner := queryir.Distinct{Sub: queryir.Project{Vars: o.Vars, Sub: ord.Sub}}
		return queryir.Top{Count: n, Conds: ord.Conds, Sub: inner}
	}
	return nil
}

// condsWithin reports whether every variable of the sort conditions is
// one of vars.
func condsWithin(conds []queryir.SortCond, vars []ir.Var) bool {
	allowed := ir.NewVarSet(vars...)
	for _, c := range conds {
		if !allowed.ContainsAll(queryir.ExprVars(c.Expr)) {
			return false
		}
	}
	return true
}
