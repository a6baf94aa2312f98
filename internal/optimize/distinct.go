package optimize

import (
	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/rewrite"
	"github.com/roach88/qopt/internal/scope"
)

// orderByDistinct moves a sort above the duplicate elimination when the
// sort only reads projected variables:
//
//	(distinct (project (?x) (order (?x) sub))) => (order (?x) (distinct (project (?x) sub)))
func orderByDistinct(op queryir.Op) queryir.Op {
	hoist := func(sub queryir.Op, wrap func(queryir.Op) queryir.Op) queryir.Op {
		p, ok := sub.(queryir.Project)
		if !ok {
			return nil
		}
		ord, ok := p.Sub.(queryir.Order)
		if !ok || !condsWithin(ord.Conds, p.Vars) {
			return nil
		}
		return queryir.Order{
			Conds: ord.Conds,
			Sub:   wrap(queryir.Project{Vars: p.Vars, Sub: ord.Sub}),
		}
	}
	return rewrite.Apply(rewrite.Transform{
		Distinct: func(d queryir.Distinct) queryir.Op {
			return hoist(d.Sub, func(op queryir.Op) queryir.Op { return queryir.Distinct{Sub: op} })
		},
		Reduced: func(r queryir.Reduced) queryir.Op {
			return hoist(r.Sub, func(op queryir.Op) queryir.Op { return queryir.Reduced{Sub: op} })
		},
	}, op)
}

// distinctToReduced weakens Distinct to Reduced over an order whose
// leading keys cover every output variable. Duplicates are then adjacent
// and a streaming Reduced removes them all.
func distinctToReduced(op queryir.Op) queryir.Op {
	return rewrite.Apply(rewrite.Transform{
		Distinct: func(d queryir.Distinct) queryir.Op {
			var conds []queryir.SortCond
			var outputs ir.VarSet
			switch o := d.Sub.(type) {
			case queryir.Project:
				ord, ok := o.Sub.(queryir.Order)
				if !ok {
					return nil
				}
				conds, outputs = ord.Conds, ir.NewVarSet(o.Vars...)
			case queryir.Order:
				conds, outputs = o.Conds, scope.Visible(o.Sub)
			default:
				return nil
			}
			if !leadingKeysCover(conds, outputs) {
				return nil
			}
			return queryir.Reduced{Sub: d.Sub}
		},
	}, op)
}

// leadingKeysCover reports whether the sort conditions name every
// variable of outputs before any key that is not a plain output
// variable.
func leadingKeysCover(conds []queryir.SortCond, outputs ir.VarSet) bool {
	seen := ir.VarSet{}
	for _, c := range conds {
		if seen.ContainsAll(outputs) {
			return true
		}
		v, ok := c.Expr.(queryir.ExprVar)
		if !ok || !outputs.Has(v.Var) {
			return false
		}
		seen.Add(v.Var)
	}
	return seen.ContainsAll(outputs)
}
