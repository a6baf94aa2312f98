package optimize

import (
	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/rewrite"
)

// combineExtends merges directly nested binding nodes of the same kind:
//
//	(extend ((?b e2)) (extend ((?a e1)) sub)) => (extend ((?a e1) (?b e2)) sub)
//
// Bindings evaluate left to right, so the inner ones stay first. Nodes
// binding a common variable are kept apart.
func combineExtends(op queryir.Op) queryir.Op {
	return rewrite.Apply(rewrite.Transform{
		Extend: func(outer queryir.Extend) queryir.Op {
			inner, ok := outer.Sub.(queryir.Extend)
			if !ok || !disjointBindings(inner.Bindings, outer.Bindings) {
				return nil
			}
			return queryir.Extend{Bindings: concatBindings(inner.Bindings, outer.Bindings), Sub: inner.Sub}
		},
		Assign: func(outer queryir.Assign) queryir.Op {
			inner, ok := outer.Sub.(queryir.Assign)
			if !ok || !disjointBindings(inner.Bindings, outer.Bindings) {
				return nil
			}
			return queryir.Assign{Bindings: concatBindings(inner.Bindings, outer.Bindings), Sub: inner.Sub}
		},
	}, op)
}

func disjointBindings(a, b []queryir.VarExpr) bool {
	return !ir.NewVarSet(queryir.BindingVars(a)...).Intersects(ir.NewVarSet(queryir.BindingVars(b)...))
}

func concatBindings(a, b []queryir.VarExpr) []queryir.VarExpr {
	out := make([]queryir.VarExpr, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
