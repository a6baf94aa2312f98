package optimize

import (
	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/rewrite"
)

// splitConjunctions turns each && in a filter list into separate list
// elements so that placement can move the parts independently.
func splitConjunctions(op queryir.Op) queryir.Op {
	return rewrite.Apply(rewrite.Transform{
		Filter: func(f queryir.Filter) queryir.Op {
			var out []queryir.Expr
			split := false
			for _, e := range f.Exprs {
				parts := conjuncts(e, nil)
				if len(parts) > 1 {
					split = true
				}
				out = append(out, parts...)
			}
			if !split {
				return nil
			}
			return queryir.Filter{Exprs: out, Sub: f.Sub}
		},
	}, op)
}

func conjuncts(e queryir.Expr, out []queryir.Expr) []queryir.Expr {
	if c, ok := e.(queryir.Call); ok && c.Name == queryir.OpAnd && len(c.Args) == 2 {
		out = conjuncts(c.Args[0], out)
		return conjuncts(c.Args[1], out)
	}
	return append(out, e)
}
