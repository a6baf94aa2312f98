package optimize

import (
	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/rewrite"
)

// expandOneOf rewrites top-level IN and NOT IN filter expressions:
//
//	(in L c1 c2 c3)    => (|| (|| (= L c1) (= L c2)) (= L c3))
//	(notin L c1 c2 c3) => (!= L c1) (!= L c2) (!= L c3)
//
// The NOT IN parts become separate filter list elements. L must be
// stable since it is evaluated once per listed value.
func expandOneOf(op queryir.Op) queryir.Op {
	return rewrite.Apply(rewrite.Transform{
		Filter: func(f queryir.Filter) queryir.Op {
			var out []queryir.Expr
			changed := false
			for _, e := range f.Exprs {
				expanded, ok := expandMembership(e)
				if ok {
					changed = true
					out = append(out, expanded...)
				} else {
					out = append(out, e)
				}
			}
			if !changed {
				return nil
			}
			return queryir.Filter{Exprs: out, Sub: f.Sub}
		},
	}, op)
}

func expandMembership(e queryir.Expr) ([]queryir.Expr, bool) {
	c, ok := e.(queryir.Call)
	if !ok || len(c.Args) < 2 || !queryir.IsStable(c.Args[0]) {
		return nil, false
	}
	lhs, values := c.Args[0], c.Args[1:]

	switch c.Name {
	case queryir.OpIn:
		var or queryir.Expr
		for _, v := range values {
			eq := queryir.Eq(lhs, v)
			if or == nil {
				or = eq
			} else {
				or = queryir.Or(or, eq)
			}
		}
		return []queryir.Expr{or}, true
	case queryir.OpNotIn:
		out := make([]queryir.Expr, len(values))
		for i, v := range values {
			out[i] = queryir.Ne(lhs, v)
		}
		return out, true
	}
	return nil, false
}
