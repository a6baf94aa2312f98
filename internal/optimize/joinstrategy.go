package optimize

import (
	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/rewrite"
	"github.com/roach88/qopt/internal/scope"
)

// joinStrategy marks joins whose right side can be evaluated by
// substituting each left solution into it:
//
//	(join L R)        => (sequence L R)
//	(leftjoin L R)    => (conditional L R)
//
// R must be linear (patterns and sequences of patterns) and must not
// mention a variable that L binds only optionally, since substitution
// would then see an unbound variable where the join sees a value.
func joinStrategy(op queryir.Op) queryir.Op {
	return rewrite.Apply(rewrite.Transform{
		Join: func(j queryir.Join) queryir.Op {
			if !linearRight(j.Left, j.Right) {
				return nil
			}
			return queryir.NewSequence(j.Left, j.Right)
		},
		LeftJoin: func(lj queryir.LeftJoin) queryir.Op {
			if len(lj.Exprs) > 0 || !linearRight(lj.Left, lj.Right) {
				return nil
			}
			return queryir.Conditional{Left: lj.Left, Right: lj.Right}
		},
	}, op)
}

func linearRight(left, right queryir.Op) bool {
	if !isLinear(right) {
		return false
	}
	return !queryir.MentionedVars(right).Intersects(scope.Optional(left))
}

func isLinear(op queryir.Op) bool {
	switch o := op.(type) {
	case queryir.Pattern:
		return true
	case queryir.Table:
		return o.Kind == queryir.TableUnit
	case queryir.Sequence:
		for _, e := range o.Elems {
			if !isLinear(e) {
				return false
			}
		}
		return true
	}
	return false
}
