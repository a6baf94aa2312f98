package optimize

import (
	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/rewrite"
)

// propagateEmpty collapses operators that can produce no solutions
// because of an empty table below them. Running bottom-up, one pass
// carries an empty table as far up as it reaches.
//
// Group is left alone: a Group without keys produces one row even over
// no input.
func propagateEmpty(op queryir.Op) queryir.Op {
	isEmpty := queryir.IsEmptyTable
	empty := func(sub queryir.Op) queryir.Op {
		if isEmpty(sub) {
			return queryir.Empty()
		}
		return nil
	}
	return rewrite.Apply(rewrite.Transform{
		Join: func(j queryir.Join) queryir.Op {
			if isEmpty(j.Left) || isEmpty(j.Right) {
				return queryir.Empty()
			}
			return nil
		},
		LeftJoin: func(lj queryir.LeftJoin) queryir.Op {
			switch {
			case isEmpty(lj.Left):
				return queryir.Empty()
			case isEmpty(lj.Right):
				return lj.Left
			}
			return nil
		},
		Conditional: func(c queryir.Conditional) queryir.Op {
			switch {
			case isEmpty(c.Left):
				return queryir.Empty()
			case isEmpty(c.Right):
				return c.Left
			}
			return nil
		},
		Minus: func(m queryir.Minus) queryir.Op {
			if isEmpty(m.Left) || isEmpty(m.Right) {
				return m.Left
			}
			return nil
		},
		Union: func(u queryir.Union) queryir.Op {
			switch {
			case isEmpty(u.Left):
				return u.Right
			case isEmpty(u.Right):
				return u.Left
			}
			return nil
		},
		Sequence: func(s queryir.Sequence) queryir.Op {
			for _, e := range s.Elems {
				if isEmpty(e) {
					return queryir.Empty()
				}
			}
			return nil
		},
		Disjunction: func(d queryir.Disjunction) queryir.Op {
			var kept []queryir.Op
			for _, e := range d.Elems {
				if !isEmpty(e) {
					kept = append(kept, e)
				}
			}
			switch {
			case len(kept) == len(d.Elems):
				return nil
			case len(kept) == 0:
				return queryir.Empty()
			case len(kept) == 1:
				return kept[0]
			}
			return queryir.Disjunction{Elems: kept}
		},
		Filter:   func(o queryir.Filter) queryir.Op { return empty(o.Sub) },
		Extend:   func(o queryir.Extend) queryir.Op { return empty(o.Sub) },
		Assign:   func(o queryir.Assign) queryir.Op { return empty(o.Sub) },
		Project:  func(o queryir.Project) queryir.Op { return empty(o.Sub) },
		Distinct: func(o queryir.Distinct) queryir.Op { return empty(o.Sub) },
		Reduced:  func(o queryir.Reduced) queryir.Op { return empty(o.Sub) },
		Order:    func(o queryir.Order) queryir.Op { return empty(o.Sub) },
		Slice:    func(o queryir.Slice) queryir.Op { return empty(o.Sub) },
		Top:      func(o queryir.Top) queryir.Op { return empty(o.Sub) },
	}, op)
}
