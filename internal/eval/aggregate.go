package eval

import (
	"strings"

	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/queryir"
)

type group struct {
	key  Binding
	rows []Binding
}

func (e *Evaluator) group(rows []Binding, g queryir.Group) []Binding {
	var groups []*group
	index := map[string]*group{}

	if len(g.Keys) == 0 {
		// one group even over no rows
		groups = append(groups, &group{key: Binding{}, rows: rows})
	} else {
		for _, r := range rows {
			key := Binding{}
			for _, k := range g.Keys {
				var t ir.Term
				var err error
				if k.Expr == nil {
					t = r[k.Var]
				} else {
					t, err = Eval(k.Expr, r, &e.env)
				}
				if err == nil && t != nil {
					key[k.Var] = t
				}
			}
			sig := Signature(key)
			grp, ok := index[sig]
			if !ok {
				grp = &group{key: key}
				index[sig] = grp
				groups = append(groups, grp)
			}
			grp.rows = append(grp.rows, r)
		}
	}

	out := make([]Binding, 0, len(groups))
	for _, grp := range groups {
		b := Binding{}
		for k, v := range grp.key {
			b[k] = v
		}
		for _, a := range g.Aggs {
			if t, ok := e.aggregate(a.Agg, grp.rows); ok {
				b[a.Var] = t
			}
		}
		out = append(out, b)
	}
	return out
}

// aggregate computes one aggregate over a group. It reports false when
// the result is an error, which leaves the variable unbound.
func (e *Evaluator) aggregate(agg queryir.Aggregator, rows []Binding) (ir.Term, bool) {
	if agg.Name == "count" && agg.Arg == nil {
		if agg.Distinct {
			return ir.NewInteger(int64(len(distinct(rows)))), true
		}
		return ir.NewInteger(int64(len(rows))), true
	}

	var values []ir.Term
	failed := false
	seen := map[string]bool{}
	for _, r := range rows {
		t, err := Eval(agg.Arg, r, &e.env)
		if err != nil {
			failed = true
			continue
		}
		if agg.Distinct {
			k := ir.MustKey(t)
			if seen[k] {
				continue
			}
			seen[k] = true
		}
		values = append(values, t)
	}

	switch agg.Name {
	case "count":
		return ir.NewInteger(int64(len(values))), true
	case "sum", "avg":
		if failed {
			return nil, false
		}
		sum := number{kind: kindInteger}
		for _, v := range values {
			n, err := asNumber(v)
			if err != nil {
				return nil, false
			}
			sum, _ = arithmetic(queryir.OpAdd, sum, n)
		}
		if agg.Name == "sum" {
			return sum.term(), true
		}
		if len(values) == 0 {
			return ir.NewInteger(0), true
		}
		avg, err := arithmetic(queryir.OpDiv, sum, number{kind: kindInteger, i: int64(len(values))})
		if err != nil {
			return nil, false
		}
		return avg.term(), true
	case "min", "max":
		if len(values) == 0 {
			return nil, false
		}
		best := values[0]
		for _, v := range values[1:] {
			c := OrderTerms(v, best)
			if (agg.Name == "min" && c < 0) || (agg.Name == "max" && c > 0) {
				best = v
			}
		}
		return best, true
	case "sample":
		if len(values) == 0 {
			return nil, false
		}
		return values[0], true
	case "group_concat":
		if failed {
			return nil, false
		}
		sep := agg.Separator
		if sep == "" {
			sep = " "
		}
		parts := make([]string, 0, len(values))
		for _, v := range values {
			l, ok := isString(v)
			if !ok {
				if n, isLit := v.(ir.Literal); isLit && n.IsNumeric() {
					parts = append(parts, n.Lexical)
					continue
				}
				return nil, false
			}
			parts = append(parts, l.Lexical)
		}
		return ir.NewString(strings.Join(parts, sep)), true
	}
	return nil, false
}
