package optimize

import (
	"slices"

	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/rewrite"
)

// reorderPatterns sorts the triples of every pattern so that the most
// constrained come first. The sort is stable and uses no statistics.
func reorderPatterns(op queryir.Op) queryir.Op {
	return rewrite.Apply(rewrite.Transform{
		Pattern: func(p queryir.Pattern) queryir.Op {
			if len(p.Triples) < 2 {
				return nil
			}
			sorted := slices.Clone(p.Triples)
			slices.SortStableFunc(sorted, compareSelectivity)
			if slices.Equal(sorted, p.Triples) {
				return nil
			}
			return queryir.Pattern{Graph: p.Graph, Triples: sorted}
		},
	}, op)
}

// compareSelectivity orders by constant slot count, descending. Among
// equals, an rdf:type triple with a constant class goes after the
// others: class membership rarely narrows a match.
func compareSelectivity(a, b ir.Triple) int {
	if sa, sb := constSlots(a), constSlots(b); sa != sb {
		return sb - sa
	}
	ta, tb := isTypeAssertion(a), isTypeAssertion(b)
	switch {
	case ta && !tb:
		return 1
	case !ta && tb:
		return -1
	}
	return 0
}

func constSlots(t ir.Triple) int {
	n := 0
	for _, term := range t.Terms() {
		if ir.IsConstant(term) {
			n++
		}
	}
	return n
}

func isTypeAssertion(t ir.Triple) bool {
	return t.P == ir.RDFType && ir.IsConstant(t.O)
}
