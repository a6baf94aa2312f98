package optimize

import (
	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/rewrite"
)

// mergePatterns concatenates patterns over the same graph that are
// joined directly or adjacent in a sequence.
func mergePatterns(op queryir.Op) queryir.Op {
	return rewrite.Apply(rewrite.Transform{
		Join: func(j queryir.Join) queryir.Op {
			l, lok := j.Left.(queryir.Pattern)
			r, rok := j.Right.(queryir.Pattern)
			if !lok || !rok || !sameGraph(l.Graph, r.Graph) {
				return nil
			}
			return concatPatterns(l, r)
		},
		Sequence: func(s queryir.Sequence) queryir.Op {
			var elems []queryir.Op
			merged := false
			for _, e := range s.Elems {
				if p, ok := e.(queryir.Pattern); ok && len(elems) > 0 {
					if prev, ok := elems[len(elems)-1].(queryir.Pattern); ok && sameGraph(prev.Graph, p.Graph) {
						elems[len(elems)-1] = concatPatterns(prev, p)
						merged = true
						continue
					}
				}
				elems = append(elems, e)
			}
			if !merged {
				return nil
			}
			if len(elems) == 1 {
				return elems[0]
			}
			return queryir.Sequence{Elems: elems}
		},
	}, op)
}

func sameGraph(a, b ir.Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b
}

func concatPatterns(a, b queryir.Pattern) queryir.Pattern {
	triples := make([]ir.Triple, 0, len(a.Triples)+len(b.Triples))
	triples = append(triples, a.Triples...)
	triples = append(triples, b.Triples...)
	return queryir.Pattern{Graph: a.Graph, Triples: triples}
}
