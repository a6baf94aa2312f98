package eval

import (
	"context"
	"slices"
	"strings"

	"github.com/roach88/qopt/internal/ir"
)

// Signature is a canonical string for a solution: its bindings sorted by
// variable name, with terms in canonical key form.
func Signature(b Binding) string {
	parts := make([]string, 0, len(b))
	for v, t := range b {
		if t == nil {
			continue
		}
		parts = append(parts, v.String()+"="+ir.MustKey(t))
	}
	slices.Sort(parts)
	return strings.Join(parts, ";")
}

// SameSolutions reports whether two results hold the same solutions.
// When ordered is false they are compared as multisets.
func SameSolutions(a, b []Binding, ordered bool) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := signatures(a), signatures(b)
	if !ordered {
		slices.Sort(sa)
		slices.Sort(sb)
	}
	return slices.Equal(sa, sb)
}

func signatures(rows []Binding) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = Signature(r)
	}
	return out
}

// MemDataset is an in-memory Dataset for tests and small inputs.
type MemDataset []ir.Quad

// Find implements Dataset.
func (d MemDataset) Find(_ context.Context, g, s, p, o ir.Term) ([]ir.Quad, error) {
	var out []ir.Quad
	for _, q := range d {
		if g == nil && q.G == ir.DefaultGraph {
			continue
		}
		if matches(g, q.G) && matches(s, q.S) && matches(p, q.P) && matches(o, q.O) {
			out = append(out, q)
		}
	}
	return out, nil
}

func matches(slot, t ir.Term) bool {
	return slot == nil || slot == t
}
