package queryir

import "github.com/roach88/qopt/internal/ir"

// PatternVars returns the variables of a pattern, including a variable
// graph name.
func PatternVars(p Pattern) ir.VarSet {
	s := ir.VarSet{}
	if v, ok := p.Graph.(ir.Var); ok {
		s.Add(v)
	}
	for _, t := range p.Triples {
		for _, v := range t.Vars() {
			s.Add(v)
		}
	}
	return s
}

// MentionedVars returns every variable that occurs anywhere in op:
// pattern slots, expressions, binding targets, projections, table
// columns, and group keys. It ignores scope.
func MentionedVars(op Op) ir.VarSet {
	s := ir.VarSet{}
	Walk(op, func(n Op) bool {
		addNodeVars(s, n)
		return true
	})
	return s
}

// Mentions reports whether v occurs anywhere in op.
func Mentions(op Op, v ir.Var) bool {
	found := false
	Walk(op, func(n Op) bool {
		if found {
			return false
		}
		s := ir.VarSet{}
		addNodeVars(s, n)
		found = s.Has(v)
		return !found
	})
	return found
}

func addNodeVars(s ir.VarSet, n Op) {
	switch o := n.(type) {
	case Pattern:
		s.AddAll(PatternVars(o))
	case Extend:
		for _, b := range o.Bindings {
			s.Add(b.Var)
		}
	case Assign:
		for _, b := range o.Bindings {
			s.Add(b.Var)
		}
	case Project:
		for _, v := range o.Vars {
			s.Add(v)
		}
	case Table:
		for _, v := range o.Vars {
			s.Add(v)
		}
	case Group:
		for _, k := range o.Keys {
			s.Add(k.Var)
		}
		for _, a := range o.Aggs {
			s.Add(a.Var)
		}
	}
	for _, e := range NodeExprs(n) {
		addExprVars(s, e)
	}
}
