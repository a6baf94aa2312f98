package ir

import (
	"slices"
	"strings"
	"unique"

	"golang.org/x/text/unicode/norm"
)

// Var is an interned query variable. Two variables are equal iff their
// names are equal; comparing Var values with == is the identity test.
//
// The zero Var is not a valid variable; use NewVar.
type Var struct {
	name unique.Handle[string]
}

func (Var) term() {}

// NewVar interns a variable name. A leading "?" is stripped and the name
// is NFC-normalized, so "?café" written in either Unicode form is one
// variable.
func NewVar(name string) Var {
	name = strings.TrimPrefix(name, "?")
	return Var{name: unique.Make(norm.NFC.String(name))}
}

// Vars interns several names at once.
func Vars(names ...string) []Var {
	out := make([]Var, len(names))
	for i, n := range names {
		out[i] = NewVar(n)
	}
	return out
}

// Name returns the variable name without the "?" prefix.
func (v Var) Name() string {
	if v.IsZero() {
		return ""
	}
	return v.name.Value()
}

// IsZero reports whether v is the zero Var.
func (v Var) IsZero() bool {
	return v == Var{}
}

// String renders the variable as "?name".
func (v Var) String() string {
	return "?" + v.Name()
}

// VarSet is an unordered set of variables.
type VarSet map[Var]struct{}

// NewVarSet creates a set holding vs.
func NewVarSet(vs ...Var) VarSet {
	s := make(VarSet, len(vs))
	for _, v := range vs {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts v.
func (s VarSet) Add(v Var) {
	s[v] = struct{}{}
}

// AddAll inserts every member of o.
func (s VarSet) AddAll(o VarSet) {
	for v := range o {
		s[v] = struct{}{}
	}
}

// Has reports membership.
func (s VarSet) Has(v Var) bool {
	_, ok := s[v]
	return ok
}

// ContainsAll reports whether every member of o is in s.
func (s VarSet) ContainsAll(o VarSet) bool {
	for v := range o {
		if !s.Has(v) {
			return false
		}
	}
	return true
}

// Intersects reports whether s and o share a member.
func (s VarSet) Intersects(o VarSet) bool {
	for v := range o {
		if s.Has(v) {
			return true
		}
	}
	return false
}

// Clone returns an independent copy.
func (s VarSet) Clone() VarSet {
	c := make(VarSet, len(s))
	for v := range s {
		c[v] = struct{}{}
	}
	return c
}

// Sorted returns the members ordered by name, for deterministic output.
func (s VarSet) Sorted() []Var {
	out := make([]Var, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b Var) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return out
}
