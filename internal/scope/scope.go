package scope

import (
	"fmt"

	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/queryir"
)

// Sets holds the two binding classes of a sub-plan. A variable is in at
// most one of them.
type Sets struct {
	// Certain variables are bound in every solution.
	Certain ir.VarSet
	// Optional variables are bound in some solutions.
	Optional ir.VarSet
}

// Visible returns Certain plus Optional.
func (s Sets) Visible() ir.VarSet {
	out := s.Certain.Clone()
	out.AddAll(s.Optional)
	return out
}

// Analyze computes the binding sets of op.
func Analyze(op queryir.Op) Sets {
	switch o := op.(type) {
	case nil:
		return empty()
	case queryir.Pattern:
		return Sets{Certain: queryir.PatternVars(o), Optional: ir.VarSet{}}
	case queryir.Join:
		return joinSets(Analyze(o.Left), Analyze(o.Right))
	case queryir.Sequence:
		out := empty()
		for _, e := range o.Elems {
			out = joinSets(out, Analyze(e))
		}
		return out
	case queryir.LeftJoin:
		return optionalSets(Analyze(o.Left), Analyze(o.Right))
	case queryir.Conditional:
		return optionalSets(Analyze(o.Left), Analyze(o.Right))
	case queryir.Union:
		return unionSets(Analyze(o.Left), Analyze(o.Right))
	case queryir.Disjunction:
		if len(o.Elems) == 0 {
			return empty()
		}
		out := Analyze(o.Elems[0])
		for _, e := range o.Elems[1:] {
			out = unionSets(out, Analyze(e))
		}
		return out
	case queryir.Minus:
		return Analyze(o.Left)
	case queryir.Filter:
		return Analyze(o.Sub)
	case queryir.Extend:
		return bindSets(Analyze(o.Sub), o.Bindings)
	case queryir.Assign:
		return bindSets(Analyze(o.Sub), o.Bindings)
	case queryir.Project:
		return projectSets(Analyze(o.Sub), o.Vars)
	case queryir.Distinct:
		return Analyze(o.Sub)
	case queryir.Reduced:
		return Analyze(o.Sub)
	case queryir.Order:
		return Analyze(o.Sub)
	case queryir.Slice:
		return Analyze(o.Sub)
	case queryir.Top:
		return Analyze(o.Sub)
	case queryir.Table:
		return tableSets(o)
	case queryir.Group:
		return groupSets(Analyze(o.Sub), o)
	default:
		panic(fmt.Sprintf("scope: unknown op %T", op))
	}
}

// Certain returns the variables bound in every solution of op.
func Certain(op queryir.Op) ir.VarSet {
	return Analyze(op).Certain
}

// Optional returns the variables bound in some but not necessarily all
// solutions of op.
func Optional(op queryir.Op) ir.VarSet {
	return Analyze(op).Optional
}

// Visible returns every variable that may be bound in a solution of op.
func Visible(op queryir.Op) ir.VarSet {
	return Analyze(op).Visible()
}

func empty() Sets {
	return Sets{Certain: ir.VarSet{}, Optional: ir.VarSet{}}
}

// normalize removes certain variables from the optional set.
func normalize(s Sets) Sets {
	for v := range s.Certain {
		delete(s.Optional, v)
	}
	return s
}

// joinSets: a variable certain on either side is certain in the join,
// since compatible solutions agree on shared variables.
func joinSets(l, r Sets) Sets {
	out := Sets{Certain: l.Certain.Clone(), Optional: l.Optional.Clone()}
	out.Certain.AddAll(r.Certain)
	out.Optional.AddAll(r.Optional)
	return normalize(out)
}

// optionalSets: everything the right side contributes beyond the left's
// certain set is optional.
func optionalSets(l, r Sets) Sets {
	out := Sets{Certain: l.Certain.Clone(), Optional: l.Optional.Clone()}
	out.Optional.AddAll(r.Certain)
	out.Optional.AddAll(r.Optional)
	return normalize(out)
}

func unionSets(l, r Sets) Sets {
	out := empty()
	for v := range l.Certain {
		if r.Certain.Has(v) {
			out.Certain.Add(v)
		}
	}
	for _, s := range []ir.VarSet{l.Certain, l.Optional, r.Certain, r.Optional} {
		for v := range s {
			if !out.Certain.Has(v) {
				out.Optional.Add(v)
			}
		}
	}
	return out
}

func projectSets(s Sets, vars []ir.Var) Sets {
	out := empty()
	for _, v := range vars {
		switch {
		case s.Certain.Has(v):
			out.Certain.Add(v)
		case s.Optional.Has(v):
			out.Optional.Add(v)
		}
	}
	return out
}

// bindSets adds Extend/Assign targets. A target is certain only when its
// expression cannot fail: a constant, or a variable certain at that point.
func bindSets(s Sets, bindings []queryir.VarExpr) Sets {
	out := Sets{Certain: s.Certain.Clone(), Optional: s.Optional.Clone()}
	for _, b := range bindings {
		if AlwaysBinds(b.Expr, out.Certain) {
			out.Certain.Add(b.Var)
			delete(out.Optional, b.Var)
		} else if !out.Certain.Has(b.Var) {
			out.Optional.Add(b.Var)
		}
	}
	return out
}

// AlwaysBinds reports whether evaluating e can never raise an error
// given that the variables in certain are bound.
func AlwaysBinds(e queryir.Expr, certain ir.VarSet) bool {
	switch x := e.(type) {
	case queryir.Const:
		return true
	case queryir.ExprVar:
		return certain.Has(x.Var)
	default:
		return false
	}
}

func tableSets(t queryir.Table) Sets {
	out := empty()
	if t.Kind != queryir.TableData {
		return out
	}
	for i, v := range t.Vars {
		all, some := len(t.Rows) > 0, false
		for _, row := range t.Rows {
			if i < len(row) && row[i] != nil {
				some = true
			} else {
				all = false
			}
		}
		switch {
		case all:
			out.Certain.Add(v)
		case some:
			out.Optional.Add(v)
		}
	}
	return out
}

// groupSets: plain-variable keys certain below stay certain; computed
// keys and aggregates other than COUNT may be unbound.
func groupSets(sub Sets, g queryir.Group) Sets {
	out := empty()
	for _, k := range g.Keys {
		if k.Expr == nil {
			switch {
			case sub.Certain.Has(k.Var):
				out.Certain.Add(k.Var)
			case sub.Optional.Has(k.Var):
				out.Optional.Add(k.Var)
			}
			continue
		}
		if AlwaysBinds(k.Expr, sub.Certain) {
			out.Certain.Add(k.Var)
		} else {
			out.Optional.Add(k.Var)
		}
	}
	for _, a := range g.Aggs {
		if a.Agg.Name == "count" {
			out.Certain.Add(a.Var)
		} else {
			out.Optional.Add(a.Var)
		}
	}
	return normalize(out)
}
