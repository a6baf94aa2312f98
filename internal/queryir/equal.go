package queryir

import "github.com/roach88/qopt/internal/ir"

// Equal reports deep structural equality of two plans.
//
// Equality is positional: Join, Union, and Disjunction compare children in
// textual order even though evaluation is commutative, and Filter
// expression lists compare element by element.
func Equal(a, b Op) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case Pattern:
		y, ok := b.(Pattern)
		return ok && equalPattern(x, y)
	case Join:
		y, ok := b.(Join)
		return ok && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case LeftJoin:
		y, ok := b.(LeftJoin)
		return ok && Equal(x.Left, y.Left) && Equal(x.Right, y.Right) && EqualExprs(x.Exprs, y.Exprs)
	case Conditional:
		y, ok := b.(Conditional)
		return ok && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case Union:
		y, ok := b.(Union)
		return ok && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case Minus:
		y, ok := b.(Minus)
		return ok && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case Filter:
		y, ok := b.(Filter)
		return ok && EqualExprs(x.Exprs, y.Exprs) && Equal(x.Sub, y.Sub)
	case Extend:
		y, ok := b.(Extend)
		return ok && equalBindings(x.Bindings, y.Bindings) && Equal(x.Sub, y.Sub)
	case Assign:
		y, ok := b.(Assign)
		return ok && equalBindings(x.Bindings, y.Bindings) && Equal(x.Sub, y.Sub)
	case Project:
		y, ok := b.(Project)
		return ok && equalVars(x.Vars, y.Vars) && Equal(x.Sub, y.Sub)
	case Distinct:
		y, ok := b.(Distinct)
		return ok && Equal(x.Sub, y.Sub)
	case Reduced:
		y, ok := b.(Reduced)
		return ok && Equal(x.Sub, y.Sub)
	case Order:
		y, ok := b.(Order)
		return ok && equalConds(x.Conds, y.Conds) && Equal(x.Sub, y.Sub)
	case Slice:
		y, ok := b.(Slice)
		return ok && x.Offset == y.Offset && x.Length == y.Length && Equal(x.Sub, y.Sub)
	case Top:
		y, ok := b.(Top)
		return ok && x.Count == y.Count && equalConds(x.Conds, y.Conds) && Equal(x.Sub, y.Sub)
	case Sequence:
		y, ok := b.(Sequence)
		return ok && equalOps(x.Elems, y.Elems)
	case Table:
		y, ok := b.(Table)
		return ok && equalTable(x, y)
	case Group:
		y, ok := b.(Group)
		return ok && equalBindings(x.Keys, y.Keys) && equalAggs(x.Aggs, y.Aggs) && Equal(x.Sub, y.Sub)
	case Disjunction:
		y, ok := b.(Disjunction)
		return ok && equalOps(x.Elems, y.Elems)
	default:
		return false
	}
}

// EqualExpr reports deep structural equality of two expressions.
func EqualExpr(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case ExprVar:
		y, ok := b.(ExprVar)
		return ok && x.Var == y.Var
	case Const:
		y, ok := b.(Const)
		return ok && x.Term == y.Term
	case Call:
		y, ok := b.(Call)
		return ok && x.Name == y.Name && EqualExprs(x.Args, y.Args)
	default:
		return false
	}
}

// EqualExprs compares expression lists element by element.
func EqualExprs(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !EqualExpr(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalPattern(a, b Pattern) bool {
	if a.Graph != b.Graph || len(a.Triples) != len(b.Triples) {
		return false
	}
	for i := range a.Triples {
		if a.Triples[i] != b.Triples[i] {
			return false
		}
	}
	return true
}

func equalOps(a, b []Op) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalVars(a, b []ir.Var) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalBindings(a, b []VarExpr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Var != b[i].Var || !EqualExpr(a[i].Expr, b[i].Expr) {
			return false
		}
	}
	return true
}

func equalConds(a, b []SortCond) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Desc != b[i].Desc || !EqualExpr(a[i].Expr, b[i].Expr) {
			return false
		}
	}
	return true
}

func equalAggs(a, b []AggBinding) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.Var != y.Var || x.Agg.Name != y.Agg.Name || x.Agg.Distinct != y.Agg.Distinct ||
			x.Agg.Separator != y.Agg.Separator || !EqualExpr(x.Agg.Arg, y.Agg.Arg) {
			return false
		}
	}
	return true
}

func equalTable(a, b Table) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind != TableData {
		return true
	}
	if !equalVars(a.Vars, b.Vars) || len(a.Rows) != len(b.Rows) {
		return false
	}
	for i := range a.Rows {
		if len(a.Rows[i]) != len(b.Rows[i]) {
			return false
		}
		for j := range a.Rows[i] {
			if a.Rows[i][j] != b.Rows[i][j] {
				return false
			}
		}
	}
	return true
}
