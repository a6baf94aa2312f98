package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qopt/internal/ir"
)

func spo(s, p, o string) ir.Triple {
	return ir.Triple{S: ir.NewVar(s), P: ir.NewVar(p), O: ir.NewVar(o)}
}

func TestEqual_Positional(t *testing.T) {
	a := Pattern{Triples: []ir.Triple{spo("s", "p", "o")}}
	b := Pattern{Triples: []ir.Triple{spo("s", "p", "x")}}

	testCases := []struct {
		name string
		x, y Op
		want bool
	}{
		{"same pattern", a, Pattern{Triples: []ir.Triple{spo("s", "p", "o")}}, true},
		{"different pattern", a, b, false},
		{"join order matters", Join{Left: a, Right: b}, Join{Left: b, Right: a}, false},
		{"join equal", Join{Left: a, Right: b}, Join{Left: a, Right: b}, true},
		{"union vs join", Union{Left: a, Right: b}, Join{Left: a, Right: b}, false},
		{"unit vs empty", Unit(), Empty(), false},
		{"slice bounds", Slice{Offset: Unset, Length: 5, Sub: a}, Slice{Offset: 0, Length: 5, Sub: a}, false},
		{"filter exprs", Filter{Exprs: []Expr{Eq(V("o"), C(ir.NewInteger(1)))}, Sub: a},
			Filter{Exprs: []Expr{Eq(V("o"), C(ir.NewInteger(1)))}, Sub: a}, true},
		{"filter literal datatype", Filter{Exprs: []Expr{Eq(V("o"), C(ir.NewInteger(1)))}, Sub: a},
			Filter{Exprs: []Expr{Eq(V("o"), C(ir.NewDecimal("1")))}, Sub: a}, false},
		{"nil vs plan", nil, a, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Equal(tc.x, tc.y))
			if tc.want {
				assert.Equal(t, Fingerprint(tc.x), Fingerprint(tc.y))
			}
		})
	}
}

func TestFingerprint_DistinguishesPlans(t *testing.T) {
	a := Pattern{Triples: []ir.Triple{spo("s", "p", "o")}}
	b := Pattern{Triples: []ir.Triple{spo("s", "p", "x")}}

	assert.NotEqual(t, Fingerprint(Join{Left: a, Right: b}), Fingerprint(Join{Left: b, Right: a}))
	assert.NotEqual(t, Fingerprint(Distinct{Sub: a}), Fingerprint(Reduced{Sub: a}))
	assert.Len(t, FingerprintHex(a), 16)
}

func TestNewFilter_Merges(t *testing.T) {
	bgp := Pattern{Triples: []ir.Triple{spo("s", "p", "o")}}
	e1 := Eq(V("o"), C(ir.NewInteger(1)))
	e2 := Eq(V("s"), C(ir.IRI("http://example/a")))

	assert.Equal(t, bgp, NewFilter(nil, bgp))

	inner := NewFilter([]Expr{e1}, bgp)
	merged := NewFilter([]Expr{e2}, inner)

	f, ok := merged.(Filter)
	require.True(t, ok)
	assert.True(t, EqualExprs([]Expr{e1, e2}, f.Exprs))
	assert.True(t, Equal(bgp, f.Sub))
}

func TestNewSequence_Flattens(t *testing.T) {
	a := Pattern{Triples: []ir.Triple{spo("a", "b", "c")}}
	b := Pattern{Triples: []ir.Triple{spo("d", "e", "f")}}
	c := Unit()

	assert.Equal(t, Op(a), NewSequence(nil, a))

	seq := NewSequence(NewSequence(a, b), c)
	s, ok := seq.(Sequence)
	require.True(t, ok)
	assert.Len(t, s.Elems, 3)
}

func TestMentionedVars(t *testing.T) {
	op := Project{
		Vars: ir.Vars("s"),
		Sub: Filter{
			Exprs: []Expr{Eq(V("z"), C(ir.NewInteger(1)))},
			Sub: Extend{
				Bindings: []VarExpr{{Var: ir.NewVar("y"), Expr: V("o")}},
				Sub:      Pattern{Graph: ir.NewVar("g"), Triples: []ir.Triple{spo("s", "p", "o")}},
			},
		},
	}

	got := MentionedVars(op)
	names := []string{}
	for _, v := range got.Sorted() {
		names = append(names, v.Name())
	}
	assert.Equal(t, []string{"g", "o", "p", "s", "y", "z"}, names)
	assert.True(t, Mentions(op, ir.NewVar("z")))
	assert.False(t, Mentions(op, ir.NewVar("q")))
}

func TestWithChildren_RoundTrip(t *testing.T) {
	a := Pattern{Triples: []ir.Triple{spo("a", "b", "c")}}
	ops := []Op{
		Join{Left: a, Right: Unit()},
		LeftJoin{Left: a, Right: Unit(), Exprs: []Expr{V("a")}},
		Top{Count: 3, Conds: []SortCond{{Expr: V("a")}}, Sub: a},
		Sequence{Elems: []Op{a, Unit(), Empty()}},
		Group{Keys: []VarExpr{{Var: ir.NewVar("a")}}, Sub: a},
	}
	for _, op := range ops {
		t.Run(op.Name(), func(t *testing.T) {
			assert.True(t, Equal(op, WithChildren(op, Children(op))))
		})
	}
}

func TestRewriteExpr_SharesUnchanged(t *testing.T) {
	e := And(Eq(V("x"), C(ir.NewInteger(1))), Eq(V("y"), C(ir.NewInteger(2))))

	same := RewriteExpr(e, func(Expr) Expr { return nil })
	assert.True(t, EqualExpr(e, same))

	sub := SubstituteExpr(e, map[ir.Var]Expr{ir.NewVar("x"): C(ir.IRI("http://example/a"))})
	want := And(Eq(C(ir.IRI("http://example/a")), C(ir.NewInteger(1))), Eq(V("y"), C(ir.NewInteger(2))))
	assert.True(t, EqualExpr(want, sub))
}

func TestIsStable(t *testing.T) {
	assert.True(t, IsStable(Eq(V("x"), Fn("NOW"))))
	assert.False(t, IsStable(Eq(V("x"), Fn("RAND"))))
	assert.False(t, IsStable(Fn("str", Fn("uuid"))))
}

func TestCanonicalName(t *testing.T) {
	assert.Equal(t, FnSameTerm, CanonicalName("SAMETERM"))
	assert.Equal(t, "isIRI", CanonicalName("isURI"))
	assert.Equal(t, "http://example/fn", CanonicalName("http://example/fn"))
}

func TestValidate_WellFormed(t *testing.T) {
	op := Slice{Offset: Unset, Length: 5, Sub: Order{
		Conds: []SortCond{{Expr: V("z")}},
		Sub:   Pattern{Triples: []ir.Triple{spo("s", "p", "z")}},
	}}

	result := Validate(op)

	assert.True(t, result.IsWellFormed)
	assert.Empty(t, result.Warnings)
}

func TestValidate_Problems(t *testing.T) {
	bgp := Pattern{Triples: []ir.Triple{spo("s", "p", "o")}}

	testCases := []struct {
		name    string
		op      Op
		contain string
	}{
		{"nil child", Join{Left: bgp}, "nil plan node"},
		{"empty filter", Filter{Sub: bgp}, "no expressions"},
		{"bad arity", Filter{Exprs: []Expr{Call{Name: OpEq, Args: []Expr{V("s")}}}, Sub: bgp}, "takes 2 arguments"},
		{"table width", Table{Kind: TableData, Vars: ir.Vars("x", "y"), Rows: [][]ir.Term{{ir.NewInteger(1)}}}, "row 0 has 1 values"},
		{"extend twice", Extend{Bindings: []VarExpr{
			{Var: ir.NewVar("x"), Expr: C(ir.NewInteger(1))},
			{Var: ir.NewVar("x"), Expr: C(ir.NewInteger(2))},
		}, Sub: Unit()}, "bound twice"},
		{"negative slice", Slice{Offset: -4, Length: Unset, Sub: bgp}, "negative slice bound"},
		{"empty sequence", Sequence{}, "no elements"},
		{"projected twice", Project{Vars: ir.Vars("s", "s"), Sub: bgp}, "projected twice"},
		{"unknown aggregate", Group{Aggs: []AggBinding{{Var: ir.NewVar("c"), Agg: Aggregator{Name: "median"}}}, Sub: bgp}, "unknown aggregate"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Validate(tc.op)
			assert.False(t, result.IsWellFormed)
			require.NotEmpty(t, result.Warnings)
			assert.Contains(t, result.Warnings[0], tc.contain)
		})
	}
}

func TestValidate_AssignMayRebind(t *testing.T) {
	op := Assign{Bindings: []VarExpr{
		{Var: ir.NewVar("x"), Expr: C(ir.NewInteger(1))},
		{Var: ir.NewVar("x"), Expr: C(ir.NewInteger(1))},
	}, Sub: Unit()}

	assert.True(t, Validate(op).IsWellFormed)
}
