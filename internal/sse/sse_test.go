package sse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/queryir"
)

func TestParseOp_Forms(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want string
	}{
		{"bgp", "(bgp (?s ?p ?o))", "(bgp (?s ?p ?o))"},
		{"bgp triple keyword", "(bgp (triple ?s ?p ?o) (triple ?o :q 1))", "(bgp (?s ?p ?o) (?o <http://example/q> 1))"},
		{"quadpattern", "(quadpattern (quad ?g ?s ?p ?o))", "(quadpattern (quad ?g ?s ?p ?o))"},
		{"filter single", "(filter (= ?x 1) (bgp (?s ?p ?x)))", "(filter (= ?x 1) (bgp (?s ?p ?x)))"},
		{"filter exprlist", "(filter (exprlist (= ?x 1) (!= ?y 2)) (table unit))", "(filter (exprlist (= ?x 1) (!= ?y 2)) (table unit))"},
		{"leftjoin expr", "(leftjoin (bgp (?s ?p ?o)) (bgp (?o ?q ?z)) (bound ?z))", "(leftjoin (bgp (?s ?p ?o)) (bgp (?o ?q ?z)) (bound ?z))"},
		{"extend", "(extend ((?x true) (?y (+ 1 2))) (table unit))", "(extend ((?x true) (?y (+ 1 2))) (table unit))"},
		{"project", "(project (?s) (bgp (?s ?p ?o)))", "(project (?s) (bgp (?s ?p ?o)))"},
		{"order", "(order (?p (desc ?o)) (bgp (?s ?p ?o)))", "(order (?p (desc ?o)) (bgp (?s ?p ?o)))"},
		{"order asc keyword", "(order ((asc ?p)) (bgp (?s ?p ?o)))", "(order (?p) (bgp (?s ?p ?o)))"},
		{"slice", "(slice _ 5 (bgp (?s ?p ?z)))", "(slice _ 5 (bgp (?s ?p ?z)))"},
		{"top", "(top (5 ?z) (bgp (?s ?p ?z)))", "(top (5 ?z) (bgp (?s ?p ?z)))"},
		{"table data", "(table (vars ?x ?y) (row [?x 1] [?y \"a\"]) (row [?y <http://example/b>]))",
			"(table (vars ?x ?y) (row [?x 1] [?y \"a\"]) (row [?y <http://example/b>]))"},
		{"group", "(group (?k) ((?c (count)) (?d (count distinct ?x))) (bgp (?k ?p ?x)))",
			"(group (?k) ((?c (count)) (?d (count distinct ?x))) (bgp (?k ?p ?x)))"},
		{"group_concat", "(group () ((?g (group_concat (separator \";\") ?x))) (table unit))",
			"(group () ((?g (group_concat (separator \";\") ?x))) (table unit))"},
		{"disjunction", "(disjunction (table unit) (table empty))", "(disjunction (table unit) (table empty))"},
		{"sequence", "(sequence (bgp (?s ?p ?o)) (table unit))", "(sequence (bgp (?s ?p ?o)) (table unit))"},
		{"renamed var", "(project (?x) (bgp (?/s ?p ?x)))", "(project (?x) (bgp (?/s ?p ?x)))"},
		{"comments", "; header\n(bgp (?s ?p ?o)) # trailing", "(bgp (?s ?p ?o))"},
		{"lt operator", "(filter (< ?x 456) (table unit))", "(filter (< ?x 456) (table unit))"},
		{"canonical function", "(filter (SAMETERM ?x :a) (table unit))", "(filter (sameTerm ?x <http://example/a>) (table unit))"},
		{"extension function", "(filter (<http://example/f> ?x) (table unit))", "(filter (<http://example/f> ?x) (table unit))"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			op, err := ParseOp(tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.want, Format(op))

			again, err := ParseOp(Format(op))
			require.NoError(t, err)
			assert.True(t, queryir.Equal(op, again), "format then parse must give an equal plan")
		})
	}
}

func TestParseTerm_Literals(t *testing.T) {
	testCases := []struct {
		src  string
		want ir.Term
	}{
		{"1", ir.NewInteger(1)},
		{"-7", ir.NewInteger(-7)},
		{"1.5", ir.NewDecimal("1.5")},
		{"2.5e-3", ir.NewLiteral("2.5e-3", ir.XSDDouble)},
		{"true", ir.NewBoolean(true)},
		{`"abc"`, ir.NewString("abc")},
		{`"chat"@FR`, ir.NewLangLiteral("chat", "fr")},
		{`"5"^^xsd:integer`, ir.NewInteger(5)},
		{`"x"^^<http://example/dt>`, ir.NewLiteral("x", "http://example/dt")},
		{`"a\"bA"`, ir.NewString(`a"bA`)},
		{"rdf:type", ir.RDFType},
		{"_:b0", ir.BlankNode("b0")},
		{"?x", ir.NewVar("x")},
	}

	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			got, err := ParseTerm(tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseOp_Errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		code string
		line int
	}{
		{"unclosed", "(bgp (?s ?p ?o)", CodeUnterminated, 1},
		{"unknown form", "(scan ?x)", CodeUnknownForm, 1},
		{"join arity", "(join (table unit))", CodeArity, 1},
		{"bad triple", "(bgp (?s ?p))", CodeArity, 1},
		{"unknown prefix", "(bgp (?s foo:p ?o))", CodeBadTerm, 1},
		{"string newline", "\n\n(filter (= ?x \"abc) (table unit))", CodeUnterminated, 3},
		{"mismatched", "(bgp (?s ?p ?o]", CodeUnexpected, 1},
		{"two forms", "(table unit) (table empty)", CodeUnexpected, 1},
		{"mixed graphs", "(quadpattern (quad :g1 ?s ?p ?o) (quad :g2 ?s ?p ?o))", CodeBadTerm, 1},
		{"table cell var", "(table (vars ?x) (row [?x ?y]))", CodeBadTerm, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseOp(tc.src)
			require.Error(t, err)

			var se *SyntaxError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tc.code, se.Code)
			assert.Equal(t, tc.line, se.Line)
		})
	}
}

func TestPretty(t *testing.T) {
	op, err := ParseOp("(sequence (filter (= ?x 1) (bgp (?s ?p ?x))) (bgp (?s1 ?p1 ?x1)))")
	require.NoError(t, err)

	want := "(sequence\n" +
		"  (filter (= ?x 1)\n" +
		"    (bgp (?s ?p ?x)))\n" +
		"  (bgp (?s1 ?p1 ?x1)))"
	assert.Equal(t, want, Pretty(op))

	again, err := ParseOp(Pretty(op))
	require.NoError(t, err)
	assert.True(t, queryir.Equal(op, again))
}

func TestParseDataset(t *testing.T) {
	quads, err := ParseDataset(`(dataset (triple :s :p 1) (quad :g :s :p "x"))`)
	require.NoError(t, err)
	require.Len(t, quads, 2)

	assert.Equal(t, ir.DefaultGraph, quads[0].G)
	assert.Equal(t, ir.IRI("http://example/g"), quads[1].G)
	assert.Equal(t, ir.NewString("x"), quads[1].O)

	assert.Equal(t, `(dataset (triple <http://example/s> <http://example/p> 1) (quad <http://example/g> <http://example/s> <http://example/p> "x"))`,
		FormatDataset(quads))

	_, err = ParseDataset(`(dataset (triple ?s :p 1))`)
	require.Error(t, err)
}

func TestParseExpr(t *testing.T) {
	e, err := ParseExpr("(|| (= ?x :a) (in ?y 1 2))")
	require.NoError(t, err)

	want := queryir.Or(
		queryir.Eq(queryir.V("x"), queryir.C(ir.IRI("http://example/a"))),
		queryir.Call{Name: queryir.OpIn, Args: []queryir.Expr{
			queryir.V("y"), queryir.C(ir.NewInteger(1)), queryir.C(ir.NewInteger(2)),
		}},
	)
	assert.True(t, queryir.EqualExpr(want, e))
	assert.Equal(t, "(|| (= ?x <http://example/a>) (in ?y 1 2))", FormatExpr(e))
}
