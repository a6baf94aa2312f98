package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qopt/internal/ir"
)

const (
	exS = ir.IRI("http://example/s")
	exP = ir.IRI("http://example/p")
)

func TestCompile_ConstantSlots(t *testing.T) {
	compiler := NewSQLCompiler()

	sql, params, err := compiler.Compile(Scan{G: ir.DefaultGraph, S: exS, P: exP})
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM quads q")
	assert.Contains(t, sql, "q.g = (SELECT id FROM terms WHERE key = ?)")
	assert.Contains(t, sql, "q.s = (SELECT id FROM terms WHERE key = ?)")
	assert.Contains(t, sql, "q.p = (SELECT id FROM terms WHERE key = ?)")
	assert.NotContains(t, sql, "q.o =")
	assert.Equal(t, []any{
		"<urn:x-arq:DefaultGraph>",
		"<http://example/s>",
		"<http://example/p>",
	}, params)
}

func TestCompile_ValuesNeverInterpolated(t *testing.T) {
	compiler := NewSQLCompiler()

	sql, params, err := compiler.Compile(Scan{G: ir.DefaultGraph, O: ir.NewString("x' OR 1=1 --")})
	require.NoError(t, err)

	assert.NotContains(t, sql, "OR 1=1")
	assert.Contains(t, params, `"x' OR 1=1 --"^^<http://www.w3.org/2001/XMLSchema#string>`)
}

func TestCompile_OrderByMandatory(t *testing.T) {
	compiler := NewSQLCompiler()

	testCases := []struct {
		name string
		scan Scan
	}{
		{name: "everything", scan: Scan{}},
		{name: "default graph", scan: Scan{G: ir.DefaultGraph}},
		{name: "subject", scan: Scan{G: ir.DefaultGraph, S: exS}},
		{name: "repeated variable", scan: Scan{G: ir.DefaultGraph, S: ir.NewVar("x"), O: ir.NewVar("x")}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sql, _, err := compiler.Compile(tc.scan)
			require.NoError(t, err)
			assert.Contains(t, sql, "ORDER BY q.seq ASC")
		})
	}
}

func TestCompile_Graphs(t *testing.T) {
	compiler := NewSQLCompiler()

	testCases := []struct {
		name      string
		graph     ir.Term
		wantSQL   string
		wantParam any
	}{
		{
			name:      "nil graph means named graphs",
			graph:     nil,
			wantSQL:   "q.g NOT IN (SELECT id FROM terms WHERE key = ?)",
			wantParam: "<urn:x-arq:DefaultGraph>",
		},
		{
			name:      "graph variable means named graphs",
			graph:     ir.NewVar("g"),
			wantSQL:   "q.g NOT IN (SELECT id FROM terms WHERE key = ?)",
			wantParam: "<urn:x-arq:DefaultGraph>",
		},
		{
			name:      "named graph",
			graph:     ir.IRI("http://example/g"),
			wantSQL:   "q.g = (SELECT id FROM terms WHERE key = ?)",
			wantParam: "<http://example/g>",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sql, params, err := compiler.Compile(Scan{G: tc.graph})
			require.NoError(t, err)
			assert.Contains(t, sql, tc.wantSQL)
			assert.Equal(t, []any{tc.wantParam}, params)
		})
	}
}

func TestCompile_RepeatedVariable(t *testing.T) {
	compiler := NewSQLCompiler()
	x := ir.NewVar("x")

	sql, params, err := compiler.Compile(Scan{G: ir.DefaultGraph, S: x, P: exP, O: x})
	require.NoError(t, err)

	assert.Contains(t, sql, "q.s = q.o")
	assert.Len(t, params, 2)
}

func TestCompileCount(t *testing.T) {
	compiler := NewSQLCompiler()

	sql, params, err := compiler.CompileCount(Scan{G: ir.DefaultGraph, P: exP})
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(*) FROM quads q WHERE "+
		"q.g = (SELECT id FROM terms WHERE key = ?) AND "+
		"q.p = (SELECT id FROM terms WHERE key = ?)", sql)
	assert.Len(t, params, 2)
}

func TestCompile_JoinsEveryTerm(t *testing.T) {
	sql, _, err := NewSQLCompiler().Compile(Scan{})
	require.NoError(t, err)

	for _, slot := range []string{"g", "s", "p", "o"} {
		assert.Contains(t, sql, "JOIN terms t"+slot+" ON t"+slot+".id = q."+slot)
	}
}
