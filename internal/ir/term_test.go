package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVar_InternsByName(t *testing.T) {
	a := NewVar("x")
	b := NewVar("?x")
	c := NewVar("y")

	assert.Equal(t, a, b)
	assert.True(t, a == b, "interned vars must be == comparable")
	assert.NotEqual(t, a, c)
	assert.Equal(t, "?x", a.String())
	assert.Equal(t, "x", a.Name())
}

func TestNewVar_NFC(t *testing.T) {
	composed := NewVar("caf\u00e9")
	decomposed := NewVar("cafe\u0301")

	assert.Equal(t, composed, decomposed)
}

func TestVar_Zero(t *testing.T) {
	var v Var
	assert.True(t, v.IsZero())
	assert.Equal(t, "", v.Name())
	assert.False(t, NewVar("x").IsZero())
}

func TestTerm_String(t *testing.T) {
	testCases := []struct {
		name string
		term Term
		want string
	}{
		{"iri", IRI("http://example/x"), "<http://example/x>"},
		{"bnode", BlankNode("b0"), "_:b0"},
		{"var", NewVar("s"), "?s"},
		{"integer", NewInteger(42), "42"},
		{"negative integer", NewInteger(-7), "-7"},
		{"decimal", NewDecimal("1.5"), "1.5"},
		{"double", NewDouble(1), "1.0e0"},
		{"boolean", NewBoolean(true), "true"},
		{"string", NewString("a \"b\""), `"a \"b\""`},
		{"lang", NewLangLiteral("chat", "FR"), `"chat"@fr`},
		{"typed", NewLiteral("2012-01-01T00:00:00", XSDDateTime), `"2012-01-01T00:00:00"^^<http://www.w3.org/2001/XMLSchema#dateTime>`},
		{"non canonical integer", NewLiteral("01x", XSDInteger), `"01x"^^<http://www.w3.org/2001/XMLSchema#integer>`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.term.String())
		})
	}
}

func TestTriple_Vars(t *testing.T) {
	tr := Triple{S: NewVar("s"), P: IRI("http://example/p"), O: NewVar("s")}
	assert.Equal(t, []Var{NewVar("s")}, tr.Vars())
	assert.Equal(t, "(?s <http://example/p> ?s)", tr.String())
}

func TestKey_DistinguishesDatatypes(t *testing.T) {
	k1, err := Key(NewInteger(1))
	require.NoError(t, err)
	k2, err := Key(NewString("1"))
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2)
	assert.Equal(t, `"1"^^<http://www.w3.org/2001/XMLSchema#integer>`, k1)
}

func TestKey_RejectsVariables(t *testing.T) {
	_, err := Key(NewVar("x"))
	assert.Error(t, err)

	_, err = Key(nil)
	assert.Error(t, err)
}

func TestVarSet(t *testing.T) {
	s := NewVarSet(NewVar("b"), NewVar("a"))
	assert.True(t, s.Has(NewVar("a")))
	assert.True(t, s.ContainsAll(NewVarSet(NewVar("a"))))
	assert.False(t, s.ContainsAll(NewVarSet(NewVar("c"))))
	assert.Equal(t, []Var{NewVar("a"), NewVar("b")}, s.Sorted())

	c := s.Clone()
	c.Add(NewVar("c"))
	assert.False(t, s.Has(NewVar("c")))
}
