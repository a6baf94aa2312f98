package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetDigest_Deterministic(t *testing.T) {
	q1 := Quad{G: DefaultGraph, S: IRI("http://example/s"), P: IRI("http://example/p"), O: NewInteger(1)}
	q2 := Quad{G: DefaultGraph, S: IRI("http://example/s"), P: IRI("http://example/p"), O: NewInteger(2)}

	d1, err := DatasetDigest([]Quad{q1, q2})
	require.NoError(t, err)
	d2, err := DatasetDigest([]Quad{q2, q1, q1})
	require.NoError(t, err)

	assert.Equal(t, d1, d2, "digest ignores order and duplicates")
	assert.Len(t, d1, 64, "SHA-256 hex is 64 characters")
}

func TestDatasetDigest_ChangesWithContent(t *testing.T) {
	q1 := Quad{G: DefaultGraph, S: IRI("http://example/s"), P: IRI("http://example/p"), O: NewInteger(1)}
	q2 := Quad{G: DefaultGraph, S: IRI("http://example/s"), P: IRI("http://example/p"), O: NewString("1")}

	d1, err := DatasetDigest([]Quad{q1})
	require.NoError(t, err)
	d2, err := DatasetDigest([]Quad{q2})
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2)
}

func TestDatasetDigest_RejectsVariables(t *testing.T) {
	_, err := DatasetDigest([]Quad{{G: DefaultGraph, S: NewVar("s"), P: IRI("http://example/p"), O: NewInteger(1)}})
	assert.Error(t, err)
}
