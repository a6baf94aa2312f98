package testutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/sse"
)

func TestMustOp(t *testing.T) {
	op := MustOp(t, "(filter (= ?x 1) (bgp (?x ?p ?y)))")
	_, ok := op.(queryir.Filter)
	assert.True(t, ok, "want a Filter, got %T", op)
	assert.Equal(t, "(filter (= ?x 1) (bgp (?x ?p ?y)))", sse.Format(op))
}

func TestMustExpr(t *testing.T) {
	e := MustExpr(t, "(&& (bound ?x) (< ?y 3))")
	assert.Equal(t, "(&& (bound ?x) (< ?y 3))", sse.FormatExpr(e))
}

func TestMustDataset(t *testing.T) {
	quads := MustDataset(t, "(dataset (triple :a :p 1) (quad :g :b :p 2))")
	assert.Len(t, quads, 2)
}

var _ TB = (*testing.T)(nil)

type recordingTB struct {
	failures []string
}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Fatalf(format string, args ...any) {
	r.failures = append(r.failures, fmt.Sprintf(format, args...))
}

func TestMustOp_ReportsParseFailure(t *testing.T) {
	tb := &recordingTB{}
	MustOp(tb, "(bgp (?s")
	assert.Len(t, tb.failures, 1)
	assert.Contains(t, tb.failures[0], "parse plan")
}
