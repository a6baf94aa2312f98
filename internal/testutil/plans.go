// Package testutil holds helpers shared by package tests.
package testutil

import (
	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/sse"
)

// TB is the part of testing.TB the helpers need. Taking it instead of
// testing.TB keeps the testing package out of binaries that link
// testutil for SequentialIDs.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// MustOp parses a plan or fails the test.
func MustOp(tb TB, src string) queryir.Op {
	tb.Helper()
	op, err := sse.ParseOp(src)
	if err != nil {
		tb.Fatalf("parse plan %q: %v", src, err)
	}
	return op
}

// MustExpr parses an expression or fails the test.
func MustExpr(tb TB, src string) queryir.Expr {
	tb.Helper()
	e, err := sse.ParseExpr(src)
	if err != nil {
		tb.Fatalf("parse expression %q: %v", src, err)
	}
	return e
}

// MustDataset parses a (dataset ...) form or fails the test.
func MustDataset(tb TB, src string) []ir.Quad {
	tb.Helper()
	quads, err := sse.ParseDataset(src)
	if err != nil {
		tb.Fatalf("parse dataset: %v", err)
	}
	return quads
}
