// Package eval implements expression semantics and a reference plan
// evaluator.
//
// The optimizer uses Fold to pre-compute closed expressions. The
// scenario harness uses Evaluator to run a plan before and after
// optimization and compare the solutions.
//
// ERRORS:
//
// Expression errors are *EvalError values carrying a code. They never
// abort a query: a Filter treats them as false, an Extend leaves the
// variable unbound, and an ORDER BY key sorts as unbound. The one
// aborting error is CodeRebind, raised when Extend meets a variable the
// solution already binds.
package eval
