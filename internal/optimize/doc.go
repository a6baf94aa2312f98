// Package optimize rewrites query plans into cheaper plans with the
// same solutions.
//
// PIPELINE:
//
// The registry lists every rule in the fixed order Optimize runs them.
// Each rule is a function from plan to plan built on rewrite.Apply; a
// rule that finds nothing to do returns a plan equal to its input. The
// pipeline runs once. Callers that want a fixpoint re-run it and compare
// with queryir.Equal.
//
// POLICY:
//
// A Policy holds a Setting per rule name (Default follows the rule's
// DefaultOn) and the rule parameters. New copies the policy, so an
// Optimizer never observes later edits.
//
// SAFETY:
//
// Rules that move an expression or substitute a variable consult
// package scope first: an expression only lands where every variable it
// mentions is certainly bound.
//
// OBSERVABILITY:
//
// WithLogger receives one debug record per rule that changed the plan.
// WithMetrics counts examined and fired rules per name and times whole
// Optimize calls.
package optimize
