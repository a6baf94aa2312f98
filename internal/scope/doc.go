// Package scope answers the variable-scope questions every rewrite rule
// asks before it moves an expression or substitutes a variable.
//
// BINDING CLASSES:
//
// Analyze splits the variables a sub-plan may bind into Certain (bound in
// every solution) and Optional (bound in some). A rule may relocate an
// expression onto a sub-plan only when the sub-plan certainly binds every
// variable the expression mentions.
//
// RENAMING:
//
// Rename prefixes Marker to every variable outside a keep set, and
// Reverse strips it again. ScopeRename applies Rename to every sub-select
// so that a variable hidden by an inner Project can never be confused
// with an outer variable of the same name. Source plans never contain
// names starting with Marker, which makes Reverse(Rename(p, keep), false)
// equal to p.
//
// SUBSTITUTION:
//
// Substitute replaces a variable by a constant throughout a sub-plan.
// SafeToSubstitute is the gate the equality rules check first.
package scope
