// Package rewrite applies per-variant handler bundles to plan trees
// bottom-up.
//
// Handlers always see their node with children that have already been
// transformed, so a rule that pushes work down can rely on the sub-plan
// being in its final form. Sub-trees that no handler touched are
// returned as the original values.
package rewrite
