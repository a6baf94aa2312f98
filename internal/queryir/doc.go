// Package queryir defines the query plan IR consumed and produced by the
// optimizer: plan nodes (Op), expressions (Expr), and the structural
// operations every rewrite relies on.
//
// SEALED INTERFACES:
//
// Op and Expr are sealed interfaces using the marker method pattern. Only
// types in this package implement them, so a type switch over Op that
// lists every variant is exhaustive:
//
//	switch o := op.(type) {
//	case queryir.Pattern:
//	    // leaf scan
//	case queryir.Filter:
//	    // o.Exprs, o.Sub
//	...
//	}
//
// Every rule and analysis in this module switches over the full variant
// set. Adding a variant means revisiting each of them.
//
// VALUE SEMANTICS:
//
// Plan nodes are plain structs passed by value. They are never mutated
// after construction; a rewrite returns a new tree that shares untouched
// sub-trees with its input. Equal is deep positional equality, so
// Join(a, b) and Join(b, a) are different plans even though they
// evaluate to the same solutions.
//
// FINGERPRINTS:
//
// Fingerprint hashes the canonical byte form of a plan with SipHash.
// The pipeline uses it to log which rules changed the plan, and the batch
// command uses it to skip duplicate inputs.
package queryir
