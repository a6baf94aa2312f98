// Package harness checks that optimization preserves query results.
//
// A scenario names a dataset, a plan, and optionally a policy and some
// expectations about the optimized plan. Run loads the dataset into a
// fresh in-memory store, optimizes the plan, evaluates both plans with
// the reference evaluator, and compares the solutions.
//
// # Scenario Format
//
//	name: top_n
//	description: "A small slice over an order becomes a top-n node"
//	dataset: |
//	  (dataset (triple :a :p 3) (triple :b :p 1))
//	plan: (slice _ 2 (order (?z) (bgp (?s ?p ?z))))
//	policy:
//	  rules: { top-n: "on" }
//	  params: { topNLimit: 100 }
//	expect:
//	  plan: (top (2 ?z) (bgp (?s ?p ?z)))
//	  fired: [top-n]
//	  not_fired: [filter-placement]
//	  solutions: 2
//
// Unknown fields are rejected. Solution equivalence is always checked;
// it is order-sensitive when the optimized plan has an Order or Top at
// the top, under any mix of Project, Distinct, Reduced, Slice, and
// Extend.
//
// # Deterministic Runs
//
// NOW() is fixed and UUID()/BNODE() draw from a sequence that restarts
// for each evaluation, so the original and optimized plans see the same
// values and golden snapshots are stable.
//
// # Golden Files
//
// RunWithGolden stores a text snapshot per scenario under
// testdata/golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
