// Package ir provides the term-level building blocks of the query plan IR.
//
// This package contains RDF-style terms (variables, IRIs, blank nodes,
// literals), triple and quad templates, and their canonical encoding. All
// other internal packages import ir; ir imports nothing internal. This keeps
// terms the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Terms are comparable values: two terms are equal iff == says so
//   - Variables are interned and NFC-normalized on construction
//   - Literal lexical forms are NFC-normalized on construction
//   - Canonical encoding (Key) is injective, so it is safe as a storage key
package ir
