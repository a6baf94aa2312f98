// Package store provides a SQLite-backed quad store for the reference
// evaluator.
//
// # Layout
//
//   - terms: every distinct term once, keyed by its canonical encoding
//     (ir.Key) and decoded from kind, value, datatype and lang columns
//   - quads: (g, s, p, o) term ids, UNIQUE, with seq as load order
//   - loads: one row per loaded dataset, keyed by ir.DatasetDigest
//
// # Guarantees
//
// Loads are idempotent: a duplicate quad is ignored, and a dataset whose
// digest was loaded before is skipped without writing.
//
// Reads are deterministic: every query orders by seq, so Find returns
// quads in the order they were first loaded regardless of index choice.
//
// Scans are compiled by internal/querysql. Term values always travel as
// query parameters.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during loads
//   - synchronous=NORMAL
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: quads reference stored terms only
package store
