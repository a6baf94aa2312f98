package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/qopt/internal/ir"
)

// LoadResult describes one Load call.
type LoadResult struct {
	// Digest is the ir.DatasetDigest of the loaded quads.
	Digest string
	// Inserted counts quads that were not stored before.
	Inserted int
	// Skipped is set when a dataset with the same digest was loaded
	// earlier and nothing was written.
	Skipped bool
}

// Load stores quads in one transaction. Duplicate quads are ignored,
// and loading the same dataset twice is a no-op identified by its
// digest. Quads must not contain variables.
func (s *Store) Load(ctx context.Context, quads []ir.Quad) (LoadResult, error) {
	digest, err := ir.DatasetDigest(quads)
	if err != nil {
		return LoadResult{}, fmt.Errorf("load: %w", err)
	}
	res := LoadResult{Digest: digest}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("load: begin: %w", err)
	}
	defer tx.Rollback()

	var seen int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM loads WHERE digest = ?", digest).Scan(&seen)
	if err != nil {
		return res, fmt.Errorf("load: %w", err)
	}
	if seen > 0 {
		res.Skipped = true
		return res, nil
	}

	ids := termIDs{tx: tx, cache: map[string]int64{}}
	for i, q := range quads {
		var row [4]int64
		for j, t := range []ir.Term{q.G, q.S, q.P, q.O} {
			id, err := ids.intern(ctx, t)
			if err != nil {
				return res, fmt.Errorf("load: quad %d: %w", i, err)
			}
			row[j] = id
		}
		r, err := tx.ExecContext(ctx,
			"INSERT INTO quads (g, s, p, o) VALUES (?, ?, ?, ?) ON CONFLICT(g, s, p, o) DO NOTHING",
			row[0], row[1], row[2], row[3])
		if err != nil {
			return res, fmt.Errorf("load: quad %d: %w", i, err)
		}
		if n, err := r.RowsAffected(); err == nil {
			res.Inserted += int(n)
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO loads (digest, quad_count, inserted) VALUES (?, ?, ?)",
		digest, len(quads), res.Inserted)
	if err != nil {
		return res, fmt.Errorf("load: record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("load: commit: %w", err)
	}
	return res, nil
}

// termIDs interns terms within one load transaction.
type termIDs struct {
	tx    *sql.Tx
	cache map[string]int64
}

func (t termIDs) intern(ctx context.Context, term ir.Term) (int64, error) {
	key, err := ir.Key(term)
	if err != nil {
		return 0, err
	}
	if id, ok := t.cache[key]; ok {
		return id, nil
	}

	cols := encodeTerm(term)
	_, err = t.tx.ExecContext(ctx,
		"INSERT INTO terms (key, kind, value, datatype, lang) VALUES (?, ?, ?, ?, ?) ON CONFLICT(key) DO NOTHING",
		key, cols.kind, cols.value, cols.datatype, cols.lang)
	if err != nil {
		return 0, fmt.Errorf("intern %s: %w", key, err)
	}

	var id int64
	err = t.tx.QueryRowContext(ctx, "SELECT id FROM terms WHERE key = ?", key).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("intern %s: term vanished", key)
	}
	if err != nil {
		return 0, fmt.Errorf("intern %s: %w", key, err)
	}
	t.cache[key] = id
	return id, nil
}
