package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/querysql"
)

// Find returns the quads matching the slots in load order. A nil slot
// matches any term, and a nil graph matches every named graph but not
// ir.DefaultGraph.
func (s *Store) Find(ctx context.Context, g, subj, p, o ir.Term) ([]ir.Quad, error) {
	query, params, err := s.compiler.Compile(querysql.Scan{G: g, S: subj, P: p, O: o})
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer rows.Close()

	var out []ir.Quad
	for rows.Next() {
		q, err := scanQuad(rows)
		if err != nil {
			return nil, fmt.Errorf("find: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	return out, nil
}

// Quads returns every stored quad in load order.
func (s *Store) Quads(ctx context.Context) ([]ir.Quad, error) {
	named, err := s.Find(ctx, nil, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	def, err := s.Find(ctx, ir.DefaultGraph, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	return append(def, named...), nil
}

func scanQuad(rows *sql.Rows) (ir.Quad, error) {
	var seq int64
	var cols [4]termColumns
	dest := []any{&seq}
	for i := range cols {
		dest = append(dest, &cols[i].kind, &cols[i].value, &cols[i].datatype, &cols[i].lang)
	}
	if err := rows.Scan(dest...); err != nil {
		return ir.Quad{}, err
	}

	var terms [4]ir.Term
	for i, c := range cols {
		t, err := c.decode()
		if err != nil {
			return ir.Quad{}, fmt.Errorf("quad %d: %w", seq, err)
		}
		terms[i] = t
	}
	return ir.Quad{G: terms[0], S: terms[1], P: terms[2], O: terms[3]}, nil
}
