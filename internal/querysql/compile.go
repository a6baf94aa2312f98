package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/qopt/internal/ir"
)

// Scan is one quad-pattern access against the quad table. Each slot is a
// constant, a variable, or nil. Constants must match exactly, a variable
// that appears in two slots makes those slots equal, and nil matches
// anything. A nil G matches every named graph but not the default graph.
type Scan struct {
	G, S, P, O ir.Term
}

// slots names the quad columns in storage order.
var slots = []string{"g", "s", "p", "o"}

func (sc Scan) terms() []ir.Term {
	return []ir.Term{sc.G, sc.S, sc.P, sc.O}
}

// SQLCompiler compiles scans to parameterized SQL over the quads and
// terms tables of internal/store.
//
// Every query orders by q.seq so results come back in load order. Term
// values are always passed as parameters, never interpolated.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile returns a query selecting the decoded terms of every matching
// quad. Each row holds seq followed by kind, value, datatype and lang
// for g, s, p and o.
func (c *SQLCompiler) Compile(sc Scan) (string, []any, error) {
	where, params, err := c.compileWhere(sc)
	if err != nil {
		return "", nil, err
	}

	var cols []string
	var joins []string
	for _, slot := range slots {
		alias := "t" + slot
		cols = append(cols,
			alias+".kind", alias+".value", alias+".datatype", alias+".lang")
		joins = append(joins, fmt.Sprintf("JOIN terms %s ON %s.id = q.%s", alias, alias, slot))
	}

	sql := fmt.Sprintf("SELECT q.seq, %s FROM quads q %s%s ORDER BY q.seq ASC",
		strings.Join(cols, ", "),
		strings.Join(joins, " "),
		where)
	return sql, params, nil
}

// CompileCount returns a query counting the matching quads.
func (c *SQLCompiler) CompileCount(sc Scan) (string, []any, error) {
	where, params, err := c.compileWhere(sc)
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*) FROM quads q" + where, params, nil
}

func (c *SQLCompiler) compileWhere(sc Scan) (string, []any, error) {
	var preds []predicate
	firstSlot := map[ir.Var]string{}
	for i, t := range sc.terms() {
		col := slots[i]
		switch term := t.(type) {
		case nil:
			if col == "g" {
				preds = append(preds, notTerm{column: col, key: ir.MustKey(ir.DefaultGraph)})
			}
		case ir.Var:
			if prev, ok := firstSlot[term]; ok {
				preds = append(preds, sameColumn{left: prev, right: col})
				continue
			}
			firstSlot[term] = col
			if col == "g" {
				preds = append(preds, notTerm{column: col, key: ir.MustKey(ir.DefaultGraph)})
			}
		default:
			key, err := ir.Key(term)
			if err != nil {
				return "", nil, fmt.Errorf("compile %s slot: %w", col, err)
			}
			preds = append(preds, isTerm{column: col, key: key})
		}
	}
	if len(preds) == 0 {
		return "", nil, nil
	}
	sql, params := and(preds).compile()
	return " WHERE " + sql, params, nil
}

// predicate is one condition of a WHERE clause.
type predicate interface {
	compile() (string, []any)
}

// isTerm restricts a column to the term with the given canonical key. A
// key that was never stored yields NULL and so matches nothing.
type isTerm struct {
	column string
	key    string
}

func (p isTerm) compile() (string, []any) {
	return fmt.Sprintf("q.%s = (SELECT id FROM terms WHERE key = ?)", p.column), []any{p.key}
}

// notTerm excludes one term from a column.
type notTerm struct {
	column string
	key    string
}

func (p notTerm) compile() (string, []any) {
	return fmt.Sprintf("q.%s NOT IN (SELECT id FROM terms WHERE key = ?)", p.column), []any{p.key}
}

// sameColumn requires two columns to hold the same term.
type sameColumn struct {
	left, right string
}

func (p sameColumn) compile() (string, []any) {
	return fmt.Sprintf("q.%s = q.%s", p.left, p.right), nil
}

type and []predicate

func (a and) compile() (string, []any) {
	parts := make([]string, 0, len(a))
	var params []any
	for _, p := range a {
		sql, ps := p.compile()
		parts = append(parts, sql)
		params = append(params, ps...)
	}
	return strings.Join(parts, " AND "), params
}
