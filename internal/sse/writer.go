package sse

import (
	"strconv"
	"strings"

	"github.com/roach88/qopt/internal/ir"
	"github.com/roach88/qopt/internal/queryir"
)

// Format renders op on one line in the canonical form ParseOp reads.
// Format(ParseOp(s)) is stable: formatting a parsed plan and parsing it
// again gives an Equal plan.
func Format(op queryir.Op) string {
	var b strings.Builder
	writeOp(&b, op, -1)
	return b.String()
}

// Pretty renders op with one plan node per line, children indented by
// two spaces. Leaf payloads (triples, expressions) stay on their node's
// line.
func Pretty(op queryir.Op) string {
	var b strings.Builder
	writeOp(&b, op, 0)
	return b.String()
}

// FormatExpr renders one expression.
func FormatExpr(e queryir.Expr) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

// FormatExprList renders a filter expression list: a lone expression
// bare, several as (exprlist ...).
func FormatExprList(es []queryir.Expr) string {
	var b strings.Builder
	writeExprList(&b, es)
	return b.String()
}

// FormatDataset renders quads as "(dataset ...)"; default-graph quads
// print as triples.
func FormatDataset(quads []ir.Quad) string {
	var b strings.Builder
	b.WriteString("(dataset")
	for _, q := range quads {
		if q.G == ir.DefaultGraph || q.G == nil {
			b.WriteString(" (triple ")
		} else {
			b.WriteString(" (quad ")
			b.WriteString(q.G.String())
			b.WriteByte(' ')
		}
		b.WriteString(q.S.String())
		b.WriteByte(' ')
		b.WriteString(q.P.String())
		b.WriteByte(' ')
		b.WriteString(q.O.String())
		b.WriteByte(')')
	}
	b.WriteByte(')')
	return b.String()
}

// writeOp writes one node. indent < 0 selects single-line output.
func writeOp(b *strings.Builder, op queryir.Op, indent int) {
	if op == nil {
		b.WriteString("(null)")
		return
	}
	b.WriteByte('(')
	b.WriteString(op.Name())
	writeHeader(b, op)

	for _, c := range queryir.Children(op) {
		if indent < 0 {
			b.WriteByte(' ')
			writeOp(b, c, -1)
			continue
		}
		b.WriteByte('\n')
		b.WriteString(strings.Repeat(" ", indent+2))
		writeOp(b, c, indent+2)
	}

	if lj, ok := op.(queryir.LeftJoin); ok && len(lj.Exprs) > 0 {
		b.WriteByte(' ')
		writeExprList(b, lj.Exprs)
	}
	b.WriteByte(')')
}

// writeHeader writes the payload that precedes a node's children.
func writeHeader(b *strings.Builder, op queryir.Op) {
	switch o := op.(type) {
	case queryir.Pattern:
		for _, t := range o.Triples {
			b.WriteByte(' ')
			if o.Graph != nil {
				b.WriteString("(quad ")
				b.WriteString(o.Graph.String())
				b.WriteByte(' ')
				b.WriteString(t.S.String())
				b.WriteByte(' ')
				b.WriteString(t.P.String())
				b.WriteByte(' ')
				b.WriteString(t.O.String())
				b.WriteByte(')')
			} else {
				b.WriteString(t.String())
			}
		}
	case queryir.Filter:
		b.WriteByte(' ')
		writeExprList(b, o.Exprs)
	case queryir.Extend:
		b.WriteByte(' ')
		writeBindings(b, o.Bindings)
	case queryir.Assign:
		b.WriteByte(' ')
		writeBindings(b, o.Bindings)
	case queryir.Project:
		b.WriteString(" (")
		writeVars(b, o.Vars)
		b.WriteByte(')')
	case queryir.Order:
		b.WriteString(" (")
		writeConds(b, o.Conds)
		b.WriteByte(')')
	case queryir.Slice:
		b.WriteByte(' ')
		b.WriteString(bound(o.Offset))
		b.WriteByte(' ')
		b.WriteString(bound(o.Length))
	case queryir.Top:
		b.WriteString(" (")
		b.WriteString(strconv.FormatInt(o.Count, 10))
		if len(o.Conds) > 0 {
			b.WriteByte(' ')
			writeConds(b, o.Conds)
		}
		b.WriteByte(')')
	case queryir.Table:
		writeTable(b, o)
	case queryir.Group:
		writeGroup(b, o)
	case queryir.Join, queryir.LeftJoin, queryir.Conditional, queryir.Union, queryir.Minus,
		queryir.Distinct, queryir.Reduced, queryir.Sequence, queryir.Disjunction:
		// no payload before the children
	}
}

func bound(n int64) string {
	if n == queryir.Unset {
		return "_"
	}
	return strconv.FormatInt(n, 10)
}

func writeVars(b *strings.Builder, vs []ir.Var) {
	for i, v := range vs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(v.String())
	}
}

func writeBindings(b *strings.Builder, bs []queryir.VarExpr) {
	b.WriteByte('(')
	for i, x := range bs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('(')
		b.WriteString(x.Var.String())
		b.WriteByte(' ')
		writeExpr(b, x.Expr)
		b.WriteByte(')')
	}
	b.WriteByte(')')
}

func writeConds(b *strings.Builder, cs []queryir.SortCond) {
	for i, c := range cs {
		if i > 0 {
			b.WriteByte(' ')
		}
		if c.Desc {
			b.WriteString("(desc ")
			writeExpr(b, c.Expr)
			b.WriteByte(')')
			continue
		}
		// a call whose name is "asc" or "desc" would be misread as a
		// direction
		if call, ok := c.Expr.(queryir.Call); ok && (call.Name == "asc" || call.Name == "desc") {
			b.WriteString("(asc ")
			writeExpr(b, c.Expr)
			b.WriteByte(')')
			continue
		}
		writeExpr(b, c.Expr)
	}
}

func writeTable(b *strings.Builder, t queryir.Table) {
	switch t.Kind {
	case queryir.TableUnit:
		b.WriteString(" unit")
		return
	case queryir.TableEmpty:
		b.WriteString(" empty")
		return
	}
	b.WriteString(" (vars")
	if len(t.Vars) > 0 {
		b.WriteByte(' ')
		writeVars(b, t.Vars)
	}
	b.WriteByte(')')
	for _, row := range t.Rows {
		b.WriteString(" (row")
		for i, term := range row {
			if term == nil || i >= len(t.Vars) {
				continue
			}
			b.WriteString(" [")
			b.WriteString(t.Vars[i].String())
			b.WriteByte(' ')
			b.WriteString(term.String())
			b.WriteByte(']')
		}
		b.WriteByte(')')
	}
}

func writeGroup(b *strings.Builder, g queryir.Group) {
	b.WriteString(" (")
	for i, k := range g.Keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		if k.Expr == nil {
			b.WriteString(k.Var.String())
			continue
		}
		b.WriteByte('(')
		b.WriteString(k.Var.String())
		b.WriteByte(' ')
		writeExpr(b, k.Expr)
		b.WriteByte(')')
	}
	b.WriteByte(')')
	if len(g.Aggs) == 0 {
		return
	}
	b.WriteString(" (")
	for i, a := range g.Aggs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('(')
		b.WriteString(a.Var.String())
		b.WriteString(" (")
		b.WriteString(a.Agg.Name)
		if a.Agg.Distinct {
			b.WriteString(" distinct")
		}
		if a.Agg.Separator != "" {
			b.WriteString(" (separator ")
			b.WriteString(ir.NewString(a.Agg.Separator).String())
			b.WriteByte(')')
		}
		if a.Agg.Arg != nil {
			b.WriteByte(' ')
			writeExpr(b, a.Agg.Arg)
		}
		b.WriteString("))")
	}
	b.WriteByte(')')
}

func writeExprList(b *strings.Builder, es []queryir.Expr) {
	if len(es) == 1 {
		writeExpr(b, es[0])
		return
	}
	b.WriteString("(exprlist")
	for _, e := range es {
		b.WriteByte(' ')
		writeExpr(b, e)
	}
	b.WriteByte(')')
}

func writeExpr(b *strings.Builder, e queryir.Expr) {
	switch x := e.(type) {
	case queryir.ExprVar:
		b.WriteString(x.Var.String())
	case queryir.Const:
		b.WriteString(x.Term.String())
	case queryir.Call:
		b.WriteByte('(')
		b.WriteString(x.Name)
		for _, a := range x.Args {
			b.WriteByte(' ')
			writeExpr(b, a)
		}
		b.WriteByte(')')
	default:
		b.WriteString("(null)")
	}
}
