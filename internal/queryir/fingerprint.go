package queryir

import (
	"encoding/binary"
	"fmt"

	"github.com/dchest/siphash"

	"github.com/roach88/qopt/internal/ir"
)

// fixed keys so fingerprints are stable across processes
const (
	fpKey0 = 0x71e3c0a9d5b2f86e
	fpKey1 = 0x2c4a97f01be35d13
)

// Fingerprint returns a 64-bit structural hash of op. Plans that are
// Equal have the same fingerprint; unequal plans collide with negligible
// probability, so a changed fingerprint always means a changed plan.
func Fingerprint(op Op) uint64 {
	var e encoder
	e.op(op)
	return siphash.Hash(fpKey0, fpKey1, e.buf)
}

// FingerprintHex renders Fingerprint(op) as 16 hex digits.
func FingerprintHex(op Op) string {
	return fmt.Sprintf("%016x", Fingerprint(op))
}

// encoder writes an unambiguous byte form of a plan: every string is
// length-prefixed and every list carries its length.
type encoder struct {
	buf []byte
}

func (e *encoder) str(s string) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(len(s)))
	e.buf = append(e.buf, s...)
}

func (e *encoder) num(n int64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, uint64(n))
}

func (e *encoder) flag(b bool) {
	if b {
		e.buf = append(e.buf, 1)
	} else {
		e.buf = append(e.buf, 0)
	}
}

func (e *encoder) term(t ir.Term) {
	if t == nil {
		e.str("")
		return
	}
	e.str(t.String())
}

func (e *encoder) vars(vs []ir.Var) {
	e.num(int64(len(vs)))
	for _, v := range vs {
		e.str(v.Name())
	}
}

func (e *encoder) expr(x Expr) {
	switch v := x.(type) {
	case nil:
		e.str("nil")
	case ExprVar:
		e.str("var")
		e.str(v.Var.Name())
	case Const:
		e.str("const")
		e.term(v.Term)
	case Call:
		e.str("call")
		e.str(v.Name)
		e.exprs(v.Args)
	}
}

func (e *encoder) exprs(xs []Expr) {
	e.num(int64(len(xs)))
	for _, x := range xs {
		e.expr(x)
	}
}

func (e *encoder) bindings(bs []VarExpr) {
	e.num(int64(len(bs)))
	for _, b := range bs {
		e.str(b.Var.Name())
		e.expr(b.Expr)
	}
}

func (e *encoder) conds(cs []SortCond) {
	e.num(int64(len(cs)))
	for _, c := range cs {
		e.flag(c.Desc)
		e.expr(c.Expr)
	}
}

func (e *encoder) op(op Op) {
	if op == nil {
		e.str("nil")
		return
	}
	e.str(op.Name())
	switch o := op.(type) {
	case Pattern:
		e.term(o.Graph)
		e.num(int64(len(o.Triples)))
		for _, t := range o.Triples {
			e.term(t.S)
			e.term(t.P)
			e.term(t.O)
		}
	case LeftJoin:
		e.exprs(o.Exprs)
	case Filter:
		e.exprs(o.Exprs)
	case Extend:
		e.bindings(o.Bindings)
	case Assign:
		e.bindings(o.Bindings)
	case Project:
		e.vars(o.Vars)
	case Order:
		e.conds(o.Conds)
	case Slice:
		e.num(o.Offset)
		e.num(o.Length)
	case Top:
		e.num(o.Count)
		e.conds(o.Conds)
	case Table:
		e.num(int64(o.Kind))
		e.vars(o.Vars)
		e.num(int64(len(o.Rows)))
		for _, row := range o.Rows {
			e.num(int64(len(row)))
			for _, t := range row {
				e.term(t)
			}
		}
	case Group:
		e.bindings(o.Keys)
		e.num(int64(len(o.Aggs)))
		for _, a := range o.Aggs {
			e.str(a.Var.Name())
			e.str(a.Agg.Name)
			e.flag(a.Agg.Distinct)
			e.str(a.Agg.Separator)
			e.expr(a.Agg.Arg)
		}
	}
	children := Children(op)
	e.num(int64(len(children)))
	for _, c := range children {
		e.op(c)
	}
}
