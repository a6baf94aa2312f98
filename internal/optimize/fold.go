package optimize

import (
	"github.com/roach88/qopt/internal/eval"
	"github.com/roach88/qopt/internal/queryir"
	"github.com/roach88/qopt/internal/rewrite"
)

// foldConstants replaces closed sub-expressions by their value. An
// expression that raises an error is kept so that execution reports the
// error per solution: inside a filter it drops the row, it does not
// abort the query.
func foldConstants(op queryir.Op) queryir.Op {
	return rewrite.MapAllExprs(op, foldExpr)
}

func foldExpr(e queryir.Expr) queryir.Expr {
	return rewrite.ApplyExpr(func(x queryir.Expr) queryir.Expr {
		if _, ok := x.(queryir.Call); !ok {
			return nil
		}
		t, ok := eval.Fold(x)
		if !ok {
			return nil
		}
		return queryir.C(t)
	}, e)
}
