package expression

import (
	"strings"

	"github.com/frameql/frameql/sql"
)

// ClauseList folds a left-associative reduction over its operands with one
// operator. The comma pseudo-operator instead yields the unreduced tuple of
// results.
type ClauseList struct {
	Op    Operator
	Exprs []sql.Expression
}

var _ sql.Expression = (*ClauseList)(nil)

// NewClauseList creates a clause list with the given operator.
func NewClauseList(op Operator, exprs ...sql.Expression) *ClauseList {
	return &ClauseList{Op: op, Exprs: exprs}
}

// NewTuple creates a comma clause list.
func NewTuple(exprs ...sql.Expression) *ClauseList {
	return NewClauseList(OpComma, exprs...)
}

// Name implements the Nameable interface.
func (c *ClauseList) Name() string {
	names := make([]string, len(c.Exprs))
	for i, e := range c.Exprs {
		names[i] = e.Name()
	}
	return strings.Join(names, " "+string(c.Op)+" ")
}

// Eval implements the Expression interface.
func (c *ClauseList) Eval(ctx *sql.Context, frame *sql.Frame) (sql.Value, error) {
	vals := make([]sql.Value, len(c.Exprs))
	for i, e := range c.Exprs {
		v, err := e.Eval(ctx, frame)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}

	if c.Op == OpComma {
		if len(vals) == 1 {
			return vals[0], nil
		}
		return sql.Tuple{Vals: vals}, nil
	}

	if len(vals) == 0 {
		return nil, sql.ErrUnsupportedFeature.New("empty clause list")
	}
	acc := vals[0]
	for _, v := range vals[1:] {
		var err error
		acc, err = applyOp(c.Op, acc, v)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}
