package expression

import (
	"github.com/frameql/frameql/sql"
)

// Binary applies a named operator element-wise across two evaluated
// operands, broadcasting scalars against columns.
type Binary struct {
	Op    Operator
	Left  sql.Expression
	Right sql.Expression
}

var _ sql.Expression = (*Binary)(nil)

// NewBinary creates a binary expression with the given operator.
func NewBinary(op Operator, left, right sql.Expression) *Binary {
	return &Binary{Op: op, Left: left, Right: right}
}

// NewEquals creates an equality comparison.
func NewEquals(left, right sql.Expression) *Binary {
	return NewBinary(OpEquals, left, right)
}

// NewNotEquals creates an inequality comparison.
func NewNotEquals(left, right sql.Expression) *Binary {
	return NewBinary(OpNotEquals, left, right)
}

// NewLessThan creates a < comparison.
func NewLessThan(left, right sql.Expression) *Binary {
	return NewBinary(OpLessThan, left, right)
}

// NewGreaterThan creates a > comparison.
func NewGreaterThan(left, right sql.Expression) *Binary {
	return NewBinary(OpGreaterThan, left, right)
}

// NewAnd creates a logical conjunction.
func NewAnd(left, right sql.Expression) *Binary {
	return NewBinary(OpAnd, left, right)
}

// NewOr creates a logical disjunction.
func NewOr(left, right sql.Expression) *Binary {
	return NewBinary(OpOr, left, right)
}

// NewPlus creates an addition.
func NewPlus(left, right sql.Expression) *Binary {
	return NewBinary(OpPlus, left, right)
}

// NewIn creates a set membership test.
func NewIn(left, right sql.Expression) *Binary {
	return NewBinary(OpIn, left, right)
}

// NewIs creates a null-safe equality test.
func NewIs(left, right sql.Expression) *Binary {
	return NewBinary(OpIs, left, right)
}

// Name implements the Nameable interface.
func (b *Binary) Name() string {
	return b.Left.Name() + " " + string(b.Op) + " " + b.Right.Name()
}

// Eval implements the Expression interface.
func (b *Binary) Eval(ctx *sql.Context, frame *sql.Frame) (sql.Value, error) {
	left, err := b.Left.Eval(ctx, frame)
	if err != nil {
		return nil, err
	}
	right, err := b.Right.Eval(ctx, frame)
	if err != nil {
		return nil, err
	}
	return applyOp(b.Op, left, right)
}
