package expression

import (
	"github.com/spf13/cast"

	"github.com/frameql/frameql/sql"
)

// SortOrder represents the order annotation of a sort key.
type SortOrder byte

const (
	// Ascending order.
	Ascending SortOrder = 1
	// Descending order.
	Descending SortOrder = 2
)

// Unary applies an operator to a single operand. The Modifier carries the
// sort-direction annotation consumed by the ORDER stage; it never changes
// the value the expression evaluates to.
type Unary struct {
	Child    sql.Expression
	Op       Operator
	Modifier SortOrder
}

var _ sql.Expression = (*Unary)(nil)

// NewUnary creates a unary expression with the given operator.
func NewUnary(op Operator, child sql.Expression) *Unary {
	return &Unary{Child: child, Op: op}
}

// NewNot creates a boolean negation.
func NewNot(child sql.Expression) *Unary {
	return NewUnary(OpNot, child)
}

// NewNegate creates a numeric negation.
func NewNegate(child sql.Expression) *Unary {
	return NewUnary(OpNegate, child)
}

// NewDescending annotates a sort key as descending.
func NewDescending(child sql.Expression) *Unary {
	return &Unary{Child: child, Modifier: Descending}
}

// Name implements the Nameable interface.
func (u *Unary) Name() string {
	if u.Op == OpNoop {
		return u.Child.Name()
	}
	return string(u.Op) + " " + u.Child.Name()
}

// Key implements the Keyed interface, delegating to the child when it is
// addressable.
func (u *Unary) Key() sql.ColumnKey {
	if k, ok := u.Child.(sql.Keyed); ok {
		return k.Key()
	}
	return sql.ColumnKey{}
}

// Eval implements the Expression interface.
func (u *Unary) Eval(ctx *sql.Context, frame *sql.Frame) (sql.Value, error) {
	v, err := u.Child.Eval(ctx, frame)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case OpNot:
		return mapValue(v, notOp)
	case OpNegate:
		return mapValue(v, negateOp)
	default:
		return v, nil
	}
}

func mapValue(v sql.Value, f func(interface{}) (interface{}, error)) (sql.Value, error) {
	return broadcast(v, sql.Scalar{}, func(a, _ interface{}) (interface{}, error) {
		return f(a)
	})
}

func notOp(a interface{}) (interface{}, error) {
	if a == nil {
		return nil, nil
	}
	b, ok := a.(bool)
	if !ok {
		return nil, sql.ErrInvalidType.New("non-boolean operand of NOT")
	}
	return !b, nil
}

func negateOp(a interface{}) (interface{}, error) {
	switch a := a.(type) {
	case nil:
		return nil, nil
	case int64:
		return -a, nil
	default:
		f, err := cast.ToFloat64E(a)
		if err != nil {
			return nil, sql.ErrInvalidType.New(err.Error())
		}
		return -f, nil
	}
}
