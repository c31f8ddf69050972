package expression

import (
	"fmt"
	"sync/atomic"

	"github.com/frameql/frameql/sql"
)

var literalCounter uint64

// Literal is a constant value.
type Literal struct {
	value interface{}
	key   sql.ColumnKey
}

var _ sql.Expression = (*Literal)(nil)
var _ sql.Keyed = (*Literal)(nil)

// NewLiteral creates a new literal. Each literal gets a distinct key so that
// several literals can coexist as columns of one synthesized frame.
func NewLiteral(value interface{}) *Literal {
	n := atomic.AddUint64(&literalCounter, 1)
	return &Literal{
		value: value,
		key:   sql.BareKey(fmt.Sprintf("literal_%d", n)),
	}
}

// Name implements the Nameable interface.
func (l *Literal) Name() string { return fmt.Sprint(l.value) }

// Key implements the Keyed interface.
func (l *Literal) Key() sql.ColumnKey { return l.key }

// Value returns the literal value.
func (l *Literal) Value() interface{} { return l.value }

// Eval implements the Expression interface.
func (l *Literal) Eval(*sql.Context, *sql.Frame) (sql.Value, error) {
	return sql.Scalar{V: l.value}, nil
}
