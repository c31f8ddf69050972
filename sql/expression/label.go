package expression

import (
	"github.com/frameql/frameql/sql"
)

// Label wraps an expression under an output name, as produced by an AS
// clause. It is transparent for evaluation.
type Label struct {
	Child sql.Expression
	name  string
}

var _ sql.Expression = (*Label)(nil)
var _ sql.Keyed = (*Label)(nil)

// NewLabel labels the given expression.
func NewLabel(name string, child sql.Expression) *Label {
	return &Label{Child: child, name: name}
}

// Name implements the Nameable interface.
func (l *Label) Name() string { return l.name }

// Key implements the Keyed interface.
func (l *Label) Key() sql.ColumnKey { return sql.BareKey(l.name) }

// Eval implements the Expression interface.
func (l *Label) Eval(ctx *sql.Context, frame *sql.Frame) (sql.Value, error) {
	return l.Child.Eval(ctx, frame)
}
