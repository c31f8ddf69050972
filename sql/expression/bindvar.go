package expression

import (
	"github.com/frameql/frameql/sql"
)

// BindVar is a placeholder for a bound parameter, resolved by name from the
// parameter set of the execution.
type BindVar struct {
	name string
}

var _ sql.Expression = (*BindVar)(nil)

// NewBindVar creates a placeholder for the parameter with the given name.
func NewBindVar(name string) *BindVar {
	return &BindVar{name: name}
}

// Name implements the Nameable interface.
func (b *BindVar) Name() string { return ":" + b.name }

// Eval implements the Expression interface.
func (b *BindVar) Eval(ctx *sql.Context, _ *sql.Frame) (sql.Value, error) {
	v, err := ctx.Param(b.name)
	if err != nil {
		return nil, err
	}
	return sql.Scalar{V: v}, nil
}
