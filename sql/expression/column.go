package expression

import (
	"github.com/frameql/frameql/sql"
)

// Column is a reference to a column of a table or alias. Against a driving
// frame it looks up its qualified key; with no driving frame it fetches the
// named table from the namespace and qualifies it first.
type Column struct {
	table string
	name  string
}

var _ sql.Expression = (*Column)(nil)
var _ sql.Keyed = (*Column)(nil)

// NewColumn creates a reference to the given column of the given table.
func NewColumn(table, name string) *Column {
	return &Column{table: table, name: name}
}

// Name implements the Nameable interface.
func (c *Column) Name() string { return c.name }

// Table returns the table or alias name of the reference.
func (c *Column) Table() string { return c.table }

// Key implements the Keyed interface.
func (c *Column) Key() sql.ColumnKey {
	return sql.NewColumnKey(c.table, c.name)
}

// Eval implements the Expression interface.
func (c *Column) Eval(ctx *sql.Context, frame *sql.Frame) (sql.Value, error) {
	if frame == nil {
		stored, err := ctx.Namespace().Frame(c.table)
		if err != nil {
			return nil, err
		}
		frame = stored.Qualify(c.table)
	}
	vals, err := frame.ColumnValues(c.Key())
	if err != nil {
		return nil, err
	}
	return sql.Column{Vals: vals}, nil
}
