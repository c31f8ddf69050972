package plan

import (
	"github.com/frameql/frameql/sql"
)

// Table is a base-table from-source. It fetches the stored frame from the
// namespace and qualifies its columns under the table name. When the table's
// primary key is realized as the row index, the key column is synthesized
// from the index on the way out.
type Table struct {
	name          string
	autoIncrement string
}

var _ sql.Source = (*Table)(nil)

// NewTable creates a source for the named table. autoIncrement names the
// primary key column to synthesize from the row index when it has no backing
// storage; it may be empty.
func NewTable(name, autoIncrement string) *Table {
	return &Table{name: name, autoIncrement: autoIncrement}
}

// Name implements the Nameable interface.
func (t *Table) Name() string { return t.name }

// Materialize implements the Source interface.
func (t *Table) Materialize(ctx *sql.Context) (*sql.Frame, error) {
	stored, err := ctx.Namespace().Frame(t.name)
	if err != nil {
		return nil, err
	}
	frame := stored.Qualify(t.name)
	if t.autoIncrement != "" && !stored.HasColumn(sql.BareKey(t.autoIncrement)) {
		frame = frame.WithColumn(sql.FrameColumn{
			Key:  sql.NewColumnKey(t.name, t.autoIncrement),
			Vals: indexValues(stored.NumRows()),
		})
	}
	return frame, nil
}

func indexValues(n int) []interface{} {
	vals := make([]interface{}, n)
	for i := range vals {
		vals[i] = int64(i)
	}
	return vals
}
