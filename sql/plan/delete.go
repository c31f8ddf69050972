package plan

import (
	"github.com/frameql/frameql/sql"
)

// Delete removes the rows matched by where from the named table. Surviving
// rows keep their relative order and are renumbered densely, so an
// index-derived primary key stays gapless.
type Delete struct {
	table         string
	autoIncrement string
	where         sql.Expression
}

var _ sql.Node = (*Delete)(nil)

// NewDelete creates a delete against the named table. where may be nil, in
// which case every row is removed.
func NewDelete(table, autoIncrement string, where sql.Expression) *Delete {
	return &Delete{table: table, autoIncrement: autoIncrement, where: where}
}

// Name implements the Nameable interface.
func (d *Delete) Name() string { return "delete" }

// Resolve implements the Node interface.
func (d *Delete) Resolve(ctx *sql.Context) (*sql.Frame, error) {
	stored, err := ctx.Namespace().Frame(d.table)
	if err != nil {
		return nil, err
	}
	frame, err := NewTable(d.table, d.autoIncrement).Materialize(ctx)
	if err != nil {
		return nil, err
	}

	matched, err := matchedRows(ctx, frame, d.where)
	if err != nil {
		return nil, err
	}

	doomed := make(map[int]bool, len(matched))
	for _, row := range matched {
		doomed[row] = true
	}
	var keep []int
	for i := 0; i < stored.NumRows(); i++ {
		if !doomed[i] {
			keep = append(keep, i)
		}
	}

	ctx.Namespace().Set(d.table, stored.SelectRows(keep))
	ctx.SetRowCount(int64(len(matched)))
	ctx.Logger().WithField("table", d.table).Debugf("deleted %d rows", len(matched))
	return nil, nil
}
