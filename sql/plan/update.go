package plan

import (
	"github.com/frameql/frameql/sql"
)

// Assignment is one SET clause of an update statement.
type Assignment struct {
	Column string
	Expr   sql.Expression
}

// Update evaluates each assignment once per matched row, against a one-row
// frame holding that row's pre-update values, and writes the results into the
// stored frame in place. A column whose values are the row index itself
// cannot be reassigned.
type Update struct {
	table         string
	autoIncrement string
	indexPK       bool
	assignments   []Assignment
	where         sql.Expression
}

var _ sql.Node = (*Update)(nil)

// NewUpdate creates an update of the named table. where may be nil, in which
// case every row matches.
func NewUpdate(table, autoIncrement string, indexPK bool, assignments []Assignment, where sql.Expression) *Update {
	return &Update{
		table:         table,
		autoIncrement: autoIncrement,
		indexPK:       indexPK,
		assignments:   assignments,
		where:         where,
	}
}

// Name implements the Nameable interface.
func (u *Update) Name() string { return "update" }

// Resolve implements the Node interface.
func (u *Update) Resolve(ctx *sql.Context) (*sql.Frame, error) {
	if u.indexPK {
		for _, a := range u.assignments {
			if a.Column == u.autoIncrement {
				return nil, sql.ErrIndexPrimaryKeyUpdate.New(a.Column)
			}
		}
	}

	stored, err := ctx.Namespace().Frame(u.table)
	if err != nil {
		return nil, err
	}
	frame, err := NewTable(u.table, u.autoIncrement).Materialize(ctx)
	if err != nil {
		return nil, err
	}

	matched, err := matchedRows(ctx, frame, u.where)
	if err != nil {
		return nil, err
	}

	// Assignments see the pre-update row, so the one-row frames are
	// captured before any cell is written.
	before := make([]*sql.Frame, len(matched))
	for i, row := range matched {
		before[i] = frame.SelectRows([]int{row})
	}

	for i, row := range matched {
		for _, a := range u.assignments {
			v, err := a.Expr.Eval(ctx, before[i])
			if err != nil {
				return nil, err
			}
			scalar, err := sql.AsScalar(v)
			if err != nil {
				return nil, err
			}
			if err := stored.SetCell(sql.BareKey(a.Column), row, scalar); err != nil {
				return nil, err
			}
		}
	}

	ctx.SetRowCount(int64(len(matched)))
	ctx.Logger().WithField("table", u.table).Debugf("updated %d rows", len(matched))
	return nil, nil
}

// matchedRows evaluates where against the frame and returns the positional
// indexes of the rows it admits. A nil where admits every row.
func matchedRows(ctx *sql.Context, frame *sql.Frame, where sql.Expression) ([]int, error) {
	n := frame.NumRows()
	if where == nil {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx, nil
	}
	v, err := where.Eval(ctx, frame)
	if err != nil {
		return nil, err
	}
	mask, err := sql.BoolMask(v, n)
	if err != nil {
		return nil, err
	}
	var idx []int
	for i, keep := range mask {
		if keep {
			idx = append(idx, i)
		}
	}
	return idx, nil
}
