package plan

import (
	"github.com/frameql/frameql/sql"
)

// Insert appends one or more rows to the named table. Cells of columns not
// named by the statement are explicitly nil, never left undefined. When the
// table's primary key is the row index, the id of the last appended row is
// reported as the last inserted id; otherwise the id side channel stays nil.
type Insert struct {
	table   string
	columns []string
	rows    [][]sql.Expression
	indexPK bool
}

var _ sql.Node = (*Insert)(nil)

// NewInsert creates an insert of the given value rows, in column order, into
// the named table.
func NewInsert(table string, columns []string, rows [][]sql.Expression, indexPK bool) *Insert {
	return &Insert{table: table, columns: columns, rows: rows, indexPK: indexPK}
}

// Name implements the Nameable interface.
func (ins *Insert) Name() string { return "insert" }

// Resolve implements the Node interface.
func (ins *Insert) Resolve(ctx *sql.Context) (*sql.Frame, error) {
	stored, err := ctx.Namespace().Frame(ins.table)
	if err != nil {
		return nil, err
	}

	rows := ins.rows
	if len(rows) == 0 {
		// INSERT with no values appends a single all-nil row.
		rows = [][]sql.Expression{nil}
	}

	appended := make([]map[string]interface{}, len(rows))
	for i, row := range rows {
		if len(row) != len(ins.columns) && row != nil {
			return nil, sql.ErrColumnCountMismatch.New(len(ins.columns), len(row))
		}
		cells := map[string]interface{}{}
		for j, e := range row {
			v, err := e.Eval(ctx, nil)
			if err != nil {
				return nil, err
			}
			cells[ins.columns[j]], err = sql.AsScalar(v)
			if err != nil {
				return nil, err
			}
		}
		appended[i] = cells
	}

	next, err := appendRows(stored, ins.columns, appended)
	if err != nil {
		return nil, err
	}
	ctx.Namespace().Set(ins.table, next)

	if ins.indexPK {
		ctx.SetLastInsertID(int64(next.NumRows() - 1))
	}
	ctx.SetRowCount(int64(len(rows)))
	ctx.Logger().WithField("table", ins.table).Debugf("inserted %d rows", len(rows))
	return nil, nil
}

// appendRows builds a new frame with the given cell maps appended. Columns
// the stored frame does not have yet are added with nil backfill, in
// statement order.
func appendRows(stored *sql.Frame, order []string, rows []map[string]interface{}) (*sql.Frame, error) {
	oldRows := stored.NumRows()
	cols := make([]sql.FrameColumn, 0, stored.NumCols())
	seen := map[string]bool{}

	for _, c := range stored.Columns() {
		vals := make([]interface{}, 0, oldRows+len(rows))
		vals = append(vals, c.Vals...)
		for _, cells := range rows {
			v := cells[c.Key.Column]
			if c.Type != nil {
				converted, err := c.Type.Convert(v)
				if err != nil {
					return nil, err
				}
				v = converted
			}
			vals = append(vals, v)
		}
		seen[c.Key.Column] = true
		cols = append(cols, sql.FrameColumn{Key: c.Key, Type: c.Type, Vals: vals})
	}

	for _, name := range order {
		if seen[name] {
			continue
		}
		seen[name] = true
		vals := make([]interface{}, oldRows+len(rows))
		for i, cells := range rows {
			vals[oldRows+i] = cells[name]
		}
		cols = append(cols, sql.FrameColumn{Key: sql.BareKey(name), Vals: vals})
	}
	return sql.NewFrame(cols...), nil
}
