package plan

import (
	"github.com/frameql/frameql/sql"
)

// ColumnDef describes one column of a table to be created.
type ColumnDef struct {
	Name string
	Type sql.Type
}

// CreateTable registers an empty frame with the declared columns under the
// table's name. When the primary key is realized as the row index, its column
// gets no backing storage and is omitted from the frame.
type CreateTable struct {
	name          string
	cols          []ColumnDef
	autoIncrement string
	indexPK       bool
}

var _ sql.Node = (*CreateTable)(nil)

// NewCreateTable creates a CREATE TABLE node.
func NewCreateTable(name string, cols []ColumnDef, autoIncrement string, indexPK bool) *CreateTable {
	return &CreateTable{name: name, cols: cols, autoIncrement: autoIncrement, indexPK: indexPK}
}

// Name implements the Nameable interface.
func (c *CreateTable) Name() string { return "create table" }

// Resolve implements the Node interface.
func (c *CreateTable) Resolve(ctx *sql.Context) (*sql.Frame, error) {
	var cols []sql.FrameColumn
	for _, def := range c.cols {
		if c.indexPK && def.Name == c.autoIncrement {
			continue
		}
		cols = append(cols, sql.FrameColumn{
			Key:  sql.BareKey(def.Name),
			Type: def.Type,
			Vals: []interface{}{},
		})
	}
	if err := ctx.Namespace().Create(c.name, sql.NewFrame(cols...)); err != nil {
		return nil, err
	}
	ctx.Logger().WithField("table", c.name).Debug("created table")
	return nil, nil
}

// DropTable removes the named table from the namespace.
type DropTable struct {
	name string
}

var _ sql.Node = (*DropTable)(nil)

// NewDropTable creates a DROP TABLE node.
func NewDropTable(name string) *DropTable {
	return &DropTable{name: name}
}

// Name implements the Nameable interface.
func (d *DropTable) Name() string { return "drop table" }

// Resolve implements the Node interface.
func (d *DropTable) Resolve(ctx *sql.Context) (*sql.Frame, error) {
	if err := ctx.Namespace().Drop(d.name); err != nil {
		return nil, err
	}
	ctx.Logger().WithField("table", d.name).Debug("dropped table")
	return nil, nil
}
