package plan

import (
	"github.com/frameql/frameql/sql"
)

// Alias materializes its child source and re-qualifies every column under
// the alias name.
type Alias struct {
	child sql.Source
	name  string
}

var _ sql.Source = (*Alias)(nil)

// NewAlias aliases the given source under the given name.
func NewAlias(name string, child sql.Source) *Alias {
	return &Alias{child: child, name: name}
}

// Name implements the Nameable interface.
func (a *Alias) Name() string { return a.name }

// Materialize implements the Source interface.
func (a *Alias) Materialize(ctx *sql.Context) (*sql.Frame, error) {
	frame, err := a.child.Materialize(ctx)
	if err != nil {
		return nil, err
	}
	return frame.Qualify(a.name), nil
}

// Derived is a from-source over an already materialized frame, used for
// literal-row materialization and by callers that assemble frames directly.
type Derived struct {
	frame *sql.Frame
	name  string
}

var _ sql.Source = (*Derived)(nil)

// NewDerived creates a source over the given frame.
func NewDerived(name string, frame *sql.Frame) *Derived {
	return &Derived{frame: frame, name: name}
}

// Name implements the Nameable interface.
func (d *Derived) Name() string { return d.name }

// Materialize implements the Source interface.
func (d *Derived) Materialize(*sql.Context) (*sql.Frame, error) {
	return d.frame, nil
}
