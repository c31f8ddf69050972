package sql

// Nameable is something that has a name.
type Nameable interface {
	// Name returns the name.
	Name() string
}

// Expression is a resolver node that evaluates to a Value against a driving
// frame. The frame may be nil, in which case column references fetch their
// table from the namespace directly.
type Expression interface {
	Nameable
	// Eval evaluates the expression against the given frame.
	Eval(ctx *Context, frame *Frame) (Value, error)
}

// Keyed is implemented by expressions that are addressable as a column of a
// materialized frame, such as column references and labels. The join
// resolver uses it to recognize straight equalities.
type Keyed interface {
	// Key returns the frame column key the expression resolves through.
	Key() ColumnKey
}

// Source is a resolver node that materializes a frame: a base table, an
// alias, a join or a derived select.
type Source interface {
	Nameable
	// Materialize produces the frame of this source with its columns
	// qualified for consumption by expressions.
	Materialize(ctx *Context) (*Frame, error)
}

// Node is a top-level statement. Queries return their result frame; DML and
// DDL statements return a nil frame and report their side effects through
// the context.
type Node interface {
	Nameable
	// Resolve executes the statement.
	Resolve(ctx *Context) (*Frame, error)
}

// Namespace is the store of named frames visited and mutated by statements.
type Namespace interface {
	// Frame returns the stored frame with the given name.
	Frame(name string) (*Frame, error)
	// Set stores a frame under the given name, replacing any previous one.
	Set(name string, f *Frame)
	// Create stores a frame under the given name, failing if the name is
	// already taken.
	Create(name string, f *Frame) error
	// Drop removes the named frame, failing if it does not exist.
	Drop(name string) error
	// Names returns the sorted names of all stored frames.
	Names() []string
}
