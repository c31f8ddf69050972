// Package driver exposes statement execution through a DB-API style
// connection and cursor, backed by an in-memory namespace of frames.
package driver

import (
	"context"
	"io"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/src-d/go-errors.v1"

	"github.com/frameql/frameql/memory"
	"github.com/frameql/frameql/sql"
)

// ErrConnectionClosed is returned when a statement is executed on a closed
// connection.
var ErrConnectionClosed = errors.NewKind("connection is closed")

// Connection holds a namespace and the ambient configuration shared by every
// cursor opened on it. Connections are cheap and carry no network state.
type Connection struct {
	ns     *memory.Namespace
	tracer opentracing.Tracer
	logger *logrus.Entry
	closed bool
}

// Option configures a connection.
type Option func(*Connection)

// WithTracer sets the tracer used by every execution on the connection.
func WithTracer(t opentracing.Tracer) Option {
	return func(c *Connection) {
		c.tracer = t
	}
}

// WithLogger sets the logger used by every execution on the connection.
func WithLogger(l *logrus.Entry) Option {
	return func(c *Connection) {
		c.logger = l
	}
}

// Connect opens a connection over a fresh empty namespace.
func Connect(opts ...Option) *Connection {
	c := &Connection{
		ns:     memory.NewNamespace(),
		tracer: opentracing.NoopTracer{},
		logger: logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Namespace returns the connection's namespace.
func (c *Connection) Namespace() *memory.Namespace { return c.ns }

// Add registers a frame under the given table name, replacing any previous
// frame with that name.
func (c *Connection) Add(name string, f *sql.Frame) {
	c.ns.Set(name, f)
}

// LoadYAML loads table fixtures into the connection's namespace.
func (c *Connection) LoadYAML(data []byte) error {
	return c.ns.LoadYAML(data)
}

// Cursor opens a new cursor on the connection.
func (c *Connection) Cursor() *Cursor {
	return &Cursor{conn: c}
}

// Close marks the connection closed. The namespace stays reachable through
// frames already handed out.
func (c *Connection) Close() error {
	c.closed = true
	return nil
}

// Cursor executes statements and buffers the result rows of the last query.
// A cursor is not safe for concurrent use.
type Cursor struct {
	conn *Connection

	frame        *sql.Frame
	pos          int
	lastInsertID interface{}
	rowCount     int64
}

// Execute runs the given statement with the given bound parameters. A query
// leaves its rows buffered on the cursor; a DML or DDL statement leaves the
// cursor without rows and records the affected row count and last inserted
// id instead.
func (cur *Cursor) Execute(node sql.Node, params map[string]interface{}) error {
	if cur.conn.closed {
		return ErrConnectionClosed.New()
	}
	ctx := sql.NewContext(
		context.Background(),
		sql.WithNamespace(cur.conn.ns),
		sql.WithParams(params),
		sql.WithTracer(cur.conn.tracer),
		sql.WithLogger(cur.conn.logger.WithField("statement", node.Name())),
	)

	frame, err := node.Resolve(ctx)
	if err != nil {
		return err
	}

	cur.frame = frame
	cur.pos = 0
	cur.lastInsertID = ctx.LastInsertID()
	cur.rowCount = ctx.RowCount()
	return nil
}

// ExecuteMany runs the statement once per parameter set, in order. Execution
// stops at the first error. Row counts accumulate across the runs.
func (cur *Cursor) ExecuteMany(node sql.Node, paramSets []map[string]interface{}) error {
	var total int64
	for _, params := range paramSets {
		if err := cur.Execute(node, params); err != nil {
			return err
		}
		total += cur.rowCount
	}
	cur.rowCount = total
	return nil
}

// Columns returns the output column names of the last query, or nil when the
// last statement produced no rows.
func (cur *Cursor) Columns() []string {
	if cur.frame == nil {
		return nil
	}
	keys := cur.frame.Keys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Column
	}
	return names
}

// Description returns one seven-element descriptor per output column. Only
// the name is populated.
func (cur *Cursor) Description() [][]interface{} {
	if cur.frame == nil {
		return nil
	}
	desc := make([][]interface{}, 0, cur.frame.NumCols())
	for _, k := range cur.frame.Keys() {
		desc = append(desc, []interface{}{k.Column, nil, nil, nil, nil, nil, nil})
	}
	return desc
}

// FetchOne returns the next buffered row, or io.EOF when the rows are
// exhausted.
func (cur *Cursor) FetchOne() ([]interface{}, error) {
	if cur.frame == nil || cur.pos >= cur.frame.NumRows() {
		return nil, io.EOF
	}
	row := cur.frame.Row(cur.pos)
	cur.pos++
	return row, nil
}

// FetchMany returns up to n next rows. Fewer rows than asked for means the
// buffer ran out; a subsequent call returns an empty slice.
func (cur *Cursor) FetchMany(n int) ([][]interface{}, error) {
	if cur.frame == nil {
		return nil, io.EOF
	}
	rows := [][]interface{}{}
	for len(rows) < n && cur.pos < cur.frame.NumRows() {
		rows = append(rows, cur.frame.Row(cur.pos))
		cur.pos++
	}
	return rows, nil
}

// FetchAll returns all remaining buffered rows.
func (cur *Cursor) FetchAll() ([][]interface{}, error) {
	if cur.frame == nil {
		return nil, io.EOF
	}
	rows := [][]interface{}{}
	for cur.pos < cur.frame.NumRows() {
		rows = append(rows, cur.frame.Row(cur.pos))
		cur.pos++
	}
	return rows, nil
}

// LastInsertID returns the id recorded by the last INSERT, or nil.
func (cur *Cursor) LastInsertID() interface{} { return cur.lastInsertID }

// RowCount returns the number of rows affected by the last statement.
func (cur *Cursor) RowCount() int64 { return cur.rowCount }

// Close releases the cursor's buffered rows.
func (cur *Cursor) Close() error {
	cur.frame = nil
	return nil
}
