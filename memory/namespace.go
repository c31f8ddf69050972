package memory

import (
	"sort"
	"sync"

	yaml "gopkg.in/yaml.v2"

	"github.com/frameql/frameql/sql"
)

// Namespace is an in-memory store of named frames. The lock only guards the
// name map itself; query evaluation is single-threaded by contract and
// concurrent mutation of one frame must be serialized by the caller.
type Namespace struct {
	mu     sync.RWMutex
	frames map[string]*sql.Frame
}

var _ sql.Namespace = (*Namespace)(nil)

// NewNamespace creates a new empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{frames: map[string]*sql.Frame{}}
}

// Frame returns the stored frame with the given name.
func (n *Namespace) Frame(name string) (*sql.Frame, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if f, ok := n.frames[name]; ok {
		return f, nil
	}
	return nil, sql.ErrTableNotFound.New(name)
}

// Set stores a frame under the given name, replacing any previous one.
func (n *Namespace) Set(name string, f *sql.Frame) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.frames[name] = f
}

// Create stores a frame under the given name, failing if the name is taken.
func (n *Namespace) Create(name string, f *sql.Frame) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.frames[name]; ok {
		return sql.ErrTableAlreadyExists.New(name)
	}
	n.frames[name] = f
	return nil
}

// Drop removes the named frame.
func (n *Namespace) Drop(name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.frames[name]; !ok {
		return sql.ErrTableNotFound.New(name)
	}
	delete(n.frames, name)
	return nil
}

// Names returns the sorted names of all stored frames.
func (n *Namespace) Names() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	names := make([]string, 0, len(n.frames))
	for name := range n.frames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type yamlTable struct {
	Columns []string        `yaml:"columns"`
	Rows    [][]interface{} `yaml:"rows"`
}

type yamlNamespace struct {
	Tables map[string]yamlTable `yaml:"tables"`
}

// LoadYAML populates the namespace from a YAML fixture of the form:
//
//	tables:
//	  emp:
//	    columns: [emp_id, name, dep_id]
//	    rows:
//	      - [1, ed, 1]
//	      - [2, wendy, 1]
//
// Integer values decode to int64 and floating point values to float64.
// Fixture tables replace stored frames with the same name.
func (n *Namespace) LoadYAML(data []byte) error {
	var doc yamlNamespace
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	for name, tbl := range doc.Tables {
		cols := make([]sql.FrameColumn, len(tbl.Columns))
		for i, colName := range tbl.Columns {
			vals := make([]interface{}, len(tbl.Rows))
			for j, row := range tbl.Rows {
				if i >= len(row) {
					return sql.ErrColumnCountMismatch.New(len(tbl.Columns), len(row))
				}
				vals[j] = normalize(row[i])
			}
			cols[i] = sql.FrameColumn{Key: sql.BareKey(colName), Vals: vals}
		}
		n.Set(name, sql.NewFrame(cols...))
	}
	return nil
}

// normalize maps the decoded YAML scalar types onto the engine's scalar set.
func normalize(v interface{}) interface{} {
	switch v := v.(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return float64(v)
	default:
		return v
	}
}
