package plan

import (
	opentracing "github.com/opentracing/opentracing-go"

	"github.com/frameql/frameql/sql"
)

// Compound composes the results of several select pipelines with UNION or
// UNION ALL. Branch results are renamed positionally to the first branch's
// columns and concatenated in branch order; UNION additionally removes
// duplicate rows, keeping the first occurrence, before the compound's own
// ORDER BY / LIMIT / OFFSET are applied.
type Compound struct {
	Selects  []*Select
	Distinct bool
	OrderBy  []sql.Expression
	Limit    *int64
	Offset   *int64
}

var _ sql.Node = (*Compound)(nil)
var _ sql.Source = (*Compound)(nil)

// NewUnion creates a UNION of the given selects. distinct selects between
// UNION (true) and UNION ALL (false).
func NewUnion(distinct bool, selects ...*Select) *Compound {
	return &Compound{Selects: selects, Distinct: distinct}
}

// Name implements the Nameable interface.
func (c *Compound) Name() string { return "union" }

// Resolve implements the Node interface.
func (c *Compound) Resolve(ctx *sql.Context) (*sql.Frame, error) {
	return c.Materialize(ctx)
}

// Materialize implements the Source interface.
func (c *Compound) Materialize(ctx *sql.Context) (*sql.Frame, error) {
	span, ctx := ctx.Span("plan.Compound", opentracing.Tags{
		"branches": len(c.Selects),
		"distinct": c.Distinct,
	})
	defer span.Finish()

	first := c.Selects[0]
	keys := make([]sql.ColumnKey, len(first.Projections))
	staged := make([]sql.Expression, len(first.Projections))
	for i, p := range first.Projections {
		keys[i] = projectionKey(p, i)
		staged[i] = &stagedColumn{key: keys[i], name: p.Name()}
	}

	frames := make([]*sql.Frame, len(c.Selects))
	for i, sel := range c.Selects {
		frame, err := sel.Materialize(ctx)
		if err != nil {
			return nil, err
		}
		// Branch outputs are renamed positionally onto the first branch's
		// staging keys, so the shared pipeline tail can re-project them.
		frames[i], err = frame.RenamePositional(keys)
		if err != nil {
			return nil, err
		}
	}

	product := frames[0].Concat(frames[1:]...)
	if c.Distinct {
		var err error
		product, err = product.Distinct()
		if err != nil {
			return nil, err
		}
	}

	return runPipeline(ctx, product, staged, pipelineTail{
		OrderBy: c.OrderBy,
		Limit:   c.Limit,
		Offset:  c.Offset,
	})
}

// stagedColumn re-projects an already evaluated branch column by its
// staging key, without re-running the branch expression against the
// concatenated result.
type stagedColumn struct {
	key  sql.ColumnKey
	name string
}

var _ sql.Expression = (*stagedColumn)(nil)
var _ sql.Keyed = (*stagedColumn)(nil)

func (s *stagedColumn) Name() string       { return s.name }
func (s *stagedColumn) Key() sql.ColumnKey { return s.key }

func (s *stagedColumn) Eval(_ *sql.Context, frame *sql.Frame) (sql.Value, error) {
	vals, err := frame.ColumnValues(s.key)
	if err != nil {
		return nil, err
	}
	return sql.Column{Vals: vals}, nil
}
