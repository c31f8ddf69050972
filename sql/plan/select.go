package plan

import (
	"fmt"

	opentracing "github.com/opentracing/opentracing-go"

	"github.com/frameql/frameql/sql"
	"github.com/frameql/frameql/sql/expression"
)

// Select is the full query pipeline over one or more from-sources:
// assemble, filter, group, project with aggregate flattening, having
// filter, order, rename and limit/offset. It is usable as a statement, as a
// derived from-source, and as a correlated scalar expression.
type Select struct {
	Projections []sql.Expression
	Sources     []sql.Source
	Where       sql.Expression
	GroupBy     []sql.Expression
	Having      sql.Expression
	OrderBy     []sql.Expression
	Limit       *int64
	Offset      *int64
}

var _ sql.Node = (*Select)(nil)
var _ sql.Source = (*Select)(nil)
var _ sql.Expression = (*Select)(nil)

// NewSelect creates a select over the given from-sources. The remaining
// clauses are set directly on the returned node.
func NewSelect(projections []sql.Expression, sources ...sql.Source) *Select {
	return &Select{Projections: projections, Sources: sources}
}

// Name implements the Nameable interface.
func (s *Select) Name() string { return "select" }

// Resolve implements the Node interface.
func (s *Select) Resolve(ctx *sql.Context) (*sql.Frame, error) {
	return s.Materialize(ctx)
}

// Materialize implements the Source interface, running the whole pipeline.
func (s *Select) Materialize(ctx *sql.Context) (*sql.Frame, error) {
	return s.materialize(ctx, nil)
}

func (s *Select) materialize(ctx *sql.Context, correlate *sql.Frame) (*sql.Frame, error) {
	span, ctx := ctx.Span("plan.Select", opentracing.Tags{
		"sources": len(s.Sources),
	})
	defer span.Finish()

	product, err := s.assemble(ctx, correlate)
	if err != nil {
		return nil, err
	}

	if s.Where != nil {
		v, err := s.Where.Eval(ctx, product)
		if err != nil {
			return nil, err
		}
		mask, err := sql.BoolMask(v, product.NumRows())
		if err != nil {
			return nil, err
		}
		product = product.Mask(mask)
	}

	return runPipeline(ctx, product, s.Projections, pipelineTail{
		GroupBy: s.GroupBy,
		Having:  s.Having,
		OrderBy: s.OrderBy,
		Limit:   s.Limit,
		Offset:  s.Offset,
	})
}

// assemble cross-joins the from-sources pairwise left to right. With no
// from-sources a one-row frame is synthesized to host literal and computed
// column expressions. A correlating row is crossed into the product last.
func (s *Select) assemble(ctx *sql.Context, correlate *sql.Frame) (*sql.Frame, error) {
	var product *sql.Frame
	if len(s.Sources) == 0 {
		product = sql.NewFrame(sql.FrameColumn{
			Key:  sql.NewColumnKey("@synthetic", "host"),
			Vals: []interface{}{int64(1)},
		})
	} else {
		var err error
		product, err = s.Sources[0].Materialize(ctx)
		if err != nil {
			return nil, err
		}
		for _, src := range s.Sources[1:] {
			next, err := src.Materialize(ctx)
			if err != nil {
				return nil, err
			}
			product, err = product.Cross(next)
			if err != nil {
				return nil, err
			}
		}
	}
	if correlate != nil {
		return product.Cross(correlate)
	}
	return product, nil
}

// Eval implements the Expression interface: a select in expression position
// is a correlated subquery, evaluated once per row of the driving frame and
// coerced to a scalar. An empty result coerces to nil; more than one row is
// an error.
func (s *Select) Eval(ctx *sql.Context, frame *sql.Frame) (sql.Value, error) {
	if frame == nil {
		result, err := s.materialize(ctx, nil)
		if err != nil {
			return nil, err
		}
		v, err := firstColumnScalar(result)
		if err != nil {
			return nil, err
		}
		return sql.Scalar{V: v}, nil
	}

	out := make([]interface{}, frame.NumRows())
	for i := range out {
		result, err := s.materialize(ctx, frame.SelectRows([]int{i}))
		if err != nil {
			return nil, err
		}
		out[i], err = firstColumnScalar(result)
		if err != nil {
			return nil, err
		}
	}
	return sql.Column{Vals: out}, nil
}

func firstColumnScalar(f *sql.Frame) (interface{}, error) {
	if f.NumRows() > 1 {
		return nil, sql.ErrScalarMultipleRows.New()
	}
	if f.NumCols() == 0 || f.NumRows() == 0 {
		return nil, nil
	}
	return f.Columns()[0].Vals[0], nil
}

// pipelineTail bundles the pipeline stages downstream of FILTER, shared
// between Select and Compound.
type pipelineTail struct {
	GroupBy []sql.Expression
	Having  sql.Expression
	OrderBy []sql.Expression
	Limit   *int64
	Offset  *int64
}

type exprColumn struct {
	expr sql.Expression
	key  sql.ColumnKey
}

var havingKey = sql.NewColumnKey("@synthetic", "having")

func orderKey(i int) sql.ColumnKey {
	return sql.NewColumnKey("@synthetic", fmt.Sprintf("order_by_%d", i))
}

// projectionKey returns the frame key a projection's result is staged under.
// Addressable expressions keep their own key; anything else gets a
// positional internal key.
func projectionKey(e sql.Expression, i int) sql.ColumnKey {
	if k, ok := e.(sql.Keyed); ok {
		if key := k.Key(); key != (sql.ColumnKey{}) {
			return key
		}
	}
	return sql.NewColumnKey("@expr", fmt.Sprintf("expr_%d", i))
}

// outputNames resolves the final output labels of the projections,
// de-duplicated with a running per-name occurrence counter.
func outputNames(projections []sql.Expression) []string {
	counts := map[string]int{}
	names := make([]string, len(projections))
	for i, p := range projections {
		name := p.Name()
		if n := counts[name]; n > 0 {
			names[i] = fmt.Sprintf("%s_%d", name, n)
		} else {
			names[i] = name
		}
		counts[name]++
	}
	return names
}

// runPipeline executes the stages downstream of FILTER over the assembled,
// filtered product: group, project with aggregate flattening, having
// filter, order, rename and limit/offset.
func runPipeline(ctx *sql.Context, product *sql.Frame, projections []sql.Expression, tail pipelineTail) (*sql.Frame, error) {
	if tail.Having != nil && len(tail.GroupBy) == 0 {
		return nil, sql.ErrHavingWithoutGroupBy.New()
	}

	groups, err := groupFrames(ctx, product, tail.GroupBy)
	if err != nil {
		return nil, err
	}

	frameCols := make([]exprColumn, 0, len(projections)+1+len(tail.OrderBy))
	for i, p := range projections {
		frameCols = append(frameCols, exprColumn{expr: p, key: projectionKey(p, i)})
	}
	if tail.Having != nil {
		frameCols = append(frameCols, exprColumn{expr: tail.Having, key: havingKey})
	}
	// Order keys are evaluated per group, before grouping collapses the
	// information they need.
	for i, ob := range tail.OrderBy {
		frameCols = append(frameCols, exprColumn{expr: ob, key: orderKey(i)})
	}

	names := outputNames(projections)

	var parts []*sql.Frame
	for _, group := range groups {
		part, err := projectGroup(ctx, group, frameCols)
		if err != nil {
			return nil, err
		}
		if part.NumRows() > 0 {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return emptyResult(names), nil
	}
	results := parts[0].Concat(parts[1:]...)

	if tail.Having != nil {
		vals, err := results.ColumnValues(havingKey)
		if err != nil {
			return nil, err
		}
		mask := make([]bool, len(vals))
		for i, v := range vals {
			b, ok := v.(bool)
			mask[i] = ok && b
		}
		results = results.Mask(mask).DropColumn(havingKey)
	}

	if len(tail.OrderBy) > 0 {
		keys := make([]sql.ColumnKey, len(tail.OrderBy))
		ascending := make([]bool, len(tail.OrderBy))
		for i, ob := range tail.OrderBy {
			keys[i] = orderKey(i)
			ascending[i] = sortDirection(ob) != expression.Descending
		}
		results, err = results.SortBy(keys, ascending)
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			results = results.DropColumn(key)
		}
	}

	final := make([]sql.FrameColumn, len(projections))
	for i, p := range projections {
		vals, err := results.ColumnValues(projectionKey(p, i))
		if err != nil {
			return nil, err
		}
		final[i] = sql.FrameColumn{Key: sql.BareKey(names[i]), Vals: vals}
	}
	frame := sql.NewFrame(final...)

	if tail.Offset != nil || tail.Limit != nil {
		offset, limit := 0, -1
		if tail.Offset != nil {
			offset = int(*tail.Offset)
		}
		if tail.Limit != nil {
			limit = int(*tail.Limit)
		}
		frame = frame.Slice(offset, limit)
	}
	return frame, nil
}

// groupFrames partitions the product into sub-frames of rows sharing
// identical grouping key values, in first-seen order. Without GROUP BY
// expressions the whole product is one implicit group.
func groupFrames(ctx *sql.Context, product *sql.Frame, groupBy []sql.Expression) ([]*sql.Frame, error) {
	if len(groupBy) == 0 {
		return []*sql.Frame{product}, nil
	}

	n := product.NumRows()
	keyVecs := make([][]interface{}, len(groupBy))
	for i, g := range groupBy {
		v, err := g.Eval(ctx, product)
		if err != nil {
			return nil, err
		}
		keyVecs[i], err = sql.AsVector(v, n)
		if err != nil {
			return nil, err
		}
	}

	type bucket struct {
		tuple []interface{}
		idx   []int
	}
	byHash := map[uint64][]*bucket{}
	var order []*bucket
	for i := 0; i < n; i++ {
		tuple := make([]interface{}, len(keyVecs))
		for j, vec := range keyVecs {
			tuple[j] = vec[i]
		}
		h, err := hashTuple(tuple)
		if err != nil {
			return nil, err
		}
		var target *bucket
		for _, b := range byHash[h] {
			if tuplesEqual(b.tuple, tuple) {
				target = b
				break
			}
		}
		if target == nil {
			target = &bucket{tuple: tuple}
			byHash[h] = append(byHash[h], target)
			order = append(order, target)
		}
		target.idx = append(target.idx, i)
	}

	groups := make([]*sql.Frame, len(order))
	for i, b := range order {
		groups[i] = product.SelectRows(b.idx)
	}
	return groups, nil
}

// projectGroup evaluates every staged column expression against one group.
// If any expression produced an aggregate, the group flattens to a single
// row: aggregates contribute their scalar, everything else its first value.
func projectGroup(ctx *sql.Context, group *sql.Frame, frameCols []exprColumn) (*sql.Frame, error) {
	series := make([][]interface{}, len(frameCols))
	aggregate := make([]bool, len(frameCols))
	anyAggregate := false

	for i, fc := range frameCols {
		v, err := fc.expr.Eval(ctx, group)
		if err != nil {
			return nil, err
		}
		if _, ok := v.(sql.Aggregate); ok {
			aggregate[i] = true
			anyAggregate = true
		}
		series[i], err = sql.AsSeries(v)
		if err != nil {
			return nil, err
		}
	}

	if anyAggregate {
		for i := range series {
			if aggregate[i] {
				continue
			}
			if len(series[i]) == 0 {
				series[i] = []interface{}{nil}
			} else {
				series[i] = series[i][:1]
			}
		}
	}

	rows := 0
	for _, s := range series {
		if len(s) > rows {
			rows = len(s)
		}
	}

	cols := make([]sql.FrameColumn, len(frameCols))
	for i, fc := range frameCols {
		vals := series[i]
		if len(vals) != rows {
			if len(vals) != 1 {
				return nil, sql.ErrColumnCountMismatch.New(rows, len(vals))
			}
			broadcasted := make([]interface{}, rows)
			for j := range broadcasted {
				broadcasted[j] = vals[0]
			}
			vals = broadcasted
		}
		cols[i] = sql.FrameColumn{Key: fc.key, Vals: vals}
	}
	return sql.NewFrame(cols...), nil
}

func emptyResult(names []string) *sql.Frame {
	cols := make([]sql.FrameColumn, len(names))
	for i, name := range names {
		cols[i] = sql.FrameColumn{Key: sql.BareKey(name)}
	}
	return sql.NewFrame(cols...)
}

func sortDirection(e sql.Expression) expression.SortOrder {
	if u, ok := e.(*expression.Unary); ok && u.Modifier == expression.Descending {
		return expression.Descending
	}
	return expression.Ascending
}
