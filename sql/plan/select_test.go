package plan_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frameql/frameql/memory"
	"github.com/frameql/frameql/sql"
	"github.com/frameql/frameql/sql/expression"
	"github.com/frameql/frameql/sql/plan"
)

func TestSelectProjection(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	sel := plan.NewSelect([]sql.Expression{
		expression.NewColumn("emp", "name"),
	}, plan.NewTable("emp", ""))

	result, err := sel.Resolve(ctx)
	require.NoError(err)
	require.Equal([][]interface{}{{"ed"}, {"wendy"}, {"jack"}}, frameRows(t, result))
	require.Equal([]sql.ColumnKey{sql.BareKey("name")}, result.Keys())
}

func TestSelectWhere(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	sel := plan.NewSelect([]sql.Expression{
		expression.NewColumn("emp", "name"),
	}, plan.NewTable("emp", ""))
	sel.Where = expression.NewEquals(
		expression.NewColumn("emp", "dep_id"),
		expression.NewLiteral(int64(0)),
	)

	result, err := sel.Resolve(ctx)
	require.NoError(err)
	require.Equal([][]interface{}{{"ed"}, {"wendy"}}, frameRows(t, result))
}

func TestSelectWhereBindVar(t *testing.T) {
	require := require.New(t)
	ns := memory.NewNamespace()
	require.NoError(ns.LoadYAML([]byte(`
tables:
  emp:
    columns: [name, dep_id]
    rows:
      - [ed, 0]
      - [jack, 1]
`)))
	ctx := sql.NewContext(context.TODO(),
		sql.WithNamespace(ns),
		sql.WithParams(map[string]interface{}{"who": "jack"}),
	)

	sel := plan.NewSelect([]sql.Expression{
		expression.NewColumn("emp", "dep_id"),
	}, plan.NewTable("emp", ""))
	sel.Where = expression.NewEquals(
		expression.NewColumn("emp", "name"),
		expression.NewBindVar("who"),
	)

	result, err := sel.Resolve(ctx)
	require.NoError(err)
	require.Equal([][]interface{}{{int64(1)}}, frameRows(t, result))
}

func TestSelectAggregateWholeTable(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	sel := plan.NewSelect([]sql.Expression{
		expression.NewFunction("count"),
		expression.NewFunction("max", expression.NewColumn("emp", "name")),
	}, plan.NewTable("emp", ""))

	result, err := sel.Resolve(ctx)
	require.NoError(err)
	require.Equal([][]interface{}{{int64(3), "wendy"}}, frameRows(t, result))
}

func TestSelectGroupBy(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	sel := plan.NewSelect([]sql.Expression{
		expression.NewFunction("max", expression.NewColumn("emp", "name")),
		expression.NewColumn("emp", "dep_id"),
	}, plan.NewTable("emp", ""))
	sel.GroupBy = []sql.Expression{expression.NewColumn("emp", "dep_id")}

	result, err := sel.Resolve(ctx)
	require.NoError(err)
	// groups appear in first-seen order
	require.Equal([][]interface{}{
		{"wendy", int64(0)},
		{"jack", int64(1)},
	}, frameRows(t, result))
}

func TestSelectWhereOnEmptyTable(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	create := plan.NewCreateTable("proj", []plan.ColumnDef{
		{Name: "id", Type: sql.Integer},
		{Name: "x", Type: sql.Integer},
	}, "id", true)
	_, err := create.Resolve(ctx)
	require.NoError(err)

	sel := plan.NewSelect([]sql.Expression{
		expression.NewColumn("proj", "x"),
	}, plan.NewTable("proj", "id"))
	sel.Where = expression.NewEquals(
		expression.NewColumn("proj", "x"),
		expression.NewLiteral(int64(5)),
	)

	result, err := sel.Resolve(ctx)
	require.NoError(err)
	require.Equal(0, result.NumRows())
	require.Equal([]sql.ColumnKey{sql.BareKey("x")}, result.Keys())
}

func TestSelectWhereAfterDeleteAll(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	del := plan.NewDelete("emp", "id", nil)
	_, err := del.Resolve(ctx)
	require.NoError(err)

	sel := plan.NewSelect([]sql.Expression{
		expression.NewColumn("emp", "name"),
	}, plan.NewTable("emp", "id"))
	sel.Where = expression.NewEquals(
		expression.NewColumn("emp", "dep_id"),
		expression.NewLiteral(int64(0)),
	)

	result, err := sel.Resolve(ctx)
	require.NoError(err)
	require.Equal(0, result.NumRows())
}

func TestSelectGroupByComputedAggregate(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	// the arithmetic wrapper must not undo the aggregate's group flattening
	sel := plan.NewSelect([]sql.Expression{
		expression.NewColumn("emp", "dep_id"),
		expression.NewLabel("n", expression.NewPlus(
			expression.NewFunction("count", expression.NewColumn("emp", "name")),
			expression.NewLiteral(int64(0)),
		)),
	}, plan.NewTable("emp", ""))
	sel.GroupBy = []sql.Expression{expression.NewColumn("emp", "dep_id")}

	result, err := sel.Resolve(ctx)
	require.NoError(err)
	require.Equal([][]interface{}{
		{int64(0), int64(2)},
		{int64(1), int64(1)},
	}, frameRows(t, result))
}

func TestSelectHaving(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	sel := plan.NewSelect([]sql.Expression{
		expression.NewColumn("emp", "dep_id"),
		expression.NewFunction("count"),
	}, plan.NewTable("emp", ""))
	sel.GroupBy = []sql.Expression{expression.NewColumn("emp", "dep_id")}
	sel.Having = expression.NewGreaterThan(
		expression.NewFunction("count"),
		expression.NewLiteral(int64(1)),
	)

	result, err := sel.Resolve(ctx)
	require.NoError(err)
	require.Equal([][]interface{}{{int64(0), int64(2)}}, frameRows(t, result))
}

func TestSelectHavingWithoutGroupBy(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	sel := plan.NewSelect([]sql.Expression{
		expression.NewColumn("emp", "name"),
	}, plan.NewTable("emp", ""))
	sel.Having = expression.NewGreaterThan(
		expression.NewFunction("count"),
		expression.NewLiteral(int64(1)),
	)

	_, err := sel.Resolve(ctx)
	require.True(sql.ErrHavingWithoutGroupBy.Is(err))
}

func TestSelectOrderByDescending(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	sel := plan.NewSelect([]sql.Expression{
		expression.NewColumn("emp", "name"),
	}, plan.NewTable("emp", ""))
	sel.OrderBy = []sql.Expression{
		expression.NewDescending(expression.NewColumn("emp", "name")),
	}

	result, err := sel.Resolve(ctx)
	require.NoError(err)
	require.Equal([][]interface{}{{"wendy"}, {"jack"}, {"ed"}}, frameRows(t, result))
}

func TestSelectOrderByUnprojectedColumn(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	// the sort key is not part of the projections
	sel := plan.NewSelect([]sql.Expression{
		expression.NewColumn("emp", "name"),
	}, plan.NewTable("emp", ""))
	sel.OrderBy = []sql.Expression{
		expression.NewDescending(expression.NewColumn("emp", "dep_id")),
		expression.NewColumn("emp", "name"),
	}

	result, err := sel.Resolve(ctx)
	require.NoError(err)
	require.Equal([][]interface{}{{"jack"}, {"ed"}, {"wendy"}}, frameRows(t, result))
	require.Equal(1, result.NumCols())
}

func TestSelectLimitOffset(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	sel := plan.NewSelect([]sql.Expression{
		expression.NewColumn("emp", "name"),
	}, plan.NewTable("emp", ""))
	sel.Offset = i64(1)
	sel.Limit = i64(1)

	result, err := sel.Resolve(ctx)
	require.NoError(err)
	require.Equal([][]interface{}{{"wendy"}}, frameRows(t, result))
}

func TestSelectWithoutSources(t *testing.T) {
	require := require.New(t)
	ctx := sql.NewEmptyContext()

	sel := plan.NewSelect([]sql.Expression{
		expression.NewLabel("total", expression.NewPlus(
			expression.NewLiteral(int64(1)),
			expression.NewLiteral(int64(2)),
		)),
	})

	result, err := sel.Resolve(ctx)
	require.NoError(err)
	require.Equal([][]interface{}{{int64(3)}}, frameRows(t, result))
	require.Equal([]sql.ColumnKey{sql.BareKey("total")}, result.Keys())
}

func TestSelectDuplicateOutputNames(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	sel := plan.NewSelect([]sql.Expression{
		expression.NewColumn("emp", "name"),
		expression.NewColumn("emp", "name"),
	}, plan.NewTable("emp", ""))

	result, err := sel.Resolve(ctx)
	require.NoError(err)
	require.Equal([]sql.ColumnKey{
		sql.BareKey("name"),
		sql.BareKey("name_1"),
	}, result.Keys())
}

func TestSelectEmptyResultKeepsColumns(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	sel := plan.NewSelect([]sql.Expression{
		expression.NewColumn("emp", "name"),
	}, plan.NewTable("emp", ""))
	sel.Where = expression.NewEquals(
		expression.NewColumn("emp", "name"),
		expression.NewLiteral("nobody"),
	)

	result, err := sel.Resolve(ctx)
	require.NoError(err)
	require.Equal(0, result.NumRows())
	require.Equal([]sql.ColumnKey{sql.BareKey("name")}, result.Keys())
}

func TestSelectAsDerivedSource(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	inner := plan.NewSelect([]sql.Expression{
		expression.NewColumn("emp", "name"),
		expression.NewColumn("emp", "dep_id"),
	}, plan.NewTable("emp", ""))
	inner.Where = expression.NewEquals(
		expression.NewColumn("emp", "dep_id"),
		expression.NewLiteral(int64(0)),
	)

	outer := plan.NewSelect([]sql.Expression{
		expression.NewColumn("sub", "name"),
	}, plan.NewAlias("sub", inner))

	result, err := outer.Resolve(ctx)
	require.NoError(err)
	require.Equal([][]interface{}{{"ed"}, {"wendy"}}, frameRows(t, result))
}

func TestCorrelatedScalarSubquery(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	sub := plan.NewSelect([]sql.Expression{
		expression.NewFunction("max", expression.NewColumn("emp", "name")),
	}, plan.NewTable("emp", ""))
	sub.Where = expression.NewEquals(
		expression.NewColumn("emp", "dep_id"),
		expression.NewColumn("dep", "id"),
	)

	sel := plan.NewSelect([]sql.Expression{
		expression.NewColumn("dep", "name"),
		expression.NewLabel("senior", sub),
	}, plan.NewTable("dep", "id"))

	result, err := sel.Resolve(ctx)
	require.NoError(err)
	require.Equal([][]interface{}{
		{"Engineering", "wendy"},
		{"Accounting", "jack"},
		{"Sales", nil},
	}, frameRows(t, result))
}

func TestScalarSubqueryMultipleRows(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	sub := plan.NewSelect([]sql.Expression{
		expression.NewColumn("emp", "name"),
	}, plan.NewTable("emp", ""))

	sel := plan.NewSelect([]sql.Expression{
		expression.NewColumn("dep", "name"),
		expression.NewLabel("who", sub),
	}, plan.NewTable("dep", "id"))

	_, err := sel.Resolve(ctx)
	require.True(sql.ErrScalarMultipleRows.Is(err))
}
