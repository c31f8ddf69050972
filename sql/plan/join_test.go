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

// deptContext loads the department / employee fixture used across the plan
// tests. The dep table's id is realized as the row index.
func deptContext(t *testing.T) *sql.Context {
	t.Helper()
	ns := memory.NewNamespace()
	err := ns.LoadYAML([]byte(`
tables:
  dep:
    columns: [name]
    rows:
      - [Engineering]
      - [Accounting]
      - [Sales]
  emp:
    columns: [name, dep_id]
    rows:
      - [ed, 0]
      - [wendy, 0]
      - [jack, 1]
`))
	require.NoError(t, err)
	return sql.NewContext(context.TODO(), sql.WithNamespace(ns))
}

func i64(n int64) *int64 { return &n }

func frameRows(t *testing.T, f *sql.Frame) [][]interface{} {
	t.Helper()
	rows := make([][]interface{}, f.NumRows())
	for i := range rows {
		rows[i] = f.Row(i)
	}
	return rows
}

func TestInnerJoin(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	join := plan.NewInnerJoin(
		plan.NewTable("dep", "id"),
		plan.NewTable("emp", ""),
		expression.NewEquals(
			expression.NewColumn("dep", "id"),
			expression.NewColumn("emp", "dep_id"),
		),
	)
	sel := plan.NewSelect([]sql.Expression{
		expression.NewColumn("dep", "name"),
		expression.NewColumn("emp", "name"),
	}, join)

	result, err := sel.Resolve(ctx)
	require.NoError(err)
	require.Equal([][]interface{}{
		{"Engineering", "ed"},
		{"Engineering", "wendy"},
		{"Accounting", "jack"},
	}, frameRows(t, result))
}

func TestOuterJoinPadsUnmatchedLeftRows(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	join := plan.NewOuterJoin(
		plan.NewTable("dep", "id"),
		plan.NewTable("emp", ""),
		expression.NewEquals(
			expression.NewColumn("dep", "id"),
			expression.NewColumn("emp", "dep_id"),
		),
	)
	sel := plan.NewSelect([]sql.Expression{
		expression.NewColumn("dep", "name"),
		expression.NewColumn("emp", "name"),
	}, join)

	result, err := sel.Resolve(ctx)
	require.NoError(err)
	require.Equal([][]interface{}{
		{"Engineering", "ed"},
		{"Engineering", "wendy"},
		{"Accounting", "jack"},
		{"Sales", nil},
	}, frameRows(t, result))
}

func TestOuterJoinWithRemainderTerm(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	cond := expression.NewAnd(
		expression.NewEquals(
			expression.NewColumn("dep", "id"),
			expression.NewColumn("emp", "dep_id"),
		),
		expression.NewNotEquals(
			expression.NewColumn("emp", "name"),
			expression.NewLiteral("ed"),
		),
	)
	join := plan.NewOuterJoin(
		plan.NewTable("dep", "id"),
		plan.NewTable("emp", ""),
		cond,
	)
	sel := plan.NewSelect([]sql.Expression{
		expression.NewColumn("dep", "name"),
		expression.NewColumn("emp", "name"),
	}, join)

	result, err := sel.Resolve(ctx)
	require.NoError(err)
	require.Equal([][]interface{}{
		{"Engineering", "wendy"},
		{"Accounting", "jack"},
		{"Sales", nil},
	}, frameRows(t, result))
}

func TestJoinWithoutEqualityFallsBackToProduct(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	join := plan.NewInnerJoin(
		plan.NewTable("dep", "id"),
		plan.NewTable("emp", ""),
		expression.NewGreaterThan(
			expression.NewColumn("dep", "id"),
			expression.NewColumn("emp", "dep_id"),
		),
	)
	sel := plan.NewSelect([]sql.Expression{
		expression.NewColumn("dep", "name"),
		expression.NewColumn("emp", "name"),
	}, join)

	result, err := sel.Resolve(ctx)
	require.NoError(err)
	// dep.id > emp.dep_id over the full product
	require.Equal([][]interface{}{
		{"Accounting", "ed"},
		{"Accounting", "wendy"},
		{"Sales", "ed"},
		{"Sales", "wendy"},
		{"Sales", "jack"},
	}, frameRows(t, result))
}

func TestJoinEqualityHonorsReversedOperands(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	join := plan.NewInnerJoin(
		plan.NewTable("dep", "id"),
		plan.NewTable("emp", ""),
		expression.NewEquals(
			expression.NewColumn("emp", "dep_id"),
			expression.NewColumn("dep", "id"),
		),
	)
	sel := plan.NewSelect([]sql.Expression{
		expression.NewColumn("emp", "name"),
	}, join)

	result, err := sel.Resolve(ctx)
	require.NoError(err)
	require.Equal(3, result.NumRows())
}

func TestEquiMergeMatchesProductFilter(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	cond := func() sql.Expression {
		return expression.NewEquals(
			expression.NewColumn("dep", "id"),
			expression.NewColumn("emp", "dep_id"),
		)
	}
	projections := func() []sql.Expression {
		return []sql.Expression{
			expression.NewColumn("dep", "name"),
			expression.NewColumn("emp", "name"),
		}
	}

	merged := plan.NewSelect(projections(), plan.NewInnerJoin(
		plan.NewTable("dep", "id"),
		plan.NewTable("emp", ""),
		cond(),
	))

	// same condition as a WHERE over the bare cartesian product
	filtered := plan.NewSelect(projections(),
		plan.NewTable("dep", "id"),
		plan.NewTable("emp", ""),
	)
	filtered.Where = cond()

	a, err := merged.Resolve(ctx)
	require.NoError(err)
	b, err := filtered.Resolve(ctx)
	require.NoError(err)
	require.ElementsMatch(frameRows(t, a), frameRows(t, b))
}

func TestJoinAliasedSources(t *testing.T) {
	require := require.New(t)
	ctx := deptContext(t)

	join := plan.NewInnerJoin(
		plan.NewAlias("d", plan.NewTable("dep", "id")),
		plan.NewAlias("e", plan.NewTable("emp", "")),
		expression.NewEquals(
			expression.NewColumn("d", "id"),
			expression.NewColumn("e", "dep_id"),
		),
	)
	sel := plan.NewSelect([]sql.Expression{
		expression.NewColumn("d", "name"),
		expression.NewColumn("e", "name"),
	}, join)

	result, err := sel.Resolve(ctx)
	require.NoError(err)
	require.Equal(3, result.NumRows())
}
