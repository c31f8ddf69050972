package sql_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frameql/frameql/sql"
)

func TestCompare(t *testing.T) {
	require := require.New(t)

	cases := []struct {
		a, b     interface{}
		expected int
	}{
		{int64(1), int64(2), -1},
		{int64(2), int64(2), 0},
		{int64(3), int64(2), 1},
		{int64(1), 1.5, -1},
		{2.0, int64(2), 0},
		{"a", "b", -1},
		{"b", "b", 0},
		{false, true, -1},
		{nil, int64(0), -1},
		{int64(0), nil, 1},
		{nil, nil, 0},
	}
	for _, c := range cases {
		cmp, err := sql.Compare(c.a, c.b)
		require.NoError(err)
		require.Equal(c.expected, cmp, "Compare(%v, %v)", c.a, c.b)
	}

	_, err := sql.Compare("a", []int{1})
	require.True(sql.ErrInvalidType.Is(err))
}

func TestEqual(t *testing.T) {
	require := require.New(t)

	require.True(sql.Equal(int64(1), int64(1)))
	require.True(sql.Equal(int64(1), 1.0))
	require.True(sql.Equal(nil, nil))
	require.False(sql.Equal(nil, int64(0)))
	require.False(sql.Equal("a", []int{1}))
}
