package plan

import (
	"github.com/mitchellh/hashstructure"

	"github.com/frameql/frameql/sql"
)

// nilSentinel stands in for nil grouping keys during hashing, so that rows
// with nil keys group together.
const nilSentinel = "\x00nil"

func hashTuple(tuple []interface{}) (uint64, error) {
	hashable := make([]interface{}, len(tuple))
	for i, v := range tuple {
		if v == nil {
			hashable[i] = nilSentinel
		} else {
			hashable[i] = v
		}
	}
	return hashstructure.Hash(hashable, nil)
}

func tuplesEqual(a, b []interface{}) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sql.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
