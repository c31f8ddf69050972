package sql

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// Compare returns an integer comparing two scalars. Numeric values of
// different widths are widened to float64 before comparing; booleans compare
// as numbers; strings compare lexicographically when both sides are strings.
// Nil sorts before every non-nil value, and two nils are equal.
func Compare(a, b interface{}) (int, error) {
	if a == nil && b == nil {
		return 0, nil
	}
	if a == nil {
		return -1, nil
	}
	if b == nil {
		return 1, nil
	}

	as, aIsStr := a.(string)
	bs, bIsStr := b.(string)
	if aIsStr && bIsStr {
		return strings.Compare(as, bs), nil
	}

	af, aErr := cast.ToFloat64E(a)
	bf, bErr := cast.ToFloat64E(b)
	if aErr == nil && bErr == nil {
		if af < bf {
			return -1, nil
		}
		if af > bf {
			return 1, nil
		}
		return 0, nil
	}

	return 0, ErrInvalidType.New(
		fmt.Sprintf("cannot compare %T with %T", a, b))
}

// Equal reports whether two scalars compare as equal, treating nil as equal
// only to nil. It is used where a comparison failure should count as a
// non-match instead of an error, such as row deduplication.
func Equal(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	cmp, err := Compare(a, b)
	return err == nil && cmp == 0
}
