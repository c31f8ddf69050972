package sql

import (
	"sort"

	"github.com/mitchellh/hashstructure"
	uuid "github.com/satori/go.uuid"
)

// FrameColumn is a single named column of scalar values. Type is optional
// and only consulted when values are written into a stored frame.
type FrameColumn struct {
	Key  ColumnKey
	Type Type
	Vals []interface{}
}

// Frame is an ordered collection of equal-length columns. Frames are treated
// as immutable values during query evaluation: every structural operation
// returns a new frame. The only sanctioned in-place mutation is SetCell,
// which UPDATE uses against the stored frame.
type Frame struct {
	cols []FrameColumn
}

// NewFrame creates a frame from the given columns.
func NewFrame(cols ...FrameColumn) *Frame {
	return &Frame{cols: cols}
}

// NumRows returns the number of rows of the frame.
func (f *Frame) NumRows() int {
	if len(f.cols) == 0 {
		return 0
	}
	return len(f.cols[0].Vals)
}

// NumCols returns the number of columns of the frame.
func (f *Frame) NumCols() int {
	return len(f.cols)
}

// Keys returns the column keys in order.
func (f *Frame) Keys() []ColumnKey {
	keys := make([]ColumnKey, len(f.cols))
	for i, c := range f.cols {
		keys[i] = c.Key
	}
	return keys
}

// Columns returns the columns in order.
func (f *Frame) Columns() []FrameColumn {
	return f.cols
}

// HasColumn reports whether the given key is present.
func (f *Frame) HasColumn(key ColumnKey) bool {
	for _, c := range f.cols {
		if c.Key == key {
			return true
		}
	}
	return false
}

// ColumnValues returns the values of the first column with the given key.
func (f *Frame) ColumnValues(key ColumnKey) ([]interface{}, error) {
	for _, c := range f.cols {
		if c.Key == key {
			return c.Vals, nil
		}
	}
	return nil, ErrColumnNotFound.New(key)
}

// Row returns the i-th row as a value tuple in column order.
func (f *Frame) Row(i int) []interface{} {
	row := make([]interface{}, len(f.cols))
	for j, c := range f.cols {
		row[j] = c.Vals[i]
	}
	return row
}

// WithColumn returns a frame with the given column appended, or replaced if
// a column with the same key already exists.
func (f *Frame) WithColumn(col FrameColumn) *Frame {
	cols := make([]FrameColumn, len(f.cols), len(f.cols)+1)
	copy(cols, f.cols)
	for i, c := range cols {
		if c.Key == col.Key {
			cols[i] = col
			return &Frame{cols: cols}
		}
	}
	return &Frame{cols: append(cols, col)}
}

// DropColumn returns a frame without the columns matching the given key.
func (f *Frame) DropColumn(key ColumnKey) *Frame {
	cols := make([]FrameColumn, 0, len(f.cols))
	for _, c := range f.cols {
		if c.Key != key {
			cols = append(cols, c)
		}
	}
	return &Frame{cols: cols}
}

// Qualify returns a frame with every column key re-qualified under the given
// source name. Values are shared with the receiver.
func (f *Frame) Qualify(source string) *Frame {
	cols := make([]FrameColumn, len(f.cols))
	for i, c := range f.cols {
		cols[i] = c
		cols[i].Key = ColumnKey{Source: source, Column: c.Key.Column}
	}
	return &Frame{cols: cols}
}

// RenamePositional returns a frame with its columns renamed, in order, to
// the given keys.
func (f *Frame) RenamePositional(keys []ColumnKey) (*Frame, error) {
	if len(keys) != len(f.cols) {
		return nil, ErrColumnCountMismatch.New(len(f.cols), len(keys))
	}
	cols := make([]FrameColumn, len(f.cols))
	for i, c := range f.cols {
		cols[i] = c
		cols[i].Key = keys[i]
	}
	return &Frame{cols: cols}, nil
}

// SelectRows returns a frame holding copies of the rows at the given
// positions, in the given order.
func (f *Frame) SelectRows(idx []int) *Frame {
	cols := make([]FrameColumn, len(f.cols))
	for i, c := range f.cols {
		vals := make([]interface{}, len(idx))
		for j, ix := range idx {
			vals[j] = c.Vals[ix]
		}
		cols[i] = FrameColumn{Key: c.Key, Type: c.Type, Vals: vals}
	}
	return &Frame{cols: cols}
}

// Mask returns a frame with only the rows whose mask entry is true.
func (f *Frame) Mask(mask []bool) *Frame {
	idx := make([]int, 0, len(mask))
	for i, keep := range mask {
		if keep {
			idx = append(idx, i)
		}
	}
	return f.SelectRows(idx)
}

// Slice returns the rows of the frame from offset, capped at limit rows. A
// negative limit means unbounded.
func (f *Frame) Slice(offset, limit int) *Frame {
	n := f.NumRows()
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit >= 0 && offset+limit < n {
		end = offset + limit
	}
	idx := make([]int, 0, end-offset)
	for i := offset; i < end; i++ {
		idx = append(idx, i)
	}
	return f.SelectRows(idx)
}

// SetCell writes a scalar into the column with the given key at the given
// row, in place.
func (f *Frame) SetCell(key ColumnKey, row int, v interface{}) error {
	for i, c := range f.cols {
		if c.Key == key {
			if c.Type != nil {
				converted, err := c.Type.Convert(v)
				if err != nil {
					return err
				}
				v = converted
			}
			f.cols[i].Vals[row] = v
			return nil
		}
	}
	return ErrColumnNotFound.New(key)
}

// Concat appends the rows of the given frames below the receiver. The
// result's column set is the union of all column sets in encounter order;
// cells of rows that lack a column are nil.
func (f *Frame) Concat(others ...*Frame) *Frame {
	frames := append([]*Frame{f}, others...)

	var keys []ColumnKey
	types := map[ColumnKey]Type{}
	seen := map[ColumnKey]bool{}
	for _, fr := range frames {
		for _, c := range fr.cols {
			if !seen[c.Key] {
				seen[c.Key] = true
				keys = append(keys, c.Key)
				types[c.Key] = c.Type
			}
		}
	}

	total := 0
	for _, fr := range frames {
		total += fr.NumRows()
	}

	cols := make([]FrameColumn, len(keys))
	for i, key := range keys {
		vals := make([]interface{}, 0, total)
		for _, fr := range frames {
			if src, err := fr.ColumnValues(key); err == nil {
				vals = append(vals, src...)
			} else {
				vals = append(vals, make([]interface{}, fr.NumRows())...)
			}
		}
		cols[i] = FrameColumn{Key: key, Type: types[key], Vals: vals}
	}
	return &Frame{cols: cols}
}

// Merge performs a relational equi-join of the receiver with the right frame
// on the given column key pairs. The join is inner by default and left-outer
// when outer is set, in which case every left row without a match is emitted
// once with nil right columns. Left rows keep their relative order and
// matches keep the right frame's encounter order. Nil never matches nil.
func (f *Frame) Merge(right *Frame, leftOn, rightOn []ColumnKey, outer bool) (*Frame, error) {
	if len(leftOn) != len(rightOn) || len(leftOn) == 0 {
		return nil, ErrColumnCountMismatch.New(len(leftOn), len(rightOn))
	}

	leftKeys := make([][]interface{}, len(leftOn))
	for i, key := range leftOn {
		vals, err := f.ColumnValues(key)
		if err != nil {
			return nil, err
		}
		leftKeys[i] = vals
	}
	rightKeys := make([][]interface{}, len(rightOn))
	for i, key := range rightOn {
		vals, err := right.ColumnValues(key)
		if err != nil {
			return nil, err
		}
		rightKeys[i] = vals
	}

	// Hash the right side once, bucketing row positions by key tuple.
	buckets := map[uint64][]int{}
	for j := 0; j < right.NumRows(); j++ {
		tuple, ok := keyTuple(rightKeys, j)
		if !ok {
			continue
		}
		h, err := hashstructure.Hash(tuple, nil)
		if err != nil {
			return nil, err
		}
		buckets[h] = append(buckets[h], j)
	}

	var leftIdx, rightIdx []int
	for i := 0; i < f.NumRows(); i++ {
		found := false
		if tuple, ok := keyTuple(leftKeys, i); ok {
			h, err := hashstructure.Hash(tuple, nil)
			if err != nil {
				return nil, err
			}
			for _, j := range buckets[h] {
				if !tupleEqual(tuple, rightKeys, j) {
					continue
				}
				found = true
				leftIdx = append(leftIdx, i)
				rightIdx = append(rightIdx, j)
			}
		}
		if !found && outer {
			leftIdx = append(leftIdx, i)
			rightIdx = append(rightIdx, -1)
		}
	}

	cols := make([]FrameColumn, 0, len(f.cols)+len(right.cols))
	for _, c := range f.cols {
		vals := make([]interface{}, len(leftIdx))
		for out, i := range leftIdx {
			vals[out] = c.Vals[i]
		}
		cols = append(cols, FrameColumn{Key: c.Key, Type: c.Type, Vals: vals})
	}
	for _, c := range right.cols {
		vals := make([]interface{}, len(rightIdx))
		for out, j := range rightIdx {
			if j >= 0 {
				vals[out] = c.Vals[j]
			}
		}
		cols = append(cols, FrameColumn{Key: c.Key, Type: c.Type, Vals: vals})
	}
	return &Frame{cols: cols}, nil
}

// Cross returns the cartesian product of the receiver with the right frame.
// Both sides are tagged with a synthetic constant join-key column, merged on
// it, and the tags dropped again.
func (f *Frame) Cross(right *Frame) (*Frame, error) {
	ltag, err := syntheticKey("cross")
	if err != nil {
		return nil, err
	}
	rtag, err := syntheticKey("cross")
	if err != nil {
		return nil, err
	}

	lhs := f.WithColumn(constantColumn(ltag, int64(1), f.NumRows()))
	rhs := right.WithColumn(constantColumn(rtag, int64(1), right.NumRows()))

	merged, err := lhs.Merge(rhs, []ColumnKey{ltag}, []ColumnKey{rtag}, false)
	if err != nil {
		return nil, err
	}
	return merged.DropColumn(ltag).DropColumn(rtag), nil
}

// SortBy returns a frame with rows reordered by the given key columns. The
// sort is stable, so rows that compare equal keep their relative order.
func (f *Frame) SortBy(keys []ColumnKey, ascending []bool) (*Frame, error) {
	vecs := make([][]interface{}, len(keys))
	for i, key := range keys {
		vals, err := f.ColumnValues(key)
		if err != nil {
			return nil, err
		}
		vecs[i] = vals
	}

	idx := make([]int, f.NumRows())
	for i := range idx {
		idx[i] = i
	}

	var sortErr error
	sort.SliceStable(idx, func(a, b int) bool {
		for i, vec := range vecs {
			cmp, err := Compare(vec[idx[a]], vec[idx[b]])
			if err != nil {
				if sortErr == nil {
					sortErr = err
				}
				return false
			}
			if cmp == 0 {
				continue
			}
			if ascending[i] {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return f.SelectRows(idx), nil
}

// Distinct returns a frame with duplicate rows removed, keeping the first
// occurrence of each distinct row.
func (f *Frame) Distinct() (*Frame, error) {
	seen := map[uint64][]int{}
	var keep []int
	for i := 0; i < f.NumRows(); i++ {
		row := f.Row(i)
		h, err := hashstructure.Hash(row, nil)
		if err != nil {
			return nil, err
		}
		dup := false
		for _, j := range seen[h] {
			if rowsEqual(row, f.Row(j)) {
				dup = true
				break
			}
		}
		if !dup {
			seen[h] = append(seen[h], i)
			keep = append(keep, i)
		}
	}
	return f.SelectRows(keep), nil
}

func keyTuple(vecs [][]interface{}, row int) ([]interface{}, bool) {
	tuple := make([]interface{}, len(vecs))
	for i, vec := range vecs {
		if vec[row] == nil {
			return nil, false
		}
		tuple[i] = vec[row]
	}
	return tuple, true
}

func tupleEqual(tuple []interface{}, vecs [][]interface{}, row int) bool {
	for i, vec := range vecs {
		if !Equal(tuple[i], vec[row]) {
			return false
		}
	}
	return true
}

func rowsEqual(a, b []interface{}) bool {
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func constantColumn(key ColumnKey, v interface{}, n int) FrameColumn {
	vals := make([]interface{}, n)
	for i := range vals {
		vals[i] = v
	}
	return FrameColumn{Key: key, Vals: vals}
}

func syntheticKey(prefix string) (ColumnKey, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return ColumnKey{}, err
	}
	return ColumnKey{Source: "@synthetic", Column: prefix + "_" + id.String()}, nil
}
