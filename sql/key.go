package sql

// ColumnKey identifies a column inside a frame. Source is the table or alias
// name the column was materialized under; it is empty for final output labels
// and for columns of frames stored in a namespace. Keys are compared by
// value, which keeps qualified references collision-free no matter what
// characters table or column names contain.
type ColumnKey struct {
	Source string
	Column string
}

// NewColumnKey creates a key qualified under the given source.
func NewColumnKey(source, column string) ColumnKey {
	return ColumnKey{Source: source, Column: column}
}

// BareKey creates an unqualified key, as used by stored frames and output
// labels.
func BareKey(column string) ColumnKey {
	return ColumnKey{Column: column}
}

func (k ColumnKey) String() string {
	if k.Source == "" {
		return k.Column
	}
	return k.Source + "." + k.Column
}
