package sql

// Value is the result of evaluating an expression against a frame. It is a
// closed sum: a Scalar, a Column vector, the tagged Scalar result of an
// aggregate function, or a Tuple produced by a comma clause list. The
// explicit Aggregate variant is what lets the projection stage detect
// aggregate results with a type switch instead of a runtime probe.
type Value interface {
	value()
}

// Scalar is a single value.
type Scalar struct {
	V interface{}
}

// Column is a vector of values, one per row of the driving frame.
type Column struct {
	Vals []interface{}
}

// Aggregate is the scalar result of an aggregate function, tagged so the
// projection stage knows to flatten the enclosing group to one row.
type Aggregate struct {
	V interface{}
}

// Tuple is the unreduced result list of a comma clause list.
type Tuple struct {
	Vals []Value
}

func (Scalar) value()    {}
func (Column) value()    {}
func (Aggregate) value() {}
func (Tuple) value()     {}

// AsScalar coerces a value to a single scalar. A column of more than one row
// is an error; an empty column coerces to nil.
func AsScalar(v Value) (interface{}, error) {
	switch v := v.(type) {
	case Scalar:
		return v.V, nil
	case Aggregate:
		return v.V, nil
	case Column:
		switch len(v.Vals) {
		case 0:
			return nil, nil
		case 1:
			return v.Vals[0], nil
		default:
			return nil, ErrScalarMultipleRows.New()
		}
	case Tuple:
		return nil, ErrUnsupportedFeature.New("tuple in scalar position")
	}
	return nil, ErrInvalidType.New("unknown value variant")
}

// AsSeries coerces a value to a vector, wrapping scalars as one-element
// vectors.
func AsSeries(v Value) ([]interface{}, error) {
	switch v := v.(type) {
	case Scalar:
		return []interface{}{v.V}, nil
	case Aggregate:
		return []interface{}{v.V}, nil
	case Column:
		return v.Vals, nil
	case Tuple:
		return nil, ErrUnsupportedFeature.New("tuple in series position")
	}
	return nil, ErrInvalidType.New("unknown value variant")
}

// AsVector coerces a value to a vector of exactly n elements, broadcasting
// scalars and one-element columns.
func AsVector(v Value, n int) ([]interface{}, error) {
	series, err := AsSeries(v)
	if err != nil {
		return nil, err
	}
	if len(series) == n {
		return series, nil
	}
	if len(series) == 1 {
		out := make([]interface{}, n)
		for i := range out {
			out[i] = series[0]
		}
		return out, nil
	}
	return nil, ErrColumnCountMismatch.New(n, len(series))
}

// BoolMask converts a predicate result into a row mask of length n. Only an
// exact true matches; nil and every other value do not. This mirrors the
// null semantics of SQL predicates, where an unknown comparison never
// selects a row.
func BoolMask(v Value, n int) ([]bool, error) {
	vals, err := AsVector(v, n)
	if err != nil {
		return nil, err
	}
	mask := make([]bool, n)
	for i, val := range vals {
		b, ok := val.(bool)
		mask[i] = ok && b
	}
	return mask, nil
}
