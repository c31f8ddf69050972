package expression

import (
	"github.com/spf13/cast"

	"github.com/frameql/frameql/sql"
)

// Operator names a binary, unary or clause-list operation.
type Operator string

const (
	// OpEquals is scalar equality.
	OpEquals Operator = "="
	// OpNotEquals is scalar inequality.
	OpNotEquals Operator = "!="
	// OpLessThan is the < comparison.
	OpLessThan Operator = "<"
	// OpLessThanOrEqual is the <= comparison.
	OpLessThanOrEqual Operator = "<="
	// OpGreaterThan is the > comparison.
	OpGreaterThan Operator = ">"
	// OpGreaterThanOrEqual is the >= comparison.
	OpGreaterThanOrEqual Operator = ">="
	// OpPlus is addition.
	OpPlus Operator = "+"
	// OpMinus is subtraction.
	OpMinus Operator = "-"
	// OpMult is multiplication.
	OpMult Operator = "*"
	// OpDiv is division. Division always produces a float.
	OpDiv Operator = "/"
	// OpAnd is the logical conjunction.
	OpAnd Operator = "AND"
	// OpOr is the logical disjunction.
	OpOr Operator = "OR"
	// OpIn is set membership.
	OpIn Operator = "IN"
	// OpIs is null-safe equality.
	OpIs Operator = "IS"
	// OpIsNot is negated null-safe equality.
	OpIsNot Operator = "IS NOT"
	// OpConcat is string concatenation.
	OpConcat Operator = "||"
	// OpComma is the tuple pseudo-operator of clause lists.
	OpComma Operator = ","
	// OpNot is the unary boolean negation.
	OpNot Operator = "NOT"
	// OpNegate is the unary numeric negation.
	OpNegate Operator = "neg"
	// OpNoop is the unary pass-through.
	OpNoop Operator = ""
)

// applyOp applies a named binary operator element-wise across two evaluated
// operands, broadcasting scalars against columns.
func applyOp(op Operator, l, r sql.Value) (sql.Value, error) {
	if op == OpIn {
		return applyIn(l, r)
	}
	fn, err := scalarOp(op)
	if err != nil {
		return nil, err
	}
	return broadcast(l, r, fn)
}

func scalarOp(op Operator) (func(a, b interface{}) (interface{}, error), error) {
	switch op {
	case OpEquals, OpNotEquals, OpLessThan, OpLessThanOrEqual,
		OpGreaterThan, OpGreaterThanOrEqual:
		return comparisonOp(op), nil
	case OpPlus, OpMinus, OpMult, OpDiv:
		return arithmeticOp(op), nil
	case OpAnd:
		return andOp, nil
	case OpOr:
		return orOp, nil
	case OpIs:
		return isOp, nil
	case OpIsNot:
		return isNotOp, nil
	case OpConcat:
		return concatOp, nil
	}
	return nil, sql.ErrUnsupportedFeature.New("operator " + string(op))
}

// broadcast applies f element-wise. A scalar operand is repeated against a
// column operand; two columns must have equal lengths (or be length one).
// The column operands alone decide the result length, so a zero-row column
// broadcasts to a zero-row result instead of erroring. The result is a
// column if either operand was a column; a single-valued result keeps the
// aggregate tag of its operands.
func broadcast(l, r sql.Value, f func(a, b interface{}) (interface{}, error)) (sql.Value, error) {
	lvals, lIsCol, err := operand(l)
	if err != nil {
		return nil, err
	}
	rvals, rIsCol, err := operand(r)
	if err != nil {
		return nil, err
	}

	if !lIsCol && !rIsCol {
		v, err := f(lvals[0], rvals[0])
		if err != nil {
			return nil, err
		}
		_, lIsAgg := l.(sql.Aggregate)
		_, rIsAgg := r.(sql.Aggregate)
		if lIsAgg || rIsAgg {
			return sql.Aggregate{V: v}, nil
		}
		return sql.Scalar{V: v}, nil
	}

	n := 0
	if lIsCol {
		n = len(lvals)
	}
	if rIsCol && len(rvals) > n {
		n = len(rvals)
	}
	if lIsCol && len(lvals) != n && len(lvals) != 1 {
		return nil, sql.ErrColumnCountMismatch.New(n, len(lvals))
	}
	if rIsCol && len(rvals) != n && len(rvals) != 1 {
		return nil, sql.ErrColumnCountMismatch.New(n, len(rvals))
	}

	out := make([]interface{}, n)
	for i := 0; i < n; i++ {
		a := lvals[pick(i, len(lvals))]
		b := rvals[pick(i, len(rvals))]
		v, err := f(a, b)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return sql.Column{Vals: out}, nil
}

func operand(v sql.Value) (vals []interface{}, isColumn bool, err error) {
	switch v := v.(type) {
	case sql.Scalar:
		return []interface{}{v.V}, false, nil
	case sql.Aggregate:
		return []interface{}{v.V}, false, nil
	case sql.Column:
		return v.Vals, true, nil
	}
	return nil, false, sql.ErrUnsupportedFeature.New("tuple operand")
}

func pick(i, n int) int {
	if n == 1 {
		return 0
	}
	return i
}

func comparisonOp(op Operator) func(a, b interface{}) (interface{}, error) {
	return func(a, b interface{}) (interface{}, error) {
		if a == nil || b == nil {
			return nil, nil
		}
		cmp, err := sql.Compare(a, b)
		if err != nil {
			return nil, err
		}
		switch op {
		case OpEquals:
			return cmp == 0, nil
		case OpNotEquals:
			return cmp != 0, nil
		case OpLessThan:
			return cmp < 0, nil
		case OpLessThanOrEqual:
			return cmp <= 0, nil
		case OpGreaterThan:
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}
	}
}

func arithmeticOp(op Operator) func(a, b interface{}) (interface{}, error) {
	return func(a, b interface{}) (interface{}, error) {
		if a == nil || b == nil {
			return nil, nil
		}
		ai, aIsInt := a.(int64)
		bi, bIsInt := b.(int64)
		if aIsInt && bIsInt && op != OpDiv {
			switch op {
			case OpPlus:
				return ai + bi, nil
			case OpMinus:
				return ai - bi, nil
			default:
				return ai * bi, nil
			}
		}
		af, err := cast.ToFloat64E(a)
		if err != nil {
			return nil, sql.ErrInvalidType.New(err.Error())
		}
		bf, err := cast.ToFloat64E(b)
		if err != nil {
			return nil, sql.ErrInvalidType.New(err.Error())
		}
		switch op {
		case OpPlus:
			return af + bf, nil
		case OpMinus:
			return af - bf, nil
		case OpMult:
			return af * bf, nil
		default:
			return af / bf, nil
		}
	}
}

func andOp(a, b interface{}) (interface{}, error) {
	ab, aOk := a.(bool)
	bb, bOk := b.(bool)
	if aOk && !ab || bOk && !bb {
		return false, nil
	}
	if a == nil || b == nil {
		return nil, nil
	}
	if !aOk || !bOk {
		return nil, sql.ErrInvalidType.New("non-boolean operand of AND")
	}
	return true, nil
}

func orOp(a, b interface{}) (interface{}, error) {
	ab, aOk := a.(bool)
	bb, bOk := b.(bool)
	if aOk && ab || bOk && bb {
		return true, nil
	}
	if a == nil || b == nil {
		return nil, nil
	}
	if !aOk || !bOk {
		return nil, sql.ErrInvalidType.New("non-boolean operand of OR")
	}
	return false, nil
}

func isOp(a, b interface{}) (interface{}, error) {
	return sql.Equal(a, b), nil
}

func isNotOp(a, b interface{}) (interface{}, error) {
	return !sql.Equal(a, b), nil
}

func concatOp(a, b interface{}) (interface{}, error) {
	if a == nil || b == nil {
		return nil, nil
	}
	as, err := cast.ToStringE(a)
	if err != nil {
		return nil, sql.ErrInvalidType.New(err.Error())
	}
	bs, err := cast.ToStringE(b)
	if err != nil {
		return nil, sql.ErrInvalidType.New(err.Error())
	}
	return as + bs, nil
}

// applyIn evaluates set membership of the left operand against the right
// operand, which may be a tuple, a column or a single scalar.
func applyIn(l, r sql.Value) (sql.Value, error) {
	var members []interface{}
	switch r := r.(type) {
	case sql.Tuple:
		for _, v := range r.Vals {
			s, err := sql.AsScalar(v)
			if err != nil {
				return nil, err
			}
			members = append(members, s)
		}
	case sql.Column:
		members = r.Vals
	case sql.Scalar:
		members = []interface{}{r.V}
	case sql.Aggregate:
		members = []interface{}{r.V}
	}

	contains := func(a, _ interface{}) (interface{}, error) {
		if a == nil {
			return nil, nil
		}
		for _, m := range members {
			if sql.Equal(a, m) {
				return true, nil
			}
		}
		return false, nil
	}
	return broadcast(l, sql.Scalar{}, contains)
}
