package sql

import (
	"github.com/spf13/cast"
)

// Type is the coercion behavior of a declared column. There is deliberately
// no schema enforcement beyond Convert: frames hold whatever scalars the
// resolvers put in them, and a Type only normalizes values on their way into
// a stored column.
type Type interface {
	// Name returns the DDL name of the type.
	Name() string
	// Convert coerces the given value to this type. Nil passes through
	// untouched.
	Convert(v interface{}) (interface{}, error)
}

var (
	// Integer is a 64 bit integer column type.
	Integer Type = integerType{}
	// Float is a 64 bit floating point column type.
	Float Type = floatType{}
	// Text is a string column type.
	Text Type = textType{}
	// Boolean is a boolean column type.
	Boolean Type = booleanType{}
)

type integerType struct{}

func (integerType) Name() string { return "integer" }

func (integerType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	i, err := cast.ToInt64E(v)
	if err != nil {
		return nil, ErrInvalidType.New(err.Error())
	}
	return i, nil
}

type floatType struct{}

func (floatType) Name() string { return "float" }

func (floatType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil, ErrInvalidType.New(err.Error())
	}
	return f, nil
}

type textType struct{}

func (textType) Name() string { return "string" }

func (textType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, ErrInvalidType.New(err.Error())
	}
	return s, nil
}

type booleanType struct{}

func (booleanType) Name() string { return "boolean" }

func (booleanType) Convert(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return nil, ErrInvalidType.New(err.Error())
	}
	return b, nil
}
