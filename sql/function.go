package sql

import (
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// AggregateFn consumes a full column of values at once and produces one
// scalar result.
type AggregateFn func(vals []interface{}) (interface{}, error)

// ScalarFn consumes positional scalar arguments and produces one scalar
// result, applied once per row.
type ScalarFn func(args ...interface{}) (interface{}, error)

// Function is a registered SQL function of either flavor.
type Function struct {
	Name      string
	Aggregate AggregateFn
	Scalar    ScalarFn
}

// IsAggregate reports whether the function is an aggregate.
func (f *Function) IsAggregate() bool { return f.Aggregate != nil }

// FunctionRegistry maps lower-cased function names to implementations.
type FunctionRegistry struct {
	fns map[string]*Function
}

// NewFunctionRegistry returns a registry preloaded with the builtin
// functions.
func NewFunctionRegistry() *FunctionRegistry {
	r := &FunctionRegistry{fns: map[string]*Function{}}
	registerDefaults(r)
	return r
}

// RegisterAggregate registers an aggregate function under the given name.
func (r *FunctionRegistry) RegisterAggregate(name string, fn AggregateFn) error {
	name = strings.ToLower(name)
	if _, ok := r.fns[name]; ok {
		return ErrFunctionAlreadyRegistered.New(name)
	}
	r.fns[name] = &Function{Name: name, Aggregate: fn}
	return nil
}

// RegisterScalar registers a non-aggregate function under the given name.
func (r *FunctionRegistry) RegisterScalar(name string, fn ScalarFn) error {
	name = strings.ToLower(name)
	if _, ok := r.fns[name]; ok {
		return ErrFunctionAlreadyRegistered.New(name)
	}
	r.fns[name] = &Function{Name: name, Scalar: fn}
	return nil
}

// Function returns the function with the given name.
func (r *FunctionRegistry) Function(name string) (*Function, error) {
	if fn, ok := r.fns[strings.ToLower(name)]; ok {
		return fn, nil
	}
	return nil, ErrFunctionNotFound.New(name)
}

func registerDefaults(r *FunctionRegistry) {
	for name, fn := range map[string]AggregateFn{
		"count": countFn,
		"max":   maxFn,
		"min":   minFn,
		"sum":   sumFn,
		"avg":   avgFn,
	} {
		must(r.RegisterAggregate(name, fn))
	}
	for name, fn := range map[string]ScalarFn{
		"now":      nowFn,
		"upper":    upperFn,
		"lower":    lowerFn,
		"length":   lengthFn,
		"abs":      absFn,
		"coalesce": coalesceFn,
	} {
		must(r.RegisterScalar(name, fn))
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func countFn(vals []interface{}) (interface{}, error) {
	var n int64
	for _, v := range vals {
		if v != nil {
			n++
		}
	}
	return n, nil
}

func maxFn(vals []interface{}) (interface{}, error) {
	return extreme(vals, 1)
}

func minFn(vals []interface{}) (interface{}, error) {
	return extreme(vals, -1)
}

func extreme(vals []interface{}, sign int) (interface{}, error) {
	var best interface{}
	for _, v := range vals {
		if v == nil {
			continue
		}
		if best == nil {
			best = v
			continue
		}
		cmp, err := Compare(v, best)
		if err != nil {
			return nil, err
		}
		if cmp*sign > 0 {
			best = v
		}
	}
	return best, nil
}

func sumFn(vals []interface{}) (interface{}, error) {
	var (
		intSum   int64
		floatSum float64
		seen     bool
		floating bool
	)
	for _, v := range vals {
		if v == nil {
			continue
		}
		seen = true
		if i, ok := v.(int64); ok && !floating {
			intSum += i
			continue
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, ErrInvalidType.New(err.Error())
		}
		if !floating {
			floating = true
			floatSum = float64(intSum)
		}
		floatSum += f
	}
	if !seen {
		return nil, nil
	}
	if floating {
		return floatSum, nil
	}
	return intSum, nil
}

func avgFn(vals []interface{}) (interface{}, error) {
	var (
		sum float64
		n   int64
	)
	for _, v := range vals {
		if v == nil {
			continue
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, ErrInvalidType.New(err.Error())
		}
		sum += f
		n++
	}
	if n == 0 {
		return nil, nil
	}
	return sum / float64(n), nil
}

func nowFn(...interface{}) (interface{}, error) {
	return time.Now(), nil
}

func upperFn(args ...interface{}) (interface{}, error) {
	return stringFn(args, strings.ToUpper)
}

func lowerFn(args ...interface{}) (interface{}, error) {
	return stringFn(args, strings.ToLower)
}

func stringFn(args []interface{}, fn func(string) string) (interface{}, error) {
	if len(args) != 1 {
		return nil, ErrColumnCountMismatch.New(1, len(args))
	}
	if args[0] == nil {
		return nil, nil
	}
	s, err := cast.ToStringE(args[0])
	if err != nil {
		return nil, ErrInvalidType.New(err.Error())
	}
	return fn(s), nil
}

func lengthFn(args ...interface{}) (interface{}, error) {
	v, err := stringFn(args, func(s string) string { return s })
	if err != nil || v == nil {
		return nil, err
	}
	return int64(len(v.(string))), nil
}

func absFn(args ...interface{}) (interface{}, error) {
	if len(args) != 1 {
		return nil, ErrColumnCountMismatch.New(1, len(args))
	}
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case int64:
		if v < 0 {
			return -v, nil
		}
		return v, nil
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, ErrInvalidType.New(err.Error())
		}
		return math.Abs(f), nil
	}
}

func coalesceFn(args ...interface{}) (interface{}, error) {
	for _, a := range args {
		if a != nil {
			return a, nil
		}
	}
	return nil, nil
}
