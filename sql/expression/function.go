package expression

import (
	"github.com/frameql/frameql/sql"
)

// Function is a call to a registered SQL function. Aggregate functions
// consume a full column at once and produce a tagged scalar; non-aggregate
// functions are applied once per row with positional scalar arguments.
type Function struct {
	name string
	args []sql.Expression
}

var _ sql.Expression = (*Function)(nil)

// NewFunction creates a call to the function with the given name.
func NewFunction(name string, args ...sql.Expression) *Function {
	return &Function{name: name, args: args}
}

// Name implements the Nameable interface.
func (f *Function) Name() string { return f.name }

// Eval implements the Expression interface.
func (f *Function) Eval(ctx *sql.Context, frame *sql.Frame) (sql.Value, error) {
	fn, err := ctx.Functions().Function(f.name)
	if err != nil {
		return nil, err
	}
	if fn.IsAggregate() {
		return f.evalAggregate(ctx, fn, frame)
	}
	return f.evalScalar(ctx, fn, frame)
}

func (f *Function) evalAggregate(ctx *sql.Context, fn *sql.Function, frame *sql.Frame) (sql.Value, error) {
	var vals []interface{}
	switch len(f.args) {
	case 0:
		// count(*) style: aggregate over the row positions of the group.
		n := 0
		if frame != nil {
			n = frame.NumRows()
		}
		vals = make([]interface{}, n)
		for i := range vals {
			vals[i] = int64(i)
		}
	case 1:
		v, err := f.args[0].Eval(ctx, frame)
		if err != nil {
			return nil, err
		}
		if _, ok := v.(sql.Tuple); ok {
			return nil, sql.ErrUnsupportedFeature.New("aggregate over multiple columns")
		}
		vals, err = sql.AsSeries(v)
		if err != nil {
			return nil, err
		}
	default:
		return nil, sql.ErrUnsupportedFeature.New("aggregate over multiple columns")
	}

	result, err := fn.Aggregate(vals)
	if err != nil {
		return nil, err
	}
	return sql.Aggregate{V: result}, nil
}

func (f *Function) evalScalar(ctx *sql.Context, fn *sql.Function, frame *sql.Frame) (sql.Value, error) {
	args := make([][]interface{}, 0, len(f.args))
	colLen := 0
	column := false
	anyAggregate := false
	for _, arg := range f.args {
		v, err := arg.Eval(ctx, frame)
		if err != nil {
			return nil, err
		}
		// A comma clause list expands into positional arguments.
		flat := []sql.Value{v}
		if t, ok := v.(sql.Tuple); ok {
			flat = t.Vals
		}
		for _, fv := range flat {
			series, err := sql.AsSeries(fv)
			if err != nil {
				return nil, err
			}
			if _, ok := fv.(sql.Column); ok {
				column = true
				if len(series) > colLen {
					colLen = len(series)
				}
			}
			if _, ok := fv.(sql.Aggregate); ok {
				anyAggregate = true
			}
			args = append(args, series)
		}
	}

	// Column arguments alone decide the row count, so a function over an
	// empty column yields an empty column.
	n := 1
	if column {
		n = colLen
	}

	for _, series := range args {
		if len(series) != n && len(series) > 1 {
			return nil, sql.ErrColumnCountMismatch.New(n, len(series))
		}
	}

	out := make([]interface{}, n)
	for i := 0; i < n; i++ {
		call := make([]interface{}, len(args))
		for j, series := range args {
			if len(series) == 0 {
				call[j] = nil
			} else {
				call[j] = series[pick(i, len(series))]
			}
		}
		v, err := fn.Scalar(call...)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	if column {
		return sql.Column{Vals: out}, nil
	}
	if anyAggregate {
		return sql.Aggregate{V: out[0]}, nil
	}
	return sql.Scalar{V: out[0]}, nil
}
