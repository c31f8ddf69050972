package sql

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrInvalidType is thrown when there is an unexpected type at some part
	// of the execution tree.
	ErrInvalidType = errors.NewKind("invalid type: %s")

	// ErrTableAlreadyExists is thrown when someone tries to create a
	// table with the name of an existing one.
	ErrTableAlreadyExists = errors.NewKind("table with name %s already exists")

	// ErrTableNotFound is returned when the table is not available in the
	// current namespace.
	ErrTableNotFound = errors.NewKind("table not found: %s")

	// ErrColumnNotFound is returned when a qualified column cannot be found
	// in the frame being evaluated.
	ErrColumnNotFound = errors.NewKind("column %q could not be found in any table in scope")

	// ErrFunctionNotFound is thrown when a function is not registered.
	ErrFunctionNotFound = errors.NewKind("function not found: %s")

	// ErrFunctionAlreadyRegistered is thrown when a function is already
	// registered under the same name.
	ErrFunctionAlreadyRegistered = errors.NewKind("function %q is already registered")

	// ErrBindVarNotFound is returned when a bound parameter referenced by a
	// statement is missing from the parameter set of the execution.
	ErrBindVarNotFound = errors.NewKind("bound parameter not found: %s")

	// ErrHavingWithoutGroupBy is returned when a query has a HAVING clause
	// but no GROUP BY clause.
	ErrHavingWithoutGroupBy = errors.NewKind("HAVING clause requires a GROUP BY clause")

	// ErrScalarMultipleRows is returned when an expression that must coerce
	// to a single scalar produced more than one row.
	ErrScalarMultipleRows = errors.NewKind("scalar expression returned more than one row")

	// ErrIndexPrimaryKeyUpdate is returned when an UPDATE targets a primary
	// key column that is derived from the frame's row index and therefore
	// has no backing storage.
	ErrIndexPrimaryKeyUpdate = errors.NewKind("cannot update index-derived primary key column %q")

	// ErrColumnCountMismatch is thrown when the number of values given to an
	// operation does not match the number of columns it names.
	ErrColumnCountMismatch = errors.NewKind("expected %d values, got %d")

	// ErrUnsupportedFeature is thrown when a feature is not already supported.
	ErrUnsupportedFeature = errors.NewKind("unsupported feature: %s")
)
