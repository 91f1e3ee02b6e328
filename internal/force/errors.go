package force

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrEdgeOutOfRange indicates an edge endpoint outside [0, nodes).
	ErrEdgeOutOfRange = errors.New("force: edge endpoint out of range")

	// ErrNegativeDistance indicates a negative link rest distance or distance bound.
	ErrNegativeDistance = errors.New("force: negative distance")

	// ErrNegativeRadius indicates a negative collision radius.
	ErrNegativeRadius = errors.New("force: negative radius")

	// ErrNonFinite indicates a NaN or infinite parameter.
	ErrNonFinite = errors.New("force: non-finite parameter")

	// ErrNilForce indicates a method called on a nil force pointer.
	ErrNilForce = errors.New("force: nil force")

	// ErrParameterBounds indicates a parameter outside its valid range.
	ErrParameterBounds = errors.New("force: parameter out of valid bounds")
)

// ParamError wraps a validation failure with the offending parameter. Index
// is the node or edge index for per-item parameters and -1 otherwise.
type ParamError struct {
	Param   string
	Index   int
	Value   float64
	Wrapped error
}

func (e *ParamError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%v: %s = %v", e.Wrapped, e.Param, e.Value)
	}
	return fmt.Sprintf("%v: %s[%d] = %v", e.Wrapped, e.Param, e.Index, e.Value)
}

func (e *ParamError) Unwrap() error {
	return e.Wrapped
}

func paramErr(param string, index int, v float64, err error) error {
	return &ParamError{Param: param, Index: index, Value: v, Wrapped: err}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func checkFinite(param string, index int, v float64) error {
	if !finite(v) {
		return paramErr(param, index, v, ErrNonFinite)
	}
	return nil
}

func checkIterations(n int) error {
	if n < 1 {
		return paramErr("iterations", -1, float64(n), ErrParameterBounds)
	}
	return nil
}
