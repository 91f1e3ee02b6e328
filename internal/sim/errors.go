package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrNonFinitePosition indicates a NaN or infinite coordinate.
	ErrNonFinitePosition = errors.New("sim: non-finite position")

	// ErrDimensionMismatch indicates points of different dimensions, or a
	// dimension above geom.MaxDim.
	ErrDimensionMismatch = errors.New("sim: dimension mismatch")

	// ErrDuplicateForce indicates a force name already registered.
	ErrDuplicateForce = errors.New("sim: duplicate force name")

	// ErrUnknownForce indicates a force name that is not registered.
	ErrUnknownForce = errors.New("sim: unknown force")

	// ErrPointType indicates a force or observer built for a different point
	// type than the simulation's.
	ErrPointType = errors.New("sim: point type does not match simulation")

	// ErrNilForce indicates a nil force.
	ErrNilForce = errors.New("sim: nil force")

	// ErrNodeOutOfRange indicates a node index outside [0, Len()).
	ErrNodeOutOfRange = errors.New("sim: node index out of range")

	// ErrInvalidCooling indicates a cooling parameter outside its bounds.
	ErrInvalidCooling = errors.New("sim: invalid cooling parameter")

	// ErrParameterBounds indicates a simulation option outside its bounds.
	ErrParameterBounds = errors.New("sim: parameter out of valid bounds")
)

// ForceError wraps a failure to initialize or register a named force.
type ForceError struct {
	Name    string
	Wrapped error
}

func (e *ForceError) Error() string {
	return fmt.Sprintf("sim: force %q: %v", e.Name, e.Wrapped)
}

func (e *ForceError) Unwrap() error {
	return e.Wrapped
}
