package geometry

import (
	"errors"
	"fmt"
)

var (
	// ErrRepairExhausted is returned when no rotation or tolerance yields a valid polygon.
	ErrRepairExhausted = errors.New("no valid polygon within bounded repair attempts")
	// ErrUnionDisconnected is returned when bridged inputs do not form one polygon.
	ErrUnionDisconnected = errors.New("union did not reduce to a single polygon")
	// ErrNotContained is returned when a boundary does not cover its baseline.
	ErrNotContained = errors.New("boundary does not contain baseline")
	// ErrEmptyGeometry is returned for inputs without usable vertices.
	ErrEmptyGeometry = errors.New("empty geometry")
)

// GeometryError reports a geometry operation that could not produce valid output.
type GeometryError struct {
	Op  string
	Err error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("geometry %s: %v", e.Op, e.Err)
}

func (e *GeometryError) Unwrap() error { return e.Err }

func newGeometryError(op string, err error) *GeometryError {
	return &GeometryError{Op: op, Err: err}
}

// IsGeometryError reports whether err wraps a GeometryError.
func IsGeometryError(err error) bool {
	var ge *GeometryError
	return errors.As(err, &ge)
}
