// Package interp defines the interface interpolation schemes expose and the
// checks shared by their constructors.
package interp

import (
	"errors"
	"fmt"
)

// ErrUnsupported is wrapped by interpolation operations a scheme does not
// define. Callers branch on it with errors.Is.
var ErrUnsupported = errors.New("operation not supported")

// Interpolation interpolates a discrete set of (x, y) points. Implementations
// keep a reference to the data and recompute their state in Update.
type Interpolation interface {
	// Value returns the interpolated value at x.
	Value(x float64) (float64, error)
	// Primitive returns the integral of the interpolant from the first data
	// point to x.
	Primitive(x float64) (float64, error)
	// Derivative returns the first derivative of the interpolant at x.
	Derivative(x float64) (float64, error)
	// SecondDerivative returns the second derivative of the interpolant at x.
	SecondDerivative(x float64) (float64, error)
	// Update recomputes the interpolant after the underlying data changed.
	Update() error
}

// ValidateXY checks that xs and ys form a usable data set: equal lengths, at
// least minPoints points, strictly increasing xs.
func ValidateXY(xs, ys []float64, minPoints int) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("x and y sizes differ: %d vs %d", len(xs), len(ys))
	}
	if len(xs) < minPoints {
		return fmt.Errorf("not enough points: %d provided, at least %d required", len(xs), minPoints)
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return fmt.Errorf("x values must be strictly increasing: x[%d]=%v, x[%d]=%v", i-1, xs[i-1], i, xs[i])
		}
	}
	return nil
}
