package statistic

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats/scalar"
)

const (
	DefaultWindowSize        = 1024
	DefaultEqualityTolerance = 0.0001
)

// ErrInvalidParameters is returned when estimator parameters cannot be used to build estimators.
var ErrInvalidParameters = errors.New("invalid estimator parameters")

// Parameters configures the estimators. They are used to build new estimators
// on demand and are never part of a persisted snapshot.
type Parameters struct {
	// EqualityTolerance is the maximum relative difference treated as equal.
	EqualityTolerance float64 `yaml:"equality_tolerance"`
	// WindowSize bounds how many samples a rolling average weighs in full.
	WindowSize int `yaml:"window_size"`
}

// DefaultParameters returns the parameters used when none are configured.
func DefaultParameters() Parameters {
	return Parameters{
		EqualityTolerance: DefaultEqualityTolerance,
		WindowSize:        DefaultWindowSize,
	}
}

// Validate reports whether the parameters can build estimators.
func (p Parameters) Validate() error {
	if p.EqualityTolerance < 0 {
		return fmt.Errorf("%w: equality tolerance %v is negative", ErrInvalidParameters, p.EqualityTolerance)
	}
	if p.WindowSize <= 0 {
		return fmt.Errorf("%w: window size %d must be positive", ErrInvalidParameters, p.WindowSize)
	}
	return nil
}

// ApproxEqual compares two statistics within tol, relative to their magnitude.
// Values near zero are compared absolutely.
func ApproxEqual(a, b, tol float64) bool {
	return scalar.EqualWithinAbsOrRel(a, b, tol, tol)
}
