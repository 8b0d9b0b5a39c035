package errors

import (
	"fmt"
	"math"
)

// CheckNumericalStability checks if values contain NaN or Inf
// and returns an error if numerical instability is detected.
func CheckNumericalStability(operation string, values []float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewNumericalInstabilityError(operation, values)
		}
	}
	return nil
}

// CheckProbability checks that p is a finite probability in [0, 1].
func CheckProbability(operation string, p float64) error {
	if err := CheckNumericalStability(operation, []float64{p}); err != nil {
		return err
	}
	if p < 0 || p > 1 {
		return NewValueError(operation, fmt.Sprintf("probability out of range [0, 1]: %v", p))
	}
	return nil
}

// ClipValue clips a value to the range [min, max].
func ClipValue(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
