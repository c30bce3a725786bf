package errors

import (
	"math"
)

// CheckNumericalStability checks whether values contain NaN or Inf and
// returns an error if numerical instability is detected.
func CheckNumericalStability(operation string, values []float64, iteration int) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Newf("surveyreg: numerical instability detected in %s at iteration %d", operation, iteration)
		}
	}
	return nil
}

// CheckScalar checks a single scalar value for numerical instability.
func CheckScalar(operation string, value float64, iteration int) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Newf("surveyreg: numerical instability detected in %s at iteration %d (value: %g)", operation, iteration, value)
	}
	return nil
}
