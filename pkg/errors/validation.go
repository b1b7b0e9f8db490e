package errors

import "math"

// ValidateCoordinate rejects positions that cannot be stored or rendered.
// Both components must be finite (no NaN or ±Inf).
func ValidateCoordinate(x, y float64) error {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return New(ErrCodeInvalidCoordinate, "x is not finite: %v", x)
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return New(ErrCodeInvalidCoordinate, "y is not finite: %v", y)
	}
	return nil
}

// ValidateSpacing checks a layout unit distance.
func ValidateSpacing(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return New(ErrCodeInvalidOption, "base spacing must be a positive finite number, got %v", v)
	}
	return nil
}
