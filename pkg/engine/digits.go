package engine

import "math"

// MaxDigits is the cap on correct digits, reported for exact matches.
const MaxDigits = 50

// CorrectDigits returns the number of matching decimal digits between a
// candidate and a target of the given magnitude: -log10 of the relative error,
// or of the absolute error when the target is zero, clamped to [0, MaxDigits].
func CorrectDigits(distance, magnitude float64) float64 {
	if math.IsNaN(distance) || math.IsInf(distance, 0) {
		return 0
	}
	if distance == 0 {
		return MaxDigits
	}
	relErr := distance
	if magnitude > 0 && !math.IsInf(magnitude, 0) {
		relErr = distance / magnitude
	}
	if relErr == 0 {
		return MaxDigits
	}
	return math.Min(MaxDigits, math.Max(0, -math.Log10(relErr)))
}
