package cover

// Calculation is the raw geometric result of one variant calculator.
type Calculation struct {
	// Position in the variant's physical unit: blind height or awning
	// extension in metres, slat angle in degrees.
	Position float64

	// Percentage is Position converted to 0-100, clipped.
	Percentage float64

	// Margin is the safety-margin multiplier that was applied (1.0 when
	// an edge case short-circuited or the variant takes no margin).
	Margin float64

	// EdgeCase reports that a grazing-angle short-circuit produced the
	// result instead of the main formula.
	EdgeCase bool
}

// Calculator turns a sun angle relative to the window into a raw position
// and percentage for one cover variant. Implementations are pure value
// types and safe for concurrent use.
type Calculator interface {
	// Type identifies the variant.
	Type() Type

	// Calculate computes the position for the given gamma (degrees,
	// signed) and sun elevation (degrees). Inputs are assumed valid; the
	// grazing-angle edge cases are handled internally and never produce
	// non-finite results.
	Calculate(gamma, elevation float64) Calculation
}

// toPercentage converts a position to a percentage of its maximum,
// clipped into [0,100].
func toPercentage(position, max float64) float64 {
	return clip(position/max*100, 0, 100)
}
