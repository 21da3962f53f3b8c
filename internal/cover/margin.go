package cover

import "math"

// Geometric edge-case thresholds. Below/beyond these the trigonometric
// path-length formula becomes unstable and a deterministic fallback is
// used instead.
const (
	// edgeCaseLowElevation: sun nearly horizontal, full coverage is safest.
	edgeCaseLowElevation = 2.0

	// edgeCaseExtremeGamma: sun nearly parallel to the facade, the
	// 1/cos(gamma) path length blows up.
	edgeCaseExtremeGamma = 85.0

	// edgeCaseHighElevation: sun nearly overhead, the gamma-dependent
	// path length no longer matters.
	edgeCaseHighElevation = 88.0
)

// Safety-margin tuning. The margin compensates for approximation error in
// the flat-window model near grazing angles. Fixed documented constants;
// retuning them is a configuration concern, not a logic change.
const (
	marginGammaThreshold = 45.0
	marginGammaMax       = 0.2

	marginLowElevThreshold = 10.0
	marginLowElevMax       = 0.15

	marginHighElevThreshold = 75.0
	marginHighElevMax       = 0.1

	// windowDepthGammaThreshold: below this gamma the reveal casts no
	// meaningful extra shadow.
	windowDepthGammaThreshold = 10.0
)

// SafetyMargin returns the multiplier (always >= 1.0) applied to the raw
// geometric result outside the edge cases.
//
// Three independent factors, combined multiplicatively:
//   - gamma: smoothstep from 1.0 at |gamma|=45° to 1.2 at |gamma|=90°
//   - low elevation: linear from 1.0 at 10° to 1.15 at 0°
//   - high elevation: linear from 1.0 at 75° to 1.1 at 90°
//
// The margin is exactly 1.0 at gamma=0°, elevation=45°, and grows
// monotonically towards each extreme.
func SafetyMargin(gamma, elevation float64) float64 {
	margin := 1.0

	if g := math.Abs(gamma); g > marginGammaThreshold {
		t := clip((g-marginGammaThreshold)/(90-marginGammaThreshold), 0, 1)
		margin *= 1 + marginGammaMax*smoothstep(t)
	}

	switch {
	case elevation < marginLowElevThreshold:
		t := clip((marginLowElevThreshold-elevation)/marginLowElevThreshold, 0, 1)
		margin *= 1 + marginLowElevMax*t
	case elevation > marginHighElevThreshold:
		t := clip((elevation-marginHighElevThreshold)/(90-marginHighElevThreshold), 0, 1)
		margin *= 1 + marginHighElevMax*t
	}

	return margin
}

// edgeCaseHeight checks the grazing-angle edge cases for height-projecting
// covers (vertical, horizontal). It returns the fallback blind height and
// true when an edge case applies.
func edgeCaseHeight(gamma, elevation, distance, windowHeight float64) (float64, bool) {
	if elevation < edgeCaseLowElevation {
		return windowHeight, true
	}
	if math.Abs(gamma) > edgeCaseExtremeGamma {
		return windowHeight, true
	}
	if elevation > edgeCaseHighElevation {
		// Sun nearly overhead: skip the gamma-dependent path length.
		h := distance * math.Tan(radians(elevation))
		return clip(h, 0, windowHeight), true
	}
	return 0, false
}

// effectiveDistance adds the extra horizontal shadow offset cast by the
// window reveal when the sun strikes at an angle.
func effectiveDistance(distance, windowDepth, gamma float64) float64 {
	if windowDepth > 0 && math.Abs(gamma) > windowDepthGammaThreshold {
		distance += windowDepth * math.Sin(radians(math.Abs(gamma)))
	}
	return distance
}

// smoothstep is the cubic Hermite interpolant 3t²-2t³ for t in [0,1].
func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

func clip(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
