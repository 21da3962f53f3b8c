package cover

import "math"

// TiltCalculator derives the slat angle that just blocks direct sun for a
// venetian-style cover.
//
// The profile angle beta is the sun elevation projected onto the plane
// perpendicular to the window. The slat angle follows from beta and the
// slat depth to distance ratio; percentages are relative to the maximum
// rotation of the configured tilt mode.
type TiltCalculator struct {
	Geometry TiltGeometry
}

// Type returns TypeTilt.
func (c TiltCalculator) Type() Type { return TypeTilt }

// Calculate returns the cut-off slat angle in degrees and its percentage
// of the tilt mode's maximum rotation. Slat angles carry no safety
// margin; the cut-off angle is already the closed bound.
func (c TiltCalculator) Calculate(gamma, elevation float64) Calculation {
	maxDeg := c.Geometry.Mode.MaxDegrees()

	if elevation < edgeCaseLowElevation || math.Abs(gamma) > edgeCaseExtremeGamma {
		return Calculation{
			Position:   maxDeg,
			Percentage: 100,
			Margin:     1.0,
			EdgeCase:   true,
		}
	}

	angle := clip(c.slatAngle(gamma, elevation), 0, maxDeg)

	return Calculation{
		Position:   angle,
		Percentage: toPercentage(angle, maxDeg),
		Margin:     1.0,
	}
}

// ProfileAngle returns beta in degrees, the sun elevation projected onto
// the vertical plane normal to the window.
func (c TiltCalculator) ProfileAngle(gamma, elevation float64) float64 {
	return degrees(profileAngle(gamma, elevation))
}

// slatAngle computes the cut-off angle in degrees from the profile angle
// and the slat geometry.
func (c TiltCalculator) slatAngle(gamma, elevation float64) float64 {
	beta := profileAngle(gamma, elevation)
	ratio := c.Geometry.SlatDistance / c.Geometry.SlatDepth

	tanBeta := math.Tan(beta)
	root := math.Sqrt(math.Max(tanBeta*tanBeta-ratio*ratio+1, 0))
	slat := 2 * math.Atan((tanBeta+root)/(1+ratio))
	return degrees(slat)
}

// profileAngle returns beta in radians.
func profileAngle(gamma, elevation float64) float64 {
	return math.Atan(math.Tan(radians(elevation)) / math.Cos(radians(gamma)))
}
