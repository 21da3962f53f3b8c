package cover

import "math"

// VerticalCalculator projects the glare zone onto a vertical blind.
//
// The blind must drop far enough that its lower edge shades the area at
// Geometry.Distance from the window: the sun's ray through that point is
// traced back to the window plane, lengthened by the safety margin, and
// clipped to the window height.
type VerticalCalculator struct {
	Geometry VerticalGeometry
}

// Type returns TypeVertical.
func (c VerticalCalculator) Type() Type { return TypeVertical }

// Calculate returns the required blind height and its percentage of the
// window height. Percentage 100 means fully lowered.
func (c VerticalCalculator) Calculate(gamma, elevation float64) Calculation {
	g := c.Geometry

	if h, ok := edgeCaseHeight(gamma, elevation, g.Distance, g.WindowHeight); ok {
		return Calculation{
			Position:   h,
			Percentage: toPercentage(h, g.WindowHeight),
			Margin:     1.0,
			EdgeCase:   true,
		}
	}

	distance := effectiveDistance(g.Distance, g.WindowDepth, gamma)
	pathLength := distance / math.Cos(radians(gamma))
	rawHeight := pathLength * math.Tan(radians(elevation))

	margin := SafetyMargin(gamma, elevation)
	height := clip(rawHeight*margin, 0, g.WindowHeight)

	return Calculation{
		Position:   height,
		Percentage: toPercentage(height, g.WindowHeight),
		Margin:     margin,
	}
}
