package cover

import "math"

// HorizontalCalculator converts the vertical shading requirement into an
// awning extension.
//
// The gap the sun passes under a notional vertical blind is projected to
// an awning length with the law of sines, using the sun elevation and the
// awning's mounting angle. Percentage 100 means fully extended.
type HorizontalCalculator struct {
	Geometry HorizontalGeometry
}

// Type returns TypeHorizontal.
func (c HorizontalCalculator) Type() Type { return TypeHorizontal }

// Calculate returns the required awning extension in metres and its
// percentage of the full awning length.
//
// At the low-elevation and extreme-gamma edge cases the awning extends
// fully: "full coverage" for an awning is maximum extension, unlike the
// underlying vertical projection where it is maximum drop.
func (c HorizontalCalculator) Calculate(gamma, elevation float64) Calculation {
	g := c.Geometry

	if elevation < edgeCaseLowElevation || math.Abs(gamma) > edgeCaseExtremeGamma {
		return Calculation{
			Position:   g.AwningLength,
			Percentage: 100,
			Margin:     1.0,
			EdgeCase:   true,
		}
	}

	vertical := VerticalCalculator{Geometry: g.VerticalGeometry}.Calculate(gamma, elevation)
	length := c.extension(vertical.Position, elevation)

	return Calculation{
		Position:   length,
		Percentage: toPercentage(length, g.AwningLength),
		Margin:     vertical.Margin,
		EdgeCase:   vertical.EdgeCase,
	}
}

// extension solves the triangle formed by the window plane, the sun ray
// and the awning for the extension covering the gap above the notional
// vertical blind.
func (c HorizontalCalculator) extension(verticalHeight, elevation float64) float64 {
	awnAngle := 90 - c.Geometry.AwningAngle
	sunAngle := 90 - elevation
	closureAngle := 180 - awnAngle - sunAngle

	gap := c.Geometry.WindowHeight - verticalHeight
	return gap * math.Sin(radians(sunAngle)) / math.Sin(radians(closureAngle))
}
