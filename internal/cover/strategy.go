package cover

import "time"

// Rule identifies which strategy branch produced a position. Recorded on
// every CalculatedPosition so the decision path can be logged and charted.
type Rule string

const (
	// RuleTracking means the sun is directly in view and the position
	// follows the variant calculator.
	RuleTracking Rule = "tracking"

	// RuleFallback means the sun is not usable (out of view, in the
	// blind spot or inside the sunset window) and the configured
	// default position applies.
	RuleFallback Rule = "fallback"

	// RuleWinter opens fully for passive solar heating.
	RuleWinter Rule = "climate_winter"

	// RuleLowLight holds the default position when light is poor
	// outside the summer condition.
	RuleLowLight Rule = "climate_low_light"

	// RuleSummer closes to block heat gain.
	RuleSummer Rule = "climate_summer"

	// RuleAwaySummer closes for heat blocking while unoccupied.
	RuleAwaySummer Rule = "climate_away_summer"

	// RuleAwayWinter opens for solar heating while unoccupied.
	RuleAwayWinter Rule = "climate_away_winter"

	// RuleAwayDefault holds the default position while unoccupied.
	RuleAwayDefault Rule = "climate_away_default"
)

// Climate tilt angles in degrees. Summer closes the slats halfway to
// block heat while keeping some view; winter opens them flat.
const (
	climateSummerTiltAngle   = 45.0
	climateFullOpenTiltAngle = 90.0
)

// Input bundles everything a single evaluation consumes. All fields are
// passed by value; the core keeps no state between calls.
type Input struct {
	Sun     SolarAngle
	Times   SolarTimes
	Now     time.Time
	Climate *ClimateContext
}

// Evaluate runs the full pipeline for one cover at one instant: window
// geometry and validity, variant calculation, strategy selection and the
// position limit clamp. When in.Climate is nil the normal tracking or
// fallback strategy applies; otherwise the climate rule list runs first.
func Evaluate(model Model, calc Calculator, limits PositionLimits, in Input) CalculatedPosition {
	gamma := model.Gamma(in.Sun.Azimuth)
	flags := model.Flags(in.Sun, in.Now, in.Times)

	var result CalculatedPosition
	if in.Climate != nil {
		result = climateState(model, calc, gamma, flags, in)
	} else {
		result = normalState(model, calc, gamma, flags, in)
	}

	result.Gamma = gamma
	result.Elevation = in.Sun.Elevation
	flags.EdgeCase = result.Flags.EdgeCase
	result.Flags = flags
	result.Value = limits.Clamp(result.Value, flags.DirectSun())
	return result
}

// normalState is the two-state strategy: track the sun while it shines
// directly into the window, otherwise sit at the default position. The
// state is recomputed every evaluation, never stored.
func normalState(model Model, calc Calculator, gamma float64, flags ValidityFlags, in Input) CalculatedPosition {
	if flags.DirectSun() {
		c := calc.Calculate(gamma, in.Sun.Elevation)
		return CalculatedPosition{
			Value:        c.Percentage,
			SafetyMargin: c.Margin,
			Rule:         RuleTracking,
			Flags:        ValidityFlags{EdgeCase: c.EdgeCase},
		}
	}
	return fixed(model.DefaultPosition(in.Now, in.Times), RuleFallback)
}

// climateRule is one entry of the ordered climate decision list. The
// first rule whose predicate holds decides the position.
type climateRule struct {
	name  Rule
	when  func(cl ClimateContext, flags ValidityFlags, typ Type) bool
	value func(model Model, calc Calculator, gamma float64, flags ValidityFlags, in Input) CalculatedPosition
}

// climateRules is evaluated in order, first match wins. The ordering is
// load-bearing: winter heating beats the low-light hold, which beats the
// summer close.
var climateRules = []climateRule{
	{
		name: RuleWinter,
		when: func(cl ClimateContext, flags ValidityFlags, typ Type) bool {
			return cl.Winter() && flags.SunValid
		},
		value: func(model Model, calc Calculator, gamma float64, flags ValidityFlags, in Input) CalculatedPosition {
			return fixed(fullOpen(calc), RuleWinter)
		},
	},
	{
		name: RuleLowLight,
		when: func(cl ClimateContext, flags ValidityFlags, typ Type) bool {
			return !cl.Summer() && (!cl.LightOK || !cl.Sunny)
		},
		value: func(model Model, calc Calculator, gamma float64, flags ValidityFlags, in Input) CalculatedPosition {
			return fixed(model.DefaultPosition(in.Now, in.Times), RuleLowLight)
		},
	},
	{
		name: RuleSummer,
		when: func(cl ClimateContext, flags ValidityFlags, typ Type) bool {
			return cl.Summer() && (cl.TransparentBlind || typ == TypeTilt)
		},
		value: func(model Model, calc Calculator, gamma float64, flags ValidityFlags, in Input) CalculatedPosition {
			return fixed(summerClose(calc), RuleSummer)
		},
	},
}

// climateState runs the presence-aware rule list, or the collapsed
// energy-focused strategy when nobody is home.
func climateState(model Model, calc Calculator, gamma float64, flags ValidityFlags, in Input) CalculatedPosition {
	cl := *in.Climate

	if !cl.Presence {
		return climateAwayState(model, calc, gamma, flags, in, cl)
	}

	for _, rule := range climateRules {
		if rule.when(cl, flags, calc.Type()) {
			return rule.value(model, calc, gamma, flags, in)
		}
	}
	return normalState(model, calc, gamma, flags, in)
}

// climateAwayState is the unoccupied strategy. Light and weather checks
// are skipped; only the temperature extremes matter, everything else
// holds the default position.
func climateAwayState(model Model, calc Calculator, gamma float64, flags ValidityFlags, in Input, cl ClimateContext) CalculatedPosition {
	if flags.SunValid {
		if cl.Summer() {
			return fixed(0, RuleAwaySummer)
		}
		if cl.Winter() {
			return fixed(awayWinterOpen(calc, gamma, in.Sun.Elevation), RuleAwayWinter)
		}
	}
	return fixed(model.DefaultPosition(in.Now, in.Times), RuleAwayDefault)
}

// fixed wraps a strategy-chosen percentage that did not come from the
// variant calculator, so no safety margin applies.
func fixed(value float64, rule Rule) CalculatedPosition {
	return CalculatedPosition{Value: value, SafetyMargin: 1.0, Rule: rule}
}

// fullOpen returns the full-open equivalent percentage for the winter
// heating branch. Vertical and horizontal covers open to 100; a tilt
// cover turns its slats flat, which for a bi-directional blind is the
// midpoint of its range rather than an end stop.
func fullOpen(calc Calculator) float64 {
	if tilt, ok := calc.(TiltCalculator); ok {
		return toPercentage(climateFullOpenTiltAngle, tilt.Geometry.Mode.MaxDegrees())
	}
	return 100
}

// summerClose returns the summer heat-blocking percentage. Vertical and
// horizontal covers close fully; a tilt cover angles its slats to 45°,
// blocking radiation while keeping some daylight.
func summerClose(calc Calculator) float64 {
	if tilt, ok := calc.(TiltCalculator); ok {
		return toPercentage(climateSummerTiltAngle, tilt.Geometry.Mode.MaxDegrees())
	}
	return 0
}

// awayWinterOpen returns the unoccupied winter position. Bi-directional
// tilt covers align their slats parallel to the sun beams to let the
// full beam depth through; everything else opens fully.
func awayWinterOpen(calc Calculator, gamma, elevation float64) float64 {
	if tilt, ok := calc.(TiltCalculator); ok && tilt.Geometry.Mode == TiltModeBi {
		beta := tilt.ProfileAngle(gamma, elevation)
		return toPercentage(beta+90, tilt.Geometry.Mode.MaxDegrees())
	}
	return 100
}
