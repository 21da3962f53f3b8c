package cover

import "time"

// Type identifies the physical cover variant.
type Type string

const (
	// TypeVertical is a vertical blind lowered from the top of the window.
	TypeVertical Type = "vertical"

	// TypeHorizontal is a horizontal awning extended outwards from the facade.
	TypeHorizontal Type = "horizontal"

	// TypeTilt is a venetian-style blind with rotating slats.
	TypeTilt Type = "tilt"
)

// TiltMode describes the travel range of a tilt cover's slats.
type TiltMode string

const (
	// TiltModeSingle rotates slats in one direction: 0° (closed) to 90° (open).
	TiltModeSingle TiltMode = "mode1"

	// TiltModeBi rotates slats through both directions: 0° (closed) via
	// 90° (horizontal) to 180° (closed inverted).
	TiltModeBi TiltMode = "mode2"
)

// MaxDegrees returns the maximum slat angle for the mode.
func (m TiltMode) MaxDegrees() float64 {
	if m == TiltModeBi {
		return 180
	}
	return 90
}

// SolarAngle is the sun's position at one instant. Recomputed every
// evaluation; never stored.
type SolarAngle struct {
	// Azimuth is the compass bearing of the sun in degrees (0-360).
	Azimuth float64

	// Elevation is the sun's angle above the horizon in degrees.
	// Negative values mean the sun is below the horizon.
	Elevation float64
}

// SolarTimes carries today's sunrise and sunset instants for the site.
type SolarTimes struct {
	Sunrise time.Time
	Sunset  time.Time
}

// BlindSpot defines a sub-range of the field of view, below a given
// elevation, that is excluded from direct-sun validity (e.g. a tree or a
// neighbouring building blocking low sun).
//
// Left and Right are measured in degrees from the left edge of the field
// of view, matching how installers sight the obstruction from the window.
type BlindSpot struct {
	Left         float64
	Right        float64
	MaxElevation float64
}

// WindowGeometry is the angular configuration of one window. Immutable per
// configured cover instance; validated by the configuration layer before
// construction.
type WindowGeometry struct {
	// Azimuth is the compass bearing of the window's outward normal (0-360).
	Azimuth float64

	// FOVLeft and FOVRight are the unobstructed angular ranges to the left
	// and right of the window normal, in degrees.
	FOVLeft  float64
	FOVRight float64

	// MinElevation and MaxElevation bound the sun elevations considered
	// valid. Nil means unbounded (besides the horizon).
	MinElevation *float64
	MaxElevation *float64

	// BlindSpot is an optional exclusion zone within the field of view.
	BlindSpot *BlindSpot
}

// Defaults holds the fallback positions used when the sun is not being
// tracked, and the offsets that shift the sunset/sunrise switchover.
type Defaults struct {
	// Position is the percentage used during daytime when the sun is not
	// in front of the window.
	Position float64

	// SunsetPosition is the percentage used between sunset and sunrise.
	SunsetPosition float64

	// SunsetOffset shifts the sunset switchover (positive = later).
	SunsetOffset time.Duration

	// SunriseOffset shifts the sunrise switchover (positive = later).
	SunriseOffset time.Duration
}

// VerticalGeometry is the physical geometry of a vertical blind.
// All lengths are in metres.
type VerticalGeometry struct {
	// WindowHeight is the height of the glazed area.
	WindowHeight float64

	// Distance is the horizontal distance from the window to the area
	// that must stay shaded (workspace, sofa).
	Distance float64

	// WindowDepth is the depth of the window reveal or frame. Zero
	// disables the depth correction.
	WindowDepth float64
}

// HorizontalGeometry is the physical geometry of a horizontal awning.
// The embedded VerticalGeometry describes the shadow-casting window
// behind the awning; WindowHeight doubles as the awning mounting height.
type HorizontalGeometry struct {
	VerticalGeometry

	// AwningLength is the fully-extended awning length in metres.
	AwningLength float64

	// AwningAngle is the downward mounting angle of the awning in degrees
	// from horizontal.
	AwningAngle float64
}

// TiltGeometry is the physical geometry of a tilted slat blind.
// Slat dimensions are in metres.
type TiltGeometry struct {
	// SlatDepth is the width of a single slat.
	SlatDepth float64

	// SlatDistance is the vertical spacing between slats.
	SlatDistance float64

	// Mode selects single- or bi-directional slat travel.
	Mode TiltMode
}

// PositionLimits clamps the final percentage into a configured band.
//
// MinPosition must be below MaxPosition; the configuration layer rejects
// contradictory limits before construction. MinPosition 0 and
// MaxPosition 100 are naturally no-ops.
type PositionLimits struct {
	MinPosition float64
	MaxPosition float64

	// EnforceAlways applies the limits unconditionally. When false the
	// limits apply only while the sun is actively tracked.
	EnforceAlways bool
}

// Clamp applies the limits to value. sunTracking reports whether the sun
// is currently tracked directly (in the field of view, outside blind spots
// and the sunset window).
func (l PositionLimits) Clamp(value float64, sunTracking bool) float64 {
	if !l.EnforceAlways && !sunTracking {
		return value
	}
	if value < l.MinPosition {
		value = l.MinPosition
	}
	if value > l.MaxPosition {
		value = l.MaxPosition
	}
	return value
}

// ClimateContext carries the climate signals consumed by ClimateStrategy.
// It is rebuilt from sensor readings every evaluation; absent readings
// take the defaults set by NewClimateContext.
type ClimateContext struct {
	// InsideTemp is the current indoor temperature in the configured unit.
	InsideTemp float64

	// OutsideTemp is the current outdoor temperature, if known.
	OutsideTemp *float64

	// TempLow is the winter threshold: below it the strategy opens covers
	// for passive solar heating.
	TempLow float64

	// TempHigh is the summer threshold: above it the strategy closes
	// covers to block heat.
	TempHigh float64

	// OutsideTempThreshold optionally gates the summer branch on outdoor
	// temperature. Nil disables the gate.
	OutsideTempThreshold *float64

	// Presence reports whether anyone is home. Defaults to true.
	Presence bool

	// Sunny reports whether the current weather condition permits direct
	// solar radiation. Defaults to true.
	Sunny bool

	// LightOK reports whether measured light (lux or irradiance) is above
	// the configured low-light thresholds. Defaults to true.
	LightOK bool

	// TransparentBlind marks blinds that pass light when closed, enabling
	// the summer full-close branch for vertical/horizontal covers.
	TransparentBlind bool
}

// NewClimateContext returns a context with the documented defaults:
// presence, sunny and light all assumed favourable until sensors say
// otherwise.
func NewClimateContext() ClimateContext {
	return ClimateContext{
		Presence: true,
		Sunny:    true,
		LightOK:  true,
	}
}

// Winter reports whether the indoor temperature is below the winter
// threshold.
func (c ClimateContext) Winter() bool {
	return c.InsideTemp < c.TempLow
}

// Summer reports whether the indoor temperature is above the summer
// threshold and, when an outdoor gate is configured, the outdoor
// temperature confirms it.
func (c ClimateContext) Summer() bool {
	return c.InsideTemp > c.TempHigh && c.outsideHigh()
}

// outsideHigh checks the optional outdoor temperature gate. Missing
// threshold or missing reading both pass the gate.
func (c ClimateContext) outsideHigh() bool {
	if c.OutsideTempThreshold == nil || c.OutsideTemp == nil {
		return true
	}
	return *c.OutsideTemp > *c.OutsideTempThreshold
}

// ValidityFlags records every geometric validity decision made during an
// evaluation. Surfaced for diagnostics; DirectSun drives the strategies.
type ValidityFlags struct {
	// SunValid: sun within the field of view, elevation valid, above horizon.
	SunValid bool

	// ValidElevation: elevation within the configured min/max bounds.
	ValidElevation bool

	// InBlindSpot: sun inside the configured blind-spot exclusion zone.
	InBlindSpot bool

	// SunsetPeriod: current time between sunset+offset and sunrise+offset.
	SunsetPeriod bool

	// EdgeCase: the calculator short-circuited on a grazing-angle edge case.
	EdgeCase bool
}

// DirectSun reports whether the calculated position should be used:
// the sun is valid, not in a blind spot, and it is not night.
func (f ValidityFlags) DirectSun() bool {
	return f.SunValid && !f.InBlindSpot && !f.SunsetPeriod
}

// CalculatedPosition is the pure output of one evaluation. The core never
// retains it; cross-evaluation bookkeeping belongs to the caller.
type CalculatedPosition struct {
	// Value is the target position percentage, always in [0,100].
	Value float64

	// Gamma is the signed angle between sun and window normal, in
	// [-180,180). Positive means the sun is left of the normal.
	Gamma float64

	// Elevation is the sun elevation the calculation used.
	Elevation float64

	// SafetyMargin is the multiplier applied to the raw geometric result
	// (1.0 when an edge case short-circuited or no margin applies).
	SafetyMargin float64

	// Rule names the strategy rule that produced Value, for diagnostics.
	Rule Rule

	// Flags records the validity decisions behind Value.
	Flags ValidityFlags
}
