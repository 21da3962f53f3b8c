package cover

import (
	"math"
	"time"
)

// Model combines a window's angular geometry with its fallback positions.
// It answers every validity question the strategies ask: field-of-view
// bounds, gamma, elevation validity, blind spots, and the sunset/sunrise
// default selection.
//
// Model is immutable and safe for concurrent use.
type Model struct {
	Window   WindowGeometry
	Defaults Defaults
}

// AzimuthBounds returns the absolute azimuth range of the field of view,
// both wrapped into [0,360).
func (m Model) AzimuthBounds() (min, max float64) {
	min = wrapDegrees(m.Window.Azimuth - m.Window.FOVLeft)
	max = wrapDegrees(m.Window.Azimuth + m.Window.FOVRight)
	return min, max
}

// Gamma returns the signed angle between the sun and the window's outward
// normal, wrapped into [-180,180). Positive means the sun is to the left
// of the normal.
func (m Model) Gamma(sunAzimuth float64) float64 {
	return wrapSigned(m.Window.Azimuth - sunAzimuth)
}

// ValidElevation reports whether the elevation lies within the configured
// bounds. With no bounds configured, any elevation at or above the horizon
// is valid.
func (m Model) ValidElevation(elevation float64) bool {
	if m.Window.MinElevation == nil && m.Window.MaxElevation == nil {
		return elevation >= 0
	}
	if m.Window.MinElevation != nil && elevation < *m.Window.MinElevation {
		return false
	}
	if m.Window.MaxElevation != nil && elevation > *m.Window.MaxElevation {
		return false
	}
	return true
}

// SunValid reports whether the sun is in front of the window: gamma inside
// the field of view, elevation valid and above the horizon. Blind spots
// and the sunset window are checked separately.
func (m Model) SunValid(sun SolarAngle) bool {
	gamma := m.Gamma(sun.Azimuth)
	inFOV := gamma < m.Window.FOVLeft && gamma > -m.Window.FOVRight
	return inFOV && m.ValidElevation(sun.Elevation) && sun.Elevation > 0
}

// InBlindSpot reports whether the sun falls inside the configured blind
// spot. The blind spot's edges are measured from the left edge of the
// field of view; without a configured blind spot this is always false.
func (m Model) InBlindSpot(sun SolarAngle) bool {
	bs := m.Window.BlindSpot
	if bs == nil {
		return false
	}
	gamma := m.Gamma(sun.Azimuth)
	leftEdge := m.Window.FOVLeft - bs.Left
	rightEdge := m.Window.FOVLeft - bs.Right
	if gamma > leftEdge || gamma < rightEdge {
		return false
	}
	return sun.Elevation <= bs.MaxElevation
}

// SunsetPeriod reports whether now lies between sunset+offset and
// sunrise+offset, i.e. the cover should rest at its sunset position.
func (m Model) SunsetPeriod(now time.Time, times SolarTimes) bool {
	afterSunset := now.After(times.Sunset.Add(m.Defaults.SunsetOffset))
	beforeSunrise := now.Before(times.Sunrise.Add(m.Defaults.SunriseOffset))
	return afterSunset || beforeSunrise
}

// DefaultPosition returns the fallback percentage for now: the sunset
// position during the night window, the daytime default otherwise.
func (m Model) DefaultPosition(now time.Time, times SolarTimes) float64 {
	if m.SunsetPeriod(now, times) {
		return m.Defaults.SunsetPosition
	}
	return m.Defaults.Position
}

// Flags evaluates every validity check at once.
func (m Model) Flags(sun SolarAngle, now time.Time, times SolarTimes) ValidityFlags {
	return ValidityFlags{
		SunValid:       m.SunValid(sun),
		ValidElevation: m.ValidElevation(sun.Elevation),
		InBlindSpot:    m.InBlindSpot(sun),
		SunsetPeriod:   m.SunsetPeriod(now, times),
	}
}

// wrapDegrees wraps an angle into [0,360).
func wrapDegrees(deg float64) float64 {
	return mod(deg, 360)
}

// wrapSigned wraps an angle into [-180,180).
func wrapSigned(deg float64) float64 {
	return mod(deg+180, 360) - 180
}

// mod is a floored modulo: the result always lies in [0,m).
func mod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	return r
}
