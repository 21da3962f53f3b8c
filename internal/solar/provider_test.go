package solar

import (
	"math"
	"testing"
	"time"
)

// ─── Helpers ────────────────────────────────────────────────────────────────

// berlin is a northern mid-latitude site with a normal day/night cycle.
func berlin() *Provider {
	loc, _ := time.LoadLocation("Europe/Berlin")
	return NewProvider(52.52, 13.405, loc)
}

// svalbard sits well above the arctic circle.
func svalbard() *Provider {
	return NewProvider(78.22, 15.64, time.UTC)
}

// ─── Tests ──────────────────────────────────────────────────────────────────

func TestPositionDayNightCycle(t *testing.T) {
	p := berlin()

	// Solar noon in Berlin in June is close to 11:00 UTC.
	noon := p.Position(time.Date(2026, 6, 21, 11, 0, 0, 0, time.UTC))
	if noon.Elevation < 55 || noon.Elevation > 65 {
		t.Errorf("midsummer noon elevation = %v, want around 61", noon.Elevation)
	}
	if math.Abs(noon.Azimuth-180) > 10 {
		t.Errorf("solar noon azimuth = %v, want near 180", noon.Azimuth)
	}

	midnight := p.Position(time.Date(2026, 6, 21, 23, 0, 0, 0, time.UTC))
	if midnight.Elevation >= 0 {
		t.Errorf("midnight elevation = %v, want below horizon", midnight.Elevation)
	}
}

func TestPositionMorningIsEast(t *testing.T) {
	p := berlin()

	morning := p.Position(time.Date(2026, 6, 21, 6, 0, 0, 0, time.UTC))
	if morning.Azimuth <= 45 || morning.Azimuth >= 180 {
		t.Errorf("morning azimuth = %v, want in the eastern half", morning.Azimuth)
	}

	evening := p.Position(time.Date(2026, 6, 21, 17, 0, 0, 0, time.UTC))
	if evening.Azimuth <= 180 || evening.Azimuth >= 315 {
		t.Errorf("evening azimuth = %v, want in the western half", evening.Azimuth)
	}
}

func TestTimesOrdering(t *testing.T) {
	p := berlin()
	day := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	times := p.Times(day)
	if !times.Sunrise.Before(times.Sunset) {
		t.Fatalf("sunrise %v not before sunset %v", times.Sunrise, times.Sunset)
	}

	// The sun must actually be up between the two instants.
	mid := times.Sunrise.Add(times.Sunset.Sub(times.Sunrise) / 2)
	if pos := p.Position(mid); pos.Elevation <= 0 {
		t.Errorf("elevation at mid-day %v = %v, want above horizon", mid, pos.Elevation)
	}

	// And down shortly before sunrise / after sunset.
	if pos := p.Position(times.Sunrise.Add(-10 * time.Minute)); pos.Elevation > 0.5 {
		t.Errorf("elevation before sunrise = %v, want at or below horizon", pos.Elevation)
	}
	if pos := p.Position(times.Sunset.Add(10 * time.Minute)); pos.Elevation > 0.5 {
		t.Errorf("elevation after sunset = %v, want at or below horizon", pos.Elevation)
	}
}

func TestTimesMidsummerLongDay(t *testing.T) {
	p := berlin()
	times := p.Times(time.Date(2026, 6, 21, 12, 0, 0, 0, time.UTC))

	daylight := times.Sunset.Sub(times.Sunrise)
	if daylight < 16*time.Hour || daylight > 18*time.Hour {
		t.Errorf("midsummer daylight = %v, want around 16.5h", daylight)
	}
}

func TestTimesPolarNight(t *testing.T) {
	p := svalbard()
	times := p.Times(time.Date(2026, 12, 21, 12, 0, 0, 0, time.UTC))

	// Sunrise and sunset collapse onto noon: the night default holds all day.
	if !times.Sunrise.Equal(times.Sunset) {
		t.Errorf("polar night should collapse sunrise/sunset, got %v and %v", times.Sunrise, times.Sunset)
	}
}

func TestTimesPolarDay(t *testing.T) {
	p := svalbard()
	times := p.Times(time.Date(2026, 6, 21, 12, 0, 0, 0, time.UTC))

	daylight := times.Sunset.Sub(times.Sunrise)
	if daylight != 24*time.Hour {
		t.Errorf("polar day daylight = %v, want 24h", daylight)
	}
}

func TestNewProviderNilLocation(t *testing.T) {
	p := NewProvider(0, 0, nil)
	if p.location != time.UTC {
		t.Error("nil location should default to UTC")
	}
}
