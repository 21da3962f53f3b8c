package cover

import (
	"math"
	"testing"
)

// ─── Tests ──────────────────────────────────────────────────────────────────

func TestSafetyMarginNeutralZone(t *testing.T) {
	// Inside |gamma| < 45 and elevation 10..75 every component is 1.0.
	tests := []struct {
		gamma, elevation float64
	}{
		{0, 45},
		{-30, 20},
		{44.9, 74.9},
		{-44.9, 10},
	}

	for _, tt := range tests {
		if got := SafetyMargin(tt.gamma, tt.elevation); got != 1.0 {
			t.Errorf("SafetyMargin(%v, %v) = %v, want exactly 1.0", tt.gamma, tt.elevation, got)
		}
	}
}

func TestSafetyMarginComponents(t *testing.T) {
	tests := []struct {
		name             string
		gamma, elevation float64
		want             float64
	}{
		{"extreme gamma alone", 90, 45, 1.2},
		{"negative gamma symmetric", -90, 45, 1.2},
		{"gamma midpoint smoothstep", 67.5, 45, 1.1},
		{"horizon elevation alone", 0, 45, 1.0},
		{"zero elevation", 0, 0, 1.15},
		{"five degrees elevation", 0, 5, 1.075},
		{"zenith elevation", 0, 90, 1.1},
		{"mid high elevation", 0, 82.5, 1.05},
		{"gamma and low elevation multiply", 90, 0, 1.2 * 1.15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			approx(t, "SafetyMargin", SafetyMargin(tt.gamma, tt.elevation), tt.want, 1e-9)
		})
	}
}

// Margin must grow (or hold) as the sun moves toward the extremes.
func TestSafetyMarginMonotonic(t *testing.T) {
	prev := SafetyMargin(0, 45)
	for gamma := 0.0; gamma <= 90; gamma += 1 {
		m := SafetyMargin(gamma, 45)
		if m < prev {
			t.Fatalf("margin decreased at gamma=%v: %v < %v", gamma, m, prev)
		}
		prev = m
	}

	prev = SafetyMargin(0, 10)
	for elev := 10.0; elev >= 0; elev -= 0.5 {
		m := SafetyMargin(0, elev)
		if m < prev {
			t.Fatalf("margin decreased at elevation=%v: %v < %v", elev, m, prev)
		}
		prev = m
	}

	prev = SafetyMargin(0, 75)
	for elev := 75.0; elev <= 90; elev += 0.5 {
		m := SafetyMargin(0, elev)
		if m < prev {
			t.Fatalf("margin decreased at elevation=%v: %v < %v", elev, m, prev)
		}
		prev = m
	}
}

func TestEffectiveDistance(t *testing.T) {
	tests := []struct {
		name            string
		distance, depth float64
		gamma           float64
		want            float64
	}{
		{"no depth configured", 0.5, 0, 60, 0.5},
		{"small gamma skips correction", 0.5, 0.3, 5, 0.5},
		{"correction applies", 0.5, 0.3, 30, 0.5 + 0.3*math.Sin(radians(30))},
		{"negative gamma uses magnitude", 0.5, 0.3, -30, 0.5 + 0.3*math.Sin(radians(30))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			approx(t, "effectiveDistance", effectiveDistance(tt.distance, tt.depth, tt.gamma), tt.want, 1e-9)
		})
	}
}

func TestEdgeCaseHeight(t *testing.T) {
	tests := []struct {
		name             string
		gamma, elevation float64
		wantHeight       float64
		wantEdge         bool
	}{
		{"low elevation full coverage", 0, 1, 2.1, true},
		{"extreme gamma full coverage", 86, 45, 2.1, true},
		{"near zenith simplified", 0, 89, 2.1, true},
		{"ordinary angles no edge", 0, 45, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, edge := edgeCaseHeight(tt.gamma, tt.elevation, 0.5, 2.1)
			if edge != tt.wantEdge {
				t.Fatalf("edge = %v, want %v", edge, tt.wantEdge)
			}
			if edge {
				approx(t, "height", h, tt.wantHeight, 1e-9)
			}
		})
	}
}

func TestSmoothstepEnds(t *testing.T) {
	approx(t, "smoothstep(0)", smoothstep(0), 0, 1e-12)
	approx(t, "smoothstep(0.5)", smoothstep(0.5), 0.5, 1e-12)
	approx(t, "smoothstep(1)", smoothstep(1), 1, 1e-12)
}
