package controller

import (
	"testing"
	"time"

	"github.com/nerrad567/sunveil-core/internal/infrastructure/config"
)

// ─── Payload decoding ───────────────────────────────────────────────────────

func TestSensorStoreUpdateVariants(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		payload string
		number  *float64
		boolean *bool
		text    string
	}{
		{"bare number", "21.5", f64(21.5), b(true), ""},
		{"bare zero", "0", f64(0), b(false), ""},
		{"bare integer", "450", f64(450), b(true), ""},
		{"json object", `{"value": 18.25}`, f64(18.25), b(true), ""},
		{"json bool", "true", nil, b(true), "true"},
		{"quoted string", `"partlycloudy"`, nil, nil, "partlycloudy"},
		{"object string", `{"value": "sunny"}`, nil, nil, "sunny"},
		{"on keyword", "on", nil, b(true), "on"},
		{"off keyword", "off", nil, b(false), "off"},
		{"home keyword", "home", nil, b(true), "home"},
		{"away keyword", "away", nil, b(false), "away"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSensorStore()
			if err := s.Update("probe", []byte(tt.payload), now); err != nil {
				t.Fatalf("Update(%q) error = %v", tt.payload, err)
			}

			num, hasNum := s.Number("probe")
			if (tt.number != nil) != hasNum {
				t.Errorf("Number() present = %v, want %v", hasNum, tt.number != nil)
			} else if tt.number != nil && num != *tt.number {
				t.Errorf("Number() = %v, want %v", num, *tt.number)
			}

			flag, hasBool := s.Bool("probe")
			if (tt.boolean != nil) != hasBool {
				t.Errorf("Bool() present = %v, want %v", hasBool, tt.boolean != nil)
			} else if tt.boolean != nil && flag != *tt.boolean {
				t.Errorf("Bool() = %v, want %v", flag, *tt.boolean)
			}

			text, hasText := s.Text("probe")
			if (tt.text != "") != hasText {
				t.Errorf("Text() present = %v, want %v", hasText, tt.text != "")
			} else if tt.text != "" && text != tt.text {
				t.Errorf("Text() = %q, want %q", text, tt.text)
			}
		})
	}
}

func TestSensorStoreRejectsBadPayloads(t *testing.T) {
	s := NewSensorStore()
	now := time.Now()

	for _, payload := range []string{"", "   ", `{"other": 1}`, `{broken`} {
		if err := s.Update("probe", []byte(payload), now); err == nil {
			t.Errorf("Update(%q) should fail", payload)
		}
	}
	if err := s.Update("", []byte("1"), now); err == nil {
		t.Error("Update with empty sensor ID should fail")
	}
}

func TestSensorStoreOverwrites(t *testing.T) {
	s := NewSensorStore()
	now := time.Now()

	_ = s.Update("temp", []byte("20"), now)
	_ = s.Update("temp", []byte("22"), now.Add(time.Minute))

	if got, _ := s.Number("temp"); got != 22 {
		t.Errorf("Number() = %v, want latest reading 22", got)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

// ─── Climate assembly ───────────────────────────────────────────────────────

func climateConfig() config.ClimateConfig {
	return config.ClimateConfig{
		TempLow:           18,
		TempHigh:          25,
		InsideTempSensor:  "temp-in",
		OutsideTempSensor: "temp-out",
		PresenceSensor:    "presence",
		WeatherSensor:     "weather",
		IlluminanceSensor: "lux",
		SunnyConditions:   []string{"sunny", "partlycloudy"},
		LuxThreshold:      400,
	}
}

func TestClimateNilWithoutInsideTemp(t *testing.T) {
	s := NewSensorStore()
	if cl := s.Climate(climateConfig()); cl != nil {
		t.Fatal("Climate() should be nil without an inside temperature")
	}

	cfg := climateConfig()
	cfg.InsideTempSensor = ""
	_ = s.Update("temp-in", []byte("21"), time.Now())
	if cl := s.Climate(cfg); cl != nil {
		t.Fatal("Climate() should be nil with no inside sensor configured")
	}
}

func TestClimateDefaultsWithOnlyInsideTemp(t *testing.T) {
	s := NewSensorStore()
	_ = s.Update("temp-in", []byte("21"), time.Now())

	cl := s.Climate(climateConfig())
	if cl == nil {
		t.Fatal("Climate() = nil, want context")
	}
	if cl.InsideTemp != 21 {
		t.Errorf("InsideTemp = %v, want 21", cl.InsideTemp)
	}
	if cl.OutsideTemp != nil {
		t.Error("OutsideTemp should be nil without a reading")
	}
	// Missing optional readings leave the favourable defaults.
	if !cl.Presence || !cl.Sunny || !cl.LightOK {
		t.Errorf("defaults = presence %v sunny %v light %v, want all true",
			cl.Presence, cl.Sunny, cl.LightOK)
	}
	if cl.TempLow != 18 || cl.TempHigh != 25 {
		t.Errorf("thresholds = %v/%v, want 18/25", cl.TempLow, cl.TempHigh)
	}
}

func TestClimateFullSensorSet(t *testing.T) {
	s := NewSensorStore()
	now := time.Now()
	_ = s.Update("temp-in", []byte("26.5"), now)
	_ = s.Update("temp-out", []byte("31"), now)
	_ = s.Update("presence", []byte("away"), now)
	_ = s.Update("weather", []byte(`"rainy"`), now)
	_ = s.Update("lux", []byte("120"), now)

	cl := s.Climate(climateConfig())
	if cl == nil {
		t.Fatal("Climate() = nil, want context")
	}
	if cl.OutsideTemp == nil || *cl.OutsideTemp != 31 {
		t.Errorf("OutsideTemp = %v, want 31", cl.OutsideTemp)
	}
	if cl.Presence {
		t.Error("Presence should be false for away")
	}
	if cl.Sunny {
		t.Error("rainy is not in the sunny conditions list")
	}
	if cl.LightOK {
		t.Error("120 lux is below the 400 threshold")
	}
}

func TestClimateSunnyConditionMatching(t *testing.T) {
	s := NewSensorStore()
	now := time.Now()
	_ = s.Update("temp-in", []byte("21"), now)
	_ = s.Update("weather", []byte(`"Partlycloudy"`), now)

	cl := s.Climate(climateConfig())
	if cl == nil || !cl.Sunny {
		t.Error("condition matching should be case-insensitive")
	}

	// An empty allow-list means every condition counts as sunny.
	cfg := climateConfig()
	cfg.SunnyConditions = nil
	_ = s.Update("weather", []byte(`"rainy"`), now)
	if cl := s.Climate(cfg); cl == nil || !cl.Sunny {
		t.Error("empty allow-list should accept any condition")
	}
}

func TestClimateIrradianceFallback(t *testing.T) {
	cfg := climateConfig()
	cfg.IlluminanceSensor = ""
	cfg.IrradianceSensor = "irr"
	cfg.IrradianceThreshold = 200

	s := NewSensorStore()
	now := time.Now()
	_ = s.Update("temp-in", []byte("21"), now)
	_ = s.Update("irr", []byte("350"), now)

	if cl := s.Climate(cfg); cl == nil || !cl.LightOK {
		t.Error("irradiance above threshold should mark light OK")
	}

	_ = s.Update("irr", []byte("50"), now)
	if cl := s.Climate(cfg); cl == nil || cl.LightOK {
		t.Error("irradiance below threshold should mark low light")
	}
}

func f64(v float64) *float64 { return &v }
func b(v bool) *bool         { return &v }
