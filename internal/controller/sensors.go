package controller

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/sunveil-core/internal/cover"
	"github.com/nerrad567/sunveil-core/internal/infrastructure/config"
)

// sensorReading is the latest decoded value for one sensor. A reading may
// carry a number, a boolean, a string, or several of them (a numeric
// payload also satisfies boolean queries via non-zero).
type sensorReading struct {
	number    float64
	hasNumber bool
	boolean   bool
	hasBool   bool
	text      string
	at        time.Time
}

// SensorStore keeps the latest reading per sensor ID.
//
// Readings arrive as MQTT payloads on sunveil/sensor/{id}/state: either a
// bare JSON scalar ("21.5", "true", "\"sunny\"") or an object with a value
// key ({"value": 21.5}). Plain unquoted strings are accepted too, matching
// what simple sensor firmwares publish.
type SensorStore struct {
	mu       sync.RWMutex
	readings map[string]sensorReading
}

// NewSensorStore creates an empty sensor store.
func NewSensorStore() *SensorStore {
	return &SensorStore{readings: make(map[string]sensorReading)}
}

// Update decodes a sensor payload and stores it under sensorID.
//
// Parameters:
//   - sensorID: Sensor identifier from the topic
//   - payload: Raw MQTT payload
//   - at: Receive timestamp
//
// Returns:
//   - error: If the payload is empty or undecodable
func (s *SensorStore) Update(sensorID string, payload []byte, at time.Time) error {
	if sensorID == "" {
		return fmt.Errorf("sensor id is required")
	}

	reading, err := decodeReading(payload)
	if err != nil {
		return fmt.Errorf("sensor %s: %w", sensorID, err)
	}
	reading.at = at

	s.mu.Lock()
	s.readings[sensorID] = reading
	s.mu.Unlock()
	return nil
}

// Number returns the latest numeric reading for the sensor.
func (s *SensorStore) Number(sensorID string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.readings[sensorID]
	if !ok || !r.hasNumber {
		return 0, false
	}
	return r.number, true
}

// Bool returns the latest boolean reading for the sensor.
func (s *SensorStore) Bool(sensorID string) (bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.readings[sensorID]
	if !ok || !r.hasBool {
		return false, false
	}
	return r.boolean, true
}

// Text returns the latest string reading for the sensor.
func (s *SensorStore) Text(sensorID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.readings[sensorID]
	if !ok || r.text == "" {
		return "", false
	}
	return r.text, true
}

// Len returns the number of sensors with a stored reading.
func (s *SensorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.readings)
}

// Climate assembles the climate context for one cover from the configured
// sensors. Missing optional readings leave the favourable defaults in
// place. Returns nil when the inside temperature is unavailable, which
// drops the cover back to the normal strategy for this evaluation.
func (s *SensorStore) Climate(cfg config.ClimateConfig) *cover.ClimateContext {
	inside, ok := s.Number(cfg.InsideTempSensor)
	if cfg.InsideTempSensor == "" || !ok {
		return nil
	}

	cl := cover.NewClimateContext()
	cl.InsideTemp = inside
	cl.TempLow = cfg.TempLow
	cl.TempHigh = cfg.TempHigh
	cl.OutsideTempThreshold = cfg.OutsideTempThreshold
	cl.TransparentBlind = cfg.TransparentBlind

	if cfg.OutsideTempSensor != "" {
		if v, ok := s.Number(cfg.OutsideTempSensor); ok {
			outside := v
			cl.OutsideTemp = &outside
		}
	}

	if cfg.PresenceSensor != "" {
		if v, ok := s.Bool(cfg.PresenceSensor); ok {
			cl.Presence = v
		}
	}

	if cfg.WeatherSensor != "" {
		if condition, ok := s.Text(cfg.WeatherSensor); ok {
			cl.Sunny = conditionSunny(condition, cfg.SunnyConditions)
		}
	}

	cl.LightOK = s.lightOK(cfg)

	return &cl
}

// lightOK checks the configured light sensors against their thresholds.
// With no usable reading the default (true) stands.
func (s *SensorStore) lightOK(cfg config.ClimateConfig) bool {
	if cfg.IlluminanceSensor != "" {
		if lux, ok := s.Number(cfg.IlluminanceSensor); ok {
			return lux >= cfg.LuxThreshold
		}
	}
	if cfg.IrradianceSensor != "" {
		if irr, ok := s.Number(cfg.IrradianceSensor); ok {
			return irr >= cfg.IrradianceThreshold
		}
	}
	return true
}

// conditionSunny reports whether the weather condition permits direct sun.
// An empty allow-list means any condition counts.
func conditionSunny(condition string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(condition, a) {
			return true
		}
	}
	return false
}

// decodeReading parses a sensor payload into a reading.
func decodeReading(payload []byte) (sensorReading, error) {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" {
		return sensorReading{}, fmt.Errorf("empty payload")
	}

	// Object form: {"value": ...}
	if strings.HasPrefix(trimmed, "{") {
		var wrapper struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal([]byte(trimmed), &wrapper); err != nil {
			return sensorReading{}, fmt.Errorf("decoding payload: %w", err)
		}
		if wrapper.Value == nil {
			return sensorReading{}, fmt.Errorf("payload has no value key")
		}
		trimmed = strings.TrimSpace(string(wrapper.Value))
	}

	return decodeScalar(trimmed), nil
}

// decodeScalar interprets a bare scalar value.
func decodeScalar(value string) sensorReading {
	if unquoted, err := strconv.Unquote(value); err == nil {
		value = unquoted
	}

	if number, err := strconv.ParseFloat(value, 64); err == nil {
		return sensorReading{
			number:    number,
			hasNumber: true,
			boolean:   number != 0,
			hasBool:   true,
		}
	}

	switch strings.ToLower(value) {
	case "true", "on", "home", "yes":
		return sensorReading{boolean: true, hasBool: true, text: value}
	case "false", "off", "away", "no":
		return sensorReading{boolean: false, hasBool: true, text: value}
	}

	return sensorReading{text: value}
}
