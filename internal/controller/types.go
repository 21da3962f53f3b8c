package controller

import (
	"time"

	"github.com/nerrad567/sunveil-core/internal/cover"
	"github.com/nerrad567/sunveil-core/internal/infrastructure/mqtt"
)

// Logger defines the logging interface used by the Controller.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// MQTTClient is the MQTT surface the controller needs: publishing commands
// and diagnostics, and subscribing to sensor and cover state topics.
type MQTTClient interface {
	// Publish sends a message to the specified MQTT topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for the given topic filter.
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// SolarProvider yields the sun's position and the day boundaries for the
// site. Satisfied by solar.Provider.
type SolarProvider interface {
	Position(t time.Time) cover.SolarAngle
	Times(t time.Time) cover.SolarTimes
}

// MetricsWriter receives evaluation and command telemetry.
// Satisfied by influxdb.Client; a nil writer disables telemetry.
type MetricsWriter interface {
	WriteEvaluation(coverID string, pos cover.CalculatedPosition)
	WriteCommand(coverID string, value float64, service string)
	WriteSolarPosition(siteID string, sun cover.SolarAngle)
}

// FlagsMessage mirrors cover.ValidityFlags in the wire payload.
type FlagsMessage struct {
	SunValid       bool `json:"sun_valid"`
	ValidElevation bool `json:"valid_elevation"`
	InBlindSpot    bool `json:"in_blind_spot"`
	SunsetPeriod   bool `json:"sunset_period"`
	EdgeCase       bool `json:"edge_case"`
}

// EvaluationMessage is the diagnostics payload published on
// sunveil/core/evaluation/{cover} after every evaluation, whether or not
// a command was dispatched.
type EvaluationMessage struct {
	CoverID      string       `json:"cover_id"`
	Rule         string       `json:"rule"`
	Value        float64      `json:"value"`
	Gamma        float64      `json:"gamma"`
	Elevation    float64      `json:"elevation"`
	SafetyMargin float64      `json:"safety_margin"`
	Flags        FlagsMessage `json:"flags"`
	Dispatched   bool         `json:"dispatched"`
	Reason       string       `json:"reason"`
	EvaluatedAt  time.Time    `json:"evaluated_at"`
}

// SetMessage is the position command payload published on
// sunveil/cover/{id}/set for position-capable covers.
type SetMessage struct {
	CommandID string  `json:"command_id"`
	Position  float64 `json:"position"`
}

// CommandMessage is the service command payload published on
// sunveil/cover/{id}/command for covers without position support.
type CommandMessage struct {
	CommandID string `json:"command_id"`
	Service   string `json:"service"`
}

// OverrideMessage is published on sunveil/core/override/{cover} when a
// manual intervention is detected.
type OverrideMessage struct {
	CoverID    string    `json:"cover_id"`
	Reported   float64   `json:"reported"`
	Expected   float64   `json:"expected"`
	DetectedAt time.Time `json:"detected_at"`
	ExpiresAt  time.Time `json:"expires_at,omitempty"`
}

// StateMessage is the payload covers publish on sunveil/cover/{id}/state.
// Position may be absent for covers that only report open/closed.
type StateMessage struct {
	Position *float64 `json:"position"`
	Moving   bool     `json:"moving"`
}
