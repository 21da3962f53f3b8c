package mqtt

import "fmt"

// Topic prefixes for the Sunveil MQTT hierarchy.
//
// Sensors publish readings under sunveil/sensor/..., covers report and
// receive positions under sunveil/cover/..., and the core publishes its
// evaluation diagnostics under sunveil/core/....
const (
	// TopicPrefix is the base for all Sunveil topics.
	TopicPrefix = "sunveil"

	// TopicPrefixCore is the base for core-published topics.
	TopicPrefixCore = "sunveil/core"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "sunveil/system"
)

// Topics provides builders for Sunveil MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.SensorState("temp-living")
//	// Returns: "sunveil/sensor/temp-living/state"
type Topics struct{}

// =============================================================================
// Sensor Topics
// =============================================================================

// SensorState returns the topic a climate sensor publishes its reading on.
//
// Example: sunveil/sensor/temp-living/state
func (Topics) SensorState(sensorID string) string {
	return fmt.Sprintf("%s/sensor/%s/state", TopicPrefix, sensorID)
}

// =============================================================================
// Cover Topics
// =============================================================================

// CoverState returns the topic a cover (or its bridge) reports its actual
// position on. The controller watches it for manual overrides.
//
// Example: sunveil/cover/living-room-south/state
func (Topics) CoverState(coverID string) string {
	return fmt.Sprintf("%s/cover/%s/state", TopicPrefix, coverID)
}

// CoverSet returns the topic for numeric position commands to a
// position-capable cover.
//
// Example: sunveil/cover/living-room-south/set
func (Topics) CoverSet(coverID string) string {
	return fmt.Sprintf("%s/cover/%s/set", TopicPrefix, coverID)
}

// CoverCommand returns the topic for open/close service commands to a
// cover without position support.
//
// Example: sunveil/cover/living-room-south/command
func (Topics) CoverCommand(coverID string) string {
	return fmt.Sprintf("%s/cover/%s/command", TopicPrefix, coverID)
}

// =============================================================================
// Core Topics
// =============================================================================

// CoreEvaluation returns the topic the controller publishes each cover's
// evaluation result on (target position, gamma, rule, validity flags).
//
// Example: sunveil/core/evaluation/living-room-south
func (Topics) CoreEvaluation(coverID string) string {
	return fmt.Sprintf("%s/evaluation/%s", TopicPrefixCore, coverID)
}

// CoreOverride returns the topic for manual override notifications.
//
// Example: sunveil/core/override/living-room-south
func (Topics) CoreOverride(coverID string) string {
	return fmt.Sprintf("%s/override/%s", TopicPrefixCore, coverID)
}

// =============================================================================
// System Topics
// =============================================================================

// SystemStatus returns the system status topic, also used for the LWT.
//
// Example: sunveil/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllSensorStates returns a pattern matching all sensor readings.
//
// Pattern: sunveil/sensor/+/state
func (Topics) AllSensorStates() string {
	return fmt.Sprintf("%s/sensor/+/state", TopicPrefix)
}

// AllCoverStates returns a pattern matching all reported cover positions.
//
// Pattern: sunveil/cover/+/state
func (Topics) AllCoverStates() string {
	return fmt.Sprintf("%s/cover/+/state", TopicPrefix)
}

// AllEvaluations returns a pattern matching all evaluation results.
//
// Pattern: sunveil/core/evaluation/+
func (Topics) AllEvaluations() string {
	return fmt.Sprintf("%s/evaluation/+", TopicPrefixCore)
}

// AllTopics returns a pattern matching all Sunveil topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: sunveil/#
func (Topics) AllTopics() string {
	return "sunveil/#"
}
