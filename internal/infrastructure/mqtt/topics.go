package mqtt

import "fmt"

// Topic prefixes for the Nearwatch MQTT hierarchy.
//
// Sensor topics use the flat scheme: nearwatch/{category}/{adapter_id}
// This matches the payloads published by the radio sensor daemons.
const (
	// TopicPrefix is the base for all Nearwatch topics.
	TopicPrefix = "nearwatch"

	// TopicPrefixSensor is the base for sensor-originated topics.
	TopicPrefixSensor = "nearwatch/sensor"

	// TopicPrefixEngine is the base for engine-originated topics.
	TopicPrefixEngine = "nearwatch/engine"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "nearwatch/system"
)

// Topics provides builders for Nearwatch MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	sightingTopic := topics.SensorSightings("hci0")
//	// Returns: "nearwatch/sensor/hci0/sightings"
type Topics struct{}

// =============================================================================
// Sensor Topics
// =============================================================================

// SensorSightings returns the topic a sensor publishes raw sightings on.
//
// Example: nearwatch/sensor/hci0/sightings
func (Topics) SensorSightings(adapterID string) string {
	return fmt.Sprintf("%s/%s/sightings", TopicPrefixSensor, adapterID)
}

// SensorCommand returns the topic for scan commands to a sensor.
//
// Example: nearwatch/sensor/hci0/command
func (Topics) SensorCommand(adapterID string) string {
	return fmt.Sprintf("%s/%s/command", TopicPrefixSensor, adapterID)
}

// SensorHealth returns the topic for sensor health status.
//
// Example: nearwatch/sensor/hci0/health
func (Topics) SensorHealth(adapterID string) string {
	return fmt.Sprintf("%s/%s/health", TopicPrefixSensor, adapterID)
}

// =============================================================================
// Engine Topics
// =============================================================================

// EngineDeviceState returns the canonical tracked-device state topic.
// This is the authoritative record published by the engine after smoothing
// and classification.
//
// Example: nearwatch/engine/device/aa-bb-cc-dd-ee-ff/state
func (Topics) EngineDeviceState(deviceKey string) string {
	return fmt.Sprintf("%s/device/%s/state", TopicPrefixEngine, deviceKey)
}

// EngineEvent returns the topic for engine events.
//
// Example: nearwatch/engine/event/scan_started
func (Topics) EngineEvent(eventType string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefixEngine, eventType)
}

// EngineAlert returns the topic for engine alerts.
//
// Example: nearwatch/engine/alert/new-device
func (Topics) EngineAlert(alertID string) string {
	return fmt.Sprintf("%s/alert/%s", TopicPrefixEngine, alertID)
}

// =============================================================================
// System Topics
// =============================================================================

// SystemStatus returns the system status topic.
//
// Example: nearwatch/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// SystemShutdown returns the shutdown signal topic.
//
// Example: nearwatch/system/shutdown
func (Topics) SystemShutdown() string {
	return fmt.Sprintf("%s/shutdown", TopicPrefixSystem)
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllSensorSightings returns a pattern matching sightings from every sensor.
//
// Pattern: nearwatch/sensor/+/sightings
func (Topics) AllSensorSightings() string {
	return fmt.Sprintf("%s/+/sightings", TopicPrefixSensor)
}

// AllSensorHealth returns a pattern matching all sensor health updates.
//
// Pattern: nearwatch/sensor/+/health
func (Topics) AllSensorHealth() string {
	return fmt.Sprintf("%s/+/health", TopicPrefixSensor)
}

// AllEngineDeviceStates returns a pattern matching all canonical device states.
//
// Pattern: nearwatch/engine/device/+/state
func (Topics) AllEngineDeviceStates() string {
	return fmt.Sprintf("%s/device/+/state", TopicPrefixEngine)
}

// AllEngineEvents returns a pattern matching all engine events.
//
// Pattern: nearwatch/engine/event/+
func (Topics) AllEngineEvents() string {
	return fmt.Sprintf("%s/event/+", TopicPrefixEngine)
}

// AllTopics returns a pattern matching all Nearwatch topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: nearwatch/#
func (Topics) AllTopics() string {
	return "nearwatch/#"
}
