package influxdb

import "errors"

// Sentinel errors for telemetry operations, matched with errors.Is.
// Write failures surface asynchronously through the OnError callback,
// so only connection-level conditions are modelled here.
var (
	// ErrNotConnected is returned for writes before Connect succeeds.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed is returned when the initial ping or health
	// probe fails.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled is returned by Connect when telemetry is switched off
	// in configuration.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
