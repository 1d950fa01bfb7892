package broadcast

import (
	"time"

	"github.com/nearwatch-io/nearwatch-core/internal/tracking"
)

// EventType identifies the kind of engine event being broadcast.
type EventType string

// Event type constants.
const (
	// EventDeviceUpdate carries the full updated device record after an
	// accepted observation.
	EventDeviceUpdate EventType = "device_update"

	// EventScanStarted signals a scan session entering the Scanning state.
	EventScanStarted EventType = "scan_started"

	// EventScanStopped signals a scan session returning to Idle.
	EventScanStopped EventType = "scan_stopped"

	// EventError carries a non-fatal engine error, such as an external
	// source failure that forced a scan stop.
	EventError EventType = "error"
)

// Event is one broadcast message. Data holds the type-specific payload:
// *tracking.Record for device updates, ScanStartedData, ScanStoppedData,
// or ErrorData.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// ScanStartedData is the payload of a scan_started event.
type ScanStartedData struct {
	SessionID string `json:"session_id"`
	AdapterID string `json:"adapter_id,omitempty"`
}

// ScanStoppedData is the payload of a scan_stopped event.
type ScanStoppedData struct {
	SessionID   string  `json:"session_id"`
	DeviceCount int     `json:"device_count"`
	DurationS   float64 `json:"duration_s"`
}

// ErrorData is the payload of an error event.
type ErrorData struct {
	Message string `json:"message"`
}

// NewDeviceUpdate builds a device_update event for a record.
func NewDeviceUpdate(record *tracking.Record) Event {
	return Event{
		Type:      EventDeviceUpdate,
		Timestamp: time.Now().UTC(),
		Data:      record,
	}
}

// NewScanStarted builds a scan_started event.
func NewScanStarted(sessionID, adapterID string) Event {
	return Event{
		Type:      EventScanStarted,
		Timestamp: time.Now().UTC(),
		Data:      ScanStartedData{SessionID: sessionID, AdapterID: adapterID},
	}
}

// NewScanStopped builds a scan_stopped event.
func NewScanStopped(sessionID string, deviceCount int, duration time.Duration) Event {
	return Event{
		Type:      EventScanStopped,
		Timestamp: time.Now().UTC(),
		Data: ScanStoppedData{
			SessionID:   sessionID,
			DeviceCount: deviceCount,
			DurationS:   duration.Seconds(),
		},
	}
}

// NewError builds an error event.
func NewError(message string) Event {
	return Event{
		Type:      EventError,
		Timestamp: time.Now().UTC(),
		Data:      ErrorData{Message: message},
	}
}
