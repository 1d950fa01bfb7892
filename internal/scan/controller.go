package scan

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nearwatch-io/nearwatch-core/internal/broadcast"
	"github.com/nearwatch-io/nearwatch-core/internal/infrastructure/config"
	"github.com/nearwatch-io/nearwatch-core/internal/tracking"
)

// State is the scan session lifecycle state.
type State string

// Session states. Exactly one session may be Scanning process-wide.
const (
	StateIdle     State = "idle"
	StateStarting State = "starting"
	StateScanning State = "scanning"
	StateStopping State = "stopping"
)

// Start/stop statuses reported to callers.
const (
	StatusStarted         = "started"
	StatusAlreadyScanning = "already_scanning"
	StatusStopped         = "stopped"
)

// Stop reasons recorded against sessions.
const (
	ReasonManual          = "manual"
	ReasonDurationElapsed = "duration_elapsed"
	ReasonSourceFailure   = "source_failure"
	ReasonShutdown        = "shutdown"
)

// Logger defines the logging interface used by the scan package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Telemetry receives scan and signal measurements. Satisfied by the
// InfluxDB client; nil disables telemetry.
type Telemetry interface {
	WriteSignalMetric(deviceKey string, rssi int, smoothed float64, distance float64)
	WriteProximityMetric(deviceKey string, band string, confidence float64)
	WriteScanMetric(sessionID string, metricName string, value float64)
}

// StartResult is the outcome of a start request.
type StartResult struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// StopResult is the outcome of a stop request.
type StopResult struct {
	Status      string  `json:"status"`
	SessionID   string  `json:"session_id,omitempty"`
	DeviceCount int     `json:"device_count"`
	DurationS   float64 `json:"duration_s"`
}

// Status is a point-in-time view of the controller.
type Status struct {
	IsScanning       bool       `json:"is_scanning"`
	State            State      `json:"state"`
	SessionID        string     `json:"session_id,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	DeviceCount      int        `json:"device_count"`
	BaselineCount    int        `json:"baseline_count"`
	DroppedSightings uint64     `json:"dropped_sightings"`
}

// ControllerDeps holds the dependencies for constructing a Controller.
type ControllerDeps struct {
	Registry    *tracking.Registry
	Baseline    *tracking.BaselineManager
	Source      Source
	Broadcaster *broadcast.Broadcaster
	Sessions    SessionRepository
	Telemetry   Telemetry
	Logger      Logger
	Defaults    config.ScanConfig
}

// Controller is the scan session state machine. All transitions fail
// safe toward Idle: a failed start never leaves Starting behind, and a
// source failure during Scanning forces a stop.
type Controller struct {
	mu        sync.Mutex
	state     State
	sessionID string
	adapterID string
	startedAt time.Time
	timer     *time.Timer

	registry    *tracking.Registry
	baseline    *tracking.BaselineManager
	source      Source
	broadcaster *broadcast.Broadcaster
	sessions    SessionRepository
	telemetry   Telemetry
	logger      Logger
	defaults    config.ScanConfig
}

// NewController creates a scan session controller in the Idle state.
func NewController(deps ControllerDeps) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Controller{
		state:       StateIdle,
		registry:    deps.Registry,
		baseline:    deps.Baseline,
		source:      deps.Source,
		broadcaster: deps.Broadcaster,
		sessions:    deps.Sessions,
		telemetry:   deps.Telemetry,
		logger:      logger,
		defaults:    deps.Defaults,
	}
}

// Availability reports whether a usable sighting source exists, without
// starting a session.
func (c *Controller) Availability(ctx context.Context) Availability {
	return c.source.Availability(ctx)
}

// Start begins a scan session. Called while a session is active it
// reports already_scanning without side effects. A fresh session clears
// the tracking registry, attaches the sighting source, and emits
// scan_started. When a duration is set, a cancellable timer stops the
// session automatically.
func (c *Controller) Start(ctx context.Context, params Params) (*StartResult, error) {
	c.applyDefaults(&params)
	if err := params.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.state != StateIdle {
		state := c.state
		sessionID := c.sessionID
		c.mu.Unlock()
		return &StartResult{
			Status:    StatusAlreadyScanning,
			Message:   "a scan session is already active (" + string(state) + ")",
			SessionID: sessionID,
		}, nil
	}
	c.state = StateStarting
	c.mu.Unlock()

	// Fresh state per session.
	c.registry.Clear()

	sessionID := uuid.NewString()

	err := c.source.Start(ctx, params, c.handleSighting, c.handleSourceFailure)
	if err != nil {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		return nil, err
	}

	now := time.Now().UTC()
	session := &Session{
		ID:            sessionID,
		AdapterID:     params.AdapterID,
		Transport:     params.Transport,
		RSSIThreshold: params.RSSIThreshold,
		StartedAt:     now,
	}
	if c.sessions != nil {
		if err := c.sessions.Create(ctx, session); err != nil {
			c.logger.Warn("scan session not persisted", "session_id", sessionID, "error", err)
		}
	}

	c.mu.Lock()
	c.state = StateScanning
	c.sessionID = sessionID
	c.adapterID = params.AdapterID
	c.startedAt = now
	if params.DurationS > 0 {
		d := time.Duration(params.DurationS) * time.Second
		c.timer = time.AfterFunc(d, func() {
			c.stop(context.Background(), ReasonDurationElapsed)
		})
	}
	c.mu.Unlock()

	c.broadcaster.Publish(broadcast.NewScanStarted(sessionID, params.AdapterID))
	c.logger.Info("scan session started",
		"session_id", sessionID,
		"adapter_id", params.AdapterID,
		"transport", params.Transport,
		"duration_s", params.DurationS,
	)

	return &StartResult{Status: StatusStarted, SessionID: sessionID}, nil
}

// Stop ends the active session. Idempotent: called while Idle or already
// Stopping it reports stopped without side effects. Any pending auto-stop
// timer is cancelled.
func (c *Controller) Stop(ctx context.Context) *StopResult {
	return c.stop(ctx, ReasonManual)
}

// Shutdown stops any active session during process teardown.
func (c *Controller) Shutdown(ctx context.Context) {
	c.stop(ctx, ReasonShutdown)
}

func (c *Controller) stop(ctx context.Context, reason string) *StopResult {
	c.mu.Lock()
	if c.state != StateScanning {
		c.mu.Unlock()
		return &StopResult{Status: StatusStopped}
	}
	c.state = StateStopping
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	sessionID := c.sessionID
	adapterID := c.adapterID
	startedAt := c.startedAt
	c.mu.Unlock()

	if err := c.source.Stop(); err != nil {
		c.logger.Warn("sighting source stop failed", "error", err)
	}
	if src, ok := c.source.(*MQTTSource); ok {
		src.SendStopCommand(adapterID)
	}

	stoppedAt := time.Now().UTC()
	deviceCount := c.registry.Count()
	duration := stoppedAt.Sub(startedAt)

	if c.sessions != nil {
		if err := c.sessions.Finish(ctx, sessionID, stoppedAt, deviceCount, reason); err != nil {
			c.logger.Warn("scan session outcome not persisted", "session_id", sessionID, "error", err)
		}
	}
	if c.telemetry != nil {
		c.telemetry.WriteScanMetric(sessionID, "device_count", float64(deviceCount))
		c.telemetry.WriteScanMetric(sessionID, "duration_s", duration.Seconds())
	}

	c.mu.Lock()
	c.state = StateIdle
	c.sessionID = ""
	c.adapterID = ""
	c.mu.Unlock()

	c.broadcaster.Publish(broadcast.NewScanStopped(sessionID, deviceCount, duration))
	c.logger.Info("scan session stopped",
		"session_id", sessionID,
		"reason", reason,
		"device_count", deviceCount,
		"duration_s", duration.Seconds(),
	)

	return &StopResult{
		Status:      StatusStopped,
		SessionID:   sessionID,
		DeviceCount: deviceCount,
		DurationS:   duration.Seconds(),
	}
}

// Status returns the controller's current view.
func (c *Controller) Status() Status {
	c.mu.Lock()
	state := c.state
	sessionID := c.sessionID
	startedAt := c.startedAt
	c.mu.Unlock()

	st := Status{
		IsScanning:       state == StateScanning,
		State:            state,
		SessionID:        sessionID,
		DeviceCount:      c.registry.Count(),
		BaselineCount:    c.baseline.Count(),
		DroppedSightings: c.registry.Dropped(),
	}
	if state == StateScanning && !startedAt.IsZero() {
		t := startedAt
		st.StartedAt = &t
	}
	return st
}

// handleSighting forwards one raw sighting into the registry while a
// session is active.
func (c *Controller) handleSighting(s tracking.Sighting) {
	c.mu.Lock()
	active := c.state == StateScanning
	c.mu.Unlock()
	if !active {
		return
	}

	record, err := c.registry.Observe(s)
	if err != nil {
		// Malformed sightings are dropped and counted by the registry.
		return
	}

	if c.telemetry != nil {
		c.telemetry.WriteSignalMetric(record.DeviceKey, record.RSSICurrent,
			record.RSSIEMA, record.EstimatedDistanceM)
		c.telemetry.WriteProximityMetric(record.DeviceKey,
			string(record.ProximityBand), record.DistanceConfidence)
	}
}

// handleSourceFailure treats an external source failure as fatal for the
// session: the stop path runs and an error event is broadcast, so the
// session never remains stuck in Scanning.
func (c *Controller) handleSourceFailure(err error) {
	c.logger.Error("sighting source failed", "error", err)
	c.broadcaster.Publish(broadcast.NewError("sighting source failed: " + err.Error()))
	c.stop(context.Background(), ReasonSourceFailure)
}

// applyDefaults fills unset parameters from configuration.
func (c *Controller) applyDefaults(p *Params) {
	if p.AdapterID == "" {
		p.AdapterID = c.defaults.AdapterID
	}
	if p.Transport == "" {
		p.Transport = c.defaults.Transport
	}
	if p.RSSIThreshold == 0 {
		p.RSSIThreshold = c.defaults.RSSIThreshold
	}
	if p.DurationS == 0 {
		p.DurationS = c.defaults.DefaultDuration
	}
}
