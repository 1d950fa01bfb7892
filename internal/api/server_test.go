package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nearwatch-io/nearwatch-core/internal/broadcast"
	"github.com/nearwatch-io/nearwatch-core/internal/infrastructure/config"
	"github.com/nearwatch-io/nearwatch-core/internal/infrastructure/logging"
	"github.com/nearwatch-io/nearwatch-core/internal/scan"
	"github.com/nearwatch-io/nearwatch-core/internal/tracking"
)

const testTicketSecret = "0123456789abcdef0123456789abcdef"

// fakeSource is a controllable scan.Source for API tests.
type fakeSource struct {
	mu      sync.Mutex
	handler scan.SightingHandler
}

func (f *fakeSource) Availability(_ context.Context) scan.Availability {
	return scan.Availability{Available: true}
}

func (f *fakeSource) Start(_ context.Context, _ scan.Params, handler scan.SightingHandler, _ func(error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = handler
	return nil
}

func (f *fakeSource) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = nil
	return nil
}

// mockBaselineRepo is a minimal in-memory baseline store.
type mockBaselineRepo struct {
	mu      sync.Mutex
	entries []tracking.BaselineEntry
}

func (m *mockBaselineRepo) Replace(_ context.Context, entries []tracking.BaselineEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append([]tracking.BaselineEntry(nil), entries...)
	return nil
}

func (m *mockBaselineRepo) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

func (m *mockBaselineRepo) List(_ context.Context) ([]tracking.BaselineEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]tracking.BaselineEntry(nil), m.entries...), nil
}

// mockSessionRepo records session lifecycle calls.
type mockSessionRepo struct {
	mu      sync.Mutex
	created []scan.Session
	listErr error
}

func (m *mockSessionRepo) Create(_ context.Context, session *scan.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, *session)
	return nil
}

func (m *mockSessionRepo) Finish(_ context.Context, id string, stoppedAt time.Time, deviceCount int, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.created {
		if m.created[i].ID == id {
			at := stoppedAt
			m.created[i].StoppedAt = &at
			m.created[i].DeviceCount = deviceCount
			m.created[i].StopReason = reason
		}
	}
	return nil
}

func (m *mockSessionRepo) List(_ context.Context, limit int) ([]scan.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := append([]scan.Session(nil), m.created...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type testHarness struct {
	server      *Server
	ts          *httptest.Server
	registry    *tracking.Registry
	broadcaster *broadcast.Broadcaster
	sessions    *mockSessionRepo
	apiKey      string
}

// newTestHarness builds a full server over a fake sighting source and
// in-memory repositories, served via httptest.
func newTestHarness(t *testing.T, apiKey string) *testHarness {
	t.Helper()

	cfg := &config.Config{
		API: config.APIConfig{Host: "127.0.0.1", Port: 8090},
		WebSocket: config.WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Scan: config.ScanConfig{
			AdapterID:     "hci0",
			Transport:     "auto",
			RSSIThreshold: -100,
		},
		Tracking: config.TrackingConfig{
			EMAAlpha:                  0.3,
			RSSIWindow:                20,
			TxPowerRef:                -59,
			PathLossExponent:          2.0,
			PersistentMinSightings:    5,
			PersistentMinSpan:         60,
			BeaconMaxIntervalVariance: 0.25,
		},
		Security: config.SecurityConfig{
			APIKey: apiKey,
			Ticket: config.TicketConfig{Secret: testTicketSecret, TTL: 60},
		},
		Logging: config.LoggingConfig{Level: "error", Format: "json", Output: "stdout"},
	}

	baseline := tracking.NewBaselineManager(&mockBaselineRepo{})
	broadcaster := broadcast.New(64, nil)
	registry := tracking.NewRegistry(tracking.RegistryDeps{
		Estimator:  tracking.NewEstimator(cfg.Tracking),
		Classifier: tracking.NewClassifier(cfg.Tracking),
		Baseline:   baseline,
		Publisher:  broadcaster,
	})
	sessions := &mockSessionRepo{}

	controller := scan.NewController(scan.ControllerDeps{
		Registry:    registry,
		Baseline:    baseline,
		Source:      &fakeSource{},
		Broadcaster: broadcaster,
		Sessions:    sessions,
		Defaults:    cfg.Scan,
	})

	srv, err := New(Deps{
		Config:      cfg,
		Logger:      logging.New(cfg.Logging, "test"),
		Registry:    registry,
		Baseline:    baseline,
		Controller:  controller,
		Broadcaster: broadcaster,
		Sessions:    sessions,
		Version:     "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Run the hub and event relay without binding a real listener.
	ctx, cancel := context.WithCancel(context.Background())
	srv.hub = NewHub(cfg.WebSocket, srv.logger)
	go srv.hub.Run(ctx)
	go srv.relayEvents(ctx)

	ts := httptest.NewServer(srv.buildRouter())
	t.Cleanup(func() {
		ts.Close()
		controller.Shutdown(context.Background())
		cancel()
	})

	return &testHarness{
		server:      srv,
		ts:          ts,
		registry:    registry,
		broadcaster: broadcaster,
		sessions:    sessions,
		apiKey:      apiKey,
	}
}

// doRequest performs an HTTP request against the test server, attaching
// the API key when one is configured.
func (h *testHarness) doRequest(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, h.ts.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if h.apiKey != "" {
		req.Header.Set("X-API-Key", h.apiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// decodeBody decodes a JSON response into a map and closes the body.
func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close() //nolint:errcheck // test cleanup

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

// observe feeds a sighting directly into the registry.
func (h *testHarness) observe(t *testing.T, address string, rssi int) {
	t.Helper()
	_, err := h.registry.Observe(tracking.Sighting{
		Address:     address,
		AddressType: tracking.AddressPublic,
		Protocol:    tracking.ProtocolBLE,
		RSSI:        rssi,
		Timestamp:   time.Now(),
	})
	if err != nil {
		t.Fatalf("Observe(%s) error = %v", address, err)
	}
}

func TestHealth(t *testing.T) {
	h := newTestHarness(t, "")

	resp := h.doRequest(t, http.MethodGet, "/api/v1/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["status"] != "ok" {
		t.Errorf("health status field = %v, want ok", body["status"])
	}
	if body["mqtt"] != "disabled" {
		t.Errorf("health mqtt field = %v, want disabled", body["mqtt"])
	}
}

func TestAuthMiddleware(t *testing.T) {
	h := newTestHarness(t, "secret-key")

	// Request without the key.
	req, err := http.NewRequest(http.MethodGet, h.ts.URL+"/api/v1/devices", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close() //nolint:errcheck // test cleanup
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("missing key status = %d, want 401", resp.StatusCode)
	}

	// Wrong key.
	req.Header.Set("X-API-Key", "wrong")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close() //nolint:errcheck // test cleanup
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong key status = %d, want 401", resp.StatusCode)
	}

	// Correct key.
	resp = h.doRequest(t, http.MethodGet, "/api/v1/devices", nil)
	resp.Body.Close() //nolint:errcheck // test cleanup
	if resp.StatusCode != http.StatusOK {
		t.Errorf("correct key status = %d, want 200", resp.StatusCode)
	}

	// Health never requires the key.
	resp, err = http.Get(h.ts.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	resp.Body.Close() //nolint:errcheck // test cleanup
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}
}

func TestScanLifecycle(t *testing.T) {
	h := newTestHarness(t, "")

	// Start with an empty body uses defaults.
	resp := h.doRequest(t, http.MethodPost, "/api/v1/scan/start", nil)
	body := decodeBody(t, resp)
	if body["status"] != scan.StatusStarted {
		t.Fatalf("start status = %v, want started", body["status"])
	}
	sessionID, _ := body["session_id"].(string) //nolint:errcheck // checked below
	if sessionID == "" {
		t.Fatal("start returned empty session_id")
	}

	// Second start reports the active session.
	resp = h.doRequest(t, http.MethodPost, "/api/v1/scan/start", nil)
	body = decodeBody(t, resp)
	if body["status"] != scan.StatusAlreadyScanning {
		t.Errorf("second start status = %v, want already_scanning", body["status"])
	}
	if body["session_id"] != sessionID {
		t.Errorf("second start session_id = %v, want %s", body["session_id"], sessionID)
	}

	// Status reflects the running session.
	resp = h.doRequest(t, http.MethodGet, "/api/v1/scan/status", nil)
	body = decodeBody(t, resp)
	if body["is_scanning"] != true {
		t.Errorf("status is_scanning = %v, want true", body["is_scanning"])
	}

	// Stop ends the session.
	resp = h.doRequest(t, http.MethodPost, "/api/v1/scan/stop", nil)
	body = decodeBody(t, resp)
	if body["status"] != scan.StatusStopped {
		t.Errorf("stop status = %v, want stopped", body["status"])
	}
	if body["session_id"] != sessionID {
		t.Errorf("stop session_id = %v, want %s", body["session_id"], sessionID)
	}

	// Stopping again is harmless.
	resp = h.doRequest(t, http.MethodPost, "/api/v1/scan/stop", nil)
	body = decodeBody(t, resp)
	if body["status"] != scan.StatusStopped {
		t.Errorf("idle stop status = %v, want stopped", body["status"])
	}
}

func TestScanStart_InvalidParameters(t *testing.T) {
	h := newTestHarness(t, "")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"negative duration", map[string]any{"duration_s": -5}},
		{"bad transport", map[string]any{"transport": "zigbee"}},
		{"positive threshold", map[string]any{"rssi_threshold": 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := h.doRequest(t, http.MethodPost, "/api/v1/scan/start", tt.body)
			resp.Body.Close() //nolint:errcheck // test cleanup
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestScanAvailability(t *testing.T) {
	h := newTestHarness(t, "")

	resp := h.doRequest(t, http.MethodGet, "/api/v1/scan/availability", nil)
	body := decodeBody(t, resp)
	if body["available"] != true {
		t.Errorf("available = %v, want true", body["available"])
	}
}

func TestListDevices(t *testing.T) {
	h := newTestHarness(t, "")
	h.observe(t, "AA:BB:CC:DD:EE:01", -60)
	h.observe(t, "AA:BB:CC:DD:EE:02", -75)

	resp := h.doRequest(t, http.MethodGet, "/api/v1/devices", nil)
	body := decodeBody(t, resp)
	if body["count"] != float64(2) {
		t.Errorf("device count = %v, want 2", body["count"])
	}
}

func TestListDevices_Filters(t *testing.T) {
	h := newTestHarness(t, "")
	h.observe(t, "AA:BB:CC:DD:EE:01", -45) // immediate band
	if _, err := h.registry.CaptureBaseline(context.Background()); err != nil {
		t.Fatalf("CaptureBaseline() error = %v", err)
	}
	h.observe(t, "AA:BB:CC:DD:EE:02", -90) // far or unknown, not in baseline

	resp := h.doRequest(t, http.MethodGet, "/api/v1/devices?new_only=true", nil)
	body := decodeBody(t, resp)
	if body["count"] != float64(1) {
		t.Errorf("new_only count = %v, want 1", body["count"])
	}

	resp = h.doRequest(t, http.MethodGet, "/api/v1/devices?band=immediate", nil)
	body = decodeBody(t, resp)
	if body["count"] != float64(1) {
		t.Errorf("band filter count = %v, want 1", body["count"])
	}
}

func TestGetDevice(t *testing.T) {
	h := newTestHarness(t, "")
	h.observe(t, "AA:BB:CC:DD:EE:FF", -60)

	resp := h.doRequest(t, http.MethodGet, "/api/v1/devices/aa-bb-cc-dd-ee-ff_public", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get device status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["address"] != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("device address = %v, want AA:BB:CC:DD:EE:FF", body["address"])
	}

	resp = h.doRequest(t, http.MethodGet, "/api/v1/devices/no-such-device_public", nil)
	resp.Body.Close() //nolint:errcheck // test cleanup
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown device status = %d, want 404", resp.StatusCode)
	}
}

func TestBaselineEndpoints(t *testing.T) {
	h := newTestHarness(t, "")
	h.observe(t, "AA:BB:CC:DD:EE:01", -60)
	h.observe(t, "AA:BB:CC:DD:EE:02", -70)

	resp := h.doRequest(t, http.MethodPost, "/api/v1/baseline/set", nil)
	body := decodeBody(t, resp)
	if body["device_count"] != float64(2) {
		t.Fatalf("set device_count = %v, want 2", body["device_count"])
	}

	resp = h.doRequest(t, http.MethodGet, "/api/v1/baseline/", nil)
	body = decodeBody(t, resp)
	if body["count"] != float64(2) {
		t.Errorf("baseline count = %v, want 2", body["count"])
	}

	// Captured devices are flagged in the registry.
	resp = h.doRequest(t, http.MethodGet, "/api/v1/devices/aa-bb-cc-dd-ee-01_public", nil)
	body = decodeBody(t, resp)
	if body["in_baseline"] != true {
		t.Errorf("in_baseline = %v, want true", body["in_baseline"])
	}

	resp = h.doRequest(t, http.MethodPost, "/api/v1/baseline/clear", nil)
	body = decodeBody(t, resp)
	if body["status"] != "success" {
		t.Errorf("clear status = %v, want success", body["status"])
	}

	resp = h.doRequest(t, http.MethodGet, "/api/v1/baseline/", nil)
	body = decodeBody(t, resp)
	if body["count"] != float64(0) {
		t.Errorf("baseline count after clear = %v, want 0", body["count"])
	}
}

func TestExportDevices_CSV(t *testing.T) {
	h := newTestHarness(t, "")
	h.observe(t, "AA:BB:CC:DD:EE:FF", -60)

	resp := h.doRequest(t, http.MethodGet, "/api/v1/devices/export?format=csv", nil)
	defer resp.Body.Close() //nolint:errcheck // test cleanup
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("csv export status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv line count = %d, want 2 (header + 1 row)", len(lines))
	}
	if !strings.HasPrefix(lines[0], "device_key,address,") {
		t.Errorf("csv header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "aa-bb-cc-dd-ee-ff_public,AA:BB:CC:DD:EE:FF,") {
		t.Errorf("csv row = %q", lines[1])
	}
}

func TestExportDevices_JSON(t *testing.T) {
	h := newTestHarness(t, "")
	h.observe(t, "AA:BB:CC:DD:EE:FF", -60)

	resp := h.doRequest(t, http.MethodGet, "/api/v1/devices/export", nil)
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q, want attachment", cd)
	}
	body := decodeBody(t, resp)
	if body["count"] != float64(1) {
		t.Errorf("export count = %v, want 1", body["count"])
	}
}

func TestExportDevices_UnsupportedFormat(t *testing.T) {
	h := newTestHarness(t, "")

	resp := h.doRequest(t, http.MethodGet, "/api/v1/devices/export?format=xml", nil)
	resp.Body.Close() //nolint:errcheck // test cleanup
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestListSessions(t *testing.T) {
	h := newTestHarness(t, "")

	// Run one full session so history has an entry.
	resp := h.doRequest(t, http.MethodPost, "/api/v1/scan/start", nil)
	resp.Body.Close() //nolint:errcheck // test cleanup
	resp = h.doRequest(t, http.MethodPost, "/api/v1/scan/stop", nil)
	resp.Body.Close() //nolint:errcheck // test cleanup

	resp = h.doRequest(t, http.MethodGet, "/api/v1/sessions", nil)
	body := decodeBody(t, resp)
	if body["count"] != float64(1) {
		t.Errorf("session count = %v, want 1", body["count"])
	}

	resp = h.doRequest(t, http.MethodGet, "/api/v1/sessions?limit=0", nil)
	resp.Body.Close() //nolint:errcheck // test cleanup
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", resp.StatusCode)
	}
}

func TestWSTicket(t *testing.T) {
	h := newTestHarness(t, "")

	resp := h.doRequest(t, http.MethodPost, "/api/v1/auth/ws-ticket", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ticket status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	ticket, _ := body["ticket"].(string) //nolint:errcheck // checked below
	if ticket == "" {
		t.Fatal("empty ticket")
	}

	// Tickets are single-use.
	if !h.server.tickets.validate(ticket) {
		t.Error("first validation failed")
	}
	if h.server.tickets.validate(ticket) {
		t.Error("second validation succeeded, want single-use rejection")
	}
}

func TestTicketStore_Invalid(t *testing.T) {
	store := newTicketStore(config.TicketConfig{Secret: testTicketSecret}, time.Minute)

	if store.validate("not-a-jwt") {
		t.Error("garbage ticket validated")
	}

	// A ticket signed with a different secret must fail.
	other := newTicketStore(config.TicketConfig{Secret: "ffffffffffffffffffffffffffffffff"}, time.Minute)
	ticket, err := other.issue()
	if err != nil {
		t.Fatalf("issue() error = %v", err)
	}
	if store.validate(ticket) {
		t.Error("foreign-signed ticket validated")
	}

	// An expired ticket must fail even with a valid signature.
	expired := newTicketStore(config.TicketConfig{Secret: testTicketSecret}, -time.Minute)
	ticket, err = expired.issue()
	if err != nil {
		t.Fatalf("issue() error = %v", err)
	}
	if store.validate(ticket) {
		t.Error("expired ticket validated")
	}
}

func TestWebSocket_RequiresTicket(t *testing.T) {
	h := newTestHarness(t, "")

	wsURL := "ws" + strings.TrimPrefix(h.ts.URL, "http") + "/api/v1/ws"

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		conn.Close() //nolint:errcheck // test cleanup
		t.Fatal("dial without ticket succeeded, want failure")
	}
	if resp == nil {
		t.Fatal("dial returned no response")
	}
	defer resp.Body.Close() //nolint:errcheck // test cleanup
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("dial without ticket status = %d, want 401", resp.StatusCode)
	}
}

func TestWebSocket_EventDelivery(t *testing.T) {
	h := newTestHarness(t, "")

	ticket, err := h.server.tickets.issue()
	if err != nil {
		t.Fatalf("issue() error = %v", err)
	}
	wsURL := fmt.Sprintf("ws%s/api/v1/ws?ticket=%s", strings.TrimPrefix(h.ts.URL, "http"), ticket)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck // test cleanup
	defer conn.Close()      //nolint:errcheck // test cleanup

	// Subscribe to device updates.
	sub := WSMessage{
		Type:    WSTypeSubscribe,
		ID:      "1",
		Payload: WSSubscribePayload{Channels: []string{string(broadcast.EventDeviceUpdate)}},
	}
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("subscribe write failed: %v", err)
	}

	var ack WSMessage
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("subscribe ack read failed: %v", err)
	}
	if ack.Type != WSTypeResponse {
		t.Fatalf("ack type = %q, want response", ack.Type)
	}

	// An observation flows broadcaster -> relay -> hub -> client.
	h.observe(t, "AA:BB:CC:DD:EE:FF", -60)

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set read deadline: %v", err)
	}
	var event WSMessage
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("event read failed: %v", err)
	}
	if event.Type != WSTypeEvent {
		t.Errorf("event type = %q, want event", event.Type)
	}
	if event.EventType != string(broadcast.EventDeviceUpdate) {
		t.Errorf("event channel = %q, want device_update", event.EventType)
	}

	payload, ok := event.Payload.(map[string]any)
	if !ok {
		t.Fatalf("event payload type = %T, want object", event.Payload)
	}
	if payload["device_key"] != "aa-bb-cc-dd-ee-ff_public" {
		t.Errorf("payload device_key = %v", payload["device_key"])
	}
}

func TestNew_MissingDependencies(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Error("New() with empty deps succeeded, want error")
	}
}
