package scan

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nearwatch-io/nearwatch-core/internal/tracking"
)

// newHandlerRecorder returns a SightingHandler that appends into a
// mutex-guarded slice, plus an accessor for the received sightings.
func newHandlerRecorder() (SightingHandler, func() []tracking.Sighting) {
	var mu sync.Mutex
	var got []tracking.Sighting
	handler := func(s tracking.Sighting) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, s)
	}
	return handler, func() []tracking.Sighting {
		mu.Lock()
		defer mu.Unlock()
		return append([]tracking.Sighting(nil), got...)
	}
}

func TestMQTTSource_HandleMessage(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		threshold int
		wantCount int
		wantErr   bool
	}{
		{
			name:      "valid sighting",
			payload:   `{"address":"AA:BB:CC:DD:EE:FF","address_type":"public","protocol":"ble","rssi":-60,"timestamp":"2026-08-29T12:00:00Z"}`,
			wantCount: 1,
		},
		{
			name:      "below threshold filtered",
			payload:   `{"address":"AA:BB:CC:DD:EE:FF","address_type":"public","protocol":"ble","rssi":-95,"timestamp":"2026-08-29T12:00:00Z"}`,
			threshold: -90,
			wantCount: 0,
		},
		{
			name:      "at threshold passes",
			payload:   `{"address":"AA:BB:CC:DD:EE:FF","address_type":"public","protocol":"ble","rssi":-90,"timestamp":"2026-08-29T12:00:00Z"}`,
			threshold: -90,
			wantCount: 1,
		},
		{
			name:      "zero threshold disables filtering",
			payload:   `{"address":"AA:BB:CC:DD:EE:FF","address_type":"public","protocol":"ble","rssi":-120,"timestamp":"2026-08-29T12:00:00Z"}`,
			wantCount: 1,
		},
		{
			name:    "malformed json",
			payload: `{"address":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewMQTTSource(nil, 1, nil)
			handler, received := newHandlerRecorder()
			src.handler = handler

			err := src.handleMessage([]byte(tt.payload), tt.threshold)
			if (err != nil) != tt.wantErr {
				t.Fatalf("handleMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := len(received()); got != tt.wantCount {
				t.Errorf("received %d sightings, want %d", got, tt.wantCount)
			}
		})
	}
}

func TestMQTTSource_HandleMessage_NilHandlerAfterStop(t *testing.T) {
	src := NewMQTTSource(nil, 1, nil)

	// No handler attached: the message is silently dropped.
	payload := `{"address":"AA:BB:CC:DD:EE:FF","address_type":"public","protocol":"ble","rssi":-60}`
	if err := src.handleMessage([]byte(payload), 0); err != nil {
		t.Fatalf("handleMessage() error = %v", err)
	}
}

func TestMQTTSource_HandleMessage_PreservesFields(t *testing.T) {
	src := NewMQTTSource(nil, 1, nil)
	handler, received := newHandlerRecorder()
	src.handler = handler

	payload := `{
		"device_key": "correlated-key",
		"address": "C4:12:34:56:78:9A",
		"address_type": "random_resolvable",
		"protocol": "ble",
		"rssi": -72,
		"timestamp": "2026-08-29T12:00:00Z",
		"name": "Tracker",
		"manufacturer_id": 76,
		"tx_power": -4,
		"service_uuids": ["fd6f"]
	}`
	if err := src.handleMessage([]byte(payload), 0); err != nil {
		t.Fatalf("handleMessage() error = %v", err)
	}

	got := received()
	if len(got) != 1 {
		t.Fatalf("received %d sightings, want 1", len(got))
	}
	s := got[0]
	if s.DeviceKey != "correlated-key" {
		t.Errorf("DeviceKey = %q, want correlated-key", s.DeviceKey)
	}
	if s.AddressType != tracking.AddressRandomResolvable {
		t.Errorf("AddressType = %q, want random_resolvable", s.AddressType)
	}
	if s.ManufacturerID == nil || *s.ManufacturerID != 76 {
		t.Errorf("ManufacturerID = %v, want 76", s.ManufacturerID)
	}
	if s.TxPower == nil || *s.TxPower != -4 {
		t.Errorf("TxPower = %v, want -4", s.TxPower)
	}
	if len(s.ServiceUUIDs) != 1 || s.ServiceUUIDs[0] != "fd6f" {
		t.Errorf("ServiceUUIDs = %v, want [fd6f]", s.ServiceUUIDs)
	}
	want := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	if !s.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", s.Timestamp, want)
	}
}

func TestUnavailableSource(t *testing.T) {
	src := NewUnavailableSource("mqtt disabled")

	avail := src.Availability(context.Background())
	if avail.Available {
		t.Error("Availability().Available = true, want false")
	}
	if len(avail.Issues) != 1 || avail.Issues[0] != "mqtt disabled" {
		t.Errorf("Availability().Issues = %v", avail.Issues)
	}

	if err := src.Start(context.Background(), Params{}, nil, nil); err == nil {
		t.Error("Start() succeeded, want error")
	}
	if err := src.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
