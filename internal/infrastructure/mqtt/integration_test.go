//go:build integration

package mqtt

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nearwatch-io/nearwatch-core/internal/infrastructure/config"
)

// Integration tests against a live broker at 127.0.0.1:1883.
//
// Run with:
//
//	go test -tags=integration -count=1 -v ./internal/infrastructure/mqtt/...

func integrationClient(t *testing.T, clientID string) *Client {
	t.Helper()

	cfg := config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: clientID,
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() }) //nolint:errcheck // Test cleanup
	return client
}

// mockLogger records handler errors and panics for assertions.
type mockLogger struct {
	mu     sync.Mutex
	errors []string
	warns  []string
}

func (l *mockLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

func (l *mockLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}

func (l *mockLogger) hasWarn(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range l.warns {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

// TestIntegration_ReplayBookkeeping exercises the subscription map that
// restoreSubscriptions replays after a reconnect.
func TestIntegration_ReplayBookkeeping(t *testing.T) {
	client := integrationClient(t, "nearwatch-int-replay")

	topics := []string{
		"nearwatch/int/test/topic1",
		"nearwatch/int/test/topic2",
		"nearwatch/int/test/topic3",
	}
	for _, topic := range topics {
		if err := client.Subscribe(topic, 1, func(string, []byte) error { return nil }); err != nil {
			t.Fatalf("Subscribe(%s) error = %v", topic, err)
		}
	}
	if n := client.SubscriptionCount(); n != len(topics) {
		t.Errorf("SubscriptionCount() = %d, want %d", n, len(topics))
	}

	// Unsubscribed topics must not be replayed.
	if err := client.Unsubscribe(topics[0]); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	if client.HasSubscription(topics[0]) {
		t.Errorf("HasSubscription(%s) = true after unsubscribe", topics[0])
	}
	if n := client.SubscriptionCount(); n != len(topics)-1 {
		t.Errorf("SubscriptionCount() after unsubscribe = %d, want %d", n, len(topics)-1)
	}
}

// TestIntegration_RetainedState verifies a late subscriber receives the
// retained device state, the pattern the engine uses for state topics.
func TestIntegration_RetainedState(t *testing.T) {
	pub := integrationClient(t, "nearwatch-int-retain-pub")

	topic := Topics{}.EngineDeviceState("int-test-device")
	if err := pub.PublishRetained(topic, []byte(`{"band":"immediate"}`)); err != nil {
		t.Fatalf("PublishRetained() error = %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	sub := integrationClient(t, "nearwatch-int-retain-sub")
	received := make(chan string, 1)
	err := sub.Subscribe(topic, 1, func(_ string, payload []byte) error {
		select {
		case received <- string(payload):
		default:
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	select {
	case got := <-received:
		if got != `{"band":"immediate"}` {
			t.Errorf("retained payload = %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Error("timeout waiting for retained message")
	}

	// Clear the retained message for subsequent runs.
	pub.PublishRetained(topic, nil) //nolint:errcheck // Cleanup
}

// TestIntegration_HandlerPanicLogged verifies a panicking handler is
// recovered and reported through the configured logger.
func TestIntegration_HandlerPanicLogged(t *testing.T) {
	client := integrationClient(t, "nearwatch-int-panic")

	log := &mockLogger{}
	client.SetLogger(log)

	topic := "nearwatch/int/panic"
	handled := make(chan struct{}, 1)
	err := client.Subscribe(topic, 1, func(string, []byte) error {
		defer func() {
			select {
			case handled <- struct{}{}:
			default:
			}
		}()
		panic("boom")
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := client.PublishString(topic, "x", 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case <-handled:
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not invoked")
	}
	time.Sleep(100 * time.Millisecond)

	log.mu.Lock()
	defer log.mu.Unlock()
	if len(log.errors) == 0 {
		t.Error("expected panic to be logged via Error")
	}
}

// TestIntegration_HandlerErrorLogged verifies handler errors reach the
// logger as warnings.
func TestIntegration_HandlerErrorLogged(t *testing.T) {
	client := integrationClient(t, "nearwatch-int-handler-warn")

	log := &mockLogger{}
	client.SetLogger(log)

	topic := "nearwatch/int/handler-warn"
	err := client.Subscribe(topic, 1, func(string, []byte) error {
		return ErrPublishFailed
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	if err := client.PublishString(topic, "x", 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	time.Sleep(500 * time.Millisecond)

	if !log.hasWarn("handler returned error") && !log.hasWarn("MQTT handler") {
		t.Error("expected handler error to be logged via Warn")
	}
}

// TestIntegration_LoggerSwap verifies the logger can be set and cleared
// on a live client.
func TestIntegration_LoggerSwap(t *testing.T) {
	client := integrationClient(t, "nearwatch-int-logger")

	client.SetLogger(&mockLogger{})
	if client.getLogger() == nil {
		t.Error("getLogger() = nil after SetLogger()")
	}

	client.SetLogger(nil)
	if client.getLogger() != nil {
		t.Error("getLogger() should be nil after SetLogger(nil)")
	}
}
