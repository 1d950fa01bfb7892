package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nearwatch-io/nearwatch-core/internal/infrastructure/mqtt"
	"github.com/nearwatch-io/nearwatch-core/internal/tracking"
)

// sensorCommand is the control payload published to a sensor daemon.
type sensorCommand struct {
	Action        string `json:"action"`
	Transport     string `json:"transport,omitempty"`
	DurationS     int    `json:"duration_s,omitempty"`
	RSSIThreshold int    `json:"rssi_threshold,omitempty"`
}

// MQTTSource produces sightings from an external radio daemon over the
// MQTT bus. The daemon publishes one JSON sighting per message on its
// sensor topic and accepts start/stop commands on its command topic.
type MQTTSource struct {
	client *mqtt.Client
	qos    byte
	logger Logger

	mu      sync.Mutex
	topic   string // Active subscription, empty when stopped
	handler SightingHandler
	onError func(error)
}

// NewMQTTSource creates a sighting source over an established MQTT client.
func NewMQTTSource(client *mqtt.Client, qos byte, logger Logger) *MQTTSource {
	if logger == nil {
		logger = noopLogger{}
	}
	return &MQTTSource{
		client: client,
		qos:    qos,
		logger: logger,
	}
}

// Availability reports whether the MQTT bus is reachable. A disconnected
// broker means no sightings can arrive, so the capability is unavailable.
func (s *MQTTSource) Availability(ctx context.Context) Availability {
	if s.client == nil {
		return Availability{Issues: []string{"mqtt transport not configured"}}
	}
	if err := s.client.HealthCheck(ctx); err != nil {
		return Availability{Issues: []string{fmt.Sprintf("mqtt broker unreachable: %v", err)}}
	}
	return Availability{Available: true}
}

// Start subscribes to the sensor's sighting topic and sends it a start
// command. Sightings weaker than the configured RSSI threshold are
// filtered before reaching the handler.
func (s *MQTTSource) Start(ctx context.Context, params Params, handler SightingHandler, onError func(error)) error {
	avail := s.Availability(ctx)
	if !avail.Available {
		return fmt.Errorf("%w: %v", ErrCapabilityUnavailable, avail.Issues)
	}

	topics := mqtt.Topics{}
	topic := topics.AllSensorSightings()
	if params.AdapterID != "" {
		topic = topics.SensorSightings(params.AdapterID)
	}

	s.mu.Lock()
	s.topic = topic
	s.handler = handler
	s.onError = onError
	s.mu.Unlock()

	threshold := params.RSSIThreshold
	err := s.client.Subscribe(topic, s.qos, func(_ string, payload []byte) error {
		return s.handleMessage(payload, threshold)
	})
	if err != nil {
		s.mu.Lock()
		s.topic = ""
		s.mu.Unlock()
		return fmt.Errorf("%w: subscribing to %s: %v", ErrSourceStart, topic, err)
	}

	s.client.SetOnDisconnect(func(err error) {
		s.mu.Lock()
		cb := s.onError
		s.mu.Unlock()
		if cb != nil && err != nil {
			cb(fmt.Errorf("mqtt connection lost: %w", err))
		}
	})

	if params.AdapterID != "" {
		s.sendCommand(params.AdapterID, sensorCommand{
			Action:        "start",
			Transport:     params.Transport,
			DurationS:     params.DurationS,
			RSSIThreshold: params.RSSIThreshold,
		})
	}

	s.logger.Info("sighting source attached", "topic", topic)
	return nil
}

// Stop unsubscribes from the sensor topic and tells the sensor daemon to
// stop scanning. Idempotent.
func (s *MQTTSource) Stop() error {
	s.mu.Lock()
	topic := s.topic
	s.topic = ""
	s.handler = nil
	s.onError = nil
	s.mu.Unlock()

	if topic == "" {
		return nil
	}

	if err := s.client.Unsubscribe(topic); err != nil {
		return fmt.Errorf("unsubscribing from %s: %w", topic, err)
	}

	s.logger.Info("sighting source detached", "topic", topic)
	return nil
}

// SendStopCommand tells a specific sensor daemon to halt its radio scan.
func (s *MQTTSource) SendStopCommand(adapterID string) {
	if adapterID != "" {
		s.sendCommand(adapterID, sensorCommand{Action: "stop"})
	}
}

func (s *MQTTSource) handleMessage(payload []byte, rssiThreshold int) error {
	s.mu.Lock()
	handler := s.handler
	s.mu.Unlock()
	if handler == nil {
		return nil
	}

	var sighting tracking.Sighting
	if err := json.Unmarshal(payload, &sighting); err != nil {
		return fmt.Errorf("decoding sighting: %w", err)
	}

	if rssiThreshold != 0 && sighting.RSSI < rssiThreshold {
		return nil
	}

	handler(sighting)
	return nil
}

func (s *MQTTSource) sendCommand(adapterID string, cmd sensorCommand) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return
	}

	topic := mqtt.Topics{}.SensorCommand(adapterID)
	if err := s.client.Publish(topic, payload, s.qos, false); err != nil {
		s.logger.Warn("sensor command publish failed", "topic", topic, "error", err)
	}
}
