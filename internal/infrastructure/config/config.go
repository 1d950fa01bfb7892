package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Nearwatch Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Scan      ScanConfig      `yaml:"scan"`
	Tracking  TrackingConfig  `yaml:"tracking"`
	Security  SecurityConfig  `yaml:"security"`
}

// ServiceConfig contains deployment-specific identification.
type ServiceConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
// The broker carries sighting events published by the external radio daemon.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	CORS     CORSConfig       `yaml:"cors"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
// Empty lists fall back to permissive defaults suitable for development.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings for signal telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// ScanConfig contains defaults for scan sessions. Individual start requests
// may override any of these per session.
type ScanConfig struct {
	// AdapterID names the radio adapter the external sighting source should use
	// (e.g. "hci0"). Empty selects the source's default.
	AdapterID string `yaml:"adapter_id"`

	// Transport restricts discovery: "auto", "le", or "bredr".
	Transport string `yaml:"transport"`

	// RSSIThreshold drops sightings weaker than this value (dBm).
	// Zero disables filtering.
	RSSIThreshold int `yaml:"rssi_threshold"`

	// DefaultDuration auto-stops a session after this many seconds.
	// Zero means scan until stopped.
	DefaultDuration int `yaml:"default_duration"`
}

// TrackingConfig contains signal estimation and classification parameters.
type TrackingConfig struct {
	// EMAAlpha is the smoothing factor for the RSSI exponential moving average.
	EMAAlpha float64 `yaml:"ema_alpha"`

	// RSSIWindow is the number of recent samples retained per device for
	// min/max/median/variance statistics.
	RSSIWindow int `yaml:"rssi_window"`

	// TxPowerRef is the assumed transmit power at 1 m (dBm) when the
	// advertisement does not carry its own TX power.
	TxPowerRef int `yaml:"tx_power_ref"`

	// PathLossExponent is the environment factor in the log-distance model
	// (2.0 free space, higher indoors).
	PathLossExponent float64 `yaml:"path_loss_exponent"`

	// PersistentMinSightings and PersistentMinSpan gate the "persistent"
	// heuristic flag: a device must be sighted at least MinSightings times
	// spanning at least MinSpan seconds.
	PersistentMinSightings int `yaml:"persistent_min_sightings"`
	PersistentMinSpan      int `yaml:"persistent_min_span"`

	// BeaconMaxIntervalVariance flags a device as beacon-like when the
	// variance of its inter-arrival intervals (seconds squared) stays below
	// this threshold with at least three intervals observed.
	BeaconMaxIntervalVariance float64 `yaml:"beacon_max_interval_variance"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	// APIKey protects the REST API. Requests must carry it in X-API-Key.
	APIKey string `yaml:"api_key"`

	Ticket TicketConfig `yaml:"ticket"`
}

// TicketConfig contains WebSocket ticket signing settings.
type TicketConfig struct {
	Secret string `yaml:"secret"`
	TTL    int    `yaml:"ttl"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: NEARWATCH_SECTION_KEY
// For example: NEARWATCH_DATABASE_PATH, NEARWATCH_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			ID:   "nearwatch-001",
			Name: "Nearwatch",
		},
		Database: DatabaseConfig{
			Path:        "./data/nearwatch.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Enabled: true,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "nearwatch-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Scan: ScanConfig{
			AdapterID:     "hci0",
			Transport:     "auto",
			RSSIThreshold: -100,
		},
		Tracking: TrackingConfig{
			EMAAlpha:                  0.3,
			RSSIWindow:                20,
			TxPowerRef:                -59,
			PathLossExponent:          2.0,
			PersistentMinSightings:    5,
			PersistentMinSpan:         60,
			BeaconMaxIntervalVariance: 0.25,
		},
		Security: SecurityConfig{
			Ticket: TicketConfig{
				TTL: 60,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: NEARWATCH_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("NEARWATCH_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("NEARWATCH_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("NEARWATCH_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("NEARWATCH_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("NEARWATCH_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// InfluxDB
	if v := os.Getenv("NEARWATCH_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Security (always override in production)
	if v := os.Getenv("NEARWATCH_API_KEY"); v != "" {
		cfg.Security.APIKey = v
	}
	if v := os.Getenv("NEARWATCH_TICKET_SECRET"); v != "" {
		cfg.Security.Ticket.Secret = v
	}
}

// minTicketSecretLength is the minimum accepted ticket signing secret length.
// Short secrets make the HMAC trivially brute-forceable.
const minTicketSecretLength = 32

// Validate checks the configuration for errors and security issues.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Service.ID == "" {
		errs = append(errs, "service.id is required")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	switch c.Scan.Transport {
	case "auto", "le", "bredr":
	default:
		errs = append(errs, "scan.transport must be auto, le, or bredr")
	}

	if c.Tracking.EMAAlpha <= 0 || c.Tracking.EMAAlpha > 1 {
		errs = append(errs, "tracking.ema_alpha must be in (0, 1]")
	}
	if c.Tracking.RSSIWindow < 1 {
		errs = append(errs, "tracking.rssi_window must be at least 1")
	}
	if c.Tracking.PathLossExponent <= 0 {
		errs = append(errs, "tracking.path_loss_exponent must be positive")
	}

	if c.Security.Ticket.Secret == "" {
		errs = append(errs, "security.ticket.secret is required (set NEARWATCH_TICKET_SECRET environment variable)")
	} else if len(c.Security.Ticket.Secret) < minTicketSecretLength {
		errs = append(errs, "security.ticket.secret must be at least 32 characters")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// ScanDefaultDuration returns the configured auto-stop duration.
// Zero means no auto-stop.
func (c *Config) ScanDefaultDuration() time.Duration {
	return time.Duration(c.Scan.DefaultDuration) * time.Second
}

// TicketTTL returns the WebSocket ticket lifetime as a Duration.
func (c *Config) TicketTTL() time.Duration {
	return time.Duration(c.Security.Ticket.TTL) * time.Second
}
