package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testTicketSecret = "test-ticket-secret-at-least-32-chars!"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
service:
  id: "test-node"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 8090
security:
  ticket:
    secret: "` + testTicketSecret + `"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.ID != "test-node" {
		t.Errorf("Service.ID = %q, want %q", cfg.Service.ID, "test-node")
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}
}

func TestLoad_Defaults(t *testing.T) {
	content := `
security:
  ticket:
    secret: "` + testTicketSecret + `"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Tracking.EMAAlpha != 0.3 {
		t.Errorf("Tracking.EMAAlpha = %v, want 0.3", cfg.Tracking.EMAAlpha)
	}
	if cfg.Tracking.RSSIWindow != 20 {
		t.Errorf("Tracking.RSSIWindow = %d, want 20", cfg.Tracking.RSSIWindow)
	}
	if cfg.Tracking.TxPowerRef != -59 {
		t.Errorf("Tracking.TxPowerRef = %d, want -59", cfg.Tracking.TxPowerRef)
	}
	if cfg.Scan.Transport != "auto" {
		t.Errorf("Scan.Transport = %q, want %q", cfg.Scan.Transport, "auto")
	}
	if cfg.Tracking.PersistentMinSightings != 5 {
		t.Errorf("Tracking.PersistentMinSightings = %d, want 5", cfg.Tracking.PersistentMinSightings)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(_ *Config) {},
		},
		{
			name:    "missing ticket secret",
			mutate:  func(c *Config) { c.Security.Ticket.Secret = "" },
			wantErr: "security.ticket.secret is required",
		},
		{
			name:    "short ticket secret",
			mutate:  func(c *Config) { c.Security.Ticket.Secret = "short" },
			wantErr: "at least 32 characters",
		},
		{
			name:    "bad transport",
			mutate:  func(c *Config) { c.Scan.Transport = "uart" },
			wantErr: "scan.transport",
		},
		{
			name:    "bad alpha",
			mutate:  func(c *Config) { c.Tracking.EMAAlpha = 1.5 },
			wantErr: "tracking.ema_alpha",
		},
		{
			name:    "bad window",
			mutate:  func(c *Config) { c.Tracking.RSSIWindow = 0 },
			wantErr: "tracking.rssi_window",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantErr: "api.port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Security.Ticket.Secret = testTicketSecret
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	content := `
database:
  path: "/tmp/from-file.db"
security:
  ticket:
    secret: "` + testTicketSecret + `"
`
	t.Setenv("NEARWATCH_DATABASE_PATH", "/tmp/from-env.db")

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/from-env.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
}
