// Nearwatch Core - Wireless Proximity Engine
//
// This is the main entry point for the Nearwatch Core application.
// Nearwatch turns raw radio sightings from external sensor daemons into
// tracked device records with distance estimates, proximity bands, and
// baseline diffing, exposed over a REST and WebSocket API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nearwatch-io/nearwatch-core/migrations"

	"github.com/nearwatch-io/nearwatch-core/internal/api"
	"github.com/nearwatch-io/nearwatch-core/internal/broadcast"
	"github.com/nearwatch-io/nearwatch-core/internal/infrastructure/config"
	"github.com/nearwatch-io/nearwatch-core/internal/infrastructure/database"
	"github.com/nearwatch-io/nearwatch-core/internal/infrastructure/influxdb"
	"github.com/nearwatch-io/nearwatch-core/internal/infrastructure/logging"
	"github.com/nearwatch-io/nearwatch-core/internal/infrastructure/mqtt"
	"github.com/nearwatch-io/nearwatch-core/internal/scan"
	"github.com/nearwatch-io/nearwatch-core/internal/tracking"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// eventQueueSize is the per-subscriber buffer in the event broadcaster.
const eventQueueSize = 64

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Nearwatch Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Connect to MQTT broker (optional; without it no sighting source exists)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Warn("MQTT disabled; scanning unavailable until a broker is configured")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Baseline: persisted across restarts, loaded before tracking begins
	baseline := tracking.NewBaselineManager(tracking.NewSQLiteBaselineRepository(db.DB))
	baseline.SetLogger(log)
	if loadErr := baseline.Load(ctx); loadErr != nil {
		return fmt.Errorf("loading baseline: %w", loadErr)
	}
	log.Info("baseline loaded", "devices", baseline.Count())

	// Event broadcaster feeds both the WebSocket hub and any internal consumers
	broadcaster := broadcast.New(eventQueueSize, log)
	defer broadcaster.Close()

	// Tracking registry
	registry := tracking.NewRegistry(tracking.RegistryDeps{
		Estimator:  tracking.NewEstimator(cfg.Tracking),
		Classifier: tracking.NewClassifier(cfg.Tracking),
		Baseline:   baseline,
		Publisher:  broadcaster,
		Logger:     log,
	})

	// Sighting source: MQTT-backed when a broker is configured
	var source scan.Source = scan.NewUnavailableSource("mqtt disabled")
	if mqttClient != nil {
		source = scan.NewMQTTSource(mqttClient, byte(cfg.MQTT.QoS), log)
	}

	// Telemetry sink is optional
	var telemetry scan.Telemetry
	if influxClient != nil {
		telemetry = influxClient
	}

	sessions := scan.NewSQLiteSessionRepository(db.DB)
	controller := scan.NewController(scan.ControllerDeps{
		Registry:    registry,
		Baseline:    baseline,
		Source:      source,
		Broadcaster: broadcaster,
		Sessions:    sessions,
		Telemetry:   telemetry,
		Logger:      log,
		Defaults:    cfg.Scan,
	})
	defer controller.Shutdown(context.Background())

	// API server
	apiServer, err := api.New(api.Deps{
		Config:      cfg,
		Logger:      log,
		Registry:    registry,
		Baseline:    baseline,
		Controller:  controller,
		Broadcaster: broadcaster,
		Sessions:    sessions,
		MQTT:        mqttClient,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. Scan controller (stops any active session)
	// 3. Broadcaster
	// 4. InfluxDB / MQTT (if enabled)
	// 5. Database

	log.Info("Nearwatch Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses NEARWATCH_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("NEARWATCH_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// Optional clients may be nil when their subsystem is disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
