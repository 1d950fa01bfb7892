package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nearwatch-io/nearwatch-core/internal/broadcast"
	"github.com/nearwatch-io/nearwatch-core/internal/infrastructure/config"
	"github.com/nearwatch-io/nearwatch-core/internal/infrastructure/logging"
	"github.com/nearwatch-io/nearwatch-core/internal/infrastructure/mqtt"
	"github.com/nearwatch-io/nearwatch-core/internal/scan"
	"github.com/nearwatch-io/nearwatch-core/internal/tracking"
)

// gracefulShutdownTimeout is how long Close waits for in-flight requests.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required to construct a Server.
type Deps struct {
	Config      *config.Config
	Logger      *logging.Logger
	Registry    *tracking.Registry
	Baseline    *tracking.BaselineManager
	Controller  *scan.Controller
	Broadcaster *broadcast.Broadcaster
	Sessions    scan.SessionRepository

	// MQTT is optional; when nil the health endpoint reports the broker
	// link as disabled rather than failing.
	MQTT *mqtt.Client

	Version string
}

// Server is the Nearwatch HTTP API server.
type Server struct {
	cfg    config.APIConfig
	wsCfg  config.WebSocketConfig
	secCfg config.SecurityConfig
	logger *logging.Logger

	registry    *tracking.Registry
	baseline    *tracking.BaselineManager
	controller  *scan.Controller
	broadcaster *broadcast.Broadcaster
	sessions    scan.SessionRepository
	mqtt        *mqtt.Client

	hub     *Hub
	tickets *ticketStore
	server  *http.Server
	cancel  context.CancelFunc
	version string
}

// New creates a new API server from the given dependencies.
func New(deps Deps) (*Server, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("api: config is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("api: logger is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("api: registry is required")
	}
	if deps.Baseline == nil {
		return nil, fmt.Errorf("api: baseline manager is required")
	}
	if deps.Controller == nil {
		return nil, fmt.Errorf("api: scan controller is required")
	}
	if deps.Broadcaster == nil {
		return nil, fmt.Errorf("api: broadcaster is required")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("api: session repository is required")
	}

	return &Server{
		cfg:         deps.Config.API,
		wsCfg:       deps.Config.WebSocket,
		secCfg:      deps.Config.Security,
		logger:      deps.Logger.With("component", "api"),
		registry:    deps.Registry,
		baseline:    deps.Baseline,
		controller:  deps.Controller,
		broadcaster: deps.Broadcaster,
		sessions:    deps.Sessions,
		mqtt:        deps.MQTT,
		tickets:     newTicketStore(deps.Config.Security.Ticket, deps.Config.TicketTTL()),
		version:     deps.Version,
	}, nil
}

// Start begins serving HTTP requests. It returns immediately; the
// listener runs in a background goroutine until Close is called.
func (s *Server) Start(ctx context.Context) error {
	srvCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.hub = NewHub(s.wsCfg, s.logger)
	go s.hub.Run(srvCtx)
	go s.relayEvents(srvCtx)
	go s.tickets.cleanLoop(srvCtx)

	router := s.buildRouter()

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       s.readTimeout(),
		ReadHeaderTimeout: s.readTimeout(),
		WriteTimeout:      s.writeTimeout(),
		IdleTimeout:       s.idleTimeout(),
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS", "addr", addr)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "addr", addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// relayEvents bridges the engine broadcaster to the WebSocket hub.
// One subscriber consumes engine events for the lifetime of the server
// and fans each out to hub clients subscribed to the matching channel.
func (s *Server) relayEvents(ctx context.Context) {
	sub := s.broadcaster.Subscribe()
	defer s.broadcaster.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			s.hub.Broadcast(string(ev.Type), ev.Data)
		}
	}
}

// Close gracefully shuts down the API server.
func (s *Server) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the server is able to serve requests.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if s.server == nil {
		return fmt.Errorf("api: server not started")
	}
	return nil
}

func (s *Server) readTimeout() time.Duration {
	return time.Duration(s.cfg.Timeouts.Read) * time.Second
}

func (s *Server) writeTimeout() time.Duration {
	return time.Duration(s.cfg.Timeouts.Write) * time.Second
}

func (s *Server) idleTimeout() time.Duration {
	return time.Duration(s.cfg.Timeouts.Idle) * time.Second
}
