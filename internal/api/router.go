package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// WS ticket requires the API key; the ticket itself then
			// authenticates the WebSocket upgrade.
			r.Post("/auth/ws-ticket", s.handleWSTicket)

			// Scan session control
			r.Route("/scan", func(r chi.Router) {
				r.Post("/start", s.handleScanStart)
				r.Post("/stop", s.handleScanStop)
				r.Get("/status", s.handleScanStatus)
				r.Get("/availability", s.handleScanAvailability)
			})

			// Baseline management
			r.Route("/baseline", func(r chi.Router) {
				r.Get("/", s.handleGetBaseline)
				r.Post("/set", s.handleSetBaseline)
				r.Post("/clear", s.handleClearBaseline)
			})

			// Tracked device registry
			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)
				r.Get("/export", s.handleExportDevices)
				r.Get("/{key}", s.handleGetDevice)
			})

			// Scan session history
			r.Get("/sessions", s.handleListSessions)

			// WebSocket (auth via ticket, validated in handler)
			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	mqttStatus := "disabled"
	if s.mqtt != nil {
		mqttStatus = "disconnected"
		if err := s.mqtt.HealthCheck(r.Context()); err == nil {
			mqttStatus = "connected"
		}
	}

	status := s.controller.Status()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  s.version,
		"mqtt":     mqttStatus,
		"scanning": status.IsScanning,
	})
}
