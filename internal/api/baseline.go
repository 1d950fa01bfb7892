package api

import (
	"net/http"
	"time"
)

// handleGetBaseline returns the current baseline summary.
func (s *Server) handleGetBaseline(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"count": s.baseline.Count(),
	})
}

// handleSetBaseline replaces the baseline wholesale with the devices
// currently in the registry. Setting with an empty registry empties the
// baseline.
func (s *Server) handleSetBaseline(w http.ResponseWriter, r *http.Request) {
	count, err := s.registry.CaptureBaseline(r.Context())
	if err != nil {
		s.logger.Error("baseline set failed", "error", err)
		writeInternalError(w, "failed to set baseline")
		return
	}

	s.logger.Info("baseline set", "devices", count)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "success",
		"device_count": count,
		"captured_at":  time.Now().UTC().Format(time.RFC3339),
	})
}

// handleClearBaseline removes all baseline entries. Every tracked device
// becomes new relative to the baseline.
func (s *Server) handleClearBaseline(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.ClearBaseline(r.Context()); err != nil {
		s.logger.Error("baseline clear failed", "error", err)
		writeInternalError(w, "failed to clear baseline")
		return
	}

	s.logger.Info("baseline cleared")
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
	})
}
