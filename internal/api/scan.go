package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/nearwatch-io/nearwatch-core/internal/scan"
)

// handleScanStart starts a scan session.
//
// The request body is optional; an empty body starts a session with the
// configured defaults. Starting while a session is already active is not
// an error: the active session's ID is returned with status
// "already_scanning".
func (s *Server) handleScanStart(w http.ResponseWriter, r *http.Request) {
	var params scan.Params
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	result, err := s.controller.Start(r.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, scan.ErrInvalidParameters):
			writeBadRequest(w, err.Error())
		case errors.Is(err, scan.ErrCapabilityUnavailable), errors.Is(err, scan.ErrSourceStart):
			writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, err.Error())
		default:
			s.logger.Error("scan start failed", "error", err)
			writeInternalError(w, "failed to start scan")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleScanStop stops the active scan session. Stopping when no session
// is active returns status "stopped" with an empty session ID.
func (s *Server) handleScanStop(w http.ResponseWriter, r *http.Request) {
	result := s.controller.Stop(r.Context())
	writeJSON(w, http.StatusOK, result)
}

// handleScanStatus returns the current controller state.
func (s *Server) handleScanStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.Status())
}

// handleScanAvailability reports whether scanning capability is usable
// without starting a session.
func (s *Server) handleScanAvailability(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.Availability(r.Context()))
}
