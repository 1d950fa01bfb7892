package api

import (
	"net/http"
	"strconv"
)

// Session listing bounds.
const (
	defaultSessionLimit = 20
	maxSessionLimit     = 200
)

// handleListSessions returns recent scan sessions, newest first.
// An optional ?limit= parameter caps the result size.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := defaultSessionLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxSessionLimit {
		limit = maxSessionLimit
	}

	sessions, err := s.sessions.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("session list failed", "error", err)
		writeInternalError(w, "failed to list sessions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}
