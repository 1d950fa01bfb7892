package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nearwatch-io/nearwatch-core/internal/infrastructure/config"
)

// ticketStore issues and validates short-lived WebSocket tickets.
//
// Tickets are HMAC-signed JWTs carrying a unique ID. A ticket is
// single-use: validation consumes its ID, so a replayed ticket fails
// even within its lifetime.
type ticketStore struct {
	secret []byte
	ttl    time.Duration

	// used holds consumed ticket IDs until they would have expired anyway.
	used map[string]time.Time
	mu   sync.Mutex
}

// newTicketStore creates a ticket store from the security configuration.
func newTicketStore(cfg config.TicketConfig, ttl time.Duration) *ticketStore {
	return &ticketStore{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		used:   make(map[string]time.Time),
	}
}

// issue creates a new signed ticket.
func (t *ticketStore) issue() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"jti": uuid.NewString(),
		"sub": "ws",
		"iat": now.Unix(),
		"exp": now.Add(t.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing ticket: %w", err)
	}
	return signed, nil
}

// validate checks a ticket's signature and expiry, then consumes it.
// Returns false for invalid, expired, or previously used tickets.
func (t *ticketStore) validate(ticket string) bool {
	token, err := jwt.Parse(ticket, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, seen := t.used[jti]; seen {
		return false
	}
	t.used[jti] = time.Now().Add(t.ttl)
	return true
}

// cleanExpired removes consumed ticket IDs whose tickets have expired.
func (t *ticketStore) cleanExpired() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	for jti, expiry := range t.used {
		if now.After(expiry) {
			delete(t.used, jti)
		}
	}
}

// cleanLoop prunes consumed ticket IDs periodically until the context is cancelled.
func (t *ticketStore) cleanLoop(ctx context.Context) {
	ticker := time.NewTicker(t.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.cleanExpired()
		}
	}
}

// handleWSTicket generates a single-use WebSocket authentication ticket.
// The client passes the ticket as a query parameter when opening the
// WebSocket connection, keeping the API key out of URLs.
func (s *Server) handleWSTicket(w http.ResponseWriter, _ *http.Request) {
	ticket, err := s.tickets.issue()
	if err != nil {
		s.logger.Error("failed to issue websocket ticket", "error", err)
		writeInternalError(w, "failed to issue ticket")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ticket":     ticket,
		"expires_in": int(s.tickets.ttl.Seconds()),
	})
}
