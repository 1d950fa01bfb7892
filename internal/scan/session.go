package scan

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Session is one recorded scan session.
type Session struct {
	ID            string     `json:"id"`
	AdapterID     string     `json:"adapter_id"`
	Transport     string     `json:"transport"`
	RSSIThreshold int        `json:"rssi_threshold"`
	StartedAt     time.Time  `json:"started_at"`
	StoppedAt     *time.Time `json:"stopped_at,omitempty"`
	DeviceCount   int        `json:"device_count"`
	StopReason    string     `json:"stop_reason,omitempty"`
}

// SessionRepository defines the interface for scan session persistence.
type SessionRepository interface {
	// Create records a newly started session.
	Create(ctx context.Context, session *Session) error

	// Finish records a session's outcome.
	Finish(ctx context.Context, id string, stoppedAt time.Time, deviceCount int, reason string) error

	// List retrieves the most recent sessions, newest first.
	List(ctx context.Context, limit int) ([]Session, error)
}

// SQLiteSessionRepository implements SessionRepository using SQLite.
type SQLiteSessionRepository struct {
	db *sql.DB
}

// NewSQLiteSessionRepository creates a new SQLite-backed session repository.
func NewSQLiteSessionRepository(db *sql.DB) *SQLiteSessionRepository {
	return &SQLiteSessionRepository{db: db}
}

// Create records a newly started session.
func (r *SQLiteSessionRepository) Create(ctx context.Context, session *Session) error {
	query := `
		INSERT INTO scan_sessions
			(id, adapter_id, transport, rssi_threshold, started_at, device_count, stop_reason)
		VALUES (?, ?, ?, ?, ?, 0, '')`

	_, err := r.db.ExecContext(ctx, query,
		session.ID, session.AdapterID, session.Transport,
		session.RSSIThreshold, session.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting scan session: %w", err)
	}
	return nil
}

// Finish records a session's outcome.
func (r *SQLiteSessionRepository) Finish(ctx context.Context, id string, stoppedAt time.Time, deviceCount int, reason string) error {
	query := `
		UPDATE scan_sessions
		SET stopped_at = ?, device_count = ?, stop_reason = ?
		WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query, stoppedAt, deviceCount, reason, id)
	if err != nil {
		return fmt.Errorf("finishing scan session: %w", err)
	}
	return nil
}

// List retrieves the most recent sessions, newest first.
func (r *SQLiteSessionRepository) List(ctx context.Context, limit int) ([]Session, error) {
	query := `
		SELECT id, adapter_id, transport, rssi_threshold, started_at,
			stopped_at, device_count, stop_reason
		FROM scan_sessions
		ORDER BY started_at DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying scan sessions: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only rows

	var sessions []Session
	for rows.Next() {
		var s Session
		var stoppedAt sql.NullTime
		err := rows.Scan(&s.ID, &s.AdapterID, &s.Transport, &s.RSSIThreshold,
			&s.StartedAt, &stoppedAt, &s.DeviceCount, &s.StopReason)
		if err != nil {
			return nil, fmt.Errorf("scanning scan session: %w", err)
		}
		if stoppedAt.Valid {
			t := stoppedAt.Time
			s.StoppedAt = &t
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scan sessions: %w", err)
	}
	return sessions, nil
}
