package tracking

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLiteBaselineRepository implements BaselineRepository using SQLite.
type SQLiteBaselineRepository struct {
	db *sql.DB
}

// NewSQLiteBaselineRepository creates a new SQLite-backed baseline repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteBaselineRepository(db *sql.DB) *SQLiteBaselineRepository {
	return &SQLiteBaselineRepository{db: db}
}

// Replace swaps the persisted baseline wholesale for the given entries.
// The delete and inserts run in one transaction so a crash never leaves
// a half-replaced baseline.
func (r *SQLiteBaselineRepository) Replace(ctx context.Context, entries []BaselineEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning baseline transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM baseline_devices`); err != nil {
		return fmt.Errorf("deleting baseline: %w", err)
	}

	query := `
		INSERT INTO baseline_devices
			(device_key, address, address_type, protocol, name, manufacturer, captured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	for i := range entries {
		e := &entries[i]
		_, err := tx.ExecContext(ctx, query,
			e.DeviceKey, e.Address, string(e.AddressType), string(e.Protocol),
			e.Name, e.Manufacturer, e.CapturedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting baseline entry %s: %w", e.DeviceKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing baseline: %w", err)
	}
	return nil
}

// Clear removes all persisted baseline entries.
func (r *SQLiteBaselineRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM baseline_devices`); err != nil {
		return fmt.Errorf("clearing baseline: %w", err)
	}
	return nil
}

// List retrieves all persisted baseline entries.
func (r *SQLiteBaselineRepository) List(ctx context.Context) ([]BaselineEntry, error) {
	query := `
		SELECT device_key, address, address_type, protocol, name, manufacturer, captured_at
		FROM baseline_devices
		ORDER BY device_key`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying baseline: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only rows

	var entries []BaselineEntry
	for rows.Next() {
		var e BaselineEntry
		var addressType, protocol string
		err := rows.Scan(&e.DeviceKey, &e.Address, &addressType, &protocol,
			&e.Name, &e.Manufacturer, &e.CapturedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning baseline entry: %w", err)
		}
		e.AddressType = AddressType(addressType)
		e.Protocol = Protocol(protocol)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating baseline: %w", err)
	}
	return entries, nil
}
