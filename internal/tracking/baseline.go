package tracking

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// BaselineEntry is one persisted member of the baseline set.
type BaselineEntry struct {
	DeviceKey    string      `json:"device_key"`
	Address      string      `json:"address"`
	AddressType  AddressType `json:"address_type"`
	Protocol     Protocol    `json:"protocol"`
	Name         string      `json:"name,omitempty"`
	Manufacturer string      `json:"manufacturer,omitempty"`
	CapturedAt   time.Time   `json:"captured_at"`
}

// BaselineRepository defines the interface for baseline persistence.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type BaselineRepository interface {
	// Replace swaps the persisted baseline wholesale for the given entries.
	Replace(ctx context.Context, entries []BaselineEntry) error

	// Clear removes all persisted baseline entries.
	Clear(ctx context.Context) error

	// List retrieves all persisted baseline entries.
	List(ctx context.Context) ([]BaselineEntry, error)
}

// BaselineManager holds the "known devices" set against which tracked
// records are diffed. Membership changes only via Set/Clear, never via
// observation, and survives registry clears.
//
// The in-memory set answers membership checks in O(1); the repository
// keeps the set across restarts.
type BaselineManager struct {
	mu     sync.RWMutex
	keys   map[string]struct{}
	repo   BaselineRepository
	logger Logger
}

// NewBaselineManager creates a baseline manager backed by the given repository.
func NewBaselineManager(repo BaselineRepository) *BaselineManager {
	return &BaselineManager{
		keys:   make(map[string]struct{}),
		repo:   repo,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the baseline manager.
func (b *BaselineManager) SetLogger(logger Logger) {
	b.logger = logger
}

// Load populates the in-memory set from the repository.
// This should be called on application startup.
func (b *BaselineManager) Load(ctx context.Context) error {
	entries, err := b.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading baseline: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.keys = make(map[string]struct{}, len(entries))
	for _, e := range entries {
		b.keys[e.DeviceKey] = struct{}{}
	}

	b.logger.Info("baseline loaded", "count", len(entries))
	return nil
}

// Set replaces the baseline set wholesale with the given records and
// persists the new set. Returns the new member count. Full replacement,
// never merge.
func (b *BaselineManager) Set(ctx context.Context, records []Record) (int, error) {
	now := time.Now().UTC()
	entries := make([]BaselineEntry, 0, len(records))
	for i := range records {
		r := &records[i]
		entries = append(entries, BaselineEntry{
			DeviceKey:    r.DeviceKey,
			Address:      r.Address,
			AddressType:  r.AddressType,
			Protocol:     r.Protocol,
			Name:         r.Name,
			Manufacturer: r.ManufacturerName,
			CapturedAt:   now,
		})
	}

	if err := b.repo.Replace(ctx, entries); err != nil {
		return 0, fmt.Errorf("persisting baseline: %w", err)
	}

	b.mu.Lock()
	b.keys = make(map[string]struct{}, len(entries))
	for _, e := range entries {
		b.keys[e.DeviceKey] = struct{}{}
	}
	count := len(b.keys)
	b.mu.Unlock()

	b.logger.Info("baseline set", "count", count)
	return count, nil
}

// Clear empties the baseline set in memory and in the repository.
func (b *BaselineManager) Clear(ctx context.Context) error {
	if err := b.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clearing baseline: %w", err)
	}

	b.mu.Lock()
	b.keys = make(map[string]struct{})
	b.mu.Unlock()

	b.logger.Info("baseline cleared")
	return nil
}

// Contains reports whether a device key is in the baseline set.
func (b *BaselineManager) Contains(deviceKey string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.keys[deviceKey]
	return ok
}

// Count returns the current baseline member count.
func (b *BaselineManager) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.keys)
}
