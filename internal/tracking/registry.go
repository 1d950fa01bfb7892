package tracking

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Logger defines the logging interface used by the tracking components.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Publisher receives the updated record after each accepted observation.
// Implementations must not block; the registry calls this on the
// ingestion path.
type Publisher interface {
	DeviceUpdated(record *Record)
}

// RSSI bounds for sighting validation (dBm).
const (
	minValidRSSI = -127
	maxValidRSSI = 20
)

// deviceEntry is the registry's internal per-device state: the exported
// record plus the mutable estimator and classifier working state.
type deviceEntry struct {
	record Record
	signal SignalState
	timing TimingState
}

// RegistryDeps holds the dependencies for constructing a Registry.
type RegistryDeps struct {
	Estimator  *Estimator
	Classifier *Classifier
	Baseline   *BaselineManager
	Publisher  Publisher
	Logger     Logger
}

// Registry is the authoritative in-memory store of tracked device records.
//
// All mutations (Observe, Clear, CaptureBaseline, ClearBaseline) are
// serialized under a single mutation lock, and snapshots are taken under
// the same lock, so readers always see a consistent point-in-time copy.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*deviceEntry
	dropped uint64

	estimator  *Estimator
	classifier *Classifier
	baseline   *BaselineManager
	publisher  Publisher
	logger     Logger
}

// NewRegistry creates a tracking registry.
func NewRegistry(deps RegistryDeps) *Registry {
	logger := deps.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Registry{
		entries:    make(map[string]*deviceEntry),
		estimator:  deps.Estimator,
		classifier: deps.Classifier,
		baseline:   deps.Baseline,
		publisher:  deps.Publisher,
		logger:     logger,
	}
}

// Observe upserts the record for a sighting's device key: the estimator
// and classifier are applied, seen counts and timestamps advance, and
// baseline membership is refreshed. The updated record is published to
// the event broadcaster and returned as a deep copy.
//
// Malformed sightings (missing address, out-of-range RSSI, unrecognised
// enum values) are dropped with a diagnostic counter increment and
// ErrMalformedSighting; nothing propagates into the ingestion path.
func (r *Registry) Observe(s Sighting) (*Record, error) {
	if err := validateSighting(&s); err != nil {
		r.mu.Lock()
		r.dropped++
		dropped := r.dropped
		r.mu.Unlock()
		r.logger.Debug("sighting dropped", "error", err, "dropped_total", dropped)
		return nil, err
	}

	ts := s.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	key := s.Key()

	r.mu.Lock()

	entry, ok := r.entries[key]
	if !ok {
		entry = &deviceEntry{
			record: Record{
				DeviceKey:   key,
				Address:     s.Address,
				AddressType: s.AddressType,
				Protocol:    s.Protocol,
				FirstSeen:   ts,
			},
		}
		r.entries[key] = entry
	}

	rec := &entry.record

	r.classifier.RecordArrival(&entry.timing, rec.LastSeen, ts)

	rec.SeenCount++
	rec.LastSeen = ts
	rec.RSSICurrent = s.RSSI

	// Advertisement metadata can arrive on any sighting; keep the latest
	// non-empty values and the union of advertised services.
	if s.Name != "" {
		rec.Name = s.Name
	}
	if s.ManufacturerID != nil {
		id := *s.ManufacturerID
		rec.ManufacturerID = &id
		rec.ManufacturerName = ManufacturerName(id)
	}
	rec.ServiceUUIDs = mergeUUIDs(rec.ServiceUUIDs, s.ServiceUUIDs)

	stats := r.estimator.Update(&entry.signal, s.RSSI, s.TxPower)
	rec.RSSIEMA = stats.EMA
	rec.RSSIMin = stats.Min
	rec.RSSIMax = stats.Max
	rec.RSSIMedian = stats.Median
	rec.EstimatedDistanceM = stats.DistanceM
	rec.DistanceConfidence = r.estimator.Confidence(rec.SeenCount, stats.Variance)
	rec.ProximityBand = Band(rec.EstimatedDistanceM, rec.RSSIEMA)

	rec.HeuristicFlags = r.classifier.Flags(&entry.timing, rec)
	rec.InBaseline = r.baseline.Contains(key)

	out := rec.DeepCopy()

	r.mu.Unlock()

	if r.publisher != nil {
		r.publisher.DeviceUpdated(out)
	}

	return out, nil
}

// Get retrieves a record by device key.
// Returns ErrDeviceNotFound if the key has not been observed.
// The returned record is a deep copy; callers can safely modify it.
func (r *Registry) Get(deviceKey string) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[deviceKey]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return entry.record.DeepCopy(), nil
}

// Snapshot returns a consistent point-in-time copy of all records,
// ordered most-recently-seen first.
func (r *Registry) Snapshot() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() []Record {
	records := make([]Record, 0, len(r.entries))
	for _, entry := range r.entries {
		records = append(records, *entry.record.DeepCopy())
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].LastSeen.Equal(records[j].LastSeen) {
			return records[i].LastSeen.After(records[j].LastSeen)
		}
		return records[i].DeviceKey < records[j].DeviceKey
	})

	return records
}

// Clear empties all records. Baseline membership is unaffected.
func (r *Registry) Clear() {
	r.mu.Lock()
	count := len(r.entries)
	r.entries = make(map[string]*deviceEntry)
	r.mu.Unlock()

	if count > 0 {
		r.logger.Info("registry cleared", "count", count)
	}
}

// Count returns the number of tracked records.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Dropped returns the number of malformed sightings dropped so far.
func (r *Registry) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// CaptureBaseline replaces the baseline set with the device keys
// currently in the registry and marks every present record as known.
// Returns the new baseline count. The snapshot, the baseline swap, and
// the membership refresh all happen under the registry's mutation lock.
func (r *Registry) CaptureBaseline(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count, err := r.baseline.Set(ctx, r.snapshotLocked())
	if err != nil {
		return 0, err
	}

	for _, entry := range r.entries {
		entry.record.InBaseline = true
	}

	return count, nil
}

// ClearBaseline empties the baseline set and marks every record unknown.
func (r *Registry) ClearBaseline(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.baseline.Clear(ctx); err != nil {
		return err
	}

	for _, entry := range r.entries {
		entry.record.InBaseline = false
	}

	return nil
}

// validateSighting rejects sightings the registry cannot track.
func validateSighting(s *Sighting) error {
	if s.Address == "" && s.DeviceKey == "" {
		return ErrMalformedSighting
	}
	if s.RSSI < minValidRSSI || s.RSSI > maxValidRSSI {
		return ErrMalformedSighting
	}
	if s.AddressType != "" && !s.AddressType.IsValid() {
		return ErrInvalidAddressType
	}

	switch s.Protocol {
	case "":
		// Infer from address type. Classic addresses imply classic scans.
		if s.AddressType == AddressClassic {
			s.Protocol = ProtocolClassic
		} else {
			s.Protocol = ProtocolBLE
		}
	case ProtocolBLE, ProtocolClassic:
	default:
		return ErrInvalidProtocol
	}

	return nil
}

// mergeUUIDs returns the union of two UUID lists, preserving first-seen order.
func mergeUUIDs(existing, incoming []string) []string {
	if len(incoming) == 0 {
		return existing
	}

	seen := make(map[string]struct{}, len(existing))
	for _, u := range existing {
		seen[u] = struct{}{}
	}
	for _, u := range incoming {
		if _, ok := seen[u]; !ok {
			existing = append(existing, u)
			seen[u] = struct{}{}
		}
	}
	return existing
}
