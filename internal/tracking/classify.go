package tracking

import (
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/nearwatch-io/nearwatch-core/internal/infrastructure/config"
)

// beaconMinIntervals is the number of inter-arrival deltas required
// before the beacon_like heuristic is considered.
const beaconMinIntervals = 3

// maxIntervalHistory bounds the rolling inter-arrival history per device.
const maxIntervalHistory = 16

// Classifier derives identity and behavioural flags for tracked devices.
//
// Like the Estimator, the classifier is stateless; per-device timing
// history is passed in on each call.
type Classifier struct {
	minSightings        int
	minSpan             time.Duration
	maxIntervalVariance float64
}

// NewClassifier creates a classifier from tracking configuration.
func NewClassifier(cfg config.TrackingConfig) *Classifier {
	return &Classifier{
		minSightings:        cfg.PersistentMinSightings,
		minSpan:             time.Duration(cfg.PersistentMinSpan) * time.Second,
		maxIntervalVariance: cfg.BeaconMaxIntervalVariance,
	}
}

// TimingState is the per-device arrival-timing history the classifier
// operates on. It lives inside the registry's internal device entry.
type TimingState struct {
	intervals []float64
}

// RecordArrival folds one arrival into the timing history. prevSeen is the
// device's previous last-seen timestamp, zero for the first sighting.
func (c *Classifier) RecordArrival(st *TimingState, prevSeen, arrival time.Time) {
	if prevSeen.IsZero() || !arrival.After(prevSeen) {
		return
	}

	st.intervals = append(st.intervals, arrival.Sub(prevSeen).Seconds())
	if len(st.intervals) > maxIntervalHistory {
		st.intervals = st.intervals[len(st.intervals)-maxIntervalHistory:]
	}
}

// Flags computes the heuristic flag set for a device.
//
//   - random_address: the address type rotates, or the address carries the
//     locally-administered bit without a declared random type.
//   - persistent: seen at least minSightings times spanning at least minSpan.
//   - beacon_like: inter-arrival intervals are regular (low variance) with
//     at least three deltas observed.
func (c *Classifier) Flags(st *TimingState, rec *Record) []Flag {
	var flags []Flag

	if IsRandomizedAddress(rec.Address, rec.AddressType) {
		flags = append(flags, FlagRandomAddress)
	}

	if rec.SeenCount >= c.minSightings && rec.LastSeen.Sub(rec.FirstSeen) >= c.minSpan {
		flags = append(flags, FlagPersistent)
	}

	if len(st.intervals) >= beaconMinIntervals {
		if stat.Variance(st.intervals, nil) <= c.maxIntervalVariance {
			flags = append(flags, FlagBeaconLike)
		}
	}

	return flags
}

// IsRandomizedAddress reports whether a device address is randomized.
// A declared address type is authoritative; for sightings without one,
// the locally-administered bit (0x02) of the first address octet is
// checked as a fallback.
func IsRandomizedAddress(address string, addressType AddressType) bool {
	if addressType.IsRandom() {
		return true
	}
	if addressType == AddressPublic || addressType == AddressClassic {
		return false
	}

	first, _, ok := strings.Cut(address, ":")
	if !ok || len(first) != 2 {
		return false
	}

	octet, err := strconv.ParseUint(first, 16, 8)
	if err != nil {
		return false
	}

	return octet&0x02 != 0
}
