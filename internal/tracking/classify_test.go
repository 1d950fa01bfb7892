package tracking

import (
	"testing"
	"time"
)

func TestIsRandomizedAddress(t *testing.T) {
	tests := []struct {
		name        string
		address     string
		addressType AddressType
		want        bool
	}{
		{"random static", "C4:12:34:56:78:9A", AddressRandomStatic, true},
		{"random resolvable", "52:12:34:56:78:9A", AddressRandomResolvable, true},
		{"random nonresolvable", "12:34:56:78:9A:BC", AddressRandomNonResolv, true},
		{"public", "AA:BB:CC:DD:EE:FF", AddressPublic, false},
		{"public with local bit", "C6:BB:CC:DD:EE:FF", AddressPublic, false},
		{"classic", "AA:BB:CC:DD:EE:FF", AddressClassic, false},
		{"untyped with local bit", "C6:BB:CC:DD:EE:FF", "", true},
		{"untyped without local bit", "A8:BB:CC:DD:EE:FF", "", false},
		{"untyped malformed address", "zz:zz", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsRandomizedAddress(tt.address, tt.addressType)
			if got != tt.want {
				t.Errorf("IsRandomizedAddress(%q, %q) = %v, want %v",
					tt.address, tt.addressType, got, tt.want)
			}
		})
	}
}

func TestClassifier_PersistentFlag(t *testing.T) {
	c := NewClassifier(testTrackingConfig())
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		seenCount int
		span      time.Duration
		want      bool
	}{
		{"below count and span", 2, 10 * time.Second, false},
		{"enough count short span", 10, 30 * time.Second, false},
		{"enough span few sightings", 3, 5 * time.Minute, false},
		{"both thresholds met", 5, 60 * time.Second, true},
		{"well past thresholds", 50, 10 * time.Minute, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &Record{
				Address:     "AA:BB:CC:DD:EE:FF",
				AddressType: AddressPublic,
				SeenCount:   tt.seenCount,
				FirstSeen:   base,
				LastSeen:    base.Add(tt.span),
			}
			flags := c.Flags(&TimingState{}, rec)

			got := false
			for _, f := range flags {
				if f == FlagPersistent {
					got = true
				}
			}
			if got != tt.want {
				t.Errorf("persistent = %v, want %v (count=%d span=%v)",
					got, tt.want, tt.seenCount, tt.span)
			}
		})
	}
}

func TestClassifier_BeaconLikeFlag(t *testing.T) {
	c := NewClassifier(testTrackingConfig())
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	rec := &Record{Address: "AA:BB:CC:DD:EE:FF", AddressType: AddressPublic}

	var st TimingState

	// Two regular intervals are not enough for the heuristic.
	prev := base
	for i := 1; i <= 2; i++ {
		next := base.Add(time.Duration(i) * time.Second)
		c.RecordArrival(&st, prev, next)
		prev = next
	}
	if hasFlag(c.Flags(&st, rec), FlagBeaconLike) {
		t.Error("beacon_like set with fewer than three intervals")
	}

	// A third regular interval triggers it.
	next := base.Add(3 * time.Second)
	c.RecordArrival(&st, prev, next)
	if !hasFlag(c.Flags(&st, rec), FlagBeaconLike) {
		t.Error("beacon_like not set for regular one-second intervals")
	}
}

func TestClassifier_IrregularIntervalsNotBeaconLike(t *testing.T) {
	c := NewClassifier(testTrackingConfig())
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	rec := &Record{Address: "AA:BB:CC:DD:EE:FF", AddressType: AddressPublic}

	var st TimingState
	prev := base
	for _, offset := range []time.Duration{
		1 * time.Second,
		8 * time.Second,
		11 * time.Second,
		30 * time.Second,
	} {
		next := base.Add(offset)
		c.RecordArrival(&st, prev, next)
		prev = next
	}

	if hasFlag(c.Flags(&st, rec), FlagBeaconLike) {
		t.Error("beacon_like set for irregular intervals")
	}
}

func TestClassifier_RecordArrivalIgnoresFirstSighting(t *testing.T) {
	c := NewClassifier(testTrackingConfig())

	var st TimingState
	c.RecordArrival(&st, time.Time{}, time.Now())

	if len(st.intervals) != 0 {
		t.Errorf("intervals = %d after first sighting, want 0", len(st.intervals))
	}
}

func TestManufacturerName(t *testing.T) {
	if got := ManufacturerName(0x004C); got != "Apple" {
		t.Errorf("ManufacturerName(0x004C) = %q, want Apple", got)
	}
	if got := ManufacturerName(0x02E5); got != "Espressif" {
		t.Errorf("ManufacturerName(0x02E5) = %q, want Espressif", got)
	}
	if got := ManufacturerName(0xFFFF); got != "" {
		t.Errorf("ManufacturerName(0xFFFF) = %q, want empty", got)
	}
}

func hasFlag(flags []Flag, want Flag) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}
