package tracking

import (
	"fmt"
	"strings"
	"time"
)

// AddressType categorizes how a device addresses itself on air.
type AddressType string

// AddressType constants.
const (
	AddressPublic           AddressType = "public"
	AddressRandomStatic     AddressType = "random_static"
	AddressRandomResolvable AddressType = "random_resolvable"
	AddressRandomNonResolv  AddressType = "random_nonresolvable"
	AddressClassic          AddressType = "classic"
)

// AllAddressTypes returns all valid address type values.
func AllAddressTypes() []AddressType {
	return []AddressType{
		AddressPublic, AddressRandomStatic, AddressRandomResolvable,
		AddressRandomNonResolv, AddressClassic,
	}
}

// IsValid reports whether the address type is a recognised value.
func (a AddressType) IsValid() bool {
	switch a {
	case AddressPublic, AddressRandomStatic, AddressRandomResolvable,
		AddressRandomNonResolv, AddressClassic:
		return true
	}
	return false
}

// IsRandom reports whether the address type rotates or is otherwise
// not tied to a fixed hardware identity.
func (a AddressType) IsRandom() bool {
	switch a {
	case AddressRandomStatic, AddressRandomResolvable, AddressRandomNonResolv:
		return true
	}
	return false
}

// Protocol identifies the radio protocol a device was sighted on.
type Protocol string

// Protocol constants.
const (
	ProtocolBLE     Protocol = "ble"
	ProtocolClassic Protocol = "classic"
)

// IsValid reports whether the protocol is a recognised value.
func (p Protocol) IsValid() bool {
	return p == ProtocolBLE || p == ProtocolClassic
}

// ProximityBand is a coarse distance category derived from signal state.
type ProximityBand string

// ProximityBand constants.
const (
	BandImmediate ProximityBand = "immediate"
	BandNear      ProximityBand = "near"
	BandFar       ProximityBand = "far"
	BandUnknown   ProximityBand = "unknown"
)

// Flag is a heuristic classification flag attached to a device record.
type Flag string

// Flag constants.
const (
	// FlagRandomAddress marks devices using a rotating or random address.
	FlagRandomAddress Flag = "random_address"

	// FlagPersistent marks devices sighted repeatedly over a sustained span.
	FlagPersistent Flag = "persistent"

	// FlagBeaconLike marks devices advertising at regular intervals.
	FlagBeaconLike Flag = "beacon_like"
)

// Sighting is a single raw observation event from the external radio source.
//
// DeviceKey may be supplied by sources that correlate rotating addresses;
// when empty the registry derives it from Address and AddressType.
type Sighting struct {
	DeviceKey      string      `json:"device_key,omitempty"`
	Address        string      `json:"address"`
	AddressType    AddressType `json:"address_type"`
	Protocol       Protocol    `json:"protocol"`
	RSSI           int         `json:"rssi"`
	Timestamp      time.Time   `json:"timestamp"`
	Name           string      `json:"name,omitempty"`
	ManufacturerID *int        `json:"manufacturer_id,omitempty"`
	TxPower        *int        `json:"tx_power,omitempty"`
	ServiceUUIDs   []string    `json:"service_uuids,omitempty"`
}

// Key returns the stable identity string this sighting is tracked under.
// Sources that correlate rotating addresses may pre-populate DeviceKey;
// otherwise the key is derived from the address and address type.
func (s *Sighting) Key() string {
	if s.DeviceKey != "" {
		return s.DeviceKey
	}
	addr := strings.ToLower(strings.ReplaceAll(s.Address, ":", "-"))
	return fmt.Sprintf("%s_%s", addr, s.AddressType)
}

// Record is the authoritative tracked state for one device key.
type Record struct {
	// Identity
	DeviceKey   string      `json:"device_key"`
	Address     string      `json:"address"`
	AddressType AddressType `json:"address_type"`
	Protocol    Protocol    `json:"protocol"`

	// Advertisement metadata
	Name             string   `json:"name,omitempty"`
	ManufacturerID   *int     `json:"manufacturer_id,omitempty"`
	ManufacturerName string   `json:"manufacturer_name,omitempty"`
	ServiceUUIDs     []string `json:"service_uuids,omitempty"`

	// Signal state
	RSSICurrent int     `json:"rssi_current"`
	RSSIEMA     float64 `json:"rssi_ema"`
	RSSIMin     int     `json:"rssi_min"`
	RSSIMax     int     `json:"rssi_max"`
	RSSIMedian  float64 `json:"rssi_median"`

	// Distance estimation
	EstimatedDistanceM float64       `json:"estimated_distance_m"`
	DistanceConfidence float64       `json:"distance_confidence"`
	ProximityBand      ProximityBand `json:"proximity_band"`

	// Classification
	HeuristicFlags []Flag `json:"heuristic_flags"`

	// Baseline membership. Set only by baseline checks, never by observation state.
	InBaseline bool `json:"in_baseline"`

	// Observation history
	SeenCount int       `json:"seen_count"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// HasFlag reports whether the record carries the given heuristic flag.
func (r *Record) HasFlag(flag Flag) bool {
	for _, f := range r.HeuristicFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// DeepCopy creates a complete independent copy of the Record.
// All slice and pointer fields are cloned so modifications to the copy
// do not affect the original. This is essential for snapshot isolation.
func (r *Record) DeepCopy() *Record {
	if r == nil {
		return nil
	}

	out := *r

	if r.ManufacturerID != nil {
		id := *r.ManufacturerID
		out.ManufacturerID = &id
	}
	if r.ServiceUUIDs != nil {
		out.ServiceUUIDs = make([]string, len(r.ServiceUUIDs))
		copy(out.ServiceUUIDs, r.ServiceUUIDs)
	}
	if r.HeuristicFlags != nil {
		out.HeuristicFlags = make([]Flag, len(r.HeuristicFlags))
		copy(out.HeuristicFlags, r.HeuristicFlags)
	}

	return &out
}
