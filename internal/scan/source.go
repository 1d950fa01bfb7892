package scan

import (
	"context"
	"fmt"
	"strings"

	"github.com/nearwatch-io/nearwatch-core/internal/tracking"
)

// Valid transport selectors.
const (
	TransportAuto  = "auto"
	TransportLE    = "le"
	TransportBREDR = "bredr"
)

// Params configures one scan session. Zero values fall back to the
// configured defaults.
type Params struct {
	Mode          string `json:"mode,omitempty"`
	AdapterID     string `json:"adapter_id,omitempty"`
	DurationS     int    `json:"duration_s,omitempty"`
	Transport     string `json:"transport,omitempty"`
	RSSIThreshold int    `json:"rssi_threshold,omitempty"`
}

// Validate checks the parameters before a session is entered.
func (p *Params) Validate() error {
	if p.DurationS < 0 {
		return fmt.Errorf("%w: duration_s must not be negative", ErrInvalidParameters)
	}

	switch p.Transport {
	case "", TransportAuto, TransportLE, TransportBREDR:
	default:
		return fmt.Errorf("%w: transport must be auto, le, or bredr", ErrInvalidParameters)
	}

	if p.RSSIThreshold > 0 {
		return fmt.Errorf("%w: rssi_threshold must be zero or negative dBm", ErrInvalidParameters)
	}

	return nil
}

// Availability reports whether a usable sighting source exists.
type Availability struct {
	Available bool     `json:"available"`
	Issues    []string `json:"issues,omitempty"`
}

// SightingHandler receives each raw sighting produced by a source.
type SightingHandler func(tracking.Sighting)

// Source is the external sighting producer a session attaches to.
// Implementations deliver sightings asynchronously to the handler and
// report fatal production failures through onError.
type Source interface {
	// Availability checks for usable scanning capability without
	// starting a session.
	Availability(ctx context.Context) Availability

	// Start attaches the source and begins delivering sightings.
	// onError is invoked at most once if production fails fatally
	// after a successful start.
	Start(ctx context.Context, params Params, handler SightingHandler, onError func(error)) error

	// Stop detaches the source. Idempotent.
	Stop() error
}

// UnavailableSource is a Source with no scanning capability. It stands in
// when no transport is configured so the controller can still report a
// meaningful availability status.
type UnavailableSource struct {
	issues []string
}

// NewUnavailableSource creates a permanently unavailable source with the
// given availability issues.
func NewUnavailableSource(issues ...string) *UnavailableSource {
	return &UnavailableSource{issues: issues}
}

// Availability reports the source as unavailable.
func (u *UnavailableSource) Availability(_ context.Context) Availability {
	return Availability{Available: false, Issues: u.issues}
}

// Start always fails.
func (u *UnavailableSource) Start(_ context.Context, _ Params, _ SightingHandler, _ func(error)) error {
	return fmt.Errorf("%w: %s", ErrCapabilityUnavailable, strings.Join(u.issues, "; "))
}

// Stop is a no-op.
func (u *UnavailableSource) Stop() error {
	return nil
}
