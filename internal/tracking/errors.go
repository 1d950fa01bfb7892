package tracking

import "errors"

// Domain errors for the tracking package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, tracking.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a device key does not exist in the registry.
	ErrDeviceNotFound = errors.New("tracking: device not found")

	// ErrMalformedSighting is returned when a sighting is missing its address
	// or carries an out-of-range RSSI. Malformed sightings are dropped at the
	// registry boundary and counted, never propagated into the ingestion path.
	ErrMalformedSighting = errors.New("tracking: malformed sighting")

	// ErrInvalidAddressType is returned when an address type value is not recognised.
	ErrInvalidAddressType = errors.New("tracking: invalid address type")

	// ErrInvalidProtocol is returned when a protocol value is not recognised.
	ErrInvalidProtocol = errors.New("tracking: invalid protocol")
)
