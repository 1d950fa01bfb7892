package scan

import "errors"

// Domain errors for the scan package.
var (
	// ErrInvalidParameters is returned when start parameters fail validation.
	// The session is not entered.
	ErrInvalidParameters = errors.New("scan: invalid parameters")

	// ErrCapabilityUnavailable is returned when no usable sighting source
	// exists. Non-fatal: the session stays Idle.
	ErrCapabilityUnavailable = errors.New("scan: capability unavailable")

	// ErrSourceStart is returned when the external source fails to attach.
	ErrSourceStart = errors.New("scan: source start failed")
)
