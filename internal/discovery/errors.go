// internal/discovery/errors.go
package discovery

import "errors"

var (
	// ErrListingAbsent means the stable-name directory does not exist
	ErrListingAbsent = errors.New("device listing absent")
	// ErrResolutionFailure means a stable name could not be resolved to a device node
	ErrResolutionFailure = errors.New("device path resolution failed")
	// ErrMetadataUnavailable means no identity attributes could be read for a device
	ErrMetadataUnavailable = errors.New("device metadata unavailable")
	// ErrValidationFailed means a device produced no protocol signature during the probe window
	ErrValidationFailed = errors.New("device validation failed")
	// ErrNoCandidates means enumeration produced no devices at all
	ErrNoCandidates = errors.New("no serial ports detected")
)
