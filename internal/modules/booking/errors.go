package booking

import "errors"

var (
	ErrPermissionDenied    = errors.New("permission denied")
	ErrAlreadyAssigned     = errors.New("booking already assigned")
	ErrNotFound            = errors.New("booking not found")
	ErrValidationFailed    = errors.New("validation failed")
	ErrUpstreamUnavailable = errors.New("booking store unavailable")
	// ErrEnrichmentFailed never fails a parent operation; it is logged and
	// reported as summary_generated=false.
	ErrEnrichmentFailed = errors.New("summary enrichment failed")
)
