package contracts

import "errors"

// Error taxonomy shared across the pipeline. Stages wrap these with
// fmt.Errorf("...: %w", ...) so callers can branch with errors.Is.
var (
	// ErrDownload: every provider and symbol variant was exhausted
	ErrDownload = errors.New("download failed")

	// ErrValidation: series rejected by the quality gate
	ErrValidation = errors.New("validation failed")

	// ErrStorage: artifact could not be written or removed
	ErrStorage = errors.New("storage failed")

	// ErrNotFound: no artifact on disk for the requested ticker/kind/timeframe
	ErrNotFound = errors.New("artifact not found")
)
