package services

import "errors"

// Service-level failures surfaced through the Result reporter.
var (
	// ErrVolumeBusy means another ingest currently holds the volume lock.
	ErrVolumeBusy = errors.New("volume is already being processed")

	// ErrVolumeNotFound means the requested volume has no catalog row.
	ErrVolumeNotFound = errors.New("volume not found")

	// ErrPersistence wraps any database or media-store failure raised while
	// committing an ingest.
	ErrPersistence = errors.New("persistence failure")
)
