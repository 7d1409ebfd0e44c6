package storage

import "errors"

// Sentinel errors for the storage package.
var (
	// ErrUploadFailed is returned when a remote destination rejects an artifact.
	ErrUploadFailed = errors.New("upload failed")

	// ErrNotConfigured is returned when an uploader is used without bucket or credentials.
	ErrNotConfigured = errors.New("destination not configured")

	// ErrNoUploader is returned when a resolved destination has no registered uploader.
	ErrNoUploader = errors.New("no uploader for destination")

	// ErrUnknownDestination is returned when a destination name cannot be parsed.
	ErrUnknownDestination = errors.New("unknown destination")
)
