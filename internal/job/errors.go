package job

import "errors"

var (
	// ErrInvalidURL is returned for a job URL without an http(s) scheme and host.
	ErrInvalidURL = errors.New("invalid url")

	// ErrConfiguration is returned when a job cannot start with the current configuration.
	ErrConfiguration = errors.New("configuration error")

	// ErrEmptyBatch is returned when a batch has no jobs to run.
	ErrEmptyBatch = errors.New("no urls to process")

	// ErrJobPanic marks a job that panicked and was recovered.
	ErrJobPanic = errors.New("job panicked")
)
