package download

import "errors"

// Sentinel errors for the download package.
var (
	// ErrProviderBlocked is returned when the source's CDN refused access (HTTP 403).
	ErrProviderBlocked = errors.New("provider blocked")

	// ErrRateLimited is returned when the source throttled requests (HTTP 429).
	ErrRateLimited = errors.New("rate limited")

	// ErrNetwork is returned for connection, DNS and timeout failures.
	ErrNetwork = errors.New("network error")

	// ErrNotFound is returned when the source reports the media does not exist.
	ErrNotFound = errors.New("media not found")

	// ErrUnknownFailure is returned for unclassified failures and exhausted fallback chains.
	ErrUnknownFailure = errors.New("download failed")

	// ErrArtifactMissing is returned when the engine succeeded but no output file was found.
	ErrArtifactMissing = errors.New("output file not found")

	// ErrInterrupted is returned when the context was cancelled mid-download.
	ErrInterrupted = errors.New("interrupted")
)
