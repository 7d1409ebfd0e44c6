package inscribe

import "errors"

var (
	// ErrNotInstalled is returned when ffmpeg or ffprobe cannot be found.
	ErrNotInstalled = errors.New("ffmpeg not installed")

	// ErrNotInscribed is returned when a file carries no source URL tag.
	ErrNotInscribed = errors.New("no source url tag")

	// ErrNoFile is returned when the target is missing or not a regular file.
	ErrNoFile = errors.New("not a regular file")
)
