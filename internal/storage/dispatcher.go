package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// Artifact is a produced file ready to be delivered.
type Artifact struct {
	Path     string // local path
	Name     string // suggested remote file name
	Category string // remote folder, e.g. "youtube"
}

// UploadOutcome records one delivery attempt.
type UploadOutcome struct {
	Destination Destination
	Success     bool
	Location    string
	Err         error
}

// Dispatch collects every delivery attempt for one artifact.
type Dispatch struct {
	Outcomes []UploadOutcome
	// Location is the first successful remote location, or the local path.
	Location string
}

// Dispatcher sends artifacts to every resolved remote destination.
type Dispatcher struct {
	uploaders map[Destination]Uploader
	log       *slog.Logger
}

// NewDispatcher creates a dispatcher. Destinations without an uploader fail on use.
func NewDispatcher(uploaders map[Destination]Uploader, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	if uploaders == nil {
		uploaders = make(map[Destination]Uploader)
	}
	return &Dispatcher{uploaders: uploaders, log: log}
}

// Dispatch uploads a to each remote destination in order. Every destination is
// attempted; a failure is recorded and never stops the next one.
// The returned error is non-nil only when ctx was cancelled.
func (d *Dispatcher) Dispatch(ctx context.Context, a Artifact, dests []Destination) (Dispatch, error) {
	result := Dispatch{Location: a.Path}
	located := false

	for _, dest := range dests {
		if !dest.IsRemote() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		outcome := d.upload(ctx, a, dest)
		result.Outcomes = append(result.Outcomes, outcome)

		if outcome.Success {
			d.log.Info("upload complete", "destination", dest, "location", outcome.Location)
			if !located {
				result.Location = outcome.Location
				located = true
			}
			continue
		}

		if err := ctx.Err(); err != nil {
			return result, err
		}
		d.log.Warn("upload failed", "destination", dest, "path", a.Path, "error", outcome.Err)
	}

	return result, nil
}

func (d *Dispatcher) upload(ctx context.Context, a Artifact, dest Destination) UploadOutcome {
	outcome := UploadOutcome{Destination: dest}

	u, ok := d.uploaders[dest]
	if !ok || u == nil {
		outcome.Err = fmt.Errorf("%w: %s", ErrNoUploader, dest)
		return outcome
	}
	if !u.IsConfigured() {
		outcome.Err = fmt.Errorf("%s: %w", dest, ErrNotConfigured)
		return outcome
	}

	location, err := u.Upload(ctx, a.Path, a.Name, a.Category)
	if err != nil {
		outcome.Err = fmt.Errorf("%w: %s: %w", ErrUploadFailed, dest, err)
		return outcome
	}

	outcome.Success = true
	outcome.Location = location
	return outcome
}
