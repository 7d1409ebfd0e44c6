package job

import (
	"github.com/vmunix/distill/internal/download"
	"github.com/vmunix/distill/internal/media"
	"github.com/vmunix/distill/internal/storage"
)

// SealItem is one artifact a job produced and delivered.
type SealItem struct {
	Extension string
	// Location is the first successful remote location, or the local path.
	Location string
	// FallbackFrom is set when a blocked video request was saved as audio.
	FallbackFrom media.Codec
	Uploads      []storage.UploadOutcome
}

// FracturedEntry is one requested format the job failed to produce.
type FracturedEntry struct {
	Extension string
	Cause     string
	Err       error
}

// Result is the report for one job.
type Result struct {
	Seals          []SealItem
	Fractures      []FracturedEntry
	OverallSuccess bool
	Warnings       []string
}

// Produced pairs a download outcome with the delivery of its artifact.
// Dispatch is ignored for failed outcomes.
type Produced struct {
	Outcome  download.Outcome
	Dispatch storage.Dispatch
}

// Aggregate folds per-format outcomes into a job result. Each outcome becomes
// exactly one seal or one fracture, keyed by the extension actually produced.
// A job succeeds when at least one seal exists.
func Aggregate(produced []Produced) Result {
	var r Result
	for _, p := range produced {
		if p.Outcome.Success {
			location := p.Dispatch.Location
			if location == "" {
				location = p.Outcome.ArtifactPath
			}
			r.Seals = append(r.Seals, SealItem{
				Extension:    p.Outcome.EffectiveExtension,
				Location:     location,
				FallbackFrom: p.Outcome.FallbackFrom,
				Uploads:      p.Dispatch.Outcomes,
			})
			continue
		}
		r.Fractures = append(r.Fractures, FracturedEntry{
			Extension: p.Outcome.EffectiveExtension,
			Cause:     p.Outcome.Cause.String(),
			Err:       p.Outcome.Err,
		})
	}
	r.OverallSuccess = len(r.Seals) > 0
	return r
}
