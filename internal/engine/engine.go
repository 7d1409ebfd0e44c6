// Package engine drives the external extraction engine (yt-dlp).
package engine

//go:generate mockgen -source=engine.go -destination=mocks/engine.go -package=mocks

import (
	"context"
)

// Engine fetches and transcodes media from a URL.
type Engine interface {
	// ExtractMetadata returns title and duration without downloading.
	ExtractMetadata(ctx context.Context, url string) (*Metadata, error)
	// Download produces one artifact. A failed run returns an *ExecError
	// carrying the engine's raw output.
	Download(ctx context.Context, req Request, sink ProgressSink) (*Result, error)
	// ExpandPlaylist returns the entry URLs of a playlist, or the URL itself.
	ExpandPlaylist(ctx context.Context, url string) ([]string, error)
}

// Metadata describes a source before download.
type Metadata struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Duration       float64 `json:"duration"`
	DurationString string  `json:"duration_string"`
	Extractor      string  `json:"extractor"`
}

// Pacing spreads requests out over a batch. The zero value disables it.
// Values are seconds.
type Pacing struct {
	SleepRequests    float64
	SleepInterval    float64
	MaxSleepInterval float64
}

// Enabled reports whether any delay is requested.
func (p Pacing) Enabled() bool {
	return p.SleepRequests > 0 || p.SleepInterval > 0
}

// Options are the per-attempt engine settings.
type Options struct {
	Format            string // stream selector passed to -f
	ExtractAudio      bool
	AudioFormat       string
	AudioQuality      string
	MergeFormat       string
	PostprocessorArgs string
	Retries           int
	NoOverwrites      bool
	EmbedMetadata     bool
	TempDir           string
	Pacing            Pacing
}

// Request is one engine invocation.
type Request struct {
	URL        string
	OutputStem string // output path without extension
	Options    Options
}

// Result is a successful engine run.
type Result struct {
	// ArtifactPath is the final file path the engine reported, if any.
	ArtifactPath string
}

// Progress is one parsed line of engine output.
type Progress struct {
	Stage      string // download, extract, merge, done, or empty for other lines
	Percent    float64
	HasPercent bool
	Filename   string
	Line       string
}

// ProgressSink receives progress as the engine runs. Calls are serialized.
type ProgressSink func(Progress)
