// Package job runs the per-URL pipeline: resolve, download, inscribe, upload,
// and report. Batches run jobs one after another.
package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/vmunix/distill/internal/batchinput"
	"github.com/vmunix/distill/internal/config"
	"github.com/vmunix/distill/internal/download"
	"github.com/vmunix/distill/internal/engine"
	"github.com/vmunix/distill/internal/events"
	"github.com/vmunix/distill/internal/inscribe"
	"github.com/vmunix/distill/internal/media"
	"github.com/vmunix/distill/internal/storage"
)

// previewLength caps the path part of URL previews in events and logs.
const previewLength = 40

// Overrides are the per-run choices shared by every job of an invocation.
type Overrides struct {
	Formats      media.Overrides
	Destinations []storage.Destination
}

// Job is one URL to process.
type Job struct {
	URL       string
	OutputDir string // empty uses paths.output_dir
	Overrides Overrides

	// RunID, Index and Total place the job in its run for events.
	// A zero RunID gets a fresh one; Index and Total default to 1.
	RunID string
	Index int
	Total int
}

// Deps are the collaborators a Runner drives.
type Deps struct {
	Config     config.Provider
	Engine     engine.Engine
	Settings   download.Settings
	Inscriber  inscribe.Inscriber // nil skips inscription
	Dispatcher *storage.Dispatcher
	Events     events.Publisher   // nil disables events
	Progress   engine.ProgressSink // nil discards engine progress
}

// Runner executes single jobs.
type Runner struct {
	cfg          config.Provider
	engine       engine.Engine
	orchestrator *download.Orchestrator
	inscriber    inscribe.Inscriber
	dispatcher   *storage.Dispatcher
	events       events.Publisher
	progress     engine.ProgressSink
	log          *slog.Logger
}

// NewRunner creates a runner.
func NewRunner(d Deps, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "job")
	dispatcher := d.Dispatcher
	if dispatcher == nil {
		dispatcher = storage.NewDispatcher(nil, log)
	}
	return &Runner{
		cfg:          d.Config,
		engine:       d.Engine,
		orchestrator: download.NewOrchestrator(d.Engine, d.Settings, log),
		inscriber:    d.Inscriber,
		dispatcher:   dispatcher,
		events:       d.Events,
		progress:     d.Progress,
		log:          log,
	}
}

// Run executes one job without pacing. The error is non-nil for validation
// and configuration failures, and for interrupts; download failures are
// reported as fractures in the Result.
func (r *Runner) Run(ctx context.Context, j Job) (Result, error) {
	return r.run(ctx, j, engine.Pacing{})
}

func (r *Runner) run(ctx context.Context, j Job, pacing engine.Pacing) (Result, error) {
	j = normalize(j)
	preview := batchinput.Preview(j.URL, previewLength)
	r.publish(ctx, &events.JobStarted{
		BaseEvent: r.base(events.EventJobStarted, j),
		RunID:     j.RunID,
		Index:     j.Index,
		Total:     j.Total,
		Preview:   preview,
	})

	res, err := r.execute(ctx, j, pacing, preview)
	switch {
	case errors.Is(err, download.ErrInterrupted):
		r.publish(ctx, &events.JobInterrupted{BaseEvent: r.base(events.EventJobInterrupted, j), RunID: j.RunID, Index: j.Index})
	case err != nil:
		r.publish(ctx, &events.JobFailed{BaseEvent: r.base(events.EventJobFailed, j), RunID: j.RunID, Index: j.Index, Reason: err.Error()})
	case res.OverallSuccess:
		r.publish(ctx, &events.JobCompleted{
			BaseEvent: r.base(events.EventJobCompleted, j),
			RunID:     j.RunID,
			Index:     j.Index,
			Seals:     sealRecords(res.Seals),
			Fractures: fractureRecords(res.Fractures),
			Warnings:  res.Warnings,
		})
	default:
		r.publish(ctx, &events.JobFailed{
			BaseEvent: r.base(events.EventJobFailed, j),
			RunID:     j.RunID,
			Index:     j.Index,
			Fractures: fractureRecords(res.Fractures),
		})
	}
	return res, err
}

func (r *Runner) execute(ctx context.Context, j Job, pacing engine.Pacing, preview string) (Result, error) {
	if !batchinput.IsURLLike(j.URL) {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidURL, j.URL)
	}
	outputDir, err := r.outputDir(j)
	if err != nil {
		return Result{}, err
	}

	specs := media.ResolveFormats(j.Overrides.Formats, r.cfg)
	dests := storage.ResolveDestinations(j.Overrides.Destinations, r.cfg)
	for _, w := range dests.Warnings {
		r.log.Warn("destination adjusted", "url", preview, "warning", w)
	}

	src := media.DetectSource(j.URL)
	stem := media.OutputStem(outputDir, src, r.title(ctx, j.URL))
	if err := ctx.Err(); err != nil {
		return Result{Warnings: dests.Warnings}, interrupted(err)
	}
	r.log.Info("processing", "url", preview, "formats", len(specs), "destinations", len(dests.Destinations))

	produced := make([]Produced, 0, len(specs))
	for _, spec := range specs {
		out, err := r.orchestrator.Produce(ctx, download.Request{
			URL:        j.URL,
			OutputDir:  outputDir,
			OutputStem: stem,
			Spec:       spec,
			Pacing:     pacing,
			Progress:   r.progress,
		})
		if err != nil {
			return partial(produced, dests.Warnings), err
		}

		p := Produced{Outcome: out}
		if out.Success {
			if out.FallbackFrom != "" {
				r.publish(ctx, &events.JobFallback{
					BaseEvent: r.base(events.EventJobFallback, j),
					RunID:     j.RunID,
					Index:     j.Index,
					Requested: string(out.FallbackFrom),
					Produced:  out.EffectiveExtension,
				})
			}
			r.inscribe(ctx, out.ArtifactPath, j.URL)

			p.Dispatch, err = r.dispatcher.Dispatch(ctx, storage.Artifact{
				Path:     out.ArtifactPath,
				Name:     filepath.Base(out.ArtifactPath),
				Category: src.Folder(),
			}, dests.Remote())
			if err != nil {
				produced = append(produced, p)
				return partial(produced, dests.Warnings), interrupted(err)
			}
		} else {
			r.log.Warn("format failed", "url", preview, "format", spec, "cause", out.Cause)
			r.log.Debug("format failure detail", "url", preview, "format", spec, "error", out.Err)
		}
		produced = append(produced, p)
	}

	res := Aggregate(produced)
	res.Warnings = dests.Warnings
	return res, nil
}

func (r *Runner) outputDir(j Job) (string, error) {
	dir := j.OutputDir
	if dir == "" && r.cfg != nil {
		dir = r.cfg.Get("paths.output_dir", "")
	}
	if dir == "" {
		return "", fmt.Errorf("%w: paths.output_dir is not set", ErrConfiguration)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("%w: output directory: %w", ErrConfiguration, err)
	}
	return dir, nil
}

// title asks the engine for the media title, falling back to one derived from
// the URL. Metadata failures never fail the job.
func (r *Runner) title(ctx context.Context, url string) string {
	md, err := r.engine.ExtractMetadata(ctx, url)
	if err == nil && md != nil && md.Title != "" {
		return md.Title
	}
	if err != nil && ctx.Err() == nil {
		r.log.Debug("metadata lookup failed, naming from url", "error", err)
	}
	return media.TitleFromURL(url)
}

func (r *Runner) inscribe(ctx context.Context, path, url string) {
	if r.inscriber == nil {
		return
	}
	if err := r.inscriber.Write(ctx, path, url); err != nil {
		r.log.Warn("metadata inscription failed", "path", path, "error", err)
	}
}

func (r *Runner) base(eventType string, j Job) events.BaseEvent {
	return events.NewBaseEvent(eventType, events.EntityJob, events.JobEntityID(j.RunID, j.Index))
}

// publish delivers e even after cancellation so interrupted runs are recorded.
func (r *Runner) publish(ctx context.Context, e events.Event) {
	if r.events == nil {
		return
	}
	if err := r.events.Publish(context.WithoutCancel(ctx), e); err != nil {
		r.log.Warn("publish event failed", "type", e.EventType(), "error", err)
	}
}

func normalize(j Job) Job {
	if j.RunID == "" {
		j.RunID = uuid.NewString()
	}
	if j.Index < 1 {
		j.Index = 1
	}
	if j.Total < j.Index {
		j.Total = j.Index
	}
	return j
}

func partial(produced []Produced, warnings []string) Result {
	res := Aggregate(produced)
	res.Warnings = warnings
	return res
}

func interrupted(err error) error {
	if errors.Is(err, download.ErrInterrupted) {
		return err
	}
	return fmt.Errorf("%w: %w", download.ErrInterrupted, err)
}

func sealRecords(seals []SealItem) []events.Seal {
	out := make([]events.Seal, len(seals))
	for i, s := range seals {
		out[i] = events.Seal{Extension: s.Extension, Location: s.Location, FallbackFrom: string(s.FallbackFrom)}
	}
	return out
}

func fractureRecords(fractures []FracturedEntry) []events.Fracture {
	out := make([]events.Fracture, len(fractures))
	for i, f := range fractures {
		out[i] = events.Fracture{Extension: f.Extension, Cause: f.Cause}
	}
	return out
}
