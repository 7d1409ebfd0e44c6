package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/vmunix/distill/internal/download"
	"github.com/vmunix/distill/internal/engine"
	"github.com/vmunix/distill/internal/events"
)

// Summary counts the jobs a batch attempted. Succeeded+Failed == Total; an
// interrupted job counts as failed, and jobs never started are Remaining.
type Summary struct {
	RunID       string
	Total       int
	Succeeded   int
	Failed      int
	Remaining   int
	Interrupted bool
}

// Batch runs jobs sequentially with shared overrides and pacing.
type Batch struct {
	runner *Runner
	pacing engine.Pacing
	log    *slog.Logger
}

// NewBatch creates a batch executor. pacing applies to every engine call of
// the batch and to nothing else.
func NewBatch(runner *Runner, pacing engine.Pacing, log *slog.Logger) *Batch {
	if log == nil {
		log = slog.Default()
	}
	return &Batch{runner: runner, pacing: pacing, log: log.With("component", "batch")}
}

// Run processes urls in order. Job failures, including panics, are counted
// and never stop the batch. An interrupt stops it and is returned as
// download.ErrInterrupted alongside the partial summary.
func (b *Batch) Run(ctx context.Context, urls []string, o Overrides) (Summary, error) {
	if len(urls) == 0 {
		return Summary{}, ErrEmptyBatch
	}

	s := Summary{RunID: uuid.NewString()}
	b.runner.publish(ctx, &events.BatchStarted{
		BaseEvent: events.NewBaseEvent(events.EventBatchStarted, events.EntityBatch, s.RunID),
		RunID:     s.RunID,
		Total:     len(urls),
	})
	b.log.Info("batch started", "run_id", s.RunID, "jobs", len(urls), "pacing", b.pacing.Enabled())

	var runErr error
	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			s.Interrupted = true
			runErr = interrupted(err)
			break
		}

		res, err := b.runJob(ctx, Job{
			URL:       url,
			Overrides: o,
			RunID:     s.RunID,
			Index:     i + 1,
			Total:     len(urls),
		})
		s.Total++

		if errors.Is(err, download.ErrInterrupted) || ctx.Err() != nil {
			s.Failed++
			s.Interrupted = true
			runErr = interrupted(firstErr(err, ctx.Err()))
			break
		}
		if err != nil || !res.OverallSuccess {
			s.Failed++
			continue
		}
		s.Succeeded++
	}
	s.Remaining = len(urls) - s.Total

	b.runner.publish(ctx, &events.BatchCompleted{
		BaseEvent:   events.NewBaseEvent(events.EventBatchCompleted, events.EntityBatch, s.RunID),
		RunID:       s.RunID,
		Total:       s.Total,
		Succeeded:   s.Succeeded,
		Failed:      s.Failed,
		Interrupted: s.Interrupted,
	})
	b.log.Info("batch complete", "run_id", s.RunID, "succeeded", s.Succeeded, "failed", s.Failed,
		"total", s.Total, "interrupted", s.Interrupted)
	return s, runErr
}

// runJob runs one job, turning a panic into an ErrJobPanic failure.
func (b *Batch) runJob(ctx context.Context, j Job) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			b.log.Error("job panicked", "index", j.Index, "panic", p, "stack", string(debug.Stack()))
			err = fmt.Errorf("%w: %v", ErrJobPanic, p)
			b.runner.publish(ctx, &events.JobFailed{
				BaseEvent: events.NewBaseEvent(events.EventJobFailed, events.EntityJob, events.JobEntityID(j.RunID, j.Index)),
				RunID:     j.RunID,
				Index:     j.Index,
				Reason:    err.Error(),
			})
			res = Result{}
		}
	}()
	return b.runner.run(ctx, j, b.pacing)
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
