package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vmunix/distill/internal/engine"
	"github.com/vmunix/distill/internal/media"
)

// Request asks for one FormatSpec to be produced.
type Request struct {
	URL        string
	OutputDir  string
	OutputStem string // output path without extension
	Spec       media.FormatSpec
	Pacing     engine.Pacing
	Progress   engine.ProgressSink
}

// Outcome is the result of producing one FormatSpec.
type Outcome struct {
	Spec         media.FormatSpec
	Success      bool
	ArtifactPath string
	// EffectiveExtension is the extension actually produced, which is the
	// audio extension when a video request fell back to audio.
	EffectiveExtension string
	// FallbackFrom is the requested video codec when audio was produced instead.
	FallbackFrom media.Codec
	Strategy     string
	Cause        Cause
	Err          error
}

// Orchestrator produces artifacts by walking each spec's strategy chain.
type Orchestrator struct {
	engine   engine.Engine
	settings Settings
	locator  *Locator
	log      *slog.Logger
}

// NewOrchestrator creates an orchestrator over eng.
func NewOrchestrator(eng engine.Engine, settings Settings, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		engine:   eng,
		settings: settings,
		locator:  NewLocator(),
		log:      log,
	}
}

// Produce runs the strategy chain for req.Spec until one succeeds, a failure
// is terminal, or the chain is exhausted. The returned error is non-nil only
// when ctx was cancelled; every other failure is reported in the Outcome.
func (o *Orchestrator) Produce(ctx context.Context, req Request) (Outcome, error) {
	out := Outcome{Spec: req.Spec, EffectiveExtension: req.Spec.Extension()}
	chain := o.settings.Chain(req.Spec)

	var firstErr, lastErr error
	for i, s := range chain {
		if err := ctx.Err(); err != nil {
			return o.interrupted(out, err)
		}
		if i > 0 {
			o.log.Info("trying fallback strategy", "url", req.URL, "requested", req.Spec, "strategy", s.Name)
		}

		opts := s.Options
		opts.Pacing = req.Pacing
		res, err := o.engine.Download(ctx, engine.Request{
			URL:        req.URL,
			OutputStem: req.OutputStem,
			Options:    opts,
		}, req.Progress)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return o.interrupted(out, ctxErr)
		}

		if err == nil {
			return o.succeed(out, req, s, res), nil
		}

		o.log.Debug("engine failed", "url", req.URL, "strategy", s.Name, "error", err)
		var execErr *engine.ExecError
		if errors.As(err, &execErr) {
			o.log.Debug("engine output", "url", req.URL, "strategy", s.Name, "output", execErr.Output)
		}
		if firstErr == nil {
			firstErr = err
		}
		lastErr = err

		if s.Classify(err) == VerdictTerminal {
			out.Cause = NormalizeCause(failureText(err))
			out.Err = fmt.Errorf("%w: %w", out.Cause.Err(), err)
			out.Strategy = s.Name
			return out, nil
		}
	}

	// Exhausted: report the original cause, classify as unknown.
	out.Cause = NormalizeCause(failureText(firstErr))
	out.Err = fmt.Errorf("%w: fallback exhausted: %w", ErrUnknownFailure, lastErr)
	out.Strategy = chain[len(chain)-1].Name
	o.log.Warn("all strategies failed", "url", req.URL, "requested", req.Spec, "cause", out.Cause)
	return out, nil
}

func (o *Orchestrator) succeed(out Outcome, req Request, s Strategy, res *engine.Result) Outcome {
	out.Strategy = s.Name
	out.EffectiveExtension = s.Spec.Extension()

	var reported string
	if res != nil {
		reported = res.ArtifactPath
	}
	path, err := o.locator.Locate(req.OutputDir, req.OutputStem, out.EffectiveExtension, reported)
	if err != nil {
		out.Cause = CauseGeneric
		out.Err = err
		o.log.Warn("engine reported success but no artifact found", "url", req.URL, "stem", req.OutputStem)
		return out
	}

	out.Success = true
	out.ArtifactPath = path
	if s.Spec.Kind != req.Spec.Kind {
		out.FallbackFrom = req.Spec.Codec
		o.log.Info("video blocked, saved audio instead", "url", req.URL, "requested", req.Spec, "produced", s.Spec)
	}
	return out
}

func (o *Orchestrator) interrupted(out Outcome, err error) (Outcome, error) {
	out.Err = fmt.Errorf("%w: %w", ErrInterrupted, err)
	return out, out.Err
}
