package job_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vmunix/distill/internal/config"
	"github.com/vmunix/distill/internal/engine"
	"github.com/vmunix/distill/internal/events"
)

// testLogger returns a discard logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig parses extra TOML on top of a temp output directory.
func testConfig(t *testing.T, extra string) *config.Config {
	t.Helper()
	cfg, err := config.Parse(fmt.Sprintf("[paths]\noutput_dir = %q\n\n[history]\npath = \"\"\n\n%s", t.TempDir(), extra))
	require.NoError(t, err)
	return cfg
}

// artifactFor writes the file an engine run would produce for req.
func artifactFor(t *testing.T, req engine.Request) (*engine.Result, error) {
	t.Helper()
	ext := req.Options.MergeFormat
	if req.Options.ExtractAudio {
		ext = req.Options.AudioFormat
	}
	path := req.OutputStem + "." + ext
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("media"), 0644))
	return &engine.Result{ArtifactPath: path}, nil
}

// recorder is an events.Publisher that keeps everything it is given.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

func (r *recorder) last(eventType string) events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].EventType() == eventType {
			return r.events[i]
		}
	}
	return nil
}

func writeFile(path string) error {
	return os.WriteFile(path, []byte("x"), 0644)
}
