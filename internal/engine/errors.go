package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the engine package.
var (
	// ErrNotInstalled is returned when the engine binary cannot be found.
	ErrNotInstalled = errors.New("extraction engine not installed")

	// ErrEmptyOutput is returned when a JSON query produced nothing.
	ErrEmptyOutput = errors.New("engine returned empty output")
)

// errorPrefix starts the lines yt-dlp uses to report why a run failed.
const errorPrefix = "ERROR:"

// ExecError is a failed engine run with its captured output.
// Output holds raw progress and log lines and is meant for debugging only.
type ExecError struct {
	Err    error
	Output string
}

func (e *ExecError) Error() string {
	msg := e.Message()
	if msg == "" {
		return fmt.Sprintf("yt-dlp failed: %v", e.Err)
	}
	return fmt.Sprintf("yt-dlp failed: %v: %s", e.Err, msg)
}

// Message returns the ERROR: lines of the captured output, joined by
// newlines, or "" when the engine printed none.
func (e *ExecError) Message() string {
	var lines []string
	for _, line := range strings.Split(e.Output, "\n") {
		if line = strings.TrimSpace(line); strings.HasPrefix(line, errorPrefix) {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
