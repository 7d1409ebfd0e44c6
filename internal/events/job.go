package events

import "fmt"

// Entity types
const (
	EntityBatch = "batch"
	EntityJob   = "job"
)

// Event type constants
const (
	EventBatchStarted   = "batch.started"
	EventBatchCompleted = "batch.completed"
	EventJobStarted     = "job.started"
	EventJobCompleted   = "job.completed"
	EventJobFailed      = "job.failed"
	EventJobInterrupted = "job.interrupted"
	EventJobFallback    = "job.fallback"
)

// JobEntityID identifies job index within run runID.
func JobEntityID(runID string, index int) string {
	return fmt.Sprintf("%s/%d", runID, index)
}

// BatchStarted is emitted once before the first job of a run.
type BatchStarted struct {
	BaseEvent
	RunID string `json:"run_id"`
	Total int    `json:"total"`
}

// BatchCompleted is emitted after the last job, including interrupted runs.
type BatchCompleted struct {
	BaseEvent
	RunID       string `json:"run_id"`
	Total       int    `json:"total"`
	Succeeded   int    `json:"succeeded"`
	Failed      int    `json:"failed"`
	Interrupted bool   `json:"interrupted"`
}

// JobStarted is emitted before a job resolves anything.
type JobStarted struct {
	BaseEvent
	RunID   string `json:"run_id"`
	Index   int    `json:"index"` // 1-based
	Total   int    `json:"total"`
	Preview string `json:"preview"` // host and short path, no query
}

// Seal is one artifact a job produced.
type Seal struct {
	Extension    string `json:"extension"`
	Location     string `json:"location"`
	FallbackFrom string `json:"fallback_from,omitempty"`
}

// Fracture is one format a job failed to produce.
type Fracture struct {
	Extension string `json:"extension"`
	Cause     string `json:"cause"`
}

// JobCompleted is emitted when a job produced at least one artifact.
type JobCompleted struct {
	BaseEvent
	RunID     string     `json:"run_id"`
	Index     int        `json:"index"`
	Seals     []Seal     `json:"seals"`
	Fractures []Fracture `json:"fractures,omitempty"`
	Warnings  []string   `json:"warnings,omitempty"`
}

// JobFailed is emitted when a job produced nothing.
type JobFailed struct {
	BaseEvent
	RunID     string     `json:"run_id"`
	Index     int        `json:"index"`
	Reason    string     `json:"reason,omitempty"`
	Fractures []Fracture `json:"fractures,omitempty"`
}

// JobInterrupted is emitted when cancellation stopped a job.
type JobInterrupted struct {
	BaseEvent
	RunID string `json:"run_id"`
	Index int    `json:"index"`
}

// JobFallback is emitted when a blocked video request was saved as audio.
type JobFallback struct {
	BaseEvent
	RunID     string `json:"run_id"`
	Index     int    `json:"index"`
	Requested string `json:"requested"` // video codec
	Produced  string `json:"produced"`  // audio extension
}
