package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vmunix/distill/internal/events"
	"github.com/vmunix/distill/internal/session"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs",
	Long: `Show recent batch and job events from the run history.

Examples:
  distill history                  # Last 20 events
  distill history -n 100           # Last 100 events
  distill history --since 24h      # Everything from the last day
  distill history --run <run-id>   # One run, batch and job events
  distill history --run <run-id>/2 # One job of a run
  distill history --prune 720h     # Drop events older than 30 days`,
	Args: cobra.NoArgs,
	RunE: runHistoryCmd,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	historyCmd.Flags().Duration("prune", 0, "Remove events older than this duration")
	historyCmd.Flags().Duration("since", 0, "Show every event newer than this duration")
	historyCmd.Flags().String("run", "", "Show the events of one run (or run/index for one job)")
}

type historyEntry struct {
	Time   time.Time `json:"time"`
	Type   string    `json:"type"`
	Entity string    `json:"entity"`
	Detail string    `json:"detail,omitempty"`
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	prune, _ := cmd.Flags().GetDuration("prune")
	since, _ := cmd.Flags().GetDuration("since")
	runID, _ := cmd.Flags().GetString("run")

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	ctx := cmd.Context()
	s, err := session.Open(ctx, cfg.History.Path, newLogger(cfg.Log.Level))
	if err != nil {
		return err
	}
	defer s.Close()

	h := s.History()
	if h == nil {
		fmt.Fprintln(w, "Run history is disabled (history.path is empty)")
		return nil
	}

	if prune > 0 {
		n, err := h.Prune(ctx, prune)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Removed %d events older than %s\n", n, prune)
		return nil
	}

	var raw []events.RawEvent
	switch {
	case runID != "":
		raw, err = runEvents(ctx, h, runID)
	case since > 0:
		raw, err = h.Since(ctx, time.Now().Add(-since))
	default:
		raw, err = h.Recent(ctx, limit)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}
	entries := historyEntries(raw, events.DefaultRegistry())

	if jsonOutput {
		printJSON(w, entries)
		return nil
	}
	printHistory(w, entries)
	return nil
}

// entityReader looks up the persisted events of one entity.
type entityReader interface {
	ForEntity(ctx context.Context, entityType, entityID string) ([]events.RawEvent, error)
}

// runEvents returns the events of a run, oldest first. A "run/index" id
// selects a single job. For a whole run, the job count comes from its
// batch.started event; a run without one is a single job.
func runEvents(ctx context.Context, h entityReader, runID string) ([]events.RawEvent, error) {
	if strings.Contains(runID, "/") {
		return h.ForEntity(ctx, events.EntityJob, runID)
	}

	out, err := h.ForEntity(ctx, events.EntityBatch, runID)
	if err != nil {
		return nil, err
	}

	total := 1
	reg := events.DefaultRegistry()
	for _, r := range out {
		if r.EventType != events.EventBatchStarted {
			continue
		}
		if e, err := reg.Unmarshal(r); err == nil {
			total = max(total, e.(*events.BatchStarted).Total)
		}
	}

	for i := 1; i <= total; i++ {
		jobs, err := h.ForEntity(ctx, events.EntityJob, events.JobEntityID(runID, i))
		if err != nil {
			return nil, err
		}
		out = append(out, jobs...)
	}

	slices.SortFunc(out, func(a, b events.RawEvent) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func historyEntries(raw []events.RawEvent, reg *events.Registry) []historyEntry {
	out := make([]historyEntry, 0, len(raw))
	for _, r := range raw {
		entry := historyEntry{Time: r.OccurredAt, Type: r.EventType, Entity: r.EntityType + "/" + r.EntityID}
		if e, err := reg.Unmarshal(r); err == nil {
			entry.Detail = describeEvent(e)
		}
		out = append(out, entry)
	}
	return out
}

func describeEvent(e events.Event) string {
	switch e := e.(type) {
	case *events.BatchStarted:
		return fmt.Sprintf("%d urls", e.Total)
	case *events.BatchCompleted:
		s := fmt.Sprintf("%d succeeded, %d failed", e.Succeeded, e.Failed)
		if e.Interrupted {
			s += ", interrupted"
		}
		return s
	case *events.JobStarted:
		return e.Preview
	case *events.JobCompleted:
		exts := make([]string, len(e.Seals))
		for i, s := range e.Seals {
			exts[i] = s.Extension
		}
		return "saved " + strings.Join(exts, ", ")
	case *events.JobFailed:
		if e.Reason != "" {
			return e.Reason
		}
		causes := make([]string, len(e.Fractures))
		for i, f := range e.Fractures {
			causes[i] = f.Extension + ": " + f.Cause
		}
		return strings.Join(causes, "; ")
	case *events.JobFallback:
		return fmt.Sprintf("%s blocked, saved %s", e.Requested, e.Produced)
	default:
		return ""
	}
}

func printHistory(w io.Writer, entries []historyEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No history")
		return
	}

	fmt.Fprintf(w, "  %-12s %-18s %-20s %s\n", "TIME", "TYPE", "ENTITY", "DETAIL")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 70))
	for _, e := range entries {
		fmt.Fprintf(w, "  %-12s %-18s %-20s %s\n", formatTimeAgo(e.Time), e.Type, truncatePath(e.Entity, 20), e.Detail)
	}
}
