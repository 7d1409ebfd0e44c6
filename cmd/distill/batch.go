package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vmunix/distill/internal/batchinput"
	"github.com/vmunix/distill/internal/download"
	"github.com/vmunix/distill/internal/events"
	"github.com/vmunix/distill/internal/job"
)

var batchCmd = &cobra.Command{
	Use:   "batch [file...]",
	Short: "Download every URL from files, stdin, or playlists",
	Long: `Download a list of URLs one after another with request pacing.

Text files hold URLs separated by newlines or commas; lines starting with
#, ; or ] are comments. Files ending in .csv are scanned cell by cell.
A failed URL never stops the batch.

Examples:
  distill batch urls.txt more.csv
  pbpaste | distill batch --paste
  distill batch --playlist https://www.youtube.com/playlist?list=PL123`,
	RunE: runBatchCmd,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	addJobFlags(batchCmd)
	batchCmd.Flags().Bool("paste", false, "Read URLs from stdin")
	batchCmd.Flags().StringSlice("playlist", nil, "Expand a playlist URL into its entries")
}

func runBatchCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	o, err := overridesFromFlags(cmd, a.cfg, a.log)
	if err != nil {
		return err
	}

	urls, err := collectURLs(ctx, cmd, args, a.engine.ExpandPlaylist)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return job.ErrEmptyBatch
	}

	b := job.NewBatch(a.runner(ctx, nil), a.pacing(), a.log)
	p := newBatchPrinter(cmd.OutOrStdout(), jsonOutput)

	var summary job.Summary
	err = a.session.Run(ctx, p.handle, func(ctx context.Context) error {
		var runErr error
		summary, runErr = b.Run(ctx, urls, o)
		return runErr
	})
	if err != nil && !errors.Is(err, download.ErrInterrupted) {
		return err
	}

	if !jsonOutput {
		if a.session.History() == nil {
			summary.RunID = ""
		}
		printSummary(cmd.OutOrStdout(), summary)
	}
	return err
}

type expandFunc func(ctx context.Context, url string) ([]string, error)

// collectURLs gathers batch input from files, stdin and playlists, in that
// order, without duplicates.
func collectURLs(ctx context.Context, cmd *cobra.Command, files []string, expand expandFunc) ([]string, error) {
	var urls []string
	for _, path := range files {
		found, err := batchinput.ReadFile(path)
		if err != nil {
			return nil, err
		}
		urls = append(urls, found...)
	}

	if paste, _ := cmd.Flags().GetBool("paste"); paste {
		found, err := batchinput.ReadPaste(cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		urls = append(urls, found...)
	}

	playlists, _ := cmd.Flags().GetStringSlice("playlist")
	for _, pl := range playlists {
		entries, err := expand(ctx, pl)
		if err != nil {
			return nil, fmt.Errorf("expand playlist %s: %w", pl, err)
		}
		urls = append(urls, entries...)
	}

	return batchinput.Dedupe(urls), nil
}

// batchPrinter renders bus events as batch progress lines.
type batchPrinter struct {
	w    io.Writer
	json bool
}

func newBatchPrinter(w io.Writer, json bool) *batchPrinter {
	return &batchPrinter{w: w, json: json}
}

func (p *batchPrinter) handle(e events.Event) {
	if p.json {
		printJSONLine(p.w, e)
		return
	}

	switch e := e.(type) {
	case *events.JobStarted:
		fmt.Fprintf(p.w, "(%d/%d) Processing: %s\n", e.Index, e.Total, e.Preview)
	case *events.JobFallback:
		fmt.Fprintf(p.w, "  %s blocked, saved %s audio instead\n", e.Requested, e.Produced)
	case *events.JobCompleted:
		for _, s := range e.Seals {
			fmt.Fprintf(p.w, "  saved %-5s %s\n", s.Extension, s.Location)
		}
		for _, f := range e.Fractures {
			fmt.Fprintf(p.w, "  failed %-5s %s\n", f.Extension, f.Cause)
		}
	case *events.JobFailed:
		if e.Reason != "" {
			fmt.Fprintf(p.w, "  failed: %s\n", e.Reason)
		}
		for _, f := range e.Fractures {
			fmt.Fprintf(p.w, "  failed %-5s %s\n", f.Extension, f.Cause)
		}
	case *events.JobInterrupted:
		fmt.Fprintln(p.w, "  interrupted")
	}
}

func printSummary(w io.Writer, s job.Summary) {
	fmt.Fprintf(w, "\nBatch complete: %d succeeded, %d failed, %d total.\n", s.Succeeded, s.Failed, s.Total)
	if s.RunID != "" {
		fmt.Fprintf(w, "Run ID: %s (distill history --run %s)\n", s.RunID, s.RunID)
	}
	if s.Interrupted && s.Remaining > 0 {
		fmt.Fprintf(w, "Interrupted with %d not started.\n", s.Remaining)
	}
}
