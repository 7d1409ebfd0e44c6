package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/vmunix/distill/internal/download"
	"github.com/vmunix/distill/internal/job"
)

var runCmd = &cobra.Command{
	Use:     "run <url>",
	Aliases: []string{"invoke"},
	Short:   "Download one URL",
	Long: `Download one URL in every resolved format and deliver each file.

Formats come from config unless --video, --flac or --audio-format is given.
Destinations come from storage.destination unless --local, --s3 or --gcp is given.

Examples:
  distill run https://youtu.be/abc123
  distill run --flac https://youtu.be/abc123
  distill run --video mkv --s3 --gcp https://youtu.be/abc123`,
	Args: cobra.ExactArgs(1),
	RunE: runRunCmd,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addJobFlags(runCmd)
}

func runRunCmd(cmd *cobra.Command, args []string) error {
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

	var sink = progressPrinter(cmd.ErrOrStderr())
	if jsonOutput {
		sink = nil
	}
	runID := uuid.NewString()
	res, err := a.runner(ctx, sink).Run(ctx, job.Job{URL: args[0], OutputDir: outputDir, Overrides: o, RunID: runID})
	if err != nil && !errors.Is(err, download.ErrInterrupted) {
		return err
	}

	if jsonOutput {
		v := resultView(args[0], res)
		v.RunID = runID
		printJSON(cmd.OutOrStdout(), v)
	} else {
		printResult(cmd.OutOrStdout(), res)
		if a.session.History() != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Run ID: %s\n", runID)
		}
	}

	if err != nil {
		return err
	}
	if !res.OverallSuccess {
		return &exitError{code: exitFailure, msg: "no artifacts produced"}
	}
	return nil
}

func printResult(w io.Writer, res job.Result) {
	if len(res.Seals) > 0 {
		fmt.Fprintln(w, "Saved:")
		for _, s := range res.Seals {
			note := ""
			if s.FallbackFrom != "" {
				note = "  (video blocked, saved audio instead)"
			}
			fmt.Fprintf(w, "  %-5s %s%s\n", s.Extension, s.Location, note)
			for _, u := range s.Uploads {
				if !u.Success {
					fmt.Fprintf(w, "        %s upload failed: %v\n", u.Destination.Label(), u.Err)
				}
			}
		}
	}
	if len(res.Fractures) > 0 {
		fmt.Fprintln(w, "Failed:")
		for _, f := range res.Fractures {
			fmt.Fprintf(w, "  %-5s %s\n", f.Extension, f.Cause)
		}
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, msg := range res.Warnings {
			fmt.Fprintf(w, "  - %s\n", msg)
		}
	}
}

type sealView struct {
	Extension    string   `json:"extension"`
	Location     string   `json:"location"`
	FallbackFrom string   `json:"fallback_from,omitempty"`
	UploadErrors []string `json:"upload_errors,omitempty"`
}

type fractureView struct {
	Extension string `json:"extension"`
	Cause     string `json:"cause"`
}

type jobView struct {
	RunID     string         `json:"run_id,omitempty"`
	URL       string         `json:"url"`
	Success   bool           `json:"success"`
	Seals     []sealView     `json:"seals"`
	Fractures []fractureView `json:"fractures"`
	Warnings  []string       `json:"warnings,omitempty"`
}

func resultView(url string, res job.Result) jobView {
	v := jobView{
		URL:       url,
		Success:   res.OverallSuccess,
		Seals:     make([]sealView, 0, len(res.Seals)),
		Fractures: make([]fractureView, 0, len(res.Fractures)),
		Warnings:  res.Warnings,
	}
	for _, s := range res.Seals {
		sv := sealView{Extension: s.Extension, Location: s.Location, FallbackFrom: string(s.FallbackFrom)}
		for _, u := range s.Uploads {
			if !u.Success {
				sv.UploadErrors = append(sv.UploadErrors, fmt.Sprintf("%s: %v", strings.ToLower(u.Destination.Label()), u.Err))
			}
		}
		v.Seals = append(v.Seals, sv)
	}
	for _, f := range res.Fractures {
		v.Fractures = append(v.Fractures, fractureView{Extension: f.Extension, Cause: f.Cause})
	}
	return v
}
