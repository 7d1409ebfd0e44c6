package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vmunix/distill/internal/config"
	"github.com/vmunix/distill/internal/engine"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check external tools, config, and the output directory",
	Args:  cobra.NoArgs,
	RunE:  runDoctorCmd,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type doctorReport struct {
	Dependencies []engine.Dependency `json:"dependencies"`
	ConfigPath   string              `json:"config_path,omitempty"`
	ConfigError  string              `json:"config_error,omitempty"`
	OutputDir    string              `json:"output_dir"`
	OutputError  string              `json:"output_error,omitempty"`
	HistoryPath  string              `json:"history_path,omitempty"`
}

func (r doctorReport) ok() bool {
	for _, d := range r.Dependencies {
		if d.Required && !d.Found {
			return false
		}
	}
	return r.ConfigError == "" && r.OutputError == ""
}

func runDoctorCmd(cmd *cobra.Command, args []string) error {
	r := doctorReport{}
	cfg, path, err := loadConfig()
	r.ConfigPath = path
	if err != nil {
		r.ConfigError = err.Error()
		cfg = config.Default()
	}

	r.Dependencies = engine.CheckDependencies(cfg.Download.Binary)
	r.OutputDir = cfg.Paths.OutputDir
	if outputDir != "" {
		r.OutputDir = outputDir
	}
	if err := checkWritable(r.OutputDir); err != nil {
		r.OutputError = err.Error()
	}
	r.HistoryPath = cfg.History.Path

	if jsonOutput {
		printJSON(cmd.OutOrStdout(), r)
	} else {
		printDoctor(cmd.OutOrStdout(), r, cfg.IsEphemeral())
	}
	if !r.ok() {
		return &exitError{code: exitFailure, msg: "some checks failed"}
	}
	return nil
}

// checkWritable creates dir if needed and proves a file can be written there.
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".distill-doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func printDoctor(w io.Writer, r doctorReport, ephemeral bool) {
	fmt.Fprintln(w, "Tools:")
	for _, d := range r.Dependencies {
		switch {
		case d.Found:
			fmt.Fprintf(w, "  ok       %-8s %s\n", d.Name, d.Path)
		case d.Required:
			fmt.Fprintf(w, "  MISSING  %s\n", d.Name)
		default:
			fmt.Fprintf(w, "  missing  %s (optional)\n", d.Name)
		}
	}

	fmt.Fprintln(w, "\nConfig:")
	switch {
	case r.ConfigError != "":
		fmt.Fprintf(w, "  invalid  %s\n", r.ConfigError)
	case ephemeral:
		fmt.Fprintln(w, "  ok       none (--no-config)")
	case r.ConfigPath == "":
		fmt.Fprintln(w, "  ok       none found, using defaults")
	default:
		fmt.Fprintf(w, "  ok       %s\n", r.ConfigPath)
	}

	fmt.Fprintln(w, "\nOutput directory:")
	if r.OutputError != "" {
		fmt.Fprintf(w, "  FAILED   %s: %s\n", r.OutputDir, r.OutputError)
	} else {
		fmt.Fprintf(w, "  ok       %s\n", r.OutputDir)
	}

	if r.HistoryPath == "" {
		fmt.Fprintln(w, "\nHistory:  disabled")
	} else {
		fmt.Fprintf(w, "\nHistory:  %s\n", r.HistoryPath)
	}
}
