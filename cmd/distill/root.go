package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	noConfig   bool
	outputDir  string
	verbose    bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "distill",
	Short: "Download media as audio or video and deliver it to storage",
	Long: `distill - media download orchestrator

Downloads audio and video from a URL (or a list of URLs) through yt-dlp,
tags each file with its source URL, and delivers it to local disk,
S3, or Google Cloud Storage.

Examples:
  distill run https://youtu.be/abc123
  distill run --video --s3 https://youtu.be/abc123
  distill batch urls.txt
  distill doctor`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code its error maps to.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		code := exitCode(err)
		if code != exitInterrupted {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		} else {
			fmt.Fprintln(os.Stderr, "Interrupted.")
		}
		os.Exit(code)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: discovered)")
	rootCmd.PersistentFlags().BoolVar(&noConfig, "no-config", false, "Ignore config files; save FLAC audio locally")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", "", "Output directory (overrides paths.output_dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging, including raw engine output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("distill {{.Version}}\n")
}
