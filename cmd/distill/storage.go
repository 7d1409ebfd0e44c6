package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vmunix/distill/internal/config"
	"github.com/vmunix/distill/internal/storage"
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Storage destinations",
}

var storageStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which destinations are configured",
	Args:  cobra.NoArgs,
	RunE:  runStorageStatusCmd,
}

func init() {
	rootCmd.AddCommand(storageCmd)
	storageCmd.AddCommand(storageStatusCmd)
}

type destinationStatus struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
	Detail     string `json:"detail,omitempty"`
}

type storageStatus struct {
	Destinations []destinationStatus `json:"destinations"`
	Default      string              `json:"default"`
	Fallback     string              `json:"fallback"`
	Effective    []string            `json:"effective"`
	Warnings     []string            `json:"warnings,omitempty"`
}

func runStorageStatusCmd(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	st := buildStorageStatus(cfg)
	if jsonOutput {
		printJSON(cmd.OutOrStdout(), st)
		return nil
	}
	printStorageStatus(cmd.OutOrStdout(), st)
	return nil
}

func buildStorageStatus(cfg *config.Config) storageStatus {
	st := storageStatus{
		Default:  cfg.StorageDestination(),
		Fallback: strings.ToLower(cfg.Storage.Fallback),
		Destinations: []destinationStatus{
			{Name: "local", Configured: true, Detail: cfg.Paths.OutputDir},
			{Name: "s3", Configured: cfg.IsS3Configured(), Detail: s3Detail(cfg)},
			{Name: "gcp", Configured: cfg.IsGCPConfigured(), Detail: gcsDetail(cfg)},
		},
	}
	res := storage.ResolveDestinations(nil, cfg)
	for _, d := range res.Destinations {
		st.Effective = append(st.Effective, string(d))
	}
	st.Warnings = res.Warnings
	return st
}

func s3Detail(cfg *config.Config) string {
	s := s3Settings(cfg)
	if s.Bucket == "" {
		return ""
	}
	if s.Endpoint != "" {
		return fmt.Sprintf("bucket %s at %s", s.Bucket, s.Endpoint)
	}
	return fmt.Sprintf("bucket %s (%s)", s.Bucket, s.Region)
}

func gcsDetail(cfg *config.Config) string {
	if b := cfg.GCPBucket(); b != "" {
		return "bucket " + b
	}
	return ""
}

func printStorageStatus(w io.Writer, st storageStatus) {
	fmt.Fprintln(w, "Destinations:")
	for _, d := range st.Destinations {
		state := "not configured"
		if d.Configured {
			state = "configured"
		}
		line := fmt.Sprintf("  %-6s %-15s", d.Name, state)
		if d.Detail != "" {
			line += " " + d.Detail
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	fmt.Fprintf(w, "\nDefault:    %s\n", st.Default)
	fmt.Fprintf(w, "Fallback:   %s\n", st.Fallback)
	fmt.Fprintf(w, "Effective:  %s\n", strings.Join(st.Effective, ", "))
	for _, msg := range st.Warnings {
		fmt.Fprintf(w, "  - %s\n", msg)
	}
}
