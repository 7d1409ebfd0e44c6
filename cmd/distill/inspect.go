package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vmunix/distill/internal/config"
	"github.com/vmunix/distill/internal/inscribe"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show the source URL stamped into a downloaded file",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspectCmd,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

type inspectView struct {
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	Format    string `json:"format"`
	SourceURL string `json:"source_url,omitempty"`
}

func runInspectCmd(cmd *cobra.Command, args []string) error {
	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	cfg, _, err := loadConfig()
	if err != nil {
		cfg = config.Default()
	}
	reader := inscribe.NewFFmpeg(cfg.Download.FFmpegLocation, newLogger(cfg.Log.Level))

	source, err := reader.Read(cmd.Context(), path)
	if err != nil && !errors.Is(err, inscribe.ErrNotInscribed) {
		return fmt.Errorf("inspect %s: %w", path, err)
	}

	v := inspectView{
		Path:      path,
		Size:      info.Size(),
		Format:    strings.TrimPrefix(filepath.Ext(path), "."),
		SourceURL: source,
	}
	if jsonOutput {
		printJSON(cmd.OutOrStdout(), v)
		return nil
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "File:       %s\n", v.Path)
	fmt.Fprintf(w, "Size:       %s\n", formatSize(v.Size))
	fmt.Fprintf(w, "Format:     %s\n", v.Format)
	if v.SourceURL == "" {
		fmt.Fprintln(w, "Source URL: (not tagged)")
	} else {
		fmt.Fprintf(w, "Source URL: %s\n", v.SourceURL)
	}
	return nil
}
