package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vmunix/distill/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates config.toml syntax, known values, and environment variable substitution without downloading anything.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configTestCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

// configTarget picks the file a config subcommand works on.
func configTarget(args []string, discover bool) string {
	switch {
	case len(args) > 0:
		return args[0]
	case configPath != "":
		return configPath
	case discover:
		if p, err := config.Discover(); err == nil {
			return p
		}
	}
	return config.DefaultPath()
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	path := configTarget(args, true)
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.ConfigError
		if errors.As(err, &configErr) {
			printConfigErrors(w, configErr)
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	if missing := cfg.Missing(); len(missing) > 0 {
		printConfigErrors(w, &config.ConfigError{Missing: missing})
	}
	printConfigSummary(w, cfg)
	fmt.Fprintln(w, "\nConfiguration valid!")
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configTarget(args, false)
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func printConfigErrors(w io.Writer, e *config.ConfigError) {
	if len(e.Missing) > 0 {
		fmt.Fprintln(w, "Missing environment variables:")
		for _, m := range e.Missing {
			fmt.Fprintf(w, "  - %s\n", m)
		}
		fmt.Fprintln(w)
	}

	if len(e.Errors) > 0 {
		fmt.Fprintln(w, "Validation errors:")
		for _, err := range e.Errors {
			fmt.Fprintf(w, "  - %s\n", err)
		}
		fmt.Fprintln(w)
	}
}

func printConfigSummary(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Configuration Summary:")
	fmt.Fprintf(w, "  Output:     %s\n", cfg.Paths.OutputDir)

	audio := cfg.Media.Audio.EnabledFormats
	if len(audio) == 0 {
		audio = []string{cfg.Media.Audio.Format}
	}
	fmt.Fprintf(w, "  Audio:      %s\n", strings.Join(audio, ", "))
	if cfg.Media.Video.Enabled {
		video := cfg.Media.Video.EnabledFormats
		if len(video) == 0 {
			video = []string{cfg.Media.Video.Format}
		}
		fmt.Fprintf(w, "  Video:      %s\n", strings.Join(video, ", "))
	} else {
		fmt.Fprintln(w, "  Video:      disabled")
	}

	remotes := []string{}
	if cfg.IsS3Configured() {
		remotes = append(remotes, "s3")
	}
	if cfg.IsGCPConfigured() {
		remotes = append(remotes, "gcp")
	}
	fmt.Fprintf(w, "  Storage:    %s (fallback: %s)", cfg.StorageDestination(), cfg.Storage.Fallback)
	if len(remotes) > 0 {
		fmt.Fprintf(w, ", configured: %s", strings.Join(remotes, ", "))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  Engine:     %s (retries: %d)\n", cfg.Download.Binary, cfg.Download.Retries)
	if cfg.History.Path != "" {
		fmt.Fprintf(w, "  History:    %s\n", cfg.History.Path)
	}
}
