package config

import (
	"fmt"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validDestinations = map[string]bool{
	"local": true, "s3": true, "gcp": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		errs = append(errs, "paths.output_dir: required")
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}

	dest := strings.ToLower(c.Storage.Destination)
	if !validDestinations[dest] {
		errs = append(errs, fmt.Sprintf("storage.destination: must be one of local, s3, gcp; got %q", c.Storage.Destination))
	}
	fallback := strings.ToLower(c.Storage.Fallback)
	if !validDestinations[fallback] && fallback != "error" {
		errs = append(errs, fmt.Sprintf("storage.fallback: must be one of local, s3, gcp, error; got %q", c.Storage.Fallback))
	}

	if c.Download.Retries < 0 {
		errs = append(errs, fmt.Sprintf("download.retries: must not be negative, got %d", c.Download.Retries))
	}

	if c.Batch.SleepRequests < 0 || c.Batch.SleepInterval < 0 || c.Batch.MaxSleepInterval < 0 {
		errs = append(errs, "batch: sleep values must not be negative")
	}
	if c.Batch.MaxSleepInterval > 0 && c.Batch.MaxSleepInterval < c.Batch.SleepInterval {
		errs = append(errs, fmt.Sprintf("batch.max_sleep_interval: must be >= sleep_interval (%g), got %g",
			c.Batch.SleepInterval, c.Batch.MaxSleepInterval))
	}

	// Partially configured remotes are almost always a typo.
	if c.Storage.S3.Bucket == "" && (c.Storage.S3.Endpoint != "" || c.Storage.S3.AccessKey != "") {
		errs = append(errs, "storage.s3.bucket: required when other s3 settings are present")
	}

	return errs
}
