package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/vmunix/distill/internal/config"
	"github.com/vmunix/distill/internal/download"
	"github.com/vmunix/distill/internal/engine"
	"github.com/vmunix/distill/internal/inscribe"
	"github.com/vmunix/distill/internal/job"
	"github.com/vmunix/distill/internal/session"
	"github.com/vmunix/distill/internal/storage"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(level string) *slog.Logger {
	lvl := parseLogLevel(level)
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// loadConfig resolves the configuration for this invocation.
// It returns the file path used, or "" when none was read.
func loadConfig() (*config.Config, string, error) {
	if noConfig {
		dir := outputDir
		if dir == "" {
			dir = "."
		}
		return config.Ephemeral(dir), "", nil
	}

	path := configPath
	if path == "" {
		found, err := config.Discover()
		if errors.Is(err, config.ErrNotFound) {
			return config.Default(), "", nil
		}
		if err != nil {
			return nil, "", err
		}
		path = found
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// app holds everything a download command needs.
type app struct {
	cfg       *config.Config
	cfgPath   string
	log       *slog.Logger
	engine    *engine.YTDLP
	inscriber *inscribe.FFmpeg
	session   *session.Session
	closers   []func() error
}

func newApp(ctx context.Context) (*app, error) {
	cfg, path, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", job.ErrConfiguration, err)
	}
	log := newLogger(cfg.Log.Level)
	if path != "" {
		log.Debug("config loaded", "path", path)
	}
	if missing := cfg.Missing(); len(missing) > 0 {
		log.Warn("config references unset environment variables", "missing", missing)
	}

	s, err := session.Open(ctx, cfg.History.Path, log)
	if err != nil {
		log.Warn("run history unavailable", "path", cfg.History.Path, "error", err)
		if s, err = session.Open(ctx, "", log); err != nil {
			return nil, err
		}
	}

	return &app{
		cfg:       cfg,
		cfgPath:   path,
		log:       log,
		engine:    engine.NewYTDLP(cfg.Download.Binary, cfg.Download.FFmpegLocation, log),
		inscriber: inscribe.NewFFmpeg(cfg.Download.FFmpegLocation, log),
		session:   s,
	}, nil
}

// runner builds a job runner publishing to the session bus.
func (a *app) runner(ctx context.Context, progress engine.ProgressSink) *job.Runner {
	return job.NewRunner(job.Deps{
		Config:     a.cfg,
		Engine:     a.engine,
		Settings:   download.SettingsFromConfig(a.cfg),
		Inscriber:  a.inscriber,
		Dispatcher: storage.NewDispatcher(a.uploaders(ctx), a.log),
		Events:     a.session.Bus(),
		Progress:   progress,
	}, a.log)
}

// pacing returns the batch pacing from config.
func (a *app) pacing() engine.Pacing {
	return engine.Pacing{
		SleepRequests:    a.cfg.Batch.SleepRequests,
		SleepInterval:    a.cfg.Batch.SleepInterval,
		MaxSleepInterval: a.cfg.Batch.MaxSleepInterval,
	}
}

// uploaders creates clients for every configured remote. A client that
// cannot be created is left out, so uploads to it fail and keep the local copy.
func (a *app) uploaders(ctx context.Context) map[storage.Destination]storage.Uploader {
	up := make(map[storage.Destination]storage.Uploader)

	if a.cfg.IsS3Configured() {
		settings := s3Settings(a.cfg)
		client, err := storage.NewS3Client(ctx, settings)
		if err != nil {
			a.log.Warn("s3 client unavailable", "error", err)
		} else {
			up[storage.DestinationS3] = storage.NewS3Uploader(client, settings, a.log)
		}
	}

	if a.cfg.IsGCPConfigured() {
		settings := gcsSettings(a.cfg)
		bucket, closeFn, err := storage.NewGCSBucket(ctx, settings)
		if err != nil {
			a.log.Warn("gcs client unavailable", "error", err)
		} else {
			a.closers = append(a.closers, closeFn)
			up[storage.DestinationGCP] = storage.NewGCSUploader(bucket, settings, a.log)
		}
	}

	return up
}

func s3Settings(cfg *config.Config) storage.S3Settings {
	access, secret := cfg.S3Credentials()
	return storage.S3Settings{
		Endpoint:  cfg.Storage.S3.Endpoint,
		Bucket:    cfg.Storage.S3.Bucket,
		Region:    cfg.Storage.S3.Region,
		AccessKey: access,
		SecretKey: secret,
		SSL:       cfg.Storage.S3.SSL,
	}
}

func gcsSettings(cfg *config.Config) storage.GCSSettings {
	return storage.GCSSettings{
		Bucket:          cfg.GCPBucket(),
		KeyBase64:       cfg.GCPKey(),
		CredentialsFile: cfg.Storage.GCP.CredentialsFile,
		Public:          cfg.Storage.GCP.Public,
	}
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	errs = append(errs, a.session.Close())
	return errors.Join(errs...)
}
