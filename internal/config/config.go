// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Paths    PathsConfig    `toml:"paths"`
	Media    MediaConfig    `toml:"media"`
	Storage  StorageConfig  `toml:"storage"`
	Download DownloadConfig `toml:"download"`
	Batch    BatchConfig    `toml:"batch"`
	History  HistoryConfig  `toml:"history"`
	Log      LogConfig      `toml:"log"`

	raw       map[string]any
	missing   []string
	ephemeral bool
}

type PathsConfig struct {
	OutputDir string `toml:"output_dir"`
	TempDir   string `toml:"temp_dir"`
}

type MediaConfig struct {
	Audio AudioConfig `toml:"audio"`
	Video VideoConfig `toml:"video"`
}

type AudioConfig struct {
	Format            string   `toml:"format"`
	EnabledFormats    []string `toml:"enabled_formats"`
	Quality           string   `toml:"quality"`
	Flac16kMono       bool     `toml:"flac_16k_mono"`
	PreferAudioStream bool     `toml:"prefer_audio_stream"`
}

type VideoConfig struct {
	Enabled        bool     `toml:"enabled"`
	Format         string   `toml:"format"`
	EnabledFormats []string `toml:"enabled_formats"`
}

type StorageConfig struct {
	Destination string    `toml:"destination"`
	Fallback    string    `toml:"fallback"`
	S3          S3Config  `toml:"s3"`
	GCP         GCPConfig `toml:"gcp"`
}

type S3Config struct {
	Endpoint  string `toml:"endpoint"`
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	SSL       bool   `toml:"ssl"`
}

type GCPConfig struct {
	Bucket          string `toml:"bucket"`
	SAKeyBase64     string `toml:"sa_key_base64"`
	CredentialsFile string `toml:"credentials_file"`
	Public          bool   `toml:"public"`
}

type DownloadConfig struct {
	Binary          string   `toml:"binary"`
	FFmpegLocation  string   `toml:"ffmpeg_location"`
	Retries         int      `toml:"retries"`
	ForceOverwrites bool     `toml:"force_overwrites"`
	FallbackFormats []string `toml:"fallback_formats"`
}

// BatchConfig holds pacing applied to every engine call made by a batch run.
// Values are seconds.
type BatchConfig struct {
	SleepRequests    float64 `toml:"sleep_requests"`
	SleepInterval    float64 `toml:"sleep_interval"`
	MaxSleepInterval float64 `toml:"max_sleep_interval"`
}

type HistoryConfig struct {
	Path string `toml:"path"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := Parse(string(data))
	if err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &ConfigError{Path: path, Missing: cfg.missing, Errors: errs}
	}
	return cfg, nil
}

// Parse decodes TOML content, substituting environment variables and applying defaults.
func Parse(content string) (*Config, error) {
	content, missing := substituteEnvVars(content)

	var cfg Config
	md, err := toml.Decode(content, &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.missing = missing

	cfg.applyDefaults(md)
	if err := cfg.index(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg, err := Parse("")
	if err != nil {
		// Empty input always decodes.
		panic(err)
	}
	return cfg
}

// Ephemeral returns the configuration used when no config file should be read.
// Artifacts are written to outputDir, kept locally, and produced as FLAC audio.
func Ephemeral(outputDir string) *Config {
	cfg := Default()
	cfg.Paths.OutputDir = outputDir
	cfg.Media.Audio.EnabledFormats = []string{"flac"}
	cfg.Media.Video.Enabled = false
	cfg.Storage.Destination = "local"
	cfg.Storage.Fallback = "local"
	cfg.History.Path = ""
	cfg.ephemeral = true
	_ = cfg.index()
	return cfg
}

// Missing returns environment variables referenced by the file but not set.
func (c *Config) Missing() []string {
	return c.missing
}

// IsEphemeral reports whether the config was built without a file.
func (c *Config) IsEphemeral() bool {
	return c.ephemeral
}

func (c *Config) applyDefaults(md toml.MetaData) {
	if c.Paths.OutputDir == "" {
		c.Paths.OutputDir = "./downloads"
	}
	if c.Media.Audio.Format == "" {
		c.Media.Audio.Format = "mp3"
	}
	if c.Media.Audio.Quality == "" {
		c.Media.Audio.Quality = "5"
	}
	if c.Media.Video.Format == "" {
		c.Media.Video.Format = "mp4"
	}
	if c.Storage.Destination == "" {
		c.Storage.Destination = "local"
	}
	if c.Storage.Fallback == "" {
		c.Storage.Fallback = "local"
	}
	if !md.IsDefined("storage", "s3", "ssl") {
		c.Storage.S3.SSL = true
	}
	if c.Storage.S3.Region == "" {
		c.Storage.S3.Region = "us-east-1"
	}
	if c.Download.Binary == "" {
		c.Download.Binary = "yt-dlp"
	}
	if !md.IsDefined("download", "retries") {
		c.Download.Retries = 10
	}
	if c.Download.FallbackFormats == nil {
		c.Download.FallbackFormats = []string{"18", "140"}
	}
	if !md.IsDefined("batch", "sleep_requests") {
		c.Batch.SleepRequests = 1
	}
	if !md.IsDefined("batch", "sleep_interval") {
		c.Batch.SleepInterval = 2
	}
	if !md.IsDefined("batch", "max_sleep_interval") {
		c.Batch.MaxSleepInterval = 5
	}
	if !md.IsDefined("history", "path") {
		c.History.Path = DefaultHistoryPath()
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// index rebuilds the dotted-key view used by the Provider methods.
func (c *Config) index() error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	raw := make(map[string]any)
	if _, err := toml.Decode(buf.String(), &raw); err != nil {
		return fmt.Errorf("indexing config: %w", err)
	}
	c.raw = raw
	return nil
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
// Unset variables become empty strings and are returned, sorted, as missing.
func substituteEnvVars(content string) (string, []string) {
	seen := make(map[string]bool)
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1]
		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		seen[varName] = true
		return ""
	})

	missing := make([]string, 0, len(seen))
	for name := range seen {
		missing = append(missing, name)
	}
	sort.Strings(missing)
	return out, missing
}
