package inscribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FFmpeg tags files by remuxing them through ffmpeg and reads tags with ffprobe.
type FFmpeg struct {
	ffmpeg  string
	ffprobe string
	log     *slog.Logger
}

var _ Inscriber = (*FFmpeg)(nil)

// NewFFmpeg creates an inscriber. location may be empty (use PATH), a
// directory holding both binaries, or the path of the ffmpeg binary itself.
func NewFFmpeg(location string, log *slog.Logger) *FFmpeg {
	if log == nil {
		log = slog.Default()
	}
	ffmpeg, ffprobe := binaries(location)
	return &FFmpeg{
		ffmpeg:  ffmpeg,
		ffprobe: ffprobe,
		log:     log.With("component", "inscribe"),
	}
}

func binaries(location string) (string, string) {
	if location == "" {
		return "ffmpeg", "ffprobe"
	}
	if info, err := os.Stat(location); err == nil && info.IsDir() {
		return filepath.Join(location, "ffmpeg"), filepath.Join(location, "ffprobe")
	}
	return location, filepath.Join(filepath.Dir(location), "ffprobe")
}

// WriteArgs returns the ffmpeg arguments that copy src to dst with the tag set.
func WriteArgs(src, dst, sourceURL string) []string {
	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", src,
		"-map", "0",
		"-c", "copy",
		"-map_metadata", "0",
		"-metadata", TagKey + "=" + sourceURL,
	}
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(dst), ".")) {
	case "mp4", "m4a", "mov":
		// Custom keys are dropped from MP4 atoms unless asked for.
		args = append(args, "-movflags", "use_metadata_tags")
	case "mp3":
		args = append(args, "-id3v2_version", "3")
	}
	return append(args, dst)
}

// Write stamps sourceURL into path. The file is rewritten through a sibling
// temporary file and renamed into place, so a failed run leaves it untouched.
func (f *FFmpeg) Write(ctx context.Context, path, sourceURL string) error {
	if err := checkFile(path); err != nil {
		return err
	}

	tmp := tempPath(path)
	defer os.Remove(tmp)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.ffmpeg, WriteArgs(path, tmp, sourceURL)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", ErrNotInstalled, f.ffmpeg)
		}
		return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	f.log.Debug("inscribed source url", "path", path)
	return nil
}

// Read returns the source URL tag of path.
func (f *FFmpeg) Read(ctx context.Context, path string) (string, error) {
	if err := checkFile(path); err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, f.ffprobe,
		"-v", "error",
		"-show_entries", "format_tags:stream_tags",
		"-of", "json",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("%w: %s", ErrNotInstalled, f.ffprobe)
		}
		return "", fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return ParseProbe(out)
}

type probeOutput struct {
	Format struct {
		Tags map[string]string `json:"tags"`
	} `json:"format"`
	Streams []struct {
		Tags map[string]string `json:"tags"`
	} `json:"streams"`
}

// ParseProbe extracts the source URL tag from ffprobe JSON output. Container
// tags win over stream tags; Ogg and Opus keep comments on the stream.
func ParseProbe(data []byte) (string, error) {
	var p probeOutput
	if err := json.Unmarshal(data, &p); err != nil {
		return "", fmt.Errorf("decode ffprobe output: %w", err)
	}

	if v := findTag(p.Format.Tags); v != "" {
		return v, nil
	}
	for _, s := range p.Streams {
		if v := findTag(s.Tags); v != "" {
			return v, nil
		}
	}
	return "", ErrNotInscribed
}

// findTag matches the key case-insensitively, including the "TXXX:" prefix
// some ffprobe builds report for ID3 user text frames.
func findTag(tags map[string]string) string {
	for k, v := range tags {
		k = strings.TrimPrefix(strings.ToUpper(k), "TXXX:")
		if k == TagKey && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func tempPath(path string) string {
	dir, base := filepath.Split(path)
	return filepath.Join(dir, ".inscribe-"+base)
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNoFile, path)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNoFile, path)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist)
}
