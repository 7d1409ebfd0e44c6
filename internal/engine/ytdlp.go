package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// maxOutputKeep bounds the engine output kept for error reporting.
const maxOutputKeep = 8192

// YTDLP runs the yt-dlp binary.
type YTDLP struct {
	binary         string
	ffmpegLocation string
	log            *slog.Logger
}

var _ Engine = (*YTDLP)(nil)

// NewYTDLP creates an engine for binary ("yt-dlp" when empty).
func NewYTDLP(binary, ffmpegLocation string, log *slog.Logger) *YTDLP {
	if binary == "" {
		binary = "yt-dlp"
	}
	if log == nil {
		log = slog.Default()
	}
	return &YTDLP{binary: binary, ffmpegLocation: ffmpegLocation, log: log}
}

// Args builds the yt-dlp command line for req.
func (y *YTDLP) Args(req Request) []string {
	o := req.Options
	args := []string{
		"--newline", "--progress", "--no-playlist", "--no-simulate",
		"--print", "after_move:" + artifactMarker + "%(filepath)s",
	}

	if o.Format != "" {
		args = append(args, "-f", o.Format)
	}
	if o.ExtractAudio {
		args = append(args, "-x", "--audio-format", o.AudioFormat)
		if o.AudioQuality != "" {
			args = append(args, "--audio-quality", o.AudioQuality)
		}
	}
	if o.MergeFormat != "" {
		args = append(args, "--merge-output-format", o.MergeFormat)
	}
	if o.PostprocessorArgs != "" {
		args = append(args, "--postprocessor-args", o.PostprocessorArgs)
	}
	if o.Retries > 0 {
		args = append(args, "--retries", strconv.Itoa(o.Retries))
	}
	if o.NoOverwrites {
		args = append(args, "--no-overwrites")
	} else {
		args = append(args, "--force-overwrites")
	}
	if o.EmbedMetadata {
		args = append(args, "--embed-metadata")
	}
	if o.TempDir != "" {
		args = append(args, "-P", "temp:"+o.TempDir)
	}
	if p := o.Pacing; p.Enabled() {
		if p.SleepRequests > 0 {
			args = append(args, "--sleep-requests", formatSeconds(p.SleepRequests))
		}
		if p.SleepInterval > 0 {
			args = append(args, "--sleep-interval", formatSeconds(p.SleepInterval))
			if p.MaxSleepInterval > p.SleepInterval {
				args = append(args, "--max-sleep-interval", formatSeconds(p.MaxSleepInterval))
			}
		}
	}
	if y.ffmpegLocation != "" {
		args = append(args, "--ffmpeg-location", y.ffmpegLocation)
	}

	args = append(args, "-o", req.OutputStem+".%(ext)s", "--", req.URL)
	return args
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Download runs yt-dlp for one request, streaming parsed progress to sink.
func (y *YTDLP) Download(ctx context.Context, req Request, sink ProgressSink) (*Result, error) {
	if err := os.MkdirAll(filepath.Dir(req.OutputStem), 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	args := y.Args(req)
	y.log.Debug("running engine", "binary", y.binary, "args", args)

	cmd := exec.CommandContext(ctx, y.binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("setup stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("setup stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, y.startError(err)
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		tail     = tailBuffer{max: maxOutputKeep}
		artifact string
		lastFile string
	)
	read := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		scanner.Split(splitByNewlineOrCR)
		for scanner.Scan() {
			p := ParseProgress(scanner.Text())
			mu.Lock()
			tail.WriteLine(p.Line)
			if p.Filename != "" {
				lastFile = p.Filename
				if p.Stage == "done" {
					artifact = p.Filename
				}
			}
			if sink != nil {
				sink(p)
			}
			mu.Unlock()
		}
	}

	wg.Add(2)
	go read(stdout)
	go read(stderr)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("yt-dlp interrupted: %w", ctxErr)
		}
		return nil, &ExecError{Err: err, Output: tail.String()}
	}

	if artifact == "" {
		artifact = lastFile
	}
	return &Result{ArtifactPath: artifact}, nil
}

// ExtractMetadata queries title and duration without downloading.
func (y *YTDLP) ExtractMetadata(ctx context.Context, url string) (*Metadata, error) {
	out, err := y.runJSON(ctx, "-J", "--skip-download", "--no-playlist", "--no-warnings", "--", url)
	if err != nil {
		return nil, err
	}

	var md Metadata
	if err := json.Unmarshal(out, &md); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &md, nil
}

type flatPlaylist struct {
	Type    string `json:"_type"`
	Entries []struct {
		ID         string `json:"id"`
		URL        string `json:"url"`
		WebpageURL string `json:"webpage_url"`
		IEKey      string `json:"ie_key"`
	} `json:"entries"`
}

// ExpandPlaylist lists the entry URLs of a playlist without downloading.
// A non-playlist URL expands to itself.
func (y *YTDLP) ExpandPlaylist(ctx context.Context, url string) ([]string, error) {
	out, err := y.runJSON(ctx, "--flat-playlist", "-J", "--no-warnings", "--", url)
	if err != nil {
		return nil, err
	}
	return parseFlatPlaylist(out, url)
}

func parseFlatPlaylist(data []byte, url string) ([]string, error) {
	var pl flatPlaylist
	if err := json.Unmarshal(data, &pl); err != nil {
		return nil, fmt.Errorf("decode playlist: %w", err)
	}
	if pl.Type != "playlist" {
		return []string{url}, nil
	}

	urls := make([]string, 0, len(pl.Entries))
	for _, e := range pl.Entries {
		switch {
		case strings.HasPrefix(e.WebpageURL, "http"):
			urls = append(urls, e.WebpageURL)
		case strings.HasPrefix(e.URL, "http"):
			urls = append(urls, e.URL)
		case e.IEKey == "Youtube" && e.ID != "":
			urls = append(urls, "https://www.youtube.com/watch?v="+e.ID)
		}
	}
	return urls, nil
}

func (y *YTDLP) runJSON(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, y.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, y.startError(err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("yt-dlp interrupted: %w", ctxErr)
		}
		return nil, &ExecError{Err: err, Output: stderr.String()}
	}
	if stdout.Len() == 0 {
		return nil, ErrEmptyOutput
	}
	return stdout.Bytes(), nil
}

func (y *YTDLP) startError(err error) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotInstalled, y.binary)
	}
	return fmt.Errorf("start %s: %w", y.binary, err)
}
