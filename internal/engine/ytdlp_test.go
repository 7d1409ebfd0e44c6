package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestYTDLP_Args_Audio(t *testing.T) {
	y := NewYTDLP("", "/opt/ffmpeg", testLogger())
	args := y.Args(Request{
		URL:        "https://youtu.be/abc",
		OutputStem: "/out/youtube/Song",
		Options: Options{
			Format:        "best",
			ExtractAudio:  true,
			AudioFormat:   "mp3",
			AudioQuality:  "5",
			Retries:       10,
			NoOverwrites:  true,
			EmbedMetadata: true,
		},
	})

	assert.Equal(t, []string{
		"--newline", "--progress", "--no-playlist", "--no-simulate",
		"--print", "after_move:artifact_path=%(filepath)s",
		"-f", "best",
		"-x", "--audio-format", "mp3", "--audio-quality", "5",
		"--retries", "10",
		"--no-overwrites",
		"--embed-metadata",
		"--ffmpeg-location", "/opt/ffmpeg",
		"-o", "/out/youtube/Song.%(ext)s", "--", "https://youtu.be/abc",
	}, args)
}

func TestYTDLP_Args_VideoWithPacing(t *testing.T) {
	y := NewYTDLP("yt-dlp", "", nil)
	args := y.Args(Request{
		URL:        "https://youtu.be/abc",
		OutputStem: "/out/x",
		Options: Options{
			Format:      "bestvideo*+bestaudio/bestvideo+bestaudio",
			MergeFormat: "mkv",
			TempDir:     "/tmp/dl",
			Pacing:      Pacing{SleepRequests: 1, SleepInterval: 2, MaxSleepInterval: 5},
		},
	})

	assert.Subset(t, args, []string{"--merge-output-format", "mkv"})
	assert.Subset(t, args, []string{"--force-overwrites"})
	assert.Subset(t, args, []string{"-P", "temp:/tmp/dl"})
	assert.Subset(t, args, []string{"--sleep-requests", "1", "--sleep-interval", "2", "--max-sleep-interval", "5"})
	assert.NotContains(t, args, "-x")
}

func TestYTDLP_Args_NoPacingByDefault(t *testing.T) {
	args := NewYTDLP("", "", nil).Args(Request{URL: "u", OutputStem: "s"})
	assert.NotContains(t, args, "--sleep-requests")
	assert.NotContains(t, args, "--sleep-interval")
}

func TestParseProgress(t *testing.T) {
	tests := []struct {
		line string
		want Progress
	}{
		{
			line: "[download]  42.5% of ~  3.10MiB at  1.2MiB/s ETA 00:02",
			want: Progress{Stage: "download", Percent: 42.5, HasPercent: true},
		},
		{
			line: "[download] Destination: /out/youtube/Song.webm",
			want: Progress{Stage: "download", Filename: "/out/youtube/Song.webm"},
		},
		{
			line: "[ExtractAudio] Destination: /out/youtube/Song.mp3",
			want: Progress{Stage: "extract", Filename: "/out/youtube/Song.mp3"},
		},
		{
			line: `[Merger] Merging formats into "/out/youtube/Clip.mkv"`,
			want: Progress{Stage: "merge", Filename: "/out/youtube/Clip.mkv"},
		},
		{
			line: "[download] /out/youtube/Song.mp3 has already been downloaded",
			want: Progress{Stage: "download", Filename: "/out/youtube/Song.mp3"},
		},
		{
			line: "artifact_path=/out/youtube/Song.mp3",
			want: Progress{Stage: "done", Filename: "/out/youtube/Song.mp3"},
		},
		{
			line: "[youtube] abc: Downloading webpage",
			want: Progress{},
		},
	}

	for _, tt := range tests {
		got := ParseProgress(tt.line)
		tt.want.Line = tt.line
		assert.Equal(t, tt.want, got, tt.line)
	}
}

func TestSplitByNewlineOrCR(t *testing.T) {
	adv, tok, err := splitByNewlineOrCR([]byte("10%\r20%\n"), false)
	require.NoError(t, err)
	assert.Equal(t, 4, adv)
	assert.Equal(t, "10%", string(tok))

	adv, tok, _ = splitByNewlineOrCR([]byte("\nrest"), false)
	assert.Equal(t, 1, adv)
	assert.Nil(t, tok)

	adv, tok, _ = splitByNewlineOrCR([]byte("tail"), true)
	assert.Equal(t, 4, adv)
	assert.Equal(t, "tail", string(tok))
}

func TestTailBuffer(t *testing.T) {
	tb := tailBuffer{max: 8}
	tb.WriteLine("abc")
	tb.WriteLine("defgh")
	assert.Equal(t, "c\ndefgh\n", tb.String())
	assert.Len(t, tb.String(), 8)
}

func TestParseFlatPlaylist(t *testing.T) {
	data := []byte(`{"_type":"playlist","entries":[
		{"id":"a","url":"https://www.youtube.com/watch?v=a","ie_key":"Youtube"},
		{"id":"b","url":"b","ie_key":"Youtube"},
		{"id":"c","webpage_url":"https://soundcloud.com/x/c","url":"api"},
		{"id":"d","url":"d","ie_key":"Other"}
	]}`)

	urls, err := parseFlatPlaylist(data, "https://www.youtube.com/playlist?list=PL")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.youtube.com/watch?v=a",
		"https://www.youtube.com/watch?v=b",
		"https://soundcloud.com/x/c",
	}, urls)

	urls, err = parseFlatPlaylist([]byte(`{"_type":"video","id":"z"}`), "https://youtu.be/z")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://youtu.be/z"}, urls)

	_, err = parseFlatPlaylist([]byte(`not json`), "u")
	require.Error(t, err)
}

func TestExecError(t *testing.T) {
	base := errors.New("exit status 1")
	e := &ExecError{Err: base, Output: "ERROR: HTTP Error 403: Forbidden\n"}
	assert.Equal(t, "yt-dlp failed: exit status 1: ERROR: HTTP Error 403: Forbidden", e.Error())
	assert.ErrorIs(t, e, base)
	assert.Equal(t, "yt-dlp failed: exit status 1", (&ExecError{Err: base}).Error())
}

func TestExecError_MessageKeepsOnlyErrorLines(t *testing.T) {
	e := &ExecError{
		Err: errors.New("exit status 1"),
		Output: "[download] Destination: /out/youtube/Room 403.f137.mp4\n" +
			"[download]  12.0% of 403.50MiB\n" +
			"WARNING: Not Found in cache\n" +
			"ERROR: unable to download video: Connection reset by peer\n",
	}
	assert.Equal(t, "ERROR: unable to download video: Connection reset by peer", e.Message())
	assert.NotContains(t, e.Error(), "403")

	assert.Empty(t, (&ExecError{Err: errors.New("exit status 1"), Output: "[download] 403.0 MiB\n"}).Message())
}

// fakeBinary writes an executable shell script standing in for yt-dlp.
func fakeBinary(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	path := filepath.Join(t.TempDir(), "yt-dlp")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))
	return path
}

func TestYTDLP_Download_ReportsArtifact(t *testing.T) {
	bin := fakeBinary(t, `
echo "[download] Destination: /tmp/song.webm"
printf '[download]  50.0%% of 1MiB\r[download] 100.0%% of 1MiB\n'
echo "artifact_path=/tmp/song.mp3"
`)
	y := NewYTDLP(bin, "", testLogger())

	var seen []Progress
	res, err := y.Download(context.Background(), Request{URL: "https://x", OutputStem: filepath.Join(t.TempDir(), "a", "song")},
		func(p Progress) { seen = append(seen, p) })
	require.NoError(t, err)

	assert.Equal(t, "/tmp/song.mp3", res.ArtifactPath)
	var percents []float64
	for _, p := range seen {
		if p.HasPercent {
			percents = append(percents, p.Percent)
		}
	}
	assert.Equal(t, []float64{50, 100}, percents)
}

func TestYTDLP_Download_Failure(t *testing.T) {
	bin := fakeBinary(t, `
echo "ERROR: [youtube] abc: HTTP Error 403: Forbidden" >&2
exit 1
`)
	y := NewYTDLP(bin, "", testLogger())

	_, err := y.Download(context.Background(), Request{URL: "https://x", OutputStem: filepath.Join(t.TempDir(), "s")}, nil)
	require.Error(t, err)

	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, execErr.Output, "HTTP Error 403")
}

func TestYTDLP_Download_NotInstalled(t *testing.T) {
	y := NewYTDLP(filepath.Join(t.TempDir(), "missing-yt-dlp"), "", testLogger())

	_, err := y.Download(context.Background(), Request{URL: "https://x", OutputStem: filepath.Join(t.TempDir(), "s")}, nil)
	require.ErrorIs(t, err, ErrNotInstalled)
}

func TestYTDLP_ExtractMetadata(t *testing.T) {
	bin := fakeBinary(t, `echo '{"id":"abc","title":"My Song","duration":215.5,"duration_string":"3:35","extractor":"youtube"}'`)
	y := NewYTDLP(bin, "", testLogger())

	md, err := y.ExtractMetadata(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)
	assert.Equal(t, "My Song", md.Title)
	assert.InDelta(t, 215.5, md.Duration, 0.001)
}

func TestYTDLP_ExtractMetadata_Empty(t *testing.T) {
	y := NewYTDLP(fakeBinary(t, "exit 0\n"), "", testLogger())

	_, err := y.ExtractMetadata(context.Background(), "https://youtu.be/abc")
	require.ErrorIs(t, err, ErrEmptyOutput)
}
