package download

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSized(t *testing.T, path string, size int, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", size)), 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestLocator_PrefersReportedPath(t *testing.T) {
	dir := t.TempDir()
	reported := filepath.Join(dir, "elsewhere.mp3")
	writeSized(t, reported, 10, time.Now())
	writeSized(t, filepath.Join(dir, "song.mp3"), 10, time.Now())

	got, err := NewLocator().Locate(dir, filepath.Join(dir, "song"), "mp3", reported)
	require.NoError(t, err)
	assert.Equal(t, reported, got)
}

func TestLocator_ExpectedExtensionFirst(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "song")
	writeSized(t, stem+".mp3", 10, time.Now())
	writeSized(t, stem+".flac", 10, time.Now())

	got, err := NewLocator().Locate(dir, stem, "flac", filepath.Join(dir, "gone.flac"))
	require.NoError(t, err)
	assert.Equal(t, stem+".flac", got)
}

func TestLocator_FindsSiblingExtensions(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "song")
	writeSized(t, stem+".m4a", 10, time.Now())

	got, err := NewLocator().Locate(dir, stem, "mp3", "")
	require.NoError(t, err)
	assert.Equal(t, stem+".m4a", got)
}

func TestLocator_ScansForRecentFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeSized(t, filepath.Join(dir, "youtube", "old.mp3"), 4096, now.Add(-10*time.Minute))
	writeSized(t, filepath.Join(dir, "youtube", "tiny.mp3"), 100, now)
	writeSized(t, filepath.Join(dir, "youtube", "half.mp3.part"), 4096, now)
	writeSized(t, filepath.Join(dir, "youtube", "renamed.mp3"), 4096, now.Add(-time.Minute))

	l := NewLocator()
	l.now = func() time.Time { return now }

	got, err := l.Locate(dir, filepath.Join(dir, "youtube", "expected"), "mp3", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "youtube", "renamed.mp3"), got)
}

func TestLocator_NothingFound(t *testing.T) {
	dir := t.TempDir()
	writeSized(t, filepath.Join(dir, "empty.mp3"), 0, time.Now())

	_, err := NewLocator().Locate(dir, filepath.Join(dir, "empty"), "mp3", "")
	require.ErrorIs(t, err, ErrArtifactMissing)
}

func TestLocator_VideoIgnoresAudioSibling(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "youtube", "song")
	now := time.Now()
	writeSized(t, stem+".mp3", 4096, now)
	writeSized(t, stem+".webm", 4096, now.Add(-time.Minute))

	l := NewLocator()
	l.now = func() time.Time { return now }

	got, err := l.Locate(dir, stem, "mp4", "")
	require.NoError(t, err)
	assert.Equal(t, stem+".webm", got)
}

func TestLocator_VideoScanSkipsAudioFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeSized(t, filepath.Join(dir, "youtube", "song.mp3"), 4096, now)

	l := NewLocator()
	l.now = func() time.Time { return now }

	_, err := l.Locate(dir, filepath.Join(dir, "youtube", "song"), "mp4", "")
	require.ErrorIs(t, err, ErrArtifactMissing)

	got, err := l.Locate(dir, filepath.Join(dir, "youtube", "other"), "flac", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "youtube", "song.mp3"), got)
}
