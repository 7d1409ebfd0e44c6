package download

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Extensions probed, in order, when the expected output file is absent.
// Only the family of the expected extension is probed, so an earlier audio
// artifact of the same job never stands in for a video one.
var (
	audioExtensions = []string{"mp3", "flac", "aac", "m4a", "opus", "ogg", "wav"}
	videoExtensions = []string{"mp4", "mkv", "webm"}
)

// partialSuffixes mark engine files that are still being written.
var partialSuffixes = []string{".part", ".ytdl", ".tmp", ".temp"}

// Locator finds the file an engine run produced.
type Locator struct {
	now     func() time.Time
	maxAge  time.Duration
	minSize int64
}

// NewLocator creates a locator whose directory scan accepts files younger than
// five minutes and larger than 1KiB.
func NewLocator() *Locator {
	return &Locator{now: time.Now, maxAge: 5 * time.Minute, minSize: 1024}
}

// Locate returns the artifact path, trying in order: the path the engine
// reported, stem plus the expected extension, stem plus each known extension,
// and finally the newest recent file under outputDir.
func (l *Locator) Locate(outputDir, stem, ext, reported string) (string, error) {
	if reported != "" && isFile(reported) {
		return reported, nil
	}

	if p := stem + "." + ext; isFile(p) {
		return p, nil
	}
	same, other := extensionFamilies(ext)
	for _, e := range same {
		if e == ext {
			continue
		}
		if p := stem + "." + e; isFile(p) {
			return p, nil
		}
	}

	if p := l.newest(outputDir, other); p != "" {
		return p, nil
	}
	return "", ErrArtifactMissing
}

// extensionFamilies returns the probe list ext belongs to and the list of
// the other media kind.
func extensionFamilies(ext string) (same, other []string) {
	if slices.Contains(videoExtensions, strings.ToLower(ext)) {
		return videoExtensions, audioExtensions
	}
	return audioExtensions, videoExtensions
}

// newest returns the most recent finished file under dir, ignoring files
// with an excluded extension.
func (l *Locator) newest(dir string, exclude []string) string {
	if dir == "" {
		return ""
	}
	cutoff := l.now().Add(-l.maxAge)

	var best string
	var bestTime time.Time
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || isPartial(path) {
			return nil
		}
		if slices.Contains(exclude, strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))) {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.Mode().IsRegular() || info.Size() <= l.minSize {
			return nil
		}
		if mt := info.ModTime(); mt.After(cutoff) && mt.After(bestTime) {
			best, bestTime = path, mt
		}
		return nil
	})
	return best
}

func isPartial(path string) bool {
	lower := strings.ToLower(path)
	for _, s := range partialSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}
