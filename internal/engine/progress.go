package engine

import (
	"regexp"
	"strconv"
	"strings"
)

// artifactMarker prefixes the final file path printed after post-processing.
const artifactMarker = "artifact_path="

var (
	percentLine     = regexp.MustCompile(`^\[download\]\s+(\d+(?:\.\d+)?)%`)
	destinationLine = regexp.MustCompile(`^\[(download|ExtractAudio|VideoConvertor)\] Destination: (.+)$`)
	mergerLine      = regexp.MustCompile(`^\[Merger\] Merging formats into "(.+)"$`)
	alreadyLine     = regexp.MustCompile(`^\[download\] (.+) has already been downloaded`)
)

// ParseProgress interprets one line of yt-dlp output.
func ParseProgress(line string) Progress {
	line = strings.TrimSpace(line)
	p := Progress{Line: line}

	switch {
	case strings.HasPrefix(line, artifactMarker):
		p.Stage = "done"
		p.Filename = strings.TrimPrefix(line, artifactMarker)
	case percentLine.MatchString(line):
		m := percentLine.FindStringSubmatch(line)
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.Stage = "download"
			p.Percent = v
			p.HasPercent = true
		}
	case destinationLine.MatchString(line):
		m := destinationLine.FindStringSubmatch(line)
		p.Stage = "download"
		if m[1] != "download" {
			p.Stage = "extract"
		}
		p.Filename = m[2]
	case mergerLine.MatchString(line):
		p.Stage = "merge"
		p.Filename = mergerLine.FindStringSubmatch(line)[1]
	case alreadyLine.MatchString(line):
		p.Stage = "download"
		p.Filename = alreadyLine.FindStringSubmatch(line)[1]
	}
	return p
}

// splitByNewlineOrCR splits on either line terminator so that in-place
// progress updates arrive as separate lines.
func splitByNewlineOrCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' || data[i] == '\r' {
			if i == 0 {
				return 1, nil, nil
			}
			return i + 1, data[:i], nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func (t *tailBuffer) WriteLine(line string) {
	t.buf = append(t.buf, line...)
	t.buf = append(t.buf, '\n')
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = t.buf[over:]
	}
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}
