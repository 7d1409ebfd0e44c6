// Package batchinput extracts media URLs from batch files, CSV exports and pasted text.
package batchinput

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// commentPrefixes follow the yt-dlp batch-file convention.
var commentPrefixes = []string{"#", ";", "]"}

// IsURLLike reports whether s is an http(s) URL with a host.
func IsURLLike(s string) bool {
	s = strings.TrimSpace(s)
	if !hasHTTPScheme(s) {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Host != ""
}

func hasHTTPScheme(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// FromText extracts URLs from newline separated text. A line may hold several
// comma separated URLs; blank lines and comment lines are skipped.
func FromText(text string) []string {
	var urls []string
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if isComment(line) {
			continue
		}
		for _, part := range strings.Split(line, ",") {
			if part = strings.TrimSpace(part); hasHTTPScheme(part) {
				urls = append(urls, part)
			}
		}
	}
	return urls
}

func isComment(line string) bool {
	if line == "" {
		return true
	}
	for _, p := range commentPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// FromCSV collects every cell that holds an http(s) URL, in row order.
func FromCSV(data []byte) ([]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var urls []string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		for _, cell := range row {
			if cell = strings.TrimSpace(cell); hasHTTPScheme(cell) {
				urls = append(urls, cell)
			}
		}
	}
	return urls, nil
}

// ReadFile extracts URLs from path, parsing .csv files as CSV and everything
// else as text.
func ReadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FromCSV(data)
	}
	return FromText(string(data)), nil
}

// ReadPaste extracts URLs from pasted input, typically stdin.
func ReadPaste(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pasted input: %w", err)
	}
	return FromText(string(data)), nil
}

// Dedupe removes repeated URLs, keeping the first occurrence.
func Dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// Preview renders host plus a shortened path, never the query string, for
// progress lines.
func Preview(raw string, maxPath int) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "unknown"
	}
	path := strings.Trim(u.Path, "/")
	if r := []rune(path); maxPath > 3 && len(r) > maxPath {
		path = string(r[:maxPath-3]) + "..."
	}
	if path == "" {
		return u.Host
	}
	return u.Host + "/" + path
}
