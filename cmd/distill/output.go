package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/vmunix/distill/internal/engine"
)

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func printJSONLine(w io.Writer, v any) {
	_ = json.NewEncoder(w).Encode(v)
}

// progressPrinter renders engine progress on one updating line.
func progressPrinter(w io.Writer) engine.ProgressSink {
	return func(p engine.Progress) {
		switch {
		case p.Stage == "download" && p.HasPercent:
			fmt.Fprintf(w, "\r  downloading %5.1f%%", p.Percent)
			if p.Percent >= 100 {
				fmt.Fprintln(w)
			}
		case p.Stage == "extract" || p.Stage == "merge":
			fmt.Fprintf(w, "  %s: %s\n", p.Stage, truncatePath(p.Filename, 60))
		}
	}
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	ago := time.Since(t)
	switch {
	case ago < time.Minute:
		return "just now"
	case ago < time.Hour:
		return fmt.Sprintf("%dm ago", int(ago.Minutes()))
	case ago < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(ago.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(ago.Hours()/24))
	}
}

func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[:maxLen]
	}
	return "..." + path[len(path)-(maxLen-3):]
}
