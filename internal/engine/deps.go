package engine

import (
	"os/exec"
)

// Dependency is one external binary and where it was found.
type Dependency struct {
	Name     string `json:"name"`
	Path     string `json:"path,omitempty"`
	Found    bool   `json:"found"`
	Required bool   `json:"required"`
}

// CheckDependencies looks up the binaries the engine and inscriber call.
func CheckDependencies(ytdlpBinary string) []Dependency {
	if ytdlpBinary == "" {
		ytdlpBinary = "yt-dlp"
	}
	deps := []Dependency{
		{Name: ytdlpBinary, Required: true},
		{Name: "ffmpeg", Required: true},
		{Name: "ffprobe"},
	}
	for i := range deps {
		if path, err := exec.LookPath(deps[i].Name); err == nil {
			deps[i].Found = true
			deps[i].Path = path
		}
	}
	return deps
}
