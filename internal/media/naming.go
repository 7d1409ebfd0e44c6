package media

import (
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Source identifies the platform a URL points at.
type Source string

const (
	SourceYouTube       Source = "youtube"
	SourceFacebook      Source = "facebook"
	SourceSoundCloud    Source = "soundcloud"
	SourceSpotify       Source = "spotify"
	SourceApplePodcasts Source = "apple_podcasts"
	SourceUnknown       Source = "unknown"
)

// DetectSource classifies rawURL by host.
func DetectSource(rawURL string) Source {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return SourceUnknown
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	switch {
	case host == "youtu.be" || hostIs(host, "youtube.com"):
		return SourceYouTube
	case host == "fb.watch" || hostIs(host, "facebook.com"):
		return SourceFacebook
	case hostIs(host, "soundcloud.com"):
		return SourceSoundCloud
	case hostIs(host, "spotify.com"):
		return SourceSpotify
	case host == "podcasts.apple.com":
		return SourceApplePodcasts
	default:
		return SourceUnknown
	}
}

func hostIs(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// Folder is the output subdirectory for artifacts from s.
func (s Source) Folder() string {
	switch s {
	case SourceYouTube, SourceFacebook, SourceSoundCloud, SourceSpotify:
		return string(s)
	case SourceApplePodcasts:
		return "podcasts"
	default:
		return "other"
	}
}

// maxTitleLen bounds sanitized titles, in runes.
const maxTitleLen = 200

var unsafeChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// cleanTitle composes to NFC and drops control characters.
var cleanTitle = transform.Chain(norm.NFC, runes.Remove(runes.In(unicode.Cc)))

// SanitizeTitle makes a title safe to use as a file name stem.
func SanitizeTitle(title string) string {
	if s, _, err := transform.String(cleanTitle, title); err == nil {
		title = s
	}
	title = unsafeChars.ReplaceAllString(title, "_")
	title = strings.Trim(title, ". ")

	if utf8.RuneCountInString(title) > maxTitleLen {
		title = strings.TrimRight(string([]rune(title)[:maxTitleLen]), ". ")
	}
	if title == "" {
		return "download"
	}
	return title
}

// TitleFromURL derives a file name for rawURL when the engine reports no title.
func TitleFromURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "download"
	}
	if id := u.Query().Get("v"); id != "" {
		return id
	}
	if base := path.Base(strings.TrimRight(u.Path, "/")); base != "." && base != "/" && base != "" {
		return base
	}
	if u.Hostname() != "" {
		return u.Hostname()
	}
	return "download"
}

// OutputStem returns the extension-less output path for a job.
func OutputStem(outputDir string, src Source, title string) string {
	return filepath.Join(outputDir, src.Folder(), SanitizeTitle(title))
}
