package media

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectSource(t *testing.T) {
	tests := []struct {
		url  string
		want Source
	}{
		{"https://www.youtube.com/watch?v=abc", SourceYouTube},
		{"https://music.youtube.com/watch?v=abc", SourceYouTube},
		{"https://youtu.be/abc", SourceYouTube},
		{"https://m.facebook.com/watch/?v=1", SourceFacebook},
		{"https://fb.watch/xyz", SourceFacebook},
		{"https://soundcloud.com/artist/track", SourceSoundCloud},
		{"https://open.spotify.com/episode/1", SourceSpotify},
		{"https://podcasts.apple.com/us/podcast/x/id1", SourceApplePodcasts},
		{"https://notyoutube.com/watch?v=abc", SourceUnknown},
		{"https://vimeo.com/1", SourceUnknown},
		{"::not a url", SourceUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectSource(tt.url), tt.url)
	}
}

func TestSource_Folder(t *testing.T) {
	assert.Equal(t, "youtube", SourceYouTube.Folder())
	assert.Equal(t, "spotify", SourceSpotify.Folder())
	assert.Equal(t, "podcasts", SourceApplePodcasts.Folder())
	assert.Equal(t, "other", SourceUnknown.Folder())
	assert.Equal(t, "other", Source("bandcamp").Folder())
}

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Song: Live? <Remastered>", "Song_ Live_ _Remastered_"},
		{"AC/DC \\ Back|In*Black", "AC_DC _ Back_In_Black"},
		{"  ..Trailing dots..  ", "Trailing dots"},
		{"Café del Mar", "Café del Mar"},
		{"tab\there", "tabhere"},
		{"...", "download"},
		{"", "download"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeTitle(tt.in), tt.in)
	}
}

func TestSanitizeTitle_Truncates(t *testing.T) {
	got := SanitizeTitle(strings.Repeat("é", 250))
	assert.Equal(t, 200, len([]rune(got)))
}

func TestTitleFromURL(t *testing.T) {
	assert.Equal(t, "abc123", TitleFromURL("https://www.youtube.com/watch?v=abc123"))
	assert.Equal(t, "track-name", TitleFromURL("https://soundcloud.com/artist/track-name/"))
	assert.Equal(t, "example.com", TitleFromURL("https://example.com/"))
	assert.Equal(t, "download", TitleFromURL("%%%"))
}

func TestOutputStem(t *testing.T) {
	got := OutputStem("/data", SourceApplePodcasts, "Episode: 1")
	assert.Equal(t, filepath.Join("/data", "podcasts", "Episode_ 1"), got)
}
