package download

import (
	"strconv"

	"github.com/vmunix/distill/internal/config"
	"github.com/vmunix/distill/internal/engine"
	"github.com/vmunix/distill/internal/media"
)

const (
	// videoSelector asks for separate best streams merged locally; progressive
	// formats are blocked by provider CDNs more often.
	videoSelector = "bestvideo*+bestaudio/bestvideo+bestaudio"

	// combinedSelector fetches a muxed stream and extracts audio from it.
	combinedSelector = "best"

	// audioOnlySelector requests an audio-only stream directly.
	audioOnlySelector = "bestaudio/best"

	// flac16kMonoArgs resamples FLAC output to 16kHz mono.
	flac16kMonoArgs = "ffmpeg:-ar 16000 -ac 1"
)

// Verdict is the typed result of evaluating one strategy.
type Verdict int

const (
	VerdictSucceeded Verdict = iota
	VerdictRetryable
	VerdictTerminal
)

func (v Verdict) String() string {
	switch v {
	case VerdictSucceeded:
		return "succeeded"
	case VerdictRetryable:
		return "retryable"
	default:
		return "terminal"
	}
}

// Strategy is one way of producing an artifact for a FormatSpec.
type Strategy struct {
	Name string
	// Spec is what this strategy produces, which differs from the requested
	// spec when a video request falls back to audio.
	Spec    media.FormatSpec
	Options engine.Options
	// Fallback strategies only run after a blocked primary; any failure of
	// theirs moves on to the next strategy.
	Fallback bool
}

// Classify decides what a strategy's result means for the rest of the chain.
func (s Strategy) Classify(err error) Verdict {
	switch {
	case err == nil:
		return VerdictSucceeded
	case s.Fallback, IsBlocked(err):
		return VerdictRetryable
	default:
		return VerdictTerminal
	}
}

// Settings are the persisted download preferences.
type Settings struct {
	DefaultAudio      media.Codec
	AudioQuality      string
	PreferAudioStream bool
	FallbackFormats   []string
	Retries           int
	ForceOverwrites   bool
	TempDir           string
}

// SettingsFromConfig reads download preferences, falling back to defaults.
func SettingsFromConfig(cfg config.Provider) Settings {
	retries, err := strconv.Atoi(cfg.Get("download.retries", "10"))
	if err != nil || retries < 0 {
		retries = 10
	}
	fallbacks := cfg.GetList("download.fallback_formats")
	if len(fallbacks) == 0 {
		fallbacks = []string{"18", "140"}
	}
	return Settings{
		DefaultAudio:      media.ParseCodec(cfg.Get("media.audio.format", string(media.DefaultAudioCodec))),
		AudioQuality:      cfg.Get("media.audio.quality", "5"),
		PreferAudioStream: cfg.GetBool("media.audio.prefer_audio_stream", false),
		FallbackFormats:   fallbacks,
		Retries:           retries,
		ForceOverwrites:   cfg.GetBool("download.force_overwrites", false),
		TempDir:           cfg.Get("paths.temp_dir", ""),
	}
}

// Chain returns the ordered strategies for spec.
func (s Settings) Chain(spec media.FormatSpec) []Strategy {
	if spec.Kind == media.KindVideo {
		fallback := media.Audio(s.DefaultAudio)
		return []Strategy{
			{Name: "merged-streams", Spec: spec, Options: s.videoOptions(spec)},
			{Name: "audio-fallback", Spec: fallback, Options: s.audioOptions(fallback, s.audioSelector()), Fallback: true},
		}
	}

	chain := []Strategy{{Name: "primary", Spec: spec, Options: s.audioOptions(spec, s.audioSelector())}}
	for _, id := range s.FallbackFormats {
		chain = append(chain, Strategy{
			Name:     "format-" + id,
			Spec:     spec,
			Options:  s.audioOptions(spec, id),
			Fallback: true,
		})
	}
	return chain
}

func (s Settings) audioSelector() string {
	if s.PreferAudioStream {
		return audioOnlySelector
	}
	return combinedSelector
}

func (s Settings) base() engine.Options {
	return engine.Options{
		Retries:       s.Retries,
		NoOverwrites:  !s.ForceOverwrites,
		EmbedMetadata: true,
		TempDir:       s.TempDir,
	}
}

func (s Settings) audioOptions(spec media.FormatSpec, selector string) engine.Options {
	o := s.base()
	o.Format = selector
	o.ExtractAudio = true
	o.AudioFormat = string(spec.Codec)
	if o.AudioFormat == "" {
		o.AudioFormat = string(media.DefaultAudioCodec)
	}
	if spec.Codec == media.CodecMP3 {
		o.AudioQuality = s.AudioQuality
	}
	if spec.FlacOverride {
		o.PostprocessorArgs = flac16kMonoArgs
	}
	return o
}

func (s Settings) videoOptions(spec media.FormatSpec) engine.Options {
	o := s.base()
	o.Format = videoSelector
	o.MergeFormat = mergeContainer(spec.Codec)
	return o
}

// mergeContainer returns the --merge-output-format value for c, or "" when the
// engine cannot merge into it.
func mergeContainer(c media.Codec) string {
	switch c {
	case media.CodecMP4, media.CodecMKV, media.CodecWebM, media.CodecMOV, media.CodecAVI, media.CodecFLV:
		return string(c)
	case media.CodecGIF:
		return ""
	default:
		return string(media.DefaultVideoCodec)
	}
}
