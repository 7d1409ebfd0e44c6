package media

import (
	"github.com/vmunix/distill/internal/config"
)

// FormatSpec is one requested encoding within a job.
type FormatSpec struct {
	Kind  Kind
	Codec Codec
	// FlacOverride requests 16kHz mono output for FLAC.
	FlacOverride bool
}

// Extension returns the file extension (without the dot) the spec produces.
func (s FormatSpec) Extension() string {
	if s.Kind == KindVideo {
		return videoExtension(s.Codec)
	}
	return audioExtension(s.Codec)
}

func (s FormatSpec) String() string {
	return string(s.Kind) + ":" + string(s.Codec)
}

// Audio returns an audio spec for codec.
func Audio(codec Codec) FormatSpec {
	return FormatSpec{Kind: KindAudio, Codec: codec}
}

// Video returns a video spec for codec.
func Video(codec Codec) FormatSpec {
	return FormatSpec{Kind: KindVideo, Codec: codec}
}

// Overrides are the per-run format choices made on the command line.
type Overrides struct {
	VideoFormat string
	Flac        bool
	AudioFormat string
}

// ResolveFormats decides which encodings to produce.
// First match wins:
//  1. video override with video enabled
//  2. flac flag
//  3. audio override
//  4. video enabled: configured audio formats followed by configured video formats
//  5. configured audio formats, or the default audio format
//
// The result is never empty.
func ResolveFormats(o Overrides, cfg config.Provider) []FormatSpec {
	videoEnabled := cfg.GetBool("media.video.enabled", false)

	if v := ParseCodec(o.VideoFormat); v != "" && videoEnabled {
		return []FormatSpec{Video(v)}
	}
	if o.Flac {
		return []FormatSpec{{Kind: KindAudio, Codec: CodecFLAC, FlacOverride: true}}
	}
	if a := ParseCodec(o.AudioFormat); a != "" {
		return []FormatSpec{Audio(a)}
	}

	specs := audioSpecs(cfg)
	if videoEnabled {
		specs = append(specs, videoSpecs(cfg)...)
	}
	return specs
}

func audioSpecs(cfg config.Provider) []FormatSpec {
	names := cfg.GetList("media.audio.enabled_formats")
	if len(names) == 0 {
		names = []string{cfg.Get("media.audio.format", string(DefaultAudioCodec))}
	}
	flac16k := cfg.GetBool("media.audio.flac_16k_mono", false)

	specs := make([]FormatSpec, 0, len(names))
	for _, name := range names {
		spec := Audio(ParseCodec(name))
		if spec.Codec == "" {
			spec.Codec = DefaultAudioCodec
		}
		spec.FlacOverride = spec.Codec == CodecFLAC && flac16k
		specs = append(specs, spec)
	}
	return specs
}

func videoSpecs(cfg config.Provider) []FormatSpec {
	names := cfg.GetList("media.video.enabled_formats")
	if len(names) == 0 {
		names = []string{cfg.Get("media.video.format", string(DefaultVideoCodec))}
	}

	specs := make([]FormatSpec, 0, len(names))
	for _, name := range names {
		spec := Video(ParseCodec(name))
		if spec.Codec == "" {
			spec.Codec = DefaultVideoCodec
		}
		specs = append(specs, spec)
	}
	return specs
}
