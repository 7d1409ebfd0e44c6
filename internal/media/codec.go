// Package media resolves which encodings to produce for a job and how produced files are named.
package media

import (
	"strings"
)

// Kind distinguishes audio extraction from video download.
type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// Codec is a target encoding or container name as understood by the extraction engine.
type Codec string

// Audio codecs.
const (
	CodecMP3    Codec = "mp3"
	CodecAAC    Codec = "aac"
	CodecALAC   Codec = "alac"
	CodecM4A    Codec = "m4a"
	CodecOpus   Codec = "opus"
	CodecVorbis Codec = "vorbis"
	CodecWAV    Codec = "wav"
	CodecFLAC   Codec = "flac"
)

// Video containers.
const (
	CodecMP4  Codec = "mp4"
	CodecMKV  Codec = "mkv"
	CodecWebM Codec = "webm"
	CodecMOV  Codec = "mov"
	CodecAVI  Codec = "avi"
	CodecFLV  Codec = "flv"
	CodecGIF  Codec = "gif"
)

// DefaultAudioCodec and DefaultVideoCodec are used when config has nothing usable.
const (
	DefaultAudioCodec = CodecMP3
	DefaultVideoCodec = CodecMP4
)

// AudioCodecs lists every audio codec with a known extension.
var AudioCodecs = []Codec{CodecMP3, CodecAAC, CodecALAC, CodecM4A, CodecOpus, CodecVorbis, CodecWAV, CodecFLAC}

// VideoCodecs lists every video container with a known extension.
var VideoCodecs = []Codec{CodecMP4, CodecMKV, CodecWebM, CodecMOV, CodecAVI, CodecFLV, CodecGIF}

// ParseCodec normalizes a user or config supplied codec name.
func ParseCodec(s string) Codec {
	return Codec(strings.ToLower(strings.TrimSpace(s)))
}

// IsKnown reports whether c has a dedicated extension for kind.
func (c Codec) IsKnown(kind Kind) bool {
	list := AudioCodecs
	if kind == KindVideo {
		list = VideoCodecs
	}
	for _, known := range list {
		if c == known {
			return true
		}
	}
	return false
}

// audioExtension maps an audio codec to its file extension, without the dot.
func audioExtension(c Codec) string {
	switch c {
	case CodecMP3:
		return "mp3"
	case CodecAAC:
		return "aac"
	case CodecALAC, CodecM4A:
		return "m4a"
	case CodecOpus:
		return "opus"
	case CodecVorbis:
		return "ogg"
	case CodecWAV:
		return "wav"
	case CodecFLAC:
		return "flac"
	default:
		return "mp3"
	}
}

// videoExtension maps a video container to its file extension, without the dot.
func videoExtension(c Codec) string {
	switch c {
	case CodecMP4:
		return "mp4"
	case CodecMKV:
		return "mkv"
	case CodecWebM:
		return "webm"
	case CodecMOV:
		return "mov"
	case CodecAVI:
		return "avi"
	case CodecFLV:
		return "flv"
	case CodecGIF:
		return "gif"
	default:
		return "mp4"
	}
}
