package media

import (
	"github.com/hbollon/go-edlib"
)

// suggestThreshold is the minimum Jaro-Winkler similarity for a suggestion.
const suggestThreshold = 0.75

// SuggestCodec returns the known codec closest to name, or "" if none is similar enough.
func SuggestCodec(name string, kind Kind) Codec {
	name = string(ParseCodec(name))
	list := AudioCodecs
	if kind == KindVideo {
		list = VideoCodecs
	}

	var best Codec
	var bestScore float32
	for _, c := range list {
		score := edlib.JaroWinklerSimilarity(name, string(c))
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	if bestScore < suggestThreshold {
		return ""
	}
	return best
}
