package download

import (
	"errors"
	"strings"

	"github.com/vmunix/distill/internal/engine"
)

// Cause is the normalized, display-only reason for a failed download.
type Cause int

const (
	CauseUnknown Cause = iota
	CauseProviderBlocked
	CauseRateLimited
	CauseNetwork
	CauseNotFound
	CauseGeneric
)

func (c Cause) String() string {
	switch c {
	case CauseProviderBlocked:
		return "provider blocked (HTTP 403)"
	case CauseRateLimited:
		return "rate limited (HTTP 429)"
	case CauseNetwork:
		return "network error"
	case CauseNotFound:
		return "not found (HTTP 404)"
	case CauseGeneric:
		return "download failed"
	default:
		return "unknown"
	}
}

// Err returns the sentinel error matching c.
func (c Cause) Err() error {
	switch c {
	case CauseProviderBlocked:
		return ErrProviderBlocked
	case CauseRateLimited:
		return ErrRateLimited
	case CauseNetwork:
		return ErrNetwork
	case CauseNotFound:
		return ErrNotFound
	default:
		return ErrUnknownFailure
	}
}

// NormalizeCause maps raw engine output to a Cause for display.
func NormalizeCause(raw string) Cause {
	s := strings.ToLower(raw)
	switch {
	case s == "":
		return CauseUnknown
	case containsAny(s, "403", "forbidden", "video data"):
		return CauseProviderBlocked
	case containsAny(s, "429", "too many requests", "rate limit"):
		return CauseRateLimited
	case containsAny(s, "network", "connection", "timed out", "timeout", "unreachable",
		"name or service not known", "temporary failure in name resolution"):
		return CauseNetwork
	case containsAny(s, "404", "not found"):
		return CauseNotFound
	case containsAny(s, "download failed", "error:"):
		return CauseGeneric
	default:
		return CauseUnknown
	}
}

// IsBlocked reports whether err carries the access-blocked signature that
// triggers a fallback strategy.
func IsBlocked(err error) bool {
	if err == nil || errors.Is(err, ErrInterrupted) {
		return false
	}
	return containsAny(strings.ToLower(failureText(err)), "403", "forbidden", "video data")
}

// failureText is the part of err that describes why the engine failed.
// For engine runs that is the ERROR: lines only, so titles, sizes and URLs
// echoed in progress output never affect classification.
func failureText(err error) string {
	if err == nil {
		return ""
	}
	var execErr *engine.ExecError
	if errors.As(err, &execErr) {
		if msg := execErr.Message(); msg != "" {
			return msg
		}
		return execErr.Err.Error()
	}
	return err.Error()
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
