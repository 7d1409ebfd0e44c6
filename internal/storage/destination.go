// Package storage decides where artifacts go and delivers them there.
package storage

import (
	"fmt"
	"strings"

	"github.com/vmunix/distill/internal/config"
)

// Destination is a storage target for a produced artifact.
type Destination string

const (
	DestinationLocal Destination = "local"
	DestinationS3    Destination = "s3"
	DestinationGCP   Destination = "gcp"
)

// fallbackError is the storage.fallback value meaning "never substitute a remote".
const fallbackError = "error"

// ParseDestination parses a destination name, case-insensitively.
func ParseDestination(s string) (Destination, error) {
	switch d := Destination(strings.ToLower(strings.TrimSpace(s))); d {
	case DestinationLocal, DestinationS3, DestinationGCP:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDestination, s)
	}
}

// IsRemote reports whether artifacts sent to d leave the local machine.
func (d Destination) IsRemote() bool {
	return d == DestinationS3 || d == DestinationGCP
}

// IsConfigured reports whether d can be used. Local always can.
func (d Destination) IsConfigured(cfg config.Provider) bool {
	switch d {
	case DestinationLocal:
		return true
	case DestinationS3:
		return cfg.IsS3Configured()
	case DestinationGCP:
		return cfg.IsGCPConfigured()
	default:
		return false
	}
}

// Label is the human readable name used in warnings.
func (d Destination) Label() string {
	switch d {
	case DestinationS3:
		return "S3"
	case DestinationGCP:
		return "GCP"
	case DestinationLocal:
		return "local"
	default:
		return string(d)
	}
}

// Resolution is the outcome of destination resolution.
type Resolution struct {
	Destinations []Destination
	Warnings     []string
}

// Remote returns the non-local destinations, in order.
func (r Resolution) Remote() []Destination {
	var out []Destination
	for _, d := range r.Destinations {
		if d.IsRemote() {
			out = append(out, d)
		}
	}
	return out
}

// ResolveDestinations decides where a job's artifacts are sent.
//
// With several flags, unconfigured destinations are dropped with a warning.
// With one flag, or none (the persisted default is used), an unconfigured remote
// is replaced by storage.fallback, and by local when the fallback is "error" or
// itself unusable. The result always holds at least one destination.
func ResolveDestinations(flags []Destination, cfg config.Provider) Resolution {
	flags = dedupe(flags)
	var res Resolution

	switch len(flags) {
	case 0:
		primary, err := ParseDestination(cfg.StorageDestination())
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("invalid default destination %q, using local", cfg.StorageDestination()))
			primary = DestinationLocal
		}
		res.Destinations = []Destination{substitute(primary, cfg, &res.Warnings)}
	case 1:
		res.Destinations = []Destination{substitute(flags[0], cfg, &res.Warnings)}
	default:
		for _, d := range flags {
			if d.IsConfigured(cfg) {
				res.Destinations = append(res.Destinations, d)
				continue
			}
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s not configured, skipping %s upload", d.Label(), d.Label()))
		}
		if len(res.Destinations) == 0 {
			res.Warnings = append(res.Warnings, "no requested destination is configured, keeping local copy only")
			res.Destinations = []Destination{DestinationLocal}
		}
	}

	return res
}

func substitute(primary Destination, cfg config.Provider, warnings *[]string) Destination {
	if primary.IsConfigured(cfg) {
		return primary
	}

	fallback := strings.ToLower(cfg.Get("storage.fallback", string(DestinationLocal)))
	if fallback == fallbackError {
		*warnings = append(*warnings, fmt.Sprintf("%s not configured, storing locally", primary.Label()))
		return DestinationLocal
	}

	sub, err := ParseDestination(fallback)
	if err != nil || !sub.IsConfigured(cfg) {
		sub = DestinationLocal
	}
	*warnings = append(*warnings, fmt.Sprintf("%s not configured, falling back to %s", primary.Label(), sub.Label()))
	return sub
}

func dedupe(flags []Destination) []Destination {
	seen := make(map[Destination]bool, len(flags))
	out := make([]Destination, 0, len(flags))
	for _, d := range flags {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}
