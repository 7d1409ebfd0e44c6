package storage

//go:generate mockgen -source=uploader.go -destination=mocks/uploader.go -package=mocks

import (
	"context"
	"path"
	"strconv"
	"time"
)

// Uploader delivers an artifact to one remote destination.
type Uploader interface {
	IsConfigured() bool
	// Upload stores the file at artifactPath as sourceCategory/suggestedName and
	// returns a displayable location.
	Upload(ctx context.Context, artifactPath, suggestedName, sourceCategory string) (string, error)
}

// objectKey joins a category folder and file name into a bucket key.
func objectKey(category, name string) string {
	if category == "" {
		return name
	}
	return path.Join(category, name)
}

// uploadMetadata is stored alongside every uploaded object.
func uploadMetadata(category string, now time.Time) map[string]string {
	return map[string]string{
		"upload_complete":  "true",
		"upload_timestamp": strconv.FormatInt(now.Unix(), 10),
		"source_type":      category,
	}
}
