// Package inscribe stamps the source URL into downloaded media files.
package inscribe

//go:generate mockgen -source=inscribe.go -destination=mocks/inscribe.go -package=mocks

import "context"

// TagKey is the container tag holding the source URL.
const TagKey = "SOURCE_URL"

// Inscriber writes and reads the source URL tag of a media file.
type Inscriber interface {
	Write(ctx context.Context, path, sourceURL string) error
	Read(ctx context.Context, path string) (string, error)
}
