package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ErrObjectNotExist is returned by a GCSBucket when the object is absent.
var ErrObjectNotExist = gcs.ErrObjectNotExist

// GCSBucket is the subset of bucket operations used for uploads.
type GCSBucket interface {
	Metadata(ctx context.Context, object string) (map[string]string, error)
	Write(ctx context.Context, object, contentType string, metadata map[string]string, r io.Reader) error
	MakePublic(ctx context.Context, object string) error
}

// GCSSettings configures a Google Cloud Storage destination.
type GCSSettings struct {
	Bucket          string
	KeyBase64       string // service account JSON, base64 encoded
	CredentialsFile string
	Public          bool
}

// DecodeServiceAccountKey decodes a base64 service account key, tolerating
// missing padding and URL-safe alphabets.
func DecodeServiceAccountKey(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if rem := len(encoded) % 4; rem != 0 {
		encoded += strings.Repeat("=", 4-rem)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.URLEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decode service account key: %w", err)
		}
	}
	return data, nil
}

// NewGCSBucket opens the configured bucket.
// The returned close function releases the underlying client.
func NewGCSBucket(ctx context.Context, s GCSSettings) (GCSBucket, func() error, error) {
	var opts []option.ClientOption
	switch {
	case s.KeyBase64 != "":
		key, err := DecodeServiceAccountKey(s.KeyBase64)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, option.WithCredentialsJSON(key))
	case s.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(s.CredentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &gcsBucket{h: client.Bucket(s.Bucket)}, client.Close, nil
}

// gcsBucket adapts a bucket handle to GCSBucket.
type gcsBucket struct {
	h *gcs.BucketHandle
}

func (b *gcsBucket) Metadata(ctx context.Context, object string) (map[string]string, error) {
	attrs, err := b.h.Object(object).Attrs(ctx)
	if err != nil {
		return nil, err
	}
	return attrs.Metadata, nil
}

func (b *gcsBucket) Write(ctx context.Context, object, contentType string, metadata map[string]string, r io.Reader) error {
	w := b.h.Object(object).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = metadata
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (b *gcsBucket) MakePublic(ctx context.Context, object string) error {
	return b.h.Object(object).ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader)
}

// GCSUploader uploads artifacts to a GCS bucket.
type GCSUploader struct {
	bucket   GCSBucket
	settings GCSSettings
	now      func() time.Time
	log      *slog.Logger
}

// NewGCSUploader creates an uploader over bucket.
func NewGCSUploader(bucket GCSBucket, settings GCSSettings, log *slog.Logger) *GCSUploader {
	if log == nil {
		log = slog.Default()
	}
	return &GCSUploader{bucket: bucket, settings: settings, now: time.Now, log: log}
}

func (u *GCSUploader) IsConfigured() bool {
	return u.bucket != nil && u.settings.Bucket != ""
}

// Upload stores the artifact unless a completed object already exists.
func (u *GCSUploader) Upload(ctx context.Context, artifactPath, suggestedName, sourceCategory string) (string, error) {
	if !u.IsConfigured() {
		return "", ErrNotConfigured
	}
	object := objectKey(sourceCategory, suggestedName)
	location := fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.settings.Bucket, object)

	meta, err := u.bucket.Metadata(ctx, object)
	switch {
	case err == nil && meta["upload_complete"] == "true":
		u.log.Info("object already exists, skipping upload", "bucket", u.settings.Bucket, "object", object)
		return location, nil
	case err != nil && !errors.Is(err, ErrObjectNotExist):
		u.log.Debug("object attrs failed, uploading anyway", "object", object, "error", err)
	}

	f, err := os.Open(artifactPath)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := u.bucket.Write(ctx, object, ContentType(artifactPath), uploadMetadata(sourceCategory, u.now()), f); err != nil {
		return "", fmt.Errorf("write object %s: %w", object, err)
	}

	if u.settings.Public {
		if err := u.bucket.MakePublic(ctx, object); err != nil {
			u.log.Warn("could not make object public", "object", object, "error", err)
		}
	}

	return location, nil
}
