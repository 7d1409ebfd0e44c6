package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client used for uploads.
type S3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Settings configures an S3 or S3-compatible destination.
type S3Settings struct {
	Endpoint  string // empty for AWS itself
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	SSL       bool
}

// endpointURL returns the endpoint with a scheme, or "" for AWS.
func (s S3Settings) endpointURL() string {
	ep := strings.TrimRight(strings.TrimSpace(s.Endpoint), "/")
	if ep == "" || strings.Contains(ep, "://") {
		return ep
	}
	if s.SSL {
		return "https://" + ep
	}
	return "http://" + ep
}

// NewS3Client builds an S3 client with static credentials.
// Custom endpoints use path-style addressing.
func NewS3Client(ctx context.Context, s S3Settings) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.AccessKey, s.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := s.endpointURL()
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3Uploader uploads artifacts to an S3 bucket.
type S3Uploader struct {
	client   S3API
	settings S3Settings
	now      func() time.Time
	log      *slog.Logger
}

// NewS3Uploader creates an uploader over client.
func NewS3Uploader(client S3API, settings S3Settings, log *slog.Logger) *S3Uploader {
	if log == nil {
		log = slog.Default()
	}
	return &S3Uploader{client: client, settings: settings, now: time.Now, log: log}
}

func (u *S3Uploader) IsConfigured() bool {
	return u.client != nil && u.settings.Bucket != ""
}

// Upload stores the artifact unless an object already exists under the same key.
func (u *S3Uploader) Upload(ctx context.Context, artifactPath, suggestedName, sourceCategory string) (string, error) {
	if !u.IsConfigured() {
		return "", ErrNotConfigured
	}
	key := objectKey(sourceCategory, suggestedName)
	location := u.location(key)

	_, err := u.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(u.settings.Bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		u.log.Info("object already exists, skipping upload", "bucket", u.settings.Bucket, "key", key)
		return location, nil
	}
	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		u.log.Debug("head object failed, uploading anyway", "key", key, "error", err)
	}

	f, err := os.Open(artifactPath)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat artifact: %w", err)
	}

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.settings.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(ContentType(artifactPath)),
		Metadata:      uploadMetadata(sourceCategory, u.now()),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	u.log.Debug("object uploaded", "bucket", u.settings.Bucket, "key", key, "size", info.Size())
	return location, nil
}

func (u *S3Uploader) location(key string) string {
	if ep := u.settings.endpointURL(); ep != "" {
		return fmt.Sprintf("%s/%s/%s", ep, u.settings.Bucket, key)
	}
	return fmt.Sprintf("s3://%s/%s", u.settings.Bucket, key)
}
