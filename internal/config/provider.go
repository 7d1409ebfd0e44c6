package config

import (
	"os"
	"strconv"
	"strings"
)

// Provider answers dotted-path configuration lookups such as "media.audio.format".
type Provider interface {
	Get(key, def string) string
	GetList(key string) []string
	GetBool(key string, def bool) bool
	IsS3Configured() bool
	IsGCPConfigured() bool
	StorageDestination() string
}

var _ Provider = (*Config)(nil)

func (c *Config) lookup(key string) (any, bool) {
	var cur any = c.raw
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Get returns the value at key as a string, or def when missing or empty.
func (c *Config) Get(key, def string) string {
	v, ok := c.lookup(key)
	if !ok {
		return def
	}
	switch v := v.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return def
	}
}

// GetList returns the non-empty string entries at key.
// A scalar string is split on commas.
func (c *Config) GetList(key string) []string {
	v, ok := c.lookup(key)
	if !ok {
		return nil
	}

	var items []string
	switch v := v.(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
	case []string:
		items = v
	case string:
		items = strings.Split(v, ",")
	}

	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// GetBool returns the boolean at key, or def when missing or unparsable.
func (c *Config) GetBool(key string, def bool) bool {
	v, ok := c.lookup(key)
	if !ok {
		return def
	}
	switch v := v.(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return def
		}
		return b
	default:
		return def
	}
}

// StorageDestination returns the persisted default destination name.
func (c *Config) StorageDestination() string {
	return strings.ToLower(c.Get("storage.destination", "local"))
}

// S3Credentials returns the access and secret keys, preferring the config file
// over the S3_ACCESS_KEY and S3_SECRET_KEY environment variables.
func (c *Config) S3Credentials() (string, string) {
	return firstNonEmpty(c.Storage.S3.AccessKey, os.Getenv("S3_ACCESS_KEY")),
		firstNonEmpty(c.Storage.S3.SecretKey, os.Getenv("S3_SECRET_KEY"))
}

// IsS3Configured reports whether a bucket and credentials are available.
func (c *Config) IsS3Configured() bool {
	if c.ephemeral {
		return false
	}
	access, secret := c.S3Credentials()
	return c.Storage.S3.Bucket != "" && access != "" && secret != ""
}

// GCPBucket returns the configured bucket, falling back to GCP_STORAGE_BUCKET.
func (c *Config) GCPBucket() string {
	return firstNonEmpty(c.Storage.GCP.Bucket, os.Getenv("GCP_STORAGE_BUCKET"))
}

// GCPKey returns the base64 service account key, falling back to GCP_SA_KEY_BASE64.
func (c *Config) GCPKey() string {
	return firstNonEmpty(c.Storage.GCP.SAKeyBase64, os.Getenv("GCP_SA_KEY_BASE64"))
}

// IsGCPConfigured reports whether a bucket and some form of credentials are available.
func (c *Config) IsGCPConfigured() bool {
	if c.ephemeral {
		return false
	}
	return c.GCPBucket() != "" && (c.GCPKey() != "" || c.Storage.GCP.CredentialsFile != "")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
