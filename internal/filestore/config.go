package filestore

import (
	"strings"

	"github.com/koustreak/schemats/internal/errs"
)

// Config holds the connection settings of an S3-compatible endpoint.
type Config struct {
	// Endpoint is host:port, e.g. "localhost:9000" or "s3.amazonaws.com".
	Endpoint string

	AccessKey string
	SecretKey string
	UseSSL    bool

	// Region is needed by AWS S3; leave empty for MinIO.
	Region string
}

// DefaultConfig returns a plain-HTTP config, as used against a local MinIO.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
	}
}

// Validate reports a config that cannot possibly connect.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errs.New(errs.ErrKindInvalidInput, "object store endpoint is empty")
	}
	if strings.Contains(c.Endpoint, "://") {
		return errs.Newf(errs.ErrKindInvalidInput, "object store endpoint %q must be host:port without a scheme; use store.use_ssl for TLS", c.Endpoint)
	}
	return nil
}

// Location is a bucket/key pair parsed from an "s3://bucket/key" URL.
type Location struct {
	Bucket string
	Key    string
}

func (l Location) String() string {
	return "s3://" + l.Bucket + "/" + l.Key
}

// IsObjectURL reports whether target names an object rather than a file.
func IsObjectURL(target string) bool {
	return strings.HasPrefix(target, "s3://")
}

// ParseLocation splits "s3://bucket/path/to/key.ts" into its parts.
func ParseLocation(target string) (Location, error) {
	if !IsObjectURL(target) {
		return Location{}, errs.Newf(errs.ErrKindInvalidInput, "%q is not an s3:// URL", target)
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(target, "s3://"), "/")
	if !ok || bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return Location{}, errs.Newf(errs.ErrKindInvalidInput, "%q must name a bucket and an object key", target)
	}
	return Location{Bucket: bucket, Key: key}, nil
}
