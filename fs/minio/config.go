// Package minio provides a MinIO/S3-compatible store implementing core.FS.
package minio

import (
	"github.com/jmgilman/busybox/errors"
	"github.com/minio/minio-go/v7"
)

const (
	defaultMultipartThreshold int64 = 5 * 1024 * 1024
	defaultRenameConcurrency        = 10
	defaultCapacity           int64 = 64 * 1024 * 1024
)

// Config holds MinIO store configuration.
type Config struct {
	// Endpoint is the MinIO server address (e.g., "localhost:9000")
	Endpoint string

	// Bucket is the S3 bucket name
	Bucket string

	// AccessKey and SecretKey authenticate against the server
	AccessKey string
	SecretKey string

	// UseSSL enables HTTPS connections
	UseSSL bool

	// Prefix namespaces every object key
	Prefix string

	// Client is an optional pre-configured MinIO client.
	// If provided, Endpoint/AccessKey/SecretKey are ignored.
	Client *minio.Client

	// MultipartThreshold is the buffered size past which writes switch to a
	// streaming upload. Default: 5MB.
	MultipartThreshold int64

	// MaxRenameConcurrency limits concurrent copies during directory rename.
	// Default: 10.
	MaxRenameConcurrency int

	// Capacity is the quota reported as total space. Buckets have no size,
	// so the store reports this figure and the bytes stored under Prefix.
	// Default: 64MB.
	Capacity int64
}

// validate checks that either Client or the full connection triple is set.
func (c *Config) validate() error {
	if c.Bucket == "" {
		return errors.New(errors.CodeInvalidConfig, "bucket is required")
	}
	if c.Capacity < 0 {
		return errors.Newf(errors.CodeInvalidConfig, "capacity must not be negative, got %d", c.Capacity)
	}
	if c.Client != nil {
		return nil
	}
	if c.Endpoint == "" {
		return errors.New(errors.CodeInvalidConfig, "endpoint is required when client is not provided")
	}
	if c.AccessKey == "" {
		return errors.New(errors.CodeInvalidConfig, "access key is required when client is not provided")
	}
	if c.SecretKey == "" {
		return errors.New(errors.CodeInvalidConfig, "secret key is required when client is not provided")
	}
	return nil
}
