// Package errs translates MinIO responses into io/fs errors.
package errs

import (
	"fmt"
	"io/fs"
	"syscall"

	"github.com/minio/minio-go/v7"
)

// Translate converts MinIO errors to stdlib fs errors so that callers can
// classify them with errors.Is.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fs.ErrNotExist
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return fs.ErrPermission
	case "BucketNotEmpty":
		return syscall.ENOTEMPTY
	}

	return fmt.Errorf("minio: %w", err)
}

// PathError wraps err in a fs.PathError; nil stays nil.
func PathError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &fs.PathError{Op: op, Path: path, Err: err}
}

// PathErrorf creates a fs.PathError with a formatted cause.
func PathErrorf(op, path, format string, args ...interface{}) error {
	return &fs.PathError{Op: op, Path: path, Err: fmt.Errorf(format, args...)}
}
