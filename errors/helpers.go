package errors

import (
	"context"
	stderrors "errors"
	"io/fs"
	"net"
	"os"
	"syscall"
)

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard library errors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard library errors.As.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// GetCode extracts the ErrorCode from an error.
// Returns CodeUnknown if the error is nil or not a PlatformError.
//
// Example:
//
//	if errors.GetCode(err) == errors.CodeUnsupported {
//	    // flat volume, fall back to a plain listing
//	}
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	var platformErr PlatformError
	if stderrors.As(err, &platformErr) {
		return platformErr.Code()
	}

	return CodeUnknown
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return err != nil && GetCode(err) == code
}

// GetClassification extracts the ErrorClassification from an error.
// Returns ClassificationPermanent if the error is nil or not a PlatformError.
func GetClassification(err error) ErrorClassification {
	if err == nil {
		return ClassificationPermanent
	}

	var platformErr PlatformError
	if stderrors.As(err, &platformErr) {
		return platformErr.Classification()
	}

	return ClassificationPermanent
}

// IsRetryable returns true if the error is classified as retryable.
func IsRetryable(err error) bool {
	return GetClassification(err).IsRetryable()
}

// FromFS translates an error returned by a store into the storage taxonomy.
// PlatformErrors pass through untouched. The op and path are attached as context.
//
// Returns nil if err is nil.
func FromFS(op, path string, err error) PlatformError {
	if err == nil {
		return nil
	}

	var platformErr PlatformError
	if stderrors.As(err, &platformErr) {
		return platformErr
	}

	return WrapWithContext(err, classifyFS(err), op+" "+path, map[string]interface{}{
		"op":   op,
		"path": path,
	})
}

func classifyFS(err error) ErrorCode {
	var netErr net.Error

	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		return CodeNotFound
	case stderrors.Is(err, fs.ErrExist):
		return CodeAlreadyExists
	case stderrors.Is(err, fs.ErrPermission):
		return CodePermission
	case stderrors.Is(err, fs.ErrClosed):
		return CodeClosed
	case stderrors.Is(err, stderrors.ErrUnsupported):
		return CodeUnsupported
	case stderrors.Is(err, syscall.ENOTDIR):
		return CodeNotADirectory
	case stderrors.Is(err, syscall.EISDIR):
		return CodeIsADirectory
	case stderrors.Is(err, syscall.ENOTEMPTY):
		return CodeNotEmpty
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.Is(err, os.ErrDeadlineExceeded):
		return CodeTimeout
	case stderrors.As(err, &netErr):
		return CodeNetwork
	default:
		return CodeIOFailure
	}
}
