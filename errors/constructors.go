package errors

import (
	"errors"
	"fmt"
)

// New creates a new PlatformError with the given code and message.
// The classification is derived from the code.
//
// Example:
//
//	err := errors.New(errors.CodeUnsupported, "spiffs does not support directories")
func New(code ErrorCode, message string) PlatformError {
	return &platformError{
		code:           code,
		classification: getDefaultClassification(code),
		message:        message,
	}
}

// Newf creates a new PlatformError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) PlatformError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with a code and message while preserving the original error.
//
// If the wrapped error is a PlatformError, its classification is preserved.
// Returns nil if err is nil.
//
// Example:
//
//	if err := store.Remove(name); err != nil {
//	    return errors.Wrap(err, errors.CodeIOFailure, "remove failed")
//	}
func Wrap(err error, code ErrorCode, message string) PlatformError {
	return WrapWithContext(err, code, message, nil)
}

// Wrapf wraps an error with a formatted message.
// Returns nil if err is nil.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) PlatformError {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WrapWithContext wraps an error and attaches context metadata in a single operation.
// The context map is copied.
//
// Returns nil if err is nil.
//
// Example:
//
//	return errors.WrapWithContext(err, errors.CodeIOFailure, "rename failed", map[string]interface{}{
//	    "from": oldPath,
//	    "to":   newPath,
//	})
func WrapWithContext(err error, code ErrorCode, message string, ctx map[string]interface{}) PlatformError {
	if err == nil {
		return nil
	}

	classification := getDefaultClassification(code)
	var platformErr PlatformError
	if errors.As(err, &platformErr) {
		classification = platformErr.Classification()
	}

	return &platformError{
		code:           code,
		classification: classification,
		message:        message,
		context:        copyContext(ctx),
		cause:          err,
	}
}
