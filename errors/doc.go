// Package errors provides structured error handling for volume and shell operations.
//
// This package extends Go's standard error handling with error codes, classification
// (retryable vs permanent) and context metadata. It maintains full compatibility with
// the standard library errors package (errors.Is, errors.As, errors.Unwrap).
//
// # Taxonomy
//
// Volumes report expected conditions as ordinary error values, never as panics:
//
//   - CodeNotFound: the path is absent
//   - CodeNotADirectory: a directory operation was applied to a file
//   - CodeUnsupported: the backend lacks the capability (directories on a flat volume)
//   - CodeIOFailure: a store primitive failed with no finer detail
//
// Store errors (io/fs sentinels, syscall errnos, network errors) are translated
// once, at the volume boundary, with FromFS.
//
// # Quick Start
//
//	err := errors.New(errors.CodeUnsupported, "spiffs does not support directories")
//
//	if err := store.Remove(name); err != nil {
//	    return errors.FromFS("remove", name, err)
//	}
//
//	if errors.HasCode(err, errors.CodeNotFound) {
//	    // report and move on
//	}
package errors
