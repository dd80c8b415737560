package core

import (
	"errors"
	"io/fs"
)

var (
	// ErrNotExist is returned when a file or directory does not exist.
	ErrNotExist = fs.ErrNotExist

	// ErrExist is returned when a file or directory already exists.
	ErrExist = fs.ErrExist

	// ErrPermission is returned when permission is denied.
	ErrPermission = fs.ErrPermission

	// ErrClosed is returned when an operation is performed on a closed file.
	ErrClosed = fs.ErrClosed

	// ErrUnsupported is returned when an operation is not supported by the store,
	// for example O_APPEND on an object store.
	ErrUnsupported = errors.ErrUnsupported
)
