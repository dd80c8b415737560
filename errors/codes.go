package errors

// ErrorCode represents a specific error condition.
// Error codes are string-based for debuggability and readable log output.
type ErrorCode string

const (
	// Path errors.

	// CodeNotFound indicates the path does not exist on the volume.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates the path already exists and cannot be created again.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// CodeNotADirectory indicates a directory operation was applied to a file.
	CodeNotADirectory ErrorCode = "NOT_A_DIRECTORY"

	// CodeIsADirectory indicates a file operation was applied to a directory.
	CodeIsADirectory ErrorCode = "IS_A_DIRECTORY"

	// CodeNotEmpty indicates a directory still has children.
	CodeNotEmpty ErrorCode = "NOT_EMPTY"

	// Capability errors.

	// CodeUnsupported indicates the backend lacks the capability for the operation,
	// for example directories on a flat-namespace volume.
	CodeUnsupported ErrorCode = "UNSUPPORTED"

	// CodePermission indicates the store refused the operation.
	CodePermission ErrorCode = "PERMISSION_DENIED"

	// Storage errors.

	// CodeIOFailure indicates a store primitive failed with no finer detail available.
	CodeIOFailure ErrorCode = "IO_FAILURE"

	// CodeClosed indicates an operation on a handle that was already closed.
	CodeClosed ErrorCode = "CLOSED"

	// CodeNetwork indicates a remote store could not be reached.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// System errors.

	// CodeInternal indicates an internal error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
