package errors

// ErrorClassification indicates whether an error should trigger a retry.
// The shell never retries on its own; the classification is surfaced so a
// caller driving the shell can decide.
type ErrorClassification string

const (
	// ClassificationRetryable indicates temporary failures that may succeed on retry.
	ClassificationRetryable ErrorClassification = "RETRYABLE"

	// ClassificationPermanent indicates failures that will not succeed on retry.
	ClassificationPermanent ErrorClassification = "PERMANENT"
)

// IsRetryable returns true if the classification indicates retry should be attempted.
func (c ErrorClassification) IsRetryable() bool {
	return c == ClassificationRetryable
}

// defaultClassifications maps error codes to their default classification.
var defaultClassifications = map[ErrorCode]ErrorClassification{
	// Remote stores can flap.
	CodeNetwork: ClassificationRetryable,
	CodeTimeout: ClassificationRetryable,

	CodeNotFound:      ClassificationPermanent,
	CodeAlreadyExists: ClassificationPermanent,
	CodeNotADirectory: ClassificationPermanent,
	CodeIsADirectory:  ClassificationPermanent,
	CodeNotEmpty:      ClassificationPermanent,
	CodeUnsupported:   ClassificationPermanent,
	CodePermission:    ClassificationPermanent,
	CodeIOFailure:     ClassificationPermanent,
	CodeClosed:        ClassificationPermanent,
	CodeInvalidInput:  ClassificationPermanent,
	CodeInvalidConfig: ClassificationPermanent,
	CodeInternal:      ClassificationPermanent,
	CodeUnknown:       ClassificationPermanent,
}

// getDefaultClassification returns the default classification for an error code.
// Unmapped codes are permanent.
func getDefaultClassification(code ErrorCode) ErrorClassification {
	if class, ok := defaultClassifications[code]; ok {
		return class
	}
	return ClassificationPermanent
}
