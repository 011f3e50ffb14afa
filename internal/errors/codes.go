package errors

import (
	"context"
	"errors"
)

// ErrorCode classifies an error for logging and process exit handling.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// CodeNotFound indicates a requested object or bucket does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeUnauthorized indicates the credentials or MFA code were rejected.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// CodeForbidden indicates the credentials lack permission for the operation.
	CodeForbidden ErrorCode = "FORBIDDEN"

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// CodeVersioningDisabled indicates the bucket does not keep object versions.
	CodeVersioningDisabled ErrorCode = "VERSIONING_DISABLED"

	// CodeLocalIO indicates the local destination could not be written.
	CodeLocalIO ErrorCode = "LOCAL_IO"

	// CodeCanceled indicates the operation was interrupted.
	CodeCanceled ErrorCode = "CANCELED"

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// CodeOf returns the classification of err. A nil error has no code.
func CodeOf(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidConfig):
		return CodeInvalidConfig
	case errors.Is(err, ErrMFAFailed):
		return CodeUnauthorized
	case errors.Is(err, ErrObjectNotFound), errors.Is(err, ErrBucketNotFound):
		return CodeNotFound
	case errors.Is(err, ErrAccessDenied):
		return CodeForbidden
	case errors.Is(err, ErrVersioningUnsupported):
		return CodeVersioningDisabled
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidObjectKey):
		return CodeInvalidInput
	case errors.Is(err, ErrLocalIO):
		return CodeLocalIO
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	default:
		return CodeUnknown
	}
}
