// Package errors provides error types and classification for the downloader.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a failed operation with context about the object involved.
// It wraps the underlying SDK or filesystem error for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "head", "get", "listVersions")
	Op string

	// Bucket is the bucket name (if applicable)
	Bucket string

	// Key is the object key (if applicable)
	Key string

	// VersionID is the object version (if applicable)
	VersionID string

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	key := e.Key
	if e.VersionID != "" {
		key = fmt.Sprintf("%s@%s", e.Key, e.VersionID)
	}
	if e.Bucket != "" && key != "" {
		return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Bucket, key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if key != "" {
		return fmt.Sprintf("%s object %s: %v", e.Op, key, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithVersion adds version context to an existing error.
func (e *Error) WithVersion(versionID string) *Error {
	e.VersionID = versionID
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// Sentinel errors for the failure categories the commands distinguish.
// These can be used with errors.Is() for error checking.
var (
	// ErrInvalidConfig indicates a missing or incomplete configuration
	ErrInvalidConfig = errors.New("wasabi: invalid configuration")

	// ErrMFAFailed indicates the MFA session token exchange was rejected
	ErrMFAFailed = errors.New("wasabi: mfa authentication failed")

	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("wasabi: object not found")

	// ErrBucketNotFound indicates that the configured bucket does not exist
	ErrBucketNotFound = errors.New("wasabi: bucket not found")

	// ErrVersioningUnsupported indicates the bucket cannot list object versions
	ErrVersioningUnsupported = errors.New("wasabi: bucket versioning not enabled")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("wasabi: access denied")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("wasabi: invalid input")

	// ErrInvalidObjectKey indicates a key that cannot be mapped to a local path
	ErrInvalidObjectKey = errors.New("wasabi: invalid object key")

	// ErrLocalIO indicates the destination could not be written
	ErrLocalIO = errors.New("wasabi: local i/o error")
)

// IsObjectNotFound checks if an error indicates that an object was not found.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsVersioningUnsupported checks if an error indicates the bucket has no versioning.
func IsVersioningUnsupported(err error) bool {
	return errors.Is(err, ErrVersioningUnsupported)
}

// IsAccessDenied checks if an error indicates access was denied.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsInvalidConfig checks if an error is a configuration error.
func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// IsLocalIO checks if an error happened while writing the destination.
func IsLocalIO(err error) bool {
	return errors.Is(err, ErrLocalIO)
}

// As is errors.As, re-exported so callers need a single errors import.
func As(err error, target any) bool {
	return errors.As(err, target)
}
