package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)

// Offline subsystem errors
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrNetworkFailure     = errors.New("network failure")
	ErrRemoteRejection    = errors.New("remote rejection")
	ErrSyncItemFailure    = errors.New("sync item failure")
)

// Error represents a custom error type
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new error with a message
func New(message string) error {
	return &Error{
		Message: message,
	}
}

// Wrap wraps an error with additional message
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Message: message,
		Err:     err,
	}
}

// WrapWithCode wraps an error with a code and message
func WrapWithCode(err error, code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NetworkFailure marks a transport-level failure.
func NetworkFailure(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    "network_failure",
		Message: message,
		Err:     &kindError{kind: ErrNetworkFailure, err: err},
	}
}

// StorageUnavailable marks a store that could not be opened.
func StorageUnavailable(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    "storage_unavailable",
		Message: message,
		Err:     &kindError{kind: ErrStorageUnavailable, err: err},
	}
}

// kindError tags err with a taxonomy sentinel without changing its message.
type kindError struct {
	kind error
	err  error
}

func (e *kindError) Error() string { return e.err.Error() }

func (e *kindError) Unwrap() []error { return []error{e.kind, e.err} }

// RemoteRejection is a non-2xx answer from the remote API.
type RemoteRejection struct {
	StatusCode int
	Message    string
}

func (e *RemoteRejection) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote rejected request with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote rejected request with status %d", e.StatusCode)
}

func (e *RemoteRejection) Is(target error) bool {
	return target == ErrRemoteRejection
}

// SyncItemFailure scopes a delivery error to one pending submission.
type SyncItemFailure struct {
	SubmissionID int64
	Err          error
}

func (e *SyncItemFailure) Error() string {
	return fmt.Sprintf("pending submission %d: %v", e.SubmissionID, e.Err)
}

func (e *SyncItemFailure) Unwrap() []error {
	return []error{ErrSyncItemFailure, e.Err}
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// GetCode returns the error code if it exists
func GetCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetMessage returns the error message
func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsNotFound returns true if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnauthorized returns true if the error is an unauthorized error
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

func IsNetworkFailure(err error) bool {
	return errors.Is(err, ErrNetworkFailure)
}

func IsRemoteRejection(err error) bool {
	return errors.Is(err, ErrRemoteRejection)
}

// RemoteStatus returns the HTTP status carried by a RemoteRejection, or 0.
func RemoteStatus(err error) int {
	var rr *RemoteRejection
	if errors.As(err, &rr) {
		return rr.StatusCode
	}
	return 0
}
