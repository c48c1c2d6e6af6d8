package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Condition language errors
	ErrConditionSyntax ErrorCode = "CONDITION_SYNTAX"
	ErrConditionRegex  ErrorCode = "CONDITION_REGEX"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigSave  ErrorCode = "CONFIG_SAVE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Rule and folder errors
	ErrRuleNotFound   ErrorCode = "RULE_NOT_FOUND"
	ErrRuleInvalid    ErrorCode = "RULE_INVALID"
	ErrFolderNotFound ErrorCode = "FOLDER_NOT_FOUND"

	// Store errors
	ErrStoreOpen  ErrorCode = "STORE_OPEN"
	ErrStoreQuery ErrorCode = "STORE_QUERY"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileMove     ErrorCode = "FILE_MOVE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
	ErrVolumeGone   ErrorCode = "VOLUME_GONE"

	// Watcher errors
	ErrWatchStart ErrorCode = "WATCH_START"
	ErrWatchAdd   ErrorCode = "WATCH_ADD"
)

// ButlerError represents a structured error with code and details
type ButlerError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *ButlerError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ButlerError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *ButlerError) Is(target error) bool {
	var targetErr *ButlerError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new ButlerError with the given code and message
func New(code ErrorCode, message string) *ButlerError {
	return &ButlerError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new ButlerError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ButlerError {
	return &ButlerError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a ButlerError
func Wrap(err error, code ErrorCode, message string) *ButlerError {
	if err == nil {
		return nil
	}
	return &ButlerError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *ButlerError {
	if err == nil {
		return nil
	}
	return &ButlerError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *ButlerError) WithDetail(key string, value interface{}) *ButlerError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// GetCode extracts the error code from an error, returning ErrUnknown
// for errors that are not ButlerErrors
func GetCode(err error) ErrorCode {
	var be *ButlerError
	if errors.As(err, &be) {
		return be.Code
	}
	return ErrUnknown
}

// IsCode reports whether err carries the given code
func IsCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}
