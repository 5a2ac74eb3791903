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
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Manifest errors
	ErrManifestLoad  ErrorCode = "MANIFEST_LOAD"
	ErrManifestParse ErrorCode = "MANIFEST_PARSE"
	ErrManifestCycle ErrorCode = "MANIFEST_CYCLE"

	// Installation errors
	ErrStepFailed         ErrorCode = "STEP_FAILED"
	ErrCommandFailed      ErrorCode = "COMMAND_FAILED"
	ErrSourceControl      ErrorCode = "SOURCE_CONTROL"
	ErrRelocate           ErrorCode = "RELOCATE"
	ErrRequirementMissing ErrorCode = "REQUIREMENT_MISSING"
	ErrRequirementCycle   ErrorCode = "REQUIREMENT_CYCLE"

	// FileSystem errors
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrFileWrite     ErrorCode = "FILE_WRITE"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
	ErrDirCreate     ErrorCode = "DIR_CREATE"
)

// ModuleError represents a structured error with code and details
type ModuleError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *ModuleError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ModuleError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *ModuleError) Is(target error) bool {
	var targetErr *ModuleError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new ModuleError with the given code and message
func New(code ErrorCode, message string) *ModuleError {
	return &ModuleError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new ModuleError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ModuleError {
	return &ModuleError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a ModuleError
func Wrap(err error, code ErrorCode, message string) *ModuleError {
	if err == nil {
		return nil
	}
	return &ModuleError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *ModuleError {
	if err == nil {
		return nil
	}
	return &ModuleError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *ModuleError) WithDetail(key string, value interface{}) *ModuleError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var moduleErr *ModuleError
	if errors.As(err, &moduleErr) {
		return moduleErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a ModuleError
func GetErrorCode(err error) ErrorCode {
	var moduleErr *ModuleError
	if errors.As(err, &moduleErr) {
		return moduleErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a ModuleError
func GetErrorDetails(err error) map[string]interface{} {
	var moduleErr *ModuleError
	if errors.As(err, &moduleErr) {
		return moduleErr.Details
	}
	return nil
}
