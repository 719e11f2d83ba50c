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
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Schema and registration errors
	ErrTypeNotRegistered     ErrorCode = "TYPE_NOT_REGISTERED"
	ErrTypeAlreadyRegistered ErrorCode = "TYPE_ALREADY_REGISTERED"
	ErrSchemaInvalid         ErrorCode = "SCHEMA_INVALID"

	// Clone configuration errors
	ErrConfigInvalid ErrorCode = "CONFIG_INVALID"

	// Attribute access errors
	ErrMissingAttribute ErrorCode = "MISSING_ATTRIBUTE"
	ErrAttributeType    ErrorCode = "ATTRIBUTE_TYPE"

	// Cascade errors
	ErrUnknownRelation ErrorCode = "RELATION_UNKNOWN"
	ErrCascadeCycle    ErrorCode = "CASCADE_CYCLE"

	// Persistence errors
	ErrPersistence ErrorCode = "PERSISTENCE"

	// Rules file errors
	ErrRulesLoad    ErrorCode = "RULES_LOAD"
	ErrRulesParse   ErrorCode = "RULES_PARSE"
	ErrRulesInvalid ErrorCode = "RULES_INVALID"
)

// MothballError represents a structured error with code and details
type MothballError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *MothballError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *MothballError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *MothballError) Is(target error) bool {
	var targetErr *MothballError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new MothballError with the given code and message
func New(code ErrorCode, message string) *MothballError {
	return &MothballError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new MothballError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *MothballError {
	return &MothballError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a MothballError
func Wrap(err error, code ErrorCode, message string) *MothballError {
	if err == nil {
		return nil
	}
	return &MothballError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *MothballError {
	if err == nil {
		return nil
	}
	return &MothballError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *MothballError) WithDetail(key string, value interface{}) *MothballError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *MothballError) WithDetails(details map[string]interface{}) *MothballError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var mbErr *MothballError
	if errors.As(err, &mbErr) {
		return mbErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a MothballError
func GetErrorCode(err error) ErrorCode {
	var mbErr *MothballError
	if errors.As(err, &mbErr) {
		return mbErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a MothballError
func GetErrorDetails(err error) map[string]interface{} {
	var mbErr *MothballError
	if errors.As(err, &mbErr) {
		return mbErr.Details
	}
	return nil
}
