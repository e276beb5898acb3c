package common

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrorCode represents different types of application errors
type ErrorCode string

const (
	// General errors
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyExists      ErrorCode = "ALREADY_EXISTS"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// Validation errors
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidFormat    ErrorCode = "INVALID_FORMAT"
	ErrCodeMissingRequired  ErrorCode = "MISSING_REQUIRED"

	// Database errors
	ErrCodeDatabaseConnection ErrorCode = "DATABASE_CONNECTION"
	ErrCodeDatabaseQuery      ErrorCode = "DATABASE_QUERY"
	ErrCodeDatabaseConstraint ErrorCode = "DATABASE_CONSTRAINT"

	// External service errors
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE"
	ErrCodeNetworkError    ErrorCode = "NETWORK_ERROR"

	// Business logic errors
	ErrCodeBusinessRuleViolation ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeInvalidState          ErrorCode = "INVALID_STATE"
	ErrCodeOperationNotAllowed   ErrorCode = "OPERATION_NOT_ALLOWED"
	ErrCodeTenantMismatch        ErrorCode = "TENANT_MISMATCH"

	// Import errors
	ErrCodeImportNotEligible ErrorCode = "IMPORT_NOT_ELIGIBLE"
	ErrCodeLockAcquisition   ErrorCode = "LOCK_ACQUISITION_FAILED"
)

// AppError represents a structured application error
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StatusCode int                    `json:"-"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Stack      string                 `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCause sets the underlying cause
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: getHTTPStatusCode(code),
		Stack:      getStackTrace(),
	}
}

// NewAppErrorWithDetails creates a new application error with details
func NewAppErrorWithDetails(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Details:    details,
		StatusCode: getHTTPStatusCode(code),
		Stack:      getStackTrace(),
	}
}

// NewAppErrorWithCause creates a new application error with an underlying cause
func NewAppErrorWithCause(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Cause:      cause,
		StatusCode: getHTTPStatusCode(code),
		Stack:      getStackTrace(),
	}
}

// WrapError wraps an existing error with application error context
func WrapError(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	// If it's already an AppError, preserve it
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}

	return &AppError{
		Code:       code,
		Message:    message,
		Cause:      err,
		StatusCode: getHTTPStatusCode(code),
		Stack:      getStackTrace(),
	}
}

// getHTTPStatusCode maps error codes to HTTP status codes
func getHTTPStatusCode(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadyExists:
		return http.StatusConflict
	case ErrCodeInvalidInput, ErrCodeValidationFailed, ErrCodeInvalidFormat,
		ErrCodeMissingRequired:
		return http.StatusBadRequest
	case ErrCodeTimeout:
		return http.StatusRequestTimeout
	case ErrCodeServiceUnavailable, ErrCodeDatabaseConnection, ErrCodeExternalService:
		return http.StatusServiceUnavailable
	case ErrCodeBusinessRuleViolation, ErrCodeInvalidState, ErrCodeOperationNotAllowed,
		ErrCodeImportNotEligible:
		return http.StatusUnprocessableEntity
	case ErrCodeTenantMismatch:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// getStackTrace captures the current stack trace
func getStackTrace() string {
	buf := make([]byte, 1024)
	for {
		n := runtime.Stack(buf, false)
		if n < len(buf) {
			return string(buf[:n])
		}
		buf = make([]byte, 2*len(buf))
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetAppError extracts AppError from error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// HasErrorCode checks if the error has a specific error code
func HasErrorCode(err error, code ErrorCode) bool {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code == code
	}
	return false
}

// IsNotFoundError checks if the error represents a missing resource
func IsNotFoundError(err error) bool {
	return HasErrorCode(err, ErrCodeNotFound)
}

// Common error constructors for frequently used errors

// ErrNotFound creates a not found error
func ErrNotFound(resource string) *AppError {
	return NewAppError(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

// ErrAlreadyExists creates an already exists error
func ErrAlreadyExists(resource string) *AppError {
	return NewAppError(ErrCodeAlreadyExists, fmt.Sprintf("%s already exists", resource))
}

// ErrInvalidInput creates an invalid input error
func ErrInvalidInput(field string) *AppError {
	return NewAppError(ErrCodeInvalidInput, fmt.Sprintf("invalid input for field: %s", field))
}

// ErrValidationFailed creates a validation failed error
func ErrValidationFailed(details string) *AppError {
	return NewAppErrorWithDetails(ErrCodeValidationFailed, "validation failed", details)
}

// ErrDatabaseConnection creates a database connection error
func ErrDatabaseConnection(cause error) *AppError {
	return NewAppErrorWithCause(ErrCodeDatabaseConnection, "database connection failed", cause)
}

// ErrExternalService creates an external service error
func ErrExternalService(service string, cause error) *AppError {
	return NewAppErrorWithCause(ErrCodeExternalService,
		fmt.Sprintf("external service error: %s", service), cause)
}

// ErrTimeout creates a timeout error
func ErrTimeout(operation string) *AppError {
	return NewAppError(ErrCodeTimeout, fmt.Sprintf("operation timeout: %s", operation))
}

// ErrInternal creates an internal error
func ErrInternal(message string) *AppError {
	if message == "" {
		message = "internal server error"
	}
	return NewAppError(ErrCodeInternal, message)
}

// ErrBusinessRule creates a business rule violation error
func ErrBusinessRule(rule string) *AppError {
	return NewAppError(ErrCodeBusinessRuleViolation,
		fmt.Sprintf("business rule violation: %s", rule))
}

// ErrInvalidState creates an invalid state error
func ErrInvalidState(current, expected string) *AppError {
	return NewAppErrorWithDetails(ErrCodeInvalidState, "invalid state",
		fmt.Sprintf("current: %s, expected: %s", current, expected))
}

// ErrImportNotEligible creates an import eligibility error
func ErrImportNotEligible(reason string) *AppError {
	return NewAppError(ErrCodeImportNotEligible, reason)
}

// RecoverHandler handles panics and converts them to errors
func RecoverHandler() *AppError {
	if r := recover(); r != nil {
		switch v := r.(type) {
		case error:
			return WrapError(v, ErrCodeInternal, "panic occurred")
		case string:
			return NewAppError(ErrCodeInternal, v)
		default:
			return NewAppError(ErrCodeInternal, fmt.Sprintf("panic occurred: %v", v))
		}
	}
	return nil
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}

	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}

	return fmt.Sprintf("validation failed with %d errors", len(ve))
}

// ToAppError converts ValidationErrors to AppError
func (ve ValidationErrors) ToAppError() *AppError {
	if len(ve) == 0 {
		return nil
	}

	appErr := NewAppError(ErrCodeValidationFailed, "validation failed")
	appErr.WithContext("validation_errors", ve)

	return appErr
}

// Add adds a validation error
func (ve *ValidationErrors) Add(field, message string, value interface{}) {
	*ve = append(*ve, ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	})
}

// HasErrors returns true if there are validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}
