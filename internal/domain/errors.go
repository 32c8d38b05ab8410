package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches DomainErrors by code and message so wrapped copies compare equal to sentinels.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeUnprocessable = "UNPROCESSABLE"
)

// Validation errors
var (
	ErrInvalidItemKind      = NewDomainError(ErrCodeValidation, "type must be note or url")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrEmptyChunkSet        = NewDomainError(ErrCodeValidation, "no meaningful text could be extracted to save")
	ErrInvalidChunkConfig   = NewDomainError(ErrCodeValidation, "chunk size must be positive and larger than overlap")
	ErrEmptyQuestion        = NewDomainError(ErrCodeValidation, "question is required")
	ErrInvalidURL           = NewDomainError(ErrCodeValidation, "url must be an absolute http or https address")
)

// Not found errors
var (
	ErrItemNotFound     = NewDomainError(ErrCodeNotFound, "item not found")
	ErrSnapshotNotFound = NewDomainError(ErrCodeNotFound, "no archived snapshot for item")
)

// Extraction errors
var (
	ErrExtractionFailed = NewDomainError(ErrCodeUnprocessable, "could not extract meaningful content from this URL")
)

// Authorization errors
var (
	ErrInvalidAPIToken = NewDomainError(ErrCodeUnauthorized, "invalid api token")
)

// Storage errors
var (
	ErrStorageOperationFail = NewDomainError(ErrCodeInternalError, "storage operation failed")
)
