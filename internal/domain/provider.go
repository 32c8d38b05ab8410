package domain

import (
	"errors"
	"fmt"
)

// ProviderErrorKind classifies a failed call to the language-model provider.
type ProviderErrorKind string

const (
	ProviderUnavailable   ProviderErrorKind = "unavailable"
	ProviderTimeout       ProviderErrorKind = "timeout"
	ProviderQuotaExceeded ProviderErrorKind = "quota_exceeded"
	ProviderSafetyBlocked ProviderErrorKind = "safety_blocked"
	ProviderGenericError  ProviderErrorKind = "generic"
)

// ProviderError is returned by provider adapters so callers can dispatch on Kind
// instead of inspecting message text.
type ProviderError struct {
	Kind ProviderErrorKind
	Op   string
	Err  error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s (%s): %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("provider %s (%s)", e.Op, e.Kind)
}

// Unwrap returns the underlying error
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new ProviderError
func NewProviderError(kind ProviderErrorKind, op string, err error) *ProviderError {
	return &ProviderError{Kind: kind, Op: op, Err: err}
}

// ErrMockMode is the cause attached to ProviderUnavailable when no credentials are configured.
var ErrMockMode = errors.New("mock mode active")

// ProviderErrorKindOf extracts the kind from err, defaulting to ProviderGenericError.
func ProviderErrorKindOf(err error) ProviderErrorKind {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return ProviderGenericError
}

// IsMockMode reports whether err stems from running without provider credentials.
func IsMockMode(err error) bool {
	return errors.Is(err, ErrMockMode)
}

// DegradedReason returns the user-facing phrase for a provider failure.
func DegradedReason(err error) string {
	if IsMockMode(err) {
		return "the app is running in mock mode without an AI provider"
	}
	switch ProviderErrorKindOf(err) {
	case ProviderTimeout:
		return "the AI provider request timed out"
	case ProviderQuotaExceeded:
		return "the AI provider quota was exceeded"
	case ProviderSafetyBlocked:
		return "the content was blocked by the AI provider's safety filters"
	default:
		return "the AI provider is currently unavailable"
	}
}

// DegradedAnswer builds the fixed explanatory sentence returned with keyword-only citations.
func DegradedAnswer(err error) string {
	return fmt.Sprintf("I found these specific matches for your question in your notes. (Note: %s, so I am using precise keyword search).", DegradedReason(err))
}
