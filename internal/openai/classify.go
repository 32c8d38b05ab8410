package openai

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/cloo-solutions/inbox/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

// Classify wraps err in a *domain.ProviderError whose kind is derived from the
// provider's structured error, not from message text.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		return err
	}
	return domain.NewProviderError(classifyKind(err), op, err)
}

func classifyKind(err error) domain.ProviderErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ProviderTimeout
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if kind, ok := kindFromCode(apiErr.Code, apiErr.Type); ok {
			return kind
		}
		return kindFromStatus(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return kindFromStatus(reqErr.HTTPStatusCode)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return domain.ProviderTimeout
		}
		return domain.ProviderUnavailable
	}

	return domain.ProviderGenericError
}

func kindFromCode(code any, errType string) (domain.ProviderErrorKind, bool) {
	s, _ := code.(string)
	switch {
	case s == "insufficient_quota" || s == "rate_limit_exceeded" || errType == "insufficient_quota":
		return domain.ProviderQuotaExceeded, true
	case s == "content_filter" || s == "content_policy_violation":
		return domain.ProviderSafetyBlocked, true
	case strings.Contains(s, "model_not_found"):
		return domain.ProviderUnavailable, true
	}
	return "", false
}

func kindFromStatus(status int) domain.ProviderErrorKind {
	switch {
	case status == http.StatusTooManyRequests:
		return domain.ProviderQuotaExceeded
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		return domain.ProviderTimeout
	case status >= 500,
		status == http.StatusUnauthorized,
		status == http.StatusForbidden,
		status == http.StatusNotFound:
		return domain.ProviderUnavailable
	}
	return domain.ProviderGenericError
}
