package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies backend failures for the rotation logic: rate limits
// park the backend for a cooldown, auth failures and provider errors move on
// to the next backend immediately.
type ErrorKind int

const (
	KindProvider ErrorKind = iota
	KindRateLimit
	KindAuth
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimit:
		return "rate_limit"
	case KindAuth:
		return "auth"
	default:
		return "provider"
	}
}

// BackendError is a classified failure from a completion backend.
type BackendError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Cause      error
}

func (e *BackendError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("backend error (%s, status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend error (%s): %s", e.Kind, e.Message)
}

func (e *BackendError) Unwrap() error { return e.Cause }

// IsRateLimit reports whether err is a rate-limit backend failure.
func IsRateLimit(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.Kind == KindRateLimit
}

// IsAuth reports whether err is an authentication backend failure.
func IsAuth(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.Kind == KindAuth
}

// classifyStatus maps an HTTP status and response body to an error kind.
// Some providers return rate-limit messages with a 200-range of other
// statuses, so the body is checked too.
func classifyStatus(status int, body string) ErrorKind {
	switch status {
	case http.StatusTooManyRequests:
		return KindRateLimit
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	}

	lower := strings.ToLower(body)
	if strings.Contains(lower, "rate limit") || strings.Contains(lower, "rate_limit") ||
		strings.Contains(lower, "too many requests") || strings.Contains(lower, "quota") {
		return KindRateLimit
	}
	return KindProvider
}

// ClassifyError wraps an arbitrary client error, detecting rate-limit
// phrasing in its text.
func ClassifyError(err error) *BackendError {
	var be *BackendError
	if errors.As(err, &be) {
		return be
	}

	kind := KindProvider
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "rate limit") || strings.Contains(lower, "too many requests") ||
		strings.Contains(lower, "429") {
		kind = KindRateLimit
	} else if strings.Contains(lower, "unauthorized") || strings.Contains(lower, "401") ||
		strings.Contains(lower, "forbidden") {
		kind = KindAuth
	}

	return &BackendError{Kind: kind, Message: err.Error(), Cause: err}
}
