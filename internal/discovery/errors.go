package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrMissingCredential is returned by a keyed provider that was asked to
// search without an API key. Registries skip such providers up front.
var ErrMissingCredential = errors.New("provider credential not configured")

// ErrorKind classifies a failed provider call.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindTimeout
	KindAuthFailure
	KindRateLimited
	KindBadResponse
	KindUnreachable
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindAuthFailure:
		return "auth_failure"
	case KindRateLimited:
		return "rate_limited"
	case KindBadResponse:
		return "bad_response"
	case KindUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// ProviderError is the uniform failure every provider reports.
type ProviderError struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (http %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func newError(provider string, kind ErrorKind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

// KindOf reports the ErrorKind of err. Errors that are not ProviderErrors are
// classified as a timeout when a deadline expired and unreachable otherwise.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if isTimeout(err) {
		return KindTimeout
	}
	return KindUnreachable
}

func kindForStatus(code int) ErrorKind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuthFailure
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code >= 500:
		return KindUnreachable
	default:
		return KindBadResponse
	}
}

func transportError(provider string, err error) *ProviderError {
	if isTimeout(err) {
		return newError(provider, KindTimeout, err)
	}
	return newError(provider, KindUnreachable, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
