package notehubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound matches an HTTPError with status 404.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized matches an HTTPError with status 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMalformedResponse wraps a 2xx response whose body could not be decoded.
	ErrMalformedResponse = errors.New("malformed response")
)

// HTTPError is returned for every non-2xx response.
type HTTPError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

// Is lets errors.Is match the sentinel for the response status.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

// Retryable reports whether err is worth another attempt: transport
// failures, timeouts, throttling and server errors. A body that failed to
// decode is permanent.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrMalformedResponse) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == http.StatusRequestTimeout,
			httpErr.StatusCode == http.StatusTooManyRequests,
			httpErr.StatusCode >= 500:
			return true
		default:
			return false
		}
	}
	return true
}
