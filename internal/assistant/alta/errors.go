package alta

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an API failure. The executor maps these onto
// user-facing error messages; the client uses them to decide retry behaviour.
type ErrorKind string

const (
	// KindAuth is an authentication failure (HTTP 401). Fatal, never retried.
	KindAuth ErrorKind = "auth"
	// KindPermission is an authorization failure (HTTP 403). Fatal.
	KindPermission ErrorKind = "permission"
	// KindNotFound means the requested resource does not exist (HTTP 404).
	KindNotFound ErrorKind = "not_found"
	// KindRateLimited means the backend throttled us (HTTP 429). Retried with
	// exponential backoff; only surfaced when retries are exhausted.
	KindRateLimited ErrorKind = "rate_limited"
	// KindServer is a backend failure (HTTP 5xx). Retried with linear backoff.
	KindServer ErrorKind = "server"
	// KindNetwork is a connection-level failure. Retried with linear backoff.
	KindNetwork ErrorKind = "network"
	// KindTimeout means the request deadline elapsed. Retried with linear backoff.
	KindTimeout ErrorKind = "timeout"
	// KindUnknown covers any other failure status.
	KindUnknown ErrorKind = "unknown"
)

// APIError is the typed error returned by every Client method.
type APIError struct {
	Kind    ErrorKind
	Status  int // HTTP status when applicable, 0 otherwise
	Message string
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("alta: %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("alta: %s: %s", e.Kind, e.Message)
}

// KindOf extracts the ErrorKind from err, returning KindUnknown when err is
// not an *APIError.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}
