package timelines

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth means the account needs re-authentication. Once an account has
	// hit it, every call fails with it before any network round trip.
	ErrAuth = errors.New("account requires re-authentication")

	// ErrNotSupported is returned for ids of the wrong network or kind.
	ErrNotSupported = errors.New("operation not supported for this id")

	// ErrPostNotFound is returned when a post id is not part of a reply map.
	ErrPostNotFound = errors.New("post not found")

	// ErrIdentityUnknown is returned when an operation needs the account's
	// own screen name or user id and neither is known yet.
	ErrIdentityUnknown = errors.New("account identity not verified")
)

// APIError is a failure reported by a backend, or a transport failure
// (timeouts included) on the way to it. It is never retried here.
type APIError struct {
	Endpoint string
	// Status is zero when no HTTP answer arrived.
	Status int
	// Code is the backend-specific error code when the body carried one.
	Code string
	Body []byte
	// Err is the transport failure when Status is zero.
	Err error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s HTTP %d (code %s): %s", e.Endpoint, e.Status, e.Code, truncateBytes(e.Body, 200))
	}
	return fmt.Sprintf("%s HTTP %d: %s", e.Endpoint, e.Status, truncateBytes(e.Body, 200))
}

func (e *APIError) Unwrap() error { return e.Err }

// RateLimited reports whether the backend rejected the call for quota reasons.
func (e *APIError) RateLimited() bool { return e.Status == 429 }

// ParseError means the backend answered with a payload we could not read.
type ParseError struct {
	Endpoint string
	Err      error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s: %v", e.Endpoint, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// PartialError is returned by the conversation resolver together with the
// posts it did gather when at least one fetch failed.
type PartialError struct {
	Err error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("conversation may be incomplete: %v", e.Err)
}

func (e *PartialError) Unwrap() error { return e.Err }

// AuthFailure wraps the backend error that made an account unusable so that
// both errors.Is(err, ErrAuth) and errors.As(err, **APIError) hold.
func AuthFailure(cause error) error {
	if cause == nil {
		return ErrAuth
	}
	return fmt.Errorf("%w: %w", ErrAuth, cause)
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
