package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure classifies a failed remote call.
type Failure int

const (
	FailureInternal Failure = iota
	FailureBadRequest
	FailureNotFound
	// FailureUnavailable covers transport errors, timeouts and 502/503/504.
	FailureUnavailable
)

// String is used in error messages.
func (f Failure) String() string {
	switch f {
	case FailureBadRequest:
		return "bad request"
	case FailureNotFound:
		return "not found"
	case FailureUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Error is a failed call to a downstream service. StatusCode is zero when no
// response was received.
type Error struct {
	Op         string
	StatusCode int
	Failure    Failure
	Message    string
	Cause      error
}

// Error includes the status code and remote message when known.
func (e *Error) Error() string {
	msg := fmt.Sprintf("remote %s: %s", e.Op, e.Failure)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return msg
}

// Unwrap returns the transport or decoding cause.
func (e *Error) Unwrap() error { return e.Cause }

// MessageOr returns the remote message, or fallback when the service sent none.
func (e *Error) MessageOr(fallback string) string {
	if e.Message != "" {
		return e.Message
	}
	return fallback
}

// FailureOf extracts the classification of err; non-remote errors are internal.
func FailureOf(err error) (*Error, Failure) {
	var remoteErr *Error
	if errors.As(err, &remoteErr) {
		return remoteErr, remoteErr.Failure
	}
	return nil, FailureInternal
}

func classifyStatus(code int) Failure {
	switch code {
	case http.StatusBadRequest:
		return FailureBadRequest
	case http.StatusNotFound:
		return FailureNotFound
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return FailureUnavailable
	default:
		return FailureInternal
	}
}
