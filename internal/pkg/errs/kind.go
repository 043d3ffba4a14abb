package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that translate it into a transport status.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindBadRequest
	KindConflict
)

// String names the kind in logs.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindBadRequest:
		return "BadRequest"
	case KindConflict:
		return "Conflict"
	default:
		return "InternalServer"
	}
}

// Error is an order-level failure tagged with a Kind.
type Error struct {
	kind      Kind
	message   string
	retryable bool
	cause     error
}

// NewNotFoundError builds a NotFound failure. message is shown to clients.
func NewNotFoundError(message string, cause error) *Error {
	return &Error{kind: KindNotFound, message: message, cause: cause}
}

// NewBadRequestError builds a BadRequest failure.
func NewBadRequestError(message string, cause error) *Error {
	return &Error{kind: KindBadRequest, message: message, cause: cause}
}

// NewConflictError builds a Conflict failure, e.g. a stale version.
func NewConflictError(message string, cause error) *Error {
	return &Error{kind: KindConflict, message: message, cause: cause}
}

// NewInternalServerError builds an internal failure. Retryable marks failures
// caused by a dependency that was temporarily unreachable.
func NewInternalServerError(message string, retryable bool, cause error) *Error {
	return &Error{kind: KindInternal, message: message, retryable: retryable, cause: cause}
}

// Error includes the cause; PublicMessage does not.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s (cause: %v)", e.message, e.cause)
	}
	return e.message
}

// Accessors for the HTTP error handler.
func (e *Error) PublicMessage() string { return e.message }
func (e *Error) Kind() Kind             { return e.kind }
func (e *Error) Retryable() bool        { return e.retryable }
func (e *Error) Unwrap() error          { return e.cause }

type kinded interface {
	Kind() Kind
}

type retryable interface {
	Retryable() bool
}

type publicMessage interface {
	PublicMessage() string
}

// KindOf walks the chain and returns the first classification it finds.
// Unclassified errors are KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	switch {
	case errors.Is(err, ErrObjectNotFound):
		return KindNotFound
	case errors.Is(err, ErrValueIsRequired),
		errors.Is(err, ErrValueIsInvalid),
		errors.Is(err, ErrValueIsOutOfRange):
		return KindBadRequest
	case errors.Is(err, ErrVersionIsInvalid),
		errors.Is(err, ErrObjectAlreadyExists):
		return KindConflict
	}
	return KindInternal
}

// IsRetryable reports whether any error in the chain is marked retryable.
func IsRetryable(err error) bool {
	var r retryable
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}

// IsClassified reports whether err carries a Kind or wraps one of the package sentinels.
func IsClassified(err error) bool {
	if err == nil {
		return false
	}
	var k kinded
	if errors.As(err, &k) {
		return true
	}
	for _, sentinel := range []error{
		ErrObjectNotFound, ErrObjectAlreadyExists, ErrValueIsInvalid,
		ErrValueIsOutOfRange, ErrValueIsRequired, ErrVersionIsInvalid,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// MessageOf returns the client-facing message of an error: the first
// PublicMessage in the chain, or the full error text otherwise.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var m publicMessage
	if errors.As(err, &m) {
		return m.PublicMessage()
	}
	return err.Error()
}
