package device

import (
	"fmt"
	"strings"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"
)

// Reason tells why the inventory could not serve a request.
type Reason int

const (
	ReasonInternal Reason = iota
	ReasonNotFound
	ReasonBadRequest
	ReasonConflict
	ReasonServiceUnavailable
)

// String names the reason for logs and error messages.
func (r Reason) String() string {
	switch r {
	case ReasonNotFound:
		return "NotFound"
	case ReasonBadRequest:
		return "BadRequest"
	case ReasonConflict:
		return "Conflict"
	case ReasonServiceUnavailable:
		return "ServiceUnavailable"
	default:
		return "Internal"
	}
}

// UnavailableError reports that devices could not be fetched, reserved or restored.
type UnavailableError struct {
	Reason    Reason
	DeviceIDs []kernel.UUID
	Message   string
	Cause     error
}

// NewUnavailableError builds the error. deviceIDs and cause may be nil.
//
// Example:
//
//	return device.NewUnavailableError(device.ReasonConflict,
//	    "devices are not available for rent", ids, nil)
func NewUnavailableError(reason Reason, message string, deviceIDs []kernel.UUID, cause error) *UnavailableError {
	return &UnavailableError{Reason: reason, Message: message, DeviceIDs: deviceIDs, Cause: cause}
}

// Error includes the device ids and the cause.
func (e *UnavailableError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "device unavailable (%s): %s", e.Reason, e.Message)
	if len(e.DeviceIDs) > 0 {
		ids := make([]string, 0, len(e.DeviceIDs))
		for _, id := range e.DeviceIDs {
			ids = append(ids, id.String())
		}
		fmt.Fprintf(&b, " [devices: %s]", strings.Join(ids, ", "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, " (cause: %v)", e.Cause)
	}
	return b.String()
}

// Unwrap returns the transport or decoding cause.
func (e *UnavailableError) Unwrap() error { return e.Cause }

// Kind maps the reason onto the order-level classification.
// ServiceUnavailable surfaces as an internal failure marked retryable.
func (e *UnavailableError) Kind() errs.Kind {
	switch e.Reason {
	case ReasonNotFound:
		return errs.KindNotFound
	case ReasonBadRequest:
		return errs.KindBadRequest
	case ReasonConflict:
		return errs.KindConflict
	default:
		return errs.KindInternal
	}
}

// Retryable is true when the device service could not be reached.
func (e *UnavailableError) Retryable() bool {
	return e.Reason == ReasonServiceUnavailable
}

// PublicMessage is the message without the transport cause.
func (e *UnavailableError) PublicMessage() string {
	if len(e.DeviceIDs) == 0 {
		return e.Message
	}
	ids := make([]string, 0, len(e.DeviceIDs))
	for _, id := range e.DeviceIDs {
		ids = append(ids, id.String())
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(ids, ", "))
}
