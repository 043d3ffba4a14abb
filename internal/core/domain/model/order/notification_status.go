package order

import (
	"fmt"
	"strings"

	"orders/internal/pkg/errs"
)

// NotificationStatus tracks whether recipients were told about the order.
type NotificationStatus int

const (
	UnknownNotification NotificationStatus = iota
	NotificationPending
	NotificationSent
	NotificationFailed
)

func getNotificationStatusStrings() map[NotificationStatus]string {
	return map[NotificationStatus]string{
		UnknownNotification: "UNKNOWN",
		NotificationPending: "PENDING",
		NotificationSent:    "SENT",
		NotificationFailed:  "FAILED",
	}
}

// ParseNotificationStatus reads a stored value.
func ParseNotificationStatus(raw string) (NotificationStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PENDING":
		return NotificationPending, nil
	case "SENT":
		return NotificationSent, nil
	case "FAILED":
		return NotificationFailed, nil
	default:
		return UnknownNotification, errs.NewValueIsInvalidErrorWithCause(
			"notificationStatus",
			fmt.Errorf("%q is not a valid notification status", raw),
		)
	}
}

// NotificationStatusFromOutcome maps a delivery confirmation outcome.
// SUCCESS is SENT and FAILED is FAILED; anything else is PENDING with known=false.
func NotificationStatusFromOutcome(outcome string) (status NotificationStatus, known bool) {
	switch strings.ToUpper(strings.TrimSpace(outcome)) {
	case "SUCCESS":
		return NotificationSent, true
	case "FAILED":
		return NotificationFailed, true
	default:
		return NotificationPending, false
	}
}

// Validate accepts PENDING, SENT and FAILED.
func (s NotificationStatus) Validate() error {
	if s < NotificationPending || s > NotificationFailed {
		return errs.NewValueIsInvalidErrorWithCause("notificationStatus", fmt.Errorf("%d is not a valid notification status", s))
	}
	return nil
}

// String returns the stored name.
func (s NotificationStatus) String() string {
	if str, ok := getNotificationStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}
