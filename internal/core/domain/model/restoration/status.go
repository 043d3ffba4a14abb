package restoration

import (
	"fmt"
	"strings"

	"orders/internal/pkg/errs"
)

// Status is the lifecycle of a restoration ledger row.
//
// Transitions:
//
//	PENDING     -> IN_PROGRESS (claimed by a restorer)
//	IN_PROGRESS -> COMPLETED   (devices restored)
//	IN_PROGRESS -> PENDING     (restore failed, retried later)
//	IN_PROGRESS -> IN_PROGRESS (lease expired, claimed again)
type Status int

const (
	Unknown Status = iota
	Pending
	InProgress
	Completed
)

// ParseStatus reads a stored status. Returns ErrValueIsInvalid for anything
// other than PENDING, IN_PROGRESS or COMPLETED.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PENDING":
		return Pending, nil
	case "IN_PROGRESS":
		return InProgress, nil
	case "COMPLETED":
		return Completed, nil
	default:
		return Unknown, errs.NewValueIsInvalidErrorWithCause("restoration status", fmt.Errorf("%q is not a valid status", raw))
	}
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if s < Pending || s > Completed {
		return errs.NewValueIsInvalidErrorWithCause("restoration status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the stored representation of the status.
func (s Status) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case InProgress:
		return "IN_PROGRESS"
	case Completed:
		return "COMPLETED"
	default:
		return "UNKNOWN"
	}
}
