package restoration

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"
)

const maxErrorLength = 1000

var (
	ErrRestorationIsNotConstructed = errors.New("Restoration must be created via NewRestoration")

	// ErrRestorationIsClaimed is returned when another restorer holds an unexpired lease.
	ErrRestorationIsClaimed = errors.New("restoration is claimed by another restorer")
)

// Restoration is the ledger row for one finished order. A restorer must claim
// the row before calling the device service; the claim is a lease that lets
// another restorer take over once it expires.
type Restoration struct {
	orderID       kernel.UUID
	status        Status
	attempts      int
	lastError     string
	leaseUntil    *time.Time
	createdAt     time.Time
	updatedAt     time.Time
	completedAt   *time.Time
	isConstructed bool
}

// NewRestoration opens a pending row for a finished order.
//
// Parameters:
//   - orderID: the finished order whose devices must be restored
//   - now: creation time, also the first updatedAt
//
// Returns an error if orderID is invalid.
func NewRestoration(orderID kernel.UUID, now time.Time) (*Restoration, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}
	return &Restoration{
		orderID:       orderID,
		status:        Pending,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}, nil
}

// RestoreRestoration rebuilds a row loaded from persistence.
// leaseUntil is only meaningful for IN_PROGRESS rows and may be nil otherwise.
func RestoreRestoration(
	orderID kernel.UUID,
	status Status,
	attempts int,
	lastError string,
	leaseUntil *time.Time,
	createdAt, updatedAt time.Time,
	completedAt *time.Time,
) (*Restoration, error) {
	var attemptsErr, leaseErr error
	if attempts < 0 {
		attemptsErr = errs.NewValueIsOutOfRangeError("attempts", attempts, 0, "unbounded")
	}
	if status == InProgress && leaseUntil == nil {
		leaseErr = errs.NewValueIsRequiredError("leaseUntil")
	}
	if err := errors.Join(orderID.Validate(), status.Validate(), attemptsErr, leaseErr); err != nil {
		return nil, err
	}
	return &Restoration{
		orderID:       orderID,
		status:        status,
		attempts:      attempts,
		lastError:     lastError,
		leaseUntil:    leaseUntil,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		completedAt:   completedAt,
		isConstructed: true,
	}, nil
}

// Validate reports whether the row was built by a constructor.
func (r *Restoration) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRestorationIsNotConstructed
	}
	return nil
}

// OrderID returns the finished order the row belongs to.
func (r *Restoration) OrderID() kernel.UUID { return r.orderID }

// Status returns the current ledger status.
func (r *Restoration) Status() Status { return r.status }

// Attempts returns how many restore calls finished, successful or not.
func (r *Restoration) Attempts() int { return r.attempts }

// LastError returns the message of the last failed attempt, or "".
func (r *Restoration) LastError() string { return r.lastError }

// LeaseUntil returns the end of the current claim, or nil when unclaimed.
func (r *Restoration) LeaseUntil() *time.Time { return r.leaseUntil }

// CreatedAt returns when the order finished.
func (r *Restoration) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the time of the last claim or outcome.
func (r *Restoration) UpdatedAt() time.Time { return r.updatedAt }

// CompletedAt returns when the devices were restored, or nil.
func (r *Restoration) CompletedAt() *time.Time { return r.completedAt }

// IsCompleted reports whether the devices were restored.
func (r *Restoration) IsCompleted() bool { return r.status == Completed }

// IsClaimable reports whether a restorer may claim the row at now: it is
// pending, or its previous claim has expired.
func (r *Restoration) IsClaimable(now time.Time) bool {
	switch r.status {
	case Pending:
		return true
	case InProgress:
		return r.leaseUntil != nil && r.leaseUntil.Before(now)
	default:
		return false
	}
}

// Claim takes the row for one restore attempt lasting at most lease.
//
// Returns ErrValueIsOutOfRange for a non-positive lease, ErrValueIsInvalid when
// the row is completed and ErrRestorationIsClaimed while another lease is live.
func (r *Restoration) Claim(now time.Time, lease time.Duration) error {
	if lease <= 0 {
		return errs.NewValueIsOutOfRangeError("lease", lease, "1ns", "unbounded")
	}
	if r.status == Completed {
		return r.completedError()
	}
	if !r.IsClaimable(now) {
		return fmt.Errorf("%w: order %s until %s", ErrRestorationIsClaimed, r.orderID, r.leaseUntil)
	}

	until := now.Add(lease)
	r.status = InProgress
	r.leaseUntil = &until
	r.updatedAt = now
	return nil
}

// Complete closes the row after the devices were restored.
func (r *Restoration) Complete(now time.Time) error {
	if r.status == Completed {
		return r.completedError()
	}
	r.attempts++
	r.status = Completed
	r.lastError = ""
	r.leaseUntil = nil
	r.updatedAt = now
	r.completedAt = &now
	return nil
}

// Fail records an unsuccessful restore attempt and releases the claim; the
// row goes back to pending.
func (r *Restoration) Fail(cause error, now time.Time) error {
	if r.status == Completed {
		return r.completedError()
	}
	msg := ""
	if cause != nil {
		msg = truncate(cause.Error(), maxErrorLength)
	}
	r.attempts++
	r.status = Pending
	r.lastError = msg
	r.leaseUntil = nil
	r.updatedAt = now
	return nil
}

func (r *Restoration) completedError() error {
	return errs.NewValueIsInvalidErrorWithCause(
		"restoration status",
		fmt.Errorf("restoration of order %s is already completed", r.orderID),
	)
}

// truncate keeps at most limit runes of s and drops invalid UTF-8.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit && utf8.ValidString(s) {
		return s
	}
	out := make([]rune, 0, limit)
	for _, c := range s {
		if c == utf8.RuneError {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, c)
	}
	return string(out)
}
