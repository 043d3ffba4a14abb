package ports

import (
	"context"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/restoration"
)

// RestorationRepository stores the device restoration ledger: one row per
// finished order, claimed by a restorer before the devices are restored.
type RestorationRepository interface {
	// Add inserts a new row. A duplicate order id yields errs.ErrObjectAlreadyExists.
	Add(ctx context.Context, r *restoration.Restoration) error

	// Update writes the outcome columns unconditionally.
	// A missing row yields errs.ErrObjectNotFound.
	Update(ctx context.Context, r *restoration.Restoration) error

	// Get loads the row of orderID or returns errs.ErrObjectNotFound.
	Get(ctx context.Context, orderID kernel.UUID) (*restoration.Restoration, error)

	// ListClaimable returns up to limit rows claimable at now, oldest first:
	// pending rows and rows whose claim expired before now.
	ListClaimable(ctx context.Context, now time.Time, limit int) ([]*restoration.Restoration, error)

	// Claim stores the claim already applied to r with r.Claim(now, lease),
	// provided the stored row is still claimable at now. It reports false when
	// another restorer claimed or completed the row first.
	Claim(ctx context.Context, r *restoration.Restoration, now time.Time) (bool, error)
}
