package restorationrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/restoration"
	"orders/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormRestorationRepository implements ports.RestorationRepository using GORM.
type GormRestorationRepository struct {
	db *gorm.DB
}

// NewGormRestorationRepository binds the repository to db, which may be a
// transaction.
func NewGormRestorationRepository(db *gorm.DB) *GormRestorationRepository {
	return &GormRestorationRepository{db: db}
}

// Add inserts the row; a second row for the same order yields
// errs.ErrObjectAlreadyExists.
func (r *GormRestorationRepository) Add(ctx context.Context, aggregate *restoration.Restoration) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewObjectAlreadyExistsErrorWithCause("restoration", aggregate.OrderID().String(), err)
		}
		return err
	}
	return nil
}

// Update writes status, attempts, last error, lease and timestamps of the row.
// Returns errs.ErrObjectNotFound when the row does not exist.
func (r *GormRestorationRepository) Update(ctx context.Context, aggregate *restoration.Restoration) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&RestorationDTO{}).
		Where("order_id = ?", dto.OrderID).
		Updates(map[string]any{
			"status":       dto.Status,
			"attempts":     dto.Attempts,
			"last_error":   dto.LastError,
			"lease_until":  dto.LeaseUntil,
			"updated_at":   dto.UpdatedAt,
			"completed_at": dto.CompletedAt,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("restoration", aggregate.OrderID().String())
	}
	return nil
}

// Get loads the row of orderID or returns errs.ErrObjectNotFound.
func (r *GormRestorationRepository) Get(ctx context.Context, orderID kernel.UUID) (*restoration.Restoration, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto RestorationDTO
	if err := r.db.WithContext(ctx).First(&dto, "order_id = ?", orderID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("restoration", orderID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// ListClaimable returns the oldest rows a restorer may claim at now.
// Rows are not locked; Claim decides which restorer gets each one.
func (r *GormRestorationRepository) ListClaimable(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*restoration.Restoration, error) {
	var dtos []RestorationDTO
	err := r.db.WithContext(ctx).
		Scopes(claimable(now)).
		Order("updated_at").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	rows := make([]*restoration.Restoration, 0, len(dtos))
	for _, dto := range dtos {
		item, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		rows = append(rows, item)
	}
	return rows, nil
}

// Claim is a compare-and-set on the stored row: the claim columns are written
// only while the row is still claimable at now, so at most one of several
// concurrent restorers sees true.
func (r *GormRestorationRepository) Claim(
	ctx context.Context,
	aggregate *restoration.Restoration,
	now time.Time,
) (bool, error) {
	if err := aggregate.Validate(); err != nil {
		return false, err
	}
	if aggregate.Status() != restoration.InProgress {
		return false, errs.NewValueIsInvalidErrorWithCause(
			"restoration status",
			fmt.Errorf("order %s is %s, claim it before storing the claim", aggregate.OrderID(), aggregate.Status()),
		)
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&RestorationDTO{}).
		Where("order_id = ?", dto.OrderID).
		Scopes(claimable(now)).
		Updates(map[string]any{
			"status":      dto.Status,
			"lease_until": dto.LeaseUntil,
			"updated_at":  dto.UpdatedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func claimable(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"(status = ? OR (status = ? AND lease_until < ?))",
			restoration.Pending.String(), restoration.InProgress.String(), now,
		)
	}
}
