// Package restorationrepo persists the device restoration ledger with GORM.
package restorationrepo

import (
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/restoration"

	"github.com/google/uuid"
)

// RestorationDTO is one device_restoration row, keyed by the finished order.
type RestorationDTO struct {
	OrderID     uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Status      string     `gorm:"type:varchar(16);not null;index:idx_device_restoration_pending,priority:1"`
	Attempts    int        `gorm:"not null;default:0"`
	LastError   string     `gorm:"type:varchar(1000);not null;default:''"`
	LeaseUntil  *time.Time
	CreatedAt   time.Time  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt   time.Time  `gorm:"not null;autoUpdateTime:false;index:idx_device_restoration_pending,priority:2"`
	CompletedAt *time.Time
}

// TableName implements gorm's tabler.
func (RestorationDTO) TableName() string {
	return "device_restoration"
}

func fromDomain(r *restoration.Restoration) RestorationDTO {
	return RestorationDTO{
		OrderID:     r.OrderID().Bytes(),
		Status:      r.Status().String(),
		Attempts:    r.Attempts(),
		LastError:   r.LastError(),
		LeaseUntil:  r.LeaseUntil(),
		CreatedAt:   r.CreatedAt(),
		UpdatedAt:   r.UpdatedAt(),
		CompletedAt: r.CompletedAt(),
	}
}

func toDomain(dto RestorationDTO) (*restoration.Restoration, error) {
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	status, err := restoration.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	completedAt := utcOrNil(dto.CompletedAt)

	return restoration.RestoreRestoration(
		orderID,
		status,
		dto.Attempts,
		dto.LastError,
		utcOrNil(dto.LeaseUntil),
		dto.CreatedAt.UTC(),
		dto.UpdatedAt.UTC(),
		completedAt,
	)
}

func utcOrNil(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
