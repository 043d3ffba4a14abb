// Package orderrepo persists the order aggregate and its items with GORM.
package orderrepo

import (
	"time"

	"orders/internal/core/domain/model/device"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is the rental_order row. Enum columns hold their string names so
// the table stays readable outside the service.
type OrderDTO struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Description        string         `gorm:"type:varchar(1000);not null;default:''"`
	State              string         `gorm:"type:varchar(32);not null;index"`
	AssigneeType       string         `gorm:"type:varchar(16);not null"`
	AssigneeID         uuid.UUID      `gorm:"type:uuid;not null;index"`
	NotificationStatus string         `gorm:"type:varchar(16);not null"`
	CreatedAt          time.Time      `gorm:"not null;index;autoCreateTime:false"`
	UpdatedAt          time.Time      `gorm:"not null;autoUpdateTime:false"`
	Version            int64          `gorm:"not null;default:1"`
	Items              []OrderItemDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName implements gorm's tabler.
func (OrderDTO) TableName() string {
	return "rental_order"
}

// OrderItemDTO is one rented device. Position keeps the order in which the
// devices were requested.
type OrderItemDTO struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID             uuid.UUID `gorm:"type:uuid;not null;index"`
	DeviceID            uuid.UUID `gorm:"type:uuid;not null;index"`
	OriginalDeviceState string    `gorm:"type:varchar(32);not null"`
	Position            int       `gorm:"not null"`
}

// TableName implements gorm's tabler.
func (OrderItemDTO) TableName() string {
	return "rental_order_item"
}

func fromDomain(o *order.Order) OrderDTO {
	orderID := o.ID().Bytes()
	items := make([]OrderItemDTO, 0, len(o.Items()))
	for i, item := range o.Items() {
		items = append(items, OrderItemDTO{
			ID:                  item.ID().Bytes(),
			OrderID:             orderID,
			DeviceID:            item.DeviceID().Bytes(),
			OriginalDeviceState: item.OriginalDeviceState().String(),
			Position:            i,
		})
	}

	return OrderDTO{
		ID:                 orderID,
		Description:        o.Description(),
		State:              o.State().String(),
		AssigneeType:       o.Assignee().Type().String(),
		AssigneeID:         o.Assignee().ID().Bytes(),
		NotificationStatus: o.NotificationStatus().String(),
		CreatedAt:          o.CreatedAt(),
		UpdatedAt:          o.UpdatedAt(),
		Version:            o.Version(),
		Items:              items,
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	state, err := order.ParseState(dto.State)
	if err != nil {
		return nil, err
	}

	assigneeType, err := order.ParseAssigneeType(dto.AssigneeType)
	if err != nil {
		return nil, err
	}
	assigneeID, err := kernel.UUIDFromBytes(dto.AssigneeID[:])
	if err != nil {
		return nil, err
	}
	assignee, err := order.NewAssignee(assigneeType, assigneeID)
	if err != nil {
		return nil, err
	}

	notificationStatus, err := order.ParseNotificationStatus(dto.NotificationStatus)
	if err != nil {
		return nil, err
	}

	items := make([]*order.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		item, itemErr := itemToDomain(itemDTO)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return order.RestoreOrder(
		id,
		dto.Description,
		state,
		assignee,
		notificationStatus,
		items,
		dto.CreatedAt.UTC(),
		dto.UpdatedAt.UTC(),
		dto.Version,
	)
}

func itemToDomain(dto OrderItemDTO) (*order.Item, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	deviceID, err := kernel.UUIDFromBytes(dto.DeviceID[:])
	if err != nil {
		return nil, err
	}
	state, err := device.ParseStatus(dto.OriginalDeviceState)
	if err != nil {
		return nil, err
	}
	return order.RestoreItem(id, deviceID, state)
}
