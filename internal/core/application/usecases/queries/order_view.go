// Package queries contains the read side: order views loaded straight from
// the database without hydrating aggregates.
package queries

import (
	"context"
	"time"

	"orders/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderView is the read model of an order.
type OrderView struct {
	ID                 kernel.UUID
	Description        string
	State              string
	AssigneeType       string
	AssigneeID         kernel.UUID
	NotificationStatus string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Version            int64
	Items              []OrderItemView
}

// OrderItemView is one rented device of an OrderView.
type OrderItemView struct {
	ID                  kernel.UUID
	DeviceID            kernel.UUID
	OriginalDeviceState string
}

const orderColumns = `id, description, state, assignee_type, assignee_id,
	notification_status, created_at, updated_at, version`

func scanOrders(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]OrderView, error) {
	views := make([]OrderView, 0)
	for rows.Next() {
		var view OrderView
		var id, assigneeID uuid.UUID

		err := rows.Scan(
			&id,
			&view.Description,
			&view.State,
			&view.AssigneeType,
			&assigneeID,
			&view.NotificationStatus,
			&view.CreatedAt,
			&view.UpdatedAt,
			&view.Version,
		)
		if err != nil {
			return nil, err
		}

		if view.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if view.AssigneeID, err = kernel.UUIDFromBytes(assigneeID[:]); err != nil {
			return nil, err
		}
		view.CreatedAt = view.CreatedAt.UTC()
		view.UpdatedAt = view.UpdatedAt.UTC()
		views = append(views, view)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return views, nil
}

// attachItems loads the items of every view in one query.
func attachItems(ctx context.Context, db *gorm.DB, views []OrderView) error {
	if len(views) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(views))
	index := make(map[uuid.UUID]int, len(views))
	for i, v := range views {
		id := v.ID.Bytes()
		ids = append(ids, id)
		index[id] = i
	}

	rows, err := db.WithContext(ctx).Raw(`
		SELECT
			id,
			order_id,
			device_id,
			original_device_state
		FROM rental_order_item
		WHERE order_id IN ?
		ORDER BY order_id, position
	`, ids).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItemView
		var id, orderID, deviceID uuid.UUID

		if err = rows.Scan(&id, &orderID, &deviceID, &item.OriginalDeviceState); err != nil {
			return err
		}
		if item.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return err
		}
		if item.DeviceID, err = kernel.UUIDFromBytes(deviceID[:]); err != nil {
			return err
		}

		i, ok := index[orderID]
		if !ok {
			continue
		}
		views[i].Items = append(views[i].Items, item)
	}

	return rows.Err()
}
