package queries

import (
	"context"

	"gorm.io/gorm"
)

// ListOrdersQueryHandler reads order views straight from SQL, bypassing the
// aggregate.
type ListOrdersQueryHandler struct {
	db *gorm.DB
}

// NewListOrdersQueryHandler binds the handler to a connection pool.
func NewListOrdersQueryHandler(db *gorm.DB) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{db: db}
}

// Handle returns at most query.Limit() views, newest first, with their items
// loaded in one batched query.
//
// Example:
//
//	state := order.Dispatched
//	q, _ := NewListOrdersQuery(nil, nil, &state, 0)
//	views, err := handler.Handle(ctx, q)
func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	stmt := h.db.WithContext(ctx).Table("rental_order").Select(orderColumns)
	if id := query.AssigneeID(); id != nil {
		stmt = stmt.Where("assignee_id = ?", id.Bytes())
	}
	if id := query.DeviceID(); id != nil {
		stmt = stmt.Where("id IN (SELECT order_id FROM rental_order_item WHERE device_id = ?)", id.Bytes())
	}
	if state := query.State(); state != nil {
		stmt = stmt.Where("state = ?", state.String())
	}

	rows, err := stmt.Order("created_at DESC").Order("id").Limit(query.Limit()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}

	if err = attachItems(ctx, h.db, views); err != nil {
		return nil, err
	}
	return views, nil
}
