package queries

import (
	"context"

	"orders/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetOrderQueryHandler reads one order view straight from SQL.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler binds the handler to a connection pool.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle returns the order view, or ObjectNotFound when no such order exists.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderView, error) {
	if err := query.Validate(); err != nil {
		return OrderView{}, err
	}

	rows, err := h.db.WithContext(ctx).Raw(
		"SELECT "+orderColumns+" FROM rental_order WHERE id = ?",
		query.OrderID().Bytes(),
	).Rows()
	if err != nil {
		return OrderView{}, err
	}
	defer rows.Close()

	views, err := scanOrders(rows)
	if err != nil {
		return OrderView{}, err
	}
	if len(views) == 0 {
		return OrderView{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}

	if err = attachItems(ctx, h.db, views); err != nil {
		return OrderView{}, err
	}
	return views[0], nil
}
