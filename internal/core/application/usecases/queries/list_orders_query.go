package queries

import (
	"errors"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/guard"
)

// List limits applied by NewListOrdersQuery.
const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// ErrListOrdersQueryIsNotConstructed is returned by Validate on a zero value.
var ErrListOrdersQueryIsNotConstructed = errors.New(
	"ListOrdersQuery must be created via NewListOrdersQuery constructor",
)

// ListOrdersQuery filters orders by assignee, device and state. Every filter
// is optional; the result is ordered newest first.
type ListOrdersQuery struct {
	assigneeID *kernel.UUID
	deviceID   *kernel.UUID
	state      *order.State
	limit      int

	guard guard.ConstructorGuard
}

// NewListOrdersQuery validates the filters.
//
// Parameters:
//   - assigneeID: optional, orders assigned to this employee or group
//   - deviceID: optional, orders containing this device
//   - state: optional lifecycle state
//   - limit: DefaultListLimit when not positive, capped at MaxListLimit
//
// Example:
//
//	q, err := NewListOrdersQuery(&assigneeID, nil, nil, 50)
func NewListOrdersQuery(assigneeID, deviceID *kernel.UUID, state *order.State, limit int) (ListOrdersQuery, error) {
	var errList []error
	if assigneeID != nil {
		errList = append(errList, assigneeID.Validate())
	}
	if deviceID != nil {
		errList = append(errList, deviceID.Validate())
	}
	if state != nil {
		errList = append(errList, state.Validate())
	}
	if err := errors.Join(errList...); err != nil {
		return ListOrdersQuery{}, err
	}

	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	return ListOrdersQuery{
		assigneeID: assigneeID,
		deviceID:   deviceID,
		state:      state,
		limit:      limit,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate reports a query that bypassed the constructor.
func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

// Filter accessors; a nil pointer means the filter is off.
func (q ListOrdersQuery) AssigneeID() *kernel.UUID { return q.assigneeID }
func (q ListOrdersQuery) DeviceID() *kernel.UUID   { return q.deviceID }
func (q ListOrdersQuery) State() *order.State      { return q.state }
func (q ListOrdersQuery) Limit() int               { return q.limit }
