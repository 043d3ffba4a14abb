package services

import (
	"orders/internal/core/domain/model/device"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"
)

// DeviceAllocator decides whether a set of devices can go into a new order.
//
// Business rules:
//   - every requested device must be known to the inventory
//   - OCCUPIED and NEEDS_REPAIR devices cannot be rented
//   - each item remembers the status the device had before reservation
type DeviceAllocator struct{}

// NewDeviceAllocator returns the stateless allocator.
func NewDeviceAllocator() DeviceAllocator {
	return DeviceAllocator{}
}

// Allocate builds one item per requested device, in request order.
// Duplicate ids are collapsed. Missing devices are reported before unavailable ones.
func (DeviceAllocator) Allocate(requested []kernel.UUID, states map[kernel.UUID]device.Status) ([]*order.Item, error) {
	ids := kernel.UniqueUUIDs(requested)
	if len(ids) == 0 {
		return nil, errs.NewValueIsRequiredError("deviceIds")
	}

	var missing, unavailable []kernel.UUID
	for _, id := range ids {
		state, ok := states[id]
		switch {
		case !ok:
			missing = append(missing, id)
		case !state.IsAvailable():
			unavailable = append(unavailable, id)
		}
	}

	if len(missing) > 0 {
		return nil, device.NewUnavailableError(device.ReasonNotFound, "devices not found", missing, nil)
	}
	if len(unavailable) > 0 {
		return nil, device.NewUnavailableError(device.ReasonConflict, "devices are not available for rent", unavailable, nil)
	}

	items := make([]*order.Item, 0, len(ids))
	for _, id := range ids {
		item, err := order.NewItem(id, states[id])
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
