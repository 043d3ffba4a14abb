package order

import (
	"errors"

	"orders/internal/core/domain/model/device"
	"orders/internal/core/domain/model/kernel"
)

var ErrItemIsNotConstructed = errors.New("Item must be created via NewItem")

// Item is one device rented under an order, together with the status the
// device had when it was reserved.
type Item struct {
	id                  kernel.UUID
	deviceID            kernel.UUID
	originalDeviceState device.Status
	isConstructed       bool
}

// NewItem allocates an item id and remembers the device's status before
// reservation.
func NewItem(deviceID kernel.UUID, originalDeviceState device.Status) (*Item, error) {
	return RestoreItem(kernel.NewUUID(), deviceID, originalDeviceState)
}

// RestoreItem rebuilds a persisted item.
func RestoreItem(id, deviceID kernel.UUID, originalDeviceState device.Status) (*Item, error) {
	if err := errors.Join(
		id.Validate(),
		deviceID.Validate(),
		originalDeviceState.Validate(),
	); err != nil {
		return nil, err
	}
	return &Item{
		id:                  id,
		deviceID:            deviceID,
		originalDeviceState: originalDeviceState,
		isConstructed:       true,
	}, nil
}

// Item fields are immutable.
func (i *Item) ID() kernel.UUID                    { return i.id }
func (i *Item) DeviceID() kernel.UUID              { return i.deviceID }
func (i *Item) OriginalDeviceState() device.Status { return i.originalDeviceState }

// Validate reports a nil item or one built without a constructor.
func (i *Item) Validate() error {
	if i == nil || !i.isConstructed {
		return ErrItemIsNotConstructed
	}
	return nil
}
