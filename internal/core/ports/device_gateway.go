package ports

import (
	"context"

	"orders/internal/core/domain/model/device"
	"orders/internal/core/domain/model/kernel"
)

// DeviceGateway talks to the device inventory service. Every failure is a
// *device.UnavailableError; transport errors never escape raw.
type DeviceGateway interface {
	// FetchStates returns the status of every requested device. Duplicate ids
	// are collapsed; a device missing from the response is a NotFound failure.
	FetchStates(ctx context.Context, ids []kernel.UUID) (map[kernel.UUID]device.Status, error)

	// Reserve marks all devices OCCUPIED for orderID in a single call.
	Reserve(ctx context.Context, ids []kernel.UUID, orderID kernel.UUID) error

	// Restore puts every device back into its snapshot state in a single call.
	Restore(ctx context.Context, snapshots []device.Snapshot) error
}
