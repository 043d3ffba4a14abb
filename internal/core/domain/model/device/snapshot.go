package device

import (
	"errors"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/guard"
)

// ErrSnapshotIsNotConstructed is returned by Validate on a zero value.
var ErrSnapshotIsNotConstructed = errors.New("Snapshot must be created via NewSnapshot")

// Snapshot is the status a device had before it was reserved; restoring
// an order puts every device back into its snapshot state.
type Snapshot struct {
	deviceID kernel.UUID
	state    Status
	guard    guard.ConstructorGuard
}

// NewSnapshot pairs a device with the status to restore it to.
func NewSnapshot(deviceID kernel.UUID, state Status) (Snapshot, error) {
	if err := errors.Join(deviceID.Validate(), state.Validate()); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{deviceID: deviceID, state: state, guard: guard.NewConstructorGuard()}, nil
}

// Accessors.
func (s Snapshot) DeviceID() kernel.UUID { return s.deviceID }
func (s Snapshot) State() Status         { return s.state }

// Validate reports a Snapshot that bypassed NewSnapshot.
func (s Snapshot) Validate() error {
	return s.guard.Validate(ErrSnapshotIsNotConstructed)
}
