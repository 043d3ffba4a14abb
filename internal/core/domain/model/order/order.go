package order

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"orders/internal/core/domain/model/device"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"
)

const MaxDescriptionLength = 1000

var (
	// ErrOrderIsNotConstructed is returned when an Order was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	ErrOrderHasNoItems = errs.NewValueIsRequiredError("items")
)

// Order is the rental aggregate root: a set of devices handed to an assignee.
//
// Invariants:
//   - at least one item, each device at most once
//   - the assignee never changes after creation
//   - the state only moves forward along the edge table of State
//   - version starts at 1 and is advanced only by the store
type Order struct {
	id                 kernel.UUID
	description        string
	state              State
	assignee           Assignee
	notificationStatus NotificationStatus
	items              []*Item
	createdAt          time.Time
	updatedAt          time.Time
	version            int64
	isConstructed      bool
}

// NewOrder creates an order in CREATED state with a PENDING notification.
// The id is allocated by the caller before any remote call so that device
// reservations can be tagged with it.
func NewOrder(id kernel.UUID, description string, assignee Assignee, items []*Item, now time.Time) (*Order, error) {
	o := &Order{
		state:              Created,
		notificationStatus: NotificationPending,
		createdAt:          now,
		updatedAt:          now,
		version:            1,
		isConstructed:      true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setDescription(description),
		o.setAssignee(assignee),
		o.setItems(items),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder rebuilds an order loaded from persistence.
func RestoreOrder(
	id kernel.UUID,
	description string,
	state State,
	assignee Assignee,
	notificationStatus NotificationStatus,
	items []*Item,
	createdAt, updatedAt time.Time,
	version int64,
) (*Order, error) {
	o := &Order{
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		isConstructed: true,
	}

	var versionErr error
	if version < 1 {
		versionErr = errs.NewValueIsOutOfRangeError("version", version, 1, "unbounded")
	}

	if err := errors.Join(
		o.setID(id),
		o.setDescription(description),
		o.setAssignee(assignee),
		o.setItems(items),
		state.Validate(),
		notificationStatus.Validate(),
		versionErr,
	); err != nil {
		return nil, err
	}

	o.state = state
	o.notificationStatus = notificationStatus
	o.version = version
	return o, nil
}

// Validate reports a nil order or one built without a constructor.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares identities.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// Read accessors. Mutations go through ChangeState and ApplyNotificationStatus.
func (o *Order) ID() kernel.UUID                        { return o.id }
func (o *Order) Description() string                    { return o.description }
func (o *Order) State() State                           { return o.state }
func (o *Order) Assignee() Assignee                     { return o.assignee }
func (o *Order) NotificationStatus() NotificationStatus { return o.notificationStatus }
func (o *Order) CreatedAt() time.Time                   { return o.createdAt }
func (o *Order) UpdatedAt() time.Time                   { return o.updatedAt }
func (o *Order) Version() int64                         { return o.version }

// Items returns a copy of the item slice; the items themselves are immutable.
func (o *Order) Items() []*Item {
	items := make([]*Item, len(o.items))
	copy(items, o.items)
	return items
}

// DeviceIDs lists the rented devices in item order.
func (o *Order) DeviceIDs() []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(o.items))
	for _, item := range o.items {
		ids = append(ids, item.DeviceID())
	}
	return ids
}

// Snapshots returns the state every device must be restored to.
func (o *Order) Snapshots() ([]device.Snapshot, error) {
	snapshots := make([]device.Snapshot, 0, len(o.items))
	for _, item := range o.items {
		s, err := device.NewSnapshot(item.DeviceID(), item.OriginalDeviceState())
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, nil
}

// CheckVersion fails with a version conflict when expected differs from the loaded version.
func (o *Order) CheckVersion(expected int64) error {
	if expected != o.version {
		return errs.NewVersionIsInvalidErrorWithCause(
			"version",
			fmt.Errorf("order %s is at version %d, expected %d", o.id, o.version, expected),
		)
	}
	return nil
}

// ChangeState moves the order one step along the lifecycle.
func (o *Order) ChangeState(next State, now time.Time) error {
	if len(o.items) == 0 {
		return ErrOrderHasNoItems
	}

	newState, err := o.state.TransitionTo(next)
	if err != nil {
		return err
	}

	o.state = newState
	o.updatedAt = now
	return nil
}

// ApplyNotificationStatus records a delivery outcome and reports whether it changed anything.
func (o *Order) ApplyNotificationStatus(status NotificationStatus, now time.Time) (bool, error) {
	if err := status.Validate(); err != nil {
		return false, err
	}
	if o.notificationStatus == status {
		return false, nil
	}
	o.notificationStatus = status
	o.updatedAt = now
	return true, nil
}

// SyncVersion records the version the store assigned after a successful write.
func (o *Order) SyncVersion(version int64) {
	o.version = version
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setDescription(description string) error {
	if n := utf8.RuneCountInString(description); n > MaxDescriptionLength {
		return errs.NewValueIsOutOfRangeError("description length", n, 0, MaxDescriptionLength)
	}
	o.description = description
	return nil
}

func (o *Order) setAssignee(assignee Assignee) error {
	if err := assignee.Validate(); err != nil {
		return err
	}
	o.assignee = assignee
	return nil
}

func (o *Order) setItems(items []*Item) error {
	if len(items) == 0 {
		return ErrOrderHasNoItems
	}

	seen := make(map[kernel.UUID]struct{}, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		if _, dup := seen[item.DeviceID()]; dup {
			return errs.NewValueIsInvalidErrorWithCause(
				"items",
				fmt.Errorf("device %s is listed more than once", item.DeviceID()),
			)
		}
		seen[item.DeviceID()] = struct{}{}
	}

	o.items = append([]*Item(nil), items...)
	return nil
}
