package commands_test

import (
	"context"
	"testing"
	"time"

	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/domain/model/device"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/domain/model/restoration"
	"orders/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateNotificationStatus(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

type MockRestorationRepository struct{ mock.Mock }

func (m *MockRestorationRepository) Add(ctx context.Context, r *restoration.Restoration) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRestorationRepository) Update(ctx context.Context, r *restoration.Restoration) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRestorationRepository) Get(ctx context.Context, orderID kernel.UUID) (*restoration.Restoration, error) {
	args := m.Called(ctx, orderID)
	r, _ := args.Get(0).(*restoration.Restoration)
	return r, args.Error(1)
}

func (m *MockRestorationRepository) ListClaimable(
	ctx context.Context, now time.Time, limit int,
) ([]*restoration.Restoration, error) {
	args := m.Called(ctx, now, limit)
	rs, _ := args.Get(0).([]*restoration.Restoration)
	return rs, args.Error(1)
}

func (m *MockRestorationRepository) Claim(ctx context.Context, r *restoration.Restoration, now time.Time) (bool, error) {
	args := m.Called(ctx, r, now)
	return args.Bool(0), args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) RestorationRepository() ports.RestorationRepository {
	args := m.Called()
	return args.Get(0).(ports.RestorationRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockDeviceGateway struct{ mock.Mock }

func (m *MockDeviceGateway) FetchStates(ctx context.Context, ids []kernel.UUID) (map[kernel.UUID]device.Status, error) {
	args := m.Called(ctx, ids)
	states, _ := args.Get(0).(map[kernel.UUID]device.Status)
	return states, args.Error(1)
}

func (m *MockDeviceGateway) Reserve(ctx context.Context, ids []kernel.UUID, orderID kernel.UUID) error {
	args := m.Called(ctx, ids, orderID)
	return args.Error(0)
}

func (m *MockDeviceGateway) Restore(ctx context.Context, snapshots []device.Snapshot) error {
	args := m.Called(ctx, snapshots)
	return args.Error(0)
}

type MockRecipientResolver struct{ mock.Mock }

func (m *MockRecipientResolver) Resolve(ctx context.Context, assignee order.Assignee) ([]kernel.Email, error) {
	args := m.Called(ctx, assignee)
	emails, _ := args.Get(0).([]kernel.Email)
	return emails, args.Error(1)
}

type MockOrderNotifier struct{ mock.Mock }

func (m *MockOrderNotifier) OrderCreated(ctx context.Context, o *order.Order, recipients []kernel.Email) {
	m.Called(ctx, o, recipients)
}

func (m *MockOrderNotifier) StateChanged(ctx context.Context, o *order.Order, recipients []kernel.Email) {
	m.Called(ctx, o, recipients)
}

type MockIdempotencyStore struct{ mock.Mock }

func (m *MockIdempotencyStore) Claim(ctx context.Context, key string, candidate kernel.UUID) (kernel.UUID, error) {
	args := m.Called(ctx, key, candidate)
	return args.Get(0).(kernel.UUID), args.Error(1)
}

func newEmployeeAssignee(t *testing.T) order.Assignee {
	t.Helper()
	a, err := order.NewAssignee(order.Employee, kernel.NewUUID())
	require.NoError(t, err)
	return a
}

func newGroupAssignee(t *testing.T) order.Assignee {
	t.Helper()
	a, err := order.NewAssignee(order.Group, kernel.NewUUID())
	require.NoError(t, err)
	return a
}

func newEmails(t *testing.T, raw ...string) []kernel.Email {
	t.Helper()
	emails := make([]kernel.Email, 0, len(raw))
	for _, r := range raw {
		e, err := kernel.NewEmail(r)
		require.NoError(t, err)
		emails = append(emails, e)
	}
	return emails
}

// newStoredOrder builds an order as the repository would return it.
func newStoredOrder(t *testing.T, state order.State, version int64, states ...device.Status) *order.Order {
	t.Helper()
	if len(states) == 0 {
		states = []device.Status{device.GoodCondition}
	}
	items := make([]*order.Item, 0, len(states))
	for _, s := range states {
		item, err := order.NewItem(kernel.NewUUID(), s)
		require.NoError(t, err)
		items = append(items, item)
	}
	now := time.Now().UTC()
	o, err := order.RestoreOrder(
		kernel.NewUUID(), "rental", state, newEmployeeAssignee(t),
		order.NotificationPending, items, now, now, version,
	)
	require.NoError(t, err)
	return o
}
