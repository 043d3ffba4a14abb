package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/domain/model/device"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/domain/model/restoration"
	"orders/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type changeStateFixture struct {
	devices      *MockDeviceGateway
	resolver     *MockRecipientResolver
	notifier     *MockOrderNotifier
	orders       *MockOrderRepository
	restorations *MockRestorationRepository
	factory      *MockUoWFactory
}

func newChangeStateFixture() *changeStateFixture {
	return &changeStateFixture{
		devices:      new(MockDeviceGateway),
		resolver:     new(MockRecipientResolver),
		notifier:     new(MockOrderNotifier),
		orders:       new(MockOrderRepository),
		restorations: new(MockRestorationRepository),
		factory:      new(MockUoWFactory),
	}
}

func (f *changeStateFixture) handler() commands.ChangeOrderStateCommandHandler {
	return commands.NewChangeOrderStateCommandHandler(f.factory, f.devices, f.resolver, f.notifier, time.Minute, nil)
}

func (f *changeStateFixture) assertExpectations(t *testing.T) {
	t.Helper()
	f.devices.AssertExpectations(t)
	f.resolver.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
	f.orders.AssertExpectations(t)
	f.restorations.AssertExpectations(t)
	f.factory.AssertExpectations(t)
}

func (f *changeStateFixture) newUoW() *MockUoW {
	uow := new(MockUoW)
	uow.On("OrderRepository").Return(f.orders).Maybe()
	uow.On("RestorationRepository").Return(f.restorations).Maybe()
	return uow
}

func newChangeStateCommand(t *testing.T, o *order.Order, state order.State, expected int64) commands.ChangeOrderStateCommand {
	t.Helper()
	cmd, err := commands.NewChangeOrderStateCommand(o.ID(), state, expected)
	require.NoError(t, err)
	return cmd
}

func TestChangeOrderStateCommandHandler_Handle_Success(t *testing.T) {
	f := newChangeStateFixture()
	o := newStoredOrder(t, order.Created, 1)
	before := o.UpdatedAt()
	emails := newEmails(t, "a@example.com")
	uow := f.newUoW()

	f.factory.On("Create").Return(uow).Once()
	mock.InOrder(
		uow.On("Begin", mock.Anything).Return(nil).Once(),
		f.orders.On("Get", mock.Anything, o.ID()).Return(o, nil).Once(),
		f.orders.On("Update", mock.Anything, o).Return(nil).Once(),
		uow.On("Commit", mock.Anything).Return(nil).Once(),
		uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)
	f.resolver.On("Resolve", mock.Anything, o.Assignee()).Return(emails, nil).Once()
	f.notifier.On("StateChanged", mock.Anything, o, emails).Once()

	h := f.handler()
	result, err := h.Handle(t.Context(), newChangeStateCommand(t, o, order.InProcess, 1))

	require.NoError(t, err)
	assert.Same(t, o, result)
	assert.Equal(t, order.InProcess, result.State())
	assert.False(t, result.UpdatedAt().Before(before))
	f.restorations.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	f.devices.AssertNotCalled(t, "Restore", mock.Anything, mock.Anything)
	uow.AssertExpectations(t)
	f.assertExpectations(t)
}

func TestChangeOrderStateCommandHandler_Handle_IllegalTransition(t *testing.T) {
	f := newChangeStateFixture()
	o := newStoredOrder(t, order.Created, 1)
	uow := f.newUoW()

	f.factory.On("Create").Return(uow).Once()
	uow.On("Begin", mock.Anything).Return(nil).Once()
	f.orders.On("Get", mock.Anything, o.ID()).Return(o, nil).Once()
	uow.On("Rollback", mock.Anything).Return(nil).Once()

	h := f.handler()
	_, err := h.Handle(t.Context(), newChangeStateCommand(t, o, order.Dispatched, 0))

	require.Error(t, err)
	assert.Equal(t, errs.KindBadRequest, errs.KindOf(err))
	assert.Contains(t, err.Error(), "CREATED")
	assert.Contains(t, err.Error(), "DISPATCHED")
	assert.Equal(t, order.Created, o.State())
	f.orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	f.resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	uow.AssertExpectations(t)
	f.assertExpectations(t)
}

func TestChangeOrderStateCommandHandler_Handle_NotFound(t *testing.T) {
	f := newChangeStateFixture()
	o := newStoredOrder(t, order.Created, 1)
	uow := f.newUoW()

	f.factory.On("Create").Return(uow).Once()
	uow.On("Begin", mock.Anything).Return(nil).Once()
	f.orders.On("Get", mock.Anything, o.ID()).Return(nil, errs.NewObjectNotFoundError("order", o.ID().String())).Once()
	uow.On("Rollback", mock.Anything).Return(nil).Once()

	h := f.handler()
	_, err := h.Handle(t.Context(), newChangeStateCommand(t, o, order.InProcess, 0))

	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	uow.AssertExpectations(t)
	f.assertExpectations(t)
}

func TestChangeOrderStateCommandHandler_Handle_ExpectedVersionMismatch(t *testing.T) {
	f := newChangeStateFixture()
	o := newStoredOrder(t, order.Created, 2)
	uow := f.newUoW()

	f.factory.On("Create").Return(uow).Once()
	uow.On("Begin", mock.Anything).Return(nil).Once()
	f.orders.On("Get", mock.Anything, o.ID()).Return(o, nil).Once()
	uow.On("Rollback", mock.Anything).Return(nil).Once()

	h := f.handler()
	_, err := h.Handle(t.Context(), newChangeStateCommand(t, o, order.InProcess, 1))

	require.ErrorIs(t, err, errs.ErrVersionIsInvalid)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
	assert.Equal(t, order.Created, o.State())
	f.orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.AssertExpectations(t)
	f.assertExpectations(t)
}

func TestChangeOrderStateCommandHandler_Handle_StaleWrite(t *testing.T) {
	f := newChangeStateFixture()
	o := newStoredOrder(t, order.InProcess, 3)
	uow := f.newUoW()

	f.factory.On("Create").Return(uow).Once()
	uow.On("Begin", mock.Anything).Return(nil).Once()
	f.orders.On("Get", mock.Anything, o.ID()).Return(o, nil).Once()
	f.orders.On("Update", mock.Anything, o).Return(errs.NewVersionIsInvalidError("version")).Once()
	uow.On("Rollback", mock.Anything).Return(nil).Once()

	h := f.handler()
	_, err := h.Handle(t.Context(), newChangeStateCommand(t, o, order.Dispatched, 0))

	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	f.notifier.AssertNotCalled(t, "StateChanged", mock.Anything, mock.Anything, mock.Anything)
	uow.AssertExpectations(t)
	f.assertExpectations(t)
}

func TestChangeOrderStateCommandHandler_Handle_FinishRestoresDevices(t *testing.T) {
	f := newChangeStateFixture()
	o := newStoredOrder(t, order.Dispatched, 3, device.GoodCondition, device.Fair)
	emails := newEmails(t, "a@example.com", "b@example.com")
	var ledger *restoration.Restoration
	transitionUoW := f.newUoW()
	ledgerUoW := f.newUoW()

	mock.InOrder(
		f.factory.On("Create").Return(transitionUoW).Once(),
		f.factory.On("Create").Return(ledgerUoW).Once(),
	)
	mock.InOrder(
		transitionUoW.On("Begin", mock.Anything).Return(nil).Once(),
		f.orders.On("Get", mock.Anything, o.ID()).Return(o, nil).Once(),
		f.orders.On("Update", mock.Anything, o).Return(nil).Once(),
		f.restorations.On("Add", mock.Anything, mock.MatchedBy(func(r *restoration.Restoration) bool {
			return r.OrderID().IsEqual(o.ID()) && r.Status() == restoration.InProgress && r.LeaseUntil() != nil
		})).Run(func(args mock.Arguments) {
			ledger = args.Get(1).(*restoration.Restoration)
		}).Return(nil).Once(),
		transitionUoW.On("Commit", mock.Anything).Return(nil).Once(),
		transitionUoW.On("Rollback", mock.Anything).Return(nil).Once(),
	)
	f.resolver.On("Resolve", mock.Anything, o.Assignee()).Return(emails, nil).Once()
	f.notifier.On("StateChanged", mock.Anything, o, emails).Once()
	f.devices.On("Restore", mock.Anything, mock.MatchedBy(func(snapshots []device.Snapshot) bool {
		return len(snapshots) == 2 &&
			snapshots[0].State() == device.GoodCondition &&
			snapshots[1].State() == device.Fair
	})).Return(nil).Once()
	mock.InOrder(
		ledgerUoW.On("Begin", mock.Anything).Return(nil).Once(),
		f.restorations.On("Update", mock.Anything, mock.MatchedBy(func(r *restoration.Restoration) bool {
			return r.IsCompleted()
		})).Return(nil).Once(),
		ledgerUoW.On("Commit", mock.Anything).Return(nil).Once(),
		ledgerUoW.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	h := f.handler()
	result, err := h.Handle(t.Context(), newChangeStateCommand(t, o, order.Finished, 3))

	require.NoError(t, err)
	assert.Equal(t, order.Finished, result.State())
	require.NotNil(t, ledger)
	assert.True(t, ledger.IsCompleted())
	assert.Nil(t, ledger.LeaseUntil())
	assert.Equal(t, 1, ledger.Attempts())
	transitionUoW.AssertExpectations(t)
	ledgerUoW.AssertExpectations(t)
	f.assertExpectations(t)
}

func TestChangeOrderStateCommandHandler_Handle_FinishRestoreFailure(t *testing.T) {
	f := newChangeStateFixture()
	o := newStoredOrder(t, order.Dispatched, 3)
	var ledger *restoration.Restoration
	restoreErr := device.NewUnavailableError(device.ReasonServiceUnavailable, "device service unavailable", nil, errors.New("timeout"))
	transitionUoW := f.newUoW()
	ledgerUoW := f.newUoW()

	mock.InOrder(
		f.factory.On("Create").Return(transitionUoW).Once(),
		f.factory.On("Create").Return(ledgerUoW).Once(),
	)
	transitionUoW.On("Begin", mock.Anything).Return(nil).Once()
	f.orders.On("Get", mock.Anything, o.ID()).Return(o, nil).Once()
	f.orders.On("Update", mock.Anything, o).Return(nil).Once()
	f.restorations.On("Add", mock.Anything, mock.AnythingOfType("*restoration.Restoration")).
		Run(func(args mock.Arguments) {
			ledger = args.Get(1).(*restoration.Restoration)
		}).Return(nil).Once()
	transitionUoW.On("Commit", mock.Anything).Return(nil).Once()
	transitionUoW.On("Rollback", mock.Anything).Return(nil).Once()
	f.resolver.On("Resolve", mock.Anything, o.Assignee()).Return(nil, errs.NewNotFoundError("employee not found", nil)).Once()
	f.devices.On("Restore", mock.Anything, mock.Anything).Return(restoreErr).Once()
	ledgerUoW.On("Begin", mock.Anything).Return(nil).Once()
	f.restorations.On("Update", mock.Anything, mock.AnythingOfType("*restoration.Restoration")).Return(nil).Once()
	ledgerUoW.On("Commit", mock.Anything).Return(nil).Once()
	ledgerUoW.On("Rollback", mock.Anything).Return(nil).Once()

	h := f.handler()
	_, err := h.Handle(t.Context(), newChangeStateCommand(t, o, order.Finished, 0))

	require.Error(t, err)
	assert.Equal(t, errs.KindInternal, errs.KindOf(err))
	assert.True(t, errs.IsRetryable(err))
	assert.Equal(t, order.Finished, o.State())
	require.NotNil(t, ledger)
	assert.False(t, ledger.IsCompleted())
	assert.Equal(t, restoration.Pending, ledger.Status())
	assert.Equal(t, 1, ledger.Attempts())
	assert.Contains(t, ledger.LastError(), "device service unavailable")
	f.notifier.AssertNotCalled(t, "StateChanged", mock.Anything, mock.Anything, mock.Anything)
	transitionUoW.AssertExpectations(t)
	ledgerUoW.AssertExpectations(t)
	f.assertExpectations(t)
}

func TestChangeOrderStateCommandHandler_Handle_LedgerWriteFailureIsNotFatal(t *testing.T) {
	f := newChangeStateFixture()
	o := newStoredOrder(t, order.Dispatched, 3)
	transitionUoW := f.newUoW()
	ledgerUoW := f.newUoW()

	mock.InOrder(
		f.factory.On("Create").Return(transitionUoW).Once(),
		f.factory.On("Create").Return(ledgerUoW).Once(),
	)
	transitionUoW.On("Begin", mock.Anything).Return(nil).Once()
	f.orders.On("Get", mock.Anything, o.ID()).Return(o, nil).Once()
	f.orders.On("Update", mock.Anything, o).Return(nil).Once()
	f.restorations.On("Add", mock.Anything, mock.Anything).Return(nil).Once()
	transitionUoW.On("Commit", mock.Anything).Return(nil).Once()
	transitionUoW.On("Rollback", mock.Anything).Return(nil).Once()
	f.resolver.On("Resolve", mock.Anything, o.Assignee()).Return(newEmails(t, "a@example.com"), nil).Once()
	f.notifier.On("StateChanged", mock.Anything, o, mock.Anything).Once()
	f.devices.On("Restore", mock.Anything, mock.Anything).Return(nil).Once()
	ledgerUoW.On("Begin", mock.Anything).Return(errors.New("pool exhausted")).Once()

	h := f.handler()
	result, err := h.Handle(t.Context(), newChangeStateCommand(t, o, order.Finished, 0))

	require.NoError(t, err)
	assert.Equal(t, order.Finished, result.State())
	transitionUoW.AssertExpectations(t)
	ledgerUoW.AssertExpectations(t)
	f.assertExpectations(t)
}

func TestChangeOrderStateCommandHandler_Handle_LedgerOutcomeSurvivesCancellation(t *testing.T) {
	f := newChangeStateFixture()
	o := newStoredOrder(t, order.Dispatched, 3)
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	transitionUoW := f.newUoW()
	ledgerUoW := f.newUoW()
	live := mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil })

	mock.InOrder(
		f.factory.On("Create").Return(transitionUoW).Once(),
		f.factory.On("Create").Return(ledgerUoW).Once(),
	)
	transitionUoW.On("Begin", mock.Anything).Return(nil).Once()
	f.orders.On("Get", mock.Anything, o.ID()).Return(o, nil).Once()
	f.orders.On("Update", mock.Anything, o).Return(nil).Once()
	f.restorations.On("Add", mock.Anything, mock.Anything).Return(nil).Once()
	transitionUoW.On("Commit", mock.Anything).Return(nil).Once()
	transitionUoW.On("Rollback", mock.Anything).Return(nil).Once()
	f.resolver.On("Resolve", mock.Anything, o.Assignee()).Return(newEmails(t, "a@example.com"), nil).Once()
	f.notifier.On("StateChanged", mock.Anything, o, mock.Anything).Once()
	f.devices.On("Restore", mock.Anything, mock.Anything).Run(func(mock.Arguments) { cancel() }).Return(nil).Once()
	ledgerUoW.On("Begin", live).Return(nil).Once()
	f.restorations.On("Update", live, mock.MatchedBy(func(r *restoration.Restoration) bool {
		return r.IsCompleted()
	})).Return(nil).Once()
	ledgerUoW.On("Commit", live).Return(nil).Once()
	ledgerUoW.On("Rollback", live).Return(nil).Once()

	h := f.handler()
	_, err := h.Handle(ctx, newChangeStateCommand(t, o, order.Finished, 0))

	require.NoError(t, err)
	transitionUoW.AssertExpectations(t)
	ledgerUoW.AssertExpectations(t)
	f.assertExpectations(t)
}
