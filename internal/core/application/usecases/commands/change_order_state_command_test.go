package commands_test

import (
	"testing"

	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChangeOrderStateCommand_ValidInput(t *testing.T) {
	id := kernel.NewUUID()

	cmd, err := commands.NewChangeOrderStateCommand(id, order.Dispatched, 4)

	require.NoError(t, err)
	require.NoError(t, cmd.Validate())
	assert.Equal(t, id, cmd.OrderID())
	assert.Equal(t, order.Dispatched, cmd.State())
	version, ok := cmd.ExpectedVersion()
	assert.True(t, ok)
	assert.Equal(t, int64(4), version)
}

func TestNewChangeOrderStateCommand_WithoutExpectedVersion(t *testing.T) {
	cmd, err := commands.NewChangeOrderStateCommand(kernel.NewUUID(), order.InProcess, 0)

	require.NoError(t, err)
	_, ok := cmd.ExpectedVersion()
	assert.False(t, ok)
}

func TestNewChangeOrderStateCommand_InvalidInput(t *testing.T) {
	_, err := commands.NewChangeOrderStateCommand(kernel.UUID{}, order.Unknown, -1)

	require.Error(t, err)
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}

func TestChangeOrderStateCommand_ZeroValueIsNotConstructed(t *testing.T) {
	var cmd commands.ChangeOrderStateCommand

	assert.ErrorIs(t, cmd.Validate(), commands.ErrChangeOrderStateCommandIsNotConstructed)
}
