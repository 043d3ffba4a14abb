package device_test

import (
	"errors"
	"fmt"
	"testing"

	"orders/internal/core/domain/model/device"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnavailableError_Kind(t *testing.T) {
	tests := []struct {
		reason    device.Reason
		kind      errs.Kind
		retryable bool
	}{
		{device.ReasonNotFound, errs.KindNotFound, false},
		{device.ReasonBadRequest, errs.KindBadRequest, false},
		{device.ReasonConflict, errs.KindConflict, false},
		{device.ReasonServiceUnavailable, errs.KindInternal, true},
		{device.ReasonInternal, errs.KindInternal, false},
	}
	for _, tt := range tests {
		t.Run(tt.reason.String(), func(t *testing.T) {
			err := fmt.Errorf("reserve: %w", device.NewUnavailableError(tt.reason, "failed", nil, nil))

			assert.Equal(t, tt.kind, errs.KindOf(err))
			assert.Equal(t, tt.retryable, errs.IsRetryable(err))
		})
	}
}

func TestUnavailableError_Messages(t *testing.T) {
	id, err := kernel.UUIDFromString("550e8400-e29b-41d4-a716-446655440000")
	require.NoError(t, err)
	cause := errors.New("connection refused")

	unavailable := device.NewUnavailableError(device.ReasonConflict, "devices are not available", []kernel.UUID{id}, cause)

	assert.Equal(t,
		"device unavailable (Conflict): devices are not available [devices: 550e8400-e29b-41d4-a716-446655440000] (cause: connection refused)",
		unavailable.Error())
	assert.Equal(t, "devices are not available: 550e8400-e29b-41d4-a716-446655440000", errs.MessageOf(unavailable))
	assert.ErrorIs(t, unavailable, cause)
}

func TestNewSnapshot(t *testing.T) {
	t.Run("should keep device and state", func(t *testing.T) {
		id := kernel.NewUUID()

		item, err := device.NewSnapshot(id, device.Fair)

		require.NoError(t, err)
		assert.True(t, id.IsEqual(item.DeviceID()))
		assert.Equal(t, device.Fair, item.State())
		assert.NoError(t, item.Validate())
	})

	t.Run("should reject missing values", func(t *testing.T) {
		_, err := device.NewSnapshot(kernel.UUID{}, device.Unknown)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var item device.Snapshot

		assert.Equal(t, device.ErrSnapshotIsNotConstructed, item.Validate())
	})
}
