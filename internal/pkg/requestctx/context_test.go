package requestctx_test

import (
	"context"
	"testing"

	"orders/internal/pkg/requestctx"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBearerToken(t *testing.T) {
	t.Run("should return stored token", func(t *testing.T) {
		ctx := requestctx.WithBearerToken(t.Context(), "abc")

		token, ok := requestctx.BearerToken(ctx)

		assert.True(t, ok)
		assert.Equal(t, "abc", token)
	})

	t.Run("should report missing token", func(t *testing.T) {
		_, ok := requestctx.BearerToken(t.Context())
		assert.False(t, ok)

		_, ok = requestctx.BearerToken(requestctx.WithBearerToken(t.Context(), ""))
		assert.False(t, ok)
	})
}

func TestLogger(t *testing.T) {
	logger := zap.NewExample()

	assert.Same(t, logger, requestctx.Logger(requestctx.WithLogger(t.Context(), logger)))
	assert.NotNil(t, requestctx.Logger(context.Background()))
}

func TestCorrelationID(t *testing.T) {
	ctx := requestctx.WithCorrelationID(t.Context(), "c-1")

	assert.Equal(t, "c-1", requestctx.CorrelationID(ctx))
	assert.Empty(t, requestctx.CorrelationID(t.Context()))
}
