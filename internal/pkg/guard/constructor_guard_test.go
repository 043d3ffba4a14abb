package guard_test

import (
	"errors"
	"sync"
	"testing"

	"orders/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	errItemNotConstructed := errors.New("item must be created via NewItem")

	t.Run("should pass when created by constructor", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		require.NoError(t, g.Validate(errItemNotConstructed))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("should return the given error for zero value", func(t *testing.T) {
		var g guard.ConstructorGuard

		err := g.Validate(errItemNotConstructed)

		assert.Equal(t, errItemNotConstructed, err)
	})

	t.Run("should return default error for zero value and nil", func(t *testing.T) {
		var g guard.ConstructorGuard

		err := g.Validate(nil)

		assert.Equal(t, guard.ErrDefaultConstructorGuard, err)
		assert.Equal(t, "object must be created via its constructor", err.Error())
	})
}

func TestConstructorGuard_EmbeddedInValue(t *testing.T) {
	type restoration struct {
		state string
		guard guard.ConstructorGuard
	}
	newRestoration := func(state string) restoration {
		return restoration{state: state, guard: guard.NewConstructorGuard()}
	}

	t.Run("should survive copying by value", func(t *testing.T) {
		r := newRestoration("GOOD_CONDITION")
		c := r

		require.NoError(t, r.guard.Validate(nil))
		require.NoError(t, c.guard.Validate(nil))
	})

	t.Run("should fail for literal construction", func(t *testing.T) {
		r := restoration{state: "GOOD_CONDITION"}

		require.ErrorIs(t, r.guard.Validate(nil), guard.ErrDefaultConstructorGuard)
	})
}

func TestConstructorGuard_Concurrency(t *testing.T) {
	g := guard.NewConstructorGuard()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				assert.NoError(t, g.Validate(nil))
			}
		}()
	}
	wg.Wait()
}
