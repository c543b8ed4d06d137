package event

import (
	"context"
	"errors"
	"testing"

	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "CylinderBalance", uuid.New())
	return &e
}

func TestInMemoryEventBus(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to handlers of the matching type", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)

		var adjusted, transferred []string
		bus.Subscribe(func(ctx context.Context, e shared.DomainEvent) error {
			adjusted = append(adjusted, e.EventType())
			return nil
		}, "inventory.stock_adjusted")
		bus.Subscribe(func(ctx context.Context, e shared.DomainEvent) error {
			transferred = append(transferred, e.EventType())
			return nil
		}, "inventory.stock_transferred")

		require.NoError(t, bus.Publish(ctx, newTestEvent("inventory.stock_adjusted")))

		assert.Equal(t, []string{"inventory.stock_adjusted"}, adjusted)
		assert.Empty(t, transferred)
	})

	t.Run("one handler can watch several types", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)

		var seen int
		bus.Subscribe(func(ctx context.Context, e shared.DomainEvent) error {
			seen++
			return nil
		}, "credit.issued", "credit.resolved")

		require.NoError(t, bus.Publish(ctx,
			newTestEvent("credit.issued"), newTestEvent("credit.resolved")))
		assert.Equal(t, 2, seen)
	})

	t.Run("a failing handler does not block the others", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)

		var called bool
		bus.Subscribe(func(ctx context.Context, e shared.DomainEvent) error {
			return errors.New("handler broke")
		}, "inventory.stock_adjusted")
		bus.Subscribe(func(ctx context.Context, e shared.DomainEvent) error {
			called = true
			return nil
		}, "inventory.stock_adjusted")

		require.NoError(t, bus.Publish(ctx, newTestEvent("inventory.stock_adjusted")))
		assert.True(t, called)
	})

	t.Run("a panicking handler is recovered", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)

		bus.Subscribe(func(ctx context.Context, e shared.DomainEvent) error {
			panic("boom")
		}, "inventory.stock_adjusted")

		assert.NoError(t, bus.Publish(ctx, newTestEvent("inventory.stock_adjusted")))
	})

	t.Run("events without handlers are dropped", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		assert.NoError(t, bus.Publish(ctx, newTestEvent("inventory.balance_created")))
	})
}
