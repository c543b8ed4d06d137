package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/gasflow/backend/internal/domain/inventory"
	"github.com/gasflow/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedgerFixture() (*LedgerService, *testutil.MemoryBalanceRepository, *testutil.EventRecorder) {
	balances := testutil.NewMemoryBalanceRepository()
	recorder := testutil.NewEventRecorder()
	svc := NewLedgerService(balances)
	svc.SetEventPublisher(recorder)
	return svc, balances, recorder
}

func TestLedgerServiceGetBalance(t *testing.T) {
	svc, _, _ := newLedgerFixture()
	ctx := context.Background()
	warehouseID, productID := uuid.New(), uuid.New()

	t.Run("unknown pair yields zero balance", func(t *testing.T) {
		b, err := svc.GetBalance(ctx, warehouseID, productID)
		require.NoError(t, err)
		assert.True(t, b.IsZero())
		assert.Equal(t, warehouseID, b.WarehouseID)
		assert.Equal(t, productID, b.ProductID)
	})

	t.Run("returns persisted state once stock lands", func(t *testing.T) {
		_, err := svc.Apply(ctx, warehouseID, productID, inventory.BucketDelta{Full: 7})
		require.NoError(t, err)

		b, err := svc.GetBalance(ctx, warehouseID, productID)
		require.NoError(t, err)
		assert.Equal(t, int64(7), b.QtyFull)
	})
}

func TestLedgerServiceApply(t *testing.T) {
	ctx := context.Background()

	t.Run("persists applied delta", func(t *testing.T) {
		svc, balances, _ := newLedgerFixture()
		warehouseID, productID := uuid.New(), uuid.New()

		b, err := svc.Apply(ctx, warehouseID, productID, inventory.BucketDelta{Full: 10, Empty: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(10), b.QtyFull)

		stored, err := balances.FindByWarehouseAndProduct(ctx, warehouseID, productID)
		require.NoError(t, err)
		assert.Equal(t, int64(10), stored.QtyFull)
		assert.Equal(t, int64(2), stored.QtyEmpty)
	})

	t.Run("failed delta persists nothing", func(t *testing.T) {
		svc, balances, _ := newLedgerFixture()
		warehouseID, productID := uuid.New(), uuid.New()

		_, err := svc.Apply(ctx, warehouseID, productID, inventory.BucketDelta{Full: -1})
		require.Error(t, err)

		stored, err := balances.FindByWarehouseAndProduct(ctx, warehouseID, productID)
		require.NoError(t, err)
		assert.True(t, stored.IsZero())
	})

	t.Run("first mutation emits balance created event", func(t *testing.T) {
		svc, _, recorder := newLedgerFixture()
		warehouseID, productID := uuid.New(), uuid.New()

		_, err := svc.Apply(ctx, warehouseID, productID, inventory.BucketDelta{Full: 5})
		require.NoError(t, err)
		assert.Len(t, recorder.EventsOfType(inventory.EventTypeBalanceCreated), 1)

		_, err = svc.Apply(ctx, warehouseID, productID, inventory.BucketDelta{Full: 5})
		require.NoError(t, err)
		assert.Len(t, recorder.EventsOfType(inventory.EventTypeBalanceCreated), 1)
	})
}

func TestLedgerServiceWithBalancePair(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects same warehouse", func(t *testing.T) {
		svc, _, _ := newLedgerFixture()
		warehouseID, productID := uuid.New(), uuid.New()
		_, _, err := svc.WithBalancePair(ctx, warehouseID, warehouseID, productID,
			func(from, to *inventory.CylinderBalance) error { return nil })
		assert.Error(t, err)
	})

	t.Run("persists both balances", func(t *testing.T) {
		svc, _, _ := newLedgerFixture()
		fromID, toID, productID := uuid.New(), uuid.New(), uuid.New()
		_, err := svc.Apply(ctx, fromID, productID, inventory.BucketDelta{Full: 10})
		require.NoError(t, err)

		from, to, err := svc.WithBalancePair(ctx, fromID, toID, productID,
			func(from, to *inventory.CylinderBalance) error {
				if err := from.Apply(inventory.BucketDelta{Full: -4}); err != nil {
					return err
				}
				return to.Apply(inventory.BucketDelta{Full: 4})
			})
		require.NoError(t, err)
		assert.Equal(t, int64(6), from.QtyFull)
		assert.Equal(t, int64(4), to.QtyFull)
	})
}

func TestLedgerServiceConcurrentApply(t *testing.T) {
	svc, _, _ := newLedgerFixture()
	ctx := context.Background()
	warehouseID, productID := uuid.New(), uuid.New()

	const workers = 16
	const perWorker = 25

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_, err := svc.Apply(ctx, warehouseID, productID, inventory.BucketDelta{Full: 1})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	b, err := svc.GetBalance(ctx, warehouseID, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(workers*perWorker), b.QtyFull)
}
