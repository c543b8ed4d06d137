package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gasflow/backend/internal/domain/inventory"
	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type movementFixture struct {
	svc       *MovementService
	ledger    *LedgerService
	balances  *testutil.MemoryBalanceRepository
	movements *testutil.MemoryMovementRepository
	recorder  *testutil.EventRecorder
}

func newMovementFixture() *movementFixture {
	balances := testutil.NewMemoryBalanceRepository()
	movements := testutil.NewMemoryMovementRepository()
	recorder := testutil.NewEventRecorder()
	ledger := NewLedgerService(balances)
	ledger.SetEventPublisher(recorder)
	return &movementFixture{
		svc:       NewMovementService(ledger, movements),
		ledger:    ledger,
		balances:  balances,
		movements: movements,
		recorder:  recorder,
	}
}

func (f *movementFixture) receive(t *testing.T, warehouseID, productID uuid.UUID, full, empty int64) {
	t.Helper()
	_, err := f.svc.Adjust(context.Background(), AdjustStockRequest{
		WarehouseID:    warehouseID,
		ProductID:      productID,
		AdjustmentType: inventory.AdjustmentTypeReceivedFull,
		QtyFullChange:  full,
		QtyEmptyChange: empty,
		Reason:         "initial receipt",
	})
	require.NoError(t, err)
}

func TestClampQuantity(t *testing.T) {
	assert.Equal(t, int64(0), ClampQuantity(-5, 10))
	assert.Equal(t, int64(7), ClampQuantity(7, 10))
	assert.Equal(t, int64(10), ClampQuantity(15, 10))
	assert.Equal(t, int64(0), ClampQuantity(15, 0))
}

func TestMovementServiceAdjust(t *testing.T) {
	ctx := context.Background()

	t.Run("receipt creates the balance", func(t *testing.T) {
		f := newMovementFixture()
		warehouseID, productID := uuid.New(), uuid.New()

		resp, err := f.svc.Adjust(ctx, AdjustStockRequest{
			WarehouseID:    warehouseID,
			ProductID:      productID,
			AdjustmentType: inventory.AdjustmentTypeReceivedFull,
			QtyFullChange:  12,
			Reason:         "supplier delivery",
			Reference:      "PO-77",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(12), resp.QtyFull)

		recorded := f.movements.All()
		require.Len(t, recorded, 1)
		assert.Equal(t, inventory.MovementTypeReceipt, recorded[0].MovementType)
		assert.Equal(t, "PO-77", recorded[0].Reference)
		assert.Len(t, f.recorder.EventsOfType(inventory.EventTypeStockAdjusted), 1)
	})

	t.Run("requires a reason", func(t *testing.T) {
		f := newMovementFixture()
		_, err := f.svc.Adjust(ctx, AdjustStockRequest{
			WarehouseID:    uuid.New(),
			ProductID:      uuid.New(),
			AdjustmentType: inventory.AdjustmentTypeOther,
			QtyFullChange:  1,
		})
		assert.True(t, shared.HasCode(err, shared.CodeValidationError))
	})

	t.Run("requires at least one change", func(t *testing.T) {
		f := newMovementFixture()
		_, err := f.svc.Adjust(ctx, AdjustStockRequest{
			WarehouseID:    uuid.New(),
			ProductID:      uuid.New(),
			AdjustmentType: inventory.AdjustmentTypeOther,
			Reason:         "noop",
		})
		assert.True(t, shared.HasCode(err, shared.CodeValidationError))
	})

	t.Run("rejects unknown adjustment type", func(t *testing.T) {
		f := newMovementFixture()
		_, err := f.svc.Adjust(ctx, AdjustStockRequest{
			WarehouseID:    uuid.New(),
			ProductID:      uuid.New(),
			AdjustmentType: inventory.AdjustmentType("GUESS"),
			QtyFullChange:  1,
			Reason:         "x",
		})
		assert.True(t, shared.HasCode(err, shared.CodeValidationError))
	})

	t.Run("rejects adjustment driving stock negative", func(t *testing.T) {
		f := newMovementFixture()
		warehouseID, productID := uuid.New(), uuid.New()
		f.receive(t, warehouseID, productID, 5, 0)

		_, err := f.svc.Adjust(ctx, AdjustStockRequest{
			WarehouseID:    warehouseID,
			ProductID:      productID,
			AdjustmentType: inventory.AdjustmentTypePhysicalCount,
			QtyFullChange:  -6,
			Reason:         "count correction",
		})
		assert.True(t, shared.HasCode(err, shared.CodeValidationError))

		b, err := f.ledger.GetBalance(ctx, warehouseID, productID)
		require.NoError(t, err)
		assert.Equal(t, int64(5), b.QtyFull)
	})

	t.Run("failed save records no movement", func(t *testing.T) {
		f := newMovementFixture()
		warehouseID, productID := uuid.New(), uuid.New()

		f.balances.FailSave = errors.New("connection reset")
		_, err := f.svc.Adjust(ctx, AdjustStockRequest{
			WarehouseID:    warehouseID,
			ProductID:      productID,
			AdjustmentType: inventory.AdjustmentTypeReceivedFull,
			QtyFullChange:  5,
			Reason:         "supplier delivery",
		})
		require.Error(t, err)

		// the audit trail must not show a mutation that never committed
		assert.Empty(t, f.movements.All())
	})

	t.Run("damage loss moves stock into the damaged bucket", func(t *testing.T) {
		f := newMovementFixture()
		warehouseID, productID := uuid.New(), uuid.New()
		f.receive(t, warehouseID, productID, 10, 4)

		resp, err := f.svc.Adjust(ctx, AdjustStockRequest{
			WarehouseID:    warehouseID,
			ProductID:      productID,
			AdjustmentType: inventory.AdjustmentTypeDamageLoss,
			QtyFullChange:  -2,
			QtyEmptyChange: -1,
			Reason:         "dropped pallet",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(8), resp.QtyFull)
		assert.Equal(t, int64(3), resp.QtyEmpty)
		assert.Equal(t, int64(3), resp.QtyDamaged)

		movements := f.movements.All()
		assert.Equal(t, inventory.MovementTypeDamage, movements[len(movements)-1].MovementType)
	})

	t.Run("damage loss cannot increment stock", func(t *testing.T) {
		f := newMovementFixture()
		_, err := f.svc.Adjust(ctx, AdjustStockRequest{
			WarehouseID:    uuid.New(),
			ProductID:      uuid.New(),
			AdjustmentType: inventory.AdjustmentTypeDamageLoss,
			QtyFullChange:  2,
			Reason:         "typo",
		})
		assert.True(t, shared.HasCode(err, shared.CodeValidationError))
	})
}

func TestMovementServiceTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("moves stock between warehouses", func(t *testing.T) {
		f := newMovementFixture()
		fromID, toID, productID := uuid.New(), uuid.New(), uuid.New()
		f.receive(t, fromID, productID, 10, 6)

		resp, err := f.svc.Transfer(ctx, TransferStockRequest{
			FromWarehouseID: fromID,
			ToWarehouseID:   toID,
			ProductID:       productID,
			QtyFull:         4,
			QtyEmpty:        2,
			Notes:           "rebalance",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(6), resp.From.QtyFull)
		assert.Equal(t, int64(4), resp.From.QtyEmpty)
		assert.Equal(t, int64(4), resp.To.QtyFull)
		assert.Equal(t, int64(2), resp.To.QtyEmpty)

		// conservation: totals across both warehouses unchanged
		assert.Equal(t, int64(10), resp.From.QtyFull+resp.To.QtyFull)
		assert.Equal(t, int64(6), resp.From.QtyEmpty+resp.To.QtyEmpty)

		movements := f.movements.All()
		require.Len(t, movements, 3) // receipt + out + in
		assert.Equal(t, inventory.MovementTypeTransferOut, movements[1].MovementType)
		assert.Equal(t, inventory.MovementTypeTransferIn, movements[2].MovementType)
		assert.Len(t, f.recorder.EventsOfType(inventory.EventTypeStockTransferred), 1)
	})

	t.Run("rejects same warehouse", func(t *testing.T) {
		f := newMovementFixture()
		warehouseID := uuid.New()
		_, err := f.svc.Transfer(ctx, TransferStockRequest{
			FromWarehouseID: warehouseID,
			ToWarehouseID:   warehouseID,
			ProductID:       uuid.New(),
			QtyFull:         1,
		})
		assert.True(t, shared.HasCode(err, shared.CodeValidationError))
	})

	t.Run("rejects zero movement", func(t *testing.T) {
		f := newMovementFixture()
		_, err := f.svc.Transfer(ctx, TransferStockRequest{
			FromWarehouseID: uuid.New(),
			ToWarehouseID:   uuid.New(),
			ProductID:       uuid.New(),
		})
		assert.True(t, shared.HasCode(err, shared.CodeValidationError))
	})

	t.Run("failed save records no transfer movements", func(t *testing.T) {
		f := newMovementFixture()
		fromID, toID, productID := uuid.New(), uuid.New(), uuid.New()
		f.receive(t, fromID, productID, 10, 0)

		f.balances.FailSave = errors.New("connection reset")
		_, err := f.svc.Transfer(ctx, TransferStockRequest{
			FromWarehouseID: fromID,
			ToWarehouseID:   toID,
			ProductID:       productID,
			QtyFull:         4,
			Notes:           "rebalance",
		})
		require.Error(t, err)

		movements := f.movements.All()
		require.Len(t, movements, 1) // the receipt only
		assert.Equal(t, inventory.MovementTypeReceipt, movements[0].MovementType)
	})

	t.Run("insufficient full stock reports the shortfall", func(t *testing.T) {
		f := newMovementFixture()
		fromID, toID, productID := uuid.New(), uuid.New(), uuid.New()
		f.receive(t, fromID, productID, 3, 0)

		_, err := f.svc.Transfer(ctx, TransferStockRequest{
			FromWarehouseID: fromID,
			ToWarehouseID:   toID,
			ProductID:       productID,
			QtyFull:         5,
		})
		var insufficient *inventory.InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, "qty_full", insufficient.Bucket)
		assert.Equal(t, int64(2), insufficient.Shortfall())

		// nothing moved
		from, _ := f.ledger.GetBalance(ctx, fromID, productID)
		to, _ := f.ledger.GetBalance(ctx, toID, productID)
		assert.Equal(t, int64(3), from.QtyFull)
		assert.Equal(t, int64(0), to.QtyFull)
	})

	t.Run("insufficient empty stock reports the shortfall", func(t *testing.T) {
		f := newMovementFixture()
		fromID, toID, productID := uuid.New(), uuid.New(), uuid.New()
		f.receive(t, fromID, productID, 0, 1)

		_, err := f.svc.Transfer(ctx, TransferStockRequest{
			FromWarehouseID: fromID,
			ToWarehouseID:   toID,
			ProductID:       productID,
			QtyEmpty:        2,
		})
		var insufficient *inventory.InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, "qty_empty", insufficient.Bucket)
	})

	t.Run("concurrent opposing transfers do not deadlock", func(t *testing.T) {
		f := newMovementFixture()
		a, b, productID := uuid.New(), uuid.New(), uuid.New()
		f.receive(t, a, productID, 50, 0)

		_, err := f.svc.Adjust(ctx, AdjustStockRequest{
			WarehouseID:    b,
			ProductID:      productID,
			AdjustmentType: inventory.AdjustmentTypeReceivedFull,
			QtyFullChange:  50,
			Reason:         "initial receipt",
		})
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, _ = f.svc.Transfer(ctx, TransferStockRequest{
					FromWarehouseID: a, ToWarehouseID: b, ProductID: productID, QtyFull: 1,
				})
			}()
			go func() {
				defer wg.Done()
				_, _ = f.svc.Transfer(ctx, TransferStockRequest{
					FromWarehouseID: b, ToWarehouseID: a, ProductID: productID, QtyFull: 1,
				})
			}()
		}
		wg.Wait()

		balA, _ := f.ledger.GetBalance(ctx, a, productID)
		balB, _ := f.ledger.GetBalance(ctx, b, productID)
		assert.Equal(t, int64(100), balA.QtyFull+balB.QtyFull)
	})
}

func TestMovementServiceReserve(t *testing.T) {
	ctx := context.Background()

	t.Run("holds available stock", func(t *testing.T) {
		f := newMovementFixture()
		warehouseID, productID := uuid.New(), uuid.New()
		f.receive(t, warehouseID, productID, 10, 0)

		resp, err := f.svc.Reserve(ctx, warehouseID, productID, 4, "SO-1")
		require.NoError(t, err)
		assert.Equal(t, int64(4), resp.QtyReserved)
		assert.Equal(t, int64(6), resp.Available)
		assert.Len(t, f.recorder.EventsOfType(inventory.EventTypeStockReserved), 1)
	})

	t.Run("checks availability, not raw full stock", func(t *testing.T) {
		f := newMovementFixture()
		warehouseID, productID := uuid.New(), uuid.New()
		f.receive(t, warehouseID, productID, 10, 0)
		_, err := f.svc.Reserve(ctx, warehouseID, productID, 2, "SO-1")
		require.NoError(t, err)

		_, err = f.svc.Reserve(ctx, warehouseID, productID, 9, "SO-2")
		var insufficient *inventory.InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, "available", insufficient.Bucket)
		assert.Equal(t, int64(1), insufficient.Shortfall())

		// the remaining eight can still be held
		resp, err := f.svc.Reserve(ctx, warehouseID, productID, 8, "SO-3")
		require.NoError(t, err)
		assert.Equal(t, int64(10), resp.QtyReserved)
		assert.Equal(t, int64(0), resp.Available)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		f := newMovementFixture()
		_, err := f.svc.Reserve(ctx, uuid.New(), uuid.New(), 0, "SO-1")
		assert.True(t, shared.HasCode(err, shared.CodeValidationError))
	})

	t.Run("movements carry the order reference", func(t *testing.T) {
		f := newMovementFixture()
		warehouseID, productID := uuid.New(), uuid.New()
		f.receive(t, warehouseID, productID, 10, 0)

		_, err := f.svc.Reserve(ctx, warehouseID, productID, 4, "SO-42")
		require.NoError(t, err)

		byRef, err := f.movements.FindByReference(ctx, "SO-42")
		require.NoError(t, err)
		require.Len(t, byRef, 1)
		assert.Equal(t, inventory.MovementTypeOrderReserve, byRef[0].MovementType)
		assert.Equal(t, int64(4), byRef[0].QtyReservedChange)
	})
}

func TestMovementServiceReleaseReservation(t *testing.T) {
	ctx := context.Background()
	f := newMovementFixture()
	warehouseID, productID := uuid.New(), uuid.New()
	f.receive(t, warehouseID, productID, 10, 0)
	_, err := f.svc.Reserve(ctx, warehouseID, productID, 4, "SO-1")
	require.NoError(t, err)

	t.Run("hands the hold back", func(t *testing.T) {
		resp, err := f.svc.ReleaseReservation(ctx, warehouseID, productID, 4, "SO-1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), resp.QtyReserved)
		assert.Equal(t, int64(10), resp.Available)
		assert.Len(t, f.recorder.EventsOfType(inventory.EventTypeReservationReleased), 1)
	})

	t.Run("cannot release more than held", func(t *testing.T) {
		_, err := f.svc.ReleaseReservation(ctx, warehouseID, productID, 1, "SO-1")
		assert.True(t, shared.HasCode(err, shared.CodeInvariantViolation))
	})
}

func TestMovementServiceFulfillReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("ships reserved stock and books returned empties", func(t *testing.T) {
		f := newMovementFixture()
		warehouseID, productID := uuid.New(), uuid.New()
		f.receive(t, warehouseID, productID, 10, 0)
		_, err := f.svc.Reserve(ctx, warehouseID, productID, 3, "SO-1")
		require.NoError(t, err)

		resp, err := f.svc.FulfillReservation(ctx, warehouseID, productID, 3, 3, "SO-1")
		require.NoError(t, err)
		assert.Equal(t, int64(7), resp.QtyFull)
		assert.Equal(t, int64(0), resp.QtyReserved)
		assert.Equal(t, int64(3), resp.QtyEmpty)
		assert.Len(t, f.recorder.EventsOfType(inventory.EventTypeOrderFulfilled), 1)
	})

	t.Run("rejects fulfilling more than reserved", func(t *testing.T) {
		f := newMovementFixture()
		warehouseID, productID := uuid.New(), uuid.New()
		f.receive(t, warehouseID, productID, 10, 0)
		_, err := f.svc.Reserve(ctx, warehouseID, productID, 2, "SO-1")
		require.NoError(t, err)

		_, err = f.svc.FulfillReservation(ctx, warehouseID, productID, 3, 0, "SO-1")
		assert.True(t, shared.HasCode(err, shared.CodeInvariantViolation))
	})

	t.Run("rejects negative empties", func(t *testing.T) {
		f := newMovementFixture()
		_, err := f.svc.FulfillReservation(ctx, uuid.New(), uuid.New(), 1, -1, "SO-1")
		assert.True(t, shared.HasCode(err, shared.CodeValidationError))
	})
}

func TestHasCodeMatchesWrappedErrors(t *testing.T) {
	base := shared.NewDomainError(shared.CodeValidationError, "bad input")
	wrapped := errors.Join(base, errors.New("context"))
	assert.True(t, shared.HasCode(wrapped, shared.CodeValidationError))
}
