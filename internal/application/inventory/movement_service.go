package inventory

import (
	"context"
	"fmt"

	"github.com/gasflow/backend/internal/domain/inventory"
	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClampQuantity bounds a caller-supplied quantity to [0, max]. This is the
// helper UI layers use before submitting; the services below still perform
// the authoritative re-check and reject rather than clamp, since silently
// clamping at this boundary would mask caller bugs.
func ClampQuantity(requested, max int64) int64 {
	if requested < 0 {
		return 0
	}
	if max >= 0 && requested > max {
		return max
	}
	return requested
}

// MovementService validates and applies stock adjustments and transfers.
// It is the only caller of the ledger's apply path; every accepted movement
// lands as an immutable StockMovement audit record.
type MovementService struct {
	ledger    *LedgerService
	movements inventory.StockMovementRepository
}

// NewMovementService creates a new MovementService
func NewMovementService(ledger *LedgerService, movements inventory.StockMovementRepository) *MovementService {
	return &MovementService{
		ledger:    ledger,
		movements: movements,
	}
}

// Adjust applies an in-place adjustment to one balance. received_full and
// received_empty bring stock in (creating the balance on first receipt);
// damage_loss moves the decremented quantity into the damaged bucket instead
// of discarding it. Both legs of a damage write-off land in one atomic apply.
func (s *MovementService) Adjust(ctx context.Context, req AdjustStockRequest) (*BalanceResponse, error) {
	if req.WarehouseID == uuid.Nil || req.ProductID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Warehouse ID and product ID are required")
	}
	if !req.AdjustmentType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeValidationError,
			fmt.Sprintf("Invalid adjustment type %q", req.AdjustmentType))
	}
	if req.Reason == "" {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Adjustment reason is required")
	}
	if req.QtyFullChange == 0 && req.QtyEmptyChange == 0 {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Adjustment must change at least one quantity")
	}

	delta := inventory.BucketDelta{
		Full:  req.QtyFullChange,
		Empty: req.QtyEmptyChange,
	}
	if req.AdjustmentType == inventory.AdjustmentTypeDamageLoss {
		if req.QtyFullChange > 0 || req.QtyEmptyChange > 0 {
			return nil, shared.NewDomainError(shared.CodeValidationError, "Damage loss can only decrement stock")
		}
		delta.Damaged = -(req.QtyFullChange + req.QtyEmptyChange)
	}

	var movement *inventory.StockMovement
	balance, err := s.ledger.WithBalance(ctx, req.WarehouseID, req.ProductID, func(b *inventory.CylinderBalance) error {
		// re-check at apply time: reject before touching the balance
		if b.QtyFull+req.QtyFullChange < 0 || b.QtyEmpty+req.QtyEmptyChange < 0 {
			return shared.NewDomainError(shared.CodeValidationError,
				"Adjustment would drive stock negative")
		}
		if err := b.Apply(delta); err != nil {
			return err
		}
		m, err := inventory.NewStockMovement(
			b.ID, b.WarehouseID, b.ProductID,
			req.AdjustmentType.MovementType(),
			req.QtyFullChange, req.QtyEmptyChange, 0,
			req.Reason,
		)
		if err != nil {
			return err
		}
		if req.Reference != "" {
			m.WithReference(req.Reference)
		}
		movement = m
		b.AddDomainEvent(inventory.NewStockAdjustedEvent(b, req.AdjustmentType, req.QtyFullChange, req.QtyEmptyChange, req.Reason))
		return nil
	})
	if err != nil {
		return nil, err
	}

	// the audit record lands only once the balance change is persisted
	if err := s.movements.Append(ctx, movement); err != nil {
		return nil, fmt.Errorf("recording adjustment movement: %w", err)
	}

	resp := NewBalanceResponse(balance)
	return &resp, nil
}

// Transfer moves full and/or empty stock between two warehouses. Requested
// quantities are checked against the source's raw qty_full and qty_empty at
// apply time, inside the critical section covering both balances. Debit and
// credit land together or not at all, with paired transfer_out/transfer_in
// movements.
//
// The full-stock check is deliberately against qty_full rather than
// available: moving reserved-but-unfulfilled stock out of a warehouse is a
// policy call left to the caller.
func (s *MovementService) Transfer(ctx context.Context, req TransferStockRequest) (*TransferResponse, error) {
	if req.FromWarehouseID == uuid.Nil || req.ToWarehouseID == uuid.Nil || req.ProductID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Warehouse IDs and product ID are required")
	}
	if req.FromWarehouseID == req.ToWarehouseID {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Source and destination warehouse must differ")
	}
	if req.QtyFull < 0 || req.QtyEmpty < 0 {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Transfer quantities cannot be negative")
	}
	if req.QtyFull == 0 && req.QtyEmpty == 0 {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Transfer must move at least one cylinder")
	}

	var out, in *inventory.StockMovement
	from, to, err := s.ledger.WithBalancePair(ctx, req.FromWarehouseID, req.ToWarehouseID, req.ProductID,
		func(from, to *inventory.CylinderBalance) error {
			if req.QtyFull > from.QtyFull {
				return &inventory.InsufficientStockError{
					ProductID:   req.ProductID,
					WarehouseID: req.FromWarehouseID,
					Bucket:      "qty_full",
					Requested:   req.QtyFull,
					Available:   from.QtyFull,
				}
			}
			if req.QtyEmpty > from.QtyEmpty {
				return &inventory.InsufficientStockError{
					ProductID:   req.ProductID,
					WarehouseID: req.FromWarehouseID,
					Bucket:      "qty_empty",
					Requested:   req.QtyEmpty,
					Available:   from.QtyEmpty,
				}
			}

			if err := from.Apply(inventory.BucketDelta{Full: -req.QtyFull, Empty: -req.QtyEmpty}); err != nil {
				return err
			}
			if err := to.Apply(inventory.BucketDelta{Full: req.QtyFull, Empty: req.QtyEmpty}); err != nil {
				return err
			}

			var err error
			out, err = inventory.NewStockMovement(
				from.ID, from.WarehouseID, from.ProductID,
				inventory.MovementTypeTransferOut,
				-req.QtyFull, -req.QtyEmpty, 0,
				req.Notes,
			)
			if err != nil {
				return err
			}
			in, err = inventory.NewStockMovement(
				to.ID, to.WarehouseID, to.ProductID,
				inventory.MovementTypeTransferIn,
				req.QtyFull, req.QtyEmpty, 0,
				req.Notes,
			)
			if err != nil {
				return err
			}

			from.AddDomainEvent(inventory.NewStockTransferredEvent(from, to.WarehouseID, req.QtyFull, req.QtyEmpty))
			return nil
		})
	if err != nil {
		return nil, err
	}

	if err := s.movements.Append(ctx, out, in); err != nil {
		return nil, fmt.Errorf("recording transfer movements: %w", err)
	}

	return &TransferResponse{
		From: NewBalanceResponse(from),
		To:   NewBalanceResponse(to),
	}, nil
}

// Reserve holds full stock against an open order. The availability check and
// the reservation increment share one critical section, so a reservation
// validated here can never overshoot due to a concurrent mutation.
func (s *MovementService) Reserve(ctx context.Context, warehouseID, productID uuid.UUID, quantity int64, reference string) (*BalanceResponse, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Reservation quantity must be positive")
	}

	var movement *inventory.StockMovement
	balance, err := s.ledger.WithBalance(ctx, warehouseID, productID, func(b *inventory.CylinderBalance) error {
		if b.Available() < quantity {
			return &inventory.InsufficientStockError{
				ProductID:   productID,
				WarehouseID: warehouseID,
				Bucket:      "available",
				Requested:   quantity,
				Available:   b.Available(),
			}
		}
		if err := b.Apply(inventory.BucketDelta{Reserved: quantity}); err != nil {
			return err
		}
		m, err := inventory.NewStockMovement(
			b.ID, b.WarehouseID, b.ProductID,
			inventory.MovementTypeOrderReserve,
			0, 0, quantity,
			"",
		)
		if err != nil {
			return err
		}
		m.WithReference(reference)
		movement = m
		b.AddDomainEvent(inventory.NewStockReservedEvent(b, quantity, reference))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.movements.Append(ctx, movement); err != nil {
		return nil, fmt.Errorf("recording reservation movement: %w", err)
	}

	resp := NewBalanceResponse(balance)
	return &resp, nil
}

// ReleaseReservation hands a reservation back to available stock, used for
// order cancellation and for compensating a failed multi-line reservation.
func (s *MovementService) ReleaseReservation(ctx context.Context, warehouseID, productID uuid.UUID, quantity int64, reference string) (*BalanceResponse, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Release quantity must be positive")
	}

	var movement *inventory.StockMovement
	balance, err := s.ledger.WithBalance(ctx, warehouseID, productID, func(b *inventory.CylinderBalance) error {
		if err := b.Apply(inventory.BucketDelta{Reserved: -quantity}); err != nil {
			return err
		}
		m, err := inventory.NewStockMovement(
			b.ID, b.WarehouseID, b.ProductID,
			inventory.MovementTypeOrderRelease,
			0, 0, -quantity,
			"",
		)
		if err != nil {
			return err
		}
		m.WithReference(reference)
		movement = m
		b.AddDomainEvent(inventory.NewReservationReleasedEvent(b, quantity, reference))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.movements.Append(ctx, movement); err != nil {
		return nil, fmt.Errorf("recording release movement: %w", err)
	}

	resp := NewBalanceResponse(balance)
	return &resp, nil
}

// FulfillReservation ships reserved stock out. Full stock and the matching
// reservation both decrease; for exchange orders the empties taken back from
// the customer credit the empty bucket in the same apply.
func (s *MovementService) FulfillReservation(ctx context.Context, warehouseID, productID uuid.UUID, quantity, emptiesReturned int64, reference string) (*BalanceResponse, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Fulfillment quantity must be positive")
	}
	if emptiesReturned < 0 {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Returned empties cannot be negative")
	}

	var movement *inventory.StockMovement
	balance, err := s.ledger.WithBalance(ctx, warehouseID, productID, func(b *inventory.CylinderBalance) error {
		if b.QtyReserved < quantity {
			return shared.NewDomainError(shared.CodeInvariantViolation,
				fmt.Sprintf("Cannot fulfill %d units with only %d reserved", quantity, b.QtyReserved))
		}
		if err := b.Apply(inventory.BucketDelta{Full: -quantity, Reserved: -quantity, Empty: emptiesReturned}); err != nil {
			return err
		}
		m, err := inventory.NewStockMovement(
			b.ID, b.WarehouseID, b.ProductID,
			inventory.MovementTypeOrderFulfill,
			-quantity, emptiesReturned, -quantity,
			"",
		)
		if err != nil {
			return err
		}
		m.WithReference(reference)
		movement = m
		b.AddDomainEvent(inventory.NewOrderFulfilledEvent(b, quantity, emptiesReturned, reference))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.movements.Append(ctx, movement); err != nil {
		return nil, fmt.Errorf("recording fulfillment movement: %w", err)
	}

	resp := NewBalanceResponse(balance)
	return &resp, nil
}
