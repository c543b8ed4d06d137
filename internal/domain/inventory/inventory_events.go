package inventory

import (
	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Event types for the inventory bounded context
const (
	EventTypeBalanceCreated      = "inventory.balance_created"
	EventTypeStockAdjusted       = "inventory.stock_adjusted"
	EventTypeStockTransferred    = "inventory.stock_transferred"
	EventTypeStockReserved       = "inventory.stock_reserved"
	EventTypeReservationReleased = "inventory.reservation_released"
	EventTypeOrderFulfilled      = "inventory.order_fulfilled"
)

const aggregateTypeCylinderBalance = "CylinderBalance"

// BalanceCreatedEvent is emitted when a balance row first comes into existence
type BalanceCreatedEvent struct {
	shared.BaseDomainEvent
	WarehouseID uuid.UUID `json:"warehouse_id"`
	ProductID   uuid.UUID `json:"product_id"`
}

// NewBalanceCreatedEvent creates a BalanceCreatedEvent
func NewBalanceCreatedEvent(b *CylinderBalance) *BalanceCreatedEvent {
	return &BalanceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBalanceCreated, aggregateTypeCylinderBalance, b.ID),
		WarehouseID:     b.WarehouseID,
		ProductID:       b.ProductID,
	}
}

// StockAdjustedEvent is emitted after a manual adjustment lands on a balance
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	WarehouseID    uuid.UUID      `json:"warehouse_id"`
	ProductID      uuid.UUID      `json:"product_id"`
	AdjustmentType AdjustmentType `json:"adjustment_type"`
	QtyFullChange  int64          `json:"qty_full_change"`
	QtyEmptyChange int64          `json:"qty_empty_change"`
	Reason         string         `json:"reason"`
}

// NewStockAdjustedEvent creates a StockAdjustedEvent
func NewStockAdjustedEvent(b *CylinderBalance, adjustmentType AdjustmentType, qtyFullChange, qtyEmptyChange int64, reason string) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, aggregateTypeCylinderBalance, b.ID),
		WarehouseID:     b.WarehouseID,
		ProductID:       b.ProductID,
		AdjustmentType:  adjustmentType,
		QtyFullChange:   qtyFullChange,
		QtyEmptyChange:  qtyEmptyChange,
		Reason:          reason,
	}
}

// StockTransferredEvent is emitted once per successful transfer, against the
// source balance
type StockTransferredEvent struct {
	shared.BaseDomainEvent
	FromWarehouseID uuid.UUID `json:"from_warehouse_id"`
	ToWarehouseID   uuid.UUID `json:"to_warehouse_id"`
	ProductID       uuid.UUID `json:"product_id"`
	QtyFull         int64     `json:"qty_full"`
	QtyEmpty        int64     `json:"qty_empty"`
}

// NewStockTransferredEvent creates a StockTransferredEvent
func NewStockTransferredEvent(from *CylinderBalance, toWarehouseID uuid.UUID, qtyFull, qtyEmpty int64) *StockTransferredEvent {
	return &StockTransferredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockTransferred, aggregateTypeCylinderBalance, from.ID),
		FromWarehouseID: from.WarehouseID,
		ToWarehouseID:   toWarehouseID,
		ProductID:       from.ProductID,
		QtyFull:         qtyFull,
		QtyEmpty:        qtyEmpty,
	}
}

// StockReservedEvent is emitted when full stock is held against an order
type StockReservedEvent struct {
	shared.BaseDomainEvent
	WarehouseID uuid.UUID `json:"warehouse_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Quantity    int64     `json:"quantity"`
	Reference   string    `json:"reference"`
}

// NewStockReservedEvent creates a StockReservedEvent
func NewStockReservedEvent(b *CylinderBalance, quantity int64, reference string) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReserved, aggregateTypeCylinderBalance, b.ID),
		WarehouseID:     b.WarehouseID,
		ProductID:       b.ProductID,
		Quantity:        quantity,
		Reference:       reference,
	}
}

// ReservationReleasedEvent is emitted when a reservation is handed back
type ReservationReleasedEvent struct {
	shared.BaseDomainEvent
	WarehouseID uuid.UUID `json:"warehouse_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Quantity    int64     `json:"quantity"`
	Reference   string    `json:"reference"`
}

// NewReservationReleasedEvent creates a ReservationReleasedEvent
func NewReservationReleasedEvent(b *CylinderBalance, quantity int64, reference string) *ReservationReleasedEvent {
	return &ReservationReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReservationReleased, aggregateTypeCylinderBalance, b.ID),
		WarehouseID:     b.WarehouseID,
		ProductID:       b.ProductID,
		Quantity:        quantity,
		Reference:       reference,
	}
}

// OrderFulfilledEvent is emitted when reserved stock ships out
type OrderFulfilledEvent struct {
	shared.BaseDomainEvent
	WarehouseID     uuid.UUID `json:"warehouse_id"`
	ProductID       uuid.UUID `json:"product_id"`
	Quantity        int64     `json:"quantity"`
	EmptiesReturned int64     `json:"empties_returned"`
	Reference       string    `json:"reference"`
}

// NewOrderFulfilledEvent creates an OrderFulfilledEvent
func NewOrderFulfilledEvent(b *CylinderBalance, quantity, emptiesReturned int64, reference string) *OrderFulfilledEvent {
	return &OrderFulfilledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderFulfilled, aggregateTypeCylinderBalance, b.ID),
		WarehouseID:     b.WarehouseID,
		ProductID:       b.ProductID,
		Quantity:        quantity,
		EmptiesReturned: emptiesReturned,
		Reference:       reference,
	}
}
