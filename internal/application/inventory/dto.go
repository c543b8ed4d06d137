package inventory

import (
	"github.com/gasflow/backend/internal/domain/inventory"
	"github.com/google/uuid"
)

// AdjustStockRequest is the input for an in-place stock adjustment
type AdjustStockRequest struct {
	WarehouseID    uuid.UUID                `json:"warehouse_id"`
	ProductID      uuid.UUID                `json:"product_id"`
	AdjustmentType inventory.AdjustmentType `json:"adjustment_type"`
	QtyFullChange  int64                    `json:"qty_full_change"`
	QtyEmptyChange int64                    `json:"qty_empty_change"`
	Reason         string                   `json:"reason"`
	Reference      string                   `json:"reference,omitempty"`
}

// TransferStockRequest is the input for a warehouse-to-warehouse move
type TransferStockRequest struct {
	FromWarehouseID uuid.UUID `json:"from_warehouse_id"`
	ToWarehouseID   uuid.UUID `json:"to_warehouse_id"`
	ProductID       uuid.UUID `json:"product_id"`
	QtyFull         int64     `json:"qty_full"`
	QtyEmpty        int64     `json:"qty_empty"`
	Notes           string    `json:"notes,omitempty"`
}

// BalanceResponse is a read-only snapshot of a cylinder balance
type BalanceResponse struct {
	BalanceID      uuid.UUID `json:"balance_id"`
	WarehouseID    uuid.UUID `json:"warehouse_id"`
	ProductID      uuid.UUID `json:"product_id"`
	QtyFull        int64     `json:"qty_full"`
	QtyEmpty       int64     `json:"qty_empty"`
	QtyReserved    int64     `json:"qty_reserved"`
	QtyQuarantine  int64     `json:"qty_quarantine"`
	QtyDamaged     int64     `json:"qty_damaged"`
	QtyInTransit   int64     `json:"qty_in_transit"`
	QtyMaintenance int64     `json:"qty_maintenance"`
	OnHand         int64     `json:"on_hand"`
	Available      int64     `json:"available"`
}

// NewBalanceResponse builds a snapshot from a balance aggregate
func NewBalanceResponse(b *inventory.CylinderBalance) BalanceResponse {
	return BalanceResponse{
		BalanceID:      b.ID,
		WarehouseID:    b.WarehouseID,
		ProductID:      b.ProductID,
		QtyFull:        b.QtyFull,
		QtyEmpty:       b.QtyEmpty,
		QtyReserved:    b.QtyReserved,
		QtyQuarantine:  b.QtyQuarantine,
		QtyDamaged:     b.QtyDamaged,
		QtyInTransit:   b.QtyInTransit,
		QtyMaintenance: b.QtyMaintenance,
		OnHand:         b.OnHand(),
		Available:      b.Available(),
	}
}

// TransferResponse reports both balances after a successful transfer
type TransferResponse struct {
	From BalanceResponse `json:"from"`
	To   BalanceResponse `json:"to"`
}
