package inventory

import (
	"fmt"
	"time"

	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MovementType represents the kind of stock movement recorded in the audit trail
type MovementType string

const (
	// MovementTypeAdjustment is a manual in-place correction (count, misc.)
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
	// MovementTypeTransferIn is stock arriving from another warehouse
	MovementTypeTransferIn MovementType = "TRANSFER_IN"
	// MovementTypeTransferOut is stock leaving for another warehouse
	MovementTypeTransferOut MovementType = "TRANSFER_OUT"
	// MovementTypeOrderReserve is full stock held against an open order
	MovementTypeOrderReserve MovementType = "ORDER_RESERVE"
	// MovementTypeOrderRelease is a reservation handed back (cancel/rollback)
	MovementTypeOrderRelease MovementType = "ORDER_RELEASE"
	// MovementTypeOrderFulfill is reserved stock shipped out on an order
	MovementTypeOrderFulfill MovementType = "ORDER_FULFILL"
	// MovementTypeReceipt is stock received into the warehouse
	MovementTypeReceipt MovementType = "RECEIPT"
	// MovementTypeDamage is stock written over into the damaged bucket
	MovementTypeDamage MovementType = "DAMAGE"
	// MovementTypeMaintenance is stock moved under maintenance
	MovementTypeMaintenance MovementType = "MAINTENANCE"
	// MovementTypeDisposal is stock leaving circulation permanently
	MovementTypeDisposal MovementType = "DISPOSAL"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeAdjustment,
		MovementTypeTransferIn,
		MovementTypeTransferOut,
		MovementTypeOrderReserve,
		MovementTypeOrderRelease,
		MovementTypeOrderFulfill,
		MovementTypeReceipt,
		MovementTypeDamage,
		MovementTypeMaintenance,
		MovementTypeDisposal:
		return true
	}
	return false
}

// AdjustmentType classifies manual adjustments for validation purposes
type AdjustmentType string

const (
	AdjustmentTypeReceivedFull  AdjustmentType = "RECEIVED_FULL"
	AdjustmentTypeReceivedEmpty AdjustmentType = "RECEIVED_EMPTY"
	AdjustmentTypePhysicalCount AdjustmentType = "PHYSICAL_COUNT"
	AdjustmentTypeDamageLoss    AdjustmentType = "DAMAGE_LOSS"
	AdjustmentTypeOther         AdjustmentType = "OTHER"
)

// String returns the string representation of AdjustmentType
func (t AdjustmentType) String() string {
	return string(t)
}

// IsValid returns true if the adjustment type is valid
func (t AdjustmentType) IsValid() bool {
	switch t {
	case AdjustmentTypeReceivedFull,
		AdjustmentTypeReceivedEmpty,
		AdjustmentTypePhysicalCount,
		AdjustmentTypeDamageLoss,
		AdjustmentTypeOther:
		return true
	}
	return false
}

// MovementType returns the audit movement type recorded for this adjustment
func (t AdjustmentType) MovementType() MovementType {
	switch t {
	case AdjustmentTypeReceivedFull, AdjustmentTypeReceivedEmpty:
		return MovementTypeReceipt
	case AdjustmentTypeDamageLoss:
		return MovementTypeDamage
	default:
		return MovementTypeAdjustment
	}
}

// StockMovement is an immutable audit record of one applied adjustment or one
// leg of a transfer or order operation. Records are append-only; corrections
// are made with new movements, never by editing old ones.
type StockMovement struct {
	shared.BaseEntity
	BalanceID         uuid.UUID    `gorm:"type:uuid;not null;index:idx_movement_balance"`
	WarehouseID       uuid.UUID    `gorm:"type:uuid;not null;index:idx_movement_warehouse"`
	ProductID         uuid.UUID    `gorm:"type:uuid;not null;index:idx_movement_product"`
	MovementType      MovementType `gorm:"type:varchar(30);not null;index:idx_movement_type"`
	QtyFullChange     int64        `gorm:"not null;default:0"`
	QtyEmptyChange    int64        `gorm:"not null;default:0"`
	QtyReservedChange int64        `gorm:"not null;default:0"`
	Reason            string       `gorm:"type:varchar(255)"`
	Reference         string       `gorm:"type:varchar(100);index:idx_movement_reference"`
	OccurredAt        time.Time    `gorm:"type:timestamptz;not null;index"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a movement record against a balance. The quantity
// changes are signed and must not all be zero.
func NewStockMovement(
	balanceID, warehouseID, productID uuid.UUID,
	movementType MovementType,
	qtyFullChange, qtyEmptyChange, qtyReservedChange int64,
	reason string,
) (*StockMovement, error) {
	if balanceID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Balance ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Warehouse ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Product ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeValidationError,
			fmt.Sprintf("Invalid movement type %q", movementType))
	}
	if qtyFullChange == 0 && qtyEmptyChange == 0 && qtyReservedChange == 0 {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Movement must change at least one quantity")
	}

	return &StockMovement{
		BaseEntity:        shared.NewBaseEntity(),
		BalanceID:         balanceID,
		WarehouseID:       warehouseID,
		ProductID:         productID,
		MovementType:      movementType,
		QtyFullChange:     qtyFullChange,
		QtyEmptyChange:    qtyEmptyChange,
		QtyReservedChange: qtyReservedChange,
		Reason:            reason,
		OccurredAt:        time.Now(),
	}, nil
}

// WithReference sets the source document reference for the movement
func (m *StockMovement) WithReference(reference string) *StockMovement {
	m.Reference = reference
	return m
}

// WithOccurredAt overrides the movement timestamp
func (m *StockMovement) WithOccurredAt(at time.Time) *StockMovement {
	m.OccurredAt = at
	return m
}

// InsufficientStockError reports a requested quantity exceeding the current
// bucket value at the source balance. It carries the shortfall for display.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Bucket      string
	Requested   int64
	Available   int64
}

// Shortfall returns how many units the request exceeds the stock by
func (e *InsufficientStockError) Shortfall() int64 {
	return e.Requested - e.Available
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s at warehouse %s: requested %d %s, available %d (short %d)",
		e.ProductID, e.WarehouseID, e.Requested, e.Bucket, e.Available, e.Shortfall())
}

// Code returns the shared error code so callers can branch uniformly
func (e *InsufficientStockError) Code() string {
	return shared.CodeInsufficientStock
}
