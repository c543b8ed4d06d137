package inventory

import (
	"fmt"
	"time"

	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CylinderBalance tracks cylinder stock for one (product, warehouse) pair
// across the operational buckets. It is the aggregate root for all quantity
// state; every other entity references it but never duplicates its counts.
//
// QtyReserved is a subset of QtyFull held against open orders, so
// QtyReserved <= QtyFull holds at all times. All buckets are non-negative.
type CylinderBalance struct {
	shared.BaseAggregateRoot
	WarehouseID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_balance_warehouse_product,priority:1"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_balance_warehouse_product,priority:2"`
	QtyFull        int64     `gorm:"not null;default:0"`
	QtyEmpty       int64     `gorm:"not null;default:0"`
	QtyReserved    int64     `gorm:"not null;default:0"`
	QtyQuarantine  int64     `gorm:"not null;default:0"`
	QtyDamaged     int64     `gorm:"not null;default:0"`
	QtyInTransit   int64     `gorm:"not null;default:0"`
	QtyMaintenance int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CylinderBalance) TableName() string {
	return "cylinder_balances"
}

// NewCylinderBalance creates a zeroed balance for a warehouse-product pair.
// Balances come into existence on first receipt of stock.
func NewCylinderBalance(warehouseID, productID uuid.UUID) (*CylinderBalance, error) {
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Warehouse ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Product ID cannot be empty")
	}

	return &CylinderBalance{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		WarehouseID:       warehouseID,
		ProductID:         productID,
	}, nil
}

// OnHand returns the primary circulating stock: full plus empty cylinders.
func (b *CylinderBalance) OnHand() int64 {
	return b.QtyFull + b.QtyEmpty
}

// Available returns the sellable quantity: full stock not held by reservations.
func (b *CylinderBalance) Available() int64 {
	if avail := b.QtyFull - b.QtyReserved; avail > 0 {
		return avail
	}
	return 0
}

// IsZero returns true when every bucket is zero. A balance may only be
// removed while zero.
func (b *CylinderBalance) IsZero() bool {
	return b.QtyFull == 0 && b.QtyEmpty == 0 && b.QtyReserved == 0 &&
		b.QtyQuarantine == 0 && b.QtyDamaged == 0 && b.QtyInTransit == 0 &&
		b.QtyMaintenance == 0
}

// BucketDelta is a signed change to one or more buckets of a single balance,
// applied atomically: either every bucket change lands or none do.
type BucketDelta struct {
	Full        int64
	Empty       int64
	Reserved    int64
	Quarantine  int64
	Damaged     int64
	InTransit   int64
	Maintenance int64
}

// IsZero returns true when the delta changes nothing
func (d BucketDelta) IsZero() bool {
	return d == BucketDelta{}
}

// Negate returns the compensating delta that undoes this one
func (d BucketDelta) Negate() BucketDelta {
	return BucketDelta{
		Full:        -d.Full,
		Empty:       -d.Empty,
		Reserved:    -d.Reserved,
		Quarantine:  -d.Quarantine,
		Damaged:     -d.Damaged,
		InTransit:   -d.InTransit,
		Maintenance: -d.Maintenance,
	}
}

// Apply adds the delta to the balance. It fails with an INVARIANT_VIOLATION
// error and leaves the balance untouched if any resulting bucket would go
// negative or the reservation bound would break. All mutation of a balance
// goes through here; callers are the movement validator and, through it, the
// order composition engine.
func (b *CylinderBalance) Apply(delta BucketDelta) error {
	if delta.IsZero() {
		return shared.NewDomainError(shared.CodeValidationError, "Bucket delta cannot be empty")
	}

	next := struct {
		full, empty, reserved, quarantine, damaged, inTransit, maintenance int64
	}{
		full:        b.QtyFull + delta.Full,
		empty:       b.QtyEmpty + delta.Empty,
		reserved:    b.QtyReserved + delta.Reserved,
		quarantine:  b.QtyQuarantine + delta.Quarantine,
		damaged:     b.QtyDamaged + delta.Damaged,
		inTransit:   b.QtyInTransit + delta.InTransit,
		maintenance: b.QtyMaintenance + delta.Maintenance,
	}

	for _, check := range []struct {
		bucket string
		value  int64
	}{
		{"qty_full", next.full},
		{"qty_empty", next.empty},
		{"qty_reserved", next.reserved},
		{"qty_quarantine", next.quarantine},
		{"qty_damaged", next.damaged},
		{"qty_in_transit", next.inTransit},
		{"qty_maintenance", next.maintenance},
	} {
		if check.value < 0 {
			return shared.NewDomainError(shared.CodeInvariantViolation,
				fmt.Sprintf("Bucket %s would go negative (%d)", check.bucket, check.value))
		}
	}
	if next.reserved > next.full {
		return shared.NewDomainError(shared.CodeInvariantViolation,
			fmt.Sprintf("Reserved quantity %d would exceed full quantity %d", next.reserved, next.full))
	}

	b.QtyFull = next.full
	b.QtyEmpty = next.empty
	b.QtyReserved = next.reserved
	b.QtyQuarantine = next.quarantine
	b.QtyDamaged = next.damaged
	b.QtyInTransit = next.inTransit
	b.QtyMaintenance = next.maintenance
	b.Touch(time.Now())
	b.IncrementVersion()

	return nil
}

// CanFulfill returns true if the available quantity covers the requested one
func (b *CylinderBalance) CanFulfill(quantity int64) bool {
	return quantity >= 0 && b.Available() >= quantity
}
