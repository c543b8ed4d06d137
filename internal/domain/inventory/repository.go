package inventory

import (
	"context"

	"github.com/google/uuid"
)

// CylinderBalanceRepository defines persistence for cylinder balances
type CylinderBalanceRepository interface {
	// FindByWarehouseAndProduct finds a balance by its composite key.
	// Returns shared.ErrNotFound when the pair has never received stock.
	FindByWarehouseAndProduct(ctx context.Context, warehouseID, productID uuid.UUID) (*CylinderBalance, error)

	// FindByWarehouse finds all balances held at a warehouse
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]CylinderBalance, error)

	// FindByProduct finds all balances for a product across warehouses
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]CylinderBalance, error)

	// GetOrCreate returns the existing balance or creates a zeroed one
	GetOrCreate(ctx context.Context, warehouseID, productID uuid.UUID) (*CylinderBalance, error)

	// Save creates or updates a balance
	Save(ctx context.Context, balance *CylinderBalance) error

	// SaveAll persists several balances atomically: either every balance is
	// stored or none are. Used by transfers, which touch two balances.
	SaveAll(ctx context.Context, balances ...*CylinderBalance) error
}

// StockMovementRepository defines persistence for the append-only audit trail
type StockMovementRepository interface {
	// Append stores a movement record. Movements are never updated or deleted.
	Append(ctx context.Context, movements ...*StockMovement) error

	// FindByBalance lists movements recorded against one balance, newest first
	FindByBalance(ctx context.Context, balanceID uuid.UUID) ([]StockMovement, error)

	// FindByReference lists movements carrying a source document reference
	FindByReference(ctx context.Context, reference string) ([]StockMovement, error)
}
