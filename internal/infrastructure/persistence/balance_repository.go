package persistence

import (
	"context"
	"errors"

	"github.com/gasflow/backend/internal/domain/inventory"
	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCylinderBalanceRepository implements CylinderBalanceRepository using GORM
type GormCylinderBalanceRepository struct {
	db *gorm.DB
}

// NewGormCylinderBalanceRepository creates a new GormCylinderBalanceRepository
func NewGormCylinderBalanceRepository(db *gorm.DB) *GormCylinderBalanceRepository {
	return &GormCylinderBalanceRepository{db: db}
}

// FindByWarehouseAndProduct finds a balance by its composite key
func (r *GormCylinderBalanceRepository) FindByWarehouseAndProduct(ctx context.Context, warehouseID, productID uuid.UUID) (*inventory.CylinderBalance, error) {
	var balance inventory.CylinderBalance
	if err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND product_id = ?", warehouseID, productID).
		First(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

// FindByWarehouse finds all balances held at a warehouse
func (r *GormCylinderBalanceRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]inventory.CylinderBalance, error) {
	var balances []inventory.CylinderBalance
	if err := r.db.WithContext(ctx).
		Where("warehouse_id = ?", warehouseID).
		Order("product_id").
		Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

// FindByProduct finds all balances for a product across warehouses
func (r *GormCylinderBalanceRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.CylinderBalance, error) {
	var balances []inventory.CylinderBalance
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("warehouse_id").
		Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

// GetOrCreate returns the existing balance or creates a zeroed one
func (r *GormCylinderBalanceRepository) GetOrCreate(ctx context.Context, warehouseID, productID uuid.UUID) (*inventory.CylinderBalance, error) {
	balance, err := r.FindByWarehouseAndProduct(ctx, warehouseID, productID)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	fresh, err := inventory.NewCylinderBalance(warehouseID, productID)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(fresh).Error; err != nil {
		// a concurrent creator may have won the unique index race
		if existing, findErr := r.FindByWarehouseAndProduct(ctx, warehouseID, productID); findErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return fresh, nil
}

// Save creates or updates a balance
func (r *GormCylinderBalanceRepository) Save(ctx context.Context, balance *inventory.CylinderBalance) error {
	return r.db.WithContext(ctx).Save(balance).Error
}

// SaveAll persists several balances in one transaction
func (r *GormCylinderBalanceRepository) SaveAll(ctx context.Context, balances ...*inventory.CylinderBalance) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, balance := range balances {
			if err := tx.Save(balance).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
