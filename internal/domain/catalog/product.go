package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SKUVariant distinguishes how a cylinder SKU is sold. FULL-XCH units are
// handed over against an empty return; FULL-OUT units are sold outright;
// EMPTY units exist only as returnable stock and are never sellable.
type SKUVariant string

const (
	SKUVariantFullOutright SKUVariant = "FULL-OUT"
	SKUVariantFullExchange SKUVariant = "FULL-XCH"
	SKUVariantEmpty        SKUVariant = "EMPTY"
	SKUVariantOther        SKUVariant = "OTHER"
)

// String returns the string representation of SKUVariant
func (v SKUVariant) String() string {
	return string(v)
}

// IsValid returns true if the SKU variant is a recognized value
func (v SKUVariant) IsValid() bool {
	switch v {
	case SKUVariantFullOutright, SKUVariantFullExchange, SKUVariantEmpty, SKUVariantOther:
		return true
	}
	return false
}

// ProductType classifies products for order composition rules
type ProductType string

const (
	ProductTypeCylinder  ProductType = "CYLINDER"
	ProductTypeAccessory ProductType = "ACCESSORY"
)

// String returns the string representation of ProductType
func (t ProductType) String() string {
	return string(t)
}

// ProductStatus represents the lifecycle status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
)

// Product is read-only master data consumed by the inventory and order cores.
// Capacity is the cylinder volume/weight used for deposit tier lookup.
type Product struct {
	ID         uuid.UUID
	Name       string
	Code       string
	SKUVariant SKUVariant
	Type       ProductType
	Capacity   decimal.Decimal
	Status     ProductStatus
}

// IsCylinder returns true for cylinder-type products
func (p *Product) IsCylinder() bool {
	return p.Type == ProductTypeCylinder
}

// IsRefillable returns true if the product accepts a partial fill.
// Only cylinders carry gas, so only cylinders can be partially filled.
func (p *Product) IsRefillable() bool {
	return p.IsCylinder()
}

// IsSellable returns true if the product may appear on an order line.
// EMPTY-variant cylinders are returnable stock, never sellable.
func (p *Product) IsSellable() bool {
	if p.Status != ProductStatusActive {
		return false
	}
	if p.IsCylinder() && p.SKUVariant == SKUVariantEmpty {
		return false
	}
	return true
}

// ProductCatalog is the external master-data collaborator. Implementations
// return shared.ErrNotFound for unknown products.
type ProductCatalog interface {
	Get(ctx context.Context, productID uuid.UUID) (*Product, error)
}
