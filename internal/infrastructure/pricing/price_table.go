package pricing

import (
	"context"
	"sync"

	"github.com/gasflow/backend/internal/domain/pricing"
	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceEntry is one configured gas price: the 100%-fill charge excluding tax
// and the tax rate as a fraction.
type PriceEntry struct {
	PriceExclTax valueobject.Money
	TaxRate      decimal.Decimal
}

// TablePriceResolver resolves gas prices from an in-memory table with
// optional per-customer overrides. The zero value is empty; populate with
// SetListPrice and SetCustomerPrice.
type TablePriceResolver struct {
	mu       sync.RWMutex
	list     map[uuid.UUID]PriceEntry
	customer map[uuid.UUID]map[uuid.UUID]PriceEntry
}

// NewTablePriceResolver creates an empty TablePriceResolver
func NewTablePriceResolver() *TablePriceResolver {
	return &TablePriceResolver{
		list:     make(map[uuid.UUID]PriceEntry),
		customer: make(map[uuid.UUID]map[uuid.UUID]PriceEntry),
	}
}

// SetListPrice sets the list price for a product
func (r *TablePriceResolver) SetListPrice(productID uuid.UUID, entry PriceEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list[productID] = entry
}

// SetCustomerPrice sets a negotiated price for one customer and product
func (r *TablePriceResolver) SetCustomerPrice(customerID, productID uuid.UUID, entry PriceEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prices, ok := r.customer[customerID]
	if !ok {
		prices = make(map[uuid.UUID]PriceEntry)
		r.customer[customerID] = prices
	}
	prices[productID] = entry
}

// GetPrice resolves the gas charge for a product. A customer-specific price
// wins over the list price; shared.ErrNotFound when neither is configured.
func (r *TablePriceResolver) GetPrice(ctx context.Context, productID uuid.UUID, customerID *uuid.UUID) (*pricing.PriceQuote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entry PriceEntry
	var found bool
	if customerID != nil {
		if prices, ok := r.customer[*customerID]; ok {
			entry, found = prices[productID]
		}
	}
	if !found {
		entry, found = r.list[productID]
	}
	if !found {
		return nil, shared.ErrNotFound
	}

	tax := entry.PriceExclTax.Multiply(entry.TaxRate)
	inclTax := entry.PriceExclTax.MustAdd(tax)
	return &pricing.PriceQuote{
		ProductID:    productID,
		FinalPrice:   entry.PriceExclTax,
		PriceExclTax: entry.PriceExclTax,
		TaxAmount:    tax,
		PriceInclTax: inclTax,
		TaxRate:      entry.TaxRate,
	}, nil
}
