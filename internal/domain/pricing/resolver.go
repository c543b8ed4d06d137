// Package pricing defines the external pricing collaborators the order
// composition core consumes. Price lists and deposit rate tables are owned
// elsewhere; this core only looks prices and deposit rates up.
package pricing

import (
	"context"

	"github.com/gasflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceQuote is a resolved gas price for one product, optionally customer
// specific. TaxRate is a fraction (0.10 for 10%), not a percentage.
type PriceQuote struct {
	ProductID    uuid.UUID
	FinalPrice   valueobject.Money
	PriceExclTax valueobject.Money
	TaxAmount    valueobject.Money
	PriceInclTax valueobject.Money
	TaxRate      decimal.Decimal
}

// PriceResolver resolves the gas charge for a product. When customerID is nil
// the list price applies. Implementations return shared.ErrNotFound when no
// price is configured.
type PriceResolver interface {
	GetPrice(ctx context.Context, productID uuid.UUID, customerID *uuid.UUID) (*PriceQuote, error)
}

// DepositRate is the refundable charge securing a physical cylinder of a
// given capacity tier.
type DepositRate struct {
	Capacity decimal.Decimal
	Amount   valueobject.Money
}

// DepositRateResolver resolves the deposit for a cylinder capacity. Lookup is
// by nearest-capacity match: an exact capacity tier wins, otherwise the
// numerically closest configured tier. Implementations return
// shared.ErrNotFound when no tier is configured at all.
type DepositRateResolver interface {
	GetRate(ctx context.Context, capacity decimal.Decimal) (*DepositRate, error)
}
