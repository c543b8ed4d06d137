package orders

import (
	"fmt"
	"time"

	"github.com/gasflow/backend/internal/domain/catalog"
	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FullFillPercentage is the default fill for a standard cylinder line
const FullFillPercentage = 100

// OrderLine is one composed, fully priced line of an order. Lines are
// immutable once the order is finalized.
//
// The gas charge scales with the fill percentage; the deposit never does,
// since it secures the physical cylinder rather than its contents.
type OrderLine struct {
	ID              uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	ProductCode     string
	SKUVariant      catalog.SKUVariant
	ProductType     catalog.ProductType
	Capacity        decimal.Decimal
	Quantity        int64
	FillPercentage  int
	IsPartialFill   bool
	FillNotes       string
	GasPriceExclTax valueobject.Money
	TaxRate         decimal.Decimal
	TaxAmount       valueobject.Money
	GasPriceInclTax valueobject.Money
	DepositAmount   valueobject.Money
	CreatedAt       time.Time
}

// NewOrderLine builds a priced line from product master data, the requested
// quantity/fill and the resolved base gas price, tax rate and per-unit
// deposit. The base price is the 100%-fill gas charge excluding tax.
func NewOrderLine(
	product *catalog.Product,
	quantity int64,
	fillPercentage int,
	fillNotes string,
	basePriceExclTax valueobject.Money,
	taxRate decimal.Decimal,
	depositAmount valueobject.Money,
) (*OrderLine, error) {
	if product == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidProduct, "Product cannot be nil")
	}
	if !product.IsSellable() {
		return nil, shared.NewDomainError(shared.CodeInvalidProduct,
			fmt.Sprintf("Product %s is not sellable", product.ID))
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Quantity must be positive")
	}
	if fillPercentage == 0 {
		fillPercentage = FullFillPercentage
	}
	if fillPercentage < 1 || fillPercentage > FullFillPercentage {
		return nil, shared.NewDomainError(shared.CodeValidationError,
			fmt.Sprintf("Fill percentage %d is outside [1,100]", fillPercentage))
	}
	if fillPercentage < FullFillPercentage && !product.IsRefillable() {
		return nil, shared.NewDomainError(shared.CodeValidationError,
			fmt.Sprintf("Product %s does not accept a partial fill", product.ID))
	}
	if basePriceExclTax.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Gas price cannot be negative")
	}
	if taxRate.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Tax rate cannot be negative")
	}
	if depositAmount.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Deposit amount cannot be negative")
	}

	// effective gas price = base price * fill/100, tax recomputed from it
	effective := basePriceExclTax.CalculatePercentage(decimal.NewFromInt(int64(fillPercentage)))
	tax := effective.Multiply(taxRate)
	inclTax := effective.MustAdd(tax)

	return &OrderLine{
		ID:              uuid.New(),
		ProductID:       product.ID,
		ProductName:     product.Name,
		ProductCode:     product.Code,
		SKUVariant:      product.SKUVariant,
		ProductType:     product.Type,
		Capacity:        product.Capacity,
		Quantity:        quantity,
		FillPercentage:  fillPercentage,
		IsPartialFill:   fillPercentage < FullFillPercentage,
		FillNotes:       fillNotes,
		GasPriceExclTax: effective,
		TaxRate:         taxRate,
		TaxAmount:       tax,
		GasPriceInclTax: inclTax,
		DepositAmount:   depositAmount,
		CreatedAt:       time.Now(),
	}, nil
}

// IsExchangeCylinder returns true for cylinder lines sold under exchange
// semantics, the lines that give rise to an empty-return credit.
func (l *OrderLine) IsExchangeCylinder() bool {
	return l.ProductType == catalog.ProductTypeCylinder && l.SKUVariant == catalog.SKUVariantFullExchange
}

// UnitTotal returns the per-unit invoice amount: gas including tax plus deposit
func (l *OrderLine) UnitTotal() valueobject.Money {
	return l.GasPriceInclTax.MustAdd(l.DepositAmount)
}

// Subtotal returns the line invoice amount: unit total times quantity
func (l *OrderLine) Subtotal() valueobject.Money {
	return l.UnitTotal().MultiplyByInt(l.Quantity)
}

// GasSubtotal returns the gas charge excluding tax, times quantity
func (l *OrderLine) GasSubtotal() valueobject.Money {
	return l.GasPriceExclTax.MultiplyByInt(l.Quantity)
}

// TaxSubtotal returns the tax amount times quantity
func (l *OrderLine) TaxSubtotal() valueobject.Money {
	return l.TaxAmount.MultiplyByInt(l.Quantity)
}

// DepositSubtotal returns the deposit amount times quantity
func (l *OrderLine) DepositSubtotal() valueobject.Money {
	return l.DepositAmount.MultiplyByInt(l.Quantity)
}
