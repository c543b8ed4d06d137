package orders

import (
	"testing"

	"github.com/gasflow/backend/internal/domain/catalog"
	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taxRate10 = decimal.NewFromFloat(0.10)

func exchangeCylinder() *catalog.Product {
	return &catalog.Product{
		ID:         uuid.New(),
		Name:       "LPG 20kg Exchange",
		Code:       "LPG-20-XCH",
		SKUVariant: catalog.SKUVariantFullExchange,
		Type:       catalog.ProductTypeCylinder,
		Capacity:   decimal.NewFromInt(20),
		Status:     catalog.ProductStatusActive,
	}
}

func TestNewOrderLine(t *testing.T) {
	t.Run("full fill prices at the base rate", func(t *testing.T) {
		line, err := NewOrderLine(exchangeCylinder(), 2, 100, "",
			valueobject.NewMoneyJPYFromInt(1000), taxRate10, valueobject.NewMoneyJPYFromInt(2500))
		require.NoError(t, err)

		assert.True(t, line.GasPriceExclTax.Equals(valueobject.NewMoneyJPYFromInt(1000)))
		assert.True(t, line.TaxAmount.Equals(valueobject.NewMoneyJPYFromInt(100)))
		assert.True(t, line.GasPriceInclTax.Equals(valueobject.NewMoneyJPYFromInt(1100)))
		assert.False(t, line.IsPartialFill)
	})

	t.Run("zero fill percentage defaults to full", func(t *testing.T) {
		line, err := NewOrderLine(exchangeCylinder(), 1, 0, "",
			valueobject.NewMoneyJPYFromInt(1000), taxRate10, valueobject.ZeroJPY())
		require.NoError(t, err)
		assert.Equal(t, FullFillPercentage, line.FillPercentage)
		assert.False(t, line.IsPartialFill)
	})

	t.Run("partial fill scales the gas charge only", func(t *testing.T) {
		line, err := NewOrderLine(exchangeCylinder(), 1, 50, "customer request",
			valueobject.NewMoneyJPYFromInt(1000), taxRate10, valueobject.NewMoneyJPYFromInt(2500))
		require.NoError(t, err)

		assert.True(t, line.IsPartialFill)
		assert.True(t, line.GasPriceExclTax.Equals(valueobject.NewMoneyJPYFromInt(500)))
		assert.True(t, line.TaxAmount.Equals(valueobject.NewMoneyJPYFromInt(50)))
		assert.True(t, line.GasPriceInclTax.Equals(valueobject.NewMoneyJPYFromInt(550)))
		// the deposit secures the cylinder, not its contents
		assert.True(t, line.DepositAmount.Equals(valueobject.NewMoneyJPYFromInt(2500)))
		assert.Equal(t, "customer request", line.FillNotes)
	})

	t.Run("rejects fill percentage out of range", func(t *testing.T) {
		_, err := NewOrderLine(exchangeCylinder(), 1, 101, "",
			valueobject.NewMoneyJPYFromInt(1000), taxRate10, valueobject.ZeroJPY())
		assert.True(t, shared.HasCode(err, shared.CodeValidationError))

		_, err = NewOrderLine(exchangeCylinder(), 1, -5, "",
			valueobject.NewMoneyJPYFromInt(1000), taxRate10, valueobject.ZeroJPY())
		assert.True(t, shared.HasCode(err, shared.CodeValidationError))
	})

	t.Run("rejects partial fill on accessories", func(t *testing.T) {
		accessory := &catalog.Product{
			ID:         uuid.New(),
			Name:       "Hose",
			Code:       "HOSE-01",
			SKUVariant: catalog.SKUVariantOther,
			Type:       catalog.ProductTypeAccessory,
			Status:     catalog.ProductStatusActive,
		}
		_, err := NewOrderLine(accessory, 1, 50, "",
			valueobject.NewMoneyJPYFromInt(300), taxRate10, valueobject.ZeroJPY())
		assert.True(t, shared.HasCode(err, shared.CodeValidationError))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewOrderLine(exchangeCylinder(), 0, 100,
			"", valueobject.NewMoneyJPYFromInt(1000), taxRate10, valueobject.ZeroJPY())
		assert.True(t, shared.HasCode(err, shared.CodeValidationError))
	})

	t.Run("rejects unsellable product", func(t *testing.T) {
		empty := exchangeCylinder()
		empty.SKUVariant = catalog.SKUVariantEmpty
		_, err := NewOrderLine(empty, 1, 100, "",
			valueobject.NewMoneyJPYFromInt(1000), taxRate10, valueobject.ZeroJPY())
		assert.True(t, shared.HasCode(err, shared.CodeInvalidProduct))
	})

	t.Run("rejects negative money inputs", func(t *testing.T) {
		_, err := NewOrderLine(exchangeCylinder(), 1, 100, "",
			valueobject.NewMoneyJPYFromInt(-1), taxRate10, valueobject.ZeroJPY())
		assert.True(t, shared.HasCode(err, shared.CodeValidationError))

		_, err = NewOrderLine(exchangeCylinder(), 1, 100, "",
			valueobject.NewMoneyJPYFromInt(1000), taxRate10, valueobject.NewMoneyJPYFromInt(-1))
		assert.True(t, shared.HasCode(err, shared.CodeValidationError))
	})
}

func TestOrderLineSubtotals(t *testing.T) {
	line, err := NewOrderLine(exchangeCylinder(), 3, 100, "",
		valueobject.NewMoneyJPYFromInt(1000), taxRate10, valueobject.NewMoneyJPYFromInt(2500))
	require.NoError(t, err)

	assert.True(t, line.UnitTotal().Equals(valueobject.NewMoneyJPYFromInt(3600)))
	assert.True(t, line.Subtotal().Equals(valueobject.NewMoneyJPYFromInt(10800)))
	assert.True(t, line.GasSubtotal().Equals(valueobject.NewMoneyJPYFromInt(3000)))
	assert.True(t, line.TaxSubtotal().Equals(valueobject.NewMoneyJPYFromInt(300)))
	assert.True(t, line.DepositSubtotal().Equals(valueobject.NewMoneyJPYFromInt(7500)))
}

func TestOrderLineIsExchangeCylinder(t *testing.T) {
	exchange, err := NewOrderLine(exchangeCylinder(), 1, 100, "",
		valueobject.NewMoneyJPYFromInt(1000), taxRate10, valueobject.ZeroJPY())
	require.NoError(t, err)
	assert.True(t, exchange.IsExchangeCylinder())

	outright := exchangeCylinder()
	outright.SKUVariant = catalog.SKUVariantFullOutright
	line, err := NewOrderLine(outright, 1, 100, "",
		valueobject.NewMoneyJPYFromInt(1000), taxRate10, valueobject.ZeroJPY())
	require.NoError(t, err)
	assert.False(t, line.IsExchangeCylinder())
}
