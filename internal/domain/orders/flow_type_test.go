package orders

import (
	"testing"

	"github.com/gasflow/backend/internal/domain/catalog"
	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cylinderProduct(variant catalog.SKUVariant) *catalog.Product {
	return &catalog.Product{
		ID:         uuid.New(),
		Name:       "LPG 20kg",
		Code:       "LPG-20",
		SKUVariant: variant,
		Type:       catalog.ProductTypeCylinder,
		Capacity:   decimal.NewFromInt(20),
		Status:     catalog.ProductStatusActive,
	}
}

func accessoryProduct() *catalog.Product {
	return &catalog.Product{
		ID:         uuid.New(),
		Name:       "Regulator",
		Code:       "REG-01",
		SKUVariant: catalog.SKUVariantOther,
		Type:       catalog.ProductTypeAccessory,
		Status:     catalog.ProductStatusActive,
	}
}

func TestDetermineFlowType(t *testing.T) {
	t.Run("exchange line makes the order exchange", func(t *testing.T) {
		flow, err := DetermineFlowType([]*catalog.Product{
			cylinderProduct(catalog.SKUVariantFullExchange),
		})
		require.NoError(t, err)
		assert.Equal(t, FlowTypeExchange, flow)
	})

	t.Run("outright line makes the order outright", func(t *testing.T) {
		flow, err := DetermineFlowType([]*catalog.Product{
			cylinderProduct(catalog.SKUVariantFullOutright),
		})
		require.NoError(t, err)
		assert.Equal(t, FlowTypeOutright, flow)
	})

	t.Run("exchange wins over outright", func(t *testing.T) {
		flow, err := DetermineFlowType([]*catalog.Product{
			cylinderProduct(catalog.SKUVariantFullOutright),
			cylinderProduct(catalog.SKUVariantFullExchange),
			cylinderProduct(catalog.SKUVariantFullOutright),
		})
		require.NoError(t, err)
		assert.Equal(t, FlowTypeExchange, flow)
	})

	t.Run("accessories never influence the flow", func(t *testing.T) {
		flow, err := DetermineFlowType([]*catalog.Product{
			accessoryProduct(),
			cylinderProduct(catalog.SKUVariantFullOutright),
		})
		require.NoError(t, err)
		assert.Equal(t, FlowTypeOutright, flow)
	})

	t.Run("accessory-only order has no flow", func(t *testing.T) {
		flow, err := DetermineFlowType([]*catalog.Product{accessoryProduct()})
		require.NoError(t, err)
		assert.Equal(t, FlowTypeNone, flow)
	})

	t.Run("empty-variant cylinder rejects the order", func(t *testing.T) {
		_, err := DetermineFlowType([]*catalog.Product{
			cylinderProduct(catalog.SKUVariantEmpty),
		})
		assert.True(t, shared.HasCode(err, shared.CodeInvalidProduct))
	})
}

func TestOrderKindIsValid(t *testing.T) {
	assert.True(t, OrderKindSales.IsValid())
	assert.True(t, OrderKindVisit.IsValid())
	assert.False(t, OrderKind("RETURN").IsValid())
}
