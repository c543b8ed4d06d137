package orders

import (
	"fmt"

	"github.com/gasflow/backend/internal/domain/catalog"
	"github.com/gasflow/backend/internal/domain/shared"
)

// FlowType drives the commercial semantics of an order: exchange orders hand
// over full cylinders against empties owed back, outright orders sell the
// cylinder with no return expected.
type FlowType string

const (
	FlowTypeOutright FlowType = "OUTRIGHT"
	FlowTypeExchange FlowType = "EXCHANGE"
	FlowTypeNone     FlowType = "NONE"
)

// String returns the string representation of FlowType
func (f FlowType) String() string {
	return string(f)
}

// IsValid returns true if the flow type is valid
func (f FlowType) IsValid() bool {
	switch f {
	case FlowTypeOutright, FlowTypeExchange, FlowTypeNone:
		return true
	}
	return false
}

// OrderKind distinguishes ordinary sales orders from visit orders, which
// carry no lines by design (driver calls on a customer without a sale).
type OrderKind string

const (
	OrderKindSales OrderKind = "SALES"
	OrderKindVisit OrderKind = "VISIT"
)

// IsValid returns true if the order kind is valid
func (k OrderKind) IsValid() bool {
	return k == OrderKindSales || k == OrderKindVisit
}

// DetermineFlowType inspects the cylinder products in an order's line set and
// derives the flow type. Precedence: any FULL-XCH line makes the whole order
// an exchange; otherwise any FULL-OUT line makes it outright; otherwise none.
// EMPTY-variant cylinders are never sellable and reject the determination.
// Accessories are accepted under any flow type and never influence it.
func DetermineFlowType(products []*catalog.Product) (FlowType, error) {
	flow := FlowTypeNone
	for _, p := range products {
		if !p.IsCylinder() {
			continue
		}
		switch p.SKUVariant {
		case catalog.SKUVariantEmpty:
			return FlowTypeNone, shared.NewDomainError(shared.CodeInvalidProduct,
				fmt.Sprintf("Product %s is an EMPTY-variant cylinder and cannot be sold", p.ID))
		case catalog.SKUVariantFullExchange:
			flow = FlowTypeExchange
		case catalog.SKUVariantFullOutright:
			if flow != FlowTypeExchange {
				flow = FlowTypeOutright
			}
		}
	}
	return flow, nil
}
