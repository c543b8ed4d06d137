package orders

import (
	"time"

	"github.com/gasflow/backend/internal/domain/orders"
	"github.com/gasflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// RequestedLine is one raw line of an incoming order before composition
type RequestedLine struct {
	ProductID      uuid.UUID `json:"product_id"`
	Quantity       int64     `json:"quantity"`
	FillPercentage int       `json:"fill_percentage"`
	FillNotes      string    `json:"fill_notes"`
}

// ComposeOrderRequest carries everything the composition engine needs to turn
// raw requested lines into a priced, reserved order.
type ComposeOrderRequest struct {
	CustomerID  uuid.UUID        `json:"customer_id"`
	WarehouseID uuid.UUID        `json:"warehouse_id"`
	Kind        orders.OrderKind `json:"kind"`
	FlowType    *orders.FlowType `json:"flow_type,omitempty"`
	Lines       []RequestedLine  `json:"lines"`
}

// OrderTotals aggregates the money columns across an order's lines
type OrderTotals struct {
	GasSubtotal  valueobject.Money `json:"gas_subtotal"`
	TaxTotal     valueobject.Money `json:"tax_total"`
	DepositTotal valueobject.Money `json:"deposit_total"`
	GrandTotal   valueobject.Money `json:"grand_total"`
}

// OrderCompositionResult is the fully composed order: priced lines, derived
// flow type, totals, and the reservations already placed against stock.
type OrderCompositionResult struct {
	OrderID     uuid.UUID          `json:"order_id"`
	CustomerID  uuid.UUID          `json:"customer_id"`
	WarehouseID uuid.UUID          `json:"warehouse_id"`
	Kind        orders.OrderKind   `json:"kind"`
	FlowType    orders.FlowType    `json:"flow_type"`
	Lines       []orders.OrderLine `json:"lines"`
	Totals      OrderTotals        `json:"totals"`
	CreatedAt   time.Time          `json:"created_at"`
}
