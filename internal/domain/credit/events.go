package credit

import (
	"time"

	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Event types for the credit bounded context
const (
	EventTypeCreditIssued   = "credit.issued"
	EventTypeCreditResolved = "credit.resolved"
)

const aggregateTypeEmptyReturnCredit = "EmptyReturnCredit"

// CreditIssuedEvent is emitted when a credit is created for an exchange line
type CreditIssuedEvent struct {
	shared.BaseDomainEvent
	OrderID           uuid.UUID `json:"order_id"`
	CustomerID        uuid.UUID `json:"customer_id"`
	ProductID         uuid.UUID `json:"product_id"`
	ExpectedReturnQty int64     `json:"expected_return_qty"`
	CreditValue       string    `json:"credit_value"`
	DueBy             time.Time `json:"due_by"`
	ExpiresAt         time.Time `json:"expires_at"`
}

// NewCreditIssuedEvent creates a CreditIssuedEvent
func NewCreditIssuedEvent(c *EmptyReturnCredit) *CreditIssuedEvent {
	return &CreditIssuedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeCreditIssued, aggregateTypeEmptyReturnCredit, c.ID),
		OrderID:           c.OrderID,
		CustomerID:        c.CustomerID,
		ProductID:         c.ProductID,
		ExpectedReturnQty: c.ExpectedReturnQty,
		CreditValue:       c.CreditValue.Amount().String(),
		DueBy:             c.DueBy,
		ExpiresAt:         c.ExpiresAt,
	}
}

// CreditResolvedEvent is emitted when a credit reaches a terminal state
type CreditResolvedEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID    `json:"order_id"`
	CustomerID uuid.UUID    `json:"customer_id"`
	Status     CreditStatus `json:"status"`
}

// NewCreditResolvedEvent creates a CreditResolvedEvent
func NewCreditResolvedEvent(c *EmptyReturnCredit) *CreditResolvedEvent {
	return &CreditResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditResolved, aggregateTypeEmptyReturnCredit, c.ID),
		OrderID:         c.OrderID,
		CustomerID:      c.CustomerID,
		Status:          c.Status,
	}
}
