package credit

import (
	"fmt"
	"time"

	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// CreditStatus represents the lifecycle state of an empty-return credit
type CreditStatus string

const (
	// CreditStatusPending means the empty cylinder is still owed
	CreditStatusPending CreditStatus = "PENDING"
	// CreditStatusReturned means the empty came back and the credit resolved
	CreditStatusReturned CreditStatus = "RETURNED"
	// CreditStatusExpired means the return window lapsed without a return
	CreditStatusExpired CreditStatus = "EXPIRED"
	// CreditStatusCancelled means the credit was voided (order cancelled)
	CreditStatusCancelled CreditStatus = "CANCELLED"
)

// String returns the string representation of CreditStatus
func (s CreditStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states a credit can never leave
func (s CreditStatus) IsTerminal() bool {
	return s == CreditStatusReturned || s == CreditStatusExpired || s == CreditStatusCancelled
}

// EmptyReturnCredit is the deferred obligation created for each exchange
// cylinder line of a finalized order: the customer owes the expected number
// of empty cylinders back, or forfeits the credit value derived from the
// deposit rate. One credit per line, never aggregated across lines.
type EmptyReturnCredit struct {
	shared.BaseAggregateRoot
	OrderID           uuid.UUID         `gorm:"type:uuid;not null;index:idx_credit_order"`
	OrderLineID       uuid.UUID         `gorm:"type:uuid;not null"`
	CustomerID        uuid.UUID         `gorm:"type:uuid;not null;index:idx_credit_customer"`
	ProductID         uuid.UUID         `gorm:"type:uuid;not null"`
	ExpectedReturnQty int64             `gorm:"not null"`
	CreditValue       valueobject.Money `gorm:"type:decimal(18,4);not null"`
	DueBy             time.Time         `gorm:"type:timestamptz;not null"`
	ExpiresAt         time.Time         `gorm:"type:timestamptz;not null;index"`
	Status            CreditStatus      `gorm:"type:varchar(20);not null;index"`
	ResolvedAt        *time.Time        `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (EmptyReturnCredit) TableName() string {
	return "empty_return_credits"
}

// NewEmptyReturnCredit creates a pending credit for one exchange line.
// perUnitDeposit is the resolved deposit for the cylinder's capacity tier;
// the credit value is perUnitDeposit times the expected return quantity.
func NewEmptyReturnCredit(
	orderID, orderLineID, customerID, productID uuid.UUID,
	expectedReturnQty int64,
	perUnitDeposit valueobject.Money,
	createdAt time.Time,
	dueIn, expireIn time.Duration,
) (*EmptyReturnCredit, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Order ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Customer ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Product ID cannot be empty")
	}
	if expectedReturnQty <= 0 {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Expected return quantity must be positive")
	}
	if perUnitDeposit.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Deposit cannot be negative")
	}
	if dueIn <= 0 || expireIn <= 0 || expireIn < dueIn {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Credit windows must be positive and expiry must not precede due date")
	}

	c := &EmptyReturnCredit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		OrderLineID:       orderLineID,
		CustomerID:        customerID,
		ProductID:         productID,
		ExpectedReturnQty: expectedReturnQty,
		CreditValue:       perUnitDeposit.MultiplyByInt(expectedReturnQty),
		DueBy:             createdAt.Add(dueIn),
		ExpiresAt:         createdAt.Add(expireIn),
		Status:            CreditStatusPending,
	}
	c.CreatedAt = createdAt
	c.Touch(createdAt)
	c.AddDomainEvent(NewCreditIssuedEvent(c))
	return c, nil
}

// MarkReturned resolves the credit: the empties came back in time
func (c *EmptyReturnCredit) MarkReturned(at time.Time) error {
	if c.Status.IsTerminal() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Credit is already %s", c.Status))
	}
	c.Status = CreditStatusReturned
	c.ResolvedAt = &at
	c.Touch(at)
	c.IncrementVersion()
	c.AddDomainEvent(NewCreditResolvedEvent(c))
	return nil
}

// MarkExpired transitions a pending credit whose window has lapsed
func (c *EmptyReturnCredit) MarkExpired(now time.Time) error {
	if c.Status.IsTerminal() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Credit is already %s", c.Status))
	}
	if now.Before(c.ExpiresAt) {
		return shared.NewDomainError(shared.CodeInvalidState, "Credit has not reached its expiry time")
	}
	c.Status = CreditStatusExpired
	c.ResolvedAt = &now
	c.Touch(now)
	c.IncrementVersion()
	c.AddDomainEvent(NewCreditResolvedEvent(c))
	return nil
}

// Cancel voids a pending credit, typically when its order is cancelled
func (c *EmptyReturnCredit) Cancel(at time.Time) error {
	if c.Status.IsTerminal() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Credit is already %s", c.Status))
	}
	c.Status = CreditStatusCancelled
	c.ResolvedAt = &at
	c.Touch(at)
	c.IncrementVersion()
	c.AddDomainEvent(NewCreditResolvedEvent(c))
	return nil
}

// IsOpen returns true while the empty cylinders are still owed
func (c *EmptyReturnCredit) IsOpen() bool {
	return c.Status == CreditStatusPending
}

// IsOverdue returns true when the due date passed but the credit is still open
func (c *EmptyReturnCredit) IsOverdue(now time.Time) bool {
	return c.IsOpen() && now.After(c.DueBy)
}

// IsExpirable returns true when the credit may transition to expired
func (c *EmptyReturnCredit) IsExpirable(now time.Time) bool {
	return c.IsOpen() && !now.Before(c.ExpiresAt)
}
