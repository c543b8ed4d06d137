package credit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ExpiryCallback is invoked by the owning store when a credit expires
type ExpiryCallback func(creditID uuid.UUID)

// CreditStore is the external collaborator that owns persisted credit state.
// The core creates credit records and hands them here; expiry scheduling,
// polling or event delivery is entirely the store's concern.
type CreditStore interface {
	// Persist stores a credit record
	Persist(ctx context.Context, record *EmptyReturnCredit) error

	// OnExpiry registers a callback fired when the given credit expires
	OnExpiry(creditID uuid.UUID, callback ExpiryCallback)
}

// CreditRepository defines the query surface over persisted credits used by
// lifecycle operations (return resolution, expiry sweeps, customer statements).
type CreditRepository interface {
	CreditStore

	// FindByID finds a credit. Returns shared.ErrNotFound when absent.
	FindByID(ctx context.Context, creditID uuid.UUID) (*EmptyReturnCredit, error)

	// FindByOrder lists every credit issued for an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]EmptyReturnCredit, error)

	// FindOpenByCustomer lists a customer's pending credits, oldest due first
	FindOpenByCustomer(ctx context.Context, customerID uuid.UUID) ([]EmptyReturnCredit, error)

	// FindExpirable lists pending credits whose expiry time is at or before now
	FindExpirable(ctx context.Context, now time.Time) ([]EmptyReturnCredit, error)
}
