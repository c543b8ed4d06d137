package inventory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/gasflow/backend/internal/domain/inventory"
	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LedgerService is the single mutation path into cylinder balances. Every
// change to a balance runs inside a per-(warehouse, product) critical
// section, so the invariant checks in CylinderBalance.Apply always see the
// current state rather than a stale snapshot.
type LedgerService struct {
	balances  inventory.CylinderBalanceRepository
	locks     keyedMutex
	publisher shared.EventPublisher
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(balances inventory.CylinderBalanceRepository) *LedgerService {
	return &LedgerService{balances: balances}
}

// SetEventPublisher sets the publisher for domain events raised on balances
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// GetBalance returns the balance for a warehouse-product pair. A pair that
// has never received stock yields a zero-valued balance; lookups never fail
// with not-found.
func (s *LedgerService) GetBalance(ctx context.Context, warehouseID, productID uuid.UUID) (*inventory.CylinderBalance, error) {
	balance, err := s.balances.FindByWarehouseAndProduct(ctx, warehouseID, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return inventory.NewCylinderBalance(warehouseID, productID)
		}
		return nil, err
	}
	return balance, nil
}

// Apply atomically adds the delta to one balance and returns the new state
func (s *LedgerService) Apply(ctx context.Context, warehouseID, productID uuid.UUID, delta inventory.BucketDelta) (*inventory.CylinderBalance, error) {
	return s.WithBalance(ctx, warehouseID, productID, func(b *inventory.CylinderBalance) error {
		return b.Apply(delta)
	})
}

// WithBalance runs fn against the current balance inside its critical
// section and persists the result. The balance is created on first use, so a
// first receipt brings the row into existence. When fn fails nothing is
// saved and the error is returned as-is.
func (s *LedgerService) WithBalance(ctx context.Context, warehouseID, productID uuid.UUID, fn func(b *inventory.CylinderBalance) error) (*inventory.CylinderBalance, error) {
	unlock := s.locks.lock(balanceKey(warehouseID, productID))
	defer unlock()

	balance, err := s.balances.GetOrCreate(ctx, warehouseID, productID)
	if err != nil {
		return nil, err
	}

	fresh := balance.Version == 1
	if err := fn(balance); err != nil {
		return nil, err
	}
	if fresh && balance.Version > 1 {
		balance.AddDomainEvent(inventory.NewBalanceCreatedEvent(balance))
	}

	if err := s.balances.Save(ctx, balance); err != nil {
		return nil, err
	}
	shared.PublishAggregateEvents(ctx, s.publisher, balance)
	return balance, nil
}

// WithBalancePair runs fn against two balances of the same product at
// different warehouses, holding both critical sections. Locks are taken in a
// stable order so concurrent opposing transfers cannot deadlock. Both
// balances are persisted atomically via SaveAll.
func (s *LedgerService) WithBalancePair(
	ctx context.Context,
	fromWarehouseID, toWarehouseID, productID uuid.UUID,
	fn func(from, to *inventory.CylinderBalance) error,
) (*inventory.CylinderBalance, *inventory.CylinderBalance, error) {
	if fromWarehouseID == toWarehouseID {
		return nil, nil, shared.NewDomainError(shared.CodeValidationError, "Source and destination warehouse must differ")
	}

	keys := []string{balanceKey(fromWarehouseID, productID), balanceKey(toWarehouseID, productID)}
	sort.Strings(keys)
	for _, key := range keys {
		unlock := s.locks.lock(key)
		defer unlock()
	}

	from, err := s.balances.GetOrCreate(ctx, fromWarehouseID, productID)
	if err != nil {
		return nil, nil, err
	}
	to, err := s.balances.GetOrCreate(ctx, toWarehouseID, productID)
	if err != nil {
		return nil, nil, err
	}

	toFresh := to.Version == 1
	if err := fn(from, to); err != nil {
		return nil, nil, err
	}
	if toFresh && to.Version > 1 {
		to.AddDomainEvent(inventory.NewBalanceCreatedEvent(to))
	}

	if err := s.balances.SaveAll(ctx, from, to); err != nil {
		return nil, nil, err
	}
	shared.PublishAggregateEvents(ctx, s.publisher, from)
	shared.PublishAggregateEvents(ctx, s.publisher, to)
	return from, to, nil
}

func balanceKey(warehouseID, productID uuid.UUID) string {
	return warehouseID.String() + "/" + productID.String()
}

// keyedMutex serializes operations per balance key. Entries are never
// evicted; the key space is bounded by warehouse x product.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.entries == nil {
		k.entries = make(map[string]*sync.Mutex)
	}
	m, ok := k.entries[key]
	if !ok {
		m = &sync.Mutex{}
		k.entries[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
