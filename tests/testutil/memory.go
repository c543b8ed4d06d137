// Package testutil provides common test utilities: in-memory repository
// implementations and event recording for application-service tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gasflow/backend/internal/domain/credit"
	"github.com/gasflow/backend/internal/domain/inventory"
	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MemoryBalanceRepository is an in-memory CylinderBalanceRepository
type MemoryBalanceRepository struct {
	mu       sync.Mutex
	balances map[string]*inventory.CylinderBalance

	// FailSave forces the next Save/SaveAll to return this error
	FailSave error
}

// NewMemoryBalanceRepository creates an empty MemoryBalanceRepository
func NewMemoryBalanceRepository() *MemoryBalanceRepository {
	return &MemoryBalanceRepository{balances: make(map[string]*inventory.CylinderBalance)}
}

func balanceKey(warehouseID, productID uuid.UUID) string {
	return warehouseID.String() + "/" + productID.String()
}

func cloneBalance(b *inventory.CylinderBalance) *inventory.CylinderBalance {
	copied := *b
	copied.ClearDomainEvents()
	return &copied
}

// FindByWarehouseAndProduct finds a balance by its composite key
func (r *MemoryBalanceRepository) FindByWarehouseAndProduct(ctx context.Context, warehouseID, productID uuid.UUID) (*inventory.CylinderBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[balanceKey(warehouseID, productID)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneBalance(b), nil
}

// FindByWarehouse finds all balances held at a warehouse
func (r *MemoryBalanceRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]inventory.CylinderBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []inventory.CylinderBalance
	for _, b := range r.balances {
		if b.WarehouseID == warehouseID {
			result = append(result, *cloneBalance(b))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ProductID.String() < result[j].ProductID.String()
	})
	return result, nil
}

// FindByProduct finds all balances for a product across warehouses
func (r *MemoryBalanceRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.CylinderBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []inventory.CylinderBalance
	for _, b := range r.balances {
		if b.ProductID == productID {
			result = append(result, *cloneBalance(b))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].WarehouseID.String() < result[j].WarehouseID.String()
	})
	return result, nil
}

// GetOrCreate returns the existing balance or creates a zeroed one
func (r *MemoryBalanceRepository) GetOrCreate(ctx context.Context, warehouseID, productID uuid.UUID) (*inventory.CylinderBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := balanceKey(warehouseID, productID)
	if b, ok := r.balances[key]; ok {
		return cloneBalance(b), nil
	}
	fresh, err := inventory.NewCylinderBalance(warehouseID, productID)
	if err != nil {
		return nil, err
	}
	r.balances[key] = cloneBalance(fresh)
	return fresh, nil
}

// Save creates or updates a balance
func (r *MemoryBalanceRepository) Save(ctx context.Context, balance *inventory.CylinderBalance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailSave != nil {
		err := r.FailSave
		r.FailSave = nil
		return err
	}
	r.balances[balanceKey(balance.WarehouseID, balance.ProductID)] = cloneBalance(balance)
	return nil
}

// SaveAll persists several balances together
func (r *MemoryBalanceRepository) SaveAll(ctx context.Context, balances ...*inventory.CylinderBalance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailSave != nil {
		err := r.FailSave
		r.FailSave = nil
		return err
	}
	for _, balance := range balances {
		r.balances[balanceKey(balance.WarehouseID, balance.ProductID)] = cloneBalance(balance)
	}
	return nil
}

// MemoryMovementRepository is an in-memory StockMovementRepository
type MemoryMovementRepository struct {
	mu        sync.Mutex
	movements []inventory.StockMovement
}

// NewMemoryMovementRepository creates an empty MemoryMovementRepository
func NewMemoryMovementRepository() *MemoryMovementRepository {
	return &MemoryMovementRepository{}
}

// Append stores movement records
func (r *MemoryMovementRepository) Append(ctx context.Context, movements ...*inventory.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range movements {
		r.movements = append(r.movements, *m)
	}
	return nil
}

// FindByBalance lists movements recorded against one balance, newest first
func (r *MemoryMovementRepository) FindByBalance(ctx context.Context, balanceID uuid.UUID) ([]inventory.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []inventory.StockMovement
	for _, m := range r.movements {
		if m.BalanceID == balanceID {
			result = append(result, m)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].OccurredAt.After(result[j].OccurredAt)
	})
	return result, nil
}

// FindByReference lists movements carrying a source document reference
func (r *MemoryMovementRepository) FindByReference(ctx context.Context, reference string) ([]inventory.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []inventory.StockMovement
	for _, m := range r.movements {
		if m.Reference == reference {
			result = append(result, m)
		}
	}
	return result, nil
}

// All returns every recorded movement in insertion order
func (r *MemoryMovementRepository) All() []inventory.StockMovement {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]inventory.StockMovement, len(r.movements))
	copy(result, r.movements)
	return result
}

// MemoryCreditRepository is an in-memory credit.CreditRepository
type MemoryCreditRepository struct {
	mu        sync.Mutex
	credits   map[uuid.UUID]credit.EmptyReturnCredit
	callbacks map[uuid.UUID][]credit.ExpiryCallback

	// FailPersist forces the next Persist to return this error
	FailPersist error
}

// NewMemoryCreditRepository creates an empty MemoryCreditRepository
func NewMemoryCreditRepository() *MemoryCreditRepository {
	return &MemoryCreditRepository{
		credits:   make(map[uuid.UUID]credit.EmptyReturnCredit),
		callbacks: make(map[uuid.UUID][]credit.ExpiryCallback),
	}
}

// Persist stores a credit record
func (r *MemoryCreditRepository) Persist(ctx context.Context, record *credit.EmptyReturnCredit) error {
	r.mu.Lock()
	if r.FailPersist != nil {
		err := r.FailPersist
		r.FailPersist = nil
		r.mu.Unlock()
		return err
	}
	copied := *record
	copied.ClearDomainEvents()
	r.credits[record.ID] = copied
	var fire []credit.ExpiryCallback
	if record.Status == credit.CreditStatusExpired {
		fire = r.callbacks[record.ID]
		delete(r.callbacks, record.ID)
	}
	r.mu.Unlock()

	for _, cb := range fire {
		cb(record.ID)
	}
	return nil
}

// OnExpiry registers a callback fired when the given credit expires
func (r *MemoryCreditRepository) OnExpiry(creditID uuid.UUID, callback credit.ExpiryCallback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks[creditID] = append(r.callbacks[creditID], callback)
}

// FindByID finds a credit by its ID
func (r *MemoryCreditRepository) FindByID(ctx context.Context, creditID uuid.UUID) (*credit.EmptyReturnCredit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.credits[creditID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := c
	return &copied, nil
}

// FindByOrder lists every credit issued for an order
func (r *MemoryCreditRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]credit.EmptyReturnCredit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []credit.EmptyReturnCredit
	for _, c := range r.credits {
		if c.OrderID == orderID {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// FindOpenByCustomer lists a customer's pending credits, oldest due first
func (r *MemoryCreditRepository) FindOpenByCustomer(ctx context.Context, customerID uuid.UUID) ([]credit.EmptyReturnCredit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []credit.EmptyReturnCredit
	for _, c := range r.credits {
		if c.CustomerID == customerID && c.Status == credit.CreditStatusPending {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DueBy.Before(result[j].DueBy)
	})
	return result, nil
}

// FindExpirable lists pending credits whose expiry time is at or before now
func (r *MemoryCreditRepository) FindExpirable(ctx context.Context, now time.Time) ([]credit.EmptyReturnCredit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []credit.EmptyReturnCredit
	for _, c := range r.credits {
		if c.Status == credit.CreditStatusPending && !now.Before(c.ExpiresAt) {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ExpiresAt.Before(result[j].ExpiresAt)
	})
	return result, nil
}

// EventRecorder is a shared.EventPublisher that records published events
type EventRecorder struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

// NewEventRecorder creates an empty EventRecorder
func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

// Publish records the events
func (r *EventRecorder) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

// Events returns all recorded events
func (r *EventRecorder) Events() []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]shared.DomainEvent, len(r.events))
	copy(result, r.events)
	return result
}

// EventsOfType returns recorded events matching the given type
func (r *EventRecorder) EventsOfType(eventType string) []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []shared.DomainEvent
	for _, e := range r.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}
