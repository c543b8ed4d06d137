package persistence

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gasflow/backend/internal/domain/credit"
	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCreditRepository implements CreditRepository using GORM. Expiry
// callbacks registered through OnExpiry fire when SweepExpired observes the
// corresponding credit transition to expired.
type GormCreditRepository struct {
	db *gorm.DB

	mu        sync.Mutex
	callbacks map[uuid.UUID][]credit.ExpiryCallback
}

// NewGormCreditRepository creates a new GormCreditRepository
func NewGormCreditRepository(db *gorm.DB) *GormCreditRepository {
	return &GormCreditRepository{
		db:        db,
		callbacks: make(map[uuid.UUID][]credit.ExpiryCallback),
	}
}

// Persist creates or updates a credit record. When the record lands in the
// expired state, any registered expiry callbacks fire once and are dropped.
func (r *GormCreditRepository) Persist(ctx context.Context, record *credit.EmptyReturnCredit) error {
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return err
	}
	if record.Status == credit.CreditStatusExpired {
		r.fireExpiry(record.ID)
	}
	return nil
}

// OnExpiry registers a callback fired when the given credit expires
func (r *GormCreditRepository) OnExpiry(creditID uuid.UUID, callback credit.ExpiryCallback) {
	if callback == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks[creditID] = append(r.callbacks[creditID], callback)
}

func (r *GormCreditRepository) fireExpiry(creditID uuid.UUID) {
	r.mu.Lock()
	callbacks := r.callbacks[creditID]
	delete(r.callbacks, creditID)
	r.mu.Unlock()

	for _, cb := range callbacks {
		cb(creditID)
	}
}

// FindByID finds a credit by its ID
func (r *GormCreditRepository) FindByID(ctx context.Context, creditID uuid.UUID) (*credit.EmptyReturnCredit, error) {
	var record credit.EmptyReturnCredit
	if err := r.db.WithContext(ctx).First(&record, "id = ?", creditID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByOrder lists every credit issued for an order
func (r *GormCreditRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]credit.EmptyReturnCredit, error) {
	var records []credit.EmptyReturnCredit
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindOpenByCustomer lists a customer's pending credits, oldest due first
func (r *GormCreditRepository) FindOpenByCustomer(ctx context.Context, customerID uuid.UUID) ([]credit.EmptyReturnCredit, error) {
	var records []credit.EmptyReturnCredit
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND status = ?", customerID, credit.CreditStatusPending).
		Order("due_by").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindExpirable lists pending credits whose expiry time is at or before now
func (r *GormCreditRepository) FindExpirable(ctx context.Context, now time.Time) ([]credit.EmptyReturnCredit, error) {
	var records []credit.EmptyReturnCredit
	if err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at <= ?", credit.CreditStatusPending, now).
		Order("expires_at").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
