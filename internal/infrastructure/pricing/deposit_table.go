package pricing

import (
	"context"
	"sort"
	"sync"

	"github.com/gasflow/backend/internal/domain/pricing"
	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TableDepositResolver resolves deposit rates from a set of capacity tiers.
// Lookup is by nearest capacity: an exact tier wins, otherwise the
// numerically closest one; ties go to the smaller tier.
type TableDepositResolver struct {
	mu    sync.RWMutex
	tiers []pricing.DepositRate
}

// NewTableDepositResolver creates a resolver over the given tiers
func NewTableDepositResolver(tiers ...pricing.DepositRate) *TableDepositResolver {
	r := &TableDepositResolver{}
	for _, tier := range tiers {
		r.SetTier(tier.Capacity, tier.Amount)
	}
	return r
}

// SetTier adds or replaces the tier for a capacity
func (r *TableDepositResolver) SetTier(capacity decimal.Decimal, amount valueobject.Money) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tiers {
		if r.tiers[i].Capacity.Equal(capacity) {
			r.tiers[i].Amount = amount
			return
		}
	}
	r.tiers = append(r.tiers, pricing.DepositRate{Capacity: capacity, Amount: amount})
	sort.Slice(r.tiers, func(i, j int) bool {
		return r.tiers[i].Capacity.LessThan(r.tiers[j].Capacity)
	})
}

// GetRate resolves the deposit for a cylinder capacity by nearest match.
// Returns shared.ErrNotFound when no tier is configured at all.
func (r *TableDepositResolver) GetRate(ctx context.Context, capacity decimal.Decimal) (*pricing.DepositRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.tiers) == 0 {
		return nil, shared.ErrNotFound
	}

	best := r.tiers[0]
	bestDist := best.Capacity.Sub(capacity).Abs()
	for _, tier := range r.tiers[1:] {
		dist := tier.Capacity.Sub(capacity).Abs()
		if dist.LessThan(bestDist) {
			best = tier
			bestDist = dist
		}
	}
	rate := best
	return &rate, nil
}
