package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/gasflow/backend/internal/domain/pricing"
	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/shared/valueobject"
	"github.com/gasflow/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FallbackDepositResolver decorates a deposit resolver with configured
// fallbacks. Resolution order: the wrapped resolver's tier table, then the
// configured per-capacity defaults, then the global default. Each fallback
// hop is logged as a warning; a missing tier is a data-quality problem that
// should be fixed at the source rather than absorbed silently.
type FallbackDepositResolver struct {
	inner         pricing.DepositRateResolver
	defaults      map[string]valueobject.Money
	globalDefault *valueobject.Money
	logger        *zap.Logger
}

// NewFallbackDepositResolver builds the decorator from the deposit config.
// Returns an error when a configured amount does not parse.
func NewFallbackDepositResolver(inner pricing.DepositRateResolver, cfg config.DepositConfig, logger *zap.Logger) (*FallbackDepositResolver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	currency := valueobject.Currency(cfg.Currency)
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	defaults := make(map[string]valueobject.Money, len(cfg.Defaults))
	for capacity, amount := range cfg.Defaults {
		m, err := valueobject.NewMoneyFromString(amount, currency)
		if err != nil {
			return nil, fmt.Errorf("parsing deposit default for capacity %s: %w", capacity, err)
		}
		key, err := decimal.NewFromString(capacity)
		if err != nil {
			return nil, fmt.Errorf("parsing deposit capacity %q: %w", capacity, err)
		}
		defaults[key.String()] = m
	}

	var global *valueobject.Money
	if cfg.GlobalDefault != "" {
		m, err := valueobject.NewMoneyFromString(cfg.GlobalDefault, currency)
		if err != nil {
			return nil, fmt.Errorf("parsing global deposit default: %w", err)
		}
		global = &m
	}

	return &FallbackDepositResolver{
		inner:         inner,
		defaults:      defaults,
		globalDefault: global,
		logger:        logger,
	}, nil
}

// GetRate resolves through the fallback chain. Returns shared.ErrNotFound
// only when every link in the chain comes up empty.
func (r *FallbackDepositResolver) GetRate(ctx context.Context, capacity decimal.Decimal) (*pricing.DepositRate, error) {
	if r.inner != nil {
		rate, err := r.inner.GetRate(ctx, capacity)
		if err == nil {
			return rate, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	if amount, ok := r.defaults[capacity.String()]; ok {
		r.logger.Warn("deposit tier missing, using configured default",
			zap.String("capacity", capacity.String()),
			zap.String("amount", amount.String()))
		return &pricing.DepositRate{Capacity: capacity, Amount: amount}, nil
	}

	if r.globalDefault != nil {
		r.logger.Warn("deposit tier missing, using global default",
			zap.String("capacity", capacity.String()),
			zap.String("amount", r.globalDefault.String()))
		return &pricing.DepositRate{Capacity: capacity, Amount: *r.globalDefault}, nil
	}

	return nil, shared.ErrNotFound
}
