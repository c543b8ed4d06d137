package credit

import (
	"context"
	"errors"
	"fmt"
	"time"

	apporders "github.com/gasflow/backend/internal/application/orders"
	"github.com/gasflow/backend/internal/domain/credit"
	"github.com/gasflow/backend/internal/domain/orders"
	"github.com/gasflow/backend/internal/domain/pricing"
	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Default return windows applied when the service is built without explicit
// configuration.
const (
	DefaultDueIn    = 7 * 24 * time.Hour
	DefaultExpireIn = 30 * 24 * time.Hour
)

// CreditService generates empty-return credits from finalized orders. For
// every exchange cylinder line it issues one credit worth the line's deposit
// value, expecting the same number of empties back within the return window.
type CreditService struct {
	deposits pricing.DepositRateResolver
	store    credit.CreditRepository
	logger   *zap.Logger
	dueIn    time.Duration
	expireIn time.Duration
	now      func() time.Time
}

// NewCreditService creates a CreditService with the given collaborators. store
// may be nil, in which case generated credits are returned to the caller but
// not persisted and lifecycle operations are unavailable.
func NewCreditService(deposits pricing.DepositRateResolver, store credit.CreditRepository, logger *zap.Logger) *CreditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreditService{
		deposits: deposits,
		store:    store,
		logger:   logger,
		dueIn:    DefaultDueIn,
		expireIn: DefaultExpireIn,
		now:      time.Now,
	}
}

// WithWindows overrides the due and expiry windows. Zero or negative values
// keep the current setting.
func (s *CreditService) WithWindows(dueIn, expireIn time.Duration) *CreditService {
	if dueIn > 0 {
		s.dueIn = dueIn
	}
	if expireIn > 0 {
		s.expireIn = expireIn
	}
	return s
}

// GenerateForOrder issues one credit per exchange cylinder line of a composed
// exchange order. Orders under any other flow type never produce credits,
// even when they carry exchange-variant lines; neither do outright or
// accessory lines. The credit value comes from the current deposit rate for
// the line's capacity tier, falling back to the line's own deposit snapshot
// when no tier is configured. Return windows anchor on the order's creation
// time, so a delayed generation never extends them.
func (s *CreditService) GenerateForOrder(ctx context.Context, order *apporders.OrderCompositionResult) ([]*credit.EmptyReturnCredit, error) {
	if order == nil {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Order cannot be nil")
	}
	if order.FlowType != orders.FlowTypeExchange {
		return nil, nil
	}
	if order.CreatedAt.IsZero() {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Order creation time is required")
	}

	issuedAt := order.CreatedAt
	credits := make([]*credit.EmptyReturnCredit, 0, len(order.Lines))

	for i := range order.Lines {
		line := &order.Lines[i]
		if !line.IsExchangeCylinder() {
			continue
		}

		deposit, err := s.resolveDeposit(ctx, line.Capacity, line.DepositAmount, line.ProductID.String())
		if err != nil {
			return nil, err
		}

		c, err := credit.NewEmptyReturnCredit(
			order.OrderID, line.ID, order.CustomerID, line.ProductID,
			line.Quantity, deposit, issuedAt, s.dueIn, s.expireIn,
		)
		if err != nil {
			return nil, fmt.Errorf("issuing credit for line %s: %w", line.ID, err)
		}

		if s.store != nil {
			if err := s.store.Persist(ctx, c); err != nil {
				return nil, fmt.Errorf("persisting credit %s: %w", c.ID, err)
			}
		}

		s.logger.Info("empty-return credit issued",
			zap.String("credit_id", c.ID.String()),
			zap.String("order_id", order.OrderID.String()),
			zap.String("product_id", line.ProductID.String()),
			zap.Int64("expected_return_qty", line.Quantity),
			zap.String("credit_value", c.CreditValue.String()))

		credits = append(credits, c)
	}

	return credits, nil
}

// ResolveReturn marks a credit returned: the customer brought the empties
// back within the window.
func (s *CreditService) ResolveReturn(ctx context.Context, creditID uuid.UUID) (*credit.EmptyReturnCredit, error) {
	c, err := s.lookup(ctx, creditID)
	if err != nil {
		return nil, err
	}
	if err := c.MarkReturned(s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Persist(ctx, c); err != nil {
		return nil, fmt.Errorf("persisting credit %s: %w", c.ID, err)
	}
	return c, nil
}

// CancelForOrder voids every open credit issued against an order, used when
// the order itself is cancelled. Already-terminal credits are left alone.
func (s *CreditService) CancelForOrder(ctx context.Context, orderID uuid.UUID) (int, error) {
	if s.store == nil {
		return 0, shared.NewDomainError(shared.CodeInvalidState, "Credit store is not configured")
	}
	records, err := s.store.FindByOrder(ctx, orderID)
	if err != nil {
		return 0, fmt.Errorf("listing credits for order %s: %w", orderID, err)
	}
	at := s.now()
	cancelled := 0
	for i := range records {
		c := &records[i]
		if !c.IsOpen() {
			continue
		}
		if err := c.Cancel(at); err != nil {
			return cancelled, err
		}
		if err := s.store.Persist(ctx, c); err != nil {
			return cancelled, fmt.Errorf("persisting credit %s: %w", c.ID, err)
		}
		cancelled++
	}
	return cancelled, nil
}

// SweepExpired transitions every pending credit whose expiry time has passed.
// Returns the credits that expired during this sweep.
func (s *CreditService) SweepExpired(ctx context.Context) ([]*credit.EmptyReturnCredit, error) {
	if s.store == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Credit store is not configured")
	}
	now := s.now()
	records, err := s.store.FindExpirable(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("listing expirable credits: %w", err)
	}
	expired := make([]*credit.EmptyReturnCredit, 0, len(records))
	for i := range records {
		c := &records[i]
		if err := c.MarkExpired(now); err != nil {
			return expired, err
		}
		if err := s.store.Persist(ctx, c); err != nil {
			return expired, fmt.Errorf("persisting credit %s: %w", c.ID, err)
		}
		s.logger.Info("empty-return credit expired",
			zap.String("credit_id", c.ID.String()),
			zap.String("customer_id", c.CustomerID.String()),
			zap.String("forfeited_value", c.CreditValue.String()))
		expired = append(expired, c)
	}
	return expired, nil
}

func (s *CreditService) lookup(ctx context.Context, creditID uuid.UUID) (*credit.EmptyReturnCredit, error) {
	if s.store == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Credit store is not configured")
	}
	c, err := s.store.FindByID(ctx, creditID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound,
				fmt.Sprintf("Credit %s does not exist", creditID))
		}
		return nil, fmt.Errorf("finding credit %s: %w", creditID, err)
	}
	return c, nil
}

// resolveDeposit looks the deposit up by capacity. When no tier is configured
// the line's own deposit snapshot stands in, logged as a data-quality warning
// so the missing tier gets fixed rather than silently absorbed.
func (s *CreditService) resolveDeposit(ctx context.Context, capacity decimal.Decimal, lineDeposit valueobject.Money, productID string) (valueobject.Money, error) {
	rate, err := s.deposits.GetRate(ctx, capacity)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("no deposit tier for capacity, using line deposit snapshot",
				zap.String("capacity", capacity.String()),
				zap.String("product_id", productID),
				zap.String("line_deposit", lineDeposit.String()))
			return lineDeposit, nil
		}
		return valueobject.Money{}, fmt.Errorf("resolving deposit for capacity %s: %w", capacity, err)
	}
	return rate.Amount, nil
}
