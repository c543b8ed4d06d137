package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	appinventory "github.com/gasflow/backend/internal/application/inventory"
	"github.com/gasflow/backend/internal/domain/catalog"
	"github.com/gasflow/backend/internal/domain/orders"
	"github.com/gasflow/backend/internal/domain/pricing"
	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockReserver is the slice of the movement service the composition engine
// needs: holding stock against an order and handing a hold back on rollback.
type StockReserver interface {
	Reserve(ctx context.Context, warehouseID, productID uuid.UUID, quantity int64, reference string) (*appinventory.BalanceResponse, error)
	ReleaseReservation(ctx context.Context, warehouseID, productID uuid.UUID, quantity int64, reference string) (*appinventory.BalanceResponse, error)
}

// CompositionService turns raw requested lines into a fully priced order with
// stock reserved for every line. Composition is all-or-nothing: any failure
// after the first reservation releases every hold already placed before the
// error is returned.
type CompositionService struct {
	stock    StockReserver
	catalog  catalog.ProductCatalog
	prices   pricing.PriceResolver
	deposits pricing.DepositRateResolver
	logger   *zap.Logger
}

// NewCompositionService creates a new CompositionService
func NewCompositionService(
	stock StockReserver,
	productCatalog catalog.ProductCatalog,
	prices pricing.PriceResolver,
	deposits pricing.DepositRateResolver,
	logger *zap.Logger,
) *CompositionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompositionService{
		stock:    stock,
		catalog:  productCatalog,
		prices:   prices,
		deposits: deposits,
		logger:   logger,
	}
}

// ComposeOrder runs the full composition pipeline: validate the request,
// resolve products, derive the flow type, price every line, and reserve stock.
// Visit orders short-circuit after validation; they carry no lines and touch
// no stock.
func (s *CompositionService) ComposeOrder(ctx context.Context, req ComposeOrderRequest) (*OrderCompositionResult, error) {
	if req.CustomerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Customer ID is required")
	}
	if !req.Kind.IsValid() {
		return nil, shared.NewDomainError(shared.CodeValidationError,
			fmt.Sprintf("Invalid order kind %q", req.Kind))
	}

	orderID := uuid.New()

	if req.Kind == orders.OrderKindVisit {
		if len(req.Lines) > 0 {
			return nil, shared.NewDomainError(shared.CodeValidationError, "Visit orders cannot carry lines")
		}
		return &OrderCompositionResult{
			OrderID:     orderID,
			CustomerID:  req.CustomerID,
			WarehouseID: req.WarehouseID,
			Kind:        req.Kind,
			FlowType:    orders.FlowTypeNone,
			Totals:      zeroTotals(),
			CreatedAt:   time.Now(),
		}, nil
	}

	if req.WarehouseID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeValidationError, "Warehouse ID is required")
	}
	if len(req.Lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeEmptyOrder, "Sales order must carry at least one line")
	}

	products, err := s.resolveProducts(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	flow, err := s.resolveFlowType(req.FlowType, products)
	if err != nil {
		return nil, err
	}

	lines, err := s.priceLines(ctx, req, products)
	if err != nil {
		return nil, err
	}

	if err := s.reserveLines(ctx, req.WarehouseID, orderID, lines); err != nil {
		return nil, err
	}

	result := &OrderCompositionResult{
		OrderID:     orderID,
		CustomerID:  req.CustomerID,
		WarehouseID: req.WarehouseID,
		Kind:        req.Kind,
		FlowType:    flow,
		Lines:       lines,
		Totals:      sumTotals(lines),
		CreatedAt:   time.Now(),
	}

	s.logger.Info("order composed",
		zap.String("order_id", orderID.String()),
		zap.String("customer_id", req.CustomerID.String()),
		zap.String("flow_type", flow.String()),
		zap.Int("lines", len(lines)))

	return result, nil
}

// resolveProducts fetches the product for every requested line, preserving
// line order. Position i of the result corresponds to req.Lines[i].
func (s *CompositionService) resolveProducts(ctx context.Context, lines []RequestedLine) ([]*catalog.Product, error) {
	products := make([]*catalog.Product, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, shared.NewDomainError(shared.CodeInvalidProduct, "Line product ID is required")
		}
		product, err := s.catalog.Get(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError(shared.CodeInvalidProduct,
					fmt.Sprintf("Product %s does not exist", line.ProductID))
			}
			return nil, fmt.Errorf("resolving product %s: %w", line.ProductID, err)
		}
		if !product.IsSellable() {
			return nil, shared.NewDomainError(shared.CodeInvalidProduct,
				fmt.Sprintf("Product %s is not sellable", product.ID))
		}
		products = append(products, product)
	}
	return products, nil
}

// resolveFlowType honors an explicitly requested flow type when given,
// otherwise derives it from the cylinder variants in the line set.
func (s *CompositionService) resolveFlowType(explicit *orders.FlowType, products []*catalog.Product) (orders.FlowType, error) {
	derived, err := orders.DetermineFlowType(products)
	if err != nil {
		return orders.FlowTypeNone, err
	}
	if explicit == nil {
		return derived, nil
	}
	if !explicit.IsValid() {
		return orders.FlowTypeNone, shared.NewDomainError(shared.CodeValidationError,
			fmt.Sprintf("Invalid flow type %q", *explicit))
	}
	return *explicit, nil
}

// priceLines resolves a gas price and deposit rate per line and builds the
// priced order lines. A missing price or deposit surfaces as a pricing
// failure; composition never invents a price.
func (s *CompositionService) priceLines(ctx context.Context, req ComposeOrderRequest, products []*catalog.Product) ([]orders.OrderLine, error) {
	lines := make([]orders.OrderLine, 0, len(req.Lines))
	for i, requested := range req.Lines {
		product := products[i]

		quote, err := s.prices.GetPrice(ctx, product.ID, &req.CustomerID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError(shared.CodePricingUnavailable,
					fmt.Sprintf("No gas price configured for product %s", product.ID))
			}
			return nil, fmt.Errorf("resolving price for product %s: %w", product.ID, err)
		}

		deposit := valueobject.ZeroJPY()
		if product.IsCylinder() {
			rate, err := s.deposits.GetRate(ctx, product.Capacity)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return nil, shared.NewDomainError(shared.CodePricingUnavailable,
						fmt.Sprintf("No deposit rate configured for capacity %s", product.Capacity))
				}
				return nil, fmt.Errorf("resolving deposit for product %s: %w", product.ID, err)
			}
			deposit = rate.Amount
		}

		line, err := orders.NewOrderLine(product, requested.Quantity, requested.FillPercentage,
			requested.FillNotes, quote.PriceExclTax, quote.TaxRate, deposit)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}
	return lines, nil
}

// reserveLines places a reservation for every cylinder line, in order. If any
// reservation fails, every hold already placed is released before returning.
// Release failures during rollback are joined onto the original error rather
// than swallowed.
func (s *CompositionService) reserveLines(ctx context.Context, warehouseID, orderID uuid.UUID, lines []orders.OrderLine) error {
	reference := orderID.String()

	type hold struct {
		productID uuid.UUID
		quantity  int64
	}
	placed := make([]hold, 0, len(lines))

	for _, line := range lines {
		if line.ProductType != catalog.ProductTypeCylinder {
			continue
		}
		if _, err := s.stock.Reserve(ctx, warehouseID, line.ProductID, line.Quantity, reference); err != nil {
			rollbackErrs := make([]error, 0, len(placed))
			for i := len(placed) - 1; i >= 0; i-- {
				h := placed[i]
				if _, relErr := s.stock.ReleaseReservation(ctx, warehouseID, h.productID, h.quantity, reference); relErr != nil {
					s.logger.Error("failed to release reservation during rollback",
						zap.String("order_id", reference),
						zap.String("product_id", h.productID.String()),
						zap.Int64("quantity", h.quantity),
						zap.Error(relErr))
					rollbackErrs = append(rollbackErrs, relErr)
				}
			}
			if len(rollbackErrs) > 0 {
				return errors.Join(append([]error{err}, rollbackErrs...)...)
			}
			return err
		}
		placed = append(placed, hold{productID: line.ProductID, quantity: line.Quantity})
	}
	return nil
}

func zeroTotals() OrderTotals {
	zero := valueobject.ZeroJPY()
	return OrderTotals{
		GasSubtotal:  zero,
		TaxTotal:     zero,
		DepositTotal: zero,
		GrandTotal:   zero,
	}
}

func sumTotals(lines []orders.OrderLine) OrderTotals {
	totals := zeroTotals()
	for i := range lines {
		line := &lines[i]
		totals.GasSubtotal = totals.GasSubtotal.MustAdd(line.GasSubtotal())
		totals.TaxTotal = totals.TaxTotal.MustAdd(line.TaxSubtotal())
		totals.DepositTotal = totals.DepositTotal.MustAdd(line.DepositSubtotal())
		totals.GrandTotal = totals.GrandTotal.MustAdd(line.Subtotal())
	}
	return totals
}
