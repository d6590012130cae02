package sale

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"atelier/internal/core/actor"
	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/core/tx"
	"atelier/internal/domain"
	"atelier/internal/domain/pricing"
	"atelier/internal/domain/product"
	"atelier/internal/domain/stockledger"
	"atelier/pkg/logger"
)

// ProductResolver resolves sale line products in one round trip.
type ProductResolver interface {
	GetMany(ctx context.Context, ids []id.ID) (map[id.ID]*product.Product, error)
}

// CustomerStore is the slice of the customer repository the coordinator uses.
type CustomerStore interface {
	Exists(ctx context.Context, customerID id.ID) (bool, error)
	StampFirstSale(ctx context.Context, customerID id.ID, at time.Time) error
}

// LocationStore checks that the sale's location exists.
type LocationStore interface {
	Exists(ctx context.Context, locationID id.ID) (bool, error)
}

// Service coordinates a sale transaction: reference resolution, pricing,
// persistence and stock effects run inside one database transaction, so a
// failure at any step leaves no trace.
type Service struct {
	repo      Repository
	products  ProductResolver
	customers CustomerStore
	locations LocationStore
	ledger    *stockledger.Service
	txManager tx.Manager
}

// NewService creates a new sale coordinator.
func NewService(
	repo Repository,
	products ProductResolver,
	customers CustomerStore,
	locations LocationStore,
	ledger *stockledger.Service,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		customers: customers,
		locations: locations,
		ledger:    ledger,
		txManager: txManager,
	}
}

// LineRequest is one requested product position.
type LineRequest struct {
	ProductID id.ID
	Quantity  int
}

// Request carries everything needed to record or rewrite a sale.
type Request struct {
	Date       time.Time
	CustomerID *id.ID
	LocationID id.ID

	IsWholesale    bool
	PackagingPrice decimal.Decimal
	PaymentMethod  PaymentMethod
	Comment        string

	Lines []LineRequest

	// Target anchors the discount: final price or percentage.
	Target pricing.Target
}

// Record prices and persists a new sale and deducts stock for its lines,
// all in one transaction. The first sale of a customer stamps their
// first-sale timestamp.
func (s *Service) Record(ctx context.Context, act actor.Actor, req Request) (*Sale, error) {
	var result *Sale
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sale, priced, err := s.buildSale(ctx, req)
		if err != nil {
			return err
		}
		sale.CreatedBy = act.Email

		if err := sale.Validate(ctx); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		if err := s.repo.ReplaceLines(ctx, sale.ID, sale.Lines); err != nil {
			return fmt.Errorf("save sale lines: %w", err)
		}

		if err := s.ledger.ApplySaleEffect(ctx, act, saleEffect(priced), stockledger.Deduct); err != nil {
			return err
		}

		if sale.CustomerID != nil {
			if err := s.customers.StampFirstSale(ctx, *sale.CustomerID, sale.Date); err != nil {
				return fmt.Errorf("stamp first sale: %w", err)
			}
		}

		result = sale
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale recorded",
		"saleId", result.ID,
		"finalTotal", result.FinalTotalPrice,
		"discountPercent", result.DiscountPercentage,
		"lines", len(result.Lines),
	)

	return result, nil
}

// Update rewrites an existing sale from the request and reprices it.
// The stored lines' deduction is restored and the new lines are deducted
// in the same transaction, so a later Delete always yields the pre-sale
// stock no matter how the sale was edited in between.
func (s *Service) Update(ctx context.Context, act actor.Actor, saleID id.ID, req Request) (*Sale, error) {
	var result *Sale
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, saleID)
		if err != nil {
			return s.notFound(err, saleID)
		}

		oldLines, err := s.repo.GetLines(ctx, saleID)
		if err != nil {
			return fmt.Errorf("load sale lines: %w", err)
		}

		sale, priced, err := s.buildSale(ctx, req)
		if err != nil {
			return err
		}

		// Keep document identity, replace everything else.
		sale.BaseEntity = existing.BaseEntity
		sale.CreatedBy = existing.CreatedBy
		sale.UpdatedBy = act.Email

		if err := sale.Validate(ctx); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, sale); err != nil {
			return fmt.Errorf("update sale: %w", err)
		}
		if err := s.repo.ReplaceLines(ctx, sale.ID, sale.Lines); err != nil {
			return fmt.Errorf("save sale lines: %w", err)
		}

		if err := s.ledger.ApplySaleEffect(ctx, act, lineEffect(oldLines), stockledger.Restore); err != nil {
			return err
		}
		if err := s.ledger.ApplySaleEffect(ctx, act, saleEffect(priced), stockledger.Deduct); err != nil {
			return err
		}

		result = sale
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale updated",
		"saleId", result.ID,
		"finalTotal", result.FinalTotalPrice,
		"discountPercent", result.DiscountPercentage,
	)

	return result, nil
}

// Delete restores the stock the sale had deducted and removes the document,
// in one transaction. Restore applies the recorded line quantities, the
// exact inverse of the deduction at record time.
func (s *Service) Delete(ctx context.Context, act actor.Actor, saleID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, saleID); err != nil {
			return s.notFound(err, saleID)
		}

		lines, err := s.repo.GetLines(ctx, saleID)
		if err != nil {
			return fmt.Errorf("load sale lines: %w", err)
		}

		if err := s.ledger.ApplySaleEffect(ctx, act, lineEffect(lines), stockledger.Restore); err != nil {
			return err
		}

		if err := s.repo.Delete(ctx, saleID); err != nil {
			return fmt.Errorf("delete sale: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "sale deleted", "saleId", saleID)
	return nil
}

// GetWithLines loads a sale and its line items.
func (s *Service) GetWithLines(ctx context.Context, saleID id.ID) (*Sale, error) {
	sale, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		return nil, s.notFound(err, saleID)
	}

	lines, err := s.repo.GetLines(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("load sale lines: %w", err)
	}
	sale.Lines = lines

	return sale, nil
}

// List retrieves sales matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) (domain.ListResult[*Sale], error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultFilter().Limit
	}
	return s.repo.List(ctx, filter)
}

// buildSale resolves references, prices the request and assembles the sale
// document. Any unknown reference aborts before anything is written.
func (s *Service) buildSale(ctx context.Context, req Request) (*Sale, pricing.Result, error) {
	if len(req.Lines) == 0 {
		return nil, pricing.Result{}, apperror.NewValidation("sale requires at least one line").
			WithDetail("field", "lines")
	}

	ok, err := s.locations.Exists(ctx, req.LocationID)
	if err != nil {
		return nil, pricing.Result{}, fmt.Errorf("check location: %w", err)
	}
	if !ok {
		return nil, pricing.Result{}, apperror.NewNotFound("location", req.LocationID.String())
	}

	if req.CustomerID != nil {
		ok, err := s.customers.Exists(ctx, *req.CustomerID)
		if err != nil {
			return nil, pricing.Result{}, fmt.Errorf("check customer: %w", err)
		}
		if !ok {
			return nil, pricing.Result{}, apperror.NewNotFound("customer", req.CustomerID.String())
		}
	}

	ids := make([]id.ID, 0, len(req.Lines))
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, pricing.Result{}, apperror.NewValidation("line quantity must be positive").
				WithDetail("productId", line.ProductID.String())
		}
		ids = append(ids, line.ProductID)
	}

	resolved, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, pricing.Result{}, fmt.Errorf("resolve products: %w", err)
	}

	priceLines := make([]pricing.Line, 0, len(req.Lines))
	for _, line := range req.Lines {
		p, ok := resolved[line.ProductID]
		if !ok {
			return nil, pricing.Result{}, apperror.NewNotFound("product", line.ProductID.String())
		}
		priceLines = append(priceLines, pricing.Line{
			ProductID:     p.ID,
			Quantity:      line.Quantity,
			UnitRetail:    p.FinalSellingPriceRetail,
			UnitWholesale: p.FinalSellingPriceWholesale,
		})
	}

	priced, err := pricing.PriceSale(priceLines, req.PackagingPrice, req.IsWholesale, req.Target)
	if err != nil {
		return nil, pricing.Result{}, err
	}

	sale := NewSale(req.LocationID)
	if !req.Date.IsZero() {
		sale.Date = req.Date
	}
	sale.CustomerID = req.CustomerID
	sale.IsWholesale = req.IsWholesale
	sale.PackagingPrice = req.PackagingPrice
	sale.PaymentMethod = req.PaymentMethod
	sale.Comment = req.Comment
	sale.SuggestedTotalPrice = priced.SuggestedTotal
	sale.FinalTotalPrice = priced.FinalTotal
	sale.DiscountPercentage = priced.DiscountPercent

	sale.Lines = make([]LineItem, 0, len(priced.Lines))
	for _, line := range priced.Lines {
		sale.Lines = append(sale.Lines, LineItem{
			LineID:                  id.New(),
			ProductID:               line.ProductID,
			Quantity:                line.Quantity,
			SuggestedPriceAtTheTime: line.SuggestedUnitPrice,
			PriceAtTheTime:          line.DiscountedUnitPrice,
		})
	}

	return sale, priced, nil
}

func (s *Service) notFound(err error, saleID id.ID) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound("sale", saleID.String())
	}
	return err
}

func lineEffect(lines []LineItem) []stockledger.SaleEffectLine {
	effect := make([]stockledger.SaleEffectLine, 0, len(lines))
	for _, line := range lines {
		effect = append(effect, stockledger.SaleEffectLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	return effect
}

func saleEffect(priced pricing.Result) []stockledger.SaleEffectLine {
	effect := make([]stockledger.SaleEffectLine, 0, len(priced.Lines))
	for _, line := range priced.Lines {
		effect = append(effect, stockledger.SaleEffectLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	return effect
}
