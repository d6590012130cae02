package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/core/tx"
	"atelier/internal/domain"
	"atelier/internal/domain/catalogs/material"
	"atelier/internal/domain/costing"
	"atelier/internal/domain/stockledger"
	"atelier/pkg/logger"
)

// errSkipUnchanged aborts the per-product transaction when the freshly
// computed prices match the stored ones. Nothing was written, so the
// rollback is a no-op and the product counts as skipped.
var errSkipUnchanged = errors.New("suggested prices unchanged")

// Service provides business logic for the Product catalog and hosts the
// operations that join products with the cost model: line mutation with
// immediate recompute, bulk recalculation and the mispricing report.
type Service struct {
	*domain.ReferenceService[*Product]

	repo      Repository
	materials material.Repository
	txManager tx.Manager
}

// NewService creates a new Product service.
func NewService(repo Repository, materials material.Repository, txManager tx.Manager) *Service {
	base := domain.NewReferenceService(domain.ReferenceServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "product",
	})

	svc := &Service{
		ReferenceService: base,
		repo:             repo,
		materials:        materials,
		txManager:        txManager,
	}

	base.Hooks().OnBeforeCreate(svc.checkCodeUnique)
	base.Hooks().OnBeforeUpdate(svc.checkCodeUnique)

	return svc
}

func (s *Service) checkCodeUnique(ctx context.Context, item *Product) error {
	existing, err := s.repo.GetByCode(ctx, item.Code)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != item.ID {
		return apperror.NewDuplicate("product", "code", item.Code)
	}
	return nil
}

// Create validates the product, derives its suggested prices from the cost
// inputs and persists the row together with its table parts.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	if err := s.Hooks().Run(ctx, domain.BeforeCreate, p); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.applySuggestedPrices(ctx, p); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		if err := s.repo.ReplaceLines(ctx, p.ID, p.MaterialLines, p.ProcedureLines); err != nil {
			return fmt.Errorf("save product lines: %w", err)
		}
		return nil
	})
}

// Update validates and persists the product, replacing its table parts and
// recomputing the suggested prices since any cost input may have changed.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	if err := s.Hooks().Run(ctx, domain.BeforeUpdate, p); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.applySuggestedPrices(ctx, p); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		if err := s.repo.ReplaceLines(ctx, p.ID, p.MaterialLines, p.ProcedureLines); err != nil {
			return fmt.Errorf("save product lines: %w", err)
		}
		return nil
	})
}

// GetWithLines loads a product and attaches its table parts.
func (s *Service) GetWithLines(ctx context.Context, productID id.ID) (*Product, error) {
	p, err := s.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	materials, procedures, err := s.repo.GetLines(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product lines: %w", err)
	}
	p.MaterialLines = materials
	p.ProcedureLines = procedures

	return p, nil
}

// AddMaterialLine appends a material line and recomputes the suggested
// prices. The quantity is validated before any cost work happens.
func (s *Service) AddMaterialLine(ctx context.Context, productID, materialID id.ID, quantity decimal.Decimal) (*Product, error) {
	if err := validateLineAmount("quantity", quantity); err != nil {
		return nil, err
	}

	var p *Product
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.materials.Exists(ctx, materialID)
		if err != nil {
			return fmt.Errorf("check material: %w", err)
		}
		if !exists {
			return apperror.NewNotFound("material", materialID.String())
		}

		p, err = s.GetWithLines(ctx, productID)
		if err != nil {
			return err
		}

		p.MaterialLines = append(p.MaterialLines, MaterialLine{
			LineID:     id.New(),
			MaterialID: materialID,
			Quantity:   quantity,
		})

		return s.persistLines(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// RemoveMaterialLine deletes one material line and recomputes the prices.
func (s *Service) RemoveMaterialLine(ctx context.Context, productID, lineID id.ID) (*Product, error) {
	var p *Product
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.GetWithLines(ctx, productID)
		if err != nil {
			return err
		}

		kept := p.MaterialLines[:0]
		found := false
		for _, line := range p.MaterialLines {
			if line.LineID == lineID {
				found = true
				continue
			}
			kept = append(kept, line)
		}
		if !found {
			return apperror.NewNotFound("material line", lineID.String())
		}
		p.MaterialLines = kept

		return s.persistLines(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// AddProcedureLine appends a procedure line and recomputes the prices.
func (s *Service) AddProcedureLine(ctx context.Context, productID, procedureID id.ID, cost decimal.Decimal) (*Product, error) {
	if err := validateLineAmount("cost", cost); err != nil {
		return nil, err
	}

	var p *Product
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.GetWithLines(ctx, productID)
		if err != nil {
			return err
		}

		p.ProcedureLines = append(p.ProcedureLines, ProcedureLine{
			LineID:      id.New(),
			ProcedureID: procedureID,
			Cost:        cost,
		})

		return s.persistLines(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// RemoveProcedureLine deletes one procedure line and recomputes the prices.
func (s *Service) RemoveProcedureLine(ctx context.Context, productID, lineID id.ID) (*Product, error) {
	var p *Product
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.GetWithLines(ctx, productID)
		if err != nil {
			return err
		}

		kept := p.ProcedureLines[:0]
		found := false
		for _, line := range p.ProcedureLines {
			if line.LineID == lineID {
				found = true
				continue
			}
			kept = append(kept, line)
		}
		if !found {
			return apperror.NewNotFound("procedure line", lineID.String())
		}
		p.ProcedureLines = kept

		return s.persistLines(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// persistLines recomputes the suggested prices from the product's current
// lines and writes both the table parts and the new prices.
func (s *Service) persistLines(ctx context.Context, p *Product) error {
	if err := s.applySuggestedPrices(ctx, p); err != nil {
		return err
	}
	if err := s.repo.ReplaceLines(ctx, p.ID, p.MaterialLines, p.ProcedureLines); err != nil {
		return fmt.Errorf("save product lines: %w", err)
	}
	if err := s.repo.UpdateSuggestedPrices(ctx, p.ID, p.SuggestedRetailSellingPrice, p.SuggestedWholesaleSellingPrice); err != nil {
		return fmt.Errorf("update suggested prices: %w", err)
	}
	return nil
}

// applySuggestedPrices resolves the cost inputs and writes the computed
// prices onto the product struct.
func (s *Service) applySuggestedPrices(ctx context.Context, p *Product) error {
	inputs, err := s.resolveInputs(ctx, p)
	if err != nil {
		return err
	}

	prices := costing.ComputeSuggestedPrices(inputs)
	p.SuggestedRetailSellingPrice = prices.Retail
	p.SuggestedWholesaleSellingPrice = prices.Wholesale

	return nil
}

// resolveInputs turns the product's lines into cost-model inputs by looking
// up each material's current unit cost.
func (s *Service) resolveInputs(ctx context.Context, p *Product) (costing.Inputs, error) {
	inputs := costing.Inputs{
		MinutesToMake: p.MinutesToMake,
	}

	for _, line := range p.MaterialLines {
		m, err := s.materials.GetByID(ctx, line.MaterialID)
		if err != nil {
			return costing.Inputs{}, fmt.Errorf("resolve material %s: %w", line.MaterialID, err)
		}
		inputs.MaterialLines = append(inputs.MaterialLines, costing.MaterialLineInput{
			UnitCost: m.CurrentUnitCost,
			Quantity: decimal.NullDecimal{Decimal: line.Quantity, Valid: true},
		})
	}

	for _, line := range p.ProcedureLines {
		inputs.ProcedureCosts = append(inputs.ProcedureCosts, line.Cost)
	}

	return inputs, nil
}

// RecalculateAll recomputes the suggested prices of every active product.
// Products whose stored prices already match are skipped, which makes the
// operation idempotent. A failure is counted and never aborts the batch.
func (s *Service) RecalculateAll(ctx context.Context) (costing.RecalcSummary, error) {
	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return costing.RecalcSummary{}, fmt.Errorf("list products: %w", err)
	}

	var summary costing.RecalcSummary
	for _, p := range products {
		switch err := s.recalculateOne(ctx, p); {
		case err == nil:
			summary.Updated++
		case errors.Is(err, errSkipUnchanged):
			summary.Skipped++
		default:
			summary.Failed++
			logger.Warn(ctx, "price recalculation failed",
				"productId", p.ID,
				"code", p.Code,
				"error", err,
			)
		}
	}

	logger.Info(ctx, "bulk price recalculation finished",
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)

	return summary, nil
}

func (s *Service) recalculateOne(ctx context.Context, p *Product) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		materials, procedures, err := s.repo.GetLines(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("load lines: %w", err)
		}
		p.MaterialLines = materials
		p.ProcedureLines = procedures

		oldRetail := p.SuggestedRetailSellingPrice
		oldWholesale := p.SuggestedWholesaleSellingPrice

		if err := s.applySuggestedPrices(ctx, p); err != nil {
			return err
		}

		if p.SuggestedRetailSellingPrice.Equal(oldRetail) &&
			p.SuggestedWholesaleSellingPrice.Equal(oldWholesale) {
			return errSkipUnchanged
		}

		return s.repo.UpdateSuggestedPrices(ctx, p.ID,
			p.SuggestedRetailSellingPrice, p.SuggestedWholesaleSellingPrice)
	})
}

// MispricedProduct is one row of the mispricing report.
type MispricedProduct struct {
	ProductID id.ID  `json:"productId"`
	Code      string `json:"code"`
	Name      string `json:"name"`

	SuggestedRetail    decimal.Decimal `json:"suggestedRetail"`
	FinalRetail        decimal.Decimal `json:"finalRetail"`
	SuggestedWholesale decimal.Decimal `json:"suggestedWholesale"`
	FinalWholesale     decimal.Decimal `json:"finalWholesale"`

	costing.Mispricing
}

// MispricingReport returns every active product whose final price deviates
// from its suggested price by at least the threshold on either channel.
// A non-positive threshold falls back to the default.
func (s *Service) MispricingReport(ctx context.Context, threshold decimal.Decimal) ([]MispricedProduct, error) {
	if !threshold.IsPositive() {
		threshold = costing.DefaultMispricingThreshold
	}

	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	report := make([]MispricedProduct, 0)
	for _, p := range products {
		result := costing.DetectMispricing(
			p.SuggestedRetailSellingPrice, p.FinalSellingPriceRetail,
			p.SuggestedWholesaleSellingPrice, p.FinalSellingPriceWholesale,
			threshold,
		)
		if !result.Flagged {
			continue
		}

		report = append(report, MispricedProduct{
			ProductID:          p.ID,
			Code:               p.Code,
			Name:               p.Name,
			SuggestedRetail:    p.SuggestedRetailSellingPrice,
			FinalRetail:        p.FinalSellingPriceRetail,
			SuggestedWholesale: p.SuggestedWholesaleSellingPrice,
			FinalWholesale:     p.FinalSellingPriceWholesale,
			Mispricing:         result,
		})
	}

	return report, nil
}

// StockAlert is one stock-tracked product whose counter needs attention.
type StockAlert struct {
	ProductID     id.ID              `json:"productId"`
	Code          string             `json:"code"`
	Name          string             `json:"name"`
	Stock         int                `json:"stock"`
	LowStockAlert int                `json:"lowStockAlert"`
	Status        stockledger.Status `json:"status"`
}

// StockAlerts lists active stock-tracked products in LOW or NEGATIVE state.
func (s *Service) StockAlerts(ctx context.Context) ([]StockAlert, error) {
	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	alerts := make([]StockAlert, 0)
	for _, p := range products {
		if !p.IsStockTracked() {
			continue
		}
		status := stockledger.Classify(*p.Stock, p.LowStockAlert)
		if status == stockledger.StatusNormal {
			continue
		}
		alerts = append(alerts, StockAlert{
			ProductID:     p.ID,
			Code:          p.Code,
			Name:          p.Name,
			Stock:         *p.Stock,
			LowStockAlert: p.LowStockAlert,
			Status:        status,
		})
	}

	return alerts, nil
}
