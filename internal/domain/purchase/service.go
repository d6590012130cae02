package purchase

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
	"atelier/pkg/logger"
)

// Repository defines the interface for Purchase persistence.
type Repository interface {
	Create(ctx context.Context, p *Purchase) error
	GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error)
	Update(ctx context.Context, p *Purchase) error
	Delete(ctx context.Context, purchaseID id.ID) error

	GetLines(ctx context.Context, purchaseID id.ID) ([]LineItem, error)
	ReplaceLines(ctx context.Context, purchaseID id.ID, lines []LineItem) error

	List(ctx context.Context, filter Filter) (domain.ListResult[*Purchase], error)
}

// SupplierStore checks that the purchase's supplier exists.
type SupplierStore interface {
	Exists(ctx context.Context, supplierID id.ID) (bool, error)
}

// MaterialCoster receives the newest unit cost per purchased material.
type MaterialCoster interface {
	Exists(ctx context.Context, materialID id.ID) (bool, error)
	UpdateCurrentUnitCost(ctx context.Context, materialID id.ID, cost decimal.Decimal) error
}

// Service records purchases and propagates the bought unit costs to the
// material catalog.
type Service struct {
	repo      Repository
	suppliers SupplierStore
	materials MaterialCoster
	txManager tx.Manager
}

// NewService creates a new purchase service.
func NewService(repo Repository, suppliers SupplierStore, materials MaterialCoster, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		suppliers: suppliers,
		materials: materials,
		txManager: txManager,
	}
}

// LineRequest is one requested material position.
type LineRequest struct {
	MaterialID id.ID
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
}

// Request carries everything needed to record or rewrite a purchase.
type Request struct {
	Date       time.Time
	SupplierID id.ID
	Comment    string
	Lines      []LineRequest
}

// Record persists a new purchase and stamps each line's unit cost onto the
// material as its current cost, in one transaction.
func (s *Service) Record(ctx context.Context, act actor.Actor, req Request) (*Purchase, error) {
	var result *Purchase
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.build(ctx, req)
		if err != nil {
			return err
		}
		p.CreatedBy = act.Email

		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}
		if err := s.repo.ReplaceLines(ctx, p.ID, p.Lines); err != nil {
			return fmt.Errorf("save purchase lines: %w", err)
		}

		if err := s.propagateCosts(ctx, p.Lines); err != nil {
			return err
		}

		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase recorded",
		"purchaseId", result.ID,
		"supplierId", result.SupplierID,
		"totalCost", result.TotalCost,
		"lines", len(result.Lines),
	)

	return result, nil
}

// Update rewrites an existing purchase and re-propagates the unit costs.
func (s *Service) Update(ctx context.Context, act actor.Actor, purchaseID id.ID, req Request) (*Purchase, error) {
	var result *Purchase
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetByID(ctx, purchaseID)
		if err != nil {
			return s.notFound(err, purchaseID)
		}

		p, err := s.build(ctx, req)
		if err != nil {
			return err
		}
		p.BaseEntity = existing.BaseEntity
		p.CreatedBy = existing.CreatedBy
		p.UpdatedBy = act.Email

		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update purchase: %w", err)
		}
		if err := s.repo.ReplaceLines(ctx, p.ID, p.Lines); err != nil {
			return fmt.Errorf("save purchase lines: %w", err)
		}

		if err := s.propagateCosts(ctx, p.Lines); err != nil {
			return err
		}

		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase updated", "purchaseId", result.ID, "totalCost", result.TotalCost)
	return result, nil
}

// Delete removes the purchase. Material costs established by it stay as
// they are; only a newer purchase moves them again.
func (s *Service) Delete(ctx context.Context, act actor.Actor, purchaseID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, purchaseID); err != nil {
			return s.notFound(err, purchaseID)
		}
		if err := s.repo.Delete(ctx, purchaseID); err != nil {
			return fmt.Errorf("delete purchase: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "purchase deleted", "purchaseId", purchaseID)
	return nil
}

// GetWithLines loads a purchase and its line items.
func (s *Service) GetWithLines(ctx context.Context, purchaseID id.ID) (*Purchase, error) {
	p, err := s.repo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, s.notFound(err, purchaseID)
	}

	lines, err := s.repo.GetLines(ctx, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("load purchase lines: %w", err)
	}
	p.Lines = lines

	return p, nil
}

// List retrieves purchases matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) (domain.ListResult[*Purchase], error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) build(ctx context.Context, req Request) (*Purchase, error) {
	ok, err := s.suppliers.Exists(ctx, req.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("check supplier: %w", err)
	}
	if !ok {
		return nil, apperror.NewNotFound("supplier", req.SupplierID.String())
	}

	p := NewPurchase(req.SupplierID)
	if !req.Date.IsZero() {
		p.Date = req.Date
	}
	p.Comment = req.Comment

	for _, line := range req.Lines {
		ok, err := s.materials.Exists(ctx, line.MaterialID)
		if err != nil {
			return nil, fmt.Errorf("check material: %w", err)
		}
		if !ok {
			return nil, apperror.NewNotFound("material", line.MaterialID.String())
		}
		p.Lines = append(p.Lines, LineItem{
			LineID:     id.New(),
			MaterialID: line.MaterialID,
			Quantity:   line.Quantity,
			UnitCost:   line.UnitCost,
		})
	}
	p.RecalcTotal()

	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	return p, nil
}

// propagateCosts stamps each line's unit cost onto its material. The last
// line wins when a material appears twice.
func (s *Service) propagateCosts(ctx context.Context, lines []LineItem) error {
	for _, line := range lines {
		if err := s.materials.UpdateCurrentUnitCost(ctx, line.MaterialID, line.UnitCost); err != nil {
			return fmt.Errorf("update material cost: %w", err)
		}
	}
	return nil
}

func (s *Service) notFound(err error, purchaseID id.ID) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound("purchase", purchaseID.String())
	}
	return err
}
