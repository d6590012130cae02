// Package supplier provides the Supplier catalog.
package supplier

import (
	"context"

	"atelier/internal/core/apperror"
	"atelier/internal/core/entity"
	"atelier/internal/domain"
)

// Supplier sells raw materials to the workshop. Purchases reference a
// supplier, so deletion follows the lifecycle policy.
type Supplier struct {
	entity.Reference

	Email *string `db:"email" json:"email,omitempty"`
	Phone *string `db:"phone" json:"phone,omitempty"`
	TIN   *string `db:"tin" json:"tin,omitempty"`
}

// NewSupplier creates a new Supplier.
func NewSupplier(code, name string) *Supplier {
	return &Supplier{
		Reference: entity.NewReference(code, name),
	}
}

// Repository defines the interface for Supplier persistence.
// Dependents counted by the lifecycle policy are purchases.
type Repository interface {
	domain.ReferenceRepository[*Supplier]

	// FindByTIN retrieves a supplier by tax identification number.
	FindByTIN(ctx context.Context, tin string) (*Supplier, error)
}

// Service provides business logic for the Supplier catalog.
type Service struct {
	*domain.ReferenceService[*Supplier]
	repo Repository
}

// NewService creates a new Supplier service.
func NewService(repo Repository, cfg domain.ReferenceServiceConfig[*Supplier]) *Service {
	cfg.Repo = repo
	cfg.EntityName = "supplier"
	base := domain.NewReferenceService(cfg)

	svc := &Service{
		ReferenceService: base,
		repo:             repo,
	}

	base.Hooks().OnBeforeCreate(svc.checkTINUnique)
	base.Hooks().OnBeforeUpdate(svc.checkTINUnique)

	return svc
}

func (s *Service) checkTINUnique(ctx context.Context, item *Supplier) error {
	if item.TIN == nil || *item.TIN == "" {
		return nil
	}
	existing, err := s.repo.FindByTIN(ctx, *item.TIN)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != item.ID {
		return apperror.NewDuplicate("supplier", "tin", *item.TIN)
	}
	return nil
}
