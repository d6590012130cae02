// Package category provides the product category catalog.
package category

import (
	"context"

	"atelier/internal/core/apperror"
	"atelier/internal/core/entity"
	"atelier/internal/domain"
)

// Category groups products. Deleting a category with products falls back to
// a soft delete so existing products keep a valid reference.
type Category struct {
	entity.Reference

	// Description is an optional free-form note
	Description *string `db:"description" json:"description,omitempty"`
}

// NewCategory creates a new Category.
func NewCategory(code, name string) *Category {
	return &Category{
		Reference: entity.NewReference(code, name),
	}
}

// Repository defines the interface for Category persistence.
// Dependents counted by the lifecycle policy are products.
type Repository interface {
	domain.ReferenceRepository[*Category]
}

// Service provides business logic for the Category catalog.
type Service struct {
	*domain.ReferenceService[*Category]
	repo Repository
}

// NewService creates a new Category service.
func NewService(repo Repository, cfg domain.ReferenceServiceConfig[*Category]) *Service {
	cfg.Repo = repo
	cfg.EntityName = "category"
	base := domain.NewReferenceService(cfg)

	svc := &Service{
		ReferenceService: base,
		repo:             repo,
	}

	base.Hooks().OnBeforeCreate(svc.checkNameUnique)
	base.Hooks().OnBeforeUpdate(svc.checkNameUnique)

	return svc
}

func (s *Service) checkNameUnique(ctx context.Context, item *Category) error {
	existing, err := s.repo.GetByCode(ctx, item.Code)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != item.ID {
		return apperror.NewDuplicate("category", "code", item.Code)
	}
	return nil
}
