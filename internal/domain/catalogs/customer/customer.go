// Package customer provides the Customer catalog.
package customer

import (
	"context"
	"strings"
	"time"

	"atelier/internal/core/apperror"
	"atelier/internal/core/entity"
	"atelier/internal/core/id"
	"atelier/internal/domain"
)

// Customer represents a buyer. Sales may reference a customer, so deletion
// follows the lifecycle policy (soft delete while sales exist).
type Customer struct {
	entity.Reference

	Email *string `db:"email" json:"email,omitempty"`
	Phone *string `db:"phone" json:"phone,omitempty"`

	// TIN is the tax identification number (unique when present)
	TIN *string `db:"tin" json:"tin,omitempty"`

	// FirstSaleAt is stamped by the sale coordinator on the customer's
	// first recorded sale, never changed afterwards.
	FirstSaleAt *time.Time `db:"first_sale_at" json:"firstSaleAt,omitempty"`
}

// NewCustomer creates a new Customer.
func NewCustomer(code, name string) *Customer {
	return &Customer{
		Reference: entity.NewReference(code, name),
	}
}

// Validate implements entity.Validatable.
func (c *Customer) Validate(ctx context.Context) error {
	if err := c.Reference.Validate(ctx); err != nil {
		return err
	}

	if c.Email != nil && *c.Email != "" && !strings.Contains(*c.Email, "@") {
		return apperror.NewValidation("invalid email").
			WithDetail("field", "email")
	}

	return nil
}

// Repository defines the interface for Customer persistence.
// Dependents counted by the lifecycle policy are sales.
type Repository interface {
	domain.ReferenceRepository[*Customer]

	// FindByEmail retrieves a customer by email.
	FindByEmail(ctx context.Context, email string) (*Customer, error)

	// FindByTIN retrieves a customer by tax identification number.
	FindByTIN(ctx context.Context, tin string) (*Customer, error)

	// StampFirstSale sets first_sale_at if it is still null.
	StampFirstSale(ctx context.Context, customerID id.ID, at time.Time) error
}

// Service provides business logic for the Customer catalog.
type Service struct {
	*domain.ReferenceService[*Customer]
	repo Repository
}

// NewService creates a new Customer service.
func NewService(repo Repository, cfg domain.ReferenceServiceConfig[*Customer]) *Service {
	cfg.Repo = repo
	cfg.EntityName = "customer"
	base := domain.NewReferenceService(cfg)

	svc := &Service{
		ReferenceService: base,
		repo:             repo,
	}

	base.Hooks().OnBeforeCreate(svc.checkUnique)
	base.Hooks().OnBeforeUpdate(svc.checkUnique)

	return svc
}

// checkUnique rejects duplicate email and TIN before any mutation.
func (s *Service) checkUnique(ctx context.Context, item *Customer) error {
	if item.Email != nil && *item.Email != "" {
		existing, err := s.repo.FindByEmail(ctx, *item.Email)
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}
		if err == nil && existing.ID != item.ID {
			return apperror.NewDuplicate("customer", "email", *item.Email)
		}
	}

	if item.TIN != nil && *item.TIN != "" {
		existing, err := s.repo.FindByTIN(ctx, *item.TIN)
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}
		if err == nil && existing.ID != item.ID {
			return apperror.NewDuplicate("customer", "tin", *item.TIN)
		}
	}

	return nil
}
