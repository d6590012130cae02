// Package material provides the raw material catalog.
// A material's current unit cost feeds the product cost model.
package material

import (
	"context"

	"github.com/shopspring/decimal"

	"atelier/internal/core/apperror"
	"atelier/internal/core/entity"
	"atelier/internal/core/id"
	"atelier/internal/domain"
)

// Material is a raw input consumed by products. Products and purchases
// reference materials, so deletion follows the lifecycle policy.
type Material struct {
	entity.Reference

	// Unit is the unit of measure (g, ml, pcs)
	Unit string `db:"unit" json:"unit"`

	// CurrentUnitCost is the latest known cost per unit. Null while no
	// purchase has established one; cost-model lines with a null cost
	// contribute zero.
	CurrentUnitCost decimal.NullDecimal `db:"current_unit_cost" json:"currentUnitCost"`

	// SupplierID is an optional reference to the usual supplier
	SupplierID *id.ID `db:"supplier_id" json:"supplierId,omitempty"`
}

// NewMaterial creates a new Material.
func NewMaterial(code, name, unit string) *Material {
	return &Material{
		Reference: entity.NewReference(code, name),
		Unit:      unit,
	}
}

// Validate implements entity.Validatable.
func (m *Material) Validate(ctx context.Context) error {
	if err := m.Reference.Validate(ctx); err != nil {
		return err
	}

	if m.CurrentUnitCost.Valid && m.CurrentUnitCost.Decimal.IsNegative() {
		return apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "currentUnitCost")
	}

	return nil
}

// UnitCostOrZero returns the current unit cost, zero when unset.
func (m *Material) UnitCostOrZero() decimal.Decimal {
	if !m.CurrentUnitCost.Valid {
		return decimal.Zero
	}
	return m.CurrentUnitCost.Decimal
}

// Repository defines the interface for Material persistence.
// Dependents counted by the lifecycle policy are product material lines
// and purchase lines.
type Repository interface {
	domain.ReferenceRepository[*Material]

	// UpdateCurrentUnitCost sets the latest unit cost (from purchases).
	UpdateCurrentUnitCost(ctx context.Context, materialID id.ID, cost decimal.Decimal) error
}

// Service provides business logic for the Material catalog.
type Service struct {
	*domain.ReferenceService[*Material]
	repo Repository
}

// NewService creates a new Material service.
func NewService(repo Repository, cfg domain.ReferenceServiceConfig[*Material]) *Service {
	cfg.Repo = repo
	cfg.EntityName = "material"
	base := domain.NewReferenceService(cfg)

	svc := &Service{
		ReferenceService: base,
		repo:             repo,
	}

	base.Hooks().OnBeforeCreate(svc.checkCodeUnique)
	base.Hooks().OnBeforeUpdate(svc.checkCodeUnique)

	return svc
}

func (s *Service) checkCodeUnique(ctx context.Context, item *Material) error {
	existing, err := s.repo.GetByCode(ctx, item.Code)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != item.ID {
		return apperror.NewDuplicate("material", "code", item.Code)
	}
	return nil
}

// SetCurrentUnitCost updates the material's latest unit cost. Called by the
// purchase service after a purchase line establishes a newer price.
func (s *Service) SetCurrentUnitCost(ctx context.Context, materialID id.ID, cost decimal.Decimal) error {
	if cost.IsNegative() {
		return apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "cost")
	}
	return s.repo.UpdateCurrentUnitCost(ctx, materialID, cost)
}
