// Package procedure provides the manufacturing procedure catalog
// (plating, firing, polishing and similar outsourced or priced steps).
package procedure

import (
	"atelier/internal/core/entity"
	"atelier/internal/domain"
)

// Procedure is a named manufacturing step. The cost is recorded per product
// line, not on the catalog row, because the same step prices differently per
// product.
type Procedure struct {
	entity.Reference

	Description *string `db:"description" json:"description,omitempty"`
}

// NewProcedure creates a new Procedure.
func NewProcedure(code, name string) *Procedure {
	return &Procedure{
		Reference: entity.NewReference(code, name),
	}
}

// Repository defines the interface for Procedure persistence.
// Dependents counted by the lifecycle policy are product procedure lines.
type Repository interface {
	domain.ReferenceRepository[*Procedure]
}

// Service provides business logic for the Procedure catalog.
type Service struct {
	*domain.ReferenceService[*Procedure]
}

// NewService creates a new Procedure service.
func NewService(repo Repository, cfg domain.ReferenceServiceConfig[*Procedure]) *Service {
	cfg.Repo = repo
	cfg.EntityName = "procedure"
	return &Service{
		ReferenceService: domain.NewReferenceService(cfg),
	}
}
