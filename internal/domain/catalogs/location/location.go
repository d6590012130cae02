// Package location provides the sales location catalog (store, market stall,
// online channel).
package location

import (
	"atelier/internal/core/entity"
	"atelier/internal/domain"
)

// Location is a place where sales are recorded. Sales reference a location,
// so deletion follows the lifecycle policy.
type Location struct {
	entity.Reference

	Address *string `db:"address" json:"address,omitempty"`
}

// NewLocation creates a new Location.
func NewLocation(code, name string) *Location {
	return &Location{
		Reference: entity.NewReference(code, name),
	}
}

// Repository defines the interface for Location persistence.
type Repository interface {
	domain.ReferenceRepository[*Location]
}

// Service provides business logic for the Location catalog.
type Service struct {
	*domain.ReferenceService[*Location]
}

// NewService creates a new Location service.
func NewService(repo Repository, cfg domain.ReferenceServiceConfig[*Location]) *Service {
	cfg.Repo = repo
	cfg.EntityName = "location"
	return &Service{
		ReferenceService: domain.NewReferenceService(cfg),
	}
}
