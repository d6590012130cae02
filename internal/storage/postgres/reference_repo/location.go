package reference_repo

import (
	"context"

	"atelier/internal/core/id"
	"atelier/internal/domain/catalogs/location"
	"atelier/internal/storage/postgres"
)

const locationTable = "cat_location"

// LocationRepo implements location.Repository.
type LocationRepo struct {
	*BaseReferenceRepo[*location.Location]
}

// NewLocationRepo creates a new location repository.
func NewLocationRepo(txm *postgres.TxManager) *LocationRepo {
	return &LocationRepo{
		BaseReferenceRepo: NewBaseReferenceRepo(txm, locationTable,
			func() *location.Location { return &location.Location{} }),
	}
}

// CountDependents counts sales recorded at the location.
func (r *LocationRepo) CountDependents(ctx context.Context, locationID id.ID) (int64, error) {
	return r.CountIn(ctx, "doc_sale", "location_id", locationID)
}
