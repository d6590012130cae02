package reference_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/domain/catalogs/material"
	"atelier/internal/storage/postgres"
)

const materialTable = "cat_material"

// MaterialRepo implements material.Repository.
type MaterialRepo struct {
	*BaseReferenceRepo[*material.Material]
}

// NewMaterialRepo creates a new material repository.
func NewMaterialRepo(txm *postgres.TxManager) *MaterialRepo {
	return &MaterialRepo{
		BaseReferenceRepo: NewBaseReferenceRepo(txm, materialTable,
			func() *material.Material { return &material.Material{} }),
	}
}

// UpdateCurrentUnitCost stores the latest purchased unit cost.
func (r *MaterialRepo) UpdateCurrentUnitCost(ctx context.Context, materialID id.ID, cost decimal.Decimal) error {
	q := r.Builder().
		Update(materialTable).
		Set("current_unit_cost", cost).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": materialID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build cost update: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update material cost: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("material", materialID.String())
	}

	return nil
}

// CountDependents counts product lines and purchase lines using the material.
func (r *MaterialRepo) CountDependents(ctx context.Context, materialID id.ID) (int64, error) {
	inProducts, err := r.CountIn(ctx, "product_material_line", "material_id", materialID)
	if err != nil {
		return 0, err
	}
	inPurchases, err := r.CountIn(ctx, "purchase_line", "material_id", materialID)
	if err != nil {
		return 0, err
	}
	return inProducts + inPurchases, nil
}
