package reference_repo

import (
	"context"

	"atelier/internal/core/id"
	"atelier/internal/domain/catalogs/category"
	"atelier/internal/storage/postgres"
)

const categoryTable = "cat_category"

// CategoryRepo implements category.Repository.
type CategoryRepo struct {
	*BaseReferenceRepo[*category.Category]
}

// NewCategoryRepo creates a new category repository.
func NewCategoryRepo(txm *postgres.TxManager) *CategoryRepo {
	return &CategoryRepo{
		BaseReferenceRepo: NewBaseReferenceRepo(txm, categoryTable,
			func() *category.Category { return &category.Category{} }),
	}
}

// CountDependents counts products assigned to the category.
func (r *CategoryRepo) CountDependents(ctx context.Context, categoryID id.ID) (int64, error) {
	return r.CountIn(ctx, "cat_product", "category_id", categoryID)
}
