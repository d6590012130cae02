package reference_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"atelier/internal/core/id"
	"atelier/internal/domain/catalogs/supplier"
	"atelier/internal/storage/postgres"
)

const supplierTable = "cat_supplier"

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	*BaseReferenceRepo[*supplier.Supplier]
}

// NewSupplierRepo creates a new supplier repository.
func NewSupplierRepo(txm *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		BaseReferenceRepo: NewBaseReferenceRepo(txm, supplierTable,
			func() *supplier.Supplier { return &supplier.Supplier{} }),
	}
}

// FindByTIN retrieves an active supplier by tax identification number.
func (r *SupplierRepo) FindByTIN(ctx context.Context, tin string) (*supplier.Supplier, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"tin": tin}).
		Where(squirrel.Eq{"active": true}).
		Limit(1)

	return r.findOne(ctx, q, tin)
}

// CountDependents counts materials and purchases referencing the supplier.
func (r *SupplierRepo) CountDependents(ctx context.Context, supplierID id.ID) (int64, error) {
	inMaterials, err := r.CountIn(ctx, "cat_material", "supplier_id", supplierID)
	if err != nil {
		return 0, err
	}
	inPurchases, err := r.CountIn(ctx, "doc_purchase", "supplier_id", supplierID)
	if err != nil {
		return 0, err
	}
	return inMaterials + inPurchases, nil
}
