package reference_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"atelier/internal/core/id"
	"atelier/internal/domain/catalogs/customer"
	"atelier/internal/storage/postgres"
)

const customerTable = "cat_customer"

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	*BaseReferenceRepo[*customer.Customer]
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txm *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		BaseReferenceRepo: NewBaseReferenceRepo(txm, customerTable,
			func() *customer.Customer { return &customer.Customer{} }),
	}
}

// FindByEmail retrieves an active customer by email.
func (r *CustomerRepo) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"email": email}).
		Where(squirrel.Eq{"active": true}).
		Limit(1)

	return r.findOne(ctx, q, email)
}

// FindByTIN retrieves an active customer by tax identification number.
func (r *CustomerRepo) FindByTIN(ctx context.Context, tin string) (*customer.Customer, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"tin": tin}).
		Where(squirrel.Eq{"active": true}).
		Limit(1)

	return r.findOne(ctx, q, tin)
}

// StampFirstSale sets first_sale_at once; later sales leave it alone.
func (r *CustomerRepo) StampFirstSale(ctx context.Context, customerID id.ID, at time.Time) error {
	q := r.Builder().
		Update(customerTable).
		Set("first_sale_at", at).
		Where(squirrel.Eq{"id": customerID}).
		Where(squirrel.Eq{"first_sale_at": nil})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build stamp first sale: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("stamp first sale: %w", err)
	}

	return nil
}

// CountDependents counts sales referencing the customer.
func (r *CustomerRepo) CountDependents(ctx context.Context, customerID id.ID) (int64, error) {
	return r.CountIn(ctx, "doc_sale", "customer_id", customerID)
}
