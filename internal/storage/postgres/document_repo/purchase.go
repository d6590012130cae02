package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"atelier/internal/core/id"
	"atelier/internal/domain"
	"atelier/internal/domain/purchase"
	"atelier/internal/storage/postgres"
)

const (
	purchaseTable     = "doc_purchase"
	purchaseLineTable = "purchase_line"
)

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct {
	*BaseDocumentRepo[*purchase.Purchase]
}

// NewPurchaseRepo creates a Purchase repository.
func NewPurchaseRepo(txm *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(txm, purchaseTable, purchaseLineTable, func() *purchase.Purchase {
			return &purchase.Purchase{}
		}),
	}
}

// GetLines loads the purchase's line items.
func (r *PurchaseRepo) GetLines(ctx context.Context, purchaseID id.ID) ([]purchase.LineItem, error) {
	q := r.Builder().
		Select("line_id", "material_id", "quantity", "unit_cost").
		From(purchaseLineTable).
		Where(squirrel.Eq{"document_id": purchaseID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []purchase.LineItem
	if err := pgxscan.Select(ctx, r.Querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get purchase lines: %w", err)
	}

	return lines, nil
}

// ReplaceLines rewrites the purchase's line items.
func (r *PurchaseRepo) ReplaceLines(ctx context.Context, purchaseID id.ID, lines []purchase.LineItem) error {
	if err := r.deleteLines(ctx, purchaseID); err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(purchaseLineTable).
		Columns("line_id", "document_id", "line_no", "material_id", "quantity", "unit_cost")
	for i, line := range lines {
		q = q.Values(line.LineID, purchaseID, i+1, line.MaterialID, line.Quantity, line.UnitCost)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert purchase lines: %w", err)
	}

	return nil
}

// List retrieves purchases matching the filter, newest first.
func (r *PurchaseRepo) List(ctx context.Context, filter purchase.Filter) (domain.ListResult[*purchase.Purchase], error) {
	result := domain.ListResult[*purchase.Purchase]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.To})
	}
	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}

	q, err := r.countAndPage(ctx, q, filter.Limit, filter.Offset, &result.TotalCount)
	if err != nil {
		return result, err
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.Querier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list purchases: %w", err)
	}

	return result, nil
}
