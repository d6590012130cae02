package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"atelier/internal/core/id"
	"atelier/internal/domain"
	"atelier/internal/domain/sale"
	"atelier/internal/storage/postgres"
)

const (
	saleTable     = "doc_sale"
	saleLineTable = "sale_line"
)

// SaleRepo implements sale.Repository.
type SaleRepo struct {
	*BaseDocumentRepo[*sale.Sale]
}

// NewSaleRepo creates a Sale repository.
func NewSaleRepo(txm *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(txm, saleTable, saleLineTable, func() *sale.Sale {
			return &sale.Sale{}
		}),
	}
}

// GetLines loads the sale's line items.
func (r *SaleRepo) GetLines(ctx context.Context, saleID id.ID) ([]sale.LineItem, error) {
	q := r.Builder().
		Select("line_id", "product_id", "quantity",
			"suggested_price_at_the_time", "price_at_the_time").
		From(saleLineTable).
		Where(squirrel.Eq{"document_id": saleID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []sale.LineItem
	if err := pgxscan.Select(ctx, r.Querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get sale lines: %w", err)
	}

	return lines, nil
}

// ReplaceLines rewrites the sale's line items.
func (r *SaleRepo) ReplaceLines(ctx context.Context, saleID id.ID, lines []sale.LineItem) error {
	if err := r.deleteLines(ctx, saleID); err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(saleLineTable).
		Columns("line_id", "document_id", "line_no", "product_id", "quantity",
			"suggested_price_at_the_time", "price_at_the_time")
	for i, line := range lines {
		q = q.Values(line.LineID, saleID, i+1, line.ProductID, line.Quantity,
			line.SuggestedPriceAtTheTime, line.PriceAtTheTime)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale lines: %w", err)
	}

	return nil
}

// List retrieves sales matching the filter, newest first.
func (r *SaleRepo) List(ctx context.Context, filter sale.Filter) (domain.ListResult[*sale.Sale], error) {
	result := domain.ListResult[*sale.Sale]{
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
	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.LocationID != nil {
		q = q.Where(squirrel.Eq{"location_id": *filter.LocationID})
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
		return result, fmt.Errorf("list sales: %w", err)
	}

	return result, nil
}
