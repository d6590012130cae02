package reference_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"atelier/internal/core/id"
	"atelier/internal/domain/product"
	"atelier/internal/storage/postgres"
)

const (
	productTable       = "cat_product"
	materialLineTable  = "product_material_line"
	procedureLineTable = "product_procedure_line"
)

// ProductRepo implements product.Repository. The header row lives in
// cat_product; material and procedure lines are separate tables keyed by
// product_id and rewritten wholesale on every mutation.
type ProductRepo struct {
	*BaseReferenceRepo[*product.Product]
}

// NewProductRepo creates a Product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseReferenceRepo: NewBaseReferenceRepo(txm, productTable, func() *product.Product {
			return &product.Product{}
		}),
	}
}

// CountDependents counts sale lines referencing the product.
func (r *ProductRepo) CountDependents(ctx context.Context, productID id.ID) (int64, error) {
	return r.CountIn(ctx, "sale_line", "product_id", productID)
}

// GetLines loads both table parts for a product.
func (r *ProductRepo) GetLines(ctx context.Context, productID id.ID) ([]product.MaterialLine, []product.ProcedureLine, error) {
	var materials []product.MaterialLine
	q := r.Builder().
		Select("line_id", "material_id", "quantity").
		From(materialLineTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("build material lines query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.Querier(ctx), &materials, sql, args...); err != nil {
		return nil, nil, fmt.Errorf("get material lines: %w", err)
	}

	var procedures []product.ProcedureLine
	q = r.Builder().
		Select("line_id", "procedure_id", "cost").
		From(procedureLineTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("line_no")

	sql, args, err = q.ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("build procedure lines query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.Querier(ctx), &procedures, sql, args...); err != nil {
		return nil, nil, fmt.Errorf("get procedure lines: %w", err)
	}

	return materials, procedures, nil
}

// ReplaceLines rewrites both table parts. Callers run it inside the same
// transaction as the header update.
func (r *ProductRepo) ReplaceLines(ctx context.Context, productID id.ID, materials []product.MaterialLine, procedures []product.ProcedureLine) error {
	querier := r.Querier(ctx)

	for _, table := range []string{materialLineTable, procedureLineTable} {
		sql, args, err := r.Builder().
			Delete(table).
			Where(squirrel.Eq{"product_id": productID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build delete lines: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("delete lines from %s: %w", table, err)
		}
	}

	if len(materials) > 0 {
		q := r.Builder().
			Insert(materialLineTable).
			Columns("line_id", "product_id", "line_no", "material_id", "quantity")
		for i, line := range materials {
			q = q.Values(line.LineID, productID, i+1, line.MaterialID, line.Quantity)
		}

		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build insert material lines: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert material lines: %w", err)
		}
	}

	if len(procedures) > 0 {
		q := r.Builder().
			Insert(procedureLineTable).
			Columns("line_id", "product_id", "line_no", "procedure_id", "cost")
		for i, line := range procedures {
			q = q.Values(line.LineID, productID, i+1, line.ProcedureID, line.Cost)
		}

		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build insert procedure lines: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert procedure lines: %w", err)
		}
	}

	return nil
}

// UpdateSuggestedPrices stores freshly computed suggested prices without
// touching the version, so a recalculation never trips optimistic locking
// against a concurrent user edit.
func (r *ProductRepo) UpdateSuggestedPrices(ctx context.Context, productID id.ID, retail, wholesale decimal.Decimal) error {
	q := r.Builder().
		Update(productTable).
		Set("suggested_retail_selling_price", retail).
		Set("suggested_wholesale_selling_price", wholesale).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update suggested prices: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("update suggested prices: %w", err)
	}

	return nil
}

// GetMany resolves a batch of products by ID. Missing IDs are absent from
// the result.
func (r *ProductRepo) GetMany(ctx context.Context, ids []id.ID) (map[id.ID]*product.Product, error) {
	result := make(map[id.ID]*product.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	q := r.Builder().
		Select(postgres.ExtractDBColumns[*product.Product]()...).
		From(productTable).
		Where(squirrel.Eq{"id": ids})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*product.Product
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get many products: %w", err)
	}

	for _, p := range items {
		result[p.ID] = p
	}

	return result, nil
}

// ListActive returns all active products without table parts.
func (r *ProductRepo) ListActive(ctx context.Context) ([]*product.Product, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[*product.Product]()...).
		From(productTable).
		Where(squirrel.Eq{"active": true}).
		OrderBy("code")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*product.Product
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list active products: %w", err)
	}

	return items, nil
}
