package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/domain/stockledger"
)

const stockMovementTable = "stock_movement"

// StockRepo implements stockledger.Repository against the product table's
// stock column and the stock_movement log.
type StockRepo struct {
	txm *TxManager
}

// NewStockRepo creates a stock ledger repository.
func NewStockRepo(txm *TxManager) *StockRepo {
	return &StockRepo{txm: txm}
}

func (r *StockRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// GetStockForUpdate reads the product's stock row with a row lock. The
// lock holds until the surrounding transaction ends, serializing
// concurrent sales touching the same product.
func (r *StockRepo) GetStockForUpdate(ctx context.Context, productID id.ID) (stockledger.StockRow, error) {
	var row stockledger.StockRow

	q := r.builder().
		Select("id", "code", "stock", "low_stock_alert").
		From("cat_product").
		Where(squirrel.Eq{"id": productID}).
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return row, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return row, apperror.NewNotFound("cat_product", productID.String())
		}
		return row, fmt.Errorf("get stock for update: %w", err)
	}

	return row, nil
}

// SetStock writes the new counter value.
func (r *StockRepo) SetStock(ctx context.Context, productID id.ID, newStock int) error {
	q := r.builder().
		Update("cat_product").
		Set("stock", newStock).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("cat_product", productID.String())
	}

	return nil
}

// RecordMovement appends one movement audit record.
func (r *StockRepo) RecordMovement(ctx context.Context, movement stockledger.Movement) error {
	q := r.builder().
		Insert(stockMovementTable).
		Columns("id", "product_code", "operation", "reason",
			"previous_stock", "new_stock", "delta", "created_by", "created_at").
		Values(movement.ID, movement.ProductCode, movement.Operation, movement.Reason,
			movement.PreviousStock, movement.NewStock, movement.Delta,
			movement.CreatedBy, movement.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("record stock movement: %w", err)
	}

	return nil
}

// ListMovements returns a product's recent movements, newest first. The
// movement history endpoint reads through it.
func (r *StockRepo) ListMovements(ctx context.Context, productCode string, limit int) ([]stockledger.Movement, error) {
	if limit <= 0 {
		limit = 50
	}

	q := r.builder().
		Select("id", "product_code", "operation", "reason",
			"previous_stock", "new_stock", "delta", "created_by", "created_at").
		From(stockMovementTable).
		Where(squirrel.Eq{"product_code": productCode}).
		OrderBy("created_at DESC").
		Limit(uint64(limit))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []stockledger.Movement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}

	return movements, nil
}
