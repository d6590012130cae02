package stockledger

import (
	"context"
	"fmt"
	"time"

	"atelier/internal/core/actor"
	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/core/tx"
	"atelier/pkg/logger"
)

// StockRow is the slice of a product the ledger works with.
// A nil Stock means the product is not stock-tracked.
type StockRow struct {
	ProductID     id.ID  `db:"id"`
	Code          string `db:"code"`
	Stock         *int   `db:"stock"`
	LowStockAlert int    `db:"low_stock_alert"`
}

// Repository defines the persistence surface for the stock ledger.
// All methods are expected to run inside the caller's transaction; the
// FOR UPDATE read closes the lost-update race on concurrent sales.
type Repository interface {
	// GetStockForUpdate reads the product's stock row with a row lock.
	GetStockForUpdate(ctx context.Context, productID id.ID) (StockRow, error)

	// SetStock writes the new counter value.
	SetStock(ctx context.Context, productID id.ID, newStock int) error

	// RecordMovement appends one movement audit record.
	RecordMovement(ctx context.Context, movement Movement) error
}

// SaleEffectLine is one sale line as seen by the ledger.
type SaleEffectLine struct {
	ProductID id.ID
	Quantity  int
}

// Service mutates stock counters for sale and manual operations.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new stock ledger service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// ApplySaleEffect deducts or restores stock for every line item of a sale.
// Must run inside the sale's transaction so a later failure rolls the
// counters back. Untracked products are skipped silently; no movement is
// recorded for them.
func (s *Service) ApplySaleEffect(ctx context.Context, act actor.Actor, lines []SaleEffectLine, direction Direction) error {
	for _, line := range lines {
		if line.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("productId", line.ProductID.String())
		}

		row, err := s.repo.GetStockForUpdate(ctx, line.ProductID)
		if err != nil {
			return fmt.Errorf("get stock for %s: %w", line.ProductID, err)
		}

		if row.Stock == nil {
			continue
		}
		previous := *row.Stock

		var newStock int
		var op Operation
		switch direction {
		case Deduct:
			newStock = previous - line.Quantity
			op = OpRemove
		case Restore:
			newStock = previous + line.Quantity
			op = OpAdd
		default:
			return apperror.NewValidation("unknown stock direction").
				WithDetail("direction", string(direction))
		}

		if err := s.commit(ctx, act, row, op, ReasonSale, previous, newStock); err != nil {
			return err
		}
	}

	return nil
}

// ApplyManualUpdate adjusts one product's stock outside of a sale. Runs in
// its own transaction with the same row lock and movement record as sale
// effects.
func (s *Service) ApplyManualUpdate(ctx context.Context, act actor.Actor, productID id.ID, update Update) (Adjustment, error) {
	var result Adjustment
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		adj, err := s.applyManualUpdate(ctx, act, productID, update)
		if err != nil {
			return err
		}
		result = adj
		return nil
	})
	return result, err
}

func (s *Service) applyManualUpdate(ctx context.Context, act actor.Actor, productID id.ID, update Update) (Adjustment, error) {
	row, err := s.repo.GetStockForUpdate(ctx, productID)
	if err != nil {
		return Adjustment{}, fmt.Errorf("get stock for %s: %w", productID, err)
	}

	if row.Stock == nil {
		return Adjustment{}, apperror.NewBusinessRule(
			apperror.CodeBusinessRule,
			"product is not stock-tracked",
		).WithDetail("productId", productID.String())
	}
	previous := *row.Stock

	var newStock int
	var op Operation
	switch u := update.(type) {
	case Add:
		if u.Quantity <= 0 {
			return Adjustment{}, apperror.NewValidation("quantity must be positive")
		}
		newStock = previous + u.Quantity
		op = OpAdd
	case Remove:
		if u.Quantity <= 0 {
			return Adjustment{}, apperror.NewValidation("quantity must be positive")
		}
		newStock = previous - u.Quantity
		op = OpRemove
	case Set:
		newStock = u.Quantity
		op = OpSet
	default:
		return Adjustment{}, apperror.NewValidation("unknown stock update type")
	}

	if err := s.commit(ctx, act, row, op, ReasonManual, previous, newStock); err != nil {
		return Adjustment{}, err
	}

	return Adjustment{
		ProductID:     productID,
		PreviousStock: previous,
		NewStock:      newStock,
		Delta:         newStock - previous,
		Status:        Classify(newStock, row.LowStockAlert),
	}, nil
}

// commit writes the counter and the movement record, logging negative
// results at warning level.
func (s *Service) commit(ctx context.Context, act actor.Actor, row StockRow, op Operation, reason Reason, previous, newStock int) error {
	if err := s.repo.SetStock(ctx, row.ProductID, newStock); err != nil {
		return fmt.Errorf("set stock for %s: %w", row.Code, err)
	}

	movement := Movement{
		ID:            id.New(),
		ProductCode:   row.Code,
		Operation:     op,
		Reason:        reason,
		PreviousStock: previous,
		NewStock:      newStock,
		Delta:         newStock - previous,
		CreatedBy:     act.Email,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.RecordMovement(ctx, movement); err != nil {
		return fmt.Errorf("record movement for %s: %w", row.Code, err)
	}

	if newStock < 0 {
		logger.Warn(ctx, "stock went negative",
			"product_code", row.Code,
			"previous", previous,
			"new", newStock,
			"reason", reason,
		)
	} else {
		logger.Debug(ctx, "stock updated",
			"product_code", row.Code,
			"previous", previous,
			"new", newStock,
			"reason", reason,
		)
	}

	return nil
}
