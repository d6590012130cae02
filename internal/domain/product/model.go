// Package product provides the Product catalog: the manufactured items the
// whole back office revolves around. A product owns its material and
// procedure lines (id-based join rows, no back-pointers) and carries both
// the user-set selling prices and the cost-derived suggested prices.
package product

import (
	"context"

	"github.com/shopspring/decimal"

	"atelier/internal/core/apperror"
	"atelier/internal/core/entity"
	"atelier/internal/core/id"
)

// Line inputs are stored as NUMERIC(10,2): at most 8 integer digits and
// 2 decimal places.
const maxAmountIntegerDigits = 8

// MaterialLine is one material consumed by the product.
type MaterialLine struct {
	LineID     id.ID           `db:"line_id" json:"lineId"`
	MaterialID id.ID           `db:"material_id" json:"materialId"`
	Quantity   decimal.Decimal `db:"quantity" json:"quantity"`
}

// ProcedureLine is one manufacturing step with its cost for this product.
type ProcedureLine struct {
	LineID      id.ID           `db:"line_id" json:"lineId"`
	ProcedureID id.ID           `db:"procedure_id" json:"procedureId"`
	Cost        decimal.Decimal `db:"cost" json:"cost"`
}

// Product is a manufactured item.
//
// Invariant: the suggested prices are always a deterministic function of the
// current material/procedure/labor cost inputs; every mutation of those
// inputs recomputes them before persisting.
type Product struct {
	entity.Reference

	CategoryID *id.ID `db:"category_id" json:"categoryId,omitempty"`

	// MinutesToMake drives the labor cost; nil or ≤0 contributes zero.
	MinutesToMake *int `db:"minutes_to_make" json:"minutesToMake,omitempty"`

	// Stock is the tracked counter; nil means not stock-tracked and the
	// ledger skips the product entirely.
	Stock *int `db:"stock" json:"stock,omitempty"`

	// LowStockAlert is the threshold for the LOW health status.
	LowStockAlert int `db:"low_stock_alert" json:"lowStockAlert"`

	// User-set selling prices per channel.
	FinalSellingPriceRetail    decimal.Decimal `db:"final_selling_price_retail" json:"finalSellingPriceRetail"`
	FinalSellingPriceWholesale decimal.Decimal `db:"final_selling_price_wholesale" json:"finalSellingPriceWholesale"`

	// Cost-derived suggested prices, maintained by the cost model.
	SuggestedRetailSellingPrice    decimal.Decimal `db:"suggested_retail_selling_price" json:"suggestedRetailSellingPrice"`
	SuggestedWholesaleSellingPrice decimal.Decimal `db:"suggested_wholesale_selling_price" json:"suggestedWholesaleSellingPrice"`

	// Table parts, loaded separately.
	MaterialLines  []MaterialLine  `db:"-" json:"materialLines"`
	ProcedureLines []ProcedureLine `db:"-" json:"procedureLines"`
}

// NewProduct creates a new Product.
func NewProduct(code, name string) *Product {
	return &Product{
		Reference: entity.NewReference(code, name),
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Reference.Validate(ctx); err != nil {
		return err
	}

	if p.Code == "" {
		return apperror.NewValidation("code is required").
			WithDetail("field", "code")
	}

	if p.LowStockAlert < 0 {
		return apperror.NewValidation("low stock alert cannot be negative").
			WithDetail("field", "lowStockAlert")
	}

	if p.FinalSellingPriceRetail.IsNegative() || p.FinalSellingPriceWholesale.IsNegative() {
		return apperror.NewValidation("selling prices cannot be negative").
			WithDetail("field", "finalSellingPrice")
	}

	for i, line := range p.MaterialLines {
		if err := validateLineAmount("quantity", line.Quantity); err != nil {
			return err.WithDetail("lineNo", i+1)
		}
	}

	for i, line := range p.ProcedureLines {
		if err := validateLineAmount("cost", line.Cost); err != nil {
			return err.WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// UnitPrice returns the user-set selling price for the channel.
func (p *Product) UnitPrice(isWholesale bool) decimal.Decimal {
	if isWholesale {
		return p.FinalSellingPriceWholesale
	}
	return p.FinalSellingPriceRetail
}

// IsStockTracked reports whether the ledger mutates this product.
func (p *Product) IsStockTracked() bool {
	return p.Stock != nil
}

// validateLineAmount rejects non-positive values and values exceeding the
// NUMERIC(10,2) storage precision, before any cost recompute runs.
func validateLineAmount(field string, amount decimal.Decimal) *apperror.AppError {
	if !amount.IsPositive() {
		return apperror.NewValidation(field + " must be positive").
			WithDetail("field", field).
			WithDetail("value", amount.String())
	}

	if amount.Exponent() < -2 {
		return apperror.NewValidation(field + " allows at most 2 decimal places").
			WithDetail("field", field).
			WithDetail("value", amount.String())
	}

	if amount.GreaterThanOrEqual(decimal.New(1, maxAmountIntegerDigits)) {
		return apperror.NewValidation(field + " exceeds maximum precision").
			WithDetail("field", field).
			WithDetail("value", amount.String())
	}

	return nil
}
