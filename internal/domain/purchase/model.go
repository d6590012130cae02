// Package purchase implements the material purchase document. Recording a
// purchase establishes the newest unit cost of each material bought, which
// feeds the product cost model on the next recalculation.
package purchase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"atelier/internal/core/apperror"
	"atelier/internal/core/entity"
	"atelier/internal/core/id"
)

// LineItem is one material position of a purchase.
type LineItem struct {
	LineID     id.ID `db:"line_id" json:"lineId"`
	MaterialID id.ID `db:"material_id" json:"materialId"`

	Quantity decimal.Decimal `db:"quantity" json:"quantity"`
	UnitCost decimal.Decimal `db:"unit_cost" json:"unitCost"`
}

// Total returns quantity × unit cost.
func (l LineItem) Total() decimal.Decimal {
	return l.Quantity.Mul(l.UnitCost)
}

// Purchase is a recorded material purchase. Purchases are documents and are
// always hard-deleted; deleting one does not roll material costs back.
type Purchase struct {
	entity.Document

	SupplierID id.ID           `db:"supplier_id" json:"supplierId"`
	TotalCost  decimal.Decimal `db:"total_cost" json:"totalCost"`

	Lines []LineItem `db:"-" json:"lines"`
}

// NewPurchase creates a new Purchase document.
func NewPurchase(supplierID id.ID)*Purchase {
	return &Purchase{
		Document:   entity.NewDocument(),
		SupplierID: supplierID,
	}
}

// Validate implements entity.Validatable.
func (p *Purchase) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(p.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}

	if len(p.Lines) == 0 {
		return apperror.NewValidation("purchase requires at least one line").
			WithDetail("field", "lines")
	}

	for i, line := range p.Lines {
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("line quantity must be positive").
				WithDetail("lineNo", i+1)
		}
		if line.UnitCost.IsNegative() {
			return apperror.NewValidation("line unit cost cannot be negative").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// RecalcTotal recomputes TotalCost from the lines.
func (p *Purchase) RecalcTotal() {
	total := decimal.Zero
	for _, line := range p.Lines {
		total = total.Add(line.Total())
	}
	p.TotalCost = total
}

// Filter narrows purchase listings.
type Filter struct {
	From       *time.Time
	To         *time.Time
	SupplierID *id.ID

	Limit  int
	Offset int
}
