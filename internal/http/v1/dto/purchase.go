package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"atelier/internal/domain/purchase"
)

// PurchaseLineRequest is one requested material position.
type PurchaseLineRequest struct {
	MaterialID string          `json:"materialId" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost   decimal.Decimal `json:"unitCost"`
}

// RecordPurchaseRequest for POST /purchases and PUT /purchases/:id.
type RecordPurchaseRequest struct {
	Date       *time.Time            `json:"date"`
	SupplierID string                `json:"supplierId" binding:"required"`
	Comment    string                `json:"comment"`
	Lines      []PurchaseLineRequest `json:"lines" binding:"required"`
}

// ToRequest maps the DTO to a purchase request.
func (r RecordPurchaseRequest) ToRequest() (purchase.Request, error) {
	req := purchase.Request{
		Comment: r.Comment,
	}

	if r.Date != nil {
		req.Date = *r.Date
	} else {
		req.Date = time.Now().UTC()
	}

	supplierID, err := ParseID("supplierId", r.SupplierID)
	if err != nil {
		return purchase.Request{}, err
	}
	req.SupplierID = supplierID

	for _, line := range r.Lines {
		materialID, err := ParseID("materialId", line.MaterialID)
		if err != nil {
			return purchase.Request{}, err
		}
		req.Lines = append(req.Lines, purchase.LineRequest{
			MaterialID: materialID,
			Quantity:   line.Quantity,
			UnitCost:   line.UnitCost,
		})
	}

	return req, nil
}

// PurchaseListQuery for GET /purchases.
type PurchaseListQuery struct {
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	SupplierID *string    `form:"supplierId"`
	Limit      int        `form:"limit"`
	Offset     int        `form:"offset"`
}

// ToFilter maps the query to a purchase filter.
func (q PurchaseListQuery) ToFilter() (purchase.Filter, error) {
	filter := purchase.Filter{
		From:   q.From,
		To:     q.To,
		Limit:  q.Limit,
		Offset: q.Offset,
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	if q.SupplierID != nil {
		supplierID, err := ParseID("supplierId", *q.SupplierID)
		if err != nil {
			return purchase.Filter{}, err
		}
		filter.SupplierID = &supplierID
	}

	return filter, nil
}
