package dto

import (
	"atelier/internal/core/apperror"
	"atelier/internal/domain/stockledger"
)

// StockUpdateRequest for POST /products/:id/stock. Operation is one of
// ADD, REMOVE, SET.
type StockUpdateRequest struct {
	Operation string `json:"operation" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// ToUpdate maps the request to a ledger update variant.
func (r StockUpdateRequest) ToUpdate() (stockledger.Update, error) {
	switch r.Operation {
	case string(stockledger.OpAdd):
		return stockledger.Add{Quantity: r.Quantity}, nil
	case string(stockledger.OpRemove):
		return stockledger.Remove{Quantity: r.Quantity}, nil
	case string(stockledger.OpSet):
		return stockledger.Set{Quantity: r.Quantity}, nil
	default:
		return nil, apperror.NewValidation("unknown stock operation").
			WithDetail("field", "operation").
			WithDetail("value", r.Operation)
	}
}
