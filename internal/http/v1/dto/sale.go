package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"atelier/internal/core/apperror"
	"atelier/internal/domain/pricing"
	"atelier/internal/domain/sale"
)

// SaleLineRequest is one requested product position.
type SaleLineRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// RecordSaleRequest for POST /sales and PUT /sales/:id. Exactly one of
// FinalPrice and DiscountPercentage anchors the discount.
type RecordSaleRequest struct {
	Date       *time.Time `json:"date"`
	CustomerID *string    `json:"customerId"`
	LocationID string     `json:"locationId" binding:"required"`

	IsWholesale    bool            `json:"isWholesale"`
	PackagingPrice decimal.Decimal `json:"packagingPrice"`
	PaymentMethod  string          `json:"paymentMethod" binding:"required"`
	Comment        string          `json:"comment"`

	Lines []SaleLineRequest `json:"lines" binding:"required"`

	FinalPrice         *decimal.Decimal `json:"finalPrice"`
	DiscountPercentage *decimal.Decimal `json:"discountPercentage"`
}

// ToRequest maps the DTO to a coordinator request.
func (r RecordSaleRequest) ToRequest() (sale.Request, error) {
	req := sale.Request{
		IsWholesale:    r.IsWholesale,
		PackagingPrice: r.PackagingPrice,
		PaymentMethod:  sale.PaymentMethod(r.PaymentMethod),
		Comment:        r.Comment,
	}

	if r.Date != nil {
		req.Date = *r.Date
	} else {
		req.Date = time.Now().UTC()
	}

	locationID, err := ParseID("locationId", r.LocationID)
	if err != nil {
		return sale.Request{}, err
	}
	req.LocationID = locationID

	if r.CustomerID != nil {
		customerID, err := ParseID("customerId", *r.CustomerID)
		if err != nil {
			return sale.Request{}, err
		}
		req.CustomerID = &customerID
	}

	for _, line := range r.Lines {
		productID, err := ParseID("productId", line.ProductID)
		if err != nil {
			return sale.Request{}, err
		}
		req.Lines = append(req.Lines, sale.LineRequest{
			ProductID: productID,
			Quantity:  line.Quantity,
		})
	}

	target, err := saleTarget(r.FinalPrice, r.DiscountPercentage)
	if err != nil {
		return sale.Request{}, err
	}
	req.Target = target

	return req, nil
}

// saleTarget picks the discount anchor from the two optional fields.
func saleTarget(finalPrice, discountPct *decimal.Decimal) (pricing.Target, error) {
	switch {
	case finalPrice != nil && discountPct != nil:
		return nil, apperror.NewValidation("final price and discount percentage are mutually exclusive").
			WithDetail("field", "finalPrice")
	case finalPrice != nil:
		return pricing.FinalPriceTarget{FinalPrice: *finalPrice}, nil
	case discountPct != nil:
		return pricing.DiscountTarget{Percent: *discountPct}, nil
	default:
		return nil, apperror.NewValidation("either final price or discount percentage is required").
			WithDetail("field", "target")
	}
}

// SaleListQuery for GET /sales.
type SaleListQuery struct {
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	CustomerID *string    `form:"customerId"`
	LocationID *string    `form:"locationId"`
	Limit      int        `form:"limit"`
	Offset     int        `form:"offset"`
}

// ToFilter maps the query to a sale filter.
func (q SaleListQuery) ToFilter() (sale.Filter, error) {
	filter := sale.DefaultFilter()
	filter.From = q.From
	filter.To = q.To
	if q.Limit > 0 {
		filter.Limit = q.Limit
	}
	filter.Offset = q.Offset

	if q.CustomerID != nil {
		customerID, err := ParseID("customerId", *q.CustomerID)
		if err != nil {
			return sale.Filter{}, err
		}
		filter.CustomerID = &customerID
	}
	if q.LocationID != nil {
		locationID, err := ParseID("locationId", *q.LocationID)
		if err != nil {
			return sale.Filter{}, err
		}
		filter.LocationID = &locationID
	}

	return filter, nil
}
