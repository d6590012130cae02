// Package sale implements the sale document and the coordinator that runs a
// sale's pricing and stock effects as one atomic transaction.
package sale

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"atelier/internal/core/apperror"
	"atelier/internal/core/entity"
	"atelier/internal/core/id"
)

// PaymentMethod is how the customer paid.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentTransfer PaymentMethod = "TRANSFER"
	PaymentOther    PaymentMethod = "OTHER"
)

// Valid reports whether the payment method is one of the known values.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentOther:
		return true
	}
	return false
}

// LineItem is one product position of a recorded sale. Both prices are
// captured at sale time and never change when the catalog does.
type LineItem struct {
	LineID    id.ID `db:"line_id" json:"lineId"`
	ProductID id.ID `db:"product_id" json:"productId"`
	Quantity  int   `db:"quantity" json:"quantity"`

	// SuggestedPriceAtTheTime is the undiscounted unit price.
	SuggestedPriceAtTheTime decimal.Decimal `db:"suggested_price_at_the_time" json:"suggestedPriceAtTheTime"`

	// PriceAtTheTime is the unit price after the sale-level discount.
	PriceAtTheTime decimal.Decimal `db:"price_at_the_time" json:"priceAtTheTime"`
}

// Sale is a recorded sale transaction.
//
// Invariant: DiscountPercentage, FinalTotalPrice and every line's
// PriceAtTheTime are mutually consistent; they are always written together
// from one pricing run.
type Sale struct {
	entity.Document

	CustomerID *id.ID `db:"customer_id" json:"customerId,omitempty"`
	LocationID id.ID  `db:"location_id" json:"locationId"`

	IsWholesale    bool            `db:"is_wholesale" json:"isWholesale"`
	PackagingPrice decimal.Decimal `db:"packaging_price" json:"packagingPrice"`

	SuggestedTotalPrice decimal.Decimal `db:"suggested_total_price" json:"suggestedTotalPrice"`
	FinalTotalPrice     decimal.Decimal `db:"final_total_price" json:"finalTotalPrice"`

	// DiscountPercentage is negative when the sale was marked up.
	DiscountPercentage decimal.Decimal `db:"discount_percentage" json:"discountPercentage"`

	PaymentMethod PaymentMethod `db:"payment_method" json:"paymentMethod"`

	Lines []LineItem `db:"-" json:"lines"`
}

// NewSale creates a new Sale document.
func NewSale(locationID id.ID) *Sale {
	return &Sale{
		Document:   entity.NewDocument(),
		LocationID: locationID,
	}
}

// Validate implements entity.Validatable.
func (s *Sale) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(s.LocationID) {
		return apperror.NewValidation("location is required").
			WithDetail("field", "locationId")
	}

	if !s.PaymentMethod.Valid() {
		return apperror.NewValidation("unknown payment method").
			WithDetail("field", "paymentMethod").
			WithDetail("value", string(s.PaymentMethod))
	}

	if s.PackagingPrice.IsNegative() {
		return apperror.NewValidation("packaging price cannot be negative").
			WithDetail("field", "packagingPrice")
	}

	if len(s.Lines) == 0 {
		return apperror.NewValidation("sale requires at least one line").
			WithDetail("field", "lines")
	}

	for i, line := range s.Lines {
		if line.Quantity <= 0 {
			return apperror.NewValidation("line quantity must be positive").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// Filter narrows sale listings.
type Filter struct {
	From       *time.Time
	To         *time.Time
	CustomerID *id.ID
	LocationID *id.ID

	Limit  int
	Offset int
}

// DefaultFilter returns sensible defaults.
func DefaultFilter() Filter {
	return Filter{Limit: 50}
}
