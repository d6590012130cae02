// Package pricing derives a sale's suggested total, discount percentage and
// per-line discounted unit prices. The engine is pure: callers resolve
// products and persist results.
//
// The discount percentage is fully determined by the suggested and final
// totals, and every line's discounted price is the same percentage applied
// to its own undiscounted unit price. Any change to lines, quantities or the
// target re-runs the whole computation; nothing is adjusted incrementally,
// so per-line prices can never drift from the sale-level discount.
package pricing

import (
	"github.com/shopspring/decimal"

	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/core/money"
)

// Line is one product position in the sale request.
type Line struct {
	ProductID id.ID
	Quantity  int

	// Unit prices of the product at sale time, both channels.
	UnitRetail    decimal.Decimal
	UnitWholesale decimal.Decimal
}

// Target selects how the discount is anchored: either the user chose the
// final total, or they chose the discount percentage. Exactly one variant.
type Target interface {
	isTarget()
}

// FinalPriceTarget fixes the final total; the discount is derived from it.
type FinalPriceTarget struct {
	FinalPrice decimal.Decimal
}

func (FinalPriceTarget) isTarget() {}

// DiscountTarget fixes the discount percentage; the final total is derived.
type DiscountTarget struct {
	Percent decimal.Decimal
}

func (DiscountTarget) isTarget() {}

// LinePrice is the priced counterpart of a request Line.
type LinePrice struct {
	ProductID id.ID
	Quantity  int

	// SuggestedUnitPrice is the undiscounted unit price captured at sale time.
	SuggestedUnitPrice decimal.Decimal

	// DiscountedUnitPrice is the unit price after the sale-level discount,
	// rounded to 2 decimal places half-up.
	DiscountedUnitPrice decimal.Decimal
}

// Result is the complete pricing of one sale.
type Result struct {
	SuggestedTotal  decimal.Decimal
	FinalTotal      decimal.Decimal
	DiscountPercent decimal.Decimal
	Lines           []LinePrice
}

// PriceSale prices a sale from its line items, packaging surcharge, sales
// channel and target.
//
// A negative discount percentage (final price above the suggested total) is
// valid and represents a markup; it is never rejected.
func PriceSale(lines []Line, packagingPrice decimal.Decimal, isWholesale bool, target Target) (Result, error) {
	suggestedTotal := packagingPrice
	for _, line := range lines {
		qty := decimal.NewFromInt(int64(line.Quantity))
		suggestedTotal = suggestedTotal.Add(unitPrice(line, isWholesale).Mul(qty))
	}

	var finalTotal, discountPercent decimal.Decimal
	switch t := target.(type) {
	case FinalPriceTarget:
		finalTotal = t.FinalPrice
		if suggestedTotal.IsZero() {
			discountPercent = decimal.Zero
		} else {
			discountPercent = money.RoundPercent(
				suggestedTotal.Sub(finalTotal).Div(suggestedTotal).Mul(money.Hundred),
			)
		}
	case DiscountTarget:
		discountPercent = t.Percent
		discountAmount := money.RoundPrice(suggestedTotal.Mul(discountPercent).Div(money.Hundred))
		finalTotal = suggestedTotal.Sub(discountAmount)
	default:
		return Result{}, apperror.NewValidation("either final price or discount percentage is required").
			WithDetail("field", "target")
	}

	multiplier := money.One.Sub(discountPercent.Div(money.Hundred))

	priced := make([]LinePrice, 0, len(lines))
	for _, line := range lines {
		unit := unitPrice(line, isWholesale)
		priced = append(priced, LinePrice{
			ProductID:           line.ProductID,
			Quantity:            line.Quantity,
			SuggestedUnitPrice:  unit,
			DiscountedUnitPrice: money.RoundPrice(unit.Mul(multiplier)),
		})
	}

	return Result{
		SuggestedTotal:  suggestedTotal,
		FinalTotal:      finalTotal,
		DiscountPercent: discountPercent,
		Lines:           priced,
	}, nil
}

func unitPrice(line Line, isWholesale bool) decimal.Decimal {
	if isWholesale {
		return line.UnitWholesale
	}
	return line.UnitRetail
}
