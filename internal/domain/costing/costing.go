// Package costing computes a product's manufacturing cost and the suggested
// selling prices derived from it. All functions are pure; loading products
// and persisting the results is the product service's job.
package costing

import (
	"github.com/shopspring/decimal"

	"atelier/internal/core/money"
)

// Fixed pricing parameters. Labor is billed per hour; suggested prices are
// cost times markup.
var (
	HourlyLaborRate      = money.Must("7.00")
	RetailMarkupFactor    = money.Must("3.0")
	WholesaleMarkupFactor = money.Must("1.86")

	minutesPerHour = decimal.NewFromInt(60)
)

// MaterialLineInput is one material line with its resolved unit cost.
// A line whose cost or quantity is unknown contributes zero.
type MaterialLineInput struct {
	UnitCost decimal.NullDecimal
	Quantity decimal.NullDecimal
}

// Inputs are the cost components of a single product.
type Inputs struct {
	MaterialLines  []MaterialLineInput
	MinutesToMake  *int
	ProcedureCosts []decimal.Decimal
}

// Breakdown carries the intermediate cost values for reporting.
type Breakdown struct {
	MaterialCost  decimal.Decimal
	LaborCost     decimal.Decimal
	ProcedureCost decimal.Decimal
	TotalCost     decimal.Decimal
}

// SuggestedPrices is the cost-plus-markup result.
type SuggestedPrices struct {
	Retail    decimal.Decimal
	Wholesale decimal.Decimal
	Breakdown Breakdown
}

// ComputeSuggestedPrices derives the suggested retail and wholesale prices
// from the product's cost inputs:
//
//	materialCost  = Σ unitCost × quantity   (missing cost/quantity → 0)
//	laborCost     = minutesToMake / 60 × hourly rate   (nil or ≤0 minutes → 0)
//	procedureCost = Σ line cost
//	suggested     = (materialCost + laborCost + procedureCost) × markup
func ComputeSuggestedPrices(in Inputs) SuggestedPrices {
	materialCost := decimal.Zero
	for _, line := range in.MaterialLines {
		if !line.UnitCost.Valid || !line.Quantity.Valid {
			continue
		}
		materialCost = materialCost.Add(line.UnitCost.Decimal.Mul(line.Quantity.Decimal))
	}

	laborCost := decimal.Zero
	if in.MinutesToMake != nil && *in.MinutesToMake > 0 {
		minutes := decimal.NewFromInt(int64(*in.MinutesToMake))
		laborCost = minutes.Div(minutesPerHour).Mul(HourlyLaborRate)
	}

	procedureCost := decimal.Zero
	for _, cost := range in.ProcedureCosts {
		procedureCost = procedureCost.Add(cost)
	}

	totalCost := materialCost.Add(laborCost).Add(procedureCost)

	return SuggestedPrices{
		Retail:    money.RoundPrice(totalCost.Mul(RetailMarkupFactor)),
		Wholesale: money.RoundPrice(totalCost.Mul(WholesaleMarkupFactor)),
		Breakdown: Breakdown{
			MaterialCost:  materialCost,
			LaborCost:     laborCost,
			ProcedureCost: procedureCost,
			TotalCost:     totalCost,
		},
	}
}

// RecalcSummary reports the outcome of a bulk price recalculation.
// A product whose computation fails is counted and left unmodified;
// failure is per-product and never aborts the batch.
type RecalcSummary struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}
