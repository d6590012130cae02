package costing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"atelier/internal/core/money"
)

func nullDec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: money.Must(s), Valid: true}
}

func intPtr(v int) *int { return &v }

func TestComputeSuggestedPrices_FullBreakdown(t *testing.T) {
	// materialCost=10.00, 30 min at 7.00/h -> labor 3.50, total 13.50,
	// retail 13.50*3.0=40.50, wholesale 13.50*1.86=25.11
	in := Inputs{
		MaterialLines: []MaterialLineInput{
			{UnitCost: nullDec("2.50"), Quantity: nullDec("4")},
		},
		MinutesToMake: intPtr(30),
	}

	got := ComputeSuggestedPrices(in)

	assert.True(t, got.Breakdown.MaterialCost.Equal(money.Must("10.00")), "material cost: %s", got.Breakdown.MaterialCost)
	assert.True(t, got.Breakdown.LaborCost.Equal(money.Must("3.50")), "labor cost: %s", got.Breakdown.LaborCost)
	assert.True(t, got.Breakdown.TotalCost.Equal(money.Must("13.50")), "total cost: %s", got.Breakdown.TotalCost)
	assert.True(t, got.Retail.Equal(money.Must("40.50")), "retail: %s", got.Retail)
	assert.True(t, got.Wholesale.Equal(money.Must("25.11")), "wholesale: %s", got.Wholesale)
}

func TestComputeSuggestedPrices_MissingInputsContributeZero(t *testing.T) {
	in := Inputs{
		MaterialLines: []MaterialLineInput{
			{UnitCost: decimal.NullDecimal{}, Quantity: nullDec("3")}, // no cost yet
			{UnitCost: nullDec("1.20"), Quantity: decimal.NullDecimal{}},
			{UnitCost: nullDec("1.00"), Quantity: nullDec("2")},
		},
		MinutesToMake:  nil,
		ProcedureCosts: []decimal.Decimal{money.Must("0.50")},
	}

	got := ComputeSuggestedPrices(in)

	assert.True(t, got.Breakdown.MaterialCost.Equal(money.Must("2.00")))
	assert.True(t, got.Breakdown.LaborCost.IsZero())
	assert.True(t, got.Breakdown.TotalCost.Equal(money.Must("2.50")))
	assert.True(t, got.Retail.Equal(money.Must("7.50")))
}

func TestComputeSuggestedPrices_NonPositiveMinutes(t *testing.T) {
	in := Inputs{MinutesToMake: intPtr(-15)}
	got := ComputeSuggestedPrices(in)
	assert.True(t, got.Breakdown.LaborCost.IsZero())
	assert.True(t, got.Retail.IsZero())
	assert.True(t, got.Wholesale.IsZero())
}

func TestPriceDifferencePercentage(t *testing.T) {
	// (40.50 - 30.00) / 30.00 * 100 = 35%
	diff := PriceDifferencePercentage(money.Must("40.50"), money.Must("30.00"))
	assert.True(t, diff.Equal(money.Must("35")), "diff: %s", diff)

	// zero final price: no meaningful ratio
	assert.True(t, PriceDifferencePercentage(money.Must("40.50"), decimal.Zero).IsZero())
}

func TestDetectMispricing_Classification(t *testing.T) {
	threshold := DefaultMispricingThreshold

	tests := []struct {
		name        string
		sr, fr      string // suggested/final retail
		sw, fw      string // suggested/final wholesale
		wantFlagged bool
		wantIssue   IssueType
	}{
		{"no issues", "40.50", "40.00", "25.11", "25.00", false, IssueNone},
		{"retail underpriced", "40.50", "30.00", "25.11", "25.00", true, IssueRetailUnderpriced},
		{"wholesale underpriced", "40.50", "40.00", "25.11", "18.00", true, IssueWholesaleUnderpriced},
		{"both underpriced", "40.50", "30.00", "25.11", "18.00", true, IssueBothUnderpriced},
		// Final price well ABOVE suggested: flagged into the candidate
		// set but classified NO_ISSUES (positive direction only).
		{"overpriced stays unclassified", "40.50", "80.00", "25.11", "25.00", true, IssueNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectMispricing(
				money.Must(tt.sr), money.Must(tt.fr),
				money.Must(tt.sw), money.Must(tt.fw),
				threshold,
			)
			assert.Equal(t, tt.wantFlagged, got.Flagged)
			assert.Equal(t, tt.wantIssue, got.Issue)
		})
	}
}
