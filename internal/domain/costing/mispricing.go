package costing

import (
	"github.com/shopspring/decimal"

	"atelier/internal/core/money"
)

// DefaultMispricingThreshold is the percentage gap between suggested and
// final price past which a product enters the mispricing report.
var DefaultMispricingThreshold = decimal.NewFromInt(20)

// IssueType classifies a mispriced product.
type IssueType string

const (
	// IssueNone: the product is in the candidate set but neither final
	// price sits below its suggested price by the threshold.
	IssueNone IssueType = "NO_ISSUES"

	IssueRetailUnderpriced    IssueType = "RETAIL_UNDERPRICED"
	IssueWholesaleUnderpriced IssueType = "WHOLESALE_UNDERPRICED"
	IssueBothUnderpriced      IssueType = "BOTH_UNDERPRICED"
)

// PriceDifferencePercentage measures how far the final price sits below the
// suggested one, relative to the final price. Positive means underpriced.
// A zero final price yields zero: there is no meaningful ratio to report.
func PriceDifferencePercentage(suggested, final decimal.Decimal) decimal.Decimal {
	if final.IsZero() {
		return decimal.Zero
	}
	return money.RoundPercent(suggested.Sub(final).Div(final).Mul(money.Hundred))
}

// Mispricing is the per-product detector result.
type Mispricing struct {
	RetailDiffPercent    decimal.Decimal `json:"retailDiffPercent"`
	WholesaleDiffPercent decimal.Decimal `json:"wholesaleDiffPercent"`
	Flagged              bool            `json:"flagged"`
	Issue                IssueType       `json:"issue"`
}

// DetectMispricing compares suggested and final prices against the threshold.
//
// Candidate inclusion is symmetric (|diff| >= threshold on either side), but
// classification only tests the positive direction: a final price far ABOVE
// the suggested one flags the product yet classifies as NO_ISSUES.
func DetectMispricing(suggestedRetail, finalRetail, suggestedWholesale, finalWholesale, threshold decimal.Decimal) Mispricing {
	retailDiff := PriceDifferencePercentage(suggestedRetail, finalRetail)
	wholesaleDiff := PriceDifferencePercentage(suggestedWholesale, finalWholesale)

	result := Mispricing{
		RetailDiffPercent:    retailDiff,
		WholesaleDiffPercent: wholesaleDiff,
		Issue:                IssueNone,
	}

	result.Flagged = retailDiff.Abs().GreaterThanOrEqual(threshold) ||
		wholesaleDiff.Abs().GreaterThanOrEqual(threshold)
	if !result.Flagged {
		return result
	}

	retailUnder := retailDiff.GreaterThanOrEqual(threshold)
	wholesaleUnder := wholesaleDiff.GreaterThanOrEqual(threshold)

	switch {
	case retailUnder && wholesaleUnder:
		result.Issue = IssueBothUnderpriced
	case retailUnder:
		result.Issue = IssueRetailUnderpriced
	case wholesaleUnder:
		result.Issue = IssueWholesaleUnderpriced
	}

	return result
}
