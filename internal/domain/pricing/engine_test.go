package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/internal/core/id"
	"atelier/internal/core/money"
)

func retailLine(qty int, retail string) Line {
	return Line{
		ProductID:     id.New(),
		Quantity:      qty,
		UnitRetail:    money.Must(retail),
		UnitWholesale: money.Must(retail).Mul(money.Must("0.62")),
	}
}

func TestPriceSale_FinalPriceTarget(t *testing.T) {
	// 2 units at 40.50 plus 5.00 packaging -> suggested 86.00.
	// Final 75.00 -> discount (86-75)/86*100 = 12.7907%, unit 35.32.
	lines := []Line{retailLine(2, "40.50")}

	got, err := PriceSale(lines, money.Must("5.00"), false, FinalPriceTarget{FinalPrice: money.Must("75.00")})
	require.NoError(t, err)

	assert.True(t, got.SuggestedTotal.Equal(money.Must("86.00")), "suggested: %s", got.SuggestedTotal)
	assert.True(t, got.FinalTotal.Equal(money.Must("75.00")))
	assert.True(t, got.DiscountPercent.Equal(money.Must("12.7907")), "discount: %s", got.DiscountPercent)

	require.Len(t, got.Lines, 1)
	assert.True(t, got.Lines[0].SuggestedUnitPrice.Equal(money.Must("40.50")))
	assert.True(t, got.Lines[0].DiscountedUnitPrice.Equal(money.Must("35.32")), "unit: %s", got.Lines[0].DiscountedUnitPrice)
}

func TestPriceSale_DiscountTarget(t *testing.T) {
	// suggested 100.00, 10% discount -> amount 10.00, final 90.00, unit 22.50.
	lines := []Line{retailLine(4, "25.00")}

	got, err := PriceSale(lines, decimal.Zero, false, DiscountTarget{Percent: money.Must("10")})
	require.NoError(t, err)

	assert.True(t, got.SuggestedTotal.Equal(money.Must("100.00")))
	assert.True(t, got.FinalTotal.Equal(money.Must("90.00")))
	assert.True(t, got.Lines[0].DiscountedUnitPrice.Equal(money.Must("22.50")))
}

func TestPriceSale_WholesaleUsesWholesalePrice(t *testing.T) {
	line := Line{
		ProductID:     id.New(),
		Quantity:      1,
		UnitRetail:    money.Must("30.00"),
		UnitWholesale: money.Must("18.60"),
	}

	got, err := PriceSale([]Line{line}, decimal.Zero, true, FinalPriceTarget{FinalPrice: money.Must("18.60")})
	require.NoError(t, err)

	assert.True(t, got.SuggestedTotal.Equal(money.Must("18.60")))
	assert.True(t, got.DiscountPercent.IsZero())
	assert.True(t, got.Lines[0].SuggestedUnitPrice.Equal(money.Must("18.60")))
}

func TestPriceSale_NegativeDiscountIsMarkup(t *testing.T) {
	// Final above suggested: negative percentage, per-line prices go up.
	lines := []Line{retailLine(1, "50.00")}

	got, err := PriceSale(lines, decimal.Zero, false, FinalPriceTarget{FinalPrice: money.Must("60.00")})
	require.NoError(t, err)

	assert.True(t, got.DiscountPercent.Equal(money.Must("-20")), "discount: %s", got.DiscountPercent)
	assert.True(t, got.Lines[0].DiscountedUnitPrice.Equal(money.Must("60.00")))
}

func TestPriceSale_ZeroSuggestedTotal(t *testing.T) {
	got, err := PriceSale(nil, decimal.Zero, false, FinalPriceTarget{FinalPrice: decimal.Zero})
	require.NoError(t, err)

	assert.True(t, got.SuggestedTotal.IsZero())
	assert.True(t, got.DiscountPercent.IsZero())
	assert.Empty(t, got.Lines)
}

func TestPriceSale_NilTargetRejected(t *testing.T) {
	_, err := PriceSale([]Line{retailLine(1, "10.00")}, decimal.Zero, false, nil)
	require.Error(t, err)
}

func TestPriceSale_RecomputeIsDeterministic(t *testing.T) {
	lines := []Line{retailLine(3, "19.99"), retailLine(1, "7.35")}
	target := FinalPriceTarget{FinalPrice: money.Must("55.00")}

	first, err := PriceSale(lines, money.Must("2.00"), false, target)
	require.NoError(t, err)
	second, err := PriceSale(lines, money.Must("2.00"), false, target)
	require.NoError(t, err)

	assert.True(t, first.DiscountPercent.Equal(second.DiscountPercent))
	for i := range first.Lines {
		assert.True(t, first.Lines[i].DiscountedUnitPrice.Equal(second.Lines[i].DiscountedUnitPrice))
	}
}
