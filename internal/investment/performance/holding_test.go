package performance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func fixedPrices(prices map[string]string) PriceLookup {
	return func(symbol string) (decimal.Decimal, bool) {
		raw, ok := prices[symbol]
		if !ok {
			return decimal.Zero, false
		}
		return decimal.RequireFromString(raw), true
	}
}

func TestHoldings_Valuation(t *testing.T) {
	positions := map[string]Position{
		"AAPL": {Symbol: "AAPL", Quantity: 20, CostBasisPerUnit: decimal.RequireFromString("110"), Currency: "USD"},
	}

	holdings, diagnostics := Holdings(positions, fixedPrices(map[string]string{"AAPL": "130"}))
	assert.Empty(t, diagnostics)
	assert.Len(t, holdings, 1)

	holding := holdings[0]
	assert.True(t, holding.CurrentValue.Equal(decimal.RequireFromString("2600")))
	assert.True(t, holding.CapitalGain.Equal(decimal.RequireFromString("400")))
	assert.Equal(t, "18.18", holding.PerformancePct.StringFixed(2))
}

func TestHoldings_SortedBySymbol(t *testing.T) {
	positions := map[string]Position{
		"MSFT": {Symbol: "MSFT", Quantity: 1, CostBasisPerUnit: decimal.RequireFromString("200")},
		"AAPL": {Symbol: "AAPL", Quantity: 1, CostBasisPerUnit: decimal.RequireFromString("100")},
		"GOOG": {Symbol: "GOOG", Quantity: 1, CostBasisPerUnit: decimal.RequireFromString("150")},
	}

	holdings, _ := Holdings(positions, fixedPrices(map[string]string{"AAPL": "1", "GOOG": "1", "MSFT": "1"}))
	symbols := make([]string, 0, len(holdings))
	for _, holding := range holdings {
		symbols = append(symbols, holding.Symbol)
	}
	assert.Equal(t, []string{"AAPL", "GOOG", "MSFT"}, symbols)
}

func TestHoldings_PriceUnavailableFlagsInsteadOfFailing(t *testing.T) {
	positions := map[string]Position{
		"AAPL": {Symbol: "AAPL", Quantity: 10, CostBasisPerUnit: decimal.RequireFromString("100")},
		"MSFT": {Symbol: "MSFT", Quantity: 5, CostBasisPerUnit: decimal.RequireFromString("200")},
	}

	holdings, diagnostics := Holdings(positions, fixedPrices(map[string]string{"MSFT": "220"}))
	assert.Len(t, holdings, 2)

	assert.True(t, holdings[0].PriceUnavailable)
	assert.True(t, holdings[0].CurrentValue.IsZero())
	assert.False(t, holdings[1].PriceUnavailable)
	assert.True(t, holdings[1].CurrentValue.Equal(decimal.RequireFromString("1100")))

	assert.Len(t, diagnostics, 1)
	assert.Equal(t, DiagPriceUnavailable, diagnostics[0].Code)
	assert.Equal(t, "AAPL", diagnostics[0].Symbol)
}

func TestHoldings_ZeroQuantityReportsZeroPerformance(t *testing.T) {
	positions := map[string]Position{
		"AAPL": {Symbol: "AAPL", Quantity: 0, CostBasisPerUnit: decimal.RequireFromString("100")},
	}

	holdings, diagnostics := Holdings(positions, fixedPrices(map[string]string{"AAPL": "130"}))
	assert.Empty(t, diagnostics)
	assert.Len(t, holdings, 1)
	assert.True(t, holdings[0].CurrentValue.IsZero())
	assert.True(t, holdings[0].CapitalGain.IsZero())
	assert.True(t, holdings[0].PerformancePct.IsZero())
}

func TestCombineLots_QuantityWeightedPerformance(t *testing.T) {
	lots := []Holding{
		{
			Symbol:           "AAPL",
			Quantity:         4,
			CostBasisPerUnit: decimal.RequireFromString("100"),
			CurrentPrice:     decimal.RequireFromString("110"),
			CurrentValue:     decimal.RequireFromString("440"),
			CapitalGain:      decimal.RequireFromString("40"),
			PerformancePct:   decimal.RequireFromString("10"),
		},
		{
			Symbol:           "AAPL",
			Quantity:         6,
			CostBasisPerUnit: decimal.RequireFromString("100"),
			CurrentPrice:     decimal.RequireFromString("120"),
			CurrentValue:     decimal.RequireFromString("720"),
			CapitalGain:      decimal.RequireFromString("120"),
			PerformancePct:   decimal.RequireFromString("20"),
		},
	}

	combined := CombineLots(lots)
	assert.Equal(t, int64(10), combined.Quantity)
	// (4*10 + 6*20) / 10
	assert.True(t, combined.PerformancePct.Equal(decimal.RequireFromString("16")),
		"expected 16, got %s", combined.PerformancePct)
	assert.True(t, combined.CurrentValue.Equal(decimal.RequireFromString("1160")))
	assert.True(t, combined.CapitalGain.Equal(decimal.RequireFromString("160")))
}

func TestCombineLots_OrderIndependent(t *testing.T) {
	first := Holding{Symbol: "AAPL", Quantity: 3, CostBasisPerUnit: decimal.RequireFromString("90"),
		CurrentPrice: decimal.RequireFromString("99"), CapitalGain: decimal.RequireFromString("27"),
		PerformancePct: decimal.RequireFromString("10")}
	second := Holding{Symbol: "AAPL", Quantity: 7, CostBasisPerUnit: decimal.RequireFromString("110"),
		CurrentPrice: decimal.RequireFromString("121"), CapitalGain: decimal.RequireFromString("77"),
		PerformancePct: decimal.RequireFromString("10")}

	forward := CombineLots([]Holding{first, second})
	reversed := CombineLots([]Holding{second, first})
	assert.True(t, forward.PerformancePct.Equal(reversed.PerformancePct))
	assert.True(t, forward.CostBasisPerUnit.Equal(reversed.CostBasisPerUnit))
	assert.True(t, forward.CurrentValue.Equal(reversed.CurrentValue))
}

func TestCombineLots_EmptyAndZeroQuantity(t *testing.T) {
	assert.Equal(t, Holding{}, CombineLots(nil))

	lots := []Holding{
		{Symbol: "AAPL", Quantity: 0, CostBasisPerUnit: decimal.RequireFromString("100")},
	}
	combined := CombineLots(lots)
	assert.Equal(t, int64(0), combined.Quantity)
	assert.True(t, combined.PerformancePct.IsZero())
}

func TestCombineLots_UnpricedLotPoisonsValuation(t *testing.T) {
	lots := []Holding{
		{Symbol: "AAPL", Quantity: 4, CostBasisPerUnit: decimal.RequireFromString("100"),
			CurrentPrice: decimal.RequireFromString("110"), PerformancePct: decimal.RequireFromString("10")},
		{Symbol: "AAPL", Quantity: 6, CostBasisPerUnit: decimal.RequireFromString("100"), PriceUnavailable: true},
	}

	combined := CombineLots(lots)
	assert.True(t, combined.PriceUnavailable)
	assert.Equal(t, int64(10), combined.Quantity)
	assert.True(t, combined.CurrentValue.IsZero())
	assert.True(t, combined.CostBasisPerUnit.Equal(decimal.RequireFromString("100")))
}
