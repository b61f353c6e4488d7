package performance

import (
	"sort"

	"github.com/shopspring/decimal"
)

// PriceLookup resolves the current price of a symbol. The second return is
// false when the oracle has no quote; the holding is then flagged instead of
// failing the whole computation.
type PriceLookup func(symbol string) (decimal.Decimal, bool)

// Holding is the externally visible, fully valued view of a Position.
// It is recomputed on every query and never stored.
type Holding struct {
	Symbol           string          `json:"symbol"`
	Quantity         int64           `json:"quantity"`
	CostBasisPerUnit decimal.Decimal `json:"cost_basis_per_unit"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	CurrentValue     decimal.Decimal `json:"current_value"`
	CapitalGain      decimal.Decimal `json:"capital_gain"`
	PerformancePct   decimal.Decimal `json:"performance_pct"`
	PriceUnavailable bool            `json:"price_unavailable,omitempty"`
	Currency         string          `json:"currency,omitempty"`
}

// Holdings values every position at its current price, sorted by symbol.
// Symbols the oracle cannot quote are kept in the result with the
// price_unavailable flag raised and their valuation fields left zero.
func Holdings(positions map[string]Position, lookup PriceLookup) ([]Holding, []Diagnostic) {
	symbols := make([]string, 0, len(positions))
	for symbol := range positions {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var diagnostics []Diagnostic
	holdings := make([]Holding, 0, len(symbols))
	for _, symbol := range symbols {
		position := positions[symbol]
		holding := Holding{
			Symbol:           position.Symbol,
			Quantity:         position.Quantity,
			CostBasisPerUnit: position.CostBasisPerUnit,
			Currency:         position.Currency,
		}
		price, ok := lookup(symbol)
		if !ok {
			holding.PriceUnavailable = true
			diagnostics = append(diagnostics, Diagnostic{
				Code:    DiagPriceUnavailable,
				Symbol:  symbol,
				Message: "no current price for " + symbol,
			})
			holdings = append(holdings, holding)
			continue
		}
		quantity := decimal.NewFromInt(position.Quantity)
		invested := position.CostBasisPerUnit.Mul(quantity)
		holding.CurrentPrice = price
		holding.CurrentValue = price.Mul(quantity)
		holding.CapitalGain = holding.CurrentValue.Sub(invested)
		holding.PerformancePct = performancePct(holding.CapitalGain, invested)
		holdings = append(holdings, holding)
	}
	return holdings, diagnostics
}

// CombineLots merges holdings of the same symbol, already valued lot by lot,
// into a single Holding. The performance of the merged holding is the
// quantity-weighted average of the lot performances, computed as one exact
// reduction: sums are accumulated first and divided once at the end, so the
// result does not drift with lot order or count.
func CombineLots(lots []Holding) Holding {
	if len(lots) == 0 {
		return Holding{}
	}

	combined := Holding{
		Symbol:   lots[0].Symbol,
		Currency: lots[0].Currency,
	}
	totalQuantity := decimal.Zero
	totalValue := decimal.Zero
	totalGain := decimal.Zero
	weightedBasis := decimal.Zero
	weightedPerformance := decimal.Zero
	for _, lot := range lots {
		if lot.PriceUnavailable {
			combined.PriceUnavailable = true
		}
		quantity := decimal.NewFromInt(lot.Quantity)
		combined.Quantity += lot.Quantity
		totalQuantity = totalQuantity.Add(quantity)
		totalValue = totalValue.Add(lot.CurrentPrice.Mul(quantity))
		totalGain = totalGain.Add(lot.CapitalGain)
		weightedBasis = weightedBasis.Add(lot.CostBasisPerUnit.Mul(quantity))
		weightedPerformance = weightedPerformance.Add(lot.PerformancePct.Mul(quantity))
	}
	if combined.PriceUnavailable || totalQuantity.IsZero() {
		if !totalQuantity.IsZero() {
			combined.CostBasisPerUnit = weightedBasis.Div(totalQuantity)
		}
		return combined
	}

	combined.CostBasisPerUnit = weightedBasis.Div(totalQuantity)
	combined.CurrentPrice = totalValue.Div(totalQuantity)
	combined.CurrentValue = totalValue
	combined.CapitalGain = totalGain
	combined.PerformancePct = weightedPerformance.Div(totalQuantity)
	return combined
}

// performancePct expresses a gain as a percentage of the invested amount.
// A zero denominator yields 0 rather than an arithmetic fault.
func performancePct(gain, invested decimal.Decimal) decimal.Decimal {
	if invested.IsZero() {
		return decimal.Zero
	}
	return gain.Div(invested).Mul(decimal.NewFromInt(100))
}
