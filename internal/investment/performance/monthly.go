package performance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkostecki/PortfolioManager/internal/investment/models"
)

// Month is a calendar month used to order the performance series.
// Comparison is numeric on (Year, Month), never on formatted strings.
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// End returns the last instant of the month in UTC.
func (m Month) End() time.Time {
	firstOfNext := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.Add(-time.Nanosecond)
}

// HistoricalPriceLookup resolves the price of a symbol at the end of a given
// month. The second return is false when no quote is available.
type HistoricalPriceLookup func(symbol string, year int, month time.Month) (decimal.Decimal, bool)

// MonthlyPerformance is one point of the trend series: the portfolio valued
// as of the end of one calendar month.
type MonthlyPerformance struct {
	Year             int             `json:"year"`
	Month            time.Month      `json:"month"`
	TotalValue       decimal.Decimal `json:"total_value"`
	CapitalGain      decimal.Decimal `json:"capital_gain"`
	PerformancePct   decimal.Decimal `json:"performance_pct"`
	PriceUnavailable bool            `json:"price_unavailable,omitempty"`
}

// MonthlySeries buckets a portfolio's ledger into one entry per calendar
// month, ascending, from the month of the earliest transaction through the
// `until` month. Each entry values the cumulative position as of that
// month-end at that month's historical prices. A month without activity
// carries the prior month's ending position forward and revalues it at the
// new month's prices; it is never omitted from the series.
//
// An empty ledger yields an empty series so callers can render "no data".
func MonthlySeries(transactions []models.Transaction, lookup HistoricalPriceLookup, until Month) ([]MonthlyPerformance, []Diagnostic) {
	if len(transactions) == 0 {
		return nil, nil
	}

	var diagnostics []Diagnostic
	if diag := currencyMismatch(transactions); diag != nil {
		diagnostics = append(diagnostics, *diag)
	}

	ordered := make([]models.Transaction, len(transactions))
	copy(ordered, transactions)
	sortTransactions(ordered)

	first := MonthOf(ordered[0].Date)
	if until.Before(first) {
		until = first
	}

	positions := make(map[string]*Position)
	failed := make(map[string]bool)
	next := 0

	var series []MonthlyPerformance
	for month := first; ; month = month.Next() {
		monthEnd := month.End()
		for next < len(ordered) && !ordered[next].Date.After(monthEnd) {
			tx := ordered[next]
			next++
			if failed[tx.Symbol] {
				continue
			}
			position, ok := positions[tx.Symbol]
			if !ok {
				position = &Position{Symbol: tx.Symbol, CostBasisPerUnit: decimal.Zero, Currency: tx.Currency}
				positions[tx.Symbol] = position
			}
			if err := applyTransaction(position, tx); err != nil {
				diagnostics = append(diagnostics, replayDiagnostic(tx.Symbol, err))
				failed[tx.Symbol] = true
				delete(positions, tx.Symbol)
			}
		}

		series = append(series, valueMonth(positions, lookup, month, &diagnostics))

		if !month.Before(until) {
			break
		}
	}
	return series, diagnostics
}

// valueMonth prices every held position at the month's historical price.
// If any held symbol cannot be priced the entry is flagged and its valuation
// fields stay zero; the series itself keeps going.
func valueMonth(positions map[string]*Position, lookup HistoricalPriceLookup, month Month, diagnostics *[]Diagnostic) MonthlyPerformance {
	entry := MonthlyPerformance{
		Year:           month.Year,
		Month:          month.Month,
		TotalValue:     decimal.Zero,
		CapitalGain:    decimal.Zero,
		PerformancePct: decimal.Zero,
	}

	totalValue := decimal.Zero
	totalInvested := decimal.Zero
	for symbol, position := range positions {
		if position.Quantity == 0 {
			continue
		}
		price, ok := lookup(symbol, month.Year, month.Month)
		if !ok {
			*diagnostics = append(*diagnostics, Diagnostic{
				Code:    DiagPriceUnavailable,
				Symbol:  symbol,
				Year:    month.Year,
				Month:   month.Month,
				Message: "no historical price for " + symbol,
			})
			entry.PriceUnavailable = true
			continue
		}
		quantity := decimal.NewFromInt(position.Quantity)
		totalValue = totalValue.Add(price.Mul(quantity))
		totalInvested = totalInvested.Add(position.CostBasisPerUnit.Mul(quantity))
	}
	if entry.PriceUnavailable {
		return entry
	}

	entry.TotalValue = totalValue
	entry.CapitalGain = totalValue.Sub(totalInvested)
	entry.PerformancePct = performancePct(entry.CapitalGain, totalInvested)
	return entry
}
