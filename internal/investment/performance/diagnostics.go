package performance

import (
	"fmt"
	"time"
)

const (
	DiagInsufficientHoldings = "insufficient_holdings"
	DiagPriceUnavailable     = "price_unavailable"
	DiagCurrencyMismatch     = "currency_mismatch"
	DiagInvalidTransaction   = "invalid_transaction"
)

// Diagnostic reports a per-symbol or per-month partial failure. The primary
// result stays usable; callers decide how to render the degraded parts.
type Diagnostic struct {
	Code    string     `json:"code"`
	Symbol  string     `json:"symbol,omitempty"`
	Year    int        `json:"year,omitempty"`
	Month   time.Month `json:"month,omitempty"`
	Message string     `json:"message"`
}

// InsufficientHoldingsError reports a Sell that exceeds the quantity held for
// its symbol at that point of the replay.
type InsufficientHoldingsError struct {
	Symbol    string
	Requested int64
	Held      int64
}

func (e *InsufficientHoldingsError) Error() string {
	return fmt.Sprintf("insufficient holdings for %s: selling %d, holding %d", e.Symbol, e.Requested, e.Held)
}
