package performance

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mkostecki/PortfolioManager/internal/investment/models"
)

// Position is the running per-symbol state after replaying a portfolio's
// transactions in chronological order. The cost basis is the quantity-weighted
// average purchase price of the currently held quantity; Sells never touch it.
type Position struct {
	Symbol           string          `json:"symbol"`
	Quantity         int64           `json:"quantity"`
	CostBasisPerUnit decimal.Decimal `json:"cost_basis_per_unit"`
	Currency         string          `json:"currency"`
}

// AggregatePositions folds a portfolio's transactions into one Position per
// symbol. Transactions are grouped by symbol and replayed in ascending date
// order, ties broken by transaction id so the result is deterministic.
//
// A symbol whose replay fails (over-sell, malformed transaction) is dropped
// from the result and reported through a diagnostic; other symbols are
// unaffected. A quantity of exactly zero is a valid, fully divested position.
func AggregatePositions(transactions []models.Transaction) (map[string]Position, []Diagnostic) {
	var diagnostics []Diagnostic
	if diag := currencyMismatch(transactions); diag != nil {
		diagnostics = append(diagnostics, *diag)
	}

	bySymbol := make(map[string][]models.Transaction)
	for _, tx := range transactions {
		bySymbol[tx.Symbol] = append(bySymbol[tx.Symbol], tx)
	}

	positions := make(map[string]Position, len(bySymbol))
	for symbol, group := range bySymbol {
		sortTransactions(group)
		position := Position{
			Symbol:           symbol,
			CostBasisPerUnit: decimal.Zero,
			Currency:         group[0].Currency,
		}
		replayErr := error(nil)
		for _, tx := range group {
			if replayErr = applyTransaction(&position, tx); replayErr != nil {
				break
			}
		}
		if replayErr != nil {
			diagnostics = append(diagnostics, replayDiagnostic(symbol, replayErr))
			continue
		}
		positions[symbol] = position
	}
	return positions, diagnostics
}

// applyTransaction advances a position by one transaction. On Buy the basis is
// recomputed as the quantity-weighted average of the prior basis and the new
// lot's price. On Sell only the quantity shrinks.
func applyTransaction(position *Position, tx models.Transaction) error {
	if tx.Quantity <= 0 {
		return fmt.Errorf("non-positive quantity %d", tx.Quantity)
	}
	switch tx.Type {
	case models.TransactionBuy:
		heldQty := decimal.NewFromInt(position.Quantity)
		boughtQty := decimal.NewFromInt(tx.Quantity)
		heldCost := position.CostBasisPerUnit.Mul(heldQty)
		newCost := tx.UnitPrice.Mul(boughtQty)
		position.CostBasisPerUnit = heldCost.Add(newCost).Div(heldQty.Add(boughtQty))
		position.Quantity += tx.Quantity
	case models.TransactionSell:
		if tx.Quantity > position.Quantity {
			return &InsufficientHoldingsError{
				Symbol:    position.Symbol,
				Requested: tx.Quantity,
				Held:      position.Quantity,
			}
		}
		position.Quantity -= tx.Quantity
	default:
		return fmt.Errorf("unknown transaction type %q", tx.Type)
	}
	return nil
}

// sortTransactions orders a slice by ascending date, ties broken by id.
func sortTransactions(transactions []models.Transaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		if transactions[i].Date.Equal(transactions[j].Date) {
			return transactions[i].ID.String() < transactions[j].ID.String()
		}
		return transactions[i].Date.Before(transactions[j].Date)
	})
}

// currencyMismatch reports a portfolio whose ledger mixes currencies. Values
// are still summed without conversion, but the caller is told the totals are
// suspect.
func currencyMismatch(transactions []models.Transaction) *Diagnostic {
	seen := make(map[string]bool)
	for _, tx := range transactions {
		if tx.Currency != "" {
			seen[tx.Currency] = true
		}
	}
	if len(seen) <= 1 {
		return nil
	}
	currencies := make([]string, 0, len(seen))
	for currency := range seen {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)
	return &Diagnostic{
		Code:    DiagCurrencyMismatch,
		Message: fmt.Sprintf("portfolio mixes currencies %v, totals are summed without conversion", currencies),
	}
}

func replayDiagnostic(symbol string, err error) Diagnostic {
	code := DiagInvalidTransaction
	if _, ok := err.(*InsufficientHoldingsError); ok {
		code = DiagInsufficientHoldings
	}
	return Diagnostic{Code: code, Symbol: symbol, Message: err.Error()}
}
