package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionBuy  TransactionType = "Buy"
	TransactionSell TransactionType = "Sell"
)

var SupportedCurrencies = map[string]bool{
	"EUR": true,
	"USD": true,
	"CAD": true,
}

// Transaction is one ledger entry of a portfolio. Immutable once created,
// deletion is the only mutation exposed over the API.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	PortfolioID uuid.UUID       `json:"portfolio_id"`
	Symbol      string          `json:"symbol"`
	Quantity    int64           `json:"quantity"`
	Type        TransactionType `json:"transaction_type"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Date        time.Time       `json:"date"`
	Currency    string          `json:"currency"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (t TransactionType) Valid() bool {
	return t == TransactionBuy || t == TransactionSell
}
