package performance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mkostecki/PortfolioManager/internal/investment/models"
)

// Ledger supplies the ordered transaction list of a portfolio. A ledger
// failure is the one error that aborts a whole request.
type Ledger interface {
	ListByPortfolio(ctx context.Context, portfolioID uuid.UUID) ([]models.Transaction, error)
}

// Oracle supplies current and historical per-symbol prices. Both methods
// return ErrPriceUnavailable (possibly wrapped) when no quote exists; any
// timeout or retry policy lives behind this interface, not in the core.
type Oracle interface {
	CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	PriceAt(ctx context.Context, symbol string, year int, month time.Month) (decimal.Decimal, error)
}

type Service interface {
	GetHoldings(ctx context.Context, portfolioID uuid.UUID) ([]Holding, []Diagnostic, error)
	GetMonthlyPerformance(ctx context.Context, portfolioID uuid.UUID) ([]MonthlyPerformance, []Diagnostic, error)
}

type service struct {
	ledger Ledger
	oracle Oracle
	now    func() time.Time
}

func NewService(ledger Ledger, oracle Oracle) Service {
	return &service{ledger: ledger, oracle: oracle, now: time.Now}
}

func (s *service) GetHoldings(ctx context.Context, portfolioID uuid.UUID) ([]Holding, []Diagnostic, error) {
	transactions, err := s.ledger.ListByPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, nil, err
	}

	positions, diagnostics := AggregatePositions(transactions)
	quotes := newQuoteCache(s.oracle)
	holdings, priceDiagnostics := Holdings(positions, quotes.currentLookup(ctx))
	return holdings, append(diagnostics, priceDiagnostics...), nil
}

func (s *service) GetMonthlyPerformance(ctx context.Context, portfolioID uuid.UUID) ([]MonthlyPerformance, []Diagnostic, error) {
	transactions, err := s.ledger.ListByPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, nil, err
	}

	quotes := newQuoteCache(s.oracle)
	series, diagnostics := MonthlySeries(transactions, quotes.historicalLookup(ctx), MonthOf(s.now()))
	return series, diagnostics, nil
}

type quote struct {
	price decimal.Decimal
	ok    bool
}

type historicalKey struct {
	symbol string
	year   int
	month  time.Month
}

// quoteCache memoizes oracle lookups for the lifetime of one request, so each
// distinct symbol (and symbol-month) is priced at most once per call. It is
// discarded when the request returns and never shared across portfolios.
type quoteCache struct {
	oracle     Oracle
	current    map[string]quote
	historical map[historicalKey]quote
}

func newQuoteCache(oracle Oracle) *quoteCache {
	return &quoteCache{
		oracle:     oracle,
		current:    make(map[string]quote),
		historical: make(map[historicalKey]quote),
	}
}

func (c *quoteCache) currentLookup(ctx context.Context) PriceLookup {
	return func(symbol string) (decimal.Decimal, bool) {
		if q, seen := c.current[symbol]; seen {
			return q.price, q.ok
		}
		price, err := c.oracle.CurrentPrice(ctx, symbol)
		q := quote{price: price, ok: err == nil}
		c.current[symbol] = q
		return q.price, q.ok
	}
}

func (c *quoteCache) historicalLookup(ctx context.Context) HistoricalPriceLookup {
	return func(symbol string, year int, month time.Month) (decimal.Decimal, bool) {
		key := historicalKey{symbol: symbol, year: year, month: month}
		if q, seen := c.historical[key]; seen {
			return q.price, q.ok
		}
		price, err := c.oracle.PriceAt(ctx, symbol, year, month)
		q := quote{price: price, ok: err == nil}
		c.historical[key] = q
		return q.price, q.ok
	}
}
