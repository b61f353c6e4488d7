package pricing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
)

// ErrPriceUnavailable marks a symbol without a usable quote. Callers treat it
// as a partial failure, not a request failure.
var ErrPriceUnavailable = errors.New("price unavailable")

// Service is the Price Oracle consumed by the performance core. Current
// quotes are served from the price store when present and fetched from the
// market-data API otherwise; historical month-end closes always come from
// the API.
type Service interface {
	CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	PriceAt(ctx context.Context, symbol string, year int, month time.Month) (decimal.Decimal, error)
	RefreshPrices(ctx context.Context) error
}

type MarketDataClient interface {
	FetchQuote(ctx context.Context, symbol string) (decimal.Decimal, error)
	FetchMonthlyClose(ctx context.Context, symbol string, year int, month time.Month) (decimal.Decimal, error)
}

// SymbolSource lists the symbols worth keeping fresh in the price store,
// in practice the distinct symbols present in the transaction ledger.
type SymbolSource interface {
	ListSymbols(ctx context.Context) ([]string, error)
}

type service struct {
	priceRepo     PriceRepository
	marketDataSvc MarketDataClient
	symbolSource  SymbolSource
}

func NewPricingService(repo PriceRepository, marketDataSvc MarketDataClient, symbolSource SymbolSource) Service {
	return &service{priceRepo: repo, marketDataSvc: marketDataSvc, symbolSource: symbolSource}
}

func (s *service) CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	price, err := s.priceRepo.getBySymbol(ctx, symbol)
	if err == nil {
		return price, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, err
	}

	price, err = s.marketDataSvc.FetchQuote(ctx, symbol)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", symbol, ErrPriceUnavailable)
	}
	if err := s.priceRepo.upsert(ctx, symbol, price); err != nil {
		// A stale price store is tolerable, a dropped quote is not.
		log.Printf("Failed to store price for %s: %v", symbol, err)
	}
	return price, nil
}

func (s *service) PriceAt(ctx context.Context, symbol string, year int, month time.Month) (decimal.Decimal, error) {
	price, err := s.marketDataSvc.FetchMonthlyClose(ctx, symbol, year, month)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s %d-%02d: %w", symbol, year, int(month), ErrPriceUnavailable)
	}
	return price, nil
}

// RefreshPrices re-fetches a quote for every symbol present in the ledger and
// stores it. One failing symbol does not stop the others.
func (s *service) RefreshPrices(ctx context.Context) error {
	symbols, err := s.symbolSource.ListSymbols(ctx)
	if err != nil {
		return err
	}

	failed := 0
	for _, symbol := range symbols {
		price, err := s.marketDataSvc.FetchQuote(ctx, symbol)
		if err != nil {
			log.Printf("Failed to fetch price for %s: %v", symbol, err)
			failed++
			continue
		}
		if err := s.priceRepo.upsert(ctx, symbol, price); err != nil {
			log.Printf("Failed to store price for %s: %v", symbol, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to refresh %d of %d symbols", failed, len(symbols))
	}
	return nil
}
