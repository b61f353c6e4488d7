package performance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mkostecki/PortfolioManager/internal/investment/models"
)

type mockLedger struct {
	transactions []models.Transaction
	err          error
}

func (m *mockLedger) ListByPortfolio(_ context.Context, _ uuid.UUID) ([]models.Transaction, error) {
	return m.transactions, m.err
}

type mockOracle struct {
	currentPrices    map[string]string
	currentCalls     map[string]int
	historicalPrices map[monthPrice]string
	historicalCalls  map[monthPrice]int
}

func newMockOracle() *mockOracle {
	return &mockOracle{
		currentPrices:    make(map[string]string),
		currentCalls:     make(map[string]int),
		historicalPrices: make(map[monthPrice]string),
		historicalCalls:  make(map[monthPrice]int),
	}
}

func (m *mockOracle) CurrentPrice(_ context.Context, symbol string) (decimal.Decimal, error) {
	m.currentCalls[symbol]++
	raw, ok := m.currentPrices[symbol]
	if !ok {
		return decimal.Zero, errors.New("no quote")
	}
	return decimal.RequireFromString(raw), nil
}

func (m *mockOracle) PriceAt(_ context.Context, symbol string, year int, month time.Month) (decimal.Decimal, error) {
	key := monthPrice{symbol, year, month}
	m.historicalCalls[key]++
	raw, ok := m.historicalPrices[key]
	if !ok {
		return decimal.Zero, errors.New("no quote")
	}
	return decimal.RequireFromString(raw), nil
}

func newTestService(ledger Ledger, oracle Oracle, now time.Time) Service {
	return &service{ledger: ledger, oracle: oracle, now: func() time.Time { return now }}
}

func TestGetHoldings_ComputesFromLedger(t *testing.T) {
	ledger := &mockLedger{transactions: []models.Transaction{
		newTransaction("AAPL", 10, models.TransactionBuy, "100", "2024-01-10"),
		newTransaction("AAPL", 10, models.TransactionBuy, "120", "2024-02-10"),
	}}
	oracle := newMockOracle()
	oracle.currentPrices["AAPL"] = "130"

	svc := newTestService(ledger, oracle, time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC))
	holdings, diagnostics, err := svc.GetHoldings(context.Background(), uuid.New())

	assert.NoError(t, err)
	assert.Empty(t, diagnostics)
	assert.Len(t, holdings, 1)
	assert.True(t, holdings[0].CostBasisPerUnit.Equal(decimal.RequireFromString("110")))
	assert.True(t, holdings[0].CapitalGain.Equal(decimal.RequireFromString("400")))
}

func TestGetHoldings_LedgerFailureAborts(t *testing.T) {
	ledger := &mockLedger{err: errors.New("connection reset")}
	svc := newTestService(ledger, newMockOracle(), time.Now())

	holdings, diagnostics, err := svc.GetHoldings(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.Nil(t, holdings)
	assert.Nil(t, diagnostics)
}

func TestGetHoldings_EachSymbolPricedOnce(t *testing.T) {
	ledger := &mockLedger{transactions: []models.Transaction{
		newTransaction("AAPL", 10, models.TransactionBuy, "100", "2024-01-10"),
		newTransaction("AAPL", 5, models.TransactionBuy, "110", "2024-02-10"),
		newTransaction("MSFT", 3, models.TransactionBuy, "200", "2024-01-15"),
	}}
	oracle := newMockOracle()
	oracle.currentPrices["AAPL"] = "130"
	oracle.currentPrices["MSFT"] = "220"

	svc := newTestService(ledger, oracle, time.Now())
	_, _, err := svc.GetHoldings(context.Background(), uuid.New())

	assert.NoError(t, err)
	assert.Equal(t, 1, oracle.currentCalls["AAPL"])
	assert.Equal(t, 1, oracle.currentCalls["MSFT"])
}

func TestGetHoldings_OracleFailureDegradesToDiagnostic(t *testing.T) {
	ledger := &mockLedger{transactions: []models.Transaction{
		newTransaction("AAPL", 10, models.TransactionBuy, "100", "2024-01-10"),
	}}

	svc := newTestService(ledger, newMockOracle(), time.Now())
	holdings, diagnostics, err := svc.GetHoldings(context.Background(), uuid.New())

	assert.NoError(t, err)
	assert.Len(t, holdings, 1)
	assert.True(t, holdings[0].PriceUnavailable)
	assert.Len(t, diagnostics, 1)
	assert.Equal(t, DiagPriceUnavailable, diagnostics[0].Code)
}

func TestGetMonthlyPerformance_RunsThroughCurrentMonth(t *testing.T) {
	ledger := &mockLedger{transactions: []models.Transaction{
		newTransaction("AAPL", 10, models.TransactionBuy, "100", "2024-01-10"),
	}}
	oracle := newMockOracle()
	for month := time.January; month <= time.April; month++ {
		oracle.historicalPrices[monthPrice{"AAPL", 2024, month}] = "105"
	}

	svc := newTestService(ledger, oracle, time.Date(2024, time.April, 20, 0, 0, 0, 0, time.UTC))
	series, diagnostics, err := svc.GetMonthlyPerformance(context.Background(), uuid.New())

	assert.NoError(t, err)
	assert.Empty(t, diagnostics)
	assert.Len(t, series, 4)
	assert.Equal(t, time.April, series[3].Month)
}

func TestGetMonthlyPerformance_EachSymbolMonthPricedOnce(t *testing.T) {
	ledger := &mockLedger{transactions: []models.Transaction{
		newTransaction("AAPL", 10, models.TransactionBuy, "100", "2024-01-10"),
	}}
	oracle := newMockOracle()
	oracle.historicalPrices[monthPrice{"AAPL", 2024, time.January}] = "105"
	oracle.historicalPrices[monthPrice{"AAPL", 2024, time.February}] = "108"

	svc := newTestService(ledger, oracle, time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC))
	_, _, err := svc.GetMonthlyPerformance(context.Background(), uuid.New())

	assert.NoError(t, err)
	assert.Equal(t, 1, oracle.historicalCalls[monthPrice{"AAPL", 2024, time.January}])
	assert.Equal(t, 1, oracle.historicalCalls[monthPrice{"AAPL", 2024, time.February}])
}

func TestGetMonthlyPerformance_EmptyLedger(t *testing.T) {
	svc := newTestService(&mockLedger{}, newMockOracle(), time.Now())

	series, diagnostics, err := svc.GetMonthlyPerformance(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Empty(t, series)
	assert.Empty(t, diagnostics)
}
