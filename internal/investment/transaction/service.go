package transactions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	investErrors "github.com/mkostecki/PortfolioManager/internal/investment/errors"
	"github.com/mkostecki/PortfolioManager/internal/investment/models"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// Service is the Transaction Ledger: it validates transactions at ingestion
// and hands them back in ascending (date, id) order. Transactions are
// immutable once created; deletion is the only mutation.
type Service interface {
	CreateTransaction(ctx context.Context, portfolioID uuid.UUID, transaction *models.Transaction) error
	ListByPortfolio(ctx context.Context, portfolioID uuid.UUID) ([]models.Transaction, error)
	DeleteTransaction(ctx context.Context, portfolioID, transactionID uuid.UUID) error
	ListSymbols(ctx context.Context) ([]string, error)
}

type service struct {
	transactionRepo TransactionRepository
}

func NewTransactionService(repo TransactionRepository) Service {
	return &service{transactionRepo: repo}
}

func (s *service) CreateTransaction(ctx context.Context, portfolioID uuid.UUID, transaction *models.Transaction) error {
	if err := validateTransaction(transaction); err != nil {
		return err
	}

	transaction.ID = uuid.New()
	transaction.PortfolioID = portfolioID
	transaction.CreatedAt = time.Now()
	return s.transactionRepo.create(ctx, transaction)
}

func (s *service) ListByPortfolio(ctx context.Context, portfolioID uuid.UUID) ([]models.Transaction, error) {
	return s.transactionRepo.listByPortfolio(ctx, portfolioID)
}

func (s *service) DeleteTransaction(ctx context.Context, portfolioID, transactionID uuid.UUID) error {
	affected, err := s.transactionRepo.deleteTransaction(ctx, portfolioID, transactionID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (s *service) ListSymbols(ctx context.Context) ([]string, error) {
	return s.transactionRepo.listDistinctSymbols(ctx)
}

// validateTransaction rejects malformed transactions before they reach the
// ledger. Nothing is silently coerced.
func validateTransaction(transaction *models.Transaction) error {
	validationErrors := &investErrors.ValidationErrors{}
	if transaction.Symbol == "" {
		validationErrors.Add(investErrors.ErrMissingSymbol)
	}
	if transaction.Quantity <= 0 {
		validationErrors.Add(investErrors.ErrNonPositiveQuantity)
	}
	if !transaction.Type.Valid() {
		validationErrors.Add(investErrors.ErrInvalidTransactionType)
	}
	if transaction.UnitPrice.LessThanOrEqual(decimal.Zero) {
		validationErrors.Add(investErrors.ErrNonPositiveUnitPrice)
	}
	if !models.SupportedCurrencies[transaction.Currency] {
		validationErrors.Add(investErrors.ErrUnsupportedCurrency)
	}
	if transaction.Date.IsZero() {
		validationErrors.Add(investErrors.ErrMissingDate)
	}
	if len(validationErrors.Errors) > 0 {
		return validationErrors
	}
	return nil
}
