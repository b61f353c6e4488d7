package transactions

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/mkostecki/PortfolioManager/internal/investment/models"
)

type TransactionRepository interface {
	create(ctx context.Context, transaction *models.Transaction) error
	getByID(ctx context.Context, portfolioID, transactionID uuid.UUID) (*models.Transaction, error)
	listByPortfolio(ctx context.Context, portfolioID uuid.UUID) ([]models.Transaction, error)
	deleteTransaction(ctx context.Context, portfolioID, transactionID uuid.UUID) (int64, error)
	listDistinctSymbols(ctx context.Context) ([]string, error)
}

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) create(ctx context.Context, transaction *models.Transaction) error {
	query := `
        INSERT INTO transactions (id, portfolio_id, symbol, quantity, transaction_type, unit_price, transaction_date, currency, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := r.db.ExecContext(ctx, query, transaction.ID, transaction.PortfolioID, transaction.Symbol,
		transaction.Quantity, string(transaction.Type), transaction.UnitPrice, transaction.Date,
		transaction.Currency, transaction.CreatedAt)
	return err
}

func (r *transactionRepository) getByID(ctx context.Context, portfolioID, transactionID uuid.UUID) (*models.Transaction, error) {
	query := `SELECT id, portfolio_id, symbol, quantity, transaction_type, unit_price, transaction_date, currency, created_at
              FROM transactions WHERE id = $1 AND portfolio_id = $2`

	var t models.Transaction
	err := r.db.QueryRowContext(ctx, query, transactionID, portfolioID).Scan(
		&t.ID, &t.PortfolioID, &t.Symbol, &t.Quantity, &t.Type, &t.UnitPrice, &t.Date, &t.Currency, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepository) listByPortfolio(ctx context.Context, portfolioID uuid.UUID) ([]models.Transaction, error) {
	query := `SELECT id, portfolio_id, symbol, quantity, transaction_type, unit_price, transaction_date, currency, created_at
              FROM transactions WHERE portfolio_id = $1 ORDER BY transaction_date, id`
	rows, err := r.db.QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		err := rows.Scan(&t.ID, &t.PortfolioID, &t.Symbol, &t.Quantity, &t.Type, &t.UnitPrice, &t.Date, &t.Currency, &t.CreatedAt)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *transactionRepository) deleteTransaction(ctx context.Context, portfolioID, transactionID uuid.UUID) (int64, error) {
	query := `DELETE FROM transactions WHERE id = $1 AND portfolio_id = $2`
	result, err := r.db.ExecContext(ctx, query, transactionID, portfolioID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *transactionRepository) listDistinctSymbols(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT symbol FROM transactions ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, err
		}
		symbols = append(symbols, symbol)
	}
	return symbols, rows.Err()
}
