package pricing

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

type PriceRepository interface {
	upsert(ctx context.Context, symbol string, price decimal.Decimal) error
	getBySymbol(ctx context.Context, symbol string) (decimal.Decimal, error)
}

type priceRepository struct {
	db *sql.DB
}

func NewPriceRepository(db *sql.DB) PriceRepository {
	return &priceRepository{db: db}
}

func (r *priceRepository) upsert(ctx context.Context, symbol string, price decimal.Decimal) error {
	query := `
        INSERT INTO current_prices (symbol, price, last_updated)
        VALUES ($1, $2, NOW())
        ON CONFLICT (symbol) DO UPDATE SET
            price = EXCLUDED.price,
            last_updated = NOW();
    `
	_, err := r.db.ExecContext(ctx, query, symbol, price)
	return err
}

func (r *priceRepository) getBySymbol(ctx context.Context, symbol string) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := r.db.QueryRowContext(ctx, `
        SELECT price FROM current_prices WHERE symbol = $1
    `, symbol).Scan(&price)
	if err != nil {
		return decimal.Zero, err
	}
	return price, nil
}
