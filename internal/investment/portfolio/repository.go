package portfolios

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Portfolio struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PortfolioRepository interface {
	Create(ctx context.Context, portfolio *Portfolio) error
	FindByID(ctx context.Context, portfolioID uuid.UUID, portfolio *Portfolio) error
	ExistsByName(ctx context.Context, name string) (bool, error)
	FindAll(ctx context.Context, portfolios *[]Portfolio) error
	Update(ctx context.Context, portfolio *Portfolio) (int64, error)
	DeletePortfolio(ctx context.Context, portfolioID uuid.UUID) error
}

type portfolioRepository struct {
	db *sql.DB
}

func NewPortfolioRepository(db *sql.DB) PortfolioRepository {
	return &portfolioRepository{db: db}
}

func (r *portfolioRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	query := `SELECT COUNT(1)
              FROM portfolios
              WHERE name = $1`

	var count int
	err := r.db.QueryRowContext(ctx, query, name).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *portfolioRepository) Create(ctx context.Context, portfolio *Portfolio) error {
	query := `INSERT INTO portfolios (id, name, created_at, updated_at)
              VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, portfolio.ID, portfolio.Name, portfolio.CreatedAt, portfolio.UpdatedAt)
	return err
}

func (r *portfolioRepository) FindByID(ctx context.Context, portfolioID uuid.UUID, portfolio *Portfolio) error {
	query := `SELECT id, name, created_at, updated_at
              FROM portfolios WHERE id = $1`

	return r.db.QueryRowContext(ctx, query, portfolioID).Scan(
		&portfolio.ID, &portfolio.Name, &portfolio.CreatedAt, &portfolio.UpdatedAt)
}

func (r *portfolioRepository) FindAll(ctx context.Context, portfolios *[]Portfolio) error {
	query := `SELECT id, name, created_at, updated_at FROM portfolios ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var portfolio Portfolio
		if err := rows.Scan(&portfolio.ID, &portfolio.Name, &portfolio.CreatedAt, &portfolio.UpdatedAt); err != nil {
			return err
		}
		*portfolios = append(*portfolios, portfolio)
	}
	return rows.Err()
}

func (r *portfolioRepository) Update(ctx context.Context, portfolio *Portfolio) (int64, error) {
	query := `
        UPDATE portfolios
        SET name = $1, updated_at = $2
        WHERE id = $3
    `

	result, err := r.db.ExecContext(ctx, query, portfolio.Name, time.Now(), portfolio.ID)
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return affected, nil
}

func (r *portfolioRepository) DeletePortfolio(ctx context.Context, portfolioID uuid.UUID) error {
	query := `
        DELETE FROM portfolios
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, portfolioID)
	return err
}
