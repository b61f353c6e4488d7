package portfolios

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPortfolioNotFound  = errors.New("portfolio not found")
	ErrPortfolioNameTaken = errors.New("portfolio with this name already exists")
)

// Service is the Portfolio Registry: id to display name, plus the thin CRUD
// glue around it. It owns no derived data; holdings and performance are
// recomputed elsewhere on every read.
type Service interface {
	CreatePortfolio(ctx context.Context, name string) (*Portfolio, error)
	GetPortfolio(ctx context.Context, portfolioID uuid.UUID) (*Portfolio, error)
	GetAllPortfolios(ctx context.Context) ([]Portfolio, error)
	RenamePortfolio(ctx context.Context, portfolioID uuid.UUID, name string) error
	DeletePortfolio(ctx context.Context, portfolioID uuid.UUID) error
}

type service struct {
	portfolioRepo PortfolioRepository
}

func NewPortfolioService(repo PortfolioRepository) Service {
	return &service{portfolioRepo: repo}
}

func (s *service) CreatePortfolio(ctx context.Context, name string) (*Portfolio, error) {
	exists, err := s.portfolioRepo.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrPortfolioNameTaken
	}
	portfolio := &Portfolio{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	err = s.portfolioRepo.Create(ctx, portfolio)
	return portfolio, err
}

func (s *service) GetPortfolio(ctx context.Context, portfolioID uuid.UUID) (*Portfolio, error) {
	var portfolio Portfolio
	err := s.portfolioRepo.FindByID(ctx, portfolioID, &portfolio)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPortfolioNotFound
		}
		return nil, err
	}
	return &portfolio, nil
}

func (s *service) GetAllPortfolios(ctx context.Context) ([]Portfolio, error) {
	var portfolioList []Portfolio
	err := s.portfolioRepo.FindAll(ctx, &portfolioList)
	if err != nil {
		return nil, err
	}
	return portfolioList, nil
}

func (s *service) RenamePortfolio(ctx context.Context, portfolioID uuid.UUID, name string) error {
	portfolio := &Portfolio{}
	err := s.portfolioRepo.FindByID(ctx, portfolioID, portfolio)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPortfolioNotFound
		}
		return err
	}

	if name != portfolio.Name {
		exists, err := s.portfolioRepo.ExistsByName(ctx, name)
		if err != nil {
			return err
		}
		if exists {
			return ErrPortfolioNameTaken
		}
		portfolio.Name = name
	}

	affected, err := s.portfolioRepo.Update(ctx, portfolio)
	if err != nil {
		return err
	}

	if affected == 0 {
		return ErrPortfolioNotFound
	}
	return nil
}

func (s *service) DeletePortfolio(ctx context.Context, portfolioID uuid.UUID) error {
	portfolio := &Portfolio{}
	err := s.portfolioRepo.FindByID(ctx, portfolioID, portfolio)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPortfolioNotFound
		}
		return err
	}

	return s.portfolioRepo.DeletePortfolio(ctx, portfolioID)
}
