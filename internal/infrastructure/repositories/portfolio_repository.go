package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	apperrors "github.com/tradesim-service/tradesim_service/pkg/errors"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

// PortfolioRepository persists portfolios and their holdings.
// Uniqueness of (user_id, mode) is enforced by the schema.
type PortfolioRepository struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewPortfolioRepository creates a new portfolio repository
func NewPortfolioRepository(db *sqlx.DB, log *logger.Logger) *PortfolioRepository {
	return &PortfolioRepository{db: db, logger: log}
}

// GetByUserAndMode loads a portfolio with its holdings
func (r *PortfolioRepository) GetByUserAndMode(ctx context.Context, userID uuid.UUID, mode entities.TradeMode) (*entities.Portfolio, error) {
	var p entities.Portfolio
	query := `SELECT id, user_id, mode, created_at, updated_at FROM portfolios WHERE user_id = $1 AND mode = $2`
	if err := r.db.GetContext(ctx, &p, query, userID, mode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.PortfolioNotFound()
		}
		return nil, apperrors.Persistence(err)
	}

	holdings, err := GetHoldings(ctx, r.db, p.ID)
	if err != nil {
		return nil, err
	}
	p.Holdings = holdings
	return &p, nil
}

// GetOrCreate loads the (user, mode) portfolio, creating an empty one on
// first use. The upsert keeps concurrent first trades from racing.
func GetOrCreatePortfolio(ctx context.Context, ext sqlx.ExtContext, userID uuid.UUID, mode entities.TradeMode) (*entities.Portfolio, error) {
	query := `
		INSERT INTO portfolios (id, user_id, mode, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (user_id, mode) DO UPDATE SET updated_at = portfolios.updated_at
		RETURNING id, user_id, mode, created_at, updated_at`

	var p entities.Portfolio
	now := time.Now()
	if err := sqlx.GetContext(ctx, ext, &p, query, uuid.New(), userID, mode, now); err != nil {
		return nil, apperrors.Persistence(err)
	}
	return &p, nil
}

// GetHoldings returns the holdings of one portfolio ordered by symbol
func GetHoldings(ctx context.Context, ext sqlx.ExtContext, portfolioID uuid.UUID) ([]entities.Holding, error) {
	var holdings []entities.Holding
	query := `
		SELECT portfolio_id, asset_symbol, quantity, avg_buy_price, updated_at
		FROM holdings WHERE portfolio_id = $1 ORDER BY asset_symbol`
	if err := sqlx.SelectContext(ctx, ext, &holdings, query, portfolioID); err != nil {
		return nil, apperrors.Persistence(err)
	}
	return holdings, nil
}

// ReplaceHoldings swaps the full holdings list of one portfolio. Runs
// inside the trade transaction, so the delete+insert pair is atomic.
func ReplaceHoldings(ctx context.Context, ext sqlx.ExtContext, portfolioID uuid.UUID, list []entities.Holding) error {
	if _, err := ext.ExecContext(ctx, `DELETE FROM holdings WHERE portfolio_id = $1`, portfolioID); err != nil {
		return apperrors.Persistence(err)
	}

	now := time.Now()
	for _, h := range list {
		_, err := ext.ExecContext(ctx, `
			INSERT INTO holdings (portfolio_id, asset_symbol, quantity, avg_buy_price, updated_at)
			VALUES ($1, $2, $3, $4, $5)`,
			portfolioID, h.AssetSymbol, h.Quantity, h.AvgBuyPrice, now)
		if err != nil {
			return apperrors.Persistence(err)
		}
	}

	if _, err := ext.ExecContext(ctx, `UPDATE portfolios SET updated_at = $2 WHERE id = $1`, portfolioID, now); err != nil {
		return apperrors.Persistence(err)
	}
	return nil
}
