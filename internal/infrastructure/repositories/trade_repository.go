package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	"github.com/tradesim-service/tradesim_service/pkg/database"
	apperrors "github.com/tradesim-service/tradesim_service/pkg/errors"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

// TradeRepository persists the append-only trade log
type TradeRepository struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewTradeRepository creates a new trade repository
func NewTradeRepository(db *sqlx.DB, log *logger.Logger) *TradeRepository {
	return &TradeRepository{db: db, logger: log}
}

// Insert appends one trade record. Trades are never updated or deleted.
func InsertTrade(ctx context.Context, ext sqlx.ExtContext, trade *entities.Trade) error {
	query := `
		INSERT INTO trades (
			id, user_id, mode, asset_symbol, asset_type, quantity,
			order_type, price, total_amount, executed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := ext.ExecContext(ctx, query,
		trade.ID,
		trade.UserID,
		trade.Mode,
		trade.AssetSymbol,
		trade.AssetType,
		trade.Quantity,
		trade.OrderType,
		trade.Price,
		trade.TotalAmount,
		trade.ExecutedAt,
	)
	if err != nil {
		return apperrors.Persistence(err)
	}
	return nil
}

// ListByUser returns a user's trades newest-first
func (r *TradeRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entities.Trade, error) {
	var trades []entities.Trade
	query := `
		SELECT id, user_id, mode, asset_symbol, asset_type, quantity,
		       order_type, price, total_amount, executed_at
		FROM trades WHERE user_id = $1
		ORDER BY executed_at DESC` + database.BuildPaginationClause(limit, offset)

	if err := r.db.SelectContext(ctx, &trades, query, userID); err != nil {
		return nil, apperrors.Persistence(err)
	}
	return trades, nil
}

// CountByUser returns the number of trades a user has executed
func (r *TradeRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM trades WHERE user_id = $1`, userID); err != nil {
		return 0, apperrors.Persistence(err)
	}
	return count, nil
}

// CountDistinctSymbols returns how many different assets a user has traded
func (r *TradeRepository) CountDistinctSymbols(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(DISTINCT asset_symbol) FROM trades WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, apperrors.Persistence(err)
	}
	return count, nil
}
