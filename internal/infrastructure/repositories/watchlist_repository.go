package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	apperrors "github.com/tradesim-service/tradesim_service/pkg/errors"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

// WatchlistRepository persists per-user watched symbols
type WatchlistRepository struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewWatchlistRepository creates a new watchlist repository
func NewWatchlistRepository(db *sqlx.DB, log *logger.Logger) *WatchlistRepository {
	return &WatchlistRepository{db: db, logger: log}
}

// List returns a user's watched symbols in insertion order
func (r *WatchlistRepository) List(ctx context.Context, userID uuid.UUID) ([]entities.WatchlistItem, error) {
	var items []entities.WatchlistItem
	query := `
		SELECT user_id, asset_symbol, added_at
		FROM watchlist WHERE user_id = $1 ORDER BY added_at`
	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, apperrors.Persistence(err)
	}
	return items, nil
}

// Add puts a symbol on the watchlist; adding twice is a no-op
func (r *WatchlistRepository) Add(ctx context.Context, userID uuid.UUID, symbol string) error {
	query := `
		INSERT INTO watchlist (user_id, asset_symbol, added_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, asset_symbol) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, userID, symbol, time.Now()); err != nil {
		return apperrors.Persistence(err)
	}
	return nil
}

// Remove drops a symbol from the watchlist
func (r *WatchlistRepository) Remove(ctx context.Context, userID uuid.UUID, symbol string) error {
	query := `DELETE FROM watchlist WHERE user_id = $1 AND asset_symbol = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, symbol); err != nil {
		return apperrors.Persistence(err)
	}
	return nil
}
