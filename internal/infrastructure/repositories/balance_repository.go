package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	apperrors "github.com/tradesim-service/tradesim_service/pkg/errors"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

// BalanceRepository persists the append-only balance history
type BalanceRepository struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewBalanceRepository creates a new balance history repository
func NewBalanceRepository(db *sqlx.DB, log *logger.Logger) *BalanceRepository {
	return &BalanceRepository{db: db, logger: log}
}

// AppendEntry writes one ledger row. Entries are immutable once written.
func AppendEntry(ctx context.Context, ext sqlx.ExtContext, entry *entities.BalanceEntry) error {
	query := `
		INSERT INTO balance_history (
			id, user_id, entry_type, amount, description, reference,
			balance_after, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := ext.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Type,
		entry.Amount,
		entry.Description,
		entry.Reference,
		entry.BalanceAfter,
		entry.CreatedAt,
	)
	if err != nil {
		return apperrors.Persistence(err)
	}
	return nil
}

// AppendEntry writes one ledger row via the pool
func (r *BalanceRepository) AppendEntry(ctx context.Context, entry *entities.BalanceEntry) error {
	return AppendEntry(ctx, r.db, entry)
}

// ListByUser returns a user's ledger newest-first
func (r *BalanceRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entities.BalanceEntry, error) {
	var entries []entities.BalanceEntry
	query := `
		SELECT id, user_id, entry_type, amount, description, reference,
		       balance_after, created_at
		FROM balance_history WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, apperrors.Persistence(err)
	}
	return entries, nil
}
