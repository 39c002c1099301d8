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

// BadgeRepository persists the badge catalog and per-user awards
type BadgeRepository struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewBadgeRepository creates a new badge repository
func NewBadgeRepository(db *sqlx.DB, log *logger.Logger) *BadgeRepository {
	return &BadgeRepository{db: db, logger: log}
}

// ListCatalog returns every badge definition
func (r *BadgeRepository) ListCatalog(ctx context.Context) ([]entities.Badge, error) {
	var badges []entities.Badge
	query := `SELECT id, name, description, reward FROM badges ORDER BY id`
	if err := r.db.SelectContext(ctx, &badges, query); err != nil {
		return nil, apperrors.Persistence(err)
	}
	return badges, nil
}

// ListForUser returns the badges a user has earned
func (r *BadgeRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]entities.UserBadge, error) {
	var earned []entities.UserBadge
	query := `
		SELECT user_id, badge_id, earned_at
		FROM user_badges WHERE user_id = $1 ORDER BY earned_at`
	if err := r.db.SelectContext(ctx, &earned, query, userID); err != nil {
		return nil, apperrors.Persistence(err)
	}
	return earned, nil
}

// Award grants a badge once per (user, badge). Returns false when the
// user already holds it.
func (r *BadgeRepository) Award(ctx context.Context, userID uuid.UUID, badgeID string, earnedAt time.Time) (bool, error) {
	query := `
		INSERT INTO user_badges (user_id, badge_id, earned_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, badge_id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, userID, badgeID, earnedAt)
	if err != nil {
		return false, apperrors.Persistence(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperrors.Persistence(err)
	}
	return n > 0, nil
}
