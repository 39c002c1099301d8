package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	apperrors "github.com/tradesim-service/tradesim_service/pkg/errors"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

const userColumns = `
	id, email, display_name, password_hash, cash_balance, initial_balance,
	portfolio_value, total_return, total_return_percent, max_portfolio_value,
	last_daily_bonus_at, created_at, updated_at`

// UserRepository persists users in PostgreSQL
type UserRepository struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB, log *logger.Logger) *UserRepository {
	return &UserRepository{db: db, logger: log}
}

// CreateUser inserts a new user row. Runs against the pool or a
// transaction; signup pairs it with the initial ledger entry in one tx.
func CreateUser(ctx context.Context, ext sqlx.ExtContext, user *entities.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := ext.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		user.CashBalance,
		user.InitialBalance,
		user.PortfolioValue,
		user.TotalReturn,
		user.TotalReturnPercent,
		user.MaxPortfolioValue,
		user.LastDailyBonusAt,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return apperrors.New(apperrors.ErrCodeDuplicateEntry, "an account with this email already exists")
		}
		return apperrors.Persistence(err)
	}
	return nil
}

// Resolve loads a user by typed reference (UUID or email)
func (r *UserRepository) Resolve(ctx context.Context, ref entities.UserRef) (*entities.User, error) {
	return resolveUser(ctx, r.db, ref, false)
}

// ResolveForUpdate loads a user by typed reference with a row lock. Must
// run inside a transaction.
func ResolveForUpdate(ctx context.Context, ext sqlx.ExtContext, ref entities.UserRef) (*entities.User, error) {
	return resolveUser(ctx, ext, ref, true)
}

func resolveUser(ctx context.Context, ext sqlx.ExtContext, ref entities.UserRef, forUpdate bool) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE `
	var arg interface{}
	if ref.Kind == entities.RefByID {
		query += `id = $1`
		arg = ref.ID
	} else {
		query += `email = $1`
		arg = ref.Email
	}
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var user entities.User
	if err := sqlx.GetContext(ctx, ext, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.UserNotFound()
		}
		return nil, apperrors.Persistence(err)
	}
	return &user, nil
}

// UpdateFinancials writes the balance and derived portfolio metrics
func UpdateFinancials(ctx context.Context, ext sqlx.ExtContext, user *entities.User) error {
	query := `
		UPDATE users SET
			cash_balance = $2,
			portfolio_value = $3,
			total_return = $4,
			total_return_percent = $5,
			max_portfolio_value = $6,
			updated_at = $7
		WHERE id = $1`

	res, err := ext.ExecContext(ctx, query,
		user.ID,
		user.CashBalance,
		user.PortfolioValue,
		user.TotalReturn,
		user.TotalReturnPercent,
		user.MaxPortfolioValue,
		user.UpdatedAt,
	)
	if err != nil {
		return apperrors.Persistence(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.UserNotFound()
	}
	return nil
}

// UpdateFinancials writes the balance and derived metrics via the pool
func (r *UserRepository) UpdateFinancials(ctx context.Context, user *entities.User) error {
	return UpdateFinancials(ctx, r.db, user)
}

// SetLastDailyBonus records the claim instant of the daily bonus
func SetLastDailyBonus(ctx context.Context, ext sqlx.ExtContext, userID uuid.UUID, claimedAt time.Time) error {
	_, err := ext.ExecContext(ctx,
		`UPDATE users SET last_daily_bonus_at = $2, updated_at = $2 WHERE id = $1`,
		userID, claimedAt)
	if err != nil {
		return apperrors.Persistence(err)
	}
	return nil
}
