package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	"github.com/tradesim-service/tradesim_service/internal/domain/services/funding"
	apperrors "github.com/tradesim-service/tradesim_service/pkg/errors"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

// FundingStore backs funding.Store with Postgres transactions, sharing
// the row-lock discipline of the trade store.
type FundingStore struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewFundingStore creates a transactional store for the funding service
func NewFundingStore(db *sqlx.DB, log *logger.Logger) *FundingStore {
	return &FundingStore{db: db, logger: log}
}

// InTx runs fn inside one database transaction
func (s *FundingStore) InTx(ctx context.Context, fn func(tx funding.Tx) error) error {
	dbTx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return apperrors.Persistence(err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = dbTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&fundingTx{tx: dbTx}); err != nil {
		if rbErr := dbTx.Rollback(); rbErr != nil {
			s.logger.CtxError(ctx, "rollback failed", "error", rbErr)
		}
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return apperrors.Persistence(err)
	}
	return nil
}

type fundingTx struct {
	tx *sqlx.Tx
}

func (t *fundingTx) GetUserForUpdate(ctx context.Context, ref entities.UserRef) (*entities.User, error) {
	return ResolveForUpdate(ctx, t.tx, ref)
}

func (t *fundingTx) UpdateUserFinancials(ctx context.Context, user *entities.User) error {
	return UpdateFinancials(ctx, t.tx, user)
}

func (t *fundingTx) AppendBalanceEntry(ctx context.Context, entry *entities.BalanceEntry) error {
	return AppendEntry(ctx, t.tx, entry)
}

func (t *fundingTx) SetLastDailyBonus(ctx context.Context, userID uuid.UUID, claimedAt time.Time) error {
	return SetLastDailyBonus(ctx, t.tx, userID, claimedAt)
}
