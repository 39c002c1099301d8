package repositories

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	"github.com/tradesim-service/tradesim_service/internal/domain/services/accounts"
	apperrors "github.com/tradesim-service/tradesim_service/pkg/errors"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

// AccountStore backs accounts.Store with Postgres transactions so the
// user row and its initial ledger entry commit together.
type AccountStore struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewAccountStore creates a transactional store for the account service
func NewAccountStore(db *sqlx.DB, log *logger.Logger) *AccountStore {
	return &AccountStore{db: db, logger: log}
}

// InTx runs fn inside one database transaction
func (s *AccountStore) InTx(ctx context.Context, fn func(tx accounts.Tx) error) error {
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

	if err := fn(&accountTx{tx: dbTx}); err != nil {
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

type accountTx struct {
	tx *sqlx.Tx
}

func (t *accountTx) CreateUser(ctx context.Context, user *entities.User) error {
	return CreateUser(ctx, t.tx, user)
}

func (t *accountTx) AppendBalanceEntry(ctx context.Context, entry *entities.BalanceEntry) error {
	return AppendEntry(ctx, t.tx, entry)
}
