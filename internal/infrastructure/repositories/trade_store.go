package repositories

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	"github.com/tradesim-service/tradesim_service/internal/domain/services/trading"
	apperrors "github.com/tradesim-service/tradesim_service/pkg/errors"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

// TradeStore backs trading.Store with Postgres transactions. The user row
// is locked FOR UPDATE for the duration of the trade, which serializes
// concurrent trades of the same user.
type TradeStore struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewTradeStore creates a transactional store for the trade executor
func NewTradeStore(db *sqlx.DB, log *logger.Logger) *TradeStore {
	return &TradeStore{db: db, logger: log}
}

// InTx runs fn inside one database transaction. Any error rolls the
// whole write set back.
func (s *TradeStore) InTx(ctx context.Context, fn func(tx trading.Tx) error) error {
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

	if err := fn(&tradeTx{tx: dbTx}); err != nil {
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

// tradeTx adapts one sqlx transaction to the trading.Tx write set
type tradeTx struct {
	tx *sqlx.Tx
}

func (t *tradeTx) GetUserForUpdate(ctx context.Context, ref entities.UserRef) (*entities.User, error) {
	return ResolveForUpdate(ctx, t.tx, ref)
}

func (t *tradeTx) GetOrCreatePortfolio(ctx context.Context, userID uuid.UUID, mode entities.TradeMode) (*entities.Portfolio, error) {
	return GetOrCreatePortfolio(ctx, t.tx, userID, mode)
}

func (t *tradeTx) GetHoldings(ctx context.Context, portfolioID uuid.UUID) ([]entities.Holding, error) {
	return GetHoldings(ctx, t.tx, portfolioID)
}

func (t *tradeTx) ReplaceHoldings(ctx context.Context, portfolioID uuid.UUID, list []entities.Holding) error {
	return ReplaceHoldings(ctx, t.tx, portfolioID, list)
}

func (t *tradeTx) UpdateUserFinancials(ctx context.Context, user *entities.User) error {
	return UpdateFinancials(ctx, t.tx, user)
}

func (t *tradeTx) AppendBalanceEntry(ctx context.Context, entry *entities.BalanceEntry) error {
	return AppendEntry(ctx, t.tx, entry)
}

func (t *tradeTx) InsertTrade(ctx context.Context, trade *entities.Trade) error {
	return InsertTrade(ctx, t.tx, trade)
}

func (t *tradeTx) GetPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	return GetPrices(ctx, t.tx, symbols)
}
