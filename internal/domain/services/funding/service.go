// Package funding handles cash mutations outside trade execution:
// manual deposits, the daily bonus, and achievement rewards.
package funding

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	ledgersvc "github.com/tradesim-service/tradesim_service/internal/domain/services/ledger"
	apperrors "github.com/tradesim-service/tradesim_service/pkg/errors"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

// Tx is the write set of one funding transaction
type Tx interface {
	GetUserForUpdate(ctx context.Context, ref entities.UserRef) (*entities.User, error)
	UpdateUserFinancials(ctx context.Context, user *entities.User) error
	AppendBalanceEntry(ctx context.Context, entry *entities.BalanceEntry) error
	SetLastDailyBonus(ctx context.Context, userID uuid.UUID, claimedAt time.Time) error
}

// Store opens atomic funding transactions
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Config carries the funding business constants
type Config struct {
	MaxDepositAmount decimal.Decimal
	DailyBonusAmount decimal.Decimal
}

// Service credits user balances atomically through the ledger
type Service struct {
	store  Store
	cfg    Config
	logger *logger.Logger
	now    func() time.Time
}

// NewService creates a new funding service
func NewService(store Store, cfg Config, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		cfg:    cfg,
		logger: log,
		now:    time.Now,
	}
}

// AddFunds credits a bounded manual deposit
func (s *Service) AddFunds(ctx context.Context, ref entities.UserRef, amount decimal.Decimal) (*entities.AddFundsResponse, error) {
	if err := ledgersvc.ValidateDeposit(amount, s.cfg.MaxDepositAmount); err != nil {
		return nil, err
	}

	var resp *entities.AddFundsResponse
	err := s.store.InTx(ctx, func(tx Tx) error {
		user, err := tx.GetUserForUpdate(ctx, ref)
		if err != nil {
			return err
		}

		if err := s.credit(ctx, tx, user, amount, entities.EntryManualAdd, "Funds added"); err != nil {
			return err
		}

		resp = &entities.AddFundsResponse{Success: true, NewBalance: user.CashBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.CtxInfo(ctx, "funds added", "user", ref.String(), "amount", amount.String())
	return resp, nil
}

// ClaimDailyBonus credits the fixed daily award, once per calendar day
func (s *Service) ClaimDailyBonus(ctx context.Context, ref entities.UserRef) (*entities.DailyBonusResponse, error) {
	var resp *entities.DailyBonusResponse
	err := s.store.InTx(ctx, func(tx Tx) error {
		user, err := tx.GetUserForUpdate(ctx, ref)
		if err != nil {
			return err
		}

		now := s.now()
		if !ledgersvc.CanClaimDailyBonus(user.LastDailyBonusAt, now) {
			return apperrors.New(apperrors.ErrCodeBonusAlreadyClaimed, "daily bonus already claimed today")
		}

		if err := s.credit(ctx, tx, user, s.cfg.DailyBonusAmount, entities.EntryDailyBonus, "Daily bonus"); err != nil {
			return err
		}
		if err := tx.SetLastDailyBonus(ctx, user.ID, now); err != nil {
			return err
		}

		resp = &entities.DailyBonusResponse{
			Success:    true,
			Amount:     s.cfg.DailyBonusAmount,
			NewBalance: user.CashBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.CtxInfo(ctx, "daily bonus claimed", "user", ref.String())
	return resp, nil
}

// PostReward credits an achievement reward referencing the badge award
func (s *Service) PostReward(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, badgeName string) error {
	if !amount.IsPositive() {
		return nil
	}
	return s.store.InTx(ctx, func(tx Tx) error {
		user, err := tx.GetUserForUpdate(ctx, entities.UserRef{Kind: entities.RefByID, ID: userID})
		if err != nil {
			return err
		}
		return s.credit(ctx, tx, user, amount, entities.EntryAchievement,
			fmt.Sprintf("Achievement unlocked: %s", badgeName))
	})
}

// credit applies a positive cash delta and keeps the derived metrics in
// step: cash is part of portfolio value, so the value moves by the same
// delta while cost basis and unrealized return stay put.
func (s *Service) credit(ctx context.Context, tx Tx, user *entities.User, amount decimal.Decimal, entryType entities.BalanceEntryType, description string) error {
	now := s.now()
	posting := ledgersvc.Post(user.ID, user.CashBalance, amount, entryType, description, nil, now)

	user.CashBalance = posting.NewBalance
	user.PortfolioValue = user.PortfolioValue.Add(amount)
	if user.PortfolioValue.GreaterThan(user.MaxPortfolioValue) {
		user.MaxPortfolioValue = user.PortfolioValue
	}
	user.UpdatedAt = now

	if err := tx.UpdateUserFinancials(ctx, user); err != nil {
		return err
	}
	return tx.AppendBalanceEntry(ctx, &posting.Entry)
}
