// Package trading orchestrates trade execution: balance debit/credit,
// holdings reconciliation, revaluation and persistence as one atomic unit.
package trading

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	"github.com/tradesim-service/tradesim_service/internal/domain/services/holdings"
	"github.com/tradesim-service/tradesim_service/internal/domain/services/ledger"
	"github.com/tradesim-service/tradesim_service/internal/domain/services/valuation"
	apperrors "github.com/tradesim-service/tradesim_service/pkg/errors"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

// Tx is the write set available inside one trade transaction. The
// postgres implementation backs it with a database transaction holding a
// row lock on the user; correctness under concurrent trades relies on
// that isolation, not on anything this package does.
type Tx interface {
	GetUserForUpdate(ctx context.Context, ref entities.UserRef) (*entities.User, error)
	GetOrCreatePortfolio(ctx context.Context, userID uuid.UUID, mode entities.TradeMode) (*entities.Portfolio, error)
	GetHoldings(ctx context.Context, portfolioID uuid.UUID) ([]entities.Holding, error)
	ReplaceHoldings(ctx context.Context, portfolioID uuid.UUID, list []entities.Holding) error
	UpdateUserFinancials(ctx context.Context, user *entities.User) error
	AppendBalanceEntry(ctx context.Context, entry *entities.BalanceEntry) error
	InsertTrade(ctx context.Context, trade *entities.Trade) error
	GetPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error)
}

// Store opens atomic trade transactions. If fn returns an error every
// write made through the Tx is discarded.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Executor runs the trade state machine:
// Pending -> Validating -> Committing -> {Committed | Aborted}
type Executor struct {
	store  Store
	logger *logger.Logger
	now    func() time.Time
}

// NewExecutor creates a trade executor over the given store
func NewExecutor(store Store, log *logger.Logger) *Executor {
	return &Executor{
		store:  store,
		logger: log,
		now:    time.Now,
	}
}

// Execute validates and commits one trade. On any failure the backing
// transaction is rolled back and the pre-trade state is untouched. No
// automatic retries; the caller may resubmit.
func (e *Executor) Execute(ctx context.Context, ref entities.UserRef, req *entities.ExecuteTradeRequest) (*entities.ExecuteTradeResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var resp *entities.ExecuteTradeResponse
	err := e.store.InTx(ctx, func(tx Tx) error {
		var err error
		resp, err = e.commit(ctx, tx, ref, req)
		return err
	})
	if err != nil {
		e.logger.CtxWarn(ctx, "trade aborted",
			"user", ref.String(),
			"symbol", req.AssetSymbol,
			"order_type", req.OrderType,
			"error", err)
		return nil, err
	}

	e.logger.CtxInfo(ctx, "trade committed",
		"user", ref.String(),
		"symbol", req.AssetSymbol,
		"order_type", req.OrderType,
		"quantity", req.Quantity.String(),
		"price", req.Price.String())
	return resp, nil
}

func validate(req *entities.ExecuteTradeRequest) error {
	switch {
	case req.AssetSymbol == "":
		return apperrors.ValidationError("assetSymbol is required")
	case !req.Quantity.IsPositive():
		return apperrors.ValidationError("quantity must be positive")
	case !req.Price.IsPositive():
		return apperrors.ValidationError("price must be positive")
	case !req.OrderType.Valid():
		return apperrors.ValidationError(fmt.Sprintf("orderType must be %q or %q", entities.OrderBuy, entities.OrderSell))
	case !req.Mode.Valid():
		return apperrors.ValidationError(fmt.Sprintf("mode must be %q or %q", entities.ModeSimulated, entities.ModeReal))
	}
	return nil
}

func (e *Executor) commit(ctx context.Context, tx Tx, ref entities.UserRef, req *entities.ExecuteTradeRequest) (*entities.ExecuteTradeResponse, error) {
	user, err := tx.GetUserForUpdate(ctx, ref)
	if err != nil {
		return nil, err
	}

	total := req.Quantity.Mul(req.Price)

	portfolio, err := tx.GetOrCreatePortfolio(ctx, user.ID, req.Mode)
	if err != nil {
		return nil, err
	}
	current, err := tx.GetHoldings(ctx, portfolio.ID)
	if err != nil {
		return nil, err
	}

	// The reconciler rejects oversells before any money moves.
	reconciled, err := holdings.Apply(current, req.AssetSymbol, req.Quantity, req.Price, req.OrderType)
	if err != nil {
		return nil, err
	}

	delta := total
	if req.OrderType == entities.OrderBuy {
		if err := ledger.Debit(user.CashBalance, total); err != nil {
			return nil, err
		}
		delta = total.Neg()
	}

	now := e.now()
	trade := &entities.Trade{
		ID:          uuid.New(),
		UserID:      user.ID,
		Mode:        req.Mode,
		AssetSymbol: req.AssetSymbol,
		AssetType:   req.AssetType,
		Quantity:    req.Quantity,
		OrderType:   req.OrderType,
		Price:       req.Price,
		TotalAmount: total,
		ExecutedAt:  now,
	}

	posting := ledger.Post(user.ID, user.CashBalance, delta,
		entities.EntryTrade, tradeDescription(req), &trade.ID, now)

	prices, err := tx.GetPrices(ctx, symbolsOf(reconciled))
	if err != nil {
		return nil, err
	}
	metrics := valuation.Compute(reconciled, valuation.PriceMap(prices),
		posting.NewBalance, user.MaxPortfolioValue)

	user.CashBalance = posting.NewBalance
	user.PortfolioValue = metrics.PortfolioValue
	user.TotalReturn = metrics.TotalReturn
	user.TotalReturnPercent = metrics.TotalReturnPercent
	user.MaxPortfolioValue = metrics.MaxPortfolioValue
	user.UpdatedAt = now

	if err := tx.UpdateUserFinancials(ctx, user); err != nil {
		return nil, err
	}
	if err := tx.AppendBalanceEntry(ctx, &posting.Entry); err != nil {
		return nil, err
	}
	if err := tx.ReplaceHoldings(ctx, portfolio.ID, reconciled); err != nil {
		return nil, err
	}
	if err := tx.InsertTrade(ctx, trade); err != nil {
		return nil, err
	}

	return &entities.ExecuteTradeResponse{
		Success: true,
		Message: confirmationMessage(req, posting.NewBalance),
		Trade:   trade,
	}, nil
}

func symbolsOf(list []entities.Holding) []string {
	out := make([]string, len(list))
	for i, h := range list {
		out[i] = h.AssetSymbol
	}
	return out
}

func tradeDescription(req *entities.ExecuteTradeRequest) string {
	verb := "Bought"
	if req.OrderType == entities.OrderSell {
		verb = "Sold"
	}
	return fmt.Sprintf("%s %s %s @ %s", verb, req.Quantity, req.AssetSymbol, req.Price)
}

func confirmationMessage(req *entities.ExecuteTradeRequest, newBalance decimal.Decimal) string {
	verb := "bought"
	if req.OrderType == entities.OrderSell {
		verb = "sold"
	}
	return fmt.Sprintf("Successfully %s %s %s at %s. New cash balance: %s",
		verb, req.Quantity, req.AssetSymbol, req.Price, newBalance.StringFixed(2))
}
