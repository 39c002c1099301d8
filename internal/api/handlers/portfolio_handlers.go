package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	"github.com/tradesim-service/tradesim_service/internal/domain/services/ledger"
	"github.com/tradesim-service/tradesim_service/internal/infrastructure/cache"
	"github.com/tradesim-service/tradesim_service/internal/infrastructure/repositories"
	apperrors "github.com/tradesim-service/tradesim_service/pkg/errors"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

// PortfolioHandlers contains the portfolio and balance-history HTTP handlers
type PortfolioHandlers struct {
	users      *repositories.UserRepository
	portfolios *repositories.PortfolioRepository
	balances   *repositories.BalanceRepository
	assets     *repositories.AssetRepository
	quotes     *cache.QuoteCache
	logger     *logger.Logger
}

// NewPortfolioHandlers creates a new instance of portfolio handlers
func NewPortfolioHandlers(
	users *repositories.UserRepository,
	portfolios *repositories.PortfolioRepository,
	balances *repositories.BalanceRepository,
	assets *repositories.AssetRepository,
	quotes *cache.QuoteCache,
	log *logger.Logger,
) *PortfolioHandlers {
	return &PortfolioHandlers{
		users:      users,
		portfolios: portfolios,
		balances:   balances,
		assets:     assets,
		quotes:     quotes,
		logger:     log,
	}
}

// GetPortfolio handles GET /users/:id/portfolio
func (h *PortfolioHandlers) GetPortfolio(c *gin.Context) {
	ctx := c.Request.Context()

	mode, err := tradeMode(c)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.users.Resolve(ctx, pathUserRef(c))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := entities.PortfolioResponse{
		Mode:               mode,
		Holdings:           []entities.HoldingView{},
		CashBalance:        user.CashBalance,
		PortfolioValue:     user.PortfolioValue,
		TotalReturn:        user.TotalReturn,
		TotalReturnPercent: user.TotalReturnPercent,
		MaxPortfolioValue:  user.MaxPortfolioValue,
	}

	portfolio, err := h.portfolios.GetByUserAndMode(ctx, user.ID, mode)
	if err != nil {
		// a user who has never traded in this mode has an empty
		// portfolio, not a missing one
		if apperrors.IsCode(err, apperrors.ErrCodePortfolioNotFound) {
			c.JSON(http.StatusOK, resp)
			return
		}
		respondError(c, err)
		return
	}

	prices := h.lookupPrices(ctx, symbolsOf(portfolio.Holdings))
	for _, holding := range portfolio.Holdings {
		resp.Holdings = append(resp.Holdings, priceHolding(holding, prices))
	}

	c.JSON(http.StatusOK, resp)
}

// GetBalanceHistory handles GET /users/:id/balance-history
func (h *PortfolioHandlers) GetBalanceHistory(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := h.users.Resolve(ctx, pathUserRef(c))
	if err != nil {
		respondError(c, err)
		return
	}

	entries, err := h.balances.ListByUser(ctx, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ledger.Summarize(entries, user.CashBalance, user.InitialBalance))
}

// lookupPrices serves quotes cache-first, falling back to postgres for
// the misses. Price lookups never fail the portfolio read; a symbol
// with no quote falls back to its average buy price downstream.
func (h *PortfolioHandlers) lookupPrices(ctx context.Context, symbols []string) map[string]decimal.Decimal {
	if len(symbols) == 0 {
		return nil
	}

	prices, err := h.quotes.GetMany(ctx, symbols)
	if err != nil {
		h.logger.CtxWarn(ctx, "quote cache read failed", "error", err)
		prices = map[string]decimal.Decimal{}
	}

	var misses []string
	for _, s := range symbols {
		if _, ok := prices[s]; !ok {
			misses = append(misses, s)
		}
	}
	if len(misses) == 0 {
		return prices
	}

	stored, err := h.assets.GetPrices(ctx, misses)
	if err != nil {
		h.logger.CtxWarn(ctx, "asset price read failed", "error", err)
		return prices
	}
	for s, p := range stored {
		prices[s] = p
	}
	return prices
}

func symbolsOf(holdings []entities.Holding) []string {
	out := make([]string, 0, len(holdings))
	for _, h := range holdings {
		out = append(out, h.AssetSymbol)
	}
	return out
}

func priceHolding(h entities.Holding, prices map[string]decimal.Decimal) entities.HoldingView {
	price, ok := prices[h.AssetSymbol]
	if !ok || !price.IsPositive() {
		price = h.AvgBuyPrice
	}

	marketValue := h.Quantity.Mul(price)
	ret := price.Sub(h.AvgBuyPrice).Mul(h.Quantity)
	retPct := decimal.Zero
	if h.AvgBuyPrice.IsPositive() {
		retPct = price.Sub(h.AvgBuyPrice).Div(h.AvgBuyPrice).Mul(decimal.NewFromInt(100))
	}

	return entities.HoldingView{
		AssetSymbol:   h.AssetSymbol,
		Quantity:      h.Quantity,
		AvgBuyPrice:   h.AvgBuyPrice,
		CurrentPrice:  price,
		MarketValue:   marketValue,
		Return:        ret,
		ReturnPercent: retPct,
	}
}
