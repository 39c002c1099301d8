package trading

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	apperrors "github.com/tradesim-service/tradesim_service/pkg/errors"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fakeStore is an in-memory Store with all-or-nothing semantics: a failed
// transaction leaves its state exactly as it was before the attempt.
type fakeStore struct {
	user      *entities.User
	portfolio *entities.Portfolio
	holdings  []entities.Holding
	entries   []entities.BalanceEntry
	trades    []entities.Trade
	prices    map[string]decimal.Decimal
}

type fakeTx struct {
	s *fakeStore
}

func (f *fakeStore) snapshot() *fakeStore {
	cp := *f
	cp.user = nil
	if f.user != nil {
		u := *f.user
		cp.user = &u
	}
	cp.holdings = append([]entities.Holding(nil), f.holdings...)
	cp.entries = append([]entities.BalanceEntry(nil), f.entries...)
	cp.trades = append([]entities.Trade(nil), f.trades...)
	return &cp
}

func (f *fakeStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	before := f.snapshot()
	if err := fn(&fakeTx{s: f}); err != nil {
		*f = *before
		return err
	}
	return nil
}

func (t *fakeTx) GetUserForUpdate(ctx context.Context, ref entities.UserRef) (*entities.User, error) {
	if t.s.user == nil {
		return nil, apperrors.UserNotFound()
	}
	u := *t.s.user
	return &u, nil
}

func (t *fakeTx) GetOrCreatePortfolio(ctx context.Context, userID uuid.UUID, mode entities.TradeMode) (*entities.Portfolio, error) {
	if t.s.portfolio == nil {
		t.s.portfolio = &entities.Portfolio{ID: uuid.New(), UserID: userID, Mode: mode}
	}
	return t.s.portfolio, nil
}

func (t *fakeTx) GetHoldings(ctx context.Context, portfolioID uuid.UUID) ([]entities.Holding, error) {
	return append([]entities.Holding(nil), t.s.holdings...), nil
}

func (t *fakeTx) ReplaceHoldings(ctx context.Context, portfolioID uuid.UUID, list []entities.Holding) error {
	t.s.holdings = append([]entities.Holding(nil), list...)
	return nil
}

func (t *fakeTx) UpdateUserFinancials(ctx context.Context, user *entities.User) error {
	u := *user
	t.s.user = &u
	return nil
}

func (t *fakeTx) AppendBalanceEntry(ctx context.Context, entry *entities.BalanceEntry) error {
	t.s.entries = append(t.s.entries, *entry)
	return nil
}

func (t *fakeTx) InsertTrade(ctx context.Context, trade *entities.Trade) error {
	t.s.trades = append(t.s.trades, *trade)
	return nil
}

func (t *fakeTx) GetPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal)
	for _, sym := range symbols {
		if p, ok := t.s.prices[sym]; ok {
			out[sym] = p
		}
	}
	return out, nil
}

func newFixture(balance string) (*Executor, *fakeStore) {
	store := &fakeStore{
		user: &entities.User{
			ID:             uuid.New(),
			Email:          "trader@example.com",
			CashBalance:    dec(balance),
			InitialBalance: dec(balance),
		},
		prices: map[string]decimal.Decimal{},
	}
	return NewExecutor(store, logger.NewNop()), store
}

func buyReq(symbol, qty, price string) *entities.ExecuteTradeRequest {
	return &entities.ExecuteTradeRequest{
		AssetSymbol: symbol,
		AssetType:   entities.AssetStock,
		Quantity:    dec(qty),
		Price:       dec(price),
		OrderType:   entities.OrderBuy,
		Mode:        entities.ModeSimulated,
	}
}

func sellReq(symbol, qty, price string) *entities.ExecuteTradeRequest {
	r := buyReq(symbol, qty, price)
	r.OrderType = entities.OrderSell
	return r
}

func ref(s *fakeStore) entities.UserRef {
	return entities.UserRef{Kind: entities.RefByID, ID: s.user.ID}
}

func TestExecute_BuySellRoundTrip(t *testing.T) {
	// The worked scenario: 10 AAPL @ 172.25, 5 more @ 180.00, sell all @ 190.00.
	exec, store := newFixture("10000")
	ctx := context.Background()

	resp, err := exec.Execute(ctx, ref(store), buyReq("AAPL", "10", "172.25"))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.True(t, store.user.CashBalance.Equal(dec("8277.50")))
	require.Len(t, store.holdings, 1)
	assert.True(t, store.holdings[0].Quantity.Equal(dec("10")))
	assert.True(t, store.holdings[0].AvgBuyPrice.Equal(dec("172.25")))

	_, err = exec.Execute(ctx, ref(store), buyReq("AAPL", "5", "180.00"))
	require.NoError(t, err)
	assert.True(t, store.user.CashBalance.Equal(dec("7377.50")))
	assert.True(t, store.holdings[0].Quantity.Equal(dec("15")))
	// weighted average: 2622.50 spent over 15 shares
	assert.True(t, store.holdings[0].AvgBuyPrice.Equal(dec("2622.50").Div(dec("15"))),
		"got avg %s", store.holdings[0].AvgBuyPrice)

	resp, err = exec.Execute(ctx, ref(store), sellReq("AAPL", "15", "190.00"))
	require.NoError(t, err)
	assert.True(t, store.user.CashBalance.Equal(dec("10227.50")))
	assert.Empty(t, store.holdings, "position sold to zero must be removed")
	assert.Contains(t, resp.Message, "sold")

	assert.Len(t, store.trades, 3)
	assert.Len(t, store.entries, 3)
}

func TestExecute_LedgerStaysConsistent(t *testing.T) {
	exec, store := newFixture("10000")
	ctx := context.Background()

	_, err := exec.Execute(ctx, ref(store), buyReq("AAPL", "10", "172.25"))
	require.NoError(t, err)
	_, err = exec.Execute(ctx, ref(store), sellReq("AAPL", "4", "150.00"))
	require.NoError(t, err)

	sum := decimal.Zero
	for _, e := range store.entries {
		sum = sum.Add(e.Amount)
		assert.NotNil(t, e.Reference, "trade entries carry the trade id")
	}
	assert.True(t, sum.Equal(store.user.CashBalance.Sub(store.user.InitialBalance)))
}

func TestExecute_InsufficientFundsLeavesStateUntouched(t *testing.T) {
	exec, store := newFixture("100")
	ctx := context.Background()

	_, err := exec.Execute(ctx, ref(store), buyReq("AAPL", "10", "172.25"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInsufficientFunds))

	assert.True(t, store.user.CashBalance.Equal(dec("100")))
	assert.Empty(t, store.holdings)
	assert.Empty(t, store.trades)
	assert.Empty(t, store.entries)
}

func TestExecute_SellWithNoHoldings(t *testing.T) {
	exec, store := newFixture("10000")
	ctx := context.Background()

	_, err := exec.Execute(ctx, ref(store), sellReq("AAPL", "1", "190.00"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInsufficientHoldings))
	assert.True(t, store.user.CashBalance.Equal(dec("10000")), "balance unchanged")
}

func TestExecute_OversellLeavesStateUntouched(t *testing.T) {
	exec, store := newFixture("10000")
	ctx := context.Background()

	_, err := exec.Execute(ctx, ref(store), buyReq("AAPL", "3", "100"))
	require.NoError(t, err)
	balanceAfterBuy := store.user.CashBalance

	_, err = exec.Execute(ctx, ref(store), sellReq("AAPL", "4", "100"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeOversell))

	assert.True(t, store.user.CashBalance.Equal(balanceAfterBuy))
	require.Len(t, store.holdings, 1)
	assert.True(t, store.holdings[0].Quantity.Equal(dec("3")))
	assert.Len(t, store.trades, 1)
}

func TestExecute_UserNotFound(t *testing.T) {
	exec, store := newFixture("10000")
	store.user = nil

	_, err := exec.Execute(context.Background(), entities.UserRef{Kind: entities.RefByEmail, Email: "nobody@example.com"}, buyReq("AAPL", "1", "1"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeUserNotFound))
}

func TestExecute_ValuationUsesLivePrices(t *testing.T) {
	exec, store := newFixture("10000")
	store.prices["AAPL"] = dec("200")
	ctx := context.Background()

	_, err := exec.Execute(ctx, ref(store), buyReq("AAPL", "10", "172.25"))
	require.NoError(t, err)

	// 8277.50 cash + 10*200 live
	assert.True(t, store.user.PortfolioValue.Equal(dec("10277.50")),
		"got %s", store.user.PortfolioValue)
	// 10277.50 - 1722.50 cost - 8277.50 cash
	assert.True(t, store.user.TotalReturn.Equal(dec("277.50")))
	assert.True(t, store.user.MaxPortfolioValue.Equal(dec("10277.50")))
}

func TestExecute_Validation(t *testing.T) {
	exec, store := newFixture("10000")
	ctx := context.Background()

	cases := []*entities.ExecuteTradeRequest{
		{AssetType: entities.AssetStock, Quantity: dec("1"), Price: dec("1"), OrderType: entities.OrderBuy, Mode: entities.ModeSimulated},
		buyReqWith(func(r *entities.ExecuteTradeRequest) { r.Quantity = decimal.Zero }),
		buyReqWith(func(r *entities.ExecuteTradeRequest) { r.Quantity = dec("-1") }),
		buyReqWith(func(r *entities.ExecuteTradeRequest) { r.Price = decimal.Zero }),
		buyReqWith(func(r *entities.ExecuteTradeRequest) { r.OrderType = "hold" }),
		buyReqWith(func(r *entities.ExecuteTradeRequest) { r.Mode = "paper" }),
	}

	for _, req := range cases {
		_, err := exec.Execute(ctx, ref(store), req)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation), "req %+v", req)
	}

	assert.Empty(t, store.trades, "validation failures must not reach the store")
}

func buyReqWith(mutate func(*entities.ExecuteTradeRequest)) *entities.ExecuteTradeRequest {
	r := buyReq("AAPL", "1", "1")
	mutate(r)
	return r
}
