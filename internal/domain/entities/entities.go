package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeMode is the trading context a portfolio and its trades belong to
type TradeMode string

const (
	ModeSimulated TradeMode = "simulated"
	ModeReal      TradeMode = "real" // accepted on the wire, never enabled in the UI
)

func (m TradeMode) Valid() bool {
	return m == ModeSimulated || m == ModeReal
}

// OrderType is the direction of a trade
type OrderType string

const (
	OrderBuy  OrderType = "buy"
	OrderSell OrderType = "sell"
)

func (o OrderType) Valid() bool {
	return o == OrderBuy || o == OrderSell
}

// AssetType distinguishes equities from crypto assets
type AssetType string

const (
	AssetStock  AssetType = "stock"
	AssetCrypto AssetType = "crypto"
)

// BalanceEntryType classifies ledger entries
type BalanceEntryType string

const (
	EntryInitial     BalanceEntryType = "initial"
	EntryTrade       BalanceEntryType = "trade"
	EntryAchievement BalanceEntryType = "achievement"
	EntryDailyBonus  BalanceEntryType = "daily-bonus"
	EntryManualAdd   BalanceEntryType = "manual-add"
)

// User is an account holder with a virtual cash balance and derived
// portfolio metrics. MaxPortfolioValue is a monotonic high-water mark.
type User struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	Email              string          `json:"email" db:"email"`
	DisplayName        string          `json:"displayName" db:"display_name"`
	PasswordHash       string          `json:"-" db:"password_hash"`
	CashBalance        decimal.Decimal `json:"cashBalance" db:"cash_balance"`
	InitialBalance     decimal.Decimal `json:"initialBalance" db:"initial_balance"`
	PortfolioValue     decimal.Decimal `json:"portfolioValue" db:"portfolio_value"`
	TotalReturn        decimal.Decimal `json:"totalReturn" db:"total_return"`
	TotalReturnPercent decimal.Decimal `json:"totalReturnPercent" db:"total_return_percent"`
	MaxPortfolioValue  decimal.Decimal `json:"maxPortfolioValue" db:"max_portfolio_value"`
	LastDailyBonusAt   *time.Time      `json:"lastDailyBonusAt,omitempty" db:"last_daily_bonus_at"`
	CreatedAt          time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time       `json:"updatedAt" db:"updated_at"`
}

// Holding is a position in one asset within one portfolio.
// Quantity is always > 0 while the row exists; a position sold down to zero
// is deleted, never stored as zero.
type Holding struct {
	PortfolioID uuid.UUID       `json:"-" db:"portfolio_id"`
	AssetSymbol string          `json:"assetSymbol" db:"asset_symbol"`
	Quantity    decimal.Decimal `json:"quantity" db:"quantity"`
	AvgBuyPrice decimal.Decimal `json:"avgBuyPrice" db:"avg_buy_price"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// Portfolio groups the holdings of one user in one trade mode.
// The (user, mode) pair is unique.
type Portfolio struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	Mode      TradeMode `json:"mode" db:"mode"`
	Holdings  []Holding `json:"holdings" db:"-"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Trade is an immutable record of one executed order
type Trade struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"userId" db:"user_id"`
	Mode        TradeMode       `json:"mode" db:"mode"`
	AssetSymbol string          `json:"assetSymbol" db:"asset_symbol"`
	AssetType   AssetType       `json:"assetType" db:"asset_type"`
	Quantity    decimal.Decimal `json:"quantity" db:"quantity"`
	OrderType   OrderType       `json:"orderType" db:"order_type"`
	Price       decimal.Decimal `json:"price" db:"price"`
	TotalAmount decimal.Decimal `json:"totalAmount" db:"total_amount"`
	ExecutedAt  time.Time       `json:"executedAt" db:"executed_at"`
}

// BalanceEntry is one append-only row of a user's balance history.
// Summing Amount over all of a user's entries reproduces
// CashBalance - InitialBalance.
type BalanceEntry struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	UserID       uuid.UUID        `json:"userId" db:"user_id"`
	Type         BalanceEntryType `json:"type" db:"entry_type"`
	Amount       decimal.Decimal  `json:"amount" db:"amount"`
	Description  string           `json:"description" db:"description"`
	Reference    *uuid.UUID       `json:"reference,omitempty" db:"reference"`
	BalanceAfter decimal.Decimal  `json:"balanceAfter" db:"balance_after"`
	CreatedAt    time.Time        `json:"createdAt" db:"created_at"`
}

// Asset is a tradeable instrument with its current simulated quote.
// InitialPrice is the baseline the market simulator reverts toward.
type Asset struct {
	Symbol        string          `json:"symbol" db:"symbol"`
	Name          string          `json:"name" db:"name"`
	Type          AssetType       `json:"type" db:"asset_type"`
	CurrentPrice  decimal.Decimal `json:"currentPrice" db:"current_price"`
	Change        decimal.Decimal `json:"change" db:"change"`
	ChangePercent decimal.Decimal `json:"changePercent" db:"change_percent"`
	MarketCap     decimal.Decimal `json:"marketCap" db:"market_cap"`
	InitialPrice  decimal.Decimal `json:"initialPrice" db:"initial_price"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// Badge is an achievement a user can earn, optionally with a cash reward
type Badge struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Reward      decimal.Decimal `json:"reward" db:"reward"`
}

// UserBadge links a user to an earned badge. One row per (user, badge).
type UserBadge struct {
	UserID   uuid.UUID `json:"userId" db:"user_id"`
	BadgeID  string    `json:"badgeId" db:"badge_id"`
	EarnedAt time.Time `json:"earnedAt" db:"earned_at"`
}

// WatchlistItem is one symbol on a user's watchlist
type WatchlistItem struct {
	UserID      uuid.UUID `json:"userId" db:"user_id"`
	AssetSymbol string    `json:"assetSymbol" db:"asset_symbol"`
	AddedAt     time.Time `json:"addedAt" db:"added_at"`
}

// QuizQuestion is one multiple-choice question of the education module
type QuizQuestion struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Prompt       string    `json:"prompt" db:"prompt"`
	Choices      []string  `json:"choices" db:"-"`
	ChoicesRaw   string    `json:"-" db:"choices"`
	CorrectIndex int       `json:"-" db:"correct_index"`
	Explanation  string    `json:"explanation" db:"explanation"`
}

// QuizSubmission records one scored quiz attempt
type QuizSubmission struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"userId" db:"user_id"`
	Score       int       `json:"score" db:"score"`
	Total       int       `json:"total" db:"total"`
	SubmittedAt time.Time `json:"submittedAt" db:"submitted_at"`
}
