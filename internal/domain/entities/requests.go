package entities

import (
	"github.com/shopspring/decimal"
)

// ErrorResponse is the standardized error envelope for all endpoints
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SignupRequest creates a new account with the configured starting balance
type SignupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"displayName" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// ExecuteTradeRequest is the body of POST /users/:id/execute-trade
type ExecuteTradeRequest struct {
	AssetSymbol string          `json:"assetSymbol" binding:"required"`
	AssetType   AssetType       `json:"assetType" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	OrderType   OrderType       `json:"orderType" binding:"required"`
	Mode        TradeMode       `json:"mode" binding:"required"`
}

type ExecuteTradeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Trade   *Trade `json:"trade,omitempty"`
}

// PortfolioResponse carries the holdings of one (user, mode) portfolio
// together with the user's derived metrics
type PortfolioResponse struct {
	Mode               TradeMode       `json:"mode"`
	Holdings           []HoldingView   `json:"holdings"`
	CashBalance        decimal.Decimal `json:"cashBalance"`
	PortfolioValue     decimal.Decimal `json:"portfolioValue"`
	TotalReturn        decimal.Decimal `json:"totalReturn"`
	TotalReturnPercent decimal.Decimal `json:"totalReturnPercent"`
	MaxPortfolioValue  decimal.Decimal `json:"maxPortfolioValue"`
}

// HoldingView is a holding priced against the latest quote
type HoldingView struct {
	AssetSymbol   string          `json:"assetSymbol"`
	Quantity      decimal.Decimal `json:"quantity"`
	AvgBuyPrice   decimal.Decimal `json:"avgBuyPrice"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	MarketValue   decimal.Decimal `json:"marketValue"`
	Return        decimal.Decimal `json:"return"`
	ReturnPercent decimal.Decimal `json:"returnPercent"`
}

// BalanceHistoryResponse returns the ledger newest-first plus summary fields
type BalanceHistoryResponse struct {
	Entries        []BalanceEntry  `json:"entries"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	TotalEarned    decimal.Decimal `json:"totalEarned"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

type AddFundsRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

type AddFundsResponse struct {
	Success    bool            `json:"success"`
	NewBalance decimal.Decimal `json:"newBalance"`
}

type DailyBonusResponse struct {
	Success    bool            `json:"success"`
	Amount     decimal.Decimal `json:"amount"`
	NewBalance decimal.Decimal `json:"newBalance"`
}

// QuizSubmitRequest maps question IDs to the chosen answer index
type QuizSubmitRequest struct {
	Answers map[string]int `json:"answers" binding:"required"`
}

type QuizSubmitResponse struct {
	Score   int              `json:"score"`
	Total   int              `json:"total"`
	Results []QuizResultItem `json:"results"`
}

type QuizResultItem struct {
	QuestionID  string `json:"questionId"`
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
}
