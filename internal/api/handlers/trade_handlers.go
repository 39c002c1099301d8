package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	"github.com/tradesim-service/tradesim_service/internal/domain/services/achievements"
	"github.com/tradesim-service/tradesim_service/internal/domain/services/trading"
	"github.com/tradesim-service/tradesim_service/internal/infrastructure/repositories"
	apperrors "github.com/tradesim-service/tradesim_service/pkg/errors"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
	"github.com/tradesim-service/tradesim_service/pkg/metrics"
)

// TradeHandlers contains the trade execution and history HTTP handlers
type TradeHandlers struct {
	executor     *trading.Executor
	trades       *repositories.TradeRepository
	achievements *achievements.Service
	logger       *logger.Logger
}

// NewTradeHandlers creates a new instance of trade handlers
func NewTradeHandlers(executor *trading.Executor, trades *repositories.TradeRepository, achievementService *achievements.Service, log *logger.Logger) *TradeHandlers {
	return &TradeHandlers{
		executor:     executor,
		trades:       trades,
		achievements: achievementService,
		logger:       log,
	}
}

// ExecuteTrade handles POST /users/:id/execute-trade
func (h *TradeHandlers) ExecuteTrade(c *gin.Context) {
	ctx := c.Request.Context()
	ref := pathUserRef(c)
	if err := requireSelf(c, ref); err != nil {
		respondError(c, err)
		return
	}

	var req entities.ExecuteTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.executor.Execute(ctx, ref, &req)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			metrics.TradesRejected.WithLabelValues(string(appErr.Code)).Inc()
		}
		respondError(c, err)
		return
	}

	metrics.TradesExecuted.WithLabelValues(string(req.OrderType)).Inc()

	// badges are evaluated after the commit; a failure here never
	// affects the trade response
	if resp.Trade != nil {
		h.achievements.EvaluateTrade(ctx, resp.Trade.UserID)
	}

	c.JSON(http.StatusOK, resp)
}

// ListTrades handles GET /users/:id/trades
func (h *TradeHandlers) ListTrades(c *gin.Context) {
	ctx := c.Request.Context()

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.ValidationError("trade history requires a user ID"))
		return
	}

	limit, offset := parsePagination(c)
	trades, err := h.trades.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	total, err := h.trades.CountByUser(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trades": trades,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
