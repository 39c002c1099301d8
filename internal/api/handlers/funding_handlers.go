package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	"github.com/tradesim-service/tradesim_service/internal/domain/services/funding"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
	"github.com/tradesim-service/tradesim_service/pkg/metrics"
)

// FundingHandlers contains the deposit and daily-bonus HTTP handlers
type FundingHandlers struct {
	funding *funding.Service
	logger  *logger.Logger
}

// NewFundingHandlers creates a new instance of funding handlers
func NewFundingHandlers(fundingService *funding.Service, log *logger.Logger) *FundingHandlers {
	return &FundingHandlers{funding: fundingService, logger: log}
}

// AddFunds handles POST /users/:id/add-funds
func (h *FundingHandlers) AddFunds(c *gin.Context) {
	if err := requireSelf(c, pathUserRef(c)); err != nil {
		respondError(c, err)
		return
	}

	var req entities.AddFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.funding.AddFunds(c.Request.Context(), pathUserRef(c), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.DepositsTotal.Inc()
	c.JSON(http.StatusOK, resp)
}

// ClaimDailyBonus handles POST /users/:id/claim-daily-bonus
func (h *FundingHandlers) ClaimDailyBonus(c *gin.Context) {
	if err := requireSelf(c, pathUserRef(c)); err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.funding.ClaimDailyBonus(c.Request.Context(), pathUserRef(c))
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.DailyBonusClaims.Inc()
	c.JSON(http.StatusOK, resp)
}
