package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	"github.com/tradesim-service/tradesim_service/internal/domain/services/achievements"
	"github.com/tradesim-service/tradesim_service/internal/infrastructure/repositories"
	apperrors "github.com/tradesim-service/tradesim_service/pkg/errors"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

// BadgeHandlers contains the achievement and watchlist HTTP handlers
type BadgeHandlers struct {
	achievements *achievements.Service
	watchlist    *repositories.WatchlistRepository
	logger       *logger.Logger
}

// NewBadgeHandlers creates a new instance of badge handlers
func NewBadgeHandlers(achievementService *achievements.Service, watchlist *repositories.WatchlistRepository, log *logger.Logger) *BadgeHandlers {
	return &BadgeHandlers{
		achievements: achievementService,
		watchlist:    watchlist,
		logger:       log,
	}
}

func pathUserID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.ValidationError("a user ID is required")
	}
	return id, nil
}

// ListBadges handles GET /users/:id/badges
func (h *BadgeHandlers) ListBadges(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	badges, err := h.achievements.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"badges": badges})
}

// ListWatchlist handles GET /users/:id/watchlist
func (h *BadgeHandlers) ListWatchlist(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	items, err := h.watchlist.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"watchlist": items})
}

// AddToWatchlist handles POST /users/:id/watchlist/:symbol
func (h *BadgeHandlers) AddToWatchlist(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := requireSelf(c, entities.UserRef{Kind: entities.RefByID, ID: userID}); err != nil {
		respondError(c, err)
		return
	}

	symbol := strings.ToUpper(c.Param("symbol"))
	if symbol == "" {
		respondError(c, apperrors.ValidationError("a symbol is required"))
		return
	}

	if err := h.watchlist.Add(c.Request.Context(), userID, symbol); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RemoveFromWatchlist handles DELETE /users/:id/watchlist/:symbol
func (h *BadgeHandlers) RemoveFromWatchlist(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := requireSelf(c, entities.UserRef{Kind: entities.RefByID, ID: userID}); err != nil {
		respondError(c, err)
		return
	}

	if err := h.watchlist.Remove(c.Request.Context(), userID, strings.ToUpper(c.Param("symbol"))); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
