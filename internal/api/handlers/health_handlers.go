package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

// HealthHandlers contains the health check HTTP handlers
type HealthHandlers struct {
	db      *sqlx.DB
	logger  *logger.Logger
	started time.Time
}

// NewHealthHandlers creates a new instance of health handlers
func NewHealthHandlers(db *sqlx.DB, log *logger.Logger) *HealthHandlers {
	return &HealthHandlers{db: db, logger: log, started: time.Now()}
}

// Health handles GET /health
func (h *HealthHandlers) Health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK

	if err := h.db.PingContext(c.Request.Context()); err != nil {
		h.logger.CtxError(c.Request.Context(), "health check db ping failed", "error", err)
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status": status,
		"uptime": time.Since(h.started).String(),
	})
}

// Ready handles GET /ready
func (h *HealthHandlers) Ready(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true})
}
