package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	"github.com/tradesim-service/tradesim_service/internal/domain/services/accounts"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

// AuthHandlers contains the signup and login HTTP handlers
type AuthHandlers struct {
	accounts *accounts.Service
	logger   *logger.Logger
}

// NewAuthHandlers creates a new instance of auth handlers
func NewAuthHandlers(accountService *accounts.Service, log *logger.Logger) *AuthHandlers {
	return &AuthHandlers{accounts: accountService, logger: log}
}

// Signup handles POST /auth/signup
func (h *AuthHandlers) Signup(c *gin.Context) {
	var req entities.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.accounts.Signup(c.Request.Context(), &req)
	if err != nil {
		h.logger.CtxWarn(c.Request.Context(), "signup failed", "error", err, "email", req.Email)
		respondError(c, err)
		return
	}

	// never echo the hash back
	resp.User.PasswordHash = ""
	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /auth/login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req entities.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.accounts.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	resp.User.PasswordHash = ""
	c.JSON(http.StatusOK, resp)
}
