package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tradesim-service/tradesim_service/internal/api/middleware"
	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	apperrors "github.com/tradesim-service/tradesim_service/pkg/errors"
)

// getRequestID extracts the request ID from the gin context
func getRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}

// respondError writes the standardized error envelope. AppErrors carry
// their own status code; anything else is a 500 with no detail leaked.
func respondError(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		c.JSON(appErr.StatusCode, entities.ErrorResponse{
			Code:    string(appErr.Code),
			Message: appErr.Message,
			Details: appErr.Details,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, entities.ErrorResponse{
		Code:    string(apperrors.ErrCodeInternal),
		Message: "Internal server error",
		Details: map[string]interface{}{"request_id": getRequestID(c)},
	})
}

// respondBindError maps gin binding failures to a validation error
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, entities.ErrorResponse{
		Code:    string(apperrors.ErrCodeValidation),
		Message: "Invalid request body",
		Details: map[string]interface{}{"error": err.Error()},
	})
}

// pathUserRef parses the :id path segment, which accepts either a user
// UUID or an email address.
func pathUserRef(c *gin.Context) entities.UserRef {
	return entities.ParseUserRef(c.Param("id"))
}

// requireSelf rejects writes against another user's ID. Email refs are
// only resolved downstream, so they pass through here.
func requireSelf(c *gin.Context, ref entities.UserRef) error {
	caller, ok := middleware.CallerID(c)
	if !ok {
		return apperrors.Unauthorized("authentication required")
	}
	if ref.Kind == entities.RefByID && ref.ID != caller {
		return apperrors.New(apperrors.ErrCodeForbidden, "cannot act on another user's account")
	}
	return nil
}

// parsePagination reads limit/offset query params with sane bounds
func parsePagination(c *gin.Context) (limit, offset int) {
	limit = 50
	offset = 0
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}

// tradeMode reads the ?mode= query param, defaulting to simulated
func tradeMode(c *gin.Context) (entities.TradeMode, error) {
	mode := entities.TradeMode(c.DefaultQuery("mode", string(entities.ModeSimulated)))
	if !mode.Valid() {
		return "", apperrors.ValidationError("mode must be 'simulated' or 'real'")
	}
	return mode, nil
}
