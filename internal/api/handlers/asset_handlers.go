package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tradesim-service/tradesim_service/internal/infrastructure/repositories"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

// AssetHandlers contains the market-data HTTP handlers
type AssetHandlers struct {
	assets *repositories.AssetRepository
	logger *logger.Logger
}

// NewAssetHandlers creates a new instance of asset handlers
func NewAssetHandlers(assets *repositories.AssetRepository, log *logger.Logger) *AssetHandlers {
	return &AssetHandlers{assets: assets, logger: log}
}

// ListAssets handles GET /assets
func (h *AssetHandlers) ListAssets(c *gin.Context) {
	assets, err := h.assets.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assets": assets})
}

// GetAsset handles GET /assets/:symbol
func (h *AssetHandlers) GetAsset(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	asset, err := h.assets.GetBySymbol(c.Request.Context(), symbol)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}
