package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	apperrors "github.com/tradesim-service/tradesim_service/pkg/errors"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

const assetColumns = `
	symbol, name, asset_type, current_price, change, change_percent,
	market_cap, initial_price, updated_at`

// AssetRepository persists assets and their simulated quotes
type AssetRepository struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *sqlx.DB, log *logger.Logger) *AssetRepository {
	return &AssetRepository{db: db, logger: log}
}

// List returns every asset ordered by symbol
func (r *AssetRepository) List(ctx context.Context) ([]entities.Asset, error) {
	var assets []entities.Asset
	query := `SELECT ` + assetColumns + ` FROM assets ORDER BY symbol`
	if err := r.db.SelectContext(ctx, &assets, query); err != nil {
		return nil, apperrors.Persistence(err)
	}
	return assets, nil
}

// GetBySymbol returns one asset
func (r *AssetRepository) GetBySymbol(ctx context.Context, symbol string) (*entities.Asset, error) {
	var asset entities.Asset
	query := `SELECT ` + assetColumns + ` FROM assets WHERE symbol = $1`
	if err := r.db.GetContext(ctx, &asset, query, symbol); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.AssetNotFound(symbol)
		}
		return nil, apperrors.Persistence(err)
	}
	return &asset, nil
}

// GetPrices resolves current prices for a set of symbols
func GetPrices(ctx context.Context, ext sqlx.ExtContext, symbols []string) (map[string]decimal.Decimal, error) {
	if len(symbols) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	query, args, err := sqlx.In(`SELECT symbol, current_price FROM assets WHERE symbol IN (?)`, symbols)
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)

	rows, err := ext.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	defer rows.Close()

	out := make(map[string]decimal.Decimal, len(symbols))
	for rows.Next() {
		var symbol string
		var price decimal.Decimal
		if err := rows.Scan(&symbol, &price); err != nil {
			return nil, apperrors.Persistence(err)
		}
		out[symbol] = price
	}
	return out, rows.Err()
}

// GetPrices resolves current prices via the pool
func (r *AssetRepository) GetPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	return GetPrices(ctx, r.db, symbols)
}

// UpdateQuote writes one simulator tick for a symbol
func (r *AssetRepository) UpdateQuote(ctx context.Context, asset *entities.Asset) error {
	query := `
		UPDATE assets SET
			current_price = $2,
			change = $3,
			change_percent = $4,
			updated_at = $5
		WHERE symbol = $1`

	_, err := r.db.ExecContext(ctx, query,
		asset.Symbol,
		asset.CurrentPrice,
		asset.Change,
		asset.ChangePercent,
		asset.UpdatedAt,
	)
	if err != nil {
		r.logger.Errorw("Failed to update quote", "error", err, "symbol", asset.Symbol)
		return apperrors.Persistence(err)
	}
	return nil
}
