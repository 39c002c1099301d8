// Package valuation derives portfolio metrics from holdings and quotes.
package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
)

// PriceLookup resolves a symbol to its latest known price. The second
// return value reports whether a live quote was available.
type PriceLookup func(symbol string) (decimal.Decimal, bool)

// Metrics is the derived view of one portfolio
type Metrics struct {
	PortfolioValue     decimal.Decimal
	TotalCost          decimal.Decimal
	TotalReturn        decimal.Decimal
	TotalReturnPercent decimal.Decimal
	MaxPortfolioValue  decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Compute revalues a holdings list against live prices. Holdings with no
// live quote are priced at their own average buy price. The high-water
// mark only ever moves up.
//
// Deterministic and side-effect free: identical inputs always produce
// identical metrics.
func Compute(hold []entities.Holding, prices PriceLookup, cashBalance, previousMax decimal.Decimal) Metrics {
	value := cashBalance
	cost := decimal.Zero

	for _, h := range hold {
		price, ok := prices(h.AssetSymbol)
		if !ok {
			price = h.AvgBuyPrice
		}
		value = value.Add(h.Quantity.Mul(price))
		cost = cost.Add(h.Quantity.Mul(h.AvgBuyPrice))
	}

	ret := value.Sub(cost).Sub(cashBalance)

	retPct := decimal.Zero
	if cost.IsPositive() {
		retPct = ret.Div(cost).Mul(hundred)
	}

	max := previousMax
	if value.GreaterThan(max) {
		max = value
	}

	return Metrics{
		PortfolioValue:     value,
		TotalCost:          cost,
		TotalReturn:        ret,
		TotalReturnPercent: retPct,
		MaxPortfolioValue:  max,
	}
}

// PriceMap adapts a plain symbol→price map into a PriceLookup
func PriceMap(m map[string]decimal.Decimal) PriceLookup {
	return func(symbol string) (decimal.Decimal, bool) {
		p, ok := m[symbol]
		return p, ok
	}
}
