package valuation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCompute_BasicMetrics(t *testing.T) {
	hold := []entities.Holding{
		{AssetSymbol: "AAPL", Quantity: dec("10"), AvgBuyPrice: dec("150")},
		{AssetSymbol: "BTC", Quantity: dec("0.1"), AvgBuyPrice: dec("60000")},
	}
	prices := PriceMap(map[string]decimal.Decimal{
		"AAPL": dec("180"),
		"BTC":  dec("65000"),
	})

	m := Compute(hold, prices, dec("5000"), decimal.Zero)

	// 5000 + 10*180 + 0.1*65000 = 13300
	assert.True(t, m.PortfolioValue.Equal(dec("13300")), "value %s", m.PortfolioValue)
	// 10*150 + 0.1*60000 = 7500
	assert.True(t, m.TotalCost.Equal(dec("7500")))
	// 13300 - 7500 - 5000 = 800
	assert.True(t, m.TotalReturn.Equal(dec("800")))
	// 800/7500*100
	assert.True(t, m.TotalReturnPercent.Sub(dec("10.6666666666")).Abs().LessThan(dec("0.001")))
	assert.True(t, m.MaxPortfolioValue.Equal(dec("13300")))
}

func TestCompute_FallsBackToAvgBuyPrice(t *testing.T) {
	hold := []entities.Holding{
		{AssetSymbol: "DELISTED", Quantity: dec("4"), AvgBuyPrice: dec("25")},
	}

	m := Compute(hold, PriceMap(nil), dec("100"), decimal.Zero)

	// priced at cost, so unrealized return is zero
	assert.True(t, m.PortfolioValue.Equal(dec("200")))
	assert.True(t, m.TotalReturn.IsZero())
	assert.True(t, m.TotalReturnPercent.IsZero())
}

func TestCompute_EmptyHoldings(t *testing.T) {
	m := Compute(nil, PriceMap(nil), dec("10000"), decimal.Zero)

	assert.True(t, m.PortfolioValue.Equal(dec("10000")))
	assert.True(t, m.TotalCost.IsZero())
	assert.True(t, m.TotalReturn.IsZero())
	assert.True(t, m.TotalReturnPercent.IsZero(), "zero cost must not divide")
}

func TestCompute_HighWaterMarkIsMonotonic(t *testing.T) {
	hold := []entities.Holding{
		{AssetSymbol: "AAPL", Quantity: dec("1"), AvgBuyPrice: dec("100")},
	}

	up := Compute(hold, PriceMap(map[string]decimal.Decimal{"AAPL": dec("300")}), dec("0"), decimal.Zero)
	assert.True(t, up.MaxPortfolioValue.Equal(dec("300")))

	// price collapses, mark must hold
	down := Compute(hold, PriceMap(map[string]decimal.Decimal{"AAPL": dec("50")}), dec("0"), up.MaxPortfolioValue)
	assert.True(t, down.PortfolioValue.Equal(dec("50")))
	assert.True(t, down.MaxPortfolioValue.Equal(dec("300")))
}

func TestCompute_Idempotent(t *testing.T) {
	hold := []entities.Holding{
		{AssetSymbol: "AAPL", Quantity: dec("7"), AvgBuyPrice: dec("142.42")},
	}
	prices := PriceMap(map[string]decimal.Decimal{"AAPL": dec("151.31")})

	first := Compute(hold, prices, dec("1234.56"), dec("9999"))
	second := Compute(hold, prices, dec("1234.56"), dec("9999"))

	assert.Equal(t, first, second)
}
