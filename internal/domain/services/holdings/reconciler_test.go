package holdings

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	apperrors "github.com/tradesim-service/tradesim_service/pkg/errors"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestApply_BuyNewSymbol(t *testing.T) {
	out, err := Apply(nil, "AAPL", dec("10"), dec("172.25"), entities.OrderBuy)
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, "AAPL", out[0].AssetSymbol)
	assert.True(t, out[0].Quantity.Equal(dec("10")))
	assert.True(t, out[0].AvgBuyPrice.Equal(dec("172.25")))
}

func TestApply_BuyExistingRecomputesWeightedAverage(t *testing.T) {
	existing := []entities.Holding{
		{AssetSymbol: "AAPL", Quantity: dec("10"), AvgBuyPrice: dec("172.25")},
	}

	out, err := Apply(existing, "AAPL", dec("5"), dec("180.00"), entities.OrderBuy)
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.True(t, out[0].Quantity.Equal(dec("15")))
	// (172.25*10 + 180*5) / 15 = 2622.50 / 15 = 174.8333...
	want := dec("2622.50").Div(dec("15"))
	assert.True(t, out[0].AvgBuyPrice.Equal(want),
		"got avg %s, want %s", out[0].AvgBuyPrice, want)
}

func TestApply_WeightedAverageInvariant(t *testing.T) {
	// After any sequence of buys, avg*qty must equal the sum of all buy costs.
	buys := []struct{ qty, price string }{
		{"3", "101.50"}, {"7", "99.25"}, {"2", "110.00"}, {"13", "95.80"},
	}

	var list []entities.Holding
	totalCost := decimal.Zero
	var err error

	for _, b := range buys {
		list, err = Apply(list, "MSFT", dec(b.qty), dec(b.price), entities.OrderBuy)
		require.NoError(t, err)
		totalCost = totalCost.Add(dec(b.qty).Mul(dec(b.price)))
	}

	h, ok := Find(list, "MSFT")
	require.True(t, ok)
	assert.True(t, h.AvgBuyPrice.Mul(h.Quantity).Sub(totalCost).Abs().LessThan(dec("0.0000001")),
		"avg*qty %s != total cost %s", h.AvgBuyPrice.Mul(h.Quantity), totalCost)
}

func TestApply_PartialSellKeepsAverage(t *testing.T) {
	existing := []entities.Holding{
		{AssetSymbol: "AAPL", Quantity: dec("15"), AvgBuyPrice: dec("175.5")},
		{AssetSymbol: "BTC", Quantity: dec("0.5"), AvgBuyPrice: dec("64000")},
	}

	out, err := Apply(existing, "AAPL", dec("5"), dec("190.00"), entities.OrderSell)
	require.NoError(t, err)

	require.Len(t, out, 2)
	h, ok := Find(out, "AAPL")
	require.True(t, ok)
	assert.True(t, h.Quantity.Equal(dec("10")))
	assert.True(t, h.AvgBuyPrice.Equal(dec("175.5")), "average must not move on sell")
}

func TestApply_SellToZeroRemovesHolding(t *testing.T) {
	existing := []entities.Holding{
		{AssetSymbol: "AAPL", Quantity: dec("15"), AvgBuyPrice: dec("175.5")},
	}

	out, err := Apply(existing, "AAPL", dec("15"), dec("190.00"), entities.OrderSell)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestApply_SellUnknownSymbol(t *testing.T) {
	_, err := Apply(nil, "AAPL", dec("1"), dec("190.00"), entities.OrderSell)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInsufficientHoldings))
}

func TestApply_Oversell(t *testing.T) {
	existing := []entities.Holding{
		{AssetSymbol: "AAPL", Quantity: dec("3"), AvgBuyPrice: dec("100")},
	}

	_, err := Apply(existing, "AAPL", dec("4"), dec("100"), entities.OrderSell)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeOversell))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	existing := []entities.Holding{
		{AssetSymbol: "AAPL", Quantity: dec("10"), AvgBuyPrice: dec("172.25")},
	}

	_, err := Apply(existing, "AAPL", dec("5"), dec("180.00"), entities.OrderBuy)
	require.NoError(t, err)

	assert.True(t, existing[0].Quantity.Equal(dec("10")))
	assert.True(t, existing[0].AvgBuyPrice.Equal(dec("172.25")))

	_, err = Apply(existing, "AAPL", dec("4"), dec("180.00"), entities.OrderSell)
	require.NoError(t, err)
	assert.True(t, existing[0].Quantity.Equal(dec("10")))
}

func TestApply_UnknownOrderType(t *testing.T) {
	_, err := Apply(nil, "AAPL", dec("1"), dec("1"), entities.OrderType("short"))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}
