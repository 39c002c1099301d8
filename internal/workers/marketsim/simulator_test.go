package marketsim

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

type fakeAssetStore struct {
	assets  []entities.Asset
	updates int
}

func (f *fakeAssetStore) List(ctx context.Context) ([]entities.Asset, error) {
	out := make([]entities.Asset, len(f.assets))
	copy(out, f.assets)
	return out, nil
}

func (f *fakeAssetStore) UpdateQuote(ctx context.Context, asset *entities.Asset) error {
	f.updates++
	for i := range f.assets {
		if f.assets[i].Symbol == asset.Symbol {
			f.assets[i] = *asset
		}
	}
	return nil
}

type fakeQuoteCache struct {
	quotes map[string]decimal.Decimal
}

func (f *fakeQuoteCache) Set(ctx context.Context, symbol string, price decimal.Decimal) error {
	if f.quotes == nil {
		f.quotes = make(map[string]decimal.Decimal)
	}
	f.quotes[symbol] = price
	return nil
}

func testAssets() []entities.Asset {
	return []entities.Asset{
		{Symbol: "AAPL", Type: entities.AssetStock, CurrentPrice: decimal.NewFromFloat(172.25), InitialPrice: decimal.NewFromFloat(170)},
		{Symbol: "BTC", Type: entities.AssetCrypto, CurrentPrice: decimal.NewFromInt(64000), InitialPrice: decimal.NewFromInt(60000)},
	}
}

func testConfig() Config {
	return Config{
		Schedule:      "*/15 * * * * *",
		Seed:          42,
		MaxStepPct:    0.02,
		ReversionRate: 0.05,
	}
}

func TestTick_UpdatesEveryAsset(t *testing.T) {
	store := &fakeAssetStore{assets: testAssets()}
	cache := &fakeQuoteCache{}
	sim := New(store, cache, testConfig(), logger.NewNop())

	require.NoError(t, sim.Tick(context.Background()))

	assert.Equal(t, 2, store.updates)
	assert.Len(t, cache.quotes, 2)
	assert.True(t, cache.quotes["AAPL"].Equal(store.assets[0].CurrentPrice))
	assert.True(t, cache.quotes["BTC"].Equal(store.assets[1].CurrentPrice))
}

func TestTick_StepIsBounded(t *testing.T) {
	store := &fakeAssetStore{assets: testAssets()}
	sim := New(store, &fakeQuoteCache{}, testConfig(), logger.NewNop())

	for i := 0; i < 50; i++ {
		prev := make(map[string]decimal.Decimal)
		for _, a := range store.assets {
			prev[a.Symbol] = a.CurrentPrice
		}

		require.NoError(t, sim.Tick(context.Background()))

		// noise is capped at MaxStepPct, reversion drift is a few percent
		// at most for prices near the baseline
		for _, a := range store.assets {
			move := a.CurrentPrice.Sub(prev[a.Symbol]).Abs().Div(prev[a.Symbol])
			assert.True(t, move.LessThan(decimal.NewFromFloat(0.05)),
				"tick %d moved %s by %s", i, a.Symbol, move)
			assert.True(t, a.CurrentPrice.IsPositive())
		}
	}
}

func TestTick_SeededWalkIsDeterministic(t *testing.T) {
	run := func() []decimal.Decimal {
		store := &fakeAssetStore{assets: testAssets()}
		sim := New(store, &fakeQuoteCache{}, testConfig(), logger.NewNop())
		for i := 0; i < 10; i++ {
			require.NoError(t, sim.Tick(context.Background()))
		}
		out := make([]decimal.Decimal, len(store.assets))
		for i, a := range store.assets {
			out[i] = a.CurrentPrice
		}
		return out
	}

	first := run()
	second := run()
	for i := range first {
		assert.True(t, first[i].Equal(second[i]), "same seed must replay the same walk")
	}
}

func TestTick_SetsChangeFields(t *testing.T) {
	store := &fakeAssetStore{assets: testAssets()}
	sim := New(store, &fakeQuoteCache{}, testConfig(), logger.NewNop())

	prev := store.assets[0].CurrentPrice
	require.NoError(t, sim.Tick(context.Background()))

	a := store.assets[0]
	assert.True(t, a.Change.Equal(a.CurrentPrice.Sub(prev)))
	wantPct := a.Change.Div(prev).Mul(decimal.NewFromInt(100))
	assert.True(t, a.ChangePercent.Equal(wantPct))
}

func TestStep_FloorsAtFractionOfBaseline(t *testing.T) {
	sim := New(&fakeAssetStore{}, &fakeQuoteCache{}, testConfig(), logger.NewNop())

	baseline := decimal.NewFromInt(100)
	next := sim.step(decimal.NewFromFloat(0.5), baseline)
	assert.True(t, next.GreaterThanOrEqual(baseline.Mul(decimal.NewFromFloat(0.01))))
}
