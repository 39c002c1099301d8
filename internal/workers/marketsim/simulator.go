// Package marketsim is the simulated market-data feed: a cron-driven
// mean-reverting random walk over every asset's price. The simulator is
// an explicitly owned producer constructed once by main and passed to
// the composition root; there is no package-level "already running"
// flag.
package marketsim

import (
	"context"
	"math/rand"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
	"github.com/tradesim-service/tradesim_service/pkg/metrics"
)

// AssetStore is the persistence surface the simulator writes through
type AssetStore interface {
	List(ctx context.Context) ([]entities.Asset, error)
	UpdateQuote(ctx context.Context, asset *entities.Asset) error
}

// QuoteCache receives the fresh quote after each tick
type QuoteCache interface {
	Set(ctx context.Context, symbol string, price decimal.Decimal) error
}

// Config tunes the random walk
type Config struct {
	Schedule      string  // cron expression with seconds
	Seed          int64   // 0 means seed from the clock
	MaxStepPct    float64 // bound on the per-tick noise, e.g. 0.02
	ReversionRate float64 // pull toward the initial price baseline
}

// Simulator steps asset prices on a schedule
type Simulator struct {
	assets AssetStore
	quotes QuoteCache
	cfg    Config
	rng    *rand.Rand
	cron   *cron.Cron
	logger *logger.Logger
}

// New creates a simulator. It does not start ticking until Start.
func New(assets AssetStore, quotes QuoteCache, cfg Config, log *logger.Logger) *Simulator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		assets: assets,
		quotes: quotes,
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(seed)),
		cron:   cron.New(cron.WithSeconds()),
		logger: log,
	}
}

// Start schedules the tick job. Calling Start on a running simulator is
// an initialization error surfaced by cron, not silently ignored.
func (s *Simulator) Start() error {
	_, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := s.Tick(ctx); err != nil {
			s.logger.Errorw("Market tick failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Infow("Market simulator started", "schedule", s.cfg.Schedule)
	return nil
}

// Stop halts the schedule and waits for a running tick to finish
func (s *Simulator) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Market simulator stopped")
}

// Tick advances every asset price one step and publishes the new quotes
func (s *Simulator) Tick(ctx context.Context) error {
	assets, err := s.assets.List(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	for i := range assets {
		asset := &assets[i]
		next := s.step(asset.CurrentPrice, asset.InitialPrice)

		asset.Change = next.Sub(asset.CurrentPrice)
		if asset.CurrentPrice.IsPositive() {
			asset.ChangePercent = asset.Change.Div(asset.CurrentPrice).Mul(decimal.NewFromInt(100))
		}
		asset.CurrentPrice = next
		asset.UpdatedAt = now

		if err := s.assets.UpdateQuote(ctx, asset); err != nil {
			return err
		}
		if err := s.quotes.Set(ctx, asset.Symbol, next); err != nil {
			// cache is advisory; postgres already has the quote
			s.logger.Warnw("Quote cache update failed", "symbol", asset.Symbol, "error", err)
		}
	}

	metrics.MarketTicks.Inc()
	s.logger.Debugw("Market tick complete", "assets", len(assets))
	return nil
}

// step produces the next price: bounded uniform noise plus a drift
// toward the initial baseline, floored so prices stay positive.
func (s *Simulator) step(current, baseline decimal.Decimal) decimal.Decimal {
	noise := (s.rng.Float64()*2 - 1) * s.cfg.MaxStepPct

	drift := 0.0
	if baseline.IsPositive() {
		gap, _ := baseline.Sub(current).Div(baseline).Float64()
		drift = gap * s.cfg.ReversionRate
	}

	factor := decimal.NewFromFloat(1 + noise + drift)
	next := current.Mul(factor).Round(4)

	floor := baseline.Mul(decimal.NewFromFloat(0.01))
	if next.LessThan(floor) {
		next = floor
	}
	return next
}
