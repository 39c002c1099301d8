package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"

	"github.com/tradesim-service/tradesim_service/internal/infrastructure/config"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

const quoteKeyPrefix = "tradesim:quote:"

// QuoteCache keeps the latest simulated quote per symbol in Redis so that
// portfolio reads do not hit Postgres per symbol. Trade execution still
// reads prices transactionally from Postgres; the cache is advisory.
type QuoteCache struct {
	client *redis.Client
	logger *logger.Logger
	ttl    time.Duration
}

// NewQuoteCache connects to Redis and verifies the connection
func NewQuoteCache(cfg config.RedisConfig, ttl time.Duration, log *logger.Logger) (*QuoteCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &QuoteCache{
		client: client,
		logger: log,
		ttl:    ttl,
	}, nil
}

// Set stores the latest price for a symbol
func (c *QuoteCache) Set(ctx context.Context, symbol string, price decimal.Decimal) error {
	return c.client.Set(ctx, quoteKeyPrefix+symbol, price.String(), c.ttl).Err()
}

// Get returns the cached price for a symbol, if present
func (c *QuoteCache) Get(ctx context.Context, symbol string) (decimal.Decimal, bool, error) {
	val, err := c.client.Get(ctx, quoteKeyPrefix+symbol).Result()
	if err == redis.Nil {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}

	price, err := decimal.NewFromString(val)
	if err != nil {
		// poisoned entry, drop it
		c.logger.Warnw("Dropping malformed cached quote", "symbol", symbol, "value", val)
		c.client.Del(ctx, quoteKeyPrefix+symbol)
		return decimal.Zero, false, nil
	}
	return price, true, nil
}

// GetMany resolves cached prices for a set of symbols in one round trip.
// Symbols with no cached quote are simply absent from the result.
func (c *QuoteCache) GetMany(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	if len(symbols) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	keys := make([]string, len(symbols))
	for i, sym := range symbols {
		keys[i] = quoteKeyPrefix + sym
	}

	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make(map[string]decimal.Decimal, len(symbols))
	for i, raw := range vals {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		price, err := decimal.NewFromString(s)
		if err != nil {
			continue
		}
		out[symbols[i]] = price
	}
	return out, nil
}

// Close releases the Redis connection
func (c *QuoteCache) Close() error {
	return c.client.Close()
}
