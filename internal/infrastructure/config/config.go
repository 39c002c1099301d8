package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Redis       RedisConfig     `mapstructure:"redis"`
	JWT         JWTConfig       `mapstructure:"jwt"`
	Trading     TradingConfig   `mapstructure:"trading"`
	Simulator   SimulatorConfig `mapstructure:"simulator"`
}

type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	Host            string   `mapstructure:"host"`
	ReadTimeout     int      `mapstructure:"read_timeout"`
	WriteTimeout    int      `mapstructure:"write_timeout"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	RateLimitPerMin int      `mapstructure:"rate_limit_per_min"`
}

type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret    string `mapstructure:"secret"`
	AccessTTL int    `mapstructure:"access_token_ttl"`
	Issuer    string `mapstructure:"issuer"`
}

// TradingConfig carries the business constants of the paper-trading ledger.
// Amounts are parsed into decimals once at load time.
type TradingConfig struct {
	StartingBalance  string `mapstructure:"starting_balance"`
	MaxDepositAmount string `mapstructure:"max_deposit_amount"`
	DailyBonusAmount string `mapstructure:"daily_bonus_amount"`
}

type SimulatorConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	Schedule      string  `mapstructure:"schedule"`
	Seed          int64   `mapstructure:"seed"`
	MaxStepPct    float64 `mapstructure:"max_step_pct"`
	ReversionRate float64 `mapstructure:"reversion_rate"`
	QuoteTTL      int     `mapstructure:"quote_ttl"`
}

// Load reads configuration from config files and environment variables
func Load() (*Config, error) {
	// .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvPrefix("TRADESIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit_per_min", 300)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "tradesim")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 300)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.access_token_ttl", 3600)
	v.SetDefault("jwt.issuer", "tradesim-service")

	v.SetDefault("trading.starting_balance", "10000")
	v.SetDefault("trading.max_deposit_amount", "100000")
	v.SetDefault("trading.daily_bonus_amount", "100")

	v.SetDefault("simulator.enabled", true)
	v.SetDefault("simulator.schedule", "*/15 * * * * *")
	v.SetDefault("simulator.seed", 0)
	v.SetDefault("simulator.max_step_pct", 0.02)
	v.SetDefault("simulator.reversion_rate", 0.05)
	v.SetDefault("simulator.quote_ttl", 60)
}

// Validate checks that required settings are present and well-formed
func (c *Config) Validate() error {
	if c.JWT.Secret == "" && c.Environment == "production" {
		return fmt.Errorf("jwt.secret is required in production")
	}
	for name, raw := range map[string]string{
		"trading.starting_balance":   c.Trading.StartingBalance,
		"trading.max_deposit_amount": c.Trading.MaxDepositAmount,
		"trading.daily_bonus_amount": c.Trading.DailyBonusAmount,
	} {
		if _, err := decimal.NewFromString(raw); err != nil {
			return fmt.Errorf("%s: invalid decimal %q", name, raw)
		}
	}
	return nil
}

// DSN builds the Postgres connection string
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// MigrateURL builds the URL form golang-migrate expects
func (c *DatabaseConfig) MigrateURL() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// Addr returns the Redis address in host:port form
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StartingBalanceDecimal returns the configured signup balance
func (c *TradingConfig) StartingBalanceDecimal() decimal.Decimal {
	return decimal.RequireFromString(c.StartingBalance)
}

// MaxDepositDecimal returns the per-transaction deposit cap
func (c *TradingConfig) MaxDepositDecimal() decimal.Decimal {
	return decimal.RequireFromString(c.MaxDepositAmount)
}

// DailyBonusDecimal returns the fixed daily bonus award
func (c *TradingConfig) DailyBonusDecimal() decimal.Decimal {
	return decimal.RequireFromString(c.DailyBonusAmount)
}
