package config

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	webconfig "github.com/ellavondegurechaff/gohye-trades/backend/config"
	"github.com/ellavondegurechaff/gohye-trades/internal/gateways/database"
	"github.com/ellavondegurechaff/gohye-trades/internal/logger"
	"github.com/ellavondegurechaff/gohye-trades/internal/telemetry"
)

// EnvPrefix prefixes every environment override, e.g. GOHYE_DB_HOST.
const EnvPrefix = "GOHYE_"

type Config struct {
	Log           logger.Config       `toml:"log" envPrefix:"LOG_"`
	DB            database.DBConfig   `toml:"db" envPrefix:"DB_"`
	Web           webconfig.WebConfig `toml:"web" envPrefix:"WEB_"`
	Trades        TradesConfig        `toml:"trades" envPrefix:"TRADES_"`
	Notifications NotificationsConfig `toml:"notifications" envPrefix:"NOTIFICATIONS_"`
	Discord       DiscordConfig       `toml:"discord" envPrefix:"DISCORD_"`
	Otel          telemetry.Config    `toml:"otel" envPrefix:"OTEL_"`
}

type TradesConfig struct {
	TxTimeout database.Duration `toml:"tx_timeout" env:"TX_TIMEOUT"`
	// Isolation is serializable, repeatable_read or read_committed.
	Isolation string `toml:"isolation" env:"ISOLATION"`
	// CacheSize bounds the terminal trade cache, 0 disables it.
	CacheSize int `toml:"cache_size" env:"CACHE_SIZE"`
}

type NotificationsConfig struct {
	Async           bool              `toml:"async" env:"ASYNC"`
	MaxInFlight     int64             `toml:"max_in_flight" env:"MAX_IN_FLIGHT"`
	DeliveryTimeout database.Duration `toml:"delivery_timeout" env:"DELIVERY_TIMEOUT"`
	Persist         bool              `toml:"persist" env:"PERSIST"`
}

type DiscordConfig struct {
	Enabled bool   `toml:"enabled" env:"ENABLED"`
	Token   string `toml:"token" env:"TOKEN"`
}

// Default returns the configuration used for omitted keys
func Default() *Config {
	return &Config{
		Log: logger.DefaultConfig(),
		DB: database.DBConfig{
			Driver:       database.DriverPostgres,
			Host:         "localhost",
			Port:         5432,
			User:         "postgres",
			Database:     "gohye",
			SSLMode:      "disable",
			PoolSize:     10,
			MaxIdleConns: 5,
			MaxLifetime:  database.Duration(time.Hour),
		},
		Web: webconfig.DefaultWebConfig(),
		Trades: TradesConfig{
			TxTimeout: database.Duration(database.DefaultTxTimeout),
			Isolation: "serializable",
			CacheSize: 1024,
		},
		Notifications: NotificationsConfig{
			Async:           true,
			MaxInFlight:     64,
			DeliveryTimeout: database.Duration(10 * time.Second),
			Persist:         true,
		},
		Otel: telemetry.DefaultConfig(),
	}
}

// LoadConfig reads path over the defaults and then applies GOHYE_*
// environment overrides. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config: %w", err)
		}
		defer file.Close()

		if err = toml.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error

	if err := c.Log.Validate(); err != nil {
		errs = append(errs, err)
	}

	switch c.DB.Driver {
	case database.DriverPostgres:
		if c.DB.Port <= 0 {
			errs = append(errs, fmt.Errorf("db.port must be positive, got %d", c.DB.Port))
		}
		if c.DB.Host == "" {
			errs = append(errs, fmt.Errorf("db.host is required for postgres"))
		}
	case database.DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("db.driver must be %q or %q, got %q", database.DriverPostgres, database.DriverSQLite, c.DB.Driver))
	}

	if err := c.Web.Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.Trades.TxTimeout.Std() <= 0 {
		errs = append(errs, fmt.Errorf("trades.tx_timeout must be positive"))
	}
	if _, err := c.Trades.IsolationLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Trades.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("trades.cache_size must not be negative"))
	}

	if c.Notifications.Async && c.Notifications.MaxInFlight <= 0 {
		errs = append(errs, fmt.Errorf("notifications.max_in_flight must be positive"))
	}
	if c.Notifications.DeliveryTimeout.Std() <= 0 {
		errs = append(errs, fmt.Errorf("notifications.delivery_timeout must be positive"))
	}

	if c.Discord.Enabled && strings.TrimSpace(c.Discord.Token) == "" {
		errs = append(errs, fmt.Errorf("discord.token is required when the discord relay is enabled"))
	}

	if err := c.Otel.Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// IsolationLevel maps the configured name to a database/sql level
func (t TradesConfig) IsolationLevel() (sql.IsolationLevel, error) {
	switch strings.ToLower(strings.TrimSpace(t.Isolation)) {
	case "serializable":
		return sql.LevelSerializable, nil
	case "repeatable_read":
		return sql.LevelRepeatableRead, nil
	case "read_committed":
		return sql.LevelReadCommitted, nil
	default:
		return sql.LevelDefault, fmt.Errorf("trades.isolation must be serializable, repeatable_read or read_committed, got %q", t.Isolation)
	}
}
