package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/ellavondegurechaff/gohye-trades/internal/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultConnTimeout   = 5 * time.Second
	defaultMaxRetries    = 3
	defaultRetryInterval = time.Second
	defaultSQLitePath    = "file:gohye-trades?mode=memory&cache=shared&_foreign_keys=on"
)

type DBConfig struct {
	Driver       string   `toml:"driver" env:"DRIVER"`
	Host         string   `toml:"host" env:"HOST"`
	Port         int      `toml:"port" env:"PORT"`
	User         string   `toml:"user" env:"USER"`
	Password     string   `toml:"password" env:"PASSWORD"`
	Database     string   `toml:"database" env:"NAME"`
	SSLMode      string   `toml:"sslmode" env:"SSLMODE"`
	PoolSize     int      `toml:"pool_size" env:"POOL_SIZE"`
	MaxIdleConns int      `toml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	MaxLifetime  Duration `toml:"max_lifetime" env:"MAX_LIFETIME"`
	// Path is the sqlite DSN, an in-memory database when empty.
	Path string `toml:"path" env:"PATH"`
}

// Duration is a time.Duration read from strings such as "30s".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type DB struct {
	pool  *pgxpool.Pool
	bunDB *bun.DB
}

func New(ctx context.Context, cfg DBConfig) (*DB, error) {
	switch cfg.Driver {
	case "", DriverPostgres:
		return newPostgres(ctx, cfg)
	case DriverSQLite:
		return NewSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func newPostgres(ctx context.Context, cfg DBConfig) (*DB, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	var err error
	for i := 0; i < defaultMaxRetries; i++ {
		var conn net.Conn
		conn, err = net.DialTimeout("tcp", addr, defaultConnTimeout)
		if err == nil {
			conn.Close()
			break
		}
		slog.Warn("Database not reachable, retrying",
			slog.String("type", "db"),
			slog.String("addr", addr),
			slog.Int("attempt", i+1))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(defaultRetryInterval):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("database server unreachable after %d attempts: %w", defaultMaxRetries, err)
	}

	poolConfig, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime.Std()
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(buildConnString(cfg))))
	if cfg.PoolSize > 0 {
		sqldb.SetMaxOpenConns(cfg.PoolSize)
	}
	if cfg.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		sqldb.SetConnMaxLifetime(cfg.MaxLifetime.Std())
	}

	return &DB{pool: pool, bunDB: bun.NewDB(sqldb, pgdialect.New())}, nil
}

func buildConnString(cfg DBConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s&connect_timeout=5",
		cfg.User, cfg.Password, net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)), cfg.Database, sslMode,
	)
}

// NewSQLite opens a sqlite database through mattn/go-sqlite3. The connection
// pool is pinned to one connection so that writers serialize.
func NewSQLite(dsn string) (*DB, error) {
	if dsn == "" {
		dsn = defaultSQLitePath
	}
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	sqldb.SetMaxOpenConns(1)
	return &DB{bunDB: bun.NewDB(sqldb, sqlitedialect.New())}, nil
}

func (db *DB) BunDB() *bun.DB {
	return db.bunDB
}

// Pool is nil for sqlite databases.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

func (db *DB) IsPostgres() bool {
	return db.bunDB.Dialect().Name() == dialect.PG
}

func (db *DB) Ping(ctx context.Context) error {
	if db.pool != nil {
		if err := db.pool.Ping(ctx); err != nil {
			return fmt.Errorf("failed to ping connection pool: %w", err)
		}
	}
	if err := db.bunDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func (db *DB) ExecWithLog(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := db.bunDB.ExecContext(ctx, query, args...)
	logger.LogQuery("exec", query, time.Since(start), err)
	return result, err
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
	if db.bunDB != nil {
		db.bunDB.Close()
	}
}
