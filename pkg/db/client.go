package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Client owns the process-wide gorm pool. Services reach it through the
// narrow Pinger and txRunner-style interfaces rather than the struct.
type Client struct {
	conn   *gorm.DB
	driver string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// New opens postgres (pgx, simple protocol) or sqlite depending on
// STOREFRONT_DB_DRIVER and applies the pool limits from cfg.
func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database DSN is required")
	}

	var (
		driver    string
		dialector gorm.Dialector
	)
	if cfg.IsSQLite() {
		driver, dialector = config.DriverSQLite, sqlite.Open(cfg.DSN)
	} else {
		driver, dialector = config.DriverPostgres, postgres.New(postgres.Config{DSN: cfg.DSN, PreferSimpleProtocol: true})
	}

	conn, err := gorm.Open(dialector, NewGormConfig(logg, cfg.SlowQueryThreshold))
	if err != nil {
		return nil, wrapOpen(driver, err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, wrapOpen(driver, err)
	}

	maxOpen := cfg.MaxOpenConns
	if driver == config.DriverSQLite {
		// one writer at a time; a larger pool only produces SQLITE_BUSY.
		maxOpen = 1
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, wrapOpen(driver, err)
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"driver":         driver,
			"max_open_conns": maxOpen,
		}), "database connected")
	}
	return &Client{conn: conn, driver: driver}, nil
}

func wrapOpen(driver string, err error) error {
	return fmt.Errorf("connect %s: %w", driver, err)
}

// NewGormConfig is shared by New and the sqlite test helpers. Driver errors
// are translated into gorm sentinels so repositories match on those.
func NewGormConfig(logg *logger.Logger, slowQuery time.Duration) *gorm.Config {
	return &gorm.Config{
		Logger:                 newQueryLogger(logg, slowQuery),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}
}

// NewFromConn adopts an already opened connection.
func NewFromConn(conn *gorm.DB, driver string) *Client {
	return &Client{conn: conn, driver: driver}
}

func (c *Client) DB() *gorm.DB {
	return c.conn
}

// Driver is config.DriverPostgres or config.DriverSQLite.
func (c *Client) Driver() string {
	return c.driver
}

func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (c *Client) Exec(ctx context.Context, query string, args ...any) *gorm.DB {
	return c.conn.WithContext(ctx).Exec(query, args...)
}

// WithTx commits when fn returns nil and rolls back on error or panic.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return c.conn.WithContext(ctx).Transaction(fn)
}
