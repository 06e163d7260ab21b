package database

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/lisandre-begon/Smart-Environment/internal/logging"
	"github.com/lisandre-begon/Smart-Environment/internal/models"
)

// Config holds the ClickHouse connection settings
type Config struct {
	Addr     string
	Database string
	Username string
	Password string
}

// conn is the subset of driver.Conn used here
type conn interface {
	Exec(ctx context.Context, query string, args ...any) error
	Close() error
}

// ClickHouseDB writes uploaded aggregates to ClickHouse
type ClickHouseDB struct {
	conn   conn
	logger *slog.Logger
}

// NewClickHouseDB creates a new ClickHouse database connection and initializes the schema
func NewClickHouseDB(ctx context.Context, cfg Config, logger *slog.Logger) (*ClickHouseDB, error) {
	c, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	db := newClickHouseDB(c, logger)
	if err := db.InitSchema(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("connected", "addr", cfg.Addr, "database", cfg.Database)
	return db, nil
}

func newClickHouseDB(c conn, logger *slog.Logger) *ClickHouseDB {
	return &ClickHouseDB{
		conn:   c,
		logger: logging.Component(logger, "clickhouse"),
	}
}

// InitSchema creates the necessary tables if they don't exist
func (db *ClickHouseDB) InitSchema(ctx context.Context) error {
	for _, tableSQL := range AllTables() {
		if err := db.conn.Exec(ctx, tableSQL); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// SaveReading inserts one aggregate. Missing climate values are stored as NULL.
func (db *ClickHouseDB) SaveReading(ctx context.Context, agg models.Aggregate) error {
	err := db.conn.Exec(ctx, insertReadingSQL,
		agg.Timestamp,
		agg.DeviceID,
		nullFloat(agg.Temperature),
		nullFloat(agg.Humidity),
		uint16(agg.Light),
		agg.Alert,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}
	return nil
}

// Close closes the connection
func (db *ClickHouseDB) Close() error {
	return db.conn.Close()
}

func nullFloat(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
