package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/raykavin/fibflow/core"
	"github.com/samber/lo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLStorage implements the core.Storage interface using a SQL database via GORM
type SQLStorage struct {
	db *gorm.DB
}

// Config holds the configuration for SQL database connections
type Config struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns a default configuration for SQL connections
func DefaultConfig() Config {
	return Config{
		MaxIdleConns:    5,
		MaxOpenConns:    10,
		ConnMaxLifetime: time.Hour,
	}
}

// NewFromSQLite creates a new SQLite storage instance
func NewFromSQLite(dbPath string, config Config, opts ...gorm.Option) (core.Storage, error) {
	dialect := sqlite.Open(dbPath)
	return newFromSQL(dialect, config, opts...)
}

// newFromSQL creates a new SQL storage instance with the specified configuration
func newFromSQL(dialect gorm.Dialector, config Config, opts ...gorm.Option) (core.Storage, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)

	if err = db.AutoMigrate(&core.TradeEvent{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLStorage{db: db}, nil
}

// CreateEvent creates a new trade event in the SQL database
func (s *SQLStorage) CreateEvent(ctx context.Context, event *core.TradeEvent) error {
	tx := s.db.WithContext(ctx)
	if result := tx.Create(event); result.Error != nil {
		return fmt.Errorf("failed to create event: %w", result.Error)
	}
	return nil
}

// Events retrieves trade events from the SQL database based on provided filters
func (s *SQLStorage) Events(ctx context.Context, filters ...core.EventFilter) ([]*core.TradeEvent, error) {
	tx := s.db.WithContext(ctx)

	var events []*core.TradeEvent
	if result := tx.Order("id").Find(&events); result.Error != nil && result.Error != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to fetch events: %w", result.Error)
	}

	// Filters are closures, so they are applied in memory
	if len(filters) > 0 {
		events = lo.Filter(events, func(event *core.TradeEvent, _ int) bool {
			for _, filter := range filters {
				if !filter(*event) {
					return false
				}
			}
			return true
		})
	}

	return events, nil
}

// EventsWithQuery allows for more customized querying using GORM's query builder
func (s *SQLStorage) EventsWithQuery(ctx context.Context, queryFn func(*gorm.DB) *gorm.DB) ([]*core.TradeEvent, error) {
	tx := s.db.WithContext(ctx)

	var events []*core.TradeEvent
	result := queryFn(tx).Find(&events)

	if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to execute query: %w", result.Error)
	}

	return events, nil
}

// WithTransaction executes the given function within a database transaction
func (s *SQLStorage) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

// Close closes the database connection
func (s *SQLStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}
