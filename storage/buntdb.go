// Package storage persists trade event logs behind the core.Storage
// interface, with an embedded BuntDB backend and a SQL backend via GORM.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/raykavin/fibflow/core"
	"github.com/tidwall/buntdb"
)

const (
	// DefaultIndexName is the default index used for event retrieval
	DefaultIndexName = "timestamp_index"
)

// BuntStorage implements the core.Storage interface using BuntDB
type BuntStorage struct {
	lastID int64
	db     *buntdb.DB
}

// BuntConfig holds configuration options for BuntDB
type BuntConfig struct {
	// Additional indexes to create beyond the default timestamp index
	AdditionalIndexes map[string]string
	// SyncPolicy determines how often data is synchronized to disk
	SyncPolicy buntdb.SyncPolicy
}

// DefaultBuntConfig returns the default configuration for BuntDB
func DefaultBuntConfig() BuntConfig {
	return BuntConfig{
		AdditionalIndexes: make(map[string]string),
		SyncPolicy:        buntdb.Never,
	}
}

// NewFromMemory creates an in-memory storage with default configuration
func NewFromMemory() (core.Storage, error) {
	return NewBuntStorage(":memory:", DefaultBuntConfig())
}

// NewFromFile creates a file-based storage with default configuration
func NewFromFile(file string) (core.Storage, error) {
	return NewBuntStorage(file, DefaultBuntConfig())
}

// NewBuntStorage creates a new BuntDB storage instance with the specified configuration
func NewBuntStorage(sourceFile string, config BuntConfig) (core.Storage, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	if err := db.SetConfig(buntdb.Config{
		SyncPolicy: config.SyncPolicy,
	}); err != nil {
		return nil, fmt.Errorf("failed to configure buntdb: %w", err)
	}

	// Default index keeps events in chronological order
	if err := db.CreateIndex(DefaultIndexName, "*", buntdb.IndexJSON("timestamp")); err != nil {
		return nil, fmt.Errorf("failed to create default index: %w", err)
	}

	for name, pattern := range config.AdditionalIndexes {
		if err := db.CreateIndex(name, "*", buntdb.IndexJSON(pattern)); err != nil {
			return nil, fmt.Errorf("failed to create index %s: %w", name, err)
		}
	}

	return &BuntStorage{
		db: db,
	}, nil
}

// getID generates a unique ID for events
func (b *BuntStorage) getID() int64 {
	return atomic.AddInt64(&b.lastID, 1)
}

// CreateEvent stores a new trade event in the database
func (b *BuntStorage) CreateEvent(_ context.Context, event *core.TradeEvent) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		if event.ID == 0 {
			event.ID = b.getID()
		}

		content, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}

		key := strconv.FormatInt(event.ID, 10)
		_, _, err = tx.Set(key, string(content), nil)
		if err != nil {
			return fmt.Errorf("failed to store event: %w", err)
		}

		return nil
	})
}

// Events retrieves trade events from the database based on provided filters
func (b *BuntStorage) Events(_ context.Context, filters ...core.EventFilter) ([]*core.TradeEvent, error) {
	events := make([]*core.TradeEvent, 0)

	err := b.db.View(func(tx *buntdb.Tx) error {
		err := tx.Ascend(DefaultIndexName, func(key, value string) bool {
			var event core.TradeEvent
			if err := json.Unmarshal([]byte(value), &event); err != nil {
				return true // Skip unreadable entries, continue iteration
			}

			for _, filter := range filters {
				if !filter(event) {
					return true
				}
			}

			events = append(events, &event)
			return true
		})

		if err != nil {
			return fmt.Errorf("failed to iterate over events: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}

	return events, nil
}

// Close closes the database connection
func (b *BuntStorage) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
