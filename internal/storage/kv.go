// Package storage persists the medication list and intake log as two named
// JSON blobs behind a get/set key-value contract.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/medimate/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KV is the key-value contract used for snapshots. Get reports whether the key
// has ever been written.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// GormKV stores values in the key_values table.
type GormKV struct {
	db *gorm.DB
}

// NewGormKV wraps an open gorm connection.
func NewGormKV(gdb *gorm.DB) *GormKV {
	return &GormKV{db: gdb}
}

func (s *GormKV) Get(ctx context.Context, key string) (string, bool, error) {
	var record db.KeyValue
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return record.Value, true, nil
}

func (s *GormKV) Set(ctx context.Context, key, value string) error {
	record := db.KeyValue{Key: key, Value: value}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&record).Error; err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// MemoryKV keeps values in a map. Used by tests and dry runs.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
	// SetErr, when non-nil, is returned by every Set call.
	SetErr error
}

// NewMemoryKV returns an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.values[key] = value
	return nil
}
