// Package store – key-value operations.
//
// KV is a thin, prefix-agnostic accessor over the kv_records table. Reads
// degrade gracefully: a missing row is an ordinary absence, never an error.
// Write failures surface as *StorageError so callers can distinguish
// persistence trouble from domain failures without crashing.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is one persisted key-value pair. Keys are unique; a write for an
// existing key overwrites the prior value (last-write-wins).
type Record struct {
	Key       string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Value     string    `gorm:"type:TEXT NOT NULL"`
	UpdatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoUpdateTime"`
}

// TableName implements the GORM tabler interface.
func (Record) TableName() string { return "kv_records" }

// StorageError wraps a persistence read/write failure.
type StorageError struct {
	Op  string // "get", "put", "delete", "keys"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// KV provides access to the shared durable namespace.
type KV struct {
	DB *gorm.DB
}

// NewKV wraps db in a KV accessor.
func NewKV(db *gorm.DB) *KV { return &KV{DB: db} }

// Get returns the value stored under key. The second result is false when
// the key is absent. Only genuine storage failures produce an error.
func (kv *KV) Get(ctx context.Context, key string) (string, bool, error) {
	var rec Record
	err := kv.DB.WithContext(ctx).First(&rec, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StorageError{Op: "get", Key: key, Err: err}
	}
	return rec.Value, true, nil
}

// Put stores value under key, overwriting any existing record.
func (kv *KV) Put(ctx context.Context, key, value string) error {
	rec := Record{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := kv.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&rec).Error
	if err != nil {
		return &StorageError{Op: "put", Key: key, Err: err}
	}
	return nil
}

// Delete removes the record under key; no-op when absent.
func (kv *KV) Delete(ctx context.Context, key string) error {
	err := kv.DB.WithContext(ctx).Delete(&Record{}, "key = ?", key).Error
	if err != nil {
		return &StorageError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// Keys returns all keys beginning with prefix, in ascending key order.
func (kv *KV) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := kv.DB.WithContext(ctx).
		Model(&Record{}).
		Where("key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Order("key ASC").
		Pluck("key", &keys).Error
	if err != nil {
		return nil, &StorageError{Op: "keys", Key: prefix, Err: err}
	}
	return keys, nil
}

// Reset deletes every record. Intended for tests and explicit teardown.
func (kv *KV) Reset(ctx context.Context) error {
	err := kv.DB.WithContext(ctx).Where("1 = 1").Delete(&Record{}).Error
	if err != nil {
		return &StorageError{Op: "delete", Key: "*", Err: err}
	}
	return nil
}

// escapeLike escapes LIKE wildcards so prefixes match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
