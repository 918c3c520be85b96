package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/parley/internal/interfaces"
)

// KVStorage implements generic key/value persistence using BadgerDB
type KVStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewKVStorage creates a new Badger-backed key/value storage
func NewKVStorage(db *BadgerDB, logger arbor.ILogger) *KVStorage {
	return &KVStorage{
		db:     db,
		logger: logger,
	}
}

var _ interfaces.KeyValueStorage = (*KVStorage)(nil)

func (s *KVStorage) Get(ctx context.Context, key string) (string, error) {
	var pair interfaces.KeyValuePair
	err := s.db.Store().Get(kvKey(key), &pair)
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return "", interfaces.ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return pair.Value, nil
}

func (s *KVStorage) Set(ctx context.Context, key string, value string, description string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	now := time.Now()
	pair := interfaces.KeyValuePair{
		Key:         key,
		Value:       value,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Preserve original creation time on update
	var existing interfaces.KeyValuePair
	if err := s.db.Store().Get(kvKey(key), &existing); err == nil {
		pair.CreatedAt = existing.CreatedAt
	}

	if err := s.db.Store().Upsert(kvKey(key), &pair); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (s *KVStorage) Delete(ctx context.Context, key string) error {
	err := s.db.Store().Delete(kvKey(key), &interfaces.KeyValuePair{})
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return interfaces.ErrKeyNotFound
		}
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

func (s *KVStorage) List(ctx context.Context) ([]interfaces.KeyValuePair, error) {
	var pairs []interfaces.KeyValuePair
	if err := s.db.Store().Find(&pairs, nil); err != nil {
		return nil, fmt.Errorf("failed to list key/value pairs: %w", err)
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].UpdatedAt.After(pairs[j].UpdatedAt)
	})

	return pairs, nil
}

func (s *KVStorage) GetAll(ctx context.Context) (map[string]string, error) {
	pairs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		result[pair.Key] = pair.Value
	}
	return result, nil
}

// kvKey namespaces key/value entries so they cannot collide with
// document or session keys in the shared store.
func kvKey(key string) string {
	return "kv_" + key
}
