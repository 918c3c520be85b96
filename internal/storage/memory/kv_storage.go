package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/parley/internal/interfaces"
)

// KVStorage implements interfaces.KeyValueStorage over a process map
type KVStorage struct {
	mu     sync.RWMutex
	pairs  map[string]*interfaces.KeyValuePair
	logger arbor.ILogger
}

// NewKVStorage creates a new in-memory KVStorage
func NewKVStorage(logger arbor.ILogger) *KVStorage {
	return &KVStorage{
		pairs:  make(map[string]*interfaces.KeyValuePair),
		logger: logger,
	}
}

func (s *KVStorage) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pair, ok := s.pairs[key]
	if !ok {
		return "", interfaces.ErrKeyNotFound
	}
	return pair.Value, nil
}

func (s *KVStorage) Set(ctx context.Context, key, value, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if existing, ok := s.pairs[key]; ok {
		existing.Value = value
		existing.Description = description
		existing.UpdatedAt = now
		return nil
	}

	s.pairs[key] = &interfaces.KeyValuePair{
		Key:         key,
		Value:       value,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return nil
}

func (s *KVStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pairs[key]; !ok {
		return interfaces.ErrKeyNotFound
	}
	delete(s.pairs, key)
	return nil
}

func (s *KVStorage) List(ctx context.Context) ([]interfaces.KeyValuePair, error) {
	s.mu.RLock()
	result := make([]interfaces.KeyValuePair, 0, len(s.pairs))
	for _, pair := range s.pairs {
		result = append(result, *pair)
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

func (s *KVStorage) GetAll(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]string, len(s.pairs))
	for key, pair := range s.pairs {
		result[key] = pair.Value
	}
	return result, nil
}

var _ interfaces.KeyValueStorage = (*KVStorage)(nil)
