package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/parley/internal/common"
	"github.com/ternarybob/parley/internal/interfaces"
	"github.com/ternarybob/parley/internal/models"
)

// DocumentStorage implements interfaces.DocumentStorage over process maps
type DocumentStorage struct {
	mu     sync.RWMutex
	docs   map[string]*models.Document
	logger arbor.ILogger
}

// NewDocumentStorage creates a new in-memory DocumentStorage
func NewDocumentStorage(logger arbor.ILogger) *DocumentStorage {
	return &DocumentStorage{
		docs:   make(map[string]*models.Document),
		logger: logger,
	}
}

func (s *DocumentStorage) SaveDocument(ctx context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *doc
	s.docs[doc.ID] = &copied
	return nil
}

func (s *DocumentStorage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (s *DocumentStorage) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	s.mu.RLock()
	result := make([]*models.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		copied := *doc
		result = append(result, &copied)
	}
	s.mu.RUnlock()

	// Newest first
	sort.Slice(result, func(i, j int) bool {
		return result[i].UploadedAt.After(result[j].UploadedAt)
	})
	return result, nil
}

func (s *DocumentStorage) DeleteDocument(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return common.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *DocumentStorage) CountDocuments(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

var _ interfaces.DocumentStorage = (*DocumentStorage)(nil)
