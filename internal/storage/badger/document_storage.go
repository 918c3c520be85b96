package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/parley/internal/common"
	"github.com/ternarybob/parley/internal/interfaces"
	"github.com/ternarybob/parley/internal/models"
)

// DocumentStorage implements document persistence using BadgerDB
type DocumentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewDocumentStorage creates a new Badger-backed document storage
func NewDocumentStorage(db *BadgerDB, logger arbor.ILogger) *DocumentStorage {
	return &DocumentStorage{
		db:     db,
		logger: logger,
	}
}

var _ interfaces.DocumentStorage = (*DocumentStorage)(nil)

func (s *DocumentStorage) SaveDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return fmt.Errorf("document cannot be nil")
	}
	if doc.ID == "" {
		return fmt.Errorf("document ID cannot be empty")
	}

	if err := s.db.Store().Upsert(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

func (s *DocumentStorage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := s.db.Store().Get(id, &doc)
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

func (s *DocumentStorage) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	var docs []*models.Document
	if err := s.db.Store().Find(&docs, nil); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	// Newest first, ID tiebreak for stable ordering
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].UploadedAt.Equal(docs[j].UploadedAt) {
			return docs[i].UploadedAt.After(docs[j].UploadedAt)
		}
		return strings.Compare(docs[i].ID, docs[j].ID) < 0
	})

	return docs, nil
}

func (s *DocumentStorage) DeleteDocument(ctx context.Context, id string) error {
	err := s.db.Store().Delete(id, &models.Document{})
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *DocumentStorage) CountDocuments(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Document{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return int(count), nil
}
