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

// SessionStorage implements chat session persistence using BadgerDB
type SessionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSessionStorage creates a new Badger-backed session storage
func NewSessionStorage(db *BadgerDB, logger arbor.ILogger) *SessionStorage {
	return &SessionStorage{
		db:     db,
		logger: logger,
	}
}

var _ interfaces.SessionStorage = (*SessionStorage)(nil)

func (s *SessionStorage) SaveSession(ctx context.Context, session *models.ChatSession) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}
	if session.ID == "" {
		return fmt.Errorf("session ID cannot be empty")
	}

	if err := s.db.Store().Upsert(session.ID, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SessionStorage) GetSession(ctx context.Context, id string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := s.db.Store().Get(id, &session)
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// GetSessionByDocument returns the earliest session for a document, or
// common.ErrNotFound when the document has no sessions.
func (s *SessionStorage) GetSessionByDocument(ctx context.Context, documentID string) (*models.ChatSession, error) {
	sessions, err := s.ListSessionsByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, common.ErrNotFound
	}
	return sessions[0], nil
}

func (s *SessionStorage) ListSessionsByDocument(ctx context.Context, documentID string) ([]*models.ChatSession, error) {
	var sessions []*models.ChatSession
	query := badgerhold.Where("DocumentID").Eq(documentID)
	if err := s.db.Store().Find(&sessions, query); err != nil {
		return nil, fmt.Errorf("failed to list sessions for document: %w", err)
	}

	sortSessions(sessions)
	return sessions, nil
}

func (s *SessionStorage) ListSessions(ctx context.Context) ([]*models.ChatSession, error) {
	var sessions []*models.ChatSession
	if err := s.db.Store().Find(&sessions, nil); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sortSessions(sessions)
	return sessions, nil
}

func (s *SessionStorage) DeleteSession(ctx context.Context, id string) error {
	err := s.db.Store().Delete(id, &models.ChatSession{})
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// sortSessions orders oldest first with ID tiebreak so the first session
// for a document is deterministic.
func sortSessions(sessions []*models.ChatSession) {
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
		}
		return strings.Compare(sessions[i].ID, sessions[j].ID) < 0
	})
}
