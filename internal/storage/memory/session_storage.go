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

// SessionStorage implements interfaces.SessionStorage over process maps
type SessionStorage struct {
	mu       sync.RWMutex
	sessions map[string]*models.ChatSession
	logger   arbor.ILogger
}

// NewSessionStorage creates a new in-memory SessionStorage
func NewSessionStorage(logger arbor.ILogger) *SessionStorage {
	return &SessionStorage{
		sessions: make(map[string]*models.ChatSession),
		logger:   logger,
	}
}

func (s *SessionStorage) SaveSession(ctx context.Context, session *models.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

func (s *SessionStorage) GetSession(ctx context.Context, id string) (*models.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

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
	s.mu.RLock()
	result := make([]*models.ChatSession, 0, 1)
	for _, session := range s.sessions {
		if session.DocumentID == documentID {
			copied := *session
			result = append(result, &copied)
		}
	}
	s.mu.RUnlock()

	// Deterministic scan order: oldest first, id as tiebreak
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *SessionStorage) ListSessions(ctx context.Context) ([]*models.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.ChatSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		copied := *session
		result = append(result, &copied)
	}
	return result, nil
}

func (s *SessionStorage) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return common.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

var _ interfaces.SessionStorage = (*SessionStorage)(nil)
