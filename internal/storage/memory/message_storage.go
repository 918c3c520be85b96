package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/parley/internal/interfaces"
	"github.com/ternarybob/parley/internal/models"
)

// MessageStorage implements interfaces.MessageStorage over process maps.
// Append-only by design; messages are removed only via session cascade.
type MessageStorage struct {
	mu       sync.RWMutex
	messages map[string]*models.Message
	seq      uint64
	logger   arbor.ILogger
}

// NewMessageStorage creates a new in-memory MessageStorage
func NewMessageStorage(logger arbor.ILogger) *MessageStorage {
	return &MessageStorage{
		messages: make(map[string]*models.Message),
		logger:   logger,
	}
}

func (s *MessageStorage) SaveMessage(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	msg.Seq = s.seq

	copied := *msg
	s.messages[msg.ID] = &copied
	return nil
}

func (s *MessageStorage) ListMessagesBySession(ctx context.Context, sessionID string) ([]*models.Message, error) {
	s.mu.RLock()
	result := make([]*models.Message, 0, 16)
	for _, msg := range s.messages {
		if msg.SessionID == sessionID {
			copied := *msg
			result = append(result, &copied)
		}
	}
	s.mu.RUnlock()

	sortMessages(result)
	return result, nil
}

func (s *MessageStorage) ListMessages(ctx context.Context) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Message, 0, len(s.messages))
	for _, msg := range s.messages {
		copied := *msg
		result = append(result, &copied)
	}
	return result, nil
}

func (s *MessageStorage) CountMessagesBySession(ctx context.Context, sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, msg := range s.messages {
		if msg.SessionID == sessionID {
			count++
		}
	}
	return count, nil
}

func (s *MessageStorage) DeleteMessagesBySession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, msg := range s.messages {
		if msg.SessionID == sessionID {
			delete(s.messages, id)
		}
	}
	return nil
}

// sortMessages orders oldest first: timestamp ascending, insertion sequence
// as tiebreak so same-instant appends keep submission order
func sortMessages(msgs []*models.Message) {
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].Timestamp.Equal(msgs[j].Timestamp) {
			return msgs[i].Seq < msgs[j].Seq
		}
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
}

var _ interfaces.MessageStorage = (*MessageStorage)(nil)
