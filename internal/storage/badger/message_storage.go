package badger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/parley/internal/interfaces"
	"github.com/ternarybob/parley/internal/models"
)

// MessageStorage implements chat message persistence using BadgerDB
type MessageStorage struct {
	db     *BadgerDB
	logger arbor.ILogger

	seqMu sync.Mutex
	seq   uint64
}

// NewMessageStorage creates a new Badger-backed message storage. The
// per-message sequence counter resumes from the highest value already
// persisted so ordering survives restarts.
func NewMessageStorage(db *BadgerDB, logger arbor.ILogger) (*MessageStorage, error) {
	s := &MessageStorage{
		db:     db,
		logger: logger,
	}

	var msgs []*models.Message
	if err := db.Store().Find(&msgs, nil); err != nil {
		return nil, fmt.Errorf("failed to scan messages for sequence recovery: %w", err)
	}
	for _, m := range msgs {
		if m.Seq > s.seq {
			s.seq = m.Seq
		}
	}

	return s, nil
}

var _ interfaces.MessageStorage = (*MessageStorage)(nil)

func (s *MessageStorage) SaveMessage(ctx context.Context, msg *models.Message) error {
	if msg == nil {
		return fmt.Errorf("message cannot be nil")
	}
	if msg.ID == "" {
		return fmt.Errorf("message ID cannot be empty")
	}
	if msg.SessionID == "" {
		return fmt.Errorf("message session ID cannot be empty")
	}

	s.seqMu.Lock()
	s.seq++
	msg.Seq = s.seq
	s.seqMu.Unlock()

	if err := s.db.Store().Upsert(msg.ID, msg); err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

func (s *MessageStorage) ListMessagesBySession(ctx context.Context, sessionID string) ([]*models.Message, error) {
	var msgs []*models.Message
	query := badgerhold.Where("SessionID").Eq(sessionID)
	if err := s.db.Store().Find(&msgs, query); err != nil {
		return nil, fmt.Errorf("failed to list messages for session: %w", err)
	}

	sortMessages(msgs)
	return msgs, nil
}

func (s *MessageStorage) ListMessages(ctx context.Context) ([]*models.Message, error) {
	var msgs []*models.Message
	if err := s.db.Store().Find(&msgs, nil); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	sortMessages(msgs)
	return msgs, nil
}

func (s *MessageStorage) CountMessagesBySession(ctx context.Context, sessionID string) (int, error) {
	query := badgerhold.Where("SessionID").Eq(sessionID)
	count, err := s.db.Store().Count(&models.Message{}, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return int(count), nil
}

func (s *MessageStorage) DeleteMessagesBySession(ctx context.Context, sessionID string) error {
	query := badgerhold.Where("SessionID").Eq(sessionID)
	if err := s.db.Store().DeleteMatching(&models.Message{}, query); err != nil {
		return fmt.Errorf("failed to delete messages for session: %w", err)
	}
	return nil
}

// sortMessages orders oldest first by timestamp with the insertion
// sequence as tiebreak for same-instant messages.
func sortMessages(msgs []*models.Message) {
	sort.Slice(msgs, func(i, j int) bool {
		if !msgs[i].Timestamp.Equal(msgs[j].Timestamp) {
			return msgs[i].Timestamp.Before(msgs[j].Timestamp)
		}
		if msgs[i].Seq != msgs[j].Seq {
			return msgs[i].Seq < msgs[j].Seq
		}
		return strings.Compare(msgs[i].ID, msgs[j].ID) < 0
	})
}
