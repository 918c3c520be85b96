package badger

import (
	"context"
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/parley/internal/common"
	"github.com/ternarybob/parley/internal/interfaces"
)

// Manager provides Badger-backed implementations of all storage interfaces
// sharing a single database connection.
type Manager struct {
	db       *BadgerDB
	logger   arbor.ILogger
	docs     *DocumentStorage
	sessions *SessionStorage
	messages *MessageStorage
	kv       *KVStorage
}

// NewManager opens the Badger database and wires up the per-entity stores
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize badger database: %w", err)
	}

	messages, err := NewMessageStorage(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{
		db:       db,
		logger:   logger,
		docs:     NewDocumentStorage(db, logger),
		sessions: NewSessionStorage(db, logger),
		messages: messages,
		kv:       NewKVStorage(db, logger),
	}, nil
}

var _ interfaces.StorageManager = (*Manager)(nil)

func (m *Manager) DocumentStorage() interfaces.DocumentStorage {
	return m.docs
}

func (m *Manager) SessionStorage() interfaces.SessionStorage {
	return m.sessions
}

func (m *Manager) MessageStorage() interfaces.MessageStorage {
	return m.messages
}

func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kv
}

// Maintain removes orphaned sessions and messages, then reclaims value
// log space. Orphans appear when a delete cascade is interrupted.
func (m *Manager) Maintain(ctx context.Context) error {
	sessions, err := m.sessions.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("maintenance session scan failed: %w", err)
	}

	removedSessions := 0
	for _, session := range sessions {
		_, err := m.docs.GetDocument(ctx, session.DocumentID)
		if err == nil {
			continue
		}
		if !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("maintenance document lookup failed: %w", err)
		}

		if err := m.messages.DeleteMessagesBySession(ctx, session.ID); err != nil {
			return err
		}
		if err := m.sessions.DeleteSession(ctx, session.ID); err != nil && !errors.Is(err, common.ErrNotFound) {
			return err
		}
		removedSessions++
	}

	messages, err := m.messages.ListMessages(ctx)
	if err != nil {
		return fmt.Errorf("maintenance message scan failed: %w", err)
	}

	removedMessages := 0
	for _, msg := range messages {
		_, err := m.sessions.GetSession(ctx, msg.SessionID)
		if err == nil {
			continue
		}
		if !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("maintenance session lookup failed: %w", err)
		}

		if err := m.messages.DeleteMessagesBySession(ctx, msg.SessionID); err != nil {
			return err
		}
		removedMessages++
	}

	if removedSessions > 0 || removedMessages > 0 {
		m.logger.Info().
			Int("sessions", removedSessions).
			Int("messages", removedMessages).
			Msg("Removed orphaned records during maintenance")
	}

	// Badger only rewrites the value log when enough space is reclaimable,
	// so run until it reports nothing left to do.
	for {
		err := m.db.Store().Badger().RunValueLogGC(0.5)
		if err != nil {
			if !errors.Is(err, badgerdb.ErrNoRewrite) {
				m.logger.Warn().Err(err).Msg("Value log GC failed")
			}
			break
		}
	}

	return nil
}

// Close closes the underlying database connection
func (m *Manager) Close() error {
	return m.db.Close()
}
