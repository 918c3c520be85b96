package memory

import (
	"context"
	"errors"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/parley/internal/common"
	"github.com/ternarybob/parley/internal/interfaces"
)

// Manager implements interfaces.StorageManager over in-memory maps.
// One instance is constructed at process start and shared by all handlers.
type Manager struct {
	document *DocumentStorage
	session  *SessionStorage
	message  *MessageStorage
	kv       *KVStorage
	logger   arbor.ILogger
}

// NewManager creates a new in-memory storage manager
func NewManager(logger arbor.ILogger) interfaces.StorageManager {
	manager := &Manager{
		document: NewDocumentStorage(logger),
		session:  NewSessionStorage(logger),
		message:  NewMessageStorage(logger),
		kv:       NewKVStorage(logger),
		logger:   logger,
	}

	logger.Info().Msg("In-memory storage manager initialized")

	return manager
}

// DocumentStorage returns the Document storage interface
func (m *Manager) DocumentStorage() interfaces.DocumentStorage {
	return m.document
}

// SessionStorage returns the ChatSession storage interface
func (m *Manager) SessionStorage() interfaces.SessionStorage {
	return m.session
}

// MessageStorage returns the Message storage interface
func (m *Manager) MessageStorage() interfaces.MessageStorage {
	return m.message
}

// KeyValueStorage returns the KeyValue storage interface
func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kv
}

// Maintain sweeps sessions whose document is gone and messages whose session
// is gone. Cascade delete already handles the normal path; this catches
// entities left behind by interrupted deletions.
func (m *Manager) Maintain(ctx context.Context) error {
	sessions, err := m.session.ListSessions(ctx)
	if err != nil {
		return err
	}

	swept := 0
	for _, session := range sessions {
		if _, err := m.document.GetDocument(ctx, session.DocumentID); errors.Is(err, common.ErrNotFound) {
			if err := m.message.DeleteMessagesBySession(ctx, session.ID); err != nil {
				m.logger.Warn().Err(err).Str("session_id", session.ID).Msg("Failed to sweep messages for orphaned session")
				continue
			}
			if err := m.session.DeleteSession(ctx, session.ID); err != nil && !errors.Is(err, common.ErrNotFound) {
				m.logger.Warn().Err(err).Str("session_id", session.ID).Msg("Failed to sweep orphaned session")
				continue
			}
			swept++
		}
	}

	messages, err := m.message.ListMessages(ctx)
	if err != nil {
		return err
	}

	orphanSessions := make(map[string]bool)
	for _, msg := range messages {
		if orphanSessions[msg.SessionID] {
			continue
		}
		if _, err := m.session.GetSession(ctx, msg.SessionID); errors.Is(err, common.ErrNotFound) {
			orphanSessions[msg.SessionID] = true
		}
	}
	for sessionID := range orphanSessions {
		if err := m.message.DeleteMessagesBySession(ctx, sessionID); err != nil {
			m.logger.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to sweep orphaned messages")
			continue
		}
		swept++
	}

	if swept > 0 {
		m.logger.Info().Int("swept", swept).Msg("Storage maintenance removed orphaned records")
	}
	return nil
}

// Close is a no-op for the in-memory backend
func (m *Manager) Close() error {
	return nil
}
