package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/parley/internal/common"
	"github.com/ternarybob/parley/internal/interfaces"
	"github.com/ternarybob/parley/internal/models"
	"github.com/ternarybob/parley/internal/services/llm"
)

// Fallback reply persisted when the provider completes without text.
// A backend failure is different: it produces an error envelope and no
// assistant message.
const emptyReplyFallback = "I couldn't generate a response."

const emptySummaryFallback = "Unable to generate summary."

// Service implements the ChatService interface
type Service struct {
	storage interfaces.StorageManager
	llm     interfaces.LLMService
	config  *common.ChatConfig
	logger  arbor.ILogger

	// createLocks serializes session find-or-create per document id so
	// concurrent first requests yield exactly one session
	createLocks *keyedMutex

	// turnLocks serializes user turns per session id so the transcript
	// interleaves user and assistant messages in submission order
	turnLocks *keyedMutex
}

// Compile-time interface assertion
var _ interfaces.ChatService = (*Service)(nil)

// NewService creates a new chat service
func NewService(storage interfaces.StorageManager, llmService interfaces.LLMService, config *common.ChatConfig, logger arbor.ILogger) *Service {
	return &Service{
		storage:     storage,
		llm:         llmService,
		config:      config,
		logger:      logger,
		createLocks: newKeyedMutex(),
		turnLocks:   newKeyedMutex(),
	}
}

// GetOrCreateSession returns the document's chat session, creating it when
// absent. Atomic per document id.
func (s *Service) GetOrCreateSession(ctx context.Context, documentID string) (*models.ChatSession, error) {
	if _, err := s.storage.DocumentStorage().GetDocument(ctx, documentID); err != nil {
		return nil, err
	}

	s.createLocks.Lock(documentID)
	defer s.createLocks.Unlock(documentID)

	session, err := s.storage.SessionStorage().GetSessionByDocument(ctx, documentID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	session = &models.ChatSession{
		ID:         common.NewSessionID(),
		DocumentID: documentID,
		CreatedAt:  time.Now(),
	}
	if err := s.storage.SessionStorage().SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Debug().
		Str("session_id", session.ID).
		Str("document_id", documentID).
		Msg("Chat session created")

	return session, nil
}

// GetSession resolves a session by id
func (s *Service) GetSession(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	return s.storage.SessionStorage().GetSession(ctx, sessionID)
}

// Transcript returns a session's messages oldest first
func (s *Service) Transcript(ctx context.Context, sessionID string) ([]*models.Message, error) {
	if _, err := s.storage.SessionStorage().GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.storage.MessageStorage().ListMessagesBySession(ctx, sessionID)
}

// HandleUserTurn runs a user turn asynchronously. Turns on the same
// session are serialized; the sink receives typing then either a message
// or an error envelope. The turn outlives the caller's context so a
// client disconnect never rolls back persistence.
func (s *Service) HandleUserTurn(ctx context.Context, sessionID, content string, sink interfaces.ReplySink) {
	turnCtx := context.WithoutCancel(ctx)

	go func() {
		s.turnLocks.Lock(sessionID)
		defer s.turnLocks.Unlock(sessionID)

		s.runTurn(turnCtx, sessionID, content, sink)
	}()
}

func (s *Service) runTurn(ctx context.Context, sessionID, content string, sink interfaces.ReplySink) {
	session, err := s.storage.SessionStorage().GetSession(ctx, sessionID)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("User turn for unknown session")
		sink.SendError("Session not found")
		return
	}

	userMsg := &models.Message{
		ID:        common.NewMessageID(),
		SessionID: sessionID,
		Content:   content,
		IsUser:    true,
		Timestamp: time.Now(),
	}
	if err := s.storage.MessageStorage().SaveMessage(ctx, userMsg); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("Failed to persist user message")
		sink.SendError("Failed to process message")
		return
	}

	// From here on the user message stays persisted regardless of outcome
	doc, err := s.storage.DocumentStorage().GetDocument(ctx, session.DocumentID)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("session_id", sessionID).
			Str("document_id", session.DocumentID).
			Msg("User turn for missing document")
		sink.SendError("Document not found")
		return
	}

	sink.SendTyping()

	transcript, err := s.storage.MessageStorage().ListMessagesBySession(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("Failed to load transcript")
		sink.SendError("Failed to process message")
		return
	}

	reply, err := s.llm.Chat(ctx, buildTurnMessages(doc, transcript, s.config.MaxHistoryMessages, s.config.MaxContextChars))
	if err != nil {
		if errors.Is(err, llm.ErrEmptyResponse) {
			reply = emptyReplyFallback
		} else {
			s.logger.Error().Err(err).Str("session_id", sessionID).Msg("Completion failed for user turn")
			sink.SendError("Failed to generate AI response")
			return
		}
	}

	assistantMsg := &models.Message{
		ID:        common.NewMessageID(),
		SessionID: sessionID,
		Content:   reply,
		IsUser:    false,
		Timestamp: time.Now(),
	}
	if err := s.storage.MessageStorage().SaveMessage(ctx, assistantMsg); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("Failed to persist assistant message")
		sink.SendError("Failed to process message")
		return
	}

	sink.SendMessage(reply)
}

// Summarize produces a one-shot document summary. No message is
// persisted and session state is untouched.
func (s *Service) Summarize(ctx context.Context, documentID string) (string, error) {
	doc, err := s.storage.DocumentStorage().GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}

	summary, err := s.llm.Chat(ctx, buildSummaryMessages(doc, s.config.MaxContextChars))
	if err != nil {
		if errors.Is(err, llm.ErrEmptyResponse) {
			return emptySummaryFallback, nil
		}
		return "", fmt.Errorf("failed to summarize document: %w", err)
	}

	return summary, nil
}
