package interfaces

import (
	"context"

	"github.com/ternarybob/parley/internal/models"
)

// ReplySink receives the outbound envelopes produced by a user turn.
// Implemented by the WebSocket connection that owns the session; a sink whose
// transport has gone away drops writes silently (the turn's persistence side
// effects are unaffected).
type ReplySink interface {
	SendTyping()
	SendMessage(content string)
	SendError(message string)
}

// ChatService manages per-document conversations and orchestrates the
// user-turn request/response cycle.
type ChatService interface {
	// GetOrCreateSession returns the document's session, creating it when
	// absent. Find-or-create is atomic per document id: concurrent first
	// calls yield exactly one session. common.ErrNotFound when the document
	// does not exist.
	GetOrCreateSession(ctx context.Context, documentID string) (*models.ChatSession, error)

	// GetSession resolves a session by id, common.ErrNotFound when absent
	GetSession(ctx context.Context, sessionID string) (*models.ChatSession, error)

	// Transcript returns a session's messages oldest first
	Transcript(ctx context.Context, sessionID string) ([]*models.Message, error)

	// HandleUserTurn runs an asynchronous turn: persist the user message,
	// resolve context, signal typing, complete, persist the assistant
	// message, and deliver through the sink. Turns on the same session are
	// serialized. The user message outlives any later failure; a failed turn
	// produces exactly one error envelope and no message envelope.
	HandleUserTurn(ctx context.Context, sessionID, content string, sink ReplySink)

	// Summarize produces a one-shot document summary, independent of session
	// state, returned directly to the caller. No message is persisted.
	Summarize(ctx context.Context, documentID string) (string, error)
}
