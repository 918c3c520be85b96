package interfaces

import (
	"context"

	"github.com/ternarybob/parley/internal/models"
)

// DocumentStorage defines operations for document persistence
type DocumentStorage interface {
	// SaveDocument inserts or updates a document
	SaveDocument(ctx context.Context, doc *models.Document) error

	// GetDocument retrieves a document by ID, common.ErrNotFound when absent
	GetDocument(ctx context.Context, id string) (*models.Document, error)

	// ListDocuments returns all documents, newest first by UploadedAt
	ListDocuments(ctx context.Context) ([]*models.Document, error)

	// DeleteDocument removes a document by ID, common.ErrNotFound when absent.
	// Cascade deletion of sessions and messages is orchestrated by the caller.
	DeleteDocument(ctx context.Context, id string) error

	// CountDocuments returns the total number of stored documents
	CountDocuments(ctx context.Context) (int, error)
}

// SessionStorage defines operations for chat session persistence
type SessionStorage interface {
	// SaveSession inserts or updates a chat session
	SaveSession(ctx context.Context, session *models.ChatSession) error

	// GetSession retrieves a session by ID, common.ErrNotFound when absent
	GetSession(ctx context.Context, id string) (*models.ChatSession, error)

	// GetSessionByDocument returns the first session for a document in a
	// deterministic scan order, common.ErrNotFound when none exists
	GetSessionByDocument(ctx context.Context, documentID string) (*models.ChatSession, error)

	// ListSessionsByDocument returns all sessions referencing a document
	ListSessionsByDocument(ctx context.Context, documentID string) ([]*models.ChatSession, error)

	// ListSessions returns every stored session
	ListSessions(ctx context.Context) ([]*models.ChatSession, error)

	// DeleteSession removes a session by ID. Messages are deleted separately.
	DeleteSession(ctx context.Context, id string) error
}

// MessageStorage defines operations for transcript persistence
type MessageStorage interface {
	// SaveMessage appends a message. The store assigns the insertion sequence
	// used to break timestamp ties.
	SaveMessage(ctx context.Context, msg *models.Message) error

	// ListMessagesBySession returns a session's messages oldest first.
	// Iteration operates on a snapshot and tolerates concurrent appends.
	ListMessagesBySession(ctx context.Context, sessionID string) ([]*models.Message, error)

	// ListMessages returns every stored message
	ListMessages(ctx context.Context) ([]*models.Message, error)

	// CountMessagesBySession returns the number of messages in a session
	CountMessagesBySession(ctx context.Context, sessionID string) (int, error)

	// DeleteMessagesBySession removes all messages for a session
	DeleteMessagesBySession(ctx context.Context, sessionID string) error
}

// StorageManager provides access to all storage interfaces
type StorageManager interface {
	DocumentStorage() DocumentStorage
	SessionStorage() SessionStorage
	MessageStorage() MessageStorage
	KeyValueStorage() KeyValueStorage

	// Maintain runs backend housekeeping: orphaned session/message sweep and,
	// for persistent backends, value-log garbage collection.
	Maintain(ctx context.Context) error

	// Close releases backend resources
	Close() error
}
