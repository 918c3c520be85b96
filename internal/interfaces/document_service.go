package interfaces

import (
	"context"

	"github.com/ternarybob/parley/internal/models"
)

// UploadRequest carries a validated multipart upload into the document service
type UploadRequest struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// UploadResult is returned on successful document creation
type UploadResult struct {
	Document  *models.Document `json:"document"`
	SessionID string           `json:"sessionId"`
}

// DocumentService manages the document lifecycle: upload, extraction,
// listing, and cascade deletion.
type DocumentService interface {
	// Upload validates the file, extracts text (degrading to placeholder
	// content on parse failure), stores the document, and creates its
	// initial chat session. Returns a common.ValidationError for rejected
	// input.
	Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error)

	// Get retrieves a document by ID, common.ErrNotFound when absent
	Get(ctx context.Context, id string) (*models.Document, error)

	// List returns all documents, newest first
	List(ctx context.Context) ([]*models.Document, error)

	// Delete removes a document and cascades to its sessions and their
	// messages (best-effort sequential). common.ErrNotFound when absent.
	Delete(ctx context.Context, id string) error
}
