package documents

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/parley/internal/common"
	"github.com/ternarybob/parley/internal/interfaces"
	"github.com/ternarybob/parley/internal/models"
)

// Service implements the DocumentService interface
type Service struct {
	storage   interfaces.StorageManager
	extractor interfaces.PDFExtractor
	chat      interfaces.ChatService
	config    *common.UploadConfig
	logger    arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.DocumentService = (*Service)(nil)

// NewService creates a new document service
func NewService(storage interfaces.StorageManager, extractor interfaces.PDFExtractor, chat interfaces.ChatService, config *common.UploadConfig, logger arbor.ILogger) *Service {
	return &Service{
		storage:   storage,
		extractor: extractor,
		chat:      chat,
		config:    config,
		logger:    logger,
	}
}

// Upload validates and stores a PDF, extracting its text and creating the
// document's initial chat session. Validation failures are reported as
// common.ValidationError with no side effects.
func (s *Service) Upload(ctx context.Context, req *interfaces.UploadRequest) (*interfaces.UploadResult, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	extraction, err := s.extractor.Extract(ctx, req.Data)
	if err != nil {
		return nil, common.NewValidationError("failed to process PDF: %v", err)
	}

	doc := &models.Document{
		ID:         common.NewDocumentID(),
		Title:      documentTitle(req.Filename),
		Filename:   req.Filename,
		Content:    extraction.Text,
		Size:       req.Size,
		PageCount:  extraction.PageCount,
		Extracted:  !extraction.Degraded,
		UploadedAt: time.Now(),
	}

	if err := s.storage.DocumentStorage().SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	session, err := s.chat.GetOrCreateSession(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}

	s.logger.Info().
		Str("document_id", doc.ID).
		Str("filename", doc.Filename).
		Int("page_count", doc.PageCount).
		Bool("extracted", doc.Extracted).
		Msg("Document uploaded")

	return &interfaces.UploadResult{
		Document:  doc,
		SessionID: session.ID,
	}, nil
}

// Get retrieves a document by ID
func (s *Service) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.storage.DocumentStorage().GetDocument(ctx, id)
}

// List returns all documents, newest first
func (s *Service) List(ctx context.Context) ([]*models.Document, error) {
	return s.storage.DocumentStorage().ListDocuments(ctx)
}

// Delete removes a document and cascades to its sessions and messages.
// Messages go first so an interrupted cascade leaves orphans that the
// maintenance sweep can reclaim, never dangling references to live data.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.storage.DocumentStorage().GetDocument(ctx, id); err != nil {
		return err
	}

	sessions, err := s.storage.SessionStorage().ListSessionsByDocument(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list sessions for delete: %w", err)
	}

	for _, session := range sessions {
		if err := s.storage.MessageStorage().DeleteMessagesBySession(ctx, session.ID); err != nil {
			return fmt.Errorf("failed to delete messages for session %s: %w", session.ID, err)
		}
		if err := s.storage.SessionStorage().DeleteSession(ctx, session.ID); err != nil && !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("failed to delete session %s: %w", session.ID, err)
		}
	}

	if err := s.storage.DocumentStorage().DeleteDocument(ctx, id); err != nil {
		return err
	}

	s.logger.Info().
		Str("document_id", id).
		Int("sessions", len(sessions)).
		Msg("Document deleted with cascade")

	return nil
}

func (s *Service) validate(req *interfaces.UploadRequest) error {
	if req == nil || len(req.Data) == 0 {
		return common.NewValidationError("no file provided")
	}

	if !isPDF(req.Filename, req.ContentType) {
		return common.NewValidationError("file must be a PDF")
	}

	if req.Size > s.config.MaxFileSize {
		return common.NewValidationError("file size must be less than %dMB", s.config.MaxFileSize/(1024*1024))
	}

	return nil
}

func isPDF(filename, contentType string) bool {
	if strings.EqualFold(contentType, "application/pdf") {
		return true
	}
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// documentTitle derives a display title from the uploaded filename
func documentTitle(filename string) string {
	base := filepath.Base(filename)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	if title == "" {
		return base
	}
	return title
}
