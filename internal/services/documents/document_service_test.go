package documents

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/parley/internal/common"
	"github.com/ternarybob/parley/internal/interfaces"
	"github.com/ternarybob/parley/internal/models"
	"github.com/ternarybob/parley/internal/services/chat"
	"github.com/ternarybob/parley/internal/storage/memory"
)

// stubExtractor avoids real PDF parsing in service-level tests
type stubExtractor struct {
	result *interfaces.PDFExtraction
}

func (s *stubExtractor) Extract(ctx context.Context, data []byte) (*interfaces.PDFExtraction, error) {
	return s.result, nil
}

type stubLLM struct{}

func (s *stubLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	return "ok", nil
}
func (s *stubLLM) HealthCheck(ctx context.Context) error { return nil }
func (s *stubLLM) Provider() string                      { return "stub" }
func (s *stubLLM) Close() error                          { return nil }

func newTestService(t *testing.T) (*Service, interfaces.StorageManager) {
	t.Helper()

	logger := arbor.NewLogger()
	storage := memory.NewManager(logger)
	chatConfig := &common.ChatConfig{MaxHistoryMessages: 10, MaxContextChars: 8000}
	chatService := chat.NewService(storage, &stubLLM{}, chatConfig, logger)
	extractor := &stubExtractor{
		result: &interfaces.PDFExtraction{Text: "Hello world", PageCount: 2},
	}
	uploadConfig := &common.UploadConfig{MaxFileSize: 10 * 1024 * 1024}

	return NewService(storage, extractor, chatService, uploadConfig, logger), storage
}

func validUpload() *interfaces.UploadRequest {
	data := []byte("%PDF-1.4 fake content")
	return &interfaces.UploadRequest{
		Filename:    "sample.pdf",
		ContentType: "application/pdf",
		Size:        int64(len(data)),
		Data:        data,
	}
}

func TestUpload_CreatesDocumentAndSession(t *testing.T) {
	service, storage := newTestService(t)
	ctx := context.Background()

	result, err := service.Upload(ctx, validUpload())
	require.NoError(t, err)

	assert.Equal(t, "sample", result.Document.Title)
	assert.Equal(t, 2, result.Document.PageCount)
	assert.True(t, result.Document.Extracted)
	assert.NotEmpty(t, result.SessionID)

	session, err := storage.SessionStorage().GetSession(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, result.Document.ID, session.DocumentID)
}

func TestUpload_RejectsNonPDF(t *testing.T) {
	service, storage := newTestService(t)

	req := validUpload()
	req.Filename = "notes.txt"
	req.ContentType = "text/plain"

	_, err := service.Upload(context.Background(), req)
	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))

	// No document created on rejection
	count, err := storage.DocumentStorage().CountDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestUpload_RejectsOversizedFile(t *testing.T) {
	service, _ := newTestService(t)

	req := validUpload()
	req.Size = 11 * 1024 * 1024

	_, err := service.Upload(context.Background(), req)
	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))
}

func TestUpload_RejectsEmpty(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Upload(context.Background(), &interfaces.UploadRequest{Filename: "empty.pdf"})
	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))
}

func TestUpload_DegradedExtractionStillSucceeds(t *testing.T) {
	service, _ := newTestService(t)
	service.extractor = &stubExtractor{
		result: &interfaces.PDFExtraction{Text: "placeholder", PageCount: 1, Degraded: true},
	}

	result, err := service.Upload(context.Background(), validUpload())
	require.NoError(t, err)
	assert.False(t, result.Document.Extracted)
	assert.Equal(t, 1, result.Document.PageCount)
}

func TestDelete_CascadesToSessionsAndMessages(t *testing.T) {
	service, storage := newTestService(t)
	ctx := context.Background()

	result, err := service.Upload(ctx, validUpload())
	require.NoError(t, err)

	// Seed transcript messages for the cascade
	for _, content := range []string{"hello", "world"} {
		msg := &models.Message{
			ID:        common.NewMessageID(),
			SessionID: result.SessionID,
			Content:   content,
			IsUser:    true,
			Timestamp: time.Now(),
		}
		require.NoError(t, storage.MessageStorage().SaveMessage(ctx, msg))
	}

	require.NoError(t, service.Delete(ctx, result.Document.ID))

	_, err = storage.DocumentStorage().GetDocument(ctx, result.Document.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = storage.SessionStorage().GetSession(ctx, result.SessionID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	count, err := storage.MessageStorage().CountMessagesBySession(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestDelete_MissingDocument(t *testing.T) {
	service, _ := newTestService(t)

	err := service.Delete(context.Background(), "doc_missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
