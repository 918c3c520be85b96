package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/parley/internal/common"
	"github.com/ternarybob/parley/internal/interfaces"
	"github.com/ternarybob/parley/internal/services/chat"
	"github.com/ternarybob/parley/internal/services/documents"
	"github.com/ternarybob/parley/internal/services/pdf"
	"github.com/ternarybob/parley/internal/storage/memory"
)

// fakeLLM returns a canned reply or a scripted error
type fakeLLM struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (f *fakeLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeLLM) Provider() string                      { return "fake" }
func (f *fakeLLM) Close() error                          { return nil }

// stubExtractor avoids parsing real PDF bytes in handler tests
type stubExtractor struct{}

func (s *stubExtractor) Extract(ctx context.Context, data []byte) (*interfaces.PDFExtraction, error) {
	return &interfaces.PDFExtraction{
		Text:      "Hello world document content",
		PageCount: 2,
	}, nil
}

// handlerEnv wires the full handler stack over memory storage
type handlerEnv struct {
	storage   interfaces.StorageManager
	llm       *fakeLLM
	chat      interfaces.ChatService
	documents interfaces.DocumentService

	documentHandler *DocumentHandler
	chatHandler     *ChatHandler
	wsHandler       *WebSocketHandler
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	logger := arbor.NewLogger()
	storage := memory.NewManager(logger)
	llm := &fakeLLM{reply: "canned reply"}

	chatConfig := &common.ChatConfig{
		MaxHistoryMessages: 10,
		MaxContextChars:    8000,
	}
	uploadConfig := &common.UploadConfig{
		MaxFileSize: 10 * 1024 * 1024,
	}

	chatService := chat.NewService(storage, llm, chatConfig, logger)
	documentService := documents.NewService(storage, &stubExtractor{}, chatService, uploadConfig, logger)
	renderer := pdf.NewRenderer(logger)

	return &handlerEnv{
		storage:         storage,
		llm:             llm,
		chat:            chatService,
		documents:       documentService,
		documentHandler: NewDocumentHandler(documentService, uploadConfig, logger),
		chatHandler:     NewChatHandler(chatService, documentService, renderer, logger),
		wsHandler:       NewWebSocketHandler(chatService, &common.WebSocketConfig{}, logger),
	}
}

// multipartUpload builds a multipart request body with a single "file" field
func multipartUpload(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	header["Content-Type"] = []string{contentType}

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &body, writer.FormDataContentType()
}

func uploadDocument(t *testing.T, env *handlerEnv) *interfaces.UploadResult {
	t.Helper()

	body, contentType := multipartUpload(t, "report.pdf", "application/pdf", []byte("%PDF-1.4 test"))
	req := httptest.NewRequest("POST", "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	env.documentHandler.UploadHandler(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result interfaces.UploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotNil(t, result.Document)
	require.NotEmpty(t, result.SessionID)
	return &result
}

func TestUploadHandler_CreatesDocumentAndSession(t *testing.T) {
	env := newHandlerEnv(t)

	result := uploadDocument(t, env)

	assert.Equal(t, "report", result.Document.Title)
	assert.Equal(t, "report.pdf", result.Document.Filename)
	assert.Equal(t, 2, result.Document.PageCount)
	assert.True(t, result.Document.Extracted)

	// Session must exist and reference the document
	session, err := env.chat.GetSession(context.Background(), result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, result.Document.ID, session.DocumentID)
}

func TestUploadHandler_NoFileProvided(t *testing.T) {
	env := newHandlerEnv(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("other", "value"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/documents", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	env.documentHandler.UploadHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No file provided")
}

func TestUploadHandler_RejectsNonPDF(t *testing.T) {
	env := newHandlerEnv(t)

	body, contentType := multipartUpload(t, "notes.txt", "text/plain", []byte("plain text"))
	req := httptest.NewRequest("POST", "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	env.documentHandler.UploadHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be a PDF")
}

func TestUploadHandler_OversizeNamesConfiguredLimit(t *testing.T) {
	env := newHandlerEnv(t)

	// Handler with a 1MB cap, the error must quote that limit
	handler := NewDocumentHandler(env.documents, &common.UploadConfig{
		MaxFileSize: 1 * 1024 * 1024,
	}, arbor.NewLogger())

	payload := bytes.Repeat([]byte("a"), 3*1024*1024)
	body, contentType := multipartUpload(t, "big.pdf", "application/pdf", payload)
	req := httptest.NewRequest("POST", "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.UploadHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "less than 1MB")
}

func TestListHandler_ReturnsUploadedDocuments(t *testing.T) {
	env := newHandlerEnv(t)
	uploaded := uploadDocument(t, env)

	req := httptest.NewRequest("GET", "/api/documents", nil)
	rec := httptest.NewRecorder()
	env.documentHandler.ListHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var docs []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, uploaded.Document.ID, docs[0]["id"])
}

func TestGetHandler_MissingDocument(t *testing.T) {
	env := newHandlerEnv(t)

	req := httptest.NewRequest("GET", "/api/documents/doc_missing", nil)
	rec := httptest.NewRecorder()
	env.documentHandler.GetHandler(rec, req, "doc_missing")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteHandler_RemovesDocument(t *testing.T) {
	env := newHandlerEnv(t)
	uploaded := uploadDocument(t, env)

	req := httptest.NewRequest("DELETE", "/api/documents/"+uploaded.Document.ID, nil)
	rec := httptest.NewRecorder()
	env.documentHandler.DeleteHandler(rec, req, uploaded.Document.ID)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Document deleted")

	// Document and session are gone
	getReq := httptest.NewRequest("GET", "/api/documents/"+uploaded.Document.ID, nil)
	getRec := httptest.NewRecorder()
	env.documentHandler.GetHandler(getRec, getReq, uploaded.Document.ID)
	assert.Equal(t, http.StatusNotFound, getRec.Code)

	_, err := env.chat.GetSession(context.Background(), uploaded.SessionID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteHandler_MissingDocument(t *testing.T) {
	env := newHandlerEnv(t)

	req := httptest.NewRequest("DELETE", "/api/documents/doc_missing", nil)
	rec := httptest.NewRecorder()
	env.documentHandler.DeleteHandler(rec, req, "doc_missing")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
