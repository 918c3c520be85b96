package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetChatHandler_ReturnsSessionAndTranscript(t *testing.T) {
	env := newHandlerEnv(t)
	uploaded := uploadDocument(t, env)

	req := httptest.NewRequest("GET", "/api/documents/"+uploaded.Document.ID+"/chat", nil)
	rec := httptest.NewRecorder()
	env.chatHandler.GetChatHandler(rec, req, uploaded.Document.ID)

	require.Equal(t, http.StatusOK, rec.Code)

	var response SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.NotNil(t, response.Session)
	assert.Equal(t, uploaded.SessionID, response.Session.ID)
	assert.Equal(t, uploaded.Document.ID, response.Session.DocumentID)
	assert.Empty(t, response.Messages)
}

func TestGetChatHandler_MissingDocument(t *testing.T) {
	env := newHandlerEnv(t)

	req := httptest.NewRequest("GET", "/api/documents/doc_missing/chat", nil)
	rec := httptest.NewRecorder()
	env.chatHandler.GetChatHandler(rec, req, "doc_missing")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSummarizeHandler_ReturnsSummary(t *testing.T) {
	env := newHandlerEnv(t)
	env.llm.reply = "A concise summary."
	uploaded := uploadDocument(t, env)

	req := httptest.NewRequest("POST", "/api/documents/"+uploaded.Document.ID+"/summarize", nil)
	rec := httptest.NewRecorder()
	env.chatHandler.SummarizeHandler(rec, req, uploaded.Document.ID)

	require.Equal(t, http.StatusOK, rec.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "A concise summary.", response["summary"])
}

func TestSummarizeHandler_CompletionFailure(t *testing.T) {
	env := newHandlerEnv(t)
	env.llm.err = errors.New("provider unavailable")
	uploaded := uploadDocument(t, env)

	req := httptest.NewRequest("POST", "/api/documents/"+uploaded.Document.ID+"/summarize", nil)
	rec := httptest.NewRecorder()
	env.chatHandler.SummarizeHandler(rec, req, uploaded.Document.ID)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestExportHandler_ReturnsPDF(t *testing.T) {
	env := newHandlerEnv(t)
	uploaded := uploadDocument(t, env)

	req := httptest.NewRequest("GET", "/api/documents/"+uploaded.Document.ID+"/export", nil)
	rec := httptest.NewRecorder()
	env.chatHandler.ExportHandler(rec, req, uploaded.Document.ID)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "report-transcript.pdf")
	assert.True(t, len(rec.Body.Bytes()) > 4)
	assert.Equal(t, "%PDF", string(rec.Body.Bytes()[:4]))
}

func TestExportHandler_MissingDocument(t *testing.T) {
	env := newHandlerEnv(t)

	req := httptest.NewRequest("GET", "/api/documents/doc_missing/export", nil)
	rec := httptest.NewRecorder()
	env.chatHandler.ExportHandler(rec, req, "doc_missing")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
