package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/parley/internal/interfaces"
	"github.com/ternarybob/parley/internal/models"
)

// ChatHandler serves the conversation REST endpoints
type ChatHandler struct {
	chat      interfaces.ChatService
	documents interfaces.DocumentService
	renderer  interfaces.PDFRenderer
	logger    arbor.ILogger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat interfaces.ChatService, documents interfaces.DocumentService, renderer interfaces.PDFRenderer, logger arbor.ILogger) *ChatHandler {
	return &ChatHandler{
		chat:      chat,
		documents: documents,
		renderer:  renderer,
		logger:    logger,
	}
}

// SessionResponse is the GET chat payload: the session and its transcript
type SessionResponse struct {
	Session  *models.ChatSession `json:"session"`
	Messages []*models.Message   `json:"messages"`
}

// GetChatHandler handles GET /api/documents/{id}/chat. Creates the
// session on first access.
func (h *ChatHandler) GetChatHandler(w http.ResponseWriter, r *http.Request, documentID string) {
	session, err := h.chat.GetOrCreateSession(r.Context(), documentID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	messages, err := h.chat.Transcript(r.Context(), session.ID)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", session.ID).Msg("Failed to load transcript")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, SessionResponse{
		Session:  session,
		Messages: messages,
	})
}

// SummarizeHandler handles POST /api/documents/{id}/summarize
func (h *ChatHandler) SummarizeHandler(w http.ResponseWriter, r *http.Request, documentID string) {
	summary, err := h.chat.Summarize(r.Context(), documentID)
	if err != nil {
		h.logger.Error().Err(err).Str("document_id", documentID).Msg("Summarization failed")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"summary": summary,
	})
}

// ExportHandler handles GET /api/documents/{id}/export. Renders the
// conversation transcript as a downloadable PDF.
func (h *ChatHandler) ExportHandler(w http.ResponseWriter, r *http.Request, documentID string) {
	doc, err := h.documents.Get(r.Context(), documentID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	session, err := h.chat.GetOrCreateSession(r.Context(), documentID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	messages, err := h.chat.Transcript(r.Context(), session.ID)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", session.ID).Msg("Failed to load transcript for export")
		WriteServiceError(w, err)
		return
	}

	pdfBytes, err := h.renderer.RenderMarkdown(transcriptMarkdown(doc, messages), doc.Title)
	if err != nil {
		h.logger.Error().Err(err).Str("document_id", documentID).Msg("Transcript export failed")
		WriteError(w, http.StatusInternalServerError, "Failed to export transcript")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(doc)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdfBytes)
}

// transcriptMarkdown formats the conversation as markdown for the renderer
func transcriptMarkdown(doc *models.Document, messages []*models.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	fmt.Fprintf(&b, "Conversation transcript for %s (%d pages)\n\n---\n\n", doc.Filename, doc.PageCount)

	if len(messages) == 0 {
		b.WriteString("No messages yet.\n")
		return b.String()
	}

	for _, msg := range messages {
		speaker := "Assistant"
		if msg.IsUser {
			speaker = "You"
		}
		fmt.Fprintf(&b, "**%s** (%s):\n\n%s\n\n", speaker, msg.Timestamp.Format("2006-01-02 15:04"), msg.Content)
	}

	return b.String()
}

func exportFilename(doc *models.Document) string {
	name := strings.TrimSpace(doc.Title)
	if name == "" {
		name = "transcript"
	}
	return name + "-transcript.pdf"
}
