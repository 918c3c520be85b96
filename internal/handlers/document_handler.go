package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/parley/internal/common"
	"github.com/ternarybob/parley/internal/interfaces"
)

// DocumentHandler serves the document REST endpoints
type DocumentHandler struct {
	documents interfaces.DocumentService
	config    *common.UploadConfig
	logger    arbor.ILogger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documents interfaces.DocumentService, config *common.UploadConfig, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		config:    config,
		logger:    logger,
	}
}

// ListHandler handles GET /api/documents
func (h *DocumentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documents.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list documents")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, docs)
}

// UploadHandler handles POST /api/documents. Expects a multipart form with
// the PDF in the "file" field.
func (h *DocumentHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	// Cap the request body slightly above the file limit to leave room
	// for multipart framing
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxFileSize+1024*1024)

	if err := r.ParseMultipartForm(h.config.MaxFileSize); err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("File size must be less than %dMB", h.config.MaxFileSize/(1024*1024)))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read uploaded file")
		WriteError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	result, err := h.documents.Upload(r.Context(), &interfaces.UploadRequest{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        data,
	})
	if err != nil {
		if !common.IsValidationError(err) {
			h.logger.Error().Err(err).Str("filename", header.Filename).Msg("Document upload failed")
		}
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, result)
}

// GetHandler handles GET /api/documents/{id}
func (h *DocumentHandler) GetHandler(w http.ResponseWriter, r *http.Request, documentID string) {
	doc, err := h.documents.Get(r.Context(), documentID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, doc)
}

// DeleteHandler handles DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request, documentID string) {
	if err := h.documents.Delete(r.Context(), documentID); err != nil {
		h.logger.Warn().Err(err).Str("document_id", documentID).Msg("Document delete failed")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Document deleted",
	})
}
