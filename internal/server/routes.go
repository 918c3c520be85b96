package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Documents
	mux.HandleFunc("/api/documents", s.handleDocumentsRoute)  // GET (list), POST (upload)
	mux.HandleFunc("/api/documents/", s.handleDocumentRoutes) // GET/DELETE /{id} and subpaths

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleDocumentsRoute routes /api/documents requests (list and upload)
func (s *Server) handleDocumentsRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		s.app.DocumentHandler.ListHandler(w, r)
	case "POST":
		s.app.DocumentHandler.UploadHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleDocumentRoutes routes /api/documents/{id} requests and subpaths
func (s *Server) handleDocumentRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/documents/")
	if path == "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	// GET /api/documents/{id}/chat
	if r.Method == "GET" && strings.HasSuffix(path, "/chat") {
		documentID := strings.TrimSuffix(path, "/chat")
		s.app.ChatHandler.GetChatHandler(w, r, documentID)
		return
	}

	// POST /api/documents/{id}/summarize
	if r.Method == "POST" && strings.HasSuffix(path, "/summarize") {
		documentID := strings.TrimSuffix(path, "/summarize")
		s.app.ChatHandler.SummarizeHandler(w, r, documentID)
		return
	}

	// GET /api/documents/{id}/export
	if r.Method == "GET" && strings.HasSuffix(path, "/export") {
		documentID := strings.TrimSuffix(path, "/export")
		s.app.ChatHandler.ExportHandler(w, r, documentID)
		return
	}

	// Remaining paths are a bare document ID
	if strings.Contains(path, "/") {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case "GET":
		s.app.DocumentHandler.GetHandler(w, r, path)
	case "DELETE":
		s.app.DocumentHandler.DeleteHandler(w, r, path)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
