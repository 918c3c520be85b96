package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ternarybob/parley/internal/common"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteServiceError maps a service error to the right HTTP status:
// validation errors become 400, missing records 404, everything else 500.
// Internal detail never reaches the client beyond the message string.
func WriteServiceError(w http.ResponseWriter, err error) error {
	if common.IsValidationError(err) {
		return WriteError(w, http.StatusBadRequest, err.Error())
	}
	if errors.Is(err, common.ErrNotFound) {
		return WriteError(w, http.StatusNotFound, "Not found")
	}
	return WriteError(w, http.StatusInternalServerError, "Internal server error")
}
