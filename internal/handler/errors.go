package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"ssipfix/internal/logger"
	"ssipfix/internal/service"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteError(w http.ResponseWriter, message string, statusCode int) {
	WriteJSON(w, ErrorResponse{Error: message}, statusCode)
}

func WriteJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.WarnWithFields("Failed to encode response", err)
	}
}

// writeServiceError maps service sentinels to status codes. Anything unrecognised is logged
// and answered with an opaque 500.
func writeServiceError(w http.ResponseWriter, err error, action string) {
	var rejection *service.RejectionError
	switch {
	case errors.As(err, &rejection):
		WriteError(w, rejection.Message, http.StatusBadRequest)
	case errors.Is(err, service.ErrInvalidInput):
		WriteError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrInvalidReaction):
		WriteError(w, "Invalid action", http.StatusBadRequest)
	case errors.Is(err, service.ErrUnauthenticated):
		WriteError(w, "Authentication required", http.StatusUnauthorized)
	case errors.Is(err, service.ErrInvalidCredential), errors.Is(err, service.ErrAccountNotFound):
		WriteError(w, "Invalid username or password", http.StatusUnauthorized)
	case errors.Is(err, service.ErrForbidden):
		WriteError(w, "Access denied", http.StatusForbidden)
	case errors.Is(err, service.ErrPostNotFound):
		WriteError(w, "Post not found", http.StatusNotFound)
	case errors.Is(err, service.ErrNoteNotFound):
		WriteError(w, "Note not found", http.StatusNotFound)
	case errors.Is(err, service.ErrUsernameTaken):
		WriteError(w, "Username already taken", http.StatusConflict)
	default:
		logger.ErrorWithFields("Failed to "+action, err)
		WriteError(w, "Internal server error", http.StatusInternalServerError)
	}
}
