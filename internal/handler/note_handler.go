package handlers

import (
	"encoding/json"
	"net/http"
	"ssipfix/internal/models"
	"ssipfix/internal/service"
)

type NoteRequest struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	IsPublic bool   `json:"isPublic"`
}

func (h *Handlers) decodeNote(w http.ResponseWriter, r *http.Request) (service.NoteInput, bool) {
	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Invalid request format", http.StatusBadRequest)
		return service.NoteInput{}, false
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, "Title and content are required", http.StatusBadRequest)
		return service.NoteInput{}, false
	}

	return service.NoteInput{Title: req.Title, Content: req.Content, IsPublic: req.IsPublic}, true
}

// ListNotes returns the caller's notes plus every public note.
func (h *Handlers) ListNotes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	caller := models.CallerFromContext(r.Context())
	notes, err := h.NoteService.List(r.Context(), caller.UserID)
	if err != nil {
		writeServiceError(w, err, "list notes")
		return
	}
	if notes == nil {
		notes = []models.Note{}
	}

	WriteJSON(w, notes, http.StatusOK)
}

func (h *Handlers) CreateNote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	in, ok := h.decodeNote(w, r)
	if !ok {
		return
	}

	caller := models.CallerFromContext(r.Context())
	note, err := h.NoteService.Create(r.Context(), caller.UserID, in)
	if err != nil {
		writeServiceError(w, err, "create note")
		return
	}

	WriteJSON(w, note, http.StatusCreated)
}

func (h *Handlers) UpdateNote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	noteID, ok := pathID(r)
	if !ok {
		WriteError(w, "Invalid note ID", http.StatusBadRequest)
		return
	}

	in, ok := h.decodeNote(w, r)
	if !ok {
		return
	}

	caller := models.CallerFromContext(r.Context())
	note, err := h.NoteService.Update(r.Context(), caller.UserID, noteID, in)
	if err != nil {
		writeServiceError(w, err, "update note")
		return
	}

	WriteJSON(w, note, http.StatusOK)
}

func (h *Handlers) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	noteID, ok := pathID(r)
	if !ok {
		WriteError(w, "Invalid note ID", http.StatusBadRequest)
		return
	}

	caller := models.CallerFromContext(r.Context())
	if err := h.NoteService.Delete(r.Context(), caller.UserID, noteID); err != nil {
		writeServiceError(w, err, "delete note")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
