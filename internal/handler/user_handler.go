package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"ssipfix/internal/models"
	"ssipfix/internal/service"
)

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

// Me returns the signed-in user together with the CSRF token the client must echo back.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	caller := models.CallerFromContext(r.Context())
	user, err := h.UserService.GetUser(r.Context(), caller.UserID)
	if err != nil {
		writeServiceError(w, err, "load user")
		return
	}

	WriteJSON(w, AuthResponse{
		User:      newUserResponse(user),
		CSRFToken: caller.CSRFToken,
	}, http.StatusOK)
}

// ChangePassword signs the user out everywhere, including this browser.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, "Current and new password are required", http.StatusBadRequest)
		return
	}

	caller := models.CallerFromContext(r.Context())
	err := h.UserService.ChangePassword(r.Context(), caller.UserID, req.CurrentPassword, req.NewPassword)
	if errors.Is(err, service.ErrInvalidCredential) {
		WriteError(w, "Current password is incorrect", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeServiceError(w, err, "change password")
		return
	}

	ClearSessionCookie(w, r, h.Cfg)
	ClearRememberCookies(w, r, h.Cfg)
	w.WriteHeader(http.StatusNoContent)
}
