package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"ssipfix/internal/logger"
	"ssipfix/internal/models"
	"ssipfix/internal/service"
	"strings"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember"`
}

type UserResponse struct {
	UserID         int64  `json:"userId"`
	Username       string `json:"username"`
	IsAnonymous    bool   `json:"isAnonymous"`
	ProfilePicture string `json:"profilePicture"`
}

type AuthResponse struct {
	User      UserResponse `json:"user"`
	CSRFToken string       `json:"csrfToken"`
}

func newUserResponse(user *models.User) UserResponse {
	return UserResponse{
		UserID:         user.UserID,
		Username:       user.Username,
		IsAnonymous:    user.IsAnonymous,
		ProfilePicture: user.ProfilePicture,
	}
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	// check method
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.AuthService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err, "register user")
		return
	}

	WriteJSON(w, newUserResponse(user), http.StatusCreated)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	// check method
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	result, err := h.AuthService.Login(r.Context(), req.Username, req.Password, req.Remember)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredential) || errors.Is(err, service.ErrAccountNotFound) {
			logger.Log.Info("Login failed", logger.WithIP(r.RemoteAddr))
		}
		writeServiceError(w, err, "log in")
		return
	}

	SetSessionCookie(w, r, h.Cfg, result.Session)
	if result.Token != nil {
		SetRememberCookies(w, r, h.Cfg, result.Token)
	} else {
		ClearRememberCookies(w, r, h.Cfg)
	}

	WriteJSON(w, AuthResponse{
		User:      newUserResponse(result.User),
		CSRFToken: result.Session.CSRFToken,
	}, http.StatusOK)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	// check method
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	caller := models.CallerFromContext(r.Context())
	if err := h.AuthService.Logout(r.Context(), caller); err != nil {
		logger.ErrorWithFields("Failed to log out", err, logger.WithUserID(caller.UserID))
		WriteError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	ClearSessionCookie(w, r, h.Cfg)
	ClearRememberCookies(w, r, h.Cfg)
	w.WriteHeader(http.StatusNoContent)
}
