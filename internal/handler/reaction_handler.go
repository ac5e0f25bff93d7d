package handlers

import (
	"errors"
	"net/http"
	"ssipfix/internal/logger"
	"ssipfix/internal/models"
	"ssipfix/internal/service"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ReactionRequest struct {
	PostID int64  `validate:"required,gt=0"`
	Action string `validate:"required,oneof=like dislike"`
}

type ReactionResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	Likes        int    `json:"likes"`
	Dislikes     int    `json:"dislikes"`
	UserLiked    bool   `json:"userLiked"`
	UserDisliked bool   `json:"userDisliked"`
}

type reactionFailure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeReactionFailure(w http.ResponseWriter, message string, statusCode int) {
	WriteJSON(w, reactionFailure{Success: false, Message: message}, statusCode)
}

// ToggleReaction handles POST /api/reactions with form fields post_id and action.
func (h *Handlers) ToggleReaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeReactionFailure(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	caller := models.CallerFromContext(r.Context())
	if !caller.Authenticated() {
		writeReactionFailure(w, "You must be logged in to react", http.StatusUnauthorized)
		return
	}

	if err := parseForm(r); err != nil {
		message, status := formFailure(err)
		writeReactionFailure(w, message, status)
		return
	}

	postID, err := strconv.ParseInt(strings.TrimSpace(r.PostFormValue("post_id")), 10, 64)
	if err != nil {
		writeReactionFailure(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	req := ReactionRequest{PostID: postID, Action: strings.TrimSpace(r.PostFormValue("action"))}
	if err := h.Validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && fieldErrs[0].Field() == "Action" {
			writeReactionFailure(w, "Invalid action", http.StatusBadRequest)
		} else {
			writeReactionFailure(w, "Invalid post ID", http.StatusBadRequest)
		}
		return
	}

	kind, err := models.ParseReactionKind(req.Action)
	if err != nil {
		writeReactionFailure(w, "Invalid action", http.StatusBadRequest)
		return
	}

	result, err := h.ReactionService.Toggle(r.Context(), caller.UserID, req.PostID, kind)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			writeReactionFailure(w, "You must be logged in to react", http.StatusUnauthorized)
		case errors.Is(err, service.ErrPostNotFound):
			writeReactionFailure(w, "Post not found", http.StatusNotFound)
		case errors.Is(err, service.ErrInvalidReaction):
			writeReactionFailure(w, "Invalid action", http.StatusBadRequest)
		default:
			logger.ErrorWithFields("Failed to toggle reaction", err,
				logger.WithUserID(caller.UserID), logger.WithPostID(req.PostID))
			writeReactionFailure(w, "Could not save your reaction, please try again", http.StatusInternalServerError)
		}
		return
	}

	WriteJSON(w, ReactionResponse{
		Success:      true,
		Likes:        result.Likes,
		Dislikes:     result.Dislikes,
		UserLiked:    result.UserLiked,
		UserDisliked: result.UserDisliked,
	}, http.StatusOK)
}
