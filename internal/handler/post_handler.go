package handlers

import (
	"errors"
	"io"
	"net/http"
	"ssipfix/internal/models"
	"ssipfix/internal/service"
	"strconv"

	"github.com/gorilla/mux"
)

const multipartMemory = 8 << 20

type PostResponse struct {
	*models.Post
	Comments     []models.Comment `json:"comments"`
	UserLiked    bool             `json:"userLiked"`
	UserDisliked bool             `json:"userDisliked"`
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseUploadForm accepts both multipart and url-encoded bodies.
// parseForm reads both url-encoded and multipart bodies into r.PostForm.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	return err
}

func formFailure(err error) (string, int) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return "Request body too large", http.StatusRequestEntityTooLarge
	}
	return "Invalid form data", http.StatusBadRequest
}

func parseUploadForm(w http.ResponseWriter, r *http.Request) bool {
	if err := parseForm(r); err != nil {
		message, status := formFailure(err)
		WriteError(w, message, status)
		return false
	}
	return true
}

// readUpload returns nil when the form carries no file under field.
func readUpload(r *http.Request, field string, category models.MediaCategory) (*service.MediaUpload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	// one byte past the largest limit is enough for the size check to reject
	data, err := io.ReadAll(io.LimitReader(file, service.MaxVideoBytes+1))
	if err != nil {
		return nil, err
	}

	return &service.MediaUpload{Data: data, Filename: header.Filename, Category: category}, nil
}

func mediaCategory(value string) models.MediaCategory {
	if value == "" {
		return models.MediaPhoto
	}
	return models.MediaCategory(value)
}

// CreatePost handles POST /api/posts: content, optional media file and media_type (photo|video).
func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !parseUploadForm(w, r) {
		return
	}

	upload, err := readUpload(r, "media", mediaCategory(r.FormValue("media_type")))
	if err != nil {
		WriteError(w, "Could not read uploaded file", http.StatusBadRequest)
		return
	}

	caller := models.CallerFromContext(r.Context())
	post, err := h.PostService.CreatePost(r.Context(), caller.UserID, r.FormValue("content"), upload)
	if err != nil {
		writeServiceError(w, err, "create post")
		return
	}

	WriteJSON(w, post, http.StatusCreated)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	postID, ok := pathID(r)
	if !ok {
		WriteError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	caller := models.CallerFromContext(r.Context())
	view, err := h.PostService.GetPost(r.Context(), caller.UserID, postID)
	if err != nil {
		writeServiceError(w, err, "load post")
		return
	}

	response := PostResponse{Post: view.Post, Comments: view.Comments}
	if response.Comments == nil {
		response.Comments = []models.Comment{}
	}
	if view.Reactions != nil {
		response.LikeCount = view.Reactions.Likes
		response.DislikeCount = view.Reactions.Dislikes
		response.UserLiked = view.Reactions.UserLiked
		response.UserDisliked = view.Reactions.UserDisliked
	}

	WriteJSON(w, response, http.StatusOK)
}

func (h *Handlers) ListPosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	posts, err := h.PostService.ListPosts(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err, "list posts")
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}

	WriteJSON(w, posts, http.StatusOK)
}

// AddComment handles POST /api/posts/{id}/comments: content and an optional photo file.
func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	postID, ok := pathID(r)
	if !ok {
		WriteError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	if !parseUploadForm(w, r) {
		return
	}

	photo, err := readUpload(r, "photo", models.MediaPhoto)
	if err != nil {
		WriteError(w, "Could not read uploaded file", http.StatusBadRequest)
		return
	}

	caller := models.CallerFromContext(r.Context())
	comment, err := h.PostService.AddComment(r.Context(), caller.UserID, postID, r.FormValue("content"), photo)
	if err != nil {
		writeServiceError(w, err, "add comment")
		return
	}

	WriteJSON(w, comment, http.StatusCreated)
}
