package handlers

import (
	"net/http"
	"ssipfix/internal/models"
)

type MediaResponse struct {
	Path     string `json:"path"`
	Category string `json:"category"`
	Size     int64  `json:"size"`
}

// UploadMedia handles POST /api/media with a multipart file and category (photo|video).
func (h *Handlers) UploadMedia(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	caller := models.CallerFromContext(r.Context())
	if !caller.Authenticated() {
		WriteError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	if !parseUploadForm(w, r) {
		return
	}

	upload, err := readUpload(r, "file", mediaCategory(r.FormValue("category")))
	if err != nil {
		WriteError(w, "Could not read uploaded file", http.StatusBadRequest)
		return
	}
	if upload == nil {
		WriteError(w, "No file uploaded", http.StatusBadRequest)
		return
	}

	asset, err := h.MediaService.Validate(r.Context(), upload.Data, upload.Filename, upload.Category)
	if err != nil {
		writeServiceError(w, err, "store media")
		return
	}

	WriteJSON(w, MediaResponse{
		Path:     asset.Path,
		Category: string(asset.Category),
		Size:     asset.SizeBytes,
	}, http.StatusCreated)
}
