package handlers

import (
	"net/http"
	"ssipfix/internal/logger"
)

// HealthHandler reports 503 while any backing store is unreachable.
func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status, err := h.TablesService.Health(r.Context())
	if err != nil {
		logger.WarnWithFields("Health check failed", err)
		WriteJSON(w, status, http.StatusServiceUnavailable)
		return
	}

	WriteJSON(w, status, http.StatusOK)
}
