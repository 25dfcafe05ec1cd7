package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/brightwave/profiler/internal/api/middleware"
	"github.com/brightwave/profiler/internal/api/response"
	"github.com/brightwave/profiler/internal/catalog"
)

// PracticeHandler serves raw practice recommendation trees.
type PracticeHandler struct {
	store *catalog.Store
}

// NewPracticeHandler creates a new PracticeHandler.
func NewPracticeHandler(store *catalog.Store) *PracticeHandler {
	return &PracticeHandler{store: store}
}

// Get handles GET /api/practices/{filename}. The .json extension is
// optional; the file is returned as-is after a JSON validity check.
func (h *PracticeHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	filename := chi.URLParam(r, "filename")

	raw, err := h.store.RawPractice(filename)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrBadFilename):
			response.Err(w, http.StatusBadRequest, "INVALID_FILENAME", "Invalid practice filename", requestID)
		case errors.Is(err, os.ErrNotExist):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Practice file not found", requestID)
		default:
			slog.Error("failed to read practice file", "error", err, "filename", filename)
			response.Err(w, http.StatusInternalServerError, "CATALOG_UNAVAILABLE", "Practice file unavailable", requestID)
		}
		return
	}

	response.Success(w, http.StatusOK, raw, requestID)
}
