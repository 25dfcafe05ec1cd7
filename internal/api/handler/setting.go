package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightwave/profiler/internal/api/middleware"
	"github.com/brightwave/profiler/internal/api/response"
	"github.com/brightwave/profiler/internal/api/validation"
	"github.com/brightwave/profiler/internal/settings"
)

type setConfigurationRequest struct {
	Key           string `json:"key"`
	Value         string `json:"value"`
	WriteOnly     bool   `json:"writeOnly"`
	SuperuserOnly bool   `json:"superuserOnly"`
}

type configurationResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SettingHandler handles the gated configuration store endpoints.
type SettingHandler struct {
	repo settings.Repository
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(repo settings.Repository) *SettingHandler {
	return &SettingHandler{repo: repo}
}

// Set handles PUT /api/config.
func (h *SettingHandler) Set(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req setConfigurationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateSetConfigurationRequest(validation.SetConfigurationRequest{Key: req.Key})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	s := &settings.Setting{
		Key:           req.Key,
		Value:         req.Value,
		WriteOnly:     req.WriteOnly,
		SuperuserOnly: req.SuperuserOnly,
	}

	if err := h.repo.Upsert(r.Context(), s); err != nil {
		slog.Error("failed to store configuration", "error", err, "key", req.Key)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store configuration", requestID)
		return
	}

	response.Success(w, http.StatusOK, configurationResponse{Key: s.Key, Value: s.Value}, requestID)
}

// Get handles GET /api/config/{key}. Write-only keys never read back;
// superuser-only keys read back only for superusers.
func (h *SettingHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	key := chi.URLParam(r, "key")

	actor := middleware.GetActor(r.Context())
	superuser := actor.Account != nil && actor.Account.IsSuperuser

	s, err := settings.Read(r.Context(), h.repo, key, superuser)
	if err != nil {
		switch {
		case errors.Is(err, settings.ErrSettingNotFound):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Configuration key not found", requestID)
		case errors.Is(err, settings.ErrWriteOnly):
			response.Err(w, http.StatusMethodNotAllowed, "WRITE_ONLY", "Configuration key is write-only", requestID)
		case errors.Is(err, settings.ErrSuperuserOnly):
			response.Err(w, http.StatusForbidden, "FORBIDDEN", "Superuser access required", requestID)
		default:
			slog.Error("failed to read configuration", "error", err, "key", key)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read configuration", requestID)
		}
		return
	}

	response.Success(w, http.StatusOK, configurationResponse{Key: s.Key, Value: s.Value}, requestID)
}
