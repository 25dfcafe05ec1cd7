package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightwave/profiler/internal/api/middleware"
	"github.com/brightwave/profiler/internal/api/response"
	"github.com/brightwave/profiler/internal/authz"
	"github.com/brightwave/profiler/internal/catalog"
)

type questionResponse struct {
	Question string   `json:"question"`
	Domain   string   `json:"domain"`
	Practice []string `json:"practice,omitempty"`
}

type profilerTypeResponse struct {
	Name              string             `json:"name"`
	Questions         []string           `json:"questions"`
	QuestionsExtended []questionResponse `json:"questions_extended"`
	AnswerOptions     []json.RawMessage  `json:"answerOptions"`
	Domains           []string           `json:"domains"`
	PracticeSource    string             `json:"practiceSource,omitempty"`
}

// ProfilerTypeHandler serves the questionnaire catalog.
type ProfilerTypeHandler struct {
	types catalog.Repository
	store *catalog.Store
}

// NewProfilerTypeHandler creates a new ProfilerTypeHandler.
func NewProfilerTypeHandler(types catalog.Repository, store *catalog.Store) *ProfilerTypeHandler {
	return &ProfilerTypeHandler{types: types, store: store}
}

// List handles GET /api/profiler-type.
func (h *ProfilerTypeHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	types, err := h.types.List(r.Context())
	if err != nil {
		slog.Error("failed to list profiler types", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list profiler types", requestID)
		return
	}

	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, t.Name)
	}

	response.Success(w, http.StatusOK, names, requestID)
}

// Get handles GET /api/profiler-type/{name}. Parents filling in a profile
// and teachers alike need the questionnaire; anonymous callers do not.
func (h *ProfilerTypeHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	name := chi.URLParam(r, "name")

	if middleware.GetActor(r.Context()).Kind == authz.KindAnonymous {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", requestID)
		return
	}

	pt, err := h.types.GetByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, catalog.ErrProfilerTypeNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Profiler type not found", requestID)
			return
		}
		slog.Error("failed to resolve profiler type", "error", err, "name", name)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load profiler type", requestID)
		return
	}

	def, err := h.store.LoadProfiler(pt.Filename)
	if err != nil {
		slog.Error("failed to load profiler definition", "error", err, "filename", pt.Filename)
		response.Err(w, http.StatusInternalServerError, "CATALOG_UNAVAILABLE", "Profiler definition unavailable", requestID)
		return
	}

	questions := make([]string, 0, len(def.Questions))
	extended := make([]questionResponse, 0, len(def.Questions))
	for _, q := range def.Questions {
		questions = append(questions, q.Question)
		extended = append(extended, questionResponse{
			Question: q.Question,
			Domain:   q.Domain,
			Practice: q.Practice,
		})
	}

	response.Success(w, http.StatusOK, profilerTypeResponse{
		Name:              pt.Name,
		Questions:         questions,
		QuestionsExtended: extended,
		AnswerOptions:     def.AnswerOptions,
		Domains:           def.Domains(),
		PracticeSource:    def.PracticeSourceName(),
	}, requestID)
}
