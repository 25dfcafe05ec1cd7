package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brightwave/profiler/internal/api/middleware"
	"github.com/brightwave/profiler/internal/api/response"
	"github.com/brightwave/profiler/internal/api/validation"
	"github.com/brightwave/profiler/internal/authz"
	"github.com/brightwave/profiler/internal/catalog"
	"github.com/brightwave/profiler/internal/group"
	"github.com/brightwave/profiler/internal/profile"
	"github.com/brightwave/profiler/internal/token"
)

type createProfileRequest struct {
	GroupToken string `json:"groupToken"`
}

type answerRequest struct {
	Question string `json:"question"`
	Score    *int   `json:"score"`
}

type profileNameRequest struct {
	Name string `json:"name"`
}

type answerResponse struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Score    int    `json:"score"`
	Domain   string `json:"domain"`
}

type profileResponse struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Status           string           `json:"status"`
	GroupName        string           `json:"groupName"`
	GroupDisplayAs   string           `json:"groupDisplayAs,omitempty"`
	ProfilerTypeName string           `json:"profilerTypeName"`
	Answers          []answerResponse `json:"answers,omitempty"`
	ProfileToken     string           `json:"profileToken,omitempty"`
}

func toProfileResponse(p *profile.Profile) profileResponse {
	return profileResponse{
		ID:               p.ID,
		Name:             p.Name,
		Status:           p.Status,
		GroupName:        p.GroupName,
		ProfilerTypeName: p.ProfilerTypeName,
	}
}

func toAnswerResponse(a *profile.Answer) answerResponse {
	return answerResponse{
		ID:       a.ID,
		Question: a.Question,
		Score:    a.Score,
		Domain:   a.Domain,
	}
}

// ProfileHandler handles profile lifecycle and answer intake endpoints.
type ProfileHandler struct {
	profiles profile.Repository
	groups   group.Repository
	types    catalog.Repository
	store    *catalog.Store
	codec    *token.Codec
	tokenTTL time.Duration
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles profile.Repository, groups group.Repository, types catalog.Repository, store *catalog.Store, codec *token.Codec, tokenTTL time.Duration) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		groups:   groups,
		types:    types,
		store:    store,
		codec:    codec,
		tokenTTL: tokenTTL,
	}
}

// Create handles POST /api/profile. A valid group access token is the only
// credential; the response carries the capability token for the new profile.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateProfileRequest(validation.CreateProfileRequest{
		GroupToken: req.GroupToken,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	g, err := h.groups.GetByToken(r.Context(), req.GroupToken)
	if err != nil {
		if errors.Is(err, group.ErrGroupNotFound) {
			response.Err(w, http.StatusUnauthorized, "INVALID_GROUP_TOKEN", "Invalid group token", requestID)
			return
		}
		slog.Error("failed to resolve group token", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create profile", requestID)
		return
	}
	if g.Archived {
		// Archived groups stop accepting new profiles; indistinguishable
		// from a bad token.
		response.Err(w, http.StatusUnauthorized, "INVALID_GROUP_TOKEN", "Invalid group token", requestID)
		return
	}

	p := &profile.Profile{
		ID:               uuid.New().String(),
		Name:             "",
		GroupName:        g.Name,
		ProfilerTypeName: g.ProfilerTypeName,
		Status:           profile.StatusIncomplete,
	}

	if err := h.profiles.Create(r.Context(), p); err != nil {
		slog.Error("failed to create profile", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create profile", requestID)
		return
	}

	if !g.HasProfiles {
		if err := h.groups.MarkHasProfiles(r.Context(), g.Name); err != nil {
			slog.Error("failed to mark group as having profiles", "error", err, "group", g.Name)
		}
	}

	capToken, err := h.codec.Issue(p.ID, nil, h.tokenTTL)
	if err != nil {
		slog.Error("failed to issue profile token", "error", err, "profileId", p.ID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create profile", requestID)
		return
	}

	resp := toProfileResponse(p)
	resp.GroupDisplayAs = g.DisplayAs
	resp.ProfileToken = capToken

	response.Success(w, http.StatusCreated, resp, requestID)
}

// Get handles GET /api/profile/{id}. Visibility is status-gated per actor:
// parents see their Incomplete profile, teachers see Complete ones. A
// profile in the wrong status reads as absent.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")

	p, ok := h.loadForActor(w, r, id)
	if !ok {
		return
	}

	answers, err := h.profiles.ListAnswers(r.Context(), p.ID)
	if err != nil {
		slog.Error("failed to list answers", "error", err, "profileId", p.ID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load profile", requestID)
		return
	}

	resp := toProfileResponse(p)
	resp.Answers = make([]answerResponse, 0, len(answers))
	for i := range answers {
		resp.Answers = append(resp.Answers, toAnswerResponse(&answers[i]))
	}

	if g, err := h.groups.GetByName(r.Context(), p.GroupName); err == nil {
		resp.GroupDisplayAs = g.DisplayAs
	} else if !errors.Is(err, group.ErrGroupNotFound) {
		slog.Error("failed to load profile group", "error", err, "group", p.GroupName)
	}

	response.Success(w, http.StatusOK, resp, requestID)
}

// SubmitAnswer handles POST /api/profile/{id}/answer. Failure modes are
// checked in order: credential, editable profile, catalog, known question.
func (h *ProfileHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")

	if !h.bindParent(w, r, id) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateAnswerRequest(validation.AnswerRequest{
		Question: req.Question,
		Score:    req.Score,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	p, err := h.profiles.GetByIDAndStatus(r.Context(), id, profile.StatusIncomplete)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Profile not found", requestID)
			return
		}
		slog.Error("failed to load profile", "error", err, "profileId", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record answer", requestID)
		return
	}

	def, err := h.loadProfiler(r.Context(), p.ProfilerTypeName)
	if err != nil {
		slog.Error("catalog unavailable during answer intake", "error", err, "profilerType", p.ProfilerTypeName)
		response.Err(w, http.StatusInternalServerError, "CATALOG_UNAVAILABLE", "Profiler definition unavailable", requestID)
		return
	}

	q := def.FindQuestion(req.Question)
	if q == nil {
		response.Err(w, http.StatusBadRequest, "UNKNOWN_QUESTION", "Question is not part of this profiler", requestID)
		return
	}

	a := &profile.Answer{
		ID:        uuid.New().String(),
		ProfileID: p.ID,
		Question:  req.Question,
		Score:     *req.Score,
		Domain:    q.Domain,
	}

	created, err := h.profiles.UpsertAnswer(r.Context(), a)
	if err != nil {
		slog.Error("failed to record answer", "error", err, "profileId", p.ID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record answer", requestID)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	response.Success(w, status, toAnswerResponse(a), requestID)
}

// UpdateName handles PUT /api/profile/{id}/name. Parents rename while
// Incomplete, teachers while Complete.
func (h *ProfileHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")

	status, ok := h.statusForActor(w, r, id)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req profileNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateProfileNameRequest(validation.ProfileNameRequest{Name: req.Name})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	p, err := h.profiles.UpdateName(r.Context(), id, status, req.Name)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Profile not found", requestID)
			return
		}
		slog.Error("failed to rename profile", "error", err, "profileId", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to rename profile", requestID)
		return
	}

	response.Success(w, http.StatusOK, toProfileResponse(p), requestID)
}

// Complete handles PUT /api/profile/{id}/complete. Parent-only; the
// transition is one-way, so an already-Complete profile reads as absent.
func (h *ProfileHandler) Complete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")

	if !h.bindParent(w, r, id) {
		return
	}

	p, err := h.profiles.Complete(r.Context(), id)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Profile not found", requestID)
			return
		}
		slog.Error("failed to complete profile", "error", err, "profileId", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to complete profile", requestID)
		return
	}

	response.Success(w, http.StatusOK, toProfileResponse(p), requestID)
}

// Delete handles DELETE /api/profile/{id}. Teacher-only; the profile's
// answers go with it.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.profiles.Delete(r.Context(), id); err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Profile not found", requestID)
			return
		}
		slog.Error("failed to delete profile", "error", err, "profileId", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete profile", requestID)
		return
	}

	response.NoContent(w)
}

// bindParent enforces that the actor is a parent whose capability token
// names the target profile. Writes the error response on failure.
func (h *ProfileHandler) bindParent(w http.ResponseWriter, r *http.Request, profileID string) bool {
	requestID := middleware.GetRequestID(r.Context())

	err := middleware.GetActor(r.Context()).BindParent(profileID)
	switch {
	case err == nil:
		return true
	case errors.Is(err, authz.ErrTokenMismatch):
		response.Err(w, http.StatusUnauthorized, "TOKEN_MISMATCH", "Profile token does not match this profile", requestID)
	default:
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", requestID)
	}
	return false
}

// statusForActor maps the actor kind to the profile status it may touch:
// parents operate on Incomplete profiles, teachers on Complete ones.
func (h *ProfileHandler) statusForActor(w http.ResponseWriter, r *http.Request, profileID string) (string, bool) {
	requestID := middleware.GetRequestID(r.Context())
	actor := middleware.GetActor(r.Context())

	switch actor.Kind {
	case authz.KindParent:
		if !h.bindParent(w, r, profileID) {
			return "", false
		}
		return profile.StatusIncomplete, true
	case authz.KindTeacher:
		if err := actor.RequireTeacher(false); err != nil {
			if errors.Is(err, authz.ErrPasswordChangeRequired) {
				response.Err(w, http.StatusForbidden, "PASSWORD_CHANGE_REQUIRED", "Password change required before continuing", requestID)
			} else {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", requestID)
			}
			return "", false
		}
		return profile.StatusComplete, true
	default:
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", requestID)
		return "", false
	}
}

// loadForActor loads the target profile in the status the actor is allowed
// to see. Writes the error response on failure.
func (h *ProfileHandler) loadForActor(w http.ResponseWriter, r *http.Request, profileID string) (*profile.Profile, bool) {
	requestID := middleware.GetRequestID(r.Context())

	status, ok := h.statusForActor(w, r, profileID)
	if !ok {
		return nil, false
	}

	p, err := h.profiles.GetByIDAndStatus(r.Context(), profileID, status)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Profile not found", requestID)
			return nil, false
		}
		slog.Error("failed to load profile", "error", err, "profileId", profileID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load profile", requestID)
		return nil, false
	}

	return p, true
}

// loadProfiler resolves a profiler type name to its parsed definition file.
func (h *ProfileHandler) loadProfiler(ctx context.Context, name string) (*catalog.Profiler, error) {
	pt, err := h.types.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return h.store.LoadProfiler(pt.Filename)
}
