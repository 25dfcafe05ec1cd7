package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightwave/profiler/internal/api/middleware"
	"github.com/brightwave/profiler/internal/api/response"
	"github.com/brightwave/profiler/internal/api/validation"
	"github.com/brightwave/profiler/internal/catalog"
	"github.com/brightwave/profiler/internal/group"
	"github.com/brightwave/profiler/internal/profile"
	"github.com/brightwave/profiler/internal/report"
)

type createGroupRequest struct {
	Name             string `json:"name"`
	DisplayAs        string `json:"displayAs"`
	ProfilerTypeName string `json:"profilerTypeName"`
	Emoji            string `json:"emoji"`
}

type updateGroupRequest struct {
	Name      *string `json:"name"`
	DisplayAs *string `json:"displayAs"`
	Archived  *bool   `json:"archived"`
	Emoji     *string `json:"emoji"`
}

type groupResponse struct {
	Name             string `json:"name"`
	DisplayAs        string `json:"displayAs"`
	Token            string `json:"token"`
	Archived         bool   `json:"archived"`
	ProfilerTypeName string `json:"profilerTypeName"`
	HasProfiles      bool   `json:"hasProfiles"`
	Emoji            string `json:"emoji"`
	ProfileCount     *int   `json:"profileCount,omitempty"`
}

type groupReportResponse struct {
	groupResponse
	Profiles               []report.ProfileScores  `json:"profiles"`
	AggregatedDomainScores map[string]int          `json:"aggregated_domain_scores"`
	Recommendations        []report.Recommendation `json:"recommendations"`
}

func toGroupResponse(g *group.Group) groupResponse {
	return groupResponse{
		Name:             g.Name,
		DisplayAs:        g.DisplayAs,
		Token:            g.Token,
		Archived:         g.Archived,
		ProfilerTypeName: g.ProfilerTypeName,
		HasProfiles:      g.HasProfiles,
		Emoji:            g.Emoji,
	}
}

// GroupHandler handles group CRUD and the group report endpoint.
type GroupHandler struct {
	groups   group.Repository
	profiles profile.Repository
	types    catalog.Repository
	store    *catalog.Store
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groups group.Repository, profiles profile.Repository, types catalog.Repository, store *catalog.Store) *GroupHandler {
	return &GroupHandler{
		groups:   groups,
		profiles: profiles,
		types:    types,
		store:    store,
	}
}

// List handles GET /api/groups.
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	includeArchived := r.URL.Query().Get("includeArchived") == "true"

	groups, err := h.groups.List(r.Context(), includeArchived)
	if err != nil {
		slog.Error("failed to list groups", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list groups", requestID)
		return
	}

	items := make([]groupResponse, 0, len(groups))
	for i := range groups {
		resp := toGroupResponse(&groups[i].Group)
		count := groups[i].ProfileCount
		resp.ProfileCount = &count
		items = append(items, resp)
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// Get handles GET /api/groups/{name}: the group record plus the aggregated
// report over its Complete profiles.
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	name := chi.URLParam(r, "name")

	g, err := h.groups.GetByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, group.ErrGroupNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Group not found", requestID)
			return
		}
		slog.Error("failed to load group", "error", err, "group", name)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load group", requestID)
		return
	}

	profiles, err := h.profiles.ListCompleteByGroup(r.Context(), g.Name)
	if err != nil {
		slog.Error("failed to list group profiles", "error", err, "group", name)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load group", requestID)
		return
	}

	answersByProfile := make(map[string][]profile.Answer, len(profiles))
	for _, p := range profiles {
		answers, err := h.profiles.ListAnswers(r.Context(), p.ID)
		if err != nil {
			slog.Error("failed to list profile answers", "error", err, "profileId", p.ID)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load group", requestID)
			return
		}
		answersByProfile[p.ID] = answers
	}

	agg := report.Aggregate(profiles, answersByProfile)

	count := len(profiles)
	resp := groupReportResponse{
		groupResponse:          toGroupResponse(g),
		Profiles:               agg.Profiles,
		AggregatedDomainScores: agg.DomainScores,
		Recommendations:        h.recommendations(r.Context(), profiles, agg),
	}
	resp.ProfileCount = &count

	response.Success(w, http.StatusOK, resp, requestID)
}

// recommendations derives ranked practice recommendations for the report.
// The profiler type of the first Complete profile is taken for the whole
// group; mixed-type groups are an unsupported configuration. Any catalog
// failure degrades to an empty list without touching the domain scores.
func (h *GroupHandler) recommendations(ctx context.Context, profiles []profile.Profile, agg *report.Aggregation) []report.Recommendation {
	if len(profiles) == 0 {
		return []report.Recommendation{}
	}

	def, tree, err := h.loadCatalog(ctx, profiles[0].ProfilerTypeName)
	if err != nil {
		slog.Warn("catalog unavailable for recommendations", "error", err, "profilerType", profiles[0].ProfilerTypeName)
		return []report.Recommendation{}
	}

	return report.Recommend(def, tree, agg.QuestionTotals)
}

func (h *GroupHandler) loadCatalog(ctx context.Context, typeName string) (*catalog.Profiler, []catalog.PracticeCategory, error) {
	pt, err := h.types.GetByName(ctx, typeName)
	if err != nil {
		return nil, nil, err
	}

	def, err := h.store.LoadProfiler(pt.Filename)
	if err != nil {
		return nil, nil, err
	}

	source := def.PracticeSourceName()
	if source == "" {
		return nil, nil, fmt.Errorf("profiler %s has no practice source", typeName)
	}

	tree, err := h.store.LoadPractice(source)
	if err != nil {
		return nil, nil, err
	}

	return def, tree, nil
}

// Create handles POST /api/groups.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateGroupRequest(validation.CreateGroupRequest{
		Name:             req.Name,
		DisplayAs:        req.DisplayAs,
		ProfilerTypeName: req.ProfilerTypeName,
		Emoji:            req.Emoji,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	if _, err := h.types.GetByName(r.Context(), req.ProfilerTypeName); err != nil {
		if errors.Is(err, catalog.ErrProfilerTypeNotFound) {
			response.Err(w, http.StatusBadRequest, "UNKNOWN_PROFILER_TYPE", fmt.Sprintf("Profiler type %q does not exist", req.ProfilerTypeName), requestID)
			return
		}
		slog.Error("failed to resolve profiler type", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create group", requestID)
		return
	}

	emoji := req.Emoji
	if emoji == "" {
		emoji = group.DefaultEmoji
	}

	g := &group.Group{
		Name:             req.Name,
		DisplayAs:        req.DisplayAs,
		ProfilerTypeName: req.ProfilerTypeName,
		Emoji:            emoji,
	}

	if err := h.groups.Create(r.Context(), g); err != nil {
		if errors.Is(err, group.ErrDuplicateGroupName) {
			response.Err(w, http.StatusBadRequest, "DUPLICATE_NAME", fmt.Sprintf("A group named %q already exists", req.Name), requestID)
			return
		}
		slog.Error("failed to create group", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create group", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toGroupResponse(g), requestID)
}

// Update handles PUT /api/groups/{name}. A rename cascades to all member
// profiles inside one transaction.
func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	name := chi.URLParam(r, "name")

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateUpdateGroupRequest(validation.UpdateGroupRequest{
		Name:  req.Name,
		Emoji: req.Emoji,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	g, err := h.groups.Update(r.Context(), name, group.Update{
		Name:      req.Name,
		DisplayAs: req.DisplayAs,
		Archived:  req.Archived,
		Emoji:     req.Emoji,
	})
	if err != nil {
		if errors.Is(err, group.ErrGroupNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Group not found", requestID)
			return
		}
		if errors.Is(err, group.ErrDuplicateGroupName) {
			response.Err(w, http.StatusBadRequest, "DUPLICATE_NAME", fmt.Sprintf("A group named %q already exists", *req.Name), requestID)
			return
		}
		slog.Error("failed to update group", "error", err, "group", name)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update group", requestID)
		return
	}

	response.Success(w, http.StatusOK, toGroupResponse(g), requestID)
}

// RegenerateToken handles POST /api/groups/{name}/regenerate-token. The old
// access token stops working immediately.
func (h *GroupHandler) RegenerateToken(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	name := chi.URLParam(r, "name")

	g, err := h.groups.RegenerateToken(r.Context(), name)
	if err != nil {
		if errors.Is(err, group.ErrGroupNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Group not found", requestID)
			return
		}
		slog.Error("failed to regenerate group token", "error", err, "group", name)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to regenerate token", requestID)
		return
	}

	response.Success(w, http.StatusOK, toGroupResponse(g), requestID)
}

// Delete handles DELETE /api/groups/{name}. Member profiles are not
// cascaded; they keep their group reference.
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	name := chi.URLParam(r, "name")

	if err := h.groups.Delete(r.Context(), name); err != nil {
		if errors.Is(err, group.ErrGroupNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Group not found", requestID)
			return
		}
		slog.Error("failed to delete group", "error", err, "group", name)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete group", requestID)
		return
	}

	response.NoContent(w)
}
