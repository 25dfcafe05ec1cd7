package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brightwave/profiler/internal/api/middleware"
	"github.com/brightwave/profiler/internal/api/response"
	"github.com/brightwave/profiler/internal/api/validation"
	"github.com/brightwave/profiler/internal/staff"
)

type createUserRequest struct {
	Email     string `json:"email"`
	Superuser bool   `json:"superuser"`
}

type changePasswordRequest struct {
	Password string `json:"password"`
}

type userResponse struct {
	ID                    string `json:"id"`
	Email                 string `json:"email"`
	IsActive              bool   `json:"isActive"`
	IsSuperuser           bool   `json:"isSuperuser"`
	ChangePasswordOnLogin bool   `json:"changePasswordOnLogin"`
	// Password carries a generated plaintext password exactly once, on
	// creation and reset.
	Password string `json:"password,omitempty"`
}

func toUserResponse(a *staff.Account) userResponse {
	return userResponse{
		ID:                    a.ID.String(),
		Email:                 a.Email,
		IsActive:              a.IsActive,
		IsSuperuser:           a.IsSuperuser,
		ChangePasswordOnLogin: a.ChangePasswordOnLogin,
	}
}

// UserHandler handles staff account management endpoints.
type UserHandler struct {
	repo    staff.Repository
	service *staff.Service
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(repo staff.Repository, service *staff.Service) *UserHandler {
	return &UserHandler{repo: repo, service: service}
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	accounts, err := h.repo.List(r.Context())
	if err != nil {
		slog.Error("failed to list staff accounts", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list accounts", requestID)
		return
	}

	items := make([]userResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, toUserResponse(&accounts[i]))
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// Create handles POST /api/users. The generated password is returned once
// and must be changed on first login.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateCreateStaffRequest(validation.CreateStaffRequest{Email: req.Email})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	account, password, err := h.service.CreateAccount(r.Context(), req.Email, req.Superuser)
	if err != nil {
		if errors.Is(err, staff.ErrDuplicateEmail) {
			response.Err(w, http.StatusBadRequest, "DUPLICATE_EMAIL", fmt.Sprintf("An account for %q already exists", req.Email), requestID)
			return
		}
		slog.Error("failed to create staff account", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create account", requestID)
		return
	}

	resp := toUserResponse(account)
	resp.Password = password

	response.Success(w, http.StatusCreated, resp, requestID)
}

// ResetPassword handles PUT /api/users/{id}/reset-password. A fresh random
// password is returned once; the account must change it on next login.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID", requestID)
		return
	}

	account, password, err := h.service.ResetPassword(r.Context(), id)
	if err != nil {
		if errors.Is(err, staff.ErrAccountNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Account not found", requestID)
			return
		}
		slog.Error("failed to reset password", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to reset password", requestID)
		return
	}

	resp := toUserResponse(account)
	resp.Password = password

	response.Success(w, http.StatusOK, resp, requestID)
}

// ChangePassword handles PUT /api/users/me/password. Accounts flagged for a
// forced change reach this endpoint and only this endpoint; any successful
// change clears the flag.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	actor := middleware.GetActor(r.Context())
	if actor.Account == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateChangePasswordRequest(validation.ChangePasswordRequest{Password: req.Password})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	if err := h.service.ChangePassword(r.Context(), actor.Account.ID, req.Password); err != nil {
		slog.Error("failed to change password", "error", err, "id", actor.Account.ID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to change password", requestID)
		return
	}

	response.NoContent(w)
}
