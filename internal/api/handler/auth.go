package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/brightwave/profiler/internal/api/middleware"
	"github.com/brightwave/profiler/internal/api/response"
	"github.com/brightwave/profiler/internal/api/validation"
	"github.com/brightwave/profiler/internal/staff"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken            string `json:"accessToken"`
	TokenType              string `json:"tokenType"`
	PasswordChangeRequired bool   `json:"passwordChangeRequired"`
}

// AuthHandler handles staff login.
type AuthHandler struct {
	service *staff.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *staff.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateLoginRequest(validation.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	tok, account, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, staff.ErrInvalidCredentials) {
			response.Err(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", requestID)
			return
		}
		slog.Error("failed to log in", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to log in", requestID)
		return
	}

	response.Success(w, http.StatusOK, loginResponse{
		AccessToken:            tok,
		TokenType:              "bearer",
		PasswordChangeRequired: account.ChangePasswordOnLogin,
	}, requestID)
}
