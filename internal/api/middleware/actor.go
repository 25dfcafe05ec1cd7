package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/brightwave/profiler/internal/api/response"
	"github.com/brightwave/profiler/internal/authz"
)

const actorKey contextKey = "actor"

// ResolveActor is middleware that resolves the request's credential into an
// authz.Actor and stores it in the context. A presented-but-invalid
// capability token fails the request outright; everything else falls
// through so each endpoint can apply its own requirement.
func ResolveActor(gate *authz.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			actor, err := gate.Resolve(r)
			if err != nil {
				if errors.Is(err, authz.ErrInvalidToken) {
					response.Err(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid profile token", requestID)
					return
				}
				response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Authentication failed", requestID)
				return
			}

			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetActor retrieves the resolved Actor from the request context.
func GetActor(ctx context.Context) authz.Actor {
	if a, ok := ctx.Value(actorKey).(authz.Actor); ok {
		return a
	}
	return authz.Actor{Kind: authz.KindAnonymous}
}

// RequireTeacher returns middleware that rejects requests whose actor is
// not a staff session fit for protected operations.
func RequireTeacher() func(http.Handler) http.Handler {
	return requireTeacher(false)
}

// RequireTeacherPendingPassword is RequireTeacher for the password change
// endpoint: accounts flagged for a forced password change stay allowed.
func RequireTeacherPendingPassword() func(http.Handler) http.Handler {
	return requireTeacher(true)
}

func requireTeacher(allowPendingPassword bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !checkTeacher(w, r, GetActor(r.Context()).RequireTeacher(allowPendingPassword)) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSuperuser returns middleware that additionally demands the
// superuser flag.
func RequireSuperuser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !checkTeacher(w, r, GetActor(r.Context()).RequireSuperuser()) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func checkTeacher(w http.ResponseWriter, r *http.Request, err error) bool {
	if err == nil {
		return true
	}

	requestID := GetRequestID(r.Context())
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", requestID)
	case errors.Is(err, authz.ErrPasswordChangeRequired):
		response.Err(w, http.StatusForbidden, "PASSWORD_CHANGE_REQUIRED", "Password change required before continuing", requestID)
	case errors.Is(err, authz.ErrSuperuserRequired):
		response.Err(w, http.StatusForbidden, "FORBIDDEN", "Superuser access required", requestID)
	default:
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Authorization failed", requestID)
	}
	return false
}
