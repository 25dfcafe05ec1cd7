// Package api wires the HTTP surface: routing, middleware, handlers.
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/brightwave/profiler/internal/api/handler"
	"github.com/brightwave/profiler/internal/api/middleware"
	"github.com/brightwave/profiler/internal/authz"
	"github.com/brightwave/profiler/internal/catalog"
	"github.com/brightwave/profiler/internal/group"
	"github.com/brightwave/profiler/internal/profile"
	"github.com/brightwave/profiler/internal/settings"
	"github.com/brightwave/profiler/internal/staff"
	"github.com/brightwave/profiler/internal/token"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DB              handler.Pinger
	Version         string
	Gate            *authz.Gate
	Codec           *token.Codec
	StaffRepo       staff.Repository
	StaffService    *staff.Service
	Groups          group.Repository
	Profiles        profile.Repository
	ProfilerTypes   catalog.Repository
	Catalog         *catalog.Store
	Settings        settings.Repository
	ProfileTokenTTL time.Duration
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.DB, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	authHandler := handler.NewAuthHandler(deps.StaffService)
	profileHandler := handler.NewProfileHandler(deps.Profiles, deps.Groups, deps.ProfilerTypes, deps.Catalog, deps.Codec, deps.ProfileTokenTTL)
	groupHandler := handler.NewGroupHandler(deps.Groups, deps.Profiles, deps.ProfilerTypes, deps.Catalog)
	typeHandler := handler.NewProfilerTypeHandler(deps.ProfilerTypes, deps.Catalog)
	practiceHandler := handler.NewPracticeHandler(deps.Catalog)
	userHandler := handler.NewUserHandler(deps.StaffRepo, deps.StaffService)
	settingHandler := handler.NewSettingHandler(deps.Settings)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.ResolveActor(deps.Gate))

		r.Get("/", handler.Welcome)
		r.Post("/auth/login", authHandler.Login)

		// Mixed-credential endpoints apply their own per-actor rules.
		r.Route("/profile", func(r chi.Router) {
			r.Post("/", profileHandler.Create)
			r.Get("/{id}", profileHandler.Get)
			r.Post("/{id}/answer", profileHandler.SubmitAnswer)
			r.Put("/{id}/name", profileHandler.UpdateName)
			r.Put("/{id}/complete", profileHandler.Complete)
			r.With(middleware.RequireTeacher()).Delete("/{id}", profileHandler.Delete)
		})

		r.Get("/profiler-type/{name}", typeHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireTeacher())

			r.Get("/profiler-type", typeHandler.List)
			r.Get("/practices/{filename}", practiceHandler.Get)
			r.Get("/config/{key}", settingHandler.Get)

			r.Route("/groups", func(r chi.Router) {
				r.Get("/", groupHandler.List)
				r.Post("/", groupHandler.Create)
				r.Get("/{name}", groupHandler.Get)
				r.Put("/{name}", groupHandler.Update)
				r.Post("/{name}/regenerate-token", groupHandler.RegenerateToken)
				r.Delete("/{name}", groupHandler.Delete)
			})
		})

		r.With(middleware.RequireTeacherPendingPassword()).Put("/users/me/password", userHandler.ChangePassword)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSuperuser())

			r.Get("/users", userHandler.List)
			r.Post("/users", userHandler.Create)
			r.Put("/users/{id}/reset-password", userHandler.ResetPassword)
			r.Put("/config", settingHandler.Set)
		})
	})

	return r
}
