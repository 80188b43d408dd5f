package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/pharmacare/pharmacare-backend/pkg/httputil"
	"github.com/pharmacare/pharmacare-backend/pkg/permissions"
)

// PublicRoutes mounts the endpoints reachable without a token. Login is
// throttled per client IP.
func (h *AuthHandler) PublicRoutes(r chi.Router, limiter *httputil.IPRateLimiter) {
	r.With(httputil.RateLimit(limiter)).Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.Refresh)
	r.Post("/auth/logout", h.Logout)
}

// Routes mounts the endpoints for an authenticated caller.
func (h *AuthHandler) Routes(r chi.Router) {
	r.Get("/auth/me", h.Me)
}

// Routes mounts user and role management, which needs users.manage.
func (h *AccountHandler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(httputil.RequirePermission(permissions.UsersManage))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.With(httputil.UUIDParams).Get("/{id}", h.GetUser)
			r.With(httputil.UUIDParams).Put("/{id}", h.UpdateUser)
			r.With(httputil.UUIDParams).Delete("/{id}", h.DeleteUser)
		})
		r.Route("/roles", func(r chi.Router) {
			r.Get("/", h.ListRoles)
			r.Post("/", h.CreateRole)
			r.With(httputil.UUIDParams).Get("/{id}", h.GetRole)
			r.With(httputil.UUIDParams).Put("/{id}", h.UpdateRole)
			r.With(httputil.UUIDParams).Delete("/{id}", h.DeleteRole)
		})
	})
}
