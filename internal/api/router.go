package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jidware/jidcore/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Health check (no auth required)
	r.Get("/health", s.handleHealth)

	// Login endpoints (no auth required)
	r.Post("/admin/login", s.handleAdminLogin)
	r.Post("/location/{location}/user/login", s.handleUserLogin)

	// Token introspection: reports why a presented token fails without
	// demanding any particular role.
	r.Get("/token/verify", s.handleVerifyToken)

	// Admin-only routes
	r.Group(func(r chi.Router) {
		r.Use(s.requireRole(auth.RoleAdmin))
		r.Get("/admin/me", s.handleMe)
	})

	// User-only routes
	r.Group(func(r chi.Router) {
		r.Use(s.requireRole(auth.RoleUser))
		r.Get("/user/me", s.handleMe)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err != nil {
			s.logger.Error("database health check failed", "error", err)
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"version": s.version,
	})
}
