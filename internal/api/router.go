package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/gray-logic-extensions/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Handle("/metrics", promhttp.Handler())

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Route("/mixins", func(r chi.Router) {
				r.With(s.requirePermission(auth.PermSettingsRead)).Get("/", s.handleListMixins)
				r.With(s.requirePermission(auth.PermSettingsRead)).Get("/{id}/settings", s.handleGetSettings)
				r.With(s.requirePermission(auth.PermSettingsWrite)).Put("/{id}/settings", s.handlePutSetting)
			})

			if s.storage != nil {
				r.Route("/storage", func(r chi.Router) {
					r.Use(s.requirePermission(auth.PermStorageManage))
					r.Get("/", s.handleListStorage)
					r.Delete("/{nativeID}", s.handlePurgeStorage)
				})
			}
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"mixins":  len(s.provider.IDs()),
	})
}
