package api

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iconidentify/ytgrab/internal/api/handler"
	mw "github.com/iconidentify/ytgrab/internal/api/middleware"
	"github.com/iconidentify/ytgrab/internal/session"
)

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(
	uiHandler *handler.UIHandler,
	healthHandler *handler.HealthHandler,
	sessions *session.Store,
	cookieName string,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger(logger))
	r.Use(mw.Recovery(logger))
	r.Use(middleware.Timeout(time.Minute))

	// Health endpoints (no session)
	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)

	// Page and form actions, one view-model per browser session
	r.Group(func(r chi.Router) {
		r.Use(mw.Session(sessions, cookieName))

		r.Get("/", uiHandler.Index)
		r.Post("/fetch", uiHandler.Fetch)
		r.Post("/retry", uiHandler.Retry)
		r.Post("/tab", uiHandler.Tab)
		r.Post("/download", uiHandler.Download)
		r.Post("/notice/dismiss", uiHandler.DismissNotice)
		r.Post("/reset", uiHandler.Reset)
	})

	// JSON API; only the caller's state needs a session
	r.Route("/api", func(r chi.Router) {
		r.Use(mw.CORS)
		r.Get("/stats", healthHandler.Stats)
		r.With(mw.Session(sessions, cookieName)).Get("/state", uiHandler.State)
	})

	return r
}
