package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/msgboard/msgboard/backend/internal/setup"
	mw "github.com/msgboard/msgboard/shared/middleware"
	"github.com/msgboard/msgboard/shared/middleware/metrics"
)

// New creates the API router.
// Only thread and reply posts are rate limited, per client IP.
func New(deps *setup.Dependencies) http.Handler {
	cfg := deps.Config.Public
	h := deps.Handler

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(metrics.New(deps.Registry))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CorsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))
	r.Use(mw.SecurityHeaders(cfg.SecureCookies, mw.APIContentSecurityPolicy))

	limitPosts := func(next http.HandlerFunc) http.Handler {
		if deps.PostLimiter == nil {
			return next
		}
		return mw.RateLimit(deps.PostLimiter, mw.GetIP)(next)
	}

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/boards", h.GetBoards)
		r.Post("/boards", h.CreateBoard)

		r.Route("/threads/{board}", func(r chi.Router) {
			r.Method(http.MethodPost, "/", limitPosts(h.CreateThread))
			r.Get("/", h.GetThreads)
			r.Put("/", h.ReportThread)
			r.Delete("/", h.DeleteThread)
		})

		r.Route("/replies/{board}", func(r chi.Router) {
			r.Method(http.MethodPost, "/", limitPosts(h.CreateReply))
			r.Get("/", h.GetThread)
			r.Put("/", h.ReportReply)
			r.Delete("/", h.DeleteReply)
		})
	})

	return r
}
