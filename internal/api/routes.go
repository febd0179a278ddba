package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/openmusic/playlists-api/internal/pkg/logger"
)

var log = logger.Component("api")

// Authenticator wraps protected routes. auth.Verifier implements it.
type Authenticator interface {
	RequireAuth(next http.Handler) http.Handler
}

// RouterOptions configures cross-cutting middleware.
type RouterOptions struct {
	RequestTimeout time.Duration
	AllowedOrigins []string
}

// SetupRoutes builds the router. /health is public; everything else requires
// a bearer token.
func SetupRoutes(h *Handlers, authn Authenticator, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{DataSourceHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Group(func(r chi.Router) {
		r.Use(authn.RequireAuth)

		r.Route("/playlists", func(r chi.Router) {
			r.Post("/", h.CreatePlaylist)
			r.Get("/", h.ListPlaylists)
			r.Delete("/{id}", h.DeletePlaylist)
			r.Post("/{id}/songs", h.AddSong)
			r.Get("/{id}/songs", h.GetSongs)
			r.Delete("/{id}/songs", h.RemoveSong)
		})

		r.Post("/collaborations", h.AddCollaborator)
		r.Delete("/collaborations", h.RemoveCollaborator)

		r.Post("/export/playlists/{id}", h.ExportPlaylist)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
