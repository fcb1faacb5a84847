package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/taskmanager/taskmanager-go/internal/config"
	"github.com/taskmanager/taskmanager-go/internal/middleware"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	System *SystemHandler
	Auth   *AuthHandler
	Tasks  *TaskHandler
}

// NewRouter wires every route. ctx bounds the rate limiter's background
// cleanup.
func NewRouter(ctx context.Context, cfg config.ServerConfig, h Handlers, tokens middleware.TokenVerifier) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", h.System.HandleRoot)
	r.Get("/health", h.System.HandleHealth)

	session := middleware.SessionAuth(tokens)

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst))
			r.Post("/", h.Auth.HandleRegister)
			r.Post("/token", h.Auth.HandleLogin)
		})
		r.Post("/logout", h.Auth.HandleLogout)
		r.With(session).Get("/me", h.Auth.HandleMe)
	})

	r.Route("/taskmanager", func(r chi.Router) {
		r.Use(session)
		r.Get("/tasks", h.Tasks.HandleList)
		r.Post("/", h.Tasks.HandleCreate)
		r.Get("/{taskID}", h.Tasks.HandleGet)
		r.Put("/{taskID}", h.Tasks.HandleUpdate)
		r.Patch("/{taskID}", h.Tasks.HandleUpdate)
		r.Delete("/{taskID}", h.Tasks.HandleDelete)
	})

	return r
}
