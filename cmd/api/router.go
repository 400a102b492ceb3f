package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/crucial707/educompanion/internal/auth"
	"github.com/crucial707/educompanion/internal/config"
	"github.com/crucial707/educompanion/internal/handlers"
	"github.com/crucial707/educompanion/internal/middleware"
	"github.com/crucial707/educompanion/internal/repo"
	"github.com/crucial707/educompanion/internal/service"
	"github.com/crucial707/educompanion/internal/session"
	"github.com/crucial707/educompanion/internal/validation"
)

// app holds everything the router needs.
type app struct {
	cfg       config.Config
	logger    *zerolog.Logger
	stores    *repo.Stores
	sessions  *session.Manager
	creds     *service.CredentialService
	docs      *service.DocumentService
	progress  *service.ProgressService
	questions *service.QuestionService
}

func newApp(cfg config.Config, logger *zerolog.Logger, stores *repo.Stores, hasher auth.Hasher, asker service.Asker) (*app, error) {
	docs := service.NewDocumentService(stores.Files)
	creds, err := service.NewCredentialService(stores.Users, docs, hasher)
	if err != nil {
		return nil, fmt.Errorf("credential service: %w", err)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		stores: stores,
		sessions: session.NewManager(stores.Sessions, cfg.SessionSecret, session.Options{
			CookieName: cfg.SessionCookieName,
			TTL:        cfg.SessionTTL,
			Secure:     cfg.SessionCookieSecure,
		}),
		creds:     creds,
		docs:      docs,
		progress:  service.NewProgressService(stores.Users),
		questions: service.NewQuestionService(asker, cfg.GeminiTimeout),
	}, nil
}

// ==========================
// Router
// ==========================
func newRouter(a *app) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer(a.logger))
	r.Use(middleware.RequestLog(a.logger))
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(a.cfg.TLSEnabled()))
	r.Use(middleware.CORS(a.cfg.CORSAllowedOrigins))

	health := &handlers.HealthHandler{Pinger: a.stores.Pinger, Logger: a.logger}
	authH := &handlers.AuthHandler{
		Credentials: a.creds,
		Sessions:    a.sessions,
		Validator:   validation.New(),
		Logger:      a.logger,
	}
	userH := &handlers.UserHandler{Documents: a.docs, Progress: a.progress, Logger: a.logger}
	askH := &handlers.AskHandler{Questions: a.questions, Logger: a.logger}

	r.Get("/", health.Root)
	r.Get("/health", health.Health)
	r.Get("/ready", health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

		// Logout reads the cookie itself and must succeed when the session
		// store cannot.
		r.Post("/logout", authH.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(a.sessions, a.logger))

			r.Post("/register", authH.Register)
			r.Post("/login", authH.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSession)

				r.Get("/user/file", userH.GetFile)
				r.Post("/user/file", userH.UpdateFile)
				r.Get("/user/progress", userH.GetProgress)
				r.Post("/user/progress", userH.UpdateProgress)
				r.Post("/ask", askH.Ask)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.JSONError(w, "not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.JSONError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	return r
}
