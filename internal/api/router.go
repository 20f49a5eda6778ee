package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/meur/dattebayo/internal/catalog"
	"github.com/meur/dattebayo/internal/detail"
	"github.com/meur/dattebayo/internal/models"
	"github.com/meur/dattebayo/internal/session"
)

// Catalog is the remote catalog as the handlers use it.
type Catalog interface {
	FetchPage(ctx context.Context, collection string, page, limit int) (catalog.Page, error)
	FetchByID(ctx context.Context, collection string, id int) (models.Entity, error)
}

// PreferenceStore persists the shared UI preferences per browser session.
type PreferenceStore interface {
	LoadPreferences(ctx context.Context, sessionID string) (models.Preferences, error)
	SavePreferences(ctx context.Context, sessionID string, p models.Preferences) error
}

// Options are the server dependencies.
type Options struct {
	Store          PreferenceStore
	Catalog        Catalog
	Sessions       *session.Manager
	Logger         *slog.Logger
	Metrics        *Metrics
	AllowedOrigins []string
}

// Server holds the HTTP server dependencies
type Server struct {
	store    PreferenceStore
	catalog  Catalog
	resolver *detail.Resolver
	sessions *session.Manager
	logger   *slog.Logger
	metrics  *Metrics
	origins  []string
	router   chi.Router
}

// New creates a new API server
func New(opts Options) *Server {
	s := &Server{
		store:    opts.Store,
		catalog:  opts.Catalog,
		resolver: detail.New(opts.Catalog),
		sessions: opts.Sessions,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		origins:  opts.AllowedOrigins,
		router:   chi.NewRouter(),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Router exposes the router so callers can mount extra handlers.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "HX-Request", "HX-Target", "HX-Trigger", "HX-Current-URL"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.router.Use(s.withSession)
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleHome)
	s.router.Post("/preferences", s.handleUpdatePreferences)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/collections", s.handleAPICollections)
		r.Get("/preferences", s.handleAPIGetPreferences)
		r.Put("/preferences", s.handleUpdatePreferences)
		r.Get("/{collection}", s.handleAPIPage)
		r.Get("/{collection}/view", s.handleAPIView)
		r.Get("/{collection}/{id}", s.handleAPIDetail)
	})

	// Health check
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	// Collection views
	s.router.Route("/{collection}", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Get("/items", s.handleListItems)
		r.Post("/retry", s.handleRetry)
		r.Get("/{id}", s.handleDetail)
	})
}

// --- Response helpers ---

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// respondHTML renders c with status.
func (s *Server) respondHTML(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		s.logger.Error("render failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	}
}
