package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/meur/dattebayo/internal/api"
	"github.com/meur/dattebayo/internal/catalog"
	"github.com/meur/dattebayo/internal/config"
	"github.com/meur/dattebayo/internal/session"
	"github.com/meur/dattebayo/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Parse flags
	port := flag.String("port", cfg.Port, "Server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	apiURL := flag.String("api", cfg.APIBaseURL, "Catalog API base URL")
	flag.Parse()

	logger := cfg.Logger()
	slog.SetDefault(logger)

	// Initialize storage
	store, err := storage.New(*dbPath)
	if err != nil {
		logger.Error("failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := api.NewMetrics(reg)

	client := catalog.New(*apiURL,
		catalog.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		catalog.WithLogger(logger),
		catalog.WithMetrics(catalog.NewMetrics(reg)),
	)
	sessions := session.NewManager(session.NewFactory(client, logger, metrics.ObserveLoad))
	defer sessions.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go sessions.Run(ctx, time.Minute, cfg.SessionIdle, logger)

	srv := api.New(api.Options{
		Store:          store,
		Catalog:        client,
		Sessions:       sessions,
		Logger:         logger,
		Metrics:        metrics,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	// Serve stylesheets and images for production deployment
	if cfg.StaticDir != "" {
		FileServer(srv.Router(), "/static", http.Dir(cfg.StaticDir))
	}

	httpServer := &http.Server{
		Addr:              ":" + *port,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", slog.String("error", err.Error()))
		}
	}()

	logger.Info("dattebayo viewer starting",
		slog.String("addr", "http://localhost:"+*port),
		slog.String("db", *dbPath),
		slog.String("api", *apiURL))

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// FileServer conveniently sets up a http.FileServer handler to serve
// static files from a http.FileSystem.
func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit URL parameters.")
	}

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", 301).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, func(w http.ResponseWriter, req *http.Request) {
		rctx := chi.RouteContext(req.Context())
		pathPrefix := strings.TrimSuffix(rctx.RoutePattern(), "/*")
		fs := http.StripPrefix(pathPrefix, http.FileServer(root))
		fs.ServeHTTP(w, req)
	})
}
