package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"raciones-dashboard/internal/config"
	"raciones-dashboard/internal/handlers"
	"raciones-dashboard/internal/middleware"
	"raciones-dashboard/internal/pipeline"
	"raciones-dashboard/internal/source"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Open data source
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	src, closeSource, err := source.Open(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("Failed to open %s source: %v", cfg.DataSource, err)
	}
	defer closeSource()

	p, err := pipeline.FromConfig(src, cfg)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	// Initialize handlers
	handlers.SetConfig(cfg)

	// Parse templates early so a broken template fails startup
	if err := handlers.InitTemplates(); err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	authHandler := handlers.NewAuthHandler(cfg)
	dashboardHandler := handlers.NewDashboardHandler(cfg, p)
	protect := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireAuth(next, cfg.SessionSecret, cfg.AuthEnabled())
	}

	mux := http.NewServeMux()

	requestLogMiddleware := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next(w, r)
			cfg.Debugf("REQUEST: %s %s (%v)", r.Method, r.URL.RequestURI(), time.Since(start))
		}
	}

	// exact wraps a handler so that only the registered path matches.
	exact := func(path string, next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != path {
				http.NotFound(w, r)
				return
			}
			next(w, r)
		}
	}

	// Public routes
	mux.HandleFunc("/health", requestLogMiddleware(handlers.Health))
	mux.HandleFunc("/login", requestLogMiddleware(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			authHandler.Login(w, r)
		} else {
			authHandler.LoginForm(w, r)
		}
	}))
	mux.HandleFunc("/logout", requestLogMiddleware(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodPost {
			authHandler.Logout(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}))
	cfg.Debugf("ROUTE REGISTERED: /health, /login, /logout")

	// Protected routes
	mux.HandleFunc("/program", requestLogMiddleware(exact("/program", protect(dashboardHandler.Program))))
	mux.HandleFunc("/api/summary", requestLogMiddleware(protect(dashboardHandler.APISummary)))
	mux.HandleFunc("/api/alerts", requestLogMiddleware(protect(dashboardHandler.APIAlerts)))
	mux.HandleFunc("/api/trend", requestLogMiddleware(protect(dashboardHandler.APITrend)))
	mux.HandleFunc("/", requestLogMiddleware(exact("/", protect(dashboardHandler.Overview))))
	cfg.Debugf("ROUTE REGISTERED: /, /program, /api/summary, /api/alerts, /api/trend (auth=%v)", cfg.AuthEnabled())

	for _, g := range p.Groups() {
		log.Printf("Program %s reads sheet %d", g.Program.Label(), g.SheetIndex)
	}
	if !cfg.AuthEnabled() {
		log.Printf("WARNING: DASHBOARD_PASSWORD_HASH is not set; the dashboard is open")
	}

	log.Printf("Server starting on http://localhost:%s (source=%s)", cfg.Port, src.Name())
	if err := http.ListenAndServe(":"+cfg.Port, mux); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
