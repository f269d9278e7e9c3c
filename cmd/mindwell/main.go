// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/mindwell/mindwell-go/internal/backend"
	"github.com/mindwell/mindwell-go/internal/broadcast"
	"github.com/mindwell/mindwell-go/internal/cache"
	"github.com/mindwell/mindwell-go/internal/config"
	"github.com/mindwell/mindwell-go/internal/gate"
	"github.com/mindwell/mindwell-go/internal/geoip"
	"github.com/mindwell/mindwell-go/internal/handler"
	"github.com/mindwell/mindwell-go/internal/imaging"
	"github.com/mindwell/mindwell-go/internal/logging"
	"github.com/mindwell/mindwell-go/internal/middleware"
	"github.com/mindwell/mindwell-go/internal/render"
	"github.com/mindwell/mindwell-go/internal/scheduler"
	"github.com/mindwell/mindwell-go/internal/session"
	"github.com/mindwell/mindwell-go/internal/store"
	"github.com/mindwell/mindwell-go/internal/version"
	"github.com/mindwell/mindwell-go/web"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Mindwell - wellness tracking front end\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINDWELL_SESSION_SECRET   Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINDWELL_BACKEND_URL      Wellness API base URL (default: http://localhost:5050)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINDWELL_SESSION_DB_PATH  SQLite session database path (default: ./data/sessions.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINDWELL_SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINDWELL_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINDWELL_REDIS_URL        Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MINDWELL_GEOIP_DB_PATH    GeoLite2 country database for login audit (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		info := version.Get()
		_, _ = fmt.Printf("mindwell %s (commit: %s, built: %s)\n", info.Version, info.GitCommit, info.BuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	// WARN and ERROR records also land in the in-memory ring shown on
	// the admin dashboard.
	eventRing := logging.NewEventRing(cfg.EventLogSize)
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logging.NewEventRingHandler(textHandler, eventRing))
	slog.SetDefault(logger)

	// Session database (flash messages and UI preferences only; the
	// identity itself lives in cookies)
	dbDir := filepath.Dir(cfg.SessionDBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing session database", "path", cfg.SessionDBPath)
	db, err := store.NewDB(cfg.SessionDBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("session database ready")

	sessionManager := session.NewManager(db, cfg.IsDevelopment())

	// Identity plumbing: cookie store as source of truth, hub for
	// user-changed fan-out, synchronizer tying the two together
	cookieStore := session.NewCookieStore(!cfg.IsDevelopment(), 24*time.Hour)
	hub := broadcast.NewHub()
	synchronizer := session.NewSynchronizer(cookieStore, hub)

	// Cache: memory by default, Redis when configured
	cacheConfig := cache.DefaultConfig()
	cacheConfig.RedisURL = cfg.RedisURL
	cacheConfig.Prefix = cfg.CachePrefix
	cacheConfig.DefaultTTL = cfg.CacheTTLDuration()
	cacheConfig.MaxEntries = cfg.CacheMaxSize
	if cfg.UseRedisCache() {
		cacheConfig.Type = "redis"
	}
	cacheBackend, err := cache.New(cacheConfig)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	cacheManager := cache.NewManager(cacheBackend, hub, cfg.CacheTTLDuration(), cfg.CacheTTLDuration())
	defer func() {
		if err := cacheManager.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	slog.Info("cache manager initialized", "backend", cacheConfig.Type)

	// Backend API client
	backendClient := backend.New(cfg.BackendURL, cfg.BackendTimeoutDuration())
	slog.Info("backend client initialized", "url", cfg.BackendURL, "timeout", cfg.BackendTimeoutDuration())

	// GeoIP lookup for login audit events (optional)
	geo := geoip.NewLookup()
	if cfg.GeoIPEnabled() {
		if err := geo.Init(cfg.GeoIPDBPath); err != nil {
			slog.Warn("geoip disabled", "path", cfg.GeoIPDBPath, "error", err)
		} else {
			slog.Info("geoip initialized", "path", cfg.GeoIPDBPath)
		}
	}
	defer func() { _ = geo.Close() }()

	// Template renderer
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	// Brute-force protection and public rate limiting
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	publicRateLimiter := middleware.NewRateLimiter(10.0, 20)

	// Periodic maintenance
	sched := scheduler.New(logger)
	sched.Add(scheduler.Job{Name: "login-protection-cleanup", Spec: "*/10 * * * *", Run: func() error {
		loginProtection.Cleanup()
		return nil
	}})
	sched.Add(scheduler.Job{Name: "rate-limiter-prune", Spec: "0 * * * *", Run: func() error {
		publicRateLimiter.Prune(10000)
		return nil
	}})
	if cfg.GeoIPEnabled() {
		sched.Add(scheduler.Job{Name: "geoip-reload", Spec: "30 3 * * *", Run: geo.Reload})
	}
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Handlers
	images := imaging.NewProcessor()
	pageProvider := handler.NewPageProvider(backendClient, cacheManager, cfg.UsersPageSize)
	identityRefresher := handler.NewIdentityRefresher(backendClient, cacheManager, synchronizer)

	authHandler := handler.NewAuthHandler(backendClient, renderer, synchronizer, loginProtection, geo)
	wellnessHandler := handler.NewWellnessHandler(backendClient, renderer, cookieStore)
	settingsHandler := handler.NewSettingsHandler(backendClient, renderer, synchronizer, images)
	adminHandler := handler.NewAdminHandler(renderer, eventRing, cacheManager, hub)
	usersHandler := handler.NewUsersHandler(backendClient, renderer, cookieStore, cacheManager, pageProvider)
	eventsHandler := handler.NewEventsHandler(synchronizer)
	healthHandler := handler.NewHealthHandler(db)

	// Router
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.RedirectSlashes)

	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	securityConfig.ExcludePrefixes = append(securityConfig.ExcludePrefixes, handler.RouteEventsUser)
	r.Use(middleware.SecurityHeaders(securityConfig))

	r.Use(middleware.RequestPath())
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadIdentity(cookieStore))
	r.Use(gate.Guard(cookieStore))

	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment()))

	// Health checks (exempt from the gate)
	r.Get(handler.RouteHealth, healthHandler.Health)
	r.Get(handler.RouteHealth+"/live", healthHandler.Liveness)

	// The bare domain dispatches: the gate sends authenticated users to
	// their landing page, everyone else lands on the login form.
	r.Get(handler.RouteRoot, func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, handler.RouteLogin, http.StatusSeeOther)
	})

	// Auth routes (public, CSRF + rate limiting)
	r.Group(func(r chi.Router) {
		r.Use(publicRateLimiter.Middleware())
		r.Use(csrfMiddleware)
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post(handler.RouteLogin, authHandler.Login)
		r.Get(handler.RouteRegister, authHandler.RegisterForm)
		r.Post(handler.RouteRegister, authHandler.Register)
		r.Get(handler.RouteRequestReset, authHandler.RequestResetForm)
		r.Post(handler.RouteRequestReset, authHandler.RequestReset)
		r.Get(handler.RouteResetPassword, authHandler.ResetPasswordForm)
		r.Post(handler.RouteResetPassword, authHandler.ResetPassword)
	})

	// Signed-in wellness pages
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(identityRefresher.Middleware())

		r.Post(handler.RouteLogout, authHandler.Logout)

		r.Get(handler.RouteHome, wellnessHandler.Home)

		r.Get(handler.RouteJournal, wellnessHandler.Journal)
		r.Post(handler.RouteJournal, wellnessHandler.JournalCreate)
		r.Get(handler.RouteJournal+handler.RouteSuffixEdit, wellnessHandler.JournalEditForm)
		r.Post(handler.RouteJournal+handler.RouteParamID, wellnessHandler.JournalUpdate)
		r.Post(handler.RouteJournal+handler.RouteSuffixDelete, wellnessHandler.JournalDelete)

		r.Get(handler.RouteMood, wellnessHandler.Mood)
		r.Post(handler.RouteMood, wellnessHandler.MoodCreate)
		r.Get(handler.RouteMood+handler.RouteSuffixEdit, wellnessHandler.MoodEditForm)
		r.Post(handler.RouteMood+handler.RouteParamID, wellnessHandler.MoodUpdate)
		r.Post(handler.RouteMood+handler.RouteSuffixDelete, wellnessHandler.MoodDelete)

		r.Get(handler.RouteHabits, wellnessHandler.Habits)
		r.Post(handler.RouteHabits, wellnessHandler.HabitCreate)
		r.Get(handler.RouteHabits+handler.RouteSuffixEdit, wellnessHandler.HabitEditForm)
		r.Post(handler.RouteHabits+handler.RouteParamID, wellnessHandler.HabitUpdate)
		r.Post(handler.RouteHabits+handler.RouteSuffixComplete, wellnessHandler.HabitComplete)
		r.Post(handler.RouteHabits+handler.RouteSuffixDelete, wellnessHandler.HabitDelete)

		r.Get(handler.RouteExercises, wellnessHandler.Exercises)
		r.Post(handler.RouteExercises, wellnessHandler.ExerciseCreate)
		r.Get(handler.RouteExercises+handler.RouteSuffixEdit, wellnessHandler.ExerciseEditForm)
		r.Post(handler.RouteExercises+handler.RouteParamID, wellnessHandler.ExerciseUpdate)
		r.Post(handler.RouteExercises+handler.RouteSuffixDelete, wellnessHandler.ExerciseDelete)

		r.Get(handler.RouteReminders, wellnessHandler.Reminders)
		r.Post(handler.RouteReminders, wellnessHandler.ReminderCreate)
		r.Get(handler.RouteReminders+handler.RouteSuffixEdit, wellnessHandler.ReminderEditForm)
		r.Post(handler.RouteReminders+handler.RouteParamID, wellnessHandler.ReminderUpdate)
		r.Post(handler.RouteReminders+handler.RouteSuffixToggle, wellnessHandler.ReminderToggle)
		r.Post(handler.RouteReminders+handler.RouteSuffixDelete, wellnessHandler.ReminderDelete)

		r.Get(handler.RouteCalendar, wellnessHandler.Calendar)

		r.Get(handler.RouteSettings, settingsHandler.SettingsForm)
		r.Post(handler.RouteSettings, settingsHandler.SettingsSubmit)

		// Admin pages (the gate has already verified the role)
		r.Get(handler.RouteAdminDashboard, adminHandler.Dashboard)
		r.Post(handler.RouteAdminCacheClear, adminHandler.CacheClear)
		r.Get(handler.RouteAdminUsers, usersHandler.List)
		r.Get(handler.RouteAdminUsersID, usersHandler.EditForm)
		r.Post(handler.RouteAdminUsersID, usersHandler.Update)
		r.Post(handler.RouteAdminUsersID+"/delete", usersHandler.Delete)
	})

	// SSE stream: long-lived, must not sit behind the request timeout
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Get(handler.RouteEventsUser, eventsHandler.Stream)
	})

	// Static assets
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle("/static/*", staticCache(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))))

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      0, // SSE connections stay open; per-route timeouts bound the rest
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// staticCache sets a long client cache lifetime on static assets.
func staticCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		next.ServeHTTP(w, r)
	})
}
