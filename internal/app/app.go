package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-auth-portal/internal/config"
	"go-auth-portal/internal/database"
	"go-auth-portal/internal/event"
	"go-auth-portal/internal/handler"
	"go-auth-portal/internal/metrics"
	"go-auth-portal/internal/middleware"
	"go-auth-portal/internal/repository"
	"go-auth-portal/internal/router"
	"go-auth-portal/internal/service"
	"go-auth-portal/internal/usecase"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

// Stores groups the persistence adapters selected by STORE_DRIVER.
type Stores struct {
	Users   repository.CredentialRepository
	Revoked repository.RevocationRepository
	Health  func(ctx context.Context) error
	Close   func()
}

// OpenStores connects to PostgreSQL and applies the schema, or returns the
// in-memory adapters when STORE_DRIVER=memory.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		slog.Warn("using in-memory stores; data is lost on restart")
		return &Stores{
			Users:   repository.NewMemoryUserRepository(),
			Revoked: repository.NewMemoryTokenRepository(),
			Health:  func(context.Context) error { return nil },
			Close:   func() {},
		}, nil
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}
	slog.Info("database ready")

	return &Stores{
		Users:   repository.NewUserRepository(db.Pool),
		Revoked: repository.NewTokenRepository(db.Pool),
		Health:  db.Health,
		Close:   db.Close,
	}, nil
}

func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	stores, err := OpenStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	appHandler, stopBackground, err := buildHandler(cfg, stores)
	if err != nil {
		stores.Close()
		return nil, err
	}

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appHandler,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		cleanupFuncs: []func(){
			stopBackground,
			stores.Close,
		},
	}, nil
}

// Handler exposes the fully wired HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func buildHandler(cfg *config.Config, stores *Stores) (http.Handler, func(), error) {
	passwords := service.NewPasswordService()
	tokens, err := service.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	blacklist := service.NewBlacklistService(tokens, stores.Revoked)

	loginUseCase := usecase.NewLoginUseCase(stores.Users, passwords, tokens)
	registerUseCase := usecase.NewRegisterUseCase(stores.Users, passwords, usecase.UUIDGenerator{})
	logoutUseCase := usecase.NewLogoutUseCase(blacklist)
	profileUseCase := usecase.NewProfileUseCase(stores.Users)

	cookies := handler.CookieOptions{Secure: cfg.SecureCookies(), MaxAge: cfg.CookieMaxAge}
	appMetrics := metrics.New()
	auditBus := event.NewBus()
	events := authEvents{appMetrics, auditBus}

	authMiddleware := middleware.NewAuthMiddleware(tokens, blacklist)
	authHandler := handler.NewAuthHandler(loginUseCase, registerUseCase, logoutUseCase, events, cookies)
	userHandler := handler.NewUserHandler(profileUseCase, logoutUseCase, cookies)

	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Auth: authHandler,
		User: userHandler,
	}, appMetrics, func(r *http.Request) error {
		return stores.Health(r.Context())
	})

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go blacklist.StartCleanupTicker(cleanupCtx, cfg.RevocationSweepInterval)
	go event.RunAuditLog(cleanupCtx, auditBus, slog.Default().With("component", "audit"))

	return appRouter, cleanupCancel, nil
}

type authEventRecorder interface {
	RecordAuthEvent(kind string, outcome string)
}

// authEvents fans each auth attempt out to metrics and the audit bus.
type authEvents []authEventRecorder

func (e authEvents) RecordAuthEvent(kind string, outcome string) {
	for _, r := range e {
		r.RecordAuthEvent(kind, outcome)
	}
}

func (a *App) Run() error {
	return serve(a.server, []func(){a.Close})
}

// Close stops background work and releases the stores.
func (a *App) Close() {
	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}
	a.cleanupFuncs = nil
}

// serve runs srv until SIGINT/SIGTERM, then drains it and runs cleanups.
func serve(srv *http.Server, cleanups []func()) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case <-stop:
	case runErr = <-errCh:
		slog.Error("server failed", "error", runErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := srv.Shutdown(ctx)

	for _, cleanup := range cleanups {
		cleanup()
	}

	if runErr != nil {
		return runErr
	}
	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}
