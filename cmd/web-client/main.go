package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"welfarewatch-web/api"
	"welfarewatch-web/internal/config"
	"welfarewatch-web/internal/events"
	"welfarewatch-web/internal/gateway"
	"welfarewatch-web/internal/handler"
	"welfarewatch-web/internal/middleware"
	"welfarewatch-web/internal/navigation"
	"welfarewatch-web/internal/observability"
	"welfarewatch-web/internal/security"
	"welfarewatch-web/internal/session"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func main() {
	cfg := config.Load()
	observability.InitLogger(cfg.LogLevel, cfg.LogFormat)

	slog.Info("starting web client",
		slog.String("backend", cfg.BackendURL),
		slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage, checks, closeStorage, err := newTokenStorage(ctx, cfg)
	if err != nil {
		slog.Error("failed to open token store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStorage()

	hub := events.NewHub()
	go func() {
		if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("event hub error", slog.String("error", err.Error()))
		}
	}()
	slog.Info("event hub started")

	var contract *gateway.Contract
	if cfg.OpenAPISpec != "" {
		contract, err = loadContract(ctx, cfg)
		if err != nil {
			slog.Error("failed to load backend contract", slog.String("error", err.Error()))
			os.Exit(1)
		}
		slog.Info("outgoing contract checks enabled", slog.String("spec", cfg.OpenAPISpec))
	}

	client, err := gateway.New(gateway.Options{
		BaseURL:    cfg.BackendURL,
		Timeout:    cfg.RequestTimeout,
		Slot:       storage,
		Notifier:   hub,
		Redirector: hub,
		LoginPath:  navigation.LoginPath,
		Limiter:    rate.NewLimiter(rate.Limit(cfg.EgressRPS), cfg.EgressBurst),
		Contract:   contract,
	})
	if err != nil {
		slog.Error("failed to create gateway client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store := session.NewStore(client, storage)
	client.OnUnauthenticated(store.ClearAuth)

	restoreSession(ctx, store)

	csrfToken, err := security.NewCSRFToken()
	if err != nil {
		slog.Error("failed to generate CSRF token", slog.String("error", err.Error()))
		os.Exit(1)
	}

	views, err := handler.NewViews(client, store, cfg.SiteName)
	if err != nil {
		slog.Error("failed to load views", slog.String("error", err.Error()))
		os.Exit(1)
	}

	router := handler.NewRouter(handler.RouterConfig{
		Views:        views,
		Events:       handler.NewEventsHandler(hub),
		Store:        store,
		Site:         cfg.SiteName,
		CSRFToken:    csrfToken,
		AllowedHosts: middleware.ParseHosts(cfg.AllowedHosts),
		FormLimiter:  middleware.NewRateLimiter(ctx, 1, 5),
		ReadyChecks:  checks,
	})

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("web client listening", slog.String("addr", "http://"+srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down web client")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}

	cancel()
	time.Sleep(100 * time.Millisecond)

	slog.Info("web client stopped gracefully")
}

// newTokenStorage opens the configured token slot and the readiness check for it
func newTokenStorage(ctx context.Context, cfg *config.Config) (session.TokenStorage, map[string]handler.CheckFunc, func(), error) {
	switch cfg.TokenStore {
	case config.TokenStoreRedis:
		rdb, err := config.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		slog.Info("token store: redis", slog.String("key", cfg.TokenKey))
		checks := map[string]handler.CheckFunc{
			"token_store": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}
		return session.NewRedisTokenStorage(rdb, cfg.TokenKey), checks, closeRedis(rdb), nil

	case config.TokenStoreMemory:
		slog.Info("token store: memory")
		return session.NewMemoryTokenStorage(), nil, func() {}, nil

	default:
		storage := session.NewFileTokenStorage(cfg.TokenFile)
		slog.Info("token store: file", slog.String("path", cfg.TokenFile))
		checks := map[string]handler.CheckFunc{
			"token_store": func(ctx context.Context) error {
				_, err := storage.Load(ctx)
				return err
			},
		}
		return storage, checks, func() {}, nil
	}
}

func closeRedis(rdb *redis.Client) func() {
	return func() {
		if err := rdb.Close(); err != nil {
			slog.Error("failed to close redis", slog.String("error", err.Error()))
		}
	}
}

func loadContract(ctx context.Context, cfg *config.Config) (*gateway.Contract, error) {
	spec := api.BackendSpec
	if cfg.OpenAPISpec != "embedded" {
		data, err := os.ReadFile(cfg.OpenAPISpec)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", cfg.OpenAPISpec, err)
		}
		spec = data
	}
	return gateway.LoadContract(ctx, spec, cfg.BackendURL)
}

// restoreSession reloads the persisted token and confirms it with the backend.
// Failure leaves the client logged out; it never stops startup.
func restoreSession(ctx context.Context, store *session.Store) {
	if err := store.Hydrate(ctx); err != nil {
		slog.Warn("could not restore session", slog.String("error", err.Error()))
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	switch err := store.CheckAuth(checkCtx); {
	case err == nil:
		slog.Info("session restored", slog.String("username", store.User().Username))
	case errors.Is(err, session.ErrNoToken):
		slog.Info("no saved session")
	default:
		slog.Info("saved session is no longer valid", slog.String("error", err.Error()))
	}
}
