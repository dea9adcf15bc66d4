package main

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

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/ghuser/stockhub/docs/swagger"
	"github.com/ghuser/stockhub/pkg/app"
	"github.com/ghuser/stockhub/pkg/auth"
	"github.com/ghuser/stockhub/pkg/cache"
	"github.com/ghuser/stockhub/pkg/config"
	"github.com/ghuser/stockhub/pkg/database"
	"github.com/ghuser/stockhub/pkg/events"
	"github.com/ghuser/stockhub/pkg/httpx"
	"github.com/ghuser/stockhub/pkg/logger"
	"github.com/ghuser/stockhub/pkg/telemetry"
	itemApi "github.com/ghuser/stockhub/services/item/application/api"
	userApi "github.com/ghuser/stockhub/services/user/application/api"
)

const apiVersion = "1.0.0"

// @title						StockHub API
// @version					1.0.0
// @description				Inventory management API. Every item is private to the user who created it.
// @license.name				MIT
// @license.url				https://opensource.org/licenses/MIT
// @host						localhost:8000
// @BasePath					/api
// @schemes					http https
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
// @description				Supabase access token as "Bearer <token>".
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	// Telemetry: OTel tracing + metrics
	ctx := context.Background()
	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	// Crash reporting: Sentry (optional, log and continue on failure)
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBusWithForwarder(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	if err := eventBus.StartForwarder(ctx); err != nil {
		log.Error("failed to start event forwarder", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	// Redis only backs the identity cache, so the API keeps serving without it.
	redisClient, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Warn("redis unavailable, identity cache disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close() //nolint:errcheck
		log.Info("redis connected")
	}

	verifier, err := newVerifier(cfg, redisClient, log)
	if err != nil {
		log.Error("failed to configure identity verifier", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	log.Info("identity verifier configured", "mode", cfg.AuthMode, "cached", redisClient != nil && cfg.AuthMode == config.AuthModeSupabase)

	appConfig := &app.Application{
		Config:   cfg,
		Db:       pool,
		Logger:   log,
		EventBus: eventBus,
		Redis:    redisClient,
		Verifier: verifier,
	}

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.AllowedOrigins(),
		},
		logger.Middleware(log),
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		otelhttp.NewMiddleware(cfg.ServiceName),
	)

	checks := httpx.HealthChecks{Database: pool, EventBus: eventBus}
	if redisClient != nil {
		checks.Redis = redisClient
	}

	r.Get("/", welcome)
	r.Get("/health", httpx.HealthHandler(checks))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Route("/api", func(r chi.Router) {
		registerRoutes(r, appConfig)
	})

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// registerRoutes mounts all service routes under /api.
// Add each new service's route function here.
func registerRoutes(r chi.Router, a *app.Application) {
	itemApi.ItemRoutes(r, a)
	userApi.UserRoutes(r, a)
}

// newVerifier picks the identity backend for cfg.AuthMode. Remote Supabase
// lookups are cached in Redis when a client is available; local JWT checks
// are cheap and never cached so token expiry is always honoured.
func newVerifier(cfg *config.Config, redisClient *cache.RedisClient, log logger.Logger) (auth.Verifier, error) {
	switch cfg.AuthMode {
	case config.AuthModeJWT:
		if cfg.SupabaseJWTSecret == "" {
			return nil, fmt.Errorf("SUPABASE_JWT_SECRET is required when AUTH_MODE=jwt")
		}
		return auth.NewJWTVerifier(cfg.SupabaseJWTSecret), nil
	case config.AuthModeSupabase:
		if cfg.SupabaseURL == "" {
			return nil, fmt.Errorf("SUPABASE_URL is required when AUTH_MODE=supabase")
		}
		var v auth.Verifier = auth.NewSupabaseVerifier(cfg.SupabaseURL, cfg.SupabaseServiceKey, nil)
		if redisClient != nil {
			v = auth.NewCachingVerifier(v, cache.NewIdentityCache(redisClient), cfg.IdentityCacheTTL, log)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown AUTH_MODE %q", cfg.AuthMode)
	}
}

type welcomeResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

func welcome(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, welcomeResponse{
		Message: "Welcome to StockHub API",
		Version: apiVersion,
		Status:  "running",
	})
}
