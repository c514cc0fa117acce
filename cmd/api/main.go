// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/doubtspace/internal/admin"
	"github.com/carterperez-dev/doubtspace/internal/answer"
	"github.com/carterperez-dev/doubtspace/internal/auth"
	"github.com/carterperez-dev/doubtspace/internal/comment"
	"github.com/carterperez-dev/doubtspace/internal/config"
	"github.com/carterperez-dev/doubtspace/internal/core"
	"github.com/carterperez-dev/doubtspace/internal/doubt"
	"github.com/carterperez-dev/doubtspace/internal/events"
	"github.com/carterperez-dev/doubtspace/internal/health"
	"github.com/carterperez-dev/doubtspace/internal/middleware"
	"github.com/carterperez-dev/doubtspace/internal/migrations"
	"github.com/carterperez-dev/doubtspace/internal/server"
	"github.com/carterperez-dev/doubtspace/internal/space"
	"github.com/carterperez-dev/doubtspace/internal/user"
	"github.com/carterperez-dev/doubtspace/internal/vote"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		return err
	}
	if telemetry.Exporting {
		logger.Info("OpenTelemetry exporter initialized", "endpoint", cfg.Otel.Endpoint)
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := core.Migrate(ctx, db.DB, migrations.FS, migrations.Dir); err != nil {
			return err
		}
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)

	if err := ensureKeys(cfg, logger); err != nil {
		return err
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	blacklist := auth.NewBlacklist(redis.Client)
	jwtManager.SetRevocationChecker(blacklist)
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	bus := events.NewBus(logger)
	go func() {
		if err := bus.SubscribeStatusChanged(ctx, events.LogStatusChanges(logger)); err != nil {
			logger.Error("status change subscriber stopped", "error", err)
		}
	}()

	userSvc := user.NewService(user.NewRepository(db.DB))
	authSvc := auth.NewService(jwtManager, userSvc, blacklist, logger)
	doubtSvc := doubt.NewService(doubt.NewRepository(db.DB), bus, logger)
	answerSvc := answer.NewService(answer.NewRepository(db.DB), bus, logger)
	commentSvc := comment.NewService(comment.NewRepository(db.DB))
	voteSvc := vote.NewService(vote.NewRepository(db.DB))
	spaceSvc := space.NewService(space.NewRepository(db.DB))

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		DBPing:     db.Ping,
		RedisStats: redis.Stats,
		RedisPing:  redis.Ping,
		Doubts:     doubtSvc,
		Users:      userSvc,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing(telemetry.Tracer))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerWindow(cfg.RateLimit.Requests, cfg.RateLimit.Burst, cfg.RateLimit.Window),
			Skip:  middleware.IsHealthCheck,
		}).Handler,
	)

	// Login and signup get a tighter budget than the rest of the API.
	authLimit := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerMinute(10, 5),
		Scope: "auth",
	}).Handler

	healthHandler.RegisterRoutes(router)
	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	// Authenticated calls also spend the caller's own budget, whatever
	// address they come from.
	userLimit := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit:   middleware.PerWindow(cfg.RateLimit.Requests, cfg.RateLimit.Burst, cfg.RateLimit.Window),
		Scope:   "user",
		KeyFunc: middleware.KeyByUser,
	}).Handler
	verify := middleware.Authenticator(jwtManager)
	authenticator := func(next http.Handler) http.Handler {
		return verify(userLimit(next))
	}
	optionalAuth := middleware.OptionalAuth(jwtManager)

	router.Route("/api", func(r chi.Router) {
		auth.NewHandler(authSvc).RegisterRoutes(r, authenticator, authLimit)
		user.NewHandler(userSvc).RegisterRoutes(r, authenticator)
		doubt.NewHandler(doubtSvc).RegisterRoutes(r, authenticator)
		answer.NewHandler(answerSvc).RegisterRoutes(r, authenticator, optionalAuth)
		comment.NewHandler(commentSvc).RegisterRoutes(r, authenticator)
		vote.NewHandler(voteSvc).RegisterRoutes(r, authenticator)
		space.NewHandler(spaceSvc).RegisterRoutes(r, authenticator)
		adminHandler.RegisterRoutes(r, authenticator)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	drainDelay := cfg.Server.DrainDelay
	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := bus.Close(); err != nil {
		logger.Error("event bus close error", "error", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown error", "error", err)
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

// ensureKeys creates a throwaway signing key pair outside production when
// none is present.
func ensureKeys(cfg *config.Config, logger *slog.Logger) error {
	if cfg.IsProduction() {
		return nil
	}

	_, err := os.Stat(cfg.JWT.PrivateKeyPath)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	logger.Warn("no signing key found, generating a development key pair",
		"private_key_path", cfg.JWT.PrivateKeyPath,
	)
	return auth.GenerateKeyPair(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath)
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
