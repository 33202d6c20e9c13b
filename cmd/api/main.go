// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/blog-api/internal/admin"
	"github.com/carterperez-dev/templates/blog-api/internal/auth"
	"github.com/carterperez-dev/templates/blog-api/internal/comment"
	"github.com/carterperez-dev/templates/blog-api/internal/config"
	"github.com/carterperez-dev/templates/blog-api/internal/core"
	"github.com/carterperez-dev/templates/blog-api/internal/health"
	"github.com/carterperez-dev/templates/blog-api/internal/mail"
	"github.com/carterperez-dev/templates/blog-api/internal/middleware"
	"github.com/carterperez-dev/templates/blog-api/internal/migrations"
	"github.com/carterperez-dev/templates/blog-api/internal/post"
	"github.com/carterperez-dev/templates/blog-api/internal/role"
	"github.com/carterperez-dev/templates/blog-api/internal/server"
	"github.com/carterperez-dev/templates/blog-api/internal/user"
)

const (
	drainDelay = 5 * time.Second
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

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
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
		if err := db.Migrate(ctx, migrations.FS); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	roleSvc := role.NewService(db.DB)
	if err := roleSvc.Seed(ctx); err != nil {
		return err
	}
	logger.Info("roles seeded")

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	tokens, err := auth.NewTokenManager(cfg.Token)
	if err != nil {
		return err
	}
	logger.Info("token manager initialized",
		"algorithm", "HS256",
		"issuer", cfg.Token.Issuer,
	)

	hasher, err := core.NewPasswordHasher(cfg.Password)
	if err != nil {
		return err
	}

	mailQueue, err := mail.NewQueue(
		cfg.Mail,
		mail.NewSender(cfg.Mail, logger),
		logger,
	)
	if err != nil {
		return err
	}
	mailQueue.Start()
	logger.Info("mail queue started",
		"workers", cfg.Mail.Workers,
		"smtp", cfg.Mail.Host != "",
	)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, roleSvc).
		WithSeenThrottle(redis, cfg.Blog.LastSeenInterval)
	userHandler := user.NewHandler(userSvc, cfg.Blog.FollowersPerPage)

	authSvc := auth.NewService(tokens, hasher, userSvc, mailQueue, auth.Config{
		Token:      cfg.Token,
		AdminEmail: cfg.Mail.Admin,
		PublicURL:  cfg.App.PublicURL,
	})
	authHandler := auth.NewHandler(authSvc)

	postSvc := post.NewService(post.NewRepository(db.DB), cfg.Blog.PostsPerPage)
	postHandler := post.NewHandler(postSvc)

	commentSvc := comment.NewService(
		comment.NewRepository(db.DB),
		postSvc,
		cfg.Blog.CommentsPerPage,
	)
	commentHandler := comment.NewHandler(commentSvc)

	healthHandler := health.NewHandler(
		health.Check{Name: "database", Checker: db},
		health.Check{Name: "redis", Checker: redis},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		MailStats:  mailQueue.Stats,
		Content:    admin.NewRepository(db.DB),
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	gate := middleware.Gate(authSvc)

	authLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerMinute(
			cfg.RateLimit.AuthRequests,
			cfg.RateLimit.AuthBurst,
		),
		KeyFunc:  middleware.KeyByIPAndEndpoint,
		FailOpen: true,
	})

	ipLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerWindow(
			cfg.RateLimit.IPRequests,
			cfg.RateLimit.IPBurst,
			cfg.RateLimit.Window,
		),
		KeyFunc:  middleware.KeyByIP,
		FailOpen: true,
	})

	apiLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerWindow(
			cfg.RateLimit.Requests,
			cfg.RateLimit.Burst,
			cfg.RateLimit.Window,
		),
		KeyFunc:  middleware.KeyByUser,
		FailOpen: true,
	})

	authHandler.RegisterRoutes(router, gate, authLimiter.Handler)

	router.Route(core.APIPrefix, func(r chi.Router) {
		r.Use(ipLimiter.Handler)
		r.Use(gate)
		r.Use(middleware.RequireConfirmed)
		r.Use(apiLimiter.Handler)

		authHandler.RegisterAPIRoutes(r)
		userHandler.RegisterRoutes(r)
		postHandler.RegisterRoutes(r)
		commentHandler.RegisterRoutes(r)

		userHandler.RegisterAdminRoutes(r, middleware.RequireAdmin)
		adminHandler.RegisterRoutes(r, middleware.RequireAdmin)
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

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := mailQueue.Close(shutdownCtx); err != nil {
		logger.Error("mail queue close error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
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
