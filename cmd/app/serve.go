package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-assistant/internal/assistant"
	"chat-assistant/internal/config"
	"chat-assistant/internal/domain/ports/repository"
	"chat-assistant/internal/infra/db/memory"
	pg "chat-assistant/internal/infra/db/postgres"
	"chat-assistant/internal/infra/logging"
	"chat-assistant/internal/infra/metrics"
	red "chat-assistant/internal/infra/redis"
	"chat-assistant/internal/infra/sched"
	"chat-assistant/internal/infra/security"
	"chat-assistant/internal/infra/session"
	"chat-assistant/internal/infra/web"
	"chat-assistant/internal/usecase"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout   = 10 * time.Second
	poolStatsInterval = 15 * time.Second
	userCacheTTL      = 10 * time.Minute
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket chat server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(flags.configPath, flags.dev)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	g, ctx := errgroup.WithContext(ctx)

	// ---- Redis (optional) ----
	var (
		redisClient red.RedisClient
		limiter     web.Limiter = web.NewLocalLimiter()
	)
	if cfg.Redis.URL != "" {
		c, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer c.Close()
		redisClient = c
		limiter = red.NewRateLimiter(c)
		logger.Info().Msg("redis connected; shared rate limiting enabled")
	}

	// ---- Users (Postgres or in-memory) ----
	var (
		users repository.UserRepository
		txm   repository.TransactionManager
	)
	if cfg.Database.URL != "" {
		pool, err := pg.Connect(ctx, cfg.Database.URL, logger)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()
		if err := pg.EnsureSchema(ctx, pool); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		users = pg.NewUserRepo(pool)
		if redisClient != nil {
			users = pg.NewUserRepoCacheDecorator(users, redisClient, userCacheTTL, logger)
		}
		txm = pg.NewTxManager(pool, logger)
		g.Go(func() error { return ignoreCanceled(pg.ReportPoolStats(ctx, pool, poolStatsInterval)) })
	} else {
		logger.Warn().Msg("database.url not set; accounts are kept in memory")
		users = memory.NewUserRepo()
		txm = memory.TxManager{}
	}

	// ---- Core ----
	store := session.New(session.Config{
		MaxSessions: cfg.Sessions.MaxSessions,
		MaxMessages: cfg.Sessions.MaxMessages,
		IdleTimeout: cfg.Sessions.IdleTimeout,
	}, logger)
	tokens := security.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	replies, err := assistant.OpenCatalog(cfg.Assistant.RepliesDir, cfg.Assistant.Language)
	if err != nil {
		return fmt.Errorf("replies: %w", err)
	}
	chatUC := usecase.NewChatUseCase(store, assistant.NewComposer(assistant.RandomPicker, assistant.WithCatalog(replies)), logger)
	authUC := usecase.NewAuthUseCase(users, txm, security.NewPasswordHasher(cfg.Auth.BcryptCost), tokens, cfg.Runtime.Dev, logger)

	// ---- HTTP ----
	srv := web.NewServer(chatUC, authUC, tokens, web.Options{
		CORSOrigins:    cfg.Server.CORSOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
		RateLimit: web.RateLimitConfig{
			Limiter:  limiter,
			Requests: cfg.Server.RateLimit.Requests,
			Window:   cfg.Server.RateLimit.Window,
			KeyFunc:  red.ClientKey,
		},
		Cookie: web.CookieConfig{Secure: !cfg.Runtime.Dev, TTL: cfg.Auth.RefreshTTL},
	}, logger)
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		logger.Info().Str("addr", httpServer.Addr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutdown requested")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(sctx)
	})

	// ---- Workers ----
	reaper := sched.NewSessionReaper(cfg.Sessions.ReapInterval, store, logger)
	g.Go(func() error { return ignoreCanceled(reaper.Run(ctx)) })

	err = g.Wait()
	logger.Info().Err(err).Msg("server stopped")
	return err
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
