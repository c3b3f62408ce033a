// Command server runs the support chat API.
//
//	@title						Support Chat API
//	@version					1.0
//	@description				Support assistant backend: accounts, LLM chat, conversations, evaluation tickets and the admin dashboard.
//	@BasePath					/api
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the token.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/support-chat-backend/internal/config"
	httpapi "github.com/tbourn/support-chat-backend/internal/http"
	"github.com/tbourn/support-chat-backend/internal/observability"
	"github.com/tbourn/support-chat-backend/internal/repo"
	"github.com/tbourn/support-chat-backend/internal/services"
	"github.com/tbourn/support-chat-backend/internal/sysutil"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	shutdownTimeout = 15 * time.Second
	seedAdminName   = "Administrator"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := sysutil.ConfigureLogger(nil, "info", false, "support-chat-backend")
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := sysutil.ConfigureLogger(nil, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	ver := sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version)
	ctx = logger.WithContext(ctx)

	shutdownOTel, err := observability.Setup(ctx, cfg.OTEL, observability.Build{Version: ver, Environment: cfg.GinMode})
	if err != nil {
		return err
	}
	defer observability.Shutdown(shutdownOTel, shutdownTimeout, logger)

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := bootstrap(ctx, db, cfg, logger); err != nil {
		return err
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, cfg)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go purgeIdempotency(ctx, services.NewIdempotencyService(db, cfg.IdempotencyTTL), cfg.IdempotencyTTL, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("version", ver).Bool("oauth", cfg.OAuthEnabled()).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

// bootstrap migrates the schema, seeds reference data and repairs legacy
// history columns.
func bootstrap(ctx context.Context, db *gorm.DB, cfg config.Config, logger zerolog.Logger) error {
	if err := repo.AutoMigrate(db); err != nil {
		return err
	}
	if err := repo.SeedRoles(ctx, db); err != nil {
		return err
	}

	if cfg.Auth.SeedAdminEmail != "" {
		auth := &services.AuthService{DB: db, BcryptCost: cfg.Auth.BcryptCost}
		hash, err := auth.HashPassword(cfg.Auth.SeedAdminPassword)
		if err != nil {
			return err
		}
		u, created, err := repo.SeedAdmin(ctx, db, seedAdminName, cfg.Auth.SeedAdminEmail, hash)
		if err != nil {
			return err
		}
		if created {
			logger.Info().Uint("user_id", u.ID).Str("email", u.Email).Msg("seeded admin account")
		}
	}

	n, err := repo.NormalizeHistories(ctx, db)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info().Int("rows", n).Msg("normalized legacy conversation histories")
	}
	return nil
}

// purgeIdempotency drops expired idempotency records until ctx ends.
func purgeIdempotency(ctx context.Context, svc *services.IdempotencyService, ttl time.Duration, logger zerolog.Logger) {
	every := ttl / 2
	if every < time.Minute {
		every = time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := svc.Purge(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("idempotency purge failed")
				continue
			}
			if n > 0 {
				logger.Debug().Int64("rows", n).Msg("purged expired idempotency keys")
			}
		}
	}
}
