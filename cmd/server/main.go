// Command server runs the whisperboard HTTP server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"whisperboard/internal/auth"
	"whisperboard/internal/config"
	"whisperboard/internal/secrets"
	gormstore "whisperboard/internal/store/gorm"
	"whisperboard/internal/store/memory"
	"whisperboard/internal/web"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading config failed", "err", err)
		os.Exit(1)
	}

	users, board, err := openStores(cfg, logger)
	if err != nil {
		logger.Error("opening stores failed", "err", err)
		os.Exit(1)
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = 24 * time.Hour
	sessionManager.Cookie.HttpOnly = true

	codec := auth.NewCodec(cfg.SessionSecret, "whisperboard", sessionManager.Lifetime)
	sessions := auth.NewSessions(sessionManager, codec, logger)

	srv := web.New(web.Config{
		Users:    users,
		Board:    board,
		Hasher:   auth.NewHasherWithCost(cfg.BcryptCost),
		Sessions: sessions,
		Logger:   logger,
		Google: web.OAuthConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			CallbackURL:  cfg.GoogleCallbackURL,
		},
		Facebook: web.OAuthConfig{
			ClientID:     cfg.FacebookClientID,
			ClientSecret: cfg.FacebookClientSecret,
			CallbackURL:  cfg.FacebookCallbackURL,
		},
	})

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server started", "addr", cfg.Addr, "env", cfg.Env)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
}

// openStores picks the persistence backend. A DSN gets Postgres via GORM;
// no DSN falls back to the in-memory store for local development.
func openStores(cfg *config.Config, logger *slog.Logger) (auth.UserStore, secrets.Store, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory store; data will not survive a restart")
		mem := memory.New()
		return mem, mem, nil
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := gormstore.AutoMigrate(db); err != nil {
		return nil, nil, err
	}
	return gormstore.NewUserStore(db), gormstore.NewSecretStore(db), nil
}
