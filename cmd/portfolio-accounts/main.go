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

	"github.com/joho/godotenv"

	"github.com/jsierra/portfolio-accounts/internal/auth"
	"github.com/jsierra/portfolio-accounts/internal/config"
	apphttp "github.com/jsierra/portfolio-accounts/internal/http"
	"github.com/jsierra/portfolio-accounts/internal/http/features/account"
	"github.com/jsierra/portfolio-accounts/internal/http/features/admin"
	"github.com/jsierra/portfolio-accounts/internal/http/features/contact"
	"github.com/jsierra/portfolio-accounts/internal/http/features/reset"
	"github.com/jsierra/portfolio-accounts/internal/migrations"
	"github.com/jsierra/portfolio-accounts/internal/notification"
	"github.com/jsierra/portfolio-accounts/internal/repository"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := repository.NewDB(repository.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if err := migrations.Run(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	users := repository.NewUsersRepository(db)
	tokens := repository.NewResetTokensRepository(db)

	var mailer *notification.EmailService
	if cfg.HasSMTP() {
		mailer = notification.NewEmailService(notification.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
		})
	} else {
		logger.Warn("SMTP not configured, outgoing email disabled")
	}

	guard := auth.NewAccountGuard(auth.GuardConfig{
		MaxFailedLogins: cfg.MaxFailedLogins,
		LockoutDuration: cfg.LockoutDuration,
	}, db, users, logger)

	var resetMailer auth.ResetMailer
	if mailer != nil {
		resetMailer = mailer
	}
	resetManager := auth.NewResetTokenManager(auth.ResetConfig{
		TokenTTL: cfg.ResetTokenTTL,
		BaseURL:  cfg.AppBaseURL,
	}, db, tokens, users, resetMailer, logger)

	sessions := auth.NewSessionService(auth.SessionConfig{
		Secret: []byte(cfg.SessionSecret),
		Issuer: cfg.SessionIssuer,
		TTL:    cfg.SessionTTL,
	})

	// Clear out stale tokens left over from before the last shutdown.
	if _, err := resetManager.SweepExpired(ctx); err != nil {
		logger.Warn("reset token sweep failed", "error", err)
	}

	var contactNotifier contact.Notifier
	if mailer != nil {
		contactNotifier = mailer
	}

	router := apphttp.NewRouter(apphttp.RouterConfig{
		Account:  account.NewHandle(guard, sessions, logger),
		Reset:    reset.NewHandle(resetManager, logger),
		Admin:    admin.NewHandle(users, logger),
		Contact:  contact.NewHandle(contactNotifier, cfg.ContactRecipient, logger),
		Sessions: sessions,
		Logger:   logger,

		RateLimitEnabled:      cfg.RateLimitEnabled,
		AuthRequestsPerMinute: cfg.AuthRequestsPerMinute,
		ResetRequestsPerHour:  cfg.ResetRequestsPerHour,
	})

	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
