package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tutor-service/internal/auth"
	"tutor-service/internal/config"
	"tutor-service/internal/http-server/router"
	"tutor-service/internal/idempotency"
	"tutor-service/internal/jobs"
	"tutor-service/internal/lock"
	"tutor-service/internal/mail"
	svc "tutor-service/internal/service"
	"tutor-service/internal/session"
	"tutor-service/internal/storage/postgres"
	redisstore "tutor-service/internal/storage/redis"
	slogpretty "tutor-service/pkg/handlers/slogPretty"
	"tutor-service/pkg/sl"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	storage, err := postgres.New(cfg.Storage.DSN)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	if cfg.Storage.AutoMigrate {
		if err := storage.Migrate(context.Background()); err != nil {
			log.Error("Failed to apply migrations", sl.Err(err))
			os.Exit(1)
		}
		log.Info("Migrations applied")
	}

	redisClient, err := redisstore.New(cfg.Redis)
	if err != nil {
		log.Error("Failed to init redis", sl.Err(err))
		os.Exit(1)
	}

	var mailer mail.Sender
	if cfg.Mail.SendGridKey != "" {
		mailer = mail.NewSendGrid(cfg.Mail.SendGridKey, cfg.Mail.FromName, cfg.Mail.FromEmail)
	} else {
		log.Warn("SendGrid key is not set, mails will only be logged")
		mailer = mail.NewLogSender(log)
	}

	service := svc.NewService(log, svc.Deps{
		Store:    storage,
		Locker:   lock.NewRedisLock(redisClient),
		Results:  idempotency.New(redisClient),
		Revoker:  session.NewRevoker(redisClient),
		Tokens:   auth.NewManager(cfg.Auth.Secret, cfg.Auth.TokenTTL, cfg.Auth.ResetTTL),
		Mailer:   mailer,
		ResetURL: cfg.Mail.ResetURL,
	})

	scheduler, err := jobs.New(log, cfg.Jobs.ReconcileSpec, service)
	if err != nil {
		log.Error("Failed to init jobs", sl.Err(err))
		os.Exit(1)
	}
	scheduler.Start()

	handler := router.New(log, service, router.Options{
		Cookie:        auth.CookieConfig{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure},
		AllowedOrigin: cfg.HTTPServer.AllowedOrigin,
	})

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	scheduler.Stop(ctx)

	if err := storage.Close(); err != nil {
		log.Error("Failed to close storage", sl.Err(err))
	} else {
		log.Info("Storage closed")
	}

	if err := redisClient.Close(); err != nil {
		log.Error("Failed to close redis", sl.Err(err))
	} else {
		log.Info("Redis closed")
	}

	log.Info("Shutdown finished, server stopped")

}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
