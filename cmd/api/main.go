package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pulsecapture_backend/internal/auth"
	"pulsecapture_backend/internal/email"
	"pulsecapture_backend/internal/events"
	apphttp "pulsecapture_backend/internal/http"
	"pulsecapture_backend/internal/http/router"
	"pulsecapture_backend/internal/leads"
	"pulsecapture_backend/internal/notification"
	"pulsecapture_backend/internal/settings"
	"pulsecapture_backend/internal/webhookin"
	"pulsecapture_backend/internal/workflow"
	"pulsecapture_backend/platform/config"
	"pulsecapture_backend/platform/db"
	"pulsecapture_backend/platform/httpkit"
	"pulsecapture_backend/platform/logger"
	"pulsecapture_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Workflow engine client and async dispatch queue
	engineClient := workflow.NewClient(cfg, log)
	dispatcher, err := workflow.NewDispatcher(cfg, engineClient, log)
	if err != nil {
		log.Error("failed to initialize workflow dispatcher", "error", err)
		panic("failed to initialize workflow dispatcher: " + err.Error())
	}
	defer func() { _ = dispatcher.Close() }()

	// Redis-backed delivery deduplication for inbound webhooks
	deduper, err := webhookin.NewDeduper(cfg.RedisURL, log)
	if err != nil {
		log.Error("failed to initialize webhook deduper", "error", err)
		panic("failed to initialize webhook deduper: " + err.Error())
	}
	defer func() { _ = deduper.Close() }()

	// Settings are loaded once at startup and cached as an atomic snapshot
	settingsService := settings.NewService(settings.NewRepository(pool), log)
	if err := withRetry(ctx, log, "settings load", 3, time.Second, func() error {
		return settingsService.Load(ctx)
	}); err != nil {
		log.Error("failed to load settings", "error", err)
		panic("failed to load settings: " + err.Error())
	}

	var mailSender settings.EmailSender
	if cfg.IsSMTPEnabled() {
		mailSender = email.NewSMTPSender(cfg)
		log.Info("smtp sender initialized", "host", cfg.SMTPHost)
	} else {
		log.Warn("SMTP not configured; test emails disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule := auth.NewModule(pool, cfg, val, log)
	if err := authModule.Service().EnsureBootstrapAdmin(ctx, cfg); err != nil {
		log.Error("failed to ensure bootstrap admin", "error", err)
		panic("failed to ensure bootstrap admin: " + err.Error())
	}

	leadsModule := leads.NewModule(pool, dispatcher, engineClient, eventBus, val, log)
	webhookModule := webhookin.NewModule(leadsModule.Service(), cfg, deduper, log)
	settingsModule := settings.NewModule(settingsService, val, notification.NewNotifier(log), mailSender, cfg.IsSMTPEnabled(), engineClient)

	// Notification module subscribes to domain events (not HTTP-facing)
	notification.NewModule(eventBus, settingsService, log)

	// Background worker consuming queued dispatch tasks; only runs when the
	// queue is Redis-backed, otherwise dispatch happens in-process.
	if cfg.RedisURL != "" {
		worker, err := workflow.NewWorker(cfg, engineClient, log)
		if err != nil {
			log.Error("failed to initialize dispatch worker", "error", err)
			panic("failed to initialize dispatch worker: " + err.Error())
		}
		go worker.Run(ctx)
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:            cfg,
		Logger:            log,
		Health:            db.NewPoolAdapter(pool),
		EventBus:          eventBus,
		AuthMiddleware:    authModule.AuthMiddleware(),
		AdminMiddleware:   auth.RequireAdmin(),
		AuthRateLimiter:   httpkit.NewAuthRateLimiter(log),
		PublicRateLimiter: httpkit.NewIPRateLimiter(rate.Every(6*time.Second), 10, log),
		Modules: []apphttp.Module{
			authModule,
			leadsModule,
			webhookModule,
			settingsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
