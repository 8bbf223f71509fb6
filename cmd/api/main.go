package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/harborview/clinic-portal/cmd/mainconfig"
	"github.com/harborview/clinic-portal/internal/api/router"
	"github.com/harborview/clinic-portal/internal/appointments"
	appconfig "github.com/harborview/clinic-portal/internal/config"
	"github.com/harborview/clinic-portal/internal/directory"
	"github.com/harborview/clinic-portal/internal/nav"
	"github.com/harborview/clinic-portal/internal/notify"
	"github.com/harborview/clinic-portal/internal/observability/metrics"
	"github.com/harborview/clinic-portal/internal/wizard"
	"github.com/harborview/clinic-portal/pkg/logging"
)

func main() {
	// Local development convenience; absent .env files are fine.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-portal API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	portalMetrics := metrics.NewPortalMetrics(registry)

	// Session store: Redis when configured, in-memory otherwise.
	var sessionStore wizard.SessionStore
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}
		sessionStore = wizard.NewRedisStore(redisClient, cfg.WizardSessionTTL)
		logger.Info("booking sessions stored in redis", "addr", cfg.RedisAddr, "ttl", cfg.WizardSessionTTL)
	} else {
		sessionStore = wizard.NewMemoryStore()
		logger.Warn("booking sessions stored in memory, sessions will not survive restarts")
	}

	// Outbound email
	emailSender := buildEmailSender(ctx, cfg, logger)

	// Repositories and services
	directoryRepo := directory.NewPostgresRepository(pool)
	appointmentsRepo := appointments.NewPostgresRepository(pool)
	notifyService := notify.NewService(emailSender, directoryRepo, logger.Named("notify"))
	appointmentsService := appointments.NewService(appointmentsRepo, notifyService, portalMetrics, logger.Named("appointments"))

	slotCfg := wizard.SlotConfig{
		OpenHour:     cfg.ClinicOpenHour,
		CloseHour:    cfg.ClinicCloseHour,
		SlotDuration: time.Duration(cfg.SlotDurationMins) * time.Minute,
	}
	snapshotStream := wizard.NewSnapshotStream(logger.Named("wizard.stream"))
	wizardService := wizard.NewService(sessionStore, directoryRepo, appointmentsService, slotCfg, snapshotStream, portalMetrics, logger.Named("wizard"))

	// HTTP surface
	routerCfg := &router.Config{
		Logger:              logger,
		DirectoryHandler:    directory.NewHandler(directoryRepo, logger.Named("directory")),
		AppointmentsHandler: appointments.NewHandler(appointmentsService, logger.Named("appointments")),
		WizardHandler:       wizard.NewHandler(wizardService, logger.Named("wizard")),
		NavHandler:          nav.NewHandler(),
		SnapshotStream:      snapshotStream,
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AuthJWTSecret:       cfg.AuthJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildEmailSender picks the provider from EMAIL_PROVIDER: "sendgrid",
// "ses", or the log-only default.
func buildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger.Named("notify"))
		if sender == nil {
			logger.Warn("sendgrid selected but not configured, falling back to log sender")
			return notify.NewLogSender(logger.Named("notify"))
		}
		logger.Info("email delivery via sendgrid", "from", cfg.SendGridFromEmail)
		return sender
	case "ses":
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config, falling back to log sender", "error", err)
			return notify.NewLogSender(logger.Named("notify"))
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger.Named("notify"))
		logger.Info("email delivery via SES", "from", cfg.SESFromEmail, "region", cfg.AWSRegion)
		return sender
	default:
		return notify.NewLogSender(logger.Named("notify"))
	}
}
