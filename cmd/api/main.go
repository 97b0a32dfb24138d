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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/medibook/internal/api/router"
	"github.com/wolfman30/medibook/internal/app/bootstrap"
	"github.com/wolfman30/medibook/internal/booking"
	"github.com/wolfman30/medibook/internal/chat"
	"github.com/wolfman30/medibook/internal/clinic"
	appconfig "github.com/wolfman30/medibook/internal/config"
	"github.com/wolfman30/medibook/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/medibook/internal/http/middleware"
	"github.com/wolfman30/medibook/internal/i18n"
	"github.com/wolfman30/medibook/internal/observability/metrics"
	"github.com/wolfman30/medibook/internal/pagesession"
	"github.com/wolfman30/medibook/internal/webchat"
	"github.com/wolfman30/medibook/pkg/logging"
)

type appMetrics struct {
	booking  *metrics.BookingMetrics
	chat     *metrics.ChatMetrics
	sessions *metrics.SessionMetrics
}

func setupMetrics() (http.Handler, *appMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := &appMetrics{
		booking:  metrics.NewBookingMetrics(reg),
		chat:     metrics.NewChatMetrics(reg),
		sessions: metrics.NewSessionMetrics(reg),
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m
}

func main() {
	// Local development reads secrets from .env; production sets them directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting medibook API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, cleanup, err := buildServer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize server", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildServer wires every component. Background janitors stop when ctx ends;
// cleanup releases the session registry and external clients.
func buildServer(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*http.Server, func(), error) {
	defaultLang, err := i18n.ParseLanguage(cfg.DefaultLanguage)
	if err != nil {
		logger.Warn("invalid DEFAULT_LANGUAGE; using Korean", "value", cfg.DefaultLanguage)
		defaultLang = i18n.DefaultLanguage
	}

	metricsHandler, m := setupMetrics()

	provider, err := bootstrap.BuildChatProvider(ctx, cfg, chat.ProviderConfig{
		Logger:  logger.WithComponent("chat"),
		Metrics: m.chat,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	sender, err := bootstrap.BuildEmailSender(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	submitters, err := bootstrap.BuildSubmitterFactory(ctx, cfg, sender, logger.WithComponent("booking"))
	if err != nil {
		return nil, nil, err
	}
	guard, closeGuard := bootstrap.BuildSubmitGuard(ctx, cfg, logger)

	registry := pagesession.NewRegistry(pagesession.Config{
		TTL:             cfg.SessionTTL,
		DefaultLanguage: defaultLang,
		Catalog:         i18n.DefaultCatalog,
		Submitters:      submitters,
		ChatProvider:    provider,
		Pipeline: booking.PipelineConfig{
			RevertDelay: cfg.BookingRevertDelay,
			Metrics:     m.booking,
		},
		Logger:  logger.WithComponent("pagesession"),
		Metrics: m.sessions,
	})
	go registry.Run(ctx, time.Minute)

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go sweepLimiter(ctx, limiter, 5*time.Minute)

	handler := router.New(&router.Config{
		Logger:        logger,
		ClinicHandler: clinic.NewHandler(clinic.DefaultDirectory, defaultLang, logger),
		SessionHandler: handlers.NewPageSessionHandler(registry, handlers.PageSessionConfig{
			Guard:         guard,
			SubmitTimeout: cfg.BookingSubmitTimeout,
			ChatTimeout:   cfg.ChatTimeout,
		}, logger),
		WebChatHandler:     webchat.NewHandler(registry, cfg.CORSAllowedOrigins, cfg.ChatTimeout, logger.WithComponent("webchat")),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	cleanup := func() {
		registry.Close()
		closeGuard()
	}
	return srv, cleanup, nil
}

func sweepLimiter(ctx context.Context, limiter *httpmiddleware.RateLimiter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Sweep()
		}
	}
}
