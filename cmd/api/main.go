package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Pradeep20056/thumbnail-genie/internal/billing"
	"github.com/Pradeep20056/thumbnail-genie/internal/entitlement"
	"github.com/Pradeep20056/thumbnail-genie/internal/http/handlers"
	httpapi "github.com/Pradeep20056/thumbnail-genie/internal/http/httpapi"
	"github.com/Pradeep20056/thumbnail-genie/internal/infra"
	"github.com/Pradeep20056/thumbnail-genie/internal/infra/google"
	"github.com/Pradeep20056/thumbnail-genie/internal/metrics"
	"github.com/Pradeep20056/thumbnail-genie/internal/providers/enhance"
	"github.com/Pradeep20056/thumbnail-genie/internal/providers/image"
	"github.com/Pradeep20056/thumbnail-genie/internal/providers/pollinations"
)

func main() {
	// Load .env when present (local development).
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if cfg.RunMigrations {
		if err := infra.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)

	pollClient := pollinations.NewClient(pollinations.Options{
		BaseURL:        cfg.PollinationsBaseURL,
		RequestTimeout: cfg.GenerateTimeout,
		Logger:         &logger,
	})
	generator := image.NewPollinationsGenerator(pollClient, logger)

	var enhancer handlers.Enhancer
	if cfg.EnhanceAPIKey != "" {
		gateway, err := enhance.NewGateway(enhance.Options{
			APIKey:  cfg.EnhanceAPIKey,
			Model:   cfg.EnhanceModel,
			BaseURL: cfg.EnhanceBaseURL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure enhance gateway")
		}
		enhancer = gateway
	} else {
		logger.Warn().Msg("ENHANCE_API_KEY not set, enhance endpoint disabled")
	}

	orders, err := billing.NewRazorpayClient(billing.Options{
		KeyID:     cfg.RazorpayKeyID,
		KeySecret: cfg.RazorpayKeySecret,
		BaseURL:   cfg.RazorpayBaseURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure razorpay client")
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	app := &handlers.App{
		Config:         cfg,
		Logger:         logger,
		SQL:            runner,
		Generator:      generator,
		Enhancer:       enhancer,
		Orders:         orders,
		Entitlements:   entitlement.NewService(runner),
		Metrics:        collector,
		GoogleVerifier: google.NewVerifier(cfg.GoogleIssuer, cfg.GoogleClientID),
		MetricsHTTP:    metrics.Handler(registry),
		JWTSecret:      cfg.JWTSecret,
	}

	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
