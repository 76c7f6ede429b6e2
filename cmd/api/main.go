package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qrshield/internal/api"
	"qrshield/internal/api/handlers"
	"qrshield/internal/config"
	"qrshield/internal/domain/models"
	"qrshield/internal/domain/services"
	"qrshield/internal/infrastructure/cache"
	"qrshield/internal/qrdecode"
	"qrshield/internal/reputation"
	"qrshield/internal/urlexpand"
	"qrshield/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting QRShield")

	// Redis is optional; reputation caching and rate limiting degrade
	// without it
	var redisCache *cache.Redis
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedis(cache.Config{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to redis, continuing without cache")
		} else {
			defer redisCache.Close()
			log.Info().Str("addr", cfg.Redis.Addr()).Msg("connected to redis")
		}
	}

	// Initialize services
	var fallback qrdecode.Fallback
	if cfg.Analysis.DecodeAPIEnabled {
		fallback = qrdecode.NewReadAPIFallback(cfg.Analysis.DecodeAPIURL, cfg.Analysis.DecodeAPITimeout)
	}
	decoder := qrdecode.NewDecoder(fallback, log)

	expander := urlexpand.NewHTTPExpander(cfg.Analysis.ExpandTimeout, log)
	urls := services.NewURLAnalyzer(services.DefaultURLTables(), expander, log)
	upi := services.NewUPIValidator(models.BankSuffixes, log)
	images := services.NewImageAnalyzer(decoder, log)
	classifier := services.NewContentClassifier(log)
	stats := services.NewStatsTracker()

	scanner := services.NewScanner(decoder, images, urls, upi, classifier, stats,
		cfg.Analysis.ExpandShortened, log)

	repService := reputation.NewService(buildCheckers(cfg, log), redisCache, cfg.Sources.CacheTTL, log)

	// Set up HTTP server
	h := handlers.NewHandlers(handlers.Dependencies{
		Config:     *cfg,
		Scanner:    scanner,
		URLs:       urls,
		UPI:        upi,
		Reputation: repService,
		Stats:      stats,
		Cache:      redisCache,
		Logger:     log,
	})

	router := api.NewRouter(*cfg, h, redisCache, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	log.Info().Msg("shutdown complete")
}

// buildCheckers configures the enabled external reputation sources
func buildCheckers(cfg *config.Config, log *logger.Logger) []reputation.Checker {
	var checkers []reputation.Checker

	if cfg.Sources.VirusTotal.Enabled && cfg.Sources.VirusTotal.APIKey != "" {
		checkers = append(checkers, reputation.NewVirusTotalChecker(
			cfg.Sources.VirusTotal.APIKey, "", cfg.Sources.VirusTotal.PollDelay, log))
	}
	if cfg.Sources.SafeBrowsing.Enabled && cfg.Sources.SafeBrowsing.APIKey != "" {
		checkers = append(checkers, reputation.NewSafeBrowsingChecker(
			cfg.Sources.SafeBrowsing.APIKey, "", log))
	}
	if cfg.Sources.URLhaus.Enabled {
		checkers = append(checkers, reputation.NewURLhausChecker(
			cfg.Sources.URLhaus.AuthKey, "", log))
	}
	return checkers
}
