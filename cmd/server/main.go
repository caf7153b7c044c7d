// Package main is the entry point for the ARGUS threat aggregation server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/argussky/argus/internal/api"
	"github.com/argussky/argus/internal/api/gateway"
	"github.com/argussky/argus/internal/broadcast"
	"github.com/argussky/argus/internal/classify"
	"github.com/argussky/argus/internal/collect"
	"github.com/argussky/argus/internal/config"
	"github.com/argussky/argus/internal/observability"
	"github.com/argussky/argus/internal/pipeline"
	"github.com/argussky/argus/internal/score"
	"github.com/argussky/argus/internal/simulator"
	"github.com/argussky/argus/internal/store"
)

// Version information (injected at build time via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ARGUS %s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	telemetry, err := observability.New(observability.Config{
		ServiceName:    "argus",
		ServiceVersion: Version,
		Environment:    os.Getenv("ARGUS_ENV"),
		LogLevel:       cfg.Logging.Level,
		LogFormat:      cfg.Logging.Format,
		MetricsEnabled: cfg.Metrics.Enabled,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: %v\n", err)
		os.Exit(1)
	}
	logger := telemetry.Logger()
	logger.Info("starting argus",
		zap.String("version", Version),
		zap.String("config", *configPath))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	telemetry.StartSystemMetricsCollector(ctx)

	// Core state.
	st := store.New()
	broadcaster := broadcast.New(cfg.Broadcast.Heartbeat, logger.Named("broadcast"))
	defer broadcaster.Close()

	// Classification cascade: the AI backend is optional and its absence
	// degrades the cascade to the keyword engine.
	var backend classify.AIBackend
	if cfg.AI.Enabled {
		b, err := classify.NewAnthropicBackend(cfg.AI.Anthropic)
		if err != nil {
			logger.Warn("ai backend unavailable, using keyword engine", zap.Error(err))
		} else {
			backend = b
			logger.Info("ai backend configured", zap.String("model", cfg.AI.Anthropic.Model))
		}
	}
	classifier := classify.NewClassifier(backend, logger.Named("classify"))

	// Collectors: each live source is optional, the simulated batch backs
	// them all up.
	var collectors []collect.Collector
	if cfg.Collectors.NewsAPI.Enabled {
		if c, err := collect.NewNewsAPICollector(cfg.Collectors.NewsAPI.NewsAPI); err != nil {
			logger.Warn("newsapi collector disabled", zap.Error(err))
		} else {
			collectors = append(collectors, c)
		}
	}
	if cfg.Collectors.GDELT.Enabled {
		collectors = append(collectors, collect.NewGDELTCollector(cfg.Collectors.GDELT.GDELT))
	}
	if cfg.Collectors.AbuseIPDB.Enabled {
		if c, err := collect.NewAbuseIPDBCollector(cfg.Collectors.AbuseIPDB.AbuseIPDB); err != nil {
			logger.Warn("abuseipdb collector disabled", zap.Error(err))
		} else {
			collectors = append(collectors, c)
		}
	}
	var fallback collect.Collector
	if cfg.Collectors.Fallback.Enabled {
		fallback = collect.NewSimulatedCollector()
	}
	manager := collect.NewManager(logger.Named("collect"), fallback, collectors...)
	logger.Info("collectors configured", zap.Int("live_sources", len(collectors)))

	pipe := pipeline.New(
		cfg.Pipeline,
		manager,
		classifier,
		score.NewScorer(),
		st,
		broadcaster,
		telemetry.Metrics(),
		logger.Named("pipeline"),
	)

	scheduler := pipeline.NewScheduler(pipe, cfg.Scheduler.Interval, logger.Named("scheduler"))
	if cfg.Scheduler.Enabled {
		scheduler.Start()
		defer scheduler.Stop()
	}

	sim := simulator.New(st, broadcaster, logger.Named("cctv"))
	if cfg.Simulator.AutoStart {
		sim.Start(cfg.Simulator.Interval, cfg.Simulator.Probability)
		defer sim.Stop()
	}

	// Rate limiting is optional and fails open; without Redis the trigger
	// endpoints run unthrottled.
	var limiter func(http.Handler) http.Handler
	if cfg.Redis.Enabled && cfg.RateLimit.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password(),
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		defer client.Close()
		limiter = gateway.NewRateLimiter(client, cfg.RateLimit, logger.Named("gateway")).Middleware()
	}

	srv := api.New(st, pipe, broadcaster, sim, telemetry, logger.Named("api"), Version)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Router(limiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Populate the dashboard without waiting for the first scheduled tick.
	go func() {
		if _, err := pipe.Run(ctx, "startup", nil); err != nil {
			logger.Error("startup run failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("shutting down", zap.String("signal", sig.String()))
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	_ = telemetry.Shutdown(shutdownCtx)
	logger.Info("server stopped")
}
