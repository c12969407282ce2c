package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/medimart/health-companion/internal/agent"
	"github.com/medimart/health-companion/internal/api/router"
	"github.com/medimart/health-companion/internal/chat"
	appconfig "github.com/medimart/health-companion/internal/config"
	"github.com/medimart/health-companion/internal/dashboard"
	"github.com/medimart/health-companion/internal/http/handlers"
	"github.com/medimart/health-companion/internal/observability/metrics"
	"github.com/medimart/health-companion/internal/scan"
	"github.com/medimart/health-companion/internal/session"
	"github.com/medimart/health-companion/internal/webchat"
	"github.com/medimart/health-companion/pkg/logging"
)

func main() {
	// Load .env if present; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting health-companion API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Session persistence: Redis when configured, in-memory otherwise.
	var kv session.KV
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Error("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		kv = session.NewRedisKV(client, cfg.SessionTTL)
		logger.Info("session persistence: redis", "addr", cfg.RedisAddr)
	} else {
		kv = session.NewMemoryKV()
		logger.Info("session persistence: in-memory")
	}

	store := session.NewStore(kv, logger)
	if err := store.Load(context.Background()); err != nil {
		logger.Error("failed to load persisted session", "error", err)
		os.Exit(1)
	}

	agents, err := agent.New(agent.Config{
		BaseURL: cfg.AgentBaseURL,
		APIKey:  cfg.AgentAPIKey,
		Timeout: cfg.AgentTimeout,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to create agent client", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	companionMetrics := metrics.NewCompanionMetrics(registry)

	chatSvc := chat.NewService(agents, store, cfg.HealthAssistantAgentID, companionMetrics, logger)
	scanSvc := scan.NewService(agents, store, cfg.MedicineScannerAgentID, cfg.HealthAssistantAgentID, companionMetrics, logger)
	scanSvc.SetNavigateDelay(cfg.ScanNavigateDelay)

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tips := dashboard.NewTipRotator(cfg.TipInterval)
	tips.Start(rootCtx)
	defer tips.Stop()

	companion := handlers.NewCompanionHandler(store, chatSvc, scanSvc, tips, logger)
	webchatHandler := webchat.NewHandler(chatSvc, store, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		Companion:          companion,
		Webchat:            webchatHandler,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
