package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meeting-platform/core/internal/cache"
	"github.com/meeting-platform/core/internal/config"
	"github.com/meeting-platform/core/internal/domain"
	"github.com/meeting-platform/core/internal/facade"
	"github.com/meeting-platform/core/internal/geo"
	"github.com/meeting-platform/core/internal/lb"
	"github.com/meeting-platform/core/internal/pool"
	"github.com/meeting-platform/core/internal/registry"
	"github.com/meeting-platform/core/internal/service"
	"github.com/meeting-platform/core/internal/storage/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	connPool, err := sqlite.NewConnectionPool(sqlite.PoolConfig{
		DSN:               cfg.SQLiteDSN,
		BusyTimeout:       5 * time.Second,
		EnableForeignKeys: true,
		JournalMode:       "WAL",
		Synchronous:       "NORMAL",
		PoolSize:          8,
		AcquireTimeout:    2 * time.Second,
	})
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := connPool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := sqlite.Migrate(ctx, connPool); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	redisClient := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	userRepo := cache.NewUserRepository(sqlite.NewUserRepository(connPool), redisClient, cfg.CacheTTL, logger)
	sessionRepo := cache.NewSessionRepository(sqlite.NewSessionRepository(connPool), redisClient, cfg.CacheTTL, logger)
	meetingRepo := cache.NewMeetingRepository(sqlite.NewMeetingRepository(connPool), redisClient, cfg.CacheTTL, logger)

	sessions := service.NewSessionManager(sessionRepo, cfg.SessionTTL, logger)
	users := service.NewUserManager(userRepo, logger)
	meetings := service.NewMeetingManager(meetingRepo, service.DefaultMeetingConfig(), logger)

	var geoLookup *geo.Lookup
	if cfg.GeoIPDatabasePath != "" {
		geoLookup, err = geo.Open(cfg.GeoIPDatabasePath)
		if err != nil {
			logger.Warn("failed to open geoip database, region hints disabled", "error", err)
		} else {
			defer geoLookup.Close()
		}
	}

	coordinator := registry.Connect(cfg.ZookeeperAddrs, logger)
	defer coordinator.Close()
	balancer := lb.New(coordinator)

	selfNode := domain.Node{Host: cfg.AdvertiseHost, Port: cfg.HTTPPort, Region: cfg.Region}
	if err := coordinator.Register(selfNode); err != nil {
		logger.Warn("failed to register self with discovery service", "error", err)
	}
	defer func() {
		if err := coordinator.Unregister(selfNode); err != nil {
			logger.Warn("failed to unregister self from discovery service", "error", err)
		}
	}()

	poolCfg := pool.DefaultConfig()
	poolCfg.QueueCap = cfg.QueueCap
	poolCfg.CoreThreads = cfg.CoreThreads
	poolCfg.MaxThreads = cfg.MaxThreads
	poolCfg.ScaleUpThreshold = cfg.ScaleUpThreshold
	poolCfg.ScaleDownThreshold = cfg.ScaleDownThreshold
	poolCfg.LoadCheckInterval = cfg.LoadCheckInterval
	poolCfg.KeepAlive = cfg.KeepAlive
	poolCfg.PendingHi = cfg.PendingHi
	poolCfg.PendingLow = cfg.PendingLow
	poolCfg.DebounceHits = cfg.DebounceHits
	poolCfg.Cooldown = cfg.Cooldown
	switch cfg.QueuePolicy {
	case "Discard":
		poolCfg.QueuePolicy = pool.Discard
	case "Overwrite":
		poolCfg.QueuePolicy = pool.Overwrite
	default:
		poolCfg.QueuePolicy = pool.Block
	}
	workerPool := pool.New(poolCfg, logger)

	registerer := prometheus.NewRegistry()
	for _, collector := range workerPool.Collectors() {
		if err := registerer.Register(collector); err != nil {
			logger.Warn("failed to register pool collector", "error", err)
		}
	}

	var geoResolver facade.GeoResolver
	if geoLookup != nil {
		geoResolver = geoLookup
	}
	app := facade.New(workerPool, sessions, users, meetings, balancer, geoResolver, logger)
	_ = app // wired for a transport layer outside this module's scope

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registerer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := connPool.Ping(ctx); err != nil {
			logger.Warn("health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics listening", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	logger.Info("meeting platform started", "region", cfg.Region)
	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)

	if err := workerPool.Shutdown(shutdownCtx, 5*time.Second); err != nil {
		logger.Error("pool shutdown error", "error", err)
	}
}
