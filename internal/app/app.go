package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/canireach/canireach/internal/config"
	"github.com/canireach/canireach/internal/geoip"
	"github.com/canireach/canireach/internal/httpserver"
	"github.com/canireach/canireach/internal/httpserver/deps"
	"github.com/canireach/canireach/internal/logger"
	"github.com/canireach/canireach/internal/notify"
	"github.com/canireach/canireach/internal/redis"
	"github.com/canireach/canireach/internal/registry"
	redisstore "github.com/canireach/canireach/internal/store/redis"
	"github.com/canireach/canireach/internal/store/sqlite"
	"github.com/canireach/canireach/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	store       *sqlite.Store
	hub         *notify.Hub
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		DB:             cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	loggerClient.Info("Redis initialized successfully")

	services, err := registry.Load(cfg.ServicesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load service registry: %w", err)
	}
	loggerClient.Info("service registry loaded", logger.Int("services", len(services)))

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %q: %w", cfg.DatabasePath, err)
	}
	loggerClient.Info("database opened", logger.String("path", cfg.DatabasePath))

	limiter := redisstore.NewRateLimiter(redisClient, cfg.RateLimitWindow)
	notifier := redisstore.NewNotifier(redisClient)
	hub := notify.NewHub(notifier, loggerClient)

	geo := geoip.New(cfg.GeoBaseURL, cfg.GeoTimeout, loggerClient)

	d := deps.Deps{
		Logger:    loggerClient,
		StartTime: time.Now(),
		Version:   version.Version,
		Commit:    version.Commit,
		BuildDate: version.BuildDate,
		GoVersion: version.GoVersion,
		TimeNow:   time.Now,

		Registry:    services,
		StatsWindow: cfg.StatsWindow,

		Store:       store,
		RateLimiter: limiter,
		Geo:         geo,
		Publisher:   notifier,
		Hub:         hub,

		RedisClient: redisClient,

		TrustProxy:   cfg.TrustProxy,
		AllowedCIDRS: cfg.AllowedCIDRS,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		store:       store,
		hub:         hub,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting canireach v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("canireach %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the notification hub (redis pub/sub -> SSE fanout)
	if err := a.hub.Start(ctx); err != nil {
		return fmt.Errorf("failed to start notification hub: %w", err)
	}
	a.logger.Info("notification hub started")

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.hub.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if err := a.store.Close(); err != nil {
		a.logger.Warnf("failed to close database: %v", err)
	} else {
		a.logger.Info("✅ Database closed cleanly")
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ canireach stopped cleanly")
	return nil
}
