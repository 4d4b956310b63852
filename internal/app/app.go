package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/linkdrop/internal/assign"
	"github.com/MrSnakeDoc/linkdrop/internal/audit"
	"github.com/MrSnakeDoc/linkdrop/internal/config"
	"github.com/MrSnakeDoc/linkdrop/internal/engine"
	"github.com/MrSnakeDoc/linkdrop/internal/httpserver"
	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkdrop/internal/ledger"
	"github.com/MrSnakeDoc/linkdrop/internal/logger"
	"github.com/MrSnakeDoc/linkdrop/internal/notify"
	"github.com/MrSnakeDoc/linkdrop/internal/pool"
	"github.com/MrSnakeDoc/linkdrop/internal/redis"
	"github.com/MrSnakeDoc/linkdrop/internal/registry"
	"github.com/MrSnakeDoc/linkdrop/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/linkdrop/internal/store/redis"
	"github.com/MrSnakeDoc/linkdrop/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	reloader    *scheduler.RosterReloader
	gc          *scheduler.GarbageCollector
	expiry      *scheduler.ExpiryScheduler
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
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
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}

	// In-memory state, explicitly instantiated (no singletons)
	linkPool := pool.New()
	assignments := assign.New()
	led := ledger.New()
	reg := registry.New()
	store := redisstore.NewStore(redisClient)

	auditLog, err := audit.New(cfg.AuditDir)
	if err != nil {
		loggerClient.Errorf("Failed to open audit log: %v", err)
		os.Exit(1)
	}

	// Hydrate memory from Redis before the roster overwrites anything
	syncer := scheduler.NewRedisSyncer(store, reg, led, linkPool, loggerClient)
	if err := syncer.Sync(context.Background()); err != nil {
		loggerClient.Warn("failed to sync from redis on startup, will load from roster",
			logger.Error(err))
	}

	// Outbound notifications: webhook when a gateway is configured,
	// log-only otherwise; always fire-and-forget.
	var sink notify.Notifier
	if cfg.NotifyURL != "" {
		sink = notify.NewWebhookNotifier(cfg.NotifyURL, cfg.NotifyTimeout)
	} else {
		loggerClient.Info("notify url not configured, notifications go to the log")
		sink = notify.NewLogNotifier(loggerClient)
	}
	notifier := notify.NewAsync(sink, loggerClient, cfg.NotifyTimeout)

	// The expiry scheduler and the engine reference each other; the
	// closure breaks the cycle.
	var eng *engine.Engine
	expiry := scheduler.NewExpiryScheduler(func(employeeID, url string) {
		eng.ExpireByTimer(employeeID, url)
	}, loggerClient)

	eng = engine.New(engine.Config{
		OwnerID:      cfg.OwnerID,
		Quota:        cfg.Quota,
		Cooldown:     cfg.Cooldown,
		ActionWindow: cfg.ActionWindow,
		LinkTTL:      cfg.LinkTTL,
	}, engine.Deps{
		Pool:        linkPool,
		Assignments: assignments,
		Ledger:      led,
		Registry:    reg,
		Audit:       auditLog,
		Notifier:    notifier,
		Timers:      expiry,
		Store:       store,
		Logger:      loggerClient,
	})

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	reloader := scheduler.NewRosterReloader(
		cfg.RosterFile,
		store,
		reg,
		loggerClient,
		cfg.ReloadInterval,
		reloadTrigger,
	)

	gc := scheduler.NewGarbageCollector(
		store,
		reg,
		loggerClient,
		cfg.GCInterval,
		scheduler.DefaultGCThreshold,
	)

	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		OwnerID:       cfg.OwnerID,
		Engine:        eng,
		Registry:      reg,
		Ledger:        led,
		Pool:          linkPool,
		Audit:         auditLog,
		Store:         store,
		RedisClient:   redisClient,
		ReloadTrigger: reloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		reloader:    reloader,
		gc:          gc,
		expiry:      expiry,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting linkdrop v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("linkdrop %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start roster reloader (loads the allow-lists and starts periodic refresh)
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start roster reloader: %w", err)
	}
	a.logger.Info("roster reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	// Start garbage collector
	if err := a.gc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start garbage collector: %w", err)
	}
	a.logger.Info("garbage collector started",
		logger.Duration("interval", a.cfg.GCInterval))

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

	a.reloader.Stop()
	a.gc.Stop()
	a.expiry.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ linkdrop stopped cleanly")
	return nil
}
