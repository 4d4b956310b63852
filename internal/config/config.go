package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Lifecycle policy
	OwnerID      string        // static owner chat id, always authorized
	Quota        int64         // MAX_LINKS_PER_USER: lifetime links per employee
	Cooldown     time.Duration // delay before the next request is allowed
	ActionWindow time.Duration // window in which cancel/expire are allowed
	LinkTTL      time.Duration // delay before the expiry timer fires

	// State layout
	AuditDir       string        // directory of the per-day audit CSV files
	RosterFile     string        // path to the roster.yaml seed file
	ReloadInterval time.Duration // interval to reload roster.yaml (default: 24h)
	GCInterval     time.Duration // interval to purge disabled registry entries

	// Notifications
	NotifyURL     string        // chat gateway webhook (empty = log only)
	NotifyTimeout time.Duration // per-delivery timeout

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // initial wait between retries, grows exponentially
	RedisWarnThreshold    int           // warn after this many attempts
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LINKDROP_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("LINKDROP_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("LINKDROP_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LINKDROP_PRETTY_LOG", true),

		// Lifecycle policy
		OwnerID:      requireEnv("LINKDROP_OWNER_ID"),
		Quota:        int64(getenvInt("LINKDROP_MAX_LINKS_PER_USER", 10)),
		Cooldown:     mustDuration("LINKDROP_COOLDOWN", 15*time.Minute),
		ActionWindow: mustDuration("LINKDROP_ACTION_WINDOW", 30*time.Minute),
		LinkTTL:      mustDuration("LINKDROP_LINK_TTL", 1*time.Hour),

		// State layout
		AuditDir:       getenv("LINKDROP_AUDIT_DIR", "/app/data/audit"),
		RosterFile:     getenv("LINKDROP_ROSTER_FILE", "/app/roster.yaml"),
		ReloadInterval: mustDuration("LINKDROP_RELOAD_SOURCE_INTERVAL", 24*time.Hour),
		GCInterval:     mustDuration("LINKDROP_GC_INTERVAL", 24*time.Hour),

		// Notifications
		NotifyURL:     getenv("LINKDROP_NOTIFY_URL", ""), // Optional, empty = log-only notifier
		NotifyTimeout: mustDuration("LINKDROP_NOTIFY_TIMEOUT", 5*time.Second),

		// Redis settings
		RedisAddr:             requireEnv("LINKDROP_REDIS_ADDR"),
		RedisUser:             getenv("LINKDROP_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("LINKDROP_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("LINKDROP_REDIS_PASSWORD", ""),
		RedisDB:               requireEnvInt("LINKDROP_REDIS_DB"),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),
	}

	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: LINKDROP_REDIS_PASSWORD is required when LINKDROP_REDIS_PASSWORD_REQUIRED=true")
	}

	if err := cfg.validateWindows(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	return cfg
}

// validateWindows enforces the assignment time-window invariants:
// 0 < cooldown <= action window <= link TTL, and a positive quota.
func (c *Config) validateWindows() error {
	if c.Quota < 1 {
		return fmt.Errorf("LINKDROP_MAX_LINKS_PER_USER must be >= 1, got %d", c.Quota)
	}
	if c.Cooldown <= 0 {
		return fmt.Errorf("LINKDROP_COOLDOWN must be > 0, got %v", c.Cooldown)
	}
	if c.ActionWindow < c.Cooldown {
		return fmt.Errorf("LINKDROP_ACTION_WINDOW (%v) must be >= LINKDROP_COOLDOWN (%v)",
			c.ActionWindow, c.Cooldown)
	}
	if c.LinkTTL < c.ActionWindow {
		return fmt.Errorf("LINKDROP_LINK_TTL (%v) must be >= LINKDROP_ACTION_WINDOW (%v)",
			c.LinkTTL, c.ActionWindow)
	}
	return nil
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
