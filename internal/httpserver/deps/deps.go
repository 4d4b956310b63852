package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/linkdrop/internal/audit"
	"github.com/MrSnakeDoc/linkdrop/internal/engine"
	"github.com/MrSnakeDoc/linkdrop/internal/ledger"
	"github.com/MrSnakeDoc/linkdrop/internal/logger"
	"github.com/MrSnakeDoc/linkdrop/internal/pool"
	"github.com/MrSnakeDoc/linkdrop/internal/registry"
	redisstore "github.com/MrSnakeDoc/linkdrop/internal/store/redis"
)

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	TimeNow       func() time.Time // for testing, defaults to time.Now
	OwnerID       string           // static owner chat id, always authorized
	Engine        *engine.Engine   // lifecycle engine, owner of all shared state
	Registry      *registry.Registry
	Ledger        *ledger.Ledger
	Pool          *pool.Pool
	Audit         *audit.Log
	Store         *redisstore.Store // durable mirror of registries and ledger
	RedisClient   *redis.Client     // Redis client connection, used by readiness
	ReloadTrigger chan struct{}     // channel to trigger manual roster reload
}
