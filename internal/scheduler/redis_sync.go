package scheduler

import (
	"context"

	"github.com/MrSnakeDoc/linkdrop/internal/ledger"
	"github.com/MrSnakeDoc/linkdrop/internal/logger"
	"github.com/MrSnakeDoc/linkdrop/internal/pool"
	"github.com/MrSnakeDoc/linkdrop/internal/registry"
	redisstore "github.com/MrSnakeDoc/linkdrop/internal/store/redis"
)

// RedisSyncer hydrates the in-memory state from Redis on startup:
// registries, ledger totals and the pool snapshot.
type RedisSyncer struct {
	store    *redisstore.Store
	registry *registry.Registry
	ledger   *ledger.Ledger
	pool     *pool.Pool
	logger   logger.Logger
}

// NewRedisSyncer creates a new Redis syncer.
func NewRedisSyncer(
	store *redisstore.Store,
	reg *registry.Registry,
	led *ledger.Ledger,
	p *pool.Pool,
	log logger.Logger,
) *RedisSyncer {
	return &RedisSyncer{
		store:    store,
		registry: reg,
		ledger:   led,
		pool:     p,
		logger:   log,
	}
}

// Sync loads state from Redis into memory. Each section is independent:
// a failure in one does not block the others; the first error is
// returned after all sections ran.
func (rs *RedisSyncer) Sync(ctx context.Context) error {
	rs.logger.Info("syncing state from redis to memory")

	var firstErr error

	employees, err := rs.store.GetAllEmployees(ctx)
	if err != nil {
		firstErr = err
	} else if len(employees) > 0 {
		rs.registry.UpdateEmployees(employees)
		rs.logger.Info("synced employees from redis",
			logger.Int("count", len(employees)))
	}

	admins, err := rs.store.GetAllAdmins(ctx)
	if err != nil && firstErr == nil {
		firstErr = err
	} else if err == nil && len(admins) > 0 {
		rs.registry.UpdateAdmins(admins)
		rs.logger.Info("synced admins from redis",
			logger.Int("count", len(admins)))
	}

	counters, err := rs.store.GetAllCounters(ctx)
	if err != nil && firstErr == nil {
		firstErr = err
	} else if err == nil && len(counters) > 0 {
		rs.ledger.RestoreCounters(counters)
		rs.logger.Info("synced usage counters from redis",
			logger.Int("count", len(counters)))
	}

	contributions, err := rs.store.GetAllContributions(ctx)
	if err != nil && firstErr == nil {
		firstErr = err
	} else if err == nil && len(contributions) > 0 {
		rs.ledger.RestoreContributions(contributions)
		rs.logger.Info("synced contribution stats from redis",
			logger.Int("count", len(contributions)))
	}

	links, err := rs.store.GetPool(ctx)
	if err != nil && firstErr == nil {
		firstErr = err
	} else if err == nil && len(links) > 0 {
		rs.pool.Restore(links)
		rs.logger.Info("synced pool from redis",
			logger.Int("count", len(links)))
	}

	return firstErr
}
