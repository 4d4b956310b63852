package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/linkdrop/internal/logger"
	"github.com/MrSnakeDoc/linkdrop/internal/registry"
	redisstore "github.com/MrSnakeDoc/linkdrop/internal/store/redis"
)

const (
	// DefaultGCThreshold is the duration after which disabled registry
	// entries are deleted for good.
	DefaultGCThreshold = 30 * 24 * time.Hour // 30 days
)

// GarbageCollector purges registry entries that have been disabled
// longer than the threshold, from memory and from Redis.
type GarbageCollector struct {
	store     *redisstore.Store
	registry  *registry.Registry
	logger    logger.Logger
	interval  time.Duration
	threshold time.Duration
	stopCh    chan struct{}
}

// NewGarbageCollector creates a new garbage collector.
func NewGarbageCollector(
	store *redisstore.Store,
	reg *registry.Registry,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
) *GarbageCollector {
	if threshold == 0 {
		threshold = DefaultGCThreshold
	}

	return &GarbageCollector{
		store:     store,
		registry:  reg,
		logger:    log,
		interval:  interval,
		threshold: threshold,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic collection process.
func (gc *GarbageCollector) Start(ctx context.Context) error {
	// Run immediately on start
	if err := gc.Collect(ctx); err != nil {
		gc.logger.Warn("initial garbage collection failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := gc.Collect(ctx); err != nil {
					gc.logger.Error("garbage collection failed",
						logger.Error(err))
				}
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the garbage collector.
func (gc *GarbageCollector) Stop() {
	close(gc.stopCh)
}

// Collect removes registry entries disabled for longer than the
// threshold.
func (gc *GarbageCollector) Collect(ctx context.Context) error {
	gc.logger.Info("running garbage collection for disabled registry entries")

	now := time.Now()
	employeesDeleted := gc.collectEmployees(ctx, now)
	adminsDeleted := gc.collectAdmins(ctx, now)

	total := employeesDeleted + adminsDeleted
	if total > 0 {
		gc.logger.Info("garbage collection completed",
			logger.Int("employees_deleted", employeesDeleted),
			logger.Int("admins_deleted", adminsDeleted))
	} else {
		gc.logger.Debug("no registry entries to garbage collect")
	}

	return nil
}

func (gc *GarbageCollector) collectEmployees(ctx context.Context, now time.Time) int {
	deleted := 0
	for _, e := range gc.registry.GetAllEmployees() {
		if !e.Disabled || e.UpdatedAt.IsZero() {
			continue
		}
		if now.Sub(e.UpdatedAt) < gc.threshold {
			continue
		}

		gc.registry.DeleteEmployee(e.ID)

		// Delete from Redis store (best effort)
		if gc.store != nil {
			if err := gc.store.DeleteEmployee(ctx, e.ID); err != nil {
				gc.logger.Warn("failed to delete employee from redis",
					logger.String("employee_id", e.ID),
					logger.Error(err))
			}
		}

		gc.logger.Info("garbage collected disabled employee",
			logger.String("employee_id", e.ID),
			logger.String("name", e.Name))
		deleted++
	}
	return deleted
}

func (gc *GarbageCollector) collectAdmins(ctx context.Context, now time.Time) int {
	deleted := 0
	for _, a := range gc.registry.GetAllAdmins() {
		if !a.Disabled || a.UpdatedAt.IsZero() {
			continue
		}
		if now.Sub(a.UpdatedAt) < gc.threshold {
			continue
		}

		gc.registry.DeleteAdmin(a.ID)

		if gc.store != nil {
			if err := gc.store.DeleteAdmin(ctx, a.ID); err != nil {
				gc.logger.Warn("failed to delete admin from redis",
					logger.String("admin_id", a.ID),
					logger.Error(err))
			}
		}

		gc.logger.Info("garbage collected disabled admin",
			logger.String("admin_id", a.ID),
			logger.String("name", a.Name))
		deleted++
	}
	return deleted
}
