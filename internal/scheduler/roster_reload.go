package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/linkdrop/internal/domain"
	"github.com/MrSnakeDoc/linkdrop/internal/logger"
	"github.com/MrSnakeDoc/linkdrop/internal/registry"
	"github.com/MrSnakeDoc/linkdrop/internal/sources/roster"
	redisstore "github.com/MrSnakeDoc/linkdrop/internal/store/redis"
)

// RosterReloader handles periodic reloading of the roster seed file
// into the employee and admin registries.
type RosterReloader struct {
	loader        *roster.Loader
	mapper        *roster.Mapper
	store         *redisstore.Store
	registry      *registry.Registry
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewRosterReloader creates a new roster reloader.
func NewRosterReloader(
	rosterFile string,
	store *redisstore.Store,
	reg *registry.Registry,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *RosterReloader {
	return &RosterReloader{
		loader:        roster.NewLoader(rosterFile),
		mapper:        roster.NewMapper(),
		store:         store,
		registry:      reg,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic reload process.
func (rr *RosterReloader) Start(ctx context.Context) error {
	// Load immediately on start
	if err := rr.Reload(ctx); err != nil {
		return fmt.Errorf("initial roster reload failed: %w", err)
	}

	ticker := time.NewTicker(rr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := rr.Reload(ctx); err != nil {
					rr.logger.Error("failed to reload roster",
						logger.Error(err))
				}
			case <-rr.manualTrigger:
				rr.logger.Info("manual roster reload triggered")
				if err := rr.Reload(ctx); err != nil {
					rr.logger.Error("failed to reload roster",
						logger.Error(err))
				}
			case <-rr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader.
func (rr *RosterReloader) Stop() {
	close(rr.stopCh)
}

// Reload loads the roster file and updates registry + store. Entries
// removed from the file are soft-disabled, never hard-deleted here; the
// garbage collector purges them later.
func (rr *RosterReloader) Reload(ctx context.Context) error {
	rr.logger.Info("reloading roster")

	config, err := rr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load roster: %w", err)
	}

	newEmployees := rr.mapper.MapEmployees(config)
	newAdmins := rr.mapper.MapAdmins(config)

	rr.logger.Info("loaded roster",
		logger.Int("employees", len(newEmployees)),
		logger.Int("admins", len(newAdmins)))

	newEmployees = append(newEmployees, rr.disabledEmployees(newEmployees)...)
	newAdmins = append(newAdmins, rr.disabledAdmins(newAdmins)...)

	rr.registry.UpdateEmployees(newEmployees)
	rr.registry.UpdateAdmins(newAdmins)

	// Update Redis store (best effort)
	if rr.store != nil {
		if err := rr.store.SaveEmployeesMany(ctx, newEmployees); err != nil {
			rr.logger.Warn("failed to save employees to redis",
				logger.Error(err))
		}
		if err := rr.store.SaveAdminsMany(ctx, newAdmins); err != nil {
			rr.logger.Warn("failed to save admins to redis",
				logger.Error(err))
		}
	}

	return nil
}

// disabledEmployees returns existing employees missing from the new
// roster, disabled by the registry under its own lock.
func (rr *RosterReloader) disabledEmployees(current []*domain.Employee) []*domain.Employee {
	newIDs := make(map[string]bool, len(current))
	for _, e := range current {
		newIDs[e.ID] = true
	}

	disabled := rr.registry.DisableMissingEmployees(newIDs)
	if len(disabled) > 0 {
		rr.logger.Info("marking removed employees as disabled",
			logger.Int("count", len(disabled)))
	}
	return disabled
}

// disabledAdmins returns existing admins missing from the new roster,
// disabled by the registry under its own lock.
func (rr *RosterReloader) disabledAdmins(current []*domain.Admin) []*domain.Admin {
	newIDs := make(map[string]bool, len(current))
	for _, a := range current {
		newIDs[a.ID] = true
	}

	disabled := rr.registry.DisableMissingAdmins(newIDs)
	if len(disabled) > 0 {
		rr.logger.Info("marking removed admins as disabled",
			logger.Int("count", len(disabled)))
	}
	return disabled
}
