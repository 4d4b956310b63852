package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/linkdrop/internal/domain"
	"github.com/MrSnakeDoc/linkdrop/internal/logger"
	"github.com/MrSnakeDoc/linkdrop/internal/registry"
)

func TestGarbageCollector_Collect(t *testing.T) {
	log := logger.New("error", false)
	reg := registry.New()

	now := time.Now()
	employees := []*domain.Employee{
		{
			ID:        "1001",
			Name:      "active",
			Sources:   []string{"roster"},
			Disabled:  false,
			UpdatedAt: now,
		},
		{
			ID:        "1002",
			Name:      "recently-disabled",
			Sources:   []string{"roster"},
			Disabled:  true,
			UpdatedAt: now.Add(-10 * 24 * time.Hour), // disabled 10 days ago
		},
		{
			ID:        "1003",
			Name:      "old-disabled",
			Sources:   []string{"roster"},
			Disabled:  true,
			UpdatedAt: now.Add(-35 * 24 * time.Hour), // disabled 35 days ago
		},
	}
	reg.UpdateEmployees(employees)

	admins := []*domain.Admin{
		{
			ID:        "2001",
			Name:      "old-disabled-admin",
			Sources:   []string{"roster"},
			Disabled:  true,
			UpdatedAt: now.Add(-40 * 24 * time.Hour),
		},
	}
	reg.UpdateAdmins(admins)

	// 30 day threshold, no Redis store for this test
	gc := NewGarbageCollector(
		nil,
		reg,
		log,
		24*time.Hour,
		30*24*time.Hour,
	)

	if err := gc.Collect(context.Background()); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if len(reg.GetAllEmployees()) != 2 {
		t.Errorf("Expected 2 employees after GC, got %d", len(reg.GetAllEmployees()))
	}
	if _, ok := reg.GetEmployee("1001"); !ok {
		t.Error("Active employee was incorrectly removed")
	}
	if _, ok := reg.GetEmployee("1002"); !ok {
		t.Error("Recently disabled employee was incorrectly removed")
	}
	if _, ok := reg.GetEmployee("1003"); ok {
		t.Error("Old disabled employee was not removed")
	}
	if _, ok := reg.GetAdmin("2001"); ok {
		t.Error("Old disabled admin was not removed")
	}
}
