package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/linkdrop/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Store handles Redis operations for the registries, the ledger and
// the pool snapshot.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// ─────────────────────────────────────────────────────────────────
// Employee registry
// ─────────────────────────────────────────────────────────────────

// SaveEmployee stores one employee entry.
func (s *Store) SaveEmployee(ctx context.Context, e *domain.Employee) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal employee: %w", err)
	}

	if err := s.client.Set(ctx, EmployeeKey(e.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	if err := s.client.SAdd(ctx, KeyAllEmployees, e.ID).Err(); err != nil {
		return fmt.Errorf("failed to add employee to set: %w", err)
	}
	return nil
}

// GetEmployee retrieves one employee entry by ID.
func (s *Store) GetEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	data, err := s.client.Get(ctx, EmployeeKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("employee not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	var e domain.Employee
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal employee: %w", err)
	}
	return &e, nil
}

// GetAllEmployees retrieves every employee entry.
func (s *Store) GetAllEmployees(ctx context.Context) ([]*domain.Employee, error) {
	ids, err := s.client.SMembers(ctx, KeyAllEmployees).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get employee IDs: %w", err)
	}

	employees := make([]*domain.Employee, 0, len(ids))
	for _, id := range ids {
		e, err := s.GetEmployee(ctx, id)
		if err != nil {
			// Skip entries that couldn't be retrieved
			continue
		}
		employees = append(employees, e)
	}
	return employees, nil
}

// DeleteEmployee removes one employee entry.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, EmployeeKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	if err := s.client.SRem(ctx, KeyAllEmployees, id).Err(); err != nil {
		return fmt.Errorf("failed to remove employee from set: %w", err)
	}
	return nil
}

// SaveEmployeesMany stores multiple employee entries (bulk operation).
func (s *Store) SaveEmployeesMany(ctx context.Context, employees []*domain.Employee) error {
	pipe := s.client.Pipeline()

	for _, e := range employees {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal employee %s: %w", e.ID, err)
		}
		pipe.Set(ctx, EmployeeKey(e.ID), data, 0)
		pipe.SAdd(ctx, KeyAllEmployees, e.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save employees: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────
// Admin registry
// ─────────────────────────────────────────────────────────────────

// SaveAdmin stores one admin entry.
func (s *Store) SaveAdmin(ctx context.Context, a *domain.Admin) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal admin: %w", err)
	}

	if err := s.client.Set(ctx, AdminKey(a.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save admin: %w", err)
	}
	if err := s.client.SAdd(ctx, KeyAllAdmins, a.ID).Err(); err != nil {
		return fmt.Errorf("failed to add admin to set: %w", err)
	}
	return nil
}

// GetAllAdmins retrieves every admin entry.
func (s *Store) GetAllAdmins(ctx context.Context) ([]*domain.Admin, error) {
	ids, err := s.client.SMembers(ctx, KeyAllAdmins).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get admin IDs: %w", err)
	}

	admins := make([]*domain.Admin, 0, len(ids))
	for _, id := range ids {
		data, err := s.client.Get(ctx, AdminKey(id)).Bytes()
		if err != nil {
			continue
		}
		var a domain.Admin
		if err := json.Unmarshal(data, &a); err != nil {
			continue
		}
		admins = append(admins, &a)
	}
	return admins, nil
}

// DeleteAdmin removes one admin entry.
func (s *Store) DeleteAdmin(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, AdminKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete admin: %w", err)
	}
	if err := s.client.SRem(ctx, KeyAllAdmins, id).Err(); err != nil {
		return fmt.Errorf("failed to remove admin from set: %w", err)
	}
	return nil
}

// SaveAdminsMany stores multiple admin entries (bulk operation).
func (s *Store) SaveAdminsMany(ctx context.Context, admins []*domain.Admin) error {
	pipe := s.client.Pipeline()

	for _, a := range admins {
		data, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("failed to marshal admin %s: %w", a.ID, err)
		}
		pipe.Set(ctx, AdminKey(a.ID), data, 0)
		pipe.SAdd(ctx, KeyAllAdmins, a.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save admins: %w", err)
	}
	return nil
}
