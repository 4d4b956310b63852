package registry

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkdrop/internal/domain"
)

// Registry provides in-memory storage and lookup for the employee and
// admin allow-lists. Redis is the durable mirror behind it; memory is
// the primary source once hydrated.
type Registry struct {
	mu         sync.RWMutex
	employees  map[string]*domain.Employee // ID -> Employee
	admins     map[string]*domain.Admin    // ID -> Admin
	lastReload time.Time                   // timestamp of last roster reload
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		employees: make(map[string]*domain.Employee),
		admins:    make(map[string]*domain.Admin),
	}
}

// ─────────────────────────────────────────────────────────────────
// Employee methods
// ─────────────────────────────────────────────────────────────────

// UpdateEmployees replaces all employees in the registry.
func (r *Registry) UpdateEmployees(employees []*domain.Employee) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.employees = make(map[string]*domain.Employee, len(employees))
	for _, e := range employees {
		r.employees[e.ID] = e
	}
	r.lastReload = time.Now()
}

// GetEmployee retrieves an employee by ID.
func (r *Registry) GetEmployee(id string) (*domain.Employee, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.employees[id]
	return e, ok
}

// GetAllEmployees returns all employees, disabled ones included.
func (r *Registry) GetAllEmployees() []*domain.Employee {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Employee, 0, len(r.employees))
	for _, e := range r.employees {
		out = append(out, e)
	}
	return out
}

// AddEmployee adds or updates a single employee.
func (r *Registry) AddEmployee(e *domain.Employee) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.employees[e.ID] = e
}

// DeleteEmployee removes an employee from the registry.
func (r *Registry) DeleteEmployee(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.employees, id)
}

// DisableEmployeeByName soft-deletes the first active employee with the
// given display name. Returns the entry, or false when no match exists.
func (r *Registry) DisableEmployeeByName(name string) (*domain.Employee, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.employees {
		if e.Name == name && !e.Disabled {
			e.Disabled = true
			e.UpdatedAt = time.Now()
			return e, true
		}
	}
	return nil, false
}

// DisableMissingEmployees disables every employee whose id is absent
// from keep and returns all missing entries, already-disabled ones
// included so a replace keeps them around for reporting. Mutation
// happens under the write lock; UpdatedAt is stamped only on a fresh
// disable so the garbage collection clock keeps running.
func (r *Registry) DisableMissingEmployees(keep map[string]bool) []*domain.Employee {
	r.mu.Lock()
	defer r.mu.Unlock()

	var missing []*domain.Employee
	for _, e := range r.employees {
		if keep[e.ID] {
			continue
		}
		if !e.Disabled {
			e.Disabled = true
			e.UpdatedAt = time.Now()
		}
		missing = append(missing, e)
	}
	return missing
}

// IsActiveEmployee reports whether id is an active allow-listed employee.
func (r *Registry) IsActiveEmployee(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.employees[id]
	return ok && !e.Disabled
}

// ─────────────────────────────────────────────────────────────────
// Admin methods
// ─────────────────────────────────────────────────────────────────

// UpdateAdmins replaces all admins in the registry.
func (r *Registry) UpdateAdmins(admins []*domain.Admin) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.admins = make(map[string]*domain.Admin, len(admins))
	for _, a := range admins {
		r.admins[a.ID] = a
	}
	r.lastReload = time.Now()
}

// GetAdmin retrieves an admin by ID.
func (r *Registry) GetAdmin(id string) (*domain.Admin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.admins[id]
	return a, ok
}

// GetAllAdmins returns all admins, disabled ones included.
func (r *Registry) GetAllAdmins() []*domain.Admin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Admin, 0, len(r.admins))
	for _, a := range r.admins {
		out = append(out, a)
	}
	return out
}

// AddAdmin adds or updates a single admin.
func (r *Registry) AddAdmin(a *domain.Admin) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.admins[a.ID] = a
}

// DeleteAdmin removes an admin from the registry.
func (r *Registry) DeleteAdmin(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.admins, id)
}

// DisableMissingAdmins is the admin counterpart of
// DisableMissingEmployees.
func (r *Registry) DisableMissingAdmins(keep map[string]bool) []*domain.Admin {
	r.mu.Lock()
	defer r.mu.Unlock()

	var missing []*domain.Admin
	for _, a := range r.admins {
		if keep[a.ID] {
			continue
		}
		if !a.Disabled {
			a.Disabled = true
			a.UpdatedAt = time.Now()
		}
		missing = append(missing, a)
	}
	return missing
}

// IsActiveAdmin reports whether id is an active allow-listed admin.
func (r *Registry) IsActiveAdmin(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.admins[id]
	return ok && !a.Disabled
}

// LastReload returns the timestamp of the last roster reload.
func (r *Registry) LastReload() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.lastReload
}
