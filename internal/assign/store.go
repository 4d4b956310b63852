package assign

import (
	"sync"

	"github.com/MrSnakeDoc/linkdrop/internal/domain"
)

// Store holds the live assignments, at most one per employee id.
type Store struct {
	mu     sync.RWMutex
	active map[string]*domain.Assignment // employee id -> assignment
}

// New creates an empty assignment store.
func New() *Store {
	return &Store{
		active: make(map[string]*domain.Assignment),
	}
}

// Get retrieves the live assignment for an employee.
func (s *Store) Get(employeeID string) (*domain.Assignment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.active[employeeID]
	return a, ok
}

// Put installs the assignment for an employee, replacing any prior one.
// The engine guarantees the prior assignment was resolved first.
func (s *Store) Put(employeeID string, a *domain.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active[employeeID] = a
}

// Clear removes the assignment for an employee.
func (s *Store) Clear(employeeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.active, employeeID)
}

// Count returns the number of live assignments.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.active)
}
