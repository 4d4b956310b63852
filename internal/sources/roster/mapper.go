package roster

import (
	"time"

	"github.com/MrSnakeDoc/linkdrop/internal/domain"
)

// Mapper converts roster entries to domain entities.
type Mapper struct{}

// NewMapper creates a new mapper instance.
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapEmployees converts the employee table to domain entities. Entries
// missing an id or a name are skipped.
func (m *Mapper) MapEmployees(config *Config) []*domain.Employee {
	now := time.Now()
	employees := make([]*domain.Employee, 0, len(config.Employees))

	for _, entry := range config.Employees {
		if entry.ID == "" || entry.Name == "" {
			continue
		}
		employees = append(employees, &domain.Employee{
			ID:        entry.ID,
			Name:      entry.Name,
			Sources:   []string{"roster"},
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	return employees
}

// MapAdmins converts the admin table to domain entities. Entries
// missing an id or a name are skipped.
func (m *Mapper) MapAdmins(config *Config) []*domain.Admin {
	now := time.Now()
	admins := make([]*domain.Admin, 0, len(config.Admins))

	for _, entry := range config.Admins {
		if entry.ID == "" || entry.Name == "" {
			continue
		}
		admins = append(admins, &domain.Admin{
			ID:        entry.ID,
			Name:      entry.Name,
			Sources:   []string{"roster"},
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	return admins
}
