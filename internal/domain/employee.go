package domain

import "time"

// Employee is a field worker allowed to request links.
//
// Membership is a durable allow-list: an id not present (or disabled)
// is unauthorized for every lifecycle action.
type Employee struct {
	// ID is the chat id of the employee, the canonical identifier.
	ID string

	// Name is the display name used in reports and audit rows.
	Name string

	// Sources indicates where this entry was discovered from.
	// Example: roster, redis
	Sources []string

	// CreatedAt is the first time the entry was seen.
	CreatedAt time.Time

	// UpdatedAt is updated on any mutation, including disabling.
	UpdatedAt time.Time

	// Disabled marks a soft-deleted entry. It stays around for the
	// garbage collector and is excluded from authorization.
	Disabled bool
}

// Admin is an onboarded contributor allowed to add links and read reports.
// The owner id from config is always authorized and needs no entry.
type Admin struct {
	ID        string
	Name      string
	Sources   []string
	CreatedAt time.Time
	UpdatedAt time.Time
	Disabled  bool
}

// CounterSet holds the lifetime usage totals of one employee.
// All counters are monotonically non-decreasing; Sent gates the quota.
type CounterSet struct {
	Sent      int64
	Copied    int64
	Cancelled int64
	Expired   int64
}

// ContributionStats mirrors CounterSet but is keyed by who supplied the
// link, for cross-checking pool health.
type ContributionStats struct {
	Name      string
	Added     int64
	Copied    int64
	Cancelled int64
	Expired   int64
}
