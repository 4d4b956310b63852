package domain

import "time"

// Status is the lifecycle state recorded in an audit row.
type Status string

const (
	StatusPending   Status = "pending"
	StatusDone      Status = "done"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// AuditRow is one immutable record of a lifecycle event. Rows are
// appended to the day file and never mutated or deleted.
type AuditRow struct {
	// Date is the calendar date of the event (local clock), YYYY-MM-DD.
	Date string

	// EmployeeID / EmployeeName identify who held the link.
	EmployeeID   string
	EmployeeName string

	// URL is the link the event concerns.
	URL string

	// Status is pending on hand-out and done / cancelled / expired on
	// the terminal transition.
	Status Status

	// Per-phase timestamps. AssignedAt is always set; ResolvedAt is
	// set on terminal rows only.
	AssignedAt time.Time
	UnlockAt   time.Time
	DeadlineAt time.Time
	ExpiresAt  time.Time
	ResolvedAt time.Time

	// Note carries the disposal detail, e.g. "manual, not returned"
	// or "timer expired, returned to pool".
	Note string

	// ContributorID / ContributorName identify who supplied the link.
	ContributorID   string
	ContributorName string
}
