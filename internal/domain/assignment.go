package domain

import "time"

// Assignment is the single live link held by one employee.
//
// At most one Assignment exists per employee id at any time. It is
// destroyed by a terminal action (copy / cancel / manual expire) or by
// the expiry timer.
type Assignment struct {
	// ─────────────────────────────
	// Link snapshot (immutable)
	// ─────────────────────────────

	// URL is the assigned link, captured when the pool entry was popped.
	URL string

	// ContributorID / ContributorName identify who supplied the link.
	ContributorID   string
	ContributorName string

	// ─────────────────────────────
	// Time windows
	// ─────────────────────────────

	// AssignedAt is when the link was handed out.
	AssignedAt time.Time

	// RequestUnlockAt is the earliest time a new request is allowed,
	// even while this assignment is still open (the cooldown).
	RequestUnlockAt time.Time

	// ActionDeadline is the latest time cancel and manual expire are
	// permitted. Copy has no deadline.
	ActionDeadline time.Time

	// ExpiresAt is when the expiry timer fires if nothing resolved
	// the assignment first.
	ExpiresAt time.Time
}

// Invariants: AssignedAt < RequestUnlockAt <= ActionDeadline and
// AssignedAt < ExpiresAt. NewAssignment derives the windows from the
// configured durations so the invariants hold by construction.
func NewAssignment(link Link, now time.Time, cooldown, actionWindow, ttl time.Duration) *Assignment {
	return &Assignment{
		URL:             link.URL,
		ContributorID:   link.ContributorID,
		ContributorName: link.ContributorName,
		AssignedAt:      now,
		RequestUnlockAt: now.Add(cooldown),
		ActionDeadline:  now.Add(actionWindow),
		ExpiresAt:       now.Add(ttl),
	}
}

// Link rebuilds the pool entry this assignment was created from,
// used when a cancelled or timer-expired link returns to the pool tail.
func (a *Assignment) Link() Link {
	return Link{
		URL:             a.URL,
		ContributorID:   a.ContributorID,
		ContributorName: a.ContributorName,
	}
}

// CooldownElapsed reports whether a new request is allowed at now.
func (a *Assignment) CooldownElapsed(now time.Time) bool {
	return !now.Before(a.RequestUnlockAt)
}

// WithinActionWindow reports whether cancel / manual expire are still
// permitted at now.
func (a *Assignment) WithinActionWindow(now time.Time) bool {
	return !now.After(a.ActionDeadline)
}
