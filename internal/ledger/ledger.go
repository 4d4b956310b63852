package ledger

import (
	"sync"

	"github.com/MrSnakeDoc/linkdrop/internal/domain"
)

// Ledger aggregates lifetime usage counters per employee and
// contribution stats per contributor.
//
// Pure aggregation: every terminal lifecycle event increments exactly
// one counter on one employee record and one contributor record. There
// are no decrements. The only gating read is Sent against the quota.
type Ledger struct {
	mu           sync.RWMutex
	counters     map[string]*domain.CounterSet        // employee id -> totals
	contributors map[string]*domain.ContributionStats // contributor id -> totals
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		counters:     make(map[string]*domain.CounterSet),
		contributors: make(map[string]*domain.ContributionStats),
	}
}

func (l *Ledger) counterSet(employeeID string) *domain.CounterSet {
	cs, ok := l.counters[employeeID]
	if !ok {
		cs = &domain.CounterSet{}
		l.counters[employeeID] = cs
	}
	return cs
}

func (l *Ledger) contribution(contributorID, name string) *domain.ContributionStats {
	st, ok := l.contributors[contributorID]
	if !ok {
		st = &domain.ContributionStats{}
		l.contributors[contributorID] = st
	}
	if name != "" {
		st.Name = name
	}
	return st
}

// Sent returns the lifetime number of links handed to an employee.
func (l *Ledger) Sent(employeeID string) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if cs, ok := l.counters[employeeID]; ok {
		return cs.Sent
	}
	return 0
}

// IncrSent records one link handed out.
func (l *Ledger) IncrSent(employeeID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counterSet(employeeID).Sent++
}

// CreditCopied records a copy terminal event on both sides.
func (l *Ledger) CreditCopied(employeeID, contributorID, contributorName string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counterSet(employeeID).Copied++
	l.contribution(contributorID, contributorName).Copied++
}

// CreditCancelled records a cancel terminal event on both sides.
func (l *Ledger) CreditCancelled(employeeID, contributorID, contributorName string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counterSet(employeeID).Cancelled++
	l.contribution(contributorID, contributorName).Cancelled++
}

// CreditExpired records an expiry terminal event (manual or timer) on
// both sides.
func (l *Ledger) CreditExpired(employeeID, contributorID, contributorName string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counterSet(employeeID).Expired++
	l.contribution(contributorID, contributorName).Expired++
}

// ContributorAdded records one contributed link.
func (l *Ledger) ContributorAdded(contributorID, contributorName string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.contribution(contributorID, contributorName).Added++
}

// Counters returns a copy of one employee's totals.
func (l *Ledger) Counters(employeeID string) domain.CounterSet {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if cs, ok := l.counters[employeeID]; ok {
		return *cs
	}
	return domain.CounterSet{}
}

// AllCounters returns a copy of every employee's totals.
func (l *Ledger) AllCounters() map[string]domain.CounterSet {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]domain.CounterSet, len(l.counters))
	for id, cs := range l.counters {
		out[id] = *cs
	}
	return out
}

// Contribution returns a copy of one contributor's totals.
func (l *Ledger) Contribution(contributorID string) domain.ContributionStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if st, ok := l.contributors[contributorID]; ok {
		return *st
	}
	return domain.ContributionStats{}
}

// AllContributions returns a copy of every contributor's totals.
func (l *Ledger) AllContributions() map[string]domain.ContributionStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]domain.ContributionStats, len(l.contributors))
	for id, st := range l.contributors {
		out[id] = *st
	}
	return out
}

// RestoreCounters replaces all employee totals, used on startup sync.
func (l *Ledger) RestoreCounters(counters map[string]domain.CounterSet) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counters = make(map[string]*domain.CounterSet, len(counters))
	for id, cs := range counters {
		c := cs
		l.counters[id] = &c
	}
}

// RestoreContributions replaces all contributor totals, used on startup sync.
func (l *Ledger) RestoreContributions(stats map[string]domain.ContributionStats) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.contributors = make(map[string]*domain.ContributionStats, len(stats))
	for id, st := range stats {
		s := st
		l.contributors[id] = &s
	}
}
