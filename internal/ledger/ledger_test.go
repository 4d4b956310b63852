package ledger

import (
	"sync"
	"testing"

	"github.com/MrSnakeDoc/linkdrop/internal/domain"
)

func TestSentStartsAtZero(t *testing.T) {
	l := New()
	if got := l.Sent("emp1"); got != 0 {
		t.Errorf("Sent() on fresh ledger = %v, want 0", got)
	}
}

func TestIncrSent(t *testing.T) {
	l := New()
	l.IncrSent("emp1")
	l.IncrSent("emp1")

	if got := l.Sent("emp1"); got != 2 {
		t.Errorf("Sent() = %v, want 2", got)
	}
	if got := l.Sent("emp2"); got != 0 {
		t.Errorf("Sent() for untouched employee = %v, want 0", got)
	}
}

func TestTerminalCreditsBothSides(t *testing.T) {
	tests := []struct {
		name   string
		credit func(l *Ledger)
		check  func(cs domain.CounterSet, st domain.ContributionStats) bool
	}{
		{
			name:   "copied",
			credit: func(l *Ledger) { l.CreditCopied("emp1", "admin1", "Ana") },
			check: func(cs domain.CounterSet, st domain.ContributionStats) bool {
				return cs.Copied == 1 && st.Copied == 1
			},
		},
		{
			name:   "cancelled",
			credit: func(l *Ledger) { l.CreditCancelled("emp1", "admin1", "Ana") },
			check: func(cs domain.CounterSet, st domain.ContributionStats) bool {
				return cs.Cancelled == 1 && st.Cancelled == 1
			},
		},
		{
			name:   "expired",
			credit: func(l *Ledger) { l.CreditExpired("emp1", "admin1", "Ana") },
			check: func(cs domain.CounterSet, st domain.ContributionStats) bool {
				return cs.Expired == 1 && st.Expired == 1
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New()
			tt.credit(l)

			cs := l.Counters("emp1")
			st := l.Contribution("admin1")
			if !tt.check(cs, st) {
				t.Errorf("counters = %+v, contribution = %+v", cs, st)
			}
			if st.Name != "Ana" {
				t.Errorf("contributor name = %v, want Ana", st.Name)
			}
		})
	}
}

func TestContributorAdded(t *testing.T) {
	l := New()
	l.ContributorAdded("admin1", "Ana")
	l.ContributorAdded("admin1", "Ana")

	if got := l.Contribution("admin1").Added; got != 2 {
		t.Errorf("Added = %v, want 2", got)
	}
}

func TestCountersReturnsCopy(t *testing.T) {
	l := New()
	l.IncrSent("emp1")

	cs := l.Counters("emp1")
	cs.Sent = 99

	if got := l.Sent("emp1"); got != 1 {
		t.Errorf("mutating the returned copy changed the ledger, Sent = %v", got)
	}
}

func TestRestore(t *testing.T) {
	l := New()
	l.IncrSent("stale")

	l.RestoreCounters(map[string]domain.CounterSet{
		"emp1": {Sent: 3, Copied: 2},
	})
	l.RestoreContributions(map[string]domain.ContributionStats{
		"admin1": {Name: "Ana", Added: 5},
	})

	if got := l.Sent("stale"); got != 0 {
		t.Errorf("RestoreCounters() kept stale entry, Sent = %v", got)
	}
	if got := l.Sent("emp1"); got != 3 {
		t.Errorf("restored Sent = %v, want 3", got)
	}
	if got := l.Contribution("admin1").Added; got != 5 {
		t.Errorf("restored Added = %v, want 5", got)
	}
}

func TestConcurrentCredits(t *testing.T) {
	l := New()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.IncrSent("emp1")
			l.CreditCopied("emp1", "admin1", "Ana")
		}()
	}
	wg.Wait()

	if got := l.Sent("emp1"); got != 100 {
		t.Errorf("concurrent Sent = %v, want 100", got)
	}
	if got := l.Contribution("admin1").Copied; got != 100 {
		t.Errorf("concurrent contributor Copied = %v, want 100", got)
	}
}
