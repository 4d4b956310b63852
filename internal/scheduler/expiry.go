package scheduler

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkdrop/internal/logger"
)

// ExpireFunc is invoked when a scheduled expiry fires. The engine's
// implementation performs the mandatory self-check against the live
// assignment, so a stale firing is harmless.
type ExpireFunc func(employeeID, url string)

// ExpiryScheduler arms one-shot expiry timers, one per assignment,
// keyed by (employee id, captured URL).
//
// There is no explicit cancel on resolve: cancellation is implicit
// because the callback self-aborts when the assignment it finds no
// longer matches. A resolved assignment just costs one wasted wakeup.
type ExpiryScheduler struct {
	fire   ExpireFunc
	logger logger.Logger

	mu      sync.Mutex
	pending int
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewExpiryScheduler creates a scheduler delivering firings to fire.
func NewExpiryScheduler(fire ExpireFunc, log logger.Logger) *ExpiryScheduler {
	return &ExpiryScheduler{
		fire:   fire,
		logger: log,
		stopCh: make(chan struct{}),
	}
}

// Schedule arms a timer firing at the given instant. A deadline already
// in the past fires immediately.
func (s *ExpiryScheduler) Schedule(employeeID, url string, at time.Time) {
	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	s.pending++
	s.mu.Unlock()

	s.logger.Debug("expiry timer armed",
		logger.String("employee", employeeID),
		logger.Duration("in", delay))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			s.pending--
			s.mu.Unlock()
		}()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
			s.fire(employeeID, url)
		case <-s.stopCh:
		}
	}()
}

// Pending returns the number of armed timers.
func (s *ExpiryScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pending
}

// Stop drops every armed timer and waits for the goroutines to exit.
func (s *ExpiryScheduler) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}
