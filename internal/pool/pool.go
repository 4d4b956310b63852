package pool

import (
	"sync"

	"github.com/MrSnakeDoc/linkdrop/internal/domain"
)

// Pool is the FIFO queue of unassigned contributed links.
//
// FIFO order is the sole fairness guarantee: no priority, no dedup.
// Returned and expired links re-enter at the tail, so they are treated
// as fresh contributions and do not jump the queue.
type Pool struct {
	mu    sync.RWMutex
	links []domain.Link
}

// New creates an empty pool.
func New() *Pool {
	return &Pool{}
}

// Contribute appends a link to the tail.
func (p *Pool) Contribute(link domain.Link) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.links = append(p.links, link)
}

// PopFront removes and returns the oldest entry. The second return is
// false when the pool is empty.
func (p *Pool) PopFront() (domain.Link, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.links) == 0 {
		return domain.Link{}, false
	}

	link := p.links[0]
	p.links = p.links[1:]
	return link, true
}

// Len returns the number of queued links.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.links)
}

// Snapshot returns a copy of the queue in FIFO order, head first.
// Used for persistence and reports; the pool itself is untouched.
func (p *Pool) Snapshot() []domain.Link {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]domain.Link, len(p.links))
	copy(out, p.links)
	return out
}

// Restore replaces the queue with the given links, head first.
// Used on startup when rehydrating from the store.
func (p *Pool) Restore(links []domain.Link) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.links = make([]domain.Link, len(links))
	copy(p.links, links)
}
