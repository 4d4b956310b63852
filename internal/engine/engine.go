package engine

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkdrop/internal/assign"
	"github.com/MrSnakeDoc/linkdrop/internal/domain"
	"github.com/MrSnakeDoc/linkdrop/internal/ledger"
	"github.com/MrSnakeDoc/linkdrop/internal/logger"
	"github.com/MrSnakeDoc/linkdrop/internal/notify"
	"github.com/MrSnakeDoc/linkdrop/internal/pool"
	"github.com/MrSnakeDoc/linkdrop/internal/registry"
)

// AuditLog records lifecycle events durably before a transition is
// acknowledged.
type AuditLog interface {
	Append(row domain.AuditRow) error
}

// TimerScheduler arms a one-shot expiry firing keyed by the employee id
// and the captured URL.
type TimerScheduler interface {
	Schedule(employeeID, urlStr string, at time.Time)
}

// Persister mirrors counters, contributions and the pool to the durable
// store. All calls are best effort; memory is the primary source.
type Persister interface {
	SaveCounters(ctx context.Context, employeeID string, cs domain.CounterSet) error
	SaveContribution(ctx context.Context, contributorID string, st domain.ContributionStats) error
	SavePool(ctx context.Context, links []domain.Link) error
}

// Config holds the lifecycle policy knobs.
type Config struct {
	OwnerID      string        // static owner chat id, always notified
	Quota        int64         // max lifetime links per employee
	Cooldown     time.Duration // delay before the next request is allowed
	ActionWindow time.Duration // window in which cancel / manual expire are allowed
	LinkTTL      time.Duration // delay before the expiry timer fires
}

// Deps bundles the collaborators the engine orchestrates.
type Deps struct {
	Pool        *pool.Pool
	Assignments *assign.Store
	Ledger      *ledger.Ledger
	Registry    *registry.Registry
	Audit       AuditLog
	Notifier    notify.Notifier
	Timers      TimerScheduler
	Store       Persister // optional
	Logger      logger.Logger
	Clock       func() time.Time // optional, defaults to time.Now
}

// Engine is the single owner of all lifecycle state. Every transition
// for every employee runs under one mutex, so the lazy close of a prior
// assignment and the subsequent reassignment form a single critical
// section.
type Engine struct {
	mu sync.Mutex

	cfg         Config
	pool        *pool.Pool
	assignments *assign.Store
	ledger      *ledger.Ledger
	registry    *registry.Registry
	audit       AuditLog
	notifier    notify.Notifier
	timers      TimerScheduler
	store       Persister
	log         logger.Logger
	now         func() time.Time
}

// New creates the lifecycle engine. No singletons: tests instantiate
// isolated engines with their own state.
func New(cfg Config, d Deps) *Engine {
	now := d.Clock
	if now == nil {
		now = time.Now
	}
	return &Engine{
		cfg:         cfg,
		pool:        d.Pool,
		assignments: d.Assignments,
		ledger:      d.Ledger,
		registry:    d.Registry,
		audit:       d.Audit,
		notifier:    d.Notifier,
		timers:      d.Timers,
		store:       d.Store,
		log:         d.Logger,
		now:         now,
	}
}

// Request hands the oldest pooled link to an employee.
//
// Eligibility: the cooldown of any prior assignment has elapsed, the
// employee is under quota, and the pool is non-empty. A prior
// assignment still open after its cooldown is finalized as done before
// the new one is created (the lazy-close path).
func (e *Engine) Request(ctx context.Context, employeeID string) (*domain.Assignment, error) {
	const op = "engine.Request"

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()

	prior, hasPrior := e.assignments.Get(employeeID)
	if hasPrior && !prior.CooldownElapsed(now) {
		wait := prior.RequestUnlockAt.Sub(now).Round(time.Second)
		return nil, E(op, CooldownActive,
			fmt.Errorf("wait %s before requesting the next link", wait))
	}

	if sent := e.ledger.Sent(employeeID); sent >= e.cfg.Quota {
		return nil, E(op, QuotaExceeded,
			fmt.Errorf("limit of %d links reached", e.cfg.Quota))
	}

	if e.pool.Len() == 0 {
		return nil, E(op, PoolEmpty, fmt.Errorf("no links available right now"))
	}

	// Lazy close: the prior assignment outlived its cooldown without a
	// terminal action, so it is finalized as done before reassignment.
	if hasPrior {
		e.finalizePrior(ctx, employeeID, prior, now)
	}

	link, ok := e.pool.PopFront()
	if !ok {
		// Unreachable while the engine mutex is held around the Len check.
		return nil, E(op, PoolEmpty, fmt.Errorf("no links available right now"))
	}

	a := domain.NewAssignment(link, now, e.cfg.Cooldown, e.cfg.ActionWindow, e.cfg.LinkTTL)
	e.assignments.Put(employeeID, a)
	e.ledger.IncrSent(employeeID)
	e.timers.Schedule(employeeID, a.URL, a.ExpiresAt)

	if err := e.appendRow(employeeID, a, domain.StatusPending, "", time.Time{}); err != nil {
		return nil, E(op, Internal, err)
	}
	e.persist(ctx, employeeID, a.ContributorID, true)

	name := e.employeeName(employeeID)
	e.send(ctx, employeeID,
		fmt.Sprintf("🔗 Your link: %s\nUse it before %s.", a.URL, a.ExpiresAt.Format("15:04:05")))
	e.fanOut(ctx, a.ContributorID,
		fmt.Sprintf("📤 Link handed to %s.", name),
		fmt.Sprintf("📤 Your link was handed to %s.", name))

	e.log.Info("link assigned",
		logger.String("employee", employeeID),
		logger.String("url", a.URL),
		logger.Time("expires_at", a.ExpiresAt))

	return a, nil
}

// Copy resolves the live assignment as done. There is no time window:
// copy is valid for as long as the assignment exists.
func (e *Engine) Copy(ctx context.Context, employeeID string) (*domain.Assignment, error) {
	const op = "engine.Copy"

	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.assignments.Get(employeeID)
	if !ok {
		return nil, E(op, NoAssignment, fmt.Errorf("you have no active link"))
	}

	now := e.now()
	e.ledger.CreditCopied(employeeID, a.ContributorID, a.ContributorName)
	e.assignments.Clear(employeeID)

	if err := e.appendRow(employeeID, a, domain.StatusDone, "", now); err != nil {
		return nil, E(op, Internal, err)
	}
	e.persist(ctx, employeeID, a.ContributorID, false)

	name := e.employeeName(employeeID)
	e.fanOut(ctx, a.ContributorID,
		fmt.Sprintf("✅ %s copied their link.", name),
		fmt.Sprintf("✅ %s copied your link.", name))

	e.log.Info("link copied",
		logger.String("employee", employeeID),
		logger.String("url", a.URL))

	return a, nil
}

// Cancel resolves the live assignment as cancelled and returns the link
// to the pool tail. Rejected once the action deadline has passed.
func (e *Engine) Cancel(ctx context.Context, employeeID string) (*domain.Assignment, error) {
	const op = "engine.Cancel"

	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.assignments.Get(employeeID)
	if !ok {
		return nil, E(op, NoAssignment, fmt.Errorf("you have no active link"))
	}

	now := e.now()
	if !a.WithinActionWindow(now) {
		return nil, E(op, DeadlinePassed, fmt.Errorf("time out, cancel is no longer allowed"))
	}

	e.ledger.CreditCancelled(employeeID, a.ContributorID, a.ContributorName)
	e.pool.Contribute(a.Link())
	e.assignments.Clear(employeeID)

	if err := e.appendRow(employeeID, a, domain.StatusCancelled, "returned to pool", now); err != nil {
		return nil, E(op, Internal, err)
	}
	e.persist(ctx, employeeID, a.ContributorID, true)

	name := e.employeeName(employeeID)
	e.fanOut(ctx, a.ContributorID,
		fmt.Sprintf("↩️ %s cancelled their link, it returned to the pool.", name),
		fmt.Sprintf("↩️ %s cancelled your link, it returned to the pool.", name))

	e.log.Info("link cancelled",
		logger.String("employee", employeeID),
		logger.String("url", a.URL))

	return a, nil
}

// ExpireManual resolves the live assignment as expired and discards the
// link. Shares the cancel eligibility window but diverges in disposal.
func (e *Engine) ExpireManual(ctx context.Context, employeeID string) (*domain.Assignment, error) {
	const op = "engine.ExpireManual"

	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.assignments.Get(employeeID)
	if !ok {
		return nil, E(op, NoAssignment, fmt.Errorf("you have no active link"))
	}

	now := e.now()
	if !a.WithinActionWindow(now) {
		return nil, E(op, DeadlinePassed, fmt.Errorf("time out, expire is no longer allowed"))
	}

	e.ledger.CreditExpired(employeeID, a.ContributorID, a.ContributorName)
	e.assignments.Clear(employeeID)

	if err := e.appendRow(employeeID, a, domain.StatusExpired, "manual, not returned", now); err != nil {
		return nil, E(op, Internal, err)
	}
	e.persist(ctx, employeeID, a.ContributorID, false)

	name := e.employeeName(employeeID)
	e.fanOut(ctx, a.ContributorID,
		fmt.Sprintf("🗑 %s marked their link expired, it was discarded.", name),
		fmt.Sprintf("🗑 %s marked your link expired, it was discarded.", name))

	e.log.Info("link expired manually",
		logger.String("employee", employeeID),
		logger.String("url", a.URL))

	return a, nil
}

// ExpireByTimer is the scheduled expiry firing. The mandatory first
// step is the self-check: the firing is a silent no-op unless the live
// assignment still holds the URL captured at schedule time.
func (e *Engine) ExpireByTimer(employeeID, urlStr string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, ok := e.assignments.Get(employeeID)
	if !ok || a.URL != urlStr {
		// Resolved or reassigned before the timer fired.
		e.log.Debug("stale expiry timer ignored",
			logger.String("employee", employeeID),
			logger.String("url", urlStr))
		return
	}

	ctx := context.Background()
	now := e.now()

	e.ledger.CreditExpired(employeeID, a.ContributorID, a.ContributorName)
	e.pool.Contribute(a.Link())
	e.assignments.Clear(employeeID)

	if err := e.appendRow(employeeID, a, domain.StatusExpired, "timer expired, returned to pool", now); err != nil {
		e.log.Error("failed to record timer expiry", logger.Error(err))
	}
	e.persist(ctx, employeeID, a.ContributorID, true)

	name := e.employeeName(employeeID)
	e.send(ctx, employeeID, "⌛ Your link expired and returned to the pool.")
	e.fanOut(ctx, a.ContributorID,
		fmt.Sprintf("⌛ Link of %s expired, it returned to the pool.", name),
		fmt.Sprintf("⌛ Your link for %s expired, it returned to the pool.", name))

	e.log.Info("link expired by timer",
		logger.String("employee", employeeID),
		logger.String("url", a.URL))
}

// Contribute validates and appends a link to the pool tail under the
// contributor's identity.
func (e *Engine) Contribute(ctx context.Context, contributorID, contributorName, urlStr string) error {
	const op = "engine.Contribute"

	parsed, err := url.ParseRequestURI(urlStr)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return E(op, Invalid, fmt.Errorf("invalid link %q, want an absolute http(s) URL", urlStr))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.pool.Contribute(domain.Link{
		URL:             urlStr,
		ContributorID:   contributorID,
		ContributorName: contributorName,
	})
	e.ledger.ContributorAdded(contributorID, contributorName)
	e.persist(ctx, "", contributorID, true)

	if contributorID != e.cfg.OwnerID {
		e.send(ctx, e.cfg.OwnerID,
			fmt.Sprintf("➕ %s added a link, %d queued.", contributorName, e.pool.Len()))
	}

	e.log.Info("link contributed",
		logger.String("contributor", contributorID),
		logger.Int("pool_size", e.pool.Len()))

	return nil
}

// finalizePrior closes a still-open assignment as done when its owner
// requests again after the cooldown. Credits copied on both sides and
// records a done row, exactly as an explicit copy would, but sends no
// notifications.
func (e *Engine) finalizePrior(ctx context.Context, employeeID string, prior *domain.Assignment, now time.Time) {
	e.ledger.CreditCopied(employeeID, prior.ContributorID, prior.ContributorName)
	e.assignments.Clear(employeeID)

	if err := e.appendRow(employeeID, prior, domain.StatusDone, "auto-closed on reassignment", now); err != nil {
		e.log.Error("failed to record lazy close", logger.Error(err))
	}
	e.persist(ctx, employeeID, prior.ContributorID, false)

	e.log.Info("prior assignment auto-closed",
		logger.String("employee", employeeID),
		logger.String("url", prior.URL))
}

func (e *Engine) appendRow(employeeID string, a *domain.Assignment, status domain.Status, note string, resolvedAt time.Time) error {
	row := domain.AuditRow{
		Date:            e.now().Format("2006-01-02"),
		EmployeeID:      employeeID,
		EmployeeName:    e.employeeName(employeeID),
		URL:             a.URL,
		Status:          status,
		AssignedAt:      a.AssignedAt,
		UnlockAt:        a.RequestUnlockAt,
		DeadlineAt:      a.ActionDeadline,
		ExpiresAt:       a.ExpiresAt,
		ResolvedAt:      resolvedAt,
		Note:            note,
		ContributorID:   a.ContributorID,
		ContributorName: a.ContributorName,
	}
	if err := e.audit.Append(row); err != nil {
		return fmt.Errorf("audit append failed: %w", err)
	}
	return nil
}

// persist mirrors the touched state to the durable store, best effort.
func (e *Engine) persist(ctx context.Context, employeeID, contributorID string, poolChanged bool) {
	if e.store == nil {
		return
	}
	if employeeID != "" {
		if err := e.store.SaveCounters(ctx, employeeID, e.ledger.Counters(employeeID)); err != nil {
			e.log.Warn("failed to persist counters",
				logger.String("employee", employeeID),
				logger.Error(err))
		}
	}
	if contributorID != "" {
		if err := e.store.SaveContribution(ctx, contributorID, e.ledger.Contribution(contributorID)); err != nil {
			e.log.Warn("failed to persist contribution stats",
				logger.String("contributor", contributorID),
				logger.Error(err))
		}
	}
	if poolChanged {
		if err := e.store.SavePool(ctx, e.pool.Snapshot()); err != nil {
			e.log.Warn("failed to persist pool", logger.Error(err))
		}
	}
}

// send fires one best-effort notification.
func (e *Engine) send(ctx context.Context, recipientID, text string) {
	if e.notifier == nil || recipientID == "" {
		return
	}
	_ = e.notifier.Notify(ctx, recipientID, text)
}

// fanOut notifies the owner and the contributor about a transition. The
// contributor message is skipped when the contributor is the owner, so
// the owner never hears about it twice.
func (e *Engine) fanOut(ctx context.Context, contributorID, ownerText, contributorText string) {
	e.send(ctx, e.cfg.OwnerID, ownerText)
	if contributorID != "" && contributorID != e.cfg.OwnerID {
		e.send(ctx, contributorID, contributorText)
	}
}

func (e *Engine) employeeName(employeeID string) string {
	if e.registry == nil {
		return employeeID
	}
	if emp, ok := e.registry.GetEmployee(employeeID); ok {
		return emp.Name
	}
	return employeeID
}
