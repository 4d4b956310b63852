package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/linkdrop/internal/assign"
	"github.com/MrSnakeDoc/linkdrop/internal/domain"
	"github.com/MrSnakeDoc/linkdrop/internal/ledger"
	"github.com/MrSnakeDoc/linkdrop/internal/logger"
	"github.com/MrSnakeDoc/linkdrop/internal/pool"
	"github.com/MrSnakeDoc/linkdrop/internal/registry"
)

// ─────────────────────────────────────────────────────────────────
// Test doubles
// ─────────────────────────────────────────────────────────────────

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type timerCall struct {
	employeeID string
	url        string
	at         time.Time
}

type fakeTimers struct {
	mu    sync.Mutex
	calls []timerCall
}

func (f *fakeTimers) Schedule(employeeID, urlStr string, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, timerCall{employeeID, urlStr, at})
}

type memAudit struct {
	mu   sync.Mutex
	rows []domain.AuditRow
	fail bool
}

func (m *memAudit) Append(row domain.AuditRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("disk full")
	}
	m.rows = append(m.rows, row)
	return nil
}

func (m *memAudit) last(t *testing.T) domain.AuditRow {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.rows) == 0 {
		t.Fatal("no audit rows recorded")
	}
	return m.rows[len(m.rows)-1]
}

type message struct {
	recipient string
	text      string
}

type memNotifier struct {
	mu   sync.Mutex
	msgs []message
}

func (m *memNotifier) Notify(_ context.Context, recipientID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, message{recipientID, text})
	return nil
}

func (m *memNotifier) sentTo(recipientID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, msg := range m.msgs {
		if msg.recipient == recipientID {
			n++
		}
	}
	return n
}

// ─────────────────────────────────────────────────────────────────
// Fixture
// ─────────────────────────────────────────────────────────────────

type fixture struct {
	eng      *Engine
	clock    *fakeClock
	pool     *pool.Pool
	assigns  *assign.Store
	ledger   *ledger.Ledger
	audit    *memAudit
	timers   *fakeTimers
	notifier *memNotifier
}

func baseConfig() Config {
	return Config{
		OwnerID:      "owner",
		Quota:        3,
		Cooldown:     15 * time.Minute,
		ActionWindow: 30 * time.Minute,
		LinkTTL:      time.Hour,
	}
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	reg := registry.New()
	reg.UpdateEmployees([]*domain.Employee{
		{ID: "e1", Name: "Rohit"},
		{ID: "e2", Name: "Mina"},
	})

	f := &fixture{
		clock:    &fakeClock{now: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)},
		pool:     pool.New(),
		assigns:  assign.New(),
		ledger:   ledger.New(),
		audit:    &memAudit{},
		timers:   &fakeTimers{},
		notifier: &memNotifier{},
	}
	f.eng = New(cfg, Deps{
		Pool:        f.pool,
		Assignments: f.assigns,
		Ledger:      f.ledger,
		Registry:    reg,
		Audit:       f.audit,
		Notifier:    f.notifier,
		Timers:      f.timers,
		Logger:      logger.New("error", false),
		Clock:       f.clock.Now,
	})
	return f
}

func (f *fixture) seed(urls ...string) {
	for _, u := range urls {
		f.pool.Contribute(domain.Link{URL: u, ContributorID: "admin1", ContributorName: "Ana"})
	}
}

// ─────────────────────────────────────────────────────────────────
// Request
// ─────────────────────────────────────────────────────────────────

func TestRequestAssignsOldestLink(t *testing.T) {
	f := newFixture(t, baseConfig())
	f.seed("https://l1.example.com", "https://l2.example.com")
	ctx := context.Background()

	a, err := f.eng.Request(ctx, "e1")
	if err != nil {
		t.Fatalf("Request() failed: %v", err)
	}

	if a.URL != "https://l1.example.com" {
		t.Errorf("got %v, want the oldest pooled link", a.URL)
	}
	if f.pool.Len() != 1 {
		t.Errorf("pool size = %v, want 1", f.pool.Len())
	}
	if got := f.ledger.Sent("e1"); got != 1 {
		t.Errorf("Sent = %v, want 1", got)
	}

	now := f.clock.Now()
	if !a.RequestUnlockAt.Equal(now.Add(15 * time.Minute)) {
		t.Errorf("RequestUnlockAt = %v", a.RequestUnlockAt)
	}
	if !a.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v", a.ExpiresAt)
	}

	if len(f.timers.calls) != 1 {
		t.Fatalf("timer calls = %v, want 1", len(f.timers.calls))
	}
	tc := f.timers.calls[0]
	if tc.employeeID != "e1" || tc.url != a.URL || !tc.at.Equal(a.ExpiresAt) {
		t.Errorf("timer armed with %+v", tc)
	}

	row := f.audit.last(t)
	if row.Status != domain.StatusPending || row.EmployeeName != "Rohit" {
		t.Errorf("pending row = %+v", row)
	}
	if !row.ResolvedAt.IsZero() {
		t.Error("pending row must not carry a resolved timestamp")
	}

	if f.notifier.sentTo("e1") != 1 {
		t.Error("employee not notified about the assignment")
	}
	if f.notifier.sentTo("owner") != 1 {
		t.Error("owner not notified about the hand-out")
	}
	if f.notifier.sentTo("admin1") != 1 {
		t.Error("contributor not notified about the hand-out")
	}
}

func TestRequestEmptyPool(t *testing.T) {
	f := newFixture(t, baseConfig())

	_, err := f.eng.Request(context.Background(), "e1")
	if KindOf(err) != PoolEmpty {
		t.Fatalf("Request() on empty pool = %v, want PoolEmpty", err)
	}
	if got := f.ledger.Sent("e1"); got != 0 {
		t.Errorf("Sent = %v after refused request, want 0", got)
	}
}

func TestRequestCooldownActive(t *testing.T) {
	f := newFixture(t, baseConfig())
	f.seed("https://l1.example.com", "https://l2.example.com")
	ctx := context.Background()

	if _, err := f.eng.Request(ctx, "e1"); err != nil {
		t.Fatal(err)
	}

	f.clock.Advance(5 * time.Minute)
	_, err := f.eng.Request(ctx, "e1")
	if KindOf(err) != CooldownActive {
		t.Fatalf("Request() inside cooldown = %v, want CooldownActive", err)
	}
	if !strings.Contains(Reason(err), "wait 10m0s") {
		t.Errorf("reason = %q, want the remaining wait", Reason(err))
	}
	if f.pool.Len() != 1 {
		t.Error("refused request must not touch the pool")
	}
}

func TestRequestAtExactUnlockAllowed(t *testing.T) {
	f := newFixture(t, baseConfig())
	f.seed("https://l1.example.com", "https://l2.example.com")
	ctx := context.Background()

	if _, err := f.eng.Request(ctx, "e1"); err != nil {
		t.Fatal(err)
	}

	f.clock.Advance(15 * time.Minute)
	if _, err := f.eng.Request(ctx, "e1"); err != nil {
		t.Errorf("Request() exactly at unlock = %v, want success", err)
	}
}

func TestRequestQuotaExceeded(t *testing.T) {
	cfg := baseConfig()
	cfg.Quota = 1
	f := newFixture(t, cfg)
	f.seed("https://l1.example.com", "https://l2.example.com")
	ctx := context.Background()

	if _, err := f.eng.Request(ctx, "e1"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.eng.Copy(ctx, "e1"); err != nil {
		t.Fatal(err)
	}

	// Sent never decrements, so the refusal is permanent.
	f.clock.Advance(24 * time.Hour)
	_, err := f.eng.Request(ctx, "e1")
	if KindOf(err) != QuotaExceeded {
		t.Fatalf("Request() over quota = %v, want QuotaExceeded", err)
	}

	// Other employees are unaffected.
	if _, err := f.eng.Request(ctx, "e2"); err != nil {
		t.Errorf("Request() for a fresh employee = %v, want success", err)
	}
}

func TestRequestLazyClosesPrior(t *testing.T) {
	f := newFixture(t, baseConfig())
	f.seed("https://l1.example.com", "https://l2.example.com")
	ctx := context.Background()

	first, err := f.eng.Request(ctx, "e1")
	if err != nil {
		t.Fatal(err)
	}
	notified := len(f.notifier.msgs)

	f.clock.Advance(20 * time.Minute)
	second, err := f.eng.Request(ctx, "e1")
	if err != nil {
		t.Fatalf("Request() after cooldown = %v", err)
	}
	if second.URL == first.URL {
		t.Error("reassignment returned the already-handed link")
	}

	cs := f.ledger.Counters("e1")
	if cs.Sent != 2 || cs.Copied != 1 {
		t.Errorf("counters = %+v, want Sent 2 Copied 1", cs)
	}

	var closed *domain.AuditRow
	for i := range f.audit.rows {
		if f.audit.rows[i].Status == domain.StatusDone {
			closed = &f.audit.rows[i]
		}
	}
	if closed == nil {
		t.Fatal("no done row for the auto-closed assignment")
	}
	if closed.URL != first.URL || closed.Note != "auto-closed on reassignment" {
		t.Errorf("auto-close row = %+v", closed)
	}

	// The close itself is silent. Only the new hand-out notifies.
	gained := len(f.notifier.msgs) - notified
	if gained != 3 {
		t.Errorf("reassignment sent %v messages, want 3 (employee, owner, contributor)", gained)
	}
}

func TestFailedRequestKeepsPriorOpen(t *testing.T) {
	cfg := baseConfig()
	f := newFixture(t, cfg)
	f.seed("https://l1.example.com")
	ctx := context.Background()

	if _, err := f.eng.Request(ctx, "e1"); err != nil {
		t.Fatal(err)
	}

	// Pool is now empty. A later request fails, and must not close the
	// open assignment as a side effect.
	f.clock.Advance(20 * time.Minute)
	_, err := f.eng.Request(ctx, "e1")
	if KindOf(err) != PoolEmpty {
		t.Fatalf("Request() = %v, want PoolEmpty", err)
	}
	if _, ok := f.assigns.Get("e1"); !ok {
		t.Error("prior assignment closed by a refused request")
	}
	if cs := f.ledger.Counters("e1"); cs.Copied != 0 {
		t.Errorf("Copied = %v after refused request, want 0", cs.Copied)
	}
}

// ─────────────────────────────────────────────────────────────────
// Copy
// ─────────────────────────────────────────────────────────────────

func TestCopyCreditsBothSides(t *testing.T) {
	f := newFixture(t, baseConfig())
	f.seed("https://l1.example.com")
	ctx := context.Background()

	if _, err := f.eng.Request(ctx, "e1"); err != nil {
		t.Fatal(err)
	}
	a, err := f.eng.Copy(ctx, "e1")
	if err != nil {
		t.Fatalf("Copy() failed: %v", err)
	}

	if cs := f.ledger.Counters("e1"); cs.Copied != 1 {
		t.Errorf("employee Copied = %v, want 1", cs.Copied)
	}
	if st := f.ledger.Contribution("admin1"); st.Copied != 1 {
		t.Errorf("contributor Copied = %v, want 1", st.Copied)
	}
	if _, ok := f.assigns.Get("e1"); ok {
		t.Error("assignment still live after copy")
	}

	row := f.audit.last(t)
	if row.Status != domain.StatusDone || row.URL != a.URL {
		t.Errorf("done row = %+v", row)
	}
	if row.ResolvedAt.IsZero() {
		t.Error("done row missing resolved timestamp")
	}
}

func TestCopyHasNoDeadline(t *testing.T) {
	f := newFixture(t, baseConfig())
	f.seed("https://l1.example.com")
	ctx := context.Background()

	if _, err := f.eng.Request(ctx, "e1"); err != nil {
		t.Fatal(err)
	}

	// Far past the action deadline, before the expiry timer is handled.
	f.clock.Advance(45 * time.Minute)
	if _, err := f.eng.Copy(ctx, "e1"); err != nil {
		t.Errorf("Copy() past the action deadline = %v, want success", err)
	}
}

func TestCopyWithoutAssignment(t *testing.T) {
	f := newFixture(t, baseConfig())

	_, err := f.eng.Copy(context.Background(), "e1")
	if KindOf(err) != NoAssignment {
		t.Fatalf("Copy() with no live link = %v, want NoAssignment", err)
	}
}

// ─────────────────────────────────────────────────────────────────
// Cancel
// ─────────────────────────────────────────────────────────────────

func TestCancelReturnsLinkToTail(t *testing.T) {
	f := newFixture(t, baseConfig())
	f.seed("https://l1.example.com", "https://l2.example.com")
	ctx := context.Background()

	first, err := f.eng.Request(ctx, "e1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.eng.Cancel(ctx, "e1"); err != nil {
		t.Fatalf("Cancel() failed: %v", err)
	}

	if f.pool.Len() != 2 {
		t.Fatalf("pool size = %v after cancel, want 2", f.pool.Len())
	}
	snap := f.pool.Snapshot()
	if snap[0].URL != "https://l2.example.com" || snap[1].URL != first.URL {
		t.Errorf("pool order after cancel = %v, %v; cancelled link must go to the tail", snap[0].URL, snap[1].URL)
	}

	if cs := f.ledger.Counters("e1"); cs.Cancelled != 1 {
		t.Errorf("Cancelled = %v, want 1", cs.Cancelled)
	}
	row := f.audit.last(t)
	if row.Status != domain.StatusCancelled || row.Note != "returned to pool" {
		t.Errorf("cancelled row = %+v", row)
	}

	// Cancel clears the assignment, so the next request is immediate.
	a, err := f.eng.Request(ctx, "e1")
	if err != nil {
		t.Fatalf("Request() after cancel = %v", err)
	}
	if a.URL != "https://l2.example.com" {
		t.Errorf("got %v, want the head of the reordered pool", a.URL)
	}
}

func TestCancelAfterDeadline(t *testing.T) {
	f := newFixture(t, baseConfig())
	f.seed("https://l1.example.com")
	ctx := context.Background()

	if _, err := f.eng.Request(ctx, "e1"); err != nil {
		t.Fatal(err)
	}

	f.clock.Advance(31 * time.Minute)
	_, err := f.eng.Cancel(ctx, "e1")
	if KindOf(err) != DeadlinePassed {
		t.Fatalf("Cancel() past deadline = %v, want DeadlinePassed", err)
	}
	if _, ok := f.assigns.Get("e1"); !ok {
		t.Error("refused cancel must leave the assignment live")
	}
	if f.pool.Len() != 0 {
		t.Error("refused cancel must not touch the pool")
	}
}

func TestCancelAtExactDeadlineAllowed(t *testing.T) {
	f := newFixture(t, baseConfig())
	f.seed("https://l1.example.com")
	ctx := context.Background()

	if _, err := f.eng.Request(ctx, "e1"); err != nil {
		t.Fatal(err)
	}

	f.clock.Advance(30 * time.Minute)
	if _, err := f.eng.Cancel(ctx, "e1"); err != nil {
		t.Errorf("Cancel() exactly at deadline = %v, want success", err)
	}
}

// ─────────────────────────────────────────────────────────────────
// Manual expire
// ─────────────────────────────────────────────────────────────────

func TestExpireManualDiscardsLink(t *testing.T) {
	f := newFixture(t, baseConfig())
	f.seed("https://l1.example.com")
	ctx := context.Background()

	if _, err := f.eng.Request(ctx, "e1"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.eng.ExpireManual(ctx, "e1"); err != nil {
		t.Fatalf("ExpireManual() failed: %v", err)
	}

	if f.pool.Len() != 0 {
		t.Error("manually expired link must not return to the pool")
	}
	if cs := f.ledger.Counters("e1"); cs.Expired != 1 {
		t.Errorf("Expired = %v, want 1", cs.Expired)
	}
	row := f.audit.last(t)
	if row.Status != domain.StatusExpired || row.Note != "manual, not returned" {
		t.Errorf("expired row = %+v", row)
	}
}

func TestExpireManualAfterDeadline(t *testing.T) {
	f := newFixture(t, baseConfig())
	f.seed("https://l1.example.com")
	ctx := context.Background()

	if _, err := f.eng.Request(ctx, "e1"); err != nil {
		t.Fatal(err)
	}

	f.clock.Advance(31 * time.Minute)
	_, err := f.eng.ExpireManual(ctx, "e1")
	if KindOf(err) != DeadlinePassed {
		t.Fatalf("ExpireManual() past deadline = %v, want DeadlinePassed", err)
	}
}

// ─────────────────────────────────────────────────────────────────
// Timer expiry
// ─────────────────────────────────────────────────────────────────

func TestExpireByTimerReturnsLinkToTail(t *testing.T) {
	f := newFixture(t, baseConfig())
	f.seed("https://l1.example.com")
	ctx := context.Background()

	a, err := f.eng.Request(ctx, "e1")
	if err != nil {
		t.Fatal(err)
	}

	f.clock.Advance(time.Hour)
	f.eng.ExpireByTimer("e1", a.URL)

	if _, ok := f.assigns.Get("e1"); ok {
		t.Error("assignment still live after timer expiry")
	}
	if f.pool.Len() != 1 {
		t.Fatalf("pool size = %v, want the link back", f.pool.Len())
	}
	if cs := f.ledger.Counters("e1"); cs.Expired != 1 {
		t.Errorf("Expired = %v, want 1", cs.Expired)
	}
	row := f.audit.last(t)
	if row.Status != domain.StatusExpired || row.Note != "timer expired, returned to pool" {
		t.Errorf("timer expiry row = %+v", row)
	}
	if f.notifier.sentTo("e1") != 2 {
		t.Error("employee not told the link expired")
	}
}

func TestExpireByTimerStaleAfterCopy(t *testing.T) {
	f := newFixture(t, baseConfig())
	f.seed("https://l1.example.com")
	ctx := context.Background()

	a, err := f.eng.Request(ctx, "e1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.eng.Copy(ctx, "e1"); err != nil {
		t.Fatal(err)
	}
	rows := len(f.audit.rows)
	before := f.ledger.Counters("e1")

	f.eng.ExpireByTimer("e1", a.URL)

	if got := f.ledger.Counters("e1"); got != before {
		t.Errorf("stale firing changed counters: %+v -> %+v", before, got)
	}
	if len(f.audit.rows) != rows {
		t.Error("stale firing appended an audit row")
	}
	if f.pool.Len() != 0 {
		t.Error("stale firing pushed a link into the pool")
	}
}

func TestExpireByTimerStaleAfterReassign(t *testing.T) {
	f := newFixture(t, baseConfig())
	f.seed("https://l1.example.com", "https://l2.example.com")
	ctx := context.Background()

	first, err := f.eng.Request(ctx, "e1")
	if err != nil {
		t.Fatal(err)
	}
	f.clock.Advance(20 * time.Minute)
	second, err := f.eng.Request(ctx, "e1")
	if err != nil {
		t.Fatal(err)
	}

	// The first timer fires against a reassigned employee. The URL
	// snapshot no longer matches, so nothing happens.
	f.clock.Advance(time.Hour)
	f.eng.ExpireByTimer("e1", first.URL)

	live, ok := f.assigns.Get("e1")
	if !ok || live.URL != second.URL {
		t.Error("stale firing disturbed the live assignment")
	}
	if cs := f.ledger.Counters("e1"); cs.Expired != 0 {
		t.Errorf("Expired = %v after stale firing, want 0", cs.Expired)
	}
}

// ─────────────────────────────────────────────────────────────────
// Contribute
// ─────────────────────────────────────────────────────────────────

func TestContributeAppendsToTail(t *testing.T) {
	f := newFixture(t, baseConfig())
	f.seed("https://l1.example.com")
	ctx := context.Background()

	if err := f.eng.Contribute(ctx, "admin2", "Jon", "https://l2.example.com"); err != nil {
		t.Fatalf("Contribute() failed: %v", err)
	}

	snap := f.pool.Snapshot()
	if len(snap) != 2 || snap[1].URL != "https://l2.example.com" {
		t.Errorf("pool after contribute = %+v", snap)
	}
	if snap[1].ContributorID != "admin2" || snap[1].ContributorName != "Jon" {
		t.Errorf("contributor identity not captured: %+v", snap[1])
	}
	if st := f.ledger.Contribution("admin2"); st.Added != 1 || st.Name != "Jon" {
		t.Errorf("contribution stats = %+v", st)
	}
	if f.notifier.sentTo("owner") != 1 {
		t.Error("owner not told about the new link")
	}
}

func TestContributeByOwnerSkipsSelfNotify(t *testing.T) {
	f := newFixture(t, baseConfig())
	ctx := context.Background()

	if err := f.eng.Contribute(ctx, "owner", "Boss", "https://l1.example.com"); err != nil {
		t.Fatal(err)
	}
	if f.notifier.sentTo("owner") != 0 {
		t.Error("owner notified about their own contribution")
	}
}

func TestContributeRejectsBadURLs(t *testing.T) {
	f := newFixture(t, baseConfig())
	ctx := context.Background()

	bad := []string{
		"",
		"notaurl",
		"/relative/path",
		"ftp://files.example.com/x",
		"http://",
		"example.com/no-scheme",
	}
	for _, u := range bad {
		t.Run(u, func(t *testing.T) {
			err := f.eng.Contribute(ctx, "admin1", "Ana", u)
			if KindOf(err) != Invalid {
				t.Errorf("Contribute(%q) = %v, want Invalid", u, err)
			}
		})
	}
	if f.pool.Len() != 0 {
		t.Error("rejected contributions reached the pool")
	}
}

// ─────────────────────────────────────────────────────────────────
// Fan-out and owner dedup
// ─────────────────────────────────────────────────────────────────

func TestFanOutSkipsOwnerContributedLinks(t *testing.T) {
	f := newFixture(t, baseConfig())
	ctx := context.Background()

	if err := f.eng.Contribute(ctx, "owner", "Boss", "https://l1.example.com"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.eng.Request(ctx, "e1"); err != nil {
		t.Fatal(err)
	}

	// Owner is both static recipient and contributor: exactly one message.
	if got := f.notifier.sentTo("owner"); got != 1 {
		t.Errorf("owner received %v messages, want 1", got)
	}
}

// ─────────────────────────────────────────────────────────────────
// Audit durability
// ─────────────────────────────────────────────────────────────────

func TestRequestFailsWhenAuditUnavailable(t *testing.T) {
	f := newFixture(t, baseConfig())
	f.seed("https://l1.example.com")
	f.audit.fail = true

	_, err := f.eng.Request(context.Background(), "e1")
	if KindOf(err) != Internal {
		t.Fatalf("Request() with broken audit = %v, want Internal", err)
	}
}
