package audit

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkdrop/internal/domain"
)

const (
	// DateLayout is the calendar-date key of a day file, local clock.
	DateLayout = "2006-01-02"

	// timeLayout is used for the per-phase timestamp columns.
	timeLayout = "2006-01-02 15:04:05"
)

// ErrNotFound is returned by Fetch when no day file exists for a date.
var ErrNotFound = errors.New("no audit record for that date")

// header is the fixed 13-column layout of a day file. The file layout
// is the external contract and never changes order.
var header = []string{
	"date",
	"employee_id",
	"employee_name",
	"url",
	"status",
	"assigned_at",
	"unlock_at",
	"deadline_at",
	"expires_at",
	"resolved_at",
	"note",
	"contributor_id",
	"contributor_name",
}

// Log is the append-only audit trail, one CSV file per calendar date.
// Append never overwrites or reorders prior rows.
type Log struct {
	mu  sync.Mutex
	dir string
}

// New creates the audit log rooted at dir, creating it if needed.
func New(dir string) (*Log, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit dir: %w", err)
	}
	return &Log{dir: dir}, nil
}

// Append writes one row to the day file of row.Date, creating the file
// with a header when it is the first row of the day. The write is
// flushed and synced before returning, so a nil error means the row is
// durable.
func (l *Log) Append(row domain.AuditRow) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	path := l.path(row.Date)

	_, statErr := os.Stat(path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open day file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := w.Write(encode(row)); err != nil {
		return fmt.Errorf("failed to write audit row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush audit row: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync day file: %w", err)
	}

	return nil
}

// Fetch returns the raw day file for a date, or ErrNotFound.
func (l *Log) Fetch(date string) ([]byte, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", date, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path(date))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read day file: %w", err)
	}
	return data, nil
}

func (l *Log) path(date string) string {
	return filepath.Join(l.dir, date+".csv")
}

func encode(row domain.AuditRow) []string {
	return []string{
		row.Date,
		row.EmployeeID,
		row.EmployeeName,
		row.URL,
		string(row.Status),
		stamp(row.AssignedAt),
		stamp(row.UnlockAt),
		stamp(row.DeadlineAt),
		stamp(row.ExpiresAt),
		stamp(row.ResolvedAt),
		row.Note,
		row.ContributorID,
		row.ContributorName,
	}
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}
