package audit

import (
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/linkdrop/internal/domain"
)

func testRow(status domain.Status) domain.AuditRow {
	assigned := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	return domain.AuditRow{
		Date:            "2026-08-28",
		EmployeeID:      "emp1",
		EmployeeName:    "Rohit",
		URL:             "https://l1.example.com",
		Status:          status,
		AssignedAt:      assigned,
		UnlockAt:        assigned.Add(15 * time.Minute),
		DeadlineAt:      assigned.Add(30 * time.Minute),
		ExpiresAt:       assigned.Add(time.Hour),
		Note:            "",
		ContributorID:   "admin1",
		ContributorName: "Ana",
	}
}

func TestAppendCreatesDayFileWithHeader(t *testing.T) {
	log, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if err := log.Append(testRow(domain.StatusPending)); err != nil {
		t.Fatalf("Append() failed: %v", err)
	}

	data, err := log.Fetch("2026-08-28")
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("day file is not valid CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("day file has %v lines, want header + 1 row", len(records))
	}
	if len(records[0]) != 13 {
		t.Errorf("header has %v columns, want 13", len(records[0]))
	}
	if records[1][4] != "pending" {
		t.Errorf("status column = %v, want pending", records[1][4])
	}
}

func TestAppendNeverOverwrites(t *testing.T) {
	log, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	statuses := []domain.Status{domain.StatusPending, domain.StatusDone, domain.StatusCancelled}
	for _, s := range statuses {
		if err := log.Append(testRow(s)); err != nil {
			t.Fatalf("Append(%v) failed: %v", s, err)
		}
	}

	data, _ := log.Fetch("2026-08-28")
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("day file is not valid CSV: %v", err)
	}
	if len(records) != len(statuses)+1 {
		t.Fatalf("day file has %v lines, want %v", len(records), len(statuses)+1)
	}
	// Rows keep append order
	for i, s := range statuses {
		if records[i+1][4] != string(s) {
			t.Errorf("row %d status = %v, want %v", i, records[i+1][4], s)
		}
	}
}

func TestRowsSplitByDate(t *testing.T) {
	log, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	day1 := testRow(domain.StatusDone)
	day2 := testRow(domain.StatusDone)
	day2.Date = "2026-08-29"

	if err := log.Append(day1); err != nil {
		t.Fatal(err)
	}
	if err := log.Append(day2); err != nil {
		t.Fatal(err)
	}

	for _, date := range []string{"2026-08-28", "2026-08-29"} {
		data, err := log.Fetch(date)
		if err != nil {
			t.Fatalf("Fetch(%v) failed: %v", date, err)
		}
		records, _ := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if len(records) != 2 {
			t.Errorf("Fetch(%v) has %v lines, want 2", date, len(records))
		}
	}
}

func TestFetchNotFound(t *testing.T) {
	log, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	_, err = log.Fetch("2026-01-01")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch() on missing day = %v, want ErrNotFound", err)
	}
}

func TestFetchRejectsBadDate(t *testing.T) {
	log, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	for _, bad := range []string{"28-08-2026", "notadate", "2026/08/28", "../etc/passwd"} {
		if _, err := log.Fetch(bad); err == nil || errors.Is(err, ErrNotFound) {
			t.Errorf("Fetch(%q) = %v, want a format error", bad, err)
		}
	}
}

func TestTerminalRowHasResolvedTimestamp(t *testing.T) {
	log, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	row := testRow(domain.StatusExpired)
	row.ResolvedAt = row.ExpiresAt
	row.Note = "timer expired, returned to pool"
	if err := log.Append(row); err != nil {
		t.Fatal(err)
	}

	data, _ := log.Fetch("2026-08-28")
	records, _ := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	got := records[1]
	if got[9] == "" {
		t.Error("resolved_at column empty on terminal row")
	}
	if got[10] != "timer expired, returned to pool" {
		t.Errorf("note column = %v", got[10])
	}
}
