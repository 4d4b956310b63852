package assign

import (
	"testing"
	"time"

	"github.com/MrSnakeDoc/linkdrop/internal/domain"
)

func TestStoreLifecycle(t *testing.T) {
	s := New()

	if _, ok := s.Get("emp1"); ok {
		t.Error("Get() on empty store should report absent")
	}
	if s.Count() != 0 {
		t.Errorf("Count() = %v, want 0", s.Count())
	}

	a := &domain.Assignment{URL: "https://l1.example.com", AssignedAt: time.Now()}
	s.Put("emp1", a)

	got, ok := s.Get("emp1")
	if !ok {
		t.Fatal("Get() after Put() reported absent")
	}
	if got.URL != a.URL {
		t.Errorf("Get() url = %v, want %v", got.URL, a.URL)
	}
	if s.Count() != 1 {
		t.Errorf("Count() = %v, want 1", s.Count())
	}

	s.Clear("emp1")
	if _, ok := s.Get("emp1"); ok {
		t.Error("Get() after Clear() should report absent")
	}
}

func TestPutReplacesPrior(t *testing.T) {
	s := New()

	s.Put("emp1", &domain.Assignment{URL: "https://old.example.com"})
	s.Put("emp1", &domain.Assignment{URL: "https://new.example.com"})

	got, _ := s.Get("emp1")
	if got.URL != "https://new.example.com" {
		t.Errorf("Put() did not replace prior assignment, got %v", got.URL)
	}
	if s.Count() != 1 {
		t.Errorf("one employee holds %v assignments, want 1", s.Count())
	}
}

func TestOneAssignmentPerEmployee(t *testing.T) {
	s := New()

	s.Put("emp1", &domain.Assignment{URL: "https://a.example.com"})
	s.Put("emp2", &domain.Assignment{URL: "https://b.example.com"})

	if s.Count() != 2 {
		t.Errorf("Count() = %v, want 2", s.Count())
	}

	s.Clear("emp1")
	if _, ok := s.Get("emp2"); !ok {
		t.Error("Clear() of one employee removed another's assignment")
	}
}
