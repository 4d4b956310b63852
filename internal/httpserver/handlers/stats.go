package handlers

import (
	"net/http"
	"sort"

	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/deps"
)

type employeeStatsRow struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	Sent      int64  `json:"sent"`
	Copied    int64  `json:"copied"`
	Cancelled int64  `json:"cancelled"`
	Expired   int64  `json:"expired"`
}

// EmployeeStats lists every known employee with their lifetime usage
// counters.
func EmployeeStats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counters := d.Ledger.AllCounters()

		rows := make([]employeeStatsRow, 0, len(counters))
		for _, e := range d.Registry.GetAllEmployees() {
			cs := counters[e.ID]
			rows = append(rows, employeeStatsRow{
				ID:        e.ID,
				Name:      e.Name,
				Active:    !e.Disabled,
				Sent:      cs.Sent,
				Copied:    cs.Copied,
				Cancelled: cs.Cancelled,
				Expired:   cs.Expired,
			})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

		writeJSON(w, http.StatusOK, rows)
	}
}

type contributorStatsRow struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Added     int64  `json:"added"`
	Copied    int64  `json:"copied"`
	Cancelled int64  `json:"cancelled"`
	Expired   int64  `json:"expired"`
}

// ContributorStats lists per-contributor totals for cross-checking
// pool health.
func ContributorStats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := d.Ledger.AllContributions()

		rows := make([]contributorStatsRow, 0, len(stats))
		for id, st := range stats {
			rows = append(rows, contributorStatsRow{
				ID:        id,
				Name:      st.Name,
				Added:     st.Added,
				Copied:    st.Copied,
				Cancelled: st.Cancelled,
				Expired:   st.Expired,
			})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

		writeJSON(w, http.StatusOK, rows)
	}
}
