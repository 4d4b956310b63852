package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkdrop/internal/audit"
	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/deps"
)

const recordUsage = `GET /api/records/{date} with date as YYYY-MM-DD`

// DayRecord returns the raw audit CSV of one calendar date.
func DayRecord(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := chi.URLParam(r, "date")
		if _, err := time.Parse(audit.DateLayout, date); err != nil {
			writeUsage(w, recordUsage)
			return
		}

		data, err := d.Audit.Fetch(date)
		if err != nil {
			if errors.Is(err, audit.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, errorResponse{
					Error:  "not found",
					Reason: "no record for " + date,
				})
				return
			}
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to read record"})
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+date+`.csv"`)
		_, _ = w.Write(data)
	}
}
