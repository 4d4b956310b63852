package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkdrop/internal/logger"
)

// RemoveEmployee soft-disables an active employee by display name. The
// entry is kept for reporting and purged later by the garbage
// collector.
func RemoveEmployee(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if name == "" {
			writeUsage(w, `DELETE /api/employees/{name}`)
			return
		}

		e, ok := d.Registry.DisableEmployeeByName(name)
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{
				Error:  "not found",
				Reason: "no active employee named " + name,
			})
			return
		}

		// Mirror the soft delete to Redis (best effort)
		if d.Store != nil {
			if err := d.Store.SaveEmployee(r.Context(), e); err != nil {
				d.Logger.Warn("failed to persist employee removal",
					logger.String("employee_id", e.ID),
					logger.Error(err))
			}
		}

		d.Logger.Info("employee removed",
			logger.String("employee_id", e.ID),
			logger.String("name", e.Name))

		writeJSON(w, http.StatusOK, map[string]string{
			"removed": e.Name,
			"id":      e.ID,
		})
	}
}
