package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/mw"
)

func init() { Register(registerAdmin) }

// registerAdmin wires the reporting and management commands, all gated
// on the owner / admin allow-list.
func registerAdmin(r chi.Router, d deps.Deps) {
	admin := r.With(mw.RequireAdmin(d.Registry, d.OwnerID, d.Logger))

	admin.Get("/api/stats/employees", handlers.EmployeeStats(d))
	admin.Get("/api/stats/contributors", handlers.ContributorStats(d))
	admin.Get("/api/records/{date}", handlers.DayRecord(d))
	admin.Delete("/api/employees/{name}", handlers.RemoveEmployee(d))
	admin.Get("/api/admins", handlers.ListAdmins(d))
	admin.Post("/api/reload", handlers.Reload(d))
}
