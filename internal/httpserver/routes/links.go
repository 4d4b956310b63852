package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/mw"
)

func init() { Register(registerLinks) }

func registerLinks(r chi.Router, d deps.Deps) {
	employee := r.With(mw.RequireEmployee(d.Registry, d.Logger))
	employee.Post("/api/links/request", handlers.RequestLink(d))
	employee.Post("/api/links/copy", handlers.CopyLink(d))
	employee.Post("/api/links/cancel", handlers.CancelLink(d))
	employee.Post("/api/links/expire", handlers.ExpireLink(d))

	admin := r.With(mw.RequireAdmin(d.Registry, d.OwnerID, d.Logger))
	admin.Post("/api/links/contribute", handlers.ContributeLink(d))
}
