package handlers

import (
	"net/http"
	"sort"

	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/deps"
)

type adminRow struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// ListAdmins returns the admin allow-list.
func ListAdmins(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admins := d.Registry.GetAllAdmins()

		rows := make([]adminRow, 0, len(admins))
		for _, a := range admins {
			rows = append(rows, adminRow{
				ID:     a.ID,
				Name:   a.Name,
				Active: !a.Disabled,
			})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

		writeJSON(w, http.StatusOK, rows)
	}
}
