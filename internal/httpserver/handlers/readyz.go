package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Redis string `json:"redis,omitempty"`
}

// Readyz reports readiness. Redis being down does not flip readiness:
// memory is the primary source and the store is a best-effort mirror.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redisState := "ok"
		if d.RedisClient != nil {
			if err := d.RedisClient.Ping(r.Context()).Err(); err != nil {
				redisState = "down"
			}
		}

		writeJSON(w, http.StatusOK, readyzResponse{
			Ready: true,
			Redis: redisState,
		})
	}
}
