package mw

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/linkdrop/internal/logger"
	"github.com/MrSnakeDoc/linkdrop/internal/registry"
)

// CallerHeader carries the chat id of the caller. The chat gateway in
// front of this service sets it; authorization here is a static
// allow-list check, nothing more.
const CallerHeader = "X-Caller-ID"

type callerKey struct{}

// CallerID returns the authenticated caller id stored by the auth
// middleware, empty when the request skipped it.
func CallerID(ctx context.Context) string {
	id, _ := ctx.Value(callerKey{}).(string)
	return id
}

type rejection struct {
	Error string `json:"error"`
}

func reject(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rejection{Error: msg})
}

// RequireEmployee allows only active allow-listed employees. No state
// is ever mutated for a rejected caller.
func RequireEmployee(reg *registry.Registry, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(CallerHeader)
			if id == "" {
				reject(w, http.StatusUnauthorized, "missing "+CallerHeader+" header")
				return
			}
			if !reg.IsActiveEmployee(id) {
				log.Warn("unauthorized employee command",
					logger.String("caller", id),
					logger.String("path", r.URL.Path))
				reject(w, http.StatusForbidden, "you are not on the employee list")
				return
			}
			ctx := context.WithValue(r.Context(), callerKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin allows the owner and active allow-listed admins.
func RequireAdmin(reg *registry.Registry, ownerID string, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(CallerHeader)
			if id == "" {
				reject(w, http.StatusUnauthorized, "missing "+CallerHeader+" header")
				return
			}
			if id != ownerID && !reg.IsActiveAdmin(id) {
				log.Warn("unauthorized admin command",
					logger.String("caller", id),
					logger.String("path", r.URL.Path))
				reject(w, http.StatusForbidden, "you are not on the admin list")
				return
			}
			ctx := context.WithValue(r.Context(), callerKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
