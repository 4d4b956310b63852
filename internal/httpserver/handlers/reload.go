package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/mw"
	"github.com/MrSnakeDoc/linkdrop/internal/logger"
)

// Reload triggers a manual reload of the roster file.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := mw.CallerID(r.Context())
		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual roster reload triggered via endpoint",
				logger.String("caller", caller))
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte("✅ Reload triggered successfully\n"))
		default:
			d.Logger.Warn("roster reload already in progress",
				logger.String("caller", caller))
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte("⏳ Reload already in progress, please wait\n"))
		}
	}
}
