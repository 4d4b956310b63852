package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/linkdrop/internal/engine"
)

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
	Usage  string `json:"usage,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeUsage answers a malformed command with a usage hint; no state
// was changed.
func writeUsage(w http.ResponseWriter, usage string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error: "wrong format",
		Usage: usage,
	})
}

// writeEngineError maps an engine refusal to an HTTP status. Validation
// failures are 400, eligibility failures 409, everything else 500.
func writeEngineError(w http.ResponseWriter, err error) {
	kind := engine.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case engine.Invalid:
		status = http.StatusBadRequest
	case engine.Unauthorized:
		status = http.StatusForbidden
	case engine.PoolEmpty, engine.QuotaExceeded, engine.CooldownActive,
		engine.NoAssignment, engine.DeadlinePassed:
		status = http.StatusConflict
	}

	writeJSON(w, status, errorResponse{
		Error:  kind.String(),
		Reason: engine.Reason(err),
	})
}
