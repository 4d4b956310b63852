package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/linkdrop/internal/domain"
	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkdrop/internal/httpserver/mw"
)

type assignmentResponse struct {
	URL             string    `json:"url"`
	AssignedAt      time.Time `json:"assigned_at"`
	RequestUnlockAt time.Time `json:"request_unlock_at"`
	ActionDeadline  time.Time `json:"action_deadline"`
	ExpiresAt       time.Time `json:"expires_at"`
	Contributor     string    `json:"contributor"`
}

func toAssignmentResponse(a *domain.Assignment) assignmentResponse {
	return assignmentResponse{
		URL:             a.URL,
		AssignedAt:      a.AssignedAt,
		RequestUnlockAt: a.RequestUnlockAt,
		ActionDeadline:  a.ActionDeadline,
		ExpiresAt:       a.ExpiresAt,
		Contributor:     a.ContributorName,
	}
}

// RequestLink hands the oldest pooled link to the calling employee.
func RequestLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := d.Engine.Request(r.Context(), mw.CallerID(r.Context()))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAssignmentResponse(a))
	}
}

// CopyLink resolves the caller's assignment as done.
func CopyLink(d deps.Deps) http.HandlerFunc {
	return resolve(d, func(ctx context.Context, d deps.Deps, caller string) (*domain.Assignment, error) {
		return d.Engine.Copy(ctx, caller)
	})
}

// CancelLink resolves the caller's assignment as cancelled; the link
// returns to the pool.
func CancelLink(d deps.Deps) http.HandlerFunc {
	return resolve(d, func(ctx context.Context, d deps.Deps, caller string) (*domain.Assignment, error) {
		return d.Engine.Cancel(ctx, caller)
	})
}

// ExpireLink resolves the caller's assignment as expired; the link is
// discarded.
func ExpireLink(d deps.Deps) http.HandlerFunc {
	return resolve(d, func(ctx context.Context, d deps.Deps, caller string) (*domain.Assignment, error) {
		return d.Engine.ExpireManual(ctx, caller)
	})
}

func resolve(d deps.Deps, fn func(ctx context.Context, d deps.Deps, caller string) (*domain.Assignment, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := fn(r.Context(), d, mw.CallerID(r.Context()))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAssignmentResponse(a))
	}
}

type contributeRequest struct {
	URL string `json:"url"`
}

const contributeUsage = `POST {"url": "https://..."}`

// ContributeLink appends a link to the pool tail under the caller's
// identity.
func ContributeLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contributeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
			writeUsage(w, contributeUsage)
			return
		}

		caller := mw.CallerID(r.Context())
		name := contributorName(d, caller)

		if err := d.Engine.Contribute(r.Context(), caller, name, req.URL); err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"queued": d.Pool.Len(),
		})
	}
}

func contributorName(d deps.Deps, callerID string) string {
	if callerID == d.OwnerID {
		return "owner"
	}
	if a, ok := d.Registry.GetAdmin(callerID); ok {
		return a.Name
	}
	return callerID
}
