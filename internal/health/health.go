// Package health serves the Kubernetes-style probe endpoints.
//
//   - /healthz — liveness; a process that answers HTTP is alive.
//   - /readyz  — readiness; 200 only while every registered [Checker] passes.
//
// Responses are JSON with a top-level "status" ("ok" or "fail") and a
// "checks" map naming each checker's result.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// checkTimeout caps how long a single readiness check may run.
const checkTimeout = 5 * time.Second

// Checker is a named readiness probe. Check returns nil while the dependency
// is usable and must respect context cancellation.
type Checker struct {
	// Name keys the check in the JSON response, e.g. "database",
	// "messaging".
	Name string

	Check func(ctx context.Context) error
}

// Database returns a Checker that probes the Postgres pool. The ping argument
// is typically (*pgxpool.Pool).Ping.
func Database(ping func(ctx context.Context) error) Checker {
	return Checker{Name: "database", Check: ping}
}

// result is the JSON response body for both probes.
type result struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler serves the probe endpoints. The checker list is fixed at
// construction, so it is safe for concurrent use.
type Handler struct {
	checkers []Checker
}

// New creates a [Handler] that runs the given checkers, in order, on each
// /readyz request.
func New(checkers ...Checker) *Handler {
	return &Handler{checkers: append([]Checker(nil), checkers...)}
}

// Healthz is the liveness probe; it always answers 200.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, result{Status: "ok"})
}

// Readyz runs every checker under a [checkTimeout] deadline derived from the
// request context and answers 503 if any of them fails.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	res := result{
		Status: "ok",
		Checks: make(map[string]string, len(h.checkers)),
	}
	status := http.StatusOK

	for _, c := range h.checkers {
		if err := h.runCheck(r.Context(), c); err != nil {
			res.Checks[c.Name] = "fail: " + err.Error()
			res.Status = "fail"
			status = http.StatusServiceUnavailable
		} else {
			res.Checks[c.Name] = "ok"
		}
	}

	writeJSON(w, status, res)
}

func (h *Handler) runCheck(ctx context.Context, c Checker) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	return c.Check(ctx)
}

// Register adds the /healthz and /readyz routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}
}
