// Package server exposes the HTTP surface: the brain-dump turn endpoint,
// health probes, and the Prometheus metrics endpoint.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/daniel5812/brain-dump-server/internal/app"
	"github.com/daniel5812/brain-dump-server/internal/health"
	"github.com/daniel5812/brain-dump-server/internal/observe"
)

// notAllowedMessage is sent back to users missing from the allow-list.
const notAllowedMessage = "משתמש חדש - נא לפנות למנהל המערכת"

// shutdownTimeout bounds the graceful drain of in-flight requests.
const shutdownTimeout = 10 * time.Second

// TurnHandler is the application surface the HTTP layer drives. *app.App
// implements it; tests substitute fakes.
type TurnHandler interface {
	HandleTurn(ctx context.Context, userID, text string) error
	VerifySignature(ctx context.Context, userID, text string, timestamp int64, signature string) bool
	UserAllowed(userID string) bool
}

var _ TurnHandler = (*app.App)(nil)

// Server owns the HTTP listener and routes.
type Server struct {
	turns   TurnHandler
	checks  *health.Handler
	metrics *observe.Metrics
	srv     *http.Server
}

// New builds a Server listening on addr. checks may be nil to skip the
// readiness probes.
func New(addr string, turns TurnHandler, checks *health.Handler, metrics *observe.Metrics) *Server {
	s := &Server{
		turns:   turns,
		checks:  checks,
		metrics: metrics,
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler assembles the route table wrapped in the observability middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /brain-dump", s.handleBrainDump)
	mux.Handle("GET /metrics", promhttp.Handler())
	if s.checks != nil {
		s.checks.Register(mux)
	}
	return observe.Middleware(s.metrics)(mux)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// ─── Turn endpoint ───────────────────────────────────────────────────────────

// turnRequest is the wire shape of a brain-dump message. Timestamp is
// decoded loosely because some WhatsApp bridges send it as a string.
type turnRequest struct {
	Text      string `json:"text"`
	UserID    string `json:"userId"`
	Timestamp any    `json:"timestamp"`
	Signature string `json:"signature"`
	Mail      string `json:"mail"`
}

type turnResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func (s *Server) handleBrainDump(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := observe.Logger(ctx)

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, turnResponse{Error: "Invalid JSON"})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeJSON(w, http.StatusBadRequest, turnResponse{Error: "Missing text"})
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeJSON(w, http.StatusBadRequest, turnResponse{Error: "Missing userId"})
		return
	}
	ts, err := normalizeTimestamp(req.Timestamp)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, turnResponse{Error: err.Error()})
		return
	}

	// The signature covers the identifier exactly as the client sent it;
	// normalisation happens only after verification.
	if !s.turns.VerifySignature(ctx, req.UserID, text, ts, req.Signature) {
		log.Warn("rejected turn with bad signature", "user", req.UserID)
		writeJSON(w, http.StatusUnauthorized, turnResponse{Error: "INVALID_SIGNATURE"})
		return
	}

	userID := app.NormalizeUserID(req.UserID)
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, turnResponse{Error: "Missing userId"})
		return
	}
	if !s.turns.UserAllowed(userID) {
		log.Warn("rejected turn from unlisted user", "user", userID)
		writeJSON(w, http.StatusForbidden, turnResponse{
			Error:   "USER_NOT_ALLOWED",
			Message: notAllowedMessage,
		})
		return
	}

	if err := s.turns.HandleTurn(ctx, userID, text); err != nil {
		log.Error("turn failed", "user", userID, "err", err)
		writeJSON(w, http.StatusInternalServerError, turnResponse{})
		return
	}
	writeJSON(w, http.StatusOK, turnResponse{OK: true})
}

// normalizeTimestamp accepts a JSON number or a numeric string and returns
// Unix seconds. The error text doubles as the response body.
func normalizeTimestamp(v any) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, errors.New("Missing timestamp")
	case float64:
		return int64(t), nil
	case string:
		if strings.TrimSpace(t) == "" {
			return 0, errors.New("Missing timestamp")
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, errors.New("Invalid timestamp")
		}
		return int64(f), nil
	default:
		return 0, errors.New("Invalid timestamp")
	}
}

func writeJSON(w http.ResponseWriter, status int, body turnResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("encode response", "err", err)
	}
}
