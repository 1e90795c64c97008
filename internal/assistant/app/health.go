package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/3madMostafa/Alta-Video-Assistant/common/version"
	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/session"
)

// HealthServer exposes /health and /status. It is optional; the assistant
// runs without it when the HTTP address is empty.
type HealthServer struct {
	addr      string
	turns     turnCounter
	sessions  *session.Store
	startedAt time.Time
	server    *http.Server
	mux       *http.ServeMux
}

// turnCounter is the slice of the store the health server needs.
type turnCounter interface {
	TurnCount(ctx context.Context) (int64, error)
}

// healthResponse is returned by GET /health.
type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// statusResponse is returned by GET /status.
type statusResponse struct {
	Status       string         `json:"status"`
	Version      string         `json:"version"`
	Commit       string         `json:"commit"`
	BuildTime    string         `json:"build_time"`
	StartedAt    time.Time      `json:"started_at"`
	UptimeSecs   float64        `json:"uptime_seconds"`
	TurnCount    int64          `json:"turn_count"`
	SessionCount int            `json:"session_count"`
	TopQuestions map[string]int `json:"top_questions"`
}

// NewHealthServer creates the HTTP server (does not start it).
func NewHealthServer(addr string, turns turnCounter, sessions *session.Store) *HealthServer {
	mux := http.NewServeMux()
	hs := &HealthServer{
		addr:      addr,
		turns:     turns,
		sessions:  sessions,
		startedAt: time.Now(),
		mux:       mux,
	}
	mux.HandleFunc("/health", hs.handleHealth)
	mux.HandleFunc("/status", hs.handleStatus)
	return hs
}

// ServeHTTP implements http.Handler so the server can be tested with
// httptest.NewRecorder.
func (h *HealthServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Start begins listening in the background. Blocks until the listener is
// established so the caller knows the port is open before returning.
func (h *HealthServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("health server: listen %s: %w", h.addr, err)
	}

	h.server = &http.Server{
		Handler:      h,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("health server listening", "addr", ln.Addr().String())
		if err := h.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("health server stopped", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("health server shutdown error", "err", err)
		}
	}()

	return nil
}

// Stop shuts down the HTTP server.
func (h *HealthServer) Stop() {
	if h.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.server.Shutdown(ctx); err != nil {
		slog.Warn("health server shutdown error", "err", err)
	}
}

func (h *HealthServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: version.Version,
		Commit:  version.GitCommit,
	})
}

func (h *HealthServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	var turnCount int64
	if h.turns != nil {
		if n, err := h.turns.TurnCount(r.Context()); err == nil {
			turnCount = n
		}
	}

	sessionCount := 0
	topQuestions := map[string]int{}
	if h.sessions != nil {
		sessionCount = h.sessions.Count()
		for _, q := range h.sessions.TopQuestions(5) {
			topQuestions[string(q.Kind)] = q.Count
		}
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Status:       "ok",
		Version:      version.Version,
		Commit:       version.GitCommit,
		BuildTime:    version.BuildTime,
		StartedAt:    h.startedAt,
		UptimeSecs:   time.Since(h.startedAt).Seconds(),
		TurnCount:    turnCount,
		SessionCount: sessionCount,
		TopQuestions: topQuestions,
	})
}

// writeJSON serialises v and writes it with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("health: failed to encode JSON response", "err", err)
	}
}
