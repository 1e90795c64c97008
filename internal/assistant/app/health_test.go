package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/intent"
	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/session"
)

type fakeTurnCounter struct{ count int64 }

func (f fakeTurnCounter) TurnCount(ctx context.Context) (int64, error) {
	return f.count, nil
}

func TestHealthEndpoint(t *testing.T) {
	hs := NewHealthServer(":0", fakeTurnCounter{}, session.NewStore())

	rec := httptest.NewRecorder()
	hs.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("Status = %q, want ok", resp.Status)
	}
}

func TestStatusEndpoint(t *testing.T) {
	sessions := session.NewStore()
	s := sessions.Get("!room", "@alice:example.org")
	s.Track(intent.KindGetEntriesToday)
	s.Track(intent.KindGetEntriesToday)
	s.Track(intent.KindShowHelp)

	hs := NewHealthServer(":0", fakeTurnCounter{count: 3}, sessions)

	rec := httptest.NewRecorder()
	hs.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp statusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TurnCount != 3 {
		t.Errorf("TurnCount = %d, want 3", resp.TurnCount)
	}
	if resp.SessionCount != 1 {
		t.Errorf("SessionCount = %d, want 1", resp.SessionCount)
	}
	if resp.TopQuestions["get_entries_today"] != 2 {
		t.Errorf("TopQuestions = %v", resp.TopQuestions)
	}
}
