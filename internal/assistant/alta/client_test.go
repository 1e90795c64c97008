package alta

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := New(Config{
		BaseURL:  srv.URL,
		APIToken: "test-token",
		Timeout:  5 * time.Second,
	})
	return client, srv
}

func TestRequestSendsAuthHeader(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))

	if _, err := client.AccessPoints(context.Background()); err != nil {
		t.Fatalf("AccessPoints: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer test-token")
	}
}

func TestAuthErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.AccessPoints(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := KindOf(err); kind != KindAuth {
		t.Errorf("kind = %q, want %q", kind, KindAuth)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestRateLimitRetriedThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": "ap-1", "name": "Front Door"}]`))
	}))

	points, err := client.AccessPoints(context.Background())
	if err != nil {
		t.Fatalf("AccessPoints: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("len(points) = %d, want 1", len(points))
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestServerErrorExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.AccessPoints(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := KindOf(err); kind != KindServer {
		t.Errorf("kind = %q, want %q", kind, KindServer)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestNonJSONResponseTreatedAsEmpty(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html>maintenance</html>`))
	}))

	points, err := client.AccessPoints(context.Background())
	if err != nil {
		t.Fatalf("AccessPoints: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("len(points) = %d, want 0", len(points))
	}
}

func TestWrappedListResponse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [{"id": "ap-1"}, {"id": "ap-2"}]}`))
	}))

	points, err := client.AccessPoints(context.Background())
	if err != nil {
		t.Fatalf("AccessPoints: %v", err)
	}
	if len(points) != 2 {
		t.Errorf("len(points) = %d, want 2", len(points))
	}
}

func TestBareArrayResponse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": "ap-1"}]`))
	}))

	points, err := client.AccessPoints(context.Background())
	if err != nil {
		t.Fatalf("AccessPoints: %v", err)
	}
	if len(points) != 1 {
		t.Errorf("len(points) = %d, want 1", len(points))
	}
}

func TestAccessEventsCachedAfterFirstFetch(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"events": [{"guid": "e-1", "time": 1700000000000}]}`))
	}))

	for i := 0; i < 3; i++ {
		events, err := client.AccessEvents(context.Background())
		if err != nil {
			t.Fatalf("AccessEvents: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("len(events) = %d, want 1", len(events))
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1 (cached)", n)
	}
}

func TestCurrentUserCached(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name": "Dana Ops", "email": "dana@example.com"}`))
	}))

	for i := 0; i < 2; i++ {
		user, err := client.CurrentUser(context.Background())
		if err != nil {
			t.Fatalf("CurrentUser: %v", err)
		}
		if user.Name() != "Dana Ops" {
			t.Errorf("Name = %q, want %q", user.Name(), "Dana Ops")
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1 (cached)", n)
	}
}

func TestUnlockUsesCorrectPath(t *testing.T) {
	var gotMethod, gotPath string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := client.Unlock(context.Background(), "42"); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if want := "/api/v1/accessControlPoints/42/unlock"; gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
}

func TestAccessEventByGUIDNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.AccessEventByGUID(context.Background(), "missing-guid")
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := KindOf(err); kind != KindNotFound {
		t.Errorf("kind = %q, want %q", kind, KindNotFound)
	}
}

func TestTimeoutMappedToTimeoutKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	client := New(Config{
		BaseURL:     srv.URL,
		APIToken:    "test-token",
		Timeout:     20 * time.Millisecond,
		MaxAttempts: 1,
	})

	_, err := client.AccessPoints(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := KindOf(err); kind != KindTimeout {
		t.Errorf("kind = %q, want %q", kind, KindTimeout)
	}
}
